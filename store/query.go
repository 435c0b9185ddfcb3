package store

import (
	"context"

	"github.com/pkg/errors"
)

// GetOne loads the first record matched by the filter, or nil if none matched.
func GetOne[T any](ctx context.Context, db Readable, filter Filter) (*T, error) {
	var v T

	found, err := db.FindOne(ctx, filter, &v)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to find one by filter %v", filter)
	}

	if !found {
		return nil, nil
	}

	return &v, nil
}

// Get loads all records matched by the filter. The result is never nil.
func Get[T any](ctx context.Context, db Readable, filter Filter) ([]*T, error) {
	var vs []*T

	if err := db.Find(ctx, filter, &vs); err != nil {
		return nil, errors.WithMessagef(err, "failed to find by filter %v", filter)
	}

	if vs == nil {
		vs = []*T{}
	}

	return vs, nil
}

// GetAndMap loads all records matched by the filter and maps each of them in order.
// The first mapping error fails the whole call.
func GetAndMap[T, U any](
	ctx context.Context, db Readable, filter Filter, mapFunc func(*T) (U, error),
) ([]U, error) {
	vs, err := Get[T](ctx, db, filter)
	if err != nil {
		return nil, err
	}

	result := make([]U, 0, len(vs))
	for i, v := range vs {
		u, err := mapFunc(v)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to map record #%v", i)
		}

		result = append(result, u)
	}

	return result, nil
}
