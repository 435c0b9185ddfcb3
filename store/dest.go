package store

import (
	"github.com/pkg/errors"
)

// CheckDestType validates the destination passed to FindOne (many = false) or Find
// (many = true) against the record kind.
func CheckDestType(kind RecordKind, dest any, many bool) error {
	var ok bool

	switch kind {
	case KindHeader:
		ok = isDestOf[StoredHeader](dest, many)
	case KindTransaction:
		ok = isDestOf[StoredTransaction](dest, many)
	case KindReceipt:
		ok = isDestOf[StoredReceipt](dest, many)
	case KindWithdrawal:
		ok = isDestOf[StoredWithdrawal](dest, many)
	}

	if !ok {
		return errors.WithMessagef(ErrUnexpectedDestType, "%T for %v records", dest, kind)
	}

	return nil
}

func isDestOf[T any](dest any, many bool) (ok bool) {
	if many {
		_, ok = dest.(*[]*T)
	} else {
		_, ok = dest.(*T)
	}

	return ok
}

// SetDest copies a record into a FindOne destination already checked by CheckDestType.
func SetDest[T any](dest any, v *T) {
	*dest.(*T) = *v
}

// AppendDest appends a record to a Find destination already checked by CheckDestType.
func AppendDest[T any](dest any, v *T) {
	ptr := dest.(*[]*T)
	*ptr = append(*ptr, v)
}
