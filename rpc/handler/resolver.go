package handler

import (
	"context"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TagResolver maps a block tag to a block number.
type TagResolver interface {
	ResolveTag(ctx context.Context, tag types.BlockTag) (uint64, error)
}

// BlockResolver resolves block identifiers to existing canonical block references.
//
// It is the only place where block existence is checked, so that lookups by number
// and by hash are gated the same way.
type BlockResolver struct {
	index store.BlockIndex
	tags  TagResolver
}

// NewBlockResolver creates a resolver over the block index. Tags are resolved by the
// block index unless a tag resolver is specified.
func NewBlockResolver(index store.BlockIndex, tags ...TagResolver) *BlockResolver {
	r := &BlockResolver{index: index, tags: index}
	if len(tags) > 0 && tags[0] != nil {
		r.tags = tags[0]
	}

	return r
}

// Resolve returns the canonical reference of the identified block, or nil if the block
// does not exist. A nil identifier refers to the latest block.
func (r *BlockResolver) Resolve(ctx context.Context, id *types.BlockIdentifier) (*types.CanonicalBlockReference, error) {
	id = id.OrLatest()

	var ref *types.CanonicalBlockReference

	if hash, ok := id.Hash(); ok {
		ref = types.NewCanonicalBlockReferenceByHash(hash)
	} else if number, ok := id.Number(); ok {
		ref = types.NewCanonicalBlockReferenceByNumber(number)
	} else {
		tag, _ := id.Tag()

		number, err := r.tags.ResolveTag(ctx, tag)
		if store.IsNotFound(err) {
			logrus.WithField("tag", tag).Debug("Block tag resolved to no block")
			return nil, nil
		}

		if err != nil {
			return nil, errors.WithMessagef(err, "failed to resolve block tag %v", tag)
		}

		ref = types.NewCanonicalBlockReferenceByNumber(number)
	}

	exists, err := r.index.BlockExists(ctx, blockRefOf(ref))
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to check existence of block %v", ref)
	}

	if !exists {
		logrus.WithField("block", id.String()).Debug("Block not found in store")
		return nil, nil
	}

	return ref, nil
}

func blockRefOf(ref *types.CanonicalBlockReference) store.BlockRef {
	if hash, ok := ref.Hash(); ok {
		return store.BlockRefFromHash(hash)
	}

	number, _ := ref.Number()
	return store.BlockRefFromNumber(number)
}
