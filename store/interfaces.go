package store

import (
	"context"
	"io"

	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common"
)

// BlockRef refers to a block either by number or by hash.
type BlockRef struct {
	Number *uint64
	Hash   *common.Hash
}

func BlockRefFromNumber(number uint64) BlockRef {
	return BlockRef{Number: &number}
}

func BlockRefFromHash(hash common.Hash) BlockRef {
	return BlockRef{Hash: &hash}
}

func (ref BlockRef) String() string {
	if ref.Hash != nil {
		return ref.Hash.Hex()
	}

	if ref.Number != nil {
		return types.BlockIdentifierFromNumber(*ref.Number).String()
	}

	return "nil"
}

// Readable is used to read indexed chain data by filter.
//
// The destination type must match the filter record kind: `*StoredHeader`,
// `*StoredTransaction`, `*StoredReceipt` or `*StoredWithdrawal` for FindOne, and a pointer
// to a slice of those for Find.
type Readable interface {
	// FindOne loads the first matched record into dest, returning false if none matched.
	FindOne(ctx context.Context, filter Filter, dest any) (bool, error)
	// Find loads all matched records into dest, in block number and then in-block
	// position ascending order.
	Find(ctx context.Context, filter Filter, dest any) error
}

// BlockIndex is used to check block existence and resolve block tags.
type BlockIndex interface {
	// BlockExists checks if the block of number or hash has been indexed.
	BlockExists(ctx context.Context, ref BlockRef) (bool, error)
	// ResolveTag maps a block tag to a block number, returning ErrNotFound if no block indexed.
	ResolveTag(ctx context.Context, tag types.BlockTag) (uint64, error)
}

// Database is implemented by any indexed chain data backend.
type Database interface {
	Readable
	BlockIndex
	io.Closer
}

// Writable is implemented by the backends that accept indexed block data.
type Writable interface {
	// Pushn appends continuous blocks to the store.
	Pushn(ctx context.Context, blocks ...*BlockData) error
}
