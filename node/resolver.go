package node

import (
	"context"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/openweb3/web3go"
	"github.com/pkg/errors"
)

// TagResolver is implemented by any backend that maps block tags to block numbers.
type TagResolver interface {
	ResolveTag(ctx context.Context, tag types.BlockTag) (uint64, error)
}

// EthTagResolver resolves the chain head related block tags against a live full node.
//
// Block numbers from the full node are bounded by the latest block of the fallback, usually
// the store, since indexing may lag behind the chain head. The earliest tag is delegated to
// the fallback as well, since history may be indexed from a block later than genesis.
type EthTagResolver struct {
	eth      *web3go.Client
	fallback TagResolver
}

func NewEthTagResolver(eth *web3go.Client, fallback TagResolver) *EthTagResolver {
	return &EthTagResolver{eth: eth, fallback: fallback}
}

// MustNewEthTagResolverFromViper creates a tag resolver if the full node is configured.
// Returns false if no full node url configured.
func MustNewEthTagResolverFromViper(fallback TagResolver) (*EthTagResolver, bool) {
	cfg := MustNewConfigFromViper()
	if len(cfg.URL) == 0 {
		return nil, false
	}

	return NewEthTagResolver(MustNewEthClient(cfg), fallback), true
}

// ResolveTag implements the block tag resolution, returning store.ErrNotFound if the full
// node knows no block for the tag, e.g. finalized block before the merge.
func (r *EthTagResolver) ResolveTag(ctx context.Context, tag types.BlockTag) (uint64, error) {
	switch tag {
	case types.BlockTagEarliest:
		return r.fallback.ResolveTag(ctx, tag)
	case types.BlockTagLatest, types.BlockTagPending:
		var number hexutil.Uint64
		if err := r.eth.Provider().CallContext(ctx, &number, "eth_blockNumber"); err != nil {
			return 0, errors.WithMessage(err, "failed to get block number from full node")
		}

		return r.clamp(ctx, uint64(number))
	case types.BlockTagSafe, types.BlockTagFinalized:
		var header *struct {
			Number hexutil.Uint64 `json:"number"`
		}

		err := r.eth.Provider().CallContext(ctx, &header, "eth_getBlockByNumber", tag.String(), false)
		if err != nil {
			return 0, errors.WithMessagef(err, "failed to get %v block from full node", tag)
		}

		if header == nil {
			return 0, store.ErrNotFound
		}

		return r.clamp(ctx, uint64(header.Number))
	}

	return 0, errors.Errorf("invalid block tag %v", tag)
}

// clamp bounds the block number by the latest block of the fallback.
func (r *EthTagResolver) clamp(ctx context.Context, number uint64) (uint64, error) {
	indexed, err := r.fallback.ResolveTag(ctx, types.BlockTagLatest)
	if err != nil {
		return 0, err
	}

	return min(number, indexed), nil
}
