package handler

import (
	"context"

	"github.com/Conflux-Chain/confura-evm/rpc/codec"
	"github.com/Conflux-Chain/confura-evm/rpc/ethbridge"
	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func (h *EthStoreHandler) BlockNumber(ctx context.Context) (*uint64, error) {
	ref, err := h.resolver.Resolve(ctx, types.BlockIdentifierFromTag(types.BlockTagLatest))
	if err != nil || ref == nil {
		return nil, err
	}

	number, _ := ref.Number()
	return &number, nil
}

func (h *EthStoreHandler) HeaderByID(ctx context.Context, id *types.BlockIdentifier) (*types.Header, error) {
	if h.disabler.IsChainBlockDisabled() {
		return nil, store.ErrUnsupported
	}

	ref, err := h.resolver.Resolve(ctx, id)
	if err != nil || ref == nil {
		return nil, err
	}

	header, err := h.getHeader(ctx, ref)
	if err != nil {
		return nil, err
	}

	return ethbridge.ConvertHeader(header)
}

func (h *EthStoreHandler) BlockTransactionCount(ctx context.Context, id *types.BlockIdentifier) (*uint64, error) {
	if h.disabler.IsChainTxnDisabled() {
		return nil, store.ErrUnsupported
	}

	ref, err := h.resolver.Resolve(ctx, id)
	if err != nil || ref == nil {
		return nil, err
	}

	stxs, err := h.getStoredTransactions(ctx, ref)
	if err != nil {
		return nil, err
	}

	count := uint64(len(stxs))
	return &count, nil
}

// BlockByID assembles the block from its header, transactions and withdrawals which are
// loaded concurrently. Any failure fails the whole block.
func (h *EthStoreHandler) BlockByID(ctx context.Context, id *types.BlockIdentifier, fullTx bool) (*types.Block, error) {
	if h.disabler.IsChainBlockDisabled() || h.disabler.IsChainTxnDisabled() {
		return nil, store.ErrUnsupported
	}

	ref, err := h.resolver.Resolve(ctx, id)
	if err != nil || ref == nil {
		return nil, err
	}

	var (
		header *store.StoredHeader
		stxs   []*store.StoredTransaction
		swds   []*store.StoredWithdrawal
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		header, err = h.getHeader(gctx, ref)
		return err
	})

	g.Go(func() (err error) {
		stxs, err = h.getStoredTransactions(gctx, ref)
		return err
	})

	g.Go(func() error {
		filter := store.NewFilterBuilder(store.KindWithdrawal).WithBlockReference(ref).Build()

		var err error
		if swds, err = store.Get[store.StoredWithdrawal](gctx, h.store, filter); err != nil {
			return errors.WithMessagef(err, "failed to get withdrawals of block %v", ref)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assembleBlock(header, stxs, swds, fullTx)
}

func assembleBlock(
	sheader *store.StoredHeader,
	stxs []*store.StoredTransaction,
	swds []*store.StoredWithdrawal,
	fullTx bool,
) (*types.Block, error) {
	header, err := ethbridge.ConvertHeader(sheader)
	if err != nil {
		return nil, err
	}

	txs, err := convertTransactions(stxs, sheader)
	if err != nil {
		return nil, err
	}

	block := &types.Block{
		Header:       *header,
		Transactions: types.NewBlockTransactionsFull(txs),
		Uncles:       []common.Hash{},
	}

	// withdrawals list only exists since shanghai
	if sheader.WithdrawalsHash != nil {
		block.Withdrawals = make([]*types.Withdrawal, 0, len(swds))

		for _, swd := range swds {
			wd, err := ethbridge.ConvertWithdrawal(swd)
			if err != nil {
				return nil, err
			}

			block.Withdrawals = append(block.Withdrawals, wd)
		}
	}

	raw, err := codec.EncodeBlock(block)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to encode block for size")
	}

	block.Size = hexutil.Uint64(len(raw))

	if !fullTx {
		block.Transactions = types.NewBlockTransactionHashes(block.Transactions.Hashes())
	}

	return block, nil
}
