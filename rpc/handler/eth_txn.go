package handler

import (
	"context"

	"github.com/Conflux-Chain/confura-evm/rpc/ethbridge"
	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func (h *EthStoreHandler) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, error) {
	if h.disabler.IsChainTxnDisabled() {
		return nil, store.ErrUnsupported
	}

	filter := store.NewFilterBuilder(store.KindTransaction).WithTxHash(txHash).Build()

	return h.getTransaction(ctx, filter)
}

func (h *EthStoreHandler) TransactionByBlockAndIndex(
	ctx context.Context, id *types.BlockIdentifier, index uint64,
) (*types.Transaction, error) {
	if h.disabler.IsChainTxnDisabled() {
		return nil, store.ErrUnsupported
	}

	ref, err := h.resolver.Resolve(ctx, id)
	if err != nil || ref == nil {
		return nil, err
	}

	filter := store.NewFilterBuilder(store.KindTransaction).
		WithBlockReference(ref).
		WithTxIndex(index).
		Build()

	return h.getTransaction(ctx, filter)
}

func (h *EthStoreHandler) getTransaction(ctx context.Context, filter store.Filter) (*types.Transaction, error) {
	stx, err := store.GetOne[store.StoredTransaction](ctx, h.store, filter)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to get transaction from store")
	}

	if stx == nil {
		logrus.WithField("filter", filter).Debug("Transaction not found in store")
		return nil, nil
	}

	baseFee, err := h.baseFeeOf(ctx, stx)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to get base fee for tx %v", stx.Hash)
	}

	return ethbridge.ConvertTransaction(stx, baseFee)
}

func (h *EthStoreHandler) BlockTransactions(ctx context.Context, id *types.BlockIdentifier) ([]*types.Transaction, error) {
	if h.disabler.IsChainTxnDisabled() {
		return nil, store.ErrUnsupported
	}

	ref, err := h.resolver.Resolve(ctx, id)
	if err != nil || ref == nil {
		return nil, err
	}

	var (
		header *store.StoredHeader
		stxs   []*store.StoredTransaction
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

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return convertTransactions(stxs, header)
}

func (h *EthStoreHandler) getStoredTransactions(
	ctx context.Context, ref *types.CanonicalBlockReference,
) ([]*store.StoredTransaction, error) {
	filter := store.NewFilterBuilder(store.KindTransaction).WithBlockReference(ref).Build()

	stxs, err := store.Get[store.StoredTransaction](ctx, h.store, filter)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to get transactions of block %v", ref)
	}

	return stxs, nil
}

func convertTransactions(stxs []*store.StoredTransaction, header *store.StoredHeader) ([]*types.Transaction, error) {
	txs := make([]*types.Transaction, 0, len(stxs))
	for _, stx := range stxs {
		tx, err := ethbridge.ConvertTransaction(stx, header.BaseFee)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to convert tx %v", stx.Hash)
		}

		txs = append(txs, tx)
	}

	return txs, nil
}
