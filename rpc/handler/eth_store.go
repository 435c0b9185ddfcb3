package handler

import (
	"context"
	"math/big"

	"github.com/Conflux-Chain/confura-evm/rpc/ethbridge"
	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	_ EthProvider = (*EthStoreHandler)(nil)

	errHeaderMissing = errors.New("block header missing")
)

// EthStoreOption is the optional settings of EthStoreHandler.
type EthStoreOption struct {
	// resolves block tags instead of the store, e.g. against a live node
	TagResolver TagResolver
	// disables some chain data types from being served
	Disabler store.StoreDisabler
}

// EthStoreHandler serves RPC chain data from the indexed store.
type EthStoreHandler struct {
	store    store.Readable
	resolver *BlockResolver
	disabler store.StoreDisabler
}

func NewEthStoreHandler(db store.Database, option ...EthStoreOption) *EthStoreHandler {
	var opt EthStoreOption
	if len(option) > 0 {
		opt = option[0]
	}

	if opt.Disabler == nil {
		opt.Disabler, _ = store.NewStoreDisabler()
	}

	return &EthStoreHandler{
		store:    db,
		resolver: NewBlockResolver(db, opt.TagResolver),
		disabler: opt.Disabler,
	}
}

func (h *EthStoreHandler) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if h.disabler.IsChainReceiptDisabled() {
		return nil, store.ErrUnsupported
	}

	filter := store.NewFilterBuilder(store.KindReceipt).WithTxHash(txHash).Build()

	srcpt, err := store.GetOne[store.StoredReceipt](ctx, h.store, filter)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to get receipt from store")
	}

	if srcpt == nil {
		logrus.WithField("txHash", txHash).Debug("Receipt not found in store")
		return nil, nil
	}

	return ethbridge.ConvertReceipt(srcpt)
}

func (h *EthStoreHandler) BlockReceipts(ctx context.Context, id *types.BlockIdentifier) ([]*types.Receipt, error) {
	if h.disabler.IsChainReceiptDisabled() {
		return nil, store.ErrUnsupported
	}

	ref, err := h.resolver.Resolve(ctx, id)
	if err != nil || ref == nil {
		return nil, err
	}

	filter := store.NewFilterBuilder(store.KindReceipt).WithBlockReference(ref).Build()

	receipts, err := store.GetAndMap(ctx, h.store, filter, ethbridge.ConvertReceipt)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to get receipts of block %v", ref)
	}

	return receipts, nil
}

// getHeader loads the header of a resolved block.
func (h *EthStoreHandler) getHeader(
	ctx context.Context, ref *types.CanonicalBlockReference,
) (*store.StoredHeader, error) {
	filter := store.NewFilterBuilder(store.KindHeader).WithBlockReference(ref).Build()

	header, err := store.GetOne[store.StoredHeader](ctx, h.store, filter)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to get header of block %v", ref)
	}

	if header == nil {
		return nil, errors.WithMessagef(errHeaderMissing, "block %v", ref)
	}

	return header, nil
}

// baseFeeOf returns the base fee of the block containing the transaction if needed to
// derive its gas price.
func (h *EthStoreHandler) baseFeeOf(ctx context.Context, stx *store.StoredTransaction) (*big.Int, error) {
	if stx.Type != types.DynamicFeeTxType && stx.Type != types.BlobTxType {
		return nil, nil
	}

	header, err := h.getHeader(ctx, types.NewCanonicalBlockReferenceByHash(stx.BlockHash))
	if err != nil {
		return nil, err
	}

	return header.BaseFee, nil
}
