package rpc

import (
	"context"

	"github.com/Conflux-Chain/confura-evm/rpc/codec"
	"github.com/Conflux-Chain/confura-evm/rpc/handler"
	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// debugAPI provides the canonical encodings of indexed chain data. An absent object
// yields null rather than an error.
type debugAPI struct {
	provider handler.EthProvider
}

func newDebugAPI(provider handler.EthProvider) *debugAPI {
	return &debugAPI{provider: provider}
}

// GetRawTransaction returns the EIP-2718 envelope of the transaction.
func (api *debugAPI) GetRawTransaction(ctx context.Context, hash common.Hash) (*hexutil.Bytes, error) {
	tx, err := api.provider.TransactionByHash(ctx, hash)
	if err != nil || tx == nil {
		return nil, err
	}

	raw, err := codec.EncodeTransaction(tx)
	if err != nil {
		return nil, err
	}

	return (*hexutil.Bytes)(&raw), nil
}

// GetRawTransactions returns the EIP-2718 envelopes of all transactions in the block.
func (api *debugAPI) GetRawTransactions(
	ctx context.Context, blockNrOrHash types.BlockNumberOrHash,
) ([]hexutil.Bytes, error) {
	id, err := types.NewBlockIdentifierFromBlockNumberOrHash(blockNrOrHash)
	if err != nil {
		return nil, err
	}

	txs, err := api.provider.BlockTransactions(ctx, id)
	if err != nil || txs == nil {
		return nil, err
	}

	result := make([]hexutil.Bytes, 0, len(txs))
	for i, tx := range txs {
		raw, err := codec.EncodeTransaction(tx)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to encode tx #%v", i)
		}

		result = append(result, raw)
	}

	return result, nil
}

// GetRawReceipts returns the EIP-2718 receipt encodings of all transactions in the block.
func (api *debugAPI) GetRawReceipts(
	ctx context.Context, blockNrOrHash types.BlockNumberOrHash,
) ([]hexutil.Bytes, error) {
	id, err := types.NewBlockIdentifierFromBlockNumberOrHash(blockNrOrHash)
	if err != nil {
		return nil, err
	}

	receipts, err := api.provider.BlockReceipts(ctx, id)
	if err != nil || receipts == nil {
		return nil, err
	}

	result := make([]hexutil.Bytes, 0, len(receipts))
	for i, receipt := range receipts {
		raw, err := codec.EncodeReceipt(receipt)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to encode receipt #%v", i)
		}

		result = append(result, raw)
	}

	return result, nil
}

// GetRawHeader returns the RLP encoding of the block header.
func (api *debugAPI) GetRawHeader(
	ctx context.Context, blockNrOrHash types.BlockNumberOrHash,
) (*hexutil.Bytes, error) {
	id, err := types.NewBlockIdentifierFromBlockNumberOrHash(blockNrOrHash)
	if err != nil {
		return nil, err
	}

	header, err := api.provider.HeaderByID(ctx, id)
	if err != nil || header == nil {
		return nil, err
	}

	raw, err := codec.EncodeHeader(header)
	if err != nil {
		return nil, err
	}

	return (*hexutil.Bytes)(&raw), nil
}

// GetRawBlock returns the RLP encoding of the block.
func (api *debugAPI) GetRawBlock(
	ctx context.Context, blockNrOrHash types.BlockNumberOrHash,
) (*hexutil.Bytes, error) {
	id, err := types.NewBlockIdentifierFromBlockNumberOrHash(blockNrOrHash)
	if err != nil {
		return nil, err
	}

	block, err := api.provider.BlockByID(ctx, id, true)
	if err != nil || block == nil {
		return nil, err
	}

	raw, err := codec.EncodeBlock(block)
	if err != nil {
		return nil, err
	}

	return (*hexutil.Bytes)(&raw), nil
}
