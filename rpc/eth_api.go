package rpc

import (
	"context"

	"github.com/Conflux-Chain/confura-evm/rpc/handler"
	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

var errNoBlockIndexed = errors.New("no block indexed yet")

// ethAPI provides Ethereum relative API over indexed chain data.
type ethAPI struct {
	provider handler.EthProvider
	chainId  hexutil.Uint64
}

func newEthAPI(provider handler.EthProvider, chainId uint64) *ethAPI {
	return &ethAPI{provider: provider, chainId: hexutil.Uint64(chainId)}
}

// ChainId returns the chainID value for transaction replay protection.
func (api *ethAPI) ChainId(ctx context.Context) (hexutil.Uint64, error) {
	return api.chainId, nil
}

// BlockNumber returns the number of the latest indexed block.
func (api *ethAPI) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	bn, err := api.provider.BlockNumber(ctx)
	if err != nil {
		return 0, err
	}

	if bn == nil {
		return 0, errNoBlockIndexed
	}

	return hexutil.Uint64(*bn), nil
}

// GetBlockByHash returns the requested block. When fullTx is true all transactions in
// the block are returned in full detail, otherwise only the transaction hash is returned.
func (api *ethAPI) GetBlockByHash(ctx context.Context, blockHash common.Hash, fullTx bool) (*types.Block, error) {
	return api.provider.BlockByID(ctx, types.BlockIdentifierFromHash(blockHash), fullTx)
}

// GetBlockByNumber returns the requested block by number or tag.
func (api *ethAPI) GetBlockByNumber(
	ctx context.Context, blockNum types.BlockNumber, fullTx bool,
) (*types.Block, error) {
	id, err := types.NewBlockIdentifierFromBlockNumber(blockNum)
	if err != nil {
		return nil, err
	}

	return api.provider.BlockByID(ctx, id, fullTx)
}

// GetHeaderByHash returns the requested header by hash.
func (api *ethAPI) GetHeaderByHash(ctx context.Context, blockHash common.Hash) (*types.Header, error) {
	return api.provider.HeaderByID(ctx, types.BlockIdentifierFromHash(blockHash))
}

// GetHeaderByNumber returns the requested header by number or tag.
func (api *ethAPI) GetHeaderByNumber(ctx context.Context, blockNum types.BlockNumber) (*types.Header, error) {
	id, err := types.NewBlockIdentifierFromBlockNumber(blockNum)
	if err != nil {
		return nil, err
	}

	return api.provider.HeaderByID(ctx, id)
}

// GetTransactionByHash returns the transaction with the given hash.
func (api *ethAPI) GetTransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, error) {
	return api.provider.TransactionByHash(ctx, hash)
}

// GetTransactionReceipt returns the receipt of a transaction by transaction hash.
func (api *ethAPI) GetTransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return api.provider.TransactionReceipt(ctx, txHash)
}

// GetBlockReceipts returns the receipts of a given block number or hash.
func (api *ethAPI) GetBlockReceipts(
	ctx context.Context, blockNrOrHash types.BlockNumberOrHash,
) ([]*types.Receipt, error) {
	id, err := types.NewBlockIdentifierFromBlockNumberOrHash(blockNrOrHash)
	if err != nil {
		return nil, err
	}

	return api.provider.BlockReceipts(ctx, id)
}

// GetBlockTransactionCountByHash returns the total number of transactions in the given block.
func (api *ethAPI) GetBlockTransactionCountByHash(ctx context.Context, blockHash common.Hash) (*hexutil.Uint64, error) {
	count, err := api.provider.BlockTransactionCount(ctx, types.BlockIdentifierFromHash(blockHash))
	return (*hexutil.Uint64)(count), err
}

// GetBlockTransactionCountByNumber returns the number of transactions in the block with the given
// block number.
func (api *ethAPI) GetBlockTransactionCountByNumber(
	ctx context.Context, blockNum types.BlockNumber,
) (*hexutil.Uint64, error) {
	id, err := types.NewBlockIdentifierFromBlockNumber(blockNum)
	if err != nil {
		return nil, err
	}

	count, err := api.provider.BlockTransactionCount(ctx, id)
	return (*hexutil.Uint64)(count), err
}

// GetTransactionByBlockHashAndIndex returns information about a transaction by block hash and
// transaction index position.
func (api *ethAPI) GetTransactionByBlockHashAndIndex(
	ctx context.Context, hash common.Hash, index hexutil.Uint,
) (*types.Transaction, error) {
	return api.provider.TransactionByBlockAndIndex(ctx, types.BlockIdentifierFromHash(hash), uint64(index))
}

// GetTransactionByBlockNumberAndIndex returns information about a transaction by block number and
// transaction index position.
func (api *ethAPI) GetTransactionByBlockNumberAndIndex(
	ctx context.Context, blockNum types.BlockNumber, index hexutil.Uint,
) (*types.Transaction, error) {
	id, err := types.NewBlockIdentifierFromBlockNumber(blockNum)
	if err != nil {
		return nil, err
	}

	return api.provider.TransactionByBlockAndIndex(ctx, id, uint64(index))
}

// GetUncleCountByBlockHash returns the number of uncles in the given block, which is always
// zero if the block exists.
func (api *ethAPI) GetUncleCountByBlockHash(ctx context.Context, hash common.Hash) (*hexutil.Uint64, error) {
	return api.uncleCount(ctx, types.BlockIdentifierFromHash(hash))
}

// GetUncleCountByBlockNumber returns the number of uncles in the given block, which is always
// zero if the block exists.
func (api *ethAPI) GetUncleCountByBlockNumber(
	ctx context.Context, blockNum types.BlockNumber,
) (*hexutil.Uint64, error) {
	id, err := types.NewBlockIdentifierFromBlockNumber(blockNum)
	if err != nil {
		return nil, err
	}

	return api.uncleCount(ctx, id)
}

func (api *ethAPI) uncleCount(ctx context.Context, id *types.BlockIdentifier) (*hexutil.Uint64, error) {
	header, err := api.provider.HeaderByID(ctx, id)
	if err != nil || header == nil {
		return nil, err
	}

	return new(hexutil.Uint64), nil
}
