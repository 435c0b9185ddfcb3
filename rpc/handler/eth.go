package handler

import (
	"context"

	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common"
)

// ReceiptProvider provides transaction receipts.
type ReceiptProvider interface {
	// TransactionReceipt returns the receipt of the transaction, or nil if not found.
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	// BlockReceipts returns the receipts of the block in transaction index order. It returns
	// nil if the block does not exist, and an empty slice if the block has no transactions.
	BlockReceipts(ctx context.Context, id *types.BlockIdentifier) ([]*types.Receipt, error)
}

// TransactionProvider provides transactions.
type TransactionProvider interface {
	// TransactionByHash returns the transaction, or nil if not found.
	TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, error)
	// TransactionByBlockAndIndex returns the transaction at the index of the block, or nil if
	// either the block or the index does not exist.
	TransactionByBlockAndIndex(ctx context.Context, id *types.BlockIdentifier, index uint64) (*types.Transaction, error)
	// BlockTransactions returns the transactions of the block in index order. It returns nil
	// if the block does not exist, and an empty slice if the block has no transactions.
	BlockTransactions(ctx context.Context, id *types.BlockIdentifier) ([]*types.Transaction, error)
}

// BlockProvider provides blocks and headers.
type BlockProvider interface {
	// BlockNumber returns the latest block number, or nil if no block exists.
	BlockNumber(ctx context.Context) (*uint64, error)
	HeaderByID(ctx context.Context, id *types.BlockIdentifier) (*types.Header, error)
	BlockByID(ctx context.Context, id *types.BlockIdentifier, fullTx bool) (*types.Block, error)
	// BlockTransactionCount returns the number of transactions in the block, or nil if
	// the block does not exist.
	BlockTransactionCount(ctx context.Context, id *types.BlockIdentifier) (*uint64, error)
}

// EthProvider provides all indexed chain data served by the eth and debug namespaces.
type EthProvider interface {
	ReceiptProvider
	TransactionProvider
	BlockProvider
}
