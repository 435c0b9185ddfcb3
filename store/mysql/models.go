package mysql

import (
	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/util"
	"github.com/pkg/errors"
)

const defaultBatchSizeInsert = 500

var allModels = []any{
	&block{},
	&transaction{},
	&withdrawal{},
}

// block holds the RLP encoded header of a block.
type block struct {
	ID          uint64
	BlockNumber uint64 `gorm:"not null;uniqueIndex"`
	HashId      uint64 `gorm:"not null;index"` // as an index, number is better than long string
	Hash        string `gorm:"size:66;not null"`
	RawData     []byte `gorm:"type:MEDIUMBLOB;not null"`
	RawDataLen  uint64 `gorm:"not null"`
}

func (block) TableName() string {
	return "blocks"
}

func newBlock(header *store.StoredHeader) (*block, error) {
	rawData, err := util.MarshalRLP(header)
	if err != nil {
		return nil, err
	}

	return &block{
		BlockNumber: header.Number,
		HashId:      util.GetShortIdOfHash(header.Hash),
		Hash:        header.Hash.Hex(),
		RawData:     rawData,
		RawDataLen:  uint64(len(rawData)),
	}, nil
}

func (b *block) toHeader() (*store.StoredHeader, error) {
	var header store.StoredHeader
	if err := util.UnmarshalRLP(b.RawData, &header); err != nil {
		return nil, errors.WithMessagef(err, "corrupted header of block #%v", b.BlockNumber)
	}

	return &header, nil
}

// transaction holds the RLP encoded transaction and receipt at the same position.
type transaction struct {
	ID                uint64
	BlockNumber       uint64 `gorm:"not null;index:idx_txs_block_pos,priority:1"`
	TxIndex           uint64 `gorm:"not null;index:idx_txs_block_pos,priority:2"`
	BlockHashId       uint64 `gorm:"not null;index"`
	BlockHash         string `gorm:"size:66;not null"`
	HashId            uint64 `gorm:"not null;index"`
	Hash              string `gorm:"size:66;not null"`
	TxRawData         []byte `gorm:"type:MEDIUMBLOB"`
	TxRawDataLen      uint64 `gorm:"not null"`
	ReceiptRawData    []byte `gorm:"type:MEDIUMBLOB"`
	ReceiptRawDataLen uint64 `gorm:"not null"`
	NumReceiptLogs    int    `gorm:"not null"`
}

func (transaction) TableName() string {
	return "txs"
}

// newTx creates a row from the transaction and its receipt, which is nil if the receipts
// of the block are not indexed.
func newTx(tx *store.StoredTransaction, receipt *store.StoredReceipt) (*transaction, error) {
	txRawData, err := util.MarshalRLP(tx)
	if err != nil {
		return nil, err
	}

	result := &transaction{
		BlockNumber:  tx.BlockNumber,
		TxIndex:      tx.TransactionIndex,
		BlockHashId:  util.GetShortIdOfHash(tx.BlockHash),
		BlockHash:    tx.BlockHash.Hex(),
		HashId:       util.GetShortIdOfHash(tx.Hash),
		Hash:         tx.Hash.Hex(),
		TxRawData:    txRawData,
		TxRawDataLen: uint64(len(txRawData)),
	}

	if receipt != nil {
		if result.ReceiptRawData, err = util.MarshalRLP(receipt); err != nil {
			return nil, err
		}

		result.ReceiptRawDataLen = uint64(len(result.ReceiptRawData))
		result.NumReceiptLogs = len(receipt.Logs)
	}

	return result, nil
}

func (tx *transaction) toTransaction() (*store.StoredTransaction, error) {
	var stx store.StoredTransaction
	if err := util.UnmarshalRLP(tx.TxRawData, &stx); err != nil {
		return nil, errors.WithMessagef(err, "corrupted tx %v", tx.Hash)
	}

	return &stx, nil
}

func (tx *transaction) toReceipt() (*store.StoredReceipt, error) {
	var rcpt store.StoredReceipt
	if err := util.UnmarshalRLP(tx.ReceiptRawData, &rcpt); err != nil {
		return nil, errors.WithMessagef(err, "corrupted receipt of tx %v", tx.Hash)
	}

	return &rcpt, nil
}

// withdrawal holds the RLP encoded withdrawal at its position in block.
type withdrawal struct {
	ID          uint64
	BlockNumber uint64 `gorm:"not null;index:idx_withdrawals_block_pos,priority:1"`
	Position    uint64 `gorm:"not null;index:idx_withdrawals_block_pos,priority:2"`
	BlockHashId uint64 `gorm:"not null;index"`
	BlockHash   string `gorm:"size:66;not null"`
	RawData     []byte `gorm:"type:MEDIUMBLOB;not null"`
}

func (withdrawal) TableName() string {
	return "withdrawals"
}

func newWithdrawal(wd *store.StoredWithdrawal) (*withdrawal, error) {
	rawData, err := util.MarshalRLP(wd)
	if err != nil {
		return nil, err
	}

	return &withdrawal{
		BlockNumber: wd.BlockNumber,
		Position:    wd.Position,
		BlockHashId: util.GetShortIdOfHash(wd.BlockHash),
		BlockHash:   wd.BlockHash.Hex(),
		RawData:     rawData,
	}, nil
}

func (wd *withdrawal) toWithdrawal() (*store.StoredWithdrawal, error) {
	var swd store.StoredWithdrawal
	if err := util.UnmarshalRLP(wd.RawData, &swd); err != nil {
		return nil, errors.WithMessagef(err, "corrupted withdrawal #%v of block #%v", wd.Position, wd.BlockNumber)
	}

	return &swd, nil
}
