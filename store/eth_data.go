package store

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// StoredHeader is the indexed projection of a block header.
type StoredHeader struct {
	Hash        common.Hash
	ParentHash  common.Hash
	UncleHash   common.Hash
	Coinbase    common.Address
	Root        common.Hash
	TxHash      common.Hash
	ReceiptHash common.Hash
	Bloom       gethTypes.Bloom
	Difficulty  *big.Int
	Number      uint64
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   common.Hash
	Nonce       uint64

	// fork dependent fields in fork order, nil if absent
	BaseFee          *big.Int     `rlp:"optional"`
	WithdrawalsHash  *common.Hash `rlp:"optional"`
	BlobGasUsed      *uint64      `rlp:"optional"`
	ExcessBlobGas    *uint64      `rlp:"optional"`
	ParentBeaconRoot *common.Hash `rlp:"optional"`
}

// StoredTransaction is the indexed projection of a transaction at its inclusion position.
//
// Note, fee fields not applicable to the transaction type may be decoded as zero instead
// of nil from RLP.
type StoredTransaction struct {
	Hash             common.Hash
	BlockHash        common.Hash
	BlockNumber      uint64
	TransactionIndex uint64

	Type    uint8
	ChainID *big.Int
	Nonce   uint64
	From    common.Address
	To      *common.Address `rlp:"nil"`
	Value   *big.Int
	Gas     uint64
	Input   []byte

	// legacy and access list transactions
	GasPrice *big.Int
	// dynamic fee and blob transactions
	GasTipCap *big.Int
	GasFeeCap *big.Int
	// blob transactions
	BlobGasFeeCap *big.Int
	BlobHashes    []common.Hash

	AccessList gethTypes.AccessList

	V *big.Int
	R *big.Int
	S *big.Int
}

// StoredLog is the indexed projection of a receipt log.
type StoredLog struct {
	Address  common.Address
	Topics   []common.Hash
	Data     []byte
	LogIndex uint64
}

// StoredReceipt is the indexed projection of a transaction receipt.
type StoredReceipt struct {
	TransactionHash  common.Hash
	BlockHash        common.Hash
	BlockNumber      uint64
	TransactionIndex uint64

	Type uint8
	// pre-byzantium receipts carry the intermediate state root instead of status
	PostState         []byte
	Status            uint64
	CumulativeGasUsed uint64
	GasUsed           uint64
	Bloom             gethTypes.Bloom
	Logs              []*StoredLog

	From              common.Address
	To                *common.Address `rlp:"nil"`
	ContractAddress   *common.Address `rlp:"nil"`
	EffectiveGasPrice *big.Int
	BlobGasUsed       uint64
	BlobGasPrice      *big.Int
}

// StoredWithdrawal is the indexed projection of a consensus layer withdrawal.
type StoredWithdrawal struct {
	BlockHash   common.Hash
	BlockNumber uint64
	// position within the block withdrawals list
	Position uint64

	Index     uint64
	Validator uint64
	Address   common.Address
	Amount    uint64
}

// BlockData wraps the indexed data of a single block as written by the indexer.
type BlockData struct {
	Header       *StoredHeader
	Transactions []*StoredTransaction
	Receipts     []*StoredReceipt
	Withdrawals  []*StoredWithdrawal
}

func (data *BlockData) Number() uint64 {
	return data.Header.Number
}

func (data *BlockData) Hash() common.Hash {
	return data.Header.Hash
}

// IsContinuousTo checks if this block is continuous to the previous block.
func (current *BlockData) IsContinuousTo(prev *BlockData) (continuous bool, desc string) {
	if current.Header.ParentHash != prev.Header.Hash {
		desc = fmt.Sprintf(
			"parent hash not matched, expect %v got %v", prev.Header.Hash, current.Header.ParentHash,
		)
		return
	}

	if prev.Number()+1 != current.Number() {
		desc = fmt.Sprintf(
			"block number not continuous, expect %v got %v", prev.Number()+1, current.Number(),
		)
		return
	}

	return true, ""
}

// Validate checks that every record of the block points back to the block header at
// its own position, and that transactions and receipts pair up.
func (data *BlockData) Validate() error {
	if data.Header == nil {
		return errors.WithMessage(ErrInconsistentBlockRecord, "header missing")
	}

	number, hash := data.Number(), data.Hash()

	if len(data.Receipts) > 0 && len(data.Receipts) != len(data.Transactions) {
		return errors.WithMessagef(
			ErrInconsistentBlockRecord, "%v receipts for %v txs in block #%v",
			len(data.Receipts), len(data.Transactions), number,
		)
	}

	for i, tx := range data.Transactions {
		if tx.BlockHash != hash || tx.BlockNumber != number || tx.TransactionIndex != uint64(i) {
			return errors.WithMessagef(
				ErrInconsistentBlockRecord, "tx %v mismatch for block #%v at index %v",
				tx.Hash, number, i,
			)
		}
	}

	for i, rcpt := range data.Receipts {
		switch {
		case rcpt.BlockHash != hash || rcpt.BlockNumber != number:
			return errors.WithMessagef(
				ErrInconsistentBlockRecord, "receipt block mismatch for block #%v at index %v", number, i,
			)
		case rcpt.TransactionIndex != uint64(i) || rcpt.TransactionHash != data.Transactions[i].Hash:
			return errors.WithMessagef(
				ErrInconsistentBlockRecord, "receipt %v mismatch for block #%v at index %v",
				rcpt.TransactionHash, number, i,
			)
		}
	}

	for i, wd := range data.Withdrawals {
		if wd.BlockHash != hash || wd.BlockNumber != number || wd.Position != uint64(i) {
			return errors.WithMessagef(
				ErrInconsistentBlockRecord, "withdrawal mismatch for block #%v at position %v", number, i,
			)
		}
	}

	return nil
}
