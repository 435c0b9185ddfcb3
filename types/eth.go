package types

import (
	"bytes"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// Transaction envelope types.
const (
	LegacyTxType     = gethTypes.LegacyTxType
	AccessListTxType = gethTypes.AccessListTxType
	DynamicFeeTxType = gethTypes.DynamicFeeTxType
	BlobTxType       = gethTypes.BlobTxType
)

// AccessTuple is the element type of an EIP-2930 access list.
type AccessTuple = gethTypes.AccessTuple

// AccessList is an EIP-2930 access list.
type AccessList = gethTypes.AccessList

// Log is a contract event emitted by a transaction, in JSON-RPC layout.
type Log struct {
	Address          common.Address `json:"address"`
	Topics           []common.Hash  `json:"topics"`
	Data             hexutil.Bytes  `json:"data"`
	BlockNumber      hexutil.Uint64 `json:"blockNumber"`
	BlockHash        common.Hash    `json:"blockHash"`
	TransactionHash  common.Hash    `json:"transactionHash"`
	TransactionIndex hexutil.Uint64 `json:"transactionIndex"`
	LogIndex         hexutil.Uint64 `json:"logIndex"`
	Removed          bool           `json:"removed"`
}

// Receipt is the outcome of a transaction, in JSON-RPC layout.
type Receipt struct {
	Type              hexutil.Uint64  `json:"type"`
	Root              hexutil.Bytes   `json:"root,omitempty"`
	Status            *hexutil.Uint64 `json:"status,omitempty"`
	CumulativeGasUsed hexutil.Uint64  `json:"cumulativeGasUsed"`
	LogsBloom         gethTypes.Bloom `json:"logsBloom"`
	Logs              []*Log          `json:"logs"`

	TransactionHash   common.Hash     `json:"transactionHash"`
	TransactionIndex  hexutil.Uint64  `json:"transactionIndex"`
	BlockHash         common.Hash     `json:"blockHash"`
	BlockNumber       hexutil.Uint64  `json:"blockNumber"`
	From              common.Address  `json:"from"`
	To                *common.Address `json:"to"`
	ContractAddress   *common.Address `json:"contractAddress"`
	GasUsed           hexutil.Uint64  `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big    `json:"effectiveGasPrice"`
	BlobGasUsed       *hexutil.Uint64 `json:"blobGasUsed,omitempty"`
	BlobGasPrice      *hexutil.Big    `json:"blobGasPrice,omitempty"`
}

// Transaction is a signed transaction with its inclusion position, in JSON-RPC layout.
type Transaction struct {
	BlockHash        *common.Hash    `json:"blockHash"`
	BlockNumber      *hexutil.Big    `json:"blockNumber"`
	TransactionIndex *hexutil.Uint64 `json:"transactionIndex"`

	Hash                 common.Hash     `json:"hash"`
	Type                 hexutil.Uint64  `json:"type"`
	ChainID              *hexutil.Big    `json:"chainId,omitempty"`
	Nonce                hexutil.Uint64  `json:"nonce"`
	From                 common.Address  `json:"from"`
	To                   *common.Address `json:"to"`
	Value                *hexutil.Big    `json:"value"`
	Gas                  hexutil.Uint64  `json:"gas"`
	GasPrice             *hexutil.Big    `json:"gasPrice"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerBlobGas     *hexutil.Big    `json:"maxFeePerBlobGas,omitempty"`
	BlobVersionedHashes  []common.Hash   `json:"blobVersionedHashes,omitempty"`
	Accesses             *AccessList     `json:"accessList,omitempty"`
	Input                hexutil.Bytes   `json:"input"`

	V       *hexutil.Big    `json:"v"`
	R       *hexutil.Big    `json:"r"`
	S       *hexutil.Big    `json:"s"`
	YParity *hexutil.Uint64 `json:"yParity,omitempty"`
}

// Header is a block header, in JSON-RPC layout.
type Header struct {
	Hash             common.Hash          `json:"hash"`
	ParentHash       common.Hash          `json:"parentHash"`
	Sha3Uncles       common.Hash          `json:"sha3Uncles"`
	Miner            common.Address       `json:"miner"`
	StateRoot        common.Hash          `json:"stateRoot"`
	TransactionsRoot common.Hash          `json:"transactionsRoot"`
	ReceiptsRoot     common.Hash          `json:"receiptsRoot"`
	LogsBloom        gethTypes.Bloom      `json:"logsBloom"`
	Difficulty       *hexutil.Big         `json:"difficulty"`
	Number           *hexutil.Big         `json:"number"`
	GasLimit         hexutil.Uint64       `json:"gasLimit"`
	GasUsed          hexutil.Uint64       `json:"gasUsed"`
	Timestamp        hexutil.Uint64       `json:"timestamp"`
	ExtraData        hexutil.Bytes        `json:"extraData"`
	MixHash          common.Hash          `json:"mixHash"`
	Nonce            gethTypes.BlockNonce `json:"nonce"`

	BaseFeePerGas         *hexutil.Big    `json:"baseFeePerGas,omitempty"`
	WithdrawalsRoot       *common.Hash    `json:"withdrawalsRoot,omitempty"`
	BlobGasUsed           *hexutil.Uint64 `json:"blobGasUsed,omitempty"`
	ExcessBlobGas         *hexutil.Uint64 `json:"excessBlobGas,omitempty"`
	ParentBeaconBlockRoot *common.Hash    `json:"parentBeaconBlockRoot,omitempty"`
}

// Withdrawal is a validator withdrawal from the consensus layer, in JSON-RPC layout.
type Withdrawal struct {
	Index     hexutil.Uint64 `json:"index"`
	Validator hexutil.Uint64 `json:"validatorIndex"`
	Address   common.Address `json:"address"`
	Amount    hexutil.Uint64 `json:"amount"`
}

// Block is a block with either transaction hashes or full transactions, in JSON-RPC layout.
type Block struct {
	Header

	Size         hexutil.Uint64    `json:"size"`
	Transactions BlockTransactions `json:"transactions"`
	Uncles       []common.Hash     `json:"uncles"`
	Withdrawals  []*Withdrawal     `json:"withdrawals,omitempty"`
}

// BlockTransactions holds the transactions of a block, either as hashes or as full objects.
type BlockTransactions struct {
	hashes []common.Hash
	full   []*Transaction
}

func NewBlockTransactionHashes(hashes []common.Hash) BlockTransactions {
	if hashes == nil {
		hashes = []common.Hash{}
	}

	return BlockTransactions{hashes: hashes}
}

func NewBlockTransactionsFull(txs []*Transaction) BlockTransactions {
	if txs == nil {
		txs = []*Transaction{}
	}

	return BlockTransactions{full: txs}
}

// IsFull checks if full transaction objects are held.
func (bt BlockTransactions) IsFull() bool {
	return bt.full != nil
}

func (bt BlockTransactions) Full() []*Transaction {
	return bt.full
}

// Hashes returns the transaction hashes, whether full objects or hashes are held.
func (bt BlockTransactions) Hashes() []common.Hash {
	if bt.full == nil {
		return bt.hashes
	}

	hashes := make([]common.Hash, 0, len(bt.full))
	for _, tx := range bt.full {
		hashes = append(hashes, tx.Hash)
	}

	return hashes
}

func (bt BlockTransactions) Len() int {
	if bt.full != nil {
		return len(bt.full)
	}

	return len(bt.hashes)
}

func (bt BlockTransactions) MarshalJSON() ([]byte, error) {
	if bt.full != nil {
		return json.Marshal(bt.full)
	}

	if bt.hashes == nil {
		return []byte("[]"), nil
	}

	return json.Marshal(bt.hashes)
}

func (bt *BlockTransactions) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.WithMessage(err, "transactions must be an array")
	}

	if len(items) == 0 || !bytes.HasPrefix(bytes.TrimSpace(items[0]), []byte("{")) {
		var hashes []common.Hash
		if err := json.Unmarshal(data, &hashes); err != nil {
			return err
		}

		*bt = NewBlockTransactionHashes(hashes)
		return nil
	}

	var txs []*Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return err
	}

	*bt = NewBlockTransactionsFull(txs)
	return nil
}
