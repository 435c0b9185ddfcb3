package test

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/ethereum/go-ethereum/common"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
)

const (
	// well known development key, never use it on a public network
	devPrivateKeyHex = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

	DefaultChainID = 1263227476
)

var (
	DefaultBaseFee = big.NewInt(7 * params.GWei)

	transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	tokenAddress  = common.HexToAddress("0x7f0d15c7faae65896648c8273b6d7e43f58fa842")
	recipient     = common.HexToAddress("0x2e0f0f3f8a3c48ed3cb0cd7f9f7cbb3bd84e8e6b")
)

// Forks controls which fork dependent header fields the built blocks carry.
type Forks struct {
	Byzantium bool // status instead of post state in receipts
	London    bool // base fee
	Shanghai  bool // withdrawals
	Cancun    bool // blob gas
}

var LatestForks = Forks{Byzantium: true, London: true, Shanghai: true, Cancun: true}

// Block holds the canonical chain objects of a built block along with its indexed data.
type Block struct {
	Data *store.BlockData

	Header      *gethTypes.Header
	Txs         gethTypes.Transactions
	Receipts    gethTypes.Receipts
	Withdrawals gethTypes.Withdrawals
}

// ChainBuilder builds continuous blocks with really signed transactions, so that their
// canonical encodings can be checked against the ones served from the indexed data.
type ChainBuilder struct {
	ChainID *big.Int
	Forks   Forks

	key    *ecdsa.PrivateKey
	signer gethTypes.Signer
	sender common.Address
	nonce  uint64

	next    uint64
	parent  common.Hash
	wdIndex uint64

	Blocks []*Block
}

// NewChainBuilder creates a builder whose first block is of the specified number.
func NewChainBuilder(startNumber uint64) *ChainBuilder {
	key, err := crypto.HexToECDSA(devPrivateKeyHex)
	if err != nil {
		panic(err)
	}

	chainID := big.NewInt(DefaultChainID)

	return &ChainBuilder{
		ChainID: chainID,
		Forks:   LatestForks,
		key:     key,
		signer:  gethTypes.LatestSignerForChainID(chainID),
		sender:  crypto.PubkeyToAddress(key.PublicKey),
		next:    startNumber,
		parent:  crypto.Keccak256Hash(new(big.Int).SetUint64(startNumber).Bytes()),
	}
}

func (cb *ChainBuilder) Sender() common.Address {
	return cb.sender
}

// AddBlock appends a block with one transaction of each specified type.
func (cb *ChainBuilder) AddBlock(txTypes ...uint8) *Block {
	number := cb.next

	var baseFee *big.Int
	if cb.Forks.London {
		baseFee = DefaultBaseFee
	}

	header := &gethTypes.Header{
		ParentHash:  cb.parent,
		UncleHash:   gethTypes.EmptyUncleHash,
		Coinbase:    common.HexToAddress("0x95222290dd7278aa3ddd389cc1e1d165cc4bafe5"),
		Root:        crypto.Keccak256Hash([]byte("state"), new(big.Int).SetUint64(number).Bytes()),
		TxHash:      gethTypes.EmptyTxsHash,
		ReceiptHash: gethTypes.EmptyReceiptsHash,
		Difficulty:  big.NewInt(0),
		Number:      new(big.Int).SetUint64(number),
		GasLimit:    30_000_000,
		Time:        1_700_000_000 + number*12,
		Extra:       []byte("confura-evm"),
		MixDigest:   crypto.Keccak256Hash([]byte("prevrandao"), new(big.Int).SetUint64(number).Bytes()),
		BaseFee:     baseFee,
	}

	if !cb.Forks.London {
		header.Difficulty = big.NewInt(131072)
		header.Nonce = gethTypes.EncodeNonce(number)
	}

	block := &Block{Header: header}

	var cumulativeGas uint64
	for i, txType := range txTypes {
		tx := cb.signTx(txType)
		rcpt := cb.makeReceipt(tx, uint(i), baseFee, &cumulativeGas)

		block.Txs = append(block.Txs, tx)
		block.Receipts = append(block.Receipts, rcpt)
		header.Bloom = orBloom(header.Bloom, rcpt.Bloom)
	}

	header.GasUsed = cumulativeGas

	if len(block.Txs) > 0 {
		header.TxHash = hashList(block.Txs.Len(), func(i int) common.Hash { return block.Txs[i].Hash() })
		header.ReceiptHash = hashList(block.Receipts.Len(), func(i int) common.Hash { return block.Receipts[i].TxHash })
	}

	if cb.Forks.Shanghai {
		block.Withdrawals = cb.makeWithdrawals(2)

		wdHash := hashList(len(block.Withdrawals), func(i int) common.Hash {
			return crypto.Keccak256Hash(block.Withdrawals[i].Address.Bytes())
		})
		header.WithdrawalsHash = &wdHash
	}

	if cb.Forks.Cancun {
		blobGasUsed := uint64(0)
		for _, tx := range block.Txs {
			blobGasUsed += tx.BlobGas()
		}

		excessBlobGas := uint64(0)
		beaconRoot := crypto.Keccak256Hash([]byte("beacon"), new(big.Int).SetUint64(number).Bytes())

		header.BlobGasUsed = &blobGasUsed
		header.ExcessBlobGas = &excessBlobGas
		header.ParentBeaconRoot = &beaconRoot
	}

	blockHash := header.Hash()
	for i, rcpt := range block.Receipts {
		rcpt.BlockHash = blockHash
		rcpt.BlockNumber = new(big.Int).SetUint64(number)
		rcpt.TransactionIndex = uint(i)

		for _, log := range rcpt.Logs {
			log.BlockHash = blockHash
			log.BlockNumber = number
			log.TxIndex = uint(i)
		}
	}

	block.Data = cb.index(block)

	cb.Blocks = append(cb.Blocks, block)
	cb.parent = blockHash
	cb.next++

	return block
}

// BlockDatas returns the indexed data of all built blocks.
func (cb *ChainBuilder) BlockDatas() []*store.BlockData {
	result := make([]*store.BlockData, 0, len(cb.Blocks))
	for _, b := range cb.Blocks {
		result = append(result, b.Data)
	}

	return result
}

func (cb *ChainBuilder) signTx(txType uint8) *gethTypes.Transaction {
	nonce := cb.nonce
	cb.nonce++

	to := recipient
	value := big.NewInt(1_000_000_000_000_000)
	data := []byte{0xa9, 0x05, 0x9c, 0xbb}
	accessList := gethTypes.AccessList{{
		Address:     tokenAddress,
		StorageKeys: []common.Hash{common.BigToHash(big.NewInt(1))},
	}}

	var txdata gethTypes.TxData

	switch txType {
	case gethTypes.LegacyTxType:
		txdata = &gethTypes.LegacyTx{
			Nonce: nonce, GasPrice: big.NewInt(10 * params.GWei), Gas: 21_000, To: &to, Value: value, Data: data,
		}
	case gethTypes.AccessListTxType:
		txdata = &gethTypes.AccessListTx{
			ChainID: cb.ChainID, Nonce: nonce, GasPrice: big.NewInt(10 * params.GWei), Gas: 50_000,
			To: &to, Value: value, Data: data, AccessList: accessList,
		}
	case gethTypes.DynamicFeeTxType:
		txdata = &gethTypes.DynamicFeeTx{
			ChainID: cb.ChainID, Nonce: nonce, GasTipCap: big.NewInt(2 * params.GWei),
			GasFeeCap: big.NewInt(20 * params.GWei), Gas: 50_000, To: &to, Value: value, Data: data,
			AccessList: accessList,
		}
	case gethTypes.BlobTxType:
		txdata = &gethTypes.BlobTx{
			ChainID:    uint256.MustFromBig(cb.ChainID),
			Nonce:      nonce,
			GasTipCap:  uint256.NewInt(2 * params.GWei),
			GasFeeCap:  uint256.NewInt(20 * params.GWei),
			Gas:        60_000,
			To:         to,
			Value:      uint256.MustFromBig(value),
			Data:       data,
			BlobFeeCap: uint256.NewInt(3 * params.GWei),
			BlobHashes: []common.Hash{{0x01, 0xaa}},
		}
	default:
		panic("unsupported tx type")
	}

	return gethTypes.MustSignNewTx(cb.key, cb.signer, txdata)
}

func (cb *ChainBuilder) makeReceipt(
	tx *gethTypes.Transaction, index uint, baseFee *big.Int, cumulativeGas *uint64,
) *gethTypes.Receipt {
	gasUsed := tx.Gas() - uint64(index)*100
	*cumulativeGas += gasUsed

	log := &gethTypes.Log{
		Address: tokenAddress,
		Topics:  []common.Hash{transferTopic, common.BytesToHash(cb.sender.Bytes()), common.BytesToHash(recipient.Bytes())},
		Data:    common.BigToHash(tx.Value()).Bytes(),
		TxHash:  tx.Hash(),
		Index:   index,
	}

	rcpt := &gethTypes.Receipt{
		Type:              tx.Type(),
		CumulativeGasUsed: *cumulativeGas,
		Logs:              []*gethTypes.Log{log},
		TxHash:            tx.Hash(),
		GasUsed:           gasUsed,
		EffectiveGasPrice: EffectiveGasPrice(tx, baseFee),
	}

	if cb.Forks.Byzantium {
		rcpt.Status = gethTypes.ReceiptStatusSuccessful
		if index%3 == 2 {
			rcpt.Status = gethTypes.ReceiptStatusFailed
		}
	} else {
		rcpt.PostState = crypto.Keccak256([]byte("post state"), tx.Hash().Bytes())
	}

	if tx.Type() == gethTypes.BlobTxType {
		rcpt.BlobGasUsed = tx.BlobGas()
		rcpt.BlobGasPrice = big.NewInt(1)
	}

	var bloom gethTypes.Bloom
	bloom.Add(log.Address.Bytes())
	for _, topic := range log.Topics {
		bloom.Add(topic.Bytes())
	}
	rcpt.Bloom = bloom

	return rcpt
}

func (cb *ChainBuilder) makeWithdrawals(n int) gethTypes.Withdrawals {
	var result gethTypes.Withdrawals
	for i := 0; i < n; i++ {
		result = append(result, &gethTypes.Withdrawal{
			Index:     cb.wdIndex,
			Validator: 1000 + cb.wdIndex,
			Address:   common.BigToAddress(new(big.Int).SetUint64(0xdead0000 + cb.wdIndex)),
			Amount:    32_000_000 + cb.wdIndex,
		})
		cb.wdIndex++
	}

	return result
}

// index builds the data an indexer writes for the block.
func (cb *ChainBuilder) index(block *Block) *store.BlockData {
	data := &store.BlockData{Header: StoredHeaderFromGeth(block.Header)}
	blockHash := block.Header.Hash()
	number := block.Header.Number.Uint64()

	for i, tx := range block.Txs {
		stx := StoredTransactionFromGeth(tx, cb.sender)
		stx.BlockHash, stx.BlockNumber, stx.TransactionIndex = blockHash, number, uint64(i)
		data.Transactions = append(data.Transactions, stx)

		srcpt := StoredReceiptFromGeth(block.Receipts[i])
		srcpt.From, srcpt.To = cb.sender, tx.To()
		data.Receipts = append(data.Receipts, srcpt)
	}

	for i, wd := range block.Withdrawals {
		data.Withdrawals = append(data.Withdrawals, &store.StoredWithdrawal{
			BlockHash:   blockHash,
			BlockNumber: number,
			Position:    uint64(i),
			Index:       wd.Index,
			Validator:   wd.Validator,
			Address:     wd.Address,
			Amount:      wd.Amount,
		})
	}

	return data
}

// EffectiveGasPrice returns the gas price paid by the transaction in a block of base fee.
func EffectiveGasPrice(tx *gethTypes.Transaction, baseFee *big.Int) *big.Int {
	if baseFee == nil || tx.Type() == gethTypes.LegacyTxType || tx.Type() == gethTypes.AccessListTxType {
		return tx.GasPrice()
	}

	price := new(big.Int).Add(baseFee, tx.GasTipCap())
	if price.Cmp(tx.GasFeeCap()) > 0 {
		return new(big.Int).Set(tx.GasFeeCap())
	}

	return price
}

func orBloom(a, b gethTypes.Bloom) gethTypes.Bloom {
	for i := range a {
		a[i] |= b[i]
	}

	return a
}

func hashList(n int, hashAt func(i int) common.Hash) common.Hash {
	var buf []byte
	for i := 0; i < n; i++ {
		buf = append(buf, hashAt(i).Bytes()...)
	}

	return crypto.Keccak256Hash(buf)
}
