package ethbridge

import (
	"fmt"
	"math/big"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
)

// ConversionError is returned when an indexed record can not be converted into a
// well formed RPC object.
type ConversionError struct {
	Field  string
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion failure on field %v: %v", e.Field, e.Reason)
}

func newConversionError(field, reasonFormat string, args ...any) *ConversionError {
	return &ConversionError{Field: field, Reason: fmt.Sprintf(reasonFormat, args...)}
}

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ConvertHeader converts an indexed header into the RPC header.
func ConvertHeader(h *store.StoredHeader) (*types.Header, error) {
	if h.Difficulty == nil || h.Difficulty.Sign() < 0 {
		return nil, newConversionError("difficulty", "missing or negative")
	}

	if h.BaseFee != nil && h.BaseFee.Sign() < 0 {
		return nil, newConversionError("baseFeePerGas", "negative")
	}

	return &types.Header{
		Hash:                  h.Hash,
		ParentHash:            h.ParentHash,
		Sha3Uncles:            h.UncleHash,
		Miner:                 h.Coinbase,
		StateRoot:             h.Root,
		TransactionsRoot:      h.TxHash,
		ReceiptsRoot:          h.ReceiptHash,
		LogsBloom:             h.Bloom,
		Difficulty:            (*hexutil.Big)(h.Difficulty),
		Number:                (*hexutil.Big)(new(big.Int).SetUint64(h.Number)),
		GasLimit:              hexutil.Uint64(h.GasLimit),
		GasUsed:               hexutil.Uint64(h.GasUsed),
		Timestamp:             hexutil.Uint64(h.Time),
		ExtraData:             nonNilBytes(h.Extra),
		MixHash:               h.MixDigest,
		Nonce:                 gethTypes.EncodeNonce(h.Nonce),
		BaseFeePerGas:         (*hexutil.Big)(h.BaseFee),
		WithdrawalsRoot:       h.WithdrawalsHash,
		BlobGasUsed:           (*hexutil.Uint64)(h.BlobGasUsed),
		ExcessBlobGas:         (*hexutil.Uint64)(h.ExcessBlobGas),
		ParentBeaconBlockRoot: h.ParentBeaconRoot,
	}, nil
}

// ConvertTransaction converts an indexed transaction into the RPC transaction. The base
// fee of the containing block is required to derive the gas price of dynamic fee
// transactions.
func ConvertTransaction(tx *store.StoredTransaction, baseFee *big.Int) (*types.Transaction, error) {
	if err := validateTransaction(tx); err != nil {
		return nil, err
	}

	blockHash := tx.BlockHash
	txIndex := hexutil.Uint64(tx.TransactionIndex)

	rpcTx := &types.Transaction{
		BlockHash:        &blockHash,
		BlockNumber:      (*hexutil.Big)(new(big.Int).SetUint64(tx.BlockNumber)),
		TransactionIndex: &txIndex,
		Hash:             tx.Hash,
		Type:             hexutil.Uint64(tx.Type),
		Nonce:            hexutil.Uint64(tx.Nonce),
		From:             tx.From,
		To:               tx.To,
		Value:            (*hexutil.Big)(tx.Value),
		Gas:              hexutil.Uint64(tx.Gas),
		Input:            nonNilBytes(tx.Input),
		V:                (*hexutil.Big)(tx.V),
		R:                (*hexutil.Big)(tx.R),
		S:                (*hexutil.Big)(tx.S),
	}

	switch tx.Type {
	case types.LegacyTxType:
		rpcTx.GasPrice = (*hexutil.Big)(tx.GasPrice)
		if chainID := deriveChainID(tx.V); chainID != nil {
			rpcTx.ChainID = (*hexutil.Big)(chainID)
		}
		return rpcTx, nil
	case types.AccessListTxType:
		rpcTx.GasPrice = (*hexutil.Big)(tx.GasPrice)
	case types.DynamicFeeTxType, types.BlobTxType:
		gasPrice, err := EffectiveGasPrice(tx, baseFee)
		if err != nil {
			return nil, err
		}

		rpcTx.GasPrice = (*hexutil.Big)(gasPrice)
		rpcTx.MaxFeePerGas = (*hexutil.Big)(tx.GasFeeCap)
		rpcTx.MaxPriorityFeePerGas = (*hexutil.Big)(tx.GasTipCap)

		if tx.Type == types.BlobTxType {
			rpcTx.MaxFeePerBlobGas = (*hexutil.Big)(tx.BlobGasFeeCap)
			rpcTx.BlobVersionedHashes = nonNilHashes(tx.BlobHashes)
		}
	}

	accessList := tx.AccessList
	if accessList == nil {
		accessList = types.AccessList{}
	}

	yParity := hexutil.Uint64(tx.V.Uint64())

	rpcTx.ChainID = (*hexutil.Big)(tx.ChainID)
	rpcTx.Accesses = &accessList
	rpcTx.YParity = &yParity

	return rpcTx, nil
}

// EffectiveGasPrice returns the gas price paid by a dynamic fee or blob transaction,
// which is min(maxFeePerGas, baseFee + maxPriorityFeePerGas).
func EffectiveGasPrice(tx *store.StoredTransaction, baseFee *big.Int) (*big.Int, error) {
	if baseFee == nil {
		return nil, newConversionError("gasPrice", "base fee unavailable for tx type %v", tx.Type)
	}

	price := new(big.Int).Add(baseFee, tx.GasTipCap)
	if price.Cmp(tx.GasFeeCap) > 0 {
		return new(big.Int).Set(tx.GasFeeCap), nil
	}

	return price, nil
}

// deriveChainID derives the chain id from an EIP-155 signature value, returning nil
// for unprotected signatures.
func deriveChainID(v *big.Int) *big.Int {
	if v.BitLen() <= 8 {
		vv := v.Uint64()
		if vv == 27 || vv == 28 {
			return nil
		}
	}

	chainID := new(big.Int).Sub(v, big.NewInt(35))
	return chainID.Rsh(chainID, 1)
}

func validateTransaction(tx *store.StoredTransaction) error {
	err := validateFields(
		fieldOf("value", tx.Value), fieldOf("v", tx.V), fieldOf("r", tx.R), fieldOf("s", tx.S),
	)
	if err != nil {
		return err
	}

	switch tx.Type {
	case types.LegacyTxType:
		if tx.V.Cmp(big.NewInt(27)) < 0 {
			return newConversionError("v", "invalid legacy signature value %v", tx.V)
		}
		return validateUint256("gasPrice", tx.GasPrice)
	case types.AccessListTxType:
		return validateFields(
			fieldOf("chainId", tx.ChainID),
			fieldOf("gasPrice", tx.GasPrice),
		)
	case types.DynamicFeeTxType:
		return validateFields(
			fieldOf("chainId", tx.ChainID),
			fieldOf("maxFeePerGas", tx.GasFeeCap),
			fieldOf("maxPriorityFeePerGas", tx.GasTipCap),
		)
	case types.BlobTxType:
		if tx.To == nil {
			return newConversionError("to", "blob tx must have a recipient")
		}

		return validateFields(
			fieldOf("chainId", tx.ChainID),
			fieldOf("maxFeePerGas", tx.GasFeeCap),
			fieldOf("maxPriorityFeePerGas", tx.GasTipCap),
			fieldOf("maxFeePerBlobGas", tx.BlobGasFeeCap),
		)
	}

	return newConversionError("type", "unsupported tx type %v", tx.Type)
}

type bigField struct {
	name  string
	value *big.Int
}

func fieldOf(name string, value *big.Int) bigField {
	return bigField{name, value}
}

func validateFields(fields ...bigField) error {
	for _, f := range fields {
		if err := validateUint256(f.name, f.value); err != nil {
			return err
		}
	}

	return nil
}

func validateUint256(name string, value *big.Int) error {
	if value == nil {
		return newConversionError(name, "missing")
	}

	if value.Sign() < 0 || value.Cmp(maxUint256) > 0 {
		return newConversionError(name, "value %v out of uint256 range", value)
	}

	return nil
}

// ConvertReceipt converts an indexed receipt into the RPC receipt.
func ConvertReceipt(r *store.StoredReceipt) (*types.Receipt, error) {
	if r.Type > types.BlobTxType {
		return nil, newConversionError("type", "unsupported receipt type %v", r.Type)
	}

	rpcRcpt := &types.Receipt{
		Type:              hexutil.Uint64(r.Type),
		CumulativeGasUsed: hexutil.Uint64(r.CumulativeGasUsed),
		LogsBloom:         r.Bloom,
		Logs:              make([]*types.Log, 0, len(r.Logs)),
		TransactionHash:   r.TransactionHash,
		TransactionIndex:  hexutil.Uint64(r.TransactionIndex),
		BlockHash:         r.BlockHash,
		BlockNumber:       hexutil.Uint64(r.BlockNumber),
		From:              r.From,
		To:                r.To,
		ContractAddress:   r.ContractAddress,
		GasUsed:           hexutil.Uint64(r.GasUsed),
		EffectiveGasPrice: (*hexutil.Big)(r.EffectiveGasPrice),
	}

	switch {
	case len(r.PostState) == common.HashLength:
		rpcRcpt.Root = r.PostState
	case len(r.PostState) > 0:
		return nil, newConversionError("root", "invalid post state length %v", len(r.PostState))
	case r.Status > gethTypes.ReceiptStatusSuccessful:
		return nil, newConversionError("status", "invalid status %v", r.Status)
	default:
		status := hexutil.Uint64(r.Status)
		rpcRcpt.Status = &status
	}

	if r.EffectiveGasPrice == nil {
		return nil, newConversionError("effectiveGasPrice", "missing")
	}

	if r.Type == types.BlobTxType {
		blobGasUsed := hexutil.Uint64(r.BlobGasUsed)
		rpcRcpt.BlobGasUsed = &blobGasUsed
		rpcRcpt.BlobGasPrice = (*hexutil.Big)(r.BlobGasPrice)
	}

	if r.Bloom == (gethTypes.Bloom{}) && len(r.Logs) > 0 {
		rpcRcpt.LogsBloom = LogsBloom(r.Logs)
	}

	for _, log := range r.Logs {
		rpcRcpt.Logs = append(rpcRcpt.Logs, &types.Log{
			Address:          log.Address,
			Topics:           nonNilHashes(log.Topics),
			Data:             nonNilBytes(log.Data),
			BlockNumber:      hexutil.Uint64(r.BlockNumber),
			BlockHash:        r.BlockHash,
			TransactionHash:  r.TransactionHash,
			TransactionIndex: hexutil.Uint64(r.TransactionIndex),
			LogIndex:         hexutil.Uint64(log.LogIndex),
		})
	}

	return rpcRcpt, nil
}

// LogsBloom computes the bloom filter of logs.
func LogsBloom(logs []*store.StoredLog) gethTypes.Bloom {
	var bloom gethTypes.Bloom
	for _, log := range logs {
		bloom.Add(log.Address.Bytes())

		for _, topic := range log.Topics {
			bloom.Add(topic.Bytes())
		}
	}

	return bloom
}

// ConvertWithdrawal converts an indexed withdrawal into the RPC withdrawal.
func ConvertWithdrawal(w *store.StoredWithdrawal) (*types.Withdrawal, error) {
	return &types.Withdrawal{
		Index:     hexutil.Uint64(w.Index),
		Validator: hexutil.Uint64(w.Validator),
		Address:   w.Address,
		Amount:    hexutil.Uint64(w.Amount),
	}, nil
}

func nonNilBytes(b []byte) hexutil.Bytes {
	if b == nil {
		return hexutil.Bytes{}
	}

	return b
}

func nonNilHashes(hashes []common.Hash) []common.Hash {
	if hashes == nil {
		return []common.Hash{}
	}

	return hashes
}
