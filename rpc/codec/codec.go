// Package codec provides the canonical Ethereum encodings of RPC objects, as served by
// the raw data debug endpoints.
package codec

import (
	"fmt"
	"math/big"

	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// EncodingError is returned when an RPC object can not be canonically encoded. No partial
// encoding is ever returned along with it.
type EncodingError struct {
	Object string
	Field  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("failed to encode %v on field %v: %v", e.Object, e.Field, e.Reason)
}

func newEncodingError(object, field, reasonFormat string, args ...any) *EncodingError {
	return &EncodingError{Object: object, Field: field, Reason: fmt.Sprintf(reasonFormat, args...)}
}

// extblock is the canonical block encoding layout.
type extblock struct {
	Header      *gethTypes.Header
	Txs         []*gethTypes.Transaction
	Uncles      []*gethTypes.Header
	Withdrawals []*gethTypes.Withdrawal `rlp:"optional"`
}

// EncodeTransaction returns the EIP-2718 envelope of the transaction, which is the RLP list
// for legacy transactions and the type byte followed by the RLP payload otherwise.
func EncodeTransaction(tx *types.Transaction) ([]byte, error) {
	gtx, err := ToGethTransaction(tx)
	if err != nil {
		return nil, err
	}

	return gtx.MarshalBinary()
}

// ToGethTransaction rebuilds the canonical transaction, checking that it hashes to the
// original transaction hash.
func ToGethTransaction(tx *types.Transaction) (*gethTypes.Transaction, error) {
	if tx.V == nil || tx.R == nil || tx.S == nil {
		return nil, newEncodingError("tx", "signature", "missing")
	}

	if tx.Value == nil {
		return nil, newEncodingError("tx", "value", "missing")
	}

	var (
		txdata     gethTypes.TxData
		v, r, s    = tx.V.ToInt(), tx.R.ToInt(), tx.S.ToInt()
		accessList types.AccessList
	)

	if tx.Accesses != nil {
		accessList = *tx.Accesses
	}

	switch uint8(tx.Type) {
	case types.LegacyTxType:
		if tx.GasPrice == nil {
			return nil, newEncodingError("tx", "gasPrice", "missing")
		}

		txdata = &gethTypes.LegacyTx{
			Nonce:    uint64(tx.Nonce),
			GasPrice: tx.GasPrice.ToInt(),
			Gas:      uint64(tx.Gas),
			To:       tx.To,
			Value:    tx.Value.ToInt(),
			Data:     tx.Input,
			V:        v, R: r, S: s,
		}
	case types.AccessListTxType:
		if tx.GasPrice == nil || tx.ChainID == nil {
			return nil, newEncodingError("tx", "gasPrice", "missing gas price or chain id")
		}

		txdata = &gethTypes.AccessListTx{
			ChainID:    tx.ChainID.ToInt(),
			Nonce:      uint64(tx.Nonce),
			GasPrice:   tx.GasPrice.ToInt(),
			Gas:        uint64(tx.Gas),
			To:         tx.To,
			Value:      tx.Value.ToInt(),
			Data:       tx.Input,
			AccessList: accessList,
			V:          v, R: r, S: s,
		}
	case types.DynamicFeeTxType:
		if tx.MaxFeePerGas == nil || tx.MaxPriorityFeePerGas == nil || tx.ChainID == nil {
			return nil, newEncodingError("tx", "maxFeePerGas", "missing fee caps or chain id")
		}

		txdata = &gethTypes.DynamicFeeTx{
			ChainID:    tx.ChainID.ToInt(),
			Nonce:      uint64(tx.Nonce),
			GasTipCap:  tx.MaxPriorityFeePerGas.ToInt(),
			GasFeeCap:  tx.MaxFeePerGas.ToInt(),
			Gas:        uint64(tx.Gas),
			To:         tx.To,
			Value:      tx.Value.ToInt(),
			Data:       tx.Input,
			AccessList: accessList,
			V:          v, R: r, S: s,
		}
	case types.BlobTxType:
		blobTx, err := toBlobTx(tx, accessList)
		if err != nil {
			return nil, err
		}

		txdata = blobTx
	default:
		return nil, newEncodingError("tx", "type", "unsupported tx type %v", uint64(tx.Type))
	}

	gtx := gethTypes.NewTx(txdata)
	if gtx.Hash() != tx.Hash {
		return nil, newEncodingError("tx", "hash", "encoded as %v, expected %v", gtx.Hash(), tx.Hash)
	}

	return gtx, nil
}

func toBlobTx(tx *types.Transaction, accessList types.AccessList) (*gethTypes.BlobTx, error) {
	if tx.To == nil {
		return nil, newEncodingError("tx", "to", "blob tx must have a recipient")
	}

	fields := []struct {
		name  string
		value *big.Int
	}{
		{"chainId", (*big.Int)(tx.ChainID)},
		{"maxPriorityFeePerGas", (*big.Int)(tx.MaxPriorityFeePerGas)},
		{"maxFeePerGas", (*big.Int)(tx.MaxFeePerGas)},
		{"value", tx.Value.ToInt()},
		{"maxFeePerBlobGas", (*big.Int)(tx.MaxFeePerBlobGas)},
		{"v", tx.V.ToInt()},
		{"r", tx.R.ToInt()},
		{"s", tx.S.ToInt()},
	}

	values := make([]*uint256.Int, len(fields))
	for i, f := range fields {
		if f.value == nil {
			return nil, newEncodingError("tx", f.name, "missing")
		}

		v, overflow := uint256.FromBig(f.value)
		if overflow || f.value.Sign() < 0 {
			return nil, newEncodingError("tx", f.name, "value %v out of uint256 range", f.value)
		}

		values[i] = v
	}

	return &gethTypes.BlobTx{
		ChainID:    values[0],
		Nonce:      uint64(tx.Nonce),
		GasTipCap:  values[1],
		GasFeeCap:  values[2],
		Gas:        uint64(tx.Gas),
		To:         *tx.To,
		Value:      values[3],
		Data:       tx.Input,
		AccessList: accessList,
		BlobFeeCap: values[4],
		BlobHashes: tx.BlobVersionedHashes,
		V:          values[5],
		R:          values[6],
		S:          values[7],
	}, nil
}

// EncodeReceipt returns the EIP-2718 encoding of the receipt with bloom, which consists of
// the status (or post state root), cumulative gas used, logs bloom and logs.
func EncodeReceipt(receipt *types.Receipt) ([]byte, error) {
	if receipt.Type > types.BlobTxType {
		return nil, newEncodingError("receipt", "type", "unsupported receipt type %v", uint64(receipt.Type))
	}

	r := &gethTypes.Receipt{
		Type:              uint8(receipt.Type),
		CumulativeGasUsed: uint64(receipt.CumulativeGasUsed),
		Bloom:             receipt.LogsBloom,
		Logs:              make([]*gethTypes.Log, 0, len(receipt.Logs)),
	}

	switch {
	case len(receipt.Root) == common.HashLength:
		r.PostState = receipt.Root
	case len(receipt.Root) > 0:
		return nil, newEncodingError("receipt", "root", "invalid post state length %v", len(receipt.Root))
	case receipt.Status == nil:
		return nil, newEncodingError("receipt", "status", "neither status nor root present")
	default:
		r.Status = uint64(*receipt.Status)
	}

	for _, log := range receipt.Logs {
		r.Logs = append(r.Logs, &gethTypes.Log{
			Address: log.Address,
			Topics:  log.Topics,
			Data:    log.Data,
		})
	}

	return r.MarshalBinary()
}

// EncodeHeader returns the RLP encoding of the header, checking that it hashes to the
// original block hash.
func EncodeHeader(header *types.Header) ([]byte, error) {
	h, err := ToGethHeader(header)
	if err != nil {
		return nil, err
	}

	return rlp.EncodeToBytes(h)
}

// ToGethHeader rebuilds the canonical header, checking that it hashes to the original
// block hash.
func ToGethHeader(header *types.Header) (*gethTypes.Header, error) {
	if header.Number == nil || header.Difficulty == nil {
		return nil, newEncodingError("header", "number", "missing number or difficulty")
	}

	h := &gethTypes.Header{
		ParentHash:       header.ParentHash,
		UncleHash:        header.Sha3Uncles,
		Coinbase:         header.Miner,
		Root:             header.StateRoot,
		TxHash:           header.TransactionsRoot,
		ReceiptHash:      header.ReceiptsRoot,
		Bloom:            header.LogsBloom,
		Difficulty:       header.Difficulty.ToInt(),
		Number:           header.Number.ToInt(),
		GasLimit:         uint64(header.GasLimit),
		GasUsed:          uint64(header.GasUsed),
		Time:             uint64(header.Timestamp),
		Extra:            header.ExtraData,
		MixDigest:        header.MixHash,
		Nonce:            header.Nonce,
		BaseFee:          (*big.Int)(header.BaseFeePerGas),
		WithdrawalsHash:  header.WithdrawalsRoot,
		BlobGasUsed:      (*uint64)(header.BlobGasUsed),
		ExcessBlobGas:    (*uint64)(header.ExcessBlobGas),
		ParentBeaconRoot: header.ParentBeaconBlockRoot,
	}

	if h.Hash() != header.Hash {
		return nil, newEncodingError("header", "hash", "encoded as %v, expected %v", h.Hash(), header.Hash)
	}

	return h, nil
}

// EncodeBlock returns the RLP encoding of the block, which must hold full transactions.
func EncodeBlock(block *types.Block) ([]byte, error) {
	if !block.Transactions.IsFull() && block.Transactions.Len() > 0 {
		return nil, newEncodingError("block", "transactions", "full transactions required")
	}

	if len(block.Uncles) > 0 {
		return nil, newEncodingError("block", "uncles", "uncle headers unavailable")
	}

	h, err := ToGethHeader(&block.Header)
	if err != nil {
		return nil, err
	}

	eb := extblock{
		Header: h,
		Txs:    make([]*gethTypes.Transaction, 0, block.Transactions.Len()),
		Uncles: []*gethTypes.Header{},
	}

	for i, tx := range block.Transactions.Full() {
		gtx, err := ToGethTransaction(tx)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to encode tx #%v", i)
		}

		eb.Txs = append(eb.Txs, gtx)
	}

	if block.Withdrawals != nil {
		eb.Withdrawals = make([]*gethTypes.Withdrawal, 0, len(block.Withdrawals))
		for _, w := range block.Withdrawals {
			eb.Withdrawals = append(eb.Withdrawals, &gethTypes.Withdrawal{
				Index:     uint64(w.Index),
				Validator: uint64(w.Validator),
				Address:   w.Address,
				Amount:    uint64(w.Amount),
			})
		}
	}

	return rlp.EncodeToBytes(&eb)
}

// DecodeTransaction decodes an EIP-2718 transaction envelope.
func DecodeTransaction(data []byte) (*gethTypes.Transaction, error) {
	var tx gethTypes.Transaction
	if err := tx.UnmarshalBinary(data); err != nil {
		return nil, errors.WithMessage(err, "failed to decode tx")
	}

	return &tx, nil
}

// DecodeReceipt decodes an EIP-2718 receipt envelope.
func DecodeReceipt(data []byte) (*gethTypes.Receipt, error) {
	var r gethTypes.Receipt
	if err := r.UnmarshalBinary(data); err != nil {
		return nil, errors.WithMessage(err, "failed to decode receipt")
	}

	return &r, nil
}

// DecodeHeader decodes an RLP encoded header.
func DecodeHeader(data []byte) (*gethTypes.Header, error) {
	var h gethTypes.Header
	if err := rlp.DecodeBytes(data, &h); err != nil {
		return nil, errors.WithMessage(err, "failed to decode header")
	}

	return &h, nil
}

// DecodeBlock decodes an RLP encoded block.
func DecodeBlock(data []byte) (*gethTypes.Block, error) {
	var b gethTypes.Block
	if err := rlp.DecodeBytes(data, &b); err != nil {
		return nil, errors.WithMessage(err, "failed to decode block")
	}

	return &b, nil
}
