package test

import (
	"math/big"

	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// TxInclusion is the position of a transaction within the chain.
type TxInclusion struct {
	BlockHash   common.Hash
	BlockNumber uint64
	Index       uint64
	BaseFee     *big.Int
}

// RpcTransactionFromGeth builds the expected RPC transaction from a canonical transaction,
// recovering the sender from its signature.
func RpcTransactionFromGeth(tx *gethTypes.Transaction, inclusion TxInclusion) (*types.Transaction, error) {
	from, err := gethTypes.Sender(gethTypes.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to recover sender")
	}

	v, r, s := tx.RawSignatureValues()
	txIndex := hexutil.Uint64(inclusion.Index)

	rpcTx := &types.Transaction{
		BlockHash:        &inclusion.BlockHash,
		BlockNumber:      (*hexutil.Big)(new(big.Int).SetUint64(inclusion.BlockNumber)),
		TransactionIndex: &txIndex,
		Hash:             tx.Hash(),
		Type:             hexutil.Uint64(tx.Type()),
		Nonce:            hexutil.Uint64(tx.Nonce()),
		From:             from,
		To:               tx.To(),
		Value:            (*hexutil.Big)(tx.Value()),
		Gas:              hexutil.Uint64(tx.Gas()),
		GasPrice:         (*hexutil.Big)(tx.GasPrice()),
		Input:            nonNilBytes(tx.Data()),
		V:                (*hexutil.Big)(v),
		R:                (*hexutil.Big)(r),
		S:                (*hexutil.Big)(s),
	}

	if tx.Type() == gethTypes.LegacyTxType {
		if tx.Protected() {
			rpcTx.ChainID = (*hexutil.Big)(tx.ChainId())
		}

		return rpcTx, nil
	}

	accessList := tx.AccessList()
	if accessList == nil {
		accessList = gethTypes.AccessList{}
	}

	yParity := hexutil.Uint64(v.Uint64())

	rpcTx.ChainID = (*hexutil.Big)(tx.ChainId())
	rpcTx.Accesses = &accessList
	rpcTx.YParity = &yParity

	switch tx.Type() {
	case gethTypes.DynamicFeeTxType, gethTypes.BlobTxType:
		if inclusion.BaseFee == nil {
			return nil, errors.Errorf("base fee unavailable for tx type %v", tx.Type())
		}

		gasPrice := new(big.Int).Add(inclusion.BaseFee, tx.GasTipCap())
		if gasPrice.Cmp(tx.GasFeeCap()) > 0 {
			gasPrice = tx.GasFeeCap()
		}

		rpcTx.GasPrice = (*hexutil.Big)(gasPrice)
		rpcTx.MaxFeePerGas = (*hexutil.Big)(tx.GasFeeCap())
		rpcTx.MaxPriorityFeePerGas = (*hexutil.Big)(tx.GasTipCap())

		if tx.Type() == gethTypes.BlobTxType {
			rpcTx.MaxFeePerBlobGas = (*hexutil.Big)(tx.BlobGasFeeCap())
			rpcTx.BlobVersionedHashes = nonNilHashes(tx.BlobHashes())
		}
	}

	return rpcTx, nil
}

// RpcReceiptFromGeth builds the consensus fields of the RPC receipt from a decoded canonical
// receipt. Derived fields, e.g. gas used or sender, are not part of the encoding and left
// unset.
func RpcReceiptFromGeth(r *gethTypes.Receipt) *types.Receipt {
	rpcRcpt := &types.Receipt{
		Type:              hexutil.Uint64(r.Type),
		CumulativeGasUsed: hexutil.Uint64(r.CumulativeGasUsed),
		LogsBloom:         r.Bloom,
		Logs:              make([]*types.Log, 0, len(r.Logs)),
	}

	if len(r.PostState) > 0 {
		rpcRcpt.Root = r.PostState
	} else {
		status := hexutil.Uint64(r.Status)
		rpcRcpt.Status = &status
	}

	for _, log := range r.Logs {
		rpcRcpt.Logs = append(rpcRcpt.Logs, &types.Log{
			Address: log.Address,
			Topics:  nonNilHashes(log.Topics),
			Data:    nonNilBytes(log.Data),
		})
	}

	return rpcRcpt
}

// RpcHeaderFromGeth builds the RPC header from a decoded canonical header.
func RpcHeaderFromGeth(h *gethTypes.Header) *types.Header {
	return &types.Header{
		Hash:                  h.Hash(),
		ParentHash:            h.ParentHash,
		Sha3Uncles:            h.UncleHash,
		Miner:                 h.Coinbase,
		StateRoot:             h.Root,
		TransactionsRoot:      h.TxHash,
		ReceiptsRoot:          h.ReceiptHash,
		LogsBloom:             h.Bloom,
		Difficulty:            (*hexutil.Big)(h.Difficulty),
		Number:                (*hexutil.Big)(h.Number),
		GasLimit:              hexutil.Uint64(h.GasLimit),
		GasUsed:               hexutil.Uint64(h.GasUsed),
		Timestamp:             hexutil.Uint64(h.Time),
		ExtraData:             nonNilBytes(h.Extra),
		MixHash:               h.MixDigest,
		Nonce:                 h.Nonce,
		BaseFeePerGas:         (*hexutil.Big)(h.BaseFee),
		WithdrawalsRoot:       h.WithdrawalsHash,
		BlobGasUsed:           (*hexutil.Uint64)(h.BlobGasUsed),
		ExcessBlobGas:         (*hexutil.Uint64)(h.ExcessBlobGas),
		ParentBeaconBlockRoot: h.ParentBeaconRoot,
	}
}

// RpcWithdrawalFromGeth builds the RPC withdrawal from a decoded canonical withdrawal.
func RpcWithdrawalFromGeth(w *gethTypes.Withdrawal) *types.Withdrawal {
	return &types.Withdrawal{
		Index:     hexutil.Uint64(w.Index),
		Validator: hexutil.Uint64(w.Validator),
		Address:   w.Address,
		Amount:    hexutil.Uint64(w.Amount),
	}
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
