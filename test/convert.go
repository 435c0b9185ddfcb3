package test

import (
	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/ethereum/go-ethereum/common"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
)

// StoredHeaderFromGeth projects a canonical header to its indexed form.
func StoredHeaderFromGeth(h *gethTypes.Header) *store.StoredHeader {
	return &store.StoredHeader{
		Hash:             h.Hash(),
		ParentHash:       h.ParentHash,
		UncleHash:        h.UncleHash,
		Coinbase:         h.Coinbase,
		Root:             h.Root,
		TxHash:           h.TxHash,
		ReceiptHash:      h.ReceiptHash,
		Bloom:            h.Bloom,
		Difficulty:       h.Difficulty,
		Number:           h.Number.Uint64(),
		GasLimit:         h.GasLimit,
		GasUsed:          h.GasUsed,
		Time:             h.Time,
		Extra:            h.Extra,
		MixDigest:        h.MixDigest,
		Nonce:            h.Nonce.Uint64(),
		BaseFee:          h.BaseFee,
		WithdrawalsHash:  h.WithdrawalsHash,
		BlobGasUsed:      h.BlobGasUsed,
		ExcessBlobGas:    h.ExcessBlobGas,
		ParentBeaconRoot: h.ParentBeaconRoot,
	}
}

// StoredTransactionFromGeth projects a signed transaction to its indexed form, leaving
// the inclusion position unset.
func StoredTransactionFromGeth(tx *gethTypes.Transaction, from common.Address) *store.StoredTransaction {
	v, r, s := tx.RawSignatureValues()

	stx := &store.StoredTransaction{
		Hash:  tx.Hash(),
		Type:  tx.Type(),
		Nonce: tx.Nonce(),
		From:  from,
		To:    tx.To(),
		Value: tx.Value(),
		Gas:   tx.Gas(),
		Input: tx.Data(),
		V:     v,
		R:     r,
		S:     s,
	}

	switch tx.Type() {
	case gethTypes.LegacyTxType:
		stx.GasPrice = tx.GasPrice()
	case gethTypes.AccessListTxType:
		stx.ChainID = tx.ChainId()
		stx.GasPrice = tx.GasPrice()
		stx.AccessList = tx.AccessList()
	case gethTypes.DynamicFeeTxType:
		stx.ChainID = tx.ChainId()
		stx.GasTipCap, stx.GasFeeCap = tx.GasTipCap(), tx.GasFeeCap()
		stx.AccessList = tx.AccessList()
	case gethTypes.BlobTxType:
		stx.ChainID = tx.ChainId()
		stx.GasTipCap, stx.GasFeeCap = tx.GasTipCap(), tx.GasFeeCap()
		stx.AccessList = tx.AccessList()
		stx.BlobGasFeeCap = tx.BlobGasFeeCap()
		stx.BlobHashes = tx.BlobHashes()
	}

	return stx
}

// StoredReceiptFromGeth projects a receipt to its indexed form, leaving the sender and
// recipient unset.
func StoredReceiptFromGeth(r *gethTypes.Receipt) *store.StoredReceipt {
	srcpt := &store.StoredReceipt{
		TransactionHash:   r.TxHash,
		BlockHash:         r.BlockHash,
		BlockNumber:       r.BlockNumber.Uint64(),
		TransactionIndex:  uint64(r.TransactionIndex),
		Type:              r.Type,
		PostState:         r.PostState,
		Status:            r.Status,
		CumulativeGasUsed: r.CumulativeGasUsed,
		GasUsed:           r.GasUsed,
		Bloom:             r.Bloom,
		EffectiveGasPrice: r.EffectiveGasPrice,
		BlobGasUsed:       r.BlobGasUsed,
		BlobGasPrice:      r.BlobGasPrice,
	}

	if r.ContractAddress != (common.Address{}) {
		contract := r.ContractAddress
		srcpt.ContractAddress = &contract
	}

	for _, log := range r.Logs {
		srcpt.Logs = append(srcpt.Logs, &store.StoredLog{
			Address:  log.Address,
			Topics:   log.Topics,
			Data:     log.Data,
			LogIndex: uint64(log.Index),
		})
	}

	return srcpt
}

// Sender recovers the signer of a canonical transaction.
func Sender(tx *gethTypes.Transaction) (common.Address, error) {
	return gethTypes.Sender(gethTypes.LatestSignerForChainID(tx.ChainId()), tx)
}
