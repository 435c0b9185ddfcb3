package ethbridge

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/test"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertJSONEqual(t *testing.T, expected, actual any) {
	expectedJSON, err := json.Marshal(expected)
	require.NoError(t, err)

	actualJSON, err := json.Marshal(actual)
	require.NoError(t, err)

	assert.JSONEq(t, string(expectedJSON), string(actualJSON))
}

func TestConvertTransaction(t *testing.T) {
	cb := test.NewChainBuilder(1)
	block := cb.AddBlock(
		gethTypes.LegacyTxType, gethTypes.AccessListTxType, gethTypes.DynamicFeeTxType, gethTypes.BlobTxType,
	)

	for i, stx := range block.Data.Transactions {
		rpcTx, err := ConvertTransaction(stx, block.Header.BaseFee)
		require.NoError(t, err)

		expected, err := test.RpcTransactionFromGeth(block.Txs[i], test.TxInclusion{
			BlockHash:   block.Header.Hash(),
			BlockNumber: 1,
			Index:       uint64(i),
			BaseFee:     block.Header.BaseFee,
		})
		require.NoError(t, err)

		assertJSONEqual(t, expected, rpcTx)
		assert.Equal(t, cb.Sender(), rpcTx.From)
	}
}

func TestConvertTransactionDerivedFields(t *testing.T) {
	cb := test.NewChainBuilder(1)
	block := cb.AddBlock(gethTypes.LegacyTxType, gethTypes.DynamicFeeTxType)

	legacy, err := ConvertTransaction(block.Data.Transactions[0], block.Header.BaseFee)
	require.NoError(t, err)
	assert.Nil(t, legacy.YParity)
	assert.Nil(t, legacy.Accesses)
	assert.Equal(t, cb.ChainID.Uint64(), legacy.ChainID.ToInt().Uint64())
	// EIP-155 signature value
	assert.True(t, legacy.V.ToInt().Cmp(big.NewInt(35)) >= 0)

	dynamic, err := ConvertTransaction(block.Data.Transactions[1], block.Header.BaseFee)
	require.NoError(t, err)
	require.NotNil(t, dynamic.YParity)
	assert.Equal(t, uint64(*dynamic.YParity), dynamic.V.ToInt().Uint64())

	// base fee 7 gwei + tip 2 gwei under fee cap 20 gwei
	assert.Equal(t, uint64(9*params.GWei), dynamic.GasPrice.ToInt().Uint64())

	// fee cap applies when base fee rises
	capped, err := ConvertTransaction(block.Data.Transactions[1], big.NewInt(19*params.GWei))
	require.NoError(t, err)
	assert.Equal(t, uint64(20*params.GWei), capped.GasPrice.ToInt().Uint64())

	// base fee is required for dynamic fee txs
	_, err = ConvertTransaction(block.Data.Transactions[1], nil)
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "gasPrice", convErr.Field)
}

func TestConvertTransactionMalformed(t *testing.T) {
	cb := test.NewChainBuilder(1)
	block := cb.AddBlock(gethTypes.DynamicFeeTxType)

	testCases := []struct {
		field  string
		mutate func(stx *store.StoredTransaction)
	}{
		{"type", func(stx *store.StoredTransaction) { stx.Type = 5 }},
		{"maxFeePerGas", func(stx *store.StoredTransaction) { stx.GasFeeCap = nil }},
		{"value", func(stx *store.StoredTransaction) { stx.Value = big.NewInt(-1) }},
		{"r", func(stx *store.StoredTransaction) { stx.R = new(big.Int).Lsh(big.NewInt(1), 256) }},
		{"chainId", func(stx *store.StoredTransaction) { stx.ChainID = nil }},
	}

	for _, tc := range testCases {
		t.Run(tc.field, func(t *testing.T) {
			stx := *block.Data.Transactions[0]
			tc.mutate(&stx)

			_, err := ConvertTransaction(&stx, block.Header.BaseFee)

			var convErr *ConversionError
			require.ErrorAs(t, err, &convErr)
			assert.Equal(t, tc.field, convErr.Field)
		})
	}
}

func TestConvertReceipt(t *testing.T) {
	cb := test.NewChainBuilder(1)
	block := cb.AddBlock(
		gethTypes.LegacyTxType, gethTypes.DynamicFeeTxType, gethTypes.AccessListTxType, gethTypes.BlobTxType,
	)

	for i, srcpt := range block.Data.Receipts {
		rcpt, err := ConvertReceipt(srcpt)
		require.NoError(t, err)

		canonical := block.Receipts[i]
		assert.Equal(t, uint64(canonical.Type), uint64(rcpt.Type))
		assert.Equal(t, canonical.Status, uint64(*rcpt.Status))
		assert.Equal(t, canonical.CumulativeGasUsed, uint64(rcpt.CumulativeGasUsed))
		assert.Equal(t, canonical.Bloom, rcpt.LogsBloom)
		assert.Equal(t, canonical.TxHash, rcpt.TransactionHash)
		assert.Equal(t, uint64(i), uint64(rcpt.TransactionIndex))
		assert.Equal(t, canonical.EffectiveGasPrice, rcpt.EffectiveGasPrice.ToInt())
		assert.Nil(t, rcpt.Root)

		require.Len(t, rcpt.Logs, len(canonical.Logs))
		for j, log := range rcpt.Logs {
			assert.Equal(t, canonical.Logs[j].Address, log.Address)
			assert.Equal(t, canonical.Logs[j].Topics, log.Topics)
			assert.Equal(t, canonical.Logs[j].Data, []byte(log.Data))
			assert.Equal(t, block.Header.Hash(), log.BlockHash)
		}

		if canonical.Type == gethTypes.BlobTxType {
			require.NotNil(t, rcpt.BlobGasUsed)
			assert.Equal(t, canonical.BlobGasUsed, uint64(*rcpt.BlobGasUsed))
		} else {
			assert.Nil(t, rcpt.BlobGasUsed)
		}
	}
}

func TestConvertReceiptPreByzantium(t *testing.T) {
	cb := test.NewChainBuilder(1)
	cb.Forks = test.Forks{}
	block := cb.AddBlock(gethTypes.LegacyTxType)

	rcpt, err := ConvertReceipt(block.Data.Receipts[0])
	require.NoError(t, err)
	assert.Nil(t, rcpt.Status)
	assert.Equal(t, block.Receipts[0].PostState, []byte(rcpt.Root))

	data, err := json.Marshal(rcpt)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"status"`)
	assert.Contains(t, string(data), `"root"`)
}

func TestConvertReceiptMalformed(t *testing.T) {
	cb := test.NewChainBuilder(1)
	block := cb.AddBlock(gethTypes.LegacyTxType)

	srcpt := *block.Data.Receipts[0]
	srcpt.Status = 2
	_, err := ConvertReceipt(&srcpt)
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "status", convErr.Field)

	srcpt = *block.Data.Receipts[0]
	srcpt.PostState = []byte{0x01, 0x02}
	_, err = ConvertReceipt(&srcpt)
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "root", convErr.Field)

	srcpt = *block.Data.Receipts[0]
	srcpt.Type = 9
	_, err = ConvertReceipt(&srcpt)
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "type", convErr.Field)
}

func TestConvertReceiptRecomputesMissingBloom(t *testing.T) {
	cb := test.NewChainBuilder(1)
	block := cb.AddBlock(gethTypes.LegacyTxType)

	srcpt := *block.Data.Receipts[0]
	srcpt.Bloom = gethTypes.Bloom{}

	rcpt, err := ConvertReceipt(&srcpt)
	require.NoError(t, err)
	assert.Equal(t, block.Receipts[0].Bloom, rcpt.LogsBloom)
}

func TestConvertHeader(t *testing.T) {
	cb := test.NewChainBuilder(1)
	block := cb.AddBlock(gethTypes.DynamicFeeTxType)

	header, err := ConvertHeader(block.Data.Header)
	require.NoError(t, err)
	assertJSONEqual(t, test.RpcHeaderFromGeth(block.Header), header)

	// optional fork fields are omitted when absent
	cb = test.NewChainBuilder(1)
	cb.Forks = test.Forks{Byzantium: true}
	block = cb.AddBlock(gethTypes.LegacyTxType)

	header, err = ConvertHeader(block.Data.Header)
	require.NoError(t, err)

	data, err := json.Marshal(header)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "baseFeePerGas")
	assert.NotContains(t, string(data), "withdrawalsRoot")
	assert.Equal(t, hexutil.Big(*block.Header.Difficulty), *header.Difficulty)
}

func TestConvertWithdrawal(t *testing.T) {
	cb := test.NewChainBuilder(1)
	block := cb.AddBlock()

	require.Len(t, block.Data.Withdrawals, len(block.Withdrawals))
	for i, swd := range block.Data.Withdrawals {
		wd, err := ConvertWithdrawal(swd)
		require.NoError(t, err)
		assert.Equal(t, test.RpcWithdrawalFromGeth(block.Withdrawals[i]), wd)
	}
}
