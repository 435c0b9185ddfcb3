package codec

import (
	"math/big"
	"testing"

	"github.com/Conflux-Chain/confura-evm/rpc/ethbridge"
	"github.com/Conflux-Chain/confura-evm/test"
	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allTxTypes = []uint8{
	gethTypes.LegacyTxType, gethTypes.AccessListTxType, gethTypes.DynamicFeeTxType, gethTypes.BlobTxType,
}

func rpcBlockOf(t *testing.T, block *test.Block) *types.Block {
	header, err := ethbridge.ConvertHeader(block.Data.Header)
	require.NoError(t, err)

	var txs []*types.Transaction
	for _, stx := range block.Data.Transactions {
		tx, err := ethbridge.ConvertTransaction(stx, block.Header.BaseFee)
		require.NoError(t, err)
		txs = append(txs, tx)
	}

	rpcBlock := &types.Block{
		Header:       *header,
		Transactions: types.NewBlockTransactionsFull(txs),
		Uncles:       []common.Hash{},
	}

	if block.Header.WithdrawalsHash != nil {
		rpcBlock.Withdrawals = []*types.Withdrawal{}
		for _, swd := range block.Data.Withdrawals {
			wd, err := ethbridge.ConvertWithdrawal(swd)
			require.NoError(t, err)
			rpcBlock.Withdrawals = append(rpcBlock.Withdrawals, wd)
		}
	}

	return rpcBlock
}

func TestEncodeTransaction(t *testing.T) {
	cb := test.NewChainBuilder(10)
	block := cb.AddBlock(allTxTypes...)

	for i, stx := range block.Data.Transactions {
		rpcTx, err := ethbridge.ConvertTransaction(stx, block.Header.BaseFee)
		require.NoError(t, err)

		raw, err := EncodeTransaction(rpcTx)
		require.NoError(t, err)

		expected, err := block.Txs[i].MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, expected, raw)

		if stx.Type == gethTypes.LegacyTxType {
			// legacy transactions are plain RLP lists
			assert.GreaterOrEqual(t, raw[0], byte(0xc0))
		} else {
			assert.Equal(t, stx.Type, raw[0])
		}

		// decoded transaction matches the RPC view, including the recovered sender
		decoded, err := DecodeTransaction(raw)
		require.NoError(t, err)
		assert.Equal(t, rpcTx.Hash, decoded.Hash())

		sender, err := test.Sender(decoded)
		require.NoError(t, err)
		assert.Equal(t, rpcTx.From, sender)

		rebuilt, err := test.RpcTransactionFromGeth(decoded, test.TxInclusion{
			BlockHash:   block.Header.Hash(),
			BlockNumber: 10,
			Index:       uint64(i),
			BaseFee:     block.Header.BaseFee,
		})
		require.NoError(t, err)
		assert.Equal(t, rpcTx.GasPrice.String(), rebuilt.GasPrice.String())
		assert.Equal(t, rpcTx.YParity, rebuilt.YParity)
		assert.Equal(t, rpcTx.V.String(), rebuilt.V.String())
	}
}

func TestEncodeTransactionFailure(t *testing.T) {
	cb := test.NewChainBuilder(10)
	block := cb.AddBlock(gethTypes.DynamicFeeTxType)

	convert := func() *types.Transaction {
		rpcTx, err := ethbridge.ConvertTransaction(block.Data.Transactions[0], block.Header.BaseFee)
		require.NoError(t, err)
		return rpcTx
	}

	testCases := []struct {
		field  string
		mutate func(tx *types.Transaction)
	}{
		{"type", func(tx *types.Transaction) { tx.Type = 4 }},
		{"signature", func(tx *types.Transaction) { tx.R = nil }},
		{"maxFeePerGas", func(tx *types.Transaction) { tx.MaxFeePerGas = nil }},
		{"hash", func(tx *types.Transaction) { tx.Nonce++ }},
	}

	for _, tc := range testCases {
		t.Run(tc.field, func(t *testing.T) {
			tx := convert()
			tc.mutate(tx)

			raw, err := EncodeTransaction(tx)
			assert.Nil(t, raw)

			var encErr *EncodingError
			require.ErrorAs(t, err, &encErr)
			assert.Equal(t, tc.field, encErr.Field)
		})
	}
}

func TestEncodeReceipt(t *testing.T) {
	cb := test.NewChainBuilder(10)
	block := cb.AddBlock(allTxTypes...)

	for i, srcpt := range block.Data.Receipts {
		rcpt, err := ethbridge.ConvertReceipt(srcpt)
		require.NoError(t, err)

		raw, err := EncodeReceipt(rcpt)
		require.NoError(t, err)

		expected, err := block.Receipts[i].MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, expected, raw)

		decoded, err := DecodeReceipt(raw)
		require.NoError(t, err)

		rebuilt := test.RpcReceiptFromGeth(decoded)
		assert.Equal(t, rcpt.Type, rebuilt.Type)
		assert.Equal(t, rcpt.Status, rebuilt.Status)
		assert.Equal(t, rcpt.CumulativeGasUsed, rebuilt.CumulativeGasUsed)
		assert.Equal(t, rcpt.LogsBloom, rebuilt.LogsBloom)
		require.Len(t, rebuilt.Logs, len(rcpt.Logs))
		for j := range rcpt.Logs {
			assert.Equal(t, rcpt.Logs[j].Address, rebuilt.Logs[j].Address)
			assert.Equal(t, rcpt.Logs[j].Topics, rebuilt.Logs[j].Topics)
			assert.Equal(t, rcpt.Logs[j].Data, rebuilt.Logs[j].Data)
		}
	}
}

func TestEncodeReceiptPreByzantium(t *testing.T) {
	cb := test.NewChainBuilder(10)
	cb.Forks = test.Forks{}
	block := cb.AddBlock(gethTypes.LegacyTxType)

	rcpt, err := ethbridge.ConvertReceipt(block.Data.Receipts[0])
	require.NoError(t, err)

	raw, err := EncodeReceipt(rcpt)
	require.NoError(t, err)

	expected, err := block.Receipts[0].MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, expected, raw)

	decoded, err := DecodeReceipt(raw)
	require.NoError(t, err)
	assert.Equal(t, block.Receipts[0].PostState, decoded.PostState)
}

func TestEncodeReceiptFailure(t *testing.T) {
	status := hexutil.Uint64(1)

	for _, rcpt := range []*types.Receipt{
		{Type: 7, Status: &status},
		{Type: 0},
		{Type: 2, Root: hexutil.Bytes{0x01}},
	} {
		raw, err := EncodeReceipt(rcpt)
		assert.Nil(t, raw)

		var encErr *EncodingError
		assert.ErrorAs(t, err, &encErr)
	}
}

func TestEncodeHeader(t *testing.T) {
	for _, forks := range []test.Forks{test.LatestForks, {Byzantium: true, London: true}, {}} {
		cb := test.NewChainBuilder(10)
		cb.Forks = forks
		block := cb.AddBlock(gethTypes.LegacyTxType)

		header, err := ethbridge.ConvertHeader(block.Data.Header)
		require.NoError(t, err)

		raw, err := EncodeHeader(header)
		require.NoError(t, err)

		expected, err := rlp.EncodeToBytes(block.Header)
		require.NoError(t, err)
		assert.Equal(t, expected, raw)

		decoded, err := DecodeHeader(raw)
		require.NoError(t, err)
		assert.Equal(t, header.Hash, decoded.Hash())
	}
}

func TestEncodeHeaderHashMismatch(t *testing.T) {
	cb := test.NewChainBuilder(10)
	block := cb.AddBlock()

	header, err := ethbridge.ConvertHeader(block.Data.Header)
	require.NoError(t, err)

	header.GasUsed++

	raw, err := EncodeHeader(header)
	assert.Nil(t, raw)

	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "hash", encErr.Field)
}

func TestEncodeBlock(t *testing.T) {
	for _, forks := range []test.Forks{test.LatestForks, {Byzantium: true, London: true}} {
		cb := test.NewChainBuilder(10)
		cb.Forks = forks

		var txTypes []uint8
		if forks.Cancun {
			txTypes = allTxTypes
		} else {
			txTypes = allTxTypes[:3]
		}

		block := cb.AddBlock(txTypes...)
		rpcBlock := rpcBlockOf(t, block)

		raw, err := EncodeBlock(rpcBlock)
		require.NoError(t, err)

		canonical := []any{block.Header, block.Txs, []*gethTypes.Header{}}
		if forks.Shanghai {
			canonical = append(canonical, block.Withdrawals)
		}

		expected, err := rlp.EncodeToBytes(canonical)
		require.NoError(t, err)
		assert.Equal(t, expected, raw)

		decoded, err := DecodeBlock(raw)
		require.NoError(t, err)
		assert.Equal(t, rpcBlock.Hash, decoded.Hash())
		assert.Equal(t, len(txTypes), decoded.Transactions().Len())
		assert.Equal(t, uint64(len(raw)), decoded.Size())

		if forks.Shanghai {
			assert.Len(t, decoded.Withdrawals(), len(block.Withdrawals))
		} else {
			assert.Nil(t, decoded.Withdrawals())
		}
	}
}

func TestEncodeBlockFailure(t *testing.T) {
	cb := test.NewChainBuilder(10)
	block := cb.AddBlock(gethTypes.LegacyTxType)
	rpcBlock := rpcBlockOf(t, block)

	// hashes only
	rpcBlock.Transactions = types.NewBlockTransactionHashes(rpcBlock.Transactions.Hashes())
	raw, err := EncodeBlock(rpcBlock)
	assert.Nil(t, raw)

	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "transactions", encErr.Field)

	// malformed transaction fails the whole block
	rpcBlock = rpcBlockOf(t, block)
	rpcBlock.Transactions.Full()[0].Value = (*hexutil.Big)(big.NewInt(1))
	raw, err = EncodeBlock(rpcBlock)
	assert.Nil(t, raw)
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "hash", encErr.Field)
}
