package store

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/cespare/xxhash"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Selector is the filter field that drives a query.
type Selector uint8

const (
	SelectorNone Selector = iota
	SelectorTxHash
	SelectorBlockHash
	SelectorBlockNumber
	SelectorBlockRange
)

func (s Selector) String() string {
	switch s {
	case SelectorTxHash:
		return "txHash"
	case SelectorBlockHash:
		return "blockHash"
	case SelectorBlockNumber:
		return "blockNumber"
	case SelectorBlockRange:
		return "blockRange"
	}

	return "none"
}

// Filter is an immutable query descriptor over one kind of chain record.
//
// The primary selector is picked by precedence: tx hash, block hash, block number and then
// block number range. Any other field set narrows the query down.
type Filter struct {
	kind        RecordKind
	txHash      *common.Hash
	blockHash   *common.Hash
	blockNumber *uint64
	blockRange  *types.RangeUint64
	txIndex     *uint64
}

func (f Filter) Kind() RecordKind {
	return f.kind
}

func (f Filter) TxHash() (common.Hash, bool) {
	if f.txHash == nil {
		return common.Hash{}, false
	}

	return *f.txHash, true
}

func (f Filter) BlockHash() (common.Hash, bool) {
	if f.blockHash == nil {
		return common.Hash{}, false
	}

	return *f.blockHash, true
}

func (f Filter) BlockNumber() (uint64, bool) {
	if f.blockNumber == nil {
		return 0, false
	}

	return *f.blockNumber, true
}

func (f Filter) BlockRange() (types.RangeUint64, bool) {
	if f.blockRange == nil {
		return types.RangeUint64{}, false
	}

	return *f.blockRange, true
}

func (f Filter) TxIndex() (uint64, bool) {
	if f.txIndex == nil {
		return 0, false
	}

	return *f.txIndex, true
}

// Primary returns the selector that drives the query.
func (f Filter) Primary() Selector {
	switch {
	case f.txHash != nil:
		return SelectorTxHash
	case f.blockHash != nil:
		return SelectorBlockHash
	case f.blockNumber != nil:
		return SelectorBlockNumber
	case f.blockRange != nil:
		return SelectorBlockRange
	}

	return SelectorNone
}

// Validate checks if the filter can be served for its record kind.
func (f Filter) Validate() error {
	switch f.kind {
	case KindHeader, KindWithdrawal:
		if f.txHash != nil || f.txIndex != nil {
			return errors.WithMessagef(ErrInvalidFilter, "tx fields not applicable to %v", f.kind)
		}
	case KindTransaction, KindReceipt:
	default:
		return errors.WithMessage(ErrInvalidFilter, "record kind unspecified")
	}

	if f.Primary() == SelectorNone {
		return errors.WithMessage(ErrInvalidFilter, "no selector specified")
	}

	if f.blockRange != nil && !f.blockRange.IsValid() {
		return errors.WithMessagef(ErrInvalidFilter, "invalid block range %v", *f.blockRange)
	}

	return nil
}

// Equal checks if both filters select the same records.
func (f Filter) Equal(other Filter) bool {
	return f.kind == other.kind &&
		equalPtr(f.txHash, other.txHash) &&
		equalPtr(f.blockHash, other.blockHash) &&
		equalPtr(f.blockNumber, other.blockNumber) &&
		equalPtr(f.blockRange, other.blockRange) &&
		equalPtr(f.txIndex, other.txIndex)
}

// Fingerprint returns a stable hash of the filter, which is equal for equal filters.
func (f Filter) Fingerprint() uint64 {
	return xxhash.Sum64(f.canonicalBytes())
}

func (f Filter) canonicalBytes() []byte {
	buf := make([]byte, 0, 128)
	buf = append(buf, byte(f.kind))

	if f.txHash != nil {
		buf = append(buf, 't')
		buf = append(buf, f.txHash.Bytes()...)
	}

	if f.blockHash != nil {
		buf = append(buf, 'h')
		buf = append(buf, f.blockHash.Bytes()...)
	}

	if f.blockNumber != nil {
		buf = append(buf, 'n')
		buf = binary.BigEndian.AppendUint64(buf, *f.blockNumber)
	}

	if f.blockRange != nil {
		buf = append(buf, 'r')
		buf = binary.BigEndian.AppendUint64(buf, f.blockRange.From)
		buf = binary.BigEndian.AppendUint64(buf, f.blockRange.To)
	}

	if f.txIndex != nil {
		buf = append(buf, 'i')
		buf = binary.BigEndian.AppendUint64(buf, *f.txIndex)
	}

	return buf
}

func (f Filter) String() string {
	var sb strings.Builder
	sb.WriteString(f.kind.String())
	sb.WriteString("{")

	var fields []string
	if f.txHash != nil {
		fields = append(fields, "txHash="+f.txHash.Hex())
	}

	if f.blockHash != nil {
		fields = append(fields, "blockHash="+f.blockHash.Hex())
	}

	if f.blockNumber != nil {
		fields = append(fields, fmt.Sprintf("blockNumber=%v", *f.blockNumber))
	}

	if f.blockRange != nil {
		fields = append(fields, "blockRange="+f.blockRange.String())
	}

	if f.txIndex != nil {
		fields = append(fields, fmt.Sprintf("txIndex=%v", *f.txIndex))
	}

	sb.WriteString(strings.Join(fields, ","))
	sb.WriteString("}")

	return sb.String()
}

// FilterBuilder accumulates selection fields for a Filter. It does no I/O and never
// checks that the referenced records exist.
type FilterBuilder struct {
	filter Filter
}

func NewFilterBuilder(kind RecordKind) *FilterBuilder {
	return &FilterBuilder{filter: Filter{kind: kind}}
}

func (b *FilterBuilder) WithTxHash(hash common.Hash) *FilterBuilder {
	b.filter.txHash = &hash
	return b
}

func (b *FilterBuilder) WithBlockHash(hash common.Hash) *FilterBuilder {
	b.filter.blockHash = &hash
	return b
}

func (b *FilterBuilder) WithBlockNumber(number uint64) *FilterBuilder {
	b.filter.blockNumber = &number
	return b
}

func (b *FilterBuilder) WithBlockNumberRange(r types.RangeUint64) *FilterBuilder {
	b.filter.blockRange = &r
	return b
}

func (b *FilterBuilder) WithTxIndex(index uint64) *FilterBuilder {
	b.filter.txIndex = &index
	return b
}

// WithBlockReference selects the block by whichever addressing mode the resolved
// reference carries.
func (b *FilterBuilder) WithBlockReference(ref *types.CanonicalBlockReference) *FilterBuilder {
	if hash, ok := ref.Hash(); ok {
		return b.WithBlockHash(hash)
	}

	number, _ := ref.Number()
	return b.WithBlockNumber(number)
}

// Build returns the filter. The builder can be reused afterwards without
// affecting filters already built.
func (b *FilterBuilder) Build() Filter {
	return Filter{
		kind:        b.filter.kind,
		txHash:      clonePtr(b.filter.txHash),
		blockHash:   clonePtr(b.filter.blockHash),
		blockNumber: clonePtr(b.filter.blockNumber),
		blockRange:  clonePtr(b.filter.blockRange),
		txIndex:     clonePtr(b.filter.txIndex),
	}
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}

	cv := *v
	return &cv
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
