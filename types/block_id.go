package types

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// BlockTag is a symbolic block reference.
type BlockTag string

const (
	BlockTagLatest    BlockTag = "latest"
	BlockTagEarliest  BlockTag = "earliest"
	BlockTagPending   BlockTag = "pending"
	BlockTagSafe      BlockTag = "safe"
	BlockTagFinalized BlockTag = "finalized"
)

func (t BlockTag) IsValid() bool {
	switch t {
	case BlockTagLatest, BlockTagEarliest, BlockTagPending, BlockTagSafe, BlockTagFinalized:
		return true
	}

	return false
}

func (t BlockTag) String() string {
	return string(t)
}

// BlockIdentifier identifies a block either by exact number, by symbolic tag or by hash.
// Exactly one of the three is set. A nil identifier is treated as the latest block.
type BlockIdentifier struct {
	number *uint64
	tag    BlockTag
	hash   *common.Hash
}

func BlockIdentifierFromNumber(number uint64) *BlockIdentifier {
	return &BlockIdentifier{number: &number}
}

func BlockIdentifierFromTag(tag BlockTag) *BlockIdentifier {
	return &BlockIdentifier{tag: tag}
}

func BlockIdentifierFromHash(hash common.Hash) *BlockIdentifier {
	return &BlockIdentifier{hash: &hash}
}

// OrLatest returns the identifier itself, or the latest tag if nil.
func (id *BlockIdentifier) OrLatest() *BlockIdentifier {
	if id == nil {
		return BlockIdentifierFromTag(BlockTagLatest)
	}

	return id
}

func (id *BlockIdentifier) Number() (uint64, bool) {
	if id == nil || id.number == nil {
		return 0, false
	}

	return *id.number, true
}

func (id *BlockIdentifier) Tag() (BlockTag, bool) {
	if id == nil {
		return BlockTagLatest, true
	}

	if len(id.tag) == 0 {
		return "", false
	}

	return id.tag, true
}

func (id *BlockIdentifier) Hash() (common.Hash, bool) {
	if id == nil || id.hash == nil {
		return common.Hash{}, false
	}

	return *id.hash, true
}

func (id *BlockIdentifier) String() string {
	if n, ok := id.Number(); ok {
		return fmt.Sprintf("#%v", n)
	}

	if h, ok := id.Hash(); ok {
		return h.Hex()
	}

	tag, _ := id.Tag()
	return tag.String()
}

// BlockNumber is the JSON-RPC block number parameter, either a hex quantity or a block tag.
// Unlike rpc.BlockNumber, the earliest tag is kept apart from block 0.
type BlockNumber struct {
	number *uint64
	tag    BlockTag
}

func BlockNumberFromUint64(number uint64) BlockNumber {
	return BlockNumber{number: &number}
}

func BlockNumberFromTag(tag BlockTag) BlockNumber {
	return BlockNumber{tag: tag}
}

func (bn *BlockNumber) UnmarshalJSON(data []byte) error {
	var input string
	if err := json.Unmarshal(data, &input); err != nil {
		return errors.WithMessage(err, "block number must be a hex string or block tag")
	}

	return bn.parse(input)
}

func (bn *BlockNumber) parse(input string) error {
	if tag := BlockTag(input); tag.IsValid() {
		*bn = BlockNumberFromTag(tag)
		return nil
	}

	number, err := hexutil.DecodeUint64(input)
	if err != nil {
		return errors.WithMessagef(err, "invalid block number %q", input)
	}

	if number > math.MaxInt64 {
		return errors.Errorf("block number %v larger than int64", number)
	}

	*bn = BlockNumberFromUint64(number)
	return nil
}

func (bn BlockNumber) MarshalText() ([]byte, error) {
	if bn.number != nil {
		return hexutil.Uint64(*bn.number).MarshalText()
	}

	if !bn.tag.IsValid() {
		return nil, errors.New("block number not specified")
	}

	return []byte(bn.tag), nil
}

// BlockNumberOrHash is the EIP-1898 block parameter: a block number, a block tag, a block
// hash, or an object with either blockNumber or blockHash field.
type BlockNumberOrHash struct {
	BlockNumber *BlockNumber
	BlockHash   *common.Hash
}

func (bnh *BlockNumberOrHash) UnmarshalJSON(data []byte) error {
	var input string
	if err := json.Unmarshal(data, &input); err == nil {
		if len(input) == 2*common.HashLength+2 {
			var hash common.Hash
			if err := hash.UnmarshalText([]byte(input)); err != nil {
				return err
			}

			*bnh = BlockNumberOrHash{BlockHash: &hash}
			return nil
		}

		var bn BlockNumber
		if err := bn.parse(input); err != nil {
			return err
		}

		*bnh = BlockNumberOrHash{BlockNumber: &bn}
		return nil
	}

	var obj struct {
		BlockNumber      *BlockNumber `json:"blockNumber"`
		BlockHash        *common.Hash `json:"blockHash"`
		RequireCanonical bool         `json:"requireCanonical"`
	}

	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	if obj.BlockNumber != nil && obj.BlockHash != nil {
		return errors.New("cannot specify both blockHash and blockNumber")
	}

	*bnh = BlockNumberOrHash{BlockNumber: obj.BlockNumber, BlockHash: obj.BlockHash}
	return nil
}

// NewBlockIdentifierFromBlockNumber converts the JSON-RPC block number parameter.
func NewBlockIdentifierFromBlockNumber(bn BlockNumber) (*BlockIdentifier, error) {
	if bn.number != nil {
		return BlockIdentifierFromNumber(*bn.number), nil
	}

	if bn.tag.IsValid() {
		return BlockIdentifierFromTag(bn.tag), nil
	}

	return nil, errors.New("block number not specified")
}

// NewBlockIdentifierFromBlockNumberOrHash converts the JSON-RPC block number or hash parameter.
func NewBlockIdentifierFromBlockNumberOrHash(bnh BlockNumberOrHash) (*BlockIdentifier, error) {
	if bnh.BlockHash != nil {
		return BlockIdentifierFromHash(*bnh.BlockHash), nil
	}

	if bnh.BlockNumber != nil {
		return NewBlockIdentifierFromBlockNumber(*bnh.BlockNumber)
	}

	return nil, errors.New("either block number or block hash must be specified")
}

// CanonicalBlockReference is a block reference that has been resolved and checked to exist
// in the store. Exactly one of number and hash is set, matching the addressing mode used.
// It is only valid for the request that produced it.
type CanonicalBlockReference struct {
	number *uint64
	hash   *common.Hash
}

func NewCanonicalBlockReferenceByNumber(number uint64) *CanonicalBlockReference {
	return &CanonicalBlockReference{number: &number}
}

func NewCanonicalBlockReferenceByHash(hash common.Hash) *CanonicalBlockReference {
	return &CanonicalBlockReference{hash: &hash}
}

func (ref *CanonicalBlockReference) Number() (uint64, bool) {
	if ref.number == nil {
		return 0, false
	}

	return *ref.number, true
}

func (ref *CanonicalBlockReference) Hash() (common.Hash, bool) {
	if ref.hash == nil {
		return common.Hash{}, false
	}

	return *ref.hash, true
}

func (ref *CanonicalBlockReference) String() string {
	if ref.hash != nil {
		return ref.hash.Hex()
	}

	return fmt.Sprintf("#%v", *ref.number)
}
