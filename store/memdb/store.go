package memdb

import (
	"context"
	"sync"

	"github.com/Conflux-Chain/confura-evm/store"
	"github.com/Conflux-Chain/confura-evm/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const (
	// DefaultMemSize the default map size used for storing data.
	DefaultMemSize = 100
)

type config struct {
	memSize int
}

type Option func(*config)

// WithMemSize allows us to specify a custom mem size for store maps
func WithMemSize(memSize int) Option {
	return func(c *config) {
		if memSize >= 0 {
			c.memSize = memSize
		}
	}
}

type txLocation struct {
	block *store.BlockData
	index int
}

// MemoryStore holds indexed blocks in memory, which is used for development and testing.
type MemoryStore struct {
	mu sync.RWMutex

	blocks     []*store.BlockData // continuous blocks in ascending order
	hash2Blk   map[common.Hash]*store.BlockData
	hash2TxLoc map[common.Hash]txLocation
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	cfg := &config{memSize: DefaultMemSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return &MemoryStore{
		hash2Blk:   make(map[common.Hash]*store.BlockData, cfg.memSize),
		hash2TxLoc: make(map[common.Hash]txLocation, cfg.memSize),
	}
}

// Pushn appends continuous blocks to the store.
func (ms *MemoryStore) Pushn(_ context.Context, blocks ...*store.BlockData) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	last := ms.lastBlock()
	for _, block := range blocks {
		if err := block.Validate(); err != nil {
			return err
		}

		if last != nil {
			if ok, desc := block.IsContinuousTo(last); !ok {
				return errors.WithMessage(store.ErrContinousBlockRequired, desc)
			}
		}

		last = block
	}

	for _, block := range blocks {
		ms.blocks = append(ms.blocks, block)
		ms.hash2Blk[block.Hash()] = block

		for i, tx := range block.Transactions {
			ms.hash2TxLoc[tx.Hash] = txLocation{block: block, index: i}
		}
	}

	return nil
}

func (ms *MemoryStore) FindOne(_ context.Context, filter store.Filter, dest any) (bool, error) {
	if err := ms.checkQuery(filter, dest, false); err != nil {
		return false, err
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var found bool
	ms.scan(filter, func(record any) bool {
		assign(dest, record, false)
		found = true
		return false
	})

	return found, nil
}

func (ms *MemoryStore) Find(_ context.Context, filter store.Filter, dest any) error {
	if err := ms.checkQuery(filter, dest, true); err != nil {
		return err
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	ms.scan(filter, func(record any) bool {
		assign(dest, record, true)
		return true
	})

	return nil
}

func (ms *MemoryStore) BlockExists(_ context.Context, ref store.BlockRef) (bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	switch {
	case ref.Hash != nil:
		_, ok := ms.hash2Blk[*ref.Hash]
		return ok, nil
	case ref.Number != nil:
		return ms.blockByNumber(*ref.Number) != nil, nil
	}

	return false, errors.New("empty block reference")
}

// ResolveTag maps `earliest` to the lowest indexed block and any other tag to the
// highest indexed block, since no pending or finality info is indexed.
func (ms *MemoryStore) ResolveTag(_ context.Context, tag types.BlockTag) (uint64, error) {
	if !tag.IsValid() {
		return 0, errors.Errorf("invalid block tag %v", tag)
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if len(ms.blocks) == 0 {
		return 0, store.ErrNotFound
	}

	if tag == types.BlockTagEarliest {
		return ms.blocks[0].Number(), nil
	}

	return ms.lastBlock().Number(), nil
}

func (ms *MemoryStore) Close() error {
	return nil
}

func (ms *MemoryStore) checkQuery(filter store.Filter, dest any, many bool) error {
	if err := filter.Validate(); err != nil {
		return err
	}

	return store.CheckDestType(filter.Kind(), dest, many)
}

func (ms *MemoryStore) lastBlock() *store.BlockData {
	if len(ms.blocks) == 0 {
		return nil
	}

	return ms.blocks[len(ms.blocks)-1]
}

func (ms *MemoryStore) blockByNumber(bn uint64) *store.BlockData {
	if len(ms.blocks) == 0 || bn < ms.blocks[0].Number() {
		return nil
	}

	offset := bn - ms.blocks[0].Number()
	if offset >= uint64(len(ms.blocks)) {
		return nil
	}

	return ms.blocks[offset]
}

// candidateBlocks returns the blocks selected by the primary filter selector.
func (ms *MemoryStore) candidateBlocks(filter store.Filter) []*store.BlockData {
	switch filter.Primary() {
	case store.SelectorTxHash:
		txHash, _ := filter.TxHash()
		if loc, ok := ms.hash2TxLoc[txHash]; ok {
			return []*store.BlockData{loc.block}
		}
	case store.SelectorBlockHash:
		blockHash, _ := filter.BlockHash()
		if block, ok := ms.hash2Blk[blockHash]; ok {
			return []*store.BlockData{block}
		}
	case store.SelectorBlockNumber:
		bn, _ := filter.BlockNumber()
		if block := ms.blockByNumber(bn); block != nil {
			return []*store.BlockData{block}
		}
	case store.SelectorBlockRange:
		br, _ := filter.BlockRange()
		if len(ms.blocks) == 0 {
			return nil
		}

		from := max(br.From, ms.blocks[0].Number())
		to := min(br.To, ms.lastBlock().Number())

		var blocks []*store.BlockData
		for bn := from; bn <= to; bn++ {
			blocks = append(blocks, ms.blockByNumber(bn))
		}
		return blocks
	}

	return nil
}

// scan visits the records matched by the filter in order, until visit returns false.
func (ms *MemoryStore) scan(filter store.Filter, visit func(record any) bool) {
	for _, block := range ms.candidateBlocks(filter) {
		if !matchBlock(filter, block) {
			continue
		}

		switch filter.Kind() {
		case store.KindHeader:
			if !visit(block.Header) {
				return
			}
		case store.KindTransaction:
			for i, tx := range block.Transactions {
				if matchTx(filter, tx.Hash, i) && !visit(tx) {
					return
				}
			}
		case store.KindReceipt:
			for i, rcpt := range block.Receipts {
				if matchTx(filter, rcpt.TransactionHash, i) && !visit(rcpt) {
					return
				}
			}
		case store.KindWithdrawal:
			for _, wd := range block.Withdrawals {
				if !visit(wd) {
					return
				}
			}
		}
	}
}

func matchBlock(filter store.Filter, block *store.BlockData) bool {
	if hash, ok := filter.BlockHash(); ok && hash != block.Hash() {
		return false
	}

	if bn, ok := filter.BlockNumber(); ok && bn != block.Number() {
		return false
	}

	if br, ok := filter.BlockRange(); ok && !br.Contains(block.Number()) {
		return false
	}

	return true
}

func matchTx(filter store.Filter, txHash common.Hash, index int) bool {
	if hash, ok := filter.TxHash(); ok && hash != txHash {
		return false
	}

	if txIndex, ok := filter.TxIndex(); ok && txIndex != uint64(index) {
		return false
	}

	return true
}

func assign(dest, record any, many bool) {
	switch v := record.(type) {
	case *store.StoredHeader:
		put(dest, v, many)
	case *store.StoredTransaction:
		put(dest, v, many)
	case *store.StoredReceipt:
		put(dest, v, many)
	case *store.StoredWithdrawal:
		put(dest, v, many)
	}
}

// put hands out a copy so that callers never alias the stored records.
func put[T any](dest any, v *T, many bool) {
	cv := *v

	if many {
		store.AppendDest(dest, &cv)
	} else {
		store.SetDest(dest, &cv)
	}
}
