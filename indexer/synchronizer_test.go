package indexer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pk910/eth-graffiti-explorer/dbtypes"
	"github.com/pk910/eth-graffiti-explorer/types"
	"github.com/pk910/eth-graffiti-explorer/utils"
)

func init() {
	utils.Config = &types.Config{}
	utils.Config.Chain.SlotsPerEpoch = 32
	utils.Config.Chain.SecondsPerSlot = 12
}

type fakeBlockSource struct {
	blocks        map[uint64]*dbtypes.Block
	finalizedSlot uint64
	fetchCount    int
}

func (source *fakeBlockSource) GetBlockAtSlot(ctx context.Context, slot uint64) (*dbtypes.Block, error) {
	source.fetchCount++
	block, found := source.blocks[slot]
	if !found {
		return nil, nil
	}
	blockCopy := *block
	return &blockCopy, nil
}

func (source *fakeBlockSource) GetHeadSlot(ctx context.Context) (uint64, error) {
	return source.finalizedSlot, nil
}

func (source *fakeBlockSource) GetFinalizedSlot(ctx context.Context) (uint64, error) {
	return source.finalizedSlot, nil
}

func (source *fakeBlockSource) IsHealthy(ctx context.Context) bool {
	return true
}

type fakeStore struct {
	blocks           map[uint64]*dbtypes.Block
	graffiti         map[string]*dbtypes.Graffiti
	insertBlockErr   error
	markProcessed    int
	insertedGraffiti int
	syncState        *SyncState
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		blocks:   map[uint64]*dbtypes.Block{},
		graffiti: map[string]*dbtypes.Graffiti{},
	}
}

func (store *fakeStore) IsBlockStored(slot uint64) (bool, error) {
	_, found := store.blocks[slot]
	return found, nil
}

func (store *fakeStore) InsertBlock(block *dbtypes.Block) error {
	if store.insertBlockErr != nil {
		return store.insertBlockErr
	}
	if _, found := store.blocks[block.Slot]; found {
		return ErrAlreadyExists
	}
	blockCopy := *block
	store.blocks[block.Slot] = &blockCopy
	return nil
}

func (store *fakeStore) SetBlockProcessed(slot uint64) error {
	block, found := store.blocks[slot]
	if !found {
		return fmt.Errorf("no block at slot %v", slot)
	}
	block.Processed = true
	store.markProcessed++
	return nil
}

func (store *fakeStore) GetLatestProcessedSlot() (uint64, bool, error) {
	latestSlot := uint64(0)
	found := false
	for slot, block := range store.blocks {
		if block.Processed && (!found || slot > latestSlot) {
			latestSlot = slot
			found = true
		}
	}
	return latestSlot, found, nil
}

func (store *fakeStore) GetUnprocessedBlocks(limit uint32) ([]*dbtypes.Block, error) {
	blocks := []*dbtypes.Block{}
	for _, block := range store.blocks {
		if !block.Processed {
			blocks = append(blocks, block)
		}
	}
	sort.Slice(blocks, func(a, b int) bool {
		return blocks[a].Slot < blocks[b].Slot
	})
	if uint32(len(blocks)) > limit {
		blocks = blocks[:limit]
	}
	return blocks, nil
}

func (store *fakeStore) SaveSyncState(state *SyncState) error {
	store.syncState = state
	return nil
}

func (store *fakeStore) IsGraffitiStored(slot uint64, blockRoot string) (bool, error) {
	_, found := store.graffiti[fmt.Sprintf("%v:%v", slot, blockRoot)]
	return found, nil
}

func (store *fakeStore) InsertGraffiti(graffiti *dbtypes.Graffiti) error {
	key := fmt.Sprintf("%v:%v", graffiti.Slot, graffiti.BlockRoot)
	if _, found := store.graffiti[key]; found {
		return ErrAlreadyExists
	}
	graffitiCopy := *graffiti
	store.graffiti[key] = &graffitiCopy
	store.insertedGraffiti++
	return nil
}

func makeTestBlock(slot uint64, graffitiHex string) *dbtypes.Block {
	return &dbtypes.Block{
		Slot:      slot,
		Epoch:     slot / 32,
		Root:      fmt.Sprintf("0xroot%04d", slot),
		Proposer:  slot * 10,
		Graffiti:  graffitiHex,
		Timestamp: int64(1606824023 + slot*12),
	}
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}

func TestSyncSlotsFreshRange(t *testing.T) {
	// "hello" padded to 32 bytes
	helloGraffiti := "0x68656c6c6f000000000000000000000000000000000000000000000000000000"

	source := &fakeBlockSource{
		blocks: map[uint64]*dbtypes.Block{
			0: makeTestBlock(0, helloGraffiti),
			1: makeTestBlock(1, ""),
			3: makeTestBlock(3, helloGraffiti),
		},
	}
	store := newFakeStore()
	idx := newIndexer(source, store, store)

	result, err := idx.SyncSlots(context.Background(), uint64Ptr(0), uint64Ptr(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.ProcessedCount)
	assert.Equal(t, uint64(0), result.StartSlot)
	assert.Equal(t, uint64(3), result.EndSlot)

	// slot 2 was skipped, slot 1 has no graffiti payload
	assert.Len(t, store.blocks, 3)
	assert.Len(t, store.graffiti, 2)
	assert.Equal(t, 3, store.markProcessed)
	assert.Equal(t, 2, store.insertedGraffiti)
	assert.True(t, store.blocks[0].Processed)
	assert.True(t, store.blocks[1].Processed)
	assert.True(t, store.blocks[3].Processed)
	assert.Equal(t, "hello", store.graffiti["0:0xroot0000"].GraffitiText)

	require.NotNil(t, store.syncState)
	assert.Equal(t, uint64(3), store.syncState.ProcessedCount)
}

func TestSyncSlotsOverlappingRange(t *testing.T) {
	helloGraffiti := "0x68656c6c6f000000000000000000000000000000000000000000000000000000"

	source := &fakeBlockSource{
		blocks: map[uint64]*dbtypes.Block{
			0: makeTestBlock(0, helloGraffiti),
			1: makeTestBlock(1, helloGraffiti),
			2: makeTestBlock(2, helloGraffiti),
		},
	}
	store := newFakeStore()
	idx := newIndexer(source, store, store)

	result, err := idx.SyncSlots(context.Background(), uint64Ptr(0), uint64Ptr(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.ProcessedCount)
	fetchesAfterFirstRun := source.fetchCount

	// second run over the same range skips everything without refetching
	result, err = idx.SyncSlots(context.Background(), uint64Ptr(0), uint64Ptr(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.ProcessedCount)
	assert.Equal(t, fetchesAfterFirstRun, source.fetchCount)
	assert.Len(t, store.graffiti, 3)
}

func TestSyncSlotsBatchCap(t *testing.T) {
	source := &fakeBlockSource{blocks: map[uint64]*dbtypes.Block{}}
	for slot := uint64(0); slot < 250; slot++ {
		source.blocks[slot] = makeTestBlock(slot, "0x6869000000000000000000000000000000000000000000000000000000000000")
	}
	store := newFakeStore()
	idx := newIndexer(source, store, store)

	result, err := idx.SyncSlots(context.Background(), uint64Ptr(0), uint64Ptr(249))
	require.NoError(t, err)
	assert.Equal(t, uint64(MaxSyncBatchSize), result.ProcessedCount)
	assert.Equal(t, uint64(99), result.EndSlot)

	// next run resumes from the high-water mark
	result, err = idx.SyncSlots(context.Background(), nil, uint64Ptr(249))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), result.StartSlot)
	assert.Equal(t, uint64(MaxSyncBatchSize), result.ProcessedCount)
}

func TestSyncSlotsDefaultRange(t *testing.T) {
	source := &fakeBlockSource{
		blocks: map[uint64]*dbtypes.Block{
			10: makeTestBlock(10, ""),
			11: makeTestBlock(11, ""),
			12: makeTestBlock(12, ""),
		},
		finalizedSlot: 12,
	}
	store := newFakeStore()
	store.blocks[10] = makeTestBlock(10, "")
	store.blocks[10].Processed = true
	idx := newIndexer(source, store, store)

	result, err := idx.SyncSlots(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), result.StartSlot)
	assert.Equal(t, uint64(12), result.EndSlot)
	assert.Equal(t, uint64(2), result.ProcessedCount)
}

func TestSyncSlotsRecoversUnprocessedBlocks(t *testing.T) {
	source := &fakeBlockSource{blocks: map[uint64]*dbtypes.Block{}}
	store := newFakeStore()

	// a previous run stored this block but crashed before the graffiti step
	pending := makeTestBlock(5, "0x68656c6c6f000000000000000000000000000000000000000000000000000000")
	store.blocks[5] = pending
	idx := newIndexer(source, store, store)

	result, err := idx.SyncSlots(context.Background(), uint64Ptr(20), uint64Ptr(19))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.ProcessedCount)

	assert.True(t, store.blocks[5].Processed)
	require.Len(t, store.graffiti, 1)
	assert.Equal(t, "hello", store.graffiti["5:0xroot0005"].GraffitiText)
}

func TestSyncSlotsDuplicateInsertIsSkipped(t *testing.T) {
	source := &fakeBlockSource{
		blocks: map[uint64]*dbtypes.Block{
			0: makeTestBlock(0, ""),
		},
	}
	store := newFakeStore()
	store.insertBlockErr = ErrAlreadyExists
	idx := newIndexer(source, store, store)

	// a concurrent writer won the insert race, this is not an error
	result, err := idx.SyncSlots(context.Background(), uint64Ptr(0), uint64Ptr(0))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.ProcessedCount)
}

func TestSyncSlotsStoreErrorAborts(t *testing.T) {
	source := &fakeBlockSource{
		blocks: map[uint64]*dbtypes.Block{
			0: makeTestBlock(0, ""),
			1: makeTestBlock(1, ""),
		},
	}
	store := newFakeStore()
	idx := newIndexer(source, store, store)

	result, err := idx.SyncSlots(context.Background(), uint64Ptr(0), uint64Ptr(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.ProcessedCount)

	store.insertBlockErr = errors.New("disk full")
	source.blocks[2] = makeTestBlock(2, "")
	result, err = idx.SyncSlots(context.Background(), uint64Ptr(2), uint64Ptr(2))
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint64(0), result.ProcessedCount)
}
