package indexer

import (
	"context"
	"errors"

	"github.com/pk910/eth-graffiti-explorer/dbtypes"
)

// ErrAlreadyExists is returned by store inserts that collide with a uniqueness
// constraint. The pipeline treats it as a benign skip, a second worker racing on
// the same slot lost the insert.
var ErrAlreadyExists = errors.New("record already exists")

// BlockSource is the beacon node boundary. Absent slots and upstream failures are
// both surfaced as a nil block, the pipeline treats them identically.
type BlockSource interface {
	GetBlockAtSlot(ctx context.Context, slot uint64) (*dbtypes.Block, error)
	GetHeadSlot(ctx context.Context) (uint64, error)
	GetFinalizedSlot(ctx context.Context) (uint64, error)
	IsHealthy(ctx context.Context) bool
}

// BlockStore is the durable store of raw ingested blocks, keyed by slot.
type BlockStore interface {
	IsBlockStored(slot uint64) (bool, error)
	InsertBlock(block *dbtypes.Block) error
	SetBlockProcessed(slot uint64) error
	GetLatestProcessedSlot() (uint64, bool, error)
	GetUnprocessedBlocks(limit uint32) ([]*dbtypes.Block, error)
	SaveSyncState(state *SyncState) error
}

// GraffitiStore is the durable store of decoded graffiti records.
type GraffitiStore interface {
	IsGraffitiStored(slot uint64, blockRoot string) (bool, error)
	InsertGraffiti(graffiti *dbtypes.Graffiti) error
}

// SyncResult reports the outcome of one ingestion call.
type SyncResult struct {
	ProcessedCount uint64 `json:"processedCount"`
	StartSlot      uint64 `json:"startSlot"`
	EndSlot        uint64 `json:"endSlot"`
}

// SyncState is the persisted outcome of the most recent sync run.
type SyncState struct {
	LastRun        int64  `json:"lastRun"`
	ProcessedCount uint64 `json:"processedCount"`
	StartSlot      uint64 `json:"startSlot"`
	EndSlot        uint64 `json:"endSlot"`
}
