package indexer

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/pk910/eth-graffiti-explorer/rpc"
	"github.com/pk910/eth-graffiti-explorer/utils"
)

var logger = logrus.StandardLogger().WithField("module", "indexer")

var (
	blocksStoredCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "explorer_indexer_blocks_stored_total",
		Help: "Total number of beacon blocks stored by the indexer.",
	})
	graffitiStoredCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "explorer_indexer_graffiti_stored_total",
		Help: "Total number of graffiti records stored by the indexer.",
	})
	slotsSkippedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "explorer_indexer_slots_skipped_total",
		Help: "Total number of slots skipped (already known or without a canonical block).",
	})
)

// Indexer drives the ingestion pipeline from a beacon node into the database.
type Indexer struct {
	blockSource   BlockSource
	blockStore    BlockStore
	graffitiStore GraffitiStore
	syncMutex     sync.Mutex
}

var GlobalIndexer *Indexer

// StartIndexer initializes the global indexer instance.
func StartIndexer(client *rpc.BeaconClient) error {
	if GlobalIndexer != nil {
		return nil
	}
	GlobalIndexer = NewIndexer(client)
	return nil
}

func NewIndexer(client *rpc.BeaconClient) *Indexer {
	return newIndexer(
		newBeaconBlockSource(client, utils.Config.Indexer.FetchRateLimit),
		&dbBlockStore{},
		&dbGraffitiStore{},
	)
}

func newIndexer(blockSource BlockSource, blockStore BlockStore, graffitiStore GraffitiStore) *Indexer {
	return &Indexer{
		blockSource:   blockSource,
		blockStore:    blockStore,
		graffitiStore: graffitiStore,
	}
}

func (idx *Indexer) GetHeadSlot(ctx context.Context) (uint64, error) {
	return idx.blockSource.GetHeadSlot(ctx)
}

func (idx *Indexer) GetFinalizedSlot(ctx context.Context) (uint64, error) {
	return idx.blockSource.GetFinalizedSlot(ctx)
}

func (idx *Indexer) IsHealthy(ctx context.Context) bool {
	return idx.blockSource.IsHealthy(ctx)
}

// StartSyncLoop runs the ingestion pipeline periodically in the background
// until the context is cancelled.
func (idx *Indexer) StartSyncLoop(ctx context.Context) {
	interval := utils.Config.Indexer.SyncLoopInterval
	if interval == 0 {
		interval = 60 * time.Second
	}

	go func() {
		defer utils.HandleSubroutinePanic("indexer.syncLoop")

		for {
			_, err := idx.SyncSlots(ctx, nil, nil)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.WithError(err).Errorf("sync run failed")
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
		}
	}()
}
