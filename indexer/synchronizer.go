package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pk910/eth-graffiti-explorer/dbtypes"
	"github.com/pk910/eth-graffiti-explorer/utils"
)

// MaxSyncBatchSize caps the number of blocks stored per sync call. Skipped and
// already-known slots do not count against the cap.
const MaxSyncBatchSize = 100

// SyncSlots ingests blocks for a slot range. A nil fromSlot resumes one past
// the latest processed slot (or 0 on a fresh database), a nil toSlot syncs up
// to the finalized slot. Already stored slots and slots without a canonical
// block are skipped. On a store error the partial result is returned along
// with the error.
func (idx *Indexer) SyncSlots(ctx context.Context, fromSlot *uint64, toSlot *uint64) (*SyncResult, error) {
	idx.syncMutex.Lock()
	defer idx.syncMutex.Unlock()

	// finish blocks a previous run stored but never marked processed
	err := idx.processPendingBlocks()
	if err != nil {
		return nil, err
	}

	startSlot := uint64(0)
	if fromSlot != nil {
		startSlot = *fromSlot
	} else {
		latestSlot, found, err := idx.blockStore.GetLatestProcessedSlot()
		if err != nil {
			return nil, fmt.Errorf("error getting latest processed slot: %w", err)
		}
		if found {
			startSlot = latestSlot + 1
		}
	}

	endSlot := uint64(0)
	if toSlot != nil {
		endSlot = *toSlot
	} else {
		endSlot, err = idx.blockSource.GetFinalizedSlot(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting finalized slot: %w", err)
		}
	}

	result := &SyncResult{
		StartSlot: startSlot,
		EndSlot:   endSlot,
	}
	logger.Infof("syncing blocks from slot %v to %v", startSlot, endSlot)

	for slot := startSlot; slot <= endSlot && result.ProcessedCount < MaxSyncBatchSize; slot++ {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.EndSlot = slot

		stored, err := idx.blockStore.IsBlockStored(slot)
		if err != nil {
			return result, fmt.Errorf("error checking block existence for slot %v: %w", slot, err)
		}
		if stored {
			slotsSkippedCounter.Inc()
			continue
		}

		block, err := idx.blockSource.GetBlockAtSlot(ctx, slot)
		if err != nil {
			return result, err
		}
		if block == nil {
			logger.Debugf("no canonical block at slot %v", slot)
			slotsSkippedCounter.Inc()
			continue
		}

		err = idx.blockStore.InsertBlock(block)
		if err != nil {
			if errors.Is(err, ErrAlreadyExists) {
				slotsSkippedCounter.Inc()
				continue
			}
			return result, fmt.Errorf("error storing block at slot %v: %w", slot, err)
		}
		blocksStoredCounter.Inc()

		err = idx.storeGraffiti(block)
		if err != nil {
			return result, fmt.Errorf("error storing graffiti at slot %v: %w", slot, err)
		}

		err = idx.blockStore.SetBlockProcessed(slot)
		if err != nil {
			return result, fmt.Errorf("error marking slot %v processed: %w", slot, err)
		}
		result.ProcessedCount++
	}

	err = idx.blockStore.SaveSyncState(&SyncState{
		LastRun:        time.Now().Unix(),
		ProcessedCount: result.ProcessedCount,
		StartSlot:      result.StartSlot,
		EndSlot:        result.EndSlot,
	})
	if err != nil {
		logger.WithError(err).Warnf("could not persist sync state")
	}

	logger.Infof("synced %v blocks (slots %v-%v)", result.ProcessedCount, result.StartSlot, result.EndSlot)
	return result, nil
}

// storeGraffiti decodes and stores the graffiti record for a block. Blocks with
// an empty graffiti payload get no record, a duplicate record is tolerated.
func (idx *Indexer) storeGraffiti(block *dbtypes.Block) error {
	if block.Graffiti == "" || block.Graffiti == "0x" {
		return nil
	}

	err := idx.graffitiStore.InsertGraffiti(&dbtypes.Graffiti{
		Slot:         block.Slot,
		Epoch:        block.Epoch,
		BlockNumber:  block.Slot,
		BlockRoot:    block.Root,
		Proposer:     block.Proposer,
		RawGraffiti:  block.Graffiti,
		GraffitiText: utils.DecodeGraffiti(block.Graffiti),
		Timestamp:    block.Timestamp,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil
		}
		return err
	}
	graffitiStoredCounter.Inc()
	return nil
}

// processPendingBlocks re-drives blocks whose graffiti step was interrupted,
// so a crash between block insert and the processed flag cannot lose records.
func (idx *Indexer) processPendingBlocks() error {
	pendingBlocks, err := idx.blockStore.GetUnprocessedBlocks(MaxSyncBatchSize)
	if err != nil {
		return fmt.Errorf("error getting unprocessed blocks: %w", err)
	}
	if len(pendingBlocks) == 0 {
		return nil
	}

	logger.Infof("recovering %v unprocessed blocks", len(pendingBlocks))
	for _, block := range pendingBlocks {
		if block.Graffiti != "" && block.Graffiti != "0x" {
			stored, err := idx.graffitiStore.IsGraffitiStored(block.Slot, block.Root)
			if err != nil {
				return fmt.Errorf("error checking graffiti existence for slot %v: %w", block.Slot, err)
			}
			if !stored {
				err = idx.storeGraffiti(block)
				if err != nil {
					return fmt.Errorf("error storing graffiti for recovered slot %v: %w", block.Slot, err)
				}
			}
		}

		err = idx.blockStore.SetBlockProcessed(block.Slot)
		if err != nil {
			return fmt.Errorf("error marking recovered slot %v processed: %w", block.Slot, err)
		}
	}
	return nil
}
