package indexer

import (
	"fmt"

	"github.com/pk910/eth-graffiti-explorer/db"
	"github.com/pk910/eth-graffiti-explorer/dbtypes"
)

// dbBlockStore and dbGraffitiStore back the pipeline with the shared database.
// Each write runs in its own transaction, the pipeline does not need atomicity
// across the block and graffiti steps (unprocessed blocks are recovered on the
// next sync run).

type dbBlockStore struct{}

func (store *dbBlockStore) IsBlockStored(slot uint64) (bool, error) {
	return db.IsBlockStored(slot)
}

func (store *dbBlockStore) InsertBlock(block *dbtypes.Block) error {
	tx, err := db.WriterDb.Beginx()
	if err != nil {
		return fmt.Errorf("error starting db transaction: %w", err)
	}
	defer tx.Rollback()

	err = db.InsertBlock(block, tx)
	if err != nil {
		if db.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return tx.Commit()
}

func (store *dbBlockStore) SetBlockProcessed(slot uint64) error {
	tx, err := db.WriterDb.Beginx()
	if err != nil {
		return fmt.Errorf("error starting db transaction: %w", err)
	}
	defer tx.Rollback()

	err = db.SetBlockProcessed(slot, tx)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (store *dbBlockStore) GetLatestProcessedSlot() (uint64, bool, error) {
	return db.GetLatestProcessedSlot()
}

func (store *dbBlockStore) GetUnprocessedBlocks(limit uint32) ([]*dbtypes.Block, error) {
	return db.GetUnprocessedBlocks(limit)
}

func (store *dbBlockStore) SaveSyncState(state *SyncState) error {
	tx, err := db.WriterDb.Beginx()
	if err != nil {
		return fmt.Errorf("error starting db transaction: %w", err)
	}
	defer tx.Rollback()

	err = db.SetExplorerState("indexer.syncstate", state, tx)
	if err != nil {
		return err
	}
	return tx.Commit()
}

type dbGraffitiStore struct{}

func (store *dbGraffitiStore) IsGraffitiStored(slot uint64, blockRoot string) (bool, error) {
	return db.IsGraffitiStored(slot, blockRoot)
}

func (store *dbGraffitiStore) InsertGraffiti(graffiti *dbtypes.Graffiti) error {
	tx, err := db.WriterDb.Beginx()
	if err != nil {
		return fmt.Errorf("error starting db transaction: %w", err)
	}
	defer tx.Rollback()

	err = db.InsertGraffiti(graffiti, tx)
	if err != nil {
		if db.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return tx.Commit()
}
