package db

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/pk910/eth-graffiti-explorer/dbtypes"
)

// InsertBlock stores a raw ingested block. The unique constraints on slot and root
// are the second line of defense behind the pipeline's existence check, a violation
// surfaces as a duplicate key error for the caller to classify.
func InsertBlock(block *dbtypes.Block, tx *sqlx.Tx) error {
	_, err := tx.Exec(`
		INSERT INTO blocks (
			slot, epoch, root, parent_root, state_root, proposer, graffiti, "timestamp", processed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		block.Slot, block.Epoch, block.Root, block.ParentRoot, block.StateRoot, block.Proposer, block.Graffiti, block.Timestamp, block.Processed)
	if err != nil {
		return err
	}
	return nil
}

func IsBlockStored(slot uint64) (bool, error) {
	var count uint64
	err := ReaderDb.Get(&count, `SELECT COUNT(*) FROM blocks WHERE slot = $1`, slot)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func GetBlockBySlot(slot uint64) (*dbtypes.Block, error) {
	block := dbtypes.Block{}
	err := ReaderDb.Get(&block, `
	SELECT slot, epoch, root, parent_root, state_root, proposer, graffiti, "timestamp", processed
	FROM blocks
	WHERE slot = $1
	`, slot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &block, nil
}

func GetBlockByRoot(root string) (*dbtypes.Block, error) {
	block := dbtypes.Block{}
	err := ReaderDb.Get(&block, `
	SELECT slot, epoch, root, parent_root, state_root, proposer, graffiti, "timestamp", processed
	FROM blocks
	WHERE root = $1
	`, root)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &block, nil
}

// SetBlockProcessed flips the processed flag, the last step of ingesting a slot.
func SetBlockProcessed(slot uint64, tx *sqlx.Tx) error {
	_, err := tx.Exec(`UPDATE blocks SET processed = $1 WHERE slot = $2`, true, slot)
	if err != nil {
		return err
	}
	return nil
}

// GetLatestProcessedSlot returns the high-water mark for sync resumption.
// The second return value is false if no block has been processed yet.
func GetLatestProcessedSlot() (uint64, bool, error) {
	var slot sql.NullInt64
	err := ReaderDb.Get(&slot, `SELECT MAX(slot) FROM blocks WHERE processed = $1`, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if !slot.Valid {
		return 0, false, nil
	}
	return uint64(slot.Int64), true, nil
}

// GetUnprocessedBlocks returns stored blocks whose graffiti step has not completed,
// in ascending slot order.
func GetUnprocessedBlocks(limit uint32) ([]*dbtypes.Block, error) {
	blocks := []*dbtypes.Block{}
	err := ReaderDb.Select(&blocks, `
	SELECT slot, epoch, root, parent_root, state_root, proposer, graffiti, "timestamp", processed
	FROM blocks
	WHERE processed = $1
	ORDER BY slot ASC
	LIMIT $2
	`, false, limit)
	if err != nil {
		return nil, err
	}
	return blocks, nil
}
