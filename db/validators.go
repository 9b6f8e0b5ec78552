package db

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/pk910/eth-graffiti-explorer/dbtypes"
)

// UpsertValidator stores validator metadata, replacing an existing entry for the
// same index. The validator set is maintained out of band of the ingestion pipeline.
func UpsertValidator(validator *dbtypes.Validator, tx *sqlx.Tx) error {
	_, err := tx.Exec(EngineQuery(map[dbtypes.DBEngineType]string{
		dbtypes.DBEnginePgsql: `
			INSERT INTO validators (
				validator_index, pubkey, withdrawal_address, effective_balance, active, activation_epoch, exit_epoch
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (validator_index) DO UPDATE SET
				pubkey = excluded.pubkey,
				withdrawal_address = excluded.withdrawal_address,
				effective_balance = excluded.effective_balance,
				active = excluded.active,
				activation_epoch = excluded.activation_epoch,
				exit_epoch = excluded.exit_epoch`,
		dbtypes.DBEngineSqlite: `
			INSERT OR REPLACE INTO validators (
				validator_index, pubkey, withdrawal_address, effective_balance, active, activation_epoch, exit_epoch
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	}),
		validator.Index, validator.Pubkey, validator.WithdrawalAddress, validator.EffectiveBalance,
		validator.Active, validator.ActivationEpoch, validator.ExitEpoch)
	if err != nil {
		return err
	}
	return nil
}

func GetValidatorByIndex(index uint64) (*dbtypes.Validator, error) {
	validator := dbtypes.Validator{}
	err := ReaderDb.Get(&validator, `
	SELECT validator_index, pubkey, withdrawal_address, effective_balance, active, activation_epoch, exit_epoch
	FROM validators
	WHERE validator_index = $1
	`, index)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &validator, nil
}

// GetActiveValidators returns validators currently in the active set, ordered by index.
func GetActiveValidators(limit uint32) ([]*dbtypes.Validator, error) {
	validators := []*dbtypes.Validator{}
	err := ReaderDb.Select(&validators, `
	SELECT validator_index, pubkey, withdrawal_address, effective_balance, active, activation_epoch, exit_epoch
	FROM validators
	WHERE active = $1
	ORDER BY validator_index ASC
	LIMIT $2
	`, true, limit)
	if err != nil {
		return nil, err
	}
	return validators, nil
}

func GetValidatorByPubkey(pubkey string) (*dbtypes.Validator, error) {
	validator := dbtypes.Validator{}
	err := ReaderDb.Get(&validator, `
	SELECT validator_index, pubkey, withdrawal_address, effective_balance, active, activation_epoch, exit_epoch
	FROM validators
	WHERE pubkey = $1
	`, pubkey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &validator, nil
}
