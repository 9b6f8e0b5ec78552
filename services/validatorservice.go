package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/pk910/eth-graffiti-explorer/db"
	"github.com/pk910/eth-graffiti-explorer/dbtypes"
	"github.com/pk910/eth-graffiti-explorer/rpc"
	"github.com/pk910/eth-graffiti-explorer/rpctypes"
)

// validatorDataStore is the persistence surface of the validator cache.
type validatorDataStore interface {
	GetValidatorByIndex(index uint64) (*dbtypes.Validator, error)
	GetValidatorByPubkey(pubkey string) (*dbtypes.Validator, error)
	GetActiveValidators(limit uint32) ([]*dbtypes.Validator, error)
	UpsertValidator(validator *dbtypes.Validator) error
}

type dbValidatorDataStore struct{}

func (store *dbValidatorDataStore) GetValidatorByIndex(index uint64) (*dbtypes.Validator, error) {
	return db.GetValidatorByIndex(index)
}

func (store *dbValidatorDataStore) GetValidatorByPubkey(pubkey string) (*dbtypes.Validator, error) {
	return db.GetValidatorByPubkey(pubkey)
}

func (store *dbValidatorDataStore) GetActiveValidators(limit uint32) ([]*dbtypes.Validator, error) {
	return db.GetActiveValidators(limit)
}

func (store *dbValidatorDataStore) UpsertValidator(validator *dbtypes.Validator) error {
	tx, err := db.WriterDb.Beginx()
	if err != nil {
		return fmt.Errorf("error starting db transaction: %w", err)
	}
	defer tx.Rollback()

	err = db.UpsertValidator(validator, tx)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// validatorSource fetches validator details from the beacon node.
type validatorSource interface {
	GetStateValidator(index uint64) (*rpctypes.StandardV1StateValidatorResponse, error)
}

// ValidatorService resolves validator metadata, caching beacon node lookups in
// the database.
type ValidatorService struct {
	store  validatorDataStore
	source validatorSource
}

var GlobalValidatorService *ValidatorService

// StartValidatorService initializes the global validator service instance.
func StartValidatorService(client *rpc.BeaconClient) error {
	if GlobalValidatorService != nil {
		return nil
	}
	GlobalValidatorService = NewValidatorService(client)
	return nil
}

func NewValidatorService(client *rpc.BeaconClient) *ValidatorService {
	return &ValidatorService{
		store:  &dbValidatorDataStore{},
		source: client,
	}
}

// GetValidatorByIndex returns validator metadata by index. Unknown validators
// are fetched from the beacon node once and cached, a nil result means the
// index is unknown there too.
func (vs *ValidatorService) GetValidatorByIndex(index uint64) (*dbtypes.Validator, error) {
	validator, err := vs.store.GetValidatorByIndex(index)
	if err != nil {
		return nil, err
	}
	if validator != nil {
		return validator, nil
	}

	stateValidator, err := vs.source.GetStateValidator(index)
	if err != nil {
		return nil, err
	}
	if stateValidator == nil {
		return nil, nil
	}

	validator = &dbtypes.Validator{
		Index:             uint64(stateValidator.Data.Index),
		Pubkey:            stateValidator.Data.Validator.Pubkey.String(),
		WithdrawalAddress: stateValidator.Data.Validator.WithdrawalCredentials.String(),
		EffectiveBalance:  uint64(stateValidator.Data.Validator.EffectiveBalance),
		Active:            strings.Contains(stateValidator.Data.Status, "active"),
	}
	if activationEpoch := uint64(stateValidator.Data.Validator.ActivationEpoch); activationEpoch != math.MaxUint64 {
		validator.ActivationEpoch = &activationEpoch
	}
	if exitEpoch := uint64(stateValidator.Data.Validator.ExitEpoch); exitEpoch != math.MaxUint64 {
		validator.ExitEpoch = &exitEpoch
	}

	err = vs.store.UpsertValidator(validator)
	if err != nil {
		logger.WithError(err).Warnf("could not cache validator %v", index)
	}
	return validator, nil
}

// GetValidatorByPubkey returns cached validator metadata by pubkey. Only
// validators already seen via an index lookup are resolvable this way.
func (vs *ValidatorService) GetValidatorByPubkey(pubkey string) (*dbtypes.Validator, error) {
	return vs.store.GetValidatorByPubkey(pubkey)
}

// GetActiveValidators returns cached validators currently in the active set,
// ordered by index.
func (vs *ValidatorService) GetActiveValidators(limit uint32) ([]*dbtypes.Validator, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return vs.store.GetActiveValidators(limit)
}
