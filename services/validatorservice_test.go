package services

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pk910/eth-graffiti-explorer/dbtypes"
	"github.com/pk910/eth-graffiti-explorer/rpctypes"
)

type fakeValidatorDataStore struct {
	validators map[uint64]*dbtypes.Validator
	upserts    int
}

func (store *fakeValidatorDataStore) GetValidatorByIndex(index uint64) (*dbtypes.Validator, error) {
	return store.validators[index], nil
}

func (store *fakeValidatorDataStore) GetValidatorByPubkey(pubkey string) (*dbtypes.Validator, error) {
	for _, validator := range store.validators {
		if validator.Pubkey == pubkey {
			return validator, nil
		}
	}
	return nil, nil
}

func (store *fakeValidatorDataStore) GetActiveValidators(limit uint32) ([]*dbtypes.Validator, error) {
	active := []*dbtypes.Validator{}
	for _, validator := range store.validators {
		if validator.Active {
			active = append(active, validator)
		}
	}
	sort.Slice(active, func(a, b int) bool {
		return active[a].Index < active[b].Index
	})
	if uint32(len(active)) > limit {
		active = active[:limit]
	}
	return active, nil
}

func (store *fakeValidatorDataStore) UpsertValidator(validator *dbtypes.Validator) error {
	store.validators[validator.Index] = validator
	store.upserts++
	return nil
}

type fakeValidatorSource struct {
	responses map[uint64]*rpctypes.StandardV1StateValidatorResponse
	fetches   int
}

func (source *fakeValidatorSource) GetStateValidator(index uint64) (*rpctypes.StandardV1StateValidatorResponse, error) {
	source.fetches++
	return source.responses[index], nil
}

func makeStateValidator(index uint64, status string, exitEpoch uint64) *rpctypes.StandardV1StateValidatorResponse {
	resp := &rpctypes.StandardV1StateValidatorResponse{}
	resp.Data.Index = rpctypes.Uint64Str(index)
	resp.Data.Status = status
	resp.Data.Validator.Pubkey = rpctypes.BytesHexStr{0xab, 0xcd}
	resp.Data.Validator.WithdrawalCredentials = rpctypes.BytesHexStr{0x01, 0x02}
	resp.Data.Validator.EffectiveBalance = 32000000000
	resp.Data.Validator.ActivationEpoch = 100
	resp.Data.Validator.ExitEpoch = rpctypes.Uint64Str(exitEpoch)
	return resp
}

func TestGetValidatorByIndexCached(t *testing.T) {
	store := &fakeValidatorDataStore{
		validators: map[uint64]*dbtypes.Validator{
			42: {Index: 42, Pubkey: "0xabcd"},
		},
	}
	source := &fakeValidatorSource{}
	vs := &ValidatorService{store: store, source: source}

	validator, err := vs.GetValidatorByIndex(42)
	require.NoError(t, err)
	require.NotNil(t, validator)
	assert.Equal(t, "0xabcd", validator.Pubkey)
	assert.Equal(t, 0, source.fetches)
}

func TestGetValidatorByIndexLazyFetch(t *testing.T) {
	store := &fakeValidatorDataStore{validators: map[uint64]*dbtypes.Validator{}}
	source := &fakeValidatorSource{
		responses: map[uint64]*rpctypes.StandardV1StateValidatorResponse{
			42: makeStateValidator(42, "active_ongoing", math.MaxUint64),
		},
	}
	vs := &ValidatorService{store: store, source: source}

	validator, err := vs.GetValidatorByIndex(42)
	require.NoError(t, err)
	require.NotNil(t, validator)
	assert.Equal(t, uint64(42), validator.Index)
	assert.Equal(t, "0xabcd", validator.Pubkey)
	assert.True(t, validator.Active)
	require.NotNil(t, validator.ActivationEpoch)
	assert.Equal(t, uint64(100), *validator.ActivationEpoch)
	assert.Nil(t, validator.ExitEpoch)
	assert.Equal(t, 1, store.upserts)

	// second lookup is served from the cache
	_, err = vs.GetValidatorByIndex(42)
	require.NoError(t, err)
	assert.Equal(t, 1, source.fetches)
}

func TestGetValidatorByIndexExited(t *testing.T) {
	store := &fakeValidatorDataStore{validators: map[uint64]*dbtypes.Validator{}}
	source := &fakeValidatorSource{
		responses: map[uint64]*rpctypes.StandardV1StateValidatorResponse{
			7: makeStateValidator(7, "exited_unslashed", 250000),
		},
	}
	vs := &ValidatorService{store: store, source: source}

	validator, err := vs.GetValidatorByIndex(7)
	require.NoError(t, err)
	require.NotNil(t, validator)
	assert.False(t, validator.Active)
	require.NotNil(t, validator.ExitEpoch)
	assert.Equal(t, uint64(250000), *validator.ExitEpoch)
}

func TestGetValidatorByPubkey(t *testing.T) {
	store := &fakeValidatorDataStore{
		validators: map[uint64]*dbtypes.Validator{
			42: {Index: 42, Pubkey: "0xabcd"},
		},
	}
	vs := &ValidatorService{store: store, source: &fakeValidatorSource{}}

	validator, err := vs.GetValidatorByPubkey("0xabcd")
	require.NoError(t, err)
	require.NotNil(t, validator)
	assert.Equal(t, uint64(42), validator.Index)

	validator, err = vs.GetValidatorByPubkey("0xffff")
	require.NoError(t, err)
	assert.Nil(t, validator)
}

func TestGetActiveValidators(t *testing.T) {
	store := &fakeValidatorDataStore{
		validators: map[uint64]*dbtypes.Validator{
			1: {Index: 1, Active: true},
			2: {Index: 2, Active: false},
			3: {Index: 3, Active: true},
		},
	}
	vs := &ValidatorService{store: store, source: &fakeValidatorSource{}}

	validators, err := vs.GetActiveValidators(10)
	require.NoError(t, err)
	require.Len(t, validators, 2)
	assert.Equal(t, uint64(1), validators[0].Index)
	assert.Equal(t, uint64(3), validators[1].Index)

	// zero limit is clamped instead of returning nothing
	validators, err = vs.GetActiveValidators(0)
	require.NoError(t, err)
	require.Len(t, validators, 1)
}

func TestGetValidatorByIndexUnknown(t *testing.T) {
	store := &fakeValidatorDataStore{validators: map[uint64]*dbtypes.Validator{}}
	source := &fakeValidatorSource{responses: map[uint64]*rpctypes.StandardV1StateValidatorResponse{}}
	vs := &ValidatorService{store: store, source: source}

	validator, err := vs.GetValidatorByIndex(99999999)
	require.NoError(t, err)
	assert.Nil(t, validator)
	assert.Equal(t, 0, store.upserts)
}
