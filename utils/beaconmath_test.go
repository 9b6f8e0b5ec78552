package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pk910/eth-graffiti-explorer/types"
)

func setupChainConfig() {
	Config = &types.Config{}
	Config.Chain.GenesisTimestamp = 1606824023
	Config.Chain.SlotsPerEpoch = 32
	Config.Chain.SecondsPerSlot = 12
}

func TestEpochOfSlot(t *testing.T) {
	setupChainConfig()

	assert.Equal(t, uint64(0), EpochOfSlot(0))
	assert.Equal(t, uint64(0), EpochOfSlot(31))
	assert.Equal(t, uint64(1), EpochOfSlot(32))
	assert.Equal(t, uint64(312), EpochOfSlot(10000))
}

func TestFirstSlotOfEpoch(t *testing.T) {
	setupChainConfig()

	assert.Equal(t, uint64(0), FirstSlotOfEpoch(0))
	assert.Equal(t, uint64(32), FirstSlotOfEpoch(1))
	assert.Equal(t, uint64(320000), FirstSlotOfEpoch(10000))
}

func TestSlotTimeRoundtrip(t *testing.T) {
	setupChainConfig()

	assert.Equal(t, int64(1606824023), SlotToTime(0).Unix())
	assert.Equal(t, int64(1606824023+12000), SlotToTime(1000).Unix())

	for _, slot := range []uint64{0, 1, 32, 12345} {
		assert.Equal(t, slot, TimeToSlot(uint64(SlotToTime(slot).Unix())))
	}

	// timestamps before genesis clamp to slot 0
	assert.Equal(t, uint64(0), TimeToSlot(100))
}
