package rpc

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pk910/eth-graffiti-explorer/types"
	"github.com/pk910/eth-graffiti-explorer/utils"
)

func init() {
	utils.Config = &types.Config{}
}

func TestGetBlockHeaderBySlot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/eth/v1/beacon/headers/100":
			w.Write([]byte(`{
				"finalized": true,
				"data": {
					"root": "0xd8e0cb14d0b30e42b8daf8e93b1b2a12c10a0d2e77625f8f0cb726ea74cbf3f4",
					"canonical": true,
					"header": {
						"message": {
							"slot": "100",
							"proposer_index": "42",
							"parent_root": "0x53cd5dfb9895c5c5c9b4de3b3cf2e1ad51ae9e3e26cee34a76601b18cff9f0ec",
							"state_root": "0x178a7247a0a09a1b1d3b239e1b0bb1e1b5f6f4c9e7b6e5d4c3b2a19080706050",
							"body_root": "0x4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c"
						},
						"signature": "0xab"
					}
				}
			}`))
		case "/eth/v1/beacon/headers/101":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"code": 404, "message": "NOT_FOUND: beacon block at slot 101"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewBeaconClient(server.URL, "test", nil)

	header, err := client.GetBlockHeaderBySlot(100)
	require.NoError(t, err)
	require.NotNil(t, header)
	assert.Equal(t, uint64(100), uint64(header.Data.Header.Message.Slot))
	assert.Equal(t, uint64(42), uint64(header.Data.Header.Message.ProposerIndex))
	assert.Equal(t, "0xd8e0cb14d0b30e42b8daf8e93b1b2a12c10a0d2e77625f8f0cb726ea74cbf3f4", header.Data.Root.String())

	// missing slots are not an error
	header, err = client.GetBlockHeaderBySlot(101)
	require.NoError(t, err)
	assert.Nil(t, header)
}

func TestGetBlockBodyByBlockroot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eth/v2/beacon/blocks/0xd8e0", r.URL.Path)
		w.Write([]byte(`{
			"finalized": true,
			"data": {
				"message": {
					"slot": "100",
					"proposer_index": "42",
					"parent_root": "0x53cd",
					"state_root": "0x178a",
					"body": {
						"graffiti": "0x68656c6c6f000000000000000000000000000000000000000000000000000000"
					}
				},
				"signature": "0xab"
			}
		}`))
	}))
	defer server.Close()

	client := NewBeaconClient(server.URL, "test", nil)

	block, err := client.GetBlockBodyByBlockroot("0xd8e0")
	require.NoError(t, err)
	require.NotNil(t, block)
	assert.Equal(t, uint64(100), uint64(block.Data.Message.Slot))
	assert.Equal(t, "0x68656c6c6f000000000000000000000000000000000000000000000000000000", block.Data.Message.Body.Graffiti.String())
}

func TestGetFinalityCheckpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eth/v1/beacon/states/head/finality_checkpoints", r.URL.Path)
		w.Write([]byte(`{
			"data": {
				"previous_justified": {"epoch": "9998", "root": "0x01"},
				"current_justified": {"epoch": "9999", "root": "0x02"},
				"finalized": {"epoch": "10000", "root": "0x03"}
			}
		}`))
	}))
	defer server.Close()

	client := NewBeaconClient(server.URL, "test", nil)

	checkpoints, err := client.GetFinalityCheckpoints()
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), uint64(checkpoints.Data.Finalized.Epoch))
}

func TestIsNodeHealthy(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()

	client := NewBeaconClient(server.URL, "test", nil)

	assert.True(t, client.IsNodeHealthy())

	status = http.StatusPartialContent
	assert.True(t, client.IsNodeHealthy())

	status = http.StatusServiceUnavailable
	assert.False(t, client.IsNodeHealthy())

	brokenClient := NewBeaconClient("http://127.0.0.1:1", "broken", nil)
	assert.False(t, brokenClient.IsNodeHealthy())
}
