package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pk910/eth-graffiti-explorer/rpctypes"
	"github.com/pk910/eth-graffiti-explorer/utils"
)

var logger = logrus.StandardLogger().WithField("module", "rpc")

var errNotFound = errors.New("not found 404")

type BeaconClient struct {
	name     string
	endpoint string
	headers  map[string]string
	client   *http.Client
}

// NewBeaconClient is used to create a new beacon client
func NewBeaconClient(endpoint string, name string, headers map[string]string) *BeaconClient {
	requestTimeout := utils.Config.BeaconApi.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = 30 * time.Second
	}

	return &BeaconClient{
		name:     name,
		endpoint: endpoint,
		headers:  headers,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

func (bc *BeaconClient) Name() string {
	return bc.name
}

func (bc *BeaconClient) getJson(requrl string, returnValue interface{}) error {
	t0 := time.Now()
	defer func() {
		logger.WithField("client", bc.name).Debugf("RPC GET call (json): %v [%v ms]", requrl, time.Since(t0).Milliseconds())
	}()

	req, err := http.NewRequest("GET", requrl, nil)
	if err != nil {
		return err
	}
	for headerKey, headerVal := range bc.headers {
		req.Header.Set(headerKey, headerVal)
	}

	resp, err := bc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return errNotFound
		}
		data, _ := io.ReadAll(resp.Body)
		logger.WithField("client", bc.name).Debugf("RPC Error %v: %v", resp.StatusCode, data)
		return fmt.Errorf("url: %v, error-response: %s", requrl, data)
	}

	dec := json.NewDecoder(resp.Body)
	err = dec.Decode(&returnValue)
	if err != nil {
		return fmt.Errorf("error parsing json response: %v", err)
	}

	return nil
}

// GetLatestBlockHead returns the current head block header.
func (bc *BeaconClient) GetLatestBlockHead() (*rpctypes.StandardV1BeaconHeaderResponse, error) {
	parsedHead := rpctypes.StandardV1BeaconHeaderResponse{}
	err := bc.getJson(fmt.Sprintf("%s/eth/v1/beacon/headers/head", bc.endpoint), &parsedHead)
	if err != nil {
		return nil, fmt.Errorf("error retrieving latest block header: %v", err)
	}
	return &parsedHead, nil
}

// GetBlockHeaderBySlot returns the canonical block header at a slot.
// A missing (skipped) slot is returned as nil without error.
func (bc *BeaconClient) GetBlockHeaderBySlot(slot uint64) (*rpctypes.StandardV1BeaconHeaderResponse, error) {
	parsedHeader := rpctypes.StandardV1BeaconHeaderResponse{}
	err := bc.getJson(fmt.Sprintf("%s/eth/v1/beacon/headers/%d", bc.endpoint, slot), &parsedHeader)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving block header at slot %v: %v", slot, err)
	}
	return &parsedHeader, nil
}

// GetBlockBodyByBlockroot returns the full block body for a block root.
func (bc *BeaconClient) GetBlockBodyByBlockroot(blockroot string) (*rpctypes.StandardV2BeaconBlockResponse, error) {
	parsedBlock := rpctypes.StandardV2BeaconBlockResponse{}
	err := bc.getJson(fmt.Sprintf("%s/eth/v2/beacon/blocks/%s", bc.endpoint, blockroot), &parsedBlock)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving block body for %v: %v", blockroot, err)
	}
	return &parsedBlock, nil
}

// GetFinalityCheckpoints returns the current finality checkpoints.
func (bc *BeaconClient) GetFinalityCheckpoints() (*rpctypes.StandardV1FinalityCheckpointsResponse, error) {
	parsedCheckpoints := rpctypes.StandardV1FinalityCheckpointsResponse{}
	err := bc.getJson(fmt.Sprintf("%s/eth/v1/beacon/states/head/finality_checkpoints", bc.endpoint), &parsedCheckpoints)
	if err != nil {
		return nil, fmt.Errorf("error retrieving finality checkpoints: %v", err)
	}
	return &parsedCheckpoints, nil
}

// GetStateValidator returns validator details from the head state.
// An unknown validator index is returned as nil without error.
func (bc *BeaconClient) GetStateValidator(index uint64) (*rpctypes.StandardV1StateValidatorResponse, error) {
	parsedValidator := rpctypes.StandardV1StateValidatorResponse{}
	err := bc.getJson(fmt.Sprintf("%s/eth/v1/beacon/states/head/validators/%d", bc.endpoint, index), &parsedValidator)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving validator %v: %v", index, err)
	}
	return &parsedValidator, nil
}

// IsNodeHealthy checks the node health endpoint. 200 means healthy, 206 means
// syncing but usable, everything else (including transport errors) is unhealthy.
func (bc *BeaconClient) IsNodeHealthy() bool {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/eth/v1/node/health", bc.endpoint), nil)
	if err != nil {
		return false
	}
	for headerKey, headerVal := range bc.headers {
		req.Header.Set(headerKey, headerVal)
	}

	resp, err := bc.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent
}
