package indexer

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/pk910/eth-graffiti-explorer/dbtypes"
	"github.com/pk910/eth-graffiti-explorer/rpc"
	"github.com/pk910/eth-graffiti-explorer/utils"
)

// beaconBlockSource adapts the beacon node REST client to the BlockSource
// interface. All block fetches pass through a rate limiter so backfills don't
// hammer the upstream node.
type beaconBlockSource struct {
	client  *rpc.BeaconClient
	limiter *rate.Limiter
}

func newBeaconBlockSource(client *rpc.BeaconClient, fetchRateLimit float64) *beaconBlockSource {
	limit := rate.Inf
	if fetchRateLimit > 0 {
		limit = rate.Limit(fetchRateLimit)
	}
	return &beaconBlockSource{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// GetBlockAtSlot fetches the canonical block at a slot. Skipped slots and
// upstream failures both yield a nil block, the failure is logged so a stalled
// node is visible without aborting the sync range.
func (source *beaconBlockSource) GetBlockAtSlot(ctx context.Context, slot uint64) (*dbtypes.Block, error) {
	if err := source.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	header, err := source.client.GetBlockHeaderBySlot(slot)
	if err != nil {
		logger.WithError(err).Warnf("could not fetch header for slot %v", slot)
		return nil, nil
	}
	if header == nil {
		return nil, nil
	}

	blockRoot := header.Data.Root.String()
	body, err := source.client.GetBlockBodyByBlockroot(blockRoot)
	if err != nil {
		logger.WithError(err).Warnf("could not fetch block body for slot %v (%v)", slot, blockRoot)
		return nil, nil
	}
	if body == nil {
		return nil, nil
	}

	graffiti := ""
	if len(body.Data.Message.Body.Graffiti) > 0 {
		graffiti = body.Data.Message.Body.Graffiti.String()
	}

	return &dbtypes.Block{
		Slot:       slot,
		Epoch:      utils.EpochOfSlot(slot),
		Root:       blockRoot,
		ParentRoot: header.Data.Header.Message.ParentRoot.String(),
		StateRoot:  header.Data.Header.Message.StateRoot.String(),
		Proposer:   uint64(header.Data.Header.Message.ProposerIndex),
		Graffiti:   graffiti,
		Timestamp:  utils.SlotToTime(slot).Unix(),
		Processed:  false,
	}, nil
}

func (source *beaconBlockSource) GetHeadSlot(ctx context.Context) (uint64, error) {
	head, err := source.client.GetLatestBlockHead()
	if err != nil {
		return 0, fmt.Errorf("could not get chain head: %w", err)
	}
	return uint64(head.Data.Header.Message.Slot), nil
}

// GetFinalizedSlot returns the first slot of the finalized epoch, the default
// upper bound for ingestion.
func (source *beaconBlockSource) GetFinalizedSlot(ctx context.Context) (uint64, error) {
	checkpoints, err := source.client.GetFinalityCheckpoints()
	if err != nil {
		return 0, fmt.Errorf("could not get finality checkpoints: %w", err)
	}
	return utils.FirstSlotOfEpoch(uint64(checkpoints.Data.Finalized.Epoch)), nil
}

func (source *beaconBlockSource) IsHealthy(ctx context.Context) bool {
	return source.client.IsNodeHealthy()
}
