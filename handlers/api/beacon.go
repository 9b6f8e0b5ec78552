package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/pk910/eth-graffiti-explorer/db"
	"github.com/pk910/eth-graffiti-explorer/indexer"
)

// ApiBeaconSync triggers one ingestion run. fromSlot and toSlot are optional,
// the defaults resume from the latest processed slot up to finality.
func ApiBeaconSync(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	fromSlot, err := parseOptionalUintQueryParam(r, "fromSlot")
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), "invalid fromSlot provided")
		return
	}
	toSlot, err := parseOptionalUintQueryParam(r, "toSlot")
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), "invalid toSlot provided")
		return
	}

	result, err := indexer.GlobalIndexer.SyncSlots(r.Context(), fromSlot, toSlot)
	if err != nil {
		logger.WithError(err).Errorf("sync run failed")
		sendServerErrorResponse(w, r.URL.String(), "sync failed")
		return
	}

	sendOKResponse(w, r.URL.String(), result)
}

// ApiBeaconSyncState returns the persisted outcome of the last sync run.
func ApiBeaconSyncState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	syncState := indexer.SyncState{}
	_, err := db.GetExplorerState("indexer.syncstate", &syncState)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendNotFoundResponse(w, r.URL.String(), "no sync run recorded yet")
			return
		}
		logger.WithError(err).Errorf("sync state lookup failed")
		sendServerErrorResponse(w, r.URL.String(), "could not get sync state")
		return
	}

	sendOKResponse(w, r.URL.String(), syncState)
}

func ApiBeaconCurrentSlot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	slot, err := indexer.GlobalIndexer.GetHeadSlot(r.Context())
	if err != nil {
		logger.WithError(err).Errorf("head slot lookup failed")
		sendServerErrorResponse(w, r.URL.String(), "could not get current slot")
		return
	}

	sendOKResponse(w, r.URL.String(), map[string]uint64{"slot": slot})
}

func ApiBeaconFinalizedSlot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	slot, err := indexer.GlobalIndexer.GetFinalizedSlot(r.Context())
	if err != nil {
		logger.WithError(err).Errorf("finalized slot lookup failed")
		sendServerErrorResponse(w, r.URL.String(), "could not get finalized slot")
		return
	}

	sendOKResponse(w, r.URL.String(), map[string]uint64{"slot": slot})
}

func ApiBeaconHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	healthy := indexer.GlobalIndexer.IsHealthy(r.Context())
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	sendOKResponse(w, r.URL.String(), map[string]bool{"healthy": healthy})
}
