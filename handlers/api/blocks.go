package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pk910/eth-graffiti-explorer/db"
	"github.com/pk910/eth-graffiti-explorer/dbtypes"
)

// ApiBlock returns a stored block by slot number or 0x-prefixed block root.
func ApiBlock(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	param := vars["slotOrRoot"]

	var block *dbtypes.Block
	var err error
	if strings.HasPrefix(param, "0x") {
		block, err = db.GetBlockByRoot(param)
	} else {
		var slot uint64
		slot, err = strconv.ParseUint(param, 10, 64)
		if err != nil {
			sendBadRequestResponse(w, r.URL.String(), "invalid slot provided")
			return
		}
		block, err = db.GetBlockBySlot(slot)
	}
	if err != nil {
		logger.WithError(err).Errorf("block lookup for %v failed", param)
		sendServerErrorResponse(w, r.URL.String(), "could not get block")
		return
	}
	if block == nil {
		sendNotFoundResponse(w, r.URL.String(), "block not found")
		return
	}

	sendOKResponse(w, r.URL.String(), block)
}
