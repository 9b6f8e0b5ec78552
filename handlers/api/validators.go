package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pk910/eth-graffiti-explorer/dbtypes"
	"github.com/pk910/eth-graffiti-explorer/services"
)

// ApiActiveValidators returns the cached validators currently in the active set.
func ApiActiveValidators(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	limit, err := parseUintQueryParam(r, "limit", 100)
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), "invalid limit provided")
		return
	}

	validators, err := services.GlobalValidatorService.GetActiveValidators(uint32(limit))
	if err != nil {
		logger.WithError(err).Errorf("active validators lookup failed")
		sendServerErrorResponse(w, r.URL.String(), "could not get active validators")
		return
	}

	sendOKResponse(w, r.URL.String(), validators)
}

// ApiValidator resolves a validator by index or 0x-prefixed pubkey.
func ApiValidator(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	param := vars["idxOrPubkey"]

	var validator *dbtypes.Validator
	var err error
	if strings.HasPrefix(param, "0x") {
		validator, err = services.GlobalValidatorService.GetValidatorByPubkey(param)
	} else {
		var index uint64
		index, err = strconv.ParseUint(param, 10, 64)
		if err != nil {
			sendBadRequestResponse(w, r.URL.String(), "invalid validator index provided")
			return
		}
		validator, err = services.GlobalValidatorService.GetValidatorByIndex(index)
	}
	if err != nil {
		logger.WithError(err).Errorf("validator lookup for %v failed", param)
		sendServerErrorResponse(w, r.URL.String(), "could not get validator")
		return
	}
	if validator == nil {
		sendNotFoundResponse(w, r.URL.String(), "validator not found")
		return
	}

	sendOKResponse(w, r.URL.String(), validator)
}
