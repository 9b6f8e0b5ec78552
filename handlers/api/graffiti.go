package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pk910/eth-graffiti-explorer/dbtypes"
	"github.com/pk910/eth-graffiti-explorer/services"
)

type APIGraffitiSearchRequest struct {
	SearchTerm string  `json:"searchTerm"`
	Proposer   *uint64 `json:"proposer"`
	FromSlot   *uint64 `json:"fromSlot"`
	ToSlot     *uint64 `json:"toSlot"`
	FromDate   *int64  `json:"fromDate"`
	ToDate     *int64  `json:"toDate"`
	PageNumber uint64  `json:"pageNumber"`
	PageSize   uint64  `json:"pageSize"`
	SortBy     string  `json:"sortBy"`
	SortAsc    bool    `json:"sortAsc"`
}

var graffitiSortFields = map[string]dbtypes.GraffitiSortField{
	"":               dbtypes.GraffitiSortTimestamp,
	"slot":           dbtypes.GraffitiSortSlot,
	"proposer":       dbtypes.GraffitiSortProposer,
	"validatorIndex": dbtypes.GraffitiSortProposer,
	"timestamp":      dbtypes.GraffitiSortTimestamp,
}

// ApiGraffitiSearch runs a filtered graffiti search. Dates are unix timestamps.
func ApiGraffitiSearch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	request := APIGraffitiSearchRequest{}
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), "invalid request body")
		return
	}

	sortBy, validSortField := graffitiSortFields[request.SortBy]
	if !validSortField {
		sendBadRequestResponse(w, r.URL.String(), "invalid sortBy field")
		return
	}

	filter := &dbtypes.GraffitiSearchFilter{
		SearchTerm: request.SearchTerm,
		Proposer:   request.Proposer,
		FromSlot:   request.FromSlot,
		ToSlot:     request.ToSlot,
		PageNumber: request.PageNumber,
		PageSize:   request.PageSize,
		SortBy:     sortBy,
		SortAsc:    request.SortAsc,
	}
	if request.FromDate != nil {
		fromDate := time.Unix(*request.FromDate, 0)
		filter.FromDate = &fromDate
	}
	if request.ToDate != nil {
		toDate := time.Unix(*request.ToDate, 0)
		filter.ToDate = &toDate
	}

	result, err := services.GlobalGraffitiService.SearchGraffiti(filter)
	if err != nil {
		logger.WithError(err).Errorf("graffiti search failed")
		sendServerErrorResponse(w, r.URL.String(), "search failed")
		return
	}

	sendOKResponse(w, r.URL.String(), result)
}

func ApiGraffitiRecent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	count, err := parseUintQueryParam(r, "count", 25)
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), "invalid count provided")
		return
	}

	graffitis, err := services.GlobalGraffitiService.RecentGraffiti(uint32(count))
	if err != nil {
		logger.WithError(err).Errorf("recent graffiti lookup failed")
		sendServerErrorResponse(w, r.URL.String(), "could not get recent graffiti")
		return
	}

	sendOKResponse(w, r.URL.String(), graffitis)
}

func ApiGraffitiTop(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	count, err := parseUintQueryParam(r, "count", 10)
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), "invalid count provided")
		return
	}

	counts, err := services.GlobalGraffitiService.TopGraffiti(uint32(count))
	if err != nil {
		logger.WithError(err).Errorf("graffiti leaderboard lookup failed")
		sendServerErrorResponse(w, r.URL.String(), "could not get graffiti leaderboard")
		return
	}

	sendOKResponse(w, r.URL.String(), counts)
}

func ApiGraffitiByValidator(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	index, err := strconv.ParseUint(vars["index"], 10, 64)
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), "invalid validator index provided")
		return
	}
	limit, err := parseUintQueryParam(r, "limit", 25)
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), "invalid limit provided")
		return
	}

	graffitis, err := services.GlobalGraffitiService.GraffitiByValidator(index, uint32(limit))
	if err != nil {
		logger.WithError(err).Errorf("graffiti lookup for validator %v failed", index)
		sendServerErrorResponse(w, r.URL.String(), "could not get graffiti for validator")
		return
	}

	sendOKResponse(w, r.URL.String(), graffitis)
}

func ApiGraffitiCount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	count, err := services.GlobalGraffitiService.GraffitiCount()
	if err != nil {
		logger.WithError(err).Errorf("graffiti count lookup failed")
		sendServerErrorResponse(w, r.URL.String(), "could not get graffiti count")
		return
	}

	sendOKResponse(w, r.URL.String(), map[string]uint64{"count": count})
}

func ApiGraffitiById(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), "invalid graffiti id provided")
		return
	}

	graffiti, err := services.GlobalGraffitiService.GraffitiByID(id)
	if err != nil {
		logger.WithError(err).Errorf("graffiti lookup for id %v failed", id)
		sendServerErrorResponse(w, r.URL.String(), "could not get graffiti")
		return
	}
	if graffiti == nil {
		sendNotFoundResponse(w, r.URL.String(), "graffiti not found")
		return
	}

	sendOKResponse(w, r.URL.String(), graffiti)
}
