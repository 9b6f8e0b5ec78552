package services

import (
	"github.com/sirupsen/logrus"

	"github.com/pk910/eth-graffiti-explorer/db"
	"github.com/pk910/eth-graffiti-explorer/dbtypes"
)

var logger = logrus.StandardLogger().WithField("module", "services")

// MaxPageSize caps search pages to bound result set sizes.
const MaxPageSize = 1000

// graffitiDataStore is the query surface the service needs from the database.
type graffitiDataStore interface {
	SearchGraffiti(filter *dbtypes.GraffitiSearchFilter) ([]*dbtypes.GraffitiWithValidator, uint64, error)
	GetRecentGraffiti(limit uint32) ([]*dbtypes.Graffiti, error)
	GetGraffitiByProposer(proposer uint64, limit uint32) ([]*dbtypes.Graffiti, error)
	GetGraffitiLeaderboard(limit uint32) ([]*dbtypes.GraffitiCount, error)
	GetGraffitiCount() (uint64, error)
	GetGraffitiById(id uint64) (*dbtypes.Graffiti, error)
}

type dbGraffitiDataStore struct{}

func (store *dbGraffitiDataStore) SearchGraffiti(filter *dbtypes.GraffitiSearchFilter) ([]*dbtypes.GraffitiWithValidator, uint64, error) {
	return db.SearchGraffiti(filter)
}

func (store *dbGraffitiDataStore) GetRecentGraffiti(limit uint32) ([]*dbtypes.Graffiti, error) {
	return db.GetRecentGraffiti(limit)
}

func (store *dbGraffitiDataStore) GetGraffitiByProposer(proposer uint64, limit uint32) ([]*dbtypes.Graffiti, error) {
	return db.GetGraffitiByProposer(proposer, limit)
}

func (store *dbGraffitiDataStore) GetGraffitiLeaderboard(limit uint32) ([]*dbtypes.GraffitiCount, error) {
	return db.GetGraffitiLeaderboard(limit)
}

func (store *dbGraffitiDataStore) GetGraffitiCount() (uint64, error) {
	return db.GetGraffitiCount()
}

func (store *dbGraffitiDataStore) GetGraffitiById(id uint64) (*dbtypes.Graffiti, error) {
	return db.GetGraffitiById(id)
}

// PagedGraffitiResult is one page of search results plus paging metadata.
type PagedGraffitiResult struct {
	Items      []*dbtypes.GraffitiWithValidator `json:"items"`
	TotalCount uint64                           `json:"totalCount"`
	PageNumber uint64                           `json:"pageNumber"`
	PageSize   uint64                           `json:"pageSize"`
	TotalPages uint64                           `json:"totalPages"`
}

// GraffitiService is the query and aggregation layer over stored graffiti.
type GraffitiService struct {
	store graffitiDataStore
}

var GlobalGraffitiService *GraffitiService

// StartGraffitiService initializes the global graffiti service instance.
func StartGraffitiService() error {
	if GlobalGraffitiService != nil {
		return nil
	}
	GlobalGraffitiService = NewGraffitiService()
	return nil
}

func NewGraffitiService() *GraffitiService {
	return &GraffitiService{
		store: &dbGraffitiDataStore{},
	}
}

// SearchGraffiti runs a filtered, sorted, paged search. Out-of-range paging
// parameters are normalized instead of rejected.
func (gs *GraffitiService) SearchGraffiti(filter *dbtypes.GraffitiSearchFilter) (*PagedGraffitiResult, error) {
	if filter.PageNumber < 1 {
		filter.PageNumber = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 1
	}
	if filter.PageSize > MaxPageSize {
		filter.PageSize = MaxPageSize
	}
	if filter.SortBy == "" {
		filter.SortBy = dbtypes.GraffitiSortTimestamp
	}

	items, totalCount, err := gs.store.SearchGraffiti(filter)
	if err != nil {
		return nil, err
	}

	return &PagedGraffitiResult{
		Items:      items,
		TotalCount: totalCount,
		PageNumber: filter.PageNumber,
		PageSize:   filter.PageSize,
		TotalPages: (totalCount + filter.PageSize - 1) / filter.PageSize,
	}, nil
}

// RecentGraffiti returns the latest graffiti records, newest first.
func (gs *GraffitiService) RecentGraffiti(limit uint32) ([]*dbtypes.Graffiti, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return gs.store.GetRecentGraffiti(limit)
}

// GraffitiByValidator returns the graffiti a validator proposed, newest first.
func (gs *GraffitiService) GraffitiByValidator(index uint64, limit uint32) ([]*dbtypes.Graffiti, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return gs.store.GetGraffitiByProposer(index, limit)
}

// TopGraffiti returns the most frequent non-empty graffiti texts with counts,
// ordered by count descending.
func (gs *GraffitiService) TopGraffiti(limit uint32) ([]*dbtypes.GraffitiCount, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return gs.store.GetGraffitiLeaderboard(limit)
}

// GraffitiCount returns the total number of stored graffiti records.
func (gs *GraffitiService) GraffitiCount() (uint64, error) {
	return gs.store.GetGraffitiCount()
}

// GraffitiByID returns a single record, nil if the id is unknown.
func (gs *GraffitiService) GraffitiByID(id uint64) (*dbtypes.Graffiti, error) {
	return gs.store.GetGraffitiById(id)
}
