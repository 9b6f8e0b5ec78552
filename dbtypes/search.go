package dbtypes

import "time"

// GraffitiSortField is the closed set of sortable search columns
type GraffitiSortField string

const (
	GraffitiSortSlot      GraffitiSortField = "slot"
	GraffitiSortProposer  GraffitiSortField = "proposer"
	GraffitiSortTimestamp GraffitiSortField = "timestamp"
)

// GraffitiSearchFilter holds the conjunctive search filters, all optional
type GraffitiSearchFilter struct {
	SearchTerm string
	Proposer   *uint64
	FromSlot   *uint64
	ToSlot     *uint64
	FromDate   *time.Time
	ToDate     *time.Time

	PageNumber uint64
	PageSize   uint64
	SortBy     GraffitiSortField
	SortAsc    bool
}

// GraffitiWithValidator is a search result row with the optional validator join
type GraffitiWithValidator struct {
	Graffiti
	Validator *Validator `json:"validator"`
}
