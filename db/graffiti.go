package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mitchellh/mapstructure"

	"github.com/pk910/eth-graffiti-explorer/dbtypes"
)

// InsertGraffiti stores a decoded graffiti record. Uniqueness of (slot, block_root)
// is enforced by the schema, a violation surfaces as a duplicate key error.
func InsertGraffiti(graffiti *dbtypes.Graffiti, tx *sqlx.Tx) error {
	_, err := tx.Exec(`
		INSERT INTO graffitis (
			slot, epoch, block_number, block_root, proposer, proposer_pubkey, raw_graffiti, graffiti_text, "timestamp"
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		graffiti.Slot, graffiti.Epoch, graffiti.BlockNumber, graffiti.BlockRoot, graffiti.Proposer,
		graffiti.ProposerPubkey, graffiti.RawGraffiti, graffiti.GraffitiText, graffiti.Timestamp)
	if err != nil {
		return err
	}
	return nil
}

// IsGraffitiStored checks the (slot, block_root) dedup key.
func IsGraffitiStored(slot uint64, blockRoot string) (bool, error) {
	var count uint64
	err := ReaderDb.Get(&count, `SELECT COUNT(*) FROM graffitis WHERE slot = $1 AND block_root = $2`, slot, blockRoot)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func GetGraffitiById(id uint64) (*dbtypes.Graffiti, error) {
	graffiti := dbtypes.Graffiti{}
	err := ReaderDb.Get(&graffiti, `
	SELECT id, slot, epoch, block_number, block_root, proposer, proposer_pubkey, raw_graffiti, graffiti_text, "timestamp"
	FROM graffitis
	WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &graffiti, nil
}

func GetRecentGraffiti(limit uint32) ([]*dbtypes.Graffiti, error) {
	graffitis := []*dbtypes.Graffiti{}
	err := ReaderDb.Select(&graffitis, `
	SELECT id, slot, epoch, block_number, block_root, proposer, proposer_pubkey, raw_graffiti, graffiti_text, "timestamp"
	FROM graffitis
	ORDER BY "timestamp" DESC, id DESC
	LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return graffitis, nil
}

func GetGraffitiByProposer(proposer uint64, limit uint32) ([]*dbtypes.Graffiti, error) {
	graffitis := []*dbtypes.Graffiti{}
	err := ReaderDb.Select(&graffitis, `
	SELECT id, slot, epoch, block_number, block_root, proposer, proposer_pubkey, raw_graffiti, graffiti_text, "timestamp"
	FROM graffitis
	WHERE proposer = $1
	ORDER BY "timestamp" DESC, id DESC
	LIMIT $2
	`, proposer, limit)
	if err != nil {
		return nil, err
	}
	return graffitis, nil
}

func GetGraffitiCount() (uint64, error) {
	var count uint64
	err := ReaderDb.Get(&count, `SELECT COUNT(*) FROM graffitis`)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetGraffitiLeaderboard returns the most frequent non-empty decoded graffiti values.
// Ties are broken by the graffiti text ascending, so the order is deterministic
// across both engines.
func GetGraffitiLeaderboard(limit uint32) ([]*dbtypes.GraffitiCount, error) {
	counts := []*dbtypes.GraffitiCount{}
	err := ReaderDb.Select(&counts, `
	SELECT graffiti_text, COUNT(*) AS count
	FROM graffitis
	WHERE graffiti_text != ''
	GROUP BY graffiti_text
	ORDER BY count DESC, graffiti_text ASC
	LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

var graffitiSortColumns = map[dbtypes.GraffitiSortField]string{
	dbtypes.GraffitiSortSlot:      "slot",
	dbtypes.GraffitiSortProposer:  "proposer",
	dbtypes.GraffitiSortTimestamp: `"timestamp"`,
}

// likeEscaper makes LIKE metacharacters in user supplied search terms match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildGraffitiFilter(filter *dbtypes.GraffitiSearchFilter, sqlBuf *strings.Builder, args *[]any) {
	fmt.Fprintf(sqlBuf, " WHERE 1=1 ")
	if filter.SearchTerm != "" {
		*args = append(*args, "%"+likeEscaper.Replace(filter.SearchTerm)+"%")
		fmt.Fprintf(sqlBuf, EngineQuery(map[dbtypes.DBEngineType]string{
			dbtypes.DBEnginePgsql:  ` AND graffitis.graffiti_text ilike $%v ESCAPE '\' `,
			dbtypes.DBEngineSqlite: ` AND graffitis.graffiti_text LIKE $%v ESCAPE '\' `,
		}), len(*args))
	}
	if filter.Proposer != nil {
		*args = append(*args, *filter.Proposer)
		fmt.Fprintf(sqlBuf, ` AND graffitis.proposer = $%v `, len(*args))
	}
	if filter.FromSlot != nil {
		*args = append(*args, *filter.FromSlot)
		fmt.Fprintf(sqlBuf, ` AND graffitis.slot >= $%v `, len(*args))
	}
	if filter.ToSlot != nil {
		*args = append(*args, *filter.ToSlot)
		fmt.Fprintf(sqlBuf, ` AND graffitis.slot <= $%v `, len(*args))
	}
	if filter.FromDate != nil {
		*args = append(*args, filter.FromDate.Unix())
		fmt.Fprintf(sqlBuf, ` AND graffitis."timestamp" >= $%v `, len(*args))
	}
	if filter.ToDate != nil {
		*args = append(*args, filter.ToDate.Unix())
		fmt.Fprintf(sqlBuf, ` AND graffitis."timestamp" <= $%v `, len(*args))
	}
}

// SearchGraffiti applies the conjunctive filters, counts the filtered set and
// returns the requested page with an optional validator join per row.
func SearchGraffiti(filter *dbtypes.GraffitiSearchFilter) ([]*dbtypes.GraffitiWithValidator, uint64, error) {
	args := []any{}
	var filterSql strings.Builder
	buildGraffitiFilter(filter, &filterSql, &args)

	var totalCount uint64
	err := ReaderDb.Get(&totalCount, `SELECT COUNT(*) FROM graffitis`+filterSql.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting graffiti search results: %w", err)
	}

	sortColumn := graffitiSortColumns[filter.SortBy]
	if sortColumn == "" {
		sortColumn = graffitiSortColumns[dbtypes.GraffitiSortTimestamp]
	}
	sortDirection := "DESC"
	if filter.SortAsc {
		sortDirection = "ASC"
	}

	graffitiFields := []string{
		"id", "slot", "epoch", "block_number", "block_root", "proposer", "proposer_pubkey",
		"raw_graffiti", "graffiti_text", "timestamp",
	}
	validatorFields := []string{
		"validator_index", "pubkey", "withdrawal_address", "effective_balance", "active",
		"activation_epoch", "exit_epoch",
	}

	var sqlBuf strings.Builder
	fmt.Fprintf(&sqlBuf, `SELECT `)
	for i, field := range graffitiFields {
		if i > 0 {
			fmt.Fprintf(&sqlBuf, ", ")
		}
		fmt.Fprintf(&sqlBuf, `graffitis."%v"`, field)
	}
	for _, field := range validatorFields {
		fmt.Fprintf(&sqlBuf, `, validators."%v"`, field)
	}
	fmt.Fprintf(&sqlBuf, ` FROM graffitis LEFT JOIN validators ON validators.validator_index = graffitis.proposer `)
	sqlBuf.WriteString(filterSql.String())
	fmt.Fprintf(&sqlBuf, ` ORDER BY graffitis.%v %v, graffitis.id %v`, sortColumn, sortDirection, sortDirection)
	args = append(args, filter.PageSize)
	fmt.Fprintf(&sqlBuf, ` LIMIT $%v`, len(args))
	args = append(args, (filter.PageNumber-1)*filter.PageSize)
	fmt.Fprintf(&sqlBuf, ` OFFSET $%v`, len(args))

	rows, err := ReaderDb.Query(sqlBuf.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error searching graffitis: %w", err)
	}
	defer rows.Close()

	results := []*dbtypes.GraffitiWithValidator{}
	fieldCount := len(graffitiFields) + len(validatorFields)
	for rows.Next() {
		scanVals := make([]interface{}, fieldCount)
		scanArgs := make([]interface{}, fieldCount)
		for i := range scanArgs {
			scanArgs[i] = &scanVals[i]
		}
		err := rows.Scan(scanArgs...)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning graffiti search row: %w", err)
		}

		result := &dbtypes.GraffitiWithValidator{}
		err = decodeRow(scanVals[:len(graffitiFields)], graffitiFields, &result.Graffiti)
		if err != nil {
			return nil, 0, fmt.Errorf("error decoding graffiti search row: %w", err)
		}

		if scanVals[len(graffitiFields)] != nil {
			validator := dbtypes.Validator{}
			err = decodeRow(scanVals[len(graffitiFields):], validatorFields, &validator)
			if err != nil {
				return nil, 0, fmt.Errorf("error decoding joined validator row: %w", err)
			}
			result.Validator = &validator
		}

		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return results, totalCount, nil
}

func decodeRow(scanVals []interface{}, fields []string, result interface{}) error {
	valMap := map[string]interface{}{}
	for idx, field := range fields {
		val := scanVals[idx]
		// the pq driver returns TEXT columns as byte slices
		if byteVal, isBytes := val.([]byte); isBytes {
			val = string(byteVal)
		}
		valMap[field] = val
	}
	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           result,
		TagName:          "db",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(valMap)
}
