package data

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"github.com/target/vms-jobdist/internal/core"
	"github.com/target/vms-jobdist/internal/data/database"
	"github.com/target/vms-jobdist/internal/data/pgxutil"
)

// LookupRepo fetches display rows from reference tables.
type LookupRepo struct {
	DB *sql.DB
}

// NewLookupRepo creates a LookupRepo.
func NewLookupRepo(db *sql.DB) *LookupRepo {
	return &LookupRepo{DB: db}
}

// Lookup returns the display fields of rows whose match column is one of
// values, keyed by the match column rendered as text.
func (r *LookupRepo) Lookup(
	ctx context.Context,
	spec core.LookupSpec,
	values []string,
) (map[string]map[string]any, error) {
	out := make(map[string]map[string]any, len(values))
	if len(values) == 0 {
		return out, nil
	}

	cols := []string{spec.MatchColumn}
	for _, f := range spec.DisplayFields {
		if !slices.Contains(cols, f) {
			cols = append(cols, f)
		}
	}
	query, args := database.Select(spec.Table, cols...).
		Where(database.Raw(pgx.Identifier{spec.MatchColumn}.Sanitize()+"::text = ANY($1)", values)).
		Build()

	var rows []map[string]any
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		res, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		rows, err = pgx.CollectRows(res, pgx.RowToMap)
		return err
	})
	if err != nil {
		return nil, mapErr(err, "")
	}

	for _, row := range rows {
		key := fmt.Sprint(row[spec.MatchColumn])
		display := make(map[string]any, len(spec.DisplayFields))
		for _, f := range spec.DisplayFields {
			display[f] = row[f]
		}
		out[key] = display
	}
	return out, nil
}
