package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/de-tools/peg-lens/pkg/models/domain"
	"github.com/de-tools/peg-lens/pkg/models/store"
	"github.com/rs/zerolog"
)

// RowSource fetches raw counter rows for one analysis window. A fetch failure
// is fatal for that period; there is no partial-aggregate fallback.
type RowSource interface {
	FetchRows(ctx context.Context, tr domain.TimeRange, filters store.RowFilters) ([]store.CounterRow, error)
}

// Dialect controls placeholder syntax for the underlying driver.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectDefault  Dialect = "default"
)

func (d Dialect) bindVar(i int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

type counterSource struct {
	db      *sql.DB
	table   string
	dialect Dialect
}

// NewCounterSource creates a RowSource reading from the given counter table.
func NewCounterSource(db *sql.DB, table string, dialect Dialect) RowSource {
	if table == "" {
		table = "peg_counters"
	}
	return &counterSource{db: db, table: table, dialect: dialect}
}

func (s *counterSource) FetchRows(ctx context.Context, tr domain.TimeRange, filters store.RowFilters) ([]store.CounterRow, error) {
	logger := zerolog.Ctx(ctx)

	query, args := s.buildQuery(tr, filters)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("counter query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close counter query rows")
		}
	}(rows)

	var out []store.CounterRow
	for rows.Next() {
		var (
			row   store.CounterRow
			value sql.NullString
			host  sql.NullString
		)
		if err := rows.Scan(&row.Timestamp, &row.Peg, &value, &row.NE, &row.CellID, &host); err != nil {
			return nil, fmt.Errorf("failed to scan counter row: %w", err)
		}
		row.Value = value.String
		row.Host = host.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("counter row iteration failed: %w", err)
	}

	logger.Debug().
		Int("rows", len(out)).
		Time("start", tr.Start).
		Time("end", tr.End).
		Msg("fetched counter rows")

	return out, nil
}

func (s *counterSource) buildQuery(tr domain.TimeRange, filters store.RowFilters) (string, []any) {
	var (
		conds []string
		args  []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return s.dialect.bindVar(len(args))
	}

	conds = append(conds, fmt.Sprintf("event_time >= %s", bind(tr.Start)))
	conds = append(conds, fmt.Sprintf("event_time < %s", bind(tr.End)))
	if filters.NE != "" {
		conds = append(conds, fmt.Sprintf("ne = %s", bind(filters.NE)))
	}
	if filters.CellID != "" {
		conds = append(conds, fmt.Sprintf("cellid = %s", bind(filters.CellID)))
	}
	if filters.Host != "" {
		conds = append(conds, fmt.Sprintf("host = %s", bind(filters.Host)))
	}
	if len(filters.Pegs) > 0 {
		placeholders := make([]string, 0, len(filters.Pegs))
		for _, peg := range filters.Pegs {
			placeholders = append(placeholders, bind(peg))
		}
		conds = append(conds, fmt.Sprintf("peg_name IN (%s)", strings.Join(placeholders, ", ")))
	}

	query := fmt.Sprintf(`
		SELECT
			event_time,
			peg_name,
			value,
			ne,
			cellid,
			host
		FROM %s
		WHERE %s
		ORDER BY event_time`, s.table, strings.Join(conds, "\n\t\t  AND "))

	return query, args
}
