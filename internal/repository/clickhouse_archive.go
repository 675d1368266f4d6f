package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"CPIReg/internal/domain/models"
	drepo "CPIReg/internal/domain/repository"
)

// RunTables names the archive tables.
type RunTables struct {
	Runs   string
	Points string
}

// DefaultRunTables are used when the archive is created without explicit names.
var DefaultRunTables = RunTables{Runs: "runs", Points: "run_points"}

// SchemaStatements returns idempotent DDL for the archive tables.
func SchemaStatements(t RunTables) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id String,
	created_at DateTime64(3, 'UTC'),
	index_source LowCardinality(String),
	performance_source String,
	rows UInt32,
	slope Float64,
	intercept Float64,
	r_squared Float64,
	equation String
) ENGINE = MergeTree ORDER BY (created_at, run_id)`, t.Runs),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id String,
	date Date,
	index_value Float64,
	performance_value Float64,
	fitted_value Float64
) ENGINE = MergeTree ORDER BY (run_id, date)`, t.Points),
	}
}

// ClickHouseArchive stores every successful run and its aligned rows.
type ClickHouseArchive struct {
	db     *sql.DB
	tables RunTables
	closer func() error
}

// NewClickHouseArchive creates the archive. closer releases the pool on Close and may be nil.
func NewClickHouseArchive(db *sql.DB, tables RunTables, closer func() error) *ClickHouseArchive {
	if tables.Runs == "" || tables.Points == "" {
		tables = DefaultRunTables
	}
	return &ClickHouseArchive{db: db, tables: tables, closer: closer}
}

var _ drepo.RunArchive = (*ClickHouseArchive)(nil)

func (a *ClickHouseArchive) Archive(ctx context.Context, r *models.Report) error {
	q := fmt.Sprintf("INSERT INTO %s (run_id, created_at, index_source, performance_source, rows, slope, intercept, r_squared, equation) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", a.tables.Runs)
	if _, err := a.db.ExecContext(ctx, q,
		r.ID,
		r.CreatedAt,
		r.IndexSource,
		r.PerformanceSource,
		uint32(r.Table.Len()),
		r.Fit.Slope,
		r.Fit.Intercept,
		r.Fit.RSquared,
		r.Equation,
	); err != nil {
		return fmt.Errorf("archive run %s: %w", r.ID, err)
	}

	for _, stmt := range pointInserts(a.tables.Points, r) {
		if _, err := a.db.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			return fmt.Errorf("archive points %s: %w", r.ID, err)
		}
	}
	return nil
}

func (a *ClickHouseArchive) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

type insertStmt struct {
	query string
	args  []interface{}
}

const pointChunkSize = 2000

// pointInserts builds multi-row VALUES inserts, chunked to bound statement size.
func pointInserts(table string, r *models.Report) []insertStmt {
	var out []insertStmt
	rows := r.Table.Rows
	for start := 0; start < len(rows); start += pointChunkSize {
		end := start + pointChunkSize
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, row := range rows[start:end] {
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args, r.ID, row.Date, row.Index, row.Performance, r.Fit.Predict(row.Index))
		}
		out = append(out, insertStmt{
			query: fmt.Sprintf("INSERT INTO %s (run_id, date, index_value, performance_value, fitted_value) VALUES %s", table, strings.Join(values, ",")),
			args:  args,
		})
	}
	return out
}
