package repository

import (
	"strings"
	"testing"
	"time"

	"CPIReg/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointInsertsChunks(t *testing.T) {
	rows := make([]models.AlignedRow, pointChunkSize+3)
	start := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		rows[i] = models.AlignedRow{Date: start.AddDate(0, i, 0), Index: float64(i), Performance: float64(2 * i)}
	}
	r := &models.Report{
		ID:    "run-1",
		Table: models.AlignedTable{Rows: rows},
		Fit:   models.FitResult{Slope: 2, Intercept: 1},
	}

	stmts := pointInserts("run_points", r)
	require.Len(t, stmts, 2)
	assert.Len(t, stmts[0].args, pointChunkSize*5)
	assert.Len(t, stmts[1].args, 3*5)
	assert.True(t, strings.HasPrefix(stmts[1].query, "INSERT INTO run_points (run_id, date, index_value, performance_value, fitted_value) VALUES (?, ?, ?, ?, ?),"))

	// run_id, date, index, performance, fitted
	last := stmts[1].args[10:]
	assert.Equal(t, "run-1", last[0])
	assert.Equal(t, rows[len(rows)-1].Date, last[1])
	assert.Equal(t, 1+2*last[2].(float64), last[4])
}

func TestPointInsertsEmpty(t *testing.T) {
	assert.Empty(t, pointInserts("run_points", &models.Report{ID: "x"}))
}

func TestSchemaStatements(t *testing.T) {
	stmts := SchemaStatements(DefaultRunTables)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS runs")
	assert.Contains(t, stmts[1], "CREATE TABLE IF NOT EXISTS run_points")
}

func TestNewClickHouseArchiveDefaultsTables(t *testing.T) {
	a := NewClickHouseArchive(nil, RunTables{}, nil)
	assert.Equal(t, DefaultRunTables, a.tables)
	assert.NoError(t, a.Close())
}
