package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"CPIReg/internal/domain/models"
	"CPIReg/pkg/util"

	"github.com/xuri/excelize/v2"
)

// Format is the container format of a performance file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ColumnSpec pins the date and value columns by header name. Empty fields
// are inferred from the header row.
type ColumnSpec struct {
	DateColumn  string
	ValueColumn string
}

var (
	dateAliases  = []string{"date", "month", "period"}
	valueAliases = []string{"performance", "division", "metric", "amount", "revenue"}
	zipMagic     = []byte("PK\x03\x04")
)

// DetectFormat decides by extension first, then by content.
func DetectFormat(filename string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv", ".txt":
		return FormatCSV
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// Parse reads a performance table and returns it as a series named name.
func Parse(name, filename string, data []byte, spec ColumnSpec) (models.Series, error) {
	switch DetectFormat(filename, data) {
	case FormatXLSX:
		rows, err := readXLSX(data)
		if err != nil {
			return models.Series{}, err
		}
		return parseRows(name, table{rows: rows}, spec, true)
	default:
		t, err := readCSV(bytes.NewReader(data))
		if err != nil {
			return models.Series{}, err
		}
		return parseRows(name, t, spec, false)
	}
}

// table holds raw rows and, for CSV, the file line each row starts on.
// encoding/csv skips empty lines, so row positions alone are not line numbers.
type table struct {
	rows  [][]string
	lines []int
}

func (t table) line(i int) int {
	if t.lines != nil {
		return t.lines[i]
	}
	return i + 1
}

func readCSV(r io.Reader) (table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var t table
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			ife := &models.InputFormatError{Reason: "malformed csv", Err: err}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				ife.Row = pe.Line
			}
			return table{}, ife
		}
		line, _ := reader.FieldPos(0)
		t.rows = append(t.rows, rec)
		t.lines = append(t.lines, line)
	}
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &models.InputFormatError{Reason: "unreadable workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &models.InputFormatError{Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &models.InputFormatError{Reason: fmt.Sprintf("read sheet %q", sheets[0]), Err: err}
	}
	return rows, nil
}

func parseRows(name string, t table, spec ColumnSpec, excelDates bool) (models.Series, error) {
	rows := t.rows
	headerAt := -1
	for i, row := range rows {
		if !blank(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return models.Series{}, &models.InputFormatError{Reason: "file is empty"}
	}

	header := rows[headerAt]
	dateIdx, valueIdx, err := resolveColumns(header, spec)
	if err != nil {
		return models.Series{}, err
	}
	dateCol := strings.TrimSpace(header[dateIdx])
	valueCol := strings.TrimSpace(header[valueIdx])

	obs := make([]models.Observation, 0, len(rows)-headerAt-1)
	seen := make(map[time.Time]int, len(rows))
	for i := headerAt + 1; i < len(rows); i++ {
		row := rows[i]
		rowNum := t.line(i)
		if blank(row) {
			continue
		}

		rawDate := cell(row, dateIdx)
		d, ok := parseDate(rawDate, excelDates)
		if !ok {
			return models.Series{}, &models.InputFormatError{Column: dateCol, Row: rowNum, Value: rawDate, Reason: "unparseable date"}
		}

		rawValue := cell(row, valueIdx)
		v, err := strconv.ParseFloat(util.CleanNumber(rawValue), 64)
		if err != nil {
			return models.Series{}, &models.InputFormatError{Column: valueCol, Row: rowNum, Value: rawValue, Reason: "not a number"}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Series{}, &models.InputFormatError{Column: valueCol, Row: rowNum, Value: rawValue, Reason: "not a finite number"}
		}

		if first, dup := seen[d]; dup {
			return models.Series{}, &models.InputFormatError{
				Column: dateCol,
				Row:    rowNum,
				Value:  rawDate,
				Reason: fmt.Sprintf("duplicate date %s (first at row %d)", d.Format("2006-01-02"), first),
			}
		}
		seen[d] = rowNum
		obs = append(obs, models.Observation{Date: d, Value: v})
	}

	if len(obs) == 0 {
		return models.Series{}, &models.InputFormatError{Reason: "no data rows"}
	}
	return models.NewSeries(name, obs), nil
}

// resolveColumns applies explicit names first, then exact aliases, then
// looser matches. More than one candidate at any step is an error.
func resolveColumns(header []string, spec ColumnSpec) (int, int, error) {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = util.NormalizeHeader(h)
	}

	dateIdx, err := resolveDate(norm, spec.DateColumn)
	if err != nil {
		return 0, 0, err
	}
	valueIdx, err := resolveValue(norm, spec.ValueColumn, dateIdx)
	if err != nil {
		return 0, 0, err
	}
	return dateIdx, valueIdx, nil
}

func resolveDate(norm []string, explicit string) (int, error) {
	if explicit != "" {
		return explicitColumn(norm, explicit)
	}
	if idx, err := pick(norm, "date", func(h string) bool { return h == "date" }); idx >= 0 || err != nil {
		return idx, err
	}
	idx, err := pick(norm, "date", func(h string) bool {
		return contains(dateAliases, h) || strings.Contains(h, "date")
	})
	if err != nil {
		return 0, err
	}
	if idx < 0 {
		return 0, &models.InputFormatError{Column: "date", Reason: "required column missing"}
	}
	return idx, nil
}

func resolveValue(norm []string, explicit string, dateIdx int) (int, error) {
	if explicit != "" {
		idx, err := explicitColumn(norm, explicit)
		if err == nil && idx == dateIdx {
			return 0, &models.InputFormatError{Column: explicit, Reason: "value column is the date column"}
		}
		return idx, err
	}
	notDate := func(match func(string) bool) func(int, string) bool {
		return func(i int, h string) bool { return i != dateIdx && match(h) }
	}
	steps := []func(int, string) bool{
		notDate(func(h string) bool { return h == "value" }),
		notDate(func(h string) bool { return contains(valueAliases, h) }),
		notDate(func(h string) bool { return h != "" }),
	}
	for _, match := range steps {
		idx, err := pickIndexed(norm, "value", match)
		if idx >= 0 || err != nil {
			return idx, err
		}
	}
	return 0, &models.InputFormatError{Column: "value", Reason: "required column missing"}
}

func explicitColumn(norm []string, name string) (int, error) {
	want := util.NormalizeHeader(name)
	return pickOrMissing(norm, name, func(h string) bool { return h == want })
}

func pickOrMissing(norm []string, role string, match func(string) bool) (int, error) {
	idx, err := pick(norm, role, match)
	if err != nil {
		return 0, err
	}
	if idx < 0 {
		return 0, &models.InputFormatError{Column: role, Reason: "required column missing"}
	}
	return idx, nil
}

func pick(norm []string, role string, match func(string) bool) (int, error) {
	return pickIndexed(norm, role, func(_ int, h string) bool { return match(h) })
}

// pickIndexed returns -1 when nothing matches.
func pickIndexed(norm []string, role string, match func(int, string) bool) (int, error) {
	found := -1
	var names []string
	for i, h := range norm {
		if !match(i, h) {
			continue
		}
		names = append(names, h)
		if found < 0 {
			found = i
		}
	}
	if len(names) > 1 {
		return 0, &models.InputFormatError{
			Column: role,
			Reason: fmt.Sprintf("ambiguous %s column: candidates %s", role, strings.Join(names, ", ")),
		}
	}
	return found, nil
}

func parseDate(s string, excelDates bool) (time.Time, bool) {
	if t, ok := util.ParseDate(s); ok {
		return t, true
	}
	if !excelDates {
		return time.Time{}, false
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return models.DateKey(t), true
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
