package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures for metrics and transport mapping.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindDataSource       ErrorKind = "data_source"
	KindInputFormat      ErrorKind = "input_format"
	KindInsufficientData ErrorKind = "insufficient_data"
	KindDegenerateInput  ErrorKind = "degenerate_input"
	KindInternal         ErrorKind = "internal"
)

var (
	ErrDataSource       = errors.New("data source error")
	ErrInputFormat      = errors.New("input format error")
	ErrInsufficientData = errors.New("insufficient data")
	ErrDegenerateInput  = errors.New("degenerate input")
)

// DataSourceError reports a failed fetch from the remote index provider.
type DataSourceError struct {
	Source string
	Op     string
	Err    error
}

func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Op)
}

func (e *DataSourceError) Unwrap() error        { return e.Err }
func (e *DataSourceError) Is(target error) bool { return target == ErrDataSource }

// InputFormatError reports malformed tabular input. Row is the 1-based
// row in the file (header is row 1); zero when the error concerns a column.
type InputFormatError struct {
	Column string
	Row    int
	Value  string
	Reason string
	Err    error
}

func (e *InputFormatError) Error() string {
	msg := "invalid performance data"
	if e.Row > 0 {
		msg += fmt.Sprintf(": row %d", e.Row)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(": column %q", e.Column)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(": value %q", e.Value)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *InputFormatError) Unwrap() error        { return e.Err }
func (e *InputFormatError) Is(target error) bool { return target == ErrInputFormat }

// InsufficientDataError reports an aligned table too small to fit.
type InsufficientDataError struct {
	Rows     int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("need at least %d overlapping dates between index and performance data, got %d", e.Required, e.Rows)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// DegenerateInputError reports zero variance in the index column.
type DegenerateInputError struct {
	Value float64
	Rows  int
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("all %d index values equal %g; slope is undefined", e.Rows, e.Value)
}

func (e *DegenerateInputError) Is(target error) bool { return target == ErrDegenerateInput }

// KindOf maps err onto the taxonomy. Unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrDataSource):
		return KindDataSource
	case errors.Is(err, ErrInputFormat):
		return KindInputFormat
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrDegenerateInput):
		return KindDegenerateInput
	default:
		return KindInternal
	}
}
