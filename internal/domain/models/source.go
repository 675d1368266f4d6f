package models

import "fmt"

// IndexSourceKind tags the IndexSource variant.
type IndexSourceKind string

const (
	IndexSourceSample IndexSourceKind = "sample"
	IndexSourceLive   IndexSourceKind = "live"
)

// DateRange is an inclusive range of calendar years requested from the provider.
type DateRange struct {
	StartYear int `json:"start_year"`
	EndYear   int `json:"end_year"`
}

// MaxRangeYears is the widest range the provider serves in one request.
const MaxRangeYears = 20

// Validate checks ordering and width of the range.
func (r DateRange) Validate() error {
	if r.StartYear <= 0 || r.EndYear <= 0 {
		return fmt.Errorf("start and end year are required")
	}
	if r.StartYear > r.EndYear {
		return fmt.Errorf("start year %d is after end year %d", r.StartYear, r.EndYear)
	}
	if r.EndYear-r.StartYear+1 > MaxRangeYears {
		return fmt.Errorf("range %d-%d exceeds %d years", r.StartYear, r.EndYear, MaxRangeYears)
	}
	return nil
}

// IndexSource selects where the price index comes from: the bundled sample
// or a live provider request parameterised by key and range.
type IndexSource struct {
	Kind  IndexSourceKind
	Key   string
	Range DateRange
}

// SampleIndex returns the Sample variant.
func SampleIndex() IndexSource { return IndexSource{Kind: IndexSourceSample} }

// LiveIndex returns the Live variant.
func LiveIndex(key string, r DateRange) IndexSource {
	return IndexSource{Kind: IndexSourceLive, Key: key, Range: r}
}

// ResolveIndexSource picks Live only when requested and a key is present.
func ResolveIndexSource(live bool, key string, r DateRange) IndexSource {
	if live && key != "" {
		return LiveIndex(key, r)
	}
	return SampleIndex()
}

// String never includes the key.
func (s IndexSource) String() string {
	if s.Kind == IndexSourceLive {
		return fmt.Sprintf("live(%d-%d)", s.Range.StartYear, s.Range.EndYear)
	}
	return string(s.Kind)
}

// PerformanceSourceKind tags the PerformanceSource variant.
type PerformanceSourceKind string

const (
	PerformanceSourceFile      PerformanceSourceKind = "file"
	PerformanceSourceUpload    PerformanceSourceKind = "upload"
	PerformanceSourceSynthetic PerformanceSourceKind = "synthetic"
)

// PerformanceSource selects the tabular input for the performance series.
type PerformanceSource struct {
	Kind     PerformanceSourceKind
	Path     string
	Filename string
	Data     []byte
}

// FileSource reads a path from disk.
func FileSource(path string) PerformanceSource {
	return PerformanceSource{Kind: PerformanceSourceFile, Path: path, Filename: path}
}

// UploadSource wraps uploaded bytes.
func UploadSource(filename string, data []byte) PerformanceSource {
	return PerformanceSource{Kind: PerformanceSourceUpload, Filename: filename, Data: data}
}

// SyntheticSource derives a performance series from the index series.
func SyntheticSource() PerformanceSource {
	return PerformanceSource{Kind: PerformanceSourceSynthetic}
}

func (s PerformanceSource) String() string {
	switch s.Kind {
	case PerformanceSourceFile, PerformanceSourceUpload:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Filename)
	default:
		return string(s.Kind)
	}
}
