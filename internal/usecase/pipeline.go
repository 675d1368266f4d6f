package usecase

import (
	"context"
	"fmt"

	"CPIReg/internal/domain/models"
	drepo "CPIReg/internal/domain/repository"
	"CPIReg/internal/service/report"
	"CPIReg/internal/service/tabular"
)

// PipelineConfig carries every default the pipeline depends on.
type PipelineConfig struct {
	SampleIndex models.Series
	MinRows     int
	Columns     tabular.ColumnSpec
	Format      report.FormatOptions
	Plot        report.PlotOptions
}

// Input selects both data sources of a run.
type Input struct {
	Index       models.IndexSource
	Performance models.PerformanceSource
}

// Pipeline runs load, align, fit and report. It holds no mutable state.
type Pipeline struct {
	cfg      PipelineConfig
	provider drepo.IndexProvider
}

// NewPipeline creates a Pipeline. provider may be nil when live mode is unused.
func NewPipeline(cfg PipelineConfig, provider drepo.IndexProvider) *Pipeline {
	if cfg.MinRows < MinAlignedRows {
		cfg.MinRows = MinAlignedRows
	}
	return &Pipeline{cfg: cfg, provider: provider}
}

// Run executes one regression. The returned report has no ID or timestamp.
func (p *Pipeline) Run(ctx context.Context, in Input) (*models.Report, error) {
	index, err := p.LoadIndexSeries(ctx, in.Index)
	if err != nil {
		return nil, fmt.Errorf("load index series: %w", err)
	}

	perf, err := p.LoadPerformanceSeries(in.Performance, index)
	if err != nil {
		return nil, fmt.Errorf("load performance series: %w", err)
	}

	table, err := Align(index, perf, p.cfg.MinRows)
	if err != nil {
		return nil, fmt.Errorf("align series: %w", err)
	}

	fit, err := Fit(table)
	if err != nil {
		return nil, fmt.Errorf("fit regression: %w", err)
	}

	plot, err := report.RenderPlot(table, fit, p.cfg.Plot)
	if err != nil {
		return nil, err
	}

	return &models.Report{
		IndexSource:       in.Index.String(),
		PerformanceSource: in.Performance.String(),
		Table:             table,
		Fit:               fit,
		Equation:          report.FormatEquation(fit, p.cfg.Format),
		Summary:           report.FormatSummary(fit, p.cfg.Format),
		Plot:              plot,
	}, nil
}
