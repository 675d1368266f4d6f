// Package report renders fit results as text and as a scatter plot.
package report

import (
	"fmt"
	"math"
	"strings"

	"CPIReg/internal/domain/models"
)

const (
	defaultDecimals       = 4
	defaultResponseLabel  = "performance"
	defaultPredictorLabel = "index"
)

// FormatOptions controls how equations and summaries print.
type FormatOptions struct {
	Decimals       int
	ResponseLabel  string
	PredictorLabel string
}

// DefaultFormatOptions prints four decimals with generic labels.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		Decimals:       defaultDecimals,
		ResponseLabel:  defaultResponseLabel,
		PredictorLabel: defaultPredictorLabel,
	}
}

func (o FormatOptions) normalized() FormatOptions {
	if o.Decimals < 0 {
		o.Decimals = defaultDecimals
	}
	if o.ResponseLabel == "" {
		o.ResponseLabel = defaultResponseLabel
	}
	if o.PredictorLabel == "" {
		o.PredictorLabel = defaultPredictorLabel
	}
	return o
}

// FormatEquation renders "performance ≈ a + b × index". A negative slope
// is printed as "- |b|"; values that round to zero carry no sign.
func FormatEquation(fit models.FitResult, opts FormatOptions) string {
	o := opts.normalized()

	sign := "+"
	slope := formatNumber(fit.Slope, o.Decimals)
	if strings.HasPrefix(slope, "-") {
		sign = "-"
		slope = formatNumber(math.Abs(fit.Slope), o.Decimals)
	}
	return fmt.Sprintf("%s ≈ %s %s %s × %s",
		o.ResponseLabel,
		formatNumber(fit.Intercept, o.Decimals),
		sign,
		slope,
		o.PredictorLabel,
	)
}

// FormatSummary renders the multi-line console block.
func FormatSummary(fit models.FitResult, opts FormatOptions) string {
	o := opts.normalized()

	var b strings.Builder
	fmt.Fprintf(&b, "Regression of %s on %s (%d aligned rows)\n", o.ResponseLabel, o.PredictorLabel, fit.N)
	fmt.Fprintf(&b, "  slope:      %s\n", formatNumber(fit.Slope, o.Decimals))
	fmt.Fprintf(&b, "  intercept:  %s\n", formatNumber(fit.Intercept, o.Decimals))
	fmt.Fprintf(&b, "  R²:         %s\n", formatNumber(fit.RSquared, o.Decimals))
	fmt.Fprintf(&b, "  equation:   %s\n", FormatEquation(fit, o))
	return b.String()
}

// FormatValue prints v with the configured decimals.
func FormatValue(v float64, opts FormatOptions) string {
	return formatNumber(v, opts.normalized().Decimals)
}

// formatNumber avoids printing "-0.0000".
func formatNumber(v float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, v)
	if strings.Trim(s, "-0.") == "" {
		return strings.TrimPrefix(s, "-")
	}
	return s
}
