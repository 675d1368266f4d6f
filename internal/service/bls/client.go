// Package bls fetches CPI series from the Bureau of Labor Statistics public API (v2).
package bls

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CPIReg/internal/domain/models"
	drepo "CPIReg/internal/domain/repository"
	xhttp "CPIReg/pkg/http"
	"CPIReg/pkg/logger"
	"CPIReg/pkg/util"
)

const (
	sourceName      = "bls"
	statusSucceeded = "REQUEST_SUCCEEDED"
	// M13 is the annual average; it has no month of its own.
	annualPeriod = "M13"
	missingValue = "-"
)

var errMissingKey = errors.New("missing API key")

// Client implements IndexProvider. Every FetchSeries call issues exactly
// one POST and never retries.
type Client struct {
	url      string
	seriesID string
	http     *xhttp.Client
	log      *logger.Logger
}

var _ drepo.IndexProvider = (*Client)(nil)

// New creates a BLS index provider for one series id.
func New(url, seriesID string, client *xhttp.Client, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		url:      url,
		seriesID: seriesID,
		http:     client,
		log:      log.With(logger.String("component", "bls")),
	}
}

type seriesRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey"`
}

type dataPoint struct {
	Year       string `json:"year"`
	Period     string `json:"period"`
	PeriodName string `json:"periodName"`
	Value      string `json:"value"`
}

type seriesResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string      `json:"seriesID"`
			Data     []dataPoint `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// FetchSeries requests monthly observations for the configured series
// within r, inclusive.
func (c *Client) FetchSeries(ctx context.Context, key string, r models.DateRange) (models.Series, error) {
	if key == "" {
		return models.Series{}, &models.DataSourceError{Source: sourceName, Op: "authenticate", Err: errMissingKey}
	}
	if err := r.Validate(); err != nil {
		return models.Series{}, &models.DataSourceError{Source: sourceName, Op: "build request", Err: err}
	}

	req := seriesRequest{
		SeriesID:        []string{c.seriesID},
		StartYear:       strconv.Itoa(r.StartYear),
		EndYear:         strconv.Itoa(r.EndYear),
		RegistrationKey: key,
	}

	var resp seriesResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.url,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: req,
	}, &resp)
	if err != nil {
		c.log.Error("series request failed", logger.String("series", c.seriesID), logger.Error(err))
		return models.Series{}, &models.DataSourceError{Source: sourceName, Op: "fetch", Err: err}
	}

	if resp.Status != statusSucceeded {
		msg := strings.Join(resp.Message, "; ")
		c.log.Warn("series request rejected", logger.String("status", resp.Status), logger.String("message", msg))
		return models.Series{}, &models.DataSourceError{
			Source: sourceName,
			Op:     "fetch",
			Err:    fmt.Errorf("status %s: %s", resp.Status, msg),
		}
	}
	if len(resp.Results.Series) == 0 {
		return models.Series{}, &models.DataSourceError{Source: sourceName, Op: "decode", Err: errors.New("response contains no series")}
	}

	obs, err := toObservations(resp.Results.Series[0].Data)
	if err != nil {
		return models.Series{}, &models.DataSourceError{Source: sourceName, Op: "decode", Err: err}
	}
	if len(obs) == 0 {
		return models.Series{}, &models.DataSourceError{
			Source: sourceName,
			Op:     "decode",
			Err:    fmt.Errorf("no monthly observations for %d-%d", r.StartYear, r.EndYear),
		}
	}

	c.log.Info("series fetched",
		logger.String("series", c.seriesID),
		logger.Int("observations", len(obs)),
		logger.Int("start_year", r.StartYear),
		logger.Int("end_year", r.EndYear),
	)
	return models.NewSeries(c.seriesID, obs), nil
}

// toObservations keeps monthly periods M01..M12.
func toObservations(points []dataPoint) ([]models.Observation, error) {
	obs := make([]models.Observation, 0, len(points))
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		month, ok := monthOf(p.Period)
		if !ok {
			continue
		}
		value := strings.TrimSpace(p.Value)
		if value == missingValue {
			continue
		}

		year, err := strconv.Atoi(strings.TrimSpace(p.Year))
		if err != nil {
			return nil, fmt.Errorf("year %q: %w", p.Year, err)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q for %d %s: %w", p.Value, year, p.Period, err)
		}

		k := fmt.Sprintf("%d-%02d", year, month)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		obs = append(obs, models.Observation{Date: util.MonthStart(year, time.Month(month)), Value: v})
	}
	return obs, nil
}

func monthOf(period string) (int, bool) {
	if period == annualPeriod || len(period) != 3 || period[0] != 'M' {
		return 0, false
	}
	m, err := strconv.Atoi(period[1:])
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}
