package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type yearsRequest struct {
	Source string `json:"source" default:"sample" validate:"oneof=sample live"`
	From   int    `json:"from_year" validate:"gte=1913"`
	To     int    `json:"to_year" validate:"gtefield=From"`
}

func bindJSON(t *testing.T, body string, req interface{}) interface{} {
	t.Helper()
	e := echo.New()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return ReadAndValidateRequest(e.NewContext(r, httptest.NewRecorder()), req)
}

func TestReadAndValidateRequestAppliesDefaults(t *testing.T) {
	req := &yearsRequest{}
	require.Nil(t, bindJSON(t, `{"from_year":2020,"to_year":2021}`, req))
	assert.Equal(t, "sample", req.Source)
}

func TestReadAndValidateRequestKeepsPrefilledFields(t *testing.T) {
	req := &yearsRequest{From: 2019, To: 2024}
	require.Nil(t, bindJSON(t, `{"source":"live"}`, req))
	assert.Equal(t, "live", req.Source)
	assert.Equal(t, 2019, req.From)
}

func TestReadAndValidateRequestReportsClientFieldNames(t *testing.T) {
	verr := bindJSON(t, `{"source":"remote","from_year":2022,"to_year":2021}`, &yearsRequest{})
	list, ok := verr.([]ValidationError)
	require.True(t, ok)
	require.Len(t, list, 2)

	assert.Equal(t, "ERR_ONEOF", list[0].Code)
	assert.Equal(t, "source", list[0].Field)
	assert.Equal(t, "source must be one of: sample, live", list[0].Message)

	assert.Equal(t, "ERR_GTEFIELD", list[1].Code)
	assert.Equal(t, "to_year", list[1].Field)
	assert.Equal(t, "to_year must not be less than from", list[1].Message)
}

func TestReadAndValidateRequestMalformedBody(t *testing.T) {
	verr := bindJSON(t, `{"from_year":`, &yearsRequest{})
	list, ok := verr.([]ValidationError)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "ERR_UNKNOWN", list[0].Code)
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "start_year", snakeCase("StartYear"))
	assert.Equal(t, "from", snakeCase("From"))
}
