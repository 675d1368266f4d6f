package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPI(t *testing.T) {
	s := CPI()
	require.Equal(t, 15, s.Len())
	assert.Equal(t, "2020-01-01", s.Observations[0].Date.Format("2006-01-02"))
	assert.Equal(t, 257.971, s.Observations[0].Value)
	assert.Equal(t, "2024-12-01", s.Observations[14].Date.Format("2006-01-02"))

	for i := 1; i < s.Len(); i++ {
		assert.True(t, s.Observations[i-1].Date.Before(s.Observations[i].Date))
	}
}

func TestCPIReturnsFreshCopy(t *testing.T) {
	a := CPI()
	a.Observations[0].Value = -1
	b := CPI()
	assert.Equal(t, 257.971, b.Observations[0].Value)
}
