package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	t.Run("marshals as calendar date", func(t *testing.T) {
		d := NewDate(2026, time.March, 1)
		encoded, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"2026-03-01"`, string(encoded))
	})

	t.Run("parses a calendar date", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"2026-03-01"`), &d))
		assert.Equal(t, NewDate(2026, time.March, 1), d)
	})

	t.Run("truncates a full timestamp", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"2026-03-01T10:30:00Z"`), &d))
		assert.Equal(t, NewDate(2026, time.March, 1), d)
	})

	t.Run("rejects other formats", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"03/01/2026"`), &d))
	})

	t.Run("zero value marshals empty", func(t *testing.T) {
		encoded, err := json.Marshal(Date{})
		require.NoError(t, err)
		assert.Equal(t, `""`, string(encoded))
	})
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-12-07")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-07", d.String())

	_, err = ParseDate("next tuesday")
	assert.ErrorContains(t, err, "YYYY-MM-DD")
}
