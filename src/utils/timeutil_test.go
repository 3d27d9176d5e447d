package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISOTimestamp(t *testing.T) {
	for _, value := range []string{
		"2025-06-15T10:30:00Z",
		"2025-06-15T10:30:00.123456Z",
		"2025-06-15T10:30:00+02:00",
		"2025-06-15T10:30:00",
		"2025-06-15 10:30:00",
		"2025-06-15",
	} {
		parsed, err := ParseISOTimestamp(value)
		require.NoError(t, err, value)
		assert.Equal(t, time.UTC, parsed.Location(), value)
	}

	_, err := ParseISOTimestamp("not-a-timestamp")
	assert.Error(t, err)

	_, err = ParseISOTimestamp("")
	assert.Error(t, err)
}

func TestParseISOTimestampNormalizesZone(t *testing.T) {
	parsed, err := ParseISOTimestamp("2025-06-15T12:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 10, parsed.Hour())
}

func TestIsDateOnly(t *testing.T) {
	assert.True(t, IsDateOnly("2025-06-15"))
	assert.False(t, IsDateOnly("2025-06-15T10:30:00Z"))
	assert.False(t, IsDateOnly("garbage"))
}

func TestEndOfDay(t *testing.T) {
	parsed, err := ParseISOTimestamp("2025-06-15")
	require.NoError(t, err)
	end := EndOfDay(parsed)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 59, end.Second())
	assert.Equal(t, 15, end.Day())
}

func TestUTCNow(t *testing.T) {
	now := UTCNow()
	parsed, err := ParseISOTimestamp(now)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)
}
