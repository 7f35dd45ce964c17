package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelativeDateShorthandDuration(t *testing.T) {
	ref := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	got, err := ParseRelativeDate("7d", ref)
	require.NoError(t, err)
	assert.Equal(t, ref.Add(-7*24*time.Hour), got)

	got, err = ParseRelativeDate("24h", ref)
	require.NoError(t, err)
	assert.Equal(t, ref.Add(-24*time.Hour), got)
}

func TestParseRelativeDateNaturalLanguage(t *testing.T) {
	ref := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	got, err := ParseRelativeDate("yesterday", ref)
	require.NoError(t, err)
	assert.Equal(t, ref.Year(), got.Year())
	assert.True(t, got.Before(ref))
}

func TestParseRelativeDateRejectsEmpty(t *testing.T) {
	_, err := ParseRelativeDate("", time.Now())
	assert.Error(t, err)
}

func TestParseRelativeDateRejectsGarbage(t *testing.T) {
	_, err := ParseRelativeDate("not a date at all !!!", time.Now())
	assert.Error(t, err)
}
