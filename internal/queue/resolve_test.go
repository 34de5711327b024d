package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrimaryFormat(t *testing.T) {
	res := NewResolver(jakarta)

	ts, err := res.Resolve("2024-01-05", "07:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 7, 30, 0, 0, jakarta), ts)
}

func TestResolveSecondaryFormats(t *testing.T) {
	res := NewResolver(jakarta)
	want := time.Date(2024, 1, 5, 9, 0, 0, 0, jakarta)

	for _, dateText := range []string{"2024/01/05", "05-01-2024", "05/01/2024"} {
		ts, err := res.Resolve(dateText, "09:00")
		require.NoError(t, err, dateText)
		assert.Equal(t, want, ts, dateText)
	}
}

func TestResolveRejectsUnknownFormats(t *testing.T) {
	res := NewResolver(jakarta)

	for _, dateText := range []string{"Jan 5 2024", "05.01.2024", "2024-1-5x", "besok"} {
		_, err := res.Resolve(dateText, "09:00")
		assert.ErrorIs(t, err, ErrUnparsableTime, dateText)
	}

	_, err := res.Resolve("2024-01-05", "9am")
	assert.ErrorIs(t, err, ErrUnparsableTime)

	_, err = res.Resolve("", "09:00")
	assert.ErrorIs(t, err, ErrUnparsableTime)
}

func TestResolveDefaultsBlankTime(t *testing.T) {
	res := NewResolver(jakarta)

	ts, err := res.Resolve("2024-01-05", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 7, 30, 0, 0, jakarta), ts, "blank JamWIB falls back to the 07:30 slot")
}

func TestResolveAnchorsToConfiguredZone(t *testing.T) {
	res := NewResolver(time.UTC)

	ts, err := res.Resolve("2024-01-05", "07:30")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())
}

func TestResolveRecordFallbackScan(t *testing.T) {
	res := NewResolver(jakarta)

	record := Record{
		Title: "Promo spesial 2024-03-01",
		Body:  "tayang jam 18:45 nanti",
	}
	ts, err := res.ResolveRecord(record)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 18, 45, 0, 0, jakarta), ts)
}

func TestResolveRecordFallbackNeverOverridesExplicit(t *testing.T) {
	res := NewResolver(jakarta)

	record := Record{
		ScheduledDate: "2024-01-01",
		ScheduledTime: "07:00",
		Body:          "mentions 2030-12-31 and 23:59",
	}
	ts, err := res.ResolveRecord(record)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 7, 0, 0, 0, jakarta), ts)
}

func TestResolveRecordEmptyRowFails(t *testing.T) {
	res := NewResolver(jakarta)

	_, err := res.ResolveRecord(Record{})
	assert.ErrorIs(t, err, ErrUnparsableTime)
}
