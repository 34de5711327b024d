package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jakarta = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		panic(err)
	}
	return loc
}()

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", value, jakarta)
	require.NoError(t, err)
	return ts
}

func TestSelectJobPicksLeastLateCandidate(t *testing.T) {
	records := []Record{
		{ScheduledDate: "2024-01-01", ScheduledTime: "09:00", Title: "A"},
		{ScheduledDate: "2024-01-01", ScheduledTime: "10:00", Title: "B"},
	}
	now := at(t, "2024-01-01 10:05:00")

	sel, err := SelectJob(records, now, time.Hour, "YT", NewResolver(jakarta))
	require.NoError(t, err)
	require.NotNil(t, sel.Job)

	// A is 65 minutes late and outside the one-hour window; B is 5 minutes late.
	assert.Equal(t, "B", sel.Job.Record.Title)
	assert.Equal(t, 5*time.Minute, sel.Job.Lateness)
	require.NotNil(t, sel.LastMissed)
	assert.Equal(t, "A", sel.LastMissed.Record.Title)
}

func TestSelectJobReturnsAtMostOne(t *testing.T) {
	records := []Record{
		{ScheduledDate: "2024-01-01", ScheduledTime: "09:50", Title: "A"},
		{ScheduledDate: "2024-01-01", ScheduledTime: "09:55", Title: "B"},
		{ScheduledDate: "2024-01-01", ScheduledTime: "10:00", Title: "C"},
	}
	now := at(t, "2024-01-01 10:00:00")

	sel, err := SelectJob(records, now, 12*time.Hour, "YT", NewResolver(jakarta))
	require.NoError(t, err)
	require.NotNil(t, sel.Job)
	assert.Equal(t, "C", sel.Job.Record.Title, "closest to just-became-due wins")
}

func TestSelectJobBoundaryInclusive(t *testing.T) {
	res := NewResolver(jakarta)
	now := at(t, "2024-01-01 10:00:00")

	exact := []Record{{ScheduledDate: "2024-01-01", ScheduledTime: "10:00", Title: "A"}}
	sel, err := SelectJob(exact, now, time.Hour, "YT", res)
	require.NoError(t, err)
	require.NotNil(t, sel.Job)
	assert.Equal(t, time.Duration(0), sel.Job.Lateness)

	future := []Record{{ScheduledDate: "2024-01-01", ScheduledTime: "10:00", Title: "A"}}
	sel, err = SelectJob(future, now.Add(-time.Second), time.Hour, "YT", res)
	require.NoError(t, err)
	assert.Nil(t, sel.Job, "a record one second in the future is never selected")
	require.NotNil(t, sel.NextUpcoming)
	assert.Equal(t, "A", sel.NextUpcoming.Record.Title)
}

func TestSelectJobCatchUpWindowBoundary(t *testing.T) {
	res := NewResolver(jakarta)
	window := 3 * time.Hour
	records := []Record{{ScheduledDate: "2024-01-01", ScheduledTime: "07:00", Title: "A"}}

	sel, err := SelectJob(records, at(t, "2024-01-01 10:00:00"), window, "YT", res)
	require.NoError(t, err)
	require.NotNil(t, sel.Job, "exactly max lateness is still eligible")

	sel, err = SelectJob(records, at(t, "2024-01-01 10:00:01"), window, "YT", res)
	require.NoError(t, err)
	assert.Nil(t, sel.Job, "one second past the window is stale")
	require.NotNil(t, sel.LastMissed)
}

func TestSelectJobZeroWindow(t *testing.T) {
	res := NewResolver(jakarta)
	records := []Record{{ScheduledDate: "2024-01-01", ScheduledTime: "10:00", Title: "A"}}

	sel, err := SelectJob(records, at(t, "2024-01-01 10:00:00"), 0, "YT", res)
	require.NoError(t, err)
	assert.NotNil(t, sel.Job)

	sel, err = SelectJob(records, at(t, "2024-01-01 10:00:01"), 0, "YT", res)
	require.NoError(t, err)
	assert.Nil(t, sel.Job)
}

func TestSelectJobExcludesPostedPerPlatform(t *testing.T) {
	res := NewResolver(jakarta)
	records := []Record{
		{ScheduledDate: "2024-01-01", ScheduledTime: "10:00", Title: "A", Status: "POSTED-YT"},
	}
	now := at(t, "2024-01-01 10:05:00")

	sel, err := SelectJob(records, now, time.Hour, "YT", res)
	require.NoError(t, err)
	assert.Nil(t, sel.Job)

	sel, err = SelectJob(records, now, time.Hour, "TG", res)
	require.NoError(t, err)
	require.NotNil(t, sel.Job, "posted to YT does not block TG")
	assert.Equal(t, "A", sel.Job.Record.Title)
}

func TestSelectJobPlatformMatchIsTokenExact(t *testing.T) {
	res := NewResolver(jakarta)
	records := []Record{
		{ScheduledDate: "2024-01-01", ScheduledTime: "10:00", Title: "A", Status: "POSTED-YTMUSIC"},
	}

	sel, err := SelectJob(records, at(t, "2024-01-01 10:05:00"), time.Hour, "YT", res)
	require.NoError(t, err)
	require.NotNil(t, sel.Job, "POSTED-YTMUSIC must not match platform YT")
}

func TestSelectJobSkipsUnresolvableRows(t *testing.T) {
	res := NewResolver(jakarta)
	records := []Record{
		{ScheduledDate: "soon", ScheduledTime: "10:00", Title: "broken"},
		{Title: "empty row"},
		{ScheduledDate: "2024-01-01", ScheduledTime: "10:00", Title: "ok"},
	}

	sel, err := SelectJob(records, at(t, "2024-01-01 10:05:00"), time.Hour, "YT", res)
	require.NoError(t, err)
	require.NotNil(t, sel.Job)
	assert.Equal(t, "ok", sel.Job.Record.Title)
}

func TestSelectJobTieBreaksOnRowOrder(t *testing.T) {
	res := NewResolver(jakarta)
	records := []Record{
		{ScheduledDate: "2024-01-01", ScheduledTime: "10:00", Title: "first"},
		{ScheduledDate: "2024-01-01", ScheduledTime: "10:00", Title: "second"},
	}

	sel, err := SelectJob(records, at(t, "2024-01-01 10:05:00"), time.Hour, "YT", res)
	require.NoError(t, err)
	require.NotNil(t, sel.Job)
	assert.Equal(t, "first", sel.Job.Record.Title)
}

func TestSelectJobRejectsZeroNow(t *testing.T) {
	_, err := SelectJob(nil, time.Time{}, time.Hour, "YT", NewResolver(jakarta))
	assert.Error(t, err)
}

func TestUpcomingSchedules(t *testing.T) {
	res := NewResolver(jakarta)
	records := []Record{
		{ScheduledDate: "2024-01-03", ScheduledTime: "09:00", Title: "C"},
		{ScheduledDate: "2024-01-02", ScheduledTime: "09:00", Title: "B"},
		{ScheduledDate: "2024-01-01", ScheduledTime: "09:00", Title: "A"},
		{ScheduledDate: "2024-01-04", ScheduledTime: "09:00", Title: "D", Status: "POSTED-YT"},
	}
	now := at(t, "2024-01-01 12:00:00")

	upcoming := UpcomingSchedules(records, now, "YT", res)
	require.Len(t, upcoming, 2)
	assert.True(t, upcoming[0].Before(upcoming[1]))
	assert.Equal(t, at(t, "2024-01-02 09:00:00"), upcoming[0])
}
