package queue

import (
	"errors"
	"sort"
	"time"
)

// Candidate pairs a record with its resolved instant and its lateness at the
// moment of selection. Lateness is negative while the schedule is still in
// the future.
type Candidate struct {
	Record      Record
	ScheduledAt time.Time
	Lateness    time.Duration
}

// Selection is the outcome of one selection pass. Job is nil when nothing is
// due, which is a normal result. NextUpcoming and LastMissed are diagnostics
// for operator visibility and never influence the choice of Job.
type Selection struct {
	Job          *Candidate
	NextUpcoming *Candidate
	LastMissed   *Candidate
}

// SelectJob picks at most one due record from the snapshot.
//
// A record is due when it is not yet posted to the target platform, its
// schedule resolves, and its lateness sits inside [0, maxLateness] - both
// ends inclusive. Among due records the smallest lateness wins; on an exact
// tie the earlier row wins, keeping selection deterministic. The caller
// passes now explicitly so runs are reproducible in tests.
func SelectJob(records []Record, now time.Time, maxLateness time.Duration, platform string, res Resolver) (Selection, error) {
	if now.IsZero() {
		return Selection{}, errors.New("selection requires a concrete now")
	}
	if maxLateness < 0 {
		return Selection{}, errors.New("max lateness must not be negative")
	}

	var sel Selection
	for _, record := range records {
		if record.PostedTo(platform) {
			continue
		}
		scheduledAt, err := res.ResolveRecord(record)
		if err != nil {
			continue
		}

		cand := Candidate{
			Record:      record,
			ScheduledAt: scheduledAt,
			Lateness:    now.Sub(scheduledAt),
		}

		switch {
		case cand.Lateness < 0:
			if sel.NextUpcoming == nil || cand.ScheduledAt.Before(sel.NextUpcoming.ScheduledAt) {
				c := cand
				sel.NextUpcoming = &c
			}
		case cand.Lateness > maxLateness:
			if sel.LastMissed == nil || cand.Lateness < sel.LastMissed.Lateness {
				c := cand
				sel.LastMissed = &c
			}
		default:
			if sel.Job == nil || cand.Lateness < sel.Job.Lateness {
				c := cand
				sel.Job = &c
			}
		}
	}
	return sel, nil
}

// UpcomingSchedules returns the resolved future instants of all records not
// yet posted to the platform, earliest first. The watch loop uses this to
// decide how long to sleep.
func UpcomingSchedules(records []Record, now time.Time, platform string, res Resolver) []time.Time {
	var upcoming []time.Time
	for _, record := range records {
		if record.PostedTo(platform) {
			continue
		}
		scheduledAt, err := res.ResolveRecord(record)
		if err != nil {
			continue
		}
		if scheduledAt.After(now) {
			upcoming = append(upcoming, scheduledAt)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].Before(upcoming[j]) })
	return upcoming
}
