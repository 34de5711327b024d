package queue

import (
	"errors"
	"regexp"
	"time"
)

// ErrUnparsableTime marks a record whose date/time fields match none of the
// accepted formats. Selection treats it as "skip this row", not as a failure
// of the run.
var ErrUnparsableTime = errors.New("unparsable date/time")

// Accepted date layouts, primary first. The set is deliberately small and
// unambiguous: queues are hand-authored and the worst failure mode would be
// silently swapping day and month.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
}

const timeLayout = "15:04"

// Resolver anchors queue schedules to one fixed civil timezone. The queue is
// authored in a single locale; the resolver never infers a zone from input.
type Resolver struct {
	Location *time.Location

	// DefaultTime fills in a blank time-of-day when the date is present,
	// matching how the original queues were authored (most rows only carry
	// Tanggal and rely on the 07:30 slot).
	DefaultTime string
}

func NewResolver(loc *time.Location) Resolver {
	return Resolver{Location: loc, DefaultTime: "07:30"}
}

// Resolve combines a date and a time-of-day into an absolute instant.
func (res Resolver) Resolve(dateText, timeText string) (time.Time, error) {
	if dateText == "" {
		return time.Time{}, ErrUnparsableTime
	}
	if timeText == "" {
		timeText = res.DefaultTime
	}

	clock, err := time.Parse(timeLayout, timeText)
	if err != nil {
		return time.Time{}, ErrUnparsableTime
	}

	for _, layout := range dateLayouts {
		day, err := time.ParseInLocation(layout, dateText, res.Location)
		if err != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(),
			clock.Hour(), clock.Minute(), 0, 0, res.Location), nil
	}
	return time.Time{}, ErrUnparsableTime
}

// ResolveRecord resolves a record's schedule, falling back to a best-effort
// scan of the remaining fields for a date- or time-shaped substring when the
// explicit fields are blank. The scan never overrides an explicit value.
func (res Resolver) ResolveRecord(r Record) (time.Time, error) {
	dateText := r.ScheduledDate
	timeText := r.ScheduledTime

	if dateText == "" {
		dateText = scanFields(r, dateShaped)
	}
	if timeText == "" {
		if found := scanFields(r, timeShaped); found != "" {
			timeText = found
		}
	}

	return res.Resolve(dateText, timeText)
}

var (
	dateShaped = regexp.MustCompile(`\b(?:\d{4}[-/]\d{2}[-/]\d{2}|\d{2}[-/]\d{2}[-/]\d{4})\b`)
	timeShaped = regexp.MustCompile(`\b(?:[01]?\d|2[0-3]):[0-5]\d\b`)
)

// scanFields walks the non-schedule fields in canonical column order and
// returns the first substring matching the pattern.
func scanFields(r Record, pattern *regexp.Regexp) string {
	for _, text := range []string{r.Title, r.Body, r.Hashtags, r.AffiliateLink, r.Background, r.Music, r.Status} {
		if match := pattern.FindString(text); match != "" {
			return match
		}
	}
	return ""
}
