package jobs

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"autopost/poster-go/internal/config"
	"autopost/poster-go/internal/events"
	"autopost/poster-go/internal/queue"
	"autopost/poster-go/internal/rowsource"
)

type JobContext struct {
	Config config.Config
	Source rowsource.Source
	Events *events.Notifier
}

type JobOptions struct {
	MaxLateness time.Duration
	Platform    string
	DryRun      bool
	Port        int
}

// loadRecords reads the full queue snapshot and normalizes every row.
func loadRecords(ctx context.Context, source rowsource.Source) ([]queue.Record, error) {
	rows, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]queue.Record, len(rows))
	for i, row := range rows {
		records[i] = queue.Normalize(row)
	}
	return records, nil
}

// persistRecords writes the full snapshot back under the canonical scheme.
func persistRecords(ctx context.Context, source rowsource.Source, records []queue.Record) error {
	rows := make([]rowsource.Row, len(records))
	for i, record := range records {
		rows[i] = rowsource.Row(queue.Denormalize(record))
	}
	return source.Overwrite(ctx, queue.CanonicalHeader, rows)
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns a record title into a safe artifact filename fragment.
func slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled"
	}
	if len(slug) > 60 {
		slug = slug[:60]
	}
	return slug
}

// buildDescription assembles the upload description from the record body,
// hashtags and affiliate link, skipping whatever is blank.
func buildDescription(record queue.Record) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{record.Body, record.Hashtags, record.AffiliateLink} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n\n")
}

func artifactName(record queue.Record, suffix string) string {
	return fmt.Sprintf("%s-%s%s", record.ScheduledDate, slugify(record.Title), suffix)
}
