package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"autopost/poster-go/internal/config"
	"autopost/poster-go/internal/events"
	"autopost/poster-go/internal/publish"
	"autopost/poster-go/internal/queue"
	"autopost/poster-go/internal/render"
	"autopost/poster-go/internal/tts"
	"autopost/poster-go/internal/utils"
)

// AutoPostJob runs one selection-and-post cycle: pick the due queue row,
// synthesize narration, render the video, publish, mark. Selection is pure;
// everything slow happens strictly between selection and marking, so a crash
// anywhere in the middle leaves the row eligible for the next run.
type AutoPostJob struct {
	Narrator   tts.Provider
	Renderer   render.Renderer
	Publishers map[string]publish.Publisher
	Resolver   queue.Resolver
	Location   *time.Location
}

func NewAutoPostJob(cfg config.Config) (AutoPostJob, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return AutoPostJob{}, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}
	return AutoPostJob{
		Narrator: tts.FromConfig(cfg),
		Renderer: render.Renderer{},
		Publishers: map[string]publish.Publisher{
			"YT": publish.NewYouTube(cfg),
			"TG": publish.NewTelegram(cfg),
		},
		Resolver: queue.NewResolver(loc),
		Location: loc,
	}, nil
}

func (j AutoPostJob) Run(ctx context.Context, jctx JobContext, opts JobOptions) error {
	publisher, ok := j.Publishers[opts.Platform]
	if !ok {
		return fmt.Errorf("no publisher for platform %q", opts.Platform)
	}

	records, err := loadRecords(ctx, jctx.Source)
	if err != nil {
		return err
	}

	now := time.Now().In(j.Location)
	sel, err := queue.SelectJob(records, now, opts.MaxLateness, opts.Platform, j.Resolver)
	if err != nil {
		return err
	}
	if sel.Job == nil {
		logNoJob(sel, now)
		return nil
	}

	job := *sel.Job
	utils.Info("job selected",
		"title", job.Record.Title,
		"scheduled_at", job.ScheduledAt.Format(time.RFC3339),
		"lateness", job.Lateness.String(),
		"platform", opts.Platform,
	)

	videoPath, err := j.producePipeline(ctx, jctx.Config, job.Record)
	if err != nil {
		return err
	}

	meta := publish.Meta{
		Title:       job.Record.Title,
		Description: buildDescription(job.Record),
		Tags:        job.Record.Hashtags,
		PublishAt:   job.ScheduledAt,
	}
	externalID, err := publisher.Publish(ctx, videoPath, meta)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", opts.Platform, err)
	}

	if opts.DryRun {
		utils.Info("dry run: skipping status mark", "title", job.Record.Title, "external_id", externalID)
		return nil
	}

	updated, err := queue.MarkPosted(records, job.Record, opts.Platform, externalID)
	if err != nil {
		if errors.Is(err, queue.ErrRecordNotFound) {
			// Queue edited underneath us; nothing safe to write.
			utils.Warn("record vanished before marking; queue left untouched",
				"title", job.Record.Title, "date", job.Record.ScheduledDate)
			return nil
		}
		return err
	}
	if err := persistRecords(ctx, jctx.Source, updated); err != nil {
		return fmt.Errorf("persist queue: %w", err)
	}
	utils.Info("marked posted", "title", job.Record.Title, "platform", opts.Platform, "note", externalID)

	if err := jctx.Events.PostPublished(events.PostEvent{
		Platform:   opts.Platform,
		Title:      job.Record.Title,
		ExternalID: externalID,
		PostedAt:   now,
		Hostname:   jctx.Config.Hostname,
	}); err != nil {
		utils.Warn("post event publish failed", "err", err)
	}
	return nil
}

// producePipeline synthesizes narration and renders the video, returning the
// rendered file path.
func (j AutoPostJob) producePipeline(ctx context.Context, cfg config.Config, record queue.Record) (string, error) {
	if err := utils.EnsureDir(cfg.OutputFolder); err != nil {
		return "", err
	}

	narrationPath := filepath.Join(cfg.OutputFolder, artifactName(record, "-narration.wav"))
	if err := j.Narrator.Synthesize(ctx, record.Body, narrationPath); err != nil {
		return "", fmt.Errorf("synthesize narration: %w", err)
	}

	background := resolveAsset(cfg, record.Background)
	music := ""
	if record.Music != "" {
		music = resolveAsset(cfg, record.Music)
	}

	videoPath := filepath.Join(cfg.OutputFolder, artifactName(record, ".mp4"))
	err := j.Renderer.Render(ctx, render.Request{
		Background: background,
		Narration:  narrationPath,
		Caption:    record.Title,
		Music:      music,
		OutputPath: videoPath,
	})
	if err != nil {
		return "", fmt.Errorf("render video: %w", err)
	}
	return videoPath, nil
}

// resolveAsset accepts paths as authored in the queue (usually relative to
// the working directory) and falls back to the configured assets folder.
func resolveAsset(cfg config.Config, path string) string {
	if path == "" || utils.FileExists(path) || filepath.IsAbs(path) {
		return path
	}
	candidate := filepath.Join(cfg.AssetsFolder, path)
	if utils.FileExists(candidate) {
		return candidate
	}
	return path
}

func logNoJob(sel queue.Selection, now time.Time) {
	keyvals := []any{"now", now.Format(time.RFC3339)}
	if sel.NextUpcoming != nil {
		keyvals = append(keyvals,
			"next_title", sel.NextUpcoming.Record.Title,
			"next_at", sel.NextUpcoming.ScheduledAt.Format(time.RFC3339),
		)
	}
	if sel.LastMissed != nil {
		keyvals = append(keyvals,
			"missed_title", sel.LastMissed.Record.Title,
			"missed_by", sel.LastMissed.Lateness.String(),
		)
	}
	utils.Info("no job due", keyvals...)
}
