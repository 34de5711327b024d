package jobs

import (
	"context"
	"time"

	"autopost/poster-go/internal/queue"
	"autopost/poster-go/internal/server"
	"autopost/poster-go/internal/utils"
)

const (
	// wakeLead is how far ahead of a schedule the loop wakes up.
	wakeLead = time.Minute
	// postCooldown spaces out cycles after a check so a slow upload does not
	// immediately trigger a re-plan against a half-written queue.
	postCooldown = 2 * time.Minute
	// idleSleep applies when the queue holds no future schedules at all.
	idleSleep = 6 * time.Hour
)

// WatchJob is the long-running mode: plan against the queue, sleep until just
// before the nearest schedule, run one AutoPost cycle, re-plan. A keep-alive
// HTTP endpoint runs on the side for hosting environments that reap idle
// processes.
type WatchJob struct {
	AutoPost AutoPostJob
}

func (j WatchJob) Run(ctx context.Context, jctx JobContext, opts JobOptions) error {
	keepAlive := server.New()
	keepAlive.Start(opts.Port)

	for {
		wait, err := j.plan(ctx, jctx, opts, keepAlive)
		if err != nil {
			utils.Error("watch planning failed", "err", err)
			wait = postCooldown
		}

		utils.Info("watch sleeping", "for", wait.String())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// plan computes how long to sleep before the next action, running a cycle
// right away when a schedule is within the wake lead.
func (j WatchJob) plan(ctx context.Context, jctx JobContext, opts JobOptions, keepAlive *server.KeepAlive) (time.Duration, error) {
	records, err := loadRecords(ctx, jctx.Source)
	if err != nil {
		return 0, err
	}

	now := time.Now().In(j.AutoPost.Location)
	upcoming := queue.UpcomingSchedules(records, now, opts.Platform, j.AutoPost.Resolver)

	status := server.Status{
		UpcomingCount: len(upcoming),
		LastCheckAt:   &now,
		Platform:      opts.Platform,
	}
	if len(upcoming) > 0 {
		next := upcoming[0]
		status.NextScheduledAt = &next
	}
	keepAlive.SetStatus(status)

	if len(upcoming) == 0 {
		// The queue may still hold a missed-but-inside-window row; run one
		// cycle before going idle so catch-up does not wait six hours.
		if err := j.AutoPost.Run(ctx, jctx, opts); err != nil {
			utils.Error("autopost cycle failed", "err", err)
		}
		utils.Info("no upcoming schedules")
		return idleSleep, nil
	}

	next := upcoming[0]
	utils.Info("next schedule", "at", next.Format(time.RFC3339))

	sleep := next.Sub(now) - wakeLead
	if sleep > 0 {
		return sleep, nil
	}

	if err := j.AutoPost.Run(ctx, jctx, opts); err != nil {
		utils.Error("autopost cycle failed", "err", err)
	}
	return postCooldown, nil
}
