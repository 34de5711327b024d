package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"autopost/poster-go/internal/config"
	"autopost/poster-go/internal/events"
	"autopost/poster-go/internal/jobs"
	"autopost/poster-go/internal/queue"
	"autopost/poster-go/internal/rowsource"
	"autopost/poster-go/internal/utils"
)

func Run(args []string) int {
	// Support a global --verbose flag anywhere in the argv (before or after
	// the command); the stdlib flag parser stops at the first non-flag arg.
	args, globalVerbose := extractGlobalVerbose(args)
	utils.ConfigureLogging(globalVerbose)

	if len(args) < 2 {
		printUsage()
		return 1
	}
	if args[1] == "-h" || args[1] == "--help" || args[1] == "help" {
		printUsage()
		return 0
	}

	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}
	utils.Logf("poster: config loaded env=%s hostname=%s tz=%s", cfg.AppEnv, cfg.Hostname, cfg.Timezone)

	cmd := args[1]
	cmdArgs := args[2:]
	utils.Logf("poster: cmd=%s args=%v", cmd, cmdArgs)

	var runErr error
	switch cmd {
	case "job:AutoPost":
		runErr = runAutoPost(ctx, cfg, cmdArgs)
	case "job:RenderTest":
		runErr = runRenderTest(ctx, cfg, cmdArgs)
	case "queue:Inspect":
		runErr = runQueueInspect(ctx, cfg, cmdArgs)
	case "queue:Mark":
		runErr = runQueueMark(ctx, cfg, cmdArgs)
	case "watch":
		runErr = runWatch(ctx, cfg, cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		return 1
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		return 1
	}
	return 0
}

// openSource picks the row-source strategy once: Postgres when a DSN is
// configured, the CSV file otherwise. The returned cleanup is always safe to
// call.
func openSource(ctx context.Context, cfg config.Config, queuePath string) (rowsource.Source, func(), error) {
	if cfg.QueueDSN != "" {
		pg, err := rowsource.NewPostgresSource(ctx, cfg.QueueDSN)
		if err != nil {
			return nil, func() {}, fmt.Errorf("open queue db: %w", err)
		}
		return pg, pg.Close, nil
	}
	if queuePath == "" {
		queuePath = cfg.QueueFile
	}
	return rowsource.NewCSVSource(queuePath), func() {}, nil
}

// connectEvents returns a nil notifier when no broker is configured or the
// connect fails; posting must not depend on the notification side channel.
func connectEvents(cfg config.Config) *events.Notifier {
	if !cfg.EventsEnabled() {
		return nil
	}
	notifier, err := events.Connect(cfg.RabbitMQURL(), cfg.RabbitMQQueue)
	if err != nil {
		utils.Warn("events broker unavailable; continuing without notifications", "err", err)
		return nil
	}
	return notifier
}

func runAutoPost(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("job:AutoPost", flag.ContinueOnError)
	maxLate := fs.Int("max-late", cfg.MaxLateHours, "Catch-up window in hours")
	platform := fs.String("platform", cfg.Platform, "Target platform tag (YT, TG)")
	dryRun := fs.Bool("dry-run", false, "Run the pipeline but skip marking the queue")
	queuePath := fs.String("queue", "", "Queue file path (overrides config)")
	verbose := fs.Bool("verbose", utils.Verbose, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	utils.ConfigureLogging(*verbose)

	source, cleanup, err := openSource(ctx, cfg, *queuePath)
	if err != nil {
		return err
	}
	defer cleanup()

	var notifier *events.Notifier
	if !*dryRun {
		notifier = connectEvents(cfg)
		defer notifier.Close()
	}

	job, err := jobs.NewAutoPostJob(cfg)
	if err != nil {
		return err
	}
	jctx := jobs.JobContext{Config: cfg, Source: source, Events: notifier}
	opts := jobs.JobOptions{
		MaxLateness: time.Duration(*maxLate) * time.Hour,
		Platform:    *platform,
		DryRun:      *dryRun,
	}
	return job.Run(ctx, jctx, opts)
}

func runRenderTest(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("job:RenderTest", flag.ContinueOnError)
	queuePath := fs.String("queue", "", "Queue file path (overrides config)")
	verbose := fs.Bool("verbose", utils.Verbose, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	utils.ConfigureLogging(*verbose)

	source, cleanup, err := openSource(ctx, cfg, *queuePath)
	if err != nil {
		return err
	}
	defer cleanup()

	autoPost, err := jobs.NewAutoPostJob(cfg)
	if err != nil {
		return err
	}
	job := jobs.RenderTestJob{AutoPost: autoPost}
	return job.Run(ctx, jobs.JobContext{Config: cfg, Source: source}, jobs.JobOptions{})
}

func runQueueInspect(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("queue:Inspect", flag.ContinueOnError)
	maxLate := fs.Int("max-late", cfg.MaxLateHours, "Catch-up window in hours")
	platform := fs.String("platform", cfg.Platform, "Target platform tag")
	queuePath := fs.String("queue", "", "Queue file path (overrides config)")
	verbose := fs.Bool("verbose", utils.Verbose, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	utils.ConfigureLogging(*verbose)

	source, cleanup, err := openSource(ctx, cfg, *queuePath)
	if err != nil {
		return err
	}
	defer cleanup()

	job, err := jobs.NewAutoPostJob(cfg)
	if err != nil {
		return err
	}

	rows, err := source.Load(ctx)
	if err != nil {
		return err
	}
	records := make([]queue.Record, len(rows))
	for i, row := range rows {
		records[i] = queue.Normalize(row)
	}

	now := time.Now().In(job.Location)
	sel, err := queue.SelectJob(records, now, time.Duration(*maxLate)*time.Hour, *platform, job.Resolver)
	if err != nil {
		return err
	}

	fmt.Printf("Queue: %d rows, platform %s, now %s\n", len(records), *platform, now.Format(time.RFC3339))
	if sel.Job != nil {
		fmt.Printf("Due now:  %q scheduled %s (late %s)\n",
			sel.Job.Record.Title, sel.Job.ScheduledAt.Format(time.RFC3339), sel.Job.Lateness)
	} else {
		fmt.Println("Due now:  nothing")
	}
	if sel.NextUpcoming != nil {
		fmt.Printf("Upcoming: %q at %s\n",
			sel.NextUpcoming.Record.Title, sel.NextUpcoming.ScheduledAt.Format(time.RFC3339))
	}
	if sel.LastMissed != nil {
		fmt.Printf("Missed:   %q late by %s (outside window)\n",
			sel.LastMissed.Record.Title, sel.LastMissed.Lateness)
	}
	return nil
}

func runQueueMark(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("queue:Mark", flag.ContinueOnError)
	date := fs.String("date", "", "Scheduled date of the target row (as written in the queue)")
	title := fs.String("title", "", "Title of the target row")
	platform := fs.String("platform", cfg.Platform, "Platform tag to mark")
	note := fs.String("note", "", "Optional note, e.g. the external video ID")
	queuePath := fs.String("queue", "", "Queue file path (overrides config)")
	verbose := fs.Bool("verbose", utils.Verbose, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	utils.ConfigureLogging(*verbose)
	if *date == "" || *title == "" {
		return fmt.Errorf("queue:Mark requires --date and --title")
	}

	source, cleanup, err := openSource(ctx, cfg, *queuePath)
	if err != nil {
		return err
	}
	defer cleanup()

	rows, err := source.Load(ctx)
	if err != nil {
		return err
	}
	records := make([]queue.Record, len(rows))
	for i, row := range rows {
		records[i] = queue.Normalize(row)
	}

	target := queue.Record{ScheduledDate: strings.TrimSpace(*date), Title: strings.TrimSpace(*title)}
	updated, err := queue.MarkPosted(records, target, *platform, *note)
	if err != nil {
		return err
	}

	out := make([]rowsource.Row, len(updated))
	for i, record := range updated {
		out[i] = rowsource.Row(queue.Denormalize(record))
	}
	if err := source.Overwrite(ctx, queue.CanonicalHeader, out); err != nil {
		return err
	}
	utils.Info("marked", "date", *date, "title", *title, "platform", *platform)
	return nil
}

func runWatch(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	maxLate := fs.Int("max-late", cfg.MaxLateHours, "Catch-up window in hours")
	platform := fs.String("platform", cfg.Platform, "Target platform tag")
	port := fs.Int("port", 8080, "Keep-alive HTTP port")
	queuePath := fs.String("queue", "", "Queue file path (overrides config)")
	verbose := fs.Bool("verbose", utils.Verbose, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	utils.ConfigureLogging(*verbose)

	source, cleanup, err := openSource(ctx, cfg, *queuePath)
	if err != nil {
		return err
	}
	defer cleanup()

	notifier := connectEvents(cfg)
	defer notifier.Close()

	autoPost, err := jobs.NewAutoPostJob(cfg)
	if err != nil {
		return err
	}
	job := jobs.WatchJob{AutoPost: autoPost}
	jctx := jobs.JobContext{Config: cfg, Source: source, Events: notifier}
	opts := jobs.JobOptions{
		MaxLateness: time.Duration(*maxLate) * time.Hour,
		Platform:    *platform,
		Port:        *port,
	}
	return job.Run(ctx, jctx, opts)
}

func extractGlobalVerbose(args []string) ([]string, bool) {
	if len(args) == 0 {
		return args, false
	}
	verbose := false
	out := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg == "--verbose" || arg == "-verbose":
			verbose = true
			continue
		case strings.HasPrefix(arg, "--verbose="):
			raw := strings.TrimPrefix(arg, "--verbose=")
			if parsed, err := strconv.ParseBool(raw); err == nil {
				verbose = parsed
			}
			continue
		case strings.HasPrefix(arg, "-verbose="):
			raw := strings.TrimPrefix(arg, "-verbose=")
			if parsed, err := strconv.ParseBool(raw); err == nil {
				verbose = parsed
			}
			continue
		default:
			out = append(out, arg)
		}
	}
	return out, verbose
}

func printUsage() {
	fmt.Println("Usage: poster <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  job:AutoPost   [--max-late=H] [--platform=TAG] [--dry-run] [--queue=path] [--verbose]")
	fmt.Println("  job:RenderTest [--queue=path] [--verbose]")
	fmt.Println("  queue:Inspect  [--max-late=H] [--platform=TAG] [--queue=path] [--verbose]")
	fmt.Println("  queue:Mark     --date=YYYY-MM-DD --title=... [--platform=TAG] [--note=...] [--queue=path]")
	fmt.Println("  watch          [--max-late=H] [--platform=TAG] [--port=N] [--queue=path] [--verbose]")
}
