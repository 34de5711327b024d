package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"autopost/poster-go/internal/utils"
)

// RenderTestJob renders the first queue row without publishing or marking,
// so voices, backgrounds and music levels can be checked end to end.
type RenderTestJob struct {
	AutoPost AutoPostJob
}

func (j RenderTestJob) Run(ctx context.Context, jctx JobContext, opts JobOptions) error {
	records, err := loadRecords(ctx, jctx.Source)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.New("queue is empty, nothing to render")
	}

	record := records[0]
	if record.Body == "" {
		return errors.New("first queue row has no text")
	}

	utils.Info("render test", "title", record.Title, "background", record.Background, "music", record.Music)

	videoPath, err := j.AutoPost.producePipeline(ctx, jctx.Config, record)
	if err != nil {
		return err
	}

	fmt.Printf("Test video rendered: %s\n", filepath.Clean(videoPath))
	return nil
}
