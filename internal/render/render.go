// Package render composes the final vertical video with ffmpeg: looped
// background, narration audio, a burned-in caption and, when the row names
// one, background music ducked under the voice.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"autopost/poster-go/internal/utils"
)

// Request names the artifacts for one composition. Music is optional.
type Request struct {
	Background string
	Narration  string
	Caption    string
	Music      string
	OutputPath string
}

type Renderer struct{}

// Render produces Request.OutputPath. The video runs exactly as long as the
// narration; the background loops and the music is trimmed to fit.
func (Renderer) Render(ctx context.Context, req Request) error {
	if !utils.FileExists(req.Background) {
		return fmt.Errorf("background not found: %s", req.Background)
	}
	if !utils.FileExists(req.Narration) {
		return fmt.Errorf("narration not found: %s", req.Narration)
	}
	if err := utils.EnsureDir(filepath.Dir(req.OutputPath)); err != nil {
		return err
	}

	duration, err := ProbeDuration(ctx, req.Narration)
	if err != nil {
		return fmt.Errorf("probe narration: %w", err)
	}

	// drawtext reads the caption from a file so the text never has to be
	// escaped through two layers of quoting.
	captionFile := req.OutputPath + ".caption.txt"
	if err := os.WriteFile(captionFile, []byte(req.Caption), 0o644); err != nil {
		return err
	}
	defer os.Remove(captionFile)

	video := fmt.Sprintf(
		"[0:v]scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920,"+
			"drawtext=textfile=%s:fontcolor=white:fontsize=56:box=1:boxcolor=black@0.5:boxborderw=24:"+
			"x=(w-text_w)/2:y=(h-text_h)/2[v]",
		captionFile,
	)

	var cmd string
	if req.Music != "" && utils.FileExists(req.Music) {
		filter := video + ";[2:a]volume=0.2[m];[1:a][m]amix=inputs=2:duration=first[a]"
		cmd = fmt.Sprintf(
			"ffmpeg -y -stream_loop -1 -i %s -i %s -stream_loop -1 -i %s -filter_complex %s -map '[v]' -map '[a]' -t %s -c:v libx264 -preset veryfast -c:a aac %s",
			utils.ShellEscape(req.Background),
			utils.ShellEscape(req.Narration),
			utils.ShellEscape(req.Music),
			utils.ShellEscape(filter),
			formatDuration(duration),
			utils.ShellEscape(req.OutputPath),
		)
	} else {
		if req.Music != "" {
			utils.Warn("music file missing; rendering without it", "music", req.Music)
		}
		cmd = fmt.Sprintf(
			"ffmpeg -y -stream_loop -1 -i %s -i %s -filter_complex %s -map '[v]' -map 1:a -t %s -c:v libx264 -preset veryfast -c:a aac %s",
			utils.ShellEscape(req.Background),
			utils.ShellEscape(req.Narration),
			utils.ShellEscape(video),
			formatDuration(duration),
			utils.ShellEscape(req.OutputPath),
		)
	}

	if _, err := utils.RunCommand(ctx, cmd); err != nil {
		return err
	}
	if !utils.FileExists(req.OutputPath) {
		return fmt.Errorf("ffmpeg produced no file at %s", req.OutputPath)
	}
	return nil
}

var durationPattern = regexp.MustCompile(`Duration: (\d+):(\d+):(\d+\.\d+)`)

// ProbeDuration reads a media file's duration in seconds from ffmpeg output.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := fmt.Sprintf("ffmpeg -i %s 2>&1 | grep Duration", utils.ShellEscape(path))
	output, err := utils.RunCommand(ctx, cmd)
	if err != nil {
		return 0, err
	}

	matches := durationPattern.FindStringSubmatch(output)
	if len(matches) < 4 {
		return 0, errors.New("duration not found")
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.ParseFloat(matches[3], 64)
	return float64(hours*3600+minutes*60) + seconds, nil
}

func formatDuration(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 2, 64)
}
