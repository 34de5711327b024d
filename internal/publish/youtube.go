package publish

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"autopost/poster-go/internal/config"
	"autopost/poster-go/internal/utils"
)

// YouTube uploads through the external upload script configured under
// paths.youtube_upload_script. The script owns OAuth (client secret plus
// refresh token from the environment); this side only builds the invocation
// and fishes the video ID out of its output.
type YouTube struct {
	UploadScript  string
	Category      string
	PrivacyStatus string
}

func NewYouTube(cfg config.Config) YouTube {
	return YouTube{
		UploadScript:  cfg.YoutubeUpload,
		Category:      cfg.YoutubeCategory,
		PrivacyStatus: cfg.YoutubePrivacy,
	}
}

func (YouTube) Tag() string { return "YT" }

var videoIDPattern = regexp.MustCompile(`Video id '([^']+)' was successfully uploaded`)

func (y YouTube) Publish(ctx context.Context, videoPath string, meta Meta) (string, error) {
	if y.UploadScript == "" {
		return "", errors.New("youtube upload script not configured")
	}

	command := fmt.Sprintf(
		"%s --file=%s --title=%s --description=%s --category=%s --keywords=\"%s\" --privacyStatus=%s",
		y.UploadScript,
		utils.ShellEscape(videoPath),
		utils.ShellEscape(meta.Title),
		utils.ShellEscape(meta.Description),
		utils.ShellEscape(y.Category),
		strings.ReplaceAll(meta.Tags, "\"", "\\\""),
		utils.ShellEscape(y.PrivacyStatus),
	)
	// Catch-up posts carry a scheduled instant that already passed; those go
	// out immediately. Only a still-future instant becomes a platform-side
	// scheduled premiere.
	if !meta.PublishAt.IsZero() && meta.PublishAt.After(time.Now()) {
		command += fmt.Sprintf(" --publishAt=%s", utils.ShellEscape(meta.PublishAt.UTC().Format(time.RFC3339)))
	}

	output, err := utils.RunCommand(ctx, command)
	if err != nil {
		return "", err
	}

	matches := videoIDPattern.FindStringSubmatch(output)
	if len(matches) < 2 {
		return "", errors.New("video ID not found in upload output")
	}
	utils.Info("youtube uploaded", "video_id", matches[1])
	return matches[1], nil
}
