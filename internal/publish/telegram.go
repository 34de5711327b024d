package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"autopost/poster-go/internal/config"
	"autopost/poster-go/internal/utils"
)

// Telegram posts the video to a channel via the Bot API. Telegram has no
// scheduled-publish concept for bots, so Meta.PublishAt is ignored here; the
// queue's own scheduling already decided when this runs.
type Telegram struct {
	BotToken string
	ChatID   string

	// BaseURL is swapped out in tests.
	BaseURL string
	Client  *http.Client
}

func NewTelegram(cfg config.Config) Telegram {
	return Telegram{
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
		BaseURL:  "https://api.telegram.org",
		Client:   &http.Client{Timeout: 5 * time.Minute},
	}
}

func (Telegram) Tag() string { return "TG" }

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func (t Telegram) Publish(ctx context.Context, videoPath string, meta Meta) (string, error) {
	if t.BotToken == "" || t.ChatID == "" {
		return "", errors.New("telegram bot token or chat id not configured")
	}

	file, err := os.Open(videoPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("chat_id", t.ChatID); err != nil {
		return "", err
	}
	caption := meta.Title
	if meta.Description != "" {
		caption += "\n\n" + meta.Description
	}
	if err := writer.WriteField("caption", caption); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("video", filepath.Base(videoPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/bot%s/sendVideo", t.BaseURL, t.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode telegram response: %w", err)
	}
	if !parsed.OK {
		return "", fmt.Errorf("telegram sendVideo failed: %s", parsed.Description)
	}

	messageID := strconv.FormatInt(parsed.Result.MessageID, 10)
	utils.Info("telegram posted", "chat_id", t.ChatID, "message_id", messageID)
	return messageID, nil
}
