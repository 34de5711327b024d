package publish

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "video.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0o644))
	return path
}

func TestTelegramPublish(t *testing.T) {
	var gotPath, gotChatID, gotCaption string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotChatID = r.FormValue("chat_id")
		gotCaption = r.FormValue("caption")
		_, _, err := r.FormFile("video")
		require.NoError(t, err)
		w.Write([]byte(`{"ok":true,"result":{"message_id":99}}`))
	}))
	defer server.Close()

	tg := Telegram{
		BotToken: "token123",
		ChatID:   "@channel",
		BaseURL:  server.URL,
		Client:   server.Client(),
	}

	id, err := tg.Publish(context.Background(), testVideo(t), Meta{
		Title:       "Judul",
		Description: "isi #fyp",
	})
	require.NoError(t, err)
	assert.Equal(t, "99", id)
	assert.Equal(t, "/bottoken123/sendVideo", gotPath)
	assert.Equal(t, "@channel", gotChatID)
	assert.Equal(t, "Judul\n\nisi #fyp", gotCaption)
}

func TestTelegramPublishAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	tg := Telegram{BotToken: "t", ChatID: "c", BaseURL: server.URL, Client: server.Client()}
	_, err := tg.Publish(context.Background(), testVideo(t), Meta{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramPublishUnconfigured(t *testing.T) {
	tg := Telegram{}
	_, err := tg.Publish(context.Background(), "video.mp4", Meta{})
	assert.Error(t, err)
}
