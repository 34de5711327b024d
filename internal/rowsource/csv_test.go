package rowsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autopost/poster-go/internal/queue"
)

func writeQueueFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queue.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSourceLoadWithCanonicalHeader(t *testing.T) {
	path := writeQueueFile(t, "Tanggal,Judul,Teks,Hashtag,LinkAffiliate,BG,Music,Status,JamWIB\n"+
		"2024-01-01,Video A,Isi,#fyp,link,bg.mp4,m.mp3,,07:30\n"+
		"2024-01-02,Video B,Isi lain,,,bg2.mp4,,POSTED-YT,09:00\n")

	source := NewCSVSource(path)
	rows, err := source.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Video A", rows[0]["Judul"])
	assert.Equal(t, "POSTED-YT", rows[1]["Status"])
}

func TestCSVSourceLoadWithAliasHeader(t *testing.T) {
	path := writeQueueFile(t, "Date,Title,Text,Hashtags,AffiliateLink,Background,Music,Status,Time\n"+
		"2024-01-01,Video A,body,,,bg.mp4,,,08:00\n")

	source := NewCSVSource(path)
	rows, err := source.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	record := queue.Normalize(rows[0])
	assert.Equal(t, "Video A", record.Title)
	assert.Equal(t, "08:00", record.ScheduledTime)
}

func TestCSVSourceSniffsSemicolonDelimiter(t *testing.T) {
	path := writeQueueFile(t, "Tanggal;Judul;Teks;Hashtag;LinkAffiliate;BG;Music;Status;JamWIB\n"+
		"2024-01-01;Video A;Isi, dengan koma;;;bg.mp4;;;07:30\n")

	source := NewCSVSource(path)
	rows, err := source.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Isi, dengan koma", rows[0]["Teks"])
}

func TestCSVSourceHeaderlessFileIsPositional(t *testing.T) {
	path := writeQueueFile(t, "2024-01-01,Video A,Isi,#fyp,link,bg.mp4,m.mp3,,07:30\n")

	source := NewCSVSource(path)
	rows, err := source.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-01", rows[0]["Tanggal"])
	assert.Equal(t, "Video A", rows[0]["Judul"])
	assert.Equal(t, "07:30", rows[0]["JamWIB"])
}

// Round trip: load, mark one record, overwrite, reload. Row count, order and
// unrelated fields must survive; the alias scheme is normalized to canonical.
func TestCSVSourceRoundTripPreservesRows(t *testing.T) {
	path := writeQueueFile(t, "Tanggal,Judul,Teks,Hashtag,LinkAffiliate,BG,Music,Status,JamWIB\n"+
		"2024-01-01,Video A,Isi A,#a,la,bga.mp4,ma.mp3,,07:30\n"+
		"2024-01-02,Video B,Isi B,#b,lb,bgb.mp4,mb.mp3,,08:00\n"+
		"2024-01-03,Video C,Isi C,#c,lc,bgc.mp4,mc.mp3,POSTED-TG,09:00\n")

	ctx := context.Background()
	source := NewCSVSource(path)
	raw, err := source.Load(ctx)
	require.NoError(t, err)

	records := make([]queue.Record, len(raw))
	for i, row := range raw {
		records[i] = queue.Normalize(row)
	}

	updated, err := queue.MarkPosted(records, records[1], "YT", "vid42")
	require.NoError(t, err)

	out := make([]Row, len(updated))
	for i, record := range updated {
		out[i] = queue.Denormalize(record)
	}
	require.NoError(t, source.Overwrite(ctx, queue.CanonicalHeader, out))

	reloaded, err := NewCSVSource(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded, 3)

	assert.Equal(t, "Video A", reloaded[0]["Judul"])
	assert.Equal(t, "", reloaded[0]["Status"])
	assert.Equal(t, "POSTED-YT(vid42)", reloaded[1]["Status"])
	assert.Equal(t, "Isi B", reloaded[1]["Teks"], "unrelated fields unchanged")
	assert.Equal(t, "POSTED-TG", reloaded[2]["Status"])
}

func TestCSVSourceOverwriteKeepsSniffedDelimiter(t *testing.T) {
	path := writeQueueFile(t, "Tanggal;Judul;Teks;Hashtag;LinkAffiliate;BG;Music;Status;JamWIB\n"+
		"2024-01-01;Video A;;;;;;;07:30\n")

	ctx := context.Background()
	source := NewCSVSource(path)
	rows, err := source.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, source.Overwrite(ctx, queue.CanonicalHeader, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tanggal;Judul")
}

func TestCSVSourceMissingFile(t *testing.T) {
	source := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv"))
	_, err := source.Load(context.Background())
	assert.Error(t, err)
}
