// Package publish pushes a rendered video to the outside world. Each
// publisher returns an external ID that ends up as the note inside the
// record's POSTED token.
package publish

import (
	"context"
	"time"
)

// Meta is the platform-independent metadata for one upload.
type Meta struct {
	Title       string
	Description string
	Tags        string

	// PublishAt, when set and still in the future, asks the platform to hold
	// the video until that instant. Late catch-up posts leave it zero and go
	// out immediately.
	PublishAt time.Time
}

// Publisher is one destination platform. Tag is the platform component of the
// status token (YT, TG, ...).
type Publisher interface {
	Tag() string
	Publish(ctx context.Context, videoPath string, meta Meta) (externalID string, err error)
}
