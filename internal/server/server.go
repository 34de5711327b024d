// Package server runs the keep-alive HTTP endpoint used in watch mode. The
// original deployment ran on a free tier that put the process to sleep
// without inbound traffic; the endpoint doubles as an operator status page.
package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"autopost/poster-go/internal/utils"
)

// Status is what the watch loop last computed.
type Status struct {
	NextScheduledAt *time.Time `json:"next_scheduled_at,omitempty"`
	UpcomingCount   int        `json:"upcoming_count"`
	LastCheckAt     *time.Time `json:"last_check_at,omitempty"`
	Platform        string     `json:"platform"`
}

type KeepAlive struct {
	mu     sync.RWMutex
	status Status
}

func New() *KeepAlive {
	return &KeepAlive{}
}

// SetStatus is called by the watch loop after every planning pass.
func (k *KeepAlive) SetStatus(status Status) {
	k.mu.Lock()
	k.status = status
	k.mu.Unlock()
}

// Start serves in the background; watch mode never waits on it.
func (k *KeepAlive) Start(port int) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "alive")
	})
	r.GET("/status", func(c *gin.Context) {
		k.mu.RLock()
		status := k.status
		k.mu.RUnlock()
		c.JSON(http.StatusOK, status)
	})

	go func() {
		addr := fmt.Sprintf(":%d", port)
		utils.Info("keep-alive listening", "addr", addr)
		if err := r.Run(addr); err != nil {
			utils.Error("keep-alive server stopped", "err", err)
		}
	}()
}
