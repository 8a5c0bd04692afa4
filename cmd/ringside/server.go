package main

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/ringside/simulator/internal/storage"
	"github.com/ringside/simulator/pkg/core"
)

// liveView holds the newest frame of the running match. It is an
// engine.Listener, so it is written from the tick loop and read by HTTP
// handlers and the log context.
type liveView struct {
	mu      sync.RWMutex
	matchID string
	frame   core.Frame
	seen    bool
}

func (v *liveView) begin(matchID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.matchID = matchID
	v.frame = core.Frame{}
	v.seen = false
}

func (v *liveView) OnHit(core.AttackResult)  {}
func (v *liveView) OnPhase(core.PhaseChange) {}

func (v *liveView) OnFrame(fr core.Frame) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frame = fr
	v.seen = true
}

func (v *liveView) snapshot() (string, core.Frame, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.matchID, v.frame, v.seen
}

func (v *liveView) phase() string {
	_, fr, ok := v.snapshot()
	if !ok {
		return ""
	}
	return fr.Match.Phase.String()
}

func (v *liveView) round() int {
	_, fr, _ := v.snapshot()
	return fr.Match.Round
}

func newRouter(view *liveView, backend storage.Backend) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
	})

	r.GET("/snapshot", func(c *gin.Context) {
		id, fr, ok := view.snapshot()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no match running"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"matchId": id, "frame": fr})
	})

	if loader, ok := backend.(storage.Loader); ok {
		r.GET("/matches/:id", func(c *gin.Context) {
			replay, err := loader.LoadMatch(c.Param("id"))
			switch {
			case errors.Is(err, storage.ErrMatchNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case err != nil:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusOK, replay)
			}
		})
	}
	return r
}
