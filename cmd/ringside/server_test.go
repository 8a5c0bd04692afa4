package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringside/simulator/internal/config"
	"github.com/ringside/simulator/internal/database"
	"github.com/ringside/simulator/internal/storage/gormstore"
	"github.com/ringside/simulator/internal/storage/memory"
	"github.com/ringside/simulator/pkg/core"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthcheckRoute(t *testing.T) {
	r := newRouter(&liveView{}, memory.New(config.MemoryConfig{}))

	w := get(t, r, "/healthcheck")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSnapshotRoute(t *testing.T) {
	view := &liveView{}
	r := newRouter(view, memory.New(config.MemoryConfig{}))

	assert.Equal(t, http.StatusNotFound, get(t, r, "/snapshot").Code)

	view.begin("m-1")
	view.OnFrame(core.Frame{
		Number: 120,
		Match:  core.MatchSnapshot{Phase: core.PhaseFight, Round: 2},
	})

	w := get(t, r, "/snapshot")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		MatchID string `json:"matchId"`
		Frame   struct {
			Number uint64 `json:"frame"`
			Match  struct {
				Phase string `json:"phase"`
			} `json:"match"`
		} `json:"frame"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "m-1", body.MatchID)
	assert.Equal(t, uint64(120), body.Frame.Number)
	assert.Equal(t, "FIGHT", body.Frame.Match.Phase)

	assert.Equal(t, "FIGHT", view.phase())
	assert.Equal(t, 2, view.round())
}

func TestMatchesRouteNeedsLoader(t *testing.T) {
	r := newRouter(&liveView{}, memory.New(config.MemoryConfig{}))
	assert.Equal(t, http.StatusNotFound, get(t, r, "/matches/x").Code)
}

func TestMatchesRoute(t *testing.T) {
	db, err := database.GetSqliteDB("")
	require.NoError(t, err)
	b := gormstore.New(db, gormstore.Config{}, quietLogger())
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartMatch(&core.Match{ID: "m-42", StartTime: time.Now(), MaxRounds: 3}, [2]core.Fighter{
		{Slot: 0, Name: "player", Side: core.SideHuman},
		{Slot: 1, Name: "cpu", Side: core.SideAI},
	}))

	r := newRouter(&liveView{}, b)

	w := get(t, r, "/matches/m-42")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"m-42"`)
	assert.Contains(t, w.Body.String(), `"name":"cpu"`)

	assert.Equal(t, http.StatusNotFound, get(t, r, "/matches/missing").Code)
}
