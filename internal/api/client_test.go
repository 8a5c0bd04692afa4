package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringside/simulator/pkg/core"
)

func TestNewTrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:5000/", "secret")
	assert.Equal(t, "http://localhost:5000", c.baseURL)
	assert.Equal(t, "secret", c.apiKey)
	assert.NotNil(t, c.httpClient)
}

func TestHealthcheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"server error", http.StatusInternalServerError, true},
		{"not found", http.StatusNotFound, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/healthcheck", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := New(srv.URL, "").Healthcheck(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHealthcheckServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	assert.Error(t, New(url, "").Healthcheck(context.Background()))
}

func TestUpload(t *testing.T) {
	form := make(map[string]string)
	var content []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, uploadPath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		if !assert.NoError(t, r.ParseMultipartForm(10<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, k := range []string{"secret", "filename", "matchId", "fighters", "duration", "tag"} {
			form[k] = r.FormValue(k)
		}
		file, _, err := r.FormFile("file")
		if assert.NoError(t, err) {
			content, _ = io.ReadAll(file)
			file.Close()
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "m-1_20260101_120000.json.gz")
	require.NoError(t, os.WriteFile(path, []byte("replay bytes"), 0o644))

	err := New(srv.URL, "mysecret").Upload(context.Background(), path, core.UploadMetadata{
		MatchID:  "m-1",
		Fighters: "player vs cpu",
		Duration: 93.25,
		Tag:      "ladder",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"secret":   "mysecret",
		"filename": "m-1_20260101_120000.json.gz",
		"matchId":  "m-1",
		"fighters": "player vs cpu",
		"duration": "93.250",
		"tag":      "ladder",
	}, form)
	assert.Equal(t, "replay bytes", string(content))
}

func TestUploadFileNotFound(t *testing.T) {
	err := New("http://localhost:5000", "secret").
		Upload(context.Background(), "/nonexistent/file.json.gz", core.UploadMetadata{})
	assert.Error(t, err)
}

func TestUploadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		http.Error(w, "bad secret", http.StatusForbidden)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "m.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	err := New(srv.URL, "wrong").Upload(context.Background(), path, core.UploadMetadata{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "bad secret")
}
