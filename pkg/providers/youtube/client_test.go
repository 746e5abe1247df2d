package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/errs"
	"github.com/brykly/blogflow/pkg/log"
	"github.com/brykly/blogflow/pkg/output"
	"github.com/brykly/blogflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://youtu.be/dQw4w9WgXcQ"

func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, string) {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := config.Default().YouTube
	cfg.OEmbedURL = server.URL + "/oembed"
	cfg.CaptionsURL = server.URL + "/timedtext"
	cfg.Timeout = 2 * time.Second

	tempDir := filepath.Join(t.TempDir(), "temp")

	return New(cfg, output.NewStorage(tempDir, log.Discard()), log.Discard()), tempDir
}

func TestClient_VideoInfo(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", r.URL.Query().Get("url"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		_, _ = w.Write([]byte(`{"title":"Test Video","author_name":"Test Channel"}`))
	})

	client, _ := newTestClient(t, mux)

	info, err := client.VideoInfo(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", info.ID)
	assert.Equal(t, "Test Video", info.Title)
	assert.Equal(t, "Test Channel", info.Uploader)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", info.URL)
}

func TestClient_VideoInfoErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{name: "not found", status: http.StatusNotFound, body: "Not Found"},
		{name: "private video", status: http.StatusUnauthorized, body: "Unauthorized", kind: errs.ErrAuthentication},
		{name: "throttled", status: http.StatusTooManyRequests, kind: errs.ErrRateLimited},
		{name: "no title", status: http.StatusOK, body: `{"author_name":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mux := http.NewServeMux()
			mux.HandleFunc("/oembed", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			client, _ := newTestClient(t, mux)

			_, err := client.VideoInfo(context.Background(), testURL)
			require.Error(t, err)
			assert.True(t, errs.IsProviderError(err))

			if tt.kind != nil {
				assert.ErrorIs(t, err, tt.kind)
			}
		})
	}
}

func TestClient_InvalidURLIsProviderAndValidationError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.NewServeMux())

	_, err := client.VideoInfo(context.Background(), "https://example.com/video")
	assert.True(t, errs.IsProviderError(err))
	assert.True(t, errs.IsValidationError(err))

	_, err = client.Download(context.Background(), "https://example.com/video")
	assert.True(t, errs.IsValidationError(err))
}

func TestClient_Download(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		assert.Equal(t, "vtt", r.URL.Query().Get("fmt"))

		_, _ = w.Write([]byte("WEBVTT\n\n00:00.000 --> 00:01.000\nHello\n"))
	})

	client, tempDir := newTestClient(t, mux)
	runDir := filepath.Join(tempDir, "run-1")

	path, err := client.Download(protocol.ContextWithRunID(context.Background(), "run-1"), testURL)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(runDir, "dQw4w9WgXcQ.mp4"), path)
	assert.FileExists(t, path)

	captions, err := os.ReadFile(filepath.Join(runDir, "dQw4w9WgXcQ.en.vtt"))
	require.NoError(t, err)
	assert.Contains(t, string(captions), "Hello")
}

func TestClient_DownloadWithoutCaptions(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/timedtext", func(http.ResponseWriter, *http.Request) {})

	client, tempDir := newTestClient(t, mux)

	path, err := client.Download(context.Background(), testURL)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.NoFileExists(t, filepath.Join(tempDir, "dQw4w9WgXcQ.en.vtt"))
}
