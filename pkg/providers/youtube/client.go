// Package youtube is the video source adapter for YouTube. Metadata comes
// from the oEmbed endpoint; Download stores a placeholder media file and, when
// available, the WebVTT captions the transcript store reads.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/errs"
	"github.com/brykly/blogflow/pkg/protocol"
)

const (
	providerName = "youtube"
	mediaExt     = ".mp4"
	maxBodyBytes = 4 << 20
)

// TempDirs hands out the scratch directory of the run in ctx.
type TempDirs interface {
	TempDir(ctx context.Context) (string, error)
}

// Client implements protocol.VideoSource.
type Client struct {
	cfg        config.YouTubeConfig
	temp       TempDirs
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client built from the configured timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(cfg config.YouTubeConfig, temp TempDirs, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		temp:       temp,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("module", providerName),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// VideoInfo looks the video up through oEmbed.
func (c *Client) VideoInfo(ctx context.Context, videoURL string) (*protocol.VideoInfo, error) {
	id, err := VideoID(videoURL)
	if err != nil {
		return nil, errs.NewProviderError(providerName, "video_info", errs.ErrValidation, err)
	}

	query := url.Values{}
	query.Set("url", CanonicalURL(id))
	query.Set("format", "json")

	payload, status, err := c.get(ctx, c.cfg.OEmbedURL+"?"+query.Encode())
	if err != nil {
		return nil, c.requestError("video_info", status, err)
	}

	var embed oembedResponse

	err = json.Unmarshal(payload, &embed)
	if err != nil {
		return nil, c.requestError("video_info", status, fmt.Errorf("decoding oEmbed response: %w", err))
	}

	if embed.Title == "" {
		return nil, c.requestError("video_info", status, errors.New("oEmbed response has no title"))
	}

	c.logger.DebugContext(ctx, "video info fetched", "video_id", id, "title", embed.Title)

	return &protocol.VideoInfo{
		ID:       id,
		URL:      CanonicalURL(id),
		Title:    embed.Title,
		Uploader: embed.AuthorName,
	}, nil
}

// Download writes <dir>/<id>.mp4 and, if the captions endpoint has them,
// <dir>/<id>.<lang>.vtt, where dir is the run's temp directory. Missing
// captions are not an error here.
func (c *Client) Download(ctx context.Context, videoURL string) (string, error) {
	id, err := VideoID(videoURL)
	if err != nil {
		return "", errs.NewProviderError(providerName, "download_video", errs.ErrValidation, err)
	}

	dir, err := c.temp.TempDir(ctx)
	if err != nil {
		return "", err
	}

	mediaPath := filepath.Join(dir, id+mediaExt)

	err = os.WriteFile(mediaPath, nil, 0o600)
	if err != nil {
		return "", fmt.Errorf("%w: writing %s: %w", errs.ErrStorage, mediaPath, err)
	}

	if c.cfg.CaptionsURL != "" {
		err = c.downloadCaptions(ctx, dir, id)
		if err != nil {
			if ctx.Err() != nil {
				return "", c.requestError("download_video", 0, err)
			}

			c.logger.WarnContext(ctx, "captions unavailable", "video_id", id, "error", err)
		}
	}

	c.logger.InfoContext(ctx, "video downloaded", "video_id", id, "path", mediaPath)

	return mediaPath, nil
}

func (c *Client) downloadCaptions(ctx context.Context, dir, id string) error {
	query := url.Values{}
	query.Set("v", id)
	query.Set("lang", c.cfg.CaptionLanguage)
	query.Set("fmt", "vtt")

	payload, _, err := c.get(ctx, c.cfg.CaptionsURL+"?"+query.Encode())
	if err != nil {
		return err
	}

	if strings.TrimSpace(string(payload)) == "" {
		return errors.New("no captions published")
	}

	path := filepath.Join(dir, id+"."+c.cfg.CaptionLanguage+".vtt")

	return os.WriteFile(path, payload, 0o600)
}

// get returns the body of a 200 response, or an error carrying the status.
func (c *Client) get(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			c.logger.ErrorContext(ctx, "failed to close response body", "error", closeErr)
		}
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return payload, resp.StatusCode, nil
}

func (c *Client) requestError(op string, status int, err error) error {
	var kind error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = errs.ErrTimeout
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = errs.ErrAuthentication
	case status == http.StatusTooManyRequests:
		kind = errs.ErrRateLimited
	}

	providerErr := errs.NewProviderError(providerName, op, kind, err)
	if status != http.StatusOK {
		providerErr.StatusCode = status
	}

	return providerErr
}
