// Package protocol defines the contracts between the workflows and the external services they call.
package protocol

import "context"

// VideoInfo is the metadata a video source reports for a URL.
type VideoInfo struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Uploader    string `json:"uploader,omitempty"`
	Duration    int    `json:"duration,omitempty"` // seconds
	ViewCount   int64  `json:"view_count,omitempty"`
	UploadDate  string `json:"upload_date,omitempty"`
}

// VideoSource fetches video metadata and media.
type VideoSource interface {
	VideoInfo(ctx context.Context, url string) (*VideoInfo, error)
	// Download stores the media locally and returns its path.
	Download(ctx context.Context, url string) (string, error)
}
