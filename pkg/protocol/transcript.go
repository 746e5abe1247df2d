package protocol

import "context"

// TranscriptData is a transcript loaded back from storage with the metadata saved next to it.
type TranscriptData struct {
	Path       string         `json:"path"`
	Transcript string         `json:"transcript"`
	Metadata   map[string]any `json:"metadata"`
}

// Title returns the metadata title, or an empty string.
func (d *TranscriptData) Title() string {
	title, _ := d.Metadata["title"].(string)

	return title
}

// TranscriptStore extracts transcripts from media and persists them.
type TranscriptStore interface {
	Extract(ctx context.Context, videoPath string) (string, error)
	Save(ctx context.Context, transcript string, info *VideoInfo) (string, error)
	Load(ctx context.Context, path string) (*TranscriptData, error)
}
