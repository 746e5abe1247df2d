package protocol

import "context"

// PostMetadata describes a generated blog post.
type PostMetadata struct {
	Path               string   `json:"path"`
	Title              string   `json:"title,omitempty"`
	WordCount          int      `json:"word_count"`
	ReadingTimeMinutes int      `json:"reading_time_minutes"`
	Headings           []string `json:"headings"`
	Tags               []string `json:"tags"`
}

// OutputStore persists generated posts and their metadata.
type OutputStore interface {
	SaveBlogPost(ctx context.Context, content string, metadata map[string]any) (string, error)
	GenerateMetadata(ctx context.Context, content, blogPath string) (*PostMetadata, error)
}

// TempStorage owns the scratch space used while a workflow runs.
type TempStorage interface {
	CleanupTempFiles(ctx context.Context) error
}
