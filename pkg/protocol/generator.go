package protocol

import "context"

// BlogGenerator turns a transcript into blog post content. Implementations
// are interchangeable, so one can stand in for another after a failure.
type BlogGenerator interface {
	Name() string
	GenerateBlogPost(ctx context.Context, transcript, tone, style string) (string, error)
}
