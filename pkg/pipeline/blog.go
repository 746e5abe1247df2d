package pipeline

import (
	"context"
	"log/slog"
	"maps"

	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/otelhelper"
	"github.com/brykly/blogflow/pkg/protocol"
	"github.com/brykly/blogflow/pkg/workflow"
	"go.opentelemetry.io/otel/attribute"
)

const BlogGenerationName = "blog_generation"

// Step names of the blog generation workflow. It ends with StepCleanup too.
const (
	StepLoadTranscript   = "load_transcript"
	StepGenerateBlogPost = "generate_blog_post"
	StepSaveBlogPost     = "save_blog_post"
	StepGenerateMetadata = "generate_metadata"
)

// BlogGeneration turns a stored transcript into a blog post.
type BlogGeneration struct {
	logger      *slog.Logger
	blog        config.BlogConfig
	transcripts protocol.TranscriptStore
	generator   *FallbackGenerator
	output      protocol.OutputStore
	temp        protocol.TempStorage
	opts        options
}

// NewBlogGeneration builds the workflow. Generators are tried in the given
// order; the first is the primary provider.
func NewBlogGeneration(
	blog config.BlogConfig,
	logger *slog.Logger,
	transcripts protocol.TranscriptStore,
	generators []protocol.BlogGenerator,
	output protocol.OutputStore,
	temp protocol.TempStorage,
	opts ...Option,
) *BlogGeneration {
	return &BlogGeneration{
		logger:      logger,
		blog:        blog,
		transcripts: transcripts,
		generator:   NewFallbackGenerator(logger, generators...),
		output:      output,
		temp:        temp,
		opts:        buildOptions(opts),
	}
}

// Execute generates, saves and describes a post for the transcript at
// transcriptPath. Empty tone or style fall back to the configured defaults.
func (p *BlogGeneration) Execute(ctx context.Context, transcriptPath, tone, style string, runOpts ...Option) (*workflow.StatusReport, error) {
	w := workflow.New(BlogGenerationName, p.opts.workflowOptions(runOpts)...)

	err := validateTranscriptPath(transcriptPath)
	if err != nil {
		return rejectInput(w, p.logger, err)
	}

	if tone == "" {
		tone = p.blog.Tone
	}

	if style == "" {
		style = p.blog.Style
	}

	var (
		data     *protocol.TranscriptData
		content  string
		provider string
		blogPath string
	)

	stages := []stage{
		{
			name:        StepLoadTranscript,
			description: "Loading transcript from file",
			run: func(ctx context.Context) (map[string]any, error) {
				var err error

				data, err = p.transcripts.Load(ctx, transcriptPath)
				if err != nil {
					return nil, err
				}

				return map[string]any{
					"transcript_path": data.Path,
					"title":           data.Title(),
					"metadata":        data.Metadata,
				}, nil
			},
		},
		{
			name:        StepGenerateBlogPost,
			description: "Generating blog post content",
			run: func(ctx context.Context) (map[string]any, error) {
				var err error

				content, provider, err = p.generator.Generate(ctx, data.Transcript, tone, style)
				if err != nil {
					return nil, err
				}

				return map[string]any{
					"blog_content": content,
					"provider":     provider,
					"tone":         tone,
					"style":        style,
				}, nil
			},
		},
		{
			name:        StepSaveBlogPost,
			description: "Saving blog post to file",
			run: func(ctx context.Context) (map[string]any, error) {
				metadata := maps.Clone(data.Metadata)
				if metadata == nil {
					metadata = map[string]any{}
				}

				metadata["provider"] = provider
				metadata["tone"] = tone
				metadata["style"] = style

				var err error

				blogPath, err = p.output.SaveBlogPost(ctx, content, metadata)
				if err != nil {
					return nil, err
				}

				return map[string]any{"blog_path": blogPath}, nil
			},
		},
		{
			name:        StepGenerateMetadata,
			description: "Generating blog post metadata",
			run: func(ctx context.Context) (map[string]any, error) {
				meta, err := p.output.GenerateMetadata(ctx, content, blogPath)
				if err != nil {
					return nil, err
				}

				return map[string]any{
					"metadata_path":        meta.Path,
					"word_count":           meta.WordCount,
					"reading_time_minutes": meta.ReadingTimeMinutes,
					"headings":             meta.Headings,
					"tags":                 meta.Tags,
				}, nil
			},
		},
		cleanupStage(p.temp),
	}

	return newRunner(w, p.logger, p.opts.tracer).execute(ctx, stages, attribute.String(otelhelper.TranscriptPathKey, transcriptPath))
}

// BlogPath returns the saved post path from a successful blog generation report.
func BlogPath(report *workflow.StatusReport) (string, bool) {
	step, ok := report.Step(StepSaveBlogPost)
	if !ok || step.Status != workflow.StatusCompleted {
		return "", false
	}

	path, ok := step.Result["blog_path"].(string)

	return path, ok
}
