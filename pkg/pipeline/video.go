// Package pipeline holds the concrete workflows: turning a video into a saved
// transcript and turning a transcript into a blog post.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/brykly/blogflow/pkg/otelhelper"
	"github.com/brykly/blogflow/pkg/protocol"
	"github.com/brykly/blogflow/pkg/workflow"
	"go.opentelemetry.io/otel/attribute"
)

const VideoProcessingName = "video_processing"

// Step names of the video processing workflow.
const (
	StepExtractVideoInfo  = "extract_video_info"
	StepDownloadVideo     = "download_video"
	StepExtractTranscript = "extract_transcript"
	StepSaveTranscript    = "save_transcript"
	StepCleanup           = "cleanup"
)

// VideoProcessing downloads a video and stores its transcript.
type VideoProcessing struct {
	logger      *slog.Logger
	source      protocol.VideoSource
	transcripts protocol.TranscriptStore
	temp        protocol.TempStorage
	opts        options
}

func NewVideoProcessing(
	logger *slog.Logger,
	source protocol.VideoSource,
	transcripts protocol.TranscriptStore,
	temp protocol.TempStorage,
	opts ...Option,
) *VideoProcessing {
	return &VideoProcessing{
		logger:      logger,
		source:      source,
		transcripts: transcripts,
		temp:        temp,
		opts:        buildOptions(opts),
	}
}

// Execute runs one video processing workflow for videoURL. The status report
// is returned on success and failure alike.
func (p *VideoProcessing) Execute(ctx context.Context, videoURL string, runOpts ...Option) (*workflow.StatusReport, error) {
	w := workflow.New(VideoProcessingName, p.opts.workflowOptions(runOpts)...)

	err := ValidateVideoURL(videoURL)
	if err != nil {
		return rejectInput(w, p.logger, err)
	}

	var (
		info       *protocol.VideoInfo
		videoPath  string
		transcript string
	)

	stages := []stage{
		{
			name:        StepExtractVideoInfo,
			description: "Extracting video information from YouTube",
			run: func(ctx context.Context) (map[string]any, error) {
				var err error

				info, err = p.source.VideoInfo(ctx, videoURL)
				if err != nil {
					return nil, err
				}

				return map[string]any{"video_info": info}, nil
			},
		},
		{
			name:        StepDownloadVideo,
			description: "Downloading video from YouTube",
			run: func(ctx context.Context) (map[string]any, error) {
				var err error

				videoPath, err = p.source.Download(ctx, videoURL)
				if err != nil {
					return nil, err
				}

				return map[string]any{"video_path": videoPath}, nil
			},
		},
		{
			name:        StepExtractTranscript,
			description: "Extracting transcript from video",
			run: func(ctx context.Context) (map[string]any, error) {
				var err error

				transcript, err = p.transcripts.Extract(ctx, videoPath)
				if err != nil {
					return nil, err
				}

				return map[string]any{"transcript": transcript}, nil
			},
		},
		{
			name:        StepSaveTranscript,
			description: "Saving transcript to file",
			run: func(ctx context.Context) (map[string]any, error) {
				path, err := p.transcripts.Save(ctx, transcript, info)
				if err != nil {
					return nil, err
				}

				return map[string]any{"transcript_path": path}, nil
			},
		},
		cleanupStage(p.temp),
	}

	return newRunner(w, p.logger, p.opts.tracer).execute(ctx, stages, attribute.String(otelhelper.VideoURLKey, videoURL))
}

func cleanupStage(temp protocol.TempStorage) stage {
	return stage{
		name:        StepCleanup,
		description: "Cleaning up temporary files",
		run: func(ctx context.Context) (map[string]any, error) {
			return nil, temp.CleanupTempFiles(ctx)
		},
	}
}

// TranscriptPath returns the saved transcript path from a successful video
// processing report.
func TranscriptPath(report *workflow.StatusReport) (string, bool) {
	step, ok := report.Step(StepSaveTranscript)
	if !ok || step.Status != workflow.StatusCompleted {
		return "", false
	}

	path, ok := step.Result["transcript_path"].(string)

	return path, ok
}
