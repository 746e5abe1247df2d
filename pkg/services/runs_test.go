package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/events"
	"github.com/brykly/blogflow/pkg/log"
	"github.com/brykly/blogflow/pkg/mocks"
	"github.com/brykly/blogflow/pkg/output"
	"github.com/brykly/blogflow/pkg/persistence"
	"github.com/brykly/blogflow/pkg/persistence/file"
	"github.com/brykly/blogflow/pkg/pipeline"
	"github.com/brykly/blogflow/pkg/protocol"
	"github.com/brykly/blogflow/pkg/transcript"
	"github.com/brykly/blogflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type runsFixture struct {
	outputDir string
	tempDir   string
	source    *mocks.MockVideoSource
	generator *mocks.MockBlogGenerator
	bus       *mocks.MockEventBus
	store       *file.Persistence
	temp        *output.Storage
	transcripts *transcript.Store
	service     *Runs
}

func newRunsFixture(t *testing.T, withBus bool) *runsFixture {
	t.Helper()

	root := t.TempDir()
	f := &runsFixture{
		outputDir: filepath.Join(root, "output"),
		tempDir:   filepath.Join(root, "temp"),
		source:    &mocks.MockVideoSource{},
		generator: &mocks.MockBlogGenerator{ProviderName: config.ProviderOpenAI},
		store:     file.NewPersistence(filepath.Join(root, "runs")),
	}

	logger := log.Discard()
	transcripts := transcript.NewStore(f.outputDir, logger)
	temp := output.NewStorage(f.tempDir, logger)
	f.temp = temp
	f.transcripts = transcripts

	video := pipeline.NewVideoProcessing(logger, f.source, transcripts, temp)
	blog := pipeline.NewBlogGeneration(
		config.Default().Blog,
		logger,
		transcripts,
		[]protocol.BlogGenerator{f.generator},
		output.NewBlogStore(f.outputDir, logger),
		temp,
	)

	var publisher *mocks.MockEventBus
	if withBus {
		publisher = &mocks.MockEventBus{}
		publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.bus = publisher
		f.service = NewRuns(logger, video, blog, f.store, publisher)
	} else {
		f.service = NewRuns(logger, video, blog, f.store, nil)
	}

	return f
}

// expectVideo makes Download leave a media file with an English caption track
// in the run's temp directory.
func (f *runsFixture) expectVideo(t *testing.T) {
	t.Helper()

	f.source.On("VideoInfo", mock.Anything, testVideoURL).Return(&protocol.VideoInfo{
		ID:       "dQw4w9WgXcQ",
		Title:    "Go Pipelines",
		Uploader: "Gopher Talks",
		URL:      testVideoURL,
	}, nil)
	f.source.On("Download", mock.Anything, testVideoURL).Return(func(ctx context.Context, _ string) (string, error) {
		return f.writeDownload(ctx, "dQw4w9WgXcQ", "Pipelines move data.")
	})
}

func (f *runsFixture) writeDownload(ctx context.Context, id, caption string) (string, error) {
	dir, err := f.temp.TempDir(ctx)
	if err != nil {
		return "", err
	}

	media := filepath.Join(dir, id+".mp4")
	if err := os.WriteFile(media, nil, 0o600); err != nil {
		return "", err
	}

	vtt := "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\n" + caption + "\n"
	if err := os.WriteFile(filepath.Join(dir, id+".en.vtt"), []byte(vtt), 0o600); err != nil {
		return "", err
	}

	return media, nil
}

func TestRuns_ProcessEndToEnd(t *testing.T) {
	t.Parallel()

	f := newRunsFixture(t, true)
	f.expectVideo(t)
	f.generator.On("GenerateBlogPost", mock.Anything, "Pipelines move data.", config.DefaultTone, config.DefaultStyle).
		Return("# Go Pipelines\n\nPipelines move data between stages.", nil)

	result, err := f.service.Process(context.Background(), testVideoURL, "", "")
	require.NoError(t, err)
	require.NotNil(t, result.Video)
	require.NotNil(t, result.Blog)
	assert.True(t, result.Video.Succeeded())
	assert.True(t, result.Blog.Succeeded())

	transcriptPath := filepath.Join(f.outputDir, "go-pipelines.txt")
	assert.FileExists(t, transcriptPath)
	assert.FileExists(t, filepath.Join(f.outputDir, "go-pipelines.md"))
	assert.NoDirExists(t, filepath.Join(f.tempDir, result.Video.RunID), "temp files cleaned")

	runs, err := f.service.ListRuns(context.Background(), ListRunsRequest{})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	blogRuns, err := f.service.ListRuns(context.Background(), ListRunsRequest{Workflow: pipeline.BlogGenerationName})
	require.NoError(t, err)
	require.Len(t, blogRuns, 1)
	assert.Equal(t, transcriptPath, blogRuns[0].Input)
	assert.Equal(t, result.Blog.RunID, blogRuns[0].ID)

	stored, err := f.service.FetchByID(context.Background(), result.Video.RunID)
	require.NoError(t, err)
	assert.Equal(t, testVideoURL, stored.Input)
	assert.Equal(t, workflow.StatusCompleted, stored.Status)

	f.bus.AssertCalled(t, "Publish", mock.Anything, result.Blog.RunID, mock.MatchedBy(func(e any) bool {
		recorded, ok := e.(*events.RunRecorded)

		return ok && recorded.Status == workflow.StatusCompleted
	}))
	f.bus.AssertCalled(t, "Publish", mock.Anything, result.Video.RunID, mock.MatchedBy(func(e any) bool {
		transition, ok := e.(*events.StepTransition)

		return ok && transition.Step == pipeline.StepDownloadVideo
	}))
}

func TestRuns_CleanupKeepsOtherRunsDownloads(t *testing.T) {
	t.Parallel()

	f := newRunsFixture(t, false)
	f.expectVideo(t)

	// run A has downloaded but not yet extracted its transcript
	ctxA := protocol.ContextWithRunID(context.Background(), "run-a")
	mediaA, err := f.writeDownload(ctxA, "aaaaaaaaaaa", "Run A keeps its captions.")
	require.NoError(t, err)

	// run B goes all the way through cleanup meanwhile
	report, err := f.service.ProcessVideo(context.Background(), testVideoURL)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCompleted, report.Status)

	text, err := f.transcripts.Extract(ctxA, mediaA)
	require.NoError(t, err)
	assert.Equal(t, "Run A keeps its captions.", text)
}

func TestRuns_ProcessStopsAfterVideoFailure(t *testing.T) {
	t.Parallel()

	f := newRunsFixture(t, false)
	f.source.On("VideoInfo", mock.Anything, testVideoURL).Return(nil, errors.New("video unavailable"))

	result, err := f.service.Process(context.Background(), testVideoURL, "", "")
	require.Error(t, err)
	require.NotNil(t, result.Video)
	assert.Nil(t, result.Blog)
	assert.Equal(t, workflow.StatusFailed, result.Video.Status)

	failed, err := f.service.ListRuns(context.Background(), ListRunsRequest{Status: "failed"})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, result.Video.RunID, failed[0].ID)

	f.generator.AssertNotCalled(t, "GenerateBlogPost", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRuns_InvalidInputIsRecorded(t *testing.T) {
	t.Parallel()

	f := newRunsFixture(t, false)

	report, err := f.service.ProcessVideo(context.Background(), "not a url")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	require.NotNil(t, report)
	assert.Equal(t, workflow.StatusFailed, report.Status)

	stored, err := f.service.FetchByID(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Empty(t, stored.Report.Steps)
}

func TestRuns_SaveFailureKeepsRunOutcome(t *testing.T) {
	t.Parallel()

	store := &mocks.MockRunStore{}
	store.On("SaveRun", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	f := newRunsFixture(t, false)
	f.service.store = store

	report, err := f.service.GenerateBlog(context.Background(), "", "", "")
	require.Error(t, err)
	require.NotNil(t, report)

	store.AssertNumberOfCalls(t, "SaveRun", 1)
}

func TestRuns_ListRunsValidation(t *testing.T) {
	t.Parallel()

	f := newRunsFixture(t, false)

	tests := []struct {
		name string
		req  ListRunsRequest
		err  error
	}{
		{name: "unknown workflow", req: ListRunsRequest{Workflow: "deploy"}, err: ErrInvalidWorkflow},
		{name: "unknown status", req: ListRunsRequest{Status: "done"}, err: ErrInvalidStatus},
		{name: "negative limit", req: ListRunsRequest{Limit: -1}, err: ErrInvalidLimit},
		{name: "limit too large", req: ListRunsRequest{Limit: persistence.MaxListLimit + 1}, err: ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := f.service.ListRuns(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.err)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestRuns_FetchByID(t *testing.T) {
	t.Parallel()

	f := newRunsFixture(t, false)

	_, err := f.service.FetchByID(context.Background(), " ")
	assert.True(t, IsValidationError(err))

	_, err = f.service.FetchByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRuns_HealthCheck(t *testing.T) {
	t.Parallel()

	f := newRunsFixture(t, false)

	message, ok := f.service.HealthCheck(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "Run store is healthy", message)

	store := &mocks.MockRunStore{}
	store.On("HealthCheck", mock.Anything).Return(errors.New("connection refused"))
	f.service.store = store

	message, ok = f.service.HealthCheck(context.Background())
	assert.False(t, ok)
	assert.Contains(t, message, "connection refused")
}
