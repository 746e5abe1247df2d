package mocks

import (
	"context"

	"github.com/brykly/blogflow/pkg/protocol"
	"github.com/stretchr/testify/mock"
)

// MockVideoSource is a mock implementation of protocol.VideoSource interface.
type MockVideoSource struct {
	mock.Mock
}

func (m *MockVideoSource) VideoInfo(ctx context.Context, url string) (*protocol.VideoInfo, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*protocol.VideoInfo), args.Error(1)
}

// Download returns the configured values. A func(context.Context, string)
// (string, error) return value is called instead, for downloads that depend
// on the context.
func (m *MockVideoSource) Download(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)

	if fn, ok := args.Get(0).(func(context.Context, string) (string, error)); ok {
		return fn(ctx, url)
	}

	return args.String(0), args.Error(1)
}

// MockTranscriptStore is a mock implementation of protocol.TranscriptStore interface.
type MockTranscriptStore struct {
	mock.Mock
}

func (m *MockTranscriptStore) Extract(ctx context.Context, videoPath string) (string, error) {
	args := m.Called(ctx, videoPath)

	return args.String(0), args.Error(1)
}

func (m *MockTranscriptStore) Save(ctx context.Context, transcript string, info *protocol.VideoInfo) (string, error) {
	args := m.Called(ctx, transcript, info)

	return args.String(0), args.Error(1)
}

func (m *MockTranscriptStore) Load(ctx context.Context, path string) (*protocol.TranscriptData, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*protocol.TranscriptData), args.Error(1)
}

// MockBlogGenerator is a mock implementation of protocol.BlogGenerator interface.
type MockBlogGenerator struct {
	mock.Mock

	ProviderName string
}

func (m *MockBlogGenerator) Name() string {
	return m.ProviderName
}

func (m *MockBlogGenerator) GenerateBlogPost(ctx context.Context, transcript, tone, style string) (string, error) {
	args := m.Called(ctx, transcript, tone, style)

	return args.String(0), args.Error(1)
}

// MockOutputStore is a mock implementation of protocol.OutputStore interface.
type MockOutputStore struct {
	mock.Mock
}

func (m *MockOutputStore) SaveBlogPost(ctx context.Context, content string, metadata map[string]any) (string, error) {
	args := m.Called(ctx, content, metadata)

	return args.String(0), args.Error(1)
}

func (m *MockOutputStore) GenerateMetadata(ctx context.Context, content, blogPath string) (*protocol.PostMetadata, error) {
	args := m.Called(ctx, content, blogPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*protocol.PostMetadata), args.Error(1)
}

// MockTempStorage is a mock implementation of protocol.TempStorage interface.
type MockTempStorage struct {
	mock.Mock
}

func (m *MockTempStorage) CleanupTempFiles(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
