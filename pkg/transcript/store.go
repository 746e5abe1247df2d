// Package transcript extracts transcripts from caption files and stores them
// as text with a JSON metadata sidecar.
package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/errs"
	"github.com/brykly/blogflow/pkg/protocol"
)

const metadataExt = ".json"

// Store implements protocol.TranscriptStore on the local filesystem. Load
// only reads transcripts under the output directory or one of readDirs.
type Store struct {
	outputDir string
	readDirs  []string
	logger    *slog.Logger
	now       func() time.Time
}

// NewStore creates a store writing to outputDir. Empty readDirs are ignored.
func NewStore(outputDir string, logger *slog.Logger, readDirs ...string) *Store {
	dirs := []string{outputDir}

	for _, dir := range readDirs {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}

	return &Store{
		outputDir: outputDir,
		readDirs:  dirs,
		logger:    logger.With("module", "transcript"),
		now:       time.Now,
	}
}

// Extract reads the caption sidecar stored next to videoPath, for example
// video.vtt or video.en.srt for video.mp4, and returns its text.
func (s *Store) Extract(ctx context.Context, videoPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if strings.TrimSpace(videoPath) == "" {
		return "", errs.Validationf("video path is empty")
	}

	captionPath, err := findCaptions(videoPath)
	if err != nil {
		return "", err
	}

	raw, err := os.ReadFile(captionPath) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", errs.ErrTranscript, captionPath, err)
	}

	text := ParseCaptions(string(raw))
	if text == "" {
		return "", fmt.Errorf("%w: %s contains no caption text", errs.ErrTranscript, captionPath)
	}

	s.logger.DebugContext(ctx, "transcript extracted", "captions", captionPath, "characters", len(text))

	return text, nil
}

func findCaptions(videoPath string) (string, error) {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))

	for _, ext := range CaptionExtensions {
		candidate := base + ext
		if candidate != videoPath && isFile(candidate) {
			return candidate, nil
		}

		tagged, err := filepath.Glob(escapeGlob(base) + ".*" + ext)
		if err != nil {
			return "", fmt.Errorf("%w: %w", errs.ErrTranscript, err)
		}

		for _, match := range tagged {
			if match != videoPath && isFile(match) {
				return match, nil
			}
		}
	}

	return "", fmt.Errorf("%w: no captions found for %s", errs.ErrTranscript, videoPath)
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func escapeGlob(path string) string {
	replacer := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)

	return replacer.Replace(path)
}

// Save writes transcript to <output>/<slug>.txt and the video metadata to
// <output>/<slug>.json. It returns the transcript path.
func (s *Store) Save(ctx context.Context, transcript string, info *protocol.VideoInfo) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if info == nil {
		info = &protocol.VideoInfo{}
	}

	err := os.MkdirAll(s.outputDir, 0o750)
	if err != nil {
		return "", fmt.Errorf("%w: creating %s: %w", errs.ErrStorage, s.outputDir, err)
	}

	stem := Slug(info.Title)
	if stem == "" {
		stem = Slug(info.ID)
	}

	if stem == "" {
		stem = "transcript-" + s.now().UTC().Format("20060102-150405")
	}

	title := info.Title
	if title == "" {
		title = TitleFromFilename(stem)
	}

	metadata := map[string]any{
		"title":    title,
		"saved_at": s.now().UTC().Format(time.RFC3339),
	}
	setIfNotEmpty(metadata, "video_id", info.ID)
	setIfNotEmpty(metadata, "url", info.URL)
	setIfNotEmpty(metadata, "channel", info.Uploader)
	setIfNotEmpty(metadata, "description", info.Description)
	setIfNotEmpty(metadata, "upload_date", info.UploadDate)

	if info.Duration > 0 {
		metadata["duration"] = info.Duration
	}

	if info.ViewCount > 0 {
		metadata["view_count"] = info.ViewCount
	}

	transcriptPath := filepath.Join(s.outputDir, stem+config.TranscriptExt)

	err = os.WriteFile(transcriptPath, []byte(transcript), 0o600)
	if err != nil {
		return "", fmt.Errorf("%w: writing %s: %w", errs.ErrStorage, transcriptPath, err)
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encoding metadata: %w", errs.ErrStorage, err)
	}

	err = os.WriteFile(metadataPath(transcriptPath), data, 0o600)
	if err != nil {
		return "", fmt.Errorf("%w: writing metadata: %w", errs.ErrStorage, err)
	}

	s.logger.InfoContext(ctx, "transcript saved", "path", transcriptPath)

	return transcriptPath, nil
}

// Load reads a transcript and its metadata sidecar. Without a sidecar the
// title is derived from the file name.
func (s *Store) Load(ctx context.Context, path string) (*protocol.TranscriptData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := s.checkReadable(path)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path) // #nosec G304 -- contained by checkReadable
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Validationf("transcript %s does not exist", path)
		}

		return nil, fmt.Errorf("%w: reading %s: %w", errs.ErrTranscript, path, err)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, fmt.Errorf("%w: %s is empty", errs.ErrTranscript, path)
	}

	metadata, err := loadMetadata(metadataPath(path))
	if err != nil {
		return nil, err
	}

	if metadata == nil {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		metadata = map[string]any{"title": TitleFromFilename(stem)}

		s.logger.DebugContext(ctx, "transcript has no metadata sidecar", "path", path)
	}

	return &protocol.TranscriptData{
		Path:       path,
		Transcript: text,
		Metadata:   metadata,
	}, nil
}

// checkReadable rejects paths that resolve outside every read directory.
func (s *Store) checkReadable(path string) error {
	target, err := resolvePath(path)
	if err != nil {
		return errs.Validationf("invalid transcript path %q: %v", path, err)
	}

	for _, dir := range s.readDirs {
		root, err := resolvePath(dir)
		if err != nil {
			continue
		}

		rel, err := filepath.Rel(root, target)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}

	return errs.Validationf("transcript %s is outside %s", path, strings.Join(s.readDirs, ", "))
}

// resolvePath makes path absolute and follows symlinks in it. A missing file
// is resolved through its parent directory.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	if parent, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(parent, filepath.Base(abs)), nil
	}

	return abs, nil
}

func loadMetadata(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path) // #nosec G304
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", errs.ErrTranscript, path, err)
	}

	var metadata map[string]any

	err = json.Unmarshal(raw, &metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", errs.ErrTranscript, path, err)
	}

	err = validateMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrTranscript, path, err)
	}

	return metadata, nil
}

func metadataPath(transcriptPath string) string {
	return strings.TrimSuffix(transcriptPath, filepath.Ext(transcriptPath)) + metadataExt
}

func setIfNotEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
