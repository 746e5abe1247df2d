// Package output writes generated blog posts, their metadata and manages the
// scratch directory.
package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/errs"
	"github.com/brykly/blogflow/pkg/protocol"
	"github.com/brykly/blogflow/pkg/transcript"
	"gopkg.in/yaml.v3"
)

const metadataSuffix = ".meta.json"

// frontMatterKeys are the metadata entries copied into the post header, in order.
var frontMatterKeys = []string{"channel", "url", "video_id", "upload_date", "provider", "tone", "style"}

// BlogStore implements protocol.OutputStore with markdown files.
type BlogStore struct {
	outputDir string
	logger    *slog.Logger
	now       func() time.Time
}

func NewBlogStore(outputDir string, logger *slog.Logger) *BlogStore {
	return &BlogStore{
		outputDir: outputDir,
		logger:    logger.With("module", "output"),
		now:       time.Now,
	}
}

// SaveBlogPost writes content to <output>/<slug>.md behind a YAML front
// matter built from metadata and returns the path.
func (s *BlogStore) SaveBlogPost(ctx context.Context, content string, metadata map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if strings.TrimSpace(content) == "" {
		return "", errs.Validationf("blog post content is empty")
	}

	title, _ := metadata["title"].(string)
	if title == "" {
		title = firstHeading(content)
	}

	stem := transcript.Slug(title)
	if stem == "" {
		stem = "blog-post-" + s.now().UTC().Format("20060102-150405")
	}

	header, err := frontMatter(title, s.now().UTC(), metadata)
	if err != nil {
		return "", fmt.Errorf("%w: encoding front matter: %w", errs.ErrStorage, err)
	}

	err = os.MkdirAll(s.outputDir, 0o750)
	if err != nil {
		return "", fmt.Errorf("%w: creating %s: %w", errs.ErrStorage, s.outputDir, err)
	}

	path := filepath.Join(s.outputDir, stem+config.BlogPostExt)

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimSpace(content))
	buf.WriteString("\n")

	err = os.WriteFile(path, buf.Bytes(), 0o600)
	if err != nil {
		return "", fmt.Errorf("%w: writing %s: %w", errs.ErrStorage, path, err)
	}

	s.logger.InfoContext(ctx, "blog post saved", "path", path)

	return path, nil
}

func frontMatter(title string, date time.Time, metadata map[string]any) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value any) error {
		var node yaml.Node

		err := node.Encode(value)
		if err != nil {
			return err
		}

		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &node)

		return nil
	}

	if title != "" {
		if err := add("title", title); err != nil {
			return nil, err
		}
	}

	if err := add("date", date.Format(time.RFC3339)); err != nil {
		return nil, err
	}

	for _, key := range frontMatterKeys {
		value, ok := metadata[key]
		if !ok || value == nil || value == "" {
			continue
		}

		if err := add(key, value); err != nil {
			return nil, err
		}
	}

	return yaml.Marshal(doc)
}

// GenerateMetadata analyses content and writes the result next to blogPath
// as <slug>.meta.json.
func (s *BlogStore) GenerateMetadata(ctx context.Context, content, blogPath string) (*protocol.PostMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if blogPath == "" {
		return nil, errs.Validationf("blog path is empty")
	}

	meta := Analyze(content)
	meta.Path = strings.TrimSuffix(blogPath, filepath.Ext(blogPath)) + metadataSuffix

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encoding metadata: %w", errs.ErrStorage, err)
	}

	err = os.WriteFile(meta.Path, data, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: writing %s: %w", errs.ErrStorage, meta.Path, err)
	}

	s.logger.DebugContext(ctx, "blog metadata generated", "path", meta.Path, "words", meta.WordCount)

	return meta, nil
}
