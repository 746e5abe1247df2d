package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/brykly/blogflow/pkg/errs"
	"github.com/brykly/blogflow/pkg/protocol"
)

// FallbackGenerator tries each generator in order until one succeeds.
type FallbackGenerator struct {
	logger     *slog.Logger
	generators []protocol.BlogGenerator
}

func NewFallbackGenerator(logger *slog.Logger, generators ...protocol.BlogGenerator) *FallbackGenerator {
	return &FallbackGenerator{logger: logger, generators: generators}
}

// Name lists the chain, e.g. "openai>openrouter".
func (g *FallbackGenerator) Name() string {
	names := make([]string, 0, len(g.generators))
	for _, gen := range g.generators {
		names = append(names, gen.Name())
	}

	return strings.Join(names, ">")
}

// GenerateBlogPost makes FallbackGenerator usable as a protocol.BlogGenerator.
func (g *FallbackGenerator) GenerateBlogPost(ctx context.Context, transcript, tone, style string) (string, error) {
	content, _, err := g.Generate(ctx, transcript, tone, style)

	return content, err
}

// Generate returns the first successful content and the name of the
// generator that produced it. Each failure is logged and the next generator is
// tried, whatever the error kind. A cancelled context stops the chain.
func (g *FallbackGenerator) Generate(ctx context.Context, transcript, tone, style string) (string, string, error) {
	if len(g.generators) == 0 {
		return "", "", errs.Configurationf("no blog generators configured")
	}

	failures := make([]ProviderFailure, 0, len(g.generators))

	for i, gen := range g.generators {
		content, err := gen.GenerateBlogPost(ctx, transcript, tone, style)
		if err == nil {
			if i > 0 {
				g.logger.InfoContext(ctx, "fallback generator succeeded", "provider", gen.Name())
			}

			return content, gen.Name(), nil
		}

		failures = append(failures, ProviderFailure{Provider: gen.Name(), Err: err})

		if ctx.Err() != nil {
			break
		}

		if i < len(g.generators)-1 {
			g.logger.WarnContext(ctx, "blog generation failed, falling back",
				"provider", gen.Name(),
				"next", g.generators[i+1].Name(),
				"error", err,
			)
		}
	}

	return "", "", &FallbackError{Failures: failures}
}
