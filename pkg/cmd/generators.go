package cmd

import (
	"log/slog"

	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/errs"
	"github.com/brykly/blogflow/pkg/protocol"
	"github.com/brykly/blogflow/pkg/providers/llm"
)

// NewGenerators builds the LLM clients in cfg.Blog.Providers order. Providers
// without credentials are skipped with a warning; having none left is an error.
func NewGenerators(cfg *config.Config, logger *slog.Logger, opts ...llm.Option) ([]protocol.BlogGenerator, error) {
	generators := make([]protocol.BlogGenerator, 0, len(cfg.Blog.Providers))

	for _, name := range cfg.Blog.Providers {
		llmConfig, err := cfg.LLM(name)
		if err != nil {
			return nil, err
		}

		client, err := llm.New(name, llmConfig, logger, opts...)
		if err != nil {
			logger.Warn("Skipping LLM provider", "provider", name, "error", err)

			continue
		}

		generators = append(generators, client)
	}

	if len(generators) == 0 {
		return nil, errs.Configurationf("no LLM provider has an API key; set OPENAI_API_KEY or OPENROUTER_API_KEY")
	}

	return generators, nil
}
