package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/brykly/blogflow/pkg/cmd"
	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/log"
	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const redacted = "********"

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check the configuration and print the effective values",
		Action: func(_ context.Context, command *cli.Command) error {
			cfg, err := loadConfig(command)
			if err != nil {
				return err
			}

			_, err = cmd.NewGenerators(cfg, log.Discard())
			if err != nil {
				fmt.Fprintln(os.Stderr, "Warning:", err)
			}

			return printConfig(os.Stdout, cfg)
		},
	}
}

// printConfig writes cfg as YAML with API keys masked.
func printConfig(w io.Writer, cfg *config.Config) error {
	masked := *cfg
	masked.OpenAI.APIKey = mask(cfg.OpenAI.APIKey)
	masked.OpenRouter.APIKey = mask(cfg.OpenRouter.APIKey)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	err := encoder.Encode(&masked)
	if err != nil {
		return err
	}

	return encoder.Close()
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}

	return redacted
}
