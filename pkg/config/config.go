// Package config loads and validates the pipeline configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brykly/blogflow/pkg/errs"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOutputDir = "output"
	DefaultTempDir   = "temp"

	TranscriptExt = ".txt"
	BlogPostExt   = ".md"

	DefaultTone  = "professional"
	DefaultStyle = "comprehensive"

	DefaultOpenAIModel     = "gpt-4-turbo-preview"
	DefaultOpenRouterModel = "anthropic/claude-3-opus"
	DefaultTemperature     = 0.7
	DefaultMaxTokens       = 2000

	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

// Config is the whole pipeline configuration. A single value is built per
// process and passed explicitly to every component that needs it.
type Config struct {
	Paths      PathsConfig    `yaml:"paths"`
	OpenAI     LLMConfig      `yaml:"openai"`
	OpenRouter LLMConfig      `yaml:"openrouter"`
	YouTube    YouTubeConfig  `yaml:"youtube"`
	Blog       BlogConfig     `yaml:"blog"`
	Logging    LoggingConfig  `yaml:"logging"`
	Events     EventsConfig   `yaml:"events"`
	Tracing    TracingConfig  `yaml:"tracing"`
	Storage    StorageConfig  `yaml:"storage"`
	Schedule   ScheduleConfig `yaml:"schedule"`
	Server     ServerConfig   `yaml:"server"`
}

type PathsConfig struct {
	OutputDir string `yaml:"output_dir" validate:"required"`
	TempDir   string `yaml:"temp_dir"   validate:"required"`
}

// LLMConfig configures one OpenAI-compatible chat completions provider.
type LLMConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"    validate:"required,url"`
	Model       string        `yaml:"model"       validate:"required"`
	Temperature float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `yaml:"max_tokens"  validate:"gt=0"`
	Timeout     time.Duration `yaml:"timeout"     validate:"gt=0"`
}

type YouTubeConfig struct {
	OEmbedURL       string        `yaml:"oembed_url"       validate:"required,url"`
	// CaptionsURL serves WebVTT captions; empty disables caption download.
	CaptionsURL     string        `yaml:"captions_url"     validate:"omitempty,url"`
	CaptionLanguage string        `yaml:"caption_language" validate:"required"`
	Timeout         time.Duration `yaml:"timeout"          validate:"gt=0"`
}

type BlogConfig struct {
	Tone  string `yaml:"tone"  validate:"required"`
	Style string `yaml:"style" validate:"required"`
	// Providers is the order in which LLM providers are tried.
	Providers []string `yaml:"providers" validate:"required,min=1,dive,oneof=openai openrouter"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"  validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

type EventsConfig struct {
	Bus     string   `yaml:"bus"     validate:"omitempty,oneof=none gochannel kafka"`
	Brokers []string `yaml:"brokers" validate:"required_if=Bus kafka"`
	Topic   string   `yaml:"topic"   validate:"required"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name" validate:"required_if=Enabled true"`
}

type StorageConfig struct {
	// DatabaseURL selects the run store: a directory (optionally file://),
	// postgres://..., or redis://...
	DatabaseURL string `yaml:"database_url" validate:"required"`
}

type ScheduleConfig struct {
	Cron     string `yaml:"cron"`
	InboxDir string `yaml:"inbox_dir" validate:"required_with=Cron"`
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			OutputDir: DefaultOutputDir,
			TempDir:   DefaultTempDir,
		},
		OpenAI: LLMConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       DefaultOpenAIModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			Timeout:     60 * time.Second,
		},
		OpenRouter: LLMConfig{
			BaseURL:     "https://openrouter.ai/api/v1",
			Model:       DefaultOpenRouterModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			Timeout:     60 * time.Second,
		},
		YouTube: YouTubeConfig{
			OEmbedURL:       "https://www.youtube.com/oembed",
			CaptionsURL:     "https://www.youtube.com/api/timedtext",
			CaptionLanguage: "en",
			Timeout:         15 * time.Second,
		},
		Blog: BlogConfig{
			Tone:      DefaultTone,
			Style:     DefaultStyle,
			Providers: []string{ProviderOpenAI, ProviderOpenRouter},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Events:  EventsConfig{Bus: "none", Topic: "blogflow.events"},
		Tracing: TracingConfig{ServiceName: "blogflow"},
		Storage: StorageConfig{DatabaseURL: "file://" + DefaultOutputDir + "/runs"},
		Server:  ServerConfig{Port: 9091},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
		if err != nil {
			return nil, errs.Configurationf("failed to read %s: %v", path, err)
		}

		err = yaml.Unmarshal(data, cfg)
		if err != nil {
			return nil, errs.Configurationf("failed to parse %s: %v", path, err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := map[string]*string{
		"OPENAI_API_KEY":        &c.OpenAI.APIKey,
		"OPENAI_MODEL":          &c.OpenAI.Model,
		"OPENROUTER_API_KEY":    &c.OpenRouter.APIKey,
		"OPENROUTER_MODEL":      &c.OpenRouter.Model,
		"BLOGFLOW_OUTPUT_DIR":   &c.Paths.OutputDir,
		"BLOGFLOW_TEMP_DIR":     &c.Paths.TempDir,
		"BLOGFLOW_DATABASE_URL": &c.Storage.DatabaseURL,
	}

	for key, target := range overrides {
		if value, ok := lookup(key); ok && value != "" {
			*target = value
		}
	}

	if brokers, ok := lookup("KAFKA_BROKERS"); ok && brokers != "" {
		c.Events.Brokers = strings.Split(brokers, ",")
	}
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}

		return errs.Configurationf("invalid fields: %s", strings.Join(fields, ", "))
	}

	return errs.Configurationf("%v", err)
}

// LLM returns the provider configuration for name.
func (c *Config) LLM(name string) (LLMConfig, error) {
	switch name {
	case ProviderOpenAI:
		return c.OpenAI, nil
	case ProviderOpenRouter:
		return c.OpenRouter, nil
	default:
		return LLMConfig{}, errs.Configurationf("unknown LLM provider %q", name)
	}
}
