package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"dictation-pdf/internal/domain"
)

type Config struct {
	Audio      AudioConfig      `yaml:"audio"`
	STT        STTConfig        `yaml:"stt"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Ollama     OllamaConfig     `yaml:"ollama"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Matching   MatchingConfig   `yaml:"matching"`
	Templates  []TemplateConfig `yaml:"templates"`
	Output     OutputConfig     `yaml:"output"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Pushover   PushoverConfig   `yaml:"pushover"`
	Log        LogConfig        `yaml:"log"`
}

type AudioConfig struct {
	Source     string        `yaml:"source"`
	HTTPAddr   string        `yaml:"http_addr"`
	FileDir    string        `yaml:"file_dir"`
	SampleRate int           `yaml:"sample_rate"`
	Duration   time.Duration `yaml:"duration"`
	AuthToken  string        `yaml:"auth_token"`
}

type STTConfig struct {
	// openai, whisper, whisper-server or none. The local whisper provider
	// decodes WAV only; mp3, m4a and ogg need openai or whisper-server.
	Provider  string `yaml:"provider"`
	Language  string `yaml:"language"`
	ModelPath string `yaml:"model_path"`
	ServerURL string `yaml:"server_url"`
}

type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	EmbeddingModel string `yaml:"embedding_model"`
	BaseURL        string `yaml:"base_url"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type ExtractionConfig struct {
	Recognizer string `yaml:"recognizer"`
}

type MatchingConfig struct {
	Selection  string `yaml:"selection"`
	Embeddings string `yaml:"embeddings"`
}

type TemplateConfig struct {
	Key          string `yaml:"key"`
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	DocumentType string `yaml:"document_type"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Title   string `yaml:"title"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var (
	audioSources   = []string{"http", "file"}
	sttProviders   = []string{"openai", "whisper", "whisper-server", "none"}
	recognizers    = []string{"prose", "anthropic", "none"}
	selectionModes = []string{string(domain.SelectKeyword), string(domain.SelectEmbedding)}
	embedders      = []string{"openai", "ollama", "gemini"}
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file exists. With
// no credentials available, transcription is disabled.
func Default() *Config {
	cfg := Config{STT: STTConfig{Provider: "none"}}
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	if c.Audio.Source == "" {
		c.Audio.Source = "http"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.Duration == 0 {
		c.Audio.Duration = 10 * time.Second
	}
	if c.STT.Provider == "" {
		c.STT.Provider = "openai"
	}
	if c.STT.Language == "" {
		c.STT.Language = "en"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-20250514"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "text-embedding-004"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "all-minilm"
	}
	if c.Extraction.Recognizer == "" {
		c.Extraction.Recognizer = "prose"
	}
	if c.Matching.Selection == "" {
		c.Matching.Selection = string(domain.SelectKeyword)
	}
	if c.Matching.Embeddings == "" {
		c.Matching.Embeddings = "openai"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = os.TempDir()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks enumerated settings, the credentials the selected
// providers need and the template list.
func (c *Config) Validate() error {
	var errs []error

	oneOf := func(field, value string, allowed []string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s: %q is not one of %v", field, value, allowed))
		}
	}

	oneOf("audio.source", c.Audio.Source, audioSources)
	oneOf("stt.provider", c.STT.Provider, sttProviders)
	oneOf("extraction.recognizer", c.Extraction.Recognizer, recognizers)
	oneOf("matching.selection", c.Matching.Selection, selectionModes)
	oneOf("matching.embeddings", c.Matching.Embeddings, embedders)

	switch c.STT.Provider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("stt.provider openai requires openai.api_key"))
		}
	case "whisper":
		if c.STT.ModelPath == "" {
			errs = append(errs, errors.New("stt.provider whisper requires stt.model_path"))
		}
	case "whisper-server":
		if c.STT.ServerURL == "" {
			errs = append(errs, errors.New("stt.provider whisper-server requires stt.server_url"))
		}
	}

	if c.Extraction.Recognizer == "anthropic" && c.Anthropic.APIKey == "" {
		errs = append(errs, errors.New("extraction.recognizer anthropic requires anthropic.api_key"))
	}

	if c.Matching.Selection == string(domain.SelectEmbedding) {
		switch c.Matching.Embeddings {
		case "openai":
			if c.OpenAI.APIKey == "" {
				errs = append(errs, errors.New("matching.embeddings openai requires openai.api_key"))
			}
		case "gemini":
			if c.Gemini.APIKey == "" {
				errs = append(errs, errors.New("matching.embeddings gemini requires gemini.api_key"))
			}
		}
	}

	if c.Pushover.Enabled && (c.Pushover.Token == "" || c.Pushover.UserKey == "") {
		errs = append(errs, errors.New("pushover.enabled requires pushover.token and pushover.user_key"))
	}

	if _, err := c.Catalog(); err != nil {
		errs = append(errs, fmt.Errorf("templates: %w", err))
	}

	return errors.Join(errs...)
}

// Catalog builds the template catalog, falling back to the built-in
// templates when none are configured.
func (c *Config) Catalog() (*domain.Catalog, error) {
	if len(c.Templates) == 0 {
		return domain.DefaultCatalog(), nil
	}

	templates := make([]domain.Template, 0, len(c.Templates))
	for _, t := range c.Templates {
		docType, err := domain.ParseDocumentType(t.DocumentType)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", t.Key, err)
		}
		templates = append(templates, domain.Template{
			Key:          t.Key,
			Title:        t.Title,
			Description:  t.Description,
			DocumentType: docType,
		})
	}
	return domain.NewCatalog(templates)
}
