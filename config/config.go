package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingCredentials is returned when a selected backend lacks the
// credentials it needs to be constructed.
var ErrMissingCredentials = errors.New("missing required credentials")

// Config is the complete runtime configuration. It is built once at process
// start and passed to each component's constructor.
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Appwrite    AppwriteConfig    `yaml:"appwrite"`
	Zyte        ZyteConfig        `yaml:"zyte"`
	Translation TranslationConfig `yaml:"translation"`
	Scraping    ScrapingConfig    `yaml:"scraping"`
	Sources     []SourceConfig    `yaml:"sources"`
	Log         LogConfig         `yaml:"log"`
	Server      ServerConfig      `yaml:"server"`
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Type string `yaml:"type"` // "sqlite" or "appwrite"
	DSN  string `yaml:"dsn"`  // SQLite database path
}

// AppwriteConfig holds Appwrite endpoint, credentials and resource ids.
type AppwriteConfig struct {
	Endpoint     string `yaml:"endpoint"`
	ProjectID    string `yaml:"project_id"`
	APIKey       string `yaml:"api_key"`
	DatabaseID   string `yaml:"database_id"`
	CollectionID string `yaml:"collection_id"`
	BucketID     string `yaml:"bucket_id"`
}

// ZyteConfig configures the remote rendering API.
type ZyteConfig struct {
	APIKey   string `yaml:"api_key"`
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// TranslationConfig selects and configures the translation backend.
type TranslationConfig struct {
	Service        string `yaml:"service"` // "google", "openai" or "azure"
	SourceLanguage string `yaml:"source_language"`
	TargetLanguage string `yaml:"target_language"`
	MaxChunkSize   int    `yaml:"max_chunk_size"`

	GoogleAPIKey   string `yaml:"google_api_key"`
	GoogleEndpoint string `yaml:"google_endpoint"`

	OpenAIAPIKey   string `yaml:"openai_api_key"`
	OpenAIModel    string `yaml:"openai_model"`
	OpenAIEndpoint string `yaml:"openai_endpoint"`

	AzureKey      string `yaml:"azure_key"`
	AzureEndpoint string `yaml:"azure_endpoint"`
	AzureRegion   string `yaml:"azure_region"`
}

// ScrapingConfig holds crawl limits and politeness settings.
type ScrapingConfig struct {
	MaxArticlesPerSource int           `yaml:"max_articles_per_source"`
	IntervalHours        int           `yaml:"interval_hours"`
	UserAgents           []string      `yaml:"user_agents"`
	MinDelay             time.Duration `yaml:"min_delay"`
	MaxDelay             time.Duration `yaml:"max_delay"`
	DirectTimeout        time.Duration `yaml:"direct_timeout"`
	RemoteTimeout        time.Duration `yaml:"remote_timeout"`
}

// SourceConfig describes one news source. Key selects the site adapter.
type SourceConfig struct {
	Name        string   `yaml:"name"`
	Key         string   `yaml:"key"`
	URL         string   `yaml:"url"`
	MaxArticles int      `yaml:"max_articles,omitempty"`
	UserAgents  []string `yaml:"user_agents,omitempty"`
}

// LogConfig controls log verbosity and an optional log file.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ServerConfig configures the HTTP invocation surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultUserAgents is the user-agent pool used when none is configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
}

// DefaultSources returns the built-in news sources.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{Name: "TechCrunch", Key: "techcrunch", URL: "https://techcrunch.com/"},
		{Name: "The Verge", Key: "theverge", URL: "https://www.theverge.com/"},
		{Name: "Ars Technica", Key: "arstechnica", URL: "https://arstechnica.com/"},
		{Name: "Wired", Key: "wired", URL: "https://www.wired.com/"},
	}
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Type: "sqlite",
			DSN:  "technews.db",
		},
		Appwrite: AppwriteConfig{
			Endpoint:     "https://cloud.appwrite.io/v1",
			DatabaseID:   "tech-news-db",
			CollectionID: "articles",
			BucketID:     "article-images",
		},
		Zyte: ZyteConfig{
			Endpoint: "https://api.zyte.com/v1/extract",
		},
		Translation: TranslationConfig{
			Service:        "google",
			SourceLanguage: "en",
			TargetLanguage: "am",
			MaxChunkSize:   5000,
			GoogleEndpoint: "https://translation.googleapis.com/language/translate/v2",
			OpenAIModel:    "gpt-4o-mini",
			OpenAIEndpoint: "https://api.openai.com/v1/chat/completions",
		},
		Scraping: ScrapingConfig{
			MaxArticlesPerSource: 10,
			IntervalHours:        6,
			UserAgents:           append([]string(nil), DefaultUserAgents...),
			MinDelay:             1 * time.Second,
			MaxDelay:             3 * time.Second,
			DirectTimeout:        30 * time.Second,
			RemoteTimeout:        60 * time.Second,
		},
		Sources: DefaultSources(),
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: "localhost:8080",
		},
	}
}

// ScrapeInterval returns the configured interval between scheduled runs.
func (c *Config) ScrapeInterval() time.Duration {
	return time.Duration(c.Scraping.IntervalHours) * time.Hour
}

// Validate checks the configuration for values that would make a component
// impossible to construct. Missing credentials are reported by
// ValidateStore and ValidateTranslation so callers can decide which
// components they need.
func (c *Config) Validate() error {
	if c.Scraping.MaxArticlesPerSource <= 0 {
		return fmt.Errorf("max_articles_per_source must be positive, got %d", c.Scraping.MaxArticlesPerSource)
	}
	if c.Scraping.MinDelay < 0 || c.Scraping.MaxDelay < c.Scraping.MinDelay {
		return fmt.Errorf("invalid delay range: min %s, max %s", c.Scraping.MinDelay, c.Scraping.MaxDelay)
	}
	if len(c.Sources) == 0 {
		return errors.New("no sources configured")
	}
	for i, s := range c.Sources {
		if s.Name == "" || s.Key == "" || s.URL == "" {
			return fmt.Errorf("source %d: name, key and url are required", i)
		}
	}
	return nil
}

// ValidateStore reports missing credentials for the selected store.
func (c *Config) ValidateStore() error {
	switch strings.ToLower(c.Store.Type) {
	case "", "sqlite":
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: sqlite store requires a dsn", ErrMissingCredentials)
		}
	case "appwrite":
		if c.Appwrite.ProjectID == "" || c.Appwrite.APIKey == "" {
			return fmt.Errorf("%w: APPWRITE_PROJECT_ID and APPWRITE_API_KEY must be set", ErrMissingCredentials)
		}
	default:
		return fmt.Errorf("unknown store type: %q (valid: sqlite, appwrite)", c.Store.Type)
	}
	return nil
}

// ValidateTranslation reports missing credentials for the selected
// translation backend.
func (c *Config) ValidateTranslation() error {
	switch strings.ToLower(c.Translation.Service) {
	case "google":
		if c.Translation.GoogleAPIKey == "" {
			return fmt.Errorf("%w: GOOGLE_TRANSLATE_API_KEY must be set", ErrMissingCredentials)
		}
	case "openai":
		if c.Translation.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY must be set", ErrMissingCredentials)
		}
	}
	return nil
}
