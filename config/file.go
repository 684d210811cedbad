package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath returns ~/.technews/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".technews", "config.yaml"), nil
}

// LoadConfigFile reads the YAML file at path over the defaults. Returns the
// defaults unchanged if the file doesn't exist (not an error). Returns error
// if the file exists but cannot be parsed.
func LoadConfigFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load builds the configuration with precedence:
// 1. Process environment variables (highest priority)
// 2. Variables from the dotenv file
// 3. Configuration file
// 4. Default values (lowest priority)
//
// An empty configPath means DefaultConfigPath; an empty envFile skips the
// dotenv step. Missing files are not errors.
func Load(configPath, envFile string) (*Config, error) {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	cfg, err := LoadConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	env := map[string]string{}
	if envFile != "" {
		if _, statErr := os.Stat(envFile); statErr == nil {
			env, err = godotenv.Read(envFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read env file: %w", err)
			}
		}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return env[key]
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides configuration values from environment variables
// resolved through getenv. Empty values leave the current setting alone.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString("TECHNEWS_STORE", &c.Store.Type)
	setString("TECHNEWS_SQLITE_DSN", &c.Store.DSN)

	setString("APPWRITE_ENDPOINT", &c.Appwrite.Endpoint)
	setString("APPWRITE_PROJECT_ID", &c.Appwrite.ProjectID)
	setString("APPWRITE_API_KEY", &c.Appwrite.APIKey)
	setString("APPWRITE_DATABASE_ID", &c.Appwrite.DatabaseID)
	setString("APPWRITE_ARTICLES_COLLECTION_ID", &c.Appwrite.CollectionID)
	setString("APPWRITE_STORAGE_BUCKET_ID", &c.Appwrite.BucketID)

	setString("ZYTE_API_KEY", &c.Zyte.APIKey)
	if v := getenv("USE_ZYTE"); v != "" {
		c.Zyte.Enabled = strings.EqualFold(v, "true")
	}

	setString("TRANSLATION_SERVICE", &c.Translation.Service)
	setString("GOOGLE_TRANSLATE_API_KEY", &c.Translation.GoogleAPIKey)
	setString("OPENAI_API_KEY", &c.Translation.OpenAIAPIKey)
	setString("OPENAI_MODEL", &c.Translation.OpenAIModel)
	setString("AZURE_TRANSLATOR_KEY", &c.Translation.AzureKey)
	setString("AZURE_TRANSLATOR_ENDPOINT", &c.Translation.AzureEndpoint)
	setString("AZURE_TRANSLATOR_REGION", &c.Translation.AzureRegion)

	if v := getenv("MAX_ARTICLES_PER_SOURCE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_ARTICLES_PER_SOURCE: %w", err)
		}
		c.Scraping.MaxArticlesPerSource = n
	}
	if v := getenv("SCRAPE_INTERVAL_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCRAPE_INTERVAL_HOURS: %w", err)
		}
		c.Scraping.IntervalHours = n
	}

	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FILE", &c.Log.File)

	return nil
}
