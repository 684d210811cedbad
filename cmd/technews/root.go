package main

import (
	"fmt"

	"github.com/pevans/technews/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	envFile  string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "technews",
	Short: "Tech news scraper and translator",
	Long: `technews scrapes tech news sites, translates the articles, and stores
them in a document store.

Example usage:
  technews crawl                       # Scrape, translate and save all sources
  technews crawl --no-translate -n 3   # Three articles per source, untranslated
  technews translate <article-id>      # Translate one stored article
  technews serve                       # Start the HTTP API`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.technews/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// initConfig loads the configuration once for every command.
func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile, envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
