package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pevans/technews/article"
	"github.com/pevans/technews/config"
	"github.com/pevans/technews/pipeline"
	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Scrape all sources, translate and save the articles",
	Long: `Run the pipeline once: scrape every configured source, translate each
article, save it to the store, and write the articles to a JSON file.

Examples:
  technews crawl
  technews crawl --source techcrunch --max 5
  technews crawl --no-save --output articles.json`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().IntP("max", "n", 0, "articles per source (default from config)")
	crawlCmd.Flags().StringSlice("source", nil, "only scrape sources with this key or name (repeatable)")
	crawlCmd.Flags().Bool("no-translate", false, "skip translation")
	crawlCmd.Flags().Bool("no-save", false, "skip saving to the store")
	crawlCmd.Flags().Bool("use-zyte", false, "fetch through the Zyte API when a key is set")
	crawlCmd.Flags().StringP("output", "o", filepath.Join("output", "articles.json"), "JSON output file (empty to skip)")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	maxArticles, _ := cmd.Flags().GetInt("max")
	only, _ := cmd.Flags().GetStringSlice("source")
	noTranslate, _ := cmd.Flags().GetBool("no-translate")
	noSave, _ := cmd.Flags().GetBool("no-save")
	useZyte, _ := cmd.Flags().GetBool("use-zyte")
	output, _ := cmd.Flags().GetString("output")

	if maxArticles > 0 {
		cfg.Scraping.MaxArticlesPerSource = maxArticles
	}
	if useZyte {
		cfg.Zyte.Enabled = true
	}
	if len(only) > 0 {
		cfg.Sources = filterSources(cfg.Sources, only)
		if len(cfg.Sources) == 0 {
			return fmt.Errorf("no configured source matches %s", strings.Join(only, ", "))
		}
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.processor.Process(cmd.Context(), pipeline.Options{
		MaxArticlesPerSource: cfg.Scraping.MaxArticlesPerSource,
		Translate:            !noTranslate && a.translator != nil,
		Save:                 !noSave,
	})

	if output != "" && len(result.Articles) > 0 {
		if err := writeArticles(output, result.Articles); err != nil {
			return err
		}
	}

	printSummary(cmd, result, output)
	return nil
}

// filterSources keeps the sources whose key or name matches one of names,
// case-insensitively.
func filterSources(sources []config.SourceConfig, names []string) []config.SourceConfig {
	var kept []config.SourceConfig
	for _, src := range sources {
		for _, name := range names {
			if strings.EqualFold(src.Key, name) || strings.EqualFold(src.Name, name) {
				kept = append(kept, src)
				break
			}
		}
	}
	return kept
}

// writeArticles writes articles as indented JSON, creating parent
// directories as needed.
func writeArticles(path string, articles []*article.Article) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode articles: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func printSummary(cmd *cobra.Command, result *pipeline.Result, output string) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%-20s %8s  %s\n", "SOURCE", "SCRAPED", "ERROR")
	for _, sr := range result.SourceResults {
		fmt.Fprintf(out, "%-20s %8d  %s\n", sr.Source, sr.Scraped, sr.Error)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Scraped:    %d\n", result.Scraped)
	fmt.Fprintf(out, "Translated: %d\n", result.Translated)
	fmt.Fprintf(out, "Saved:      %d\n", result.Saved)
	if result.SaveFailed > 0 {
		fmt.Fprintf(out, "Failed:     %d\n", result.SaveFailed)
	}
	if output != "" && len(result.Articles) > 0 {
		fmt.Fprintf(out, "✓ Wrote %d articles to %s\n", len(result.Articles), output)
	}
}
