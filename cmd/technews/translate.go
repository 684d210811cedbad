package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate <article-id>",
	Short: "Translate one stored article",
	Long: `Translate a stored article and write the translation back to the store
with status "translated". Prints the function result as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	status, result := a.functions.Translate(cmd.Context(), args[0])

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("translate failed with status %d", status)
	}
	return nil
}
