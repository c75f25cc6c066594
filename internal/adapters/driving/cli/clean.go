package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvest-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/normalisers/markdown"
)

var (
	cleanInput     string
	cleanOutput    string
	cleanThreshold float64
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean a fetched document into normalised text",
	Long: `Strips markup remnants and boilerplate, normalises unicode and
whitespace, and removes near-duplicate paragraphs. Cleaning is
idempotent: running it twice gives the same output as running it once.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanInput, "input", "i", "", "file to clean (required)")
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "file to write cleaned text to (default stdout)")
	cleanCmd.Flags().Float64Var(&cleanThreshold, "dedup-threshold", 0,
		"paragraph similarity above which duplicates are dropped (0..1]")
	_ = cleanCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(cleanInput)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	cfg := loadConfig()
	threshold := floatSetting(cmd, "dedup-threshold", cfg, file.KeyDedupThreshold,
		cleanThreshold, markdown.DefaultDedupThreshold)

	normaliser := markdown.New(markdown.WithDedupThreshold(threshold))
	cleaned := normaliser.Clean(domain.Document{
		SourceID: cleanInput,
		URI:      cleanInput,
		Content:  string(raw),
		Status:   domain.FetchOK,
	})

	if cleanOutput == "" {
		cmd.Println(cleaned.Content)
		return nil
	}

	if err := os.WriteFile(cleanOutput, []byte(cleaned.Content), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	cmd.Printf("wrote %s\n", cleanOutput)
	return nil
}
