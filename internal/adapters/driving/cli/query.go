package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvest-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/services"
)

var (
	queryStore string
	queryK     int
	queryJSON  bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query a persisted index",
	Long: `Embeds the query text and returns the most similar chunks from a
store built with the index command. The stored chunks are never
re-embedded; only the query text costs an embedding call.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryStore, "store", "s", "", "store directory (required)")
	queryCmd.Flags().IntVarP(&queryK, "k", "k", 0, "number of results to return")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	_ = queryCmd.MarkFlagRequired("store")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	embedder, index, chunks, err := openStore(cfg, queryStore)
	if err != nil {
		return err
	}
	defer func() {
		_ = embedder.Close()
		_ = index.Close()
		_ = chunks.Close()
	}()

	k := intSetting(cmd, "k", cfg, file.KeyQueryK, queryK, services.DefaultK)

	qs := services.NewQueryService(embedder, index, chunks)
	result, err := qs.Query(cmd.Context(), args[0], k)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputResultsJSON(cmd, result)
	}
	outputResultsTable(cmd, result)
	return nil
}

func outputResultsJSON(cmd *cobra.Command, result domain.QueryResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultsTable(cmd *cobra.Command, result domain.QueryResult) {
	if len(result.Results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range result.Results {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, r.Chunk.SourceID, r.Score)
		cmd.Printf("      %s\n", snippet(r.Chunk.Content, 160))
		cmd.Println()
	}
}

// snippet shortens content to at most n runes for display.
func snippet(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "..."
}
