package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvest-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driving"
	"github.com/custodia-labs/harvest-cli/internal/postprocessors/chunker"
)

var (
	indexURLs         []string
	indexInput        string
	indexStore        string
	indexRender       bool
	indexChunkSize    int
	indexChunkOverlap int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build a persistent index from sources",
	Long: `Fetches, cleans, chunks and embeds the given sources and writes
the resulting index to the store directory. The store can then be
queried repeatedly without re-fetching or re-embedding.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringArrayVar(&indexURLs, "url", nil, "source URL or file path (repeatable)")
	indexCmd.Flags().StringVarP(&indexInput, "input", "i", "", "directory or file of documents to index")
	indexCmd.Flags().StringVarP(&indexStore, "store", "s", "", "store directory (required)")
	indexCmd.Flags().BoolVar(&indexRender, "render", false, "render JavaScript with a headless browser")
	indexCmd.Flags().IntVar(&indexChunkSize, "chunk-size", 0, "chunk window size in runes")
	indexCmd.Flags().IntVar(&indexChunkOverlap, "chunk-overlap", -1, "overlap between consecutive chunks in runes")
	_ = indexCmd.MarkFlagRequired("store")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	sources, err := collectSources(indexURLs, indexInput)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	deps, err := newPipeline(cfg, indexStore, indexRender, true, 0)
	if err != nil {
		return err
	}
	defer deps.Close()

	opts := driving.RunOptions{
		RenderJavaScript: indexRender,
		ChunkSize: intSetting(cmd, "chunk-size", cfg, file.KeyChunkSize,
			indexChunkSize, chunker.DefaultChunkSize),
		ChunkOverlap: overlapSetting(cmd, cfg, indexChunkOverlap),
	}

	report, err := deps.pipeline.Index(cmd.Context(), sources, opts)
	if err != nil {
		printDiagnostics(cmd, report)
		return fmt.Errorf("indexing failed: %s", report.Reason)
	}

	printDiagnostics(cmd, report)
	cmd.Printf("indexed %d chunks into %s\n", report.Diagnostics.ChunksIndexed, indexStore)
	return nil
}

// overlapSetting resolves the chunk overlap, where zero is a valid
// explicit value.
func overlapSetting(cmd *cobra.Command, cfg driven.ConfigStore, flagVal int) int {
	if cmd.Flags().Changed("chunk-overlap") {
		return flagVal
	}
	if cfg != nil {
		if v := cfg.GetInt(file.KeyChunkOverlap); v > 0 {
			return v
		}
	}
	return chunker.DefaultChunkOverlap
}

// printDiagnostics reports per-source and per-chunk failures.
func printDiagnostics(cmd *cobra.Command, report *driving.RunReport) {
	if report == nil {
		return
	}
	d := report.Diagnostics
	for _, src := range d.FailedSources {
		cmd.PrintErrf("failed source: %s\n", src)
	}
	if d.ChunksSkipped > 0 {
		cmd.PrintErrf("%d chunks skipped due to embedding failures\n", d.ChunksSkipped)
	}
}
