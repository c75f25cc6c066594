package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvest-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driving"
	"github.com/custodia-labs/harvest-cli/internal/core/services"
	"github.com/custodia-labs/harvest-cli/internal/postprocessors/chunker"
)

var (
	runURLs         []string
	runInput        string
	runQueryText    string
	runStore        string
	runRender       bool
	runChunkSize    int
	runChunkOverlap int
	runK            int
	runJSON         bool
	runTimeoutSecs  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: fetch, clean, index, query",
	Long: `Runs every stage in sequence for a batch of sources and answers
the query against the freshly built index.

Stages are strict barriers: cleaning starts only when every fetch has
finished, indexing only when every document is cleaned. A failing
source is skipped and reported; only a batch with no usable content
fails the run.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringArrayVar(&runURLs, "url", nil, "source URL or file path (repeatable)")
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "directory or file of documents to include")
	runCmd.Flags().StringVarP(&runQueryText, "query", "q", "", "query text (required)")
	runCmd.Flags().StringVarP(&runStore, "store", "s", "", "store directory (default: temporary)")
	runCmd.Flags().BoolVar(&runRender, "render", false, "render JavaScript with a headless browser")
	runCmd.Flags().IntVar(&runChunkSize, "chunk-size", 0, "chunk window size in runes")
	runCmd.Flags().IntVar(&runChunkOverlap, "chunk-overlap", -1, "overlap between consecutive chunks in runes")
	runCmd.Flags().IntVarP(&runK, "k", "k", 0, "number of results to return")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the report as JSON")
	runCmd.Flags().IntVar(&runTimeoutSecs, "timeout", 0, "per-source fetch timeout in seconds")
	_ = runCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	sources, err := collectSources(runURLs, runInput)
	if err != nil {
		return err
	}

	cfg := loadConfig()

	storeDir := runStore
	persist := storeDir != ""
	if !persist {
		tmp, err := os.MkdirTemp("", "harvest-run-*")
		if err != nil {
			return fmt.Errorf("creating temporary store: %w", err)
		}
		defer os.RemoveAll(tmp)
		storeDir = tmp
	}

	deps, err := newPipeline(cfg, storeDir, runRender, persist, fetchTimeout(runTimeoutSecs))
	if err != nil {
		return err
	}
	defer deps.Close()

	opts := driving.RunOptions{
		RenderJavaScript: runRender,
		ChunkSize: intSetting(cmd, "chunk-size", cfg, file.KeyChunkSize,
			runChunkSize, chunker.DefaultChunkSize),
		ChunkOverlap: overlapSetting(cmd, cfg, runChunkOverlap),
		K:            intSetting(cmd, "k", cfg, file.KeyQueryK, runK, services.DefaultK),
	}

	report, err := deps.pipeline.Run(cmd.Context(), sources, runQueryText, opts)
	if err != nil {
		printDiagnostics(cmd, report)
		if report != nil && report.Reason != "" {
			return fmt.Errorf("pipeline failed: %s", report.Reason)
		}
		return err
	}

	if runJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printDiagnostics(cmd, report)
	outputResultsTable(cmd, report.Result)
	if persist {
		cmd.Printf("store saved to %s\n", storeDir)
	}
	return nil
}
