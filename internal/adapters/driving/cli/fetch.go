package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvest-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/fetchers"
)

var (
	fetchURLs        []string
	fetchOutput      string
	fetchRender      bool
	fetchTimeoutSecs int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch sources and print or save their markdown",
	Long: `Fetches each source and converts the raw HTML to markdown.

With --output the documents are written one file per source; otherwise
the markdown is printed to stdout. A failing source is reported and
skipped, it never aborts the batch.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringArrayVar(&fetchURLs, "url", nil, "source URL or file path (repeatable)")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "directory to write fetched documents to")
	fetchCmd.Flags().BoolVar(&fetchRender, "render", false, "render JavaScript with a headless browser")
	fetchCmd.Flags().IntVar(&fetchTimeoutSecs, "timeout", 0, "per-source timeout in seconds")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	sources, err := collectSources(fetchURLs, "")
	if err != nil {
		return err
	}

	cfg := loadConfig()
	concurrency := fetchers.DefaultConcurrency
	if cfg != nil {
		if v := cfg.GetInt(file.KeyFetchConcurrency); v > 0 {
			concurrency = v
		}
	}

	batch := newBatchFetcher(fetchRender)
	docs, err := batch.Fetch(cmd.Context(), sources, driven.FetchOptions{
		RenderJavaScript: fetchRender,
		Timeout:          fetchTimeout(fetchTimeoutSecs),
		Concurrency:      concurrency,
	})
	if err != nil {
		return fmt.Errorf("fetch aborted: %w", err)
	}

	var failed int
	for _, doc := range docs {
		if doc.Failed() {
			failed++
			cmd.PrintErrf("failed: %s: %s\n", doc.SourceID, doc.Err)
			continue
		}

		if fetchOutput == "" {
			cmd.Println(doc.Content)
			continue
		}

		if err := os.MkdirAll(fetchOutput, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		path := filepath.Join(fetchOutput, documentFileName(doc))
		if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		cmd.Printf("wrote %s\n", path)
	}

	if failed == len(docs) {
		return fmt.Errorf("all %d sources failed", failed)
	}
	if failed > 0 {
		cmd.Printf("%d of %d sources failed\n", failed, len(docs))
	}
	return nil
}

// documentFileName derives a filesystem-safe markdown name for a document.
func documentFileName(doc domain.Document) string {
	name := doc.URI

	if u, err := url.Parse(doc.URI); err == nil && u.Host != "" {
		name = u.Host + u.Path
	}

	name = strings.Trim(name, "/")
	replacer := strings.NewReplacer("/", "_", ":", "_", "?", "_", "&", "_", "#", "_", " ", "_")
	name = replacer.Replace(name)
	if name == "" {
		name = "document"
	}
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return name
}
