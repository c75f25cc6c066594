// Package cli implements the harvest command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvest-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/harvest-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/fetchers"
	filefetcher "github.com/custodia-labs/harvest-cli/internal/fetchers/file"
	"github.com/custodia-labs/harvest-cli/internal/fetchers/rendered"
	"github.com/custodia-labs/harvest-cli/internal/fetchers/static"
	"github.com/custodia-labs/harvest-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Fetch, clean, index and query web content",
	Long: `harvest turns web pages and local files into a searchable index.

It fetches sources, cleans the content into plain markdown, chunks and
embeds the text, and answers similarity queries against the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// loadConfig opens the TOML config store. A missing or empty config is
// not an error; defaults apply.
func loadConfig() driven.ConfigStore {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		logger.Warn("config unavailable: %v", err)
		return nil
	}
	return cfg
}

// intSetting resolves an integer: an explicitly set flag wins, then the
// config file, then the fallback.
func intSetting(cmd *cobra.Command, flag string, cfg driven.ConfigStore, key string, flagVal, fallback int) int {
	if cmd.Flags().Changed(flag) {
		return flagVal
	}
	if cfg != nil {
		if v := cfg.GetInt(key); v > 0 {
			return v
		}
	}
	if flagVal > 0 {
		return flagVal
	}
	return fallback
}

// floatSetting resolves a float the same way as intSetting.
func floatSetting(cmd *cobra.Command, flag string, cfg driven.ConfigStore, key string, flagVal, fallback float64) float64 {
	if cmd.Flags().Changed(flag) {
		return flagVal
	}
	if cfg != nil {
		if v := cfg.GetFloat(key); v > 0 {
			return v
		}
	}
	if flagVal > 0 {
		return flagVal
	}
	return fallback
}

// pingTimeout is the maximum time to wait for embedding service
// connectivity validation.
const pingTimeout = 5 * time.Second

// embedderConfig assembles the OpenAI client configuration from the
// environment and config file. The environment wins for the base URL.
func embedderConfig(cfg driven.ConfigStore) openai.Config {
	c := openai.Config{
		APIKey: os.Getenv("OPENAI_API_KEY"),
	}
	if cfg != nil {
		c.Model = cfg.GetString(file.KeyEmbeddingModel)
		c.BaseURL = cfg.GetString(file.KeyEmbeddingBaseURL)
		c.RateLimit = openai.RateLimitConfig{
			RequestsPerSecond: cfg.GetFloat(file.KeyEmbedRate),
			BurstSize:         cfg.GetInt(file.KeyEmbedBurst),
		}
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	return c
}

// newEmbedder builds the OpenAI embedding service and validates
// connectivity. A missing API key or an unreachable endpoint fails
// here, before any fetching.
func newEmbedder(cfg driven.ConfigStore) (*openai.EmbeddingService, error) {
	svc, err := openai.NewEmbeddingService(embedderConfig(cfg))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("embedding service unreachable: %w", err)
	}
	return svc, nil
}

// newBatchFetcher selects the fetch strategies. Rendered mode swaps the
// static HTTP fetch for a headless browser; local files work either way.
func newBatchFetcher(render bool) *fetchers.Batch {
	if render {
		return fetchers.NewBatch(rendered.New(), filefetcher.New())
	}
	return fetchers.NewBatch(static.New(nil), filefetcher.New())
}

// collectSources merges --url flags and an optional --input path into
// one source batch, preserving the given order.
func collectSources(urls []string, input string) ([]domain.Source, error) {
	var sources []domain.Source
	for _, u := range urls {
		sources = append(sources, domain.ParseSource(u))
	}

	if input != "" {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("input path: %w", err)
		}
		if info.IsDir() {
			found, err := filefetcher.ListTextFiles(input)
			if err != nil {
				return nil, fmt.Errorf("listing input files: %w", err)
			}
			sources = append(sources, found...)
		} else {
			sources = append(sources, domain.Source{Locator: input, Kind: domain.SourceFile})
		}
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources given: %w", domain.ErrInvalidInput)
	}
	return sources, nil
}

// fetchTimeout converts the --timeout seconds flag.
func fetchTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
