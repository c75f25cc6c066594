// Package markdown cleans scraped markdown and plain text for indexing.
// It strips leftover markup and boilerplate, normalises unicode, and
// removes paragraphs that duplicate earlier ones in the same document.
package markdown

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/harvest-cli/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// DefaultDedupThreshold is the token-Jaccard similarity above which two
// paragraphs are considered near-duplicates. Conservative: only
// near-identical paragraphs are removed.
const DefaultDedupThreshold = 0.95

// Normaliser cleans fetched documents.
type Normaliser struct {
	dedupThreshold float64
}

// Option configures the normaliser.
type Option func(*Normaliser)

// WithDedupThreshold sets the near-duplicate similarity threshold.
// Values outside (0, 1] are ignored.
func WithDedupThreshold(threshold float64) Option {
	return func(n *Normaliser) {
		if threshold > 0 && threshold <= 1 {
			n.dedupThreshold = threshold
		}
	}
}

// New creates a normaliser with the given options.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{dedupThreshold: DefaultDedupThreshold}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Pre-compiled regular expressions for cleaning.
var (
	htmlTags      = regexp.MustCompile(`<[^>]+>`)
	navArtifacts  = regexp.MustCompile(`(?m)^(Skip to (main )?content|Jump to|Table of [Cc]ontents)\s*$`)
	cookieBanners = regexp.MustCompile(`(?im)^.*(we use cookies|accept all cookies|cookie policy).*$`)
	separators    = regexp.MustCompile(`[-=]{5,}`)
	emptyHeaders  = regexp.MustCompile(`(?m)^#{1,6}\s*$`)
	controlChars  = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	spaceRuns     = regexp.MustCompile(`[ \t]+`)
	spacedNewline = regexp.MustCompile(` *\n *`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// punctuation folds typographic characters to their ASCII forms.
var punctuation = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"–", "-",
	"…", "...",
	" ", " ",
)

// Clean normalises one document.
//
// Steps, in order: strip markup and boilerplate, fold unicode to a
// canonical form, split into paragraphs, drop paragraphs that exactly or
// nearly duplicate an earlier one, and rejoin the rest in original order.
// Documents with a failed fetch yield empty text; Clean never fails, and
// cleaning already-clean text returns it unchanged.
func (n *Normaliser) Clean(doc domain.Document) domain.CleanedDocument {
	cleaned := domain.CleanedDocument{SourceID: doc.SourceID}
	if doc.Failed() {
		return cleaned
	}

	text := doc.Content
	text = htmlTags.ReplaceAllString(text, "")
	text = navArtifacts.ReplaceAllString(text, "")
	text = cookieBanners.ReplaceAllString(text, "")
	text = separators.ReplaceAllString(text, "---")
	text = emptyHeaders.ReplaceAllString(text, "")

	text = norm.NFKC.String(text)
	text = punctuation.Replace(text)
	text = controlChars.ReplaceAllString(text, "")

	text = spaceRuns.ReplaceAllString(text, " ")
	text = spacedNewline.ReplaceAllString(text, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")

	paragraphs := splitParagraphs(text)
	kept := n.dedupParagraphs(paragraphs)

	if removed := len(paragraphs) - len(kept); removed > 0 {
		logger.Debug("dedup removed %d of %d paragraphs from %s", removed, len(paragraphs), doc.SourceID)
	}

	cleaned.Content = strings.Join(kept, "\n\n")
	return cleaned
}

// splitParagraphs breaks text on blank lines, trimming each segment and
// dropping empty ones.
func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// dedupParagraphs removes paragraphs that duplicate an earlier one,
// exactly or by token-Jaccard similarity above the threshold. Original
// order is preserved.
func (n *Normaliser) dedupParagraphs(paragraphs []string) []string {
	seen := make(map[string]struct{}, len(paragraphs))
	var keptTokens []map[string]struct{}
	kept := make([]string, 0, len(paragraphs))

	for _, p := range paragraphs {
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}

		tokens := tokenSet(key)
		dup := false
		for _, prev := range keptTokens {
			if jaccard(tokens, prev) >= n.dedupThreshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}

		seen[key] = struct{}{}
		keptTokens = append(keptTokens, tokens)
		kept = append(kept, p)
	}
	return kept
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// tokenSet returns the set of word tokens in s.
func tokenSet(s string) map[string]struct{} {
	words := wordRe.FindAllString(s, -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// jaccard computes |a∩b| / |a∪b|. Two empty sets are identical.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
