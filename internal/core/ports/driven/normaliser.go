package driven

import "github.com/custodia-labs/harvest-cli/internal/core/domain"

// Normaliser turns a raw fetched document into cleaned text.
// Cleaning strips markup and boilerplate, normalises unicode, and removes
// duplicated paragraphs. It is idempotent: cleaning already-clean text
// returns it unchanged.
type Normaliser interface {
	// Clean normalises one document. Documents with a failed fetch status
	// produce an empty cleaned document; Clean never fails.
	Clean(doc domain.Document) domain.CleanedDocument
}
