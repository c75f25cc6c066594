package domain

import (
	"os"
	"strings"
)

// SourceKind identifies how a source locator should be fetched.
type SourceKind string

const (
	// SourceURL is a remote http(s) location.
	SourceURL SourceKind = "url"

	// SourceFile is a local filesystem path.
	SourceFile SourceKind = "file"
)

// Source is a single input locator for the pipeline.
// It is immutable once created.
type Source struct {
	// Locator is the URL or filesystem path as provided by the caller.
	Locator string

	// Kind selects the fetch strategy family (remote vs local).
	Kind SourceKind
}

// ParseSource classifies a raw locator string into a Source.
// Anything with an http or https scheme is a URL; everything else is
// treated as a filesystem path.
func ParseSource(locator string) Source {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return Source{Locator: locator, Kind: SourceURL}
	}
	return Source{Locator: locator, Kind: SourceFile}
}

// Exists reports whether a file source points at an existing path.
// URL sources always report true; reachability is the fetcher's concern.
func (s Source) Exists() bool {
	if s.Kind == SourceURL {
		return true
	}
	_, err := os.Stat(s.Locator)
	return err == nil
}
