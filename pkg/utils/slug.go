package utils

import (
	"strings"

	"github.com/gosimple/slug"
)

// NormalizeJobID derives a stable job identifier from a display name.
// The slug library handles all Unicode input, so catalog names in any
// language produce safe identifiers. Separators come out as
// underscores to match the identifiers used in schedule invocations.
func NormalizeJobID(name string) string {
	if name == "" {
		return ""
	}
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}

// NormalizeDatasetKey produces the canonical form of a dataset key used
// for catalog lookups.
func NormalizeDatasetKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
