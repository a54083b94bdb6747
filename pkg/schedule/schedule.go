package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxEntries caps the active schedule; merges truncate beyond it,
// preserving first-appearance order.
const MaxEntries = 20

// ErrInvalidCron reports a schedule entry whose cron expression fails
// the 5-field validation. A merge that hits it fails atomically.
var ErrInvalidCron = errors.New("invalid cron expression")

var cronFieldRe = regexp.MustCompile(`^[0-9*/,\-]+$`)

// Entry is one desired unattended-execution trigger. The cron
// expression is the identity used for deduplication.
type Entry struct {
	Cron        string `json:"cron"`
	Description string `json:"description"`
	// Enabled defaults to true when absent from the document.
	Enabled *bool `json:"enabled,omitempty"`
}

// IsEnabled reports whether the entry should be rendered into the
// scheduler file.
func (e Entry) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// normalize trims the entry and materializes the enabled default.
func normalize(e Entry) Entry {
	e.Cron = strings.TrimSpace(e.Cron)
	e.Description = strings.TrimSpace(e.Description)
	if e.Enabled == nil {
		enabled := true
		e.Enabled = &enabled
	}
	return e
}

// Validate checks a cron expression against the 5-field grammar the
// external scheduler accepts: five whitespace-separated fields, each
// composed of digits, '*', '/', ',' and '-'. Empty expressions are
// allowed here and skipped during merge.
func Validate(expr string) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return fmt.Errorf("%w: %q has %d fields, want 5", ErrInvalidCron, expr, len(fields))
	}
	for _, f := range fields {
		if !cronFieldRe.MatchString(f) {
			return fmt.Errorf("%w: %q has malformed field %q", ErrInvalidCron, expr, f)
		}
	}
	return nil
}

// Merge combines existing and incoming entries into a bounded active
// set. Entries are normalized, validated, walked in order (existing
// first), deduplicated by exact cron expression with the first
// occurrence winning, and truncated to MaxEntries. Entries with an
// empty cron expression are dropped. Merging is idempotent: merging the
// same incoming set again yields an identical result.
func Merge(existing, incoming []Entry) ([]Entry, error) {
	all := make([]Entry, 0, len(existing)+len(incoming))
	for _, e := range append(append([]Entry{}, existing...), incoming...) {
		e = normalize(e)
		if err := Validate(e.Cron); err != nil {
			return nil, err
		}
		all = append(all, e)
	}

	seen := make(map[string]bool, len(all))
	merged := make([]Entry, 0, len(all))
	for _, e := range all {
		if e.Cron == "" || seen[e.Cron] {
			continue
		}
		seen[e.Cron] = true
		merged = append(merged, e)
	}

	if len(merged) > MaxEntries {
		merged = merged[:MaxEntries]
	}
	return merged, nil
}
