package schedule

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Header is the fixed first line of every rendered scheduler file.
const Header = "# marketpulse scheduled jobs - generated file, do not edit"

// noneEnabledLine is emitted when the active set contains no enabled
// entries, so an operator reading the file knows it is intentional.
const noneEnabledLine = "# no schedule entries enabled"

// Render produces the scheduler file contents. Each enabled entry
// becomes one line of the form
//
//	<cron> <command> >> <logPath> 2>&1
//
// Disabled entries stay in configuration but are never emitted.
func Render(entries []Entry, command, logPath string) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')

	emitted := 0
	for _, e := range entries {
		if !e.IsEnabled() || strings.TrimSpace(e.Cron) == "" {
			continue
		}
		fmt.Fprintf(&b, "%s %s >> %s 2>&1\n", strings.TrimSpace(e.Cron), command, logPath)
		emitted++
	}
	if emitted == 0 {
		b.WriteString(noneEnabledLine)
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile renders the entries and replaces the scheduler file
// atomically. The file is overwritten in full on every save.
func WriteFile(path string, entries []Entry, command, logPath string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create schedule directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(Render(entries, command, logPath)), 0o644); err != nil {
		return fmt.Errorf("failed to write schedule file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace schedule file: %w", err)
	}
	return nil
}
