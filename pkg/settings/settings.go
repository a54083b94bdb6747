package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/marketpulse/core/pkg/logger"
	"github.com/marketpulse/core/pkg/schedule"
)

// Known top-level sections of the settings document. Unknown sections
// are passed through verbatim on read and write.
const (
	SectionProxy      = "proxy"
	SectionAI         = "ai"
	SectionDataSource = "data_source"
	SectionSchedule   = "schedule"
)

// Defaults returns the built-in section defaults. Known sections are
// deep-merged against these on every read, so a partially populated or
// corrupted document never crashes a reader.
func Defaults() map[string]any {
	return map[string]any{
		SectionProxy: map[string]any{
			"authKey":   "",
			"password":  "",
			"poolSize":  float64(5),
			"timeout":   float64(10),
			"cacheTime": float64(24),
		},
		SectionAI: map[string]any{
			"apiKey":      "",
			"baseUrl":     "https://api.openai.com/v1",
			"model":       "gpt-3.5-turbo",
			"temperature": 0.7,
			"maxTokens":   float64(2000),
		},
		SectionDataSource: map[string]any{
			"apiToken":              "",
			"refreshInterval":       float64(60),
			"retentionDays":         float64(365),
			"maxConcurrentRequests": float64(5),
			"requestTimeout":        float64(30),
		},
		SectionSchedule: map[string]any{
			"entries": []any{},
		},
	}
}

// ScheduleHook re-renders the external scheduler file after the
// schedule section changes.
type ScheduleHook func(entries []schedule.Entry) error

// Manager owns the settings document on disk. All operations serialize
// through one lock and persist with temp-file-then-rename.
type Manager struct {
	path string

	mu   sync.Mutex
	log  *logger.Logger
	hook ScheduleHook
}

func NewManager(path string, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.New("settings")
	}
	return &Manager{path: path, log: log}
}

// SetScheduleHook installs the re-render hook invoked after every
// successful schedule-section write.
func (m *Manager) SetScheduleHook(hook ScheduleHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = hook
}

// Read returns the whole document with known sections deep-merged
// against defaults and unknown sections passed through.
func (m *Manager) Read() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return withDefaults(m.readRaw())
}

// Section returns one deep-merged section. Unknown section names
// return whatever the document holds for them, or an empty object.
func (m *Manager) Section(name string) map[string]any {
	doc := m.Read()
	if sec, ok := doc[name].(map[string]any); ok {
		return sec
	}
	return map[string]any{}
}

// ScheduleEntries returns the persisted schedule entries.
func (m *Manager) ScheduleEntries() []schedule.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return entriesFromDoc(m.readRaw())
}

// WriteSection deep-merges a partial section document against the
// persisted document and re-persists the whole file. Writing the
// schedule section validates and merges its entries through the
// schedule merger and re-renders the scheduler file; an invalid entry
// fails the whole write with nothing persisted.
func (m *Manager) WriteSection(name string, partial map[string]any) error {
	if name == "" {
		return fmt.Errorf("section name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.readRaw()

	if name == SectionSchedule {
		return m.writeSchedule(doc, partial)
	}

	current, _ := doc[name].(map[string]any)
	doc[name] = deepMerge(current, partial)
	return m.persist(doc)
}

func (m *Manager) writeSchedule(doc, partial map[string]any) error {
	existing := entriesFromDoc(doc)
	incoming := entriesFromSection(partial)

	merged, err := schedule.Merge(existing, incoming)
	if err != nil {
		return err
	}

	sec, _ := doc[SectionSchedule].(map[string]any)
	if sec == nil {
		sec = map[string]any{}
	}
	for k, v := range partial {
		if k != "entries" {
			sec[k] = v
		}
	}
	sec["entries"] = entriesToAny(merged)
	doc[SectionSchedule] = sec

	if err := m.persist(doc); err != nil {
		return err
	}

	if m.hook != nil {
		if err := m.hook(merged); err != nil {
			return fmt.Errorf("schedule saved but rendering failed: %w", err)
		}
	}
	return nil
}

// readRaw loads the persisted document without default merging. A
// missing or malformed file reads as an empty document.
func (m *Manager) readRaw() map[string]any {
	b, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.LogStoreFault("read", m.path, err)
		}
		return map[string]any{}
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		m.log.LogStoreFault("decode", m.path, err)
		return map[string]any{}
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc
}

// persist writes the whole document atomically.
func (m *Manager) persist(doc map[string]any) error {
	if dir := filepath.Dir(m.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// withDefaults deep-merges every known section over its defaults and
// carries unknown sections verbatim.
func withDefaults(doc map[string]any) map[string]any {
	out := Defaults()
	for name, value := range doc {
		if base, known := out[name].(map[string]any); known {
			if sec, ok := value.(map[string]any); ok {
				out[name] = deepMerge(base, sec)
				continue
			}
			// A corrupted section (wrong shape) falls back to defaults.
			continue
		}
		out[name] = value
	}
	return out
}

// deepMerge merges src over dst recursively; nested objects merge,
// everything else replaces. Neither input is mutated.
func deepMerge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := out[k].(map[string]any); ok {
				out[k] = deepMerge(dv, sv)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func entriesFromDoc(doc map[string]any) []schedule.Entry {
	sec, _ := doc[SectionSchedule].(map[string]any)
	return entriesFromSection(sec)
}

// entriesFromSection decodes the entries list of a schedule section
// through a JSON round-trip; malformed lists decode as empty.
func entriesFromSection(sec map[string]any) []schedule.Entry {
	if sec == nil {
		return nil
	}
	raw, ok := sec["entries"]
	if !ok {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var entries []schedule.Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil
	}
	return entries
}

func entriesToAny(entries []schedule.Entry) []any {
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"cron":        e.Cron,
			"description": e.Description,
			"enabled":     e.IsEnabled(),
		})
	}
	return out
}
