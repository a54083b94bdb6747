package progress

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/marketpulse/core/pkg/logger"
)

// Store is a durable key -> Record mapping backed by a single JSON file.
//
// Every mutation rewrites the whole file through a temp-file-then-rename
// so a crash mid-write never leaves a torn store visible. All operations
// are best-effort: read failures degrade to an empty store and write
// failures are logged and swallowed, because progress reporting must
// never abort a running job.
type Store struct {
	path string

	// mu serializes the read-modify-write-persist sequence of every
	// operation. It is never held while a job callable runs.
	mu  sync.Mutex
	log *logger.Logger
}

// NewStore creates a store persisted at path.
func NewStore(path string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.New("progress-store")
	}
	return &Store{path: path, log: log}
}

// Update upserts the record for key with an unknown total.
func (s *Store) Update(key string, current, total int64, message string) {
	s.upsert(key, current, total, message, nil)
}

// UpdateResult upserts the record for key and marks its terminal outcome.
func (s *Store) UpdateResult(key string, current, total int64, message string, success bool) {
	s.upsert(key, current, total, message, &success)
}

func (s *Store) upsert(key string, current, total int64, message string, success *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.readAll()

	rec := Record{
		Current:   current,
		Message:   message,
		Timestamp: time.Now(),
	}
	if total > 0 {
		rec.Total = &total
	}
	rec.Percent = percentOf(current, rec.Total)
	if success != nil {
		rec.Success = success
	} else if prev, ok := data[key]; ok {
		// A plain update keeps a previously reported outcome.
		rec.Success = prev.Success
	}

	data[key] = rec
	s.writeAll(data)
}

// Get returns the current record for key, or false if it was never set
// or the store is unreadable.
func (s *Store) Get(key string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.readAll()[key]
	return rec, ok
}

// GetMany returns the present records for the given keys. Keys without
// a record are omitted from the result.
func (s *Store) GetMany(keys []string) map[string]Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.readAll()
	out := make(map[string]Record, len(keys))
	for _, key := range keys {
		if rec, ok := data[key]; ok {
			out[key] = rec
		}
	}
	return out
}

// Clear removes the record for key and persists. No-op when the key is
// absent or the store file is missing.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return
	}
	data := s.readAll()
	if _, ok := data[key]; !ok {
		return
	}
	delete(data, key)
	s.writeAll(data)
}

// Ping reports whether the backing file is usable. A file that does
// not exist yet counts as healthy since the first write creates it.
func (s *Store) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.ReadFile(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// readAll loads the whole store. A missing or malformed file reads as
// an empty store.
func (s *Store) readAll() map[string]Record {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.LogStoreFault("read", s.path, err)
		}
		return map[string]Record{}
	}

	var data map[string]Record
	if err := json.Unmarshal(b, &data); err != nil {
		s.log.LogStoreFault("decode", s.path, err)
		return map[string]Record{}
	}
	if data == nil {
		data = map[string]Record{}
	}
	return data
}

// writeAll persists the whole store atomically.
func (s *Store) writeAll(data map[string]Record) {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.log.LogStoreFault("mkdir", s.path, err)
			return
		}
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		s.log.LogStoreFault("encode", s.path, err)
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		s.log.LogStoreFault("write", s.path, err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.LogStoreFault("rename", s.path, err)
	}
}
