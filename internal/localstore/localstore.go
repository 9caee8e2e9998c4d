// Package localstore persists a small set of named values on the device:
// the cart and the admin-session flag. Values round-trip through JSON, and
// corrupted or missing values are masked: Load leaves the caller's default
// in place and logs the failure instead of surfacing it.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gtera/thiwa/config"
	"github.com/gtera/thiwa/pkg/crypt"
	"github.com/gtera/thiwa/pkg/logger"
)

// Store is the on-device persistence contract. Save overwrites any prior
// value under key. Load fills dest with the saved value and reports whether
// it did; on a miss or a decode failure dest is left untouched, so callers
// pre-fill it with their default.
type Store interface {
	Save(key string, value any) error
	Load(key string, dest any) bool
}

// ── File store ────────────────────────────────────────────────────────────────

// FileStore keeps one JSON file per key under a data directory. When
// LOCAL_ENCRYPT is enabled the payload is sealed with AES-GCM so the cart
// and session flag are not readable off-device.
type FileStore struct {
	dir     string
	encrypt bool
	mu      sync.Mutex
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: mkdir %s: %w", dir, err)
	}
	return &FileStore{
		dir:     dir,
		encrypt: strings.EqualFold(config.Get("LOCAL_ENCRYPT", "false"), "true"),
	}, nil
}

func (s *FileStore) path(key string) string {
	// Keys are fixed, app-chosen names; sanitise anyway.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileStore) Save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("localstore: marshal %s: %w", key, err)
	}

	if s.encrypt {
		sealed, err := crypt.EncryptBytes(raw)
		if err != nil {
			return fmt.Errorf("localstore: encrypt %s: %w", key, err)
		}
		raw = []byte(sealed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write-then-rename keeps a crash from truncating the previous value.
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("localstore: write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("localstore: rename %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Load(key string, dest any) bool {
	s.mu.Lock()
	raw, err := os.ReadFile(s.path(key))
	s.mu.Unlock()
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("localstore: read failed, using default", "key", key, "error", err)
		}
		return false
	}

	if s.encrypt {
		plain, err := crypt.DecryptBytes(string(raw))
		if err != nil {
			logger.Warn("localstore: decrypt failed, using default", "key", key, "error", err)
			return false
		}
		raw = plain
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Warn("localstore: corrupt value, using default", "key", key, "error", err)
		return false
	}
	return true
}

// ── Memory store ──────────────────────────────────────────────────────────────

// MemStore is a non-durable Store for tests and the library example.
type MemStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

func (s *MemStore) Save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("localstore: marshal %s: %w", key, err)
	}
	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Load(key string, dest any) bool {
	s.mu.Lock()
	raw, ok := s.values[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Warn("localstore: corrupt value, using default", "key", key, "error", err)
		return false
	}
	return true
}
