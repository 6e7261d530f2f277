package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileKV persists the key/value table as a single JSON file, the way the CLI
// keeps its session under ~/.config/maintdesk. Writes rewrite the whole file;
// the table is three small string keys.
type FileKV struct {
	mu   sync.Mutex
	path string
	m    map[string]string
}

// DefaultSessionPath returns the CLI's session file location.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "maintdesk", "session.json"), nil
}

// NewFileKV loads the table at path, creating parent directories as needed.
// An unreadable or corrupt file is discarded and replaced on the next write —
// a broken session cache should never block a fresh login.
func NewFileKV(path string) (*FileKV, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory %s: %w", dir, err)
	}

	kv := &FileKV{path: path, m: make(map[string]string)}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return kv, nil
		}
		return nil, fmt.Errorf("failed to read session file %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &kv.m); err != nil {
		kv.m = make(map[string]string)
		_ = os.Remove(path)
	}
	return kv, nil
}

func (k *FileKV) Get(key string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok
}

func (k *FileKV) Set(key, value string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = value
	k.flush()
}

func (k *FileKV) Delete(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.m, key)
	if len(k.m) == 0 {
		_ = os.Remove(k.path)
		return
	}
	k.flush()
}

// flush writes the table with owner-only permissions; the file holds bearer
// credentials. Callers hold the mutex.
func (k *FileKV) flush() {
	b, err := json.MarshalIndent(k.m, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(k.path, b, 0o600)
}
