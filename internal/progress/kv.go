// Package progress keeps per-question user progress (wrong answers and
// bookmarks) in named slots of a simple key-value layer.
package progress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrSlotNotFound is returned by a KV when a slot has never been written.
var ErrSlotNotFound = errors.New("slot not found")

// KV persists opaque payloads under named slots.
type KV interface {
	Get(ctx context.Context, slot string) ([]byte, error)
	Set(ctx context.Context, slot string, payload []byte) error
}

// MemoryKV is an in-memory KV. Its contents are lost with the process.
type MemoryKV struct {
	slots map[string][]byte
	mu    sync.RWMutex
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{slots: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, slot string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.slots[slot]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryKV) Set(_ context.Context, slot string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = append([]byte(nil), payload...)
	return nil
}

// FileKV stores each slot as <dir>/<slot>.json.
type FileKV struct {
	dir string
}

// NewFileKV creates a file-backed KV rooted at dir. The directory is created
// on first write.
func NewFileKV(dir string) *FileKV {
	return &FileKV{dir: dir}
}

func (f *FileKV) path(slot string) (string, error) {
	if slot == "" || strings.ContainsAny(slot, `/\`) || slot == "." || slot == ".." {
		return "", fmt.Errorf("invalid slot name %q", slot)
	}
	return filepath.Join(f.dir, slot+".json"), nil
}

func (f *FileKV) Get(_ context.Context, slot string) ([]byte, error) {
	path, err := f.path(slot)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("reading slot %s: %w", slot, err)
	}
	return data, nil
}

// Set replaces the slot file atomically via a temp file and rename.
func (f *FileKV) Set(_ context.Context, slot string, payload []byte) error {
	path, err := f.path(slot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating slot dir: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp slot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("writing slot %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing slot %s: %w", slot, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing slot %s: %w", slot, err)
	}
	return nil
}
