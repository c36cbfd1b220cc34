// Package source provides the raw payload bytes for each topic.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when no payload exists for a topic.
var ErrNotFound = errors.New("topic payload not found")

// ByteSource fetches the raw payload for a topic.
type ByteSource interface {
	Fetch(topicID string) ([]byte, error)
}

// DirSource reads <dir>/<topicID>.json from the filesystem.
type DirSource struct {
	dir string
}

// NewDirSource creates a filesystem byte source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) Fetch(topicID string) ([]byte, error) {
	if topicID == "" || strings.ContainsAny(topicID, `/\`) || topicID == "." || topicID == ".." {
		return nil, fmt.Errorf("%w: invalid topic id %q", ErrNotFound, topicID)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, topicID+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, topicID)
		}
		return nil, fmt.Errorf("reading payload %s: %w", topicID, err)
	}
	return data, nil
}

// MemorySource serves payloads from memory.
type MemorySource struct {
	payloads map[string][]byte
	mu       sync.RWMutex
}

// NewMemorySource creates a byte source preloaded with payloads.
func NewMemorySource(payloads map[string][]byte) *MemorySource {
	s := &MemorySource{payloads: make(map[string][]byte, len(payloads))}
	for id, data := range payloads {
		s.payloads[id] = data
	}
	return s
}

// Put stores or replaces the payload for a topic.
func (s *MemorySource) Put(topicID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[topicID] = data
}

func (s *MemorySource) Fetch(topicID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.payloads[topicID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, topicID)
	}
	return data, nil
}
