package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type ScrubbedFile struct {
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	DestPath   string    `json:"dest_path"`
	Attributes int       `json:"attributes,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type State struct {
	mu       sync.RWMutex
	filePath string
	Scrubbed map[string]ScrubbedFile `json:"scrubbed"`
	LastRun  time.Time               `json:"last_run"`
}

func New(filePath string) *State {
	return &State{
		filePath: filePath,
		Scrubbed: make(map[string]ScrubbedFile),
	}
}

func Load(filePath string) (*State, error) {
	s := New(filePath)

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *State) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.filePath, data, 0644)
}

func (s *State) IsScrubbed(path string, size int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.Scrubbed[path]; ok {
		return p.Size == size
	}
	return false
}

func (s *State) MarkScrubbed(path string, size int64, destPath string, attributes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Scrubbed[path] = ScrubbedFile{
		Path:       path,
		Size:       size,
		DestPath:   destPath,
		Attributes: attributes,
		Timestamp:  time.Now(),
	}
	s.LastRun = time.Now()
}
