/*
Package state persists the scraper's run state between invocations: the last
fetched circular URL and the set of PDFs already processed.
*/
package state

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const stateFileName = "state.json"

// State is the persisted record. Processed maps PDF basenames to true.
type State struct {
	LastURL           string          `json:"lastUrl"`
	LastProcessedFile string          `json:"lastProcessedFile"`
	Processed         map[string]bool `json:"processed"`
}

// Manager loads, mutates and saves the state file.
type Manager struct {
	state     State
	mutex     sync.Mutex
	statePath string
}

// NewManager loads state from dir (created if missing). A corrupt or absent
// state file starts fresh rather than failing the run.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	m := &Manager{
		statePath: filepath.Join(dir, stateFileName),
	}
	m.load()
	return m, nil
}

func (m *Manager) load() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.state = State{Processed: make(map[string]bool)}

	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: error reading state file %s: %v. Starting fresh.", m.statePath, err)
		}
		return
	}

	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.Printf("Warning: error unmarshalling state file: %v. Starting fresh.", err)
		return
	}
	if loaded.Processed == nil {
		loaded.Processed = make(map[string]bool)
	}
	m.state = loaded
}

// Save writes the state file.
func (m *Manager) Save() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		log.Printf("Warning: error marshalling state for save: %v", err)
		return
	}
	if err := os.WriteFile(m.statePath, data, 0o644); err != nil {
		log.Printf("Warning: error writing state file %s: %v", m.statePath, err)
	}
}

// IsProcessed reports whether the PDF with this basename was handled by a
// previous run.
func (m *Manager) IsProcessed(name string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.state.Processed[name]
}

// MarkProcessed records a handled PDF and the URL it came from.
func (m *Manager) MarkProcessed(name, url string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.state.Processed[name] = true
	m.state.LastProcessedFile = name
	if url != "" {
		m.state.LastURL = url
	}
}

// LastURL returns the most recently fetched circular URL.
func (m *Manager) LastURL() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.state.LastURL
}

// StatePath returns the location of the state file on disk.
func (m *Manager) StatePath() string {
	return m.statePath
}
