// Package project stores arrangement projects as flat JSON files.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daiw/music-brain/internal/arrangement"
)

const (
	fileExtension = ".json"
	maxRecent     = 10
)

// Intent captures the creative brief a project is generated from.
type Intent struct {
	CoreEvent      string `json:"core_event"`
	CoreResistance string `json:"core_resistance"`
	CoreLonging    string `json:"core_longing"`

	MoodPrimary   string  `json:"mood_primary"`
	MoodSecondary string  `json:"mood_secondary"`
	Vulnerability float64 `json:"vulnerability"`
	NarrativeArc  string  `json:"narrative_arc"`

	Genre            string   `json:"genre"`
	Key              string   `json:"key"`
	Tempo            float64  `json:"tempo"`
	TimeSignature    [2]int   `json:"time_signature"`
	ChordProgression []string `json:"chord_progression"`
}

// IsComplete reports whether the required intent fields are filled.
func (i Intent) IsComplete() bool {
	return i.CoreEvent != "" && i.MoodPrimary != "" && i.Genre != "" && i.Key != ""
}

// Export records one rendered artifact (MIDI, JSON, notes).
type Export struct {
	Type      string    `json:"type"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Project is a complete saved project document.
type Project struct {
	ID          string                            `json:"id"`
	Title       string                            `json:"title"`
	CreatedAt   time.Time                         `json:"created_at"`
	ModifiedAt  time.Time                         `json:"modified_at"`
	Version     string                            `json:"version"`
	Intent      Intent                            `json:"intent"`
	Arrangement *arrangement.GeneratedArrangement `json:"arrangement,omitempty"`
	IsGenerated bool                              `json:"is_generated"`
	Exports     []Export                          `json:"exports"`

	filePath string
}

// NewProject creates an unsaved project with defaults.
func NewProject(title string) *Project {
	if title == "" {
		title = "Untitled Project"
	}
	now := time.Now()
	return &Project{
		ID:         uuid.NewString()[:8],
		Title:      title,
		CreatedAt:  now,
		ModifiedAt: now,
		Version:    "1.0.0",
		Intent: Intent{
			Vulnerability: 0.5,
			NarrativeArc:  "transformation",
			Genre:         "pop",
			Key:           "C",
			Tempo:         120,
			TimeSignature: [2]int{4, 4},
		},
	}
}

// SetArrangement attaches a generated arrangement.
func (p *Project) SetArrangement(arr *arrangement.GeneratedArrangement) {
	p.Arrangement = arr
	p.IsGenerated = true
	p.ModifiedAt = time.Now()
}

// AddExport records an exported artifact.
func (p *Project) AddExport(exportType, path string) {
	p.Exports = append(p.Exports, Export{
		Type:      exportType,
		Path:      path,
		Timestamp: time.Now(),
	})
}

// Path returns where the project was last saved, or "".
func (p *Project) Path() string {
	return p.filePath
}

// recentEntry is one row in the recents index.
type recentEntry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Path       string    `json:"path"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Summary describes a stored project without its full payload.
type Summary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Path        string    `json:"path"`
	ModifiedAt  time.Time `json:"modified_at"`
	IsGenerated bool      `json:"is_generated"`
}

// Manager stores projects in a directory and keeps a recents index.
type Manager struct {
	dir        string
	recentFile string
	recent     []recentEntry
}

// NewManager creates the projects directory if needed and loads the recents
// index.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating projects dir: %w", err)
	}

	m := &Manager{
		dir:        dir,
		recentFile: filepath.Join(dir, "recent.json"),
	}

	data, err := os.ReadFile(m.recentFile)
	if err == nil {
		// A corrupt index is discarded, not fatal.
		if err := json.Unmarshal(data, &m.recent); err != nil {
			m.recent = nil
		}
	}

	return m, nil
}

// Save writes the project into the managed directory and promotes it in the
// recents index.
func (m *Manager) Save(p *Project) (string, error) {
	path := p.filePath
	if path == "" {
		path = filepath.Join(m.dir, p.ID+fileExtension)
	}

	p.ModifiedAt = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding project %s: %w", p.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing project %s: %w", p.ID, err)
	}

	p.filePath = path
	m.addRecent(p)
	return path, nil
}

// Load reads a project file and promotes it in the recents index.
func (m *Manager) Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding project %s: %w", path, err)
	}
	p.filePath = path

	m.addRecent(&p)
	return &p, nil
}

// Recent returns up to limit recent project entries, newest first.
func (m *Manager) Recent(limit int) []Summary {
	if limit <= 0 || limit > len(m.recent) {
		limit = len(m.recent)
	}
	out := make([]Summary, 0, limit)
	for _, e := range m.recent[:limit] {
		out = append(out, Summary{
			ID:         e.ID,
			Title:      e.Title,
			Path:       e.Path,
			ModifiedAt: e.ModifiedAt,
		})
	}
	return out
}

// List scans the projects directory, skipping unreadable files, sorted by
// modification time descending.
func (m *Manager) List() ([]Summary, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	var projects []Summary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExtension) || name == "recent.json" {
			continue
		}

		path := filepath.Join(m.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var p Project
		if err := json.Unmarshal(data, &p); err != nil || p.ID == "" {
			continue
		}

		projects = append(projects, Summary{
			ID:          p.ID,
			Title:       p.Title,
			Path:        path,
			ModifiedAt:  p.ModifiedAt,
			IsGenerated: p.IsGenerated,
		})
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].ModifiedAt.After(projects[j].ModifiedAt)
	})
	return projects, nil
}

func (m *Manager) addRecent(p *Project) {
	entry := recentEntry{
		ID:         p.ID,
		Title:      p.Title,
		Path:       p.filePath,
		ModifiedAt: p.ModifiedAt,
	}

	filtered := make([]recentEntry, 0, len(m.recent)+1)
	filtered = append(filtered, entry)
	for _, e := range m.recent {
		if e.ID != p.ID {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) > maxRecent {
		filtered = filtered[:maxRecent]
	}
	m.recent = filtered

	if data, err := json.MarshalIndent(m.recent, "", "  "); err == nil {
		_ = os.WriteFile(m.recentFile, data, 0o644)
	}
}
