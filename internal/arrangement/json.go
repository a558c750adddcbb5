package arrangement

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSON serializes the arrangement as indented JSON.
func (a *GeneratedArrangement) JSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// Save writes the arrangement to a JSON file.
func (a *GeneratedArrangement) Save(path string) error {
	data, err := a.JSON()
	if err != nil {
		return fmt.Errorf("encoding arrangement: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing arrangement: %w", err)
	}
	return nil
}

// LoadArrangement reads an arrangement from a JSON file.
func LoadArrangement(path string) (*GeneratedArrangement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading arrangement: %w", err)
	}
	var a GeneratedArrangement
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decoding arrangement %s: %w", path, err)
	}
	return &a, nil
}
