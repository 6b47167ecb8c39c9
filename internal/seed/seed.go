// Package seed reads and writes the YAML feature lists used to bulk-load
// and dump the tracker.
package seed

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/x402arcade/featdb/internal/db"
)

// File is the top-level document of a seed file.
type File struct {
	Entries []Entry `yaml:"features"`
}

// Entry is one feature definition. Priority is optional; entries without
// one are appended after the table's current maximum, in file order.
type Entry struct {
	Category    string   `yaml:"category"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Steps       []string `yaml:"steps,omitempty"`
	Priority    *int     `yaml:"priority,omitempty"`
	Passes      bool     `yaml:"passes,omitempty"`
	InProgress  bool     `yaml:"in_progress,omitempty"`
	BlockedBy   *int64   `yaml:"blocked_by,omitempty"`
	Deferred    bool     `yaml:"deferred,omitempty"`
}

// Load reads and parses a seed file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if len(f.Entries) == 0 {
		return errors.New("seed file defines no features")
	}

	var errs []error
	for i, e := range f.Entries {
		if strings.TrimSpace(e.Category) == "" {
			errs = append(errs, fmt.Errorf("feature %d: category is required", i+1))
		}
		if strings.TrimSpace(e.Name) == "" {
			errs = append(errs, fmt.Errorf("feature %d: name is required", i+1))
		}
		for j, step := range e.Steps {
			if strings.TrimSpace(step) == "" {
				errs = append(errs, fmt.Errorf("feature %d: step %d is empty", i+1, j+1))
			}
		}
		if e.Priority != nil && *e.Priority < 1 {
			errs = append(errs, fmt.Errorf("feature %d: priority must be positive", i+1))
		}
	}
	return errors.Join(errs...)
}

// Features converts the entries to database models. Entries without an
// explicit priority take nextPriority, nextPriority+1, ... in file order.
func (f *File) Features(nextPriority int) []*db.Feature {
	features := make([]*db.Feature, 0, len(f.Entries))
	for _, e := range f.Entries {
		priority := nextPriority
		if e.Priority != nil {
			priority = *e.Priority
		} else {
			nextPriority++
		}
		features = append(features, &db.Feature{
			Priority:    priority,
			Category:    e.Category,
			Name:        e.Name,
			Description: e.Description,
			Steps:       e.Steps,
			Passes:      e.Passes,
			InProgress:  e.InProgress,
			BlockedBy:   e.BlockedBy,
			Deferred:    e.Deferred,
		})
	}
	return features
}

// Render encodes features as a seed document. Priorities are written out
// explicitly so loading the result reproduces the table.
func Render(features []*db.Feature) ([]byte, error) {
	f := File{Entries: make([]Entry, 0, len(features))}
	for _, feat := range features {
		priority := feat.Priority
		f.Entries = append(f.Entries, Entry{
			Category:    feat.Category,
			Name:        feat.Name,
			Description: feat.Description,
			Steps:       feat.Steps,
			Priority:    &priority,
			Passes:      feat.Passes,
			InProgress:  feat.InProgress,
			BlockedBy:   feat.BlockedBy,
			Deferred:    feat.Deferred,
		})
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode seed file: %w", err)
	}
	return data, nil
}
