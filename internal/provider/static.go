package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/macrointel/macrointel/internal/regime"
)

// Static serves a fixed reading set. Used for file-fed runs and tests.
type Static struct {
	name     string
	readings regime.ReadingSet
	err      error
}

// NewStatic builds a provider over an in-memory reading set.
func NewStatic(name string, readings regime.ReadingSet) *Static {
	return &Static{name: name, readings: readings}
}

// NewFailing builds a provider that always fails, for exercising
// degradation paths.
func NewFailing(name string, err error) *Static {
	return &Static{name: name, err: err}
}

// FromFile loads readings from a JSON file: an array of
// {"name": ..., "value": ..., "as_of": ...} objects. Entries without a
// timestamp get the load time.
func FromFile(name, path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read readings file %s: %w", path, err)
	}

	var entries []regime.Reading
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse readings file %s: %w", path, err)
	}

	readings := regime.ReadingSet{}
	now := time.Now().UTC()
	for _, entry := range entries {
		if entry.AsOf.IsZero() {
			entry.AsOf = now
		}
		readings.Put(entry)
	}

	return NewStatic(name, readings), nil
}

func (s *Static) Name() string {
	return s.name
}

func (s *Static) Fetch(_ context.Context) (regime.ReadingSet, error) {
	if s.err != nil {
		return nil, s.err
	}

	out := regime.ReadingSet{}
	out.Merge(s.readings)
	return out, nil
}
