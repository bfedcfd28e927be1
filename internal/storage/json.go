package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"jet/internal/domain"
)

// Save replaces the results file with record. The file is written to a temporary
// name first so readers never see a partial record.
func (s *JSONStorage) Save(record domain.ResultRecord) error {
	if record.Diagnostics == nil {
		record.Diagnostics = []domain.Diagnostic{}
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".jet.results-*.json")
	if err != nil {
		return fmt.Errorf("create temp results: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace results: %w", err)
	}
	return nil
}

// Load reads the last run record
func (s *JSONStorage) Load() (*domain.ResultRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NoResultsError{Path: s.path}
	}
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}

	var record domain.ResultRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, &CorruptResultsError{Path: s.path, Err: err}
	}
	if record.Diagnostics == nil {
		return nil, &CorruptResultsError{Path: s.path, Err: errors.New("missing diagnostics")}
	}
	// Save writes an empty list as [], it reads back as nil like empty local variables
	if len(record.Diagnostics) == 0 {
		record.Diagnostics = nil
	}
	return &record, nil
}
