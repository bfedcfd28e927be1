package storage

import (
	"fmt"

	"jet/internal/config"
	"jet/internal/domain"
)

// Storage persists and loads the record of the last run
type Storage interface {
	Save(record domain.ResultRecord) error
	Load() (*domain.ResultRecord, error)
}

// NoResultsError is returned when no run has been recorded yet
type NoResultsError struct {
	Path string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("no results found at %s, run `jet run` first", e.Path)
}

// CorruptResultsError is returned when the results file cannot be decoded
type CorruptResultsError struct {
	Path string
	Err  error
}

func (e *CorruptResultsError) Error() string {
	return fmt.Sprintf("results file %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptResultsError) Unwrap() error {
	return e.Err
}

// JSONStorage stores the run record in a JSON file in the test directory
type JSONStorage struct {
	path string
}

// NewJSONStorage returns a Storage that reads/writes the config's results file
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{path: cfg.GetOutputPath()}
}

// NewJSONStorageAt returns a Storage for an explicit file path
func NewJSONStorageAt(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the file the storage uses
func (s *JSONStorage) Path() string {
	return s.path
}
