package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jet/internal/naming"
)

// Scanner scans for test units in a directory
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all test units below root in lexical walk order
func (s *Scanner) Scan(root string) ([]string, error) {
	var units []string

	root, err := checkRoot(root)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories (starting with .)
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if naming.IsUnitFile(d.Name()) {
			units = append(units, path)
		}
		return nil
	})

	return units, err
}

// Resolve restricts discovery to an explicit list of files. Each entry is reduced to
// its base name and looked up directly under root; names that do not follow the unit
// convention are ignored, missing files are an error.
func (s *Scanner) Resolve(root string, files []string) ([]string, error) {
	root, err := checkRoot(root)
	if err != nil {
		return nil, err
	}

	var units []string
	seen := make(map[string]bool)
	for _, file := range files {
		name := filepath.Base(file)
		if !naming.IsUnitFile(name) || seen[name] {
			continue
		}
		seen[name] = true

		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("test unit %s not found in %s", name, root)
		}
		units = append(units, path)
	}
	return units, nil
}

func checkRoot(root string) (string, error) {
	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("test path is not a directory: %s", root)
	}
	return root, nil
}
