// Package layouts discovers floor plan files in a data directory.
package layouts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is a layout file found on disk.
type Entry struct {
	Name string // File name without the .json extension
	Path string // Path including the data directory
}

// ScanDirectory lists the JSON layout files in dataPath, sorted by name.
// Hidden files and subdirectories are skipped.
func ScanDirectory(dataPath string) ([]Entry, error) {
	entries, err := os.ReadDir(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout directory: %w", err)
	}

	var found []Entry
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}

		found = append(found, Entry{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dataPath, name),
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}

// Find returns the entry named name from the layouts in dataPath.
func Find(dataPath, name string) (Entry, error) {
	entries, err := ScanDirectory(dataPath)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("layout %q not found in %s", name, dataPath)
}
