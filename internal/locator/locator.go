// Package locator finds the dataset directory inside an extracted map package.
package locator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound reports that neither the strict path nor the fallback search
// produced a dataset directory.
var ErrNotFound = errors.New("dataset directory not found")

// Match describes how the dataset directory was found.
type Match struct {
	Path     string
	Fallback bool
}

// Locate returns the dataset directory under root. The strict relative path
// (strictParts joined) wins when it is a directory. Otherwise the tree is
// searched breadth-first, siblings in name order, for the first directory
// named dirName, so the shallowest match wins and ties go to the
// lexicographically first path.
func Locate(root string, strictParts []string, dirName string) (Match, error) {
	if len(strictParts) > 0 {
		strict := filepath.Join(append([]string{root}, strictParts...)...)
		if info, err := os.Stat(strict); err == nil && info.IsDir() {
			return Match{Path: strict}, nil
		}
	}
	if dirName == "" {
		return Match{}, ErrNotFound
	}

	queue := []string{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]
		entries, err := os.ReadDir(dir)
		if err != nil {
			if dir == root {
				return Match{}, fmt.Errorf("read extraction root: %w", err)
			}
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			child := filepath.Join(dir, entry.Name())
			if entry.Name() == dirName {
				return Match{Path: child, Fallback: true}, nil
			}
			queue = append(queue, child)
		}
	}
	return Match{}, ErrNotFound
}
