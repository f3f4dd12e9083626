package staging

import (
	"os"
	"path/filepath"
	"strings"
)

// maxTreeLines caps the diagnostic listing so huge archives do not flood logs.
const maxTreeLines = 200

// Tree renders the directory layout under root, directories only, one per line
// and indented four spaces per level, in name order.
func Tree(root string) []string {
	lines := []string{filepath.Base(root) + "/"}
	truncated := walkTree(root, 1, &lines)
	if truncated {
		lines = append(lines, "...")
	}
	return lines
}

func walkTree(dir string, depth int, lines *[]string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	for _, name := range names {
		if len(*lines) >= maxTreeLines {
			return true
		}
		*lines = append(*lines, strings.Repeat("    ", depth)+name+"/")
		if walkTree(filepath.Join(dir, name), depth+1, lines) {
			return true
		}
	}
	return false
}

// DirSize returns the total size of regular files under path.
func DirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
