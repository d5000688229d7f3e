package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ExportExt is the extension chat exports are written with.
const ExportExt = ".txt"

// ExpandExports resolves command-line arguments into export file paths.
// Each argument may be a file, a glob pattern or a directory; a directory
// contributes the non-hidden *.txt files directly inside it. Arguments that
// match nothing are kept verbatim so the caller reports a proper
// file-not-found error. The result is sorted and free of duplicates.
func ExpandExports(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}

	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			files, err := exportsInDir(arg)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			add(arg)
			continue
		}
		for _, m := range matches {
			add(m)
		}
	}

	slices.Sort(result)
	return result, nil
}

func exportsInDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ExportExt) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}
