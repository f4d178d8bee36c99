package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExpandLocation expands a policy location into concrete sources. A
// location of the form file://DIR/*SUFFIX expands to the regular files
// under DIR whose name ends with SUFFIX; each additional leading "*"
// descends one more directory level. A file:// location without a wildcard
// yields its path with the scheme removed; any other location is returned
// as-is. The loader reads every result as a local file path; URLs are not
// fetched.
func ExpandLocation(location string) ([]string, error) {
	rest, ok := strings.CutPrefix(location, "file://")
	if !ok {
		return []string{location}, nil
	}
	slash := strings.LastIndex(rest, "/")
	if slash < 0 {
		return []string{rest}, nil
	}
	dir, pattern := rest[:slash], rest[slash+1:]
	depth := 0
	for strings.HasPrefix(pattern, "*") {
		depth++
		pattern = pattern[1:]
	}
	if depth == 0 {
		// No wildcard: a plain file path.
		return []string{rest}, nil
	}
	suffix := pattern
	if dir == "" {
		dir = "/"
	}

	var files []string
	if err := collect(dir, suffix, depth, &files); err != nil {
		return nil, fmt.Errorf("expanding %s: %w", location, err)
	}
	sort.Strings(files)
	return files, nil
}

// collect gathers matching regular files in dir, descending depth-1 further
// directory levels.
func collect(dir, suffix string, depth int, out *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		switch {
		case e.IsDir():
			if depth > 1 {
				if err := collect(path, suffix, depth-1, out); err != nil {
					return err
				}
			}
		case e.Type().IsRegular() && strings.HasSuffix(e.Name(), suffix):
			*out = append(*out, path)
		}
	}
	return nil
}
