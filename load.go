// Package catalogproxy filters DCAT catalogs before re-publishing them.
//
// The filter itself lives in the internal catalog package.
// This package only holds helpers shared by the commands.
package catalogproxy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Extensions are the file extensions recognized as catalog files.
var Extensions = []string{".xml", ".rdf", ".owl", ".nt", ".nq"}

var errWrongArgCount = errors.New("need exactly one argument")

// FindSource finds the catalog file to read for the given arguments.
//
// The single argument may be a catalog file, or a directory containing exactly one catalog file.
// FindSource does not guarantee that contents are loadable.
func FindSource(argv ...string) (path string, err error) {
	if len(argv) != 1 {
		return "", errWrongArgCount
	}
	path = argv[0]

	isDir, err := isDirectory(path)
	if err != nil {
		return "", err
	}

	if isDir {
		entries, err := os.ReadDir(path)
		if err != nil {
			return "", err
		}

		var candidates []string
		for _, entry := range entries {
			if entry.Type().IsRegular() && IsCatalogFile(entry.Name()) {
				candidates = append(candidates, filepath.Join(path, entry.Name()))
			}
		}
		if len(candidates) != 1 {
			return "", fmt.Errorf("need exactly one catalog file in %q, but got %d", path, len(candidates))
		}
		path = candidates[0]
	}

	ok, err := isFile(path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%q is not a regular file", path)
	}
	return path, nil
}

// IsCatalogFile checks if name has one of the [Extensions].
func IsCatalogFile(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}

func isDirectory(path string) (ok bool, err error) {
	stats, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return stats.Mode().IsDir(), nil
}

// isFile checks if path is a regular file.
func isFile(path string) (ok bool, err error) {
	stats, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return stats.Mode().IsRegular(), nil
}
