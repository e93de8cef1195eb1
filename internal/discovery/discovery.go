// Package discovery finds model definitions and test fixtures below a root
// directory.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// File extensions recognised during discovery.
const (
	DefinitionExt = ".dmn"
	FixtureExt    = ".xml"
)

// Directory lists the matching files of one directory.
type Directory struct {
	// Path is the canonical absolute path of the directory.
	Path string

	// Definitions are model-definition file names, sorted.
	Definitions []string

	// Fixtures are test fixture file names, sorted.
	Fixtures []string
}

// FixturePath returns the path of a fixture file in this directory.
func (d Directory) FixturePath(name string) string {
	return d.Path + "/" + name
}

// Result is the outcome of a walk.
type Result struct {
	// Root is the canonical absolute discovery root.
	Root string

	// Directories are sorted by path and contain at least one file.
	Directories []Directory
}

// DefinitionCount returns the number of model definitions found.
func (r *Result) DefinitionCount() int {
	n := 0
	for _, d := range r.Directories {
		n += len(d.Definitions)
	}
	return n
}

// FixtureCount returns the number of fixtures found.
func (r *Result) FixtureCount() int {
	n := 0
	for _, d := range r.Directories {
		n += len(d.Fixtures)
	}
	return n
}

// Walk recursively collects every .dmn and .xml file below root whose full
// name "<canonical-dir>/<file-name>" matches pattern.
func Walk(root string, pattern *regexp.Regexp) (*Result, error) {
	canonicalRoot, err := canonicalDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve test directory %s: %w", root, err)
	}

	info, err := os.Stat(canonicalRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read test directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test directory %s is not a directory", canonicalRoot)
	}

	byDir := make(map[string]*Directory)
	err = filepath.WalkDir(canonicalRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		ext := filepath.Ext(d.Name())
		if ext != DefinitionExt && ext != FixtureExt {
			return nil
		}

		dir, err := canonicalDir(filepath.Dir(path))
		if err != nil {
			return err
		}
		if !pattern.MatchString(dir + "/" + d.Name()) {
			return nil
		}

		entry, ok := byDir[dir]
		if !ok {
			entry = &Directory{Path: dir}
			byDir[dir] = entry
		}
		if ext == DefinitionExt {
			entry.Definitions = append(entry.Definitions, d.Name())
		} else {
			entry.Fixtures = append(entry.Fixtures, d.Name())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk test directory: %w", err)
	}

	result := &Result{Root: canonicalRoot, Directories: make([]Directory, 0, len(byDir))}
	for _, entry := range byDir {
		slices.Sort(entry.Definitions)
		slices.Sort(entry.Fixtures)
		result.Directories = append(result.Directories, *entry)
	}
	slices.SortFunc(result.Directories, func(a, b Directory) int {
		return strings.Compare(a.Path, b.Path)
	})
	return result, nil
}

func canonicalDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(resolved), nil
}
