package identity

import (
	"fmt"
	"path/filepath"
	"strings"
)

// WorkspaceName returns the directory of file relative to root, with "/"
// separators and no leading or trailing slash. Both paths are made absolute
// and symlink-free first. A file directly under root has an empty workspace name.
func WorkspaceName(root, file string) (string, error) {
	canonicalRoot, err := canonicalPath(root)
	if err != nil {
		return "", fmt.Errorf("failed to read directory: %w", err)
	}
	canonicalFile, err := canonicalPath(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	rel, err := filepath.Rel(canonicalRoot, filepath.Dir(canonicalFile))
	if err != nil {
		return "", fmt.Errorf("failed to strip prefix in parent directory: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file %s is outside of %s", canonicalFile, canonicalRoot)
	}
	if rel == "." {
		return "", nil
	}

	name := strings.ReplaceAll(filepath.ToSlash(rel), `\`, "/")
	return strings.Trim(name, "/"), nil
}

// canonicalPath returns the absolute path of p with symlinks resolved.
func canonicalPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
