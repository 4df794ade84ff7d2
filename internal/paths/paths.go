// Package paths normalizes user-supplied file paths and rejects
// anything escaping the indexed root.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Normalize canonicalizes a repo-relative path: forward slashes, no
// leading "./", cleaned of "." and ".." segments.
func Normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// Canonicalize converts an absolute path to its repo-relative canonical
// form, resolving symlinks on both sides. A path for a file that doesn't
// exist yet canonicalizes by text alone.
func Canonicalize(absolutePath, repoRoot string) (string, error) {
	resolved, err := resolveExisting(absolutePath)
	if err != nil {
		return "", err
	}
	rootResolved, err := resolveExisting(repoRoot)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// WithinRoot reports whether a repo-relative path stays inside the root
// after normalization. Absolute paths and ".."-escapes are rejected.
func WithinRoot(relPath string) bool {
	if relPath == "" || filepath.IsAbs(relPath) {
		return false
	}
	clean := Normalize(relPath)
	return clean != ".." && !strings.HasPrefix(clean, "../")
}

// Join resolves a canonical repo-relative path back to a filesystem
// path under root.
func Join(root, canonical string) string {
	parts := strings.Split(Normalize(canonical), "/")
	return filepath.Join(append([]string{root}, parts...)...)
}

func resolveExisting(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", err
	}
	return resolved, nil
}
