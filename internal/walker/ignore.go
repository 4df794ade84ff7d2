package walker

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ignorePattern is one parsed line from a .gitignore file or an extra
// pattern supplied via Options.ExtraIgnorePatterns.
type ignorePattern struct {
	pattern  string
	negate   bool
	dirOnly  bool
	anchored bool // pattern contains a '/' other than a trailing one
}

// ignoreMatcher evaluates gitignore-style patterns gathered from every
// .gitignore file under root, applied in the order they were discovered
// (root first) so nested files can re-include paths their parent excluded.
type ignoreMatcher struct {
	patterns []ignorePattern
}

func loadIgnoreMatcher(root string, extra []string) (*ignoreMatcher, error) {
	m := &ignoreMatcher{}

	for _, p := range extra {
		if pat, ok := parseIgnoreLine(p); ok {
			m.patterns = append(m.patterns, pat)
		}
	}

	// Collect .gitignore files in a deterministic, shallow-first order so
	// root-level rules are evaluated before nested overrides.
	var ignoreFiles []string
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if alwaysSkipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Name() == ".gitignore" {
			ignoreFiles = append(ignoreFiles, path)
		}
		return nil
	})

	for _, f := range ignoreFiles {
		pats, err := parseIgnoreFile(f)
		if err != nil {
			continue
		}
		m.patterns = append(m.patterns, pats...)
	}

	return m, nil
}

func parseIgnoreFile(path string) ([]ignorePattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []ignorePattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if pat, ok := parseIgnoreLine(scanner.Text()); ok {
			out = append(out, pat)
		}
	}
	return out, scanner.Err()
}

func parseIgnoreLine(line string) (ignorePattern, bool) {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return ignorePattern{}, false
	}

	pat := ignorePattern{}
	if strings.HasPrefix(line, "!") {
		pat.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		pat.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		line = strings.TrimPrefix(line, "/")
	}
	pat.anchored = strings.Contains(line, "/")
	pat.pattern = line
	if pat.pattern == "" {
		return ignorePattern{}, false
	}
	return pat, true
}

func (m *ignoreMatcher) matchFile(relPath string) bool { return m.match(relPath, false) }
func (m *ignoreMatcher) matchDir(relPath string) bool  { return m.match(relPath, true) }

func (m *ignoreMatcher) match(relPath string, isDir bool) bool {
	matched := false
	base := filepath.Base(relPath)

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		var hit bool
		if p.anchored {
			hit, _ = filepath.Match(p.pattern, relPath)
		} else {
			hit, _ = filepath.Match(p.pattern, base)
			if !hit {
				// also try matching against any path suffix, as gitignore
				// allows an unanchored pattern to match at any depth.
				hit, _ = filepath.Match("*/"+p.pattern, relPath)
			}
		}
		if hit {
			matched = !p.negate
		}
	}
	return matched
}
