// Package walker discovers candidate source files under a project root,
// honouring gitignore-style ignore rules and an exclude-tests policy, and
// skipping binary content by extension and a magic-byte sniff.
package walker

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

// alwaysSkipDirs are directories never walked into regardless of ignore
// rules.
var alwaysSkipDirs = map[string]bool{
	".git":         true,
	".codegraph":   true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	"bin":          true,
	"out":          true,
	".cache":       true,
}

// binaryExtensions are skipped without reading the file.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".ico": true,
	".pdf": true, ".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".so": true, ".dylib": true, ".dll": true, ".exe": true, ".a": true, ".o": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true, ".mp3": true, ".mp4": true,
	".wasm": true, ".class": true, ".jar": true, ".sqlite": true, ".db": true,
}

// testPathPatterns flag a path as a test artifact by directory or
// filename convention.
var testPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(^|/)tests?/`),
	regexp.MustCompile(`(^|/)__tests__/`),
	regexp.MustCompile(`_test\.[a-zA-Z0-9]+$`),
	regexp.MustCompile(`\.test\.[a-zA-Z0-9]+$`),
	regexp.MustCompile(`\.spec\.[a-zA-Z0-9]+$`),
}

// Options configures one walk.
type Options struct {
	// ExcludeTests skips paths matching testPathPatterns entirely, per the
	// performance.exclude_tests configuration option.
	ExcludeTests bool
	// ExtraIgnorePatterns are additional gitignore-style patterns applied on
	// top of any .gitignore files found under Root.
	ExtraIgnorePatterns []string
}

// File is one discovered candidate: a path relative to Root plus whether it
// was tagged as a test artifact.
type File struct {
	Path   string // relative to Root, slash-separated
	IsTest bool
}

// Walk returns candidate file paths under root in deterministic
// depth-first order, each directory's entries visited by name in
// lexicographic order. Symlinks are followed once;
// a device+inode cycle guard prevents infinite recursion through symlinked
// directory loops.
func Walk(root string, opts Options) ([]File, error) {
	root = filepath.Clean(root)
	matcher, err := loadIgnoreMatcher(root, opts.ExtraIgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("load ignore rules: %w", err)
	}

	seen := newCycleGuard()
	var out []File

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil // unreadable directory: skip, don't abort the walk
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			rel, relErr := filepath.Rel(root, full)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			info, err := os.Lstat(full)
			if err != nil {
				continue
			}

			if info.Mode()&os.ModeSymlink != 0 {
				resolved, err := filepath.EvalSymlinks(full)
				if err != nil {
					continue
				}
				target, err := os.Stat(resolved)
				if err != nil {
					continue
				}
				if target.IsDir() {
					if !seen.visit(inodeKey(target, resolved)) {
						continue // already followed this directory once
					}
					if alwaysSkipDirs[entry.Name()] || matcher.matchDir(rel) {
						continue
					}
					if err := walk(resolved); err != nil {
						return err
					}
					continue
				}
				info = target
			}

			if info.IsDir() {
				if alwaysSkipDirs[entry.Name()] || matcher.matchDir(rel) {
					continue
				}
				if err := walk(full); err != nil {
					return err
				}
				continue
			}

			if matcher.matchFile(rel) {
				continue
			}
			if isBinaryExtension(rel) {
				continue
			}
			isTest := matchesTestPattern(rel)
			if opts.ExcludeTests && isTest {
				continue
			}
			if looksBinary(full) {
				continue
			}
			out = append(out, File{Path: rel, IsTest: isTest})
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return out, nil
}

func matchesTestPattern(relPath string) bool {
	for _, re := range testPathPatterns {
		if re.MatchString(relPath) {
			return true
		}
	}
	return false
}

func isBinaryExtension(path string) bool {
	return binaryExtensions[strings.ToLower(filepath.Ext(path))]
}

// looksBinary sniffs the first 512 bytes for a NUL byte, the same heuristic
// used by file(1) and Go's own http.DetectContentType callers to tell text
// from binary content cheaply.
func looksBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 512)
	chunk, _ := r.Peek(512)
	return bytes.IndexByte(chunk, 0) >= 0
}

// cycleGuard deduplicates directories already visited through a symlink,
// keyed by device+inode (see inodeKey; resolved path on platforms whose
// Sys() exposes neither).
type cycleGuard struct {
	visited map[string]bool
}

func newCycleGuard() *cycleGuard {
	return &cycleGuard{visited: make(map[string]bool)}
}

func (g *cycleGuard) visit(key string) bool {
	if g.visited[key] {
		return false
	}
	g.visited[key] = true
	return true
}

// MaxWorkers bounds parser-pool-style parallelism elsewhere in the pipeline;
// exposed here since the walker is the component that first learns how
// large a project is.
func MaxWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}
