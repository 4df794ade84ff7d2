// Package hasher computes content hashes for change detection. It is
// the sole gate that keeps incremental re-indexing fast when nothing
// changed.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Status is the outcome of comparing a file's current content hash against
// its previously stored one.
type Status string

const (
	Unchanged Status = "unchanged"
	Changed   Status = "changed"
	Added     Status = "added"
)

// Result is the outcome of hashing one file and comparing it to a prior
// known hash.
type Result struct {
	Path   string
	Hash   string
	Status Status
}

// HashFile computes the SHA-256 content hash of the file at path,
// returned as a lowercase hex digest.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// HashBytes computes the SHA-256 content hash of already-read bytes, for
// callers that have the content in hand and want to avoid a second read.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Check hashes the file at path and compares it against priorHash (the
// empty string meaning "never indexed"). It never invokes the parser
// itself; callers use the returned Status to decide whether to skip
// extraction entirely, which is what keeps a no-change pass at
// milliseconds.
func Check(path string, priorHash string) (Result, error) {
	hash, err := HashFile(path)
	if err != nil {
		return Result{}, err
	}

	status := Changed
	switch {
	case priorHash == "":
		status = Added
	case priorHash == hash:
		status = Unchanged
	}

	return Result{Path: path, Hash: hash, Status: status}, nil
}
