package hasher

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashBytesStable(t *testing.T) {
	a := HashBytes([]byte("package main"))
	b := HashBytes([]byte("package main"))
	if a != b {
		t.Fatal("same bytes hashed differently")
	}
	if len(a) != 64 {
		t.Fatalf("digest length %d, want 64 hex chars (256 bits)", len(a))
	}
	if HashBytes([]byte("package main\n")) == a {
		t.Fatal("different bytes collided")
	}
}

func TestCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.go")
	if err := os.WriteFile(path, []byte("package f"), 0644); err != nil {
		t.Fatal(err)
	}

	added, err := Check(path, "")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if added.Status != Added {
		t.Errorf("empty prior hash should report Added, got %s", added.Status)
	}

	same, err := Check(path, added.Hash)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if same.Status != Unchanged {
		t.Errorf("identical content should report Unchanged, got %s", same.Status)
	}

	if err := os.WriteFile(path, []byte("package f // edited"), 0644); err != nil {
		t.Fatal(err)
	}
	changed, err := Check(path, added.Hash)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if changed.Status != Changed || changed.Hash == added.Hash {
		t.Errorf("edited content should report Changed with a new hash: %+v", changed)
	}
}

func TestCheckMissingFile(t *testing.T) {
	if _, err := Check(filepath.Join(t.TempDir(), "absent.go"), ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}
