package paths

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"./a/b.go", "a/b.go"},
		{"a//b/../c.go", "a/c.go"},
		{"a/b.go", "a/b.go"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWithinRoot(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a/b.go", true},
		{"./a/b.go", true},
		{"a/../b.go", true},
		{"../escape.go", false},
		{"a/../../escape.go", false},
		{"..", false},
		{"/etc/passwd", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := WithinRoot(tt.in); got != tt.want {
			t.Errorf("WithinRoot(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJoin(t *testing.T) {
	got := Join("/repo", "pkg/util.go")
	if got != "/repo/pkg/util.go" {
		t.Errorf("Join = %q", got)
	}
}
