package identity

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	id := SymbolIdentity{Container: "Server", Name: "Start", Kind: "method", Signature: "funcStart(ctxcontext.Context)error"}
	if Fingerprint(id) != Fingerprint(id) {
		t.Fatal("fingerprint not deterministic for identical identity")
	}
}

func TestFingerprintDistinguishes(t *testing.T) {
	base := SymbolIdentity{Container: "Server", Name: "Start", Kind: "method"}
	variants := []SymbolIdentity{
		{Container: "Client", Name: "Start", Kind: "method"},
		{Container: "Server", Name: "Stop", Kind: "method"},
		{Container: "Server", Name: "Start", Kind: "function"},
		{Container: "Server", Name: "Start", Kind: "method", Signature: "x"},
	}
	seen := map[string]bool{Fingerprint(base): true}
	for _, v := range variants {
		fp := Fingerprint(v)
		if seen[fp] {
			t.Errorf("identity %+v collided with a different identity", v)
		}
		seen[fp] = true
	}
}

func TestNormalizeSignature(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"func Foo(a int, b int) error", "funcFoo(aint,bint)error"},
		{"def  foo(\n  a,\n  b\n):", "deffoo(a,b):"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeSignature(tt.in); got != tt.want {
			t.Errorf("NormalizeSignature(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
