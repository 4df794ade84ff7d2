// Package identity derives the stable ids and content fingerprints the
// data model requires of every Node: deterministic given the file's
// syntax tree, unchanged by whitespace-only edits, and distinct across
// symbols that share a name but differ in kind or containment.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SymbolIdentity is the identity key of one declaration: the components
// that must match for two extractions to be "the same symbol".
type SymbolIdentity struct {
	Container string // enclosing class/type, empty for top-level
	Name      string
	Kind      string
	Signature string // normalized; see NormalizeSignature
}

// Fingerprint hashes an identity key into the Node's content fingerprint.
// The canonical form is fixed; changing it invalidates every stored id
// and the embedding cache, so treat it as a schema-versioned format.
func Fingerprint(id SymbolIdentity) string {
	var b strings.Builder
	b.WriteString("container:")
	b.WriteString(id.Container)
	b.WriteString("|kind:")
	b.WriteString(id.Kind)
	b.WriteString("|name:")
	b.WriteString(id.Name)
	if id.Signature != "" {
		b.WriteString("|sig:")
		b.WriteString(id.Signature)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// NormalizeSignature strips all whitespace from a signature so formatting
// churn never changes a symbol's fingerprint.
func NormalizeSignature(signature string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, signature)
}
