package expand

import (
	"reflect"
	"testing"
)

func TestSplitIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"CamelCase", []string{"camel", "case"}},
		{"snake_case_name", []string{"snake", "case", "name"}},
		{"kebab-case-name", []string{"kebab", "case", "name"}},
		{"HTTPServer", []string{"http", "server"}},
		{"parseJSON2Go", []string{"parse", "json", "2", "go"}},
		{"simple", []string{"simple"}},
	}
	for _, tt := range tests {
		if got := SplitIdentifier(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitIdentifier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func termSet(terms []Term) map[string]float64 {
	out := make(map[string]float64, len(terms))
	for _, term := range terms {
		out[term.Text] = term.Boost
	}
	return out
}

func TestExpand_OriginalPhraseAtFullBoost(t *testing.T) {
	terms := Expand("getUserConfig")
	if len(terms) == 0 || terms[0].Text != "getUserConfig" || terms[0].Boost != 1.0 {
		t.Fatalf("original phrase must lead at boost 1.0: %+v", terms)
	}
}

func TestExpand_StagesApplyInOrder(t *testing.T) {
	got := termSet(Expand("load cfg"))

	// Stage 1 split tokens at 0.8.
	if got["load"] != 0.8 || got["cfg"] != 0.8 {
		t.Errorf("split tokens wrong: %v", got)
	}
	// Stage 2 abbreviation expansion at 0.6.
	if got["config"] != 0.6 {
		t.Errorf("cfg should expand to config at 0.6: %v", got)
	}
}

func TestExpand_Synonyms(t *testing.T) {
	got := termSet(Expand("login"))

	found := 0
	for _, syn := range []string{"signin", "authenticate"} {
		if _, ok := got[syn]; ok {
			found++
		}
	}
	if found == 0 {
		t.Errorf("login synonym group missing: %v", got)
	}
	for text, boost := range got {
		if text != "login" && boost > 0.8 {
			t.Errorf("derived term %q outboosts split tokens: %v", text, boost)
		}
	}
}

func TestExpand_NoDuplicates(t *testing.T) {
	terms := Expand("config config CONFIG")
	seen := map[string]bool{}
	for _, term := range terms {
		key := term.Text
		if seen[key] {
			t.Errorf("duplicate term %q", key)
		}
		seen[key] = true
	}
}

func TestExpand_Empty(t *testing.T) {
	if terms := Expand("   "); terms != nil {
		t.Errorf("blank query should expand to nothing, got %+v", terms)
	}
}
