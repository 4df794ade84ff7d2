package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Format: HumanFormat, Level: WarnLevel, Output: &buf})

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	l.Warn("shown", nil)
	l.Error("shown", nil)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("below-threshold messages leaked: %s", out)
	}
	if strings.Count(out, "shown") != 2 {
		t.Errorf("expected 2 messages, got: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})

	l.Info("indexed", map[string]interface{}{"files": 3})

	var e struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if e.Level != "info" || e.Message != "indexed" || e.Fields["files"] != float64(3) {
		t.Errorf("entry wrong: %+v", e)
	}
}

func TestHumanFieldOrderDeterministic(t *testing.T) {
	fields := map[string]interface{}{"zeta": 1, "alpha": 2, "mid": 3}

	var first string
	for i := 0; i < 5; i++ {
		var buf bytes.Buffer
		NewLogger(Config{Format: HumanFormat, Level: InfoLevel, Output: &buf}).Info("x", fields)
		line := buf.String()
		// Strip the timestamp prefix before comparing.
		idx := strings.Index(line, "[")
		if i == 0 {
			first = line[idx:]
			if !strings.Contains(first, "alpha=2 mid=3 zeta=1") {
				t.Fatalf("fields not sorted: %s", first)
			}
			continue
		}
		if line[idx:] != first {
			t.Fatalf("field order unstable: %q vs %q", line[idx:], first)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != DebugLevel || ParseLevel("bogus") != InfoLevel {
		t.Error("ParseLevel mapping wrong")
	}
}
