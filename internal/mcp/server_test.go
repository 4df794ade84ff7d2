package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/suatkocar/codegraph/internal/config"
	"github.com/suatkocar/codegraph/internal/contextpack"
	"github.com/suatkocar/codegraph/internal/query"
	"github.com/suatkocar/codegraph/internal/storage"
	"github.com/suatkocar/codegraph/internal/testutil"
)

func newServerFixture(t *testing.T, cfg *config.Config, input string) (*Server, *bytes.Buffer) {
	t.Helper()
	db, repo := testutil.OpenStore(t)

	n := testutil.Node("n-handle", "handler.go", storage.KindFunction, "handleRequest")
	n.Signature = "func handleRequest(w http.ResponseWriter, r *http.Request)"
	testutil.SeedFile(t, repo, "handler.go", []storage.Node{n}, nil)

	engine := query.NewEngine(db, nil, query.DefaultOptions(), testutil.QuietLogger())
	builder := contextpack.NewBuilder(engine, t.TempDir())

	var out bytes.Buffer
	srv := NewServer(engine, builder, cfg, nil, strings.NewReader(input), &out)
	return srv, &out
}

func decodeResponses(t *testing.T, out *bytes.Buffer) []Message {
	t.Helper()
	var msgs []Message
	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, MaxMessageSize), MaxMessageSize)
	for scanner.Scan() {
		var m Message
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Fatalf("bad response line %q: %v", scanner.Text(), err)
		}
		msgs = append(msgs, m)
	}
	return msgs
}

func TestServer_ListAndCall(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}
{"jsonrpc":"2.0","id":2,"method":"tools/list"}
{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"search","arguments":{"query":"handleRequest"}}}
`
	srv, out := newServerFixture(t, config.DefaultConfig(), input)
	if err := srv.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	msgs := decodeResponses(t, out)
	if len(msgs) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(msgs))
	}
	for _, m := range msgs {
		if m.Error != nil {
			t.Fatalf("unexpected error response: %+v", m.Error)
		}
	}

	// The search call must find the seeded symbol.
	result := msgs[2].Result.(map[string]interface{})
	content := result["content"].([]interface{})
	text := content[0].(map[string]interface{})["text"].(string)
	if !strings.Contains(text, "handleRequest") {
		t.Errorf("search result missing hit: %s", text)
	}
}

func TestServer_UnknownToolAndMethod(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope","arguments":{}}}
{"jsonrpc":"2.0","id":2,"method":"bogus/method"}
`
	srv, out := newServerFixture(t, config.DefaultConfig(), input)
	if err := srv.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	msgs := decodeResponses(t, out)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.Error == nil || m.Error.Code != MethodNotFound {
			t.Errorf("response %d should be MethodNotFound, got %+v", i, m.Error)
		}
	}
}

func TestServer_InvalidParams(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search","arguments":{}}}
`
	srv, out := newServerFixture(t, config.DefaultConfig(), input)
	if err := srv.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	msgs := decodeResponses(t, out)
	if len(msgs) != 1 || msgs[0].Error == nil || msgs[0].Error.Code != InvalidParams {
		t.Fatalf("missing required param should be InvalidParams: %+v", msgs)
	}
}

func TestServer_AuthGate(t *testing.T) {
	token, hash, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Auth.TokenHash = hash

	// Without the token, tools/list is refused.
	srv, out := newServerFixture(t, cfg, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`+"\n")
	if err := srv.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	msgs := decodeResponses(t, out)
	if len(msgs) != 1 || msgs[0].Error == nil {
		t.Fatalf("unauthenticated list should fail: %+v", msgs)
	}

	// With it, initialize unlocks the session.
	input := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"authToken":%q}}
{"jsonrpc":"2.0","id":2,"method":"tools/list"}
`, token)
	srv, out = newServerFixture(t, cfg, input)
	if err := srv.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	msgs = decodeResponses(t, out)
	if len(msgs) != 2 || msgs[0].Error != nil || msgs[1].Error != nil {
		t.Fatalf("authenticated session should succeed: %+v", msgs)
	}
}

func TestVerifyToken(t *testing.T) {
	token, hash, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if !VerifyToken(hash, token) {
		t.Error("generated token should verify against its own hash")
	}
	if VerifyToken(hash, "wrong") {
		t.Error("wrong token verified")
	}
	if !VerifyToken("", "anything") {
		t.Error("empty hash disables auth and should verify")
	}
}

func TestServer_DeterministicOutput(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search","arguments":{"query":"handleRequest"}}}
`
	srv1, out1 := newServerFixture(t, config.DefaultConfig(), input)
	if err := srv1.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	srv2, out2 := newServerFixture(t, config.DefaultConfig(), input)
	if err := srv2.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out1.String() != out2.String() {
		t.Errorf("identical input and index state produced different bytes:\n%s\nvs\n%s", out1.String(), out2.String())
	}
}
