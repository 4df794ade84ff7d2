package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/suatkocar/codegraph/internal/config"
	"github.com/suatkocar/codegraph/internal/contextpack"
	cerrors "github.com/suatkocar/codegraph/internal/errors"
	"github.com/suatkocar/codegraph/internal/query"
	"github.com/suatkocar/codegraph/internal/version"
)

// MaxMessageSize bounds a single message (1MB): enough for large tool
// responses, small enough to fail fast on garbage input.
const MaxMessageSize = 1024 * 1024

// Server serves the filtered tool registry over newline-delimited
// JSON-RPC on a reader/writer pair (normally stdio).
type Server struct {
	tools   []Tool
	byName  map[string]Tool
	cfg     *config.Config
	logger  *slog.Logger
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner

	authed bool
}

// NewServer builds a server over the engine and assembler, with the
// registry already filtered by cfg.
func NewServer(engine *query.Engine, builder *contextpack.Builder, cfg *config.Config, logger *slog.Logger, stdin io.Reader, stdout io.Writer) *Server {
	tools := FilterTools(buildRegistry(engine, builder), cfg)
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}
	return &Server{
		tools:  tools,
		byName: byName,
		cfg:    cfg,
		logger: logger,
		stdin:  stdin,
		stdout: stdout,
		authed: cfg.Auth.TokenHash == "",
	}
}

// Tools exposes the filtered registry, primarily for tests and the CLI's
// tools listing.
func (s *Server) Tools() []Tool {
	return s.tools
}

// Run serves until EOF or ctx cancellation.
func (s *Server) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := s.readMessage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			s.write(NewError(nil, ParseError, err.Error(), nil))
			continue
		}
		if msg.IsNotification() {
			continue
		}
		if !msg.IsRequest() {
			s.write(NewError(msg.Id, InvalidRequest, "expected a request", nil))
			continue
		}
		s.write(s.handle(ctx, msg))
	}
}

func (s *Server) handle(ctx context.Context, msg *Message) *Message {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "ping":
		return NewResult(msg.Id, map[string]interface{}{})
	case "tools/list":
		if !s.authed {
			return NewError(msg.Id, InvalidRequest, "not authorized", nil)
		}
		return NewResult(msg.Id, map[string]interface{}{"tools": Definitions(s.tools)})
	case "tools/call":
		if !s.authed {
			return NewError(msg.Id, InvalidRequest, "not authorized", nil)
		}
		return s.handleCall(ctx, msg)
	default:
		return NewError(msg.Id, MethodNotFound, fmt.Sprintf("unknown method %q", msg.Method), nil)
	}
}

func (s *Server) handleInitialize(msg *Message) *Message {
	params := paramsMap(msg.Params)
	if hash := s.cfg.Auth.TokenHash; hash != "" {
		token, _ := params["authToken"].(string)
		if !VerifyToken(hash, token) {
			return NewError(msg.Id, InvalidRequest, "invalid auth token", nil)
		}
		s.authed = true
	}
	return NewResult(msg.Id, map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"serverInfo": map[string]interface{}{
			"name":    "codegraph",
			"version": version.Version,
		},
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
	})
}

func (s *Server) handleCall(ctx context.Context, msg *Message) *Message {
	params := paramsMap(msg.Params)
	name, _ := params["name"].(string)
	tool, ok := s.byName[name]
	if !ok {
		return NewError(msg.Id, MethodNotFound, fmt.Sprintf("unknown tool %q", name), nil)
	}

	args := paramsMap(params["arguments"])
	result, err := tool.Invoke(ctx, args)
	if err != nil {
		return toolError(msg.Id, err)
	}

	// Tool output rides in an MCP content block as canonical JSON; struct
	// field order keeps the bytes identical for identical inputs.
	payload, err := json.Marshal(result)
	if err != nil {
		return NewError(msg.Id, InternalError, "encode tool result", nil)
	}
	return NewResult(msg.Id, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(payload)},
		},
	})
}

// toolError maps engine error codes onto JSON-RPC errors so clients can
// tell bad input from genuine failure.
func toolError(id interface{}, err error) *Message {
	var rpcErr *RPCError
	if e, ok := err.(*RPCError); ok {
		rpcErr = e
	} else {
		code := InternalError
		switch cerrors.CodeOf(err) {
		case cerrors.InvalidInput:
			code = InvalidParams
		case cerrors.NotFound:
			code = InvalidParams
		case cerrors.Cancelled:
			code = InternalError
		}
		rpcErr = &RPCError{Code: code, Message: err.Error(), Data: string(cerrors.CodeOf(err))}
	}
	return &Message{Jsonrpc: "2.0", Id: id, Error: rpcErr}
}

func (s *Server) readMessage() (*Message, error) {
	if s.scanner == nil {
		s.scanner = bufio.NewScanner(s.stdin)
		s.scanner.Buffer(make([]byte, MaxMessageSize), MaxMessageSize)
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	var msg Message
	if err := json.Unmarshal(s.scanner.Bytes(), &msg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	return &msg, nil
}

func (s *Server) write(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("encode response", "error", err)
		}
		return
	}
	fmt.Fprintf(s.stdout, "%s\n", data)
}

func paramsMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}
