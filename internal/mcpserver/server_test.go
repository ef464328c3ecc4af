package mcpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"voxform/internal/domain"
	"voxform/internal/extractor"
	"voxform/internal/extractor/pattern"
	"voxform/internal/mcpserver"
	"voxform/internal/port"
	"voxform/internal/service"
	"voxform/internal/session"
	"voxform/internal/validator"
	"voxform/mocks"
)

type toolResponse struct {
	Text    string
	IsError bool
}

func newServer(t *testing.T) *server.MCPServer {
	t.Helper()
	return newServerWith(t, pattern.New())
}

func newServerWith(t *testing.T, text ...port.FieldExtractor) *server.MCPServer {
	t.Helper()
	chain := extractor.NewChain(domain.InputText, text)
	svc := service.NewFormService(service.FormServiceDeps{
		TextChain:      chain,
		AudioChain:     extractor.NewChain(domain.InputAudio, nil),
		Sessions:       session.NewManager(session.NewMemoryStore(0)),
		Validators:     validator.NewDefaultRegistry(),
		MaxInputLength: 2000,
	})
	return mcpserver.NewServer(svc, "test")
}

func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]any) toolResponse {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(srv.HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp), "raw: %s", raw)
	require.Nil(t, resp.Error)
	require.NotEmpty(t, resp.Result.Content)
	return toolResponse{Text: resp.Result.Content[0].Text, IsError: resp.Result.IsError}
}

func decodeResult(t *testing.T, text string) domain.ProcessResult {
	t.Helper()
	var res domain.ProcessResult
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	return res
}

func TestFillThenForm(t *testing.T) {
	srv := newServer(t)

	out := callTool(t, srv, mcpserver.ToolFill, map[string]any{
		"session_id": "agent-1",
		"text":       "My name is John Doe, email is john at example dot com",
	})
	assert.False(t, out.IsError)
	res := decodeResult(t, out.Text)
	assert.Equal(t, "John Doe", res.Fields["name"])
	assert.Equal(t, []string{"phone", "address"}, res.Missing)

	out = callTool(t, srv, mcpserver.ToolForm, map[string]any{"session_id": "agent-1"})
	assert.Equal(t, "john@example.com", decodeResult(t, out.Text).Fields["email"])
}

func TestFill_MissingArguments(t *testing.T) {
	srv := newServer(t)

	out := callTool(t, srv, mcpserver.ToolFill, map[string]any{"session_id": "agent-1"})
	assert.True(t, out.IsError)
	assert.Contains(t, out.Text, "text is required")
}

func TestFill_UnknownBackend(t *testing.T) {
	srv := newServer(t)

	out := callTool(t, srv, mcpserver.ToolFill, map[string]any{
		"session_id": "agent-1",
		"text":       "hello",
		"backend":    "openai",
	})
	assert.True(t, out.IsError)
	assert.Contains(t, out.Text, "fill error")
}

func TestFill_NothingFoundIsNotAnError(t *testing.T) {
	srv := newServer(t)

	out := callTool(t, srv, mcpserver.ToolFill, map[string]any{
		"session_id": "agent-2",
		"text":       "nothing useful here",
	})
	assert.False(t, out.IsError)
	res := decodeResult(t, out.Text)
	assert.True(t, res.Success)
	assert.Len(t, res.Missing, 4)
}

func TestFill_ExhaustedIsToolError(t *testing.T) {
	broken := mocks.NewMockFieldExtractor("openai")
	broken.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	srv := newServerWith(t, broken)

	out := callTool(t, srv, mcpserver.ToolFill, map[string]any{
		"session_id": "agent-2",
		"text":       "nothing useful here",
	})
	assert.True(t, out.IsError)
	res := decodeResult(t, out.Text)
	assert.False(t, res.Success)
	assert.Equal(t, service.ExhaustedMessage, res.Message)
}

func TestReset(t *testing.T) {
	srv := newServer(t)
	callTool(t, srv, mcpserver.ToolFill, map[string]any{"session_id": "agent-3", "text": "my name is Jane Roe"})

	out := callTool(t, srv, mcpserver.ToolReset, map[string]any{"session_id": "agent-3"})
	res := decodeResult(t, out.Text)
	assert.Empty(t, res.Fields)
	assert.Len(t, res.Missing, 4)
}

func TestProviders(t *testing.T) {
	srv := newServer(t)

	out := callTool(t, srv, mcpserver.ToolProviders, nil)
	assert.False(t, out.IsError)
	assert.Contains(t, out.Text, `"name": "demo"`)
}
