// Package mcpserver exposes the form service as Model Context Protocol tools
// so an agent can fill a form one utterance at a time.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"voxform/internal/domain"
	"voxform/internal/service"
)

// Tool names.
const (
	ToolFill      = "voxform_fill"
	ToolForm      = "voxform_form"
	ToolReset     = "voxform_reset"
	ToolProviders = "voxform_providers"
)

// NewServer creates an MCP server with every voxform tool registered.
func NewServer(svc service.FormService, version string) *server.MCPServer {
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"Voxform",
		version,
		server.WithToolCapabilities(false),
	)

	registerFillTool(s, svc)
	registerFormTool(s, svc)
	registerResetTool(s, svc)
	registerProvidersTool(s, svc)
	return s
}

func registerFillTool(s *server.MCPServer, svc service.FormService) {
	tool := mcp.NewTool(ToolFill,
		mcp.WithDescription("Extract name, email, phone and address from one utterance and merge them into the session's form. Returns the updated form and what is still missing."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Form session identifier. Any stable string; a new one starts an empty form."),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("What the user said, e.g. 'my name is John Doe and my email is john at example dot com'"),
		),
		mcp.WithString("backend",
			mcp.Description("Restrict extraction to one configured provider (e.g. 'demo', 'ollama', 'openai'). Empty = full chain."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError("text is required"), nil
		}

		res, err := svc.ProcessText(ctx, service.ProcessTextInput{
			SessionID: sessionID,
			Text:      text,
			Backend:   req.GetString("backend", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("fill error: %v", err)), nil
		}
		return resultJSON(res, !res.Success), nil
	})
}

func registerFormTool(s *server.MCPServer, svc service.FormService) {
	tool := mcp.NewTool(ToolForm,
		mcp.WithDescription("Show the current state of a session's form."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Form session identifier"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		res, err := svc.GetForm(ctx, sessionID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("form error: %v", err)), nil
		}
		return resultJSON(res, false), nil
	})
}

func registerResetTool(s *server.MCPServer, svc service.FormService) {
	tool := mcp.NewTool(ToolReset,
		mcp.WithDescription("Clear every field of a session's form."),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Form session identifier"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		res, err := svc.Reset(ctx, sessionID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reset error: %v", err)), nil
		}
		return resultJSON(res, false), nil
	})
}

func registerProvidersTool(s *server.MCPServer, svc service.FormService) {
	tool := mcp.NewTool(ToolProviders,
		mcp.WithDescription("List the configured extraction providers and whether each is currently available."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		report, err := svc.ProviderStatus(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("status error: %v", err)), nil
		}
		data, _ := json.MarshalIndent(report, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

// resultJSON renders res as indented JSON. An exhausted chain is flagged as a
// tool error so the agent knows to rephrase, but the form is still included.
func resultJSON(res *domain.ProcessResult, isError bool) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(res, "", "  ")
	out := mcp.NewToolResultText(string(data))
	out.IsError = isError
	return out
}
