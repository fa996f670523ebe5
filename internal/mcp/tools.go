package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codemarks/codemarks/internal/engine"
	"github.com/codemarks/codemarks/internal/index"
	"github.com/codemarks/codemarks/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodeScanInProgress = -32001 // Another workspace scan is already running
)

// handleScanWorkspace handles the scan_workspace tool invocation
func (s *Server) handleScanWorkspace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.engine.ScanWorkspace(ctx)
	if errors.Is(err, engine.ErrScanInFlight) {
		return nil, newMCPError(ErrorCodeScanInProgress, "a workspace scan is already running", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "workspace scan failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"files_scanned": stats.FilesScanned,
		"files_skipped": stats.FilesSkipped,
		"files_failed":  stats.FilesFailed,
		"annotations":   stats.Annotations,
		"duration_ms":   stats.Duration.Milliseconds(),
	}
	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleQueryAnnotations handles the query_annotations tool invocation
func (s *Server) handleQueryAnnotations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	scope, err := types.ParseScope(getStringDefault(args, "scope", "all"))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid scope", map[string]interface{}{
			"param":   "scope",
			"allowed": []string{string(types.ScopeCurrent), string(types.ScopeAll)},
		})
	}

	limit := getIntDefault(args, "limit", 100)
	if limit < 1 || limit > 500 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 500", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	filter := getStringDefault(args, "filter", "")
	annotations := s.engine.Query(scope, filter)

	total := len(annotations)
	if total > limit {
		annotations = annotations[:limit]
	}

	response := map[string]interface{}{
		"total":    total,
		"returned": len(annotations),
		"scope":    string(scope),
	}

	if getBoolDefault(args, "group_by_kind", false) {
		grouped := map[string][]map[string]interface{}{}
		for kind, group := range index.GroupByKind(annotations) {
			grouped[string(kind)] = formatAnnotations(group)
		}
		response["groups"] = grouped
	} else {
		response["annotations"] = formatAnnotations(annotations)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSetScope handles the set_scope tool invocation
func (s *Server) handleSetScope(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	raw, ok := args["scope"].(string)
	if !ok || raw == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "scope parameter is required", map[string]interface{}{
			"param":  "scope",
			"reason": "missing or empty",
		})
	}

	scope, err := types.ParseScope(raw)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid scope", map[string]interface{}{
			"param":   "scope",
			"value":   raw,
			"allowed": []string{string(types.ScopeCurrent), string(types.ScopeAll)},
		})
	}

	s.engine.SetScope(scope)

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"scope": string(scope),
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.engine.Statistics()

	response := map[string]interface{}{
		"root":  s.root,
		"scope": string(s.engine.Scope()),
		"index": map[string]interface{}{
			"files":       stats.Files,
			"annotations": stats.Annotations,
		},
		"watching": s.watcher != nil,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// formatAnnotations renders annotations for a tool response
func formatAnnotations(annotations []types.Annotation) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(annotations))
	for _, ann := range annotations {
		entry := map[string]interface{}{
			"kind":   string(ann.Kind),
			"text":   ann.Text,
			"file":   ann.File,
			"line":   ann.Line,
			"column": ann.Column,
		}
		if ann.Author != "" {
			entry["author"] = ann.Author
		}
		out = append(out, entry)
	}
	return out
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
