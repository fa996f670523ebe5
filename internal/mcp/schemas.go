package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// scanWorkspaceTool returns the tool definition for scan_workspace
func scanWorkspaceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "scan_workspace",
		Description: "Scan the workspace for inline annotations (TODO, FIXME, NOTE, HACK, BUG)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// queryAnnotationsTool returns the tool definition for query_annotations
func queryAnnotationsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "query_annotations",
		Description: "Query indexed annotations, optionally filtered and grouped by kind",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"filter": map[string]interface{}{
					"type":        "string",
					"description": "Case-insensitive substring matched against annotation text, file path, or kind name",
				},
				"scope": map[string]interface{}{
					"type":        "string",
					"description": "Query scope: the active document or the whole workspace",
					"enum":        []string{"current", "all"},
					"default":     "all",
				},
				"group_by_kind": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, group results by annotation kind",
					"default":     false,
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of annotations to return (1-500)",
					"default":     100,
					"minimum":     1,
					"maximum":     500,
				},
			},
		},
	}
}

// setScopeTool returns the tool definition for set_scope
func setScopeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "set_scope",
		Description: "Switch the engine between active-document and whole-workspace mode",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scope": map[string]interface{}{
					"type":        "string",
					"description": "Target scope",
					"enum":        []string{"current", "all"},
				},
			},
			Required: []string{"scope"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report index contents and engine state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
