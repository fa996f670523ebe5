package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverFixture(t *testing.T) (*Server, string) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"),
		[]byte("// TODO: alpha\n// FIXME(bob): beta\n"), 0644))

	s, err := NewServer(root, false)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, root
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func TestNewServer_RejectsBadRoot(t *testing.T) {
	_, err := NewServer(filepath.Join(t.TempDir(), "missing"), false)
	require.Error(t, err)
}

func TestScanWorkspaceTool(t *testing.T) {
	s, _ := serverFixture(t)

	result, err := s.handleScanWorkspace(context.Background(), callRequest("scan_workspace", nil))
	require.NoError(t, err)

	decoded := resultJSON(t, result)
	assert.Equal(t, float64(1), decoded["files_scanned"])
	assert.Equal(t, float64(2), decoded["annotations"])
}

func TestQueryAnnotationsTool(t *testing.T) {
	s, _ := serverFixture(t)

	_, err := s.handleScanWorkspace(context.Background(), callRequest("scan_workspace", nil))
	require.NoError(t, err)

	result, err := s.handleQueryAnnotations(context.Background(),
		callRequest("query_annotations", map[string]interface{}{"filter": "alpha"}))
	require.NoError(t, err)

	decoded := resultJSON(t, result)
	assert.Equal(t, float64(1), decoded["total"])
	annotations := decoded["annotations"].([]interface{})
	require.Len(t, annotations, 1)
	first := annotations[0].(map[string]interface{})
	assert.Equal(t, "TODO", first["kind"])
	assert.Equal(t, "alpha", first["text"])
	assert.Equal(t, "a.go", first["file"])
}

func TestQueryAnnotationsTool_Grouped(t *testing.T) {
	s, _ := serverFixture(t)

	_, err := s.handleScanWorkspace(context.Background(), callRequest("scan_workspace", nil))
	require.NoError(t, err)

	result, err := s.handleQueryAnnotations(context.Background(),
		callRequest("query_annotations", map[string]interface{}{"group_by_kind": true}))
	require.NoError(t, err)

	decoded := resultJSON(t, result)
	groups := decoded["groups"].(map[string]interface{})
	assert.Len(t, groups, 2)
	assert.Contains(t, groups, "TODO")
	assert.Contains(t, groups, "FIXME")
}

func TestQueryAnnotationsTool_InvalidLimit(t *testing.T) {
	s, _ := serverFixture(t)

	_, err := s.handleQueryAnnotations(context.Background(),
		callRequest("query_annotations", map[string]interface{}{"limit": float64(0)}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestSetScopeTool(t *testing.T) {
	s, _ := serverFixture(t)

	result, err := s.handleSetScope(context.Background(),
		callRequest("set_scope", map[string]interface{}{"scope": "all"}))
	require.NoError(t, err)
	assert.Equal(t, "all", resultJSON(t, result)["scope"])

	_, err = s.handleSetScope(context.Background(),
		callRequest("set_scope", map[string]interface{}{"scope": "everything"}))
	require.Error(t, err)
}

func TestGetStatusTool(t *testing.T) {
	s, root := serverFixture(t)

	_, err := s.handleScanWorkspace(context.Background(), callRequest("scan_workspace", nil))
	require.NoError(t, err)

	result, err := s.handleGetStatus(context.Background(), callRequest("get_status", nil))
	require.NoError(t, err)

	decoded := resultJSON(t, result)
	assert.Equal(t, root, decoded["root"])
	assert.Equal(t, false, decoded["watching"])
	index := decoded["index"].(map[string]interface{})
	assert.Equal(t, float64(1), index["files"])
	assert.Equal(t, float64(2), index["annotations"])
}

func TestMCPError(t *testing.T) {
	err := newMCPError(ErrorCodeScanInProgress, "busy", nil)
	assert.Equal(t, "MCP error -32001: busy", err.Error())
}
