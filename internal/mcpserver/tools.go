package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gocontext/retrieval/internal/pipeline"
	"github.com/gocontext/retrieval/pkg/types"
)

// MCP error codes, mirrored from the JSON-RPC reserved range plus this
// server's own application-specific block.
const (
	ErrorCodeInvalidParams = -32602
	ErrorCodeInternalError = -32603
	ErrorCodeProjectError  = -32001
)

// MCPError is a structured MCP protocol error.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

func (s *Server) handleIndexCodebase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requireStringArg(args, "path")
	if err != nil {
		return nil, err
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{"reason": err.Error()})
	}
	forceRebuild := getBoolDefault(args, "force_rebuild", false)

	p, err := s.getOrBuildProject(ctx, path, forceRebuild)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "index failed", map[string]interface{}{"error": err.Error()})
	}

	g := p.manager.GetGraph()
	response := map[string]interface{}{
		"indexed": true,
		"path":    path,
		"nodes":   len(g.GetAllNodes()),
		"edges":   len(g.GetAllEdges()),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func (s *Server) handleRetrieveContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requireStringArg(args, "path")
	if err != nil {
		return nil, err
	}
	query, err := requireStringArg(args, "query")
	if err != nil {
		return nil, err
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{"reason": err.Error()})
	}

	p, err := s.getOrBuildProject(ctx, path, false)
	if err != nil {
		return nil, newMCPError(ErrorCodeProjectError, "project not ready", map[string]interface{}{"error": err.Error()})
	}

	req := pipeline.Request{
		Query:       query,
		TargetPath:  getStringDefault(args, "target_path", ""),
		RecentPaths: getStringArray(args, "recent_paths"),
		GroundTruth: getStringArray(args, "ground_truth"),
		EvalConfig:  types.DefaultEvaluationConfig(),
	}

	result, err := p.pipeline.Run(ctx, req)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "retrieval failed", map[string]interface{}{"error": err.Error()})
	}

	response := map[string]interface{}{
		"context":    result.Context.Formatted,
		"tokensUsed": result.Context.TokensUsed,
		"iterations": result.Iterations,
		"pass":       result.Evaluation.Pass,
		"precision":  result.Evaluation.Precision,
		"recall":     result.Evaluation.Recall,
		"coverage":   result.Evaluation.Coverage,
		"actions":    result.Evaluation.Actions,
		"trace":      result.Trace.NodeNames(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requireStringArg(args, "path")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	p, indexed := s.projects[path]
	s.mu.Unlock()
	if !indexed {
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"indexed": false,
			"path":    path,
			"message": "project not indexed; call index_codebase first",
		})), nil
	}

	g := p.manager.GetGraph()
	response := map[string]interface{}{
		"indexed": true,
		"path":    path,
		"nodes":   len(g.GetAllNodes()),
		"edges":   len(g.GetAllEdges()),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func requireStringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{"param": key})
	}
	return v, nil
}

func getBoolDefault(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

func getStringDefault(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return def
}

func getStringArray(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func validatePath(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory")
	}
	return nil
}

func formatJSON(data map[string]interface{}) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(b)
}
