package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func indexCodebaseTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_codebase",
		Description: "Build or refresh the code graph for a project root",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root",
				},
				"force_rebuild": map[string]interface{}{
					"type":        "boolean",
					"description": "Rebuild from source even if a cached graph exists",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

func retrieveContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "retrieve_context",
		Description: "Resolve a change request to the minimal dependency-aware code bundle needed to answer it safely",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the indexed project root",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural-language change request",
				},
				"target_path": map[string]interface{}{
					"type":        "string",
					"description": "File known to be the edit target, bypassing resolution",
				},
				"recent_paths": map[string]interface{}{
					"type":        "array",
					"description": "Recently-focused file paths to bias resolution toward",
					"items":       map[string]interface{}{"type": "string"},
				},
				"ground_truth": map[string]interface{}{
					"type":        "array",
					"description": "Known-correct file paths, for evaluation against a benchmark task",
					"items":       map[string]interface{}{"type": "string"},
				},
				"token_budget": map[string]interface{}{
					"type":        "integer",
					"description": "Not read by the server: the packed context always starts at a 6000-token budget and widens automatically on iteration",
					"default":     6000,
				},
			},
			Required: []string{"path", "query"},
		},
	}
}

func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report code graph size (node and edge counts) for a project; overlay state is not reported",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the indexed project root",
				},
			},
			Required: []string{"path"},
		},
	}
}
