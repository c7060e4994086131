package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/pymap/internal/store"
)

// AddFileDependenciesTool registers the file_dependencies tool with an
// MCP server.
func AddFileDependenciesTool(s *server.MCPServer, provider IndexProvider) {
	tool := mcp.NewTool(
		"file_dependencies",
		mcp.WithDescription(`Dependencies of one indexed Python file: the modules it imports with local/external marking, the functions and classes it uses, and the local modules that import it back.

The path is relative to the indexed project root, e.g. "helpers/util.py".`),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Project-relative path of the Python file")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createFileDependenciesHandler(provider))
}

// createFileDependenciesHandler creates the handler function for the
// file_dependencies tool.
func createFileDependenciesHandler(provider IndexProvider) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		path, ok := argsMap["path"].(string)
		if !ok || path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}

		file := provider.Snapshot().File(path)
		if file == nil {
			return mcp.NewToolResultError(fmt.Sprintf("file %q is not in the index", path)), nil
		}

		imports := file.Imports
		if imports == nil {
			imports = []store.ImportRecord{}
		}
		usedNames := file.Calls
		if usedNames == nil {
			usedNames = []string{}
		}
		importedBy := provider.Graph().ImportedBy(file.Module)
		if importedBy == nil {
			importedBy = []string{}
		}

		response := &FileDependenciesResponse{
			Path:       file.Path,
			Module:     file.Module,
			Failed:     file.Failed,
			Imports:    imports,
			UsedNames:  usedNames,
			ImportedBy: importedBy,
			Metadata: ResponseMetadata{
				TookMs: int(time.Since(startTime).Milliseconds()),
				Source: "database",
			},
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// FileDependenciesResponse represents the JSON response schema for the
// file_dependencies MCP tool.
type FileDependenciesResponse struct {
	Path       string               `json:"path"`
	Module     string               `json:"module"`
	Failed     bool                 `json:"failed,omitempty"`
	Imports    []store.ImportRecord `json:"imports"`
	UsedNames  []string             `json:"used_names"`
	ImportedBy []string             `json:"imported_by"`
	Metadata   ResponseMetadata     `json:"metadata"`
}
