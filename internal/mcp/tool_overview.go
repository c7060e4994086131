package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/pymap/internal/indexer"
	"github.com/mvp-joe/pymap/internal/store"
)

// AddProjectOverviewTool registers the project_overview tool with an MCP
// server.
func AddProjectOverviewTool(s *server.MCPServer, provider IndexProvider) {
	tool := mcp.NewTool(
		"project_overview",
		mcp.WithDescription(`Overview of the indexed Python project: root path, directory/file/line/byte counts, local module count, external libraries, import cycles, and files that failed analysis.`),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createProjectOverviewHandler(provider))
}

// createProjectOverviewHandler creates the handler function for the
// project_overview tool.
func createProjectOverviewHandler(provider IndexProvider) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		snapshot := provider.Snapshot()
		graph := provider.Graph()

		cycles, err := graph.Cycles()
		if err != nil {
			return nil, fmt.Errorf("failed to compute import cycles: %w", err)
		}

		externals := snapshot.Externals
		if externals == nil {
			externals = []string{}
		}

		response := &ProjectOverviewResponse{
			Root:        snapshot.Root,
			IndexedAt:   snapshot.IndexedAt,
			Stats:       snapshot.Stats,
			ModuleCount: graph.Order(),
			ImportEdges: graph.Size(),
			Externals:   externals,
			Cycles:      cycles,
			Failures:    snapshot.Failures,
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

// ProjectOverviewResponse represents the JSON response schema for the
// project_overview MCP tool.
type ProjectOverviewResponse struct {
	Root        string                `json:"root"`
	IndexedAt   time.Time             `json:"indexed_at"`
	Stats       indexer.Stats         `json:"stats"`
	ModuleCount int                   `json:"module_count"`
	ImportEdges int                   `json:"import_edges"`
	Externals   []string              `json:"externals"`
	Cycles      [][]string            `json:"cycles,omitempty"`
	Failures    []store.FailureRecord `json:"failures,omitempty"`
	Metadata    ResponseMetadata      `json:"metadata"`
}
