package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/pymap/internal/search"
)

// AddSearchDefinitionsTool registers the search_definitions tool with an
// MCP server. This function is composable - it can be combined with the
// other tool registrations.
func AddSearchDefinitionsTool(s *server.MCPServer, provider IndexProvider) {
	tool := mcp.NewTool(
		"search_definitions",
		mcp.WithDescription(`Full-text search over indexed Python definitions using bleve query syntax.

Documents are modules, classes, functions, and methods together with
their docstring annotations.

Supports:
- Field scoping: name:parse, annotation:retry, module:helpers, kind:Class
- Boolean operators: AND, OR, NOT, +required, -excluded
- Phrase search: "connection pool"
- Wildcards: pars* (prefix matching)
- Fuzzy: conection~1 (edit distance)

Examples:
- scheduler - Find "scheduler" in any name or docstring
- name:run AND kind:Function - Functions named run
- annotation:"exit code" - Exact phrase in docstrings`),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Bleve query string with field scoping and boolean operators")),
		mcp.WithString("kind",
			mcp.Description(`Exact kind filter: "Module", "Class", "Function", or "Async Function"`)),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 15)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSearchDefinitionsHandler(provider))
}

// createSearchDefinitionsHandler creates the handler function for the
// search_definitions tool.
func createSearchDefinitionsHandler(provider IndexProvider) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		query, ok := argsMap["query"].(string)
		if !ok || query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		options := search.DefaultOptions()
		if kind, ok := argsMap["kind"].(string); ok {
			options.Kind = kind
		}
		if limit, ok := argsMap["limit"].(float64); ok {
			options.Limit = int(limit)
		}

		results, err := provider.Searcher().Search(ctx, query, options)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		response := &SearchDefinitionsResponse{
			Query:         query,
			Results:       results,
			TotalFound:    len(results),
			TotalReturned: len(results),
			Metadata: ResponseMetadata{
				TookMs: int(time.Since(startTime).Milliseconds()),
				Source: "search",
			},
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		// Return as text result (mcp-go convention)
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// SearchDefinitionsResponse represents the JSON response schema for the
// search_definitions MCP tool.
type SearchDefinitionsResponse struct {
	Query         string           `json:"query"`
	Results       []*search.Result `json:"results"`
	TotalFound    int              `json:"total_found"`
	TotalReturned int              `json:"total_returned"`
	Metadata      ResponseMetadata `json:"metadata"`
}
