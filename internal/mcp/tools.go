package mcp

import (
	"github.com/mvp-joe/pymap/internal/modgraph"
	"github.com/mvp-joe/pymap/internal/search"
	"github.com/mvp-joe/pymap/internal/store"
)

// IndexProvider hands tool handlers the current index state. The server
// swaps its state when the database changes, so handlers fetch it per
// call instead of capturing it at registration time.
type IndexProvider interface {
	Snapshot() *store.Snapshot
	Graph() *modgraph.Graph
	Searcher() search.Searcher
}

// ResponseMetadata contains timing and source information for tool
// responses.
type ResponseMetadata struct {
	TookMs int    `json:"took_ms"`
	Source string `json:"source"`
}
