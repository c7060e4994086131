// Package mcp serves the project index to MCP clients over stdio. Tools
// read from the SQLite index and never mutate it; when the database
// changes on disk the server swaps in a fresh snapshot.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/pymap/internal/config"
	"github.com/mvp-joe/pymap/internal/modgraph"
	"github.com/mvp-joe/pymap/internal/search"
	"github.com/mvp-joe/pymap/internal/store"
)

// Server manages the MCP server lifecycle.
type Server struct {
	store    *store.Store
	searcher search.Searcher
	watcher  *DatabaseWatcher
	mcp      *server.MCPServer

	mu       sync.RWMutex // Protects snapshot and graph during reloads
	snapshot *store.Snapshot
	graph    *modgraph.Graph
}

// NewServer loads the index database for the project root and prepares
// an MCP server with all tools registered. The version string is what
// MCP clients see during initialization.
func NewServer(ctx context.Context, rootDir string, cfg *config.Config, version string) (*Server, error) {
	dbPath := cfg.DatabasePath(rootDir)

	st, err := store.OpenExisting(dbPath)
	if err != nil {
		if errors.Is(err, store.ErrNotIndexed) {
			return nil, fmt.Errorf("nothing to serve, run \"pymap index\" first: %w", err)
		}
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	snapshot, err := st.Load(ctx)
	if err != nil {
		st.Close()
		if errors.Is(err, store.ErrNotIndexed) {
			return nil, fmt.Errorf("nothing to serve, run \"pymap index\" first: %w", err)
		}
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	graph, err := modgraph.Build(snapshot)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to build module graph: %w", err)
	}

	searcher, err := search.NewSearcher(ctx, snapshot)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create searcher: %w", err)
	}

	s := &Server{
		store:    st,
		searcher: searcher,
		snapshot: snapshot,
		graph:    graph,
	}

	mcpServer := server.NewMCPServer(
		"pymap",
		version,
		server.WithToolCapabilities(true),
	)
	AddSearchDefinitionsTool(mcpServer, s)
	AddFileDependenciesTool(mcpServer, s)
	AddProjectOverviewTool(mcpServer, s)
	s.mcp = mcpServer

	watcher, err := NewDatabaseWatcher(s, dbPath)
	if err != nil {
		searcher.Close()
		st.Close()
		return nil, fmt.Errorf("failed to create database watcher: %w", err)
	}
	s.watcher = watcher

	return s, nil
}

// Snapshot returns the currently loaded index snapshot.
func (s *Server) Snapshot() *store.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Graph returns the module import graph for the current snapshot.
func (s *Server) Graph() *modgraph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// Searcher returns the full-text searcher. It handles its own locking
// across rebuilds.
func (s *Server) Searcher() search.Searcher {
	return s.searcher
}

// Reload re-reads the database and swaps the snapshot, module graph, and
// search index. On failure the old state stays in place.
func (s *Server) Reload(ctx context.Context) error {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	graph, err := modgraph.Build(snapshot)
	if err != nil {
		return fmt.Errorf("failed to build module graph: %w", err)
	}

	if err := s.searcher.Rebuild(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to rebuild search index: %w", err)
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.graph = graph
	s.mu.Unlock()

	return nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	s.watcher.Start(ctx)
	defer s.watcher.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		cancel()
		return nil
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases all resources.
func (s *Server) Close() error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.searcher != nil {
		s.searcher.Close()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
