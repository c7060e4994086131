// Package search provides full-text search over an indexed project
// snapshot. The index lives entirely in memory and is rebuilt from the
// database snapshot whenever the index changes on disk.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/pymap/internal/indexer/pysrc"
	"github.com/mvp-joe/pymap/internal/store"
)

// KindModule is the synthetic kind under which each indexed file's
// module docstring is searchable. Definition documents use the entity
// kinds from analysis ("Function", "Async Function", "Class").
const KindModule = "Module"

const (
	defaultLimit = 15
	maxLimit     = 100
)

// Searcher defines the interface for full-text search over definitions.
type Searcher interface {
	// Search executes a keyword search using FTS query syntax.
	// Supports field scoping, boolean operators, phrase search, wildcards,
	// and fuzzy matching. Options may be nil (defaults will be applied).
	Search(ctx context.Context, queryStr string, options *Options) ([]*Result, error)

	// Rebuild replaces the index contents with a fresh snapshot.
	Rebuild(ctx context.Context, snapshot *store.Snapshot) error

	// DocCount reports how many documents the index currently holds.
	DocCount() (uint64, error)

	// Close releases resources held by the searcher.
	Close() error
}

// Options narrows a search. The zero value searches every document with
// the default result limit.
type Options struct {
	Kind  string // exact kind filter, e.g. "Class" or "Function"
	Limit int    // maximum results, defaults to 15, capped at 100
}

// DefaultOptions returns the options applied when the caller passes nil.
func DefaultOptions() *Options {
	return &Options{Limit: defaultLimit}
}

// Result is a single search hit with highlighting.
type Result struct {
	Path          string   `json:"path"`
	Module        string   `json:"module"`
	Kind          string   `json:"kind"`
	Name          string   `json:"name"`
	QualifiedName string   `json:"qualified_name"`
	Annotation    string   `json:"annotation,omitempty"`
	Score         float64  `json:"score"`      // Match quality (0-1)
	Highlights    []string `json:"highlights"` // Matching snippets with <em> tags
}

// bleveSearcher implements Searcher using bleve full-text search.
type bleveSearcher struct {
	index bleve.Index
	mu    sync.RWMutex // Protects index during rebuilds
}

// NewSearcher creates a Searcher backed by an in-memory bleve index.
// It indexes every module and definition in the provided snapshot.
func NewSearcher(ctx context.Context, snapshot *store.Snapshot) (Searcher, error) {
	index, err := buildIndex(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	return &bleveSearcher{index: index}, nil
}

// buildIndex creates and populates a fresh in-memory index.
func buildIndex(ctx context.Context, snapshot *store.Snapshot) (bleve.Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	if err := indexSnapshot(ctx, index, snapshot); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index snapshot: %w", err)
	}
	return index, nil
}

// buildIndexMapping creates the index mapping for definition documents.
// All fields are indexed and stored for native filtering and retrieval.
func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	// Annotation field (primary search target) - standard analyzer
	annotationMapping := bleve.NewTextFieldMapping()
	annotationMapping.Analyzer = "standard"
	annotationMapping.Store = true              // Store for highlighting
	annotationMapping.Index = true              // Searchable
	annotationMapping.IncludeTermVectors = true // Enable phrase search

	// Name field (searchable) - standard analyzer
	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = "standard"
	nameMapping.Store = true
	nameMapping.Index = true
	nameMapping.IncludeTermVectors = true

	// Docstring section field (Args/Returns lines) - standard analyzer
	docMapping := bleve.NewTextFieldMapping()
	docMapping.Analyzer = "standard"
	docMapping.Store = true
	docMapping.Index = true
	docMapping.IncludeTermVectors = true

	// Kind field (filterable) - keyword analyzer for exact matching
	kindMapping := bleve.NewTextFieldMapping()
	kindMapping.Analyzer = "keyword"
	kindMapping.Store = true
	kindMapping.Index = true

	// Path and module fields (filterable) - keyword analyzer
	pathMapping := bleve.NewTextFieldMapping()
	pathMapping.Analyzer = "keyword"
	pathMapping.Store = true
	pathMapping.Index = true

	moduleMapping := bleve.NewTextFieldMapping()
	moduleMapping.Analyzer = "keyword"
	moduleMapping.Store = true
	moduleMapping.Index = true

	// Qualified name (stored but not analyzed) - display only
	qualifiedMapping := bleve.NewTextFieldMapping()
	qualifiedMapping.Analyzer = "keyword"
	qualifiedMapping.Store = true
	qualifiedMapping.Index = false

	documentMapping := bleve.NewDocumentMapping()
	documentMapping.AddFieldMappingsAt("annotation", annotationMapping)
	documentMapping.AddFieldMappingsAt("name", nameMapping)
	documentMapping.AddFieldMappingsAt("doc", docMapping)
	documentMapping.AddFieldMappingsAt("kind", kindMapping)
	documentMapping.AddFieldMappingsAt("path", pathMapping)
	documentMapping.AddFieldMappingsAt("module", moduleMapping)
	documentMapping.AddFieldMappingsAt("qualified_name", qualifiedMapping)

	indexMapping.DefaultMapping = documentMapping
	return indexMapping
}

// document pairs a stable ID with the fields bleve indexes for it.
type document struct {
	id     string
	fields map[string]interface{}
}

// indexSnapshot adds snapshot documents to the bleve index in batches.
func indexSnapshot(ctx context.Context, index bleve.Index, snapshot *store.Snapshot) error {
	const batchSize = 1000

	batch := index.NewBatch()
	for i, doc := range snapshotDocuments(snapshot) {
		// Check cancellation periodically
		if i%batchSize == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		if err := batch.Index(doc.id, doc.fields); err != nil {
			return fmt.Errorf("failed to add document %s to batch: %w", doc.id, err)
		}

		// Execute batch every 1000 docs (optimal size)
		if batch.Size() >= batchSize {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}

	// Execute remaining
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}

	return nil
}

// snapshotDocuments flattens a snapshot into bleve documents. Each file
// contributes one module document plus one document per definition,
// methods included. Args and Returns sections are not definitions; their
// lines travel in the parent definition's doc field instead.
func snapshotDocuments(snapshot *store.Snapshot) []document {
	var docs []document
	for _, file := range snapshot.Files {
		if file.Module != "" {
			docs = append(docs, document{
				id: file.Path,
				fields: map[string]interface{}{
					"path":           file.Path,
					"module":         file.Module,
					"kind":           KindModule,
					"name":           file.Module,
					"qualified_name": file.Module,
					"annotation":     file.Doc,
					"doc":            "",
				},
			})
		}
		ordinal := 0
		docs = appendEntityDocuments(docs, file, "", file.Entities, &ordinal)
	}
	return docs
}

// appendEntityDocuments walks a definition tree depth-first. Document IDs
// are path#ordinal so they stay stable for a given snapshot.
func appendEntityDocuments(docs []document, file *store.FileRecord, parent string, entities []pysrc.Entity, ordinal *int) []document {
	for _, entity := range entities {
		if entity.Kind.Section() {
			continue
		}

		qualified := entity.Name
		if parent != "" {
			qualified = parent + "." + entity.Name
		}

		docs = append(docs, document{
			id: fmt.Sprintf("%s#%d", file.Path, *ordinal),
			fields: map[string]interface{}{
				"path":           file.Path,
				"module":         file.Module,
				"kind":           string(entity.Kind),
				"name":           entity.Name,
				"qualified_name": qualified,
				"annotation":     entity.Annotation,
				"doc":            sectionText(entity.Children),
			},
		})
		*ordinal++

		docs = appendEntityDocuments(docs, file, qualified, entity.Children, ordinal)
	}
	return docs
}

// sectionText joins the Args and Returns lines of a definition so that
// parameter and return descriptions stay searchable.
func sectionText(children []pysrc.Entity) string {
	var parts []string
	for _, child := range children {
		if child.Kind.Section() && child.Annotation != "" {
			parts = append(parts, child.Annotation)
		}
	}
	return strings.Join(parts, "\n")
}

// Search executes a keyword search using bleve QueryStringQuery syntax.
func (s *bleveSearcher) Search(ctx context.Context, queryStr string, options *Options) ([]*Result, error) {
	// Apply defaults if options not provided
	if options == nil {
		options = DefaultOptions()
	}

	limit := options.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Build query with filters
	var queries []query.Query
	queries = append(queries, bleve.NewQueryStringQuery(queryStr))

	// Add kind filter if specified
	if options.Kind != "" {
		kindQuery := bleve.NewMatchQuery(options.Kind)
		kindQuery.SetField("kind")
		queries = append(queries, kindQuery)
	}

	// Combine with conjunction (AND)
	var finalQuery query.Query
	if len(queries) == 1 {
		finalQuery = queries[0]
	} else {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	// Execute search with highlighting
	searchRequest := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	highlightStyle := "html" // Use HTML style with <em> tags
	searchRequest.Highlight = bleve.NewHighlight()
	searchRequest.Highlight.Style = &highlightStyle
	searchRequest.Highlight.Fields = []string{"annotation", "name", "doc"}

	// Request stored fields for result construction
	searchRequest.Fields = []string{"path", "module", "kind", "name", "qualified_name", "annotation"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	// Convert results (no post-filtering, bleve did it natively)
	results := make([]*Result, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		path, _ := hit.Fields["path"].(string)
		module, _ := hit.Fields["module"].(string)
		kind, _ := hit.Fields["kind"].(string)
		name, _ := hit.Fields["name"].(string)
		qualified, _ := hit.Fields["qualified_name"].(string)
		annotation, _ := hit.Fields["annotation"].(string)

		results = append(results, &Result{
			Path:          path,
			Module:        module,
			Kind:          kind,
			Name:          name,
			QualifiedName: qualified,
			Annotation:    annotation,
			Score:         hit.Score,
			Highlights:    extractHighlights(hit.Fragments),
		})
	}

	return results, nil
}

// extractHighlights extracts highlighted snippets from bleve fragments.
// Limits to 3 highlights per result to avoid overwhelming the caller.
func extractHighlights(fragments map[string][]string) []string {
	var highlights []string

	// Bleve returns fragments as map[field][]snippets
	for _, snippets := range fragments {
		highlights = append(highlights, snippets...)
	}

	if len(highlights) > 3 {
		highlights = highlights[:3]
	}

	return highlights
}

// Rebuild replaces the index with one built from a fresh snapshot. The
// old index stays searchable until the new one is ready.
func (s *bleveSearcher) Rebuild(ctx context.Context, snapshot *store.Snapshot) error {
	index, err := buildIndex(ctx, snapshot)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.index
	s.index = index
	s.mu.Unlock()

	if old != nil {
		return old.Close()
	}
	return nil
}

// DocCount reports how many documents the index currently holds.
func (s *bleveSearcher) DocCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Close releases resources held by the searcher.
func (s *bleveSearcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index.Close()
	}
	return nil
}
