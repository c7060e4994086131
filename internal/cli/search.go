package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvp-joe/pymap/internal/search"
	"github.com/spf13/cobra"
)

var (
	searchKindFlag  string
	searchLimitFlag int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed definitions",
	Long: `Search runs a full-text query over the indexed modules, functions, and
classes. Queries use bleve query-string syntax: bare terms match names,
annotations, and docstrings; 'name:run' or 'module:helpers' scope a
term to one field; 'run*' matches prefixes.

Examples:
  # Find definitions mentioning retries
  pymap search retry

  # Only classes
  pymap search scheduler --kind Class

  # Scope to the definition name
  pymap search 'name:run*'
`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchKindFlag, "kind", "k", "", `Restrict matches to one kind ("Module", "Class", "Function", "Async Function")`)
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "n", 15, "Maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	snapshot, err := loadSnapshot(ctx, rootDir, cfg)
	if err != nil {
		return err
	}

	searcher, err := search.NewSearcher(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("failed to build search index: %w", err)
	}
	defer searcher.Close()

	options := search.DefaultOptions()
	options.Kind = searchKindFlag
	if searchLimitFlag > 0 {
		options.Limit = searchLimitFlag
	}

	results, err := searcher.Search(ctx, args[0], options)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matches")
		return nil
	}

	for _, result := range results {
		for _, line := range formatSearchResult(result) {
			fmt.Println(line)
		}
	}
	fmt.Printf("\n%d match(es)\n", len(results))
	return nil
}

// formatSearchResult renders one match as "path:name [Kind]" plus an
// indented annotation snippet when one is available.
func formatSearchResult(result *search.Result) []string {
	name := result.Name
	if result.QualifiedName != "" {
		name = result.QualifiedName
	}

	lines := []string{fmt.Sprintf("%s:%s [%s]", result.Path, name, result.Kind)}
	if snippet := annotationSnippet(result); snippet != "" {
		lines = append(lines, "    "+snippet)
	}
	return lines
}

// annotationSnippet picks the best one-line description for a match:
// the first highlight fragment when the query matched indexed text,
// otherwise the start of the stored annotation.
func annotationSnippet(result *search.Result) string {
	if len(result.Highlights) > 0 {
		return stripHighlightTags(result.Highlights[0])
	}
	return firstLine(result.Annotation)
}

// stripHighlightTags removes the markers bleve puts around matched terms
// and flattens the fragment to one line.
func stripHighlightTags(fragment string) string {
	replacer := strings.NewReplacer(
		"<mark>", "", "</mark>", "",
		"<em>", "", "</em>", "",
		"\n", " ",
	)
	return strings.TrimSpace(replacer.Replace(fragment))
}

// firstLine returns the first non-blank line of text, trimmed.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
