package pysrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Analyzer:
// - Extract the module-level docstring
// - Extract top-level functions, classes, and async functions in order
// - Combine preceding comments and docstring summaries with a pipe
// - Synthesize Args and Returns children ahead of nested definitions
// - Keep class docstrings verbatim, including newlines
// - Start the comment harvest above the first decorator
// - Extract nested definitions recursively
// - Report non-UTF-8 input as a decode failure
// - Report syntax errors as a parse failure
// - Handle empty files

func findEntity(entities []Entity, name string) *Entity {
	for i := range entities {
		if entities[i].Name == name {
			return &entities[i]
		}
	}
	return nil
}

func TestAnalyzer_ModuleDocstring(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer()
	result, err := analyzer.Analyze([]byte(`"""Service helpers for the indexer."""

x = 1
`))

	require.NoError(t, err)
	assert.Equal(t, "Service helpers for the indexer.", result.ModuleDoc)
	assert.Empty(t, result.Entities)
}

func TestAnalyzer_FunctionAnnotation(t *testing.T) {
	t.Parallel()

	source := []byte(`# Builds the user index.
# Used by the CLI.
def build_index(path):
    """Create an index.

    Args:
        path: Root directory.
        depth: Maximum depth.

    Returns:
        Index: The built index.
    """
    return os.stat(path)
`)

	analyzer := NewAnalyzer()
	result, err := analyzer.Analyze(source)
	require.NoError(t, err)
	require.Len(t, result.Entities, 1)

	fn := result.Entities[0]
	assert.Equal(t, KindFunction, fn.Kind)
	assert.Equal(t, "build_index", fn.Name)
	assert.Equal(t, "Builds the user index. Used by the CLI. | Create an index.", fn.Annotation)

	// Args comes first, then Returns, then any nested definitions.
	require.Len(t, fn.Children, 2)
	assert.Equal(t, KindArgs, fn.Children[0].Kind)
	assert.Equal(t, "path: Root directory.\ndepth: Maximum depth.", fn.Children[0].Annotation)
	assert.Equal(t, KindReturns, fn.Children[1].Kind)
	assert.Equal(t, "Index: The built index.", fn.Children[1].Annotation)
}

func TestAnalyzer_CommentOnlyAnnotation(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer()
	result, err := analyzer.Analyze([]byte("# Short helper.\ndef helper():\n    pass\n"))

	require.NoError(t, err)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "Short helper.", result.Entities[0].Annotation)
}

func TestAnalyzer_ClassDocstringVerbatim(t *testing.T) {
	t.Parallel()

	source := []byte(`class Service:
    """Runs lookups.

    Thread safe."""

    def lookup(self, key):
        # Fast path.
        def helper():
            pass
        return helper()
`)

	analyzer := NewAnalyzer()
	result, err := analyzer.Analyze(source)
	require.NoError(t, err)
	require.Len(t, result.Entities, 1)

	class := result.Entities[0]
	assert.Equal(t, KindClass, class.Kind)
	assert.Equal(t, "Service", class.Name)
	assert.Equal(t, "Runs lookups.\n\nThread safe.", class.Annotation)

	require.Len(t, class.Children, 1)
	lookup := class.Children[0]
	assert.Equal(t, KindFunction, lookup.Kind)
	assert.Equal(t, "lookup", lookup.Name)
	assert.Empty(t, lookup.Annotation)

	require.Len(t, lookup.Children, 1)
	helper := lookup.Children[0]
	assert.Equal(t, "helper", helper.Name)
	assert.Equal(t, "Fast path.", helper.Annotation)
}

func TestAnalyzer_DecoratedDefinitions(t *testing.T) {
	t.Parallel()

	source := []byte(`# Cached variant.
@decorator
def cached(url):
    pass


@app.route("/health")
async def health():
    pass
`)

	analyzer := NewAnalyzer()
	result, err := analyzer.Analyze(source)
	require.NoError(t, err)
	require.Len(t, result.Entities, 2)

	cached := findEntity(result.Entities, "cached")
	require.NotNil(t, cached, "cached should be extracted")
	assert.Equal(t, KindFunction, cached.Kind)
	assert.Equal(t, "Cached variant.", cached.Annotation)

	health := findEntity(result.Entities, "health")
	require.NotNil(t, health, "health should be extracted")
	assert.Equal(t, KindAsyncFunction, health.Kind)
	assert.Empty(t, health.Annotation)

	// The decorator call itself counts as a used name.
	assert.True(t, result.Calls["app.route"])
}

func TestAnalyzer_SourceOrderPreserved(t *testing.T) {
	t.Parallel()

	source := []byte(`def zeta():
    pass

class Alpha:
    pass

def beta():
    pass
`)

	analyzer := NewAnalyzer()
	result, err := analyzer.Analyze(source)
	require.NoError(t, err)
	require.Len(t, result.Entities, 3)

	assert.Equal(t, "zeta", result.Entities[0].Name)
	assert.Equal(t, "Alpha", result.Entities[1].Name)
	assert.Equal(t, "beta", result.Entities[2].Name)
}

func TestAnalyzer_InvalidEncoding(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer()
	result, err := analyzer.Analyze([]byte{0xff, 0xfe, 'x', '=', '1'})

	require.ErrorIs(t, err, ErrDecode)
	assert.Nil(t, result)
}

func TestAnalyzer_SyntaxError(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer()
	result, err := analyzer.Analyze([]byte("def broken(:\n    pass\n"))

	require.ErrorIs(t, err, ErrParse)
	assert.Nil(t, result)
}

func TestAnalyzer_EmptyFile(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer()
	result, err := analyzer.Analyze([]byte(""))

	require.NoError(t, err)
	assert.Empty(t, result.ModuleDoc)
	assert.Empty(t, result.Entities)
	assert.Empty(t, result.Imports)
	assert.Empty(t, result.Calls)
}
