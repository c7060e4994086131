package pysrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for docstring handling:
// - Split a docstring into base description, Args lines, and Returns lines
// - Discard header lines themselves, including same-line trailing text
// - Join base lines with spaces, absorbing blank lines
// - Keep only non-blank lines in Args and Returns sections
// - Treat a repeated Args: or Returns: header as a no-op
// - Treat an Args: header after Returns: as ordinary returns content
// - Clean indentation the way documentation tools do
// - Expand tabs against eight-column stops

func TestSegmentDocstring_BaseOnly(t *testing.T) {
	t.Parallel()

	base, args, returns := segmentDocstring("Fetch a user.\n\nLooks in the cache first.")

	assert.Equal(t, "Fetch a user.  Looks in the cache first.", base)
	assert.Empty(t, args)
	assert.Empty(t, returns)
}

func TestSegmentDocstring_Sections(t *testing.T) {
	t.Parallel()

	doc := "Create an index.\n" +
		"\n" +
		"Args:\n" +
		"    path: Root directory.\n" +
		"    depth: Maximum depth.\n" +
		"\n" +
		"Returns:\n" +
		"    Index: The built index.\n"

	base, args, returns := segmentDocstring(doc)

	assert.Equal(t, "Create an index.", base)
	assert.Equal(t, []string{"path: Root directory.", "depth: Maximum depth."}, args)
	assert.Equal(t, []string{"Index: The built index."}, returns)
}

func TestSegmentDocstring_HeaderLineDiscarded(t *testing.T) {
	t.Parallel()

	// Text on the header line itself is dropped with the header.
	base, args, returns := segmentDocstring("Summary.\nReturns: int\n    The count.")

	assert.Equal(t, "Summary.", base)
	assert.Empty(t, args)
	assert.Equal(t, []string{"The count."}, returns)
}

func TestSegmentDocstring_RepeatedHeaders(t *testing.T) {
	t.Parallel()

	doc := "Args:\n    a: First.\nArgs:\n    b: Second.\nReturns:\n    c.\nReturns:\n    d."

	base, args, returns := segmentDocstring(doc)

	assert.Empty(t, base)
	assert.Equal(t, []string{"a: First.", "b: Second."}, args)
	assert.Equal(t, []string{"c.", "d."}, returns)
}

func TestSegmentDocstring_NoExitFromReturns(t *testing.T) {
	t.Parallel()

	// Once the returns section starts, a later Args: header is not a
	// section boundary anymore; it is collected as returns content.
	doc := "Summary.\nReturns:\n    The result.\nArgs: late\n    value: Ignored header."

	base, args, returns := segmentDocstring(doc)

	assert.Equal(t, "Summary.", base)
	assert.Empty(t, args)
	assert.Equal(t, []string{"The result.", "Args: late", "value: Ignored header."}, returns)
}

func TestSegmentDocstring_Empty(t *testing.T) {
	t.Parallel()

	base, args, returns := segmentDocstring("")

	assert.Empty(t, base)
	assert.Empty(t, args)
	assert.Empty(t, returns)
}

func TestCleanDocstring_StripsCommonIndent(t *testing.T) {
	t.Parallel()

	doc := "Summary line.\n        Second line.\n            Indented detail.\n    "

	assert.Equal(t, "Summary line.\nSecond line.\n    Indented detail.", cleanDocstring(doc))
}

func TestCleanDocstring_TrimsBlankEdges(t *testing.T) {
	t.Parallel()

	doc := "\n\n    Body text.\n\n\n"

	assert.Equal(t, "Body text.", cleanDocstring(doc))
}

func TestCleanDocstring_FirstLineUnindented(t *testing.T) {
	t.Parallel()

	// The first line's own indentation never contributes to the margin.
	doc := "   Leading spaces.\n  Aligned."

	assert.Equal(t, "Leading spaces.\nAligned.", cleanDocstring(doc))
}

func TestExpandTabs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a       b", expandTabs("a\tb"))
	assert.Equal(t, "        x", expandTabs("\tx"))
	assert.Equal(t, "ab\ncd", expandTabs("ab\ncd"))
}
