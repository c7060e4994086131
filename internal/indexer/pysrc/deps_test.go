package pysrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for dependency collection:
// - Record dotted names from plain imports exactly as written
// - Record the module (not the names) from from-imports
// - Unwrap aliased imports to the real module name
// - Keep the explicit module part of relative imports
// - Skip bare relative imports entirely
// - Reconstruct dotted call targets through attribute chains
// - Keep only the resolvable suffix when a chain roots at a call result
// - Record nothing for a call whose target is itself a call
// - Deduplicate repeated imports and calls

func analyzeSource(t *testing.T, source string) *Analysis {
	t.Helper()
	result, err := NewAnalyzer().Analyze([]byte(source))
	require.NoError(t, err)
	return result
}

func TestCollectDependencies_ImportForms(t *testing.T) {
	t.Parallel()

	result := analyzeSource(t, `import os
import os.path
import numpy as np, json
from collections import OrderedDict
from a.b import c as d, e
from . import sibling
from .relmod import thing
from ..pkg.sub import other
`)

	assert.Equal(t, map[string]bool{
		"os":          true,
		"os.path":     true,
		"numpy":       true,
		"json":        true,
		"collections": true,
		"a.b":         true,
		"relmod":      true,
		"pkg.sub":     true,
	}, result.Imports)
}

func TestCollectDependencies_CallForms(t *testing.T) {
	t.Parallel()

	result := analyzeSource(t, `x.y.z()
f()()
items[0].method()
plain()
plain()
`)

	// The chained outer call has no resolvable target; the inner call and
	// the attribute suffix on the subscript still resolve.
	assert.Equal(t, map[string]bool{
		"x.y.z":  true,
		"f":      true,
		"method": true,
		"plain":  true,
	}, result.Calls)
}

func TestCollectDependencies_NestedScopes(t *testing.T) {
	t.Parallel()

	result := analyzeSource(t, `def outer():
    import hashlib

    def inner():
        return hashlib.sha256(b"")
    return inner
`)

	assert.True(t, result.Imports["hashlib"])
	assert.True(t, result.Calls["hashlib.sha256"])
}

func TestCollectDependencies_EmptyForNoUsage(t *testing.T) {
	t.Parallel()

	result := analyzeSource(t, "x = 1\ny = x\n")

	assert.Empty(t, result.Imports)
	assert.Empty(t, result.Calls)
}
