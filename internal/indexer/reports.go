package indexer

import (
	"fmt"
	"sort"
)

// Report file names written into the output directory.
const (
	TreeFilesReport      = "tree_files.txt"
	MapDefinitionsReport = "map_definitions.txt"
	DependenciesReport   = "dependencies.txt"
	StatReport           = "stat.txt"
)

const treeFilesHeader = `# tree_files.txt
# Description: Represents the directory and file structure of the project.
# For Python files, the module-level docstring (if available) is appended as a comment.
# Items matching ignore patterns are marked as 'ignored'.
# Usage: Open this file to review the project's file hierarchy.`

const mapDefinitionsHeader = `# map_definitions.txt
# Description: Contains detailed definitions of all entities (functions, classes, and nested definitions) in each Python file.
# Items matching ignore patterns are marked as 'ignored' and are not processed for definitions.
# Note: 'Args' and 'Returns' sections are nested under the corresponding function.
# Usage: Open this file to inspect the project's internal definitions.`

const dependenciesHeader = `# dependencies.txt
# Description: Contains the project's dependencies.
# The first section lists all external libraries imported in the project (excluding local modules).
# Following sections list, per file, the imported modules and used functions/classes.
# Usage: Open this file to view the project's dependencies.`

const statHeader = `# stat.txt
# Description: Provides statistics about the project.
# Includes counts of directories, files (excluding ignored items), lines, and bytes.
# Usage: Open this file to see the project's overall statistics.`

// buildDependencyLines renders the dependencies report body: the external
// library section first, then one block per Python file in walk order.
// Files with nothing to report still get their block, and every block
// ends with a blank line.
func buildDependencyLines(result *Result) []string {
	lines := []string{"Project External Libraries:"}
	for _, lib := range result.Externals {
		lines = append(lines, "  - "+lib)
	}
	lines = append(lines, "")

	for _, f := range result.Files {
		lines = append(lines, "File: "+f.Path)
		if len(f.Imports) > 0 {
			lines = append(lines, "  Imported Modules:")
			for _, module := range sortedKeys(f.Imports) {
				lines = append(lines, "    - "+module)
			}
		}
		if len(f.Calls) > 0 {
			lines = append(lines, "  Used Functions/Classes:")
			for _, call := range sortedKeys(f.Calls) {
				lines = append(lines, "    - "+call)
			}
		}
		lines = append(lines, "")
	}

	return lines
}

// buildStatsLines renders the statistics report body.
func buildStatsLines(stats Stats) []string {
	return []string{
		fmt.Sprintf("Number of directories: %d", stats.Directories),
		fmt.Sprintf("Number of files: %d", stats.Files),
		fmt.Sprintf("Total number of lines: %d", stats.Lines),
		fmt.Sprintf("Total number of bytes: %d", stats.Bytes),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
