package pysrc

import (
	"strings"
)

// precedingComments harvests the contiguous block of comment lines
// directly above a definition. startLine is 1-based and points at the
// first line of the definition (its first decorator, when decorated).
// The harvest walks upward and stops at the first blank or non-comment
// line. Comment markers and surrounding whitespace are stripped and the
// lines are joined with single spaces, top to bottom.
func precedingComments(lines []string, startLine int) string {
	var comments []string

	for idx := startLine - 2; idx >= 0 && idx < len(lines); idx-- {
		line := strings.TrimSpace(lines[idx])
		if line == "" || !strings.HasPrefix(line, "#") {
			break
		}
		text := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		comments = append([]string{text}, comments...)
	}

	return strings.TrimSpace(strings.Join(comments, " "))
}
