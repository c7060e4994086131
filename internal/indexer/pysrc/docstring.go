package pysrc

import (
	"strings"
)

// docSection is the active section while scanning a docstring.
type docSection int

const (
	sectionBase docSection = iota
	sectionArgs
	sectionReturns
)

// segmentDocstring splits a function docstring into a base description
// and the content lines of its Args: and Returns: sections.
//
// Header lines are recognized as section-entry triggers only and are
// themselves discarded. Once the returns section starts there is no way
// back: a later "Args:" line is ordinary content and is collected as a
// returns line. The base description keeps blank lines (joined away
// below); section content keeps non-blank lines only.
func segmentDocstring(doc string) (base string, args, returns []string) {
	section := sectionBase
	var baseLines []string

	for _, line := range strings.Split(doc, "\n") {
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "Returns:") {
			section = sectionReturns
			continue
		}
		if strings.HasPrefix(stripped, "Args:") && section != sectionReturns {
			section = sectionArgs
			continue
		}

		switch section {
		case sectionBase:
			baseLines = append(baseLines, stripped)
		case sectionArgs:
			if stripped != "" {
				args = append(args, stripped)
			}
		case sectionReturns:
			if stripped != "" {
				returns = append(returns, stripped)
			}
		}
	}

	base = strings.TrimSpace(strings.Join(baseLines, " "))
	return base, args, returns
}

// cleanDocstring normalizes a docstring the way documentation tools do:
// tabs are expanded, the common leading indentation of all lines after the
// first is removed, the first line loses its own indentation, and leading
// and trailing blank lines are dropped.
func cleanDocstring(doc string) string {
	lines := strings.Split(expandTabs(doc), "\n")

	margin := -1
	for _, line := range lines[1:] {
		stripped := strings.TrimLeft(line, " ")
		if stripped == "" {
			continue
		}
		indent := len(line) - len(stripped)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " ")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = ""
			}
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}

	return strings.Join(lines, "\n")
}

// expandTabs replaces tabs with spaces up to the next multiple-of-eight
// column, resetting the column at newlines.
func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := 8 - col%8
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n', '\r':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}
