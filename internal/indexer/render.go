package indexer

import (
	"strings"

	"github.com/mvp-joe/pymap/internal/indexer/pysrc"
)

// renderEntityTree formats a definition forest as connector-drawn lines.
// Args and Returns sections render their annotation lines as children of
// the section marker.
func renderEntityTree(entities []pysrc.Entity, prefix string) []string {
	var lines []string

	for i, entity := range entities {
		last := i == len(entities)-1
		connector := "├── "
		if last {
			connector = "└── "
		}

		line := prefix + connector + "[" + string(entity.Kind) + "] " + entity.Name
		if entity.Annotation != "" && !entity.Kind.Section() {
			line += "  # " + entity.Annotation
		}
		lines = append(lines, line)

		if entity.Kind.Section() && entity.Annotation != "" {
			sub := strings.Split(entity.Annotation, "\n")
			for j, annLine := range sub {
				annConnector := "├── "
				if j == len(sub)-1 {
					annConnector = "└── "
				}
				lines = append(lines, childPrefix(prefix, last)+annConnector+annLine)
			}
		}
		if len(entity.Children) > 0 {
			lines = append(lines, renderEntityTree(entity.Children, childPrefix(prefix, last))...)
		}
	}

	return lines
}

// renderFileTree renders the project tree for tree_files.txt. Python
// files carry their module docstring as an inline comment; ignored
// entries are marked and not descended into.
func renderFileTree(entry *treeEntry, prefix string, files map[string]*FileIndex) []string {
	var lines []string

	for i, child := range entry.children {
		last := i == len(entry.children)-1
		connector := "├── "
		if last {
			connector = "└── "
		}

		switch {
		case child.isDir && child.ignored:
			lines = append(lines, prefix+connector+child.name+"/  # ignored")
		case child.isDir:
			lines = append(lines, prefix+connector+child.name+"/")
			lines = append(lines, renderFileTree(child, childPrefix(prefix, last), files)...)
		case child.ignored:
			lines = append(lines, prefix+connector+child.name+"  # ignored")
		default:
			line := prefix + connector + child.name
			if f := files[child.relPath]; f != nil && f.Doc != "" {
				line += "  # " + f.Doc
			}
			lines = append(lines, line)
		}
	}

	return lines
}

// renderDefinitions renders the project tree for map_definitions.txt.
// Only Python files appear, each followed by its definition tree indented
// one extra level. Non-Python files show up solely when ignored, keeping
// the ignore markers visible.
func renderDefinitions(entry *treeEntry, prefix string, files map[string]*FileIndex) []string {
	var lines []string

	for i, child := range entry.children {
		last := i == len(entry.children)-1
		connector := "├── "
		if last {
			connector = "└── "
		}

		switch {
		case child.isDir && child.ignored:
			lines = append(lines, prefix+connector+child.name+"/  # ignored")
		case child.isDir:
			lines = append(lines, prefix+connector+child.name+"/")
			lines = append(lines, renderDefinitions(child, childPrefix(prefix, last), files)...)
		case child.ignored:
			lines = append(lines, prefix+connector+child.name+"  # ignored")
		case strings.HasSuffix(child.name, ".py"):
			line := prefix + connector + child.name
			f := files[child.relPath]
			if f != nil && f.Doc != "" {
				line += "  # " + f.Doc
			}
			lines = append(lines, line)
			if f != nil && len(f.Entities) > 0 {
				lines = append(lines, renderEntityTree(f.Entities, childPrefix(prefix, last)+"    ")...)
			}
		}
	}

	return lines
}

func childPrefix(prefix string, last bool) string {
	if last {
		return prefix + "    "
	}
	return prefix + "│   "
}
