package pysrc

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractEntities builds the definition tree for a list of statements.
// Only function and class definitions (possibly decorated) produce
// entities; every other statement kind contributes nothing. Source order
// is preserved.
func extractEntities(stmts []*sitter.Node, source []byte, lines []string) []Entity {
	var entities []Entity

	for _, stmt := range stmts {
		decl := stmt
		if decl.Kind() == "decorated_definition" {
			def := decl.ChildByFieldName("definition")
			if def == nil {
				continue
			}
			decl = def
		}

		switch decl.Kind() {
		case "function_definition":
			entities = append(entities, functionEntity(stmt, decl, source, lines))
		case "class_definition":
			entities = append(entities, classEntity(stmt, decl, source, lines))
		}
	}

	return entities
}

// functionEntity assembles the entity for a function definition. The
// docstring is segmented: its base description joins the preceding
// comments in the annotation, while Args and Returns sections become
// leading child entities, in that order, ahead of any nested definitions.
func functionEntity(outer, decl *sitter.Node, source []byte, lines []string) Entity {
	name := nodeText(decl.ChildByFieldName("name"), source)
	comment := precedingComments(lines, startLineOf(outer))

	doc := docstringText(decl.ChildByFieldName("body"), source)
	base, args, returns := segmentDocstring(doc)

	kind := KindFunction
	if isAsync(decl) {
		kind = KindAsyncFunction
	}

	var children []Entity
	if len(args) > 0 {
		children = append(children, Entity{Kind: KindArgs, Annotation: strings.Join(args, "\n")})
	}
	if len(returns) > 0 {
		children = append(children, Entity{Kind: KindReturns, Annotation: strings.Join(returns, "\n")})
	}
	children = append(children, extractEntities(statementsOf(decl.ChildByFieldName("body")), source, lines)...)

	return Entity{
		Kind:       kind,
		Name:       name,
		Annotation: joinAnnotation(comment, base),
		Children:   children,
	}
}

// classEntity assembles the entity for a class definition. Unlike
// functions, the class docstring is kept verbatim in the annotation.
func classEntity(outer, decl *sitter.Node, source []byte, lines []string) Entity {
	name := nodeText(decl.ChildByFieldName("name"), source)
	comment := precedingComments(lines, startLineOf(outer))
	doc := docstringText(decl.ChildByFieldName("body"), source)

	return Entity{
		Kind:       KindClass,
		Name:       name,
		Annotation: joinAnnotation(comment, doc),
		Children:   extractEntities(statementsOf(decl.ChildByFieldName("body")), source, lines),
	}
}

// joinAnnotation combines harvested comments and docstring text with a
// pipe when both are present.
func joinAnnotation(comment, doc string) string {
	if comment != "" && doc != "" {
		return comment + " | " + doc
	}
	if comment != "" {
		return comment
	}
	return doc
}

// startLineOf returns the 1-based first line of a statement. For a
// decorated definition the statement node spans the decorators, so the
// comment harvest starts above the first decorator.
func startLineOf(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// isAsync reports whether a function definition carries the async keyword.
func isAsync(decl *sitter.Node) bool {
	child := decl.Child(0)
	return child != nil && child.Kind() == "async"
}

// docstringText returns the cleaned docstring of a statement-list holder
// (the module root or a definition body). Following Python's docstring
// rules, the first statement must be a plain string literal expression.
func docstringText(body *sitter.Node, source []byte) string {
	stmts := statementsOf(body)
	if len(stmts) == 0 || stmts[0].Kind() != "expression_statement" {
		return ""
	}

	expr := stmts[0].NamedChild(0)
	if expr == nil {
		return ""
	}

	raw, ok := stringLiteral(expr, source)
	if !ok {
		return ""
	}
	return cleanDocstring(raw)
}

// stringLiteral extracts the text of a plain string literal, following
// implicit concatenation. Byte strings and f-strings do not qualify as
// docstrings. Escape sequences are kept as written.
func stringLiteral(node *sitter.Node, source []byte) (string, bool) {
	switch node.Kind() {
	case "string":
		prefix := strings.ToLower(nodeText(node.Child(0), source))
		if strings.ContainsAny(prefix, "bf") {
			return "", false
		}
		var b strings.Builder
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child.Kind() == "string_content" {
				b.WriteString(nodeText(child, source))
			}
		}
		return b.String(), true

	case "concatenated_string":
		var b strings.Builder
		for i := uint(0); i < node.NamedChildCount(); i++ {
			part, ok := stringLiteral(node.NamedChild(i), source)
			if !ok {
				return "", false
			}
			b.WriteString(part)
		}
		return b.String(), true
	}

	return "", false
}
