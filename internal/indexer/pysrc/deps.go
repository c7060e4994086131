package pysrc

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// collectDependencies walks the whole tree and gathers the file's
// imported module names and called dotted names. Imports record exactly
// what the statement names: "import a.b" records "a.b" while
// "from c.d import e" records "c.d". Calls record the callable's dotted
// name when it resolves to an identifier-rooted attribute chain.
func collectDependencies(root *sitter.Node, source []byte) (imports, calls map[string]bool) {
	imports = make(map[string]bool)
	calls = make(map[string]bool)

	walkTree(root, func(node *sitter.Node) bool {
		switch node.Kind() {
		case "import_statement":
			for i := uint(0); i < node.NamedChildCount(); i++ {
				child := node.NamedChild(i)
				switch child.Kind() {
				case "dotted_name":
					imports[nodeText(child, source)] = true
				case "aliased_import":
					if name := child.ChildByFieldName("name"); name != nil {
						imports[nodeText(name, source)] = true
					}
				}
			}

		case "import_from_statement":
			if module := importedModule(node, source); module != "" {
				imports[module] = true
			}

		case "call":
			if name := qualifiedName(node.ChildByFieldName("function"), source); name != "" {
				calls[name] = true
			}
		}
		return true
	})

	return imports, calls
}

// importedModule returns the module a from-import names. Relative imports
// keep their explicit module part ("from .pkg import x" names "pkg");
// a bare "from . import x" names nothing.
func importedModule(node *sitter.Node, source []byte) string {
	module := node.ChildByFieldName("module_name")
	if module == nil {
		return ""
	}

	switch module.Kind() {
	case "dotted_name":
		return nodeText(module, source)
	case "relative_import":
		if dotted := findChildByKind(module, "dotted_name"); dotted != nil {
			return nodeText(dotted, source)
		}
	}
	return ""
}

// qualifiedName reconstructs the dotted name of a call target by walking
// its attribute chain down to the root identifier. Targets rooted at
// anything else (a call result, a subscript, a literal) contribute only
// the attribute suffix that still resolves, or nothing at all.
func qualifiedName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	switch node.Kind() {
	case "identifier":
		return nodeText(node, source)
	case "attribute":
		attr := node.ChildByFieldName("attribute")
		if attr == nil {
			return ""
		}
		prefix := qualifiedName(node.ChildByFieldName("object"), source)
		if prefix == "" {
			return nodeText(attr, source)
		}
		return prefix + "." + nodeText(attr, source)
	}

	return ""
}
