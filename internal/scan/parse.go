// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd007-host-scanner R2, R3;
//
//	docs/ARCHITECTURE § Host Scanner, Declaration Extraction.
package scan

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

// ErrSyntax is returned when a source file does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// languages maps a source extension to its tree-sitter grammar.
var languages = map[string]*sitter.Language{
	".js":  javascript.GetLanguage(),
	".jsx": javascript.GetLanguage(),
	".ts":  typescript.GetLanguage(),
	".tsx": tsx.GetLanguage(),
}

// Supported reports whether path is a source file the scanner reads.
func Supported(path string) bool {
	if strings.HasSuffix(path, ".d.ts") {
		return false
	}
	_, ok := languages[filepath.Ext(path)]
	return ok
}

// ParseDeclarations extracts the import and export declarations of one
// file in source order. The grammar is chosen by the extension of path.
// When the file has syntax errors, the declarations of statements that
// parsed cleanly are returned together with an error wrapping ErrSyntax.
//
// Implements: prd007-host-scanner R2.1-R2.6.
func ParseDeclarations(ctx context.Context, path string, content []byte) ([]types.Declaration, error) {
	lang, ok := languages[filepath.Ext(path)]
	if !ok {
		return nil, fmt.Errorf("unsupported source %s", path)
	}

	root, err := sitter.ParseCtx(ctx, content, lang)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if root == nil {
		return nil, fmt.Errorf("parsing %s: %w", path, ErrSyntax)
	}

	var decls []types.Declaration
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.HasError() {
			continue
		}
		switch child.Type() {
		case "import_statement":
			if d, ok := importDeclaration(child, content); ok {
				decls = append(decls, d)
			}
		case "export_statement":
			if d, ok := exportDeclaration(child, content); ok {
				decls = append(decls, d)
			}
		}
	}
	decls = append(decls, dynamicImports(root, content)...)
	// Static declarations and dynamic imports are collected separately.
	sort.SliceStable(decls, func(i, j int) bool { return decls[i].Start < decls[j].Start })
	if root.HasError() {
		return decls, fmt.Errorf("parsing %s: %w", path, ErrSyntax)
	}
	return decls, nil
}

// importDeclaration handles `import ... from "x"` and bare `import "x"`.
func importDeclaration(node *sitter.Node, content []byte) (types.Declaration, bool) {
	d := types.Declaration{
		Kind:       types.ImportDeclaration,
		ImportKind: types.KindValue,
		Start:      int(node.StartByte()),
		End:        int(node.EndByte()),
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type", "typeof":
			d.ImportKind = types.KindType
		case "import_clause":
			d.Specifiers = importClause(child, content)
		case "string":
			d.Source = stringContent(child, content)
		}
	}
	return d, d.Source != ""
}

func importClause(node *sitter.Node, content []byte) []types.Specifier {
	var specs []types.Specifier
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			specs = append(specs, types.Specifier{
				Kind:  types.ImportDefaultSpecifier,
				Local: child.Content(content),
			})
		case "namespace_import":
			if id := firstNamed(child, "identifier"); id != nil {
				specs = append(specs, types.Specifier{
					Kind:  types.ImportNamespaceSpecifier,
					Local: id.Content(content),
				})
			}
		case "named_imports":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" || hasChild(spec, "type") {
					continue
				}
				name := fieldContent(spec, "name", content)
				local := fieldContent(spec, "alias", content)
				if local == "" {
					local = name
				}
				specs = append(specs, types.Specifier{
					Kind:     types.ImportSpecifier,
					Local:    local,
					Imported: name,
				})
			}
		}
	}
	return specs
}

// exportDeclaration handles re-exports. Exports without a source are local
// declarations and are not returned.
func exportDeclaration(node *sitter.Node, content []byte) (types.Declaration, bool) {
	source := node.ChildByFieldName("source")
	if source == nil {
		return types.Declaration{}, false
	}
	d := types.Declaration{
		Kind:       types.ExportAllDeclaration,
		Source:     stringContent(source, content),
		ExportKind: types.KindValue,
		Start:      int(node.StartByte()),
		End:        int(node.EndByte()),
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type":
			d.ExportKind = types.KindType
		case "export_clause":
			d.Kind = types.ExportNamedDeclaration
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "export_specifier" {
					continue
				}
				local := fieldContent(spec, "name", content)
				exported := fieldContent(spec, "alias", content)
				if exported == "" {
					exported = local
				}
				d.Specifiers = append(d.Specifiers, types.Specifier{
					Kind:     types.ExportSpecifier,
					Local:    local,
					Exported: exported,
				})
			}
		case "namespace_export":
			d.Kind = types.ExportNamedDeclaration
			if id := lastNamed(child); id != nil {
				d.Specifiers = append(d.Specifiers, types.Specifier{
					Kind:     types.ExportNamespaceSpecifier,
					Exported: trimQuotes(id.Content(content)),
				})
			}
		}
	}
	return d, d.Source != ""
}

// dynamicImports collects `import("x")` calls with a literal argument
// anywhere in the tree.
func dynamicImports(root *sitter.Node, content []byte) []types.Declaration {
	var decls []types.Declaration
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "call_expression" && !n.HasError() {
			if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "import" {
				if src, ok := literalArgument(n.ChildByFieldName("arguments"), content); ok {
					decls = append(decls, types.Declaration{
						Kind:   types.DynamicImport,
						Source: src,
						Start:  int(n.StartByte()),
						End:    int(n.EndByte()),
					})
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return decls
}

func literalArgument(args *sitter.Node, content []byte) (string, bool) {
	if args == nil || args.NamedChildCount() == 0 {
		return "", false
	}
	arg := args.NamedChild(0)
	switch arg.Type() {
	case "string":
		s := stringContent(arg, content)
		return s, s != ""
	case "template_string":
		if hasChild(arg, "template_substitution") {
			return "", false
		}
		s := strings.Trim(arg.Content(content), "`")
		return s, s != ""
	}
	return "", false
}

// stringContent returns the text of a string literal without its quotes.
func stringContent(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "string_fragment" {
			return child.Content(content)
		}
	}
	return trimQuotes(node.Content(content))
}

func trimQuotes(s string) string {
	return strings.Trim(s, `"'`)
}

func fieldContent(node *sitter.Node, field string, content []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	if child.Type() == "string" {
		return stringContent(child, content)
	}
	return child.Content(content)
}

func firstNamed(node *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}

func lastNamed(node *sitter.Node) *sitter.Node {
	n := int(node.NamedChildCount())
	if n == 0 {
		return nil
	}
	return node.NamedChild(n - 1)
}

func hasChild(node *sitter.Node, typ string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == typ {
			return true
		}
	}
	return false
}
