// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd003-import-graph R1 (host declaration records);
//
//	docs/ARCHITECTURE § Host Interface.
package types

import (
	"encoding/json"
	"fmt"
	"io"
)

// DeclKind discriminates the declaration records a host supplies per file.
// Values match the bundler's JSON "type" field.
type DeclKind string

const (
	ImportDeclaration      DeclKind = "ImportDeclaration"
	DynamicImport          DeclKind = "DynamicImport"
	ExportNamedDeclaration DeclKind = "ExportNamedDeclaration"
	ExportAllDeclaration   DeclKind = "ExportAllDeclaration"
)

// SpecifierKind discriminates import and export specifiers.
type SpecifierKind string

const (
	ImportDefaultSpecifier   SpecifierKind = "ImportDefaultSpecifier"
	ImportNamespaceSpecifier SpecifierKind = "ImportNamespaceSpecifier"
	ImportSpecifier          SpecifierKind = "ImportSpecifier"
	ExportDefaultSpecifier   SpecifierKind = "ExportDefaultSpecifier"
	ExportNamespaceSpecifier SpecifierKind = "ExportNamespaceSpecifier"
	ExportSpecifier          SpecifierKind = "ExportSpecifier"
)

// DeclareKind separates value declarations from type-only ones.
type DeclareKind string

const (
	KindValue DeclareKind = "value"
	KindType  DeclareKind = "type"
)

// Specifier is one binding of an import or export declaration. Local is
// empty for specifiers that bind nothing in the importing file, such as
// `export * as ns from` without a rename.
type Specifier struct {
	Kind     SpecifierKind `json:"type"`
	Local    string        `json:"local,omitempty"`
	Imported string        `json:"imported,omitempty"`
	Exported string        `json:"exported,omitempty"`
}

// Declaration is a single import or export record of a source file.
type Declaration struct {
	Kind       DeclKind    `json:"type"`
	Source     string      `json:"source"`
	Specifiers []Specifier `json:"specifiers,omitempty"`
	ImportKind DeclareKind `json:"importKind,omitempty"`
	ExportKind DeclareKind `json:"exportKind,omitempty"`
	Start      int         `json:"start"`
	End        int         `json:"end"`
}

// TypeOnly reports whether the declaration only moves types, which never
// carry runtime requests.
func (d Declaration) TypeOnly() bool {
	return d.ImportKind == KindType || d.ExportKind == KindType
}

// LocalNames returns the non-empty local bindings in specifier order.
func (d Declaration) LocalNames() []string {
	var names []string
	for _, s := range d.Specifiers {
		if s.Local != "" {
			names = append(names, s.Local)
		}
	}
	return names
}

// FileDeclarations maps an absolute file path to its declarations in
// source order.
type FileDeclarations map[string][]Declaration

// DecodeFileDeclarations reads a host-produced JSON object of file path to
// declaration list.
func DecodeFileDeclarations(r io.Reader) (FileDeclarations, error) {
	var decls FileDeclarations
	if err := json.NewDecoder(r).Decode(&decls); err != nil {
		return nil, fmt.Errorf("decoding file declarations: %w", err)
	}
	return decls, nil
}
