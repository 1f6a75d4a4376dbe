// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package importgraph projects host-supplied declarations into the file
// import graph the reachability resolver walks.
// Implements: prd003-import-graph R1, R2, R3;
//
//	docs/ARCHITECTURE § Import Graph Builder.
package importgraph

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

const (
	DefaultAlias    = "@"
	DefaultPagesDir = "pages"
)

// DefaultPageExtensions are the component file extensions that make a file
// under the pages directory an entry point.
var DefaultPageExtensions = []string{".tsx"}

// packageSourceRe matches bare package specifiers such as "react" or
// "@umijs/max". Alias-rooted specifiers ("@/x") do not match.
var packageSourceRe = regexp.MustCompile(`^@?[A-Za-z]`)

// Config configures graph construction.
type Config struct {
	SrcRoot        string
	Alias          string
	PagesDir       string
	PageExtensions []string

	FollowDynamicImports bool // DynamicImport declarations become unbound edges
	FollowReExports      bool // export ... from declarations become edges
}

// Entry is a page file discovered while building the graph.
type Entry struct {
	Path      string // Absolute file path
	DisplayID string // Alias form, e.g. "@/pages/Profile.tsx"
}

// Graph maps each file's display identity to its import edges.
type Graph struct {
	cfg     Config
	records map[string][]types.ImportEdge
	entries []Entry
}

// New creates an empty graph.
func New(cfg Config) *Graph {
	if cfg.Alias == "" {
		cfg.Alias = DefaultAlias
	}
	if cfg.PagesDir == "" {
		cfg.PagesDir = DefaultPagesDir
	}
	if len(cfg.PageExtensions) == 0 {
		cfg.PageExtensions = DefaultPageExtensions
	}
	cfg.SrcRoot = filepath.Clean(cfg.SrcRoot)
	return &Graph{cfg: cfg, records: make(map[string][]types.ImportEdge)}
}

// Reset discards every record and entry.
func (g *Graph) Reset() {
	g.records = make(map[string][]types.ImportEdge)
	g.entries = nil
}

// Build replaces the graph with the projection of decls. Files are
// processed in sorted order so entries come out deterministic.
//
// Implements: prd003-import-graph R1.1-R1.4.
func (g *Graph) Build(decls types.FileDeclarations) {
	g.Reset()

	paths := make([]string, 0, len(decls))
	for p := range decls {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		id := g.DisplayID(p)
		g.records[id] = g.edges(decls[p])
		if g.isPage(id) {
			g.entries = append(g.entries, Entry{Path: filepath.Clean(p), DisplayID: id})
		}
	}
}

// Edges returns the import edges of the file at absolute path, or nil for a
// file the host did not supply.
func (g *Graph) Edges(path string) []types.ImportEdge {
	return g.records[g.DisplayID(path)]
}

// Entries returns the page entries in display-identity order.
func (g *Graph) Entries() []Entry {
	return g.entries
}

// Len returns the number of files in the graph.
func (g *Graph) Len() int {
	return len(g.records)
}

// DisplayID returns the alias form of an absolute path under the source
// root ("@/pages/Profile.tsx"). Paths outside the root keep their
// slash-separated absolute form.
//
// Implements: prd003-import-graph R2.
func (g *Graph) DisplayID(path string) string {
	rel, err := filepath.Rel(g.cfg.SrcRoot, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return g.cfg.Alias + "/" + filepath.ToSlash(rel)
}

// PagePrefix returns the display prefix shared by all page entries.
func (g *Graph) PagePrefix() string {
	return g.cfg.Alias + "/" + g.cfg.PagesDir + "/"
}

func (g *Graph) isPage(id string) bool {
	if !strings.HasPrefix(id, g.PagePrefix()) {
		return false
	}
	ext := filepath.Ext(id)
	for _, e := range g.cfg.PageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// edges keeps local value imports (plus dynamic imports and re-exports when
// enabled) and projects them to ImportEdges in declaration order.
//
// Implements: prd003-import-graph R1.2, R3.
func (g *Graph) edges(decls []types.Declaration) []types.ImportEdge {
	var out []types.ImportEdge
	for _, d := range decls {
		if d.Source == "" || d.TypeOnly() || packageSourceRe.MatchString(d.Source) {
			continue
		}
		switch d.Kind {
		case types.ImportDeclaration:
		case types.DynamicImport:
			if !g.cfg.FollowDynamicImports {
				continue
			}
		case types.ExportNamedDeclaration, types.ExportAllDeclaration:
			if !g.cfg.FollowReExports {
				continue
			}
		default:
			continue
		}
		out = append(out, types.ImportEdge{Source: d.Source, Bindings: d.LocalNames()})
	}
	return out
}
