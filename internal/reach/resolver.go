// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package reach computes, for a file, the deduplicated requests it reaches
// through local imports.
// Implements: prd004-reachability R1, R2, R3, R4;
//
//	docs/ARCHITECTURE § Reachability Resolver.
package reach

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

// EdgeSource supplies the import edges of a file.
type EdgeSource interface {
	Edges(path string) []types.ImportEdge
}

// PathResolver turns import specifiers into files.
type PathResolver interface {
	IsLocal(spec string) bool
	JoinRelative(origin, spec string) string
	Resolve(origin, spec string) []string
}

// sourceExts are the extensions a service group file may carry.
var sourceExts = map[string]bool{".js": true, ".jsx": true, ".ts": true, ".tsx": true}

// visitState is the per-file traversal state.
type visitState int

const (
	unvisited visitState = iota
	inProgress
	done
)

// Config holds the collaborators of a Resolver.
type Config struct {
	Graph        EdgeSource
	Paths        PathResolver
	Services     types.ServiceGroupMap
	ServicesRoot string // Absolute services directory
	Logger       *slog.Logger
}

// Stats counts traversal activity.
type Stats struct {
	FilesResolved int // Files whose result was computed (not memo hits)
	MemoHits      int
	Cycles        int // Revisits of a file still being resolved
}

// Resolver walks the import graph depth first, left to right, and memoizes
// each file's result. One Resolver serves one pass.
//
// Files that import each other form a strongly connected component. None
// of them is memoized until the whole component has been walked; each
// member then gets every request reachable from it, in the order a walk
// starting at that member discovers them. The answer for a file does not
// depend on which entries were resolved before it.
type Resolver struct {
	cfg Config

	memo  map[string][]types.APIRequest
	state map[string]visitState
	index map[string]int
	steps map[string][]step
	stack []string
	next  int
	diags []types.Diagnostic
	stats Stats
}

// step is one contribution of a file's edges: either requests taken from a
// service group or a local file whose result is spliced in.
type step struct {
	reqs []types.APIRequest
	file string
}

// noLink marks a visit that reached no file still on the stack.
const noLink = -1

// New creates a Resolver.
func New(cfg Config) *Resolver {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ServicesRoot != "" {
		cfg.ServicesRoot = filepath.Clean(cfg.ServicesRoot)
	}
	return &Resolver{
		cfg:   cfg,
		memo:  make(map[string][]types.APIRequest),
		state: make(map[string]visitState),
		index: make(map[string]int),
		steps: make(map[string][]step),
	}
}

// Stats returns the traversal counters.
func (r *Resolver) Stats() Stats {
	return r.stats
}

// Diagnostics returns the cycles and unknown service groups encountered.
func (r *Resolver) Diagnostics() []types.Diagnostic {
	return r.diags
}

// Resolve returns the deduplicated requests reachable from the file at
// path, in first-discovery order.
//
// Implements: prd004-reachability R1.1-R1.5.
func (r *Resolver) Resolve(path string) []types.APIRequest {
	path = filepath.Clean(path)
	r.visit(path)
	return r.memo[path]
}

// visit walks path and returns what it collected together with the lowest
// stack index it reached. A result whose link is not noLink is partial and
// must not be used as the file's answer.
func (r *Resolver) visit(path string) ([]types.APIRequest, int) {
	switch r.state[path] {
	case done:
		r.stats.MemoHits++
		return r.memo[path], noLink
	case inProgress:
		r.stats.Cycles++
		r.diags = append(r.diags, types.Diagnostic{Kind: types.DiagCycle, File: path, Source: path})
		r.cfg.Logger.Debug("import cycle reached file in progress", slog.String("file", path))
		return nil, r.index[path]
	}

	idx := r.next
	r.next++
	r.index[path] = idx
	r.state[path] = inProgress
	r.stack = append(r.stack, path)

	low := idx
	var (
		found []types.APIRequest
		steps []step
	)
	for _, edge := range r.cfg.Graph.Edges(path) {
		if !r.cfg.Paths.IsLocal(edge.Source) {
			continue
		}
		if group, ok := r.serviceGroup(r.cfg.Paths.JoinRelative(path, edge.Source)); ok {
			reqs := r.serviceRequests(path, edge, group)
			found = append(found, reqs...)
			steps = append(steps, step{reqs: reqs})
			continue
		}
		for _, file := range r.cfg.Paths.Resolve(path, edge.Source) {
			file = filepath.Clean(file)
			reqs, link := r.visit(file)
			if link != noLink && link < low {
				low = link
			}
			found = append(found, reqs...)
			steps = append(steps, step{file: file})
		}
	}

	if low < idx {
		r.steps[path] = steps
		return found, low
	}

	// path is the root of a component: everything above it on the stack.
	pos := len(r.stack) - 1
	for r.stack[pos] != path {
		pos--
	}
	members := append([]string(nil), r.stack[pos:]...)
	r.stack = r.stack[:pos]

	if len(members) == 1 {
		r.finish(path, types.Dedupe(found))
		return r.memo[path], noLink
	}

	r.steps[path] = steps
	component := make(map[string]bool, len(members))
	for _, m := range members {
		component[m] = true
	}
	results := make(map[string][]types.APIRequest, len(members))
	for _, m := range members {
		results[m] = types.Dedupe(r.collect(m, component, make(map[string]bool)))
	}
	for _, m := range members {
		r.finish(m, results[m])
		delete(r.steps, m)
	}
	return r.memo[path], noLink
}

// collect replays the recorded steps of a component member. Members are
// walked once per collection; files outside the component are finished.
func (r *Resolver) collect(path string, component, seen map[string]bool) []types.APIRequest {
	if seen[path] {
		return nil
	}
	seen[path] = true

	var found []types.APIRequest
	for _, s := range r.steps[path] {
		switch {
		case s.file == "":
			found = append(found, s.reqs...)
		case component[s.file]:
			found = append(found, r.collect(s.file, component, seen)...)
		default:
			found = append(found, r.memo[s.file]...)
		}
	}
	return found
}

func (r *Resolver) finish(path string, result []types.APIRequest) {
	r.memo[path] = result
	r.state[path] = done
	r.stats.FilesResolved++
}

// serviceRequests looks up the edge's bindings in group. Bindings that are
// not request functions (constants, types re-exported as values) are
// ignored.
func (r *Resolver) serviceRequests(origin string, edge types.ImportEdge, group string) []types.APIRequest {
	if group == "" {
		return nil
	}
	if _, ok := r.cfg.Services[group]; !ok {
		r.diags = append(r.diags, types.Diagnostic{Kind: types.DiagUnknownGroup, File: origin, Source: edge.Source})
		return nil
	}
	var found []types.APIRequest
	for _, name := range edge.Bindings {
		if req, ok := r.cfg.Services.Lookup(group, name); ok {
			found = append(found, req)
		}
	}
	return found
}

// serviceGroup reports whether path lies under the services root and, if
// so, returns the first path segment below it. A source extension is
// removed only when that segment is the last element, as in
// "@/services/user.ts". The services root itself yields an empty group.
//
// Implements: prd004-reachability R2.1.
func (r *Resolver) serviceGroup(path string) (string, bool) {
	if r.cfg.ServicesRoot == "" {
		return "", false
	}
	rel, err := filepath.Rel(r.cfg.ServicesRoot, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	segment, _, nested := strings.Cut(filepath.ToSlash(rel), "/")
	if !nested && sourceExts[filepath.Ext(segment)] {
		segment = strings.TrimSuffix(segment, filepath.Ext(segment))
	}
	return segment, true
}
