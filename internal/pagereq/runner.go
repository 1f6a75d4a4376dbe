// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pagereq implements the pass orchestrator, wiring the service
// extractor, import graph, path resolver and reachability resolver into one
// resolution pass.
// Implements: prd002-resolver-interface R2;
//
//	docs/ARCHITECTURE § Resolver Interface, Pass Lifecycle.
package pagereq

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petar-djukic/go-pagerequest/internal/importgraph"
	"github.com/petar-djukic/go-pagerequest/internal/modpath"
	"github.com/petar-djukic/go-pagerequest/internal/output"
	"github.com/petar-djukic/go-pagerequest/internal/reach"
	"github.com/petar-djukic/go-pagerequest/internal/services"
	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

// Deps holds the configuration and injected collaborators of a Runner.
type Deps struct {
	SrcRoot        string
	Alias          string
	ServicesDir    string // Relative to SrcRoot
	PagesDir       string // Relative to SrcRoot
	PageExtensions []string

	FollowDynamicImports bool
	FollowReExports      bool

	Fs            afero.Fs
	Logger        *slog.Logger
	ServiceParser services.Parser // Nil selects services.ParseServiceSource
}

// PassStats summarizes one pass.
type PassStats struct {
	Files            int // Files in the import graph
	Pages            int
	Requests         int // Sum of per-page list lengths
	ServiceGroups    int
	ServiceFunctions int
	ServiceFiles     int // Service files re-read this pass
	FilesResolved    int
	MemoHits         int
	PathLookups      int
}

// PassResult holds the outcome of one pass. This is the internal result
// type; pkg/pagerequest converts it to the public Result.
type PassResult struct {
	Pages       types.PageRequestMap
	Diagnostics []types.Diagnostic
	Stats       PassStats
	Duration    time.Duration
}

// Runner runs resolution passes. Passes are serialized; the per-pass
// caches live in the graph, path resolver and reachability resolver and are
// cleared around every pass. The service cache outlives passes and is
// refreshed per file by modification time.
type Runner struct {
	deps Deps

	mu       sync.Mutex
	graph    *importgraph.Graph
	paths    *modpath.Resolver
	services *services.Extractor
}

// NewRunner creates a Runner. Zero-value fields of deps get defaults.
func NewRunner(deps Deps) *Runner {
	if deps.Alias == "" {
		deps.Alias = modpath.DefaultAlias
	}
	if deps.ServicesDir == "" {
		deps.ServicesDir = services.DefaultDir
	}
	if deps.PagesDir == "" {
		deps.PagesDir = importgraph.DefaultPagesDir
	}
	if len(deps.PageExtensions) == 0 {
		deps.PageExtensions = importgraph.DefaultPageExtensions
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.SrcRoot != "" {
		deps.SrcRoot = filepath.Clean(deps.SrcRoot)
	}

	return &Runner{
		deps: deps,
		graph: importgraph.New(importgraph.Config{
			SrcRoot:              deps.SrcRoot,
			Alias:                deps.Alias,
			PagesDir:             deps.PagesDir,
			PageExtensions:       deps.PageExtensions,
			FollowDynamicImports: deps.FollowDynamicImports,
			FollowReExports:      deps.FollowReExports,
		}),
		paths: modpath.New(modpath.Config{
			SrcRoot: deps.SrcRoot,
			Alias:   deps.Alias,
			Fs:      deps.Fs,
			Logger:  deps.Logger,
		}),
		services: services.NewExtractor(deps.Fs, deps.ServiceParser, deps.Logger),
	}
}

// ServicesRoot returns the absolute services directory.
func (r *Runner) ServicesRoot() string {
	return filepath.Join(r.deps.SrcRoot, r.deps.ServicesDir)
}

// InvalidateServices drops the cached service descriptors so the next pass
// re-reads every service file.
func (r *Runner) InvalidateServices() {
	r.services.Invalidate()
}

// Run executes one pass over decls: rebuild the import graph, refresh the
// service map, resolve every page entry, and assemble the page map. A
// missing source root or declaration map yields an empty result. A pass
// cancelled through ctx returns no partial result.
//
// Implements: prd002-resolver-interface R2.1-R2.5.
func (r *Runner) Run(ctx context.Context, decls types.FileDeclarations) (*PassResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pagereq.Pass",
		trace.WithAttributes(attribute.String("src_root", r.deps.SrcRoot)))
	defer span.End()

	if r.deps.SrcRoot == "" || decls == nil {
		recordPass(time.Since(start), statusEmpty, nil)
		return &PassResult{Pages: types.PageRequestMap{}, Duration: time.Since(start)}, nil
	}

	// Step 1: Rebuild the graph from this pass's declarations.
	r.graph.Reset()
	r.graph.Build(decls)
	r.paths.Reset()
	defer r.paths.Reset()

	// Step 2: Refresh the service map.
	servicesRoot := r.ServicesRoot()
	groups, svcStats := r.services.Extract(servicesRoot)

	// Step 3: Resolve each page entry.
	resolver := reach.New(reach.Config{
		Graph:        r.graph,
		Paths:        r.paths,
		Services:     groups,
		ServicesRoot: servicesRoot,
		Logger:       r.deps.Logger,
	})
	asm := output.NewAssembler(r.graph.PagePrefix())
	for _, entry := range r.graph.Entries() {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			recordPass(time.Since(start), statusCancelled, nil)
			return nil, err
		}
		asm.Add(entry.DisplayID, resolver.Resolve(entry.Path))
	}

	// Step 4: Collect results before the path caches are cleared.
	pages := asm.Map()
	diags := append(append([]types.Diagnostic(nil), r.paths.Diagnostics()...), resolver.Diagnostics()...)
	rs, ps := resolver.Stats(), r.paths.Stats()
	result := &PassResult{
		Pages:       pages,
		Diagnostics: diags,
		Stats: PassStats{
			Files:            r.graph.Len(),
			Pages:            len(pages),
			Requests:         pages.RequestCount(),
			ServiceGroups:    svcStats.Groups,
			ServiceFunctions: svcStats.Functions,
			ServiceFiles:     svcStats.FilesRead,
			FilesResolved:    rs.FilesResolved,
			MemoHits:         rs.MemoHits,
			PathLookups:      ps.Lookups,
		},
		Duration: time.Since(start),
	}

	span.SetAttributes(
		attribute.Int("files", result.Stats.Files),
		attribute.Int("pages", result.Stats.Pages),
		attribute.Int("requests", result.Stats.Requests),
		attribute.Int("diagnostics", len(diags)),
	)
	recordPass(result.Duration, statusOK, diags)

	r.deps.Logger.Info("page request pass complete",
		slog.Duration("duration", result.Duration),
		slog.Int("pages", result.Stats.Pages),
		slog.Int("requests", result.Stats.Requests),
		slog.Int("diagnostics", len(diags)),
	)
	return result, nil
}
