// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scan produces host declarations for a source tree by parsing
// JavaScript and TypeScript files with tree-sitter. It stands in for the
// bundler when the resolver runs from the command line.
// Implements: prd007-host-scanner R1, R2, R3, R4;
//
//	docs/ARCHITECTURE § Host Scanner.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

const tracerName = "go-pagerequest/scan"

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".umi":         true,
	"dist":         true,
}

// Config configures a Scanner.
type Config struct {
	SrcRoot     string
	Fs          afero.Fs     // Defaults to the OS file system
	Logger      *slog.Logger // Defaults to slog.Default()
	Concurrency int          // Parallel parses; defaults to GOMAXPROCS
}

// ScanStats reports what one Scan did.
type ScanStats struct {
	FilesParsed  int
	CacheHits    int
	FilesSkipped   int // Unreadable files
	FilesRecovered int // Files with syntax errors; clean statements kept
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	decls   []types.Declaration
	err     error // Syntax error reported with decls
}

// Scanner walks a source root and extracts declarations per file. Results
// are cached by modification time and size so repeated scans only parse
// changed files. A Scanner is safe for concurrent use.
//
// Implements: prd007-host-scanner R1, R4.
type Scanner struct {
	cfg Config

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// New creates a Scanner with an empty cache.
func New(cfg Config) *Scanner {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	return &Scanner{cfg: cfg, cache: make(map[string]cacheEntry)}
}

type sourceFile struct {
	path string
	info os.FileInfo
}

// Scan returns the declarations of every supported file under the source
// root, keyed by path. Files that cannot be read or parsed are left out.
//
// Implements: prd007-host-scanner R1.1-R1.5.
func (s *Scanner) Scan(ctx context.Context) (types.FileDeclarations, ScanStats, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "scan.Scan",
		trace.WithAttributes(attribute.String("src_root", s.cfg.SrcRoot)))
	defer span.End()

	files, err := s.collect(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, ScanStats{}, err
	}

	var (
		statsMu sync.Mutex
		stats   ScanStats
		results = make([][]types.Declaration, len(files))
		ok      = make([]bool, len(files))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decls, hit, err := s.scanFile(gctx, f)

			statsMu.Lock()
			defer statsMu.Unlock()
			switch {
			case errors.Is(err, ErrSyntax):
				stats.FilesRecovered++
				s.cfg.Logger.Warn("source file has syntax errors, keeping clean statements",
					slog.String("path", f.path),
					slog.Int("declarations", len(decls)))
			case err != nil:
				stats.FilesSkipped++
				s.cfg.Logger.Debug("skipping source file", "path", f.path, "error", err)
			case hit:
				stats.CacheHits++
			default:
				stats.FilesParsed++
			}
			if err == nil || errors.Is(err, ErrSyntax) {
				results[i], ok[i] = decls, true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, stats, err
	}

	out := make(types.FileDeclarations, len(files))
	live := make(map[string]bool, len(files))
	for i, f := range files {
		live[f.path] = true
		if ok[i] {
			out[f.path] = results[i]
		}
	}
	s.prune(live)

	span.SetAttributes(
		attribute.Int("files", len(out)),
		attribute.Int("parsed", stats.FilesParsed),
		attribute.Int("cache_hits", stats.CacheHits),
		attribute.Int("recovered", stats.FilesRecovered),
	)
	return out, stats, nil
}

// Invalidate drops all cached declarations.
func (s *Scanner) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cacheEntry)
}

// collect lists supported files in walk order.
func (s *Scanner) collect(ctx context.Context) ([]sourceFile, error) {
	var files []sourceFile
	err := afero.Walk(s.cfg.Fs, s.cfg.SrcRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == s.cfg.SrcRoot {
				return err
			}
			return nil // Skip entries we cannot stat.
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() {
			if path != s.cfg.SrcRoot && skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if Supported(path) {
			files = append(files, sourceFile{path: path, info: info})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.cfg.SrcRoot, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, nil
}

// scanFile returns the declarations of one file, using the cache when the
// file is unchanged.
func (s *Scanner) scanFile(ctx context.Context, f sourceFile) ([]types.Declaration, bool, error) {
	s.mu.Lock()
	if cached, ok := s.cache[f.path]; ok && cached.modTime.Equal(f.info.ModTime()) && cached.size == f.info.Size() {
		s.mu.Unlock()
		return cached.decls, true, cached.err
	}
	s.mu.Unlock()

	content, err := afero.ReadFile(s.cfg.Fs, f.path)
	if err != nil {
		return nil, false, err
	}
	decls, err := ParseDeclarations(ctx, f.path, content)
	if err != nil && !errors.Is(err, ErrSyntax) {
		return nil, false, err
	}

	s.mu.Lock()
	s.cache[f.path] = cacheEntry{modTime: f.info.ModTime(), size: f.info.Size(), decls: decls, err: err}
	s.mu.Unlock()
	return decls, false, err
}

func (s *Scanner) prune(live map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path := range s.cache {
		if !live[path] {
			delete(s.cache, path)
		}
	}
}
