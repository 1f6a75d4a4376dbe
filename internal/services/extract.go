// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package services builds the service group map: for every group directory
// under the services root, the request descriptors its files declare.
// Implements: prd001-service-extractor R1, R3;
//
//	docs/ARCHITECTURE § Service Descriptor Extractor.
package services

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

// DefaultDir is the services directory name under the source root.
const DefaultDir = "services"

// sourceExts are the file extensions read inside a group directory.
var sourceExts = map[string]bool{".js": true, ".jsx": true, ".ts": true, ".tsx": true}

// cacheEntry stores parse results keyed by file path and mod time.
type cacheEntry struct {
	modTime time.Time
	size    int64
	fns     map[string]types.APIRequest
}

// ExtractStats tracks extraction statistics for one Extract call.
type ExtractStats struct {
	Groups      int
	FilesRead   int
	FilesCached int
	Functions   int
	Skipped     int
}

// Extractor builds ServiceGroupMaps. It keeps a per-file cache so that
// rebuilding the map on every pass only re-reads service files that changed.
//
// Implements: prd001-service-extractor R1, R4.
type Extractor struct {
	fs     afero.Fs
	parse  Parser
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewExtractor creates an extractor reading from fs. A nil parser selects
// ParseServiceSource.
func NewExtractor(fs afero.Fs, parse Parser, logger *slog.Logger) *Extractor {
	if parse == nil {
		parse = ParseServiceSource
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		fs:     fs,
		parse:  parse,
		logger: logger,
		cache:  make(map[string]cacheEntry),
	}
}

// Invalidate drops every cached file so the next Extract re-reads all
// service sources.
func (e *Extractor) Invalidate() {
	e.mu.Lock()
	e.cache = make(map[string]cacheEntry)
	e.mu.Unlock()
}

// Extract scans servicesRoot and returns the group map. A missing or
// unreadable services root yields an empty map; unreadable files and
// fragments that do not match the expected shape are skipped.
//
// Implements: prd001-service-extractor R1.1-R1.5.
func (e *Extractor) Extract(servicesRoot string) (types.ServiceGroupMap, ExtractStats) {
	e.mu.Lock()
	defer e.mu.Unlock()

	groups := make(types.ServiceGroupMap)
	var stats ExtractStats

	entries, err := afero.ReadDir(e.fs, servicesRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			e.logger.Warn("reading services directory",
				slog.String("dir", servicesRoot),
				slog.String("error", err.Error()))
		}
		return groups, stats
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		group := entry.Name()
		groupDir := filepath.Join(servicesRoot, group)

		files, err := afero.ReadDir(e.fs, groupDir)
		if err != nil {
			stats.Skipped++
			continue
		}
		sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

		fns := make(map[string]types.APIRequest)
		for _, f := range files {
			if f.IsDir() || !isServiceSource(f.Name()) {
				continue
			}
			path := filepath.Join(groupDir, f.Name())
			seen[path] = true

			parsed, cached, err := e.parseFile(path, f)
			if err != nil {
				stats.Skipped++
				continue
			}
			if cached {
				stats.FilesCached++
			} else {
				stats.FilesRead++
			}
			// Later files win on duplicate function names.
			for name, r := range parsed {
				fns[name] = r
			}
		}
		groups[group] = fns
		stats.Groups++
		stats.Functions += len(fns)
	}

	// Forget deleted files so the cache does not grow across passes.
	for path := range e.cache {
		if !seen[path] {
			delete(e.cache, path)
		}
	}

	return groups, stats
}

// parseFile returns the descriptors of one service file, consulting the
// cache first. The caller holds e.mu.
func (e *Extractor) parseFile(path string, info os.FileInfo) (map[string]types.APIRequest, bool, error) {
	if entry, ok := e.cache[path]; ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		return entry.fns, true, nil
	}

	content, err := afero.ReadFile(e.fs, path)
	if err != nil {
		e.logger.Debug("skipping unreadable service file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, false, err
	}

	fns := e.parse(string(content))
	e.cache[path] = cacheEntry{modTime: info.ModTime(), size: info.Size(), fns: fns}
	return fns, false, nil
}

// isServiceSource reports whether name is a JS/TS source file that is not a
// type declaration file.
func isServiceSource(name string) bool {
	if strings.HasSuffix(name, ".d.ts") {
		return false
	}
	return sourceExts[filepath.Ext(name)]
}
