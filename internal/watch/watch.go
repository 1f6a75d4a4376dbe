// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package watch reruns resolution passes when source files change.
// Implements: prd008-watch-mode R1, R2, R3;
//
//	docs/ARCHITECTURE § Watch Mode.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/petar-djukic/go-pagerequest/internal/scan"
)

const defaultDebounce = 200 * time.Millisecond

// skipDirs are never watched.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".umi":         true,
	"dist":         true,
}

// Config configures a Watcher.
type Config struct {
	SrcRoot      string        // Directory tree to watch (required)
	ServicesRoot string        // Changes under it set Event.ServicesChanged
	Debounce     time.Duration // Quiet period before a batch fires (default 200ms)
	Ignore       []string      // Files whose changes are dropped, such as the artifact
	Logger       *slog.Logger
}

// Event is one debounced batch of changes.
type Event struct {
	Paths           []string // Changed files, sorted
	ServicesChanged bool
}

// Handler is called once per batch. A returned error is logged and the
// watcher keeps running.
type Handler func(ctx context.Context, ev Event) error

// Watcher watches a source tree recursively.
type Watcher struct {
	cfg    Config
	fsw    *fsnotify.Watcher
	ignore map[string]bool
}

// New creates a Watcher and registers every directory under SrcRoot.
//
// Implements: prd008-watch-mode R1.1-R1.3.
func New(cfg Config) (*Watcher, error) {
	if cfg.SrcRoot == "" {
		return nil, errors.New("watch: SrcRoot is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.SrcRoot = filepath.Clean(cfg.SrcRoot)
	if cfg.ServicesRoot != "" {
		cfg.ServicesRoot = filepath.Clean(cfg.ServicesRoot)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{cfg: cfg, fsw: fsw, ignore: make(map[string]bool, len(cfg.Ignore))}
	for _, p := range cfg.Ignore {
		w.ignore[filepath.Clean(p)] = true
	}
	if err := w.addTree(cfg.SrcRoot); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers debounced batches to h until ctx is done or the watcher is
// closed. Batches are delivered one at a time; changes arriving while h
// runs form the next batch.
//
// Implements: prd008-watch-mode R2.1-R2.4.
func (w *Watcher) Run(ctx context.Context, h Handler) error {
	pending := make(map[string]bool)
	servicesChanged := false

	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			pending[ev.Name] = true
			if w.underServices(ev.Name) {
				servicesChanged = true
			}
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.cfg.Logger.Warn("watch error", slog.String("error", err.Error()))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := Event{ServicesChanged: servicesChanged}
			for p := range pending {
				batch.Paths = append(batch.Paths, p)
			}
			sort.Strings(batch.Paths)
			pending = make(map[string]bool)
			servicesChanged = false

			if err := h(ctx, batch); err != nil {
				w.cfg.Logger.Error("watch handler failed",
					slog.Int("changes", len(batch.Paths)),
					slog.String("error", err.Error()))
			}
		}
	}
}

// relevant filters events down to source changes. New directories are
// registered as a side effect.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if w.ignore[ev.Name] || w.skipped(ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if err := w.addTree(ev.Name); err == nil && w.isDir(ev.Name) {
			return true
		}
	}
	if scan.Supported(ev.Name) {
		return true
	}
	// A removed or renamed directory takes its sources with it.
	return (ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)) && filepath.Ext(ev.Name) == ""
}

func (w *Watcher) underServices(path string) bool {
	if w.cfg.ServicesRoot == "" {
		return false
	}
	return path == w.cfg.ServicesRoot ||
		strings.HasPrefix(path, w.cfg.ServicesRoot+string(filepath.Separator))
}

// skipped reports whether path lies in an ignored directory.
func (w *Watcher) skipped(path string) bool {
	rel, err := filepath.Rel(w.cfg.SrcRoot, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if skipDirs[part] {
			return true
		}
	}
	return false
}

func (w *Watcher) isDir(path string) bool {
	for _, p := range w.fsw.WatchList() {
		if p == path {
			return true
		}
	}
	return false
}

// addTree watches root and every directory under it. A root that is not a
// directory is ignored.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
