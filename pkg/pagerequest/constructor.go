// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd002-resolver-interface R4;
//
//	docs/ARCHITECTURE § Resolver Interface.
package pagerequest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/petar-djukic/go-pagerequest/internal/pagereq"
	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

const (
	defaultAlias       = "@"
	defaultServicesDir = "services"
	defaultPagesDir    = "pages"
)

var defaultPageExtensions = []string{".tsx"}

// New validates the config and returns a ready-to-use Resolver. It does not
// read the source tree; that happens in Resolve.
//
// Implements: prd002-resolver-interface R4.1-R4.3.
func New(cfg Config) (Resolver, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)

	runner := pagereq.NewRunner(pagereq.Deps{
		SrcRoot:              cfg.SrcRoot,
		Alias:                cfg.Alias,
		ServicesDir:          cfg.ServicesDir,
		PagesDir:             cfg.PagesDir,
		PageExtensions:       cfg.PageExtensions,
		FollowDynamicImports: cfg.FollowDynamicImports,
		FollowReExports:      cfg.FollowReExports,
		Fs:                   cfg.Fs,
		Logger:               cfg.Logger,
	})

	return &resolverAdapter{runner: runner}, nil
}

// resolverAdapter adapts internal/pagereq.Runner to the public Resolver
// interface.
type resolverAdapter struct {
	runner *pagereq.Runner
}

func (a *resolverAdapter) Resolve(ctx context.Context, decls types.FileDeclarations) (*Result, error) {
	pr, err := a.runner.Run(ctx, decls)
	if pr == nil {
		return &Result{Pages: types.PageRequestMap{}}, err
	}
	return &Result{
		Pages:       pr.Pages,
		Diagnostics: pr.Diagnostics,
		Stats: Stats{
			Files:            pr.Stats.Files,
			Pages:            pr.Stats.Pages,
			Requests:         pr.Stats.Requests,
			ServiceGroups:    pr.Stats.ServiceGroups,
			ServiceFunctions: pr.Stats.ServiceFunctions,
			FilesResolved:    pr.Stats.FilesResolved,
			MemoHits:         pr.Stats.MemoHits,
		},
		Duration: pr.Duration,
	}, err
}

func (a *resolverAdapter) InvalidateServices() {
	a.runner.InvalidateServices()
}

// validateConfig checks that required fields are present and well formed.
//
// Implements: prd002-resolver-interface R1.6-R1.8.
func validateConfig(cfg Config) error {
	if cfg.SrcRoot == "" {
		return fmt.Errorf("SrcRoot is required")
	}
	if !filepath.IsAbs(cfg.SrcRoot) {
		return fmt.Errorf("SrcRoot %q must be absolute", cfg.SrcRoot)
	}
	if strings.ContainsAny(cfg.Alias, `/\`) {
		return fmt.Errorf("Alias %q must not contain a path separator", cfg.Alias)
	}
	for _, ext := range cfg.PageExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("page extension %q must start with a dot", ext)
		}
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Alias == "" {
		cfg.Alias = defaultAlias
	}
	if cfg.ServicesDir == "" {
		cfg.ServicesDir = defaultServicesDir
	}
	if cfg.PagesDir == "" {
		cfg.PagesDir = defaultPagesDir
	}
	if len(cfg.PageExtensions) == 0 {
		cfg.PageExtensions = defaultPageExtensions
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}
