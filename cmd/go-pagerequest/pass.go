// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd010-cli R2.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-pagerequest/internal/output"
	"github.com/petar-djukic/go-pagerequest/internal/scan"
	"github.com/petar-djukic/go-pagerequest/pkg/pagerequest"
	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

// defaultOutRel is the artifact location relative to the source root.
var defaultOutRel = filepath.Join(".umi", "plugin-pageRequest", "index.ts")

// session holds what one command needs to run passes.
type session struct {
	srcRoot  string
	fs       afero.Fs
	scanner  *scan.Scanner
	resolver pagerequest.Resolver
}

// newSession resolves the source root and builds the scanner and resolver
// from viper settings.
func newSession() (*session, error) {
	srcRoot, err := filepath.Abs(viper.GetString("src"))
	if err != nil {
		return nil, fmt.Errorf("resolving source root: %w", err)
	}
	if info, err := os.Stat(srcRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("source root %q does not exist or is not a directory", srcRoot)
	}

	fs := afero.NewOsFs()
	resolver, err := pagerequest.New(pagerequest.Config{
		SrcRoot:              srcRoot,
		Alias:                viper.GetString("alias"),
		ServicesDir:          viper.GetString("services-dir"),
		PagesDir:             viper.GetString("pages-dir"),
		PageExtensions:       viper.GetStringSlice("page-ext"),
		FollowDynamicImports: viper.GetBool("follow-dynamic"),
		FollowReExports:      viper.GetBool("follow-reexports"),
		Fs:                   fs,
		Logger:               slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("initialization failed: %w", err)
	}

	return &session{
		srcRoot:  srcRoot,
		fs:       fs,
		scanner:  scan.New(scan.Config{SrcRoot: srcRoot, Fs: fs, Logger: slog.Default()}),
		resolver: resolver,
	}, nil
}

// outPath returns the artifact path, defaulting under the source root.
func (s *session) outPath(flag string) (string, error) {
	if flag == "" {
		return filepath.Join(s.srcRoot, defaultOutRel), nil
	}
	return filepath.Abs(flag)
}

// declarations reads host declarations from declsPath ("-" for stdin) or
// scans the source root when declsPath is empty.
func (s *session) declarations(ctx context.Context, declsPath string) (types.FileDeclarations, error) {
	switch declsPath {
	case "":
		decls, stats, err := s.scanner.Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning sources: %w", err)
		}
		slog.Debug("scanned sources",
			slog.Int("parsed", stats.FilesParsed),
			slog.Int("cached", stats.CacheHits),
			slog.Int("skipped", stats.FilesSkipped),
			slog.Int("recovered", stats.FilesRecovered))
		return decls, nil
	case "-":
		return types.DecodeFileDeclarations(os.Stdin)
	default:
		f, err := s.fs.Open(declsPath)
		if err != nil {
			return nil, fmt.Errorf("opening declarations: %w", err)
		}
		defer f.Close()
		return types.DecodeFileDeclarations(f)
	}
}

// pass runs one resolution pass and returns the result with the serialized
// page map.
func (s *session) pass(ctx context.Context, declsPath string, format output.Format) (*pagerequest.Result, string, error) {
	decls, err := s.declarations(ctx, declsPath)
	if err != nil {
		return nil, "", err
	}
	res, err := s.resolver.Resolve(ctx, decls)
	if err != nil {
		return nil, "", err
	}
	for _, d := range res.Diagnostics {
		slog.Debug("diagnostic", slog.String("kind", d.Kind.String()), slog.String("detail", d.String()))
	}
	content, err := output.Serialize(res.Pages, format)
	if err != nil {
		return nil, "", err
	}
	return res, content, nil
}
