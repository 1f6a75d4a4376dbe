// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pagerequest defines the public interface for go-pagerequest, a
// static resolver that maps every page of a JavaScript or TypeScript
// application to the backend APIs it transitively imports.
// Implements: prd002-resolver-interface R1, R3, R4;
//
//	docs/ARCHITECTURE § Resolver Interface.
package pagerequest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

// ErrInvalidConfig is returned by New when the config cannot be used.
//
// Implements: prd002-resolver-interface R4.1.
var ErrInvalidConfig = errors.New("invalid config")

// Config configures a Resolver instance.
//
// Implements: prd002-resolver-interface R1.1-R1.8.
type Config struct {
	SrcRoot        string   // Absolute source root (required)
	Alias          string   // Alias token standing for SrcRoot (default "@")
	ServicesDir    string   // Service groups directory under SrcRoot (default "services")
	PagesDir       string   // Page entries directory under SrcRoot (default "pages")
	PageExtensions []string // Page entry extensions (default [".tsx"])

	FollowDynamicImports bool // Traverse import("x") calls
	FollowReExports      bool // Traverse export ... from declarations

	Fs     afero.Fs     // File system to read (default OS)
	Logger *slog.Logger // Default slog.Default()
}

// Stats summarizes one pass.
type Stats struct {
	Files            int // Files in the import graph
	Pages            int // Page entries resolved
	Requests         int // Sum of per-page list lengths
	ServiceGroups    int
	ServiceFunctions int
	FilesResolved    int // Files whose reachability was computed
	MemoHits         int
}

// Result holds the outcome of a Resolver.Resolve invocation.
//
// Implements: prd002-resolver-interface R3.1-R3.4.
type Result struct {
	Pages       types.PageRequestMap // Page display path to its requests
	Diagnostics []types.Diagnostic   // Degradations observed during the pass
	Stats       Stats
	Duration    time.Duration
}

// Resolver resolves the page request map of an application.
//
// Implements: prd002-resolver-interface R2.1-R2.5.
type Resolver interface {
	// Resolve runs one pass over the host-supplied declarations: build the
	// import graph, refresh the service map, walk every page entry, and
	// return the page map. A nil declaration map yields an empty map.
	Resolve(ctx context.Context, decls types.FileDeclarations) (*Result, error)

	// InvalidateServices drops cached service descriptors so the next pass
	// re-reads every service file.
	InvalidateServices()
}
