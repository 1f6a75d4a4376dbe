// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package output assembles per-page results into a PageRequestMap and
// serializes it into the artifact the application loads.
// Implements: prd005-output R1, R2, R3;
//
//	docs/ARCHITECTURE § Output Assembler.
package output

import (
	"path"
	"strings"

	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

// Assembler collects page results under their display keys.
type Assembler struct {
	pagePrefix string
	pages      types.PageRequestMap
}

// NewAssembler creates an assembler that strips pagePrefix (for example
// "@/pages/") from entry display identities.
func NewAssembler(pagePrefix string) *Assembler {
	return &Assembler{pagePrefix: pagePrefix, pages: make(types.PageRequestMap)}
}

// Add records the requests of the page with the given display identity.
// Pages with no requests are kept.
//
// Implements: prd005-output R1.1-R1.3.
func (a *Assembler) Add(displayID string, reqs []types.APIRequest) {
	if reqs == nil {
		reqs = []types.APIRequest{}
	}
	a.pages[PageKey(displayID, a.pagePrefix)] = reqs
}

// Map returns the assembled map.
func (a *Assembler) Map() types.PageRequestMap {
	return a.pages
}

// PageKey turns "@/pages/User/Profile.tsx" into "/User/Profile" given the
// prefix "@/pages/". Identities without the prefix only lose their
// extension.
func PageKey(displayID, pagePrefix string) string {
	key := displayID
	if rest, ok := strings.CutPrefix(displayID, pagePrefix); ok {
		key = "/" + rest
	}
	return strings.TrimSuffix(key, path.Ext(key))
}
