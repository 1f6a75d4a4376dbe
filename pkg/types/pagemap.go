// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd005-output R1;
//
//	docs/ARCHITECTURE § Output Assembler.
package types

import "sort"

// ImportEdge is one import statement's contribution to the file graph: the
// raw module specifier and the local names it binds, in specifier order.
type ImportEdge struct {
	Source   string
	Bindings []string
}

// PageRequestMap maps a page display path (for example "/Profile") to the
// deduplicated requests the page transitively uses, in discovery order.
type PageRequestMap map[string][]APIRequest

// Pages returns the page keys in sorted order.
func (m PageRequestMap) Pages() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RequestCount returns the number of requests summed over all pages.
func (m PageRequestMap) RequestCount() int {
	n := 0
	for _, reqs := range m {
		n += len(reqs)
	}
	return n
}
