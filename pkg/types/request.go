// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across go-pagerequest packages.
// Implements: prd001-service-extractor R5 (shared types).
package types

// APIRequest describes one callable backend API declared in a service file.
type APIRequest struct {
	Name   string `json:"name"`   // Service function name (informational)
	Method string `json:"method"` // HTTP method as written in the service file
	URL    string `json:"url"`    // Request URL literal
}

// RequestKey is the deduplication identity of a request. Two requests with
// the same method and URL are the same API even when their names differ.
type RequestKey struct {
	Method string
	URL    string
}

// Key returns the deduplication identity of the request.
func (r APIRequest) Key() RequestKey {
	return RequestKey{Method: r.Method, URL: r.URL}
}

// ServiceGroupMap maps a service group (the directory under services/) to
// its functions, keyed by exported function name.
type ServiceGroupMap map[string]map[string]APIRequest

// Lookup returns the request declared by function name in group.
func (m ServiceGroupMap) Lookup(group, name string) (APIRequest, bool) {
	fns, ok := m[group]
	if !ok {
		return APIRequest{}, false
	}
	r, ok := fns[name]
	return r, ok
}

// Count returns the total number of requests across all groups.
func (m ServiceGroupMap) Count() int {
	n := 0
	for _, fns := range m {
		n += len(fns)
	}
	return n
}

// Dedupe returns reqs with later duplicates (same Key) dropped. The order of
// first occurrences is preserved.
func Dedupe(reqs []APIRequest) []APIRequest {
	seen := make(map[RequestKey]bool, len(reqs))
	out := make([]APIRequest, 0, len(reqs))
	for _, r := range reqs {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
