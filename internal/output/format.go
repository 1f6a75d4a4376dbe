// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd005-output R2;
//
//	docs/ARCHITECTURE § Output Assembler, Serialization.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

// Format selects the artifact serialization.
type Format int

const (
	FormatJSON Format = iota // Compact data form for production builds
	FormatDev                // Readable literal for iterative rebuilds
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatDev:
		return "dev"
	default:
		return "unknown"
	}
}

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json", "prod", "production":
		return FormatJSON, nil
	case "dev", "development":
		return FormatDev, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want dev or json)", s)
	}
}

// Serialize renders pages in format f.
func Serialize(pages types.PageRequestMap, f Format) (string, error) {
	if f == FormatDev {
		return FormatDevLiteral(pages), nil
	}
	return FormatCompactJSON(pages)
}

// FormatCompactJSON renders pages as compact JSON with sorted keys. Pages
// without requests are kept as empty arrays.
func FormatCompactJSON(pages types.PageRequestMap) (string, error) {
	normalized := make(map[string][]types.APIRequest, len(pages))
	for k, v := range pages {
		if v == nil {
			v = []types.APIRequest{}
		}
		normalized[k] = v
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return "", fmt.Errorf("encoding page request map: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// FormatDevLiteral renders pages as an indented object literal with
// trailing commas, sorted keys, and pages without requests omitted.
// Strings that read as numbers are written as numbers.
func FormatDevLiteral(pages types.PageRequestMap) string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, key := range pages.Pages() {
		reqs := pages[key]
		if len(reqs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s%s: [\n", indent(2), strconv.Quote(key))
		for _, r := range reqs {
			fmt.Fprintf(&b, "%s{\n", indent(4))
			fmt.Fprintf(&b, "%s\"name\": %s,\n", indent(6), literal(r.Name))
			fmt.Fprintf(&b, "%s\"method\": %s,\n", indent(6), literal(r.Method))
			fmt.Fprintf(&b, "%s\"url\": %s,\n", indent(6), literal(r.URL))
			fmt.Fprintf(&b, "%s},\n", indent(4))
		}
		fmt.Fprintf(&b, "%s],\n", indent(2))
	}
	b.WriteString("}")
	return b.String()
}

func indent(n int) string {
	return strings.Repeat(" ", n)
}

// literal writes numeric strings bare and quotes everything else. NaN and
// the infinities stay quoted.
func literal(s string) string {
	if s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return s
		}
	}
	return strconv.Quote(s)
}
