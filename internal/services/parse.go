// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd001-service-extractor R2;
//
//	docs/ARCHITECTURE § Service Descriptor Extractor.
package services

import (
	"regexp"
	"strings"

	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

// Parser recovers the request descriptors declared in one service file,
// keyed by function name.
type Parser func(content string) map[string]types.APIRequest

var (
	functionNameRe = regexp.MustCompile(`function\s+([A-Za-z_$][\w$]*)\s*(?:<[^>]*>)?\s*\(`)
	methodRe       = regexp.MustCompile("method\\s*:\\s*['\"`]([^'\"`]+)['\"`]")
	requestURLRe   = regexp.MustCompile("(?i:[\\w$.]*request[\\w$]*)\\s*(?:<[^()]*>)?\\s*\\(\\s*['\"`]([^'\"`]*)['\"`]")
)

// ParseServiceSource is the default Parser. It understands the shape
//
//	export async function name(...) {
//	  return request<T>(`/api/url`, { method: 'GET', ... })
//	}
//
// Each export fragment must yield a function name, a method and a URL;
// fragments missing any of the three are dropped.
func ParseServiceSource(content string) map[string]types.APIRequest {
	out := make(map[string]types.APIRequest)
	for _, fragment := range strings.Split(stripComments(content), "export ") {
		name := firstGroup(functionNameRe, fragment)
		method := firstGroup(methodRe, fragment)
		url := firstGroup(requestURLRe, fragment)
		if name == "" || method == "" || url == "" {
			continue
		}
		out[name] = types.APIRequest{Name: name, Method: method, URL: url}
	}
	return out
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// stripComments removes // and /* */ comments outside string literals, so a
// URL like "http://host/api" survives.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			b.WriteByte(c)
			switch {
			case c == '\\' && i+1 < len(src):
				i++
				b.WriteByte(src[i])
			case c == quote:
				quote = 0
			}
			continue
		}
		if c == '/' && i+1 < len(src) {
			switch src[i+1] {
			case '/':
				for i < len(src) && src[i] != '\n' {
					i++
				}
				if i < len(src) {
					b.WriteByte('\n')
				}
				continue
			case '*':
				end := strings.Index(src[i+2:], "*/")
				if end < 0 {
					return b.String()
				}
				i += end + 3
				continue
			}
		}
		if c == '\'' || c == '"' || c == '`' {
			quote = c
		}
		b.WriteByte(c)
	}
	return b.String()
}
