// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd009-git-integration R3;
//
//	docs/ARCHITECTURE § Git Integration.
package git

import (
	"fmt"
	"strings"
)

const maxSubjectLength = 72

// Summary describes the pass whose artifacts are committed.
type Summary struct {
	Pages    int
	Requests int
	Format   string   // Serialization format name
	Files    []string // Filled in by CommitArtifacts
}

// GenerateMessage creates a conventional commit message for an artifact
// commit.
//
// Implements: prd009-git-integration R3.1-R3.3.
func GenerateMessage(s Summary) string {
	msg := buildSubject(s)
	if body := buildBody(s); body != "" {
		msg += "\n\n" + body
	}
	return msg + "\n\n" + generatedByTrailer
}

// buildSubject creates the first line of the commit message.
// Format: "chore(pagerequest): summary" (max 72 chars).
func buildSubject(s Summary) string {
	subject := fmt.Sprintf("chore(pagerequest): update page request map (%s, %s)",
		plural(s.Pages, "page"), plural(s.Requests, "request"))
	if len(subject) > maxSubjectLength {
		subject = subject[:maxSubjectLength-3] + "..."
	}
	return subject
}

// buildBody lists the generated files.
func buildBody(s Summary) string {
	if len(s.Files) == 0 {
		return ""
	}

	var buf strings.Builder
	if s.Format != "" {
		fmt.Fprintf(&buf, "Format: %s\n\n", s.Format)
	}
	buf.WriteString("Generated files:\n")
	for _, f := range s.Files {
		fmt.Fprintf(&buf, "- %s\n", f)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
