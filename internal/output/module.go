// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd005-output R3, R4;
//
//	docs/ARCHITECTURE § Output Assembler, Artifact.
package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/afero"
)

// EmptyMap is the serialized form of a map with no pages.
const EmptyMap = "{}"

// ExportName is the identifier the generated module exports.
const ExportName = "PAGE_REQUEST_MAP"

// WrapModule wraps serialized content in the module the application
// imports.
func WrapModule(content string) string {
	if content == "" {
		content = EmptyMap
	}
	return fmt.Sprintf("const %s = %s\nexport { %s }\n", ExportName, content, ExportName)
}

// WriteModule writes the wrapped content to path, creating parent
// directories.
func WriteModule(fs afero.Fs, path, content string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fs, path, []byte(WrapModule(content)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Compare returns whether two artifacts differ and, if they do, a line
// diff where removed lines start with "-" and added lines with "+".
func Compare(oldText, newText string) (bool, string) {
	if oldText == newText {
		return false, ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix + strings.TrimSuffix(line, "\n") + "\n")
		}
	}
	return true, out.String()
}
