// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd004-reachability R4 (Diagnostic);
//
//	prd002-path-resolver R3.3 (ambiguity reporting).
package types

import "fmt"

// DiagnosticKind identifies what a resolution pass degraded on.
type DiagnosticKind int

const (
	DiagUnresolved   DiagnosticKind = iota // Local import matched no file
	DiagAmbiguous                          // Extension inference matched several files
	DiagCycle                              // Import cycle reached a file still being resolved
	DiagUnknownGroup                       // Service import named a group with no descriptors
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagUnresolved:
		return "unresolved"
	case DiagAmbiguous:
		return "ambiguous"
	case DiagCycle:
		return "cycle"
	case DiagUnknownGroup:
		return "unknown_group"
	default:
		return "unknown"
	}
}

// Diagnostic records a condition that made a pass contribute nothing (or
// more than one candidate) for an import. None of these abort a pass.
type Diagnostic struct {
	Kind       DiagnosticKind
	File       string   // Importing file (absolute path)
	Source     string   // Raw import specifier or candidate path
	Candidates []string // Matched files, for DiagAmbiguous
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case DiagAmbiguous:
		return fmt.Sprintf("%s: %s in %s matches %d files", d.Kind, d.Source, d.File, len(d.Candidates))
	default:
		return fmt.Sprintf("%s: %s in %s", d.Kind, d.Source, d.File)
	}
}
