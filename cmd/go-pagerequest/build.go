// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd010-cli R3, R5.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	gitpkg "github.com/petar-djukic/go-pagerequest/internal/git"
	"github.com/petar-djukic/go-pagerequest/internal/output"
)

// errStale is returned by build --check when the artifact is out of date.
var errStale = errors.New("page request artifact is out of date")

// newBuildCmd creates the "build" command.
func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Resolve the page request map once and write the artifact",
		Long: "Build scans the source root (or reads host declarations with --decls), resolves " +
			"every page, and writes the generated module.",
		RunE: runBuild,
	}

	cmd.Flags().String("format", "json", "Serialization format (dev, json)")
	cmd.Flags().String("out", "", "Artifact path (default <src>/.umi/plugin-pageRequest/index.ts)")
	cmd.Flags().String("decls", "", "Read host declarations JSON from this file (- for stdin) instead of scanning")
	cmd.Flags().Bool("stdout", false, "Print the module instead of writing it")
	cmd.Flags().Bool("check", false, "Fail with a diff when the artifact on disk is out of date")
	cmd.Flags().Bool("commit", false, "Commit the artifact when it changed")
	cmd.Flags().Bool("init", false, "Write an empty module without resolving")

	return cmd
}

// runBuild executes one pass and emits the artifact.
func runBuild(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	outFlag, _ := cmd.Flags().GetString("out")
	declsPath, _ := cmd.Flags().GetString("decls")
	toStdout, _ := cmd.Flags().GetBool("stdout")
	check, _ := cmd.Flags().GetBool("check")
	commit, _ := cmd.Flags().GetBool("commit")
	initOnly, _ := cmd.Flags().GetBool("init")

	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	out, err := s.outPath(outFlag)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}

	if initOnly {
		if err := output.WriteModule(s.fs, out, output.EmptyMap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote empty module to %s\n", out)
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	res, content, err := s.pass(ctx, declsPath, format)
	if err != nil {
		return err
	}
	module := output.WrapModule(content)

	switch {
	case toStdout:
		fmt.Fprint(cmd.OutOrStdout(), module)
		return nil

	case check:
		existing, err := afero.ReadFile(s.fs, out)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading %s: %w", out, err)
		}
		if changed, diff := output.Compare(string(existing), module); changed {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n%s", out, diff)
			return errStale
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", out)
		return nil
	}

	if err := output.WriteModule(s.fs, out, content); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d pages, %d requests to %s in %s\n",
		res.Stats.Pages, res.Stats.Requests, out, res.Duration)

	if commit {
		repo, err := gitpkg.Open(gitpkg.Config{WorkDir: s.srcRoot})
		if err != nil {
			return fmt.Errorf("opening repository: %w", err)
		}
		committed, err := repo.CommitArtifacts([]string{out}, gitpkg.Summary{
			Pages:    res.Stats.Pages,
			Requests: res.Stats.Requests,
			Format:   format.String(),
		})
		if err != nil {
			return fmt.Errorf("commit failed: %w", err)
		}
		if committed {
			fmt.Fprintln(cmd.OutOrStdout(), "Committed page request artifact.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Artifact unchanged; nothing to commit.")
		}
	}
	return nil
}
