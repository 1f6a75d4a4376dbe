// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd010-cli R5.
package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	gitpkg "github.com/petar-djukic/go-pagerequest/internal/git"
)

// newUndoCmd creates the "undo" command.
func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last go-pagerequest commit",
		Long:  "Undo performs a soft reset of the last commit if go-pagerequest made it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := gitpkg.Open(gitpkg.Config{WorkDir: viper.GetString("src")})
			if err != nil {
				return fmt.Errorf("opening repository: %w", err)
			}

			if dirty, err := repo.IsDirty(); err == nil && dirty {
				slog.Warn("working tree has uncommitted changes, the soft reset keeps them staged with the artifact")
			}

			if err := repo.Undo(); err != nil {
				return fmt.Errorf("undo failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Successfully reverted last go-pagerequest commit.")
			return nil
		},
	}
}
