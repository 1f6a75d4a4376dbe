// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command go-pagerequest maps every page of a JavaScript or TypeScript
// application to the backend APIs it transitively imports.
// Implements: prd010-cli R1;
//
//	docs/ARCHITECTURE § Project Structure.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree and binds global flags to viper.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "go-pagerequest",
		Short: "Static page to API request mapper",
		Long: "go-pagerequest follows the local import graph of every page under src/pages " +
			"and lists the service functions, and so the backend APIs, each page depends on.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(viper.GetString("log-level"))
		},
	}

	// Global flags.
	rootCmd.PersistentFlags().String("src", "src", "Application source root")
	rootCmd.PersistentFlags().String("alias", "@", "Import alias standing for the source root")
	rootCmd.PersistentFlags().String("services-dir", "services", "Service groups directory under the source root")
	rootCmd.PersistentFlags().String("pages-dir", "pages", "Page entries directory under the source root")
	rootCmd.PersistentFlags().StringSlice("page-ext", []string{".tsx"}, "Page entry extensions")
	rootCmd.PersistentFlags().Bool("follow-dynamic", false, "Traverse import() calls")
	rootCmd.PersistentFlags().Bool("follow-reexports", false, "Traverse export ... from declarations")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	// Bind flags to viper.
	for _, name := range []string{
		"src", "alias", "services-dir", "pages-dir", "page-ext",
		"follow-dynamic", "follow-reexports", "log-level",
	} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Env vars: GO_PAGEREQUEST_SRC, GO_PAGEREQUEST_SERVICES_DIR, etc.
	viper.SetEnvPrefix("GO_PAGEREQUEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".go-pagerequest")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// setupLogging installs a text handler on stderr as the default logger.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print go-pagerequest version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "go-pagerequest %s\n", version)
		},
	}
}
