// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd010-cli R4.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-pagerequest/internal/output"
	"github.com/petar-djukic/go-pagerequest/internal/watch"
)

// newWatchCmd creates the "watch" command.
func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the artifact whenever sources change",
		Long: "Watch runs a pass, then reruns it after each batch of source changes. " +
			"Edits under the services directory refresh the service descriptors.",
		RunE: runWatch,
	}

	cmd.Flags().String("format", "dev", "Serialization format (dev, json)")
	cmd.Flags().String("out", "", "Artifact path (default <src>/.umi/plugin-pageRequest/index.ts)")
	cmd.Flags().Duration("debounce", 200*time.Millisecond, "Quiet period before a rebuild")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")

	return cmd
}

// runWatch executes the initial pass and the watch loop.
func runWatch(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	outFlag, _ := cmd.Flags().GetString("out")
	debounce, _ := cmd.Flags().GetDuration("debounce")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.String("error", err.Error()))
			}
		}()
		defer srv.Shutdown(context.Background())
		slog.Info("serving metrics", slog.String("addr", metricsAddr))
	}

	rebuild := func(ctx context.Context) error {
		_, content, err := s.pass(ctx, "", format)
		if err != nil {
			return err
		}
		return output.WriteModule(s.fs, out, content)
	}

	if err := rebuild(ctx); err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		SrcRoot:      s.srcRoot,
		ServicesRoot: filepath.Join(s.srcRoot, viper.GetString("services-dir")),
		Debounce:     debounce,
		Ignore:       []string{out},
		Logger:       slog.Default(),
	})
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s, writing %s\n", s.srcRoot, out)
	err = w.Run(ctx, func(ctx context.Context, ev watch.Event) error {
		if ev.ServicesChanged {
			s.resolver.InvalidateServices()
		}
		slog.Debug("sources changed", slog.Int("files", len(ev.Paths)))
		return rebuild(ctx)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
