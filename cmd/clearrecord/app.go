// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/clearrecordproj/clearrecord/internal/config"
	"github.com/clearrecordproj/clearrecord/internal/intake"
	"github.com/clearrecordproj/clearrecord/internal/intake/parsers"
	"github.com/clearrecordproj/clearrecord/internal/logging"
	"github.com/clearrecordproj/clearrecord/internal/metrics"
	"github.com/clearrecordproj/clearrecord/internal/report"
	"github.com/clearrecordproj/clearrecord/internal/rules"
	"github.com/clearrecordproj/clearrecord/internal/screening"
)

// app is everything a command needs, built from the config.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *rules.Registry
	gatherer *prometheus.Registry
	service  *screening.Service
}

func newApp(cmd *cobra.Command, opts ...screening.Option) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.NewWriter(cmd.ErrOrStderr(), level)

	registry, err := rules.DefaultRegistry(cfg.Rules.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule tables: %w", err)
	}

	gatherer := prometheus.NewRegistry()
	gatherer.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts = append([]screening.Option{
		screening.WithLogger(logger),
		screening.WithMetrics(metrics.New(gatherer)),
	}, opts...)
	service, err := screening.New(registry, opts...)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		gatherer: gatherer,
		service:  service,
	}, nil
}

// asOfOption turns the --as-of flag into a fixed clock.
func asOfOption(cmd *cobra.Command) ([]screening.Option, error) {
	s, _ := cmd.Flags().GetString("as-of")
	if s == "" {
		return nil, nil
	}
	asOf, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("--as-of must be a date (YYYY-MM-DD): %w", err)
	}
	return []screening.Option{screening.WithClock(func() time.Time { return asOf })}, nil
}

// readCaseFile parses a case file, or stdin when path is "-". The file
// extension is the format hint.
func readCaseFile(cmd *cobra.Command, path string) (intake.Draft, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return intake.Draft{}, fmt.Errorf("failed to read case file: %w", err)
	}

	res, err := parsers.Default().Run(cmd.Context(), intake.Source{
		Content: data,
		Format:  strings.TrimPrefix(filepath.Ext(path), "."),
		ID:      path,
	})
	if err != nil {
		return intake.Draft{}, err
	}
	return res.Draft, nil
}

// resolveJurisdiction applies --jurisdiction, then the config default, to d.
func (a *app) resolveJurisdiction(cmd *cobra.Command, d intake.Draft) intake.Draft {
	if j, _ := cmd.Flags().GetString("jurisdiction"); j != "" {
		return d.WithJurisdiction(j)
	}
	if d.Jurisdiction == "" {
		return d.WithJurisdiction(a.cfg.Rules.DefaultJurisdiction)
	}
	return d
}

// printMarkdown renders md for the terminal unless --raw is set.
func printMarkdown(cmd *cobra.Command, md string) error {
	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		_, err := fmt.Fprint(cmd.OutOrStdout(), md)
		return err
	}
	render, err := report.NewRenderer(0)
	if err != nil {
		return err
	}
	out, err := render(md)
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
