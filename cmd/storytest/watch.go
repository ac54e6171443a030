package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/storytest/internal/watch"
)

func watchCmd() *cobra.Command {
	var (
		f        analyzeFlags
		debounce = watch.DefaultDebounce
	)
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-analyze whenever a unit manifest changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			f.apply(&cfg, args)
			if len(cfg.Analysis.Sources) != 1 {
				return fmt.Errorf("watch needs exactly one source directory")
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}

			w, err := watch.New(cfg.Analysis.Sources[0], debounce, slog.Default())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			pass := func(ctx context.Context, changed []string) {
				if len(changed) > 0 {
					slog.Info("manifests changed", "count", len(changed))
				}
				res, err := analyze(ctx, cfg, reg, db, slog.Default())
				if err != nil {
					if ctx.Err() == nil {
						slog.Error("analysis failed", "err", err)
					}
					return
				}
				printSummary(out, res)
			}
			pass(ctx, nil)
			return w.Run(ctx, pass)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.out, "out", "", "Output directory for reports (default from config)")
	fl.StringSliceVar(&f.formats, "format", nil, "Report formats: json, text, html")
	fl.IntVar(&f.workers, "workers", 0, "Parallel symbol workers")
	fl.StringSliceVar(&f.packs, "rules-pack", nil, "Extra YAML rule packs to load")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics here")
	fl.DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-analyzing")
	return cmd
}
