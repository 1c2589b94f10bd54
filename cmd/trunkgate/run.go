package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sergeknystautas/trunkgate/internal/pipeline"
	"github.com/sergeknystautas/trunkgate/internal/report"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve the release tag and verify trunk ancestry",
		Long:  "Runs the full publish gate for the triggering commit: resolves the highest\nrelease tag reachable from it, verifies the tag's trunk ancestry, emits the\nreport and CI step outputs, and exits non-zero unless the run is publishable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sha, err := triggerSHA(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Verbose)

			p, err := buildProvider(cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			freshenTrunk(ctx, logger, cfg, p)

			pl := &pipeline.Pipeline{
				Provider:                  p,
				Trunk:                     cfg.Trunk,
				RequireReachableFromTrunk: cfg.RequireTagReachableFromTrunk,
				Logger:                    logger,
			}
			rep, runErr := pl.Run(ctx, sha)

			// The report and step outputs go out even on failure, so later
			// workflow steps and humans can see what was compared.
			if err := emitReport(cmd, cfg.Output, rep); err != nil {
				logger.Error("could not emit report", "err", err)
			}
			if err := rep.WriteStepOutputs(); err != nil {
				logger.Error("could not write step outputs", "err", err)
			}

			if runErr != nil {
				return runErr
			}
			logger.Info("publishable", "tag", rep.Tag, "run_id", rep.RunID)
			return nil
		},
	}
	cmd.Flags().String("sha", "", "Commit SHA that triggered the workflow (default $GITHUB_SHA)")
	return cmd
}

func emitReport(cmd *cobra.Command, format string, rep *report.Report) error {
	if format == "json" {
		b, err := rep.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), rep.Summary())
	return nil
}
