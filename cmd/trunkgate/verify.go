package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sergeknystautas/trunkgate/internal/gate"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify that a release tag's commit descends from trunk",
		Long:  "Computes the merge-base of the tag commit and the trunk head and passes only\nwhen one of them is the merge-base itself (a fast-forward relationship).\nDivergent histories fail closed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ref, _ := cmd.Flags().GetString("tag")
			if ref == "" {
				return fmt.Errorf("a release tag or commit is required: pass --tag")
			}
			logger := newLogger(cfg.Verbose)

			p, err := buildProvider(cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := p.CheckComplete(ctx); err != nil {
				return err
			}
			tagCommit, err := p.ResolveRef(ctx, ref)
			if err != nil {
				return err
			}
			freshenTrunk(ctx, logger, cfg, p)

			g := &gate.Gate{
				Provider:                  p,
				Trunk:                     cfg.Trunk,
				RequireReachableFromTrunk: cfg.RequireTagReachableFromTrunk,
			}
			res, err := g.Check(ctx, tagCommit)
			if err != nil {
				return err
			}
			logger.Info("trunk ancestry verified",
				"tag_commit", res.TagCommit, "trunk_head", res.TrunkHead,
				"merge_base", res.MergeBase, "outcome", string(res.Outcome))
			return nil
		},
	}
	cmd.Flags().String("tag", "", "Release tag name or commit SHA to verify")
	return cmd
}
