package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sergeknystautas/trunkgate/internal/resolver"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the highest release tag reachable from a commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sha, err := triggerSHA(cmd)
			if err != nil {
				return err
			}
			p, err := buildProvider(cfg)
			if err != nil {
				return err
			}
			res, err := resolver.Resolve(cmd.Context(), p, sha)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Tag)
			return nil
		},
	}
	cmd.Flags().String("sha", "", "Commit SHA that triggered the workflow (default $GITHUB_SHA)")
	return cmd
}
