package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sergeknystautas/trunkgate/internal/config"
	"github.com/sergeknystautas/trunkgate/internal/schema"
)

func init() {
	schema.Register(schema.LabelConfig, config.Config{})
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for .trunkgate.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schema.Get(schema.LabelConfig)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
}
