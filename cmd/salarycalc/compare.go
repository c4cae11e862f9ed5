package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"inhand/internal/cli"
	"inhand/internal/domain/salary"
)

func compareCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare in-hand pay across all regimes",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindComponentFlags(v, cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := componentsFrom(v)
			if err != nil {
				return err
			}
			cmp, err := salary.Compare(c)
			if err != nil {
				return err
			}
			return cli.RenderComparison(cmd.OutOrStdout(), cmp)
		},
	}
	addComponentFlags(cmd)
	return cmd
}

func slabsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slabs",
		Short: "Show the slab tables and fixed deductions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.RenderRules(cmd.OutOrStdout(), salary.CurrentRules())
		},
	}
}
