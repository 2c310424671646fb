package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/infrastructure/config"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect and validate engine policy files",
	}

	var file string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check a policy file for unknown keys and inconsistent caps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			policy, err := config.LoadPolicy(file, 0)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "policy OK: worst-case adjustment %.1f%%, total cap %.1f%%, fusion %.2f ML / %.2f rule\n",
				policy.WorstCaseAdjustmentPct(), policy.TotalAdjustmentCapPct, policy.MLWeight, policy.RuleWeight)
			return nil
		},
	}
	validate.Flags().StringVarP(&file, "file", "f", "", "Policy YAML file")
	_ = validate.MarkFlagRequired("file")

	show := &cobra.Command{
		Use:   "defaults",
		Short: "Print the default policy as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(service.DefaultPolicy()); err != nil {
				return fmt.Errorf("encoding policy: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.AddCommand(validate, show)
	return cmd
}
