package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ent0n29/aanyaa/internal/rules"
)

func NewRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect special-response rule files",
	}
	cmd.AddCommand(newRulesCheckCmd(), newRulesDumpCmd())
	return cmd
}

func newRulesCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a YAML rule file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := rules.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules OK\n", args[0], t.Len())
			return nil
		},
	}
}

func newRulesDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the built-in rules as a YAML file",
		Long:  `Print the built-in rules in rule-file layout, as a starting point for RULES_FILE.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := rules.Marshal(rules.DefaultRules())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
