package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the effective policy",
		Long: `Policy prints the policy selected with --policy after presets have been
merged, in a form that can be saved and loaded again with --policy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadPolicy()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			format, _ := cmd.Flags().GetString("output")
			switch strings.ToLower(format) {
			case "", "yaml":
				data, err := yaml.Marshal(p.Config())
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			case "json":
				data, err := a.marshalJSON(out, p.Config())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			default:
				return fmt.Errorf("unknown output format: %s", format)
			}
		},
	}
	cmd.Flags().StringP("output", "o", "yaml", "Output format: yaml or json")
	return cmd
}
