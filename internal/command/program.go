package command

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func programCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "program",
		Short: "Program catalog commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List programs ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				return writeYAML(cmd, d.gateway.ListPrograms(cmd.Context()))
			})
		},
	})
	return cmd
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2) //nolint:mnd // two space indent
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
