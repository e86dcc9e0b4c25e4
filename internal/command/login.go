package command

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stolasapp/kangaroo/internal/bridge"
)

func loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login EMAIL",
		Short: "Check a user's credentials",
		Long: "Runs the same login check as the embedded pages. Prints the email on\n" +
			"success; any failure exits non-zero without a reason.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				passwd, err := prompt("password: ", true)
				if err != nil {
					return err
				}
				email, ok := bridge.New(d.auth).Login(cmd.Context(), args[0], string(passwd))
				if !ok {
					return errors.New("login failed")
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), email)
				return err
			})
		},
	}
}
