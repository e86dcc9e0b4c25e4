package command

import (
	"bytes"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stolasapp/kangaroo/internal/sec"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create user",
		Long: "Creates a user with the provided email and password. Passwords may be\n" +
			"provided via stdin or through the interactive prompt. Existing users are\n" +
			"never overwritten.",

		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				email := args[0]
				passwd, err := prompt("password: ", true)
				if err != nil {
					return err
				}
				passwd = bytes.TrimRight(passwd, "\r\n")
				if len(passwd) == 0 {
					return errors.New("password must not be empty")
				}
				if err = d.gateway.CreateUser(cmd.Context(), email, sec.Password(passwd)); err != nil {
					return err
				}
				d.logger.InfoContext(cmd.Context(), "created user", slog.String("email", email))
				return nil
			})
		},
	}
}
