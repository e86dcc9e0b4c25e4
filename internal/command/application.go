package command

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/stolasapp/kangaroo/internal/intake"
	"github.com/stolasapp/kangaroo/internal/storage/db"
)

func applicationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "application",
		Aliases: []string{"app"},
		Short:   "Application commands",
	}
	cmd.AddCommand(
		applicationCreateCommand(),
		applicationLinkCommand(),
		applicationShowCommand(),
	)
	return cmd
}

func applicationCreateCommand() *cobra.Command {
	var req intake.NewApplication
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit an application",
		Long:  "Submits an application for a program and prints its id.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				id, err := d.gateway.CreateApplication(cmd.Context(), req)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
				return err
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.FullName, "name", "", "applicant's full name")
	flags.StringVar(&req.NRCNumber, "nrc", "", "applicant's NRC number")
	flags.Int64Var(&req.ProgramID, "program", 0, "id of the chosen program")
	flags.StringVar(&req.Grade12Path, "grade12-file", "", "path of the uploaded grade 12 certificate")
	flags.StringVar(&req.NRCPath, "nrc-file", "", "path of the uploaded NRC scan")
	for _, name := range []string{"name", "nrc", "program"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func applicationLinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "link APPLICATION_ID PAYMENT_ID",
		Short: "Attach a payment to an application",
		Long:  "Attaches a payment to an application. Each side can be linked only once.",
		Args:  cobra.ExactArgs(2), //nolint:mnd // application and payment
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, err := parseID(args[0])
			if err != nil {
				return err
			}
			paymentID, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *deps) error {
				return d.gateway.LinkPaymentToApplication(cmd.Context(), appID, paymentID)
			})
		},
	}
}

type applicationView struct {
	ID          int64                `yaml:"id"`
	FullName    string               `yaml:"full_name"`
	NRCNumber   string               `yaml:"nrc_number"`
	ProgramID   int64                `yaml:"program_id"`
	Grade12Path string               `yaml:"grade12_path,omitempty"`
	NRCPath     string               `yaml:"nrc_path,omitempty"`
	PaymentID   *int64               `yaml:"payment_id"`
	Status      db.ApplicationStatus `yaml:"status"`
	CreatedAt   time.Time            `yaml:"created_at"`
}

func applicationShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show APPLICATION_ID",
		Short: "Show an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *deps) error {
				app, err := d.gateway.GetApplication(cmd.Context(), id)
				if err != nil {
					return err
				}
				view := applicationView{
					ID:          app.ID,
					FullName:    app.FullName,
					NRCNumber:   app.NRCNumber,
					ProgramID:   app.ProgramID,
					Grade12Path: app.Grade12Path,
					NRCPath:     app.NRCPath,
					Status:      app.Status,
					CreatedAt:   app.CreatedAt,
				}
				if app.PaymentID.Valid {
					view.PaymentID = &app.PaymentID.Int64
				}
				return writeYAML(cmd, view)
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
