package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

func paymentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Payment commands",
	}
	cmd.AddCommand(paymentCreateCommand())
	return cmd
}

func paymentCreateCommand() *cobra.Command {
	var (
		amount    float64
		reference string
		paid      bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a payment",
		Long: "Records a standalone payment and prints its id. A reference is\n" +
			"generated when none is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				id, err := d.gateway.CreatePayment(cmd.Context(), amount, reference, paid)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
				return err
			})
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount paid")
	cmd.Flags().StringVar(&reference, "reference", "", "payment reference")
	cmd.Flags().BoolVar(&paid, "paid", false, "whether the payment has cleared")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
