package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swadbest/shopctl/internal/output"
	"github.com/swadbest/shopctl/internal/shop"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Pay for orders",
}

var checkoutPayCmd = &cobra.Command{
	Use:   "pay <order-id>",
	Short: "Start a payment for an order",
	Long: `Register the order with the payment provider and print the details the
provider checkout needs. After paying, confirm with 'shopctl checkout verify'.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckoutPay,
}

var checkoutVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Confirm a completed payment",
	Long: `Send the provider's payment callback to the store. This works without
being logged in.

Example:
  shopctl checkout verify --provider-order order_9A33XWu170gUtm \
    --payment pay_29QQoUBi66xm2f --signature 9ef4dffbfd84f1318f6739a3ce19f9d85851857ae648f114332d8401e0949a3d`,
	Args: cobra.NoArgs,
	RunE: runCheckoutVerify,
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
	checkoutCmd.AddCommand(checkoutPayCmd, checkoutVerifyCmd)

	addYesFlag(checkoutPayCmd)
	addJSONFlag(checkoutPayCmd)

	checkoutVerifyCmd.Flags().String("provider-order", "", "provider order id")
	checkoutVerifyCmd.Flags().String("payment", "", "provider payment id")
	checkoutVerifyCmd.Flags().String("signature", "", "provider signature")
	for _, name := range []string{"provider-order", "payment", "signature"} {
		_ = checkoutVerifyCmd.MarkFlagRequired(name)
	}
}

func runCheckoutPay(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	order, err := app.shop.Orders.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	ok, err := confirm(cmd, "Pay %s for order %s?", output.Money(order.Total), order.ID)
	if err != nil {
		return err
	}
	if !ok {
		return aborted("payment")
	}

	po, err := app.shop.Payments.CreateOrder(cmd.Context(), order.ID)
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return writeJSON(cmd.OutOrStdout(), po)
	}

	if po.PublicKey == "" {
		printer.Warning("payment.public_key is not configured, the provider checkout will reject this payment")
	}

	printer.Header("Payment for order " + po.OrderID)
	table := printer.NewTable("FIELD", "VALUE")
	table.AddRow([]string{"provider order", po.ProviderOrderID})
	table.AddRow([]string{"amount", fmt.Sprintf("%.2f %s", po.Amount, po.Currency)})
	table.AddRow([]string{"key", po.PublicKey})
	if err := table.Render(); err != nil {
		return err
	}
	printer.Info("After paying, run 'shopctl checkout verify --provider-order %s --payment <id> --signature <sig>'", po.ProviderOrderID)
	return nil
}

func runCheckoutVerify(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	var v shop.PaymentVerification
	v.ProviderOrderID, _ = cmd.Flags().GetString("provider-order")
	v.PaymentID, _ = cmd.Flags().GetString("payment")
	v.Signature, _ = cmd.Flags().GetString("signature")

	res, err := app.shop.Payments.Verify(cmd.Context(), v)
	if err != nil {
		return err
	}
	if !res.Verified {
		return &output.CLIError{
			Summary:    orDefault(res.Message, "payment could not be verified"),
			Suggestion: "Contact support with your payment id " + v.PaymentID,
			ExitCode:   output.ExitValidation,
		}
	}

	if res.OrderID != "" {
		printer.Success("Payment confirmed for order %s", res.OrderID)
	} else {
		printer.Success("Payment confirmed")
	}
	return nil
}
