package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/swadbest/shopctl/internal/output"
	"github.com/swadbest/shopctl/internal/shipment"
	"github.com/swadbest/shopctl/internal/shop"
)

var ordersCmd = &cobra.Command{
	Use:     "orders",
	Aliases: []string{"order"},
	Short:   "View and manage your orders",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your orders, newest first",
	Args:  cobra.NoArgs,
	RunE:  runOrdersList,
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show an order with its progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersShow,
}

var ordersCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel an order that has not shipped",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersCancel,
}

var ordersTrackCmd = &cobra.Command{
	Use:   "track <order-id>",
	Short: "Follow an order's shipment",
	Long: `Show the shipment timeline for an order. When the order has an air
waybill the live carrier status and scan history are used.`,
	Args: cobra.ExactArgs(1),
	RunE: runOrdersTrack,
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersListCmd, ordersShowCmd, ordersCancelCmd, ordersTrackCmd)

	addJSONFlag(ordersListCmd)
	addJSONFlag(ordersShowCmd)
	addYesFlag(ordersCancelCmd)
}

func runOrdersList(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	orders, err := app.shop.Orders.ListMine(cmd.Context())
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return writeJSON(cmd.OutOrStdout(), orders)
	}

	if len(orders) == 0 {
		printer.Empty("You have no orders yet")
		return nil
	}

	table := printer.NewTable("ORDER", "PLACED", "STATUS", "PAYMENT", "ITEMS", "TOTAL")
	for _, o := range orders {
		placed := "-"
		if !o.CreatedAt.IsZero() {
			placed = o.CreatedAt.Local().Format("2006-01-02")
		}
		table.AddRow([]string{
			o.ID,
			placed,
			printer.StatusBadge(o.ShipmentStatus()),
			o.PaymentStatus,
			strconv.Itoa(len(o.Items)),
			output.Money(o.Total),
		})
	}
	return table.Render()
}

func runOrdersShow(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	order, err := app.shop.Orders.Get(cmd.Context(), args[0])
	if notFound(printer, err, "Order %s not found", args[0]) {
		return nil
	}
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return writeJSON(cmd.OutOrStdout(), order)
	}

	printOrder(printer, order)
	fmt.Fprintln(printer.Out())
	printer.Timeline(shipment.NewTimeline(order.ShipmentStatus()))
	return nil
}

func runOrdersCancel(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	order, err := app.shop.Orders.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !order.Cancellable() {
		return &output.CLIError{
			Summary:    fmt.Sprintf("order %s can no longer be cancelled", order.ID),
			Detail:     "status " + order.ShipmentStatus().Label(),
			Suggestion: fmt.Sprintf("Run 'shopctl orders track %s' to follow it", order.ID),
			ExitCode:   output.ExitValidation,
		}
	}

	ok, err := confirm(cmd, "Cancel order %s (%s)?", order.ID, output.Money(order.Total))
	if err != nil {
		return err
	}
	if !ok {
		return aborted("cancel order")
	}

	cancelled, err := app.shop.Orders.Cancel(cmd.Context(), order.ID)
	if err != nil {
		return err
	}
	printer.Success("Order %s is %s", cancelled.ID, cancelled.ShipmentStatus().Label())
	return nil
}

func runOrdersTrack(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	order, err := app.shop.Orders.Get(cmd.Context(), args[0])
	if notFound(printer, err, "Order %s not found", args[0]) {
		return nil
	}
	if err != nil {
		return err
	}

	if order.AWB == "" {
		printer.Header("Order " + order.ID)
		printer.Timeline(shipment.NewTimeline(order.ShipmentStatus()))
		return nil
	}

	tracking, err := app.shop.Shipments.Track(cmd.Context(), order.AWB)
	if err != nil {
		// the order status is still meaningful when the carrier is unreachable
		logger.Warn("carrier tracking unavailable", "awb", order.AWB, "error", err)
		printer.Header("Order " + order.ID)
		printer.Timeline(shipment.NewTimeline(order.ShipmentStatus()))
		return nil
	}

	printTracking(printer, "Order "+order.ID, tracking)
	return nil
}

func printOrder(p *output.Printer, o *shop.Order) {
	p.Header("Order " + o.ID)
	p.Print("Status:  %s", p.StatusBadge(o.ShipmentStatus()))
	if o.PaymentStatus != "" {
		p.Print("Payment: %s", o.PaymentStatus)
	}
	if o.AWB != "" {
		p.Print("AWB:     %s", o.AWB)
	}

	if len(o.Items) > 0 {
		fmt.Fprintln(p.Out())
		table := p.NewTable("PRODUCT", "QTY", "PRICE")
		for _, it := range o.Items {
			table.AddRow([]string{it.Name, strconv.Itoa(it.Quantity), output.Money(it.Price)})
		}
		_ = table.Render()
	}
	p.Print("Total:   %s", p.Bold(output.Money(o.Total)))
}

func printTracking(p *output.Printer, title string, t *shop.TrackingInfo) {
	p.Header(title)
	if t.Courier != "" {
		p.Print("Courier: %s (AWB %s)", t.Courier, t.AWB)
	} else {
		p.Print("AWB: %s", t.AWB)
	}
	if t.ETA != "" {
		p.Print("Expected: %s", t.ETA)
	}
	fmt.Fprintln(p.Out())
	p.Timeline(shipment.NewTimeline(t.Status()))

	if len(t.Activities) == 0 {
		return
	}
	fmt.Fprintln(p.Out())
	table := p.NewTable("DATE", "STATUS", "LOCATION", "ACTIVITY")
	for _, a := range t.Activities {
		table.AddRow([]string{a.Date, a.Status, a.Location, a.Activity})
	}
	_ = table.Render()
}
