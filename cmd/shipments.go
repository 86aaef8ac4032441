package cmd

import (
	"github.com/spf13/cobra"
)

var shipmentsCmd = &cobra.Command{
	Use:     "shipments",
	Aliases: []string{"ship"},
	Short:   "Create and track shipments",
}

var shipmentsCreateCmd = &cobra.Command{
	Use:   "create <order-id>",
	Short: "Register an order with the logistics provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sh, err := app.shop.Shipments.CreateShipment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printer := newPrinter(cmd)
		printer.Success("Shipment %s created for order %s", sh.ShipmentID, sh.OrderID)
		printer.Info("Run 'shopctl shipments awb %s' to assign a courier", sh.ShipmentID)
		return nil
	},
}

var shipmentsAWBCmd = &cobra.Command{
	Use:   "awb <shipment-id>",
	Short: "Assign a courier and air waybill",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		awb, err := app.shop.Shipments.GenerateAWB(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printer := newPrinter(cmd)
		if awb.CourierName != "" {
			printer.Success("AWB %s assigned to %s via %s", awb.AWB, awb.ShipmentID, awb.CourierName)
		} else {
			printer.Success("AWB %s assigned to %s", awb.AWB, awb.ShipmentID)
		}
		return nil
	},
}

var shipmentsManifestCmd = &cobra.Command{
	Use:   "manifest <shipment-id>...",
	Short: "Generate the pickup manifest",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := app.shop.Shipments.GenerateManifest(cmd.Context(), args...)
		if err != nil {
			return err
		}
		newPrinter(cmd).Success("Manifest ready: %s", m.URL)
		return nil
	},
}

var shipmentsTrackCmd = &cobra.Command{
	Use:   "track <awb>",
	Short: "Track an air waybill",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := newPrinter(cmd)

		tracking, err := app.shop.Shipments.Track(cmd.Context(), args[0])
		if notFound(printer, err, "No tracking found for %s", args[0]) {
			return nil
		}
		if err != nil {
			return err
		}
		printTracking(printer, "Shipment "+tracking.AWB, tracking)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shipmentsCmd)
	shipmentsCmd.AddCommand(shipmentsCreateCmd, shipmentsAWBCmd, shipmentsManifestCmd, shipmentsTrackCmd)
}
