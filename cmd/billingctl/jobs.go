package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark pending invoices past their due date as overdue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer application.Close()

		n, err := application.Invoices.SweepOverdue(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Marked %d invoice(s) overdue\n", n)
		return nil
	},
}

var relayBatch int

var relayCmd = &cobra.Command{
	Use:   "relay-outbox",
	Short: "Publish pending outbox events to the broker",
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer application.Close()

		result, err := application.Relay.Relay(cmd.Context(), relayBatch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Published %d event(s), %d failed\n", result.Published, result.Failed)
		return nil
	},
}

func init() {
	relayCmd.Flags().IntVar(&relayBatch, "batch", 100, "Maximum events to publish")

	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(relayCmd)
}
