package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"apartment_app_echo/internal/models"
	"apartment_app_echo/internal/services"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Invoice administration",
}

var invoiceCreateOpts struct {
	userID      uint
	apartmentID uint
	chargeType  string
	amount      int64
	due         string
	description string
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a pending invoice for a resident",
	Example: `  billingctl invoice create --user 12 --apartment 4 --type RENT \
    --amount 5000000 --due 2026-04-10 --description "Tiền thuê tháng 4"`,
	RunE: runInvoiceCreate,
}

func init() {
	f := invoiceCreateCmd.Flags()
	f.UintVar(&invoiceCreateOpts.userID, "user", 0, "Resident user ID (required)")
	f.UintVar(&invoiceCreateOpts.apartmentID, "apartment", 0, "Apartment ID (required)")
	f.StringVar(&invoiceCreateOpts.chargeType, "type", "", "Charge type: "+chargeTypes())
	f.Int64Var(&invoiceCreateOpts.amount, "amount", 0, "Amount in VND")
	f.StringVar(&invoiceCreateOpts.due, "due", "", "Due date, YYYY-MM-DD")
	f.StringVar(&invoiceCreateOpts.description, "description", "", "Optional description")
	for _, name := range []string{"user", "apartment", "type", "amount", "due"} {
		_ = invoiceCreateCmd.MarkFlagRequired(name)
	}

	invoiceCmd.AddCommand(invoiceCreateCmd)
	rootCmd.AddCommand(invoiceCmd)
}

func chargeTypes() string {
	var names []string
	for _, t := range models.AllInvoiceTypes() {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}

func runInvoiceCreate(cmd *cobra.Command, _ []string) error {
	due, err := time.Parse("2006-01-02", invoiceCreateOpts.due)
	if err != nil {
		return fmt.Errorf("invalid due date %q: %w", invoiceCreateOpts.due, err)
	}

	application, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	invoice, err := application.Invoices.Create(cmd.Context(), services.CreateInvoiceInput{
		UserID:      invoiceCreateOpts.userID,
		ApartmentID: invoiceCreateOpts.apartmentID,
		Type:        invoiceCreateOpts.chargeType,
		Amount:      invoiceCreateOpts.amount,
		DueDate:     due,
		Description: invoiceCreateOpts.description,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(invoice)
}
