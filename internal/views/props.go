package views

import "fmt"

// PaymentPageProps is everything the mock payment page shows. The handler
// resolves it up front so rendering never touches the database.
type PaymentPageProps struct {
	InvoiceID       uint
	InvoiceNumber   string
	Description     string
	Amount          string
	DueDate         string
	StatusLabel     string
	Gateway         string
	TransactionCode string
	QRCodeURL       string
	ReturnURL       string
	AlreadyPaid     bool
}

func (p PaymentPageProps) confirmURL() string {
	return fmt.Sprintf("/api/invoices/%d/confirm-payment", p.InvoiceID)
}

type ErrorPageProps struct {
	Code         int
	ErrorTitle   string
	ErrorMessage string
	BackLink     string
	BackText     string
}
