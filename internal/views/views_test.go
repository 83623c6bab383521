package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentPageEscapesAndWiresConfirm(t *testing.T) {
	var buf bytes.Buffer
	err := PaymentPage(PaymentPageProps{
		InvoiceID:       12,
		InvoiceNumber:   "INV-202603-000001",
		Description:     `<script>alert(1)</script>`,
		Amount:          "5.000.000 VND",
		Gateway:         "vnpay",
		TransactionCode: `TXN-"1"`,
		ReturnURL:       "/resident/invoices",
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "INV-202603-000001")
	assert.Contains(t, html, "5.000.000 VND")
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, `data-confirm-url="/api/invoices/12/confirm-payment"`)
	assert.Contains(t, html, `data-transaction-code="TXN-&#34;1&#34;"`)
	assert.Contains(t, html, `data-return-url="/resident/invoices"`)
	assert.Contains(t, html, "Idempotency-Key")
}

func TestPaymentPageAttributesCannotBreakOut(t *testing.T) {
	var buf bytes.Buffer
	err := PaymentPage(PaymentPageProps{
		InvoiceID:       3,
		InvoiceNumber:   "INV-3",
		Gateway:         `momo"><script>alert(1)</script>`,
		TransactionCode: "</script><script>alert(2)</script>",
		QRCodeURL:       `https://qr.example/?d="x"`,
		ReturnURL:       "javascript:alert(3)",
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.NotContains(t, html, "<script>alert")
	assert.NotContains(t, html, "javascript:alert")
	assert.Contains(t, html, `data-return-url="about:invalid#TemplFailedSanitizationURL"`)
	assert.Contains(t, html, `src="https://qr.example/?d=&#34;x&#34;"`)
	assert.Equal(t, 1, strings.Count(html, "<script>"))
}

func TestPaymentPagePaid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PaymentPage(PaymentPageProps{InvoiceNumber: "INV-1", AlreadyPaid: true, ReturnURL: "/back"}).
		Render(context.Background(), &buf))

	assert.Contains(t, buf.String(), "Hóa đơn đã được thanh toán")
	assert.NotContains(t, buf.String(), `id="confirm"`)
	assert.Contains(t, buf.String(), `href="/back"`)
}

func TestErrorPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorPage(ErrorPageProps{Code: 404, ErrorTitle: "Not Found", ErrorMessage: "a < b"}).
		Render(context.Background(), &buf))

	assert.Contains(t, buf.String(), "404 · Not Found")
	assert.Contains(t, buf.String(), "a &lt; b")
}
