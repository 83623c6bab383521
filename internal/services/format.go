package services

import (
	"strconv"
	"strings"
	"time"
)

// FormatCurrency renders an amount in dong with dot thousand separators,
// e.g. 5000000 -> "5.000.000 VND".
func FormatCurrency(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteString(" VND")
	return b.String()
}

// FormatDate renders a date as dd/mm/yyyy
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

var statusLabels = map[string]string{
	"pending":   "Chờ xử lý",
	"paid":      "Đã thanh toán",
	"overdue":   "Quá hạn",
	"completed": "Hoàn thành",
}

// StatusLabel returns the resident-facing label of a status
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}
