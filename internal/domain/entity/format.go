package entity

import (
	"fmt"
	"strconv"
)

func formatAmount(amount float64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
