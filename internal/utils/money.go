package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// EURToINR is the fixed rate applied to fares quoted in euros.
const EURToINR = 110.0

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatINR renders an amount as "1234.50 INR".
func FormatINR(amount float64) string {
	return FormatMoney(amount) + " INR"
}

// FormatRupees renders an amount with thousand separators, e.g. "₹12,500".
func FormatRupees(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s₹%s", sign, formatThousand(amount))
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
