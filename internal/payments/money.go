package payments

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount in rupees with Indian digit grouping, e.g.
// 123456.5 becomes "₹1,23,456.50". Whole amounts carry no paise.
func FormatINR(d decimal.Decimal) string {
	sign := ""
	if d.Round(2).IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	digits, paise, _ := strings.Cut(d.StringFixed(2), ".")

	grouped := digits
	if len(digits) > 3 {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		grouped = strings.Join(append(groups, tail), ",")
	}

	out := sign + "₹" + grouped
	if paise != "" && paise != "00" {
		out += "." + paise
	}
	return out
}
