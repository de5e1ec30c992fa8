package catalog

import (
	"strconv"
	"strings"
)

const (
	lakh  = 100_000
	crore = 10_000_000
)

// FormatCurrency renders rupees in Indian units: ₹1.2 Cr, ₹25.0 L, or ₹85,000
func FormatCurrency(amount int64) string {
	switch {
	case amount >= crore:
		return "₹" + strconv.FormatFloat(float64(amount)/crore, 'f', 1, 64) + " Cr"
	case amount >= lakh:
		return "₹" + strconv.FormatFloat(float64(amount)/lakh, 'f', 1, 64) + " L"
	default:
		return "₹" + groupIndian(amount)
	}
}

// groupIndian groups digits as 12,34,567
func groupIndian(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		s = strings.Join(append(parts, tail), ",")
	}
	if neg {
		return "-" + s
	}
	return s
}
