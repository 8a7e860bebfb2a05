// Package payment checks card details before an order is accepted. No card
// is ever charged.
package payment

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidNumber = errors.New("invalid credit card number")
	ErrInvalidExpiry = errors.New("invalid or expired credit card expiration date")
	ErrInvalidCVV    = errors.New("invalid CVV")
)

// Card holds the details a guest types at the terminal.
type Card struct {
	Number string
	Expiry string // MM/YYYY
	CVV    string
}

// Validate checks the number, then the expiry against now, then the CVV,
// and returns the first failure.
func Validate(card Card, now time.Time) error {
	if !ValidNumber(card.Number) {
		return ErrInvalidNumber
	}
	if !ValidExpiry(card.Expiry, now) {
		return ErrInvalidExpiry
	}
	if !ValidCVV(card.CVV) {
		return ErrInvalidCVV
	}
	return nil
}

// ValidNumber runs the Luhn check. Spaces and dashes are ignored and an
// empty number is rejected.
func ValidNumber(number string) bool {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(number))
	if digits == "" {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	return sum%10 == 0
}

// ValidExpiry accepts MM/YYYY for the current month or later.
func ValidExpiry(expiry string, now time.Time) bool {
	monthText, yearText, ok := strings.Cut(strings.TrimSpace(expiry), "/")
	if !ok {
		return false
	}

	month, err := strconv.Atoi(strings.TrimSpace(monthText))
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(strings.TrimSpace(yearText))
	if err != nil {
		return false
	}

	currentYear, currentMonth := now.Year(), int(now.Month())
	return year > currentYear || (year == currentYear && month >= currentMonth)
}

// ValidCVV accepts exactly three digits.
func ValidCVV(cvv string) bool {
	cvv = strings.TrimSpace(cvv)
	if len(cvv) != 3 {
		return false
	}
	for _, r := range cvv {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
