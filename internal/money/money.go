// Package money holds currency amounts as integer minor units (cents).
package money

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents is an amount in minor currency units.
type Cents int64

// ParseMajor converts a decimal major-unit string ("12.5", "10.00") into cents.
// More than two fractional digits are rounded half-up.
func ParseMajor(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
		if s == "" {
			return 0, fmt.Errorf("invalid amount: sign without digits")
		}
	}
	whole, frac, _ := strings.Cut(s, ".")
	if strings.HasPrefix(whole, "+") || strings.HasPrefix(whole, "-") {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}
	frac += "000"
	cents, _ := strconv.ParseInt(frac[:2], 10, 64)
	if frac[2] >= '5' {
		cents++
	}
	total := units*100 + cents
	if neg {
		total = -total
	}
	return Cents(total), nil
}

// FromMajor converts a float major-unit value, as received in JSON, into cents.
func FromMajor(v float64) Cents {
	return Cents(math.Round(v * 100))
}

// Major returns the amount in major units, used only at the JSON boundary.
func (c Cents) Major() float64 {
	return float64(c) / 100
}

// String renders the amount as a fixed two-decimal major-unit string.
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MulBasisPoints returns c * bps / 10000 rounded half-up on the cents value.
func (c Cents) MulBasisPoints(bps int64) Cents {
	p := int64(c) * bps
	if p >= 0 {
		return Cents((p + 5000) / 10000)
	}
	return -Cents((-p + 5000) / 10000)
}

// MarshalJSON emits the amount as a decimal major-unit number.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a decimal major-unit number or string.
func (c *Cents) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("invalid amount %s", string(b))
		}
		n = json.Number(s)
	}
	v, err := ParseMajor(n.String())
	if err != nil {
		return err
	}
	*c = v
	return nil
}
