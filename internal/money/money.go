package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OutputScale is the number of fractional digits in every rendered amount.
const OutputScale = 4

// Amount is an exact signed monetary value. Input with more than four
// fractional digits is rounded half-to-even once at the parse boundary;
// all arithmetic afterwards is exact.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// Parse converts text into an Amount. Surrounding whitespace is trimmed.
// Scientific notation is rejected; an optional leading sign is accepted.
func Parse(text string) (Amount, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	if strings.ContainsAny(s, "eE") {
		return Amount{}, fmt.Errorf("scientific notation not accepted: %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{d: d.RoundBank(OutputScale)}, nil
}

// MustParse is Parse for literals in tests and constants.
func MustParse(text string) Amount {
	a, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

// Cmp returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.d.Cmp(b.d) }

func (a Amount) IsNegative() bool { return a.d.IsNegative() }
func (a Amount) IsZero() bool     { return a.d.IsZero() }

// LessThan reports a < b.
func (a Amount) LessThan(b Amount) bool { return a.d.Cmp(b.d) < 0 }

// Equal reports numeric equality (1.5 == 1.5000).
func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

// String renders the amount at exactly four fractional digits.
func (a Amount) String() string { return a.d.StringFixed(OutputScale) }
