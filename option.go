package tradelog

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Right is the right of an option contract.
type Right string

const (
	Call Right = "CALL"
	Put  Right = "PUT"
)

// OptionSymbol is the decoded form of an OCC option symbol like AAPL250912C00240000.
type OptionSymbol struct {
	Underlying string
	Expiry     Date
	Right      Right
	Strike     decimal.Decimal
}

// String re-encodes the option in OCC format.
func (o OptionSymbol) String() string {
	r := "C"
	if o.Right == Put {
		r = "P"
	}
	strike := o.Strike.Shift(3).IntPart()
	return fmt.Sprintf("%s%s%s%08d", o.Underlying, o.Expiry.Format("060102"), r, strike)
}

var occRE = regexp.MustCompile(`^([A-Z]{1,6})(\d{2})(\d{2})(\d{2})([CP])(\d{8})$`)

// ParseOptionSymbol decodes an OCC option symbol.
//
// It returns ErrNotOptionSymbol when s does not follow the OCC grammar, and a
// descriptive error when it does but encodes an impossible expiry.
func ParseOptionSymbol(s string) (OptionSymbol, error) {
	m := occRE.FindStringSubmatch(s)
	if m == nil {
		return OptionSymbol{}, ErrNotOptionSymbol
	}
	yy, _ := strconv.Atoi(m[2])
	mm, _ := strconv.Atoi(m[3])
	dd, _ := strconv.Atoi(m[4])
	expiry := NewDate(2000+yy, time.Month(mm), dd)
	if expiry.Month() != time.Month(mm) || expiry.Day() != dd {
		return OptionSymbol{}, fmt.Errorf("option %q: invalid expiry %s%s%s", s, m[2], m[3], m[4])
	}
	strike, err := decimal.NewFromString(m[6])
	if err != nil {
		return OptionSymbol{}, fmt.Errorf("option %q: invalid strike: %w", s, err)
	}
	right := Call
	if m[5] == "P" {
		right = Put
	}
	return OptionSymbol{
		Underlying: m[1],
		Expiry:     expiry,
		Right:      right,
		Strike:     strike.Shift(-3),
	}, nil
}

// DecodeOptionSymbol is a probe: it returns false when s is not a valid option symbol.
func DecodeOptionSymbol(s string) (OptionSymbol, bool) {
	o, err := ParseOptionSymbol(s)
	return o, err == nil
}
