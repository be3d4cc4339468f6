package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cedar-policy/cedar-validate/internal"
)

var errDecimal = internal.ErrDecimal

// decimalScale is the number of fractional digits a Cedar decimal carries.
const decimalScale = 4

// Decimal represents a Cedar decimal value: a fixed-point number with
// exactly four digits of precision after the decimal point, stored as an
// integer scaled by 10^4.
type Decimal struct {
	value int64
}

// NewDecimal returns a Decimal from an already-scaled integer (i.e. the
// value multiplied by 10^4).
func NewDecimal(scaled int64) Decimal {
	return Decimal{value: scaled}
}

// ParseDecimal parses a Cedar decimal literal such as "1.2345" or "-10.0".
func ParseDecimal(s string) (Decimal, error) {
	neg := false
	rest := s
	if strings.HasPrefix(rest, "-") {
		neg = true
		rest = rest[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(rest, ".")
	if intPart == "" {
		return Decimal{}, fmt.Errorf("%w: missing integer part in %q", errDecimal, s)
	}
	if !hasFrac {
		return Decimal{}, fmt.Errorf("%w: missing decimal point in %q", errDecimal, s)
	}
	if len(fracPart) == 0 || len(fracPart) > decimalScale {
		return Decimal{}, fmt.Errorf("%w: expected 1-%d fractional digits in %q", errDecimal, decimalScale, s)
	}
	for _, c := range fracPart {
		if c < '0' || c > '9' {
			return Decimal{}, fmt.Errorf("%w: invalid fractional digit in %q", errDecimal, s)
		}
	}
	for len(fracPart) < decimalScale {
		fracPart += "0"
	}

	i, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: invalid integer part in %q: %w", errDecimal, s, err)
	}
	f, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: invalid fractional part in %q: %w", errDecimal, s, err)
	}

	v := i*10000 + f
	if neg {
		v = -v
	}
	return Decimal{value: v}, nil
}

func (d Decimal) Equal(v Value) bool {
	o, ok := v.(Decimal)
	return ok && d == o
}

func (d Decimal) MarshalCedar() []byte {
	return []byte(fmt.Sprintf(`decimal("%s")`, d.String()))
}

func (d Decimal) String() string {
	neg := d.value < 0
	v := d.value
	if neg {
		v = -v
	}
	return fmt.Sprintf("%s%d.%04d", map[bool]string{true: "-", false: ""}[neg], v/10000, v%10000)
}

func (d Decimal) hash() uint64 { return uint64(d.value) }

func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(extValueJSON{Extn: &extn{Fn: "decimal", Arg: d.String()}})
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	v, err := unmarshalExtensionValue(b, "decimal", ParseDecimal)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
