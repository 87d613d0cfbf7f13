package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
)

const basisPointsDenominator = 10000

// Amount is a token quantity in base units.
type Amount uint256.Int

func NewAmount(v uint64) Amount {
	return Amount(*uint256.NewInt(v))
}

func ParseAmount(s string) (Amount, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount(*v), nil
}

func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) u256() *uint256.Int {
	return (*uint256.Int)(&a)
}

func (a Amount) Add(b Amount) Amount {
	var z uint256.Int
	z.Add(a.u256(), b.u256())
	return Amount(z)
}

func (a Amount) AddOverflow(b Amount) (Amount, bool) {
	var z uint256.Int
	_, overflow := z.AddOverflow(a.u256(), b.u256())
	return Amount(z), overflow
}

// Sub saturates at zero.
func (a Amount) Sub(b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return Amount{}
	}
	var z uint256.Int
	z.Sub(a.u256(), b.u256())
	return Amount(z)
}

func (a Amount) MulUint64(n uint64) (Amount, bool) {
	var z uint256.Int
	_, overflow := z.MulOverflow(a.u256(), uint256.NewInt(n))
	return Amount(z), overflow
}

// BasisPoints returns a * bps / 10000 rounded down.
func (a Amount) BasisPoints(bps uint64) Amount {
	var z uint256.Int
	z.MulDivOverflow(a.u256(), uint256.NewInt(bps), uint256.NewInt(basisPointsDenominator))
	return Amount(z)
}

func (a Amount) Cmp(b Amount) int {
	return a.u256().Cmp(b.u256())
}

func (a Amount) IsZero() bool {
	return a.u256().IsZero()
}

func (a Amount) String() string {
	return a.u256().Dec()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("amount must be a decimal string: %w", err)
		}
		s = n.String()
	}

	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}

func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Amount) Scan(src interface{}) error {
	var s string

	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}

	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}

func SumAmounts(amounts ...Amount) Amount {
	var total Amount
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total
}
