package domain

import (
	"github.com/shopspring/decimal"
)

// Amount is a tax-inclusive total together with its tax portion.
type Amount struct {
	Taxed decimal.Decimal
	Taxes decimal.Decimal
}

func NewAmount(taxed, taxes decimal.Decimal) Amount {
	return Amount{Taxed: taxed, Taxes: taxes}
}

func NewAmountFromFloat(taxed, taxes float64) Amount {
	return Amount{Taxed: decimal.NewFromFloat(taxed), Taxes: decimal.NewFromFloat(taxes)}
}

// Untaxed returns the net value.
func (a Amount) Untaxed() decimal.Decimal { return a.Taxed.Sub(a.Taxes) }

func (a Amount) Neg() Amount { return Amount{Taxed: a.Taxed.Neg(), Taxes: a.Taxes.Neg()} }

func (a Amount) Add(b Amount) Amount {
	return Amount{Taxed: a.Taxed.Add(b.Taxed), Taxes: a.Taxes.Add(b.Taxes)}
}

func (a Amount) Equal(b Amount) bool {
	return a.Taxed.Equal(b.Taxed) && a.Taxes.Equal(b.Taxes)
}

func (a Amount) IsZero() bool { return a.Taxed.IsZero() && a.Taxes.IsZero() }

// jsonDecimal writes a decimal as a bare JSON number and reads numbers or quoted strings.
type jsonDecimal decimal.Decimal

func (d jsonDecimal) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(d).String()), nil
}

func (d *jsonDecimal) UnmarshalJSON(b []byte) error {
	var v decimal.Decimal
	if err := v.UnmarshalJSON(b); err != nil {
		return err
	}
	*d = jsonDecimal(v)
	return nil
}
