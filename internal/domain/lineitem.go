package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one invoice line. Unit holds the per-unit taxed price and tax.
type LineItem struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     Amount `json:"-"`
}

// NewLineItem computes the unit tax as taxed × vatRate.
func NewLineItem(sku, name string, taxed, vatRate decimal.Decimal, quantity int) (LineItem, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)

	var verr ValidationError
	if sku == "" {
		verr.Add("sku", "required")
	}
	if name == "" {
		verr.Add("name", "required")
	}
	if quantity <= 0 {
		verr.Add("quantity", "must be positive")
	}
	if vatRate.IsNegative() {
		verr.Add("vatRate", "must not be negative")
	}
	if err := verr.Err(); err != nil {
		return LineItem{}, err
	}
	return LineItem{
		SKU:      sku,
		Name:     name,
		Quantity: quantity,
		Unit:     Amount{Taxed: taxed, Taxes: taxed.Mul(vatRate)},
	}, nil
}

func (li LineItem) TotalTaxed() decimal.Decimal {
	return li.Unit.Taxed.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li LineItem) TotalTaxes() decimal.Decimal {
	return li.Unit.Taxes.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// AdjustTaxes adds delta to the unit tax.
func (li *LineItem) AdjustTaxes(delta decimal.Decimal) {
	li.Unit.Taxes = li.Unit.Taxes.Add(delta)
}
