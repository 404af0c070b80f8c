package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

var (
	// Gaps at or below this are rounding noise and left alone.
	reconcileEpsilon = decimal.RequireFromString("0.0001")
	// Above this per-unit correction the gap is spread over all lines.
	reconcileSpreadThreshold = decimal.RequireFromString("0.015")
)

// InvoicingInfo is the invoice metadata of a lineage, keyed by its root id.
type InvoicingInfo struct {
	InvoiceNumber *string
	InvoiceLink   *string
	Items         []LineItem
}

// NewInvoicingInfo attaches items to the posting and reconciles their tax
// against the posting's effective tax.
func NewInvoicingInfo(posting *Shipment, items []LineItem, number, link *string) *InvoicingInfo {
	info := &InvoicingInfo{InvoiceNumber: number, InvoiceLink: link}
	var acts []Activity
	if posting != nil {
		acts = posting.Activities()
	}
	info.SetItems(acts, items)
	return info
}

// IsInvoiceDone reports whether an invoice number was assigned.
func (i *InvoicingInfo) IsInvoiceDone() bool {
	return i.InvoiceNumber != nil && *i.InvoiceNumber != ""
}

// SetItems stores a copy of items and reconciles their total tax with the
// aggregate effective tax of activities.
func (i *InvoicingInfo) SetItems(activities []Activity, items []LineItem) {
	i.Items = append([]LineItem(nil), items...)
	if len(activities) == 0 || len(i.Items) == 0 {
		return
	}

	target := decimal.Zero
	for _, a := range activities {
		target = target.Add(a.Taxes())
	}
	current := decimal.Zero
	totalQty := 0
	for _, it := range i.Items {
		current = current.Add(it.TotalTaxes())
		totalQty += it.Quantity
	}

	gap := target.Sub(current)
	if gap.Abs().LessThanOrEqual(reconcileEpsilon) {
		return
	}
	first := &i.Items[0]
	if first.Quantity == 0 {
		return
	}
	perUnitFirst := gap.Div(decimal.NewFromInt(int64(first.Quantity)))
	if perUnitFirst.Abs().GreaterThan(reconcileSpreadThreshold) && totalQty > 0 {
		perUnit := gap.Div(decimal.NewFromInt(int64(totalQty)))
		for k := range i.Items {
			i.Items[k].AdjustTaxes(perUnit)
		}
		return
	}
	first.AdjustTaxes(perUnitFirst)
}

// TotalTaxes sums the taxes of every line.
func (i *InvoicingInfo) TotalTaxes() decimal.Decimal {
	total := decimal.Zero
	for _, it := range i.Items {
		total = total.Add(it.TotalTaxes())
	}
	return total
}

type lineItemJSON struct {
	SKU       string      `json:"sku"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	UnitTaxed jsonDecimal `json:"unitTaxed"`
	UnitTaxes jsonDecimal `json:"unitTaxes"`
}

type invoicingInfoJSON struct {
	InvoiceNumber *string        `json:"invoiceNumber,omitempty"`
	InvoiceLink   *string        `json:"invoiceLink,omitempty"`
	Items         []lineItemJSON `json:"items"`
}

func (i InvoicingInfo) MarshalJSON() ([]byte, error) {
	dto := invoicingInfoJSON{
		InvoiceNumber: i.InvoiceNumber,
		InvoiceLink:   i.InvoiceLink,
		Items:         make([]lineItemJSON, len(i.Items)),
	}
	for k, it := range i.Items {
		dto.Items[k] = lineItemJSON{
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitTaxed: jsonDecimal(it.Unit.Taxed),
			UnitTaxes: jsonDecimal(it.Unit.Taxes),
		}
	}
	return json.Marshal(dto)
}

func (i *InvoicingInfo) UnmarshalJSON(b []byte) error {
	var dto invoicingInfoJSON
	if err := json.Unmarshal(b, &dto); err != nil {
		return err
	}
	out := InvoicingInfo{InvoiceNumber: dto.InvoiceNumber, InvoiceLink: dto.InvoiceLink}
	for _, it := range dto.Items {
		out.Items = append(out.Items, LineItem{
			SKU:      it.SKU,
			Name:     it.Name,
			Quantity: it.Quantity,
			Unit:     Amount{Taxed: decimal.Decimal(it.UnitTaxed), Taxes: decimal.Decimal(it.UnitTaxes)},
		})
	}
	*i = out
	return nil
}
