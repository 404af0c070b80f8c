package domain

import "sort"

// Order groups the shipments and refunds of one seller order.
type Order struct {
	ID        string
	Store     string
	AddressTo *Address

	shipments []Shipment
	refunds   []Shipment
}

func (o *Order) AddShipment(s Shipment) { o.shipments = append(o.shipments, s) }

func (o *Order) AddRefund(r Shipment) { o.refunds = append(o.refunds, r) }

// Postings returns shipments and refunds ordered by date.
func (o *Order) Postings() []Shipment {
	all := make([]Shipment, 0, len(o.shipments)+len(o.refunds))
	all = append(all, o.shipments...)
	all = append(all, o.refunds...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date().Before(all[j].Date()) })
	return all
}
