package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Shipment is an ordered list of activities forming one commercial posting.
// Refunds use the same type with Kind() == PostingKindRefund.
type Shipment struct {
	kind       PostingKind
	activities []Activity
}

func NewShipment(activities ...Activity) Shipment {
	return Shipment{kind: PostingKindShipment, activities: append([]Activity(nil), activities...)}
}

func NewRefund(activities ...Activity) Shipment {
	return Shipment{kind: PostingKindRefund, activities: append([]Activity(nil), activities...)}
}

func (s Shipment) Kind() PostingKind { return s.kind }

// WithKind returns a copy tagged with another posting kind.
func (s Shipment) WithKind(k PostingKind) Shipment {
	return Shipment{kind: k, activities: s.activities}
}

func (s Shipment) IsRefund() bool { return s.kind == PostingKindRefund }

func (s Shipment) IsEmpty() bool { return len(s.activities) == 0 }

// Activities returns a copy of the activity list.
func (s Shipment) Activities() []Activity { return append([]Activity(nil), s.activities...) }

// ID is the identity of the first activity.
func (s Shipment) ID() string {
	if len(s.activities) == 0 {
		return ""
	}
	return s.activities[0].ActivityID()
}

// Date is the date of the first activity.
func (s Shipment) Date() time.Time {
	if len(s.activities) == 0 {
		return time.Time{}
	}
	return s.activities[0].DateTime()
}

func (s Shipment) Currency() string {
	if len(s.activities) == 0 {
		return ""
	}
	return s.activities[0].Currency()
}

// Total sums the taxed amounts and effective taxes of every activity.
func (s Shipment) Total() Amount {
	var total Amount
	for _, a := range s.activities {
		total = total.Add(a.Effective())
	}
	return total
}

// Negated returns a copy with every activity negated.
func (s Shipment) Negated() Shipment {
	out := Shipment{kind: s.kind, activities: make([]Activity, len(s.activities))}
	for i, a := range s.activities {
		out.activities[i] = a.Negated()
	}
	return out
}

// IsDifferentTaxes compares activities pairwise. A different activity count is always material.
func (s Shipment) IsDifferentTaxes(o Shipment) bool {
	if len(s.activities) != len(o.activities) {
		return true
	}
	for i := range s.activities {
		if s.activities[i].IsDifferentTaxes(o.activities[i]) {
			return true
		}
	}
	return false
}

type shipmentJSON struct {
	Kind       PostingKind      `json:"kind,omitempty"`
	Activities []Activity       `json:"activities,omitempty"`
	Activity   *json.RawMessage `json:"activity,omitempty"`
}

func (s Shipment) MarshalJSON() ([]byte, error) {
	return json.Marshal(shipmentJSON{Kind: s.kind, Activities: s.activities})
}

// UnmarshalJSON accepts the activities list and the older single-activity shape.
func (s *Shipment) UnmarshalJSON(b []byte) error {
	var dto shipmentJSON
	if err := json.Unmarshal(b, &dto); err != nil {
		return err
	}
	kind := dto.Kind
	if kind == "" {
		kind = PostingKindShipment
	}
	if !kind.IsValid() {
		return NewValidationError("kind", fmt.Sprintf("unknown posting kind %q", kind))
	}
	acts := dto.Activities
	if len(acts) == 0 && dto.Activity != nil {
		var legacy Activity
		if err := json.Unmarshal(*dto.Activity, &legacy); err != nil {
			return err
		}
		acts = []Activity{legacy}
	}
	*s = Shipment{kind: kind, activities: acts}
	return nil
}
