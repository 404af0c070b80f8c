package ledger

import (
	"strings"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

// validateRecord checks the arguments of a record call and collects all errors.
// An empty posting is reported as domain.ErrEmptyPosting.
func validateRecord(orderID string, source domain.ActivitySource, posting domain.Shipment) error {
	if posting.IsEmpty() {
		return domain.ErrEmptyPosting
	}

	var errs []domain.FieldError
	if strings.TrimSpace(orderID) == "" {
		errs = append(errs, domain.FieldError{Field: "order_id", Message: "required"})
	}
	if !source.Type.IsValid() {
		errs = append(errs, domain.FieldError{Field: "source.type", Message: "invalid"})
	}
	if !posting.Kind().IsValid() {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "must be Shipment or Refund"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateOrderID(orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		return domain.NewValidationError("order_id", "required")
	}
	return nil
}
