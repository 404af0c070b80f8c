package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

// LastDateTime returns the latest event date recorded from source, or the
// zero time. Importers resume from it.
func (s *Service) LastDateTime(ctx context.Context, source domain.ActivitySource) (time.Time, error) {
	_, last, err := s.shipments.EventDateBounds(ctx, source.Key())
	if err != nil {
		return time.Time{}, fmt.Errorf("ledger.LastDateTime: %w", err)
	}
	return last, nil
}

// BeginDateTime returns the earliest event date recorded from source, or the
// zero time.
func (s *Service) BeginDateTime(ctx context.Context, source domain.ActivitySource) (time.Time, error) {
	first, _, err := s.shipments.EventDateBounds(ctx, source.Key())
	if err != nil {
		return time.Time{}, fmt.Errorf("ledger.BeginDateTime: %w", err)
	}
	return first, nil
}
