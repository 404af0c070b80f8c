package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

// RecordShipmentFromSource reconciles a shipment or refund with the head of
// its lineage, in one transaction:
//   - no row: a Draft row starts the lineage;
//   - Draft head: its current snapshot is overwritten;
//   - Published head with the same facts: nothing is written;
//   - Published head with different facts: a reversal of the head and a new
//     version are appended as Drafts dated newDateIfConflict.
//
// A zero newDateIfConflict dates conflict rows with the incoming posting date.
func (s *Service) RecordShipmentFromSource(
	ctx context.Context,
	orderID string,
	source domain.ActivitySource,
	posting domain.Shipment,
	newDateIfConflict time.Time,
) (Outcome, error) {
	outcome, err := s.record(ctx, orderID, source, posting, newDateIfConflict, false)
	if err != nil {
		return 0, fmt.Errorf("ledger.RecordShipmentFromSource: %w", err)
	}
	return outcome, nil
}

// RecordShipmentUpdated behaves like RecordShipmentFromSource but fails with
// domain.ErrUnknownLineage when the lineage does not exist yet.
func (s *Service) RecordShipmentUpdated(
	ctx context.Context,
	orderID string,
	source domain.ActivitySource,
	posting domain.Shipment,
	newDateIfConflict time.Time,
) (Outcome, error) {
	outcome, err := s.record(ctx, orderID, source, posting, newDateIfConflict, true)
	if err != nil {
		return 0, fmt.Errorf("ledger.RecordShipmentUpdated: %w", err)
	}
	return outcome, nil
}

func (s *Service) record(
	ctx context.Context,
	orderID string,
	source domain.ActivitySource,
	posting domain.Shipment,
	newDateIfConflict time.Time,
	mustExist bool,
) (Outcome, error) {
	if err := validateRecord(orderID, source, posting); err != nil {
		s.metrics.ValidationRejected()
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rootID := posting.ID()
	var (
		outcome Outcome
		rowIDs  []string
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		head, err := s.shipments.Head(ctx, rootID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("read head: %w", err)
		}

		switch {
		case head == nil:
			if mustExist {
				return fmt.Errorf("lineage %s: %w", rootID, domain.ErrUnknownLineage)
			}
			outcome = OutcomeCreated
			rowIDs = []string{rootID}
			return s.startLineage(ctx, orderID, source, posting)

		case head.IsDraft():
			outcome = OutcomeDraftUpdated
			rowIDs = []string{head.ID}
			eventDate := posting.Date()
			if head.Kind != domain.RevisionOriginal {
				eventDate = head.EventDate
				if !newDateIfConflict.IsZero() {
					eventDate = newDateIfConflict
				}
			}
			if err := s.shipments.UpdateDraft(ctx, head.ID, posting, eventDate, source); err != nil {
				return fmt.Errorf("update draft: %w", err)
			}
			return nil

		case !head.Snapshot().IsDifferentTaxes(posting):
			outcome = OutcomeUnchanged
			rowIDs = []string{head.ID}
			return nil

		default:
			outcome = OutcomeCorrected
			ids, err := s.appendCorrection(ctx, orderID, source, head, posting, newDateIfConflict)
			rowIDs = ids
			return err
		}
	})
	if err != nil {
		return 0, err
	}

	s.metrics.PostingRecorded(outcome.String())
	attrs := append(runAttrs(ctx),
		slog.String("order_id", orderID),
		slog.String("root_id", rootID),
		slog.Any("rows", rowIDs),
		slog.String("outcome", outcome.String()),
	)
	switch outcome {
	case OutcomeCorrected:
		s.log.WarnContext(ctx, "published posting corrected", attrs...)
	case OutcomeUnchanged:
		s.log.DebugContext(ctx, "posting unchanged", attrs...)
	default:
		s.log.InfoContext(ctx, "posting recorded", attrs...)
	}
	return outcome, nil
}

func (s *Service) startLineage(ctx context.Context, orderID string, source domain.ActivitySource, posting domain.Shipment) error {
	if err := s.orders.Ensure(ctx, orderID); err != nil {
		return fmt.Errorf("ensure order: %w", err)
	}
	row := domain.LedgerRow{
		ID:        posting.ID(),
		OrderID:   orderID,
		RootID:    posting.ID(),
		Revision:  0,
		Kind:      domain.RevisionOriginal,
		Status:    domain.PostingStatusDraft,
		Original:  posting,
		Current:   posting,
		EventDate: posting.Date(),
		Source:    source,
	}
	if err := s.shipments.Insert(ctx, row); err != nil {
		return fmt.Errorf("insert original: %w", err)
	}
	return nil
}

// appendCorrection writes the reversal of head and the new version as two
// Draft rows. The Published head is left untouched.
func (s *Service) appendCorrection(
	ctx context.Context,
	orderID string,
	source domain.ActivitySource,
	head *domain.LedgerRow,
	posting domain.Shipment,
	newDateIfConflict time.Time,
) ([]string, error) {
	if err := s.orders.Ensure(ctx, orderID); err != nil {
		return nil, fmt.Errorf("ensure order: %w", err)
	}
	revision, err := s.shipments.NextRevision(ctx, head.RootID)
	if err != nil {
		return nil, fmt.Errorf("next revision: %w", err)
	}

	eventDate := newDateIfConflict
	if eventDate.IsZero() {
		eventDate = posting.Date()
	}
	stamp := s.nextStamp()
	reversed := head.Snapshot().Negated()

	reversal := domain.LedgerRow{
		ID:        domain.ReversalID(head.RootID, stamp),
		OrderID:   orderID,
		RootID:    head.RootID,
		Revision:  revision,
		Kind:      domain.RevisionReversal,
		Status:    domain.PostingStatusDraft,
		Original:  reversed,
		Current:   reversed,
		EventDate: eventDate,
		Source:    head.Source,
	}
	version := domain.LedgerRow{
		ID:        domain.VersionID(head.RootID, stamp),
		OrderID:   orderID,
		RootID:    head.RootID,
		Revision:  revision + 1,
		Kind:      domain.RevisionVersion,
		Status:    domain.PostingStatusDraft,
		Original:  posting,
		Current:   posting,
		EventDate: eventDate,
		Source:    source,
	}

	if err := s.shipments.Insert(ctx, reversal); err != nil {
		return nil, fmt.Errorf("insert reversal: %w", err)
	}
	if err := s.shipments.Insert(ctx, version); err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}
	return []string{reversal.ID, version.ID}, nil
}

// ShipmentIfDifferent returns a copy of the head snapshot of the posting's
// lineage when it differs materially from posting, nil otherwise.
func (s *Service) ShipmentIfDifferent(ctx context.Context, posting domain.Shipment) (*domain.Shipment, error) {
	if posting.IsEmpty() {
		return nil, fmt.Errorf("ledger.ShipmentIfDifferent: %w", domain.ErrEmptyPosting)
	}
	head, err := s.shipments.Head(ctx, posting.ID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger.ShipmentIfDifferent: %w", err)
	}
	snap := head.Snapshot()
	if !snap.IsDifferentTaxes(posting) {
		return nil, nil
	}
	return &snap, nil
}

// RecordAddressTo stores the delivery address of an order, creating the
// order when needed.
func (s *Service) RecordAddressTo(ctx context.Context, orderID string, addr domain.Address) error {
	if err := validateOrderID(orderID); err != nil {
		return fmt.Errorf("ledger.RecordAddressTo: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.orders.SetAddress(ctx, orderID, addr); err != nil {
		return fmt.Errorf("ledger.RecordAddressTo: %w", err)
	}
	s.log.InfoContext(ctx, "order address recorded", append(runAttrs(ctx),
		slog.String("order_id", orderID),
		slog.Bool("business_buyer", addr.IsCompleteCompany()),
	)...)
	return nil
}

// RecordStore stores the store an order was placed on.
func (s *Service) RecordStore(ctx context.Context, orderID, store string) error {
	if err := validateOrderID(orderID); err != nil {
		return fmt.Errorf("ledger.RecordStore: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.orders.SetStore(ctx, orderID, store); err != nil {
		return fmt.Errorf("ledger.RecordStore: %w", err)
	}
	return nil
}
