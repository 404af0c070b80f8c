// Package ledger is the order ledger engine: it turns repeated and corrected
// shipments and refunds into an append-only revision history with a
// Draft/Published lifecycle and compensating entries for published facts
// that are later contradicted.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/icingerpower/AmzBooks-sub000/internal/config"
	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
	"github.com/icingerpower/AmzBooks-sub000/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type shipmentRepo interface {
	Insert(ctx context.Context, row domain.LedgerRow) error
	UpdateDraft(ctx context.Context, id string, current domain.Shipment, eventDate time.Time, source domain.ActivitySource) error
	MarkPublished(ctx context.Context, id string, at time.Time) error
	DeleteDrafts(ctx context.Context) (int64, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id string) (*domain.LedgerRow, error)
	Head(ctx context.Context, rootID string) (*domain.LedgerRow, error)
	NextRevision(ctx context.Context, rootID string) (int, error)
	Lineage(ctx context.Context, rootID string) ([]domain.LedgerRow, error)
	ListDraftsBefore(ctx context.Context, before time.Time) ([]domain.LedgerRow, error)
	List(ctx context.Context, f domain.RowFilter) ([]domain.LedgerRow, error)
	Count(ctx context.Context, f domain.RowFilter) (int, error)
	EventDateBounds(ctx context.Context, sourceKey string) (first, last time.Time, err error)
}

type orderRepo interface {
	Ensure(ctx context.Context, id string) error
	SetAddress(ctx context.Context, id string, addr domain.Address) error
	SetStore(ctx context.Context, id, store string) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	DeleteOrphans(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type invoicingRepo interface {
	Upsert(ctx context.Context, rootID string, info domain.InvoicingInfo) error
	Get(ctx context.Context, rootID string) (*domain.InvoicingInfo, error)
	DeleteOrphans(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type financialEventRepo interface {
	Insert(ctx context.Context, events []domain.FinancialEvent) error
	ListByShipment(ctx context.Context, shipmentID string) ([]domain.FinancialEvent, error)
	ListByBatch(ctx context.Context, batch uuid.UUID) ([]domain.FinancialEvent, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type archiver interface {
	CopyTo(ctx context.Context, path string, before time.Time) (domain.ArchiveStats, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type metricsRecorder interface {
	PostingRecorded(outcome string)
	RowsPublished(n int, took time.Duration)
	ValidationRejected()
}

type noopMetrics struct{}

func (noopMetrics) PostingRecorded(string)           {}
func (noopMetrics) RowsPublished(int, time.Duration) {}
func (noopMetrics) ValidationRejected()              {}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service is the ledger state machine. Mutating operations are serialized
// by mu and each runs in a single transaction.
type Service struct {
	log       *slog.Logger
	shipments shipmentRepo
	orders    orderRepo
	invoicing invoicingRepo
	events    financialEventRepo
	archive   archiver
	tx        txManager
	metrics   metricsRecorder
	loc       *time.Location
	now       func() time.Time

	mu        sync.Mutex
	lastStamp int64
}

// NewService creates a new ledger service.
func NewService(
	logger *slog.Logger,
	shipments shipmentRepo,
	orders orderRepo,
	invoicing invoicingRepo,
	events financialEventRepo,
	archive archiver,
	tx txManager,
	cfg config.LedgerConfig,
) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		log:       logger.With("service", "ledger"),
		shipments: shipments,
		orders:    orders,
		invoicing: invoicing,
		events:    events,
		archive:   archive,
		tx:        tx,
		metrics:   noopMetrics{},
		loc:       loc,
		now:       time.Now,
	}
}

// SetMetrics injects the optional metrics recorder.
func (s *Service) SetMetrics(m metricsRecorder) {
	if m == nil {
		m = noopMetrics{}
	}
	s.metrics = m
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// nextStamp returns a millisecond timestamp strictly greater than any stamp
// handed out before by this service. Callers hold mu.
func (s *Service) nextStamp() int64 {
	stamp := s.now().UnixMilli()
	if stamp <= s.lastStamp {
		stamp = s.lastStamp + 1
	}
	s.lastStamp = stamp
	return stamp
}

// dayStart is midnight, in the ledger time zone, of the calendar day t
// carries in its own location.
func (s *Service) dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// dayEnd is the exclusive upper bound of the calendar day of t.
func (s *Service) dayEnd(t time.Time) time.Time {
	return s.dayStart(t).AddDate(0, 0, 1)
}

// yearEnd is the exclusive upper bound of year in the ledger time zone.
func (s *Service) yearEnd(year int) time.Time {
	return time.Date(year+1, time.January, 1, 0, 0, 0, 0, s.loc)
}

// runAttrs returns the context attributes attached to every log line.
func runAttrs(ctx context.Context) []any {
	var attrs []any
	if id, ok := ctxutil.RunIDFromCtx(ctx); ok {
		attrs = append(attrs, slog.String("run_id", id.String()))
	}
	if cmd := ctxutil.CommandFromCtx(ctx); cmd != "" {
		attrs = append(attrs, slog.String("command", cmd))
	}
	return attrs
}

// batchID is the run id of the context, or a fresh one.
func batchID(ctx context.Context) uuid.UUID {
	if id, ok := ctxutil.RunIDFromCtx(ctx); ok {
		return id
	}
	return uuid.New()
}

// resolveRoot maps any revision id to its lineage root. Unknown ids are
// returned as is.
func (s *Service) resolveRoot(ctx context.Context, id string) (string, error) {
	row, err := s.shipments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return id, nil
		}
		return "", err
	}
	return row.RootID, nil
}
