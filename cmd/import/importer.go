package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
	"github.com/icingerpower/AmzBooks-sub000/internal/service/ledger"
)

const maxLineSize = 4 << 20

type recorder interface {
	RecordShipmentFromSource(ctx context.Context, orderID string, source domain.ActivitySource, posting domain.Shipment, newDateIfConflict time.Time) (ledger.Outcome, error)
	RecordShipmentUpdated(ctx context.Context, orderID string, source domain.ActivitySource, posting domain.Shipment, newDateIfConflict time.Time) (ledger.Outcome, error)
}

// line is one JSON Lines record.
type line struct {
	OrderID      string                `json:"orderId"`
	Source       domain.ActivitySource `json:"source"`
	ConflictDate string                `json:"conflictDate,omitempty"`
	Update       bool                  `json:"update,omitempty"`
	Shipment     domain.Shipment       `json:"shipment"`
}

func (l line) conflictDate() (time.Time, error) {
	if l.ConflictDate == "" {
		return time.Time{}, nil
	}
	t, err := domain.ParseDateTime(l.ConflictDate)
	if err != nil {
		return time.Time{}, domain.NewValidationError("conflictDate", err.Error())
	}
	return t, nil
}

// summary counts processed lines per category.
type summary struct {
	Lines  int
	counts map[ledger.Category]int
}

func (s *summary) add(c ledger.Category) {
	if s.counts == nil {
		s.counts = make(map[ledger.Category]int)
	}
	s.counts[c]++
}

func (s summary) Count(c ledger.Category) int { return s.counts[c] }

func (s summary) StorageFailures() int { return s.counts[ledger.CategoryStorageFailure] }

// ByCategory is the summary keyed by category label, for logging.
func (s summary) ByCategory() map[string]int {
	out := make(map[string]int, len(s.counts))
	for c, n := range s.counts {
		out[c.String()] = n
	}
	return out
}

type importer struct {
	rec recorder
	log *slog.Logger
}

func newImporter(rec recorder, log *slog.Logger) *importer {
	return &importer{rec: rec, log: log}
}

// Import processes r line by line. A malformed or rejected line is logged and
// skipped; only read errors and context cancellation stop the import.
func (im *importer) Import(ctx context.Context, r io.Reader) (summary, error) {
	var sum summary

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	for n := 1; sc.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		sum.Lines++

		outcome, err := im.importLine(ctx, raw)
		cat := ledger.Classify(outcome, err)
		sum.add(cat)

		switch cat {
		case ledger.CategoryRejected:
			im.log.WarnContext(ctx, "line rejected",
				slog.Int("line", n),
				slog.String("error", err.Error()),
				slog.Any("fields", fieldErrors(err)),
			)
		case ledger.CategoryStorageFailure:
			im.log.ErrorContext(ctx, "line failed",
				slog.Int("line", n),
				slog.String("error", err.Error()),
			)
		default:
			im.log.DebugContext(ctx, "line recorded",
				slog.Int("line", n),
				slog.String("category", cat.String()),
			)
		}
	}
	if err := sc.Err(); err != nil {
		return sum, fmt.Errorf("read input: %w", err)
	}
	return sum, nil
}

func (im *importer) importLine(ctx context.Context, raw []byte) (ledger.Outcome, error) {
	var l line
	if err := json.Unmarshal(raw, &l); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return 0, err
		}
		return 0, domain.NewValidationError("line", err.Error())
	}
	conflict, err := l.conflictDate()
	if err != nil {
		return 0, err
	}
	if l.Update {
		return im.rec.RecordShipmentUpdated(ctx, l.OrderID, l.Source, l.Shipment, conflict)
	}
	return im.rec.RecordShipmentFromSource(ctx, l.OrderID, l.Source, l.Shipment, conflict)
}

func fieldErrors(err error) []string {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	out := make([]string, len(verr.Errors))
	for i, f := range verr.Errors {
		out[i] = f.String()
	}
	return out
}
