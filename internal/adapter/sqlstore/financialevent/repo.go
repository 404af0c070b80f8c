// Package financialevent persists the accounting documents emitted by publish.
package financialevent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/icingerpower/AmzBooks-sub000/internal/adapter/sqlstore"
	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

const table = "financial_events"

// SQLite binds at most 32766 parameters per statement.
const insertBatch = 500

var columns = []string{"id", "shipment_id", "type", "event_date", "amount", "currency", "content_json", "batch_id"}

// Repo provides financial event persistence.
type Repo struct {
	db *sqlstore.DB
}

// New creates a new financial event repository.
func New(db *sqlstore.DB) *Repo {
	return &Repo{db: db}
}

// Insert stores events in multi-row statements of at most insertBatch rows.
// An id already present fails with domain.ErrAlreadyExists.
func (r *Repo) Insert(ctx context.Context, events []domain.FinancialEvent) error {
	for start := 0; start < len(events); start += insertBatch {
		end := min(start+insertBatch, len(events))
		if err := r.insert(ctx, events[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) insert(ctx context.Context, events []domain.FinancialEvent) error {
	stmt := r.db.Builder().Insert(table).Columns(columns...)
	for _, ev := range events {
		content, err := json.Marshal(ev.Content)
		if err != nil {
			return fmt.Errorf("financial_event %s marshal content: %w", ev.ID, err)
		}
		stmt = stmt.Values(
			ev.ID, ev.ShipmentID, string(ev.Type), sqlstore.FormatTime(ev.EventDate),
			ev.Amount.String(), ev.Currency, string(content), ev.BatchID.String(),
		)
	}

	_, err := sqlstore.Exec(ctx, r.db, stmt)
	return sqlstore.MapError(err, "financial_event", events[0].ID)
}

// ListByShipment returns the events of one ledger row.
func (r *Repo) ListByShipment(ctx context.Context, shipmentID string) ([]domain.FinancialEvent, error) {
	return r.list(ctx, squirrel.Eq{"shipment_id": shipmentID})
}

// ListByBatch returns the events emitted by one publish sweep.
func (r *Repo) ListByBatch(ctx context.Context, batch uuid.UUID) ([]domain.FinancialEvent, error) {
	return r.list(ctx, squirrel.Eq{"batch_id": batch.String()})
}

func (r *Repo) list(ctx context.Context, where squirrel.Sqlizer) ([]domain.FinancialEvent, error) {
	stmt := r.db.Builder().Select(columns...).From(table).Where(where).OrderBy("event_date", "id")

	rows, err := sqlstore.Query(ctx, r.db, stmt)
	if err != nil {
		return nil, sqlstore.MapError(err, "financial_event", "list")
	}
	defer rows.Close()

	var out []domain.FinancialEvent
	for rows.Next() {
		var (
			ev                                  domain.FinancialEvent
			docType, eventDate, amount, content string
			batch                               string
		)
		if err := rows.Scan(&ev.ID, &ev.ShipmentID, &docType, &eventDate, &amount, &ev.Currency, &content, &batch); err != nil {
			return nil, sqlstore.MapError(err, "financial_event", "list")
		}
		ev.Type = domain.DocumentType(docType)
		if ev.EventDate, err = sqlstore.ParseTime(eventDate); err != nil {
			return nil, err
		}
		if ev.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("financial_event %s amount: %w", ev.ID, err)
		}
		if err := json.Unmarshal([]byte(content), &ev.Content); err != nil {
			return nil, fmt.Errorf("financial_event %s content: %w", ev.ID, err)
		}
		if ev.BatchID, err = uuid.Parse(batch); err != nil {
			return nil, fmt.Errorf("financial_event %s batch: %w", ev.ID, err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlstore.MapError(err, "financial_event", "list")
	}
	return out, nil
}

// DeleteBefore removes the events of ledger rows dated before the cut-off.
func (r *Repo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.delete(ctx, squirrel.Expr(
		"shipment_id IN (SELECT id FROM shipments WHERE event_date < ?)", sqlstore.FormatTime(before),
	))
}

// DeleteAll truncates the table.
func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	return r.delete(ctx, nil)
}

func (r *Repo) delete(ctx context.Context, where squirrel.Sqlizer) (int64, error) {
	stmt := r.db.Builder().Delete(table)
	if where != nil {
		stmt = stmt.Where(where)
	}
	res, err := sqlstore.Exec(ctx, r.db, stmt)
	if err != nil {
		return 0, sqlstore.MapError(err, "financial_event", "*")
	}
	return res.RowsAffected()
}
