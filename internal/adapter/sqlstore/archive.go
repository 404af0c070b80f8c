package sqlstore

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

type tableCopy struct {
	name    string
	columns []string
	where   func(before string) squirrel.Sqlizer
	count   func(*domain.ArchiveStats, int)
}

// Parents first so that foreign keys hold on the destination.
var archiveTables = []tableCopy{
	{
		name:    "orders",
		columns: []string{"id", "address_json", "store"},
		where: func(before string) squirrel.Sqlizer {
			return squirrel.Expr("id IN (SELECT order_id FROM shipments WHERE event_date < ?)", before)
		},
		count: func(s *domain.ArchiveStats, n int) { s.Orders = n },
	},
	{
		name: "shipments",
		columns: []string{
			"id", "order_id", "root_id", "revision", "kind", "posting_kind", "status",
			"original_json", "current_json", "published_json", "publication_date",
			"event_date", "source_key",
		},
		where: func(before string) squirrel.Sqlizer {
			return squirrel.Lt{"event_date": before}
		},
		count: func(s *domain.ArchiveStats, n int) { s.Shipments = n },
	},
	{
		name:    "invoicing_infos",
		columns: []string{"shipment_root_id", "json"},
		where: func(before string) squirrel.Sqlizer {
			return squirrel.Expr("shipment_root_id IN (SELECT root_id FROM shipments WHERE event_date < ?)", before)
		},
		count: func(s *domain.ArchiveStats, n int) { s.InvoicingInfos = n },
	},
	{
		name:    "financial_events",
		columns: []string{"id", "shipment_id", "type", "event_date", "amount", "currency", "content_json", "batch_id"},
		where: func(before string) squirrel.Sqlizer {
			return squirrel.Expr("shipment_id IN (SELECT id FROM shipments WHERE event_date < ?)", before)
		},
		count: func(s *domain.ArchiveStats, n int) { s.FinancialEvents = n },
	},
}

// CopyBefore copies every row whose ledger event date is before the cut-off
// from src into dst. Reads run in one src transaction and writes in one dst
// transaction. Rows already present in dst are kept.
func CopyBefore(ctx context.Context, src, dst *DB, before time.Time) (domain.ArchiveStats, error) {
	var stats domain.ArchiveStats
	cutoff := FormatTime(before)

	err := NewTxManager(src).RunInTx(ctx, func(ctx context.Context) error {
		return NewTxManager(dst).RunInTx(ctx, func(ctx context.Context) error {
			for _, t := range archiveTables {
				n, err := copyTable(ctx, src, dst, t, cutoff)
				if err != nil {
					return fmt.Errorf("copy %s: %w", t.name, err)
				}
				t.count(&stats, n)
			}
			return nil
		})
	})
	if err != nil {
		return domain.ArchiveStats{}, err
	}
	return stats, nil
}

// Archiver copies rows of a live database into standalone SQLite files.
type Archiver struct {
	src         *DB
	busyTimeout time.Duration
}

func NewArchiver(src *DB, busyTimeout time.Duration) *Archiver {
	return &Archiver{src: src, busyTimeout: busyTimeout}
}

// CopyTo opens (creating if needed) the SQLite file at path, migrates it and
// copies every row dated before the cut-off into it.
func (a *Archiver) CopyTo(ctx context.Context, path string, before time.Time) (domain.ArchiveStats, error) {
	if a.src.path != "" && samePath(a.src.path, path) {
		return domain.ArchiveStats{}, fmt.Errorf("archive %s: target is the live database", path)
	}

	dst, err := OpenSQLite(ctx, path, a.busyTimeout)
	if err != nil {
		return domain.ArchiveStats{}, err
	}
	defer dst.Close()

	if err := dst.Migrate(ctx); err != nil {
		return domain.ArchiveStats{}, err
	}
	return CopyBefore(ctx, a.src, dst, before)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func copyTable(ctx context.Context, src, dst *DB, t tableCopy, cutoff string) (int, error) {
	rows, err := Query(ctx, src, src.Builder().Select(t.columns...).From(t.name).Where(t.where(cutoff)))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	conflictKey := t.columns[0]
	n := 0
	for rows.Next() {
		values := make([]any, len(t.columns))
		ptrs := make([]any, len(t.columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return n, err
		}

		stmt := dst.Builder().
			Insert(t.name).
			Columns(t.columns...).
			Values(values...).
			Suffix(fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", conflictKey))
		if _, err := Exec(ctx, dst, stmt); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}
