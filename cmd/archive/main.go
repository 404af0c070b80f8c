// Command archive copies every row dated up to the end of a year into a
// separate SQLite file and optionally removes the archived rows from the
// live database.
//
// Usage:
//
//	archive -path=/backups/Orders-2022.db -year=2022 [-remove]
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/icingerpower/AmzBooks-sub000/internal/app"
)

func main() {
	path := flag.String("path", "", "SQLite file receiving the archived rows")
	year := flag.Int("year", 0, "last year to archive (inclusive)")
	remove := flag.Bool("remove", false, "delete archived rows from the live database after copying")
	flag.Parse()

	if *year == 0 || (*path == "" && !*remove) {
		fmt.Fprintln(os.Stderr, "Usage: archive -path=FILE -year=YYYY [-remove]")
		os.Exit(1)
	}

	err := app.Run(context.Background(), "archive", 30*time.Minute, func(ctx context.Context, a *app.App) error {
		if *path != "" {
			copied, err := a.Ledger.CopyDatabase(ctx, *path, *year)
			if err != nil {
				return fmt.Errorf("copy: %w", err)
			}
			a.Log.InfoContext(ctx, "archive copied",
				slog.String("path", *path),
				slog.Int("year", *year),
				slog.Int("orders", copied.Orders),
				slog.Int("shipments", copied.Shipments),
				slog.Int("invoicing_infos", copied.InvoicingInfos),
				slog.Int("financial_events", copied.FinancialEvents),
			)
		}

		if !*remove {
			return nil
		}
		removed, err := a.Ledger.RemoveInDatabase(ctx, *year)
		if err != nil {
			return fmt.Errorf("remove: %w", err)
		}
		a.Log.InfoContext(ctx, "archived rows removed",
			slog.Int("year", *year),
			slog.Int("total", removed.Total()),
			slog.Int("shipments", removed.Shipments),
		)
		return nil
	})
	if err != nil {
		slog.Error("archive failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
