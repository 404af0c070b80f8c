// Command publish freezes every Draft row dated up to the end of the given
// day and emits the matching financial events. It is intended to be invoked
// by an external cron job once the accounting period is closed.
//
// Usage:
//
//	publish -until=2024-12-31
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

	"github.com/shopspring/decimal"

	"github.com/icingerpower/AmzBooks-sub000/internal/app"
	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

func main() {
	until := flag.String("until", "", "last calendar day to publish (YYYY-MM-DD)")
	flag.Parse()

	if *until == "" {
		fmt.Fprintln(os.Stderr, "Usage: publish -until=YYYY-MM-DD")
		os.Exit(1)
	}
	dateUntil, err := time.Parse(time.DateOnly, *until)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -until %q: %v\n", *until, err)
		os.Exit(1)
	}

	err = app.Run(context.Background(), "publish", 10*time.Minute, func(ctx context.Context, a *app.App) error {
		res, err := a.Ledger.Publish(ctx, dateUntil)
		if err != nil {
			return err
		}
		events, err := a.Ledger.BatchFinancialEvents(ctx, res.BatchID)
		if err != nil {
			return err
		}
		a.Log.InfoContext(ctx, "publish completed",
			slog.String("batch_id", res.BatchID.String()),
			slog.Int("published", res.Published),
			slog.Int("events", len(events)),
			slog.Any("totals", totalsByCurrency(events)),
			slog.Time("cutoff", res.Cutoff),
		)
		return nil
	})
	if err != nil {
		slog.Error("publish failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// totalsByCurrency sums the taxed amounts of a batch per currency.
func totalsByCurrency(events []domain.FinancialEvent) map[string]string {
	sums := make(map[string]decimal.Decimal)
	for _, ev := range events {
		sums[ev.Currency] = sums[ev.Currency].Add(ev.Amount)
	}
	out := make(map[string]string, len(sums))
	for cur, sum := range sums {
		out[cur] = sum.StringFixed(2)
	}
	return out
}
