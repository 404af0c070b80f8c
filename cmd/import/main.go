// Command import records shipments and refunds from a JSON Lines file, one
// posting per line, and logs a summary of what happened to each of them.
//
// Line format:
//
//	{"orderId":"402-0001","source":{...},"conflictDate":"2024-01-05","update":false,"shipment":{...}}
//
// Usage:
//
//	import -file=postings.jsonl
//
// Exit codes: 0 = every line processed, 1 = storage failure or unreadable file.
// Rejected lines are logged and do not change the exit code.
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
	file := flag.String("file", "", "JSON Lines file with one posting per line")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: import -file=FILE.jsonl")
		os.Exit(1)
	}

	err := app.Run(context.Background(), "import", time.Hour, func(ctx context.Context, a *app.App) error {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()

		sum, err := newImporter(a.Ledger, a.Log).Import(ctx, f)
		a.Log.InfoContext(ctx, "import completed",
			slog.String("file", *file),
			slog.Int("lines", sum.Lines),
			slog.Any("categories", sum.ByCategory()),
		)
		if err != nil {
			return err
		}
		if n := sum.StorageFailures(); n > 0 {
			return fmt.Errorf("%d postings hit a storage failure", n)
		}
		return nil
	})
	if err != nil {
		slog.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
