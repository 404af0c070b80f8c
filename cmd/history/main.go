// Command history prints the audit trail of one lineage: every revision with
// its document type, number, amount and status.
//
// Usage:
//
//	history -id=402-0001-FR-1
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/icingerpower/AmzBooks-sub000/internal/app"
	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

func main() {
	id := flag.String("id", "", "any row id of the lineage")
	flag.Parse()

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Usage: history -id=ROW_ID")
		os.Exit(1)
	}

	err := app.Run(context.Background(), "history", time.Minute, func(ctx context.Context, a *app.App) error {
		updates, err := a.Ledger.CreateActivityUpdateModel(ctx, *id)
		if err != nil {
			return err
		}
		return writeHistory(os.Stdout, updates)
	})
	if err != nil {
		slog.Error("history failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func writeHistory(w io.Writer, updates []domain.ActivityUpdate) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tNUMBER\tAMOUNT\tCURRENCY\tSTATUS")
	for _, u := range updates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.Date.Format(time.DateOnly), u.Type, u.Number, u.Amount.StringFixed(2), u.Currency, u.Status)
	}
	return tw.Flush()
}
