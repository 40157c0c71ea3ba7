// Package report renders the post-run summary to the console.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/kasrat/countryscrape/internal/store"
)

// sampleSize is the number of leading rows echoed after a run.
const sampleSize = 5

// Reporter reads back a sample and an aggregate for display. Read-only.
type Reporter struct {
	store store.Provider
	out   io.Writer
}

// New builds a Reporter writing to out.
func New(st store.Provider, out io.Writer) *Reporter {
	return &Reporter{store: st, out: out}
}

// Print writes up to five sample rows ordered by id, then the total
// population across all stored rows. A total over an empty table or
// all-NULL populations prints as NULL.
func (r *Reporter) Print(ctx context.Context) error {
	rows, err := r.store.Sample(ctx, sampleSize)
	if err != nil {
		return fmt.Errorf("read sample rows: %w", err)
	}

	fmt.Fprintln(r.out, "Scraping and saving completed successfully.")
	fmt.Fprintf(r.out, "--- First %d Records ---\n", sampleSize)
	for _, row := range rows {
		fmt.Fprintf(r.out, "id=%d | Country=%s | Capital=%s | Population=%s | Area(km^2)=%s\n",
			row.ID, row.Name, nullableStr(row.Capital), nullableInt(row.Population), nullableInt(row.Area))
	}

	total, err := r.store.TotalPopulation(ctx)
	if err != nil {
		return fmt.Errorf("sum population: %w", err)
	}
	fmt.Fprintln(r.out, "--------------------")
	fmt.Fprintf(r.out, "Total population across stored rows: %s\n", nullableInt(total))
	return nil
}

func nullableStr(s *string) string {
	if s == nil {
		return "NULL"
	}
	return *s
}

func nullableInt(n *int64) string {
	if n == nil {
		return "NULL"
	}
	return strconv.FormatInt(*n, 10)
}
