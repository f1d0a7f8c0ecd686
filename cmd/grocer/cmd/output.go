package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(report *domain.RunReport) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("TARGETS\tIN CART\tADDED\tFAILED\tDURATION\n")
	tw.writef("%d\t%d\t%d\t%d\t%s\n",
		report.TargetCount,
		report.AlreadyPresent,
		report.Added,
		report.Failed,
		report.Finished.Sub(report.Started).Round(time.Millisecond),
	)
	if err := tw.finish(); err != nil {
		return err
	}

	for _, item := range report.AddedItems {
		fmt.Println("added:", item)
	}
	for _, item := range report.SkippedItems {
		fmt.Println("already in cart:", item)
	}
	for _, item := range report.FailedItems {
		fmt.Println("FAILED:", item)
	}
	for _, item := range report.UnexpectedItems {
		fmt.Println("unexpected in cart:", item)
	}
	return nil
}

func printProductTable(products []*domain.ProductRecord) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("KEY\tNAME\tPRODUCT ID\tALIASES\n")
	for _, p := range products {
		tw.writef("%s\t%s\t%s\t%d\n",
			p.CanonicalKey,
			truncate(p.DisplayName, 40),
			p.ExternalID,
			len(p.Aliases),
		)
	}
	return tw.finish()
}

func printUnavailableTable(records []domain.UnavailabilityRecord) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("WHEN\tITEM\tREASON\n")
	for i := range records {
		tw.writef("%s\t%s\t%s\n",
			records[i].Timestamp.Format("2006-01-02 15:04"),
			records[i].Item,
			records[i].Reason,
		)
	}
	return tw.finish()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
