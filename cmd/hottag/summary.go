package main

import (
	"fmt"
	"io"
	"time"

	"github.com/IshaanNene/HotTag/internal/engine"
)

// printSummary writes the operator summary for a finished run.
func printSummary(w io.Writer, r *engine.Report) {
	t := r.Totals
	elapsed := r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond)

	header := "Import complete"
	if r.Stopped {
		header = "Import stopped"
	}
	if r.DryRun {
		header += " (dry run)"
	}

	fmt.Fprintf(w, "\n%s in %s\n", header, elapsed)
	fmt.Fprintf(w, "   Championships: %d created, %d updated, %d unchanged, %d skipped\n",
		t.Created, t.Updated, t.Unchanged, t.Skipped)
	fmt.Fprintf(w, "   Promotions:    %d processed, %d ok, %d no titles, %d fetch failed, %d denied, %d failed\n",
		t.Promotions, t.PromotionsOK, t.PromotionsNoTitles, t.PromotionsFetchErr, t.PromotionsDenied, t.PromotionsFailed)

	for _, p := range r.Promotions {
		if p.Error == "" {
			continue
		}
		fmt.Fprintf(w, "   ! %s: %s (%s)\n", p.Slug, p.Status, p.Error)
	}
}
