package describe

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Totals accumulates counters over a run.
type Totals struct {
	Processed        int
	Skipped          int
	Failed           int
	Total            int
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Cost             float64
}

// Add records one successful call.
func (t *Totals) Add(u Usage) {
	t.Processed++
	t.PromptTokens += u.PromptTokens
	t.CompletionTokens += u.CompletionTokens
	t.TotalTokens += u.TotalTokens
	t.Cost += u.Amount()
}

func (t Totals) average(v float64) float64 {
	if t.Processed == 0 {
		return 0
	}
	return v / float64(t.Processed)
}

// AvgPromptTokens is the mean prompt tokens per processed asset.
func (t Totals) AvgPromptTokens() float64 { return t.average(float64(t.PromptTokens)) }

// AvgCompletionTokens is the mean completion tokens per processed asset.
func (t Totals) AvgCompletionTokens() float64 { return t.average(float64(t.CompletionTokens)) }

// AvgTotalTokens is the mean total tokens per processed asset.
func (t Totals) AvgTotalTokens() float64 { return t.average(float64(t.TotalTokens)) }

// AvgCost is the mean cost per processed asset.
func (t Totals) AvgCost() float64 { return t.average(t.Cost) }

// WriteSummary prints the end-of-run report.
func (t Totals) WriteSummary(w io.Writer) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "\nComplete!\n")
	p.Fprintf(w, "  Processed: %d\n", t.Processed)
	p.Fprintf(w, "  Skipped: %d\n", t.Skipped)
	p.Fprintf(w, "  Failed: %d\n", t.Failed)
	p.Fprintf(w, "  Total: %d\n", t.Total)
	p.Fprintf(w, "\nToken Usage:\n")
	p.Fprintf(w, "  Total prompt tokens: %d\n", t.PromptTokens)
	p.Fprintf(w, "  Total completion tokens: %d\n", t.CompletionTokens)
	p.Fprintf(w, "  Total tokens: %d\n", t.TotalTokens)
	fmt.Fprintf(w, "  Average prompt tokens per item: %.1f\n", t.AvgPromptTokens())
	fmt.Fprintf(w, "  Average completion tokens per item: %.1f\n", t.AvgCompletionTokens())
	fmt.Fprintf(w, "  Average total tokens per item: %.1f\n", t.AvgTotalTokens())
	fmt.Fprintf(w, "\nCost Summary:\n")
	fmt.Fprintf(w, "  Total cost: $%.6f\n", t.Cost)
	fmt.Fprintf(w, "  Average cost per item: $%.6f\n", t.AvgCost())
}
