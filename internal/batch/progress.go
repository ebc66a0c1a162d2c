package batch

import (
	"fmt"
	"io"
	"strings"
)

const (
	barLength   = 30
	nameColumns = 25
)

// Progress renders a single-line progress bar, redrawn in place with \r.
type Progress struct {
	w     io.Writer
	total int
	drawn bool
}

// NewProgress returns a bar for total items. A nil writer disables output.
func NewProgress(w io.Writer, total int) *Progress {
	return &Progress{w: w, total: total}
}

// Update redraws the bar after item current (1-based) named name.
func (p *Progress) Update(current int, name string) {
	if p == nil || p.w == nil {
		return
	}
	fmt.Fprint(p.w, renderBar(current, p.total, name))
	p.drawn = true
}

// Done terminates the progress line.
func (p *Progress) Done() {
	if p == nil || p.w == nil || !p.drawn {
		return
	}
	fmt.Fprintln(p.w)
	p.drawn = false
}

func renderBar(current, total int, name string) string {
	if total <= 0 {
		total = 1
	}
	if current > total {
		current = total
	}
	filled := barLength * current / total
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barLength-filled)

	runes := []rune(name)
	if len(runes) > nameColumns {
		runes = runes[:nameColumns]
	}
	display := string(runes) + strings.Repeat(" ", nameColumns-len(runes))
	return fmt.Sprintf("\r[%s] %d/%d %s", bar, current, total, display)
}
