package experiment

import (
	"fmt"
	"io"
	"os"

	"github.com/gosuri/uilive"
	"github.com/mattn/go-isatty"
)

// Progress prints live statistics of a run. On a terminal the
// statistics of the latest episode overwrite the previous line,
// otherwise nothing is printed.
type Progress struct {
	writer *uilive.Writer
	live   bool
}

// NewProgress returns a new Progress which prints to out. Output is
// only enabled when out is a terminal.
func NewProgress(out *os.File) *Progress {
	live := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return newProgress(out, live)
}

func newProgress(out io.Writer, live bool) *Progress {
	w := uilive.New()
	w.Out = out
	return &Progress{writer: w, live: live}
}

// Update prints the statistics of the latest episode
func (p *Progress) Update(episode int, ret, score, mean float64) {
	if !p.live {
		return
	}
	fmt.Fprintf(p.writer, "Episode %d | return %.2f | score %.2f | "+
		"mean %.2f\n", episode, ret, score, mean)
	p.writer.Flush()
}

// Stop flushes any pending output. The writer is never started, so
// it must not be stopped.
func (p *Progress) Stop() {
	if p.live {
		p.writer.Flush()
	}
}
