package nested

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var progressLabelStyle = lipgloss.NewStyle().Bold(true)

// progressBar renders a single coordinating progress display on stderr.
// Workers share one bar; the mutex serializes their updates.
type progressBar struct {
	mu    sync.Mutex
	model progress.Model
	label string
	total int
	count int
}

// newProgressBar returns nil unless progress was requested and stderr is
// attached to a terminal. All methods are safe on a nil receiver.
func newProgressBar(o options, total int) *progressBar {
	if !o.progress || total == 0 {
		return nil
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	label := o.label
	if label == "" {
		label = "mapping"
	}
	return &progressBar{
		model: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		label: label,
		total: total,
	}
}

func (p *progressBar) increment() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.count++
	frac := float64(p.count) / float64(p.total)
	fmt.Fprintf(os.Stderr, "\r%s %s %d/%d",
		progressLabelStyle.Render(p.label), p.model.ViewAs(frac), p.count, p.total)
}

func (p *progressBar) close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.count > 0 {
		fmt.Fprintln(os.Stderr)
	}
}
