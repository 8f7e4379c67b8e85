// Package progress renders execplan.ProgressEvent values as styled
// terminal lines. It is the "pretty progress rendering" collaborator
// the core specifies only the interface for: a ProgressSink.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/forgebuild/forge/internal/execplan"
)

var (
	styleSucceeded = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleSkipped   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleFailed    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleBlocked   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleCancelled = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleKind      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleMember    = lipgloss.NewStyle().Faint(true)
)

func styleFor(outcome execplan.Outcome) lipgloss.Style {
	switch outcome {
	case execplan.OutcomeSucceeded:
		return styleSucceeded
	case execplan.OutcomeSkipped:
		return styleSkipped
	case execplan.OutcomeFailed:
		return styleFailed
	case execplan.OutcomeCancelled:
		return styleCancelled
	default:
		return styleBlocked
	}
}

func label(outcome execplan.Outcome) string {
	switch outcome {
	case execplan.OutcomeSucceeded:
		return "ok"
	case execplan.OutcomeSkipped:
		return "skip"
	case execplan.OutcomeFailed:
		return "FAIL"
	case execplan.OutcomeBlocked:
		return "blocked"
	case execplan.OutcomeCancelled:
		return "cancelled"
	default:
		return string(outcome)
	}
}

// Renderer prints one styled line per event to w. It is safe to pass as
// an execplan.ProgressSink directly via Renderer.Sink.
type Renderer struct {
	w  io.Writer
	mu sync.Mutex
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Sink adapts the renderer to execplan.ProgressSink.
func (r *Renderer) Sink(e execplan.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag := styleFor(e.Outcome).Render(fmt.Sprintf("[%s]", label(e.Outcome)))
	kind := styleKind.Render(e.Kind)
	member := styleMember.Render(e.Member)

	if e.Duration > 0 {
		fmt.Fprintf(r.w, "%s %s %s (%s)\n", tag, kind, member, e.Duration.Round(time.Millisecond))
	} else {
		fmt.Fprintf(r.w, "%s %s %s\n", tag, kind, member)
	}
}
