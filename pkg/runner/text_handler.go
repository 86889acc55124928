package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/lookahead/pkg/domain"
)

// ContentRenderer transforms a report before it is written.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// TextReporter writes human readable reports.
type TextReporter struct {
	Writer   io.Writer
	Renderer ContentRenderer

	mu sync.Mutex
}

// TextReporterOption defines configuration for TextReporter.
type TextReporterOption func(*TextReporter)

// WithTextRenderer configures the content renderer.
func WithTextRenderer(renderer ContentRenderer) TextReporterOption {
	return func(h *TextReporter) {
		h.Renderer = renderer
	}
}

// NewTextReporter creates a reporter for plain text output.
func NewTextReporter(w io.Writer, opts ...TextReporterOption) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	h := &TextReporter{Writer: w}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextReporter) PlanInstalled(ctx context.Context, agentID string, plan *domain.Plan, reason string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** new plan `%s` (%s, %s)\n\n", Sanitize(agentID), shortID(plan.ID), plan.Policy, reason)
	if plan.Len() == 0 {
		sb.WriteString("_nothing worth doing_\n")
	}
	for i, a := range plan.Actions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, Sanitize(domain.Label(a)))
	}
	fmt.Fprintf(&sb, "\nexpected gain: %.2f\n", plan.Gain)
	return h.write(sb.String())
}

func (h *TextReporter) StepTaken(ctx context.Context, res *StepResult) error {
	line := fmt.Sprintf("%s step %d: %s (%d left)\n", Sanitize(res.AgentID), res.Position, Sanitize(res.Label), res.Remaining)
	return h.write(line)
}

func (h *TextReporter) write(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.Renderer != nil {
		rendered, err := h.Renderer(text)
		if err != nil {
			return err
		}
		text = rendered
	}
	_, err := io.WriteString(h.Writer, text)
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
