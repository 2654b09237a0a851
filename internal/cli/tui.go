package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/config"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/document"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/layouter"
)

var (
	stepKeyStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	stepDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	stepErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// stepCommand creates the interactive step debugger.
func (c *CLI) stepCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "step [document]",
		Short: "Watch the grid placement step by step",
		Long: `Watch the grid placement step by step.

The document is laid out again with a growing step budget and the grid of
each process is shown after the last allowed step. Use it to see in which
order elements are placed and where a layout goes wrong.

Keys: → or + one more step, ← or - one step back, a all steps,
tab next process, q quit.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			format := document.FormatFromPath(args[0])
			// Fail early on an invalid document instead of inside the UI.
			if _, err := document.Decode(raw, format); err != nil {
				return err
			}

			m := newStepModel(cmd.Context(), raw, format, c.Config.Layout, steps)
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return cmd.Context().Err()
			}
			return err
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "initial step budget")

	return cmd
}

// =============================================================================
// StepModel - Step-by-step placement viewer
// =============================================================================

// layoutMsg carries the result of one layout run.
type layoutMsg struct {
	steps  int
	result *layouter.Result
	err    error
}

// stepModel is the bubbletea model of the step debugger. Every change of
// the budget lays out a fresh decode of the document, since layout binds
// lanes in place.
type stepModel struct {
	ctx    context.Context
	raw    []byte
	format document.Format
	cfg    config.Layout

	steps   int // 0 means unlimited
	process int
	result  *layouter.Result
	err     error
	running bool
}

func newStepModel(ctx context.Context, raw []byte, format document.Format, cfg config.Layout, steps int) stepModel {
	return stepModel{
		ctx:    ctx,
		raw:    raw,
		format: format,
		cfg:    cfg,
		steps:  max(steps, 0),
	}
}

func (m stepModel) Init() tea.Cmd {
	return m.run()
}

// run lays out the document with the current budget.
func (m stepModel) run() tea.Cmd {
	ctx, raw, format, cfg, steps := m.ctx, m.raw, m.format, m.cfg, m.steps
	return func() tea.Msg {
		defs, err := document.Decode(raw, format)
		if err != nil {
			return layoutMsg{steps: steps, err: err}
		}
		l := layouter.New(cfg,
			layouter.WithMaxSteps(steps),
			layouter.WithGrids(),
			layouter.WithLogger(log.New(io.Discard)),
		)
		res, err := l.Layout(ctx, defs)
		return layoutMsg{steps: steps, result: res, err: err}
	}
}

func (m stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "+", "l":
			if m.steps == 0 {
				return m, nil
			}
			m.steps++
			m.running = true
			return m, m.run()
		case "left", "-", "h":
			if m.steps == 0 && m.result != nil {
				m.steps = max(m.result.Stats.Steps, 1)
			} else if m.steps > 1 {
				m.steps--
			} else {
				return m, nil
			}
			m.running = true
			return m, m.run()
		case "a":
			m.steps = 0
			m.running = true
			return m, m.run()
		case "tab":
			if n := m.gridCount(); n > 0 {
				m.process = (m.process + 1) % n
			}
		}
	case layoutMsg:
		if msg.steps != m.steps {
			return m, nil
		}
		m.running = false
		m.result, m.err = msg.result, msg.err
		if m.process >= m.gridCount() {
			m.process = 0
		}
	}
	return m, nil
}

func (m stepModel) gridCount() int {
	if m.result == nil {
		return 0
	}
	return len(m.result.Grids)
}

func (m stepModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Placement Steps"))
	b.WriteString("\n")
	b.WriteString(stepDimStyle.Render("→/+ step  ←/- back  a all  tab process  q quit"))
	b.WriteString("\n\n")

	budget := "unlimited"
	if m.steps > 0 {
		budget = fmt.Sprint(m.steps)
	}
	b.WriteString(stepKeyStyle.Render("budget ") + StyleValue.Render(budget))
	if m.result != nil {
		b.WriteString(stepDimStyle.Render(fmt.Sprintf("   used %d steps over %d processes", m.result.Stats.Steps, m.result.Stats.Processes)))
		if m.result.Stats.Truncated {
			b.WriteString("  " + stylePartial.Render("partial"))
		}
	}
	if m.running {
		b.WriteString("  " + stepDimStyle.Render("…"))
	}
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(stepErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if n := m.gridCount(); n > 0 {
		b.WriteString(gridTable(m.result.Grids[m.process]))
		b.WriteString("\n")
		b.WriteString(stepDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.process+1, n)))
		b.WriteString("\n")
	}
	return b.String()
}
