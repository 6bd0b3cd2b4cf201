package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	slerrors "github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/model"
	"github.com/matzehuels/springlayout/pkg/observability"
	"github.com/matzehuels/springlayout/pkg/pathmgr"
	"github.com/matzehuels/springlayout/pkg/pipeline"
)

// watchOpts holds the command-line flags for the watch command.
type watchOpts struct {
	config   configFlags
	throttle time.Duration // minimum duration of one step
	refresh  time.Duration // monitor redraw interval
}

// watchCommand creates the live terminal monitor.
func (c *CLI) watchCommand() *cobra.Command {
	opts := watchOpts{throttle: 10 * time.Millisecond, refresh: 100 * time.Millisecond}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run a layout live in a terminal monitor",
		Long: `Watch runs the simulation until you quit and shows its progress.

Keys:
  space  pause or resume
  r      reset vertex positions
  s c x  store, change or remove a path (Manual manager)
  a      start or stop the search (Auto manager)
  q      quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), opts)
		},
	}

	opts.config.bind(cmd, false)
	cmd.Flags().DurationVar(&opts.throttle, "throttle", opts.throttle, "minimum duration of one step")
	cmd.Flags().DurationVar(&opts.refresh, "refresh", opts.refresh, "monitor redraw interval")

	return cmd
}

// runWatch steps the model and runs the monitor side by side. Quitting the
// monitor stops the simulation; a failing simulation closes the monitor.
func (c *CLI) runWatch(ctx context.Context, opts watchOpts) error {
	popts := opts.config.options()
	popts.Logger = quietLogger()

	events := &eventHooks{}
	m, err := pipeline.Build(popts, events)
	if err != nil {
		return err
	}
	m.SetRunning(true)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := m.Run(gctx, model.RunOptions{Throttle: opts.throttle, Paused: true})
		return err
	})
	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(newMonitor(m, events, opts.refresh), tea.WithContext(gctx), tea.WithAltScreen())
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	})
	return g.Wait()
}

// =============================================================================
// Event Hooks
// =============================================================================

// eventHooks remembers the last notable simulation event for display. The
// model calls it with its lock held, so it only records.
type eventHooks struct {
	observability.NoopSimulationHooks
	mu   sync.Mutex
	last string
}

func (h *eventHooks) set(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = fmt.Sprintf(format, args...)
}

// Last returns the last recorded event.
func (h *eventHooks) Last() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

func (h *eventHooks) OnFinished(_ context.Context, _, embedder string, iteration int) {
	h.set("%s finished at step %d", embedder, iteration)
}

func (h *eventHooks) OnRollback(_ context.Context, _ string, quality float64, depth int) {
	h.set("rolled back to quality %.0f (depth %d)", quality, depth)
}

func (h *eventHooks) OnError(_ context.Context, _ string, err error) {
	h.set("error: %s", slerrors.UserMessage(err))
}

// =============================================================================
// Monitor
// =============================================================================

// manualKeys maps monitor keys to commands of the Manual path manager.
var manualKeys = map[string]string{
	"s": pathmgr.CmdStore,
	"c": pathmgr.CmdChange,
	"x": pathmgr.CmdRemove,
}

type tickMsg time.Time

// monitor is the bubbletea model of the watch command.
type monitor struct {
	model   *model.Model
	events  *eventHooks
	every   time.Duration
	snap    model.Snapshot
	message string
}

func newMonitor(m *model.Model, events *eventHooks, every time.Duration) monitor {
	return monitor{model: m, events: events, every: every, snap: m.Snapshot()}
}

func (w monitor) tick() tea.Cmd {
	return tea.Tick(w.every, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w monitor) Init() tea.Cmd {
	return w.tick()
}

func (w monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		w.snap = w.model.Snapshot()
		return w, w.tick()
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c", "esc":
			return w, tea.Quit
		case " ":
			on := !w.model.Running()
			w.model.SetRunning(on)
			w.message = "paused"
			if on {
				w.message = "resumed"
			}
		case "r":
			w.message = outcome(w.model.ResetVertices(), "vertices reset")
		case "s", "c", "x":
			w.message = outcome(w.model.Command(manualKeys[key]), manualKeys[key])
		case "a":
			on := !autoRunning(w.model)
			switch {
			case !w.model.SetAutoRunning(on):
				w.message = "the search needs the " + pathmgr.AutoName + " path manager"
			case on:
				w.message = "search started"
			default:
				w.message = "search stopped"
			}
		default:
			return w, nil
		}
		w.snap = w.model.Snapshot()
	}
	return w, nil
}

// outcome renders the result of a monitor action.
func outcome(err error, done string) string {
	if err != nil {
		return "error: " + slerrors.UserMessage(err)
	}
	return done
}

// autoRunning reports whether the active Auto manager is searching.
func autoRunning(m *model.Model) bool {
	if m.Current(model.KindPathManager) != pathmgr.AutoName {
		return false
	}
	for _, v := range m.Values(model.KindPathManager) {
		if v.Name == "Run" {
			return v.Value == "true"
		}
	}
	return false
}

func (w monitor) View() string {
	var b strings.Builder
	s := w.snap

	b.WriteString(StyleTitle.Render(appName))
	b.WriteString(StyleDim.Render("  " + s.RunID))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("space pause  r reset  s/c/x store/change/remove  a auto  q quit"))
	b.WriteString("\n\n")

	state := "paused"
	switch {
	case s.Finished:
		state = "finished"
	case s.Running:
		state = "running"
	}

	rows := [][]string{
		{"Graph", s.Generator},
		{"Embedder", s.Embedder},
		{"REModel", s.Rigid},
		{"PathManager", s.Manager},
		{"Iteration", fmt.Sprintf("%d", s.Iteration)},
		{"State", state},
		{"Vertices", fmt.Sprintf("%d", len(s.Vertices))},
		{"Edges", fmt.Sprintf("%d", len(s.Edges))},
		{"Paths", fmt.Sprintf("%d", len(s.Paths))},
	}
	if s.Temperature > 0 {
		rows = append(rows, []string{"Temperature", fmt.Sprintf("%.4g", s.Temperature)})
	}
	if a := s.Auto; a != nil {
		rows = append(rows,
			[]string{"Quality", fmt.Sprintf("%d", a.Quality)},
			[]string{"Stack", fmt.Sprintf("%d", a.StackDepth)},
			[]string{"Search", a.Status},
		)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return StyleHeader.PaddingRight(2)
			}
			return StyleValue
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if w.message != "" {
		b.WriteString(StyleHighlight.Render(w.message))
		b.WriteString("\n")
	}
	if last := w.events.Last(); last != "" {
		b.WriteString(StyleDim.Render(last))
		b.WriteString("\n")
	}
	return b.String()
}
