// Package tui is the full-screen interactive calculator: an input line, a
// scrollable history of evaluations and a live status panel.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/magcalc/internal/alloc"
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/sysmon"
)

// Layout constants.
const (
	headerHeight         = 1
	footerHeight         = 1
	inputHeight          = 3
	minBodyHeight        = 6
	HistoryPanelWidthPct = 65
	maxInputRunes        = 1 << 16
	inputRecallCapacity  = 100
)

// LayoutManager holds the terminal dimensions and derives panel sizes.
type LayoutManager struct {
	width  int
	height int
}

func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight-inputHeight, minBodyHeight)
}

func (l LayoutManager) historyWidth() int { return l.width * HistoryPanelWidthPct / 100 }
func (l LayoutManager) statusWidth() int  { return l.width - l.historyWidth() }

// Options configures a session.
type Options struct {
	// Engine evaluates submitted lines.
	Engine *orchestration.Engine
	// Stats samples the allocator shared with Engine; nil hides it.
	Stats func() alloc.Stats
	// Timeout bounds each evaluation; zero means no bound.
	Timeout time.Duration
	// Hex starts the session with hexadecimal output.
	Hex     bool
	Version string
}

// Model is the root bubbletea model.
type Model struct {
	header  HeaderModel
	history HistoryModel
	status  StatusModel
	input   textinput.Model
	keymap  KeyMap

	LayoutManager

	ctx     context.Context
	opts    Options
	hex     bool
	seq     int
	pending int

	// recall holds submitted lines, oldest first; recallIdx == len(recall)
	// means the input line is not showing a recalled entry.
	recall    []string
	recallIdx int
}

// NewModel creates a session bound to ctx.
func NewModel(ctx context.Context, opts Options) Model {
	in := textinput.New()
	in.Prompt = "mag> "
	in.Placeholder = "mul 0xffffffff 12345"
	in.CharLimit = maxInputRunes
	in.PromptStyle = promptStyle
	in.Focus()

	m := Model{
		header:  NewHeaderModel(opts.Version, opts.Engine.Calculator().KaratsubaThreshold(), opts.Engine.Verifies()),
		history: NewHistoryModel(),
		status:  NewStatusModel(),
		input:   in,
		keymap:  DefaultKeyMap(),
		ctx:     ctx,
		opts:    opts,
	}
	m.setHex(opts.Hex)
	return m
}

// Init starts the sampling loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd(), sampleAllocStatsCmd(m.opts.Stats))
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layoutPanels()
		return m, nil

	case EvalResultMsg:
		m.pending = max(m.pending-1, 0)
		m.history.Add(msg.Input, msg.Result, nil)
		if msg.Result.Err == nil {
			m.status.ObserveLatency(msg.Result.Duration)
		}
		return m, sampleAllocStatsCmd(m.opts.Stats)

	case TickMsg:
		return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(m.ctx), sampleAllocStatsCmd(m.opts.Stats), tickCmd())

	case MemStatsMsg:
		m.status.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.status.UpdateSystem(sysmon.Stats(msg))
		return m, nil

	case AllocStatsMsg:
		m.status.UpdateAllocator(alloc.Stats(msg))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Submit):
		return m.submit()

	case key.Matches(msg, m.keymap.Previous):
		m.recallStep(-1)
		return m, nil

	case key.Matches(msg, m.keymap.Next):
		m.recallStep(1)
		return m, nil

	case key.Matches(msg, m.keymap.PageUp):
		m.history.Scroll(m.bodyHeight() / 2)
		return m, nil

	case key.Matches(msg, m.keymap.PageDown):
		m.history.Scroll(-m.bodyHeight() / 2)
		return m, nil

	case key.Matches(msg, m.keymap.ToggleHex):
		m.setHex(!m.hex)
		return m, nil

	case key.Matches(msg, m.keymap.Clear):
		m.history.Clear()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit evaluates the input line. The built-in words "hex" and "clear"
// act like their key bindings.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == "" {
		return m, nil
	}
	m.remember(line)

	switch strings.ToLower(line) {
	case "hex":
		m.setHex(!m.hex)
		return m, nil
	case "clear":
		m.history.Clear()
		return m, nil
	case "exit", "quit":
		return m, tea.Quit
	}

	m.seq++
	job, err := parseLine(line, m.seq)
	if err != nil {
		m.history.Add(line, orchestration.JobResult{}, err)
		return m, nil
	}
	m.pending++
	return m, evalCmd(m.ctx, m.opts.Engine, line, job, m.opts.Timeout)
}

func (m *Model) remember(line string) {
	if n := len(m.recall); n == 0 || m.recall[n-1] != line {
		m.recall = append(m.recall, line)
		if len(m.recall) > inputRecallCapacity {
			m.recall = m.recall[1:]
		}
	}
	m.recallIdx = len(m.recall)
}

func (m *Model) recallStep(delta int) {
	if len(m.recall) == 0 {
		return
	}
	m.recallIdx = min(max(m.recallIdx+delta, 0), len(m.recall))
	if m.recallIdx == len(m.recall) {
		m.input.Reset()
		return
	}
	m.input.SetValue(m.recall[m.recallIdx])
	m.input.CursorEnd()
}

func (m *Model) setHex(hex bool) {
	m.hex = hex
	m.header.SetHex(hex)
	m.history.SetHex(hex)
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.history.SetSize(m.historyWidth(), m.bodyHeight())
	m.status.SetSize(m.statusWidth(), m.bodyHeight())
	m.input.Width = max(m.width-4-lipgloss.Width(m.input.Prompt), 1)
}

// View renders the screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.history.View(), m.status.View())
	input := panelStyle.Width(max(m.width-2, 0)).Render(m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, input, m.footerView())
}

func (m Model) footerView() string {
	var parts []string
	for _, b := range m.keymap.ShortHelp() {
		h := b.Help()
		parts = append(parts, footerKeyStyle.Render(h.Key)+" "+footerDescStyle.Render(h.Desc))
	}
	line := " " + strings.Join(parts, "  ")
	if m.pending > 0 {
		line += "  " + accentStyle.Render("evaluating…")
	}
	return line
}

// Run starts a full-screen session and blocks until the user quits or ctx
// is canceled. It returns the process exit code.
func Run(ctx context.Context, opts Options) int {
	// Styles depend on the theme chosen by the caller.
	initTUIStyles()

	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return apperrors.ExitErrorCanceled
		}
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
