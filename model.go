package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

type scanRunner interface {
	Run(ctx context.Context, emit func(Event) error) error
}

type batchDeleter interface {
	Delete(items []Entry) int
}

type modelDeps struct {
	root    string
	targets int
	scanner scanRunner
	deleter batchDeleter
	bus     *eventBus
	tick    time.Duration
	confirm bool
	log     zerolog.Logger
}

type confirmState struct {
	active bool
	paths  []string
	bytes  uint64
}

type busClosedMsg struct {
	err error
}

type model struct {
	session *Session

	root    string
	targets int
	scanner scanRunner
	deleter batchDeleter
	bus     *eventBus
	tick    time.Duration
	log     zerolog.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc

	table          table.Model
	tableStyles    table.Styles
	idleStyles     table.Styles
	spinner        spinner.Model
	help           help.Model
	keys           keyMap
	scanProgress   progress.Model
	deleteProgress progress.Model
	scanPulse      float64
	scanPulseDir   float64

	confirm        confirmState
	confirmDeletes bool
	lastEvent      string
	width          int
	height         int
	pathWidth      int
	fatal          error
}

func NewModel(ctx context.Context, deps modelDeps) model {
	baseCtx, baseCancel := context.WithCancel(ctx)

	t := table.New(
		table.WithColumns(tableColumns(defaultPathWidth)),
		table.WithFocused(true),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("238")).
		BorderBottom(true).
		Bold(true)
	idle := styles
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(true)
	idle.Selected = lipgloss.NewStyle()
	t.SetStyles(idle)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	tick := deps.tick
	if tick <= 0 {
		tick = defaultTickMS * time.Millisecond
	}

	return model{
		session:        NewSession(deps.log),
		root:           deps.root,
		targets:        deps.targets,
		scanner:        deps.scanner,
		deleter:        deps.deleter,
		bus:            deps.bus,
		tick:           tick,
		log:            deps.log,
		baseCtx:        baseCtx,
		baseCancel:     baseCancel,
		table:          t,
		tableStyles:    styles,
		idleStyles:     idle,
		spinner:        sp,
		help:           help.New(),
		keys:           newKeyMap(),
		scanProgress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		deleteProgress: progress.New(progress.WithDefaultGradient()),
		scanPulseDir:   1,
		confirmDeletes: deps.confirm,
		pathWidth:      defaultPathWidth,
	}
}

func (m model) Init() tea.Cmd {
	if m.bus == nil {
		return m.spinner.Tick
	}
	return tea.Batch(
		m.spinner.Tick,
		startScanCmd(m.baseCtx, m.scanner, m.bus, m.log),
		startClockCmd(m.baseCtx, m.tick, m.bus, m.log),
		waitEvent(m.baseCtx, m.bus),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.updateLayout(msg.Width, msg.Height)
	case spinner.TickMsg:
		if !m.session.ScanDone {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	case progress.FrameMsg:
		updated, cmd := m.deleteProgress.Update(msg)
		if next, ok := updated.(progress.Model); ok {
			m.deleteProgress = next
		}
		cmds = append(cmds, cmd)
	case busClosedMsg:
		if !errors.Is(msg.err, context.Canceled) {
			m.fatal = fmt.Errorf("event bus: %w", msg.err)
		}
		m.quit()
		return m, tea.Quit
	case Event:
		cmds = append(cmds, m.applyEvent(msg))
		if m.bus != nil {
			cmds = append(cmds, waitEvent(m.baseCtx, m.bus))
		}
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
		if !m.session.Running {
			return m, tea.Quit
		}
	}

	m.syncTable()
	return m, tea.Batch(cmds...)
}

func (m *model) applyEvent(ev Event) tea.Cmd {
	changed := m.session.Apply(ev)
	switch ev := ev.(type) {
	case ScanFound:
		if changed {
			m.lastEvent = fmt.Sprintf("Found: %s", ev.RelPath)
		}
	case ScanFinished:
		if ev.Err != nil {
			m.lastEvent = fmt.Sprintf("Scan failed: %v", ev.Err)
		} else {
			m.lastEvent = fmt.Sprintf("Scan complete: %d items", m.session.Sel.Len())
		}
	case Deleting:
		return m.deleteProgressCmd()
	case Deleted:
		if changed {
			m.lastEvent = fmt.Sprintf("Deleted %s (%s)", displayPath(m.root, ev.Path), formatBytes(ev.Size))
		}
		return m.deleteProgressCmd()
	case DeleteFailed:
		if changed {
			m.lastEvent = fmt.Sprintf("Failed %s: %s", displayPath(m.root, ev.Path), ev.Reason)
		}
		return m.deleteProgressCmd()
	case Tick:
		if m.session.Scanning {
			m.scanPulse += 0.06 * m.scanPulseDir
			if m.scanPulse >= 1 {
				m.scanPulse = 1
				m.scanPulseDir = -1
			} else if m.scanPulse <= 0 {
				m.scanPulse = 0
				m.scanPulseDir = 1
			}
		}
	}
	return nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirm.active {
		switch msg.String() {
		case "y", "Y":
			paths := m.confirm.paths
			m.confirm = confirmState{}
			return m.dispatch(m.session.CommitPaths(paths))
		case "n", "N", "esc":
			m.confirm = confirmState{}
			m.lastEvent = "Deletion cancelled"
		case "ctrl+c":
			m.quit()
		}
		return nil
	}

	if m.session.SearchMode {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.session.ExitSearch()
		case tea.KeyBackspace:
			m.session.RemoveFilterChar()
		case tea.KeySpace:
			m.session.AppendFilter(' ')
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.session.AppendFilter(r)
			}
		case tea.KeyCtrlC:
			m.quit()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quit()
	case key.Matches(msg, m.keys.Back):
		if m.session.Sel.Filter() != "" {
			m.session.ClearFilter()
			m.lastEvent = "Filter cleared"
		} else {
			m.quit()
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Toggle):
		if !m.session.ToggleCurrent() {
			if e, ok := m.session.Sel.Selected(); ok {
				m.lastEvent = fmt.Sprintf("%s is %s", e.RelPath, e.State)
			}
		}
	case key.Matches(msg, m.keys.OnAndNext):
		m.session.SetOnAndNext()
	case key.Matches(msg, m.keys.OffAndNext):
		m.session.SetOffAndNext()
	case key.Matches(msg, m.keys.Down):
		m.session.Next()
	case key.Matches(msg, m.keys.Up):
		m.session.Previous()
	case key.Matches(msg, m.keys.Group):
		m.lastEvent = fmt.Sprintf("Group selection: %s", m.session.ToggleGroup())
	case key.Matches(msg, m.keys.Search):
		m.session.EnterSearch()
	case key.Matches(msg, m.keys.Sort):
		m.lastEvent = fmt.Sprintf("Sorted by %s", m.session.CycleSort())
	case key.Matches(msg, m.keys.ToggleConfirm):
		m.confirmDeletes = !m.confirmDeletes
		if m.confirmDeletes {
			m.lastEvent = "Confirm prompts enabled"
		} else {
			m.lastEvent = "Confirm prompts disabled"
		}
	case key.Matches(msg, m.keys.Delete):
		return m.requestDelete()
	}
	return nil
}

func (m *model) requestDelete() tea.Cmd {
	items := m.session.ItemsToDelete()
	if len(items) == 0 {
		m.lastEvent = "Nothing selected"
		return nil
	}
	if m.confirmDeletes {
		paths := make([]string, 0, len(items))
		var bytes uint64
		for _, e := range items {
			paths = append(paths, e.Path)
			bytes += e.Size
		}
		m.confirm = confirmState{active: true, paths: paths, bytes: bytes}
		return nil
	}
	return m.dispatch(m.session.CommitDelete())
}

func (m *model) dispatch(items []Entry) tea.Cmd {
	if len(items) == 0 {
		m.lastEvent = "Nothing left to delete"
		return nil
	}
	n := len(items)
	if m.deleter != nil {
		n = m.deleter.Delete(items)
	}
	m.lastEvent = fmt.Sprintf("Deleting %d item(s)…", n)
	return m.deleteProgressCmd()
}

func (m *model) deleteProgressCmd() tea.Cmd {
	done, total := m.session.DeleteProgress()
	if total == 0 {
		return nil
	}
	return m.deleteProgress.SetPercent(float64(done) / float64(total))
}

func (m *model) quit() {
	m.session.Quit()
	if m.baseCancel != nil {
		m.baseCancel()
	}
}

func (m *model) syncTable() {
	visible := m.session.Sel.Visible()
	rows := make([]table.Row, 0, len(visible))
	for _, e := range visible {
		rows = append(rows, table.Row{
			statusMarker(e, m.session.Sel.IsOn(e)),
			truncateLeft(e.RelPath, m.pathWidth),
			formatBytes(e.Size),
			e.Target,
			e.Category,
			statusLabel(e),
		})
	}
	m.table.SetRows(rows)

	if idx := m.session.Sel.CursorIndex(); idx >= 0 {
		m.table.SetStyles(m.tableStyles)
		m.table.SetCursor(idx)
	} else {
		m.table.SetStyles(m.idleStyles)
		m.table.SetCursor(0)
	}
}

func startScanCmd(ctx context.Context, scanner scanRunner, bus *eventBus, log zerolog.Logger) tea.Cmd {
	return func() tea.Msg {
		go func() {
			if err := scanner.Run(ctx, bus.Send); err != nil {
				log.Error().Err(err).Msg("scanner stopped")
			}
		}()
		return nil
	}
}

func startClockCmd(ctx context.Context, interval time.Duration, bus *eventBus, log zerolog.Logger) tea.Cmd {
	return func() tea.Msg {
		go runClock(ctx, interval, bus.Send, log)
		return nil
	}
}

// waitEvent blocks for the next bus event. Update re-arms it after every
// event so exactly one receive is outstanding.
func waitEvent(ctx context.Context, bus *eventBus) tea.Cmd {
	return func() tea.Msg {
		ev, err := bus.Next(ctx)
		if err != nil {
			return busClosedMsg{err: err}
		}
		return ev
	}
}
