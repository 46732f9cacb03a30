package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const (
	markerWidth      = 3
	sizeWidth        = 10
	targetWidth      = 16
	categoryWidth    = 9
	statusWidth      = 9
	defaultPathWidth = 60
)

type styles struct {
	base      lipgloss.Style
	header    lipgloss.Style
	title     lipgloss.Style
	subtitle  lipgloss.Style
	status    lipgloss.Style
	muted     lipgloss.Style
	danger    lipgloss.Style
	warning   lipgloss.Style
	confirm   lipgloss.Style
	chip      lipgloss.Style
	filter    lipgloss.Style
	container lipgloss.Style
}

var ui = styles{
	base: lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")),
	container: lipgloss.NewStyle().Padding(0, 1),
	header:    lipgloss.NewStyle().Padding(0, 1),
	title:     lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	status:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	danger:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	confirm:   lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("203")).Bold(true).Padding(0, 1),
	chip:      lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62")).Padding(0, 1),
	filter:    lipgloss.NewStyle().Foreground(lipgloss.Color("229")),
}

func tableColumns(pathWidth int) []table.Column {
	return []table.Column{
		{Title: "", Width: markerWidth},
		{Title: "Path", Width: pathWidth},
		{Title: "Size", Width: sizeWidth},
		{Title: "Target", Width: targetWidth},
		{Title: "Category", Width: categoryWidth},
		{Title: "Status", Width: statusWidth},
	}
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading…"
	}

	content := ui.base.Render(m.table.View())
	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		content,
		m.statusView(),
		m.footerView(),
	)
	return ui.container.Render(view)
}

func (m *model) updateLayout(width, height int) {
	if width == 0 || height == 0 {
		return
	}
	width = max(width, 60)
	height = max(height, 12)
	if m.width == width && m.height == height {
		return
	}
	m.width = width
	m.height = height

	m.pathWidth = max(width-markerWidth-sizeWidth-targetWidth-categoryWidth-statusWidth-16, 20)
	m.table.SetColumns(tableColumns(m.pathWidth))

	headerHeight := lipgloss.Height(m.headerView())
	statusHeight := lipgloss.Height(m.statusView())
	footerHeight := lipgloss.Height(m.footerView())
	available := max(height-headerHeight-statusHeight-footerHeight-5, 5)
	m.table.SetHeight(available)
	m.table.SetWidth(width - 4)
	progressWidth := max(width-28, 20)
	m.scanProgress.Width = progressWidth
	m.deleteProgress.Width = progressWidth
}

func (m model) headerView() string {
	title := ui.title.Render("modsweep")
	subtitle := ui.subtitle.Render("Sweep package caches and build output")
	root := ui.muted.Render(fmt.Sprintf("Root: %s", m.root))
	line := lipgloss.JoinHorizontal(lipgloss.Left, title, " ", ui.chip.Render(fmt.Sprintf("targets: %d", m.targets)))
	return ui.header.Render(lipgloss.JoinVertical(lipgloss.Left, line, lipgloss.JoinHorizontal(lipgloss.Left, subtitle, " · ", root)))
}

func (m model) statusView() string {
	s := m.session
	lines := []string{}

	if !s.ScanDone {
		elapsed := time.Duration(0)
		if !s.LastTick.IsZero() {
			elapsed = time.Duration(s.Ticks) * m.tick
		}
		line := fmt.Sprintf("%s Scanning… visited %s · found %d · %s",
			m.spinner.View(), humanize.Comma(int64(s.Visited)), s.Sel.Len(), elapsed.Truncate(100*time.Millisecond))
		lines = append(lines, ui.status.Render(line), ui.muted.Render(m.scanProgress.ViewAs(m.scanPulse)))
	}

	selected := s.Selected()
	parts := []string{
		fmt.Sprintf("Items: %d", s.Sel.Len()),
		fmt.Sprintf("Selected: %d (%s)", selected.Count, formatBytes(selected.Bytes)),
		fmt.Sprintf("Deleting: %d (%s)", s.Ledger.Current.Count, formatBytes(s.Ledger.Current.Bytes)),
		fmt.Sprintf("Freed: %d (%s)", s.Ledger.History.Count, formatBytes(s.Ledger.History.Bytes)),
	}
	if s.Ledger.Failed.Count > 0 {
		parts = append(parts, ui.danger.Render(fmt.Sprintf("Failed: %d", s.Ledger.Failed.Count)))
	}
	parts = append(parts,
		fmt.Sprintf("Sort: %s", s.Sel.Sort()),
		fmt.Sprintf("Group: %s", s.Sel.Group()),
		fmt.Sprintf("Confirm: %s", boolLabel(m.confirmDeletes)),
	)
	if s.ScanDone && s.ScanTime > 0 {
		parts = append(parts, fmt.Sprintf("Scan: %s", s.ScanTime.Truncate(10*time.Millisecond)))
	}
	if len(s.Warnings) > 0 {
		parts = append(parts, ui.warning.Render(fmt.Sprintf("Warnings: %d", len(s.Warnings))))
	}
	status := strings.Join(parts, " · ")
	if s.ScanErr != nil {
		status = ui.danger.Render(fmt.Sprintf("Error: %v", s.ScanErr))
	}
	lines = append(lines, ui.status.Render(status))

	if s.SearchMode || s.Sel.Filter() != "" {
		cursor := ""
		if s.SearchMode {
			cursor = "▌"
		}
		lines = append(lines, ui.filter.Render(fmt.Sprintf("/%s%s", s.Sel.Filter(), cursor)))
	}

	if s.Ledger.Outstanding() > 0 {
		done, total := s.DeleteProgress()
		lines = append(lines, ui.muted.Render(fmt.Sprintf("Deleting %d/%d", done, total)), ui.muted.Render(m.deleteProgress.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m model) footerView() string {
	if m.confirm.active {
		label := fmt.Sprintf("Delete %d item(s), %s? (y/n)", len(m.confirm.paths), formatBytes(m.confirm.bytes))
		if len(m.confirm.paths) == 1 {
			label = fmt.Sprintf("Delete %s (%s)? (y/n)", displayPath(m.root, m.confirm.paths[0]), formatBytes(m.confirm.bytes))
		}
		return ui.confirm.Render(label)
	}
	if m.lastEvent != "" {
		return lipgloss.JoinVertical(lipgloss.Left, ui.muted.Render(m.lastEvent), m.help.View(m.keys))
	}
	return m.help.View(m.keys)
}

func statusMarker(e Entry, on bool) string {
	switch e.State {
	case LifecyclePending:
		return "[~]"
	case LifecycleFailed:
		return "[!]"
	}
	if on {
		return "[x]"
	}
	return "[ ]"
}

func statusLabel(e Entry) string {
	switch e.State {
	case LifecyclePending:
		return ui.warning.Render(e.State.String())
	case LifecycleFailed:
		return ui.danger.Render(e.State.String())
	default:
		return ui.muted.Render(e.State.String())
	}
}

// truncateLeft keeps the tail of a path, which is the informative end.
func truncateLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	w := 1
	i := len(runes)
	for i > 0 {
		rw := runewidth.RuneWidth(runes[i-1])
		if w+rw > width {
			break
		}
		w += rw
		i--
	}
	return "…" + string(runes[i:])
}

func formatBytes(size uint64) string {
	return humanize.IBytes(size)
}

func displayPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func boolLabel(value bool) string {
	if value {
		return "on"
	}
	return "off"
}
