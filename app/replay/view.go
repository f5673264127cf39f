package replay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/hanoibench/hanoi"
)

// View composes the header, towers, current move, log, progress and help.
func (m Model) View() string {
	header := headerStyle.Render(fmt.Sprintf("%s  %d disks", m.title, m.disks))
	towers := towerBoxStyle.Render(diskStyle.Render(RenderPegs(m.State(), m.disks)))

	sections := []string{header, towers, m.renderCurrent(), m.log.View(), m.renderProgress(), m.help.View(m.keys)}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderCurrent() string {
	record, ok := m.Current()
	if !ok {
		return dimStyle.Render("initial state")
	}
	line := fmt.Sprintf("move %d %s: %s", record.Index, record.Text, record.Message)
	if record.Status == hanoi.StatusValid {
		return validStyle.Render(line)
	}
	return invalidStyle.Render(line)
}

func (m Model) renderProgress() string {
	total := m.Steps()
	pct := 1.0
	if total > 0 {
		pct = float64(m.step) / float64(total)
	}
	label := fmt.Sprintf(" %d/%d", m.step, total)
	if m.playing {
		label += " ▶"
	}
	outcome := "goal not reached"
	if m.analysis.GoalAchieved {
		outcome = "goal reached"
	}
	return m.bar.ViewAs(pct) + label + "  " + statusStyle.Render(outcome)
}

// syncLog rewrites the move log and keeps the current move in view.
func (m *Model) syncLog() {
	lines := make([]string, 0, len(m.analysis.MoveDetails))
	for i, record := range m.analysis.MoveDetails {
		marker := "  "
		if i == m.step-1 {
			marker = "> "
		}
		line := fmt.Sprintf("%s%3d  %-12s %-13s %s", marker, record.Index, record.Text, record.Status, record.Message)
		switch {
		case i == m.step-1:
			line = currentStyle.Render(line)
		case record.Status != hanoi.StatusValid:
			line = invalidStyle.Render(line)
		case i >= m.step:
			line = dimStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("no moves"))
	}
	m.log.SetContent(strings.Join(lines, "\n"))

	target := max(0, m.step-1)
	if target < m.log.YOffset || target >= m.log.YOffset+m.log.Height {
		m.log.SetYOffset(max(0, target-m.log.Height/2))
	}
}

// RenderPegs draws the three pegs as ASCII towers, largest disk at the
// bottom, with peg indices underneath.
func RenderPegs(p hanoi.Pegs, disks int) string {
	height := max(disks, p.DiskCount())
	colWidth := 2*height + 3
	rows := make([]string, 0, height+2)
	for level := height - 1; level >= 0; level-- {
		var row strings.Builder
		for peg := 0; peg < hanoi.PegCount; peg++ {
			cell := "|"
			if level < len(p[peg]) {
				cell = strings.Repeat("=", 2*p[peg][level]-1)
			}
			row.WriteString(center(cell, colWidth))
		}
		rows = append(rows, strings.TrimRight(row.String(), " "))
	}
	rows = append(rows, strings.Repeat("-", colWidth*hanoi.PegCount))
	var labels strings.Builder
	for peg := 0; peg < hanoi.PegCount; peg++ {
		labels.WriteString(center(fmt.Sprint(peg), colWidth))
	}
	rows = append(rows, strings.TrimRight(labels.String(), " "))
	return strings.Join(rows, "\n")
}

func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
