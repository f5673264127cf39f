package replay

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg struct{}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Init fulfills the Bubble Tea Model interface.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update applies incoming Bubble Tea messages to the viewer state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil
	case tickMsg:
		if !m.playing {
			return m, nil
		}
		if m.step >= m.Steps() {
			m.playing = false
			return m, nil
		}
		m = m.goTo(m.step + 1)
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Prev):
		m.playing = false
		m = m.goTo(m.step - 1)
	case key.Matches(msg, m.keys.Next):
		m.playing = false
		m = m.goTo(m.step + 1)
	case key.Matches(msg, m.keys.First):
		m.playing = false
		m = m.goTo(0)
	case key.Matches(msg, m.keys.Last):
		m.playing = false
		m = m.goTo(m.Steps())
	case key.Matches(msg, m.keys.Play):
		if m.playing {
			m.playing = false
			return m, nil
		}
		if m.step >= m.Steps() {
			m = m.goTo(0)
		}
		m.playing = true
		return m, m.tick()
	}
	return m, nil
}

// goTo clamps step into range and refreshes the move log.
func (m Model) goTo(step int) Model {
	m.step = max(0, min(step, m.Steps()))
	m.syncLog()
	return m
}

// handleResize fits the move log and progress bar to the terminal.
func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	towerHeight := m.disks + 5
	fixed := towerHeight + 6
	m.log.Width = msg.Width
	m.log.Height = max(3, msg.Height-fixed)
	m.bar.Width = max(10, msg.Width-20)
	m.help.Width = msg.Width
	m.syncLog()
	return m
}
