// Package replay is a terminal viewer that steps through a validated move
// sequence one state at a time.
package replay

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexcodex/hanoibench/hanoi"
)

const (
	defaultWidth    = 80
	defaultLogLines = 8
)

// Model is the Bubble Tea model for the replay viewer. Step 0 is the
// initial state; step k is the state after move record k-1.
type Model struct {
	title    string
	disks    int
	initial  hanoi.Pegs
	analysis hanoi.SolutionAnalysis

	step     int
	playing  bool
	interval time.Duration

	width  int
	height int
	log    viewport.Model
	bar    progress.Model
	help   help.Model
	keys   keyMap
}

// Option customizes a Model.
type Option func(*Model)

// WithTitle sets the header text.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithInterval sets the autoplay delay between steps.
func WithInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

// New builds a viewer for analysis of a puzzle with the given disk count.
func New(disks int, analysis hanoi.SolutionAnalysis, opts ...Option) Model {
	m := Model{
		title:    "hanoibench replay",
		disks:    disks,
		initial:  hanoi.InitialState(disks),
		analysis: analysis,
		interval: 600 * time.Millisecond,
		width:    defaultWidth,
		log:      viewport.New(defaultWidth, defaultLogLines),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultWidth-20)),
		help:     help.New(),
		keys:     defaultKeys(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.syncLog()
	return m
}

// Run starts the viewer full screen and blocks until the user quits.
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// Step returns the current step.
func (m Model) Step() int { return m.step }

// Steps returns the number of move records.
func (m Model) Steps() int { return len(m.analysis.MoveDetails) }

// Playing reports whether autoplay is on.
func (m Model) Playing() bool { return m.playing }

// State returns the pegs shown at the current step.
func (m Model) State() hanoi.Pegs {
	if m.step == 0 {
		return m.initial
	}
	return m.analysis.MoveDetails[m.step-1].StateAfter
}

// Current returns the record that produced the current step.
func (m Model) Current() (hanoi.MoveRecord, bool) {
	if m.step == 0 {
		return hanoi.MoveRecord{}, false
	}
	return m.analysis.MoveDetails[m.step-1], true
}
