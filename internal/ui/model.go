// Package ui provides the Bubbletea terminal interface for live vinyl playback.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-vinyl/internal/session"
)

const (
	refreshInterval = 100 * time.Millisecond
	knobStep        = 0.1
)

// Player is the live session surface the interface drives.
type Player interface {
	ToggleEnabled()
	ToggleFormat()
	SetIntensity(x float64)
	SetVolume(x float64)
	Status() session.Status
}

// TickMsg requests a status refresh.
type TickMsg time.Time

// Model is the Bubbletea model for live playback.
type Model struct {
	player Player
	Status session.Status

	// Terminal dimensions
	Width  int
	Height int

	Quitting bool
}

// NewModel creates a model that controls player.
func NewModel(player Player) Model {
	return Model{player: player, Status: player.Status()}
}

// Init starts the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update handles key presses and refresh ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		case " ", "v":
			m.player.ToggleEnabled()
		case "f":
			m.player.ToggleFormat()
		case "up", "k":
			m.player.SetIntensity(m.Status.Intensity + knobStep)
		case "down", "j":
			m.player.SetIntensity(m.Status.Intensity - knobStep)
		case "right", "l":
			m.player.SetVolume(m.Status.Volume + knobStep)
		case "left", "h":
			m.player.SetVolume(m.Status.Volume - knobStep)
		default:
			return m, nil
		}
		m.Status = m.player.Status()

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case TickMsg:
		m.Status = m.player.Status()
		return m, tick()
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	return renderPlayer(m)
}
