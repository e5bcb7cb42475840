package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-vinyl/vinyl"
)

const meterWidth = 20

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#C8A165"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(12)

	onStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AA00"))
	offStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A40000"))
	dropStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500"))

	meterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AAAA"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func renderPlayer(m Model) string {
	s := m.Status
	var b strings.Builder

	b.WriteString(titleStyle.Render("algo-vinyl"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Playing " + formatPosition(s.Position)))
	b.WriteString("\n\n")

	state := offStyle.Render("off")
	if s.Enabled {
		state = onStyle.Render("on")
	}
	if s.NeedleDrop {
		state += " " + dropStyle.Render("needle drop")
	}
	writeRow(&b, "Vinyl", state)
	writeRow(&b, "Format", recordLabel(s.Format))
	writeRow(&b, "Intensity", meter(s.Intensity)+fmt.Sprintf(" %.1f", s.Intensity))
	writeRow(&b, "Volume", meter(s.Volume)+fmt.Sprintf(" %.1f", s.Volume))
	writeRow(&b, "Output", meter(s.Peak))
	writeRow(&b, "Wobble", fmt.Sprintf("%.2f ms", s.DelayMs))
	writeRow(&b, "Artifacts", fmt.Sprintf("%d light, %d deep, %d scratch",
		s.Stats.Fires[vinyl.LightPop], s.Stats.Fires[vinyl.DeepPop], s.Stats.Fires[vinyl.Scratch]))

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space vinyl • f format • ↑/↓ intensity • ←/→ volume • q quit"))
	b.WriteString("\n")
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}

func recordLabel(f vinyl.Format) string {
	if !f.Valid() {
		return f.String()
	}
	return f.String() + " rpm"
}

// meter draws a bar for a value in [0,1].
func meter(v float64) string {
	v = min(max(v, 0), 1)
	filled := int(v*meterWidth + 0.5)
	return meterStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", meterWidth-filled)
}

func formatPosition(d time.Duration) string {
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
