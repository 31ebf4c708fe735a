package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-drumseq/sequencer"
	"go-drumseq/theme"
)

// Player is the transport control the view drives, usually a *host.Clock.
type Player interface {
	Updates() <-chan struct{}
	TogglePause() bool
	Paused() bool
}

type Model struct {
	Engine   *sequencer.Engine
	Player   Player // may be nil for a static view
	Theme    *theme.Theme
	status   string
	quitting bool
}

type UpdateMsg struct{}

func NewModel(e *sequencer.Engine, p Player, th *theme.Theme) Model {
	if th == nil {
		th = theme.New(nil)
	}
	return Model{
		Engine: e,
		Player: p,
		Theme:  th,
	}
}

func ListenForUpdates(p Player) tea.Cmd {
	return func() tea.Msg {
		<-p.Updates()
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	if m.Player == nil {
		return nil
	}
	return ListenForUpdates(m.Player)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case " ", "space":
			if m.Player == nil {
				m.status = "no clock"
				break
			}
			if m.Player.TogglePause() {
				m.status = "paused"
			} else {
				m.status = ""
			}

		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			idx := int(key[0] - '1')
			on, err := m.Engine.Toggle(idx)
			if err != nil {
				m.status = err.Error()
				break
			}
			state := "off"
			if on {
				state = "on"
			}
			m.status = fmt.Sprintf("track %d %s", idx+1, state)
		}

	case UpdateMsg:
		if m.Player != nil {
			return m, ListenForUpdates(m.Player)
		}
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	tr := m.Engine.Transport()
	bar, pos := m.Engine.Position()

	// Header
	playState := "PLAY"
	if m.Player == nil || m.Player.Paused() {
		playState = "HOLD"
	}
	beatLen := max(1, tr.SamplesPerBar()/tr.Signature.Beats)
	header := m.Theme.Title().Render(fmt.Sprintf("go-drumseq  %s  %.1fbpm  %s  bar:%d beat:%d",
		playState, tr.BPM, tr.Signature, bar+1, pos/beatLen+1))
	if d := m.Engine.Dropped(); d > 0 {
		header += "  " + lipgloss.NewStyle().Foreground(m.Theme.Warning()).Render(fmt.Sprintf("dropped:%d", d))
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	for i, t := range m.Engine.Tracks() {
		out.WriteString(m.trackRow(i, t, pos, tr.SamplesPerBar()))
		out.WriteString("\n")
	}
	out.WriteString("\n")

	help := "1-9:toggle track  space:pause  q:quit"
	if m.status != "" {
		help = m.status + "  " + help
	}
	out.WriteString(m.Theme.Help().Render(help))

	return out.String()
}

// trackRow renders "1 ■ kick     ch10 n36  ●·○·|..." with the playhead on
// the step under pos.
func (m Model) trackRow(idx int, t sequencer.Track, pos, barLen int) string {
	p := t.Pattern
	n := p.Len()
	playhead := sequencer.StepAt(pos, n, barLen)

	enabled := m.Theme.Symbols.Disabled
	if t.Enabled {
		enabled = m.Theme.Symbols.Enabled
	}
	note := t.Note
	if note == 0 {
		note = p.Note()
	}

	var grid strings.Builder
	for s := 0; s < n; s++ {
		if s > 0 && s%4 == 0 && n > 4 {
			grid.WriteString(m.Theme.Help().Render("|"))
		}
		vel := p.Velocity(s)
		sym := m.Theme.StepSymbol(vel, s == playhead)
		grid.WriteString(m.Theme.Step(vel, s == playhead, t.Enabled).Render(string(sym)))
	}

	label := fmt.Sprintf("%d %c %-10s ch%-2d n%-3d ", idx+1, enabled, t.Name, t.Channel, note)
	return lipgloss.NewStyle().Foreground(m.Theme.FG()).Render(label) + grid.String()
}
