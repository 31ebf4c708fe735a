package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	StepRest     rune // · no hit
	StepHit      rune // ○ normal hit
	StepAccent   rune // ● accented hit
	StepPlayhead rune // ▶ playhead on a rest
	Enabled      rune // ■ track on
	Disabled     rune // □ track off
}

// AccentVelocity is the velocity from which a step is drawn as accented.
const AccentVelocity = 101

func New(palette *Palette) *Theme {
	if palette == nil || len(palette.Colors) == 0 {
		palette = Default
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			StepRest:     '·',
			StepHit:      '○',
			StepAccent:   '●',
			StepPlayhead: '▶',
			Enabled:      '■',
			Disabled:     '□',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleMuted   = 0.25
	RoleFG      = 0.5
	RoleAccent  = 0.625
	RoleActive  = 0.75
	RoleWarning = 0.875
	RoleCursor  = 1.0
)

// StepSymbol picks the glyph for a step of the given velocity. The
// playhead replaces rests only, so hits stay readable while playing.
func (t *Theme) StepSymbol(velocity uint8, playhead bool) rune {
	switch {
	case velocity >= AccentVelocity:
		return t.Symbols.StepAccent
	case velocity > 0:
		return t.Symbols.StepHit
	case playhead:
		return t.Symbols.StepPlayhead
	}
	return t.Symbols.StepRest
}

// Style helpers

func (t *Theme) FG() lipgloss.Color     { return t.Color(RoleFG) }
func (t *Theme) Muted() lipgloss.Color  { return t.Color(RoleMuted) }
func (t *Theme) Accent() lipgloss.Color { return t.Color(RoleAccent) }
func (t *Theme) Active() lipgloss.Color { return t.Color(RoleActive) }
func (t *Theme) Cursor() lipgloss.Color { return t.Color(RoleCursor) }

func (t *Theme) Warning() lipgloss.Color { return t.Color(RoleWarning) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	c := t.Palette.Lookup(norm)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}

// Title styles the header line
func (t *Theme) Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Accent())
}

// Step styles one grid cell
func (t *Theme) Step(velocity uint8, playhead, enabled bool) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(t.FG())
	switch {
	case !enabled:
		s = s.Foreground(t.Muted())
	case playhead:
		s = s.Foreground(t.Cursor()).Bold(true)
	case velocity > 0:
		s = s.Foreground(t.Active())
	}
	return s
}

// Help styles the key help footer
func (t *Theme) Help() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted())
}
