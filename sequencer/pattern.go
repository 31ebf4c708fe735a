package sequencer

import "strings"

// MaxVelocity is the highest MIDI velocity a step can carry.
const MaxVelocity = 127

// Pattern is one bar of steps and the note they fire. A step with
// velocity 0 is a rest. Patterns are immutable; reload by building a new one.
type Pattern struct {
	steps []uint8
	note  uint8
}

// NewPattern copies steps into a new pattern. The number of steps is the
// number of equal subdivisions of the bar.
func NewPattern(steps []uint8, note uint8) (*Pattern, error) {
	if len(steps) == 0 {
		return nil, configErr("pattern", "needs at least one step")
	}
	if note > 127 {
		return nil, configErr("pattern note", "%d is outside 0-127", note)
	}
	for i, v := range steps {
		if v > MaxVelocity {
			return nil, configErr("pattern", "step %d velocity %d is outside 0-127", i+1, v)
		}
	}
	p := &Pattern{
		steps: make([]uint8, len(steps)),
		note:  note,
	}
	copy(p.steps, steps)
	return p, nil
}

// ParsePattern builds a pattern from a text grid. 'X' is an accented hit,
// 'x' or 'o' a normal hit, '.', '-' or '_' a rest; '|' and spaces are
// ignored so bars can be laid out for reading ("X...|x...|X...|x...").
func ParsePattern(grid string, note, accent, normal uint8) (*Pattern, error) {
	steps := make([]uint8, 0, len(grid))
	for _, r := range grid {
		switch r {
		case 'X':
			steps = append(steps, accent)
		case 'x', 'o':
			steps = append(steps, normal)
		case '.', '-', '_':
			steps = append(steps, 0)
		case '|', ' ', '\t':
		default:
			return nil, configErr("pattern", "unexpected %q in grid %q", r, grid)
		}
	}
	return NewPattern(steps, note)
}

// Len returns the number of steps per bar.
func (p *Pattern) Len() int { return len(p.steps) }

// Note returns the note the pattern triggers.
func (p *Pattern) Note() uint8 { return p.note }

// Velocity returns the velocity of step i, 0 when out of range.
func (p *Pattern) Velocity(i int) uint8 {
	if i < 0 || i >= len(p.steps) {
		return 0
	}
	return p.steps[i]
}

// Steps returns a copy of the step velocities.
func (p *Pattern) Steps() []uint8 {
	out := make([]uint8, len(p.steps))
	copy(out, p.steps)
	return out
}

// NextTriggeredStep returns the first step at or after from with a
// non-zero velocity. It never wraps; ok is false when the bar has no
// further hits.
func (p *Pattern) NextTriggeredStep(from int) (step int, velocity uint8, ok bool) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(p.steps); i++ {
		if v := p.steps[i]; v > 0 {
			return i, v, true
		}
	}
	return -1, 0, false
}

// Hits returns how many steps sound.
func (p *Pattern) Hits() int {
	n := 0
	for _, v := range p.steps {
		if v > 0 {
			n++
		}
	}
	return n
}

// String renders the grid back in ParsePattern form, accents above 100.
func (p *Pattern) String() string {
	var b strings.Builder
	for i, v := range p.steps {
		if i > 0 && i%4 == 0 && len(p.steps) > 4 {
			b.WriteByte('|')
		}
		switch {
		case v == 0:
			b.WriteByte('.')
		case v > 100:
			b.WriteByte('X')
		default:
			b.WriteByte('x')
		}
	}
	return b.String()
}
