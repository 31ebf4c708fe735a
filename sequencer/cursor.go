package sequencer

// Cursor is the play-head position inside the current bar, in samples.
// Position stays in [0, bar length) and only integer arithmetic touches it.
type Cursor struct {
	barLen int
	pos    int
}

// NewCursor returns a cursor at the start of a bar.
func NewCursor(barLen int) Cursor {
	return Cursor{barLen: barLen}
}

// Position returns the sample offset inside the current bar.
func (c *Cursor) Position() int { return c.pos }

// Window returns the bar-bounded spans covering the next n samples,
// starting at the current position. It does not move the cursor.
func (c *Cursor) Window(n int) Window {
	return Window{barLen: c.barLen, pos: c.pos, remaining: n}
}

// Advance moves the cursor n samples forward, wrapping at bar ends.
func (c *Cursor) Advance(n int) {
	if n <= 0 {
		return
	}
	c.pos = (c.pos + n) % c.barLen
}

// Reset returns the cursor to the start of the bar.
func (c *Cursor) Reset() {
	c.pos = 0
}

// Span is a run of samples that does not cross a bar boundary.
type Span struct {
	Start  int // position inside the bar
	Len    int
	Offset int // position of Start relative to the start of the block
}

// End returns the bar position one past the span.
func (s Span) End() int { return s.Start + s.Len }

// Window splits a block into bar-bounded spans. The zero value yields nothing.
type Window struct {
	barLen    int
	pos       int
	remaining int
	done      int
}

// Next returns the next span of the block, or false once the block is covered.
func (w *Window) Next() (Span, bool) {
	if w.remaining <= 0 {
		return Span{}, false
	}
	n := min(w.remaining, w.barLen-w.pos)
	s := Span{Start: w.pos, Len: n, Offset: w.done}
	w.pos += n
	if w.pos == w.barLen {
		w.pos = 0
	}
	w.remaining -= n
	w.done += n
	return s, true
}

// StepPosition returns the bar offset of step s when a bar of barLen
// samples is divided into n steps: s*barLen/n rounded half-up. Every
// boundary is computed from the bar start, so remainders never accumulate.
func StepPosition(s, n, barLen int) int {
	return int((2*int64(s)*int64(barLen) + int64(n)) / (2 * int64(n)))
}

// FirstStepAt returns the smallest step whose position is at or after x.
// For x == barLen it returns n.
func FirstStepAt(x, n, barLen int) int {
	if x <= 0 {
		return 0
	}
	num := (2*int64(x) - 1) * int64(n)
	den := 2 * int64(barLen)
	return int((num + den - 1) / den)
}

// StepAt returns the step sounding at bar position x.
func StepAt(x, n, barLen int) int {
	return FirstStepAt(x+1, n, barLen) - 1
}
