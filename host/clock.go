package host

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"go-drumseq/debug"
	"go-drumseq/midi"
	"go-drumseq/sequencer"
)

// Clock drives an engine in real time without an audio host. It calls
// Process once per block on a schedule anchored to the wall clock and
// sends every event when its sample offset comes due.
type Clock struct {
	engine *sequencer.Engine
	send   midi.Sender
	block  int

	paused   atomic.Bool
	resume   chan struct{}
	updates  chan struct{}
	sendErrs atomic.Uint64

	sounding [16][128]bool // only touched by the Run goroutine
}

// NewClock creates a clock processing blockSize frames at a time
// (DefaultBlockSize when <= 0).
func NewClock(e *sequencer.Engine, send midi.Sender, blockSize int) *Clock {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Clock{
		engine:  e,
		send:    send,
		block:   blockSize,
		resume:  make(chan struct{}, 1),
		updates: make(chan struct{}, 1),
	}
}

// Updates receives a signal after each processed block. Signals are
// coalesced; a slow reader only misses intermediate ones.
func (c *Clock) Updates() <-chan struct{} { return c.updates }

// BlockSize returns the number of frames per Process call.
func (c *Clock) BlockSize() int { return c.block }

// SendErrors counts messages the sender rejected.
func (c *Clock) SendErrors() uint64 { return c.sendErrs.Load() }

// Paused reports whether the clock is holding.
func (c *Clock) Paused() bool { return c.paused.Load() }

// SetPaused holds or resumes the clock. Notes still sounding are released
// when the hold starts; playback resumes from the same position.
func (c *Clock) SetPaused(p bool) {
	if c.paused.Swap(p) && !p {
		select {
		case c.resume <- struct{}{}:
		default:
		}
	}
}

// TogglePause flips the paused state and returns the new value.
func (c *Clock) TogglePause() bool {
	p := !c.paused.Load()
	c.SetPaused(p)
	return p
}

// Run plays until ctx is done. It returns nil on cancellation.
func (c *Clock) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	go c.monitor(ctx)
	defer c.releaseAll()

	tr := c.engine.Transport()
	anchor := time.Now()
	base := c.engine.Frames()

	for {
		if c.paused.Load() {
			c.releaseAll()
			debug.Log("clock", "paused at frame %d", c.engine.Frames())
			for c.paused.Load() {
				select {
				case <-ctx.Done():
					return nil
				case <-c.resume:
				}
			}
			anchor = time.Now()
			base = c.engine.Frames()
			debug.Log("clock", "resumed at frame %d", base)
		}

		start := anchor.Add(seconds(tr.Duration(int(c.engine.Frames() - base))))
		if !sleepUntil(ctx, start) {
			return nil
		}

		for _, ev := range c.engine.Process(c.block) {
			if !sleepUntil(ctx, start.Add(seconds(tr.Duration(ev.Offset)))) {
				return nil
			}
			c.dispatch(ev)
		}

		select {
		case c.updates <- struct{}{}:
		default:
		}
	}
}

func (c *Clock) dispatch(ev midi.Event) {
	if c.send == nil {
		return
	}
	if err := c.send(midi.Encode(ev)); err != nil {
		if c.sendErrs.Add(1) == 1 {
			debug.Log("clock", "send failed: %v", err)
		}
		return
	}
	ch, note := (ev.Channel-1)&0x0f, ev.Note&0x7f
	c.sounding[ch][note] = ev.Type == midi.NoteOn
}

// releaseAll sends a note-off for every note the clock started and has not
// stopped yet.
func (c *Clock) releaseAll() {
	for ch := range c.sounding {
		for note, on := range c.sounding[ch] {
			if !on {
				continue
			}
			c.dispatch(midi.Event{Type: midi.NoteOff, Channel: uint8(ch + 1), Note: uint8(note)})
		}
	}
}

// monitor reports dropped events and send failures from outside the
// processing goroutine.
func (c *Clock) monitor(ctx context.Context) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var dropped, failed uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bar, pos := c.engine.Position()
			debug.LogEvery(40, "clock", "bar %d sample %d paused=%v", bar+1, pos, c.paused.Load())
			if d := c.engine.Dropped(); d != dropped {
				debug.Log("clock", "dropped %d events (total %d)", d-dropped, d)
				dropped = d
			}
			if f := c.sendErrs.Load(); f != failed {
				debug.Log("clock", "%d send errors (total %d)", f-failed, f)
				failed = f
			}
		}
	}
}

// sleepUntil waits for t and reports false if ctx ended first.
func sleepUntil(ctx context.Context, t time.Time) bool {
	wait := time.Until(t)
	if wait <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
