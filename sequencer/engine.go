package sequencer

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"

	"go-drumseq/midi"
)

// TimedEvent is a note message at a sample offset inside the processed block.
type TimedEvent = midi.Event

// DefaultCapacity is the per-block event limit when none is configured.
const DefaultCapacity = 256

// Option configures an Engine at construction.
type Option func(*options)

type options struct {
	capacity     int
	noteOffDelay int
}

// WithCapacity sets how many events one block can hold. Events beyond it
// are dropped and counted.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithNoteOffDelay sets the gap between a note-on and its note-off in
// samples. Zero means one step of the track's pattern.
func WithNoteOffDelay(samples int) Option {
	return func(o *options) {
		o.noteOffDelay = samples
	}
}

// pendingOff is a note-off that has not been emitted yet. due counts
// samples from the start of the block being processed.
type pendingOff struct {
	active  bool
	due     int
	note    uint8
	channel uint8
}

// snapshot is the control-side state Process reads once per block.
// It is never modified after being published.
type snapshot struct {
	enabled  []bool
	patterns []*Pattern
}

func (s *snapshot) clone() *snapshot {
	return &snapshot{
		enabled:  slices.Clone(s.enabled),
		patterns: slices.Clone(s.patterns),
	}
}

// Engine turns patterns into sample-accurate note events, one audio block
// at a time.
//
// Process belongs to the real-time goroutine and never allocates, locks or
// blocks. SetEnabled and SetPattern belong to a control goroutine and
// publish a new snapshot that the next Process picks up.
type Engine struct {
	transport    Transport
	tracks       []Track // copied at construction
	cursor       Cursor
	buf          []TimedEvent
	pending      []pendingOff
	noteOffDelay int

	state   atomic.Pointer[snapshot]
	ctrlMu  sync.Mutex // serializes control writers only
	dropped atomic.Uint64
	frames  atomic.Int64
}

// NewEngine validates the tracks against the transport and preallocates
// everything Process touches.
func NewEngine(t Transport, tracks []*Track, opts ...Option) (*Engine, error) {
	o := options{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if t.samplesPerBar < 1 {
		return nil, configErr("transport", "not initialized, use NewTransport")
	}
	if len(tracks) == 0 {
		return nil, configErr("tracks", "need at least one track")
	}
	if o.capacity < 1 {
		return nil, configErr("capacity", "%d must be positive", o.capacity)
	}
	if o.noteOffDelay < 0 {
		return nil, configErr("note-off delay", "%d must not be negative", o.noteOffDelay)
	}

	st := &snapshot{
		enabled:  make([]bool, len(tracks)),
		patterns: make([]*Pattern, len(tracks)),
	}
	own := make([]Track, len(tracks))
	for i, tr := range tracks {
		if err := tr.validate(i, t.samplesPerBar); err != nil {
			return nil, err
		}
		own[i] = *tr
		st.enabled[i] = tr.Enabled
		st.patterns[i] = tr.Pattern
	}

	e := &Engine{
		transport:    t,
		tracks:       own,
		cursor:       NewCursor(t.samplesPerBar),
		buf:          make([]TimedEvent, 0, o.capacity),
		pending:      make([]pendingOff, len(tracks)),
		noteOffDelay: o.noteOffDelay,
	}
	e.state.Store(st)
	return e, nil
}

// Process advances the engine by one block of blockLen frames and returns
// the events inside it, ordered by offset, then track, then note-off
// before note-on. The slice is reused by the next call.
func (e *Engine) Process(blockLen int) []TimedEvent {
	e.buf = e.buf[:0]
	if blockLen <= 0 {
		return e.buf
	}

	st := e.state.Load()
	for i := range e.tracks {
		e.scheduleTrack(i, &e.tracks[i], st, blockLen)
	}
	slices.SortStableFunc(e.buf, compareEvents)

	e.cursor.Advance(blockLen)
	e.frames.Add(int64(blockLen))
	return e.buf
}

func (e *Engine) scheduleTrack(idx int, tr *Track, st *snapshot, blockLen int) {
	po := &e.pending[idx]

	if st.enabled[idx] {
		p := st.patterns[idx]
		n := p.Len()
		barLen := e.transport.samplesPerBar
		delay := e.delayFor(n)
		note := tr.noteFor(p)

		w := e.cursor.Window(blockLen)
		for span, ok := w.Next(); ok; span, ok = w.Next() {
			bound := FirstStepAt(span.End(), n, barLen)
			for s, vel, hit := p.NextTriggeredStep(FirstStepAt(span.Start, n, barLen)); hit && s < bound; s, vel, hit = p.NextTriggeredStep(s + 1) {
				at := StepPosition(s, n, barLen) - span.Start + span.Offset
				if po.active {
					// released on time, or choked by this hit
					po.due = min(po.due, at)
					if !e.emit(TimedEvent{Offset: po.due, Track: idx, Type: midi.NoteOff, Channel: po.channel, Note: po.note}) {
						// keep the release pending and skip the hit
						e.dropped.Add(1)
						continue
					}
				}
				e.emit(TimedEvent{Offset: at, Track: idx, Type: midi.NoteOn, Channel: tr.Channel, Note: note, Velocity: vel})
				*po = pendingOff{active: true, due: at + delay, note: note, channel: tr.Channel}
			}
		}
	}

	// a disabled track still releases what it started
	if po.active && po.due < blockLen {
		if e.emit(TimedEvent{Offset: po.due, Track: idx, Type: midi.NoteOff, Channel: po.channel, Note: po.note}) {
			po.active = false
		} else {
			po.due = blockLen // retry at the start of the next block
		}
	}
	if po.active {
		po.due -= blockLen
	}
}

func (e *Engine) delayFor(steps int) int {
	if e.noteOffDelay > 0 {
		return e.noteOffDelay
	}
	return max(1, e.transport.samplesPerBar/steps)
}

// emit appends ev to the block. When the block is full, note-ons are given
// up first, latest first, so a kept event is never later than a lost one
// and note-offs survive while any note-on can make room. It reports
// whether ev was kept.
func (e *Engine) emit(ev TimedEvent) bool {
	if len(e.buf) < cap(e.buf) {
		e.buf = append(e.buf, ev)
		return true
	}
	e.dropped.Add(1)
	victim := -1
	for i, b := range e.buf {
		if b.Type == midi.NoteOn && (victim < 0 || compareEvents(b, e.buf[victim]) > 0) {
			victim = i
		}
	}
	if victim < 0 || (ev.Type == midi.NoteOn && compareEvents(ev, e.buf[victim]) > 0) {
		return false
	}
	e.buf[victim] = ev
	return true
}

func compareEvents(a, b TimedEvent) int {
	if c := cmp.Compare(a.Offset, b.Offset); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Track, b.Track); c != 0 {
		return c
	}
	return cmp.Compare(kindRank(a.Type), kindRank(b.Type))
}

func kindRank(t uint8) int {
	if t == midi.NoteOff {
		return 0
	}
	return 1
}

// Reset rewinds to bar 0 and forgets pending note-offs. Only call it while
// Process is not running.
func (e *Engine) Reset() {
	e.cursor.Reset()
	clear(e.pending)
	e.frames.Store(0)
}

// Transport returns the session timing.
func (e *Engine) Transport() Transport { return e.transport }

// Capacity returns the per-block event limit.
func (e *Engine) Capacity() int { return cap(e.buf) }

// Dropped returns how many events did not fit in their block so far.
// Safe to call from any goroutine.
func (e *Engine) Dropped() uint64 { return e.dropped.Load() }

// Frames returns the number of frames processed since start or Reset.
// Safe to call from any goroutine.
func (e *Engine) Frames() int64 { return e.frames.Load() }

// Position returns the bar number and the sample offset inside it.
// Safe to call from any goroutine.
func (e *Engine) Position() (bar int64, pos int) {
	f := e.frames.Load()
	barLen := int64(e.transport.samplesPerBar)
	return f / barLen, int(f % barLen)
}

// NumTracks returns the number of tracks.
func (e *Engine) NumTracks() int { return len(e.tracks) }
