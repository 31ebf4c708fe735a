package host

import (
	"context"
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-drumseq/midi"
	"go-drumseq/sequencer"
)

// newEngine builds a 1 kHz, 600 bpm engine: 100 samples (100ms) per beat
// with one kick per beat.
func newEngine(t *testing.T) *sequencer.Engine {
	t.Helper()
	tr, err := sequencer.NewTransport(1000, 600, sequencer.TimeSignature{Beats: 4, Unit: 4})
	if err != nil {
		t.Fatal(err)
	}
	p, err := sequencer.NewPattern([]uint8{127, 127, 127, 127}, 36)
	if err != nil {
		t.Fatal(err)
	}
	e, err := sequencer.NewEngine(tr, []*sequencer.Track{sequencer.NewTrack("kick", 1, p)})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

type recorder struct {
	mu   sync.Mutex
	msgs []gomidi.Message
	sent chan struct{}
}

func newRecorder() *recorder {
	return &recorder{sent: make(chan struct{}, 64)}
}

func (r *recorder) send(msg gomidi.Message) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	select {
	case r.sent <- struct{}{}:
	default:
	}
	return nil
}

func (r *recorder) messages() []gomidi.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gomidi.Message(nil), r.msgs...)
}

func TestRender(t *testing.T) {
	e := newEngine(t)
	events := Render(e, 400, 30, 70)
	var ons []int
	for _, ev := range events {
		if ev.Type == midi.NoteOn {
			ons = append(ons, ev.Offset)
		}
	}
	want := []int{0, 100, 200, 300}
	if len(ons) != len(want) {
		t.Fatalf("ons = %v, want %v", ons, want)
	}
	for i := range want {
		if ons[i] != want[i] {
			t.Fatalf("ons = %v, want %v", ons, want)
		}
	}
	if e.Frames() != 400 {
		t.Fatalf("frames = %d, want 400", e.Frames())
	}
}

func TestRenderBars(t *testing.T) {
	e := newEngine(t)
	events := RenderBars(e, 2, DefaultBlockSize)
	ons := 0
	for _, ev := range events {
		if ev.Offset < 0 || ev.Offset >= 800 {
			t.Fatalf("event outside two bars: %v", ev)
		}
		if ev.Type == midi.NoteOn {
			ons++
		}
	}
	if ons != 8 {
		t.Fatalf("ons = %d, want 8", ons)
	}
}

func TestClockPlaysAndReleases(t *testing.T) {
	e := newEngine(t)
	rec := newRecorder()
	c := NewClock(e, rec.send, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 330*time.Millisecond)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	msgs := rec.messages()
	ons := 0
	for i, msg := range msgs {
		var ch, key, vel uint8
		if msg.GetNoteStart(&ch, &key, &vel) {
			if i%2 != 0 {
				t.Fatalf("message %d is a note on, want alternating on/off: %v", i, msgs)
			}
			if ch != 0 || key != 36 || vel != 127 {
				t.Fatalf("note on ch=%d key=%d vel=%d", ch, key, vel)
			}
			ons++
			continue
		}
		if !msg.GetNoteEnd(&ch, &key) || i%2 != 1 {
			t.Fatalf("message %d = %v, want note off", i, msg)
		}
	}
	if ons < 2 {
		t.Fatalf("ons = %d, want at least 2", ons)
	}
	if len(msgs)%2 != 0 {
		t.Fatalf("note left hanging: %v", msgs)
	}
}

func TestClockPause(t *testing.T) {
	e := newEngine(t)
	rec := newRecorder()
	c := NewClock(e, rec.send, 50)
	c.SetPaused(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(60 * time.Millisecond)
	if n := len(rec.messages()); n != 0 || e.Frames() != 0 {
		t.Fatalf("paused clock sent %d messages, processed %d frames", n, e.Frames())
	}

	if c.TogglePause() {
		t.Fatal("TogglePause should resume")
	}
	select {
	case <-rec.sent:
	case <-time.After(time.Second):
		t.Fatal("no message after resume")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestReleaseAll(t *testing.T) {
	rec := newRecorder()
	c := NewClock(newEngine(t), rec.send, 0)
	if c.BlockSize() != DefaultBlockSize {
		t.Fatalf("block = %d", c.BlockSize())
	}
	c.dispatch(midi.Event{Type: midi.NoteOn, Channel: 10, Note: 42, Velocity: 90})
	c.releaseAll()
	c.releaseAll()

	msgs := rec.messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", msgs)
	}
	var ch, key uint8
	if !msgs[1].GetNoteEnd(&ch, &key) || ch != 9 || key != 42 {
		t.Fatalf("release = %v", msgs[1])
	}
}
