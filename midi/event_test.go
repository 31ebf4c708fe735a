package midi

import (
	"bytes"
	"testing"
)

func TestEventEncoding(t *testing.T) {
	tests := []struct {
		ev   Event
		want []byte
	}{
		{Event{Type: NoteOn, Channel: 1, Note: 36, Velocity: 127}, []byte{0x90, 36, 127}},
		{Event{Type: NoteOn, Channel: 10, Note: 42, Velocity: 64}, []byte{0x99, 42, 64}},
		{Event{Type: NoteOff, Channel: 10, Note: 38}, []byte{0x89, 38, 0}},
		{Event{Type: NoteOff, Channel: 16, Note: 49, Velocity: 90}, []byte{0x8f, 49, 0}},
	}

	for _, tt := range tests {
		if got := tt.ev.AppendRaw(nil); !bytes.Equal(got, tt.want) {
			t.Fatalf("%v: AppendRaw = % x, want % x", tt.ev, got, tt.want)
		}
		if got := tt.ev.Message(); !bytes.Equal(got, tt.want) {
			t.Fatalf("%v: Message = % x, want % x", tt.ev, []byte(got), tt.want)
		}
	}
}

func TestAppendRawReusesBuffer(t *testing.T) {
	buf := make([]byte, 0, 6)
	buf = Event{Type: NoteOn, Channel: 1, Note: 36, Velocity: 100}.AppendRaw(buf)
	buf = Event{Type: NoteOff, Channel: 1, Note: 36}.AppendRaw(buf)
	if cap(buf) != 6 || len(buf) != 6 {
		t.Fatalf("buffer grew: len=%d cap=%d", len(buf), cap(buf))
	}
}

func TestUnknownTypeHasNoMessage(t *testing.T) {
	if msg := (Event{Type: 0xB0, Channel: 1}).Message(); msg != nil {
		t.Fatalf("expected nil message, got % x", []byte(msg))
	}
}
