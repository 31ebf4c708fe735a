package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// Event is a note message placed at a sample frame.
// Inside a processed block Offset is relative to the block start; events
// collected by an offline render carry absolute sample positions instead.
type Event struct {
	Offset   int   // sample frame
	Track    int   // index of the emitting track (tie-break priority)
	Type     uint8 // NoteOn, NoteOff
	Channel  uint8 // MIDI channel 1-16
	Note     uint8
	Velocity uint8
}

// Message encodes the event for a gomidi sender.
func (e Event) Message() gomidi.Message {
	ch := (e.Channel - 1) & 0x0f
	switch e.Type {
	case NoteOn:
		return gomidi.NoteOn(ch, e.Note&0x7f, e.Velocity&0x7f)
	case NoteOff:
		return gomidi.NoteOff(ch, e.Note&0x7f)
	}
	return nil
}

// AppendRaw appends the three wire bytes of the event to dst.
// Hosts that write straight into a preallocated block buffer use this
// instead of Message, which allocates.
func (e Event) AppendRaw(dst []byte) []byte {
	vel := e.Velocity & 0x7f
	if e.Type == NoteOff {
		vel = 0
	}
	return append(dst, e.Type|((e.Channel-1)&0x0f), e.Note&0x7f, vel)
}

func (e Event) String() string {
	kind := "on "
	if e.Type == NoteOff {
		kind = "off"
	}
	return fmt.Sprintf("%8d %s trk=%d ch=%d note=%d vel=%d", e.Offset, kind, e.Track, e.Channel, e.Note, e.Velocity)
}

// Encode returns the wire message for e.
func Encode(e Event) gomidi.Message { return e.Message() }
