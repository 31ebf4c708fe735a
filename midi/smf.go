package midi

import (
	"cmp"
	"io"
	"math"
	"slices"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerQuarter is the resolution of exported files.
const TicksPerQuarter = 960

// Timeline describes the session an export was rendered from.
type Timeline struct {
	SampleRate int
	BPM        float64
	Beats      uint8
	Unit       uint8
}

// Ticks converts an absolute sample position to file ticks.
func (tl Timeline) Ticks(sample int) uint32 {
	return uint32(math.Round(float64(sample) * TicksPerQuarter * tl.BPM / (60 * float64(tl.SampleRate))))
}

// WriteSMF writes events with absolute sample offsets as a format 1
// Standard MIDI File: a tempo track followed by one track per sequencer
// track, in track order. Events need not be sorted.
func WriteSMF(w io.Writer, events []Event, tl Timeline) error {
	if tl.SampleRate <= 0 || tl.BPM <= 0 {
		return errors.Errorf("invalid timeline %d Hz %v bpm", tl.SampleRate, tl.BPM)
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(tl.Beats, tl.Unit))
	tempo.Add(0, smf.MetaTempo(tl.BPM))
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		return errors.Wrap(err, "add tempo track")
	}

	// one run per track, in time order; events at the same offset keep
	// their input order so a note-off stays ahead of its retrigger
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		if c := cmp.Compare(a.Track, b.Track); c != 0 {
			return c
		}
		return cmp.Compare(a.Offset, b.Offset)
	})

	for start := 0; start < len(sorted); {
		id := sorted[start].Track
		end := start
		var tr smf.Track
		var last uint32
		for ; end < len(sorted) && sorted[end].Track == id; end++ {
			tick := tl.Ticks(sorted[end].Offset)
			tr.Add(tick-last, sorted[end].Message())
			last = tick
		}
		tr.Close(0)
		if err := s.Add(tr); err != nil {
			return errors.Wrapf(err, "add track %d", id)
		}
		start = end
	}

	_, err := s.WriteTo(w)
	return errors.Wrap(err, "write midi file")
}
