package sequencer

import (
	"fmt"
	"math"
)

// maxSamplesPerBar keeps step*barLength products well inside int64.
const maxSamplesPerBar = 1<<31 - 1

// TimeSignature is beats per bar over the beat unit (4 = quarter note).
type TimeSignature struct {
	Beats int
	Unit  int
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Beats, ts.Unit)
}

// Transport holds the fixed tempo and meter of a session and the sample
// counts derived from them. It never changes once built.
type Transport struct {
	SampleRate int
	BPM        float64
	Signature  TimeSignature

	samplesPerBeat int
	samplesPerBar  int
}

// NewTransport validates the session timing and precomputes the sample
// constants. Both derived values are rounded half-up; the bar length is
// rounded from the exact beat length, not from the rounded one.
func NewTransport(sampleRate int, bpm float64, ts TimeSignature) (Transport, error) {
	if sampleRate <= 0 {
		return Transport{}, configErr("sample rate", "%d must be positive", sampleRate)
	}
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
		return Transport{}, configErr("tempo", "%v bpm must be a positive number", bpm)
	}
	if ts.Beats <= 0 || ts.Unit <= 0 {
		return Transport{}, configErr("time signature", "%s must have positive beats and unit", ts)
	}

	beat := float64(sampleRate) * 60 / bpm
	bar := beat * float64(ts.Beats) * 4 / float64(ts.Unit)
	if bar > maxSamplesPerBar || beat > maxSamplesPerBar {
		return Transport{}, configErr("tempo", "%v bpm at %d Hz gives a bar longer than %d samples", bpm, sampleRate, maxSamplesPerBar)
	}

	t := Transport{
		SampleRate:     sampleRate,
		BPM:            bpm,
		Signature:      ts,
		samplesPerBeat: roundHalfUp(beat),
		samplesPerBar:  roundHalfUp(bar),
	}
	if t.samplesPerBeat < 1 || t.samplesPerBar < 1 {
		return Transport{}, configErr("tempo", "%v bpm is too fast for %d Hz", bpm, sampleRate)
	}
	return t, nil
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// SamplesPerBeat returns the length of one quarter-note beat in samples.
func (t Transport) SamplesPerBeat() int { return t.samplesPerBeat }

// SamplesPerBar returns the length of one bar in samples.
func (t Transport) SamplesPerBar() int { return t.samplesPerBar }

// Duration converts a sample count to seconds.
func (t Transport) Duration(samples int) float64 {
	return float64(samples) / float64(t.SampleRate)
}

func (t Transport) String() string {
	return fmt.Sprintf("%d Hz  %.2f bpm  %s  (%d samples/bar)", t.SampleRate, t.BPM, t.Signature, t.samplesPerBar)
}
