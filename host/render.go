package host

import (
	"go-drumseq/midi"
	"go-drumseq/sequencer"
)

// DefaultBlockSize is the block length used when none is given.
const DefaultBlockSize = 1024

// Render drives e offline for frames samples. Block lengths cycle through
// blocks (DefaultBlockSize when empty) and the final block is cut to fit.
// The returned events carry absolute sample positions counted from the
// engine's position when Render was called.
func Render(e *sequencer.Engine, frames int, blocks ...int) []midi.Event {
	if len(blocks) == 0 {
		blocks = []int{DefaultBlockSize}
	}
	var out []midi.Event
	start := 0
	for i := 0; start < frames; i++ {
		n := min(max(blocks[i%len(blocks)], 1), frames-start)
		for _, ev := range e.Process(n) {
			ev.Offset += start
			out = append(out, ev)
		}
		start += n
	}
	return out
}

// RenderBars renders whole bars in blocks of blockSize.
func RenderBars(e *sequencer.Engine, bars, blockSize int) []midi.Event {
	return Render(e, bars*e.Transport().SamplesPerBar(), blockSize)
}
