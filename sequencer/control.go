package sequencer

import (
	"github.com/pkg/errors"
)

// ErrNoTrack is returned by control calls that name a track index that
// does not exist.
var ErrNoTrack = errors.New("no such track")

// SetEnabled switches a track on or off from the next block on.
// Notes the track already started are still released.
func (e *Engine) SetEnabled(track int, on bool) error {
	return e.update(track, func(s *snapshot) error {
		s.enabled[track] = on
		return nil
	})
}

// Toggle flips a track's enabled flag and returns the new value.
func (e *Engine) Toggle(track int) (bool, error) {
	var on bool
	err := e.update(track, func(s *snapshot) error {
		on = !s.enabled[track]
		s.enabled[track] = on
		return nil
	})
	return on, err
}

// SetPattern replaces a track's pattern from the next block on.
func (e *Engine) SetPattern(track int, p *Pattern) error {
	return e.update(track, func(s *snapshot) error {
		if err := validatePattern(p, e.transport.samplesPerBar); err != nil {
			return err
		}
		s.patterns[track] = p
		return nil
	})
}

// update copies the published snapshot, applies fn and publishes the copy.
func (e *Engine) update(track int, fn func(*snapshot) error) error {
	e.ctrlMu.Lock()
	defer e.ctrlMu.Unlock()

	if track < 0 || track >= len(e.tracks) {
		return errors.Wrapf(ErrNoTrack, "track %d of %d", track+1, len(e.tracks))
	}
	next := e.state.Load().clone()
	if err := fn(next); err != nil {
		return err
	}
	e.state.Store(next)
	return nil
}

// Enabled reports whether a track is currently playing.
func (e *Engine) Enabled(track int) bool {
	s := e.state.Load()
	if track < 0 || track >= len(s.enabled) {
		return false
	}
	return s.enabled[track]
}

// Tracks returns copies of the tracks with their current pattern and
// enabled flag.
func (e *Engine) Tracks() []Track {
	s := e.state.Load()
	out := make([]Track, len(e.tracks))
	for i, tr := range e.tracks {
		out[i] = tr
		out[i].Pattern = s.patterns[i]
		out[i].Enabled = s.enabled[i]
	}
	return out
}
