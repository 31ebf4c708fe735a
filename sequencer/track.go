package sequencer

// Track binds a pattern to an output channel.
// The engine copies Pattern and Enabled into its published snapshot when it
// is built; after that, change them through Engine.SetPattern and
// Engine.SetEnabled.
type Track struct {
	Name    string
	Channel uint8 // MIDI output channel (1-16)
	Note    uint8 // 0 = use the pattern's note
	Pattern *Pattern
	Enabled bool
}

// NewTrack creates an enabled track playing p on the given MIDI channel.
func NewTrack(name string, channel uint8, p *Pattern) *Track {
	return &Track{
		Name:    name,
		Channel: channel,
		Pattern: p,
		Enabled: true,
	}
}

// noteFor returns the note the track sends when playing p.
func (t *Track) noteFor(p *Pattern) uint8 {
	if t.Note != 0 {
		return t.Note
	}
	return p.Note()
}

func (t *Track) validate(idx int, barLen int) error {
	if t == nil {
		return configErr("track", "track %d is nil", idx+1)
	}
	if t.Channel < 1 || t.Channel > 16 {
		return configErr("track channel", "%q uses channel %d, want 1-16", t.Name, t.Channel)
	}
	if t.Note > 127 {
		return configErr("track note", "%q overrides note %d, want 0-127", t.Name, t.Note)
	}
	return validatePattern(t.Pattern, barLen)
}

func validatePattern(p *Pattern, barLen int) error {
	if p == nil {
		return configErr("pattern", "missing")
	}
	if p.Len() > barLen {
		return configErr("pattern", "%d steps do not fit in a %d sample bar", p.Len(), barLen)
	}
	return nil
}
