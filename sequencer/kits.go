package sequencer

import (
	"slices"
	"strings"
)

// Voice is one of the sixteen drum slots every kit maps to a note.
type Voice int

const (
	Kick Voice = iota
	Snare
	ClosedHat
	OpenHat
	LowTom
	MidTom
	HighTom
	Crash
	Ride
	Clap
	Rimshot
	Cowbell
	Clave
	Maracas
	LowConga
	HighConga
)

var voiceNames = [16]string{
	"kick", "snare", "closed-hat", "open-hat",
	"low-tom", "mid-tom", "high-tom", "crash",
	"ride", "clap", "rimshot", "cowbell",
	"clave", "maracas", "low-conga", "high-conga",
}

func (v Voice) String() string {
	if v < 0 || int(v) >= len(voiceNames) {
		return "voice?"
	}
	return voiceNames[v]
}

// ParseVoice looks a voice up by name. Case, spaces and underscores are
// forgiven, so "Closed HH" style names need only the hyphen spelling.
func ParseVoice(name string) (Voice, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(" ", "-", "_", "-").Replace(name)
	i := slices.Index(voiceNames[:], name)
	return Voice(i), i >= 0
}

// DrumKit maps the drum voices to the notes a particular machine expects.
type DrumKit struct {
	Name  string
	Notes [16]uint8
}

// Note returns the note the kit plays for v.
func (k DrumKit) Note(v Voice) uint8 {
	if v < 0 || int(v) >= len(k.Notes) {
		return 0
	}
	return k.Notes[v]
}

// DefaultKit is the default kit name
const DefaultKit = "gm"

// Kits holds the built-in note maps, indexed by Voice.
var Kits = map[string]DrumKit{
	"gm": {
		Name:  "General MIDI",
		Notes: [16]uint8{36, 38, 42, 46, 41, 43, 45, 49, 51, 39, 37, 56, 75, 70, 64, 63},
	},
	"rd8": {
		// snare sits on 40 on the RD-8
		Name:  "Behringer RD-8",
		Notes: [16]uint8{36, 40, 42, 46, 45, 48, 50, 49, 51, 39, 37, 56, 75, 70, 64, 63},
	},
	"tr8s": {
		Name:  "Roland TR-8S",
		Notes: [16]uint8{36, 38, 42, 46, 41, 43, 45, 49, 51, 39, 37, 56, 75, 70, 62, 63},
	},
	"er1": {
		// perc synths 1-4 on the kick, snare and tom slots; the upper slots are unused
		Name:  "Korg ER-1",
		Notes: [16]uint8{36, 38, 42, 46, 40, 41, 43, 49, 45, 39, 37, 56, 75, 70, 64, 63},
	},
}

// KitNames returns the built-in kit names in sorted order.
func KitNames() []string {
	names := make([]string, 0, len(Kits))
	for name := range Kits {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetKit returns a kit by name; an empty name selects DefaultKit.
func GetKit(name string) (DrumKit, error) {
	if name == "" {
		name = DefaultKit
	}
	kit, ok := Kits[strings.ToLower(name)]
	if !ok {
		return DrumKit{}, configErr("kit", "%q is unknown, want one of %s", name, strings.Join(KitNames(), ", "))
	}
	return kit, nil
}

// VoiceNote resolves a voice name in the named kit.
func VoiceNote(kit, voice string) (uint8, error) {
	k, err := GetKit(kit)
	if err != nil {
		return 0, err
	}
	v, ok := ParseVoice(voice)
	if !ok {
		return 0, configErr("voice", "%q is unknown, want one of %s", voice, strings.Join(voiceNames[:], ", "))
	}
	return k.Note(v), nil
}
