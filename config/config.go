package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"go-drumseq/sequencer"
)

// TrackConfig defines one drum voice
type TrackConfig struct {
	Name     string `json:"name" yaml:"name"`
	Channel  uint8  `json:"channel" yaml:"channel"`
	Note     uint8  `json:"note,omitempty" yaml:"note,omitempty"`
	Voice    string `json:"voice,omitempty" yaml:"voice,omitempty"` // kit voice, used when Note is 0
	Grid     string `json:"grid,omitempty" yaml:"grid,omitempty"`   // "X..x|..X." form
	Steps    []int  `json:"steps,omitempty" yaml:"steps,omitempty"` // raw velocities, used when Grid is empty
	Accent   uint8  `json:"accent,omitempty" yaml:"accent,omitempty"`
	Velocity uint8  `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	Muted    bool   `json:"muted,omitempty" yaml:"muted,omitempty"`
}

// SynthOutputConfig defines the synth MIDI output
type SynthOutputConfig struct {
	PortName string `json:"portName,omitempty" yaml:"port_name,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty" yaml:"palette,omitempty"` // GIMP .gpl file
}

// Config is a complete session: timing, engine limits, output and tracks
type Config struct {
	SampleRate    int     `json:"sampleRate" yaml:"sample_rate"`
	Tempo         float64 `json:"tempo" yaml:"tempo"`
	TimeSignature string  `json:"timeSignature" yaml:"time_signature"`
	BlockSize     int     `json:"blockSize,omitempty" yaml:"block_size,omitempty"`
	Capacity      int     `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	NoteOffDelay  int     `json:"noteOffDelay,omitempty" yaml:"note_off_delay,omitempty"` // samples, 0 = one step
	Kit           string  `json:"kit,omitempty" yaml:"kit,omitempty"`                         // note map for track voices

	Tracks      []TrackConfig     `json:"tracks" yaml:"tracks"`
	SynthOutput SynthOutputConfig `json:"synthOutput,omitempty" yaml:"synth_output,omitempty"`
	UI          UIConfig          `json:"ui,omitempty" yaml:"ui,omitempty"`
}

// Defaults for fields a session file may leave out
const (
	DefaultSampleRate = 48000
	DefaultBlockSize  = 1024
	DefaultAccent     = 127
	DefaultVelocity   = 100
)

// DefaultConfig returns a config with sensible defaults: a kick on every
// beat at 120 bpm
func DefaultConfig() *Config {
	return &Config{
		SampleRate:    DefaultSampleRate,
		Tempo:         120,
		TimeSignature: "4/4",
		BlockSize:     DefaultBlockSize,
		Capacity:      sequencer.DefaultCapacity,
		Tracks: []TrackConfig{
			{
				Name:    "kick",
				Channel: 1,
				Note:    36,
				Grid:    "X...|X...|X...|X...",
			},
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drumseq"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	cfg, err := LoadFile(path)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a session file. .yaml and .yml files are YAML, anything
// else is JSON. Fields left out keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := DefaultConfig()
	cfg.Tracks = nil

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, nil
}

// Save writes the config to the default location
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path in the format its extension names
func (c *Config) SaveFile(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithStack(err)
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "encode config")
	}

	return errors.WithStack(os.WriteFile(path, data, 0644))
}

// FindTrack finds a track config by name
func (c *Config) FindTrack(name string) *TrackConfig {
	for i := range c.Tracks {
		if c.Tracks[i].Name == name {
			return &c.Tracks[i]
		}
	}
	return nil
}

// AddTrack adds or updates a track config
func (c *Config) AddTrack(t TrackConfig) {
	for i := range c.Tracks {
		if c.Tracks[i].Name == t.Name {
			c.Tracks[i] = t
			return
		}
	}
	c.Tracks = append(c.Tracks, t)
}

// ParseTimeSignature reads "beats/unit", e.g. "7/8"
func ParseTimeSignature(s string) (sequencer.TimeSignature, error) {
	beats, unit, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return sequencer.TimeSignature{}, errors.Errorf("time signature %q: want beats/unit", s)
	}
	b, err := strconv.Atoi(strings.TrimSpace(beats))
	if err != nil {
		return sequencer.TimeSignature{}, errors.Wrapf(err, "time signature %q", s)
	}
	u, err := strconv.Atoi(strings.TrimSpace(unit))
	if err != nil {
		return sequencer.TimeSignature{}, errors.Wrapf(err, "time signature %q", s)
	}
	return sequencer.TimeSignature{Beats: b, Unit: u}, nil
}

// Transport validates the session timing
func (c *Config) Transport() (sequencer.Transport, error) {
	ts, err := ParseTimeSignature(c.TimeSignature)
	if err != nil {
		return sequencer.Transport{}, err
	}
	t, err := sequencer.NewTransport(c.SampleRate, c.Tempo, ts)
	return t, errors.Wrap(err, "session timing")
}

// Pattern builds the track's pattern from its grid or step list. A track
// without a note plays its voice from kit.
func (t *TrackConfig) Pattern(kit string) (*sequencer.Pattern, error) {
	note := t.Note
	if note == 0 && t.Voice != "" {
		n, err := sequencer.VoiceNote(kit, t.Voice)
		if err != nil {
			return nil, err
		}
		note = n
	}

	accent, normal := t.Accent, t.Velocity
	if accent == 0 {
		accent = DefaultAccent
	}
	if normal == 0 {
		normal = DefaultVelocity
	}

	if t.Grid != "" {
		return sequencer.ParsePattern(t.Grid, note, accent, normal)
	}

	steps := make([]uint8, len(t.Steps))
	for i, v := range t.Steps {
		if v < 0 || v > sequencer.MaxVelocity {
			return nil, &sequencer.ConfigError{Field: "pattern", Reason: "step " + strconv.Itoa(i+1) + " velocity " + strconv.Itoa(v) + " is outside 0-127"}
		}
		steps[i] = uint8(v)
	}
	return sequencer.NewPattern(steps, note)
}

// Build validates the whole session and returns a ready engine
func (c *Config) Build() (*sequencer.Engine, error) {
	tr, err := c.Transport()
	if err != nil {
		return nil, err
	}

	tracks := make([]*sequencer.Track, 0, len(c.Tracks))
	for i := range c.Tracks {
		tc := &c.Tracks[i]
		p, err := tc.Pattern(c.Kit)
		if err != nil {
			return nil, errors.Wrapf(err, "track %d (%s)", i+1, tc.Name)
		}
		track := sequencer.NewTrack(tc.Name, tc.Channel, p)
		track.Enabled = !tc.Muted
		tracks = append(tracks, track)
	}

	capacity := c.Capacity
	if capacity == 0 {
		capacity = sequencer.DefaultCapacity
	}
	e, err := sequencer.NewEngine(tr, tracks,
		sequencer.WithCapacity(capacity),
		sequencer.WithNoteOffDelay(c.NoteOffDelay),
	)
	return e, errors.Wrap(err, "build engine")
}

// Block returns the host block size, falling back to the default
func (c *Config) Block() int {
	if c.BlockSize <= 0 {
		return DefaultBlockSize
	}
	return c.BlockSize
}
