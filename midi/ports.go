package midi

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Sender delivers one encoded message to an output.
type Sender func(gomidi.Message) error

// PortTimeout bounds port enumeration; CoreMIDI can hang.
var PortTimeout = 3 * time.Second

var (
	ErrPortTimeout  = errors.New("timed out listing MIDI ports")
	ErrPortNotFound = errors.New("MIDI output port not found")
)

// OutPorts lists the names of the MIDI output ports. A driver must be
// registered by the program, e.g. by importing drivers/rtmididrv.
func OutPorts() ([]string, error) {
	outs, err := outPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, p := range outs {
		names[i] = p.String()
	}
	return names, nil
}

func outPorts() ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		return outs, nil
	case <-time.After(PortTimeout):
		return nil, ErrPortTimeout
	}
}

// OpenOut opens the output port whose name equals name, or failing that
// the first one containing it.
func OpenOut(name string) (Sender, error) {
	outs, err := outPorts()
	if err != nil {
		return nil, err
	}
	port := findPort(outs, name)
	if port == nil {
		return nil, errors.Wrapf(ErrPortNotFound, "%q", name)
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", port.String())
	}
	return send, nil
}

func findPort(outs []drivers.Out, name string) drivers.Out {
	for _, p := range outs {
		if p.String() == name {
			return p
		}
	}
	for _, p := range outs {
		if strings.Contains(p.String(), name) {
			return p
		}
	}
	return nil
}

// Close releases the MIDI driver.
func Close() {
	gomidi.CloseDriver()
}
