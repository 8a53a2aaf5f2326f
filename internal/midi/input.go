// Package midi produces a normalized event stream from a MIDI input port.
package midi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/zap"

	"github.com/calegria/midi-note-colors/internal/logging"
)

var logger = logging.New("midi")

const eventBufferSize = 128

// Input is an open MIDI input port feeding normalized events to a channel.
type Input struct {
	drv    *rtmididrv.Driver
	port   drivers.In
	stop   func()
	events chan Event
	once   sync.Once
}

// Open creates a virtual input port with the given name so sequencers can
// connect to it. When the platform refuses virtual ports it falls back to an
// existing input whose name contains portName.
func Open(portName string) (*Input, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}

	port, err := openPort(drv, portName)
	if err != nil {
		_ = drv.Close()
		return nil, err
	}

	in := &Input{
		drv:    drv,
		port:   port,
		events: make(chan Event, eventBufferSize),
	}

	stop, err := midi.ListenTo(port, in.handleMessage, midi.HandleError(func(listenErr error) {
		logger.With(zap.Error(listenErr)).Warn("MIDI listener error")
	}))
	if err != nil {
		_ = port.Close()
		_ = drv.Close()
		return nil, fmt.Errorf("listen on %q: %w", port.String(), err)
	}
	in.stop = stop

	logger.With(zap.String("port", port.String())).Info("Opened MIDI input port")
	return in, nil
}

func openPort(drv *rtmididrv.Driver, portName string) (drivers.In, error) {
	port, virtErr := drv.OpenVirtualIn(portName)
	if virtErr == nil {
		return port, nil
	}

	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("list MIDI inputs: %w", err)
	}
	for _, existing := range ins {
		if strings.Contains(existing.String(), portName) {
			if err := existing.Open(); err != nil {
				return nil, fmt.Errorf("open %q: %w", existing.String(), err)
			}
			return existing, nil
		}
	}
	return nil, fmt.Errorf("open virtual MIDI input %q: %w", portName, virtErr)
}

// Events is the stream of normalized events. It is closed by Close.
func (in *Input) Events() <-chan Event {
	return in.events
}

// handleMessage runs on the rtmidi callback goroutine. It must not block, so
// events are dropped when the consumer falls behind.
func (in *Input) handleMessage(msg midi.Message, _ int32) {
	ev := Event{Kind: Other, Time: time.Now()}

	var channel, note, velocity, controller, value uint8
	var relative int16
	var absolute uint16

	switch {
	case msg.GetNoteStart(&channel, &note, &velocity):
		ev.Kind, ev.Channel, ev.Note, ev.Velocity = NoteOn, channel, note, velocity
	case msg.GetNoteEnd(&channel, &note):
		// covers both note-off and the note-on velocity 0 convention
		ev.Kind, ev.Channel, ev.Note = NoteOff, channel, note
	case msg.GetPitchBend(&channel, &relative, &absolute):
		ev.Kind, ev.Channel, ev.Pitch = PitchBend, channel, relative
	case msg.GetControlChange(&channel, &controller, &value):
		ev.Kind, ev.Channel, ev.Controller, ev.Value = ControlChange, channel, controller, value
	default:
		if !msg.GetChannel(&channel) {
			// system messages carry no channel and can never pass the filter
			return
		}
		ev.Channel = channel
	}

	select {
	case in.events <- ev:
	default:
		logger.With(zap.String("kind", string(ev.Kind))).Warn("Event buffer full, dropping MIDI event")
	}
}

// Close stops the listener, releases the port and driver, and closes the
// event channel.
func (in *Input) Close() error {
	var err error
	in.once.Do(func() {
		if in.stop != nil {
			in.stop()
		}
		_ = in.port.Close()
		err = in.drv.Close()
		close(in.events)
	})
	return err
}
