// Package router translates MIDI events into light state changes.
package router

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/calegria/midi-note-colors/internal/colors"
	"github.com/calegria/midi-note-colors/internal/logging"
	"github.com/calegria/midi-note-colors/internal/midi"
	"github.com/calegria/midi-note-colors/internal/notes"
)

var logger = logging.New("router")

// LightController is the mutation surface the router drives.
// *actuator.Scheduler implements it.
type LightController interface {
	SetColor(c colors.HSL)
	SetTemperature(kelvin int)
	SetTransitionDuration(d time.Duration)
}

type Config struct {
	// Channels to listen on (0-15). Events on other channels are dropped.
	Channels []int
	// Kelvin range of the connected light.
	MinKelvin int
	MaxKelvin int
}

// Router consumes an event stream, keeps the active-note set up to date and
// pushes the resulting color and temperature targets to the controller.
type Router struct {
	controller LightController
	channels   map[uint8]struct{}
	minKelvin  int
	maxKelvin  int
	tracker    *notes.Tracker
}

func New(controller LightController, config Config) (*Router, error) {
	if len(config.Channels) == 0 {
		return nil, errors.New("at least one MIDI channel is required")
	}
	channels := make(map[uint8]struct{}, len(config.Channels))
	for _, ch := range config.Channels {
		if ch < 0 || ch > 15 {
			return nil, errors.New("MIDI channels must be between 0 and 15")
		}
		channels[uint8(ch)] = struct{}{}
	}
	minKelvin, maxKelvin := config.MinKelvin, config.MaxKelvin
	if minKelvin <= 0 || maxKelvin <= 0 {
		minKelvin, maxKelvin = colors.DefaultMinKelvin, colors.DefaultMaxKelvin
	}
	return &Router{
		controller: controller,
		channels:   channels,
		minKelvin:  minKelvin,
		maxKelvin:  maxKelvin,
		tracker:    notes.NewTracker(),
	}, nil
}

// Run consumes events until the context is cancelled or the stream closes.
func (r *Router) Run(ctx context.Context, events <-chan midi.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if _, listening := r.channels[ev.Channel]; !listening {
				continue
			}
			r.handle(ev)
		}
	}
}

func (r *Router) handle(ev midi.Event) {
	logger.With(zap.String("kind", string(ev.Kind)), zap.Uint8("channel", ev.Channel)).
		Debug("MIDI event received")

	switch ev.Kind {
	case midi.NoteOn:
		if ev.Velocity == 0 {
			// note-on velocity 0 is note-off by MIDI convention; normally the
			// input layer rewrites it, but a direct feed may not
			r.tracker.NoteOff(ev.Note)
		} else {
			r.tracker.NoteOn(ev.Note, ev.Velocity)
		}
	case midi.NoteOff:
		r.tracker.NoteOff(ev.Note)
	case midi.PitchBend:
		pitch := int(ev.Pitch)
		if pitch < colors.MinPitch || pitch > colors.MaxPitch {
			logger.With(zap.Int("pitch", pitch)).Warn("Pitch bend out of range, clamping")
		}
		r.controller.SetTemperature(colors.PitchToKelvin(pitch, r.minKelvin, r.maxKelvin))
		// A temperature change updates the bulb on its own; no color recompute.
		return
	case midi.ControlChange:
		if ev.Controller == midi.ControllerModulation {
			r.controller.SetTransitionDuration(time.Duration(ev.Value) * 4 * time.Millisecond)
			// Transition duration only applies to the next color change.
			return
		}
		// other controllers fall through to the color re-assertion
	case midi.Other:
		// harmless re-assertion of the current color
	}

	if note, velocity, ok := r.tracker.Active(); ok {
		r.controller.SetColor(colors.NoteToHSL(note, velocity))
	} else {
		r.controller.SetColor(colors.Off)
	}
}
