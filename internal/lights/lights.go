package lights

import (
	"errors"
	"math"
	"time"

	"github.com/calegria/midi-note-colors/internal/colors"
)

// ErrNoDeviceFound is returned when discovery exhausts its deadline without
// locating a light on the network.
var ErrNoDeviceFound = errors.New("no LIFX light found on the network")

// LightService is a connection to a single color-changing light. Commands
// are fire-and-forget: implementations log send failures rather than
// returning them, and no acknowledgment is awaited.
type LightService interface {
	// SendColorCommand pushes color, temperature and transition duration to
	// the light as one command.
	SendColorCommand(color colors.HSL, kelvin int, transition time.Duration)
	Close() error
}

// WireColor converts an HSL color plus kelvin into the 16-bit HSBK quadruple
// the LIFX wire protocol expects. Lightness maps onto the brightness channel,
// which is what turns the bulb "off" when a zero-lightness color is sent.
func WireColor(c colors.HSL, kelvin int) (hue, saturation, brightness, k uint16) {
	hue = uint16(math.Round(c.Hue * 0xFFFF / 360.0))
	saturation = uint16(math.Round(c.Saturation * 0xFFFF / 100.0))
	brightness = uint16(math.Round(c.Lightness * 0xFFFF / 100.0))
	return hue, saturation, brightness, uint16(kelvin)
}
