// Package colors converts MIDI note data to HSL colors and pitch bend values
// to color temperatures. Everything here is pure and deterministic.
package colors

import "math"

// HSL is a hue (0-360), saturation (0-100), lightness (0-100) triple.
type HSL struct {
	Hue        float64
	Saturation float64
	Lightness  float64
}

// Off is the color sent when no note is held: lightness 0 turns the bulb off.
var Off = HSL{}

// Hues on Newton's colour circle, which assigns each of the twelve pitch
// classes a fixed angle. The circle is not evenly spaced:
// https://commons.wikimedia.org/wiki/File:Newton%27s_colour_circle.png
var newtonHues = [12]float64{
	285, // C  indigo-violet
	300, // C# violet
	330, // D  violet-red
	0,   // D# red
	15,  // E  red-orange
	45,  // F  orange-yellow
	60,  // F# yellow
	90,  // G  yellow-green
	120, // G# green
	180, // A  green-blue
	240, // A# blue
	255, // B  blue-indigo
}

// NoteToHSL maps a MIDI note and velocity to a color. The pitch class picks
// the hue, the octave drives lightness and the velocity drives saturation.
func NoteToHSL(note, velocity uint8) HSL {
	octave := int(note)/12 + 1
	return HSL{
		Hue:        newtonHues[note%12],
		Saturation: float64(velocity) / 127 * 100,
		Lightness:  float64(octave) / 11 * 100,
	}
}

// MIDI pitch bend range and the kelvin range assumed when the device's
// supported range is unknown.
const (
	MinPitch = -8192
	MaxPitch = 8192

	DefaultMinKelvin = 2500
	DefaultMaxKelvin = 9000
)

// PitchToKelvin linearly maps a pitch bend value to a color temperature.
// The mapping is inverted: full bend down gives maxKelvin, full bend up
// gives minKelvin, and center rests at the midpoint. Out-of-range pitches
// are clamped.
func PitchToKelvin(pitch, minKelvin, maxKelvin int) int {
	if pitch < MinPitch {
		pitch = MinPitch
	}
	if pitch > MaxPitch {
		pitch = MaxPitch
	}
	span := float64(maxKelvin - minKelvin)
	return maxKelvin - int(math.Round(float64(pitch+MaxPitch)/(2*MaxPitch)*span))
}
