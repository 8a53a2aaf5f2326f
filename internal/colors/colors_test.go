package colors

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNoteToHSL_HueFollowsPitchClass(t *testing.T) {
	cases := []struct {
		note uint8
		hue  float64
	}{
		{0, 285},   // C-1
		{60, 285},  // middle C
		{61, 300},  // C#
		{62, 330},  // D
		{63, 0},    // D#
		{64, 15},   // E
		{67, 90},   // G
		{69, 180},  // A
		{71, 255},  // B
		{83, 255},  // B an octave up, same hue
	}
	for _, c := range cases {
		got := NoteToHSL(c.note, 100)
		if got.Hue != c.hue {
			t.Fatalf("NoteToHSL(%d).Hue = %v; want %v", c.note, got.Hue, c.hue)
		}
	}
}

func TestNoteToHSL_SaturationAndLightness(t *testing.T) {
	c := NoteToHSL(60, 127)
	if !almostEqual(c.Saturation, 100) {
		t.Fatalf("full velocity saturation = %v; want 100", c.Saturation)
	}
	// middle C sits in octave 6 of 11
	if !almostEqual(c.Lightness, 6.0/11.0*100) {
		t.Fatalf("lightness = %v; want %v", c.Lightness, 6.0/11.0*100)
	}

	quiet := NoteToHSL(60, 0)
	if !almostEqual(quiet.Saturation, 0) {
		t.Fatalf("zero velocity saturation = %v; want 0", quiet.Saturation)
	}

	low := NoteToHSL(0, 64)
	if !almostEqual(low.Lightness, 1.0/11.0*100) {
		t.Fatalf("lowest octave lightness = %v; want %v", low.Lightness, 1.0/11.0*100)
	}
}

func TestNoteToHSL_Deterministic(t *testing.T) {
	if NoteToHSL(64, 80) != NoteToHSL(64, 80) {
		t.Fatal("NoteToHSL is not deterministic")
	}
}

func TestPitchToKelvin(t *testing.T) {
	cases := []struct {
		pitch int
		want  int
	}{
		{0, 5750},
		{8192, 2500},
		{-8192, 9000},
		{4096, 4125},
		{-4096, 7375},
		// out of range values clamp to the extremes
		{20000, 2500},
		{-20000, 9000},
	}
	for _, c := range cases {
		if got := PitchToKelvin(c.pitch, 2500, 9000); got != c.want {
			t.Fatalf("PitchToKelvin(%d, 2500, 9000) = %d; want %d", c.pitch, got, c.want)
		}
	}
}

func TestPitchToKelvin_CustomRange(t *testing.T) {
	if got := PitchToKelvin(0, 1500, 6500); got != 4000 {
		t.Fatalf("midpoint of [1500, 6500] = %d; want 4000", got)
	}
	if got := PitchToKelvin(MaxPitch, 1500, 6500); got != 1500 {
		t.Fatalf("full bend up = %d; want 1500", got)
	}
}
