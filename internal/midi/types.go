package midi

import "time"

// Kind discriminates normalized MIDI events. The set is closed: anything the
// input layer cannot classify arrives as Other.
type Kind string

const (
	NoteOn        Kind = "note_on"
	NoteOff       Kind = "note_off"
	PitchBend     Kind = "pitch_bend"
	ControlChange Kind = "control_change"
	Other         Kind = "other"
)

// ControllerModulation is the modulation wheel controller number (CC 1).
const ControllerModulation = 1

// Event is a normalized MIDI channel event. Payload fields are populated per
// kind: Note/Velocity for note events, Pitch for pitch bend and
// Controller/Value for control changes.
type Event struct {
	Kind       Kind
	Channel    uint8 // 0-15
	Note       uint8
	Velocity   uint8
	Pitch      int16 // -8192..8191
	Controller uint8
	Value      uint8
	Time       time.Time
}
