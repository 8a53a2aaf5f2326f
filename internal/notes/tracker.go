// Package notes tracks which MIDI notes are currently held down.
package notes

// Tracker is an insertion-ordered set of held notes. Under polyphony the
// earliest note still held is the active one, so the key order is
// load-bearing and kept explicitly; Go maps do not guarantee iteration order.
type Tracker struct {
	order    []uint8
	velocity map[uint8]uint8
}

func NewTracker() *Tracker {
	return &Tracker{velocity: make(map[uint8]uint8)}
}

// NoteOn records a held note. Re-triggering a note that is already held
// updates its velocity without changing its position in the order.
// Velocity 0 is ignored; the MIDI layer normalizes running-status note-off
// before events get here, so a zero means a malformed event.
func (t *Tracker) NoteOn(note, velocity uint8) {
	if velocity == 0 {
		return
	}
	if _, held := t.velocity[note]; !held {
		t.order = append(t.order, note)
	}
	t.velocity[note] = velocity
}

// NoteOff releases a note. Releasing a note that is not held is a no-op.
func (t *Tracker) NoteOff(note uint8) {
	if _, held := t.velocity[note]; !held {
		return
	}
	delete(t.velocity, note)
	for i, n := range t.order {
		if n == note {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Active returns the earliest note still held and its current velocity.
func (t *Tracker) Active() (note, velocity uint8, ok bool) {
	if len(t.order) == 0 {
		return 0, 0, false
	}
	n := t.order[0]
	return n, t.velocity[n], true
}

func (t *Tracker) Len() int {
	return len(t.order)
}
