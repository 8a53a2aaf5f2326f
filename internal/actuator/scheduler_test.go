package actuator

import (
	"sync"
	"testing"
	"time"

	"github.com/calegria/midi-note-colors/internal/colors"
)

// testInterval keeps the tests fast while leaving enough room to issue a
// burst of mutations inside a single rate window.
const testInterval = 30 * time.Millisecond

type command struct {
	color      colors.HSL
	kelvin     int
	transition time.Duration
}

type fakeService struct {
	mu       sync.Mutex
	commands []command
}

func (f *fakeService) SendColorCommand(c colors.HSL, kelvin int, transition time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, command{color: c, kelvin: kelvin, transition: transition})
}

func (f *fakeService) Close() error { return nil }

func (f *fakeService) snapshot() []command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]command, len(f.commands))
	copy(out, f.commands)
	return out
}

func newTestScheduler(svc *fakeService) *Scheduler {
	return New(svc, Config{
		RateInterval: testInterval,
		Kelvin:       5750,
	})
}

func TestBurstCoalescesToLatestValue(t *testing.T) {
	svc := &fakeService{}
	s := newTestScheduler(svc)

	a := colors.HSL{Hue: 285, Saturation: 100, Lightness: 50}
	b := colors.HSL{Hue: 15, Saturation: 80, Lightness: 40}
	s.SetColor(a)
	s.SetColor(b)

	time.Sleep(3 * testInterval)

	got := svc.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 coalesced command, got %d: %#v", len(got), got)
	}
	if got[0].color != b {
		t.Fatalf("command color = %#v; want the latest value %#v", got[0].color, b)
	}
	s.Close()
}

func TestIdempotentSetsScheduleNothing(t *testing.T) {
	svc := &fakeService{}
	s := newTestScheduler(svc)

	s.SetColor(colors.Off)  // already the current color
	s.SetTemperature(5750)  // already the current temperature

	time.Sleep(3 * testInterval)

	if got := svc.snapshot(); len(got) != 0 {
		t.Fatalf("expected no commands, got %d: %#v", len(got), got)
	}
	s.Close()
}

func TestSetTransitionDurationNeverDispatches(t *testing.T) {
	svc := &fakeService{}
	s := newTestScheduler(svc)

	s.SetTransitionDuration(120 * time.Millisecond)
	time.Sleep(3 * testInterval)
	if got := svc.snapshot(); len(got) != 0 {
		t.Fatalf("transition change alone dispatched %d commands: %#v", len(got), got)
	}

	// the stored duration rides along with the next color change
	s.SetColor(colors.HSL{Hue: 60, Saturation: 50, Lightness: 50})
	time.Sleep(3 * testInterval)

	got := svc.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 command, got %d", len(got))
	}
	if got[0].transition != 120*time.Millisecond {
		t.Fatalf("command transition = %v; want 120ms", got[0].transition)
	}
	s.Close()
}

func TestRateBound(t *testing.T) {
	svc := &fakeService{}
	s := newTestScheduler(svc)

	start := time.Now()
	for i := 0; i < 60; i++ {
		s.SetColor(colors.HSL{Hue: float64(i % 360), Saturation: 100, Lightness: 50})
		time.Sleep(2 * time.Millisecond)
	}
	// let the trailing dispatch drain before measuring
	time.Sleep(2 * testInterval)
	elapsed := time.Since(start)

	got := svc.snapshot()
	limit := int(elapsed/testInterval) + 2 // ceil(elapsed/interval) + 1
	if len(got) > limit {
		t.Fatalf("%d commands in %v exceeds rate bound %d", len(got), elapsed, limit)
	}
	if len(got) == 0 {
		t.Fatal("expected at least one command")
	}
	// the last command must reflect the final state
	want := colors.HSL{Hue: float64(59 % 360), Saturation: 100, Lightness: 50}
	if last := got[len(got)-1].color; last != want {
		t.Fatalf("last command color = %#v; want %#v", last, want)
	}
	s.Close()
}

func TestTemperatureRidesAlong(t *testing.T) {
	svc := &fakeService{}
	s := newTestScheduler(svc)

	s.SetTemperature(3000)
	time.Sleep(3 * testInterval)

	got := svc.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 command, got %d", len(got))
	}
	if got[0].kelvin != 3000 {
		t.Fatalf("command kelvin = %d; want 3000", got[0].kelvin)
	}
	s.Close()
}

func TestCloseSendsFinalOff(t *testing.T) {
	svc := &fakeService{}
	s := newTestScheduler(svc)

	s.SetColor(colors.HSL{Hue: 240, Saturation: 100, Lightness: 60})
	time.Sleep(3 * testInterval)

	s.Close()

	got := svc.snapshot()
	if len(got) == 0 {
		t.Fatal("expected commands before and during close")
	}
	if last := got[len(got)-1].color; last != colors.Off {
		t.Fatalf("last command color = %#v; want the off color", last)
	}

	// mutations after close are rejected
	s.SetColor(colors.HSL{Hue: 90, Saturation: 100, Lightness: 50})
	time.Sleep(2 * testInterval)
	if after := svc.snapshot(); len(after) != len(got) {
		t.Fatalf("commands were sent after Close: %#v", after[len(got):])
	}
}

func TestCloseWithoutActivityStillSendsOff(t *testing.T) {
	svc := &fakeService{}
	s := newTestScheduler(svc)

	s.Close()

	got := svc.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected exactly the off command, got %d: %#v", len(got), got)
	}
	if got[0].color != colors.Off {
		t.Fatalf("command color = %#v; want the off color", got[0].color)
	}

	// closing twice must not block or send again
	s.Close()
	if again := svc.snapshot(); len(again) != 1 {
		t.Fatalf("second Close sent more commands: %#v", again)
	}
}
