// Package actuator owns the light's target state and paces command dispatch.
package actuator

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/calegria/midi-note-colors/internal/colors"
	"github.com/calegria/midi-note-colors/internal/lights"
	"github.com/calegria/midi-note-colors/internal/logging"
)

var logger = logging.New("actuator")

// DefaultRateInterval is the fastest command cadence LIFX bulbs reliably
// accept (20 messages per second).
const DefaultRateInterval = 50 * time.Millisecond

type Config struct {
	// RateInterval is the minimum spacing between device commands.
	// DefaultRateInterval when zero.
	RateInterval time.Duration
	// Transition is the initial transition duration attached to commands.
	Transition time.Duration
	// Kelvin is the initial color temperature.
	Kelvin int
}

// Scheduler coalesces bursts of state changes into at most one in-flight
// device command per rate interval. The dispatch loop reads the state that
// is current at send time, so a command never carries a value older than the
// latest completed mutation.
type Scheduler struct {
	svc      lights.LightService
	interval time.Duration

	mu         sync.Mutex
	color      colors.HSL
	kelvin     int
	transition time.Duration
	lastSend   time.Time
	pending    bool
	closed     bool

	signal  chan struct{}
	stopped chan struct{}
}

// New starts a scheduler around an established light connection. The target
// color starts at off and nothing is sent until the first mutation.
func New(svc lights.LightService, config Config) *Scheduler {
	interval := config.RateInterval
	if interval <= 0 {
		interval = DefaultRateInterval
	}
	s := &Scheduler{
		svc:        svc,
		interval:   interval,
		color:      colors.Off,
		kelvin:     config.Kelvin,
		transition: config.Transition,
		lastSend:   time.Now(),
		signal:     make(chan struct{}, 1),
		stopped:    make(chan struct{}),
	}
	go s.run()
	return s
}

// SetColor updates the target color and requests a dispatch. Setting the
// current color again is a no-op.
func (s *Scheduler) SetColor(c colors.HSL) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || c == s.color {
		return
	}
	logger.With(zap.Any("color", c)).Debug("Requesting color change")
	s.color = c
	s.requestDispatchLocked()
}

// SetTemperature updates the target color temperature and requests a
// dispatch. Setting the current value again is a no-op.
func (s *Scheduler) SetTemperature(kelvin int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || kelvin == s.kelvin {
		return
	}
	logger.With(zap.Int("kelvin", kelvin)).Debug("Requesting temperature change")
	s.kelvin = kelvin
	s.requestDispatchLocked()
}

// SetTransitionDuration changes the transition attached to subsequent
// commands. It never requests a dispatch on its own.
func (s *Scheduler) SetTransitionDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	logger.With(zap.Duration("transition", d)).Debug("Changing transition duration")
	s.transition = d
}

// requestDispatchLocked arms the one-shot send timer. At most one timer is
// outstanding: further requests coalesce into it and are picked up when the
// dispatch loop reads the live state.
func (s *Scheduler) requestDispatchLocked() {
	if s.pending {
		return
	}
	s.pending = true

	delay := time.Until(s.lastSend.Add(s.interval))
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		// Clear the slot before signalling so a mutation arriving during the
		// send can arm a fresh timer instead of vanishing into a spent one.
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
		select {
		case s.signal <- struct{}{}:
		default:
		}
	})
}

func (s *Scheduler) run() {
	for range s.signal {
		s.mu.Lock()
		color, kelvin, transition := s.color, s.kelvin, s.transition
		s.mu.Unlock()

		s.svc.SendColorCommand(color, kelvin, transition)

		s.mu.Lock()
		s.lastSend = time.Now()
		done := s.closed && !s.pending
		s.mu.Unlock()
		if done {
			logger.Debug("Exiting dispatch loop")
			close(s.stopped)
			return
		}
	}
}

// Close stops accepting state changes, forces a final off command and waits
// for the dispatch loop to deliver it. The dispatch is requested
// unconditionally so the light's last received command is always the off
// state, and the wait is bounded by roughly one rate interval.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.color = colors.Off
	s.requestDispatchLocked()
	s.mu.Unlock()

	<-s.stopped
}
