// Package lifxlan connects to a LIFX light over the raw LAN protocol.
package lifxlan

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"go.yhsif.com/lifxlan"
	lanlight "go.yhsif.com/lifxlan/light"

	"github.com/calegria/midi-note-colors/internal/colors"
	"github.com/calegria/midi-note-colors/internal/lights"
	"github.com/calegria/midi-note-colors/internal/logging"
)

var logger = logging.New("lifxlan")

const sendTimeout = 250 * time.Millisecond

type Config struct {
	DiscoveryTimeout time.Duration
}

// Light holds a dialed connection to the first LIFX device discovered on the
// LAN.
type Light struct {
	device lanlight.Device
	conn   net.Conn
}

var _ lights.LightService = (*Light)(nil)

// Connect discovers devices until one can be wrapped as a light and dialed,
// or the configured timeout elapses.
func Connect(ctx context.Context, config Config) (*Light, error) {
	logger.Info("LIFX LAN discovery starting...")
	ctx, cancel := context.WithTimeout(ctx, config.DiscoveryTimeout)
	defer cancel()

	devices := make(chan lifxlan.Device)
	go func() {
		if err := lifxlan.Discover(ctx, devices, ""); err != nil {
			if err != context.DeadlineExceeded && err != context.Canceled {
				logger.With(zap.Error(err)).Error("Failed to discover LIFX devices")
			}
		}
	}()

	for {
		select {
		case device, ok := <-devices:
			if !ok {
				return nil, lights.ErrNoDeviceFound
			}

			wrapped, err := lanlight.Wrap(ctx, device, false)
			if err != nil {
				logger.With(zap.Any("device", device), zap.Error(err)).Warn("Failed to wrap LIFX device as light")
				continue
			}
			conn, err := wrapped.Dial()
			if err != nil {
				logger.With(zap.Any("device", device), zap.Error(err)).Warn("Could not connect to LIFX light")
				continue
			}

			logger.With(zap.String("label", wrapped.Label().String())).Info("Connected to LIFX light")
			return &Light{device: wrapped, conn: conn}, nil
		case <-ctx.Done():
			return nil, lights.ErrNoDeviceFound
		}
	}
}

func (l *Light) SendColorCommand(c colors.HSL, kelvin int, transition time.Duration) {
	hue, saturation, brightness, k := lights.WireColor(c, kelvin)
	lifxColor := &lifxlan.Color{
		Hue:        hue,
		Saturation: saturation,
		Brightness: brightness,
		Kelvin:     k,
	}

	logger.With(zap.Any("color", lifxColor), zap.Duration("transition", transition)).
		Debug("Setting LIFX light color")

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := l.device.SetColor(ctx, l.conn, lifxColor, transition, false); err != nil {
		logger.With(zap.Error(err)).Warn("Failed to set color for LIFX light")
	}
}

func (l *Light) Close() error {
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}
