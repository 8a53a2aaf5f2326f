// Package lifx connects to a LIFX light through the golifx client.
package lifx

import (
	"context"
	"time"

	"github.com/pdf/golifx"
	"github.com/pdf/golifx/common"
	"github.com/pdf/golifx/protocol"
	"go.uber.org/zap"

	"github.com/calegria/midi-note-colors/internal/colors"
	"github.com/calegria/midi-note-colors/internal/lights"
	"github.com/calegria/midi-note-colors/internal/logging"
)

var logger = logging.New("lifx")

const discoveryPollInterval = 200 * time.Millisecond

type Config struct {
	DiscoveryTimeout time.Duration
}

// Light drives the first LIFX light discovered on the network.
type Light struct {
	client *golifx.Client
	light  common.Light
}

var _ lights.LightService = (*Light)(nil)

// Connect starts discovery and waits for the first light to appear. It
// returns lights.ErrNoDeviceFound when none shows up within the configured
// timeout.
func Connect(ctx context.Context, config Config) (*Light, error) {
	client, err := golifx.NewClient(&protocol.V2{})
	if err != nil {
		return nil, err
	}

	logger.Info("LIFX discovery starting...")
	ctx, cancel := context.WithTimeout(ctx, config.DiscoveryTimeout)
	defer cancel()

	ticker := time.NewTicker(discoveryPollInterval)
	defer ticker.Stop()

	for {
		found, err := client.GetLights()
		if err == nil && len(found) > 0 {
			light := found[0]
			label, labelErr := light.GetLabel()
			if labelErr != nil {
				label = "(unknown)"
			}
			logger.With(zap.String("label", label)).Info("Connected to LIFX light")
			return &Light{client: client, light: light}, nil
		}

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, lights.ErrNoDeviceFound
		case <-ticker.C:
		}
	}
}

func (l *Light) SendColorCommand(c colors.HSL, kelvin int, transition time.Duration) {
	hue, saturation, brightness, k := lights.WireColor(c, kelvin)
	lifxColor := common.Color{
		Hue:        hue,
		Saturation: saturation,
		Brightness: brightness,
		Kelvin:     k,
	}

	logger.With(zap.Any("color", lifxColor), zap.Duration("transition", transition)).
		Debug("Setting LIFX light color")

	if err := l.light.SetColor(lifxColor, transition); err != nil {
		logger.With(zap.Error(err)).Warn("Failed to set color for LIFX light")
	}
}

func (l *Light) Close() error {
	return l.client.Close()
}
