package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env"
	"go.uber.org/zap"

	"github.com/calegria/midi-note-colors/internal/actuator"
	"github.com/calegria/midi-note-colors/internal/colors"
	"github.com/calegria/midi-note-colors/internal/lights"
	"github.com/calegria/midi-note-colors/internal/lights/lifx"
	"github.com/calegria/midi-note-colors/internal/lights/lifxlan"
	"github.com/calegria/midi-note-colors/internal/logging"
	"github.com/calegria/midi-note-colors/internal/midi"
	"github.com/calegria/midi-note-colors/internal/router"
)

var (
	logger = logging.New("main")
	config = MidiLightConfig{}
)

type MidiLightConfig struct {
	MidiPort         string        `env:"MIDI_PORT" envDefault:"midilight"`
	Channels         []int         `env:"MIDI_CHANNELS" envDefault:"0" envSeparator:","`
	Transition       time.Duration `env:"TRANSITION" envDefault:"0ms"`
	RateInterval     time.Duration `env:"RATE_INTERVAL" envDefault:"50ms"`
	LightType        string        `env:"LIGHT_TYPE" envDefault:"LIFX"`
	DiscoveryTimeout time.Duration `env:"DISCOVERY_TIMEOUT" envDefault:"30s"`
	MinKelvin        int           `env:"MIN_KELVIN" envDefault:"2500"`
	MaxKelvin        int           `env:"MAX_KELVIN" envDefault:"9000"`
	Debug            bool          `env:"DEBUG" envDefault:"false"`
}

func validate(config MidiLightConfig) error {
	if config.Transition < 0 {
		return fmt.Errorf("TRANSITION must not be negative: %v", config.Transition)
	}
	if config.RateInterval <= 0 {
		return fmt.Errorf("RATE_INTERVAL must be positive: %v", config.RateInterval)
	}
	if len(config.Channels) == 0 {
		return fmt.Errorf("MIDI_CHANNELS must name at least one channel")
	}
	if config.MinKelvin >= config.MaxKelvin {
		return fmt.Errorf("MIN_KELVIN (%d) must be below MAX_KELVIN (%d)", config.MinKelvin, config.MaxKelvin)
	}
	return nil
}

func main() {
	defer logger.Sync()

	err := env.Parse(&config)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse environment variables")
	}
	logging.SetDebug(config.Debug)

	if err := validate(config); err != nil {
		logger.With(zap.Error(err)).Fatal("Invalid configuration")
	}

	logger.With(zap.Any("config", config)).Info("Starting midi note colors")

	logger.Info("Adjust MIDI_PORT to rename the virtual MIDI input port.")
	logger.Info("Adjust MIDI_CHANNELS to change the channels to listen on, comma separated (0-15).")
	logger.Info("Adjust TRANSITION for the initial color transition duration. Modulation (CC 1) changes it live.")
	logger.Info("Adjust RATE_INTERVAL to change the minimum spacing between light commands.")
	logger.Info("LIGHT_TYPE supports LIFX and LIFXLAN.")
	logger.Info("Hue follows notes, lightness follows octaves, saturation follows velocity.")
	logger.Info("Pitch bend drives color temperature between MIN_KELVIN and MAX_KELVIN.")
	logger.Info("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var lightService lights.LightService
	switch config.LightType {
	case "LIFX":
		lightService, err = lifx.Connect(ctx, lifx.Config{DiscoveryTimeout: config.DiscoveryTimeout})
	case "LIFXLAN":
		lightService, err = lifxlan.Connect(ctx, lifxlan.Config{DiscoveryTimeout: config.DiscoveryTimeout})
	default:
		logger.Fatalf("unknown light type: %v", config.LightType)
	}
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to connect to a light")
	}

	input, err := midi.Open(config.MidiPort)
	if err != nil {
		_ = lightService.Close()
		logger.With(zap.Error(err)).Fatal("Failed to open MIDI input")
	}

	scheduler := actuator.New(lightService, actuator.Config{
		RateInterval: config.RateInterval,
		Transition:   config.Transition,
		Kelvin:       colors.PitchToKelvin(0, config.MinKelvin, config.MaxKelvin),
	})

	eventRouter, err := router.New(scheduler, router.Config{
		Channels:  config.Channels,
		MinKelvin: config.MinKelvin,
		MaxKelvin: config.MaxKelvin,
	})
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Invalid configuration")
	}

	go eventRouter.Run(ctx, input.Events())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
	logger.Info("Shutting down")
	cancel()

	if err := input.Close(); err != nil {
		logger.With(zap.Error(err)).Warn("Failed to close MIDI input")
	}
	scheduler.Close()
	if err := lightService.Close(); err != nil {
		logger.With(zap.Error(err)).Warn("Failed to close light connection")
	}
}
