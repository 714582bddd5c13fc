// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	log "github.com/sirupsen/logrus"
)

// Motion sources.
const (
	SourceMock   = "mock"
	SourceIMU    = "imu"
	SourceSerial = "serial"
	SourceMQTT   = "mqtt"
)

// Renderers.
const (
	RendererConsole = "console"
	RendererOLED    = "oled"
	RendererWeb     = "web"
	RendererMQTT    = "mqtt"
)

var ErrUnknownKey = errors.New("unknown config key")

// Config holds all application configuration values.
// Every field can be overridden by the DICE_* environment variable in its tag.
type Config struct {
	// MQTT
	MQTTBroker           string `env:"DICE_MQTT_BROKER"`
	MQTTClientIDGame     string `env:"DICE_MQTT_CLIENT_ID_GAME"`
	MQTTClientIDProducer string `env:"DICE_MQTT_CLIENT_ID_PRODUCER"`
	MQTTClientIDConsole  string `env:"DICE_MQTT_CLIENT_ID_CONSOLE"`

	// Topics
	TopicMotion string `env:"DICE_TOPIC_MOTION"`
	TopicState  string `env:"DICE_TOPIC_STATE"`

	// Where samples come from and where frames go
	MotionSource string   `env:"DICE_MOTION_SOURCE"`
	Renderers    []string `env:"DICE_RENDERERS" envSeparator:","`

	// IMU Hardware
	IMUSPIDevice    string  `env:"DICE_IMU_SPI_DEVICE"`
	IMUCSPin        string  `env:"DICE_IMU_CS_PIN"`
	IMUAccelLSBPerG float64 `env:"DICE_IMU_ACCEL_LSB_PER_G"`

	// Serial sensor board
	SerialPort     string `env:"DICE_SERIAL_PORT"`
	SerialBaudRate int    `env:"DICE_SERIAL_BAUD_RATE"`

	// Timing
	SampleInterval int `env:"DICE_SAMPLE_INTERVAL"` // milliseconds
	FrameInterval  int `env:"DICE_FRAME_INTERVAL"`  // milliseconds
	RollDuration   int `env:"DICE_ROLL_DURATION"`   // milliseconds

	// Game
	ShakeThreshold float64 `env:"DICE_SHAKE_THRESHOLD"`
	EaseRate       float64 `env:"DICE_EASE_RATE"`
	Seed           int64   `env:"DICE_SEED"` // 0 = time based

	// Web Server
	WebServerPort int `env:"DICE_WEB_SERVER_PORT"`

	LogLevel string `env:"DICE_LOG_LEVEL"`
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config that runs the game on the mock source with the
// console renderer.
func Default() *Config {
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDGame:     "shake-dice-game",
		MQTTClientIDProducer: "shake-dice-producer",
		MQTTClientIDConsole:  "shake-dice-console",
		TopicMotion:          "dice/motion",
		TopicState:           "dice/state",
		MotionSource:         SourceMock,
		Renderers:            []string{RendererConsole},
		IMUSPIDevice:         "/dev/spidev0.0",
		IMUCSPin:             "8",
		IMUAccelLSBPerG:      16384,
		SerialPort:           "/dev/ttyUSB0",
		SerialBaudRate:       115200,
		SampleInterval:       20,
		FrameInterval:        16,
		RollDuration:         500,
		ShakeThreshold:       2.5,
		EaseRate:             6,
		WebServerPort:        8080,
		LogLevel:             "info",
	}
}

// Load reads the configuration file on top of the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFile(configPath); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(configPath string) error {
	file, err := os.Open(configPath)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := c.setValue(key, value); err != nil {
			return fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error

	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_GAME":
		c.MQTTClientIDGame = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_MOTION":
		c.TopicMotion = value
	case "TOPIC_STATE":
		c.TopicState = value

	case "MOTION_SOURCE":
		c.MotionSource = strings.ToLower(value)
	case "RENDERERS":
		c.Renderers = splitList(value)

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_LSB_PER_G":
		c.IMUAccelLSBPerG, err = parseFloat(key, value)

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parseInt(key, value)

	// Timing
	case "SAMPLE_INTERVAL":
		c.SampleInterval, err = parseInt(key, value)
	case "FRAME_INTERVAL":
		c.FrameInterval, err = parseInt(key, value)
	case "ROLL_DURATION":
		c.RollDuration, err = parseInt(key, value)

	// Game
	case "SHAKE_THRESHOLD":
		c.ShakeThreshold, err = parseFloat(key, value)
	case "EASE_RATE":
		c.EaseRate, err = parseFloat(key, value)
	case "SEED":
		c.Seed, err = strconv.ParseInt(value, 10, 64)
		if err != nil {
			err = fmt.Errorf("invalid SEED %q: %w", value, err)
		}

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)

	case "LOG_LEVEL":
		c.LogLevel = value

	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return err
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// normalize applies the same casing and trimming to environment overrides
// that setValue applies to file values.
func (c *Config) normalize() {
	c.MotionSource = strings.ToLower(strings.TrimSpace(c.MotionSource))
	c.Renderers = splitList(strings.Join(c.Renderers, ","))
	c.LogLevel = strings.TrimSpace(c.LogLevel)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// validate checks that all required fields are set and in range.
func (c *Config) validate() error {
	switch c.MotionSource {
	case SourceMock, SourceIMU, SourceSerial, SourceMQTT:
	default:
		return fmt.Errorf("MOTION_SOURCE must be one of mock, imu, serial, mqtt, got %q", c.MotionSource)
	}
	if len(c.Renderers) == 0 {
		return fmt.Errorf("RENDERERS is required")
	}
	for _, r := range c.Renderers {
		switch r {
		case RendererConsole, RendererOLED, RendererWeb, RendererMQTT:
		default:
			return fmt.Errorf("unknown renderer %q in RENDERERS", r)
		}
	}
	if c.MotionSource == SourceMQTT || c.HasRenderer(RendererMQTT) {
		if c.MQTTBroker == "" {
			return fmt.Errorf("MQTT_BROKER is required")
		}
	}
	if c.ShakeThreshold <= 0 {
		return fmt.Errorf("SHAKE_THRESHOLD must be positive, got %v", c.ShakeThreshold)
	}
	if c.RollDuration <= 0 {
		return fmt.Errorf("ROLL_DURATION must be positive, got %d", c.RollDuration)
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL must be positive, got %d", c.SampleInterval)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("FRAME_INTERVAL must be positive, got %d", c.FrameInterval)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return nil
}

// HasRenderer reports whether name is in the configured renderer list.
func (c *Config) HasRenderer(name string) bool {
	for _, r := range c.Renderers {
		if r == name {
			return true
		}
	}
	return false
}

func (c *Config) SampleEvery() time.Duration {
	return time.Duration(c.SampleInterval) * time.Millisecond
}

func (c *Config) FrameEvery() time.Duration {
	return time.Duration(c.FrameInterval) * time.Millisecond
}

func (c *Config) RollFor() time.Duration {
	return time.Duration(c.RollDuration) * time.Millisecond
}

// ApplyLogLevel sets the process-wide log level.
func (c *Config) ApplyLogLevel() {
	if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
}

// InitGlobal initializes the global configuration. Only the first call loads.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
		if err == nil {
			globalConfig.ApplyLogLevel()
		}
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
