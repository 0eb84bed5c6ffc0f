package controller

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/calvinmclean/rackbot"
)

const (
	defaultBaudRate    = "115200"
	defaultProbes      = "1=Arm,2=Wrist"
	defaultCyclePeriod = 20 * time.Millisecond
)

// Config configures the host link. Fields are strings so they can be bound directly to
// form entries
type Config struct {
	SerialPort  string `yaml:"serial_port"`
	BaudRate    string `yaml:"baud_rate"`
	TWChartAddr string `yaml:"twchart_addr"`
	SessionName string `yaml:"session_name"`
	ProbesInput string `yaml:"probes"`
	CyclePeriod string `yaml:"cycle_period"`
	Profile     string `yaml:"profile"`
}

// LoadConfig reads YAML config and applies defaults for missing fields
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	err := yaml.NewDecoder(r).Decode(&cfg)
	if err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ConfigFromEnv reads the file named by CONFIG_FILE, if set, then overrides its fields with any
// of SERIAL_PORT, BAUD_RATE, TWCHART_ADDR, SESSION_NAME, PROBES, CYCLE_PERIOD, and PROFILE
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if filename := os.Getenv("CONFIG_FILE"); filename != "" {
		f, err := os.Open(filename)
		if err != nil {
			return Config{}, fmt.Errorf("error opening config file: %w", err)
		}
		defer f.Close()

		cfg, err = LoadConfig(f)
		if err != nil {
			return Config{}, err
		}
	}

	override := func(field *string, key string) {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}
	override(&cfg.SerialPort, "SERIAL_PORT")
	override(&cfg.BaudRate, "BAUD_RATE")
	override(&cfg.TWChartAddr, "TWCHART_ADDR")
	override(&cfg.SessionName, "SESSION_NAME")
	override(&cfg.ProbesInput, "PROBES")
	override(&cfg.CyclePeriod, "CYCLE_PERIOD")
	override(&cfg.Profile, "PROFILE")

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BaudRate == "" {
		c.BaudRate = defaultBaudRate
	}
	if c.ProbesInput == "" {
		c.ProbesInput = defaultProbes
	}
}

func (c Config) baudRate() (int, error) {
	baud, err := strconv.Atoi(c.BaudRate)
	if err != nil || baud <= 0 {
		return 0, fmt.Errorf("invalid baud rate: %q", c.BaudRate)
	}
	return baud, nil
}

func (c Config) cyclePeriod() (time.Duration, error) {
	if c.CyclePeriod == "" {
		return defaultCyclePeriod, nil
	}
	d, err := time.ParseDuration(c.CyclePeriod)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid cycle period: %q", c.CyclePeriod)
	}
	return d, nil
}

// profileFlag returns the 'P' command input for the configured profile, or 0 if none is set
func (c Config) profileFlag() byte {
	if c.Profile == "" {
		return 0
	}
	return rackbot.ParseProfile(c.Profile).String()[0]
}
