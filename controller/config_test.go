package controller

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Config
		expectedErr bool
	}{
		{
			"Empty",
			"",
			Config{BaudRate: defaultBaudRate, ProbesInput: defaultProbes},
			false,
		},
		{
			"Full",
			`serial_port: /dev/ttyACM0
baud_rate: "9600"
twchart_addr: http://localhost:8080
session_name: Practice
probes: 1=Arm
cycle_period: 25ms
profile: Alternate
`,
			Config{
				SerialPort:  "/dev/ttyACM0",
				BaudRate:    "9600",
				TWChartAddr: "http://localhost:8080",
				SessionName: "Practice",
				ProbesInput: "1=Arm",
				CyclePeriod: "25ms",
				Profile:     "Alternate",
			},
			false,
		},
		{"Invalid", "serial_port: [", Config{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(strings.NewReader(tt.input))
			if tt.expectedErr != (err != nil) {
				t.Fatalf("expected err=%v, got=%v", tt.expectedErr, err)
			}
			if cfg != tt.expected {
				t.Errorf("expected=%+v, got=%+v", tt.expected, cfg)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(filename, []byte("serial_port: /dev/ttyACM0\nsession_name: File\n"), 0o600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{"SERIAL_PORT", "BAUD_RATE", "TWCHART_ADDR", "PROBES", "CYCLE_PERIOD", "PROFILE"} {
		t.Setenv(key, "")
	}
	t.Setenv("CONFIG_FILE", filename)
	t.Setenv("SESSION_NAME", "Env")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := Config{
		SerialPort:  "/dev/ttyACM0",
		BaudRate:    defaultBaudRate,
		SessionName: "Env",
		ProbesInput: defaultProbes,
	}
	if cfg != expected {
		t.Errorf("expected=%+v, got=%+v", expected, cfg)
	}
}

func TestConfigFromEnvMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := ConfigFromEnv()
	if err == nil {
		t.Error("expected error")
	}
}

func TestConfigValues(t *testing.T) {
	tests := []struct {
		name           string
		cfg            Config
		expectedBaud   int
		expectedPeriod time.Duration
		expectedFlag   byte
		expectedErr    bool
	}{
		{"Defaults", Config{BaudRate: "115200"}, 115200, defaultCyclePeriod, 0, false},
		{"Custom", Config{BaudRate: "9600", CyclePeriod: "50ms", Profile: "Baseline"}, 9600, 50 * time.Millisecond, 'B', false},
		{"UnknownProfileIsTuned", Config{BaudRate: "9600", Profile: "fast"}, 9600, defaultCyclePeriod, 'T', false},
		{"InvalidBaud", Config{BaudRate: "fast"}, 0, defaultCyclePeriod, 0, true},
		{"InvalidPeriod", Config{BaudRate: "9600", CyclePeriod: "-1s"}, 9600, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baud, baudErr := tt.cfg.baudRate()
			period, periodErr := tt.cfg.cyclePeriod()
			if tt.expectedErr != (baudErr != nil || periodErr != nil) {
				t.Errorf("expected err=%v, got=%v, %v", tt.expectedErr, baudErr, periodErr)
			}
			if baud != tt.expectedBaud {
				t.Errorf("expected baud=%d, got=%d", tt.expectedBaud, baud)
			}
			if period != tt.expectedPeriod {
				t.Errorf("expected period=%s, got=%s", tt.expectedPeriod, period)
			}
			if flag := tt.cfg.profileFlag(); flag != tt.expectedFlag {
				t.Errorf("expected profile flag=%q, got=%q", tt.expectedFlag, flag)
			}
		})
	}
}
