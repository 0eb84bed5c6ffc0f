package device

import (
	"errors"
	"machine"

	"github.com/calvinmclean/rackbot/mix"

	"tinygo.org/x/drivers/servo"
)

// Pulse widths for full reverse and full forward
const (
	minPulse = 1000
	maxPulse = 2000
)

// motor drives one or more motor controllers with the same command
type motor struct {
	servos []servo.Servo
	cfg    MotorConfig
}

func newMotor(cfg MotorConfig) (*motor, error) {
	m := &motor{cfg: cfg}
	if cfg.PWM == nil {
		return m, nil
	}

	array, err := servo.NewArray(cfg.PWM)
	if err != nil {
		return nil, errors.New("error creating servo array: " + err.Error())
	}

	for _, pin := range cfg.Pins {
		s, err := array.Add(pin)
		if err != nil {
			return nil, errors.New("error adding servo: " + err.Error())
		}
		m.servos = append(m.servos, s)
	}

	if cfg.Limits != nil {
		cfg.Limits.Max.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		cfg.Limits.Min.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}

	m.Set(mix.Neutral)
	return m, nil
}

// Set applies the motor's adjustments to the command and outputs it. It returns the command that
// was actually sent
func (m *motor) Set(c mix.Command) mix.Command {
	if m.cfg.Invert {
		c = mix.FlipAxis(c, mix.Neutral)
	}
	if m.cfg.ToneDen != 0 {
		c = mix.Tone(c, m.cfg.ToneNum, m.cfg.ToneDen)
	}
	if m.cfg.Limits != nil {
		c = mix.LimitMax(!m.cfg.Limits.Max.Get(), c)
		c = mix.LimitMin(!m.cfg.Limits.Min.Get(), c)
	}

	us := pulse(c)
	for _, s := range m.servos {
		s.SetMicroseconds(us)
	}
	return c
}

// pulse converts a command to a pulse width in microseconds
func pulse(c mix.Command) int16 {
	return int16(minPulse + int32(c)*(maxPulse-minPulse)/int32(mix.Max))
}
