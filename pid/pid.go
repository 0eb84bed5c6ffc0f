// Package pid implements a fixed-point PID loop that produces motor commands.
//
// Gains are scaled integers: Kp is in hundredths, Ki in thousandths and Kd in tenths. All math is
// done in int64 and the output is saturated to the command domain, so Control never fails
package pid

import (
	"github.com/calvinmclean/rackbot/mix"
)

// Config has the gains and limits for a Loop
type Config struct {
	// Kp is the proportional gain x100
	Kp int32
	// Ki is the integral gain x1000
	Ki int32
	// Kd is the derivative gain x10
	Kd int32

	// IntegralLimit bounds the accumulated error to +/- IntegralLimit
	IntegralLimit int32
	// Threshold is the largest error magnitude that counts as being on target
	Threshold int32
}

// Loop is a single PID controller. The zero value is a loop with all gains at zero
type Loop struct {
	cfg Config

	prevErr  int32
	integral int32
	// onTarget is true when the previous call to Control was within Threshold
	onTarget bool

	latch Latch
}

// New creates a Loop from the Config
func New(cfg Config) *Loop {
	l := &Loop{}
	l.Init(cfg)
	return l
}

// Init stores the configuration and clears all running state
func (l *Loop) Init(cfg Config) {
	if cfg.IntegralLimit < 0 {
		cfg.IntegralLimit = -cfg.IntegralLimit
	}
	l.cfg = cfg
	l.Reset()
}

// Control runs one iteration of the loop for the error and returns the command
func (l *Loop) Control(err int32) mix.Command {
	e := int64(err)

	p := int64(l.cfg.Kp) * e / 100

	integral := clamp(int64(l.integral)+e, int64(l.cfg.IntegralLimit))
	l.integral = int32(integral)
	i := int64(l.cfg.Ki) * integral / 1000

	d := int64(l.cfg.Kd) * (e - int64(l.prevErr)) / 10

	l.prevErr = err

	within := abs(e) <= int64(l.cfg.Threshold)
	if within {
		if l.onTarget {
			l.latch.Raise(Complete)
		} else {
			l.latch.Raise(InRange)
		}
	}
	l.onTarget = within

	return mix.Clamp(p + i + d + int64(mix.Neutral))
}

// Status returns the completion latch without changing it
func (l *Loop) Status() Status {
	return l.latch.Probe()
}

// Arm clears the completion latch so the loop can report completion again. Accumulated error
// is kept
func (l *Loop) Arm() {
	l.latch.Arm()
}

// Reset clears the completion latch, the integral and the previous error
func (l *Loop) Reset() {
	l.prevErr = 0
	l.integral = 0
	l.onTarget = false
	l.latch.Arm()
}

// SetKp changes the proportional gain without touching accumulated state
func (l *Loop) SetKp(kp int32) {
	l.cfg.Kp = kp
}

// Integral returns the accumulated error
func (l *Loop) Integral() int32 {
	return l.integral
}

// Config returns the Loop's current configuration
func (l *Loop) Config() Config {
	return l.cfg
}

func clamp(v, limit int64) int64 {
	switch {
	case v > limit:
		return limit
	case v < -limit:
		return -limit
	default:
		return v
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
