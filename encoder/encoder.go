// Package encoder tracks quadrature encoder positions from edge events.
//
// Each Channel is written only by its own edge handler (OnEdge) or by an explicit Reset. Readers
// and the handler share the Channel's Gate: on the device the Gate masks interrupts, so taking it
// from the main loop suspends event delivery for the few instructions needed to copy the count.
//
// Edges are not debounced. A glitching line mis-counts silently
package encoder

import (
	"sync"
)

// DecodeMode selects how an edge is turned into a direction
type DecodeMode uint8

const (
	// DualInterrupt channels have a dedicated interrupt on the rising edge of the primary line
	// and sample the companion line to pick the direction
	DualInterrupt DecodeMode = iota
	// MuxImmediate channels share an interrupt that fires on both edges of the primary line.
	// The edge handler is told the new primary level and decides direction from the companion
	// level right away
	MuxImmediate
	// MuxLatched channels share an interrupt that fires on edges of either line. Companion edges
	// only record the companion level and primary edges compare the live companion level with the
	// recorded one. This avoids counting twice within one electrical transition
	MuxLatched
)

func (m DecodeMode) String() string {
	switch m {
	case MuxImmediate:
		return "MuxImmediate"
	case MuxLatched:
		return "MuxLatched"
	default:
		fallthrough
	case DualInterrupt:
		return "DualInterrupt"
	}
}

// Level reports the instantaneous level of a line. machine.Pin implements it
type Level interface {
	Get() bool
}

type lowLevel struct{}

func (lowLevel) Get() bool { return false }

// Config is used to set up a Channel
type Config struct {
	Mode DecodeMode
	// Companion is the line sampled to decide direction. A nil Companion always reads low
	Companion Level
	// Delta is added for each forward edge and subtracted for each backward edge. It can be
	// negative to reverse a channel that is mounted backwards. Zero means 1
	Delta int32
	// Seed is the initial count, usually a calibration offset for the mechanism's rest position
	Seed int32
	// Gate serializes the edge handler with Count and Reset. If nil, a sync.Mutex is used
	Gate sync.Locker
}

// Channel is one tracked encoder
type Channel struct {
	mode      DecodeMode
	companion Level
	delta     int32
	gate      sync.Locker

	count int32
	// memory is the last companion level seen by a MuxLatched channel
	memory bool
}

// NewChannel creates a Channel from the Config
func NewChannel(cfg Config) *Channel {
	c := &Channel{}
	c.configure(cfg)
	return c
}

func (c *Channel) configure(cfg Config) {
	if cfg.Companion == nil {
		cfg.Companion = lowLevel{}
	}
	if cfg.Delta == 0 {
		cfg.Delta = 1
	}
	if cfg.Gate == nil {
		cfg.Gate = &sync.Mutex{}
	}

	c.mode = cfg.Mode
	c.companion = cfg.Companion
	c.delta = cfg.Delta
	c.gate = cfg.Gate
	c.count = cfg.Seed
	c.memory = false
}

// Mode returns the Channel's DecodeMode
func (c *Channel) Mode() DecodeMode {
	return c.mode
}

// Count returns the current count
func (c *Channel) Count() int32 {
	c.gate.Lock()
	n := c.count
	c.gate.Unlock()
	return n
}

// Reset sets the count to v
func (c *Channel) Reset(v int32) {
	c.gate.Lock()
	c.count = v
	c.gate.Unlock()
}

// OnEdge is the edge handler. For DualInterrupt channels state is ignored. For MuxImmediate
// channels state is the new level of the primary line. For MuxLatched channels state is true
// when the primary line changed and false when the companion line changed.
//
// The count wraps on overflow
func (c *Channel) OnEdge(state bool) {
	c.gate.Lock()
	c.count += c.step(state)
	c.gate.Unlock()
}

func (c *Channel) step(state bool) int32 {
	high := c.companion.Get()

	switch c.mode {
	case MuxImmediate:
		// rising primary: companion high is forward. falling primary: companion low is forward
		if state == high {
			return c.delta
		}
		return -c.delta
	case MuxLatched:
		if !state {
			c.memory = high
			return 0
		}
		switch {
		case !high && c.memory:
			return -c.delta
		case high && !c.memory:
			return c.delta
		}
		return 0
	default:
		if !high {
			return -c.delta
		}
		return c.delta
	}
}
