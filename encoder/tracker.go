package encoder

// NumChannels is the number of encoder inputs the device supports
const NumChannels = 6

// ID identifies a Channel in a Tracker
type ID uint8

// Tracker is a fixed set of Channels. Operations on an out of range ID do nothing and
// Get returns 0
type Tracker struct {
	channels [NumChannels]Channel
}

// NewTracker creates a Tracker with every Channel in DualInterrupt mode and a zero count
func NewTracker() *Tracker {
	t := &Tracker{}
	for i := range t.channels {
		t.channels[i].configure(Config{})
	}
	return t
}

// Configure replaces the Channel's configuration and sets its count to cfg.Seed. It must be
// called before the Channel's edge handler is attached
func (t *Tracker) Configure(id ID, cfg Config) {
	if !valid(id) {
		return
	}
	t.channels[id].configure(cfg)
}

// Channel returns the Channel for id, or nil if id is out of range
func (t *Tracker) Channel(id ID) *Channel {
	if !valid(id) {
		return nil
	}
	return &t.channels[id]
}

// Get returns the Channel's count
func (t *Tracker) Get(id ID) int32 {
	if !valid(id) {
		return 0
	}
	return t.channels[id].Count()
}

// Reset sets the Channel's count to v
func (t *Tracker) Reset(id ID, v int32) {
	if !valid(id) {
		return
	}
	t.channels[id].Reset(v)
}

// OnEdge runs the Channel's edge handler
func (t *Tracker) OnEdge(id ID, state bool) {
	if !valid(id) {
		return
	}
	t.channels[id].OnEdge(state)
}

// Snapshot reads every Channel. Each Channel is read under its own Gate, so the result is not
// an atomic view across Channels
func (t *Tracker) Snapshot() [NumChannels]int32 {
	var counts [NumChannels]int32
	for i := range t.channels {
		counts[i] = t.channels[i].Count()
	}
	return counts
}

func valid(id ID) bool {
	return int(id) < NumChannels
}
