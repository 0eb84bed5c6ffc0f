package pid

// Status is a Loop's completion state
type Status uint8

const (
	// Incomplete means the loop has not been on target since it was last armed
	Incomplete Status = iota
	// Complete means the loop was on target for two consecutive calls to Control
	Complete
	// InRange means the loop was on target for a single call to Control
	InRange
)

func (s Status) String() string {
	switch s {
	case Complete:
		return "Complete"
	case InRange:
		return "InRange"
	default:
		fallthrough
	case Incomplete:
		return "Incomplete"
	}
}

// rank orders the states from least to most done. This is not the same as the numeric order
func (s Status) rank() int {
	switch s {
	case InRange:
		return 1
	case Complete:
		return 2
	default:
		return 0
	}
}

// Latch only moves toward Complete until it is explicitly armed again
type Latch struct {
	status Status
}

// Raise sets the latch to s if s is further along than the current state
func (l *Latch) Raise(s Status) {
	if s.rank() > l.status.rank() {
		l.status = s
	}
}

// Probe returns the current state
func (l *Latch) Probe() Status {
	return l.status
}

// Arm sets the latch back to Incomplete
func (l *Latch) Arm() {
	l.status = Incomplete
}
