// Package sequencer runs the autonomous scoring routine.
//
// Step is called once for every fresh input frame. Each call evaluates the current phase, which
// may move to the next phase, then computes drive and arm outputs from the Drive and Arm modes the
// phase selected. All timing is counted in cycles; nothing here reads a clock
package sequencer

import (
	"math"

	"github.com/calvinmclean/rackbot"
	"github.com/calvinmclean/rackbot/mix"
	"github.com/calvinmclean/rackbot/pid"
)

// Cycle counts and setpoints used by the phases
const (
	RepositionCycles   = 220
	RepositionDistance = -60

	SearchCycles = 100

	RetreatDriveCycles = 80
	RetreatSweepAfter  = 30
	RetreatDistance    = -20
	RetreatWrist       = 300

	SweepTurnCycles  = 50
	SweepArcCycles   = 200
	SweepTurnAngle   = 55
	SweepArcAngle    = 10
	SweepArcDistance = -32
)

// Loops are the PID loops driven by the Sequencer. They are owned by the caller so their gains
// are configured once at startup and survive leaving and entering autonomous mode
type Loops struct {
	Distance *pid.Loop
	Angle    *pid.Loop
	// Heading holds the captured gyro heading while repositioning
	Heading *pid.Loop
	Arm     *pid.Loop
	Wrist   *pid.Loop
}

// DefaultLoops creates Loops with the tuned gains
func DefaultLoops() Loops {
	return Loops{
		Distance: pid.New(DefaultDistanceConfig),
		Angle:    pid.New(DefaultAngleConfig),
		Heading:  pid.New(DefaultHeadingConfig),
		Arm:      pid.New(DefaultArmConfig),
		Wrist:    pid.New(DefaultWristConfig),
	}
}

var (
	DefaultDistanceConfig = pid.Config{Kp: 95, IntegralLimit: 100, Threshold: 8}
	DefaultAngleConfig    = pid.Config{Kp: 55, IntegralLimit: 100, Threshold: 25}
	DefaultHeadingConfig  = pid.Config{Kp: 20, Threshold: 30}
	DefaultArmConfig      = pid.Config{Kp: 100, IntegralLimit: 120, Threshold: 35}
	DefaultWristConfig    = pid.Config{Kp: 33, IntegralLimit: 20, Threshold: 80}
)

// Config is used when entering autonomous mode
type Config struct {
	Profile rackbot.Profile
	// Height is read from the selector switch once on entry
	Height rackbot.ScoreHeight
	// Loops that are nil are created with the default gains
	Loops Loops
}

// Inputs are everything read at the start of a cycle
type Inputs struct {
	Heading    int32
	Detections uint8
	Pan        uint8
	Tilt       uint8
	Switches   rackbot.Switches

	ArmCount   int32
	WristCount int32
}

// Setpoints are carried between cycles
type Setpoints struct {
	Distance int32
	Angle    int32
	Arm      int32
	Wrist    int32
}

// Sequencer is the autonomous state machine
type Sequencer struct {
	table  *profileTable
	height int
	loops  Loops

	phase   rackbot.Phase
	counter int32
	sp      Setpoints
	heading int32

	drive rackbot.DriveMode
	arm   rackbot.ArmMode
	grasp bool

	holding bool
	hold    [2]mix.Command
}

// New creates a Sequencer that starts in PhaseReposition
func New(cfg Config) *Sequencer {
	s := &Sequencer{}
	s.Init(cfg)
	return s
}

// Init resets all state for a new autonomous run. Every loop is reset, so no integral or on-target
// history carries over from an earlier run
func (s *Sequencer) Init(cfg Config) {
	loops := cfg.Loops
	fill := func(l **pid.Loop, c pid.Config) {
		if *l == nil {
			*l = pid.New(c)
		}
	}
	fill(&loops.Distance, DefaultDistanceConfig)
	fill(&loops.Angle, DefaultAngleConfig)
	fill(&loops.Heading, DefaultHeadingConfig)
	fill(&loops.Arm, DefaultArmConfig)
	fill(&loops.Wrist, DefaultWristConfig)

	*s = Sequencer{
		table:  tableFor(cfg.Profile),
		height: heightIndex(cfg.Height),
		loops:  loops,
		phase:  rackbot.PhaseReposition,
		drive:  rackbot.DriveNone,
		arm:    rackbot.ArmNone,
	}
	s.setPosture(PostureHome)

	s.loops.Distance.Reset()
	s.loops.Angle.Reset()
	s.loops.Heading.Reset()
	s.loops.Arm.Reset()
	s.loops.Wrist.Reset()
}

// Phase returns the current phase
func (s *Sequencer) Phase() rackbot.Phase {
	return s.phase
}

// Counter returns the number of cycles spent in the current phase
func (s *Sequencer) Counter() int32 {
	return s.counter
}

// Modes returns the Drive and Arm modes selected by the last cycle
func (s *Sequencer) Modes() (rackbot.DriveMode, rackbot.ArmMode) {
	return s.drive, s.arm
}

// Setpoints returns the current setpoints
func (s *Sequencer) Setpoints() Setpoints {
	return s.sp
}

// Loops returns the loops used by the Sequencer
func (s *Sequencer) Loops() Loops {
	return s.loops
}

// Hold overrides the drive mode with DriveHoldStraight, driving left and right at fixed commands
// until Release is called. Phases and the arm keep running
func (s *Sequencer) Hold(left, right mix.Command) {
	s.holding = true
	s.hold = [2]mix.Command{left, right}
}

// Release ends a Hold
func (s *Sequencer) Release() {
	s.holding = false
}

// Step runs a single cycle and returns the outputs to publish
func (s *Sequencer) Step(in Inputs) rackbot.Outputs {
	out := rackbot.NeutralOutputs()
	out.CameraHold = s.phase == rackbot.PhaseReposition

	s.evaluate(in)
	if s.holding {
		s.drive = rackbot.DriveHoldStraight
	}

	s.applyDrive(in, &out)
	s.applyArm(in, &out)
	out.Grasp = s.grasp

	return out
}

func (s *Sequencer) evaluate(in Inputs) {
	switch s.phase {
	case rackbot.PhaseReposition:
		s.reposition(in)
	case rackbot.PhaseTargetSearch:
		s.targetSearch(in)
	case rackbot.PhaseApproachNear:
		s.approach(in, &s.table.near[s.height])
	case rackbot.PhaseApproachFar:
		s.approach(in, &approachFar[s.height])
	case rackbot.PhaseScore:
		s.score()
	case rackbot.PhaseRetreat:
		s.retreat(in)
	case rackbot.PhaseSweep:
		s.sweep(in)
	}
}

// reposition drives away from the starting position holding the starting heading. The heading is
// captured again on the second cycle since the gyro reading is not settled on the first
func (s *Sequencer) reposition(in Inputs) {
	s.drive = rackbot.DriveToAngle
	s.arm = rackbot.ArmNone

	if s.counter <= 1 {
		s.heading = in.Heading
	}

	s.sp.Distance = RepositionDistance
	s.sp.Angle = sub(in.Heading, s.heading)

	if !in.Switches.OtherSide || s.counter+1 >= RepositionCycles {
		s.next(rackbot.PhaseTargetSearch)
		return
	}
	s.tick()
}

// targetSearch holds the search posture until the arm is settled and the target has been seen
func (s *Sequencer) targetSearch(in Inputs) {
	s.drive = rackbot.DriveNone
	s.arm = rackbot.ArmCorrect

	if p := s.table.search[s.height]; p != nil {
		s.setPosture(*p)
	}

	s.loops.Distance.Arm()
	s.loops.Angle.Arm()

	// counter holds the cycles already spent here, so this is cycle counter+1
	if s.armSettled() && in.Detections > 0 && s.counter+1 >= SearchCycles {
		if in.Switches.OtherSide {
			s.next(rackbot.PhaseApproachFar)
		} else {
			s.next(rackbot.PhaseApproachNear)
		}
		return
	}
	s.tick()
}

// approach drives toward the target while raising the arm once it is close enough
func (s *Sequencer) approach(in Inputs, rule *approachRule) {
	if in.Detections > 0 {
		s.drive = rackbot.DriveToAngle
		s.arm = rackbot.ArmCorrect
	} else {
		s.drive = rackbot.DriveNone
		s.arm = rackbot.ArmNone
	}

	s.sp.Distance, s.sp.Angle = rule.setpoints(in.Pan, in.Tilt)
	if p := rule.posture(in.Pan); p != nil {
		s.setPosture(*p)
	}

	s.loops.Arm.Arm()
	s.loops.Wrist.Arm()

	if s.loops.Distance.Status() == pid.Complete && s.loops.Angle.Status() == pid.Complete {
		s.next(rackbot.PhaseScore)
		return
	}
	s.tick()
}

// score moves to the scoring posture and releases the game piece once the arm is settled
func (s *Sequencer) score() {
	s.drive = rackbot.DriveNone
	s.arm = rackbot.ArmCorrect

	s.setPosture(s.table.score[s.height])

	s.loops.Distance.Arm()
	s.loops.Angle.Arm()

	if s.counter > 0 && s.armSettled() {
		s.grasp = true
		s.next(rackbot.PhaseRetreat)
		return
	}
	s.tick()
}

// retreat backs away from the rack with the wrist flicked up
func (s *Sequencer) retreat(in Inputs) {
	if s.counter <= RetreatDriveCycles {
		s.drive = rackbot.DriveToAngle
	} else {
		s.drive = rackbot.DriveNone
	}
	s.arm = rackbot.ArmCorrect

	s.sp.Wrist = RetreatWrist
	s.sp.Distance = RetreatDistance
	s.sp.Angle = 0

	if s.counter > RetreatSweepAfter && in.Switches.SweepEnable && !in.Switches.OtherSide {
		s.loops.Distance.Arm()
		s.loops.Angle.Arm()
		s.next(rackbot.PhaseSweep)
		return
	}
	s.tick()
}

// sweep turns away from the rack then arcs along it. It never ends
func (s *Sequencer) sweep(in Inputs) {
	s.drive = rackbot.DriveToAngle
	s.arm = rackbot.ArmCorrect

	s.grasp = false
	s.setPosture(PostureHome)

	var distance, angle int32
	switch {
	case s.counter < SweepTurnCycles:
		distance, angle = 0, SweepTurnAngle
	case s.counter < SweepArcCycles:
		distance, angle = SweepArcDistance, SweepArcAngle
	default:
		distance, angle = SweepArcDistance, 0
	}
	if !in.Switches.SweepDirection {
		angle = -angle
	}
	s.sp.Distance = distance
	s.sp.Angle = angle

	s.tick()
}

func (s *Sequencer) applyDrive(in Inputs, out *rackbot.Outputs) {
	switch s.drive {
	case rackbot.DriveHoldStraight:
		out.DriveLeft, out.DriveRight = s.hold[0], s.hold[1]
	case rackbot.DriveToAngle:
		position := int32(s.loops.Distance.Control(s.sp.Distance))

		angleLoop := s.loops.Angle
		if s.phase == rackbot.PhaseReposition {
			angleLoop = s.loops.Heading
		}
		angle := int32(angleLoop.Control(s.sp.Angle))

		if in.Detections > 0 || s.phase == rackbot.PhaseSweep || s.phase == rackbot.PhaseReposition {
			out.DriveRight = mix.LimitMix(2000 + position + angle - int32(mix.Neutral))
			out.DriveLeft = mix.LimitMix(2000 + position - angle + int32(mix.Neutral))
		}
	}
}

func (s *Sequencer) applyArm(in Inputs, out *rackbot.Outputs) {
	if s.arm != rackbot.ArmCorrect {
		return
	}
	arm := s.loops.Arm.Control(sub(s.sp.Arm, in.ArmCount))
	out.ArmLeft, out.ArmRight = arm, arm
	out.Wrist = s.loops.Wrist.Control(sub(s.sp.Wrist, in.WristCount))
}

// tick counts a cycle that stayed in the current phase
func (s *Sequencer) tick() {
	if s.counter < math.MaxInt32 {
		s.counter++
	}
}

func (s *Sequencer) next(p rackbot.Phase) {
	s.phase = p
	s.counter = 0
}

func (s *Sequencer) armSettled() bool {
	return s.loops.Arm.Status() == pid.Complete && s.loops.Wrist.Status() == pid.Complete
}

// setPosture clamps only the arm. The wrist rests past the arm's range at home
func (s *Sequencer) setPosture(p Posture) {
	s.sp.Arm = clamp(p.Arm, ArmLimit)
	s.sp.Wrist = p.Wrist
}

func clamp(v, limit int32) int32 {
	switch {
	case v > limit:
		return limit
	case v < -limit:
		return -limit
	default:
		return v
	}
}

// sub returns a - b saturated to the int32 range
func sub(a, b int32) int32 {
	d := int64(a) - int64(b)
	switch {
	case d > math.MaxInt32:
		return math.MaxInt32
	case d < math.MinInt32:
		return math.MinInt32
	default:
		return int32(d)
	}
}
