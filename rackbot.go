package rackbot

import (
	"github.com/calvinmclean/rackbot/mix"
)

const TerminationChar = 0x04 // ascii EOT (End of Transmission)

// Version is the firmware version reported by the 'v' command
const Version = "0.1.0"

// VersionPrefix starts the line printed by the 'v' command
const VersionPrefix = "version="

// Phase is the current step of the autonomous routine
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseReposition
	PhaseTargetSearch
	PhaseApproachNear
	PhaseApproachFar
	PhaseScore
	PhaseRetreat
	PhaseSweep
)

func (p Phase) String() string {
	switch p {
	case PhaseReposition:
		return "Reposition"
	case PhaseTargetSearch:
		return "TargetSearch"
	case PhaseApproachNear:
		return "ApproachNear"
	case PhaseApproachFar:
		return "ApproachFar"
	case PhaseScore:
		return "Score"
	case PhaseRetreat:
		return "Retreat"
	case PhaseSweep:
		return "Sweep"
	default:
		fallthrough
	case PhaseIdle:
		return "Idle"
	}
}

// ParsePhase is the inverse of Phase.String. Unknown names are PhaseIdle
func ParsePhase(s string) Phase {
	for p := PhaseIdle; p <= PhaseSweep; p++ {
		if p.String() == s {
			return p
		}
	}
	return PhaseIdle
}

// DriveMode selects how the drive outputs are computed each cycle
type DriveMode uint8

const (
	DriveNone DriveMode = iota
	DriveHoldStraight
	DriveToAngle
)

func (m DriveMode) String() string {
	switch m {
	case DriveHoldStraight:
		return "HoldStraight"
	case DriveToAngle:
		return "ToAngle"
	default:
		fallthrough
	case DriveNone:
		return "None"
	}
}

// ParseDriveMode is the inverse of DriveMode.String
func ParseDriveMode(s string) DriveMode {
	switch s {
	case "HoldStraight":
		return DriveHoldStraight
	case "ToAngle":
		return DriveToAngle
	default:
		return DriveNone
	}
}

// ArmMode selects whether the arm and wrist loops are run
type ArmMode uint8

const (
	ArmNone ArmMode = iota
	ArmCorrect
)

func (m ArmMode) String() string {
	if m == ArmCorrect {
		return "Correct"
	}
	return "None"
}

// ParseArmMode is the inverse of ArmMode.String
func ParseArmMode(s string) ArmMode {
	if s == "Correct" {
		return ArmCorrect
	}
	return ArmNone
}

// ScoreHeight is the scoring target picked with the height selector switch
type ScoreHeight uint8

const (
	ScoreLow ScoreHeight = iota
	ScoreMid
	ScoreTop
)

func (h ScoreHeight) String() string {
	switch h {
	case ScoreMid:
		return "Mid"
	case ScoreTop:
		return "Top"
	default:
		fallthrough
	case ScoreLow:
		return "Low"
	}
}

// Profile is a set of tuning constants for the autonomous routine. Each profile was
// tuned on a different practice field, so they disagree on postures and approach offsets
type Profile uint8

const (
	ProfileBaseline Profile = iota
	ProfileTuned
	ProfileAlternate
)

func (p Profile) String() string {
	switch p {
	case ProfileBaseline:
		return "Baseline"
	case ProfileAlternate:
		return "Alternate"
	default:
		fallthrough
	case ProfileTuned:
		return "Tuned"
	}
}

// ParseProfile is the inverse of Profile.String. Unknown names are ProfileTuned
func ParseProfile(s string) Profile {
	switch s {
	case "Baseline":
		return ProfileBaseline
	case "Alternate":
		return ProfileAlternate
	default:
		return ProfileTuned
	}
}

// Switches are the discrete configuration switches read at the start of every cycle
type Switches struct {
	// OtherSide enables the reposition drive and the far approach
	OtherSide bool
	// SweepEnable lets Retreat continue into Sweep
	SweepEnable bool
	// SweepDirection picks the turn direction of Sweep. true turns positive
	SweepDirection bool
	Height         ScoreHeight
}

// Byte packs the switches into a single byte for the input frame
func (s Switches) Byte() byte {
	var b byte
	if s.OtherSide {
		b |= 1 << 0
	}
	if s.SweepEnable {
		b |= 1 << 1
	}
	if s.SweepDirection {
		b |= 1 << 2
	}
	b |= byte(s.Height&0x3) << 3
	return b
}

// SwitchesFromByte is the inverse of Switches.Byte
func SwitchesFromByte(b byte) Switches {
	return Switches{
		OtherSide:      b&(1<<0) != 0,
		SweepEnable:    b&(1<<1) != 0,
		SweepDirection: b&(1<<2) != 0,
		Height:         ScoreHeight((b >> 3) & 0x3),
	}
}

// Outputs are the actuator commands published at the end of every cycle
type Outputs struct {
	DriveLeft  mix.Command
	DriveRight mix.Command
	ArmLeft    mix.Command
	ArmRight   mix.Command
	Wrist      mix.Command

	Grasp     bool
	Extension bool

	// CameraHold asks the camera to park instead of tracking
	CameraHold bool
}

// NeutralOutputs has every motor at neutral and every relay released
func NeutralOutputs() Outputs {
	return Outputs{
		DriveLeft:  mix.Neutral,
		DriveRight: mix.Neutral,
		ArmLeft:    mix.Neutral,
		ArmRight:   mix.Neutral,
		Wrist:      mix.Neutral,
	}
}
