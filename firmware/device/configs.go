package device

import (
	"machine"

	"github.com/calvinmclean/rackbot"
	"github.com/calvinmclean/rackbot/encoder"

	"tinygo.org/x/drivers/servo"
)

// Encoder channels used by the autonomous routine
const (
	ArmChannel   encoder.ID = 0
	WristChannel encoder.ID = 1
)

// EncoderConfig wires one encoder channel to its pins
type EncoderConfig struct {
	// Primary is the line that triggers counting. machine.NoPin leaves the channel unused
	Primary   machine.Pin
	Companion machine.Pin
	Mode      encoder.DecodeMode
	Delta     int32
	// Seed is the count at power on, which is the calibration offset of the mechanism at rest
	Seed int32
}

// LimitConfig has limit switch inputs for a motor. Switches are wired to ground, so a low
// level means closed
type LimitConfig struct {
	Max machine.Pin
	Min machine.Pin
}

// MotorConfig has device-level values for setting up the motor controllers that share a command.
// Motor controllers take a servo-style pulse
type MotorConfig struct {
	PWM  servo.PWM
	Pins []machine.Pin

	// Invert reflects the command about neutral for motors mounted facing the other way
	Invert bool
	// ToneNum/ToneDen scale the command's distance from neutral. A zero ToneDen disables it
	ToneNum int32
	ToneDen int32
	// Limits is optional
	Limits *LimitConfig
}

// OutputConfig has all of the actuators
type OutputConfig struct {
	DriveLeft  MotorConfig
	DriveRight MotorConfig
	ArmLeft    MotorConfig
	ArmRight   MotorConfig
	Wrist      MotorConfig

	// Grasp and Extension are relay outputs
	Grasp     machine.Pin
	Extension machine.Pin
}

// SequencerConfig has values used when entering autonomous mode
type SequencerConfig struct {
	Profile rackbot.Profile
}
