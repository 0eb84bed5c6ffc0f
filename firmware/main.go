package main

import (
	"machine"

	"github.com/calvinmclean/rackbot"
	"github.com/calvinmclean/rackbot/encoder"
	"github.com/calvinmclean/rackbot/firmware/commands"
	"github.com/calvinmclean/rackbot/firmware/device"
)

func main() {
	encoders := [encoder.NumChannels]device.EncoderConfig{
		device.ArmChannel: {
			Primary:   machine.GP14,
			Companion: machine.GP15,
			Mode:      encoder.DualInterrupt,
			Seed:      -153,
		},
		device.WristChannel: {
			Primary:   machine.GP16,
			Companion: machine.GP17,
			Mode:      encoder.MuxImmediate,
			Seed:      -415,
		},
		2: {Primary: machine.NoPin},
		3: {Primary: machine.NoPin},
		4: {Primary: machine.NoPin},
		5: {Primary: machine.NoPin},
	}

	outputCfg := device.OutputConfig{
		DriveLeft: device.MotorConfig{
			PWM:  machine.PWM1,
			Pins: []machine.Pin{machine.GP2},
		},
		DriveRight: device.MotorConfig{
			PWM:    machine.PWM2,
			Pins:   []machine.Pin{machine.GP4},
			Invert: true,
		},
		ArmLeft: device.MotorConfig{
			PWM:    machine.PWM3,
			Pins:   []machine.Pin{machine.GP6},
			Limits: &device.LimitConfig{Max: machine.GP18, Min: machine.GP19},
		},
		// mounted facing the other way, so the limit switches swap
		ArmRight: device.MotorConfig{
			PWM:    machine.PWM4,
			Pins:   []machine.Pin{machine.GP8},
			Invert: true,
			Limits: &device.LimitConfig{Max: machine.GP19, Min: machine.GP18},
		},
		Wrist: device.MotorConfig{
			PWM:     machine.PWM5,
			Pins:    []machine.Pin{machine.GP10},
			ToneNum: 3,
			ToneDen: 4,
		},
		Grasp:     machine.GP20,
		Extension: machine.GP21,
	}

	seqCfg := device.SequencerConfig{
		Profile: rackbot.ProfileTuned,
	}

	d, err := device.New(encoders, outputCfg, seqCfg)
	if err != nil {
		panic(err)
	}

	commands.Run(&d)
}
