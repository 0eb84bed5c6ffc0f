package commands

import (
	"errors"

	"github.com/calvinmclean/rackbot"
	"github.com/calvinmclean/rackbot/encoder"
	"github.com/calvinmclean/rackbot/mix"
)

type Command struct {
	Flag        byte
	InputSize   uint
	Run         func(Controller, []byte) error
	Description string
}

// Controller is used to control a device
type Controller interface {
	Cycle(rackbot.InputFrame) rackbot.Telemetry
	StartAutonomous()
	StopAutonomous()
	SetProfile(rackbot.Profile)
	ResetEncoder(encoder.ID) error
	ResetEncoders()
	SetGain(byte, int32) error
	Hold(left, right mix.Command)
	Release()
	SetExtension(bool)
	Debug()
	Verbose()
	Version()

	// I/O
	ReadByte() (byte, error)
}

// maxInputSize is the largest InputSize of any command
const maxInputSize = rackbot.FrameSize

var (
	CycleCommand = &Command{
		Flag:      rackbot.FrameFlag,
		InputSize: rackbot.FrameSize,
		Run: func(c Controller, input []byte) error {
			var frame rackbot.InputFrame
			err := frame.UnmarshalBinary(input)
			if err != nil {
				return err
			}
			c.Cycle(frame)
			return nil
		},
		Description: "Run a control cycle. Input: 8 byte frame (heading int32, detections, pan, tilt, switches).",
	}
	StartCommand = &Command{
		Flag:      'A',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.StartAutonomous()
			return nil
		},
		Description: "Start an autonomous run. The score height is read from the last frame's switches.",
	}
	StopCommand = &Command{
		Flag:      'a',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.StopAutonomous()
			return nil
		},
		Description: "Stop autonomous mode and set all motors to neutral.",
	}
	ProfileCommand = &Command{
		Flag:      'P',
		InputSize: 1,
		Run: func(c Controller, input []byte) error {
			switch in := input[0]; in {
			case 'B':
				c.SetProfile(rackbot.ProfileBaseline)
			case 'T':
				c.SetProfile(rackbot.ProfileTuned)
			case 'A':
				c.SetProfile(rackbot.ProfileAlternate)
			default:
				return errors.New("invalid input: " + string(input))
			}
			return nil
		},
		Description: "Set the profile for the next run. Input: 'B' (Baseline), 'T' (Tuned), 'A' (Alternate).",
	}
	ResetEncoderCommand = &Command{
		Flag:      'E',
		InputSize: 1,
		Run: func(c Controller, input []byte) error {
			if input[0] == '*' {
				c.ResetEncoders()
				return nil
			}
			return c.ResetEncoder(encoder.ID(input[0] - '0'))
		},
		Description: "Reset an encoder to its seed. Input: channel 0-5, or '*' for all.",
	}
	GainCommand = &Command{
		Flag:      'K',
		InputSize: 4,
		Run: func(c Controller, input []byte) error {
			kp, ok := atoi(input[1:])
			if !ok {
				return errors.New("invalid input: " + string(input))
			}
			return c.SetGain(input[0], kp)
		},
		Description: "Set a loop's proportional gain. Input: loop 'd', 'a', 'h', 'r', or 'w', then 3 digits.",
	}
	HoldCommand = &Command{
		Flag:      'S',
		InputSize: 2,
		Run: func(c Controller, input []byte) error {
			c.Hold(mix.Command(input[0]), mix.Command(input[1]))
			return nil
		},
		Description: "Drive straight while autonomous. Input: raw left and right commands.",
	}
	ReleaseCommand = &Command{
		Flag:      's',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Release()
			return nil
		},
		Description: "Release a drive hold.",
	}
	ExtensionCommand = &Command{
		Flag:      'X',
		InputSize: 1,
		Run: func(c Controller, input []byte) error {
			switch input[0] {
			case '0':
				c.SetExtension(false)
			case '1':
				c.SetExtension(true)
			default:
				return errors.New("invalid input: " + string(input))
			}
			return nil
		},
		Description: "Set the extension relay. Input: '0' or '1'.",
	}
	DebugCommand = &Command{
		Flag:      'D',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Debug()
			return nil
		},
		Description: "Print the current state.",
	}
	VerboseCommand = &Command{
		Flag:      'V',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Verbose()
			return nil
		},
		Description: "Enable verbose output.",
	}
	VersionCommand = &Command{
		Flag:      'v',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Version()
			return nil
		},
		Description: "Print the firmware version.",
	}
	HelpCommand = &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(c Controller, b []byte) error {
			println("Available Commands:")
			for _, cmd := range commands {
				flagStr := ""
				if cmd.Flag >= 32 && cmd.Flag <= 126 {
					flagStr = string(cmd.Flag)
				} else {
					flagStr = "0x" + string("0123456789ABCDEF"[(cmd.Flag>>4)&0xF]) + string("0123456789ABCDEF"[cmd.Flag&0xF])
				}
				println(flagStr + ": " + cmd.Description)
			}
			return nil
		},
	}
)

// atoi parses unsigned ASCII digits
func atoi(b []byte) (int32, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var v int32
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int32(c-'0')
	}
	return v, true
}

var commands = []*Command{
	CycleCommand,
	StartCommand,
	StopCommand,
	ProfileCommand,
	ResetEncoderCommand,
	GainCommand,
	HoldCommand,
	ReleaseCommand,
	ExtensionCommand,
	DebugCommand,
	VerboseCommand,
	VersionCommand,
}

// Commands returns a lookup of every command by its flag
func Commands() map[byte]*Command {
	cmdMap := map[byte]*Command{
		HelpCommand.Flag: HelpCommand,
	}

	for _, cmd := range commands {
		cmdMap[cmd.Flag] = cmd
	}
	return cmdMap
}

// Read reads bytes until a known flag, then reads the command's input into buf. Unknown bytes
// are skipped. buf must hold at least the largest InputSize
func Read(c Controller, cmdMap map[byte]*Command, buf []byte) (*Command, []byte, error) {
	for {
		cmdIn, err := c.ReadByte()
		if err != nil {
			continue
		}

		cmd, ok := cmdMap[cmdIn]
		if !ok {
			continue
		}

		if int(cmd.InputSize) > len(buf) {
			return nil, nil, errors.New("input buffer too small for " + string(cmd.Flag))
		}

		in := buf[:cmd.InputSize]
		for i := 0; i < int(cmd.InputSize); {
			b, err := c.ReadByte()
			if err != nil {
				continue
			}

			in[i] = b
			i++
		}

		return cmd, in, nil
	}
}

func Run(c Controller) {
	cmdMap := Commands()
	var buf [maxInputSize]byte

	for {
		cmd, in, err := Read(c, cmdMap, buf[:])
		if err != nil {
			println("error:", err.Error())
			continue
		}

		err = cmd.Run(c, in)
		if err != nil {
			println("error:", err.Error())
		}
	}
}
