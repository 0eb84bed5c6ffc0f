package device

import (
	"errors"
	"machine"
	"strconv"

	"github.com/calvinmclean/rackbot"
	"github.com/calvinmclean/rackbot/encoder"
	"github.com/calvinmclean/rackbot/mix"
	"github.com/calvinmclean/rackbot/pid"
	"github.com/calvinmclean/rackbot/sequencer"
)

// Device owns the encoders, PID loops, autonomous sequencer, and actuators. Every received input
// frame runs one control cycle
type Device struct {
	tracker *encoder.Tracker
	seeds   [encoder.NumChannels]int32

	loops      sequencer.Loops
	seq        sequencer.Sequencer
	seqCfg     SequencerConfig
	autonomous bool

	switches rackbot.Switches
	cycle    uint32

	driveLeft  *motor
	driveRight *motor
	armLeft    *motor
	armRight   *motor
	wrist      *motor

	grasp     machine.Pin
	extension machine.Pin
	extended  bool

	verbose bool
}

// New intializes the Device with the provided configs. Encoder edge handlers are attached
// before New returns
func New(encoders [encoder.NumChannels]EncoderConfig, outputCfg OutputConfig, seqCfg SequencerConfig) (Device, error) {
	d := Device{
		tracker: encoder.NewTracker(),
		loops:   sequencer.DefaultLoops(),
		seqCfg:  seqCfg,
	}

	var err error
	motors := []struct {
		m   **motor
		cfg MotorConfig
	}{
		{&d.driveLeft, outputCfg.DriveLeft},
		{&d.driveRight, outputCfg.DriveRight},
		{&d.armLeft, outputCfg.ArmLeft},
		{&d.armRight, outputCfg.ArmRight},
		{&d.wrist, outputCfg.Wrist},
	}
	for _, m := range motors {
		*m.m, err = newMotor(m.cfg)
		if err != nil {
			return Device{}, errors.New("error creating motor: " + err.Error())
		}
	}

	d.grasp = outputCfg.Grasp
	d.extension = outputCfg.Extension
	d.grasp.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.extension.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.grasp.Low()
	d.extension.Low()

	for i, cfg := range encoders {
		if cfg.Primary == machine.NoPin {
			continue
		}
		err = d.attachEncoder(encoder.ID(i), cfg)
		if err != nil {
			return Device{}, errors.New("error attaching encoder " + strconv.Itoa(i) + ": " + err.Error())
		}
	}

	d.seq.Init(sequencer.Config{Profile: seqCfg.Profile, Loops: d.loops})

	return d, nil
}

func (d *Device) attachEncoder(id encoder.ID, cfg EncoderConfig) error {
	cfg.Primary.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	var companion encoder.Level
	if cfg.Companion != machine.NoPin {
		cfg.Companion.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		companion = cfg.Companion
	}

	d.seeds[id] = cfg.Seed
	d.tracker.Configure(id, encoder.Config{
		Mode:      cfg.Mode,
		Companion: companion,
		Delta:     cfg.Delta,
		Seed:      cfg.Seed,
		Gate:      &interruptGate{},
	})

	t := d.tracker
	switch cfg.Mode {
	case encoder.MuxImmediate:
		return cfg.Primary.SetInterrupt(machine.PinToggle, func(p machine.Pin) {
			t.OnEdge(id, p.Get())
		})
	case encoder.MuxLatched:
		if cfg.Companion == machine.NoPin {
			return errors.New("latched mode requires a companion pin")
		}
		err := cfg.Primary.SetInterrupt(machine.PinToggle, func(machine.Pin) {
			t.OnEdge(id, true)
		})
		if err != nil {
			return err
		}
		return cfg.Companion.SetInterrupt(machine.PinToggle, func(machine.Pin) {
			t.OnEdge(id, false)
		})
	default:
		return cfg.Primary.SetInterrupt(machine.PinRising, func(machine.Pin) {
			t.OnEdge(id, true)
		})
	}
}

// Cycle runs one control cycle with a fresh input frame and prints the telemetry line
func (d *Device) Cycle(frame rackbot.InputFrame) rackbot.Telemetry {
	d.cycle++
	d.switches = frame.Switches

	in := sequencer.Inputs{
		Heading:    frame.Heading,
		Detections: frame.Detections,
		Pan:        frame.Pan,
		Tilt:       frame.Tilt,
		Switches:   frame.Switches,
		ArmCount:   d.tracker.Get(ArmChannel),
		WristCount: d.tracker.Get(WristChannel),
	}

	t := rackbot.Telemetry{
		Cycle:      d.cycle,
		Phase:      rackbot.PhaseIdle,
		ArmCount:   in.ArmCount,
		WristCount: in.WristCount,
	}

	out := rackbot.NeutralOutputs()
	if d.autonomous {
		out = d.seq.Step(in)
		t.Phase = d.seq.Phase()
		t.Counter = d.seq.Counter()
		t.Drive, t.Arm = d.seq.Modes()
	}
	out.Extension = d.extended

	t.Outputs = d.apply(out)
	println(t.String())

	if d.verbose {
		sp := d.seq.Setpoints()
		println(d.ts(), "setpoints: dist="+strconv.Itoa(int(sp.Distance)), "angle="+strconv.Itoa(int(sp.Angle)),
			"arm="+strconv.Itoa(int(sp.Arm)), "wrist="+strconv.Itoa(int(sp.Wrist)))
	}

	return t
}

// apply writes outputs to the actuators and returns what was actually sent after per-motor
// adjustments
func (d *Device) apply(out rackbot.Outputs) rackbot.Outputs {
	out.DriveLeft = d.driveLeft.Set(out.DriveLeft)
	out.DriveRight = d.driveRight.Set(out.DriveRight)
	out.ArmLeft = d.armLeft.Set(out.ArmLeft)
	out.ArmRight = d.armRight.Set(out.ArmRight)
	out.Wrist = d.wrist.Set(out.Wrist)
	d.grasp.Set(out.Grasp)
	d.extension.Set(out.Extension)
	return out
}

// StartAutonomous starts a new autonomous run from PhaseReposition. The score height is taken
// from the switches in the last input frame
func (d *Device) StartAutonomous() {
	d.seq.Init(sequencer.Config{
		Profile: d.seqCfg.Profile,
		Height:  d.switches.Height,
		Loops:   d.loops,
	})
	d.autonomous = true
	println(d.ts(), "Started autonomous: profile="+d.seqCfg.Profile.String(), "height="+d.switches.Height.String())
}

// StopAutonomous leaves autonomous mode. Outputs are neutral from the next cycle
func (d *Device) StopAutonomous() {
	d.autonomous = false
	d.apply(rackbot.Outputs{
		DriveLeft:  mix.Neutral,
		DriveRight: mix.Neutral,
		ArmLeft:    mix.Neutral,
		ArmRight:   mix.Neutral,
		Wrist:      mix.Neutral,
		Extension:  d.extended,
	})
	println(d.ts(), "Stopped autonomous")
}

// SetProfile sets the profile used by the next autonomous run
func (d *Device) SetProfile(p rackbot.Profile) {
	d.seqCfg.Profile = p
	if d.verbose {
		println(d.ts(), "SetProfile", p.String())
	}
}

// ResetEncoder sets the channel back to its seed
func (d *Device) ResetEncoder(id encoder.ID) error {
	if int(id) >= encoder.NumChannels {
		return errors.New("invalid encoder: " + strconv.Itoa(int(id)))
	}
	d.tracker.Reset(id, d.seeds[id])
	if d.verbose {
		println(d.ts(), "ResetEncoder", id)
	}
	return nil
}

// ResetEncoders sets every channel back to its seed
func (d *Device) ResetEncoders() {
	for id := range encoder.NumChannels {
		d.tracker.Reset(encoder.ID(id), d.seeds[id])
	}
}

// SetGain changes the proportional gain of a loop. Loops are named 'd' (distance), 'a' (angle),
// 'h' (heading), 'r' (arm), and 'w' (wrist)
func (d *Device) SetGain(loop byte, kp int32) error {
	var l *pid.Loop
	switch loop {
	case 'd':
		l = d.loops.Distance
	case 'a':
		l = d.loops.Angle
	case 'h':
		l = d.loops.Heading
	case 'r':
		l = d.loops.Arm
	case 'w':
		l = d.loops.Wrist
	default:
		return errors.New("invalid loop: " + string(loop))
	}
	l.SetKp(kp)
	println(d.ts(), "SetGain", string(loop), kp)
	return nil
}

// Hold drives straight at fixed commands while autonomous, overriding the phase's drive mode
func (d *Device) Hold(left, right mix.Command) {
	d.seq.Hold(left, right)
	if d.verbose {
		println(d.ts(), "Hold", left, right)
	}
}

// Release ends a Hold
func (d *Device) Release() {
	d.seq.Release()
}

// SetExtension sets the extension relay. It is kept across cycles and autonomous runs
func (d *Device) SetExtension(on bool) {
	d.extended = on
	d.extension.Set(on)
}

// Debug prints out details of the Device's state
func (d *Device) Debug() {
	s := d.ts() + " autonomous=" + strconv.FormatBool(d.autonomous)
	s += " profile=" + d.seqCfg.Profile.String()
	phase := rackbot.PhaseIdle
	if d.autonomous {
		phase = d.seq.Phase()
	}
	s += " phase=" + phase.String()
	s += " extension=" + strconv.FormatBool(d.extended)
	println(s)

	counts := d.tracker.Snapshot()
	s = d.ts() + " encoders:"
	for _, c := range counts {
		s += " " + strconv.Itoa(int(c))
	}
	println(s)
}

// Verbose sets the Device to Verbose mode and increases logging
func (d *Device) Verbose() {
	d.verbose = true
	println(d.ts(), "Set Verbose Mode")
}

// Version prints the firmware version
func (d *Device) Version() {
	println(rackbot.VersionPrefix + rackbot.Version)
}

// ts returns the cycle timestamp for logging
func (d *Device) ts() string {
	if d.cycle == 0 {
		return "[-]"
	}
	return "[" + strconv.FormatUint(uint64(d.cycle), 10) + "]"
}

func (d *Device) ReadByte() (byte, error) {
	return machine.Serial.ReadByte()
}

func (d *Device) WriteByte(b byte) error {
	return machine.Serial.WriteByte(b)
}
