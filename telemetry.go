package rackbot

import (
	"errors"
	"strconv"
	"strings"

	"github.com/calvinmclean/rackbot/mix"
)

// TelemetryPrefix starts every telemetry line printed by the device
const TelemetryPrefix = "T"

var ErrNotTelemetry = errors.New("not a telemetry line")

// Telemetry is the state printed by the device after every control cycle
type Telemetry struct {
	Cycle   uint32
	Phase   Phase
	Counter int32
	Drive   DriveMode
	Arm     ArmMode
	Outputs Outputs

	// ArmCount and WristCount are the encoder counts sampled for this cycle
	ArmCount   int32
	WristCount int32
}

// String formats a single space-separated line of key=value pairs. This avoids fmt so it
// can be used on the device
func (t Telemetry) String() string {
	var sb strings.Builder
	sb.WriteString(TelemetryPrefix)
	kv := func(k, v string) {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(v)
	}
	cmd := func(c mix.Command) string { return strconv.Itoa(int(c)) }

	kv("cycle", strconv.FormatUint(uint64(t.Cycle), 10))
	kv("phase", t.Phase.String())
	kv("counter", strconv.Itoa(int(t.Counter)))
	kv("drive", t.Drive.String())
	kv("arm", t.Arm.String())
	kv("L", cmd(t.Outputs.DriveLeft))
	kv("R", cmd(t.Outputs.DriveRight))
	kv("AL", cmd(t.Outputs.ArmLeft))
	kv("AR", cmd(t.Outputs.ArmRight))
	kv("W", cmd(t.Outputs.Wrist))
	kv("G", boolStr(t.Outputs.Grasp))
	kv("X", boolStr(t.Outputs.Extension))
	kv("enc1", strconv.Itoa(int(t.ArmCount)))
	kv("enc2", strconv.Itoa(int(t.WristCount)))

	return sb.String()
}

// ParseTelemetry reads a line produced by Telemetry.String. Unknown keys are ignored so older
// hosts keep working with newer firmware
func ParseTelemetry(line string) (Telemetry, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 || fields[0] != TelemetryPrefix {
		return Telemetry{}, ErrNotTelemetry
	}

	var t Telemetry
	for _, field := range fields[1:] {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			return Telemetry{}, errors.New("invalid telemetry field: " + field)
		}

		var err error
		switch k {
		case "cycle":
			var n uint64
			n, err = strconv.ParseUint(v, 10, 32)
			t.Cycle = uint32(n)
		case "phase":
			t.Phase = ParsePhase(v)
		case "counter":
			t.Counter, err = parseInt32(v)
		case "drive":
			t.Drive = ParseDriveMode(v)
		case "arm":
			t.Arm = ParseArmMode(v)
		case "L":
			t.Outputs.DriveLeft, err = parseCommand(v)
		case "R":
			t.Outputs.DriveRight, err = parseCommand(v)
		case "AL":
			t.Outputs.ArmLeft, err = parseCommand(v)
		case "AR":
			t.Outputs.ArmRight, err = parseCommand(v)
		case "W":
			t.Outputs.Wrist, err = parseCommand(v)
		case "G":
			t.Outputs.Grasp = v == "1"
		case "X":
			t.Outputs.Extension = v == "1"
		case "enc1":
			t.ArmCount, err = parseInt32(v)
		case "enc2":
			t.WristCount, err = parseInt32(v)
		}
		if err != nil {
			return Telemetry{}, errors.New("invalid telemetry value for " + k + ": " + err.Error())
		}
	}

	return t, nil
}

func parseInt32(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	return int32(n), err
}

func parseCommand(s string) (mix.Command, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, err
	}
	return mix.Clamp(int64(n)), nil
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
