package controller

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/calvinmclean/rackbot"
)

// Host commands are handled by the Controller instead of being forwarded to the device
const (
	// FRAME <heading> <detections> <pan> <tilt>
	frameCommand = "FRAME"
	// SWITCHES <other side 0|1> <sweep enable 0|1> <sweep direction 0|1> <height L|M|T>
	switchesCommand = "SWITCHES"
	// HOLD <left> <right>
	holdCommand = "HOLD"
)

// readInput handles each line of input until it is closed. Errors are written to out
func (c *Controller) readInput(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		err := c.runInput(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func (c *Controller) runInput(line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case frameCommand:
		values, err := parseInts(fields[1:], 4)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", frameCommand, err)
		}
		for _, v := range values[1:] {
			if v < 0 || v > 255 {
				return fmt.Errorf("invalid %s: %d out of range", frameCommand, v)
			}
		}
		c.updateFrame(func(f *rackbot.InputFrame) {
			f.Heading = int32(values[0])
			f.Detections = uint8(values[1])
			f.Pan = uint8(values[2])
			f.Tilt = uint8(values[3])
		})
		return nil
	case switchesCommand:
		sw, err := parseSwitches(fields[1:])
		if err != nil {
			return fmt.Errorf("invalid %s: %w", switchesCommand, err)
		}
		c.updateFrame(func(f *rackbot.InputFrame) {
			f.Switches = sw
		})
		return nil
	case holdCommand:
		values, err := parseInts(fields[1:], 2)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", holdCommand, err)
		}
		for _, v := range values {
			if v < 0 || v > 254 {
				return fmt.Errorf("invalid %s: %d out of range", holdCommand, v)
			}
		}
		return c.send([]byte{'S', byte(values[0]), byte(values[1])})
	default:
		return c.send([]byte(line))
	}
}

func parseInts(fields []string, n int) ([]int64, error) {
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}

	values := make([]int64, n)
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func parseSwitches(fields []string) (rackbot.Switches, error) {
	if len(fields) != 4 {
		return rackbot.Switches{}, fmt.Errorf("expected 4 values, got %d", len(fields))
	}

	var flags [3]bool
	for i, f := range fields[:3] {
		switch f {
		case "0":
		case "1":
			flags[i] = true
		default:
			return rackbot.Switches{}, fmt.Errorf("expected 0 or 1, got %q", f)
		}
	}

	var height rackbot.ScoreHeight
	switch fields[3] {
	case "L":
		height = rackbot.ScoreLow
	case "M":
		height = rackbot.ScoreMid
	case "T":
		height = rackbot.ScoreTop
	default:
		return rackbot.Switches{}, fmt.Errorf("invalid height %q", fields[3])
	}

	return rackbot.Switches{
		OtherSide:      flags[0],
		SweepEnable:    flags[1],
		SweepDirection: flags[2],
		Height:         height,
	}, nil
}
