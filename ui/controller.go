package ui

import (
	"fmt"
	"io"
)

// controllerWrapper writes commands to the controller's input
type controllerWrapper struct {
	writer io.Writer
}

func (c *controllerWrapper) StartAutonomous() {
	fmt.Fprintln(c.writer, "A")
}

func (c *controllerWrapper) StopAutonomous() {
	fmt.Fprintln(c.writer, "a")
}

func (c *controllerWrapper) SetProfile(name string) {
	if name == "" {
		return
	}
	fmt.Fprintf(c.writer, "P%c\n", name[0])
}

func (c *controllerWrapper) SetSwitches(s switchState) {
	fmt.Fprintln(c.writer, s.command())
}

func (c *controllerWrapper) SetExtension(on bool) {
	fmt.Fprintf(c.writer, "X%s\n", bit(on))
}

func (c *controllerWrapper) SetGain(loop byte, kp int) {
	fmt.Fprintf(c.writer, "K%c%03d\n", loop, kp)
}

func (c *controllerWrapper) ResetEncoders() {
	fmt.Fprintln(c.writer, "E*")
}

func (c *controllerWrapper) Debug() {
	fmt.Fprintln(c.writer, "D")
}
