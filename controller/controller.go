package controller

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/calvinmclean/rackbot"
	"github.com/calvinmclean/rackbot/twchart"
)

const defaultVersionTimeout = 2 * time.Second

// Controller is the host side of the serial link. It sends an input frame every cycle period,
// forwards commands from its input, and records autonomous runs from the device's telemetry
type Controller struct {
	port     io.ReadWriteCloser
	writeMtx sync.Mutex

	frameMtx sync.Mutex
	frame    rackbot.InputFrame

	period         time.Duration
	versionTimeout time.Duration
	profile        byte

	recorder *recorder
}

// New opens the serial port and creates a Controller. A twchart client is only used when
// TWChartAddr is set
func New(cfg Config) (*Controller, error) {
	period, err := cfg.cyclePeriod()
	if err != nil {
		return nil, err
	}

	probes, err := twchart.ParseProbes(cfg.ProbesInput)
	if err != nil {
		return nil, fmt.Errorf("error parsing probes: %w", err)
	}

	var client twchartClient = noopTWChartClient{}
	if cfg.TWChartAddr != "" {
		client = twchart.NewClient(cfg.TWChartAddr)
	}

	port, err := openSerial(cfg)
	if err != nil {
		return nil, err
	}

	c := newController(port, client, cfg.SessionName, probes, period)
	c.profile = cfg.profileFlag()
	return c, nil
}

// NewFromEnv creates a Controller using ConfigFromEnv
func NewFromEnv() (*Controller, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

func newController(port io.ReadWriteCloser, client twchartClient, sessionName string, probes twchart.Probes, period time.Duration) *Controller {
	if sessionName == "" {
		sessionName = "Autonomous Run"
	}
	return &Controller{
		port:           port,
		period:         period,
		versionTimeout: defaultVersionTimeout,
		recorder:       newRecorder(client, sessionName, probes),
	}
}

// Close closes the serial port
func (c *Controller) Close() error {
	return c.port.Close()
}

// Frame returns the input frame sent each cycle
func (c *Controller) Frame() rackbot.InputFrame {
	c.frameMtx.Lock()
	defer c.frameMtx.Unlock()
	return c.frame
}

// SetFrame replaces the input frame sent each cycle
func (c *Controller) SetFrame(f rackbot.InputFrame) {
	c.frameMtx.Lock()
	c.frame = f
	c.frameMtx.Unlock()
}

func (c *Controller) updateFrame(update func(*rackbot.InputFrame)) {
	c.frameMtx.Lock()
	update(&c.frame)
	c.frameMtx.Unlock()
}

// Run checks the firmware version and then runs until the context is cancelled, the input is
// closed, or the device disconnects. Device output is written to out. Telemetry is only written
// when the phase changes
func (c *Controller) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go c.readPort(ctx, lines)

	if _, ok := c.port.(*noopPort); !ok {
		version, err := c.readVersion(ctx, lines)
		if err != nil {
			return err
		}
		err = checkFirmwareVersion(version)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "connected to firmware %s\n", version)
	}

	if c.profile != 0 {
		err := c.send([]byte{'P', c.profile})
		if err != nil {
			return err
		}
	}

	frameErr := make(chan error, 1)
	go func() {
		frameErr <- c.sendFrames(ctx)
	}()

	inputDone := make(chan error, 1)
	go func() {
		inputDone <- c.readInput(in, out)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-frameErr:
			return err
		case err := <-inputDone:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			c.handleLine(ctx, line, out)
		}
	}
}

func (c *Controller) handleLine(ctx context.Context, line string, out io.Writer) {
	t, err := rackbot.ParseTelemetry(line)
	if err != nil {
		fmt.Fprintln(out, line)
		return
	}

	if t.Phase != c.recorder.Phase() {
		fmt.Fprintln(out, line)
	}

	err = c.recorder.Record(ctx, t)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
}

// readVersion asks the device for its version and waits for the response. Other lines are
// discarded
func (c *Controller) readVersion(ctx context.Context, lines <-chan string) (string, error) {
	err := c.send([]byte{'v'})
	if err != nil {
		return "", err
	}

	timeout := time.After(c.versionTimeout)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timeout:
			return "", fmt.Errorf("%w: no version reported", ErrIncompatibleFirmware)
		case line, ok := <-lines:
			if !ok {
				return "", fmt.Errorf("%w: disconnected before reporting version", ErrIncompatibleFirmware)
			}
			version, found := strings.CutPrefix(line, rackbot.VersionPrefix)
			if found {
				return version, nil
			}
		}
	}
}

// readPort sends each line from the device, without the line ending, until the port is closed
func (c *Controller) readPort(ctx context.Context, lines chan<- string) {
	defer close(lines)

	scanner := bufio.NewScanner(c.port)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\x00")
		if line == "" {
			continue
		}
		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Controller) sendFrames(ctx context.Context) error {
	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	buf := make([]byte, 0, rackbot.FrameSize+1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		buf = append(buf[:0], rackbot.FrameFlag)
		buf, _ = c.Frame().AppendBinary(buf)
		err := c.send(buf)
		if err != nil {
			return fmt.Errorf("error sending frame: %w", err)
		}
	}
}

// send writes a whole command so frames and forwarded commands are never interleaved
func (c *Controller) send(b []byte) error {
	c.writeMtx.Lock()
	defer c.writeMtx.Unlock()

	_, err := c.port.Write(b)
	if err != nil {
		return fmt.Errorf("error writing serial: %w", err)
	}
	return nil
}
