package controller

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// SerialPortNone runs the controller without a device. Frames and commands are discarded
const SerialPortNone = "None"

var ErrNoUSBSerial = errors.New("no USB serial ports found")

// GetSerialPorts returns the names of USB serial ports. ErrNoUSBSerial is returned with an empty
// list if none are connected
func GetSerialPorts() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	var names []string
	for _, port := range ports {
		if port.IsUSB {
			names = append(names, port.Name)
		}
	}

	if len(names) == 0 {
		return nil, ErrNoUSBSerial
	}
	return names, nil
}

func openSerial(cfg Config) (io.ReadWriteCloser, error) {
	if cfg.SerialPort == SerialPortNone {
		return newNoopPort(), nil
	}

	if cfg.SerialPort == "" {
		ports, err := GetSerialPorts()
		if err != nil {
			return nil, err
		}
		cfg.SerialPort = ports[0]
	}

	baud, err := cfg.baudRate()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(cfg.SerialPort, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %q: %w", cfg.SerialPort, err)
	}
	return port, nil
}

// noopPort discards writes. Reads block until it is closed
type noopPort struct {
	closed    chan struct{}
	closeOnce sync.Once
}

func newNoopPort() *noopPort {
	return &noopPort{closed: make(chan struct{})}
}

func (p *noopPort) Read([]byte) (int, error) {
	<-p.closed
	return 0, io.EOF
}

func (p *noopPort) Write(b []byte) (int, error) {
	select {
	case <-p.closed:
		return 0, io.ErrClosedPipe
	default:
		return len(b), nil
	}
}

func (p *noopPort) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })
	return nil
}
