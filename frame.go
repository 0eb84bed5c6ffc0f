package rackbot

import (
	"encoding/binary"
	"errors"
)

// FrameFlag is the command byte that precedes every InputFrame on the serial link
const FrameFlag = 'N'

// FrameSize is the encoded size of an InputFrame, not including FrameFlag
const FrameSize = 8

var ErrShortFrame = errors.New("input frame too short")

// InputFrame is one cycle of fresh input from the collaborating subsystems: the integrated
// gyro heading, the vision detection count with the camera pan/tilt servo positions, and the
// configuration switches. Receiving a frame is what triggers a control cycle on the device
type InputFrame struct {
	Heading    int32
	Detections uint8
	Pan        uint8
	Tilt       uint8
	Switches   Switches
}

// MarshalBinary encodes the frame as big-endian heading followed by one byte each of
// detections, pan, tilt, and packed switches
func (f InputFrame) MarshalBinary() ([]byte, error) {
	return f.AppendBinary(make([]byte, 0, FrameSize))
}

// AppendBinary appends the encoded frame to b
func (f InputFrame) AppendBinary(b []byte) ([]byte, error) {
	b = binary.BigEndian.AppendUint32(b, uint32(f.Heading))
	return append(b, f.Detections, f.Pan, f.Tilt, f.Switches.Byte()), nil
}

// UnmarshalBinary decodes the first FrameSize bytes of data
func (f *InputFrame) UnmarshalBinary(data []byte) error {
	if len(data) < FrameSize {
		return ErrShortFrame
	}
	f.Heading = int32(binary.BigEndian.Uint32(data[0:4]))
	f.Detections = data[4]
	f.Pan = data[5]
	f.Tilt = data[6]
	f.Switches = SwitchesFromByte(data[7])
	return nil
}
