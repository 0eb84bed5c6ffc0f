// Package mix has the saturating transforms applied to motor commands before they are published.
// Every function is total and returns a value inside the command domain
package mix

// Command is a motor command. 0 is full reverse, 254 is full forward
type Command uint8

const (
	Neutral Command = 127
	Max     Command = 254

	// mixLow and mixHigh bound the intermediate drive sum. The sum is built around 2000 so
	// that negative corrections never go below zero before saturation
	mixLow  = 2000
	mixHigh = 2254
)

// Clamp saturates v into [0, Max]
func Clamp(v int64) Command {
	switch {
	case v < 0:
		return 0
	case v > int64(Max):
		return Max
	default:
		return Command(v)
	}
}

// LimitMix saturates an intermediate drive sum to [2000, 2254] and rebases it to a Command
func LimitMix(v int32) Command {
	switch {
	case v < mixLow:
		v = mixLow
	case v > mixHigh:
		v = mixHigh
	}
	return Command(v - mixLow)
}

// FlipAxis reflects v about pivot. Reflections landing outside of the command domain saturate
func FlipAxis(v, pivot Command) Command {
	return Clamp(2*int64(pivot) - int64(v))
}

// RangeLimit clamps v to Neutral +/- half
func RangeLimit(v int32, half uint8) Command {
	lo := int32(Neutral) - int32(half)
	hi := int32(Neutral) + int32(half)
	switch {
	case v < lo:
		v = lo
	case v > hi:
		v = hi
	}
	return Clamp(int64(v))
}

// Tone scales v's distance from Neutral by num/den. A zero denominator returns Neutral
func Tone(v Command, num, den int32) Command {
	if den == 0 {
		return Neutral
	}
	return Clamp((int64(v)-int64(Neutral))*int64(num)/int64(den) + int64(Neutral))
}

// LimitMax stops forward motion while the limit switch is closed
func LimitMax(closed bool, v Command) Command {
	if closed && v > Neutral {
		return Neutral
	}
	return v
}

// LimitMin stops reverse motion while the limit switch is closed
func LimitMin(closed bool, v Command) Command {
	if closed && v < Neutral {
		return Neutral
	}
	return v
}
