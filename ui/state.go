package ui

import (
	"image/color"
	"strings"

	"github.com/calvinmclean/rackbot"
)

// heightOptions are the choices on the height selector. The selector on the robot only has
// Low and Mid
var heightOptions = []string{
	rackbot.ScoreLow.String(),
	rackbot.ScoreMid.String(),
	rackbot.ScoreTop.String(),
}

var profileOptions = []string{
	rackbot.ProfileBaseline.String(),
	rackbot.ProfileTuned.String(),
	rackbot.ProfileAlternate.String(),
}

// switchState mirrors the switches sent in every input frame
type switchState struct {
	otherSide      bool
	sweepEnable    bool
	sweepDirection bool
	height         string
}

// command formats the host SWITCHES command
func (s switchState) command() string {
	height := "L"
	if s.height != "" {
		height = s.height[:1]
	}
	return strings.Join([]string{"SWITCHES", bit(s.otherSide), bit(s.sweepEnable), bit(s.sweepDirection), height}, " ")
}

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// phaseColor highlights the phases where the robot is moving toward or at the target
func phaseColor(p rackbot.Phase) color.Color {
	switch p {
	case rackbot.PhaseApproachNear, rackbot.PhaseApproachFar:
		return color.RGBA{R: 204, G: 153, B: 0, A: 255}
	case rackbot.PhaseScore:
		return color.RGBA{R: 139, G: 0, B: 0, A: 255}
	case rackbot.PhaseIdle:
		return color.Gray{Y: 128}
	default:
		return color.RGBA{R: 0, G: 100, B: 0, A: 255}
	}
}
