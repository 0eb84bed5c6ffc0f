package sequencer

import (
	"github.com/calvinmclean/rackbot"
)

// Posture is an arm and wrist encoder setpoint pair
type Posture struct {
	Arm   int32
	Wrist int32
}

// ArmLimit bounds arm setpoints in encoder counts
const ArmLimit = 400

var (
	PostureHome = Posture{Arm: -153, Wrist: -415}
	PostureTop  = Posture{Arm: 330, Wrist: 2}
	PostureLow  = Posture{Arm: 96, Wrist: 292}

	postureMid       = Posture{Arm: 262, Wrist: 388}
	postureMidFolded = Posture{Arm: 20, Wrist: -249}
	postureMidShort  = Posture{Arm: 90, Wrist: -194}
	postureLowTucked = Posture{Arm: 23, Wrist: 292}
	postureTopReady  = Posture{Arm: 330, Wrist: 150}
)

// Pan and tilt positions that the camera parks at while repositioning
const (
	CameraHoldPan  = 124
	CameraHoldTilt = 144
)

const numHeights = int(rackbot.ScoreTop) + 1

// approachRule turns camera pan/tilt into distance and angle setpoints while driving to the
// target. The camera pan servo is used as a distance proxy because the camera tilts down as the
// target gets closer
type approachRule struct {
	// distOffset is the pan position where the robot is at scoring distance
	distOffset int32

	// near is used when pan <= cutoff and far otherwise. nil keeps the current posture
	cutoff uint8
	near   *Posture
	far    *Posture

	// tiltCenter is the tilt position where the target is straight ahead. When panDiv is not
	// zero the center moves by (pan - panRef) / panDiv to account for parallax up close
	tiltCenter int32
	panRef     int32
	panDiv     int32
}

func (r approachRule) setpoints(pan, tilt uint8) (distance, angle int32) {
	distance = int32(pan) - r.distOffset

	center := r.tiltCenter
	if r.panDiv != 0 {
		center += (int32(pan) - r.panRef) / r.panDiv
	}
	angle = ((center - int32(tilt)) * 255) / 127

	return distance, angle
}

func (r approachRule) posture(pan uint8) *Posture {
	if pan <= r.cutoff {
		return r.near
	}
	return r.far
}

// approachTop is used for the top height, which has no dedicated tuning
var approachTop = approachRule{distOffset: 100, tiltCenter: 141}

// profileTable has all of the constants for one Profile, indexed by ScoreHeight
type profileTable struct {
	// search is held while waiting for the target. nil keeps the current posture
	search [numHeights]*Posture
	near   [numHeights]approachRule
	score  [numHeights]Posture
}

var profiles = [...]profileTable{
	rackbot.ProfileBaseline: {
		search: [numHeights]*Posture{
			rackbot.ScoreLow: &postureLowTucked,
			rackbot.ScoreMid: &postureTopReady,
			rackbot.ScoreTop: &postureTopReady,
		},
		near: [numHeights]approachRule{
			rackbot.ScoreLow: {distOffset: 80, cutoff: 153, near: &PostureLow, far: &postureLowTucked, tiltCenter: 141},
			rackbot.ScoreMid: {distOffset: 100, tiltCenter: 141},
			rackbot.ScoreTop: approachTop,
		},
		score: [numHeights]Posture{
			rackbot.ScoreLow: PostureLow,
			rackbot.ScoreMid: postureMid,
			rackbot.ScoreTop: PostureTop,
		},
	},
	rackbot.ProfileTuned: {
		search: [numHeights]*Posture{
			rackbot.ScoreLow: &postureLowTucked,
			rackbot.ScoreMid: &PostureHome,
		},
		near: [numHeights]approachRule{
			rackbot.ScoreLow: {distOffset: 80, cutoff: 153, near: &PostureLow, far: &postureLowTucked, tiltCenter: 134},
			rackbot.ScoreMid: {distOffset: 86, cutoff: 151, near: &postureMidFolded, tiltCenter: 134, panRef: 93, panDiv: 7},
			rackbot.ScoreTop: approachTop,
		},
		score: [numHeights]Posture{
			rackbot.ScoreLow: PostureLow,
			rackbot.ScoreMid: postureMidFolded,
			rackbot.ScoreTop: PostureTop,
		},
	},
	rackbot.ProfileAlternate: {
		near: [numHeights]approachRule{
			rackbot.ScoreLow: {distOffset: 80, cutoff: 153, near: &PostureLow, far: &postureLowTucked, tiltCenter: 141},
			rackbot.ScoreMid: {distOffset: 86, cutoff: 235, near: &postureMidFolded, tiltCenter: 175},
			rackbot.ScoreTop: approachTop,
		},
		score: [numHeights]Posture{
			rackbot.ScoreLow: PostureLow,
			rackbot.ScoreMid: postureMidShort,
			rackbot.ScoreTop: PostureTop,
		},
	},
}

// approachFar is shared by every profile
var approachFar = [numHeights]approachRule{
	rackbot.ScoreLow: {distOffset: 80, cutoff: 153, near: &PostureLow, far: &postureLowTucked, tiltCenter: 134},
	rackbot.ScoreMid: {distOffset: 86, cutoff: 146, near: &postureMidFolded, far: &PostureHome, tiltCenter: 137},
	rackbot.ScoreTop: approachTop,
}

func tableFor(p rackbot.Profile) *profileTable {
	if int(p) >= len(profiles) {
		return &profiles[rackbot.ProfileTuned]
	}
	return &profiles[p]
}

func heightIndex(h rackbot.ScoreHeight) int {
	if int(h) >= numHeights {
		return int(rackbot.ScoreLow)
	}
	return int(h)
}
