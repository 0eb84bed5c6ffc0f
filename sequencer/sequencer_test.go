package sequencer

import (
	"testing"

	"github.com/calvinmclean/rackbot"
	"github.com/calvinmclean/rackbot/mix"
	"github.com/calvinmclean/rackbot/pid"

	. "github.com/smartystreets/goconvey/convey"
)

// stepUntil steps with the same inputs until the phase is reached and returns the number of steps
// taken, or -1 after limit steps
func stepUntil(s *Sequencer, in Inputs, phase rackbot.Phase, limit int) int {
	for i := 1; i <= limit; i++ {
		s.Step(in)
		if s.Phase() == phase {
			return i
		}
	}
	return -1
}

// enterSearch skips repositioning by leaving the other side switch off for one cycle
func enterSearch(s *Sequencer) {
	s.Step(Inputs{})
}

func TestNew(t *testing.T) {
	Convey("A new Sequencer", t, func() {
		s := New(Config{Profile: rackbot.ProfileTuned, Height: rackbot.ScoreLow})

		Convey("starts repositioning with a zero counter", func() {
			So(s.Phase(), ShouldEqual, rackbot.PhaseReposition)
			So(s.Counter(), ShouldEqual, int32(0))
		})

		Convey("holds the home posture", func() {
			So(s.Setpoints().Arm, ShouldEqual, PostureHome.Arm)
			So(s.Setpoints().Wrist, ShouldEqual, PostureHome.Wrist)
		})

		Convey("commands a home wrist beyond the arm limit unchanged", func() {
			So(PostureHome.Wrist, ShouldBeLessThan, -ArmLimit)
			So(s.Setpoints().Wrist, ShouldEqual, int32(-415))
		})

		Convey("creates default loops", func() {
			So(s.Loops().Arm.Config(), ShouldResemble, DefaultArmConfig)
			So(s.Loops().Heading.Config(), ShouldResemble, DefaultHeadingConfig)
		})

		Convey("arms loops that were already complete", func() {
			loops := DefaultLoops()
			loops.Arm.Control(0)
			loops.Arm.Control(0)
			So(loops.Arm.Status(), ShouldEqual, pid.Complete)

			s.Init(Config{Loops: loops})
			So(loops.Arm.Status(), ShouldEqual, pid.Incomplete)
		})

		Convey("clears on-target history from an earlier run", func() {
			loops := DefaultLoops()
			loops.Wrist.Control(0)
			loops.Distance.Control(50)
			So(loops.Wrist.Status(), ShouldEqual, pid.InRange)
			So(loops.Distance.Integral(), ShouldNotEqual, int32(0))

			s.Init(Config{Loops: loops})
			So(loops.Distance.Integral(), ShouldEqual, int32(0))

			loops.Wrist.Control(0)
			So(loops.Wrist.Status(), ShouldEqual, pid.InRange)
		})
	})
}

func TestReposition(t *testing.T) {
	Convey("Repositioning", t, func() {
		s := New(Config{})
		in := Inputs{Heading: 500, Switches: rackbot.Switches{OtherSide: true}}

		Convey("drives backwards holding the captured heading", func() {
			out := s.Step(in)
			So(s.Phase(), ShouldEqual, rackbot.PhaseReposition)
			So(out.CameraHold, ShouldBeTrue)
			So(out.DriveLeft, ShouldEqual, mix.Command(70))
			So(out.DriveRight, ShouldEqual, mix.Command(70))
			So(out.ArmLeft, ShouldEqual, mix.Neutral)
			So(out.Wrist, ShouldEqual, mix.Neutral)

			drive, arm := s.Modes()
			So(drive, ShouldEqual, rackbot.DriveToAngle)
			So(arm, ShouldEqual, rackbot.ArmNone)

			Convey("and corrects heading drift after the second cycle", func() {
				in.Heading = 510
				s.Step(in)

				in.Heading = 540
				out := s.Step(in)
				So(s.Setpoints().Angle, ShouldEqual, int32(30))
				So(s.Setpoints().Distance, ShouldEqual, int32(RepositionDistance))
				So(out.DriveRight, ShouldEqual, mix.Command(76))
				So(out.DriveLeft, ShouldEqual, mix.Command(64))
			})
		})

		Convey("ends after the cycle limit", func() {
			n := stepUntil(s, in, rackbot.PhaseTargetSearch, 1000)
			So(n, ShouldEqual, RepositionCycles)
			So(s.Counter(), ShouldEqual, int32(0))
		})

		Convey("is skipped when the other side switch is off", func() {
			in.Switches.OtherSide = false
			out := s.Step(in)
			So(s.Phase(), ShouldEqual, rackbot.PhaseTargetSearch)
			So(s.Counter(), ShouldEqual, int32(0))

			Convey("and the last cycle does not drive without a target", func() {
				So(out.DriveLeft, ShouldEqual, mix.Neutral)
				So(out.DriveRight, ShouldEqual, mix.Neutral)
			})
		})
	})
}

func TestTargetSearch(t *testing.T) {
	Convey("Searching for the target", t, func() {
		s := New(Config{Profile: rackbot.ProfileTuned, Height: rackbot.ScoreLow})
		enterSearch(s)
		So(s.Phase(), ShouldEqual, rackbot.PhaseTargetSearch)

		// arm and wrist are at the low search posture
		settled := Inputs{ArmCount: 23, WristCount: 292}

		Convey("holds the search posture with the arm loops running", func() {
			out := s.Step(settled)
			So(s.Setpoints().Arm, ShouldEqual, int32(23))
			So(s.Setpoints().Wrist, ShouldEqual, int32(292))
			So(out.ArmLeft, ShouldEqual, mix.Neutral)
			So(out.DriveLeft, ShouldEqual, mix.Neutral)

			drive, arm := s.Modes()
			So(drive, ShouldEqual, rackbot.DriveNone)
			So(arm, ShouldEqual, rackbot.ArmCorrect)
		})

		Convey("stays while there are no detections", func() {
			for range SearchCycles {
				s.Step(settled)
			}
			So(s.Phase(), ShouldEqual, rackbot.PhaseTargetSearch)
			So(s.Counter(), ShouldEqual, int32(SearchCycles))

			Convey("and moves on the first cycle with a detection", func() {
				settled.Detections = 1
				s.Step(settled)
				So(s.Phase(), ShouldEqual, rackbot.PhaseApproachNear)
				So(s.Counter(), ShouldEqual, int32(0))
			})

			Convey("and picks the far approach when the other side switch is on", func() {
				settled.Detections = 1
				settled.Switches.OtherSide = true
				s.Step(settled)
				So(s.Phase(), ShouldEqual, rackbot.PhaseApproachFar)
			})
		})

		Convey("waits for the cycle count even with a target in view", func() {
			settled.Detections = 3
			for range SearchCycles - 1 {
				s.Step(settled)
				So(s.Phase(), ShouldEqual, rackbot.PhaseTargetSearch)
			}
			So(s.Counter(), ShouldEqual, int32(SearchCycles-1))

			s.Step(settled)
			So(s.Phase(), ShouldEqual, rackbot.PhaseApproachNear)
		})

		Convey("moves on the hundredth cycle when the target first appears then", func() {
			for range SearchCycles - 1 {
				s.Step(settled)
			}
			So(s.Phase(), ShouldEqual, rackbot.PhaseTargetSearch)
			So(s.Counter(), ShouldEqual, int32(99))

			settled.Detections = 1
			s.Step(settled)
			So(s.Phase(), ShouldEqual, rackbot.PhaseApproachNear)
			So(s.Counter(), ShouldEqual, int32(0))
		})

		Convey("does not move on the ninety-ninth cycle", func() {
			for range SearchCycles - 2 {
				s.Step(settled)
			}
			settled.Detections = 1
			s.Step(settled)
			So(s.Phase(), ShouldEqual, rackbot.PhaseTargetSearch)
			So(s.Counter(), ShouldEqual, int32(99))
		})

		Convey("waits for the arm to settle", func() {
			unsettled := Inputs{ArmCount: -153, WristCount: 292, Detections: 1}
			for range 3 * SearchCycles {
				s.Step(unsettled)
			}
			So(s.Phase(), ShouldEqual, rackbot.PhaseTargetSearch)
			So(s.Loops().Arm.Status(), ShouldNotEqual, pid.Complete)
		})
	})
}

func TestApproach(t *testing.T) {
	Convey("Approaching the target", t, func() {
		s := New(Config{Profile: rackbot.ProfileTuned, Height: rackbot.ScoreLow})
		enterSearch(s)
		n := stepUntil(s, Inputs{ArmCount: 23, WristCount: 292, Detections: 1}, rackbot.PhaseApproachNear, 200)
		So(n, ShouldBeGreaterThan, 0)

		Convey("stops when the target is lost", func() {
			out := s.Step(Inputs{Pan: 200, Tilt: 100})
			So(s.Phase(), ShouldEqual, rackbot.PhaseApproachNear)
			So(out.DriveLeft, ShouldEqual, mix.Neutral)
			So(out.ArmLeft, ShouldEqual, mix.Neutral)

			drive, arm := s.Modes()
			So(drive, ShouldEqual, rackbot.DriveNone)
			So(arm, ShouldEqual, rackbot.ArmNone)
		})

		Convey("uses camera pan and tilt for setpoints", func() {
			s.Step(Inputs{Pan: 200, Tilt: 100, Detections: 1})
			So(s.Setpoints().Distance, ShouldEqual, int32(120))
			So(s.Setpoints().Angle, ShouldEqual, int32(68))

			Convey("with the arm tucked while far away", func() {
				So(s.Setpoints().Arm, ShouldEqual, int32(23))
			})

			Convey("and the arm lowered once close", func() {
				s.Step(Inputs{Pan: 150, Tilt: 100, Detections: 1})
				So(s.Setpoints().Arm, ShouldEqual, PostureLow.Arm)
				So(s.Setpoints().Wrist, ShouldEqual, PostureLow.Wrist)
			})
		})

		Convey("scores once distance and angle are both complete", func() {
			onTarget := Inputs{Pan: 80, Tilt: 134, Detections: 1, ArmCount: 96, WristCount: 292}
			n := stepUntil(s, onTarget, rackbot.PhaseScore, 10)
			So(n, ShouldBeGreaterThan, 0)
			So(s.Counter(), ShouldEqual, int32(0))
		})
	})
}

func TestScore(t *testing.T) {
	Convey("Scoring", t, func() {
		s := New(Config{Profile: rackbot.ProfileTuned, Height: rackbot.ScoreLow})
		enterSearch(s)
		stepUntil(s, Inputs{ArmCount: 23, WristCount: 292, Detections: 1}, rackbot.PhaseApproachNear, 200)

		// the arm is far from the scoring posture the whole way in
		away := Inputs{Pan: 80, Tilt: 134, Detections: 1, ArmCount: -153, WristCount: -415}
		n := stepUntil(s, away, rackbot.PhaseScore, 10)
		So(n, ShouldBeGreaterThan, 0)

		Convey("does not release while the arm is moving", func() {
			for range 20 {
				out := s.Step(away)
				So(out.Grasp, ShouldBeFalse)
				So(out.DriveLeft, ShouldEqual, mix.Neutral)
			}
			So(s.Phase(), ShouldEqual, rackbot.PhaseScore)
			So(s.Setpoints().Arm, ShouldEqual, PostureLow.Arm)
		})

		Convey("releases exactly once when the arm settles", func() {
			s.Step(away)

			settled := Inputs{ArmCount: 96, WristCount: 292}
			toggles := 0
			grasp := false
			for range 10 {
				out := s.Step(settled)
				if out.Grasp != grasp {
					toggles++
					grasp = out.Grasp
				}
				if s.Phase() == rackbot.PhaseRetreat {
					break
				}
			}
			So(s.Phase(), ShouldEqual, rackbot.PhaseRetreat)
			So(s.Counter(), ShouldEqual, int32(0))
			So(toggles, ShouldEqual, 1)
			So(grasp, ShouldBeTrue)

			Convey("and keeps it released while retreating", func() {
				for range 20 {
					out := s.Step(settled)
					So(out.Grasp, ShouldBeTrue)
				}
			})
		})

		Convey("never releases on the first cycle", func() {
			// the arm loops can already be complete when entering Score
			s2 := New(Config{Profile: rackbot.ProfileTuned, Height: rackbot.ScoreLow})
			enterSearch(s2)
			stepUntil(s2, Inputs{ArmCount: 23, WristCount: 292, Detections: 1}, rackbot.PhaseApproachNear, 200)
			settledAtLow := Inputs{Pan: 80, Tilt: 134, Detections: 1, ArmCount: 96, WristCount: 292}
			stepUntil(s2, settledAtLow, rackbot.PhaseScore, 10)
			So(s2.Loops().Arm.Status(), ShouldEqual, pid.Complete)

			out := s2.Step(settledAtLow)
			So(out.Grasp, ShouldBeFalse)
			So(s2.Phase(), ShouldEqual, rackbot.PhaseScore)

			out = s2.Step(settledAtLow)
			So(out.Grasp, ShouldBeTrue)
			So(s2.Phase(), ShouldEqual, rackbot.PhaseRetreat)
		})
	})
}

// toRetreat runs a full Tuned/Low sequence up to Retreat
func toRetreat(s *Sequencer) {
	enterSearch(s)
	stepUntil(s, Inputs{ArmCount: 23, WristCount: 292, Detections: 1}, rackbot.PhaseApproachNear, 200)
	stepUntil(s, Inputs{Pan: 80, Tilt: 134, Detections: 1, ArmCount: 96, WristCount: 292}, rackbot.PhaseRetreat, 20)
}

func TestRetreatAndSweep(t *testing.T) {
	Convey("Retreating", t, func() {
		s := New(Config{Profile: rackbot.ProfileTuned, Height: rackbot.ScoreLow})
		toRetreat(s)
		So(s.Phase(), ShouldEqual, rackbot.PhaseRetreat)

		Convey("backs up with the wrist flicked", func() {
			out := s.Step(Inputs{Detections: 1, ArmCount: 96, WristCount: 292})
			So(s.Setpoints().Wrist, ShouldEqual, int32(RetreatWrist))
			So(s.Setpoints().Distance, ShouldEqual, int32(RetreatDistance))
			So(out.DriveLeft, ShouldEqual, mix.Command(108))
			So(out.DriveRight, ShouldEqual, mix.Command(108))
		})

		Convey("stops driving after the drive limit", func() {
			in := Inputs{Detections: 1}
			for range RetreatDriveCycles + 1 {
				s.Step(in)
			}
			out := s.Step(in)
			So(s.Phase(), ShouldEqual, rackbot.PhaseRetreat)
			So(out.DriveLeft, ShouldEqual, mix.Neutral)

			drive, arm := s.Modes()
			So(drive, ShouldEqual, rackbot.DriveNone)
			So(arm, ShouldEqual, rackbot.ArmCorrect)
		})

		Convey("stays without the sweep switch", func() {
			for range 500 {
				s.Step(Inputs{})
			}
			So(s.Phase(), ShouldEqual, rackbot.PhaseRetreat)
		})

		Convey("does not sweep from the other side", func() {
			for range 500 {
				s.Step(Inputs{Switches: rackbot.Switches{SweepEnable: true, OtherSide: true}})
			}
			So(s.Phase(), ShouldEqual, rackbot.PhaseRetreat)
		})

		Convey("sweeps when enabled", func() {
			in := Inputs{Switches: rackbot.Switches{SweepEnable: true, SweepDirection: true}}
			n := stepUntil(s, in, rackbot.PhaseSweep, 100)
			So(n, ShouldEqual, RetreatSweepAfter+2)

			Convey("turning first", func() {
				out := s.Step(in)
				So(out.Grasp, ShouldBeFalse)
				So(s.Setpoints(), ShouldResemble, Setpoints{Distance: 0, Angle: SweepTurnAngle, Arm: PostureHome.Arm, Wrist: PostureHome.Wrist})
				So(out.DriveRight, ShouldEqual, mix.Command(157))
				So(out.DriveLeft, ShouldEqual, mix.Command(97))
			})

			Convey("turning the other way with the direction switch off", func() {
				in.Switches.SweepDirection = false
				out := s.Step(in)
				So(s.Setpoints().Angle, ShouldEqual, int32(-SweepTurnAngle))
				So(out.DriveRight, ShouldEqual, mix.Command(97))
				So(out.DriveLeft, ShouldEqual, mix.Command(157))
			})

			Convey("then arcing", func() {
				for range SweepTurnCycles + 1 {
					s.Step(in)
				}
				So(s.Setpoints().Distance, ShouldEqual, int32(SweepArcDistance))
				So(s.Setpoints().Angle, ShouldEqual, int32(SweepArcAngle))
			})

			Convey("then driving straight forever", func() {
				for range 1000 {
					s.Step(in)
				}
				So(s.Phase(), ShouldEqual, rackbot.PhaseSweep)
				So(s.Setpoints().Distance, ShouldEqual, int32(SweepArcDistance))
				So(s.Setpoints().Angle, ShouldEqual, int32(0))
			})
		})
	})
}

func TestHold(t *testing.T) {
	Convey("Holding the drive", t, func() {
		s := New(Config{})
		enterSearch(s)

		s.Hold(200, 60)
		out := s.Step(Inputs{})
		So(out.DriveLeft, ShouldEqual, mix.Command(200))
		So(out.DriveRight, ShouldEqual, mix.Command(60))

		drive, arm := s.Modes()
		So(drive, ShouldEqual, rackbot.DriveHoldStraight)
		So(arm, ShouldEqual, rackbot.ArmCorrect)

		Convey("is undone by Release", func() {
			s.Release()
			out := s.Step(Inputs{})
			So(out.DriveLeft, ShouldEqual, mix.Neutral)
			drive, _ := s.Modes()
			So(drive, ShouldEqual, rackbot.DriveNone)
		})
	})
}

func TestOutputsStayInDomain(t *testing.T) {
	for _, profile := range []rackbot.Profile{rackbot.ProfileBaseline, rackbot.ProfileTuned, rackbot.ProfileAlternate} {
		for _, height := range []rackbot.ScoreHeight{rackbot.ScoreLow, rackbot.ScoreMid, rackbot.ScoreTop} {
			t.Run(profile.String()+height.String(), func(t *testing.T) {
				s := New(Config{Profile: profile, Height: height})
				for i := range 3000 {
					in := Inputs{
						Heading:    int32(i*37) - 20000,
						Detections: uint8(i % 3),
						Pan:        uint8(i * 7),
						Tilt:       uint8(i * 13),
						Switches:   rackbot.Switches{OtherSide: i < 100, SweepEnable: true},
						ArmCount:   int32(i%800) - 400,
						WristCount: int32(i%900) - 450,
					}
					out := s.Step(in)
					for _, c := range []mix.Command{out.DriveLeft, out.DriveRight, out.ArmLeft, out.ArmRight, out.Wrist} {
						if c > mix.Max {
							t.Fatalf("cycle %d: command out of range: %d", i, c)
						}
					}
					sp := s.Setpoints()
					if sp.Arm > ArmLimit || sp.Arm < -ArmLimit {
						t.Fatalf("cycle %d: setpoint out of range: %+v", i, sp)
					}
				}
			})
		}
	}
}
