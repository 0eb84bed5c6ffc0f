package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/calvinmclean/rackbot"
	"github.com/calvinmclean/rackbot/twchart"
)

// recorder turns telemetry into one twchart session per autonomous run. A run starts when the
// phase leaves Idle and ends when it returns to Idle. Each phase is a stage, followed by an event
// with the arm and wrist counts sampled as it began
type recorder struct {
	client twchartClient
	name   string
	probes twchart.Probes
	now    func() time.Time

	phase rackbot.Phase
	grasp bool
	runs  int
}

func newRecorder(client twchartClient, name string, probes twchart.Probes) *recorder {
	return &recorder{
		client: client,
		name:   name,
		probes: probes,
		now:    time.Now,
	}
}

// Phase returns the phase from the last recorded telemetry
func (r *recorder) Phase() rackbot.Phase {
	return r.phase
}

// Record compares telemetry with the previous cycle and records any changes
func (r *recorder) Record(ctx context.Context, t rackbot.Telemetry) error {
	now := r.now()
	prev := r.phase
	r.phase = t.Phase

	var errs []error
	switch {
	case prev == t.Phase:
	case prev == rackbot.PhaseIdle:
		r.runs++
		r.grasp = false

		name := r.name
		if r.runs > 1 {
			name += " #" + strconv.Itoa(r.runs)
		}

		_, err := r.client.CreateSession(ctx, name, r.probes)
		if err != nil {
			return fmt.Errorf("error creating session: %w", err)
		}
		errs = append(errs, r.client.SetStartTime(ctx, now))
		errs = append(errs, r.client.AddStage(ctx, t.Phase.String(), now))
		errs = append(errs, r.client.AddPositions(ctx, positions(t), now))
	case t.Phase == rackbot.PhaseIdle:
		errs = append(errs, r.client.Done(ctx))
	default:
		errs = append(errs, r.client.AddStage(ctx, t.Phase.String(), now))
		errs = append(errs, r.client.AddPositions(ctx, positions(t), now))
	}

	if t.Phase != rackbot.PhaseIdle && t.Outputs.Grasp != r.grasp {
		note := "Grasp released"
		if t.Outputs.Grasp {
			note = "Grasp closed"
		}
		errs = append(errs, r.client.AddEvent(ctx, note, now))
	}
	r.grasp = t.Outputs.Grasp

	err := errors.Join(errs...)
	if err != nil {
		return fmt.Errorf("error recording cycle %d: %w", t.Cycle, err)
	}
	return nil
}

// positions returns the sampled counts indexed by encoder channel
func positions(t rackbot.Telemetry) []int32 {
	return []int32{t.ArmCount, t.WristCount}
}
