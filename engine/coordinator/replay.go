package coordinator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/soniform/soniform/engine/config"
	"github.com/soniform/soniform/engine/forces"
	"github.com/soniform/soniform/engine/silence"
	"github.com/soniform/soniform/engine/surface"
	"github.com/soniform/soniform/engine/timeline"
	"github.com/soniform/soniform/logging"
)

// ErrReplayCancelled distinguishes a cancelled replay from both
// success and failure. The caller must treat any partially produced
// output as incomplete and discard it.
var ErrReplayCancelled = errors.New("replay: cancelled")

// Replayer re-executes the physics pipeline from a sealed timeline,
// deterministically and single-threaded: for each output frame it
// performs lookup, classification, force mapping and exactly one
// simulator tick. There is no catch-up loop and no concurrency —
// reordering floating-point accumulation would break the guarantee
// that exported frames match what was seen live.
type Replayer struct {
	log logging.Logger

	sealed     *timeline.Sealed
	classifier *silence.Classifier
	mapper     *forces.Mapper
	sim        *surface.Simulator

	frameRate float64
	frames    int
}

// NewReplayer validates the sealed timeline against the constants it
// will be replayed with. A vertex-count mismatch between the
// recording session and the live mesh configuration is a
// construction-time error, never a mid-replay surprise.
func NewReplayer(phys *config.PhysicsConstants, sealed *timeline.Sealed, frameRate float64) (*Replayer, error) {
	if sealed == nil || sealed.Len() == 0 {
		return nil, fmt.Errorf("replay: empty timeline")
	}
	if frameRate <= 0 {
		return nil, fmt.Errorf("replay: frame rate must be positive, got %g", frameRate)
	}
	if hv := sealed.Header().VertexCount; hv != 0 && hv != phys.VertexCount {
		return nil, fmt.Errorf("replay: timeline recorded with %d vertices, configured mesh has %d", hv, phys.VertexCount)
	}

	sim, err := surface.NewSimulator(phys)
	if err != nil {
		return nil, err
	}

	// The product can land just below an integer when the recording's
	// hop cadence matches the frame rate exactly (duration is a sum of
	// 1/rate steps); pad before flooring so the final frame is never
	// dropped.
	frames := int(math.Floor(sealed.Duration()*frameRate+1e-9)) + 1

	return &Replayer{
		log: logging.WithFields(logging.Fields{
			"component": "replayer",
		}),
		sealed:     sealed,
		classifier: silence.NewClassifier(phys),
		mapper:     forces.NewMapper(phys),
		sim:        sim,
		frameRate:  frameRate,
		frames:     frames,
	}, nil
}

// FrameCount returns the number of frames a full replay produces
func (r *Replayer) FrameCount() int {
	return r.frames
}

// Run iterates the full recording, invoking fn once per frame with
// the frame index and the surface state after that frame's tick.
// Cancellation is cooperative, checked once per frame, and surfaced
// as ErrReplayCancelled. A non-nil error from fn stops the replay
// and is returned as-is.
func (r *Replayer) Run(ctx context.Context, fn func(frame int, st *surface.State) error) error {
	r.log.Info("replay started", logging.Fields{
		"frames":     r.frames,
		"frame_rate": r.frameRate,
	})

	for i := 0; i < r.frames; i++ {
		select {
		case <-ctx.Done():
			r.log.Warn("replay cancelled", logging.Fields{
				"frame":  i,
				"frames": r.frames,
			})
			return ErrReplayCancelled
		default:
		}

		t := float64(i) / r.frameRate
		snap := r.sealed.Lookup(t)
		r.classifier.Observe(snap.RMS, t)
		f := r.mapper.Map(snap, r.classifier, t)
		r.sim.Step(f)

		if err := fn(i, r.sim.Snapshot()); err != nil {
			return err
		}
	}

	r.log.Info("replay complete", logging.Fields{
		"frames": r.frames,
	})
	return nil
}
