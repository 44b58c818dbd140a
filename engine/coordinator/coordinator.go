package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/soniform/soniform/engine/config"
	"github.com/soniform/soniform/engine/features"
	"github.com/soniform/soniform/engine/forces"
	"github.com/soniform/soniform/engine/silence"
	"github.com/soniform/soniform/engine/surface"
	"github.com/soniform/soniform/engine/timeline"
	"github.com/soniform/soniform/logging"
)

// ErrNotRecording is returned by StopRecording without a matching
// StartRecording
var ErrNotRecording = errors.New("coordinator: not recording")

// ErrAlreadyRecording is returned by StartRecording while a session
// is open
var ErrAlreadyRecording = errors.New("coordinator: already recording")

// Coordinator owns the two live cadences. The capture cadence runs on
// the audio-input context: one CaptureChunk call per delivered PCM
// chunk, feeding extraction, classification, force mapping, optional
// timeline appends and the mailbox handoff — no locks, no I/O, no
// logging on that path. The simulation cadence runs Tick at the fixed
// tick rate, reusing the last known forces whenever the mailbox is
// empty (which is what degrades naturally into the Settling/Ambient
// behavior when input goes silent), and publishes a complete State
// snapshot for the renderer to pull.
//
// Everything is constructed once here and passed by reference; there
// is no ambient global state.
type Coordinator struct {
	log logging.Logger

	phys   *config.PhysicsConstants
	stream *config.StreamConfig

	// capture cadence state (audio context only)
	overlap    *features.OverlapBuffer
	extractor  *features.Extractor
	classifier *silence.Classifier
	mapper     *forces.Mapper
	blockIndex uint64

	mailbox forceMailbox
	rec     atomic.Pointer[timeline.Timeline]

	// simulation cadence state (simulation context only)
	sim  *surface.Simulator
	last forces.Forces

	published atomic.Pointer[surface.State]
}

// New validates the configuration and builds the full pipeline,
// publishing the rest-state surface immediately so a renderer never
// observes a nil state.
func New(cfg *config.Config) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("coordinator: %w", err)
	}

	sim, err := surface.NewSimulator(&cfg.Physics)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		log: logging.WithFields(logging.Fields{
			"component": "coordinator",
		}),
		phys:       &cfg.Physics,
		stream:     &cfg.Stream,
		overlap:    features.NewOverlapBuffer(cfg.Stream.BlockSize, cfg.Stream.HopSize),
		extractor:  features.NewExtractor(&cfg.Physics, &cfg.Stream),
		classifier: silence.NewClassifier(&cfg.Physics),
		mapper:     forces.NewMapper(&cfg.Physics),
		sim:        sim,
	}
	c.published.Store(sim.Snapshot())

	return c, nil
}

// CaptureChunk feeds raw mono PCM from the audio source. Chunks may
// be any length; the overlap buffer assembles them into analysis
// blocks. Must only be called from the audio-input context.
func (c *Coordinator) CaptureChunk(samples []float64) {
	c.overlap.Feed(samples, c.processBlock)
}

// processBlock handles one complete analysis block
func (c *Coordinator) processBlock(block []float64) {
	t := float64(c.blockIndex) * float64(c.stream.HopSize) / float64(c.stream.SampleRate)
	c.blockIndex++

	snap, _ := c.extractor.ProcessBlock(block, t)
	c.classifier.Observe(snap.RMS, t)
	f := c.mapper.Map(snap, c.classifier, t)

	if rec := c.rec.Load(); rec != nil {
		// Append is in-memory only; persistence happens after seal,
		// off the audio path.
		_ = rec.Append(snap)
	}

	c.mailbox.Put(f)
}

// Tick advances the simulation by one fixed timestep and publishes
// the resulting state. If no new forces arrived since the previous
// tick it reuses the last known forces rather than stalling. Must
// only be called from the simulation context.
func (c *Coordinator) Tick() {
	if f := c.mailbox.Take(); f != nil {
		c.last = *f
	}
	c.sim.Step(c.last)
	c.published.Store(c.sim.Snapshot())
}

// Run drives Tick at the configured tick rate until ctx is
// cancelled. When the loop falls behind wall time it runs catch-up
// ticks rather than skipping or stretching any.
func (c *Coordinator) Run(ctx context.Context) error {
	interval := time.Duration(float64(time.Second) / c.phys.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.log.Info("simulation loop started", logging.Fields{
		"tick_rate": c.phys.TickRate,
	})

	next := time.Now()
	for {
		select {
		case <-ctx.Done():
			c.log.Info("simulation loop stopped", logging.Fields{
				"dropped_forces": c.mailbox.Dropped(),
			})
			return ctx.Err()
		case now := <-ticker.C:
			for !next.After(now) {
				c.Tick()
				next = next.Add(interval)
			}
		}
	}
}

// Latest returns the most recently published surface state. Always
// complete and non-torn; safe to call from any context.
func (c *Coordinator) Latest() *surface.State {
	return c.published.Load()
}

// StartRecording opens a timeline for the current session
func (c *Coordinator) StartRecording() error {
	header := timeline.Header{
		SampleRate:  c.stream.SampleRate,
		BlockSize:   c.stream.BlockSize,
		VertexCount: c.phys.VertexCount,
	}

	if !c.rec.CompareAndSwap(nil, timeline.New(header)) {
		return ErrAlreadyRecording
	}

	c.log.Info("recording started", logging.Fields{
		"sample_rate": header.SampleRate,
		"block_size":  header.BlockSize,
	})
	return nil
}

// StopRecording seals the open timeline at the last appended
// snapshot and returns the immutable result. No partial snapshot is
// ever exposed: appends happen whole on the capture path and sealing
// excludes nothing that was appended.
func (c *Coordinator) StopRecording() (*timeline.Sealed, error) {
	rec := c.rec.Swap(nil)
	if rec == nil {
		return nil, ErrNotRecording
	}

	sealed := rec.Seal()
	c.log.Info("recording sealed", logging.Fields{
		"snapshots": sealed.Len(),
		"duration":  sealed.Duration(),
	})
	return sealed, nil
}

// DroppedForces reports mailbox overwrites, for diagnostics
func (c *Coordinator) DroppedForces() uint64 {
	return c.mailbox.Dropped()
}
