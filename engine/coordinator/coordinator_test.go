package coordinator

import (
	"errors"
	"math"
	"testing"

	"github.com/soniform/soniform/engine/config"
	"github.com/soniform/soniform/engine/forces"
)

// testConfig builds a config whose block cadence matches the tick
// rate exactly (hop 800 @ 48kHz = 1/60 s), with a test-sized mesh.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Physics.VertexCount = 300
	cfg.Stream = config.StreamConfig{SampleRate: 48000, BlockSize: 1600, HopSize: 800}
	return cfg
}

func sineSamples(n int, freq float64, sampleRate int, amplitude float64, phase int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(phase+i)/float64(sampleRate))
	}
	return out
}

// scenarioAmplitude returns the sine amplitude for block k of the
// 3-second synthetic stream: 1s RMS ramp 0 -> 0.5, 1s steady at 0.5,
// 1s silence. Sine RMS is amplitude/sqrt(2).
func scenarioAmplitude(k int) float64 {
	var rms float64
	switch {
	case k < 60:
		rms = 0.5 * float64(k) / 60.0
	case k < 120:
		rms = 0.5
	default:
		rms = 0.0
	}
	return rms * math.Sqrt2
}

func TestCoordinatorPublishesRestStateImmediately(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	st := c.Latest()
	if st == nil {
		t.Fatal("renderer must never observe a nil state")
	}
	if st.VertexCount() != 300 {
		t.Fatalf("vertex count = %d, want 300", st.VertexCount())
	}
	for _, p := range st.Positions {
		r := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
		if math.Abs(r-1.0) > 1e-9 {
			t.Fatalf("rest state vertex at radius %g, want 1.0", r)
		}
	}
}

func TestCoordinatorRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Stream.HopSize = 0
	if _, err := New(cfg); err == nil {
		t.Fatal("invalid stream config must fail construction")
	}
}

func TestMailboxDropOldest(t *testing.T) {
	var m forceMailbox

	m.Put(forces.Forces{RadialPressure: 1})
	m.Put(forces.Forces{RadialPressure: 2})

	got := m.Take()
	if got == nil || got.RadialPressure != 2 {
		t.Fatalf("consumer must see the newest forces, got %+v", got)
	}
	if m.Take() != nil {
		t.Fatal("second take should find the mailbox empty")
	}
	if m.Dropped() != 1 {
		t.Fatalf("dropped count = %d, want 1", m.Dropped())
	}
}

func TestTickWithoutInputReusesLastForces(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	// No audio at all: ticks must still advance and publish
	v0 := c.Latest().Version
	c.Tick()
	c.Tick()
	if got := c.Latest().Version; got != v0+2 {
		t.Fatalf("version = %d, want %d", got, v0+2)
	}
}

func TestRecordingLifecycle(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.StopRecording(); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}

	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	if err := c.StartRecording(); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("expected ErrAlreadyRecording, got %v", err)
	}

	// Two full blocks
	c.CaptureChunk(sineSamples(1600, 440, 48000, 0.3, 0))
	c.CaptureChunk(sineSamples(800, 440, 48000, 0.3, 1600))

	sealed, err := c.StopRecording()
	if err != nil {
		t.Fatal(err)
	}
	if sealed.Len() != 2 {
		t.Fatalf("recorded %d snapshots, want 2", sealed.Len())
	}
	if h := sealed.Header(); h.VertexCount != 300 || h.SampleRate != 48000 {
		t.Fatalf("unexpected header %+v", h)
	}

	// Strictly increasing timestamps at hop cadence
	if sealed.At(0).Timestamp != 0 {
		t.Fatalf("first snapshot at t=%g, want 0", sealed.At(0).Timestamp)
	}
	want := 800.0 / 48000.0
	if math.Abs(sealed.At(1).Timestamp-want) > 1e-12 {
		t.Fatalf("second snapshot at t=%g, want %g", sealed.At(1).Timestamp, want)
	}
}

// TestEndToEndScenario runs the 3-second synthetic stream through the
// full capture pipeline at matched 60Hz cadence: the mesh's average
// radial offset must peak while the signal is loud and collapse
// within the trailing second of silence.
func TestEndToEndScenario(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	offsets := make([]float64, 180)
	samplePos := 0
	for k := 0; k < 180; k++ {
		n := 1600
		if k > 0 {
			n = 800
		}
		c.CaptureChunk(sineSamples(n, 440, 48000, scenarioAmplitude(k), samplePos))
		samplePos += n

		c.Tick()
		offsets[k] = c.Latest().AverageRadialOffset()
	}

	peakTick, peak := 0, 0.0
	for k, off := range offsets {
		if off > peak {
			peak = off
			peakTick = k
		}
	}

	if peak <= 0 {
		t.Fatal("loud input should deform the mesh")
	}
	// Smoothing lets the deformation lag the input by a few blocks
	if peakTick < 59 || peakTick > 126 {
		t.Fatalf("average radial offset peaked at tick %d, want within the loud window", peakTick)
	}
	if final := offsets[179]; final >= 0.1*peak {
		t.Fatalf("offset %g at tick 180 should be under 10%% of peak %g", final, peak)
	}
}

// TestSilenceDecayAndAmbient feeds 2s of loud input then 5s of
// silence: kinetic energy must be under 5% of its peak 2s after
// silence begins, and the Ambient phase must keep the mesh in
// bounded, nonzero motion indefinitely.
func TestSilenceDecayAndAmbient(t *testing.T) {
	cfg := testConfig()
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	feed := func(k int, amplitude float64, samplePos *int) {
		n := 1600
		if k > 0 {
			n = 800
		}
		c.CaptureChunk(sineSamples(n, 440, 48000, amplitude, *samplePos))
		*samplePos += n
		c.Tick()
	}

	samplePos := 0
	peakKE := 0.0
	for k := 0; k < 120; k++ { // 2s loud
		feed(k, 0.5*math.Sqrt2, &samplePos)
		if ke := c.Latest().KineticEnergy(); ke > peakKE {
			peakKE = ke
		}
	}
	if peakKE <= 0 {
		t.Fatal("loud input should produce kinetic energy")
	}

	for k := 120; k < 240; k++ { // 2s after silence begins
		feed(k, 0, &samplePos)
	}
	if ke := c.Latest().KineticEnergy(); ke >= 0.05*peakKE {
		t.Fatalf("kinetic energy %g should be under 5%% of peak %g", ke, peakKE)
	}

	for k := 240; k < 420; k++ { // out to 7s: well into Ambient
		feed(k, 0, &samplePos)
	}

	// Ambient breathing: nonzero but within the ambient amplitude
	// bound (plus a little residual spring relaxation)
	offset := c.Latest().AverageRadialOffset()
	bound := cfg.Physics.AmbientAmplitude * cfg.Physics.BaseRadius
	if offset <= 0 {
		t.Fatal("Ambient phase must never go perfectly static")
	}
	if offset > bound*1.2 {
		t.Fatalf("ambient offset %g exceeds bound %g", offset, bound)
	}
}
