package surface

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soniform/soniform/algorithms/common"
	"github.com/soniform/soniform/engine/config"
	"github.com/soniform/soniform/engine/forces"
)

// activeImpulse is an admitted impulse decaying linearly over its
// duration, clocked against simulation time.
type activeImpulse struct {
	imp        forces.Impulse
	admittedAt float64
}

// Simulator integrates the fixed-topology deformable sphere at a
// fixed timestep. The mesh is created once and never resized. Given
// the same ordered sequence of Forces, two simulators produce
// identical trajectories: nothing here reads the wall clock, spawns
// goroutines, or iterates a map.
//
// Numerical blow-up is structurally impossible: every tick ends with
// a hard radial clamp to ±MaxDeformFraction of the base radius and a
// velocity magnitude clamp. There is no error path out of Step.
type Simulator struct {
	cfg    *config.PhysicsConstants
	ripple *forces.RippleField
	dt     float64

	dirs []r3.Vec // rest unit directions, fixed
	pos  []r3.Vec
	vel  []r3.Vec

	now     float64
	version uint64

	active       []activeImpulse
	lastAdmitted float64
	hasAdmitted  bool

	// carried from the last Step for snapshot-time displacement
	rippleAmp     float64
	ambientOffset float64
}

// NewSimulator builds the rest-state mesh from the constants.
// Configuration problems surface here, never mid-stream.
func NewSimulator(cfg *config.PhysicsConstants) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("surface simulator: %w", err)
	}

	dirs, err := SphereDirections(cfg.VertexCount)
	if err != nil {
		return nil, fmt.Errorf("surface simulator: %w", err)
	}

	pos := make([]r3.Vec, len(dirs))
	for i, d := range dirs {
		pos[i] = r3.Scale(cfg.BaseRadius, d)
	}

	return &Simulator{
		cfg:    cfg,
		ripple: forces.NewRippleField(cfg.RippleSeed, cfg.RippleSpatialFreq, cfg.RippleTemporalFreq),
		dt:     1.0 / cfg.TickRate,
		dirs:   dirs,
		pos:    pos,
		vel:    make([]r3.Vec, len(dirs)),
	}, nil
}

// Dt returns the fixed integration timestep
func (s *Simulator) Dt() float64 {
	return s.dt
}

// Now returns the current simulation time
func (s *Simulator) Now() float64 {
	return s.now
}

// VertexCount returns the fixed mesh size
func (s *Simulator) VertexCount() int {
	return len(s.dirs)
}

// Step advances the surface by exactly one fixed timestep under the
// given forces. The same Forces value may be passed repeatedly; its
// impulse (identified by Start) is admitted only once.
func (s *Simulator) Step(f forces.Forces) {
	cfg := s.cfg

	if f.Impulse != nil && (!s.hasAdmitted || f.Impulse.Start != s.lastAdmitted) {
		s.active = append(s.active, activeImpulse{imp: *f.Impulse, admittedAt: s.now})
		s.lastAdmitted = f.Impulse.Start
		s.hasAdmitted = true
	}
	s.expireImpulses()

	maxDeform := cfg.MaxDeformFraction * cfg.BaseRadius
	rMin := cfg.BaseRadius - maxDeform
	rMax := cfg.BaseRadius + maxDeform
	invMass := 1.0 / cfg.Mass

	for i := range s.pos {
		p := s.pos[i]
		v := s.vel[i]

		r := r3.Norm(p)
		u := s.dirs[i]
		if r > 1e-12 {
			u = r3.Scale(1.0/r, p)
		}

		// Spring toward rest radius, displacement clamped so upstream
		// force spikes cannot inject unbounded energy
		disp := common.Clamp(r-cfg.BaseRadius, -maxDeform, maxDeform)
		force := r3.Scale(-f.SpringConstant*disp, u)
		force = r3.Add(force, r3.Scale(-cfg.SpringDamping, v))

		// Uniform radial pressure
		force = r3.Add(force, r3.Scale(f.RadialPressure, u))

		// Time-bounded impulses, linear decay over duration
		for _, ai := range s.active {
			frac := 1.0 - (s.now-ai.admittedAt)/ai.imp.Duration
			if frac > 0 {
				force = r3.Add(force, r3.Scale(ai.imp.Magnitude*frac, ai.imp.Direction))
			}
		}

		// Semi-implicit step: velocity first, then position
		v = r3.Add(v, r3.Scale(s.dt*invMass, force))
		v = r3.Scale(1.0-cfg.GlobalDamping*s.dt, v)
		if speed := r3.Norm(v); speed > cfg.MaxVelocity {
			v = r3.Scale(cfg.MaxVelocity/speed, v)
		}
		p = r3.Add(p, r3.Scale(s.dt, v))

		// Hard radial clamp: the non-negotiable invariant
		pr := r3.Norm(p)
		if pr <= 1e-12 {
			p = r3.Scale(rMin, s.dirs[i])
		} else if clamped := common.Clamp(pr, rMin, rMax); clamped != pr {
			p = r3.Scale(clamped/pr, p)
		}

		s.pos[i] = p
		s.vel[i] = v
	}

	s.rippleAmp = f.RippleAmplitude
	s.ambientOffset = f.AmbientOffset
	s.now += s.dt
	s.version++
}

// expireImpulses drops impulses whose duration has elapsed
func (s *Simulator) expireImpulses() {
	kept := s.active[:0]
	for _, ai := range s.active {
		if s.now-ai.admittedAt < ai.imp.Duration {
			kept = append(kept, ai)
		}
	}
	s.active = kept
}

// Snapshot deep-copies the renderable state. The ripple field and
// ambient breathing are additive positional offsets applied here,
// outside the integrator, so they can never destabilize it; the
// radial clamp is re-applied to the displaced result so the renderer
// never observes a vertex outside the deformation bound.
func (s *Simulator) Snapshot() *State {
	cfg := s.cfg
	maxDeform := cfg.MaxDeformFraction * cfg.BaseRadius
	rMin := cfg.BaseRadius - maxDeform
	rMax := cfg.BaseRadius + maxDeform

	st := &State{
		Version:         s.version,
		Time:            s.now,
		BaseRadius:      cfg.BaseRadius,
		RippleAmplitude: s.rippleAmp,
		Positions:       make([]r3.Vec, len(s.pos)),
		Velocities:      make([]r3.Vec, len(s.vel)),
	}

	for i := range s.pos {
		offset := s.ambientOffset
		if s.rippleAmp != 0 {
			offset += s.rippleAmp * s.ripple.Eval(s.dirs[i], s.now)
		}

		p := r3.Add(s.pos[i], r3.Scale(offset, s.dirs[i]))
		pr := r3.Norm(p)
		if pr > 1e-12 {
			if clamped := common.Clamp(pr, rMin, rMax); clamped != pr {
				p = r3.Scale(clamped/pr, p)
			}
		}

		st.Positions[i] = p
		st.Velocities[i] = s.vel[i]
	}

	return st
}
