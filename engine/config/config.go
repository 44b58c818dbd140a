package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// PhysicsConstants is the immutable parameter set shared read-only by
// the simulator, silence classifier and force mapper. It is loaded
// once at startup; nothing mutates it at runtime.
type PhysicsConstants struct {
	// Mesh
	VertexCount int     `json:"vertex_count"`
	BaseRadius  float64 `json:"base_radius"`

	// Integration
	TickRate          float64 `json:"tick_rate"`
	Mass              float64 `json:"mass"`
	SpringConstant    float64 `json:"spring_constant"` // tension base
	TensionRange      float64 `json:"tension_range"`
	SpringDamping     float64 `json:"spring_damping"`
	GlobalDamping     float64 `json:"global_damping"`
	MaxDeformFraction float64 `json:"max_deform_fraction"`
	MaxVelocity       float64 `json:"max_velocity"`

	// Feature-to-force mapping
	ExpansionScale     float64 `json:"expansion_scale"`
	RippleAmplitudeMax float64 `json:"ripple_amplitude_max"` // fraction of BaseRadius
	RippleSpatialFreq  float64 `json:"ripple_spatial_freq"`
	RippleTemporalFreq float64 `json:"ripple_temporal_freq"`
	RippleSeed         int64   `json:"ripple_seed"`
	ImpulseScale       float64 `json:"impulse_scale"`
	ImpulseDuration    float64 `json:"impulse_duration"`

	// Onset detection
	OnsetThreshold float64 `json:"onset_threshold"`
	OnsetCooldown  float64 `json:"onset_cooldown"`

	// Silence state machine
	SilenceThreshold float64 `json:"silence_threshold"`
	SettleDuration   float64 `json:"settle_duration"`
	RippleDecayTau   float64 `json:"ripple_decay_tau"`
	AmbientAmplitude float64 `json:"ambient_amplitude"` // fraction of BaseRadius
	AmbientFrequency float64 `json:"ambient_frequency"` // Hz

	// Feature smoothing factors
	AlphaRMS      float64 `json:"alpha_rms"`
	AlphaCentroid float64 `json:"alpha_centroid"`
	AlphaZCR      float64 `json:"alpha_zcr"`
}

// StreamConfig describes the audio stream the engine is fed. The
// engine does not resample; rate and block size are assumed constant
// for one capture session.
type StreamConfig struct {
	SampleRate int `json:"sample_rate"`
	BlockSize  int `json:"block_size"`
	HopSize    int `json:"hop_size"`
}

// Config bundles the full engine configuration
type Config struct {
	Physics PhysicsConstants `json:"physics"`
	Stream  StreamConfig     `json:"stream"`
}

// DefaultPhysicsConstants returns the tuned defaults
func DefaultPhysicsConstants() PhysicsConstants {
	return PhysicsConstants{
		VertexCount: 2500,
		BaseRadius:  1.0,

		TickRate:          60.0,
		Mass:              1.0,
		SpringConstant:    10.0,
		TensionRange:      5.0,
		SpringDamping:     2.0,
		GlobalDamping:     4.0,
		MaxDeformFraction: 0.03,
		MaxVelocity:       0.5,

		ExpansionScale:     0.03,
		RippleAmplitudeMax: 0.005,
		RippleSpatialFreq:  3.0,
		RippleTemporalFreq: 8.0,
		RippleSeed:         1137,
		ImpulseScale:       0.5,
		ImpulseDuration:    0.15,

		OnsetThreshold: 0.08,
		OnsetCooldown:  0.1,

		SilenceThreshold: 0.02,
		SettleDuration:   2.0,
		RippleDecayTau:   1.5,
		AmbientAmplitude: 0.001,
		AmbientFrequency: 0.05,

		AlphaRMS:      0.15,
		AlphaCentroid: 0.1,
		AlphaZCR:      0.2,
	}
}

// DefaultStreamConfig returns the default capture format: 48 kHz
// mono, 2048-sample blocks with 50% overlap
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		SampleRate: 48000,
		BlockSize:  2048,
		HopSize:    1024,
	}
}

// Default returns a complete default configuration
func Default() *Config {
	return &Config{
		Physics: DefaultPhysicsConstants(),
		Stream:  DefaultStreamConfig(),
	}
}

// Validate checks the physics constants for construction-time errors.
// Violations here are programmer/configuration errors and fail fast;
// they are never recoverable mid-stream.
func (p *PhysicsConstants) Validate() error {
	if p.VertexCount <= 0 {
		return fmt.Errorf("vertex_count must be positive, got %d", p.VertexCount)
	}
	if p.BaseRadius <= 0 {
		return fmt.Errorf("base_radius must be positive, got %g", p.BaseRadius)
	}
	if p.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %g", p.TickRate)
	}
	if p.Mass <= 0 {
		return fmt.Errorf("mass must be positive, got %g", p.Mass)
	}
	if p.SpringConstant <= 0 {
		return fmt.Errorf("spring_constant must be positive, got %g", p.SpringConstant)
	}
	if p.MaxDeformFraction <= 0 || p.MaxDeformFraction >= 1 {
		return fmt.Errorf("max_deform_fraction must be in (0, 1), got %g", p.MaxDeformFraction)
	}
	if p.MaxVelocity <= 0 {
		return fmt.Errorf("max_velocity must be positive, got %g", p.MaxVelocity)
	}
	if p.SettleDuration < 0 {
		return fmt.Errorf("settle_duration must be non-negative, got %g", p.SettleDuration)
	}
	if p.RippleDecayTau <= 0 {
		return fmt.Errorf("ripple_decay_tau must be positive, got %g", p.RippleDecayTau)
	}
	if p.ImpulseDuration <= 0 {
		return fmt.Errorf("impulse_duration must be positive, got %g", p.ImpulseDuration)
	}
	return nil
}

// Validate checks the stream configuration
func (s *StreamConfig) Validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", s.SampleRate)
	}
	if s.BlockSize <= 1 {
		return fmt.Errorf("block_size must be greater than 1, got %d", s.BlockSize)
	}
	if s.HopSize <= 0 || s.HopSize > s.BlockSize {
		return fmt.Errorf("hop_size must be in [1, block_size], got %d", s.HopSize)
	}
	return nil
}

// Validate checks the full configuration
func (c *Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("physics: %w", err)
	}
	if err := c.Stream.Validate(); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	return nil
}

// Load reads a JSON configuration file. Missing fields keep their
// defaults; the result is validated before being returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
