package timeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/soniform/soniform/engine/features"
)

// ErrSealed is returned by Append once the timeline has been sealed
var ErrSealed = errors.New("timeline: append after seal")

// ErrOutOfOrder is returned when a snapshot does not advance the
// timeline's strictly increasing timestamp order
var ErrOutOfOrder = errors.New("timeline: non-increasing timestamp")

// Header identifies a timeline's format version and the capture
// session parameters a replay must match.
type Header struct {
	Version     int `json:"soniform_timeline"`
	SampleRate  int `json:"sample_rate"`
	BlockSize   int `json:"block_size"`
	VertexCount int `json:"vertex_count"`
}

// FormatVersion is the current timeline format version
const FormatVersion = 1

// Timeline is the append-only record of one recording session.
// Appends happen on the capture path; Seal is called once when
// recording stops. The mutex is uncontended except at the seal
// boundary, and appends never perform I/O.
type Timeline struct {
	mu     sync.Mutex
	header Header
	snaps  []features.FeatureSnapshot
	sealed bool
}

// New creates an open timeline for one recording session
func New(header Header) *Timeline {
	header.Version = FormatVersion
	return &Timeline{header: header}
}

// Append records one snapshot. It returns ErrSealed after Seal and
// ErrOutOfOrder if the timestamp does not strictly increase.
func (t *Timeline) Append(snap features.FeatureSnapshot) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sealed {
		return ErrSealed
	}
	if n := len(t.snaps); n > 0 && snap.Timestamp <= t.snaps[n-1].Timestamp {
		return fmt.Errorf("%w: %g after %g", ErrOutOfOrder, snap.Timestamp, t.snaps[n-1].Timestamp)
	}

	t.snaps = append(t.snaps, snap)
	return nil
}

// Len returns the number of recorded snapshots
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.snaps)
}

// Seal closes the timeline at the last appended snapshot and returns
// the immutable sealed view. Further Appends fail; Seal is
// idempotent in effect (the returned view is always complete).
func (t *Timeline) Seal() *Sealed {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sealed = true
	snaps := make([]features.FeatureSnapshot, len(t.snaps))
	copy(snaps, t.snaps)

	return &Sealed{header: t.header, snaps: snaps}
}

// Sealed is a read-only timeline supporting deterministic
// interpolated lookup. It is safe for concurrent readers.
type Sealed struct {
	header Header
	snaps  []features.FeatureSnapshot
}

// Header returns the session header
func (s *Sealed) Header() Header {
	return s.header
}

// Len returns the number of snapshots
func (s *Sealed) Len() int {
	return len(s.snaps)
}

// Duration returns the timestamp span of the recording
func (s *Sealed) Duration() float64 {
	if len(s.snaps) == 0 {
		return 0
	}
	return s.snaps[len(s.snaps)-1].Timestamp - s.snaps[0].Timestamp
}

// At returns the i-th recorded snapshot
func (s *Sealed) At(i int) features.FeatureSnapshot {
	return s.snaps[i]
}

// Lookup returns the feature state at time t. Exact timestamp hits
// return the stored snapshot unchanged; times between two snapshots
// linearly interpolate the continuous fields. Onset fields are
// discrete events, never blended: they are taken verbatim from the
// nearest preceding snapshot. Times outside the recording clamp to
// the boundary snapshots; there is no extrapolation.
func (s *Sealed) Lookup(t float64) features.FeatureSnapshot {
	if len(s.snaps) == 0 {
		return features.FeatureSnapshot{Timestamp: t}
	}

	first := s.snaps[0]
	last := s.snaps[len(s.snaps)-1]
	if t <= first.Timestamp {
		return first
	}
	if t >= last.Timestamp {
		return last
	}

	// Index of the first snapshot with Timestamp >= t
	hi := sort.Search(len(s.snaps), func(i int) bool {
		return s.snaps[i].Timestamp >= t
	})
	if s.snaps[hi].Timestamp == t {
		return s.snaps[hi]
	}
	lo := hi - 1

	a, b := s.snaps[lo], s.snaps[hi]
	frac := (t - a.Timestamp) / (b.Timestamp - a.Timestamp)

	return features.FeatureSnapshot{
		Timestamp:        t,
		RMS:              lerp(a.RMS, b.RMS, frac),
		SpectralCentroid: lerp(a.SpectralCentroid, b.SpectralCentroid, frac),
		ZeroCrossingRate: lerp(a.ZeroCrossingRate, b.ZeroCrossingRate, frac),
		OnsetStrength:    a.OnsetStrength,
		OnsetFired:       a.OnsetFired,
		OnsetTime:        a.OnsetTime,
	}
}

func lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}
