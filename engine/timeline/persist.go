package timeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/soniform/soniform/engine/features"
)

// Persistence format: JSON Lines. The first line is the Header, then
// one snapshot object per line. Field-tagged records let the feature
// set grow without breaking old timelines: unknown fields are
// ignored on read, and a header with an unknown version is rejected
// outright rather than misread.

// WriteTo serializes the sealed timeline
func (s *Sealed) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	if err := enc.Encode(s.header); err != nil {
		return fmt.Errorf("timeline: write header: %w", err)
	}
	for i := range s.snaps {
		if err := enc.Encode(&s.snaps[i]); err != nil {
			return fmt.Errorf("timeline: write snapshot %d: %w", i, err)
		}
	}

	return bw.Flush()
}

// ReadSealed deserializes a sealed timeline
func ReadSealed(r io.Reader) (*Sealed, error) {
	dec := json.NewDecoder(r)

	var header Header
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("timeline: read header: %w", err)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("timeline: unsupported format version %d (want %d)", header.Version, FormatVersion)
	}

	var snaps []features.FeatureSnapshot
	var prev float64
	for {
		var snap features.FeatureSnapshot
		if err := dec.Decode(&snap); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("timeline: read snapshot %d: %w", len(snaps), err)
		}

		if len(snaps) > 0 && snap.Timestamp <= prev {
			return nil, fmt.Errorf("timeline: %w at snapshot %d", ErrOutOfOrder, len(snaps))
		}
		prev = snap.Timestamp
		snaps = append(snaps, snap)
	}

	return &Sealed{header: header, snaps: snaps}, nil
}

// Save writes the sealed timeline to a caller-supplied path. The
// engine does not decide directory layout or filenames.
func (s *Sealed) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("timeline: create %s: %w", path, err)
	}

	if err := s.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a sealed timeline from a path
func Load(path string) (*Sealed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("timeline: open %s: %w", path, err)
	}
	defer f.Close()

	return ReadSealed(f)
}
