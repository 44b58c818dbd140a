package timeline

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soniform/soniform/engine/features"
)

func testHeader() Header {
	return Header{SampleRate: 48000, BlockSize: 2048, VertexCount: 2500}
}

func snapshotAt(ts, rms float64) features.FeatureSnapshot {
	return features.FeatureSnapshot{
		Timestamp:        ts,
		RMS:              rms,
		SpectralCentroid: rms / 2,
		ZeroCrossingRate: rms / 4,
	}
}

func TestAppendOrdering(t *testing.T) {
	tl := New(testHeader())

	if err := tl.Append(snapshotAt(0.0, 0.1)); err != nil {
		t.Fatal(err)
	}
	if err := tl.Append(snapshotAt(0.1, 0.2)); err != nil {
		t.Fatal(err)
	}

	err := tl.Append(snapshotAt(0.1, 0.3))
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder for duplicate timestamp, got %v", err)
	}
	err = tl.Append(snapshotAt(0.05, 0.3))
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder for regressing timestamp, got %v", err)
	}
}

func TestAppendAfterSeal(t *testing.T) {
	tl := New(testHeader())
	tl.Append(snapshotAt(0.0, 0.1))

	sealed := tl.Seal()
	if sealed.Len() != 1 {
		t.Fatalf("sealed length = %d, want 1", sealed.Len())
	}

	err := tl.Append(snapshotAt(1.0, 0.2))
	if !errors.Is(err, ErrSealed) {
		t.Fatalf("expected ErrSealed, got %v", err)
	}
	if sealed.Len() != 1 {
		t.Fatal("sealed view must not change after failed append")
	}
}

func TestLookupExactHit(t *testing.T) {
	tl := New(testHeader())
	want := snapshotAt(0.5, 0.3)
	want.OnsetStrength = 0.2
	want.OnsetFired = true
	want.OnsetTime = 0.5

	tl.Append(snapshotAt(0.0, 0.1))
	tl.Append(want)
	tl.Append(snapshotAt(1.0, 0.5))
	sealed := tl.Seal()

	got := sealed.Lookup(0.5)
	if got != want {
		t.Fatalf("exact-timestamp lookup must return the stored snapshot unchanged: got %+v", got)
	}
}

func TestLookupMidpointMean(t *testing.T) {
	tl := New(testHeader())
	a := snapshotAt(1.0, 0.2)
	b := snapshotAt(2.0, 0.6)
	tl.Append(a)
	tl.Append(b)
	sealed := tl.Seal()

	got := sealed.Lookup(1.5)
	if math.Abs(got.RMS-0.4) > 1e-12 {
		t.Errorf("midpoint RMS = %g, want 0.4", got.RMS)
	}
	if want := (a.SpectralCentroid + b.SpectralCentroid) / 2; math.Abs(got.SpectralCentroid-want) > 1e-12 {
		t.Errorf("midpoint centroid = %g, want %g", got.SpectralCentroid, want)
	}
	if want := (a.ZeroCrossingRate + b.ZeroCrossingRate) / 2; math.Abs(got.ZeroCrossingRate-want) > 1e-12 {
		t.Errorf("midpoint zcr = %g, want %g", got.ZeroCrossingRate, want)
	}
	if got.Timestamp != 1.5 {
		t.Errorf("lookup timestamp = %g, want 1.5", got.Timestamp)
	}
}

func TestLookupOnsetNotInterpolated(t *testing.T) {
	tl := New(testHeader())
	a := snapshotAt(1.0, 0.2)
	a.OnsetStrength = 0.5
	a.OnsetFired = true
	a.OnsetTime = 1.0
	b := snapshotAt(2.0, 0.6)
	tl.Append(a)
	tl.Append(b)
	sealed := tl.Seal()

	got := sealed.Lookup(1.75)
	if got.OnsetStrength != 0.5 {
		t.Errorf("onset strength must come verbatim from the preceding snapshot, got %g", got.OnsetStrength)
	}
	if !got.OnsetFired || got.OnsetTime != 1.0 {
		t.Errorf("onset event must carry its original time, got fired=%v t=%g", got.OnsetFired, got.OnsetTime)
	}
}

func TestLookupBoundaryClamp(t *testing.T) {
	tl := New(testHeader())
	first := snapshotAt(1.0, 0.2)
	last := snapshotAt(3.0, 0.8)
	tl.Append(first)
	tl.Append(snapshotAt(2.0, 0.4))
	tl.Append(last)
	sealed := tl.Seal()

	if got := sealed.Lookup(0.0); got != first {
		t.Errorf("pre-start lookup should clamp to first snapshot, got %+v", got)
	}
	if got := sealed.Lookup(99.0); got != last {
		t.Errorf("post-end lookup should clamp to last snapshot, got %+v", got)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	tl := New(testHeader())
	for i := 0; i < 50; i++ {
		snap := snapshotAt(float64(i)*0.1, 0.1+float64(i%7)*0.05)
		if i == 20 {
			snap.OnsetStrength = 0.3
			snap.OnsetFired = true
			snap.OnsetTime = snap.Timestamp
		}
		if err := tl.Append(snap); err != nil {
			t.Fatal(err)
		}
	}
	sealed := tl.Seal()

	var buf bytes.Buffer
	if err := sealed.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	loaded, err := ReadSealed(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Header() != sealed.Header() {
		t.Fatalf("header mismatch: %+v vs %+v", loaded.Header(), sealed.Header())
	}
	if loaded.Len() != sealed.Len() {
		t.Fatalf("length mismatch: %d vs %d", loaded.Len(), sealed.Len())
	}
	for i := 0; i < sealed.Len(); i++ {
		if loaded.At(i) != sealed.At(i) {
			t.Fatalf("snapshot %d changed in round trip: %+v vs %+v", i, loaded.At(i), sealed.At(i))
		}
	}
}

func TestSaveLoad(t *testing.T) {
	tl := New(testHeader())
	tl.Append(snapshotAt(0.0, 0.1))
	tl.Append(snapshotAt(0.5, 0.4))
	sealed := tl.Seal()

	path := filepath.Join(t.TempDir(), "session.jsonl")
	if err := sealed.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded %d snapshots, want 2", loaded.Len())
	}
}

func TestReadRejectsUnknownVersion(t *testing.T) {
	input := `{"soniform_timeline":99,"sample_rate":48000,"block_size":2048}
{"t":0,"rms":0.1,"centroid":0,"zcr":0,"onset_strength":0}
`
	if _, err := ReadSealed(strings.NewReader(input)); err == nil {
		t.Fatal("unknown format version must be rejected")
	}
}

func TestReadIgnoresUnknownFields(t *testing.T) {
	// A future writer may add fields; old fields keep their tags
	input := `{"soniform_timeline":1,"sample_rate":48000,"block_size":2048,"vertex_count":2500}
{"t":0,"rms":0.1,"centroid":0.2,"zcr":0.3,"onset_strength":0,"flux":0.9}
{"t":0.1,"rms":0.2,"centroid":0.2,"zcr":0.3,"onset_strength":0}
`
	sealed, err := ReadSealed(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if sealed.Len() != 2 {
		t.Fatalf("expected 2 snapshots, got %d", sealed.Len())
	}
	if sealed.At(0).RMS != 0.1 {
		t.Fatalf("known fields must survive unknown siblings, rms = %g", sealed.At(0).RMS)
	}
}

func TestReadRejectsOutOfOrder(t *testing.T) {
	input := `{"soniform_timeline":1,"sample_rate":48000,"block_size":2048}
{"t":0.5,"rms":0.1,"centroid":0,"zcr":0,"onset_strength":0}
{"t":0.2,"rms":0.2,"centroid":0,"zcr":0,"onset_strength":0}
`
	_, err := ReadSealed(strings.NewReader(input))
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
}

func TestLookupEmptyAndSingle(t *testing.T) {
	empty := New(testHeader()).Seal()
	if got := empty.Lookup(1.0); got.RMS != 0 {
		t.Fatalf("empty timeline lookup should be zero-valued, got %+v", got)
	}

	single := New(testHeader())
	single.Append(snapshotAt(1.0, 0.3))
	sealed := single.Seal()
	for _, ts := range []float64{0.0, 1.0, 5.0} {
		if got := sealed.Lookup(ts); got.RMS != 0.3 {
			t.Fatalf("single-snapshot timeline should clamp at t=%g, got %+v", ts, got)
		}
	}
}
