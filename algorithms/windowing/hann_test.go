package windowing

import (
	"math"
	"testing"
)

func TestHannApply(t *testing.T) {
	h := NewHann(8, false)
	if h.GetSize() != 8 {
		t.Fatalf("size = %d, want 8", h.GetSize())
	}

	signal := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	windowed := h.Apply(signal)
	if windowed == nil {
		t.Fatal("Apply returned nil for a matching-length signal")
	}

	// Applying to an all-ones signal recovers the coefficients:
	// periodic Hann is 0.5*(1-cos(2*pi*i/N))
	for i, v := range windowed {
		want := 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/8.0))
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("coefficient %d = %f, want %f", i, v, want)
		}
	}
	if signal[3] != 1 {
		t.Fatal("Apply must not modify its input")
	}

	if h.Apply([]float64{1, 2, 3}) != nil {
		t.Fatal("Apply must reject a length mismatch")
	}
}

func TestHannSymmetricEndpoints(t *testing.T) {
	h := NewHann(9, true)

	ones := make([]float64, 9)
	for i := range ones {
		ones[i] = 1
	}
	windowed := h.Apply(ones)

	// Symmetric windows taper to zero at both ends and peak at the
	// center
	if windowed[0] != 0 || math.Abs(windowed[8]) > 1e-12 {
		t.Fatalf("symmetric endpoints = %f, %f, want 0", windowed[0], windowed[8])
	}
	if math.Abs(windowed[4]-1.0) > 1e-12 {
		t.Fatalf("symmetric center = %f, want 1", windowed[4])
	}
}

func TestHannApplyInPlace(t *testing.T) {
	h := NewHann(8, false)

	signal := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	if err := h.ApplyInPlace(signal); err != nil {
		t.Fatal(err)
	}
	if signal[0] != 0 {
		t.Fatalf("first periodic coefficient = %f, want 0", signal[0])
	}

	if err := h.ApplyInPlace([]float64{1, 2}); err == nil {
		t.Fatal("ApplyInPlace must reject a length mismatch")
	}
}
