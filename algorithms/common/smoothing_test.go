package common

import (
	"math"
	"testing"
)

func TestExponentialSmootherConverges(t *testing.T) {
	s := NewExponentialSmoother(0.15)

	var v float64
	for i := 0; i < 200; i++ {
		v = s.Process(1.0)
	}
	if math.Abs(v-1.0) > 1e-6 {
		t.Fatalf("smoother should converge to 1.0, got %f", v)
	}
}

func TestExponentialSmootherPrimesOnFirstSample(t *testing.T) {
	s := NewExponentialSmoother(0.1)
	if v := s.Process(0.7); v != 0.7 {
		t.Fatalf("first sample should initialize directly, got %f", v)
	}
}

func TestExponentialSmootherRecurrence(t *testing.T) {
	s := NewExponentialSmoother(0.2)
	s.Process(1.0)
	v := s.Process(0.0)

	want := 0.2*0.0 + 0.8*1.0
	if math.Abs(v-want) > 1e-12 {
		t.Fatalf("expected %f, got %f", want, v)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		value, lo, hi, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
	}
	for _, c := range cases {
		if got := Clamp(c.value, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%f, %f, %f) = %f, want %f", c.value, c.lo, c.hi, got, c.want)
		}
	}
}
