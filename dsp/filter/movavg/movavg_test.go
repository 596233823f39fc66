package movavg

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-recon/dsp/core"
	"github.com/cwbudde/algo-recon/internal/testutil"
)

func TestNewValidation(t *testing.T) {
	for _, w := range []int{0, -1, -100} {
		_, err := New(w)
		if !errors.Is(err, core.ErrInvalidParameter) {
			t.Fatalf("New(%d): err = %v, want ErrInvalidParameter", w, err)
		}
	}
}

func TestShrinkingStartWindow(t *testing.T) {
	f, err := New(3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := f.Process([]float64{3, 6, 9, 12, 15})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	// Index 0 averages one sample, index 1 two, then the full window.
	want := []float64{3, 4.5, 6, 9, 12}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestMatchesDirectMean(t *testing.T) {
	f, err := New(7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := testutil.DeterministicNoise(21, 1.0, 512)

	got, err := f.Process(in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	for i := range in {
		lo := i - f.Window() + 1
		if lo < 0 {
			lo = 0
		}

		var sum float64
		for j := lo; j <= i; j++ {
			sum += in[j]
		}

		want := sum / float64(i-lo+1)
		if math.Abs(got[i]-want) > 1e-9 {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want)
		}
	}
}

func TestConstantInputIsIdentity(t *testing.T) {
	f, err := New(DefaultWindow)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := testutil.Constant(2.5, 64)

	got, err := f.Process(in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got, in, 1e-12)
}

func TestSuppressesNoise(t *testing.T) {
	// Smoothing zero-mean noise must shrink its variance by roughly the
	// window length once past the warmup region.
	f, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := testutil.DeterministicNoise(3, 1.0, 4096)

	out, err := f.Process(in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	varIn := variance(in[f.Warmup():])
	varOut := variance(out[f.Warmup():])

	if varOut > varIn/4 {
		t.Fatalf("variance not reduced: in %v, out %v", varIn, varOut)
	}
}

func TestProcessIntoShapeMismatch(t *testing.T) {
	f, err := New(3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = f.ProcessInto(make([]float64, 4), make([]float64, 5))
	if !errors.Is(err, core.ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}

func TestEmptyInput(t *testing.T) {
	f, err := New(3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := f.Process(nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(out) != 0 {
		t.Fatalf("len = %d, want 0", len(out))
	}
}

func variance(x []float64) float64 {
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))

	var m2 float64
	for _, v := range x {
		d := v - mean
		m2 += d * d
	}

	return m2 / float64(len(x))
}

func BenchmarkProcessInto(b *testing.B) {
	f, err := New(DefaultWindow)
	if err != nil {
		b.Fatalf("New: %v", err)
	}

	in := testutil.DeterministicNoise(1, 1.0, 1000)
	dst := make([]float64, len(in))

	b.ResetTimer()
	for range b.N {
		_ = f.ProcessInto(dst, in)
	}
}
