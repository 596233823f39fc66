package kalman_test

import (
	"fmt"

	"github.com/cwbudde/algo-recon/dsp/filter/kalman"
)

func ExampleFilter_Process() {
	f, err := kalman.New()
	if err != nil {
		panic(err)
	}

	in := make([]float64, 100)
	for i := range in {
		in[i] = 2.0
	}

	out, err := f.Process(in)
	if err != nil {
		panic(err)
	}

	fmt.Printf("final estimate: %.4f\n", out[len(out)-1])
	// Output:
	// final estimate: 2.0000
}

func ExampleLocalTrend() {
	f, err := kalman.New(kalman.WithModel(kalman.LocalTrend(1.0, 1e-4, 1e-2)))
	if err != nil {
		panic(err)
	}

	in := make([]float64, 200)
	for i := range in {
		in[i] = 0.25 * float64(i)
	}

	out, err := f.Process(in)
	if err != nil {
		panic(err)
	}

	fmt.Printf("ramp tracked to %.2f\n", out[len(out)-1])
	// Output:
	// ramp tracked to 49.75
}
