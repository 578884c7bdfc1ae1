package bench

import "math"

type number interface {
	~int | ~float64
}

// Stats summarises a series of run measurements: count, minimum, mean and
// sample standard deviation.
type Stats struct {
	N    int
	Best float64
	Mean float64
	Std  float64
}

// Summarize returns the zero Stats (apart from N) for an empty series.
func Summarize[T number](values []T) Stats {
	s := Stats{N: len(values)}
	if s.N == 0 {
		return s
	}

	best := float64(values[0])
	sum := 0.0
	for _, v := range values {
		best = math.Min(best, float64(v))
		sum += float64(v)
	}
	mean := sum / float64(s.N)

	variance := 0.0
	if s.N >= 2 {
		for _, v := range values {
			d := float64(v) - mean
			variance += d * d
		}
		variance /= float64(s.N - 1)
	}

	s.Best = best
	s.Mean = mean
	s.Std = math.Sqrt(variance)
	return s
}
