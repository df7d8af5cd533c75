package sgp

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// percentile interpolates linearly between closest ranks, matching the
// "linear" convention used for the historical reports. Empty input yields NaN.
func percentile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	s := make([]float64, len(x))
	copy(s, x)
	sort.Float64s(s)
	pos := p * float64(len(s)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return s[lo]
	}
	return s[lo] + (s[hi]-s[lo])*(pos-float64(lo))
}

func median(x []float64) float64 { return percentile(x, 0.5) }

// meanStd returns the mean and population standard deviation.
func meanStd(x []float64) (float64, float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	return stat.PopMeanStdDev(x, nil)
}

// Distribution summarizes a gap list.
type Distribution struct {
	Min, P25, Median, P75, Max float64
	Mean, StdDev               float64
	Count                      int
	// Outliers counts gaps outside the 1.5×IQR fences.
	Outliers int
}

// Describe computes the distribution of x. Empty input yields NaN fields.
func Describe(x []float64) Distribution {
	d := Distribution{Count: len(x)}
	if len(x) == 0 {
		nan := math.NaN()
		d.Min, d.P25, d.Median, d.P75, d.Max, d.Mean, d.StdDev = nan, nan, nan, nan, nan, nan, nan
		return d
	}
	d.Min = floats.Min(x)
	d.Max = floats.Max(x)
	d.P25 = percentile(x, 0.25)
	d.Median = percentile(x, 0.5)
	d.P75 = percentile(x, 0.75)
	d.Mean, d.StdDev = meanStd(x)
	d.Outliers = len(Outliers(x))
	return d
}

// Outliers returns the indices of gaps outside [Q1-1.5·IQR, Q3+1.5·IQR].
func Outliers(x []float64) []int {
	if len(x) == 0 {
		return nil
	}
	q1, q3 := percentile(x, 0.25), percentile(x, 0.75)
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr
	var out []int
	for i, v := range x {
		if v < lo || v > hi {
			out = append(out, i)
		}
	}
	return out
}

// positive reports whether v is a usable denominator.
func positive(v float64) bool { return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0) }
