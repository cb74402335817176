// Package grid builds the (CL, V) candidate grid searched by the fitter.
//
// A Grid is an explicit Cartesian product of two ascending axes. Candidates
// are enumerated in a fixed order, ascending CL then ascending V, and every
// candidate has a stable enumeration index. The fitter relies on that index
// to break ties deterministically however the scan is split across workers.
package grid

import (
	"iter"
	"math"

	"github.com/bft-labs/pkfit/internal/domain"
)

// Grid is an immutable, restartable sequence of candidates.
type Grid struct {
	cl []float64
	v  []float64
}

// New validates spec and materializes its axes.
func New(spec domain.GridSpec) (Grid, error) {
	if err := spec.Validate(); err != nil {
		return Grid{}, err
	}
	return Grid{
		cl: Axis(spec.CLMin, spec.CLMax, spec.CLSteps, spec.Spacing),
		v:  Axis(spec.VMin, spec.VMax, spec.VSteps, spec.Spacing),
	}, nil
}

// Axis returns n values from lo to hi inclusive.
// Value i is lo + (hi-lo)*i/(n-1), computed independently of its
// neighbours, so an axis with 2n-1 points contains every point of the axis
// with n points bit for bit.
func Axis(lo, hi float64, n int, spacing domain.Spacing) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}

	last := n - 1
	if spacing == domain.SpacingLog {
		llo, lhi := math.Log10(lo), math.Log10(hi)
		for i := range out {
			out[i] = math.Pow(10, llo+(lhi-llo)*float64(i)/float64(last))
		}
		out[0], out[last] = lo, hi
		return out
	}

	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(last)
	}
	out[last] = hi
	return out
}

// Len returns the number of candidates.
func (g Grid) Len() int {
	return len(g.cl) * len(g.v)
}

// CL returns a copy of the CL axis.
func (g Grid) CL() []float64 {
	return append([]float64(nil), g.cl...)
}

// V returns a copy of the V axis.
func (g Grid) V() []float64 {
	return append([]float64(nil), g.v...)
}

// At returns the candidate with enumeration index i.
func (g Grid) At(i int) domain.Candidate {
	n := len(g.v)
	return domain.Candidate{CL: g.cl[i/n], V: g.v[i%n]}
}

// All yields every candidate with its enumeration index.
func (g Grid) All() iter.Seq2[int, domain.Candidate] {
	return g.Span(0, g.Len())
}

// Span yields the candidates with indexes in [lo, hi).
func (g Grid) Span(lo, hi int) iter.Seq2[int, domain.Candidate] {
	lo = max(lo, 0)
	hi = min(hi, g.Len())
	return func(yield func(int, domain.Candidate) bool) {
		for i := lo; i < hi; i++ {
			if !yield(i, g.At(i)) {
				return
			}
		}
	}
}

// Partition splits [0, Len) into at most parts contiguous spans of nearly
// equal size. Spans are returned in enumeration order.
func (g Grid) Partition(parts int) [][2]int {
	n := g.Len()
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	out := make([][2]int, 0, parts)
	for p := 0; p < parts; p++ {
		lo := p * n / parts
		hi := (p + 1) * n / parts
		out = append(out, [2]int{lo, hi})
	}
	return out
}
