package charts

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/plot/plotter"
)

const kdePoints = 64

// bandwidth is Scott's rule; a degenerate sample gets a bandwidth proportional to its
// magnitude so the violin still has a visible body.
func bandwidth(s stats.Sample) float64 {
	if len(s.Xs) > 1 {
		if bw := stats.BandwidthScott(s); bw > 0 && !math.IsNaN(bw) {
			return bw
		}
	}
	bw := 0.1 * math.Abs(s.Mean())
	if bw == 0 {
		bw = 0.1
	}
	return bw
}

// newKDE returns a Gaussian kernel density estimate of vals.
func newKDE(vals []float64) *stats.KDE {
	s := stats.Sample{Xs: vals}
	return &stats.KDE{Sample: s, Kernel: stats.GaussianKernel, Bandwidth: bandwidth(s)}
}

// violinOutline returns a closed outline mirrored around center whose half-width at the
// densest point is halfWidth. Empty input yields nil.
func violinOutline(vals []float64, center, halfWidth float64) plotter.XYs {
	if len(vals) == 0 {
		return nil
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	kde := newKDE(sorted)
	lo := sorted[0] - 3*kde.Bandwidth
	hi := sorted[len(sorted)-1] + 3*kde.Bandwidth
	ys := make([]float64, kdePoints)
	dens := make([]float64, kdePoints)
	step := (hi - lo) / float64(kdePoints-1)
	peak := 0.0
	for i := range ys {
		ys[i] = lo + float64(i)*step
		dens[i] = kde.PDF(ys[i])
		peak = math.Max(peak, dens[i])
	}
	if peak == 0 {
		return nil
	}
	out := make(plotter.XYs, 0, 2*kdePoints)
	for i, y := range ys {
		out = append(out, plotter.XY{X: center + halfWidth*dens[i]/peak, Y: y})
	}
	for i := len(ys) - 1; i >= 0; i-- {
		out = append(out, plotter.XY{X: center - halfWidth*dens[i]/peak, Y: ys[i]})
	}
	return out
}
