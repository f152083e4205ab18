package comfort

import "math"

// clothingSurface holds the coefficients of the clothing surface temperature
// relation, in temperatures normalized by 100 K.
type clothingSurface struct {
	taa float64 // air temperature, K
	hcf float64 // forced convection coefficient

	p1, p2, p3, p4, p5 float64
}

// next computes the following estimate from the damped estimate xf, and the
// convection coefficient it used.
func (s clothingSurface) next(xf float64) (xn, hc float64) {
	hc = math.Max(s.hcf, NaturalConvection(100*xf-s.taa))
	xn = (s.p5 + s.p4*hc - s.p2*math.Pow(xf, 4)) / (100 + s.p3*hc)
	return xn, hc
}

// solve iterates from seed until two successive estimates differ by at most
// Tolerance, or limit refinements were made. The last estimate is returned
// either way.
func (s clothingSurface) solve(seed float64, limit int) (xn, hc float64, iterations int, converged bool) {
	xn, xf := seed, seed
	for iterations < limit {
		xf = (xf + xn) / 2
		xn, hc = s.next(xf)
		iterations++
		if math.Abs(xn-xf) <= Tolerance {
			return xn, hc, iterations, true
		}
	}
	return xn, hc, iterations, false
}
