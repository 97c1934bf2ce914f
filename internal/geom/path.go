package geom

// Slope describes the local differential geometry of a path at a parameter
// value: tangent slope dy/dx, the orientation sign of increasing parameter
// (Dir is +1 when x grows with p, -1 when it shrinks), and the signed radius
// of curvature (R > 0 concave up, R < 0 concave down, infinite when straight).
type Slope struct {
	K   float64
	Dir float64
	R   float64
}

// Path is a one-dimensional curve addressed by a monotonic arc-length
// parameter p. Implementations are immutable; queries with p outside the
// domain are wrapped for closed loops and clamped otherwise.
type Path interface {
	// PositionAt returns the 2D point at parameter p.
	PositionAt(p float64) Vec2

	// SlopeAt returns slope, orientation and signed radius of curvature at p.
	// K may be +/-Inf at a vertical tangent.
	SlopeAt(p float64) Slope

	// NearestPoint finds the parameter of the point on the curve closest to
	// (x, y). The search is local, seeded by a previous parameter estimate.
	NearestPoint(x, y, seed float64) (float64, Slope)

	// Domain returns the parameter range and whether the curve closes on
	// itself.
	Domain() (pMin, pMax float64, closed bool)

	// YAt returns the curve height at horizontal position x, used for the
	// free-flight containment test. Returns -Inf where the curve has no
	// point at x.
	YAt(x float64) float64
}

// Clamp normalizes a parameter into the path's domain: wrapped for closed
// loops, clamped to the boundary otherwise.
func Clamp(path Path, p float64) float64 {
	pMin, pMax, closed := path.Domain()
	if closed {
		span := pMax - pMin
		for p < pMin {
			p += span
		}
		for p >= pMax {
			p -= span
		}
		return p
	}
	if p < pMin {
		return pMin
	}
	if p > pMax {
		return pMax
	}
	return p
}

// Lowest returns the minimum curve height over the domain, sampled. Used as
// the zero level for reported potential energy.
func Lowest(path Path, samples int) float64 {
	pMin, pMax, _ := path.Domain()
	if samples < 2 {
		samples = 2
	}
	low := path.PositionAt(pMin).Y
	for i := 1; i < samples; i++ {
		p := pMin + (pMax-pMin)*float64(i)/float64(samples-1)
		if y := path.PositionAt(p).Y; y < low {
			low = y
		}
	}
	return low
}
