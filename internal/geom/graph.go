package geom

import "math"

const (
	arcSamples    = 2048
	newtonMaxIter = 24
	newtonTol     = 1e-12
)

// Graph is the arc-length parameterization of an analytic function graph
// y = f(x) over [xMin, xMax]. The parameter p measures arc length along the
// curve with p = 0 at x = 0 (or at xMin when 0 is outside the range), so a
// body at parameter p moving with dp/dt = v has physical speed v.
//
// Position, slope and curvature are exact; the p <-> x mapping goes through
// a cumulative arc-length table built with Simpson quadrature and read back
// with cubic Hermite interpolation using the analytic node derivative
// dp/dx = sqrt(1 + f'(x)^2). Linear table reads are not good enough here:
// their slope error is a fixed fraction of the sample spacing squared, which
// puts a dt-independent floor under energy accuracy.
type Graph struct {
	f, df, ddf func(float64) float64
	xMin, xMax float64

	xs, ps, spd []float64
	pMin, pMax  float64
}

// NewGraph builds the arc-length table for f with analytic first and second
// derivatives df and ddf.
func NewGraph(f, df, ddf func(float64) float64, xMin, xMax float64) *Graph {
	g := &Graph{f: f, df: df, ddf: ddf, xMin: xMin, xMax: xMax}

	n := arcSamples + 1
	g.xs = make([]float64, n)
	g.ps = make([]float64, n)
	g.spd = make([]float64, n)
	h := (xMax - xMin) / float64(arcSamples)

	speed := func(x float64) float64 {
		k := df(x)
		return math.Sqrt(1 + k*k)
	}

	g.xs[0] = xMin
	g.ps[0] = 0
	g.spd[0] = speed(xMin)
	for i := 1; i < n; i++ {
		x := xMin + float64(i)*h
		s := speed(x)
		mid := speed(x - h/2)
		g.xs[i] = x
		g.spd[i] = s
		g.ps[i] = g.ps[i-1] + h*(g.spd[i-1]+4*mid+s)/6
	}

	// shift so p=0 sits at x=0 when the range straddles it
	if xMin <= 0 && 0 <= xMax {
		p0 := g.paramAt(0)
		for i := range g.ps {
			g.ps[i] -= p0
		}
	}
	g.pMin = g.ps[0]
	g.pMax = g.ps[n-1]
	return g
}

// NewValley is the graph of y = a*x^2, a local minimum at p = 0.
func NewValley(a, halfWidth float64) *Graph {
	return NewGraph(
		func(x float64) float64 { return a * x * x },
		func(x float64) float64 { return 2 * a * x },
		func(x float64) float64 { return 2 * a },
		-halfWidth, halfWidth)
}

// NewHump is the graph of y = h - a*x^2, a local maximum at p = 0.
func NewHump(h, a, halfWidth float64) *Graph {
	return NewGraph(
		func(x float64) float64 { return h - a*x*x },
		func(x float64) float64 { return -2 * a * x },
		func(x float64) float64 { return -2 * a },
		-halfWidth, halfWidth)
}

// NewSine is the graph of y = amp*cos(freq*x), alternating hills and valleys.
func NewSine(amp, freq, halfWidth float64) *Graph {
	return NewGraph(
		func(x float64) float64 { return amp * math.Cos(freq*x) },
		func(x float64) float64 { return -amp * freq * math.Sin(freq*x) },
		func(x float64) float64 { return -amp * freq * freq * math.Cos(freq*x) },
		-halfWidth, halfWidth)
}

// NewFlat is the horizontal line y = y0.
func NewFlat(y0, halfWidth float64) *Graph {
	return NewGraph(
		func(x float64) float64 { return y0 },
		func(x float64) float64 { return 0 },
		func(x float64) float64 { return 0 },
		-halfWidth, halfWidth)
}

// hermite evaluates the cubic Hermite interpolant at offset s into an
// interval of width w, given endpoint values v0, v1 and derivatives m0, m1.
func hermite(s, w, v0, v1, m0, m1 float64) float64 {
	t := s / w
	t2 := t * t
	t3 := t2 * t
	return (2*t3-3*t2+1)*v0 + (t3-2*t2+t)*w*m0 +
		(-2*t3+3*t2)*v1 + (t3-t2)*w*m1
}

// paramAt maps x to arc length. Node derivatives dp/dx are the analytic
// integrand values, so the interpolant matches both endpoints and slopes.
func (g *Graph) paramAt(x float64) float64 {
	if x <= g.xMin {
		return g.ps[0]
	}
	if x >= g.xMax {
		return g.ps[len(g.ps)-1]
	}
	lo, hi := 0, len(g.xs)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if g.xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hermite(x-g.xs[lo], g.xs[hi]-g.xs[lo],
		g.ps[lo], g.ps[hi], g.spd[lo], g.spd[hi])
}

// xAt maps arc length back to x, with node derivatives dx/dp = 1/(dp/dx).
func (g *Graph) xAt(p float64) float64 {
	if p <= g.pMin {
		return g.xs[0]
	}
	if p >= g.pMax {
		return g.xs[len(g.xs)-1]
	}
	lo, hi := 0, len(g.ps)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if g.ps[mid] <= p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hermite(p-g.ps[lo], g.ps[hi]-g.ps[lo],
		g.xs[lo], g.xs[hi], 1/g.spd[lo], 1/g.spd[hi])
}

func (g *Graph) PositionAt(p float64) Vec2 {
	x := g.xAt(Clamp(g, p))
	return Vec2{x, g.f(x)}
}

func (g *Graph) SlopeAt(p float64) Slope {
	x := g.xAt(Clamp(g, p))
	k := g.df(x)
	dd := g.ddf(x)
	r := math.Inf(1)
	if dd != 0 {
		r = math.Pow(1+k*k, 1.5) / dd
	}
	return Slope{K: k, Dir: 1, R: r}
}

func (g *Graph) Domain() (float64, float64, bool) {
	return g.pMin, g.pMax, false
}

func (g *Graph) YAt(x float64) float64 {
	if x < g.xMin || x > g.xMax {
		return math.Inf(-1)
	}
	return g.f(x)
}

// NearestPoint minimizes squared distance to (x, y) with Newton iteration on
// the stationarity condition (u-x) + f'(u)*(f(u)-y) = 0, starting from the
// seed. A seeded result that converged onto a genuine distance minimum is
// accepted directly, which keeps the search local and cheap near a contact;
// otherwise (Newton settled on a distance maximum, or stalled) the search
// falls back to the best coarse-table sample and polishes from there.
func (g *Graph) NearestPoint(x, y, seed float64) (float64, Slope) {
	u := g.polish(g.xAt(Clamp(g, seed)), x, y)
	if !g.settledMinimum(u, x, y) {
		scan, scanD := u, distSq(u, g.f(u), x, y)
		for _, xt := range g.xs {
			if d := distSq(xt, g.f(xt), x, y); d < scanD {
				scan, scanD = xt, d
			}
		}
		if u2 := g.polish(scan, x, y); distSq(u2, g.f(u2), x, y) < distSq(u, g.f(u), x, y) {
			u = u2
		}
	}
	p := g.paramAt(u)
	return p, g.SlopeAt(p)
}

// settledMinimum reports whether u is a converged stationary point of the
// distance with positive curvature (a minimum, not a maximum or a stall).
func (g *Graph) settledMinimum(u, x, y float64) bool {
	k := g.df(u)
	fy := g.f(u) - y
	if 1+k*k+g.ddf(u)*fy <= 0 {
		return false
	}
	return math.Abs((u-x)+k*fy) <= 1e-9*(1+math.Abs(u-x)+math.Abs(fy))
}

// polish runs bounded Newton iterations on the nearest-point condition.
func (g *Graph) polish(u, x, y float64) float64 {
	for i := 0; i < newtonMaxIter; i++ {
		k := g.df(u)
		dd := g.ddf(u)
		fy := g.f(u) - y
		hess := 1 + k*k + dd*fy
		if hess == 0 {
			break
		}
		step := ((u - x) + k*fy) / hess
		u -= step
		if u < g.xMin {
			u = g.xMin
		} else if u > g.xMax {
			u = g.xMax
		}
		if math.Abs(step) < newtonTol {
			break
		}
	}
	return u
}

func distSq(x0, y0, x1, y1 float64) float64 {
	dx, dy := x0-x1, y0-y1
	return dx*dx + dy*dy
}
