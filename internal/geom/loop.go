package geom

import "math"

// Loop is a closed circular track of radius R centered at (0, cy), with the
// parameter measuring arc length counterclockwise from the bottom of the
// circle. The tangent is vertical at the two sides (p = quarter circumference
// and three quarters), which exercises the infinite-slope guard in dynamics.
type Loop struct {
	R  float64
	CY float64
}

func NewLoop(r, cy float64) *Loop {
	return &Loop{R: r, CY: cy}
}

func (l *Loop) angle(p float64) float64 {
	return Clamp(l, p) / l.R
}

func (l *Loop) PositionAt(p float64) Vec2 {
	a := l.angle(p)
	return Vec2{l.R * math.Sin(a), l.CY - l.R*math.Cos(a)}
}

func (l *Loop) SlopeAt(p float64) Slope {
	a := l.angle(p)
	sin, cos := math.Sin(a), math.Cos(a)

	k := math.Inf(1)
	if sin < 0 {
		k = math.Inf(-1)
	}
	if cos != 0 {
		k = sin / cos
	}
	dir := 1.0
	if cos < 0 {
		dir = -1
	}
	// |r| is R everywhere; sign follows concavity (up on the lower half)
	r := l.R
	if cos < 0 {
		r = -l.R
	}
	return Slope{K: k, Dir: dir, R: r}
}

func (l *Loop) NearestPoint(x, y, seed float64) (float64, Slope) {
	dx := x
	dy := y - l.CY
	if dx == 0 && dy == 0 {
		p := Clamp(l, seed)
		return p, l.SlopeAt(p)
	}
	a := math.Atan2(dx, -dy)
	p := Clamp(l, a*l.R)
	return p, l.SlopeAt(p)
}

func (l *Loop) Domain() (float64, float64, bool) {
	return 0, 2 * math.Pi * l.R, true
}

// YAt reports the lower branch of the circle; the containment test only
// guards against falling through the track from above.
func (l *Loop) YAt(x float64) float64 {
	if x < -l.R || x > l.R {
		return math.Inf(-1)
	}
	return l.CY - math.Sqrt(l.R*l.R-x*x)
}
