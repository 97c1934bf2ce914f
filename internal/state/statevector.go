// Package state implements the named-variable state vector exposed to
// observers. Each variable carries a computed flag (derived rather than
// integrated) and a change-sequence counter that is bumped on every
// discontinuous update, letting a reader distinguish a jump from an ordinary
// integration update even when the numeric value is unchanged.
package state

type variable struct {
	name     string
	value    float64
	computed bool
	seq      uint64
}

type Vector struct {
	vars  []variable
	index map[string]int
}

// New creates a vector with the given variable names, all values zero, all
// counters zero, nothing marked computed.
func New(names ...string) *Vector {
	v := &Vector{
		vars:  make([]variable, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		v.vars[i].name = n
		v.index[n] = i
	}
	return v
}

func (v *Vector) Len() int { return len(v.vars) }

func (v *Vector) Name(i int) string { return v.vars[i].name }

// IndexOf returns the index of a named variable, or -1.
func (v *Vector) IndexOf(name string) int {
	if i, ok := v.index[name]; ok {
		return i
	}
	return -1
}

func (v *Vector) Value(i int) float64 { return v.vars[i].value }

// Values returns a copy of all current values in declaration order.
func (v *Vector) Values() []float64 {
	out := make([]float64, len(v.vars))
	for i := range v.vars {
		out[i] = v.vars[i].value
	}
	return out
}

// SetValue stores a value. A continuous update leaves the sequence counter
// alone; a discontinuous one bumps it even if the stored value is identical.
func (v *Vector) SetValue(i int, val float64, continuous bool) {
	v.vars[i].value = val
	if !continuous {
		v.vars[i].seq++
	}
}

// SetValues stores one value per variable; vals must have length Len().
func (v *Vector) SetValues(vals []float64, continuous bool) {
	if len(vals) != len(v.vars) {
		panic("state: value count mismatch")
	}
	for i, val := range vals {
		v.SetValue(i, val, continuous)
	}
}

func (v *Vector) Seq(i int) uint64 { return v.vars[i].seq }

// BumpSeq force-increments counters for a discontinuity whose literal values
// happen not to change (an elastic bounce returning the same speed).
func (v *Vector) BumpSeq(indices ...int) {
	for _, i := range indices {
		v.vars[i].seq++
	}
}

func (v *Vector) Computed(i int) bool { return v.vars[i].computed }

// MarkComputed flags exactly the given variables as derived quantities;
// all others are cleared.
func (v *Vector) MarkComputed(indices ...int) {
	for i := range v.vars {
		v.vars[i].computed = false
	}
	for _, i := range indices {
		v.vars[i].computed = true
	}
}
