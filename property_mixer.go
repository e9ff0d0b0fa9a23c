package animix

import "math"

// PropertyMixer accumulates the weighted contributions of every action
// touching one bound property during a tick and writes the combined value
// once in Apply.
//
// Accumulation is a plain weighted sum, so the result does not depend on the
// order contributions arrive in. Apply consumes the accumulation whatever
// branch it takes; nothing leaks into the next tick.
type PropertyMixer struct {
	binding    *PropertyBinding
	stride     int
	quaternion bool

	weight   float64
	accum    []float64
	original []float64
	result   []float64

	originalSaved bool
	written       bool

	// Mixer bookkeeping.
	key      propertyKey
	refs     int // cached actions bound to this property
	active   int // playing actions bound to this property
	queued   bool
	degraded bool
}

// NewPropertyMixer creates a mixer writing through binding. InterpolateQuaternion
// switches blending to sign-aligned, normalised quaternion accumulation.
func NewPropertyMixer(binding *PropertyBinding, interp Interpolation) *PropertyMixer {
	s := binding.Stride()
	buf := make([]float64, 3*s)
	return &PropertyMixer{
		binding:    binding,
		stride:     s,
		quaternion: interp == InterpolateQuaternion && s == 4,
		accum:      buf[0:s:s],
		original:   buf[s : 2*s : 2*s],
		result:     buf[2*s : 3*s : 3*s],
	}
}

// Binding returns the property binding the mixer writes through.
func (m *PropertyMixer) Binding() *PropertyBinding { return m.binding }

// Stride returns the number of components of the mixed property.
func (m *PropertyMixer) Stride() int { return m.stride }

// Weight returns the weight accumulated so far this tick.
func (m *PropertyMixer) Weight() float64 { return m.weight }

// HasOriginalState reports whether a rest value is currently saved.
func (m *PropertyMixer) HasOriginalState() bool { return m.originalSaved }

// Accumulate adds value scaled by weight. value must hold at least Stride()
// components. Zero weights contribute nothing.
func (m *PropertyMixer) Accumulate(value []float64, weight float64) {
	if weight == 0 {
		return
	}
	value = value[:m.stride]
	if m.quaternion && m.weight > 0 && dot4(m.accum, value) < 0 {
		weight = -weight
		for i, v := range value {
			m.accum[i] += v * weight
		}
		m.weight -= weight
		return
	}
	for i, v := range value {
		m.accum[i] += v * weight
	}
	m.weight += weight
}

// SaveOriginalState captures the current property value as the rest pose. Only
// the first successful call captures; later calls are no-ops until the saved
// state is consumed by RestoreOriginalState.
func (m *PropertyMixer) SaveOriginalState() error {
	if m.originalSaved {
		return nil
	}
	if err := m.binding.Get(m.original); err != nil {
		return err
	}
	m.originalSaved = true
	return nil
}

// Apply writes the accumulated value through the binding and resets the
// accumulation.
//
//   - weight 0: the saved rest pose is written back, if any.
//   - 0 < weight <= 1: the weighted sum is written as is.
//   - weight > 1: the sum is normalised by the weight.
//
// The rest pose is captured lazily before the first write if nothing saved it
// yet.
func (m *PropertyMixer) Apply() error {
	defer m.reset()

	w := m.weight
	if w <= 0 {
		if m.originalSaved {
			return m.binding.Set(m.original)
		}
		return nil
	}
	if !m.originalSaved && !m.written {
		// A failure here surfaces from the Set below.
		_ = m.SaveOriginalState()
	}

	if w > 1 {
		for i := range m.result {
			m.result[i] = m.accum[i] / w
		}
	} else {
		copy(m.result, m.accum)
	}
	if m.quaternion {
		normalize4(m.result)
	}

	if err := m.binding.Set(m.result); err != nil {
		return err
	}
	m.written = true
	return nil
}

// RestoreOriginalState writes the saved rest pose back and forgets it, so the
// next SaveOriginalState captures afresh. No-op when nothing was saved.
func (m *PropertyMixer) RestoreOriginalState() error {
	if !m.originalSaved {
		return nil
	}
	m.originalSaved = false
	m.written = false
	return m.binding.Set(m.original)
}

func (m *PropertyMixer) reset() {
	m.weight = 0
	for i := range m.accum {
		m.accum[i] = 0
	}
}

func dot4(a, b []float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}

func normalize4(q []float64) {
	l := math.Sqrt(dot4(q, q))
	if l == 0 {
		q[0], q[1], q[2], q[3] = 0, 0, 0, 1
		return
	}
	inv := 1 / l
	for i := range q[:4] {
		q[i] *= inv
	}
}
