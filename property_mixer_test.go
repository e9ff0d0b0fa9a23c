package animix

import (
	"errors"
	"math"
	"testing"
)

func newXMixer(t *testing.T) (*Node, *PropertyMixer) {
	t.Helper()
	n := NewNode("n")
	return n, NewPropertyMixer(NewPropertyBinding(n, "x", 1), InterpolateLinear)
}

func TestPropertyMixerFullWeight(t *testing.T) {
	n, m := newXMixer(t)
	m.Accumulate([]float64{5}, 0.5)
	m.Accumulate([]float64{10}, 0.5)
	if m.Weight() != 1 {
		t.Errorf("Weight = %v, want 1", m.Weight())
	}
	if err := m.Apply(); err != nil {
		t.Fatal(err)
	}
	if n.X != 7.5 {
		t.Errorf("X = %v, want 7.5", n.X)
	}
	if m.Weight() != 0 {
		t.Error("Apply did not reset the accumulated weight")
	}
}

func TestPropertyMixerOrderIndependent(t *testing.T) {
	contributions := [][2]float64{{3, 0.2}, {-7, 0.7}, {11, 0.4}}

	apply := func(order []int) float64 {
		n, m := newXMixer(t)
		for _, i := range order {
			m.Accumulate([]float64{contributions[i][0]}, contributions[i][1])
		}
		if err := m.Apply(); err != nil {
			t.Fatal(err)
		}
		return n.X
	}

	a := apply([]int{0, 1, 2})
	b := apply([]int{2, 1, 0})
	c := apply([]int{1, 0, 2})
	if !approxEqual(a, b, 1e-12) || !approxEqual(a, c, 1e-12) {
		t.Errorf("order dependent: %v %v %v", a, b, c)
	}
}

func TestPropertyMixerNormalisesOverweight(t *testing.T) {
	n, m := newXMixer(t)
	m.Accumulate([]float64{4}, 1)
	m.Accumulate([]float64{8}, 1)
	if err := m.Apply(); err != nil {
		t.Fatal(err)
	}
	if n.X != 6 {
		t.Errorf("X = %v, want 6", n.X)
	}
}

func TestPropertyMixerPartialWeightWritesWeightedSum(t *testing.T) {
	n, m := newXMixer(t)
	n.X = 100
	if err := m.SaveOriginalState(); err != nil {
		t.Fatal(err)
	}
	m.Accumulate([]float64{10}, 0.5)
	if err := m.Apply(); err != nil {
		t.Fatal(err)
	}
	// 10*0.5, the rest pose does not fill the missing weight.
	if n.X != 5 {
		t.Errorf("X = %v, want 5", n.X)
	}
}

func TestPropertyMixerZeroWeightRestores(t *testing.T) {
	n, m := newXMixer(t)
	n.X = 3
	m.Accumulate([]float64{9}, 1)
	if err := m.Apply(); err != nil {
		t.Fatal(err)
	}
	if n.X != 9 {
		t.Fatalf("X = %v, want 9", n.X)
	}
	if !m.HasOriginalState() {
		t.Fatal("Apply did not capture the rest pose before writing")
	}

	if err := m.Apply(); err != nil {
		t.Fatal(err)
	}
	if n.X != 3 {
		t.Errorf("X = %v, want rest pose 3", n.X)
	}
}

func TestPropertyMixerSaveOriginalStateOnce(t *testing.T) {
	n, m := newXMixer(t)
	n.X = 1
	_ = m.SaveOriginalState()
	n.X = 2
	_ = m.SaveOriginalState()

	if err := m.RestoreOriginalState(); err != nil {
		t.Fatal(err)
	}
	if n.X != 1 {
		t.Errorf("X = %v, want first captured value 1", n.X)
	}
	if m.HasOriginalState() {
		t.Error("RestoreOriginalState kept the saved state")
	}

	n.X = 5
	if err := m.RestoreOriginalState(); err != nil || n.X != 5 {
		t.Errorf("restore without saved state changed X to %v (%v)", n.X, err)
	}
}

func TestPropertyMixerApplyResetsOnError(t *testing.T) {
	n := NewNode("n")
	m := NewPropertyMixer(NewPropertyBinding(n, "missing", 1), InterpolateLinear)
	m.Accumulate([]float64{1}, 1)
	err := m.Apply()
	if !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("err = %v, want ErrUnknownProperty", err)
	}
	if m.Weight() != 0 {
		t.Error("failed Apply leaked accumulation into the next tick")
	}
}

func TestPropertyMixerQuaternion(t *testing.T) {
	n := NewNode("n")
	n.SetChannel("rot", []float64{0, 0, 0, 1})
	m := NewPropertyMixer(NewPropertyBinding(n, "rot", 4), InterpolateQuaternion)

	q := quatAxisAngle(0, 0, 1, 1)
	neg := []float64{-q[0], -q[1], -q[2], -q[3]}
	m.Accumulate(q, 0.5)
	m.Accumulate(neg, 0.5)
	if err := m.Apply(); err != nil {
		t.Fatal(err)
	}
	got := n.Channel("rot")
	if l := quatLen(got); math.Abs(l-1) > 1e-9 {
		t.Errorf("|q| = %v, want 1", l)
	}
	for i := range q {
		if !approxEqual(got[i], q[i], 1e-9) {
			t.Fatalf("rot = %v, want %v", got, q)
		}
	}
}

func TestPropertyMixerAccumulateDoesNotAllocate(t *testing.T) {
	_, m := newXMixer(t)
	v := []float64{1}
	allocs := testing.AllocsPerRun(100, func() {
		m.Accumulate(v, 0.5)
		_ = m.Apply()
	})
	if allocs != 0 {
		t.Errorf("Accumulate/Apply allocated %v times per run", allocs)
	}
}
