package animix

import "math"

// Affine is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// IdentityAffine is the identity matrix.
var IdentityAffine = Affine{1, 0, 0, 1, 0, 0}

// Mul returns m * o, the transform that applies o first, then m.
func (m Affine) Mul(o Affine) Affine {
	return Affine{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Apply maps the point (x, y) through m.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Invert returns the inverse of m. ok is false, and the identity returned,
// when m is singular.
func (m Affine) Invert() (inv Affine, ok bool) {
	det := m[0]*m[3] - m[2]*m[1]
	if math.Abs(det) < 1e-12 {
		return IdentityAffine, false
	}
	a, b := m[3]/det, -m[1]/det
	c, d := -m[2]/det, m[0]/det
	return Affine{a, b, c, d, -(a*m[4] + c*m[5]), -(b*m[4] + d*m[5])}, true
}

// LocalTransform returns the node's matrix relative to its parent, composed
// as Translate(-Pivot), Scale, Skew, Rotate, then Translate(X, Y).
func (n *Node) LocalTransform() Affine {
	sin, cos := math.Sincos(n.Rotation)
	tx, ty := math.Tan(n.SkewX), math.Tan(n.SkewY)

	m := Affine{1, 0, 0, 1, -n.PivotX, -n.PivotY}
	m = Affine{n.ScaleX, 0, 0, n.ScaleY, 0, 0}.Mul(m)
	m = Affine{1, ty, tx, 1, 0, 0}.Mul(m)
	m = Affine{cos, sin, -sin, cos, 0, 0}.Mul(m)
	m[4] += n.X
	m[5] += n.Y
	return m
}

// WorldTransform composes the local transforms from the tree root down to n.
// Mixers write local properties only, so hosts read world placement here
// after Advance.
func (n *Node) WorldTransform() Affine {
	m := n.LocalTransform()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.LocalTransform().Mul(m)
	}
	return m
}

// WorldAlpha returns the product of the alpha of n and all its ancestors.
func (n *Node) WorldAlpha() float64 {
	a := n.Alpha
	for p := n.Parent; p != nil; p = p.Parent {
		a *= p.Alpha
	}
	return a
}

// LocalToWorld converts a point in n's local space to world space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return n.WorldTransform().Apply(lx, ly)
}

// WorldToLocal converts a world-space point to n's local space.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	inv, _ := n.WorldTransform().Invert()
	return inv.Apply(wx, wy)
}
