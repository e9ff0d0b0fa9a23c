package animix

import "math"

// Kernels write a stride-length result into dst. All input slices must have
// the same length as dst; a mismatch is a caller bug and is not checked.

// slerpEpsilon is the distance from 1 below which two quaternions are treated
// as identical.
const slerpEpsilon = 1e-9

// slerpLinearThreshold is the sin(halfTheta) below which Slerp falls back to
// component-wise interpolation.
const slerpLinearThreshold = 1e-3

// Discrete copies a unless alpha >= 1, in which case it copies b.
func Discrete(dst, a, b []float64, alpha float64) {
	if alpha >= 1 {
		copy(dst, b)
		return
	}
	copy(dst, a)
}

// Linear interpolates each component: a*(1-alpha) + b*alpha.
func Linear(dst, a, b []float64, alpha float64) {
	for i := range dst {
		dst[i] = a[i]*(1-alpha) + b[i]*alpha
	}
}

// Cubic evaluates a Catmull-Rom spline through p1 and p2, using p0 and p3 as
// neighbours.
func Cubic(dst, p0, p1, p2, p3 []float64, alpha float64) {
	for i := range dst {
		a := -0.5*p0[i] + 1.5*p1[i] - 1.5*p2[i] + 0.5*p3[i]
		b := p0[i] - 2.5*p1[i] + 2*p2[i] - 0.5*p3[i]
		c := -0.5*p0[i] + 0.5*p2[i]
		d := p1[i]
		dst[i] = ((a*alpha+b)*alpha+c)*alpha + d
	}
}

// Slerp spherically interpolates the unit quaternions q0 and q1, both laid out
// as [x, y, z, w], along the shortest arc.
func Slerp(dst, q0, q1 []float64, alpha float64) {
	x0, y0, z0, w0 := q0[0], q0[1], q0[2], q0[3]
	x1, y1, z1, w1 := q1[0], q1[1], q1[2], q1[3]

	cosHalfTheta := x0*x1 + y0*y1 + z0*z1 + w0*w1
	if cosHalfTheta < 0 {
		x1, y1, z1, w1 = -x1, -y1, -z1, -w1
		cosHalfTheta = -cosHalfTheta
	}

	if cosHalfTheta >= 1-slerpEpsilon {
		dst[0], dst[1], dst[2], dst[3] = x0, y0, z0, w0
		return
	}

	sinHalfTheta := math.Sqrt(1 - cosHalfTheta*cosHalfTheta)
	if sinHalfTheta < slerpLinearThreshold {
		s := 1 - alpha
		dst[0] = x0*s + x1*alpha
		dst[1] = y0*s + y1*alpha
		dst[2] = z0*s + z1*alpha
		dst[3] = w0*s + w1*alpha
		return
	}

	halfTheta := math.Acos(cosHalfTheta)
	ratioA := math.Sin((1-alpha)*halfTheta) / sinHalfTheta
	ratioB := math.Sin(alpha*halfTheta) / sinHalfTheta

	dst[0] = x0*ratioA + x1*ratioB
	dst[1] = y0*ratioA + y1*ratioB
	dst[2] = z0*ratioA + z1*ratioB
	dst[3] = w0*ratioA + w1*ratioB
}
