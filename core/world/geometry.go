package world

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is an object's position and orientation in the world frame.
type Pose struct {
	Position    r3.Vec
	Orientation quat.Number
}

// IdentityPose returns the origin pose with no rotation.
func IdentityPose() Pose {
	return Pose{Orientation: quat.Number{Real: 1}}
}

// IsZero reports whether the pose has never been set. The identity
// orientation does not count as zero; a genuinely unset pose has a zero
// quaternion, which is not a valid rotation.
func (p Pose) IsZero() bool {
	return p.Position == (r3.Vec{}) && p.Orientation == (quat.Number{})
}

// Transform is a relative pose between two named frames.
type Transform struct {
	Frame       string
	Child       string
	Translation r3.Vec
	Rotation    quat.Number
}

// RelativeTransform returns the transform of child expressed in the
// frame of parent: inv(parent) * child.
func RelativeTransform(parent, child Pose, parentName, childName string) Transform {
	inv := quat.Inv(parent.Orientation)
	delta := r3.Sub(child.Position, parent.Position)
	return Transform{
		Frame:       parentName,
		Child:       childName,
		Translation: rotateVec(inv, delta),
		Rotation:    quat.Mul(inv, child.Orientation),
	}
}

// rotateVec applies the rotation q to v as q * v * q⁻¹.
func rotateVec(q quat.Number, v r3.Vec) r3.Vec {
	qv := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, qv), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// AngleBetween returns the angle in radians between two vectors.
func AngleBetween(a, b r3.Vec) float64 {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na == 0 || nb == 0 {
		return math.Pi
	}
	cos := r3.Dot(a, b) / (na * nb)
	// Guard against rounding pushing the ratio out of acos domain.
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos)
}
