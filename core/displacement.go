package segmentation

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// TranslationDifference returns the component-wise absolute difference
// between two translations.
func TranslationDifference(t1, t2 r3.Vec) r3.Vec {
	return r3.Vec{
		X: math.Abs(t1.X - t2.X),
		Y: math.Abs(t1.Y - t2.Y),
		Z: math.Abs(t1.Z - t2.Z),
	}
}

// TranslationWithin reports whether every axis of the translation
// difference is within threshold. The comparison is non-strict: a
// difference exactly at the threshold still counts as small.
func TranslationWithin(t1, t2 r3.Vec, threshold float64) bool {
	return scalar.EqualWithinAbs(t1.X, t2.X, threshold) &&
		scalar.EqualWithinAbs(t1.Y, t2.Y, threshold) &&
		scalar.EqualWithinAbs(t1.Z, t2.Z, threshold)
}

// RotationAngle returns the angle of the rotation taking q1 to q2,
// computed from the quaternion difference q2 * q1⁻¹ as
// 2·atan2(|vector part|, scalar part).
func RotationAngle(q1, q2 quat.Number) float64 {
	diff := quat.Mul(q2, quat.Inv(q1))
	vec := floats.Norm([]float64{diff.Imag, diff.Jmag, diff.Kmag}, 2)
	return 2 * math.Atan2(vec, diff.Real)
}

// RotationWithin reports whether the rotation between two orientations
// is within threshold, non-strict.
func RotationWithin(q1, q2 quat.Number, threshold float64) bool {
	return RotationAngle(q1, q2) <= threshold
}
