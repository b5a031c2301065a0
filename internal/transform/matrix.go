package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Vec3 is a Cartesian 3-vector.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// State is a position (km) and velocity (km/s) in one reference frame.
type State struct {
	Position Vec3
	Velocity Vec3
}

// Matrix is a row-major 3x3 matrix.
type Matrix [3][3]float64

// Identity returns the 3x3 identity matrix.
func Identity() Matrix {
	return Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// RotX returns the frame rotation R1(φ) about the x-axis. Applied to a vector it
// expresses that vector in axes rotated by +φ.
//
//	[ 1     0      0   ]
//	[ 0   cos φ  sin φ ]
//	[ 0  -sin φ  cos φ ]
func RotX(phi float64) Matrix {
	s, c := math.Sincos(phi)
	return Matrix{
		{1, 0, 0},
		{0, c, s},
		{0, -s, c},
	}
}

// RotY returns the frame rotation R2(θ) about the y-axis.
//
//	[ cos θ  0  -sin θ ]
//	[   0    1    0    ]
//	[ sin θ  0   cos θ ]
func RotY(theta float64) Matrix {
	s, c := math.Sincos(theta)
	return Matrix{
		{c, 0, -s},
		{0, 1, 0},
		{s, 0, c},
	}
}

// RotZ returns the frame rotation R3(ψ) about the z-axis.
//
//	[  cos ψ  sin ψ  0 ]
//	[ -sin ψ  cos ψ  0 ]
//	[    0      0    1 ]
func RotZ(psi float64) Matrix {
	s, c := math.Sincos(psi)
	return Matrix{
		{c, s, 0},
		{-s, c, 0},
		{0, 0, 1},
	}
}

// Mul returns the product m·n.
func (m Matrix) Mul(n Matrix) Matrix {
	var out Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return out
}

// MulVec returns m·v.
func (m Matrix) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Transpose returns mᵀ, the inverse of a rotation matrix.
func (m Matrix) Transpose() Matrix {
	var out Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// Chain builds a product from factors listed in the order they are applied to a
// vector: Chain(a, b, c) = c·b·a.
func Chain(factors ...Matrix) Matrix {
	out := Identity()
	for _, f := range factors {
		out = f.Mul(out)
	}
	return out
}

func (m Matrix) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

// Det returns the determinant of m.
func (m Matrix) Det() float64 {
	return mat.Det(m.dense())
}

// OrthonormalityError returns the Frobenius norm of mᵀm - I.
func (m Matrix) OrthonormalityError() float64 {
	d := m.dense()
	var p mat.Dense
	p.Mul(d.T(), d)
	for i := 0; i < 3; i++ {
		p.Set(i, i, p.At(i, i)-1)
	}
	return mat.Norm(&p, 2)
}

// RotationTolerance bounds ‖mᵀm - I‖ and |det m - 1| for composed rotations.
const RotationTolerance = 1e-10

// CheckRotation verifies that m is a proper rotation within RotationTolerance.
func CheckRotation(m Matrix) error {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.IsNaN(m[i][j]) || math.IsInf(m[i][j], 0) {
				return fmt.Errorf("%w: element [%d][%d] = %v", ErrNonOrthogonal, i, j, m[i][j])
			}
		}
	}
	if e := m.OrthonormalityError(); e > RotationTolerance {
		return fmt.Errorf("%w: ‖MᵀM - I‖ = %.3e", ErrNonOrthogonal, e)
	}
	if d := m.Det(); math.Abs(d-1) > RotationTolerance {
		return fmt.Errorf("%w: det = %.15f", ErrNonOrthogonal, d)
	}
	return nil
}

func (m Matrix) String() string {
	return fmt.Sprintf("[[% .15f % .15f % .15f] [% .15f % .15f % .15f] [% .15f % .15f % .15f]]",
		m[0][0], m[0][1], m[0][2], m[1][0], m[1][1], m[1][2], m[2][0], m[2][1], m[2][2])
}
