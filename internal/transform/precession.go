package transform

import (
	"math"

	"github.com/pleira/celest/internal/timescale"
)

// IAU 2000 frame bias and precession-rate corrections.
const (
	eps0        = 84381.448 * arcsecToRad // J2000.0 obliquity (Lieske 1977)
	biasDpsi    = -0.041775 * arcsecToRad
	biasDeps    = -0.0068192 * arcsecToRad
	biasDra0    = -0.0146 * arcsecToRad
	precCorDpsi = -0.29965 * arcsecToRad // per century
	precCorDeps = -0.02524 * arcsecToRad // per century
)

// meanObliquity1980 is the IAU 1980 mean obliquity of the ecliptic.
func meanObliquity1980(t float64) float64 {
	return arcsecToRad * (84381.448 +
		(-46.8150+
			(-0.00059+
				0.001813*t)*t)*t)
}

// meanObliquity2006 is the IAU 2006 mean obliquity of the ecliptic.
func meanObliquity2006(t float64) float64 {
	return (84381.406 +
		(-46.836769+
			(-0.0001831+
				(0.00200340+
					(-0.000000576+
						(-0.0000000434)*t)*t)*t)*t)*t) * arcsecToRad
}

// MeanObliquity returns the mean obliquity of the ecliptic of date for a series.
// For IAU 2000A this is the IAU 1980 value with the IAU 2000 rate correction.
func MeanObliquity(series Series, tt timescale.TwoPart) float64 {
	t := tt.CenturiesSinceJ2000()
	if series == IAU2006A {
		return meanObliquity2006(t)
	}
	return meanObliquity1980(t) + precCorDeps*t
}

// frameBias2000 is the IAU 2000 GCRS-to-mean-J2000 frame bias.
func frameBias2000() Matrix {
	return Chain(RotZ(biasDra0), RotY(biasDpsi*math.Sin(eps0)), RotX(-biasDeps))
}

// precession2000 is Lieske (1977) precession with the IAU 2000 rate corrections,
// mean J2000 to mean of date.
func precession2000(t float64) Matrix {
	psiA77 := (5038.7784 + (-1.07259+(-0.001147)*t)*t) * t * arcsecToRad
	omA77 := eps0 + ((0.05127+(-0.007726)*t)*t)*t*arcsecToRad
	chiA := (10.5526 + (-2.38064+(-0.001125)*t)*t) * t * arcsecToRad

	psiA := psiA77 + precCorDpsi*t
	omA := omA77 + precCorDeps*t

	return Chain(RotX(eps0), RotZ(-psiA), RotX(-omA), RotZ(chiA))
}

// fukushimaWilliams holds the IAU 2006 Fukushima-Williams angles, bias included.
type fukushimaWilliams struct {
	gammaB, phiB, psiB, epsA float64
}

func fukushimaWilliams2006(t float64) fukushimaWilliams {
	return fukushimaWilliams{
		gammaB: (-0.052928 +
			(10.556378+
				(0.4932044+
					(-0.00031238+
						(-0.000002788+
							(0.0000000260)*t)*t)*t)*t)*t) * arcsecToRad,
		phiB: (84381.412819 +
			(-46.811016+
				(0.0511268+
					(0.00053289+
						(-0.000000440+
							(-0.0000000176)*t)*t)*t)*t)*t) * arcsecToRad,
		psiB: (-0.041775 +
			(5038.481484+
				(1.5584175+
					(-0.00018522+
						(-0.000026452+
							(-0.0000000148)*t)*t)*t)*t)*t) * arcsecToRad,
		epsA: meanObliquity2006(t),
	}
}

// matrix forms R1(-ε) · R3(-ψ) · R1(φ) · R3(γ). With ε = εA it is the
// bias-precession matrix; with ε = εA+Δε and ψ = ψ+Δψ it also includes nutation.
func (fw fukushimaWilliams) matrix(dpsi, deps float64) Matrix {
	return Chain(RotZ(fw.gammaB), RotX(fw.phiB), RotZ(-(fw.psiB + dpsi)), RotX(-(fw.epsA + deps)))
}

// PrecessionAngles are the equatorial precession angles ζA, zA, θA (radians), bias
// excluded, such that P = R3(-zA) · R2(θA) · R3(-ζA), plus the mean obliquity of date.
type PrecessionAngles struct {
	Zeta, Z, Theta float64
	EpsA           float64
}

// precessionAngles2006 evaluates the IAU 2006 polynomials for ζA, zA, θA.
func precessionAngles2006(t float64) PrecessionAngles {
	return PrecessionAngles{
		Zeta: (2.650545 +
			(2306.083227+
				(0.2988499+
					(0.01801828+
						(-0.000005971+
							(-0.0000003173)*t)*t)*t)*t)*t) * arcsecToRad,
		Z: (-2.650545 +
			(2306.077181+
				(1.0927348+
					(0.01826837+
						(-0.000028596+
							(-0.0000002904)*t)*t)*t)*t)*t) * arcsecToRad,
		Theta: ((2004.191903 +
			(-0.4294934+
				(-0.04182264+
					(-0.000007089+
						(-0.0000001274)*t)*t)*t)*t) * t) * arcsecToRad,
		EpsA: meanObliquity2006(t),
	}
}

// DecomposePrecession recovers ζ, z, θ from a precession matrix of the form
// R3(-z) · R2(θ) · R3(-ζ).
func DecomposePrecession(p Matrix) (zeta, z, theta float64) {
	r := p

	y, x := r[1][2], -r[0][2]
	if x < 0 {
		y, x = -y, -x
	}
	if x != 0 || y != 0 {
		z = -math.Atan2(y, x)
	}
	r = RotZ(z).Mul(r)

	// r is now R2(θ) · R3(-ζ); row 1 is unaffected by R2.
	y, x = r[0][2], r[2][2]
	if x != 0 || y != 0 {
		theta = -math.Atan2(y, x)
	}
	y, x = -r[1][0], r[1][1]
	if x != 0 || y != 0 {
		zeta = -math.Atan2(y, x)
	}
	return zeta, z, theta
}
