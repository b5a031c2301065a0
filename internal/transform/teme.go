package transform

import (
	"math"

	"github.com/pleira/celest/internal/eop"
)

// TEMEToITRF transforms a TEME state (the output frame of SGP4) to ITRF.
//
// Position: r_ITRF = W · R3(θ) · r_TEME
// Velocity: v_ITRF = W · (R3(θ) · v_TEME - ω × r_PEF)
//
// where θ is GMST82 at UT1, ω = [0, 0, omega] and W is polar motion. Pass the
// identity for W to stop at the pseudo Earth-fixed frame.
func TEMEToITRF(s State, gmst, omega float64, w Matrix) State {
	r := RotZ(gmst)
	pos := r.MulVec(s.Position)
	vel := r.MulVec(s.Velocity)

	// ω × r_PEF = [-ω*y, ω*x, 0]
	vel = vel.Sub(Vec3{X: -omega * pos.Y, Y: omega * pos.X})

	return State{Position: w.MulVec(pos), Velocity: w.MulVec(vel)}
}

// ITRFToTEME is the inverse of TEMEToITRF.
func ITRFToTEME(s State, gmst, omega float64, w Matrix) State {
	wt := w.Transpose()
	pos := wt.MulVec(s.Position)
	vel := wt.MulVec(s.Velocity)
	vel = vel.Add(Vec3{X: -omega * pos.Y, Y: omega * pos.X})

	rt := RotZ(-gmst)
	return State{Position: rt.MulVec(pos), Velocity: rt.MulVec(vel)}
}

// TEMEToGCRF transforms a TEME state to GCRF through ITRF.
func (e *EarthOrientation) TEMEToGCRF(s State, ep Epoch, p eop.Parameters) (State, error) {
	rot := e.Rotation(ep, p)
	itrf := TEMEToITRF(s, GMST82(ep.UT1), rot.Omega, rot.W)
	if err := guardRotation(e.logger, "itrs_to_gcrs", rot.TerrestrialToCelestial()); err != nil {
		return State{}, err
	}
	return rot.ToCelestial(itrf), nil
}

// Plausible geocentric distances for an Earth-orbiting object, km.
const (
	minOrbitRadius = 6200.0
	maxOrbitRadius = 500000.0
)

// ValidOrbitState reports whether a state is finite and its position lies between
// just below the Earth's surface and beyond lunar distance.
func ValidOrbitState(s State) bool {
	for _, v := range [...]float64{
		s.Position.X, s.Position.Y, s.Position.Z,
		s.Velocity.X, s.Velocity.Y, s.Velocity.Z,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	mag := s.Position.Norm()
	return mag >= minOrbitRadius && mag <= maxOrbitRadius
}
