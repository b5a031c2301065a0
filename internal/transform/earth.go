package transform

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pleira/celest/internal/eop"
	"github.com/pleira/celest/internal/timescale"
)

// EarthRotationAngle returns the IAU 2000 Earth rotation angle in [0, 2π) at UT1.
//
//	ERA = 2π (0.7790572732640 + 1.00273781191135448 Tu),  Tu = JD(UT1) - 2451545.0
//
// The integer days of Tu are dropped before scaling to keep precision.
func EarthRotationAngle(ut1 timescale.TwoPart) float64 {
	d1, d2 := ut1.Whole, ut1.Fraction
	if d1 > d2 {
		d1, d2 = d2, d1
	}
	t := d1 + (d2 - j2000)
	f := math.Mod(d1, 1.0) + math.Mod(d2, 1.0)
	return normalizeAngle(twoPi * (f + 0.7790572732640 + 0.00273781191135448*t))
}

// TIOLocator returns s′, the position of the Terrestrial Intermediate Origin on the
// CIP equator, from the secular drift of -47 µas per century.
func TIOLocator(tt timescale.TwoPart) float64 {
	return -47e-6 * tt.CenturiesSinceJ2000() * arcsecToRad
}

// PolarMotion returns W = R1(-yp) · R2(-xp) · R3(s′), the rotation from TIRS to ITRS.
// xp, yp and sp are in radians.
func PolarMotion(xp, yp, sp float64) Matrix {
	return Chain(RotZ(sp), RotY(-xp), RotX(-yp))
}

// Epoch is one instant expressed in the two time scales the rotation needs: TT for
// precession-nutation and UT1 for Earth rotation.
type Epoch struct {
	TT  timescale.TwoPart
	UT1 timescale.TwoPart
}

// EpochFromUTC derives TT and UT1 from a UTC date. The converter must have a DUT1
// source configured.
func EpochFromUTC(c *timescale.Converter, utc timescale.TwoPart) (Epoch, error) {
	tt, err := c.Convert(utc, timescale.UTC, timescale.TT)
	if err != nil {
		return Epoch{}, fmt.Errorf("epoch TT: %w", err)
	}
	ut1, err := c.Convert(utc, timescale.UTC, timescale.UT1)
	if err != nil {
		return Epoch{}, fmt.Errorf("epoch UT1: %w", err)
	}
	return Epoch{TT: tt, UT1: ut1}, nil
}

// Rotation holds the factors of the terrestrial-to-celestial rotation at one epoch.
type Rotation struct {
	Series Series

	// W rotates TIRS to ITRS.
	W Matrix
	// ERA is the Earth rotation angle in radians.
	ERA float64
	// Q rotates GCRS to CIRS.
	Q Matrix

	// Intermediate quantities, radians.
	X, Y, S, SP float64

	// Omega is the Earth rotation rate in rad/s corrected for excess length of day.
	Omega float64
}

// CelestialToTerrestrial returns C2T = W · R3(ERA) · Q, GCRS to ITRS.
func (r Rotation) CelestialToTerrestrial() Matrix {
	return Chain(r.Q, RotZ(r.ERA), r.W)
}

// TerrestrialToCelestial returns C2Tᵀ = Qᵀ · R3(-ERA) · Wᵀ, ITRS to GCRS.
func (r Rotation) TerrestrialToCelestial() Matrix {
	return Chain(r.W.Transpose(), RotZ(-r.ERA), r.Q.Transpose())
}

// EarthOrientation builds terrestrial/celestial rotations for one precession-nutation
// series. It is safe for concurrent use.
type EarthOrientation struct {
	model  *PrecessionNutation
	logger *slog.Logger
}

// NewEarthOrientation creates an EarthOrientation for series.
func NewEarthOrientation(series Series, logger *slog.Logger, opts ...ModelOption) (*EarthOrientation, error) {
	model, err := NewPrecessionNutation(series, opts...)
	if err != nil {
		return nil, err
	}
	return &EarthOrientation{model: model, logger: logger}, nil
}

// Model returns the underlying precession-nutation model.
func (e *EarthOrientation) Model() *PrecessionNutation {
	return e.model
}

// Rotation computes the rotation factors at ep using the given Earth orientation
// parameters. Only XP, YP, DX, DY and LOD are read; UT1 is taken from ep.
func (e *EarthOrientation) Rotation(ep Epoch, p eop.Parameters) Rotation {
	npb := e.model.NPB(ep.TT)
	x, y := CIPCoordinates(npb)
	x += p.DX * arcsecToRad
	y += p.DY * arcsecToRad
	s := CIOLocator(ep.TT, x, y)
	sp := TIOLocator(ep.TT)

	return Rotation{
		Series: e.model.Series(),
		W:      PolarMotion(p.XP*arcsecToRad, p.YP*arcsecToRad, sp),
		ERA:    EarthRotationAngle(ep.UT1),
		Q:      CelestialToIntermediate(x, y, s),
		X:      x,
		Y:      y,
		S:      s,
		SP:     sp,
		Omega:  OmegaEarth * (1.0 - p.LOD/secondsPerDay),
	}
}

// ITRSToGCRS returns the checked ITRS-to-GCRS rotation matrix at ep.
func (e *EarthOrientation) ITRSToGCRS(ep Epoch, p eop.Parameters) (Matrix, error) {
	m := e.Rotation(ep, p).TerrestrialToCelestial()
	if err := guardRotation(e.logger, "itrs_to_gcrs", m); err != nil {
		return Matrix{}, err
	}
	return m, nil
}

// GCRSToITRS returns the checked GCRS-to-ITRS rotation matrix at ep.
func (e *EarthOrientation) GCRSToITRS(ep Epoch, p eop.Parameters) (Matrix, error) {
	m := e.Rotation(ep, p).CelestialToTerrestrial()
	if err := guardRotation(e.logger, "gcrs_to_itrs", m); err != nil {
		return Matrix{}, err
	}
	return m, nil
}

// ITRFToTIRS removes polar motion from an Earth-fixed state.
func ITRFToTIRS(s State, w Matrix) State {
	wt := w.Transpose()
	return State{Position: wt.MulVec(s.Position), Velocity: wt.MulVec(s.Velocity)}
}

// TIRSToCIRS rotates a TIRS state by -ERA. The velocity picks up the ω × r term of
// the rotating frame.
func TIRSToCIRS(s State, era, omega float64) State {
	r := RotZ(-era)
	v := s.Velocity.Add(Vec3{X: -omega * s.Position.Y, Y: omega * s.Position.X})
	return State{Position: r.MulVec(s.Position), Velocity: r.MulVec(v)}
}

// CIRSToTIRS is the inverse of TIRSToCIRS.
func CIRSToTIRS(s State, era, omega float64) State {
	r := RotZ(era)
	pos := r.MulVec(s.Position)
	v := r.MulVec(s.Velocity)
	v = v.Sub(Vec3{X: -omega * pos.Y, Y: omega * pos.X})
	return State{Position: pos, Velocity: v}
}

// ITRFToGCRF transforms an Earth-fixed state to GCRF.
func (e *EarthOrientation) ITRFToGCRF(s State, ep Epoch, p eop.Parameters) (State, error) {
	rot := e.Rotation(ep, p)
	if err := guardRotation(e.logger, "itrs_to_gcrs", rot.TerrestrialToCelestial()); err != nil {
		return State{}, err
	}
	return rot.ToCelestial(s), nil
}

// GCRFToITRF transforms a GCRF state to the Earth-fixed frame.
func (e *EarthOrientation) GCRFToITRF(s State, ep Epoch, p eop.Parameters) (State, error) {
	rot := e.Rotation(ep, p)
	if err := guardRotation(e.logger, "gcrs_to_itrs", rot.CelestialToTerrestrial()); err != nil {
		return State{}, err
	}
	return rot.ToTerrestrial(s), nil
}

// ToCelestial applies the rotation to an ITRF state: polar motion, then Earth
// rotation, then the celestial-to-intermediate transpose.
func (r Rotation) ToCelestial(s State) State {
	tirs := ITRFToTIRS(s, r.W)
	cirs := TIRSToCIRS(tirs, r.ERA, r.Omega)
	qt := r.Q.Transpose()
	return State{Position: qt.MulVec(cirs.Position), Velocity: qt.MulVec(cirs.Velocity)}
}

// ToTerrestrial is the inverse of ToCelestial.
func (r Rotation) ToTerrestrial(s State) State {
	cirs := State{Position: r.Q.MulVec(s.Position), Velocity: r.Q.MulVec(s.Velocity)}
	tirs := CIRSToTIRS(cirs, r.ERA, r.Omega)
	return State{Position: r.W.MulVec(tirs.Position), Velocity: r.W.MulVec(tirs.Velocity)}
}

// ApparentSiderealTime returns Greenwich apparent sidereal time as ERA minus the
// equation of origins, in [0, 2π).
func (e *EarthOrientation) ApparentSiderealTime(ep Epoch) float64 {
	return apparentSiderealTime(ep, e.model.NPB(ep.TT))
}

func apparentSiderealTime(ep Epoch, npb Matrix) float64 {
	x, y := CIPCoordinates(npb)
	s := CIOLocator(ep.TT, x, y)
	return normalizeAngle(EarthRotationAngle(ep.UT1) - EquationOfOrigins(npb, s))
}

// ITRSToGCRSEquinox returns the equinox-based ITRS-to-GCRS matrix
// (N·P·B)ᵀ · R3(-GAST) · Wᵀ. The dX, dY corrections are not applied on this route.
func (e *EarthOrientation) ITRSToGCRSEquinox(ep Epoch, p eop.Parameters) (Matrix, error) {
	npb := e.model.NPB(ep.TT)
	gast := apparentSiderealTime(ep, npb)
	w := PolarMotion(p.XP*arcsecToRad, p.YP*arcsecToRad, TIOLocator(ep.TT))
	m := Chain(w.Transpose(), RotZ(-gast), npb.Transpose())
	if err := guardRotation(e.logger, "itrs_to_gcrs_equinox", m); err != nil {
		return Matrix{}, err
	}
	return m, nil
}
