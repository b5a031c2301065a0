package transform

import "math"

// Fundamental arguments of nutation theory (IERS Conventions 2003), as functions of
// TT Julian centuries since J2000.0. Results are in radians.

// meanAnomalyMoon returns l, the mean anomaly of the Moon.
func meanAnomalyMoon(t float64) float64 {
	return math.Mod(485868.249036+
		t*(1717915923.2178+
			t*(31.8792+
				t*(0.051635+
					t*(-0.00024470)))), turnArcsec) * arcsecToRad
}

// meanAnomalySun returns l′, the mean anomaly of the Sun.
func meanAnomalySun(t float64) float64 {
	return math.Mod(1287104.793048+
		t*(129596581.0481+
			t*(-0.5532+
				t*(0.000136+
					t*(-0.00001149)))), turnArcsec) * arcsecToRad
}

// meanArgumentOfLatitudeMoon returns F = L - Ω.
func meanArgumentOfLatitudeMoon(t float64) float64 {
	return math.Mod(335779.526232+
		t*(1739527262.8478+
			t*(-12.7512+
				t*(-0.001037+
					t*(0.00000417)))), turnArcsec) * arcsecToRad
}

// meanElongationMoonSun returns D, the mean elongation of the Moon from the Sun.
func meanElongationMoonSun(t float64) float64 {
	return math.Mod(1072260.703692+
		t*(1602961601.2090+
			t*(-6.3706+
				t*(0.006593+
					t*(-0.00003169)))), turnArcsec) * arcsecToRad
}

// meanLongitudeAscendingNode returns Ω, the mean longitude of the Moon's ascending node.
func meanLongitudeAscendingNode(t float64) float64 {
	return math.Mod(450160.398036+
		t*(-6962890.5431+
			t*(7.4722+
				t*(0.007702+
					t*(-0.00005939)))), turnArcsec) * arcsecToRad
}

// meanLongitudeVenus returns the mean longitude of Venus.
func meanLongitudeVenus(t float64) float64 {
	return math.Mod(3.176146697+1021.3285546211*t, twoPi)
}

// meanLongitudeEarth returns the mean longitude of the Earth.
func meanLongitudeEarth(t float64) float64 {
	return math.Mod(1.753470314+628.3075849991*t, twoPi)
}

// generalPrecessionInLongitude returns pA, the accumulated general precession.
func generalPrecessionInLongitude(t float64) float64 {
	return (0.024381750 + 0.00000538691*t) * t
}

// Planetary mean longitudes (IERS Conventions 2003), radians.

func meanLongitudeMercury(t float64) float64 {
	return math.Mod(4.402608842+2608.7903141574*t, twoPi)
}

func meanLongitudeMars(t float64) float64 {
	return math.Mod(6.203480913+334.0612426700*t, twoPi)
}

func meanLongitudeJupiter(t float64) float64 {
	return math.Mod(0.599546497+52.9690962641*t, twoPi)
}

func meanLongitudeSaturn(t float64) float64 {
	return math.Mod(0.874016757+21.3299104960*t, twoPi)
}

func meanLongitudeUranus(t float64) float64 {
	return math.Mod(5.481293872+7.4781598567*t, twoPi)
}

func meanLongitudeNeptune(t float64) float64 {
	return math.Mod(5.311886287+3.8133035638*t, twoPi)
}

// fundamentalArguments returns the 14 arguments in IERS table column order:
// l, l′, F, D, Ω, L_Me, L_Ve, L_E, L_Ma, L_J, L_Sa, L_U, L_Ne, pA.
func fundamentalArguments(t float64) [14]float64 {
	return [14]float64{
		meanAnomalyMoon(t),
		meanAnomalySun(t),
		meanArgumentOfLatitudeMoon(t),
		meanElongationMoonSun(t),
		meanLongitudeAscendingNode(t),
		meanLongitudeMercury(t),
		meanLongitudeVenus(t),
		meanLongitudeEarth(t),
		meanLongitudeMars(t),
		meanLongitudeJupiter(t),
		meanLongitudeSaturn(t),
		meanLongitudeUranus(t),
		meanLongitudeNeptune(t),
		generalPrecessionInLongitude(t),
	}
}
