package transform

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/pleira/celest/internal/timescale"
)

// tableRow formats one IERS row with the given multipliers and µas amplitudes.
func tableRow(i int, sin, cos float64, mult [14]int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%6d %s %s", i, strconv.FormatFloat(sin, 'f', -1, 64), strconv.FormatFloat(cos, 'f', -1, 64))
	for _, m := range mult {
		fmt.Fprintf(&b, " %d", m)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, j int, rows []string) {
	fmt.Fprintf(b, "  j = %d  Number  of terms = %d\n\n", j, len(rows))
	for _, r := range rows {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}

func lunisolarMult(term *lunisolarTerm) [14]int {
	return [14]int{term.nl, term.nlp, term.nf, term.nd, term.nom}
}

// lunisolarTables renders the embedded luni-solar terms in the IERS 5.3a/5.3b layout.
func lunisolarTables() (psi, eps string) {
	var p0, p1, e0, e1 []string
	for i := range lunisolarSeries {
		term := &lunisolarSeries[i]
		m := lunisolarMult(term)
		p0 = append(p0, tableRow(len(p0)+1, term.ps/10, term.pc/10, m))
		p1 = append(p1, tableRow(len(p0)+len(p1), term.pst/10, 0, m))
		e0 = append(e0, tableRow(len(e0)+1, term.es/10, term.ec/10, m))
		e1 = append(e1, tableRow(len(e0)+len(e1), 0, term.ect/10, m))
	}
	var pb, eb strings.Builder
	pb.WriteString("Table 5.3a: nutation in longitude, units µas\n\n")
	writeBlock(&pb, 0, p0)
	writeBlock(&pb, 1, p1)
	eb.WriteString("Table 5.3b: nutation in obliquity, units µas\n\n")
	writeBlock(&eb, 0, e0)
	writeBlock(&eb, 1, e1)
	return pb.String(), eb.String()
}

func TestNutationTableMatchesEmbeddedSeries(t *testing.T) {
	psi, eps := lunisolarTables()
	nt, err := ParseNutationTables(strings.NewReader(psi), strings.NewReader(eps))
	if err != nil {
		t.Fatal(err)
	}
	np, ne := nt.Len()
	if np != 2*len(lunisolarSeries) || ne != 2*len(lunisolarSeries) {
		t.Fatalf("Len() = %d, %d", np, ne)
	}

	for _, tt := range []timescale.TwoPart{
		{Whole: 2400000.5, Fraction: 53736},
		valladoTT,
		{Whole: 2451545, Fraction: 0},
		{Whole: 2469807.5, Fraction: 0.25},
	} {
		got := nt.nutation(tt)
		want := truncatedNutation(tt)
		want.Dpsi -= planetaryDpsi
		want.Deps -= planetaryDeps
		if math.Abs(got.Dpsi-want.Dpsi) > 1e-15 || math.Abs(got.Deps-want.Deps) > 1e-15 {
			t.Errorf("%v: table nutation (%.17e, %.17e), series (%.17e, %.17e)",
				tt, got.Dpsi, got.Deps, want.Dpsi, want.Deps)
		}
	}
}

func TestNutationTablePlanetaryColumns(t *testing.T) {
	var venus, pa [14]int
	venus[6] = 1
	pa[13] = 1

	var pb, eb strings.Builder
	writeBlock(&pb, 0, []string{tableRow(1, 100, 0, venus)})
	writeBlock(&eb, 0, []string{tableRow(1, 0, 0, venus)})
	writeBlock(&eb, 1, []string{tableRow(2, 0, 50, pa)})

	nt, err := ParseNutationTables(strings.NewReader(pb.String()), strings.NewReader(eb.String()))
	if err != nil {
		t.Fatal(err)
	}
	tt := timescale.TwoPart{Whole: 2458849.5, Fraction: 0.125}
	c := tt.CenturiesSinceJ2000()
	got := nt.nutation(tt)

	if want := 100 * microarcsecToRad * math.Sin(meanLongitudeVenus(c)); math.Abs(got.Dpsi-want) > 1e-20 {
		t.Errorf("Venus term Dpsi = %.17e, want %.17e", got.Dpsi, want)
	}
	if want := c * 50 * microarcsecToRad * math.Cos(generalPrecessionInLongitude(c)); math.Abs(got.Deps-want) > 1e-20 {
		t.Errorf("pA term Deps = %.17e, want %.17e", got.Deps, want)
	}
}

func TestParseNutationTableErrors(t *testing.T) {
	var lunar [14]int
	lunar[4] = 1
	row := tableRow(1, 1, 2, lunar)
	valid := "  j = 0  Number  of terms = 1\n" + row + "\n"

	tests := []struct {
		name     string
		psi, eps string
		want     string
	}{
		{"count mismatch", "  j = 0  Number  of terms = 2\n" + row + "\n", valid, "header says 2"},
		{"bad multiplier", "  j = 0  Number  of terms = 1\n" + strings.Replace(row, " 1 0 0", " x 0 0", 1) + "\n", valid, "line 2"},
		{"no terms", "Table 5.3a\n", valid, "no terms"},
		{"rows before header", row + "\n", valid, "no terms"},
		{"obliquity", valid, "  j = 1  Number  of terms = 3\n" + row + "\n", "obliquity table"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseNutationTables(strings.NewReader(tc.psi), strings.NewReader(tc.eps))
			if !errors.Is(err, ErrNutationTable) {
				t.Fatalf("err = %v, want ErrNutationTable", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %q, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadNutationTablesMissingFile(t *testing.T) {
	if _, err := LoadNutationTables("/nonexistent/tab5.3a.txt", "/nonexistent/tab5.3b.txt"); err == nil {
		t.Fatal("expected error for missing files")
	}
}

func TestWithNutationTable(t *testing.T) {
	psi, eps := lunisolarTables()
	nt, err := ParseNutationTables(strings.NewReader(psi), strings.NewReader(eps))
	if err != nil {
		t.Fatal(err)
	}
	pn, err := NewPrecessionNutation(IAU2006A, WithNutationTable(nt))
	if err != nil {
		t.Fatal(err)
	}
	if !pn.FullNutation() {
		t.Fatal("FullNutation() = false with a table")
	}
	tt := valladoTT
	want := adjust2006(tt, nt.nutation(tt))
	got := pn.NutationAngles(tt)
	if got != want {
		t.Errorf("NutationAngles = %+v, want %+v", got, want)
	}
}

// The IERS Conventions tables 5.3a and 5.3b are not shipped; point
// CELEST_NUTATION_PSI_FILE and CELEST_NUTATION_EPS_FILE at them to run this check.
func TestFullNutationTables(t *testing.T) {
	psiPath, epsPath := os.Getenv("CELEST_NUTATION_PSI_FILE"), os.Getenv("CELEST_NUTATION_EPS_FILE")
	if psiPath == "" || epsPath == "" {
		t.Skip("IERS nutation tables not configured")
	}
	nt, err := LoadNutationTables(psiPath, epsPath)
	if err != nil {
		t.Fatal(err)
	}
	np, ne := nt.Len()
	if np < 1300 || ne < 1000 {
		t.Errorf("Len() = %d, %d, want the full luni-solar and planetary series", np, ne)
	}

	tt := timescale.TwoPart{Whole: 2400000.5, Fraction: 53736}
	const tol = 5e-11
	tests := []struct {
		series     Series
		dpsi, deps float64
	}{
		{IAU2000A, -0.9630909107115518431e-5, 0.4063239174001678710e-4},
		{IAU2006A, -0.9630912025820308797e-5, 0.4063238496887249798e-4},
	}
	for _, tc := range tests {
		t.Run(tc.series.String(), func(t *testing.T) {
			pn, err := NewPrecessionNutation(tc.series, WithNutationTable(nt))
			if err != nil {
				t.Fatal(err)
			}
			n := pn.NutationAngles(tt)
			if math.Abs(n.Dpsi-tc.dpsi) > tol || math.Abs(n.Deps-tc.deps) > tol {
				t.Errorf("nutation = (%.16e, %.16e), want (%.16e, %.16e)", n.Dpsi, n.Deps, tc.dpsi, tc.deps)
			}
		})
	}
}
