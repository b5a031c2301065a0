package transform

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pleira/celest/internal/timescale"
)

// ErrNutationTable reports a malformed IERS nutation coefficient file.
var ErrNutationTable = errors.New("invalid nutation table")

// microarcsecToRad converts the µas amplitudes of the IERS tables to radians.
const microarcsecToRad = arcsecToRad / 1e6

// blockHeader matches the power-of-t block headers of IERS Conventions tables 5.3a
// and 5.3b, e.g.
//
//	j = 0  Number  of terms = 1320
var blockHeader = regexp.MustCompile(`^\s*j\s*=\s*(\d+)(?:\s+Number\s+of\s+terms\s*=\s*(\d+))?`)

// seriesTerm is one row of an IERS nutation table: t^power · (sin·sin(arg) + cos·cos(arg))
// with the argument formed from the 14 fundamental arguments.
type seriesTerm struct {
	power    int
	mult     [14]int8
	sin, cos float64 // µas
}

// NutationTable is the full IAU 2000A nutation series (luni-solar and planetary) read
// from IERS Conventions tables 5.3a (Δψ) and 5.3b (Δε).
type NutationTable struct {
	psi, eps []seriesTerm
}

// Len returns the number of Δψ and Δε terms.
func (nt *NutationTable) Len() (psi, eps int) {
	return len(nt.psi), len(nt.eps)
}

// ParseNutationTables reads the Δψ and Δε coefficient files.
func ParseNutationTables(psi, eps io.Reader) (*NutationTable, error) {
	p, err := parseSeriesTable(psi)
	if err != nil {
		return nil, fmt.Errorf("longitude table: %w", err)
	}
	e, err := parseSeriesTable(eps)
	if err != nil {
		return nil, fmt.Errorf("obliquity table: %w", err)
	}
	return &NutationTable{psi: p, eps: e}, nil
}

// LoadNutationTables opens and parses the two coefficient files.
func LoadNutationTables(psiPath, epsPath string) (*NutationTable, error) {
	pf, err := os.Open(psiPath)
	if err != nil {
		return nil, fmt.Errorf("opening nutation table: %w", err)
	}
	defer pf.Close()
	ef, err := os.Open(epsPath)
	if err != nil {
		return nil, fmt.Errorf("opening nutation table: %w", err)
	}
	defer ef.Close()
	return ParseNutationTables(pf, ef)
}

// parseSeriesTable reads one table. Data rows carry an index, the sine and cosine
// amplitudes in µas and 14 integer multipliers; header and comment lines are ignored.
// Each block's row count must match its "Number of terms" header when present.
func parseSeriesTable(r io.Reader) ([]seriesTerm, error) {
	var (
		terms    []seriesTerm
		power    = -1
		want     = -1
		inBlock  int
		lineNo   int
		scanner  = bufio.NewScanner(r)
		closeOut = func() error {
			if want >= 0 && inBlock != want {
				return fmt.Errorf("%w: block j=%d has %d terms, header says %d", ErrNutationTable, power, inBlock, want)
			}
			return nil
		}
	)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if m := blockHeader.FindStringSubmatch(line); m != nil {
			if err := closeOut(); err != nil {
				return nil, err
			}
			power, _ = strconv.Atoi(m[1])
			want, inBlock = -1, 0
			if m[2] != "" {
				want, _ = strconv.Atoi(m[2])
			}
			continue
		}
		fields := strings.Fields(line)
		if power < 0 || len(fields) != 17 {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		term, err := parseSeriesRow(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrNutationTable, lineNo, err)
		}
		term.power = power
		terms = append(terms, term)
		inBlock++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading nutation table: %w", err)
	}
	if err := closeOut(); err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: no terms", ErrNutationTable)
	}
	return terms, nil
}

func parseSeriesRow(fields []string) (seriesTerm, error) {
	var term seriesTerm
	var err error
	if term.sin, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return term, err
	}
	if term.cos, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return term, err
	}
	for k := 0; k < 14; k++ {
		n, err := strconv.ParseInt(fields[3+k], 10, 8)
		if err != nil {
			return term, err
		}
		term.mult[k] = int8(n)
	}
	return term, nil
}

func evaluateSeries(terms []seriesTerm, t float64, args *[14]float64) float64 {
	var sum [5]float64 // per power of t
	for i := len(terms) - 1; i >= 0; i-- {
		term := &terms[i]
		var arg float64
		for k, m := range term.mult {
			if m != 0 {
				arg += float64(m) * args[k]
			}
		}
		s, c := math.Sincos(math.Mod(arg, twoPi))
		if term.power < len(sum) {
			sum[term.power] += term.sin*s + term.cos*c
		}
	}
	v := 0.0
	for j := len(sum) - 1; j >= 0; j-- {
		v = v*t + sum[j]
	}
	return v
}

// nutation evaluates the full series at TT.
func (nt *NutationTable) nutation(tt timescale.TwoPart) NutationAngles {
	t := tt.CenturiesSinceJ2000()
	args := fundamentalArguments(t)
	return NutationAngles{
		Dpsi: evaluateSeries(nt.psi, t, &args) * microarcsecToRad,
		Deps: evaluateSeries(nt.eps, t, &args) * microarcsecToRad,
	}
}
