package timescale

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// taiUTCLine matches one row of the USNO tai-utc.dat bulletin, e.g.
//
//	1961 JAN  1 =JD 2437300.5  TAI-UTC=   1.4228180 S + (MJD - 37300.) X 0.001296 S
var taiUTCLine = regexp.MustCompile(
	`^\s*(\d{4})\s+([A-Z]{3})\s+(\d{1,2})\s+=JD\s+([0-9.]+)\s+TAI-UTC=\s*([-0-9.]+)\s*S\s*\+\s*\(MJD\s*-\s*([0-9.]+)\s*\)\s*X\s*([-0-9.]+)\s*S`)

// ParseLeapSeconds reads TAI-UTC rows in the USNO tai-utc.dat format from r.
// Blank lines and lines starting with '#' are ignored. Other lines that do not parse
// are skipped with a warning log.
func ParseLeapSeconds(r io.Reader, logger *slog.Logger) ([]LeapSecondEntry, error) {
	scanner := bufio.NewScanner(r)
	var entries []LeapSecondEntry
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		m := taiUTCLine.FindStringSubmatch(line)
		if m == nil {
			logger.Warn("skipping malformed tai-utc line", "line", lineNo)
			continue
		}

		jd, err1 := strconv.ParseFloat(m[4], 64)
		offset, err2 := strconv.ParseFloat(m[5], 64)
		driftEpoch, err3 := strconv.ParseFloat(m[6], 64)
		rate, err4 := strconv.ParseFloat(m[7], 64)
		if err := firstErr(err1, err2, err3, err4); err != nil {
			logger.Warn("skipping tai-utc line with invalid number", "line", lineNo, "error", err)
			continue
		}

		entries = append(entries, LeapSecondEntry{
			EffectiveMJD:  jd - MJDZero,
			Offset:        offset,
			DriftEpochMJD: driftEpoch,
			DriftRate:     rate,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading tai-utc data: %w", err)
	}
	return entries, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
