package eop

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// finals2000A column ranges, 1-based and inclusive.
const (
	colMJDFrom, colMJDTo   = 8, 15
	colPMFlag              = 17
	colXPFrom, colXPTo     = 19, 27
	colYPFrom, colYPTo     = 38, 46
	colUTFlag              = 58
	colDUT1From, colDUT1To = 59, 68
	colLODFrom, colLODTo   = 80, 86
	colDXFrom, colDXTo     = 98, 106
	colDYFrom, colDYTo     = 117, 125
)

// ParseFinals reads IERS finals2000A rows from r. LOD is converted from ms to s and
// dX, dY from mas to arcsec. Rows without polar motion or UT1-UTC, which end the
// prediction span of the file, are skipped. Blank LOD, dX or dY read as zero.
func ParseFinals(r io.Reader, logger *slog.Logger) ([]Parameters, error) {
	scanner := bufio.NewScanner(r)
	var rows []Parameters
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		mjdStr := column(line, colMJDFrom, colMJDTo)
		xpStr := column(line, colXPFrom, colXPTo)
		ypStr := column(line, colYPFrom, colYPTo)
		dut1Str := column(line, colDUT1From, colDUT1To)
		if mjdStr == "" {
			logger.Warn("skipping finals line without MJD", "line", lineNo)
			continue
		}
		if xpStr == "" || ypStr == "" || dut1Str == "" {
			continue
		}

		mjd, err1 := strconv.ParseFloat(mjdStr, 64)
		xp, err2 := strconv.ParseFloat(xpStr, 64)
		yp, err3 := strconv.ParseFloat(ypStr, 64)
		dut1, err4 := strconv.ParseFloat(dut1Str, 64)
		lod, err5 := optionalFloat(column(line, colLODFrom, colLODTo))
		dx, err6 := optionalFloat(column(line, colDXFrom, colDXTo))
		dy, err7 := optionalFloat(column(line, colDYFrom, colDYTo))
		if err := firstErr(err1, err2, err3, err4, err5, err6, err7); err != nil {
			logger.Warn("skipping finals line with invalid number", "line", lineNo, "error", err)
			continue
		}

		rows = append(rows, Parameters{
			MJD:       mjd,
			DUT1:      dut1,
			LOD:       lod * 1e-3,
			XP:        xp,
			YP:        yp,
			DX:        dx * 1e-3,
			DY:        dy * 1e-3,
			Predicted: flagAt(line, colPMFlag) == 'P' || flagAt(line, colUTFlag) == 'P',
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading finals data: %w", err)
	}
	return rows, nil
}

// column returns the trimmed text of 1-based columns [from, to], clipped to the line.
func column(line string, from, to int) string {
	if len(line) < from {
		return ""
	}
	if len(line) < to {
		to = len(line)
	}
	return strings.TrimSpace(line[from-1 : to])
}

func flagAt(line string, col int) byte {
	if len(line) < col {
		return ' '
	}
	return line[col-1]
}

func optionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
