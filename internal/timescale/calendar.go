package timescale

import (
	"fmt"
	"math"
	"time"
)

// earliestMJD is 1960-01-01, the start of the UTC leap-second history.
const earliestMJD = 36934.0

// Calendar is a Gregorian calendar date and time of day in some time scale.
// Second may reach 60.x only in the last minute of a UTC day that ends with a
// leap second.
type Calendar struct {
	Year, Month, Day int
	Hour, Minute     int
	Second           float64
}

// CalendarFromTime takes the wall-clock fields of t in its own location.
func CalendarFromTime(t time.Time) Calendar {
	return Calendar{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: float64(t.Second()) + float64(t.Nanosecond())/1e9,
	}
}

var monthLength = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// CalendarToMJD converts a Gregorian date to a two-part Julian Date at 0h.
// djm0 is always MJDZero and djm is the Modified Julian Date.
func CalendarToMJD(year, month, day int) (djm0, djm float64, err error) {
	if year < -4799 {
		return 0, 0, fmt.Errorf("%w: year %d before -4799", ErrInvalidDate, year)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	ml := monthLength[month-1]
	if month == 2 && isLeapYear(year) {
		ml++
	}
	if day < 1 || day > ml {
		return 0, 0, fmt.Errorf("%w: day %d of %04d-%02d", ErrInvalidDate, day, year, month)
	}

	// Integer division truncates towards zero, as the algorithm requires.
	my := (month - 14) / 12
	iypmy := year + my
	mjd := (1461*(iypmy+4800))/4 +
		(367*(month-2-12*my))/12 -
		(3*((iypmy+4900)/100))/4 +
		day - 2432076

	return MJDZero, float64(mjd), nil
}

// JDToCalendar converts a two-part Julian Date to a Gregorian date and fraction
// of day in [0, 1). The parts are summed with compensation so the fraction is exact
// to the last bit for any split.
func JDToCalendar(dj1, dj2 float64) (year, month, day int, fd float64, err error) {
	const (
		djMin = -68569.5
		djMax = 1e9
		eps   = 2.220446049250313e-16
	)
	dj := dj1 + dj2
	if dj < djMin || dj > djMax {
		return 0, 0, 0, 0, fmt.Errorf("%w: JD %.6f outside supported range", ErrInvalidDate, dj)
	}

	d := math.Round(dj1)
	f1 := dj1 - d
	jd := int64(d)
	d = math.Round(dj2)
	f2 := dj2 - d
	jd += int64(d)

	// Compensated sum of 0.5, f1 and f2.
	s, cs := 0.5, 0.0
	for _, x := range [2]float64{f1, f2} {
		t := s + x
		if math.Abs(s) >= math.Abs(x) {
			cs += (s - t) + x
		} else {
			cs += (x - t) + s
		}
		s = t
		if s >= 1.0 {
			jd++
			s -= 1.0
		}
	}
	f := s + cs
	cs = f - s

	if f < 0 {
		f = s + 1.0
		cs += (1.0 - f) + s
		s = f
		f = s + cs
		cs = f - s
		jd--
	}

	if f-1.0 >= -eps/4.0 {
		t := s - 1.0
		cs += (s - t) - 1.0
		s = t
		f = s + cs
		if -eps/2.0 < f {
			jd++
			f = math.Max(f, 0.0)
		}
	}

	l := jd + 68569
	n := (4 * l) / 146097
	l -= (146097*n + 3) / 4
	i := (4000 * (l + 1)) / 1461001
	l -= (1461*i)/4 - 31
	k := (80 * l) / 2447
	day = int(l - (2447*k)/80)
	l = k / 11
	month = int(k + 2 - 12*l)
	year = int(100*(n-49) + i + l)

	return year, month, day, f, nil
}

// FromCalendar builds a two-part date in the given scale: Whole is the JD at 0h of
// the calendar day and Fraction the elapsed fraction of that day.
//
// For UTC the length of the day comes from the leap-second table: a day ending with a
// leap second has 86401 s and accepts 23:59:60.x. leap is only consulted for UTC and
// may be nil otherwise.
func FromCalendar(scale Scale, c Calendar, leap LeapSecondSource) (TwoPart, error) {
	if _, ok := scaleNames[scale]; !ok {
		return TwoPart{}, fmt.Errorf("%w: %v", ErrUnknownScale, scale)
	}
	djm0, djm, err := CalendarToMJD(c.Year, c.Month, c.Day)
	if err != nil {
		return TwoPart{}, err
	}
	if djm < earliestMJD {
		return TwoPart{}, fmt.Errorf("%w: %04d-%02d-%02d predates 1960", ErrInvalidDate, c.Year, c.Month, c.Day)
	}

	day := SecondsPerDay
	secLimit := 60.0
	if scale == UTC {
		if leap == nil {
			return TwoPart{}, fmt.Errorf("%w: UTC date without leap-second table", ErrUnsupportedConversion)
		}
		table := leap.LeapSeconds()
		if djm < table.StartMJD() {
			return TwoPart{}, fmt.Errorf("%w: %04d-%02d-%02d predates leap-second table", ErrInvalidDate, c.Year, c.Month, c.Day)
		}
		dleap := utcLeapAtEndOfDay(table, djm)
		day += dleap
		if c.Hour == 23 && c.Minute == 59 {
			secLimit += dleap
		}
	}

	if c.Hour < 0 || c.Hour > 23 {
		return TwoPart{}, fmt.Errorf("%w: hour %d", ErrInvalidDate, c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return TwoPart{}, fmt.Errorf("%w: minute %d", ErrInvalidDate, c.Minute)
	}
	if c.Second < 0 || c.Second >= secLimit {
		return TwoPart{}, fmt.Errorf("%w: second %g at %02d:%02d", ErrInvalidDate, c.Second, c.Hour, c.Minute)
	}

	fraction := (60.0*float64(60*c.Hour+c.Minute) + c.Second) / day
	return TwoPart{Whole: djm0 + djm, Fraction: fraction}, nil
}

// utcLeapAtEndOfDay returns the leap second inserted at the end of UTC day djm, net
// of any rate term. Past the end of the table the last offset applies, so the
// lookups cannot miss in a way that changes the result.
func utcLeapAtEndOfDay(table *LeapSecondTable, djm float64) float64 {
	dat0, _ := table.TAIMinusUTC(djm)
	dat12, _ := table.TAIMinusUTC(djm + 0.5)
	dat24, _ := table.TAIMinusUTC(djm + 1.0)
	return dat24 - (2.0*dat12 - dat0)
}

// ToCalendar converts a two-part date back to calendar fields on 86400 s days. On a
// UTC leap-second day the clock reading is compressed and never shows 23:59:60; use
// ToCalendarUTC for UTC.
func ToCalendar(t TwoPart) (Calendar, error) {
	y, m, d, fd, err := JDToCalendar(t.Whole, t.Fraction)
	if err != nil {
		return Calendar{}, err
	}
	return splitDay(y, m, d, fd*SecondsPerDay), nil
}

// ToCalendarUTC is ToCalendar for UTC dates: a day ending in a leap second is
// 86401 s long and its last second reads 23:59:60.x, inverting FromCalendar.
func ToCalendarUTC(t TwoPart, leap LeapSecondSource) (Calendar, error) {
	if leap == nil {
		return Calendar{}, fmt.Errorf("%w: UTC date without leap-second table", ErrUnsupportedConversion)
	}
	y, m, d, fd, err := JDToCalendar(t.Whole, t.Fraction)
	if err != nil {
		return Calendar{}, err
	}
	_, djm, err := CalendarToMJD(y, m, d)
	if err != nil {
		return Calendar{}, err
	}
	dleap := utcLeapAtEndOfDay(leap.LeapSeconds(), djm)
	secs := fd * (SecondsPerDay + dleap)
	if dleap > 0 && secs >= SecondsPerDay-60 {
		return Calendar{Year: y, Month: m, Day: d, Hour: 23, Minute: 59, Second: secs - (SecondsPerDay - 60)}, nil
	}
	return splitDay(y, m, d, secs), nil
}

func splitDay(y, m, d int, secs float64) Calendar {
	h := int(secs / 3600)
	secs -= float64(h) * 3600
	mi := int(secs / 60)
	secs -= float64(mi) * 60
	return Calendar{Year: y, Month: m, Day: d, Hour: h, Minute: mi, Second: secs}
}
