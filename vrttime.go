package vrt

// Duration is a signed elapsed time between two packets' timestamps: whole
// seconds plus a non-negative picosecond remainder. -3.5s is represented as
// Seconds: -4, Picoseconds: 5e11, not Seconds: -3, Picoseconds: -5e11.
type Duration struct {
	Seconds     int32
	Picoseconds uint64
}

// CalendarTime is a packet timestamp rendered into human-readable fields.
// Unlike the struct tm-derived layout it is adapted from, Year is an
// absolute calendar year rather than an offset from 1900.
type CalendarTime struct {
	Year        int
	Month       int // 1-12
	Day         int // day of month, 1-31
	YearDay     int // day of year, 0-365
	Weekday     int // 0 = Sunday
	Hour        int
	Minute      int
	Second      int
	Picoseconds uint64 // 0..999999999999
}

const (
	picosecondsPerSecondU64 = 1_000_000_000_000
	utcGPSOffsetSeconds     = 315964800
)

// Difference computes the signed duration from b to a (a's timestamp minus
// b's), using sampleRate [Hz] to interpret a TSF of SampleCount or
// FreeRunningCount. a and b must share the same TSI and TSF; if both are
// None, the difference is zero regardless of sampleRate.
func Difference(a, b Packet, sampleRate float64) (Duration, error) {
	ha, hb := a.Header, b.Header
	if ha.TSI != hb.TSI || ha.TSF != hb.TSF {
		return Duration{}, ErrMismatchTimeTypes
	}

	tsiSet := ha.TSI != TSINone
	i1, i2 := a.Fields.IntegerSecondsTimestamp, b.Fields.IntegerSecondsTimestamp
	f1, f2 := a.Fields.FractionalSecondsTimestamp, b.Fields.FractionalSecondsTimestamp

	if !tsiSet && ha.TSF == TSFNone {
		return Duration{}, nil
	}
	if tsiSet && ha.TSF == TSFNone {
		return Duration{Seconds: int32(i1 - i2)}, nil
	}

	var (
		d   Duration
		err *Error
	)
	switch ha.TSF {
	case TSFSampleCount:
		d, err = sampleCountDifference(tsiSet, i1, i2, f1, f2, sampleRate)
	case TSFRealTime:
		d, err = realTimeDifference(tsiSet, i1, i2, f1, f2)
	case TSFFreeRunningCount:
		d, err = freeRunningCountDifference(tsiSet, i1, i2, f1, f2, sampleRate)
	default:
		// TSI set, TSF not None, and not one of the three cases above is
		// unreachable: TSF only ranges over None/SampleCount/RealTime/
		// FreeRunningCount, and None was handled above.
	}
	if err != nil {
		return Duration{}, err
	}
	return d, nil
}

func sampleCountDifference(tsiSet bool, i1, i2 uint32, f1, f2 uint64, sampleRate float64) (Duration, *Error) {
	if sampleRate <= 0 {
		return Duration{}, ErrMissingSampleRate
	}
	if f1 >= uint64(sampleRate) || f2 >= uint64(sampleRate) {
		return Duration{}, ErrBoundsSampleCount
	}

	var d Duration
	if tsiSet {
		d.Seconds = int32(i1 - i2)
	}
	diff := f1 - f2
	if f1 < f2 {
		d.Seconds--
		diff += uint64(sampleRate)
	}
	d.Picoseconds = uint64(float64(diff) / sampleRate * picosecondsPerSecondU64)
	return d, nil
}

func realTimeDifference(tsiSet bool, i1, i2 uint32, f1, f2 uint64) (Duration, *Error) {
	if f1 >= picosecondsPerSecondU64 || f2 >= picosecondsPerSecondU64 {
		return Duration{}, ErrBoundsRealTime
	}

	var d Duration
	if tsiSet {
		d.Seconds = int32(i1 - i2)
	}
	if f1 < f2 {
		d.Seconds--
		d.Picoseconds = f1 + picosecondsPerSecondU64 - f2
	} else {
		d.Picoseconds = f1 - f2
	}
	return d, nil
}

// freeRunningCountDifference computes the count difference, the whole
// seconds and the remainder in uint64/int64 arithmetic, since the
// fractional counts it compares are nominally unbounded and a float64
// intermediate would lose precision for large counts. Only the final
// remainder-to-picoseconds step uses float64.
func freeRunningCountDifference(tsiSet bool, i1, i2 uint32, f1, f2 uint64, sampleRate float64) (Duration, *Error) {
	if sampleRate <= 0 {
		return Duration{}, ErrMissingSampleRate
	}
	sampleRateI := uint64(sampleRate)

	negative := f1 < f2
	var dAbs uint64
	if negative {
		dAbs = f2 - f1
	} else {
		dAbs = f1 - f2
	}
	seconds := int64(dAbs / sampleRateI)

	rem := dAbs % sampleRateI
	diffSecondsTSI := int64(int32(i1) - int32(i2))
	if negative {
		seconds = -seconds
		if rem != 0 {
			seconds--
			diffSecondsTSI--
			rem = sampleRateI - rem
		}
	}

	if tsiSet && seconds != diffSecondsTSI {
		return Duration{}, ErrIntegerSecondsMismatch
	}

	ps := uint64(float64(rem) / sampleRate * picosecondsPerSecondU64)

	return Duration{Seconds: int32(seconds), Picoseconds: ps}, nil
}

// Calendar renders p's timestamp as a human-readable date/time. TSI must be
// Utc or Gps; sampleRate [Hz] is required when TSF is SampleCount and
// ignored otherwise.
func Calendar(p Packet, sampleRate float64) (CalendarTime, error) {
	var ct CalendarTime

	var tsInt uint32
	switch p.Header.TSI {
	case TSIUtc:
		tsInt = p.Fields.IntegerSecondsTimestamp
	case TSIGps:
		tsInt = p.Fields.IntegerSecondsTimestamp + utcGPSOffsetSeconds
	default:
		return ct, ErrInvalidTSI
	}
	gmtime(int64(tsInt), &ct)

	switch p.Header.TSF {
	case TSFNone:
		ct.Picoseconds = 0
	case TSFSampleCount:
		if sampleRate <= 0 {
			return ct, ErrMissingSampleRate
		}
		if p.Fields.FractionalSecondsTimestamp >= uint64(sampleRate) {
			return ct, ErrBoundsSampleCount
		}
		ct.Picoseconds = uint64(float64(p.Fields.FractionalSecondsTimestamp) / sampleRate * picosecondsPerSecondU64)
	case TSFRealTime:
		if p.Fields.FractionalSecondsTimestamp >= picosecondsPerSecondU64 {
			return ct, ErrBoundsRealTime
		}
		ct.Picoseconds = p.Fields.FractionalSecondsTimestamp
	default:
		return ct, ErrInvalidTSF
	}

	return ct, nil
}

// gmtime fills in every field of ct except Picoseconds from secs, seconds
// since the 1970-01-01 UTC epoch.
func gmtime(secs int64, ct *CalendarTime) {
	days := floorDiv(secs, 86400)
	rem := secs - days*86400

	ct.Hour = int(rem / 3600)
	rem %= 3600
	ct.Minute = int(rem / 60)
	ct.Second = int(rem % 60)
	ct.Weekday = int(floorMod(days+4, 7)) // 1970-01-01 was a Thursday

	y, m, d := civilFromDays(days)
	ct.Year = int(y)
	ct.Month = int(m)
	ct.Day = int(d)
	ct.YearDay = int(days - daysFromCivil(y, 1, 1))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}

// civilFromDays and daysFromCivil convert between days-since-1970-01-01 and
// proleptic Gregorian y/m/d, after Howard Hinnant's chrono-compatible civil
// calendar algorithm. Adopted in place of the original codec's cumulative
// days-in-month table seeded with a "days since 2008" shortcut: that
// shortcut only pays off for timestamps near the present, and its seed
// years out if the fast path and the general path ever disagree. This
// version computes every date the same way, so there is nothing to
// disagree.
func civilFromDays(z int64) (y int64, m uint, d uint) {
	z += 719468
	var era int64
	if z >= 0 {
		era = z / 146097
	} else {
		era = (z - 146096) / 146097
	}
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y = yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d = uint(doy - (153*mp+2)/5 + 1)
	if mp < 10 {
		m = uint(mp + 3)
	} else {
		m = uint(mp - 9)
	}
	if m <= 2 {
		y++
	}
	return y, m, d
}

func daysFromCivil(y int64, m, d uint) int64 {
	yy := y
	if m <= 2 {
		yy--
	}
	var era int64
	if yy >= 0 {
		era = yy / 400
	} else {
		era = (yy - 399) / 400
	}
	yoe := yy - era*400
	var mp int64
	if m > 2 {
		mp = int64(m) - 3
	} else {
		mp = int64(m) + 9
	}
	doy := (153*mp+2)/5 + int64(d) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}
