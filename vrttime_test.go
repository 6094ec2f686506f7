package vrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packetWithTime(tsi TSI, tsf TSF, intSec uint32, frac uint64) Packet {
	return Packet{
		Header: Header{Type: IFDataNoStreamID, TSI: tsi, TSF: tsf},
		Fields: Fields{IntegerSecondsTimestamp: intSec, FractionalSecondsTimestamp: frac},
	}
}

func TestDifferenceNone(t *testing.T) {
	a := packetWithTime(TSINone, TSFNone, 0, 0)
	b := packetWithTime(TSINone, TSFNone, 0, 0)
	d, err := Difference(a, b, 0)
	require.NoError(t, err)
	assert.Equal(t, Duration{}, d)
}

func TestDifferenceTSIOnly(t *testing.T) {
	a := packetWithTime(TSIUtc, TSFNone, 100, 0)
	b := packetWithTime(TSIUtc, TSFNone, 40, 0)
	d, err := Difference(a, b, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(60), d.Seconds)
}

func TestDifferenceMismatchedTimeTypes(t *testing.T) {
	a := packetWithTime(TSIUtc, TSFNone, 0, 0)
	b := packetWithTime(TSIGps, TSFNone, 0, 0)
	_, err := Difference(a, b, 0)
	assert.ErrorIs(t, err, ErrMismatchTimeTypes)
}

func TestDifferenceRealTimeWrap(t *testing.T) {
	a := packetWithTime(TSIUtc, TSFRealTime, 10, 100)
	b := packetWithTime(TSIUtc, TSFRealTime, 9, 999_999_999_900)
	d, err := Difference(a, b, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(0), d.Seconds)
	assert.Equal(t, uint64(200), d.Picoseconds)
}

func TestDifferenceSampleCount(t *testing.T) {
	a := packetWithTime(TSIUtc, TSFSampleCount, 10, 10)
	b := packetWithTime(TSIUtc, TSFSampleCount, 9, 90)
	d, err := Difference(a, b, 100)
	require.NoError(t, err)
	assert.Equal(t, int32(0), d.Seconds)
	assert.InDelta(t, 200_000_000_000.0, float64(d.Picoseconds), 1)
}

func TestDifferenceFreeRunningCountNear2To63(t *testing.T) {
	const sampleRate = 1e9
	a := packetWithTime(TSINone, TSFFreeRunningCount, 0, 1<<63)
	b := packetWithTime(TSINone, TSFFreeRunningCount, 0, (1<<63)-1)
	d, err := Difference(a, b, sampleRate)
	require.NoError(t, err)
	assert.Equal(t, int32(0), d.Seconds)
	assert.Greater(t, d.Picoseconds, uint64(0))
}

func TestDifferenceFreeRunningCountIntegerSecondsMismatch(t *testing.T) {
	a := packetWithTime(TSIUtc, TSFFreeRunningCount, 100, 5000)
	b := packetWithTime(TSIUtc, TSFFreeRunningCount, 0, 0)
	_, err := Difference(a, b, 1000)
	assert.ErrorIs(t, err, ErrIntegerSecondsMismatch)
}

func TestDifferenceMissingSampleRate(t *testing.T) {
	a := packetWithTime(TSIUtc, TSFSampleCount, 0, 0)
	b := packetWithTime(TSIUtc, TSFSampleCount, 0, 0)
	_, err := Difference(a, b, 0)
	assert.ErrorIs(t, err, ErrMissingSampleRate)
}

func TestCalendarUtcEpoch(t *testing.T) {
	p := packetWithTime(TSIUtc, TSFNone, 0, 0)
	ct, err := Calendar(p, 0)
	require.NoError(t, err)
	assert.Equal(t, 1970, ct.Year)
	assert.Equal(t, 1, ct.Month)
	assert.Equal(t, 1, ct.Day)
	assert.Equal(t, 4, ct.Weekday) // Thursday
	assert.Equal(t, 0, ct.Hour)
}

func TestCalendarKnownDate(t *testing.T) {
	// 2024-03-01T00:00:00Z, a leap year's day-after-Feb-29.
	p := packetWithTime(TSIUtc, TSFNone, 1709251200, 0)
	ct, err := Calendar(p, 0)
	require.NoError(t, err)
	assert.Equal(t, 2024, ct.Year)
	assert.Equal(t, 3, ct.Month)
	assert.Equal(t, 1, ct.Day)
}

func TestCalendarGPSOffset(t *testing.T) {
	p := packetWithTime(TSIGps, TSFNone, 0, 0)
	ct, err := Calendar(p, 0)
	require.NoError(t, err)
	assert.Equal(t, 1980, ct.Year)
	assert.Equal(t, 1, ct.Month)
	assert.Equal(t, 6, ct.Day)
}

func TestCalendarInvalidTSI(t *testing.T) {
	p := packetWithTime(TSINone, TSFNone, 0, 0)
	_, err := Calendar(p, 0)
	assert.ErrorIs(t, err, ErrInvalidTSI)
}

func TestCalendarInvalidTSF(t *testing.T) {
	p := packetWithTime(TSIUtc, TSFFreeRunningCount, 0, 0)
	_, err := Calendar(p, 0)
	assert.ErrorIs(t, err, ErrInvalidTSF)
}

func TestCivilFromDaysRoundTrip(t *testing.T) {
	for _, days := range []int64{0, 1, -1, 365, -365, 19797, -719468, 1000000} {
		y, m, d := civilFromDays(days)
		assert.Equal(t, days, daysFromCivil(y, m, d), "days=%d", days)
	}
}
