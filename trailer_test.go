package vrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailerRoundTrip(t *testing.T) {
	tr := Trailer{
		Has: TrailerIndicators{
			SampleLoss: true,
		},
		SampleLoss: true,
	}
	buf := make([]uint32, 1)
	n, err := WriteTrailer(buf, tr, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint32(0x01001000), buf[0])

	got, n, err := ReadTrailer(buf, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, tr, got)
}

func TestTrailerAllFlags(t *testing.T) {
	tr := Trailer{
		Has: TrailerIndicators{
			CalibratedTime: true, ValidData: true, ReferenceLock: true, AgcOrMgc: true,
			DetectedSignal: true, SpectralInversion: true, OverRange: true, SampleLoss: true,
			UserDefined11: true, UserDefined10: true, UserDefined9: true, UserDefined8: true,
			AssociatedContextPacketCount: true,
		},
		CalibratedTime: true, ValidData: false, ReferenceLock: true, AgcOrMgc: Agc,
		DetectedSignal: false, SpectralInversion: true, OverRange: false, SampleLoss: true,
		UserDefined11: true, UserDefined10: false, UserDefined9: true, UserDefined8: false,
		AssociatedContextPacketCount: 0x55,
	}
	buf := make([]uint32, 1)
	_, err := WriteTrailer(buf, tr, true)
	require.NoError(t, err)

	got, _, err := ReadTrailer(buf, true)
	require.NoError(t, err)
	assert.Equal(t, tr, got)
}

func TestTrailerValidation(t *testing.T) {
	tr := Trailer{
		Has:                          TrailerIndicators{AssociatedContextPacketCount: true},
		AssociatedContextPacketCount: 0x80,
	}
	buf := make([]uint32, 1)
	_, err := WriteTrailer(buf, tr, true)
	assert.ErrorIs(t, err, ErrBoundsAssociatedContextCount)

	n, err := WriteTrailer(buf, tr, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
