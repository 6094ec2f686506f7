package vrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIFContextRoundTripAllScalarSubsections(t *testing.T) {
	ctx := IFContext{
		Has: IFContextIndicators{
			ContextFieldChangeIndicator: true,
			ReferencePointIdentifier:    true,
			Bandwidth:                   true,
			IFReferenceFrequency:        true,
			RFReferenceFrequency:        true,
			RFReferenceFrequencyOffset:  true,
			IFBandOffset:                true,
			ReferenceLevel:              true,
			Gain:                        true,
			OverRangeCount:              true,
			SampleRate:                  true,
			TimestampAdjustment:         true,
			TimestampCalibrationTime:    true,
			Temperature:                 true,
			DeviceIdentifier:            true,
			StateAndEventIndicators:     true,
			EphemerisReferenceIdentifier: true,
		},
		ReferencePointIdentifier:   0x11223344,
		Bandwidth:                  1_000_000,
		IFReferenceFrequency:       -2_500_000,
		RFReferenceFrequency:       2_400_000_000,
		RFReferenceFrequencyOffset: -1234.5,
		IFBandOffset:               500,
		ReferenceLevel:             -10.5,
		Gain:                       Gain{Stage1: 10, Stage2: 20},
		OverRangeCount:             7,
		SampleRate:                 4097.0,
		TimestampAdjustment:        -123456789,
		TimestampCalibrationTime:   1700000000,
		Temperature:                36.5,
		DeviceIdentifier:           DeviceIdentifier{OUI: 0x00112233, DeviceCode: 0x4455},
		StateAndEventIndicators: StateAndEventIndicators{
			Has:            StateAndEventHas{CalibratedTime: true, SampleLoss: true},
			CalibratedTime: true,
			SampleLoss:     true,
			UserDefined:    0x0AB,
		},
		EphemerisReferenceIdentifier: 0xCAFEBABE,
	}

	buf := make([]uint32, IFContextWords(ctx))
	n, err := WriteIFContext(buf, ctx, true)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	got, n, err := ReadIFContext(buf, true)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	assert.Equal(t, ctx.Has, got.Has)
	assert.Equal(t, ctx.ReferencePointIdentifier, got.ReferencePointIdentifier)
	assert.InDelta(t, ctx.Bandwidth, got.Bandwidth, 1e-3)
	assert.InDelta(t, ctx.IFReferenceFrequency, got.IFReferenceFrequency, 1e-3)
	assert.InDelta(t, ctx.RFReferenceFrequency, got.RFReferenceFrequency, 1e-3)
	assert.InDelta(t, ctx.RFReferenceFrequencyOffset, got.RFReferenceFrequencyOffset, 1e-3)
	assert.InDelta(t, ctx.IFBandOffset, got.IFBandOffset, 1e-3)
	assert.InDelta(t, ctx.ReferenceLevel, got.ReferenceLevel, 1e-2)
	assert.InDelta(t, ctx.Gain.Stage1, got.Gain.Stage1, 1e-2)
	assert.InDelta(t, ctx.Gain.Stage2, got.Gain.Stage2, 1e-2)
	assert.Equal(t, ctx.OverRangeCount, got.OverRangeCount)
	assert.InDelta(t, ctx.SampleRate, got.SampleRate, 1e-6)
	assert.Equal(t, ctx.TimestampAdjustment, got.TimestampAdjustment)
	assert.Equal(t, ctx.TimestampCalibrationTime, got.TimestampCalibrationTime)
	assert.InDelta(t, ctx.Temperature, got.Temperature, 1e-2)
	assert.Equal(t, ctx.DeviceIdentifier, got.DeviceIdentifier)
	assert.Equal(t, ctx.StateAndEventIndicators, got.StateAndEventIndicators)
	assert.Equal(t, ctx.EphemerisReferenceIdentifier, got.EphemerisReferenceIdentifier)
}

func TestIFContextDataPacketPayloadFormatRoundTrip(t *testing.T) {
	ctx := IFContext{
		Has: IFContextIndicators{DataPacketPayloadFormat: true},
		DataPacketPayloadFormat: DataPacketPayloadFormat{
			PackingMethod:        LinkEfficient,
			RealOrComplex:        ComplexCartesian,
			DataItemFormat:       DataItemSignedFixedPoint,
			RepeatIndicator:      true,
			EventTagSize:         5,
			ChannelTagSize:       9,
			ItemPackingFieldSize: 16,
			DataItemSize:         12,
			RepeatCount:          3,
			VectorSize:           1,
		},
	}
	buf := make([]uint32, IFContextWords(ctx))
	_, err := WriteIFContext(buf, ctx, true)
	require.NoError(t, err)

	// word 0: packing=1(31) | real/complex=01(30..29) | format=00000(28..24)
	// | repeat=1(23) | event_tag=101(22..20) | channel_tag=1001(19..16)
	// | item_packing_field_size=010000(15..10, raw) | reserved(9..6)=0
	// | data_item_size=001100(5..0, raw)
	assert.Equal(t, uint32(0xA0D9400C), buf[1])
	// word 1: repeat_count=3(31..16) | vector_size=1(15..0)
	assert.Equal(t, uint32(0x00030001), buf[2])

	got, _, err := ReadIFContext(buf, true)
	require.NoError(t, err)
	assert.Equal(t, ctx.DataPacketPayloadFormat, got.DataPacketPayloadFormat)
}

func TestIFContextGeolocationBounds(t *testing.T) {
	ctx := IFContext{
		Has: IFContextIndicators{FormattedGPSGeolocation: true},
		FormattedGPSGeolocation: FormattedGeolocation{
			GeolocationTime: GeolocationTime{
				IntegerSecondsTimestamp:    0xFFFFFFFF,
				FractionalSecondsTimestamp: 0xFFFFFFFFFFFFFFFF,
			},
			Has:      GeolocationHas{Latitude: true},
			Latitude: 91,
		},
	}
	buf := make([]uint32, IFContextWords(ctx))
	_, err := WriteIFContext(buf, ctx, true)
	assert.ErrorIs(t, err, ErrBoundsLatitude)

	n, err := WriteIFContext(buf, ctx, false)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
}

func TestIFContextGeolocationHexLayoutAndSentinel(t *testing.T) {
	ctx := IFContext{
		Has: IFContextIndicators{FormattedGPSGeolocation: true},
		FormattedGPSGeolocation: FormattedGeolocation{
			GeolocationTime: GeolocationTime{
				OUI:                        0xABCDEF,
				TSI:                        TSIGps,
				TSF:                        TSFSampleCount,
				IntegerSecondsTimestamp:    0x11223344,
				FractionalSecondsTimestamp: 0x0102030405060708,
			},
			Has:      GeolocationHas{Latitude: true},
			Latitude: 45,
		},
	}
	buf := make([]uint32, IFContextWords(ctx))
	n, err := WriteIFContext(buf, ctx, true)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Len(t, buf, 12) // 1 indicator word + 11-word geolocation block

	// word 0 of the prelude: reserved(31..28)=0 | tsi=10(27..26) | tsf=01(25..24) | oui=0xABCDEF(23..0)
	assert.Equal(t, uint32(0x09ABCDEF), buf[1])
	assert.Equal(t, uint32(0x11223344), buf[2])
	assert.Equal(t, uint32(0x01020304), buf[3])
	assert.Equal(t, uint32(0x05060708), buf[4])
	assert.Equal(t, uint32(0x0B400000), buf[5]) // latitude 45deg at radix 22 = 180<<20
	for _, word := range buf[6:12] {
		assert.Equal(t, uint32(0x7FFFFFFF), word) // unspecified sentinel
	}

	got, _, err := ReadIFContext(buf, true)
	require.NoError(t, err)
	g := got.FormattedGPSGeolocation
	assert.True(t, g.Has.Latitude)
	assert.InDelta(t, 45.0, g.Latitude, 1e-6)
	assert.False(t, g.Has.Longitude)
	assert.Equal(t, 0.0, g.Longitude)
	assert.False(t, g.Has.Altitude)
	assert.False(t, g.Has.SpeedOverGround)
	assert.False(t, g.Has.HeadingAngle)
	assert.False(t, g.Has.TrackAngle)
	assert.False(t, g.Has.MagneticVariation)
}

func TestIFContextEphemerisRoundTrip(t *testing.T) {
	ctx := IFContext{
		Has: IFContextIndicators{ECEFEphemeris: true, RelativeEphemeris: true},
		ECEFEphemeris: Ephemeris{
			GeolocationTime: GeolocationTime{OUI: 0x1, TSI: TSIUtc, TSF: TSFRealTime, IntegerSecondsTimestamp: 42},
			Has:             EphemerisHas{PositionX: true, PositionY: true, PositionZ: true, AttitudeAlpha: true, AttitudeBeta: true, AttitudePhi: true, VelocityDX: true, VelocityDY: true, VelocityDZ: true},
			PositionX:       6378137.0,
			PositionY:       -100.5,
			PositionZ:       200.25,
			AttitudeAlpha:   1.5,
			AttitudeBeta:    -1.5,
			AttitudePhi:     0.25,
			VelocityDX:      7.5,
			VelocityDY:      -7.5,
			VelocityDZ:      0,
		},
		RelativeEphemeris: Ephemeris{
			GeolocationTime: GeolocationTime{
				IntegerSecondsTimestamp:    0xFFFFFFFF,
				FractionalSecondsTimestamp: 0xFFFFFFFFFFFFFFFF,
			},
			Has:       EphemerisHas{PositionX: true, PositionY: true, PositionZ: true},
			PositionX: -1, PositionY: -2, PositionZ: -3,
		},
	}
	buf := make([]uint32, IFContextWords(ctx))
	n, err := WriteIFContext(buf, ctx, true)
	require.NoError(t, err)

	got, n2, err := ReadIFContext(buf, true)
	require.NoError(t, err)
	assert.Equal(t, n, n2)
	assert.InDelta(t, ctx.ECEFEphemeris.PositionX, got.ECEFEphemeris.PositionX, 1e-2)
	assert.Equal(t, ctx.ECEFEphemeris.IntegerSecondsTimestamp, got.ECEFEphemeris.IntegerSecondsTimestamp)
	assert.InDelta(t, ctx.RelativeEphemeris.PositionZ, got.RelativeEphemeris.PositionZ, 1e-2)
	assert.True(t, got.RelativeEphemeris.Has.PositionX)
	assert.False(t, got.RelativeEphemeris.Has.AttitudeAlpha)
}

func TestIFContextEphemerisHexLayoutAndSentinel(t *testing.T) {
	ctx := IFContext{
		Has: IFContextIndicators{ECEFEphemeris: true},
		ECEFEphemeris: Ephemeris{
			GeolocationTime: GeolocationTime{
				OUI:                        0xABCDEF,
				TSI:                        TSIGps,
				TSF:                        TSFSampleCount,
				IntegerSecondsTimestamp:    0x11223344,
				FractionalSecondsTimestamp: 0x0102030405060708,
			},
			Has:       EphemerisHas{PositionX: true},
			PositionX: 100,
		},
	}
	buf := make([]uint32, IFContextWords(ctx))
	n, err := WriteIFContext(buf, ctx, true)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Len(t, buf, 14) // 1 indicator word + 13-word ephemeris block

	assert.Equal(t, uint32(0x09ABCDEF), buf[1])
	assert.Equal(t, uint32(0x11223344), buf[2])
	assert.Equal(t, uint32(0x01020304), buf[3])
	assert.Equal(t, uint32(0x05060708), buf[4])
	assert.Equal(t, uint32(0x00000C80), buf[5]) // position_x 100m at radix 5 = 3200
	for _, word := range buf[6:14] {
		assert.Equal(t, uint32(0x7FFFFFFF), word) // unspecified sentinel
	}

	got, _, err := ReadIFContext(buf, true)
	require.NoError(t, err)
	e := got.ECEFEphemeris
	assert.True(t, e.Has.PositionX)
	assert.InDelta(t, 100.0, e.PositionX, 1e-6)
	assert.False(t, e.Has.PositionY)
	assert.False(t, e.Has.VelocityDZ)
}

func TestIFContextAssociationListsAliasBuffer(t *testing.T) {
	ctx := IFContext{
		Has: IFContextIndicators{ContextAssociationLists: true},
		ContextAssociationLists: ContextAssociationLists{
			SourceListSize:         2,
			SystemListSize:         1,
			HasAsyncChannelTagList: true,
			AsyncChannelListSize:   1,
			SourceList:             []uint32{0x1, 0x2},
			SystemList:             []uint32{0x3},
			AsyncChannelTagList:    []uint32{0x4},
			AsyncChannelList:       []uint32{0x5},
		},
	}
	buf := make([]uint32, IFContextWords(ctx))
	n, err := WriteIFContext(buf, ctx, true)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	// word 0: source_list_size=2(31..23) | reserved(22..16)=0 | system_list_size=1(15..7) | reserved(6..0)=0
	assert.Equal(t, uint32(0x01000080), buf[1])
	// word 1: vector_component_list_size=0(31..16) | async_channel_tag_list_present=1(15) | async_channel_list_size=1(14..0)
	assert.Equal(t, uint32(0x00008001), buf[2])
	// list order on the wire: source, system, vector, async-channel, async-channel-tag
	assert.Equal(t, []uint32{0x1, 0x2, 0x3, 0x5, 0x4}, buf[3:8])

	got, _, err := ReadIFContext(buf, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x1, 0x2}, got.ContextAssociationLists.SourceList)
	assert.Equal(t, []uint32{0x3}, got.ContextAssociationLists.SystemList)
	assert.Equal(t, []uint32{0x4}, got.ContextAssociationLists.AsyncChannelTagList)
	assert.Equal(t, []uint32{0x5}, got.ContextAssociationLists.AsyncChannelList)
}

func TestIFContextReservedBitsRejected(t *testing.T) {
	buf := []uint32{0x00000001}
	_, _, err := ReadIFContext(buf, true)
	assert.ErrorIs(t, err, ErrReserved)
}

func TestIFContextGeolocationSentinelLaw(t *testing.T) {
	ctx := IFContext{
		Has: IFContextIndicators{FormattedGPSGeolocation: true},
		FormattedGPSGeolocation: FormattedGeolocation{
			GeolocationTime: GeolocationTime{
				TSI:                     TSINone,
				IntegerSecondsTimestamp: 1, // must be 0xFFFFFFFF when TSI is None
			},
		},
	}
	buf := make([]uint32, IFContextWords(ctx))
	_, err := WriteIFContext(buf, ctx, true)
	assert.ErrorIs(t, err, ErrSetIntegerSecondTimestamp)

	ctx.FormattedGPSGeolocation.GeolocationTime = GeolocationTime{
		TSI:                     TSIUtc, // satisfy the integer-seconds check first
		IntegerSecondsTimestamp: 1700000000,
		TSF:                        TSFNone,
		FractionalSecondsTimestamp: 1, // must be all-ones when TSF is None
	}
	_, err = WriteIFContext(buf, ctx, true)
	assert.ErrorIs(t, err, ErrSetFractionalSecondTimestamp)

	ctx.FormattedGPSGeolocation.GeolocationTime = GeolocationTime{
		TSI:                        TSIUtc,
		IntegerSecondsTimestamp:    1700000000,
		TSF:                        TSFRealTime,
		FractionalSecondsTimestamp: picosecondsPerSecond, // must be < 1 second
	}
	_, err = WriteIFContext(buf, ctx, true)
	assert.ErrorIs(t, err, ErrBoundsRealTime)

	n, err := WriteIFContext(buf, ctx, false)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
}

func TestIFContextEphemerisSentinelLaw(t *testing.T) {
	ctx := IFContext{
		Has: IFContextIndicators{ECEFEphemeris: true},
		ECEFEphemeris: Ephemeris{
			GeolocationTime: GeolocationTime{
				TSI:                     TSINone,
				IntegerSecondsTimestamp: 1,
			},
		},
	}
	buf := make([]uint32, IFContextWords(ctx))
	_, err := WriteIFContext(buf, ctx, true)
	assert.ErrorIs(t, err, ErrSetIntegerSecondTimestamp)
}

func TestIFContextGainHexLayout(t *testing.T) {
	ctx := IFContext{
		Has:  IFContextIndicators{Gain: true},
		Gain: Gain{Stage1: 10, Stage2: 20},
	}
	buf := make([]uint32, IFContextWords(ctx))
	n, err := WriteIFContext(buf, ctx, true)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// stage2 in the high half (31..16), stage1 in the low half (15..0),
	// both dB at radix 7: 20*128=2560=0x0A00, 10*128=1280=0x0500.
	assert.Equal(t, uint32(0x0A000500), buf[1])

	got, _, err := ReadIFContext(buf, true)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, got.Gain.Stage2, 1e-6)
	assert.InDelta(t, 10.0, got.Gain.Stage1, 1e-6)
}

func TestIFContextGainStage2WithoutStage1(t *testing.T) {
	ctx := IFContext{
		Has:  IFContextIndicators{Gain: true},
		Gain: Gain{Stage1: 0, Stage2: 5},
	}
	buf := make([]uint32, IFContextWords(ctx))
	_, err := WriteIFContext(buf, ctx, true)
	assert.ErrorIs(t, err, ErrGainStage2Set)
}
