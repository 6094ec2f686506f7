package vrt

// IFContextIndicators records the context field change indicator and which
// of the IF context section's 23 subsections are present, in the exact
// order the Context Indicator Field lays them out: bit 31 down to bit 8. An implementation MUST iterate the
// flags in that fixed order; reader and writer cannot reorder, since a
// reserved-bit or presence mistake would desynchronize every subsection
// that follows it.
type IFContextIndicators struct {
	ContextFieldChangeIndicator  bool
	ReferencePointIdentifier     bool
	Bandwidth                    bool
	IFReferenceFrequency         bool
	RFReferenceFrequency         bool
	RFReferenceFrequencyOffset   bool
	IFBandOffset                 bool
	ReferenceLevel               bool
	Gain                         bool
	OverRangeCount               bool
	SampleRate                   bool
	TimestampAdjustment          bool
	TimestampCalibrationTime     bool
	Temperature                  bool
	DeviceIdentifier             bool
	StateAndEventIndicators      bool
	DataPacketPayloadFormat      bool
	FormattedGPSGeolocation      bool
	FormattedINSGeolocation      bool
	ECEFEphemeris                bool
	RelativeEphemeris            bool
	EphemerisReferenceIdentifier bool
	GPSASCII                     bool
	ContextAssociationLists      bool
}

// Gain is the 1-word stage-1/stage-2 gain subsection.
type Gain struct {
	Stage1 float64 // dB, radix 7
	Stage2 float64 // dB, radix 7
}

// DeviceIdentifier names the equipment that produced the stream.
type DeviceIdentifier struct {
	OUI        uint32 // only the low 24 bits are meaningful
	DeviceCode uint16
}

// StateAndEventHas tracks which of the eight state/event flags are present,
// mirroring TrailerIndicators' first eight fields.
type StateAndEventHas struct {
	CalibratedTime    bool
	ValidData         bool
	ReferenceLock     bool
	AgcOrMgc          bool
	DetectedSignal    bool
	SpectralInversion bool
	OverRange         bool
	SampleLoss        bool
}

// StateAndEventIndicators is the 1-word state/event subsection: the same
// eight has/value pairs as the trailer, plus a 12-bit user-defined field
// instead of the trailer's four individual user-defined bits.
type StateAndEventIndicators struct {
	Has               StateAndEventHas
	CalibratedTime    bool
	ValidData         bool
	ReferenceLock     bool
	AgcOrMgc          AgcOrMgc
	DetectedSignal    bool
	SpectralInversion bool
	OverRange         bool
	SampleLoss        bool
	UserDefined       uint16 // only the low 12 bits are meaningful
}

// DataPacketPayloadFormat describes how samples are packed into the body of
// the paired data packets.
type DataPacketPayloadFormat struct {
	PackingMethod        PackingMethod
	RealOrComplex        RealOrComplex
	DataItemFormat       DataItemFormat
	RepeatIndicator      bool
	EventTagSize         uint8 // 3 bits
	ChannelTagSize       uint8 // 4 bits
	ItemPackingFieldSize uint8 // raw 6-bit wire field, no actual-1 transform
	DataItemSize         uint8 // raw 6-bit wire field, no transform
	RepeatCount          uint16
	VectorSize           uint16
}

// GeolocationTime is the OUI/timestamp prelude shared by the geolocation
// and ephemeris subsections.
type GeolocationTime struct {
	OUI                        uint32 // only the low 24 bits are meaningful
	TSI                        TSI
	TSF                        TSF
	IntegerSecondsTimestamp    uint32
	FractionalSecondsTimestamp uint64
}

// geoUnspecified is the sentinel raw word value marking a geolocation or
// ephemeris subfield as unspecified, per its has-flag being false on read.
const geoUnspecified uint32 = 0x7FFFFFFF

// GeolocationHas tracks which subfields of a FormattedGeolocation are
// present; a subfield whose raw wire value equals 0x7FFFFFFF reads back
// with its has-flag false and a zero value.
type GeolocationHas struct {
	Latitude          bool
	Longitude         bool
	Altitude          bool
	SpeedOverGround   bool
	HeadingAngle      bool
	TrackAngle        bool
	MagneticVariation bool
}

// FormattedGeolocation is the 11-word formatted GPS/INS geolocation
// subsection.
type FormattedGeolocation struct {
	GeolocationTime
	Has               GeolocationHas
	Latitude          float64 // degrees, radix 22, [-90, 90]
	Longitude         float64 // degrees, radix 22, [-180, 180]
	Altitude          float64 // meters, radix 5
	SpeedOverGround   float64 // m/s, radix 16, >= 0
	HeadingAngle      float64 // degrees, radix 22, [0, 360)
	TrackAngle        float64 // degrees, radix 22, [0, 360)
	MagneticVariation float64 // degrees, radix 22, [-180, 180]
}

// EphemerisHas tracks which subfields of an Ephemeris are present; same
// 0x7FFFFFFF sentinel convention as GeolocationHas.
type EphemerisHas struct {
	PositionX, PositionY, PositionZ          bool
	AttitudeAlpha, AttitudeBeta, AttitudePhi bool
	VelocityDX, VelocityDY, VelocityDZ       bool
}

// Ephemeris is the 13-word ECEF/relative ephemeris subsection.
type Ephemeris struct {
	GeolocationTime
	Has                                      EphemerisHas
	PositionX, PositionY, PositionZ          float64 // meters, radix 5
	AttitudeAlpha, AttitudeBeta, AttitudePhi float64 // degrees, radix 22
	VelocityDX, VelocityDY, VelocityDZ       float64 // m/s, radix 16
}

// GPSASCII is the variable-length GPS-receiver ASCII subsection. ASCII
// aliases a sub-slice of the caller's buffer; it is not copied.
type GPSASCII struct {
	OUI           uint32 // only the low 24 bits are meaningful
	NumberOfWords uint32 // only the low 24 bits are meaningful
	ASCII         []uint32
}

// ContextAssociationLists is the variable-length association-lists
// subsection. Each list aliases a sub-slice of the caller's buffer.
type ContextAssociationLists struct {
	SourceListSize          uint16 // 9 bits
	SystemListSize          uint16 // 9 bits
	VectorComponentListSize uint16
	HasAsyncChannelTagList  bool
	AsyncChannelListSize    uint16 // 15 bits

	SourceList          []uint32
	SystemList          []uint32
	VectorComponentList []uint32
	AsyncChannelTagList []uint32 // present iff HasAsyncChannelTagList
	AsyncChannelList    []uint32
}

// IFContext is the IF context section present on IFContext-typed packets.
type IFContext struct {
	Has IFContextIndicators

	ReferencePointIdentifier     uint32
	Bandwidth                    float64 // Hz, radix 20, >= 0
	IFReferenceFrequency         float64 // Hz, radix 20
	RFReferenceFrequency         float64 // Hz, radix 20
	RFReferenceFrequencyOffset   float64 // Hz, radix 20
	IFBandOffset                 float64 // Hz, radix 20
	ReferenceLevel               float64 // dBm, radix 7
	Gain                         Gain
	OverRangeCount               uint32
	SampleRate                   float64 // Hz, radix 20, >= 0
	TimestampAdjustment          int64   // picoseconds, unscaled
	TimestampCalibrationTime     uint32  // seconds
	Temperature                  float64 // degrees C, radix 6, >= -273.15
	DeviceIdentifier              DeviceIdentifier
	StateAndEventIndicators       StateAndEventIndicators
	DataPacketPayloadFormat       DataPacketPayloadFormat
	FormattedGPSGeolocation       FormattedGeolocation
	FormattedINSGeolocation       FormattedGeolocation
	ECEFEphemeris                 Ephemeris
	RelativeEphemeris             Ephemeris
	EphemerisReferenceIdentifier  uint32
	GPSASCII                      GPSASCII
	ContextAssociationLists       ContextAssociationLists
}

func validateIFContext(ctx IFContext) *Error {
	if ctx.Has.Bandwidth && ctx.Bandwidth < 0 {
		return ErrBoundsBandwidth
	}
	if ctx.Has.Gain && ctx.Gain.Stage2 != 0 && ctx.Gain.Stage1 == 0 {
		return ErrGainStage2Set
	}
	if ctx.Has.SampleRate && ctx.SampleRate < 0 {
		return ErrBoundsSampleRate
	}
	if ctx.Has.Temperature && ctx.Temperature < -273.15 {
		return ErrBoundsTemperature
	}
	if ctx.Has.DataPacketPayloadFormat {
		f := ctx.DataPacketPayloadFormat
		if f.PackingMethod > LinkEfficient {
			return ErrInvalidPackingMethod
		}
		if f.RealOrComplex > ComplexPolar {
			return ErrInvalidRealOrComplex
		}
		if !validDataItemFormat(f.DataItemFormat) {
			return ErrInvalidDataItemFormat
		}
		if f.EventTagSize > 0x07 {
			return ErrBoundsEventTagSize
		}
		if f.ChannelTagSize > 0x0F {
			return ErrBoundsChannelTagSize
		}
		if f.ItemPackingFieldSize > 0x3F {
			return ErrBoundsItemPackingFieldSize
		}
		if f.DataItemSize > 0x3F {
			return ErrBoundsDataItemSize
		}
	}
	if err := validateGeolocation(ctx.Has.FormattedGPSGeolocation, ctx.FormattedGPSGeolocation); err != nil {
		return err
	}
	if err := validateGeolocation(ctx.Has.FormattedINSGeolocation, ctx.FormattedINSGeolocation); err != nil {
		return err
	}
	if err := validateEphemeris(ctx.Has.ECEFEphemeris, ctx.ECEFEphemeris); err != nil {
		return err
	}
	if err := validateEphemeris(ctx.Has.RelativeEphemeris, ctx.RelativeEphemeris); err != nil {
		return err
	}
	if ctx.Has.ContextAssociationLists {
		cal := ctx.ContextAssociationLists
		if cal.SourceListSize > 0x01FF {
			return ErrBoundsSourceListSize
		}
		if cal.SystemListSize > 0x01FF {
			return ErrBoundsSystemListSize
		}
		if cal.AsyncChannelListSize > 0x7FFF {
			return ErrBoundsChannelListSize
		}
	}
	return nil
}

// validateGeolocationTime enforces the sentinel law shared by geolocation
// and ephemeris preludes: tsi==None requires integer_second_timestamp to be
// the all-ones sentinel, tsf==None requires the same of
// fractional_second_timestamp, and tsf==RealTime bounds the fractional
// value to under one second.
func validateGeolocationTime(t GeolocationTime) *Error {
	if t.TSI == TSINone && t.IntegerSecondsTimestamp != 0xFFFFFFFF {
		return ErrSetIntegerSecondTimestamp
	}
	if t.TSF == TSFNone && t.FractionalSecondsTimestamp != 0xFFFFFFFFFFFFFFFF {
		return ErrSetFractionalSecondTimestamp
	}
	if t.TSF == TSFRealTime && t.FractionalSecondsTimestamp >= picosecondsPerSecond {
		return ErrBoundsRealTime
	}
	return nil
}

func validateGeolocation(has bool, g FormattedGeolocation) *Error {
	if !has {
		return nil
	}
	if err := validateGeolocationTime(g.GeolocationTime); err != nil {
		return err
	}
	if g.Has.Latitude && (g.Latitude < -90 || g.Latitude > 90) {
		return ErrBoundsLatitude
	}
	if g.Has.Longitude && (g.Longitude < -180 || g.Longitude > 180) {
		return ErrBoundsLongitude
	}
	if g.Has.SpeedOverGround && g.SpeedOverGround < 0 {
		return ErrBoundsSpeedOverGround
	}
	if g.Has.HeadingAngle && (g.HeadingAngle < 0 || g.HeadingAngle >= 360) {
		return ErrBoundsHeadingAngle
	}
	if g.Has.TrackAngle && (g.TrackAngle < 0 || g.TrackAngle >= 360) {
		return ErrBoundsTrackAngle
	}
	if g.Has.MagneticVariation && (g.MagneticVariation < -180 || g.MagneticVariation > 180) {
		return ErrBoundsMagneticVariation
	}
	return nil
}

func validateEphemeris(has bool, e Ephemeris) *Error {
	if !has {
		return nil
	}
	return validateGeolocationTime(e.GeolocationTime)
}

// WriteIFContext encodes ctx into buf. Returns the number of words written
// (IFContextWords(ctx)) or an error.
func WriteIFContext(buf []uint32, ctx IFContext, validate bool) (int, error) {
	n := IFContextWords(ctx)
	if len(buf) < n {
		return 0, ErrBufferSize
	}
	if validate {
		if err := validateIFContext(ctx); err != nil {
			return 0, err
		}
	}

	var ind uint32
	h := ctx.Has
	setFlag1(&ind, 31, h.ContextFieldChangeIndicator)
	setFlag1(&ind, 30, h.ReferencePointIdentifier)
	setFlag1(&ind, 29, h.Bandwidth)
	setFlag1(&ind, 28, h.IFReferenceFrequency)
	setFlag1(&ind, 27, h.RFReferenceFrequency)
	setFlag1(&ind, 26, h.RFReferenceFrequencyOffset)
	setFlag1(&ind, 25, h.IFBandOffset)
	setFlag1(&ind, 24, h.ReferenceLevel)
	setFlag1(&ind, 23, h.Gain)
	setFlag1(&ind, 22, h.OverRangeCount)
	setFlag1(&ind, 21, h.SampleRate)
	setFlag1(&ind, 20, h.TimestampAdjustment)
	setFlag1(&ind, 19, h.TimestampCalibrationTime)
	setFlag1(&ind, 18, h.Temperature)
	setFlag1(&ind, 17, h.DeviceIdentifier)
	setFlag1(&ind, 16, h.StateAndEventIndicators)
	setFlag1(&ind, 15, h.DataPacketPayloadFormat)
	setFlag1(&ind, 14, h.FormattedGPSGeolocation)
	setFlag1(&ind, 13, h.FormattedINSGeolocation)
	setFlag1(&ind, 12, h.ECEFEphemeris)
	setFlag1(&ind, 11, h.RelativeEphemeris)
	setFlag1(&ind, 10, h.EphemerisReferenceIdentifier)
	setFlag1(&ind, 9, h.GPSASCII)
	setFlag1(&ind, 8, h.ContextAssociationLists)
	buf[0] = ind
	pos := 1

	if h.ReferencePointIdentifier {
		buf[pos] = ctx.ReferencePointIdentifier
		pos++
	}
	if h.Bandwidth {
		pos += writeU64(buf[pos:], uint64(Int64FromFloat(ctx.Bandwidth, 20)))
	}
	if h.IFReferenceFrequency {
		pos += writeU64(buf[pos:], uint64(Int64FromFloat(ctx.IFReferenceFrequency, 20)))
	}
	if h.RFReferenceFrequency {
		pos += writeU64(buf[pos:], uint64(Int64FromFloat(ctx.RFReferenceFrequency, 20)))
	}
	if h.RFReferenceFrequencyOffset {
		pos += writeU64(buf[pos:], uint64(Int64FromFloat(ctx.RFReferenceFrequencyOffset, 20)))
	}
	if h.IFBandOffset {
		pos += writeU64(buf[pos:], uint64(Int64FromFloat(ctx.IFBandOffset, 20)))
	}
	if h.ReferenceLevel {
		var w uint32
		bitsSet(&w, 15, 0, truncateSigned(int64(Int16FromFloat(ctx.ReferenceLevel, 7)), 16))
		buf[pos] = w
		pos++
	}
	if h.Gain {
		var w uint32
		bitsSet(&w, 31, 16, truncateSigned(int64(Int16FromFloat(ctx.Gain.Stage2, 7)), 16))
		bitsSet(&w, 15, 0, truncateSigned(int64(Int16FromFloat(ctx.Gain.Stage1, 7)), 16))
		buf[pos] = w
		pos++
	}
	if h.OverRangeCount {
		buf[pos] = ctx.OverRangeCount
		pos++
	}
	if h.SampleRate {
		pos += writeU64(buf[pos:], uint64(Int64FromFloat(ctx.SampleRate, 20)))
	}
	if h.TimestampAdjustment {
		pos += writeU64(buf[pos:], uint64(ctx.TimestampAdjustment))
	}
	if h.TimestampCalibrationTime {
		buf[pos] = ctx.TimestampCalibrationTime
		pos++
	}
	if h.Temperature {
		var w uint32
		bitsSet(&w, 15, 0, truncateSigned(int64(Int16FromFloat(ctx.Temperature, 6)), 16))
		buf[pos] = w
		pos++
	}
	if h.DeviceIdentifier {
		var w0, w1 uint32
		bitsSet(&w0, 23, 0, ctx.DeviceIdentifier.OUI)
		bitsSet(&w1, 15, 0, uint32(ctx.DeviceIdentifier.DeviceCode))
		buf[pos] = w0
		buf[pos+1] = w1
		pos += 2
	}
	if h.StateAndEventIndicators {
		buf[pos] = writeStateAndEvent(ctx.StateAndEventIndicators)
		pos++
	}
	if h.DataPacketPayloadFormat {
		w0, w1 := writeDataPacketPayloadFormat(ctx.DataPacketPayloadFormat)
		buf[pos] = w0
		buf[pos+1] = w1
		pos += 2
	}
	if h.FormattedGPSGeolocation {
		n := writeGeolocation(buf[pos:], ctx.FormattedGPSGeolocation)
		pos += n
	}
	if h.FormattedINSGeolocation {
		n := writeGeolocation(buf[pos:], ctx.FormattedINSGeolocation)
		pos += n
	}
	if h.ECEFEphemeris {
		n := writeEphemeris(buf[pos:], ctx.ECEFEphemeris)
		pos += n
	}
	if h.RelativeEphemeris {
		n := writeEphemeris(buf[pos:], ctx.RelativeEphemeris)
		pos += n
	}
	if h.EphemerisReferenceIdentifier {
		buf[pos] = ctx.EphemerisReferenceIdentifier
		pos++
	}
	if h.GPSASCII {
		g := ctx.GPSASCII
		var w0 uint32
		bitsSet(&w0, 23, 0, g.OUI)
		buf[pos] = w0
		var w1 uint32
		bitsSet(&w1, 23, 0, g.NumberOfWords&0x00FFFFFF)
		buf[pos+1] = w1
		pos += 2
		nWords := int(g.NumberOfWords & 0x00FFFFFF)
		copy(buf[pos:pos+nWords], g.ASCII)
		pos += nWords
	}
	if h.ContextAssociationLists {
		n := writeContextAssociationLists(buf[pos:], ctx.ContextAssociationLists)
		pos += n
	}

	return pos, nil
}

// ReadIFContext decodes buf into an IFContext. Returns the number of words
// consumed (IFContextWords(ctx)) or an error.
func ReadIFContext(buf []uint32, validate bool) (IFContext, int, error) {
	if len(buf) < 1 {
		return IFContext{}, 0, ErrBufferSize
	}
	ind := buf[0]
	if validate && bitsGet(ind, 7, 0) != 0 {
		return IFContext{}, 0, ErrReserved
	}

	var ctx IFContext
	h := &ctx.Has
	h.ContextFieldChangeIndicator = getFlag1(ind, 31)
	h.ReferencePointIdentifier = getFlag1(ind, 30)
	h.Bandwidth = getFlag1(ind, 29)
	h.IFReferenceFrequency = getFlag1(ind, 28)
	h.RFReferenceFrequency = getFlag1(ind, 27)
	h.RFReferenceFrequencyOffset = getFlag1(ind, 26)
	h.IFBandOffset = getFlag1(ind, 25)
	h.ReferenceLevel = getFlag1(ind, 24)
	h.Gain = getFlag1(ind, 23)
	h.OverRangeCount = getFlag1(ind, 22)
	h.SampleRate = getFlag1(ind, 21)
	h.TimestampAdjustment = getFlag1(ind, 20)
	h.TimestampCalibrationTime = getFlag1(ind, 19)
	h.Temperature = getFlag1(ind, 18)
	h.DeviceIdentifier = getFlag1(ind, 17)
	h.StateAndEventIndicators = getFlag1(ind, 16)
	h.DataPacketPayloadFormat = getFlag1(ind, 15)
	h.FormattedGPSGeolocation = getFlag1(ind, 14)
	h.FormattedINSGeolocation = getFlag1(ind, 13)
	h.ECEFEphemeris = getFlag1(ind, 12)
	h.RelativeEphemeris = getFlag1(ind, 11)
	h.EphemerisReferenceIdentifier = getFlag1(ind, 10)
	h.GPSASCII = getFlag1(ind, 9)
	h.ContextAssociationLists = getFlag1(ind, 8)
	pos := 1

	need := func(n int) error {
		if len(buf) < pos+n {
			return ErrBufferSize
		}
		return nil
	}

	if h.ReferencePointIdentifier {
		if err := need(1); err != nil {
			return ctx, 0, err
		}
		ctx.ReferencePointIdentifier = buf[pos]
		pos++
	}
	if h.Bandwidth {
		if err := need(2); err != nil {
			return ctx, 0, err
		}
		ctx.Bandwidth = Int64ToFloat(int64(readU64(buf[pos:])), 20)
		pos += 2
	}
	if h.IFReferenceFrequency {
		if err := need(2); err != nil {
			return ctx, 0, err
		}
		ctx.IFReferenceFrequency = Int64ToFloat(int64(readU64(buf[pos:])), 20)
		pos += 2
	}
	if h.RFReferenceFrequency {
		if err := need(2); err != nil {
			return ctx, 0, err
		}
		ctx.RFReferenceFrequency = Int64ToFloat(int64(readU64(buf[pos:])), 20)
		pos += 2
	}
	if h.RFReferenceFrequencyOffset {
		if err := need(2); err != nil {
			return ctx, 0, err
		}
		ctx.RFReferenceFrequencyOffset = Int64ToFloat(int64(readU64(buf[pos:])), 20)
		pos += 2
	}
	if h.IFBandOffset {
		if err := need(2); err != nil {
			return ctx, 0, err
		}
		ctx.IFBandOffset = Int64ToFloat(int64(readU64(buf[pos:])), 20)
		pos += 2
	}
	if h.ReferenceLevel {
		if err := need(1); err != nil {
			return ctx, 0, err
		}
		ctx.ReferenceLevel = Int16ToFloat(int16(signExtend(bitsGet(buf[pos], 15, 0), 16)), 7)
		pos++
	}
	if h.Gain {
		if err := need(1); err != nil {
			return ctx, 0, err
		}
		w := buf[pos]
		ctx.Gain.Stage2 = Int16ToFloat(int16(signExtend(bitsGet(w, 31, 16), 16)), 7)
		ctx.Gain.Stage1 = Int16ToFloat(int16(signExtend(bitsGet(w, 15, 0), 16)), 7)
		pos++
	}
	if h.OverRangeCount {
		if err := need(1); err != nil {
			return ctx, 0, err
		}
		ctx.OverRangeCount = buf[pos]
		pos++
	}
	if h.SampleRate {
		if err := need(2); err != nil {
			return ctx, 0, err
		}
		ctx.SampleRate = Int64ToFloat(int64(readU64(buf[pos:])), 20)
		pos += 2
	}
	if h.TimestampAdjustment {
		if err := need(2); err != nil {
			return ctx, 0, err
		}
		ctx.TimestampAdjustment = int64(readU64(buf[pos:]))
		pos += 2
	}
	if h.TimestampCalibrationTime {
		if err := need(1); err != nil {
			return ctx, 0, err
		}
		ctx.TimestampCalibrationTime = buf[pos]
		pos++
	}
	if h.Temperature {
		if err := need(1); err != nil {
			return ctx, 0, err
		}
		ctx.Temperature = Int16ToFloat(int16(signExtend(bitsGet(buf[pos], 15, 0), 16)), 6)
		pos++
	}
	if h.DeviceIdentifier {
		if err := need(2); err != nil {
			return ctx, 0, err
		}
		ctx.DeviceIdentifier.OUI = bitsGet(buf[pos], 23, 0)
		ctx.DeviceIdentifier.DeviceCode = uint16(bitsGet(buf[pos+1], 15, 0))
		pos += 2
	}
	if h.StateAndEventIndicators {
		if err := need(1); err != nil {
			return ctx, 0, err
		}
		ctx.StateAndEventIndicators = readStateAndEvent(buf[pos])
		pos++
	}
	if h.DataPacketPayloadFormat {
		if err := need(2); err != nil {
			return ctx, 0, err
		}
		dppf, err := readDataPacketPayloadFormat(buf[pos], buf[pos+1], validate)
		if err != nil {
			return ctx, 0, err
		}
		ctx.DataPacketPayloadFormat = dppf
		pos += 2
	}
	if h.FormattedGPSGeolocation {
		if err := need(11); err != nil {
			return ctx, 0, err
		}
		g, err := readGeolocation(buf[pos:], validate)
		if err != nil {
			return ctx, 0, err
		}
		ctx.FormattedGPSGeolocation = g
		pos += 11
	}
	if h.FormattedINSGeolocation {
		if err := need(11); err != nil {
			return ctx, 0, err
		}
		g, err := readGeolocation(buf[pos:], validate)
		if err != nil {
			return ctx, 0, err
		}
		ctx.FormattedINSGeolocation = g
		pos += 11
	}
	if h.ECEFEphemeris {
		if err := need(13); err != nil {
			return ctx, 0, err
		}
		e, err := readEphemeris(buf[pos:], validate)
		if err != nil {
			return ctx, 0, err
		}
		ctx.ECEFEphemeris = e
		pos += 13
	}
	if h.RelativeEphemeris {
		if err := need(13); err != nil {
			return ctx, 0, err
		}
		e, err := readEphemeris(buf[pos:], validate)
		if err != nil {
			return ctx, 0, err
		}
		ctx.RelativeEphemeris = e
		pos += 13
	}
	if h.EphemerisReferenceIdentifier {
		if err := need(1); err != nil {
			return ctx, 0, err
		}
		ctx.EphemerisReferenceIdentifier = buf[pos]
		pos++
	}
	if h.GPSASCII {
		if err := need(2); err != nil {
			return ctx, 0, err
		}
		ctx.GPSASCII.OUI = bitsGet(buf[pos], 23, 0)
		nWords := int(bitsGet(buf[pos+1], 23, 0))
		ctx.GPSASCII.NumberOfWords = uint32(nWords)
		pos += 2
		if err := need(nWords); err != nil {
			return ctx, 0, err
		}
		ctx.GPSASCII.ASCII = buf[pos : pos+nWords]
		pos += nWords
	}
	if h.ContextAssociationLists {
		cal, n, err := readContextAssociationLists(buf[pos:], validate)
		if err != nil {
			return ctx, 0, err
		}
		ctx.ContextAssociationLists = cal
		pos += n
	}

	if validate {
		if err := validateIFContext(ctx); err != nil {
			return ctx, 0, err
		}
	}

	return ctx, pos, nil
}

func setFlag1(w *uint32, bit uint, v bool) {
	if v {
		bitsSet(w, bit, bit, 1)
	}
}

func getFlag1(w uint32, bit uint) bool {
	return bitsGet(w, bit, bit) != 0
}

func writeU64(buf []uint32, v uint64) int {
	buf[0] = uint32(v >> 32)
	buf[1] = uint32(v)
	return 2
}

func readU64(buf []uint32) uint64 {
	return uint64(buf[0])<<32 | uint64(buf[1])
}

func writeStateAndEvent(s StateAndEventIndicators) uint32 {
	var w uint32
	setFlag(&w, 31, 19, s.Has.CalibratedTime, s.CalibratedTime)
	setFlag(&w, 30, 18, s.Has.ValidData, s.ValidData)
	setFlag(&w, 29, 17, s.Has.ReferenceLock, s.ReferenceLock)
	setFlag(&w, 28, 16, s.Has.AgcOrMgc, s.AgcOrMgc == Agc)
	setFlag(&w, 27, 15, s.Has.DetectedSignal, s.DetectedSignal)
	setFlag(&w, 26, 14, s.Has.SpectralInversion, s.SpectralInversion)
	setFlag(&w, 25, 13, s.Has.OverRange, s.OverRange)
	setFlag(&w, 24, 12, s.Has.SampleLoss, s.SampleLoss)
	bitsSet(&w, 11, 0, uint32(s.UserDefined))
	return w
}

func readStateAndEvent(w uint32) StateAndEventIndicators {
	var s StateAndEventIndicators
	s.Has.CalibratedTime = bitsGet(w, 31, 31) != 0
	s.CalibratedTime = bitsGet(w, 19, 19) != 0
	s.Has.ValidData = bitsGet(w, 30, 30) != 0
	s.ValidData = bitsGet(w, 18, 18) != 0
	s.Has.ReferenceLock = bitsGet(w, 29, 29) != 0
	s.ReferenceLock = bitsGet(w, 17, 17) != 0
	s.Has.AgcOrMgc = bitsGet(w, 28, 28) != 0
	if bitsGet(w, 16, 16) != 0 {
		s.AgcOrMgc = Agc
	} else {
		s.AgcOrMgc = Mgc
	}
	s.Has.DetectedSignal = bitsGet(w, 27, 27) != 0
	s.DetectedSignal = bitsGet(w, 15, 15) != 0
	s.Has.SpectralInversion = bitsGet(w, 26, 26) != 0
	s.SpectralInversion = bitsGet(w, 14, 14) != 0
	s.Has.OverRange = bitsGet(w, 25, 25) != 0
	s.OverRange = bitsGet(w, 13, 13) != 0
	s.Has.SampleLoss = bitsGet(w, 24, 24) != 0
	s.SampleLoss = bitsGet(w, 12, 12) != 0
	s.UserDefined = uint16(bitsGet(w, 11, 0))
	return s
}

func writeDataPacketPayloadFormat(f DataPacketPayloadFormat) (uint32, uint32) {
	var w0 uint32
	bitsSet(&w0, 31, 31, uint32(f.PackingMethod))
	bitsSet(&w0, 30, 29, uint32(f.RealOrComplex))
	bitsSet(&w0, 28, 24, uint32(f.DataItemFormat))
	if f.RepeatIndicator {
		bitsSet(&w0, 23, 23, 1)
	}
	bitsSet(&w0, 22, 20, uint32(f.EventTagSize))
	bitsSet(&w0, 19, 16, uint32(f.ChannelTagSize))
	bitsSet(&w0, 15, 10, uint32(f.ItemPackingFieldSize))
	bitsSet(&w0, 5, 0, uint32(f.DataItemSize))

	var w1 uint32
	bitsSet(&w1, 31, 16, uint32(f.RepeatCount))
	bitsSet(&w1, 15, 0, uint32(f.VectorSize))
	return w0, w1
}

func readDataPacketPayloadFormat(w0, w1 uint32, validate bool) (DataPacketPayloadFormat, *Error) {
	if validate && bitsGet(w0, 9, 6) != 0 {
		return DataPacketPayloadFormat{}, ErrReserved
	}
	var f DataPacketPayloadFormat
	f.PackingMethod = PackingMethod(bitsGet(w0, 31, 31))
	f.RealOrComplex = RealOrComplex(bitsGet(w0, 30, 29))
	f.DataItemFormat = DataItemFormat(bitsGet(w0, 28, 24))
	f.RepeatIndicator = bitsGet(w0, 23, 23) != 0
	f.EventTagSize = uint8(bitsGet(w0, 22, 20))
	f.ChannelTagSize = uint8(bitsGet(w0, 19, 16))
	f.ItemPackingFieldSize = uint8(bitsGet(w0, 15, 10))
	f.DataItemSize = uint8(bitsGet(w0, 5, 0))
	f.RepeatCount = uint16(bitsGet(w1, 31, 16))
	f.VectorSize = uint16(bitsGet(w1, 15, 0))
	return f, nil
}

// writeGeolocationTime packs the 4-word tsi/tsf/OUI/timestamp prelude
// shared by geolocation and ephemeris blocks: word 0 holds reserved bits
// 31..28 (always zero), tsi (27..26), tsf (25..24), and OUI (23..0); word 1
// is integer_second_timestamp; words 2..3 are fractional_second_timestamp.
func writeGeolocationTime(buf []uint32, t GeolocationTime) int {
	var w0 uint32
	bitsSet(&w0, 27, 26, uint32(t.TSI))
	bitsSet(&w0, 25, 24, uint32(t.TSF))
	bitsSet(&w0, 23, 0, t.OUI)
	buf[0] = w0
	buf[1] = t.IntegerSecondsTimestamp
	writeU64(buf[2:], t.FractionalSecondsTimestamp)
	return 4
}

func readGeolocationTime(buf []uint32, validate bool) (GeolocationTime, *Error) {
	w0 := buf[0]
	if validate && bitsGet(w0, 31, 28) != 0 {
		return GeolocationTime{}, ErrReserved
	}
	var t GeolocationTime
	t.TSI = TSI(bitsGet(w0, 27, 26))
	t.TSF = TSF(bitsGet(w0, 25, 24))
	t.OUI = bitsGet(w0, 23, 0)
	t.IntegerSecondsTimestamp = buf[1]
	t.FractionalSecondsTimestamp = readU64(buf[2:])
	return t, nil
}

// geoFieldSigned writes v at radix if has is true, else the unspecified
// sentinel.
func geoFieldSigned(buf []uint32, idx int, has bool, v float64, radix uint) {
	if !has {
		buf[idx] = geoUnspecified
		return
	}
	buf[idx] = uint32(Int32FromFloat(v, radix))
}

func geoFieldUnsigned(buf []uint32, idx int, has bool, v float64, radix uint) {
	if !has {
		buf[idx] = geoUnspecified
		return
	}
	buf[idx] = Uint32FromFloat(v, radix)
}

// readGeoFieldSigned reports has=false and a zero value when the raw word
// equals the unspecified sentinel.
func readGeoFieldSigned(buf []uint32, idx int, radix uint) (bool, float64) {
	raw := buf[idx]
	if raw == geoUnspecified {
		return false, 0
	}
	return true, Int32ToFloat(int32(raw), radix)
}

func readGeoFieldUnsigned(buf []uint32, idx int, radix uint) (bool, float64) {
	raw := buf[idx]
	if raw == geoUnspecified {
		return false, 0
	}
	return true, Uint32ToFloat(raw, radix)
}

func writeGeolocation(buf []uint32, g FormattedGeolocation) int {
	n := writeGeolocationTime(buf, g.GeolocationTime)
	geoFieldSigned(buf, n+0, g.Has.Latitude, g.Latitude, 22)
	geoFieldSigned(buf, n+1, g.Has.Longitude, g.Longitude, 22)
	geoFieldSigned(buf, n+2, g.Has.Altitude, g.Altitude, 5)
	geoFieldUnsigned(buf, n+3, g.Has.SpeedOverGround, g.SpeedOverGround, 16)
	geoFieldSigned(buf, n+4, g.Has.HeadingAngle, g.HeadingAngle, 22)
	geoFieldSigned(buf, n+5, g.Has.TrackAngle, g.TrackAngle, 22)
	geoFieldSigned(buf, n+6, g.Has.MagneticVariation, g.MagneticVariation, 22)
	return n + 7
}

func readGeolocation(buf []uint32, validate bool) (FormattedGeolocation, *Error) {
	var g FormattedGeolocation
	t, err := readGeolocationTime(buf, validate)
	if err != nil {
		return FormattedGeolocation{}, err
	}
	g.GeolocationTime = t
	g.Has.Latitude, g.Latitude = readGeoFieldSigned(buf, 4, 22)
	g.Has.Longitude, g.Longitude = readGeoFieldSigned(buf, 5, 22)
	g.Has.Altitude, g.Altitude = readGeoFieldSigned(buf, 6, 5)
	g.Has.SpeedOverGround, g.SpeedOverGround = readGeoFieldUnsigned(buf, 7, 16)
	g.Has.HeadingAngle, g.HeadingAngle = readGeoFieldSigned(buf, 8, 22)
	g.Has.TrackAngle, g.TrackAngle = readGeoFieldSigned(buf, 9, 22)
	g.Has.MagneticVariation, g.MagneticVariation = readGeoFieldSigned(buf, 10, 22)
	return g, nil
}

func writeEphemeris(buf []uint32, e Ephemeris) int {
	n := writeGeolocationTime(buf, e.GeolocationTime)
	geoFieldSigned(buf, n+0, e.Has.PositionX, e.PositionX, 5)
	geoFieldSigned(buf, n+1, e.Has.PositionY, e.PositionY, 5)
	geoFieldSigned(buf, n+2, e.Has.PositionZ, e.PositionZ, 5)
	geoFieldSigned(buf, n+3, e.Has.AttitudeAlpha, e.AttitudeAlpha, 22)
	geoFieldSigned(buf, n+4, e.Has.AttitudeBeta, e.AttitudeBeta, 22)
	geoFieldSigned(buf, n+5, e.Has.AttitudePhi, e.AttitudePhi, 22)
	geoFieldSigned(buf, n+6, e.Has.VelocityDX, e.VelocityDX, 16)
	geoFieldSigned(buf, n+7, e.Has.VelocityDY, e.VelocityDY, 16)
	geoFieldSigned(buf, n+8, e.Has.VelocityDZ, e.VelocityDZ, 16)
	return n + 9
}

func readEphemeris(buf []uint32, validate bool) (Ephemeris, *Error) {
	var e Ephemeris
	t, err := readGeolocationTime(buf, validate)
	if err != nil {
		return Ephemeris{}, err
	}
	e.GeolocationTime = t
	e.Has.PositionX, e.PositionX = readGeoFieldSigned(buf, 4, 5)
	e.Has.PositionY, e.PositionY = readGeoFieldSigned(buf, 5, 5)
	e.Has.PositionZ, e.PositionZ = readGeoFieldSigned(buf, 6, 5)
	e.Has.AttitudeAlpha, e.AttitudeAlpha = readGeoFieldSigned(buf, 7, 22)
	e.Has.AttitudeBeta, e.AttitudeBeta = readGeoFieldSigned(buf, 8, 22)
	e.Has.AttitudePhi, e.AttitudePhi = readGeoFieldSigned(buf, 9, 22)
	e.Has.VelocityDX, e.VelocityDX = readGeoFieldSigned(buf, 10, 16)
	e.Has.VelocityDY, e.VelocityDY = readGeoFieldSigned(buf, 11, 16)
	e.Has.VelocityDZ, e.VelocityDZ = readGeoFieldSigned(buf, 12, 16)
	return e, nil
}

// writeContextAssociationLists packs word 0 as source_list_size (31..23,
// reserved 22..16) | system_list_size (15..7, reserved 6..0), word 1 as
// vector_component_list_size (31..16) | async_channel_tag_list_present (15)
// | async_channel_list_size (14..0), then the lists themselves in order:
// source, system, vector-component, async-channel, and finally (iff the
// tag-list presence bit is set) async-channel-tag.
func writeContextAssociationLists(buf []uint32, cal ContextAssociationLists) int {
	var w0 uint32
	bitsSet(&w0, 31, 23, uint32(cal.SourceListSize))
	bitsSet(&w0, 15, 7, uint32(cal.SystemListSize))
	buf[0] = w0

	var w1 uint32
	bitsSet(&w1, 31, 16, uint32(cal.VectorComponentListSize))
	if cal.HasAsyncChannelTagList {
		bitsSet(&w1, 15, 15, 1)
	}
	bitsSet(&w1, 14, 0, uint32(cal.AsyncChannelListSize))
	buf[1] = w1

	pos := 2
	pos += copy(buf[pos:pos+int(cal.SourceListSize)], cal.SourceList)
	pos += copy(buf[pos:pos+int(cal.SystemListSize)], cal.SystemList)
	pos += copy(buf[pos:pos+int(cal.VectorComponentListSize)], cal.VectorComponentList)
	pos += copy(buf[pos:pos+int(cal.AsyncChannelListSize)], cal.AsyncChannelList)
	if cal.HasAsyncChannelTagList {
		pos += copy(buf[pos:pos+int(cal.AsyncChannelListSize)], cal.AsyncChannelTagList)
	}
	return pos
}

func readContextAssociationLists(buf []uint32, validate bool) (ContextAssociationLists, int, error) {
	if len(buf) < 2 {
		return ContextAssociationLists{}, 0, ErrBufferSize
	}
	w0 := buf[0]
	if validate && (bitsGet(w0, 22, 16) != 0 || bitsGet(w0, 6, 0) != 0) {
		return ContextAssociationLists{}, 0, ErrReserved
	}
	var cal ContextAssociationLists
	cal.SourceListSize = uint16(bitsGet(w0, 31, 23))
	cal.SystemListSize = uint16(bitsGet(w0, 15, 7))

	w1 := buf[1]
	cal.VectorComponentListSize = uint16(bitsGet(w1, 31, 16))
	cal.HasAsyncChannelTagList = bitsGet(w1, 15, 15) != 0
	cal.AsyncChannelListSize = uint16(bitsGet(w1, 14, 0))

	pos := 2
	need := int(cal.SourceListSize) + int(cal.SystemListSize) + int(cal.VectorComponentListSize) + int(cal.AsyncChannelListSize)
	if cal.HasAsyncChannelTagList {
		need += int(cal.AsyncChannelListSize)
	}
	if len(buf) < pos+need {
		return cal, 0, ErrBufferSize
	}

	cal.SourceList = buf[pos : pos+int(cal.SourceListSize)]
	pos += int(cal.SourceListSize)
	cal.SystemList = buf[pos : pos+int(cal.SystemListSize)]
	pos += int(cal.SystemListSize)
	cal.VectorComponentList = buf[pos : pos+int(cal.VectorComponentListSize)]
	pos += int(cal.VectorComponentListSize)
	cal.AsyncChannelList = buf[pos : pos+int(cal.AsyncChannelListSize)]
	pos += int(cal.AsyncChannelListSize)
	if cal.HasAsyncChannelTagList {
		cal.AsyncChannelTagList = buf[pos : pos+int(cal.AsyncChannelListSize)]
		pos += int(cal.AsyncChannelListSize)
	}

	return cal, pos, nil
}
