package vrt

// TrailerIndicators tracks which of the trailer's optional fields are
// present. A value field is only meaningful when its paired indicator is
// set; writers must set the indicator to encode the value.
type TrailerIndicators struct {
	CalibratedTime               bool
	ValidData                    bool
	ReferenceLock                bool
	AgcOrMgc                     bool
	DetectedSignal               bool
	SpectralInversion            bool
	OverRange                    bool
	SampleLoss                   bool
	UserDefined11                bool
	UserDefined10                bool
	UserDefined9                 bool
	UserDefined8                 bool
	AssociatedContextPacketCount bool
}

// Trailer is the 1-word trailer present on data-typed packets when
// Header.HasTrailer is set.
type Trailer struct {
	Has                          TrailerIndicators
	CalibratedTime               bool
	ValidData                    bool
	ReferenceLock                bool
	AgcOrMgc                     AgcOrMgc
	DetectedSignal               bool
	SpectralInversion            bool
	OverRange                    bool
	SampleLoss                   bool
	UserDefined11                bool
	UserDefined10                bool
	UserDefined9                 bool
	UserDefined8                 bool
	AssociatedContextPacketCount uint8 // only the low 7 bits are meaningful
}

// Bit positions of the twelve has/value pairs. Has-bits occupy 31..20,
// value bits occupy 19..8, MSB-first in the same order on both sides.
const (
	trailerHasCalibratedTime  = 31
	trailerHasValidData       = 30
	trailerHasReferenceLock   = 29
	trailerHasAgcOrMgc        = 28
	trailerHasDetectedSignal  = 27
	trailerHasSpectralInv     = 26
	trailerHasOverRange       = 25
	trailerHasSampleLoss      = 24
	trailerHasUserDefined11   = 23
	trailerHasUserDefined10   = 22
	trailerHasUserDefined9    = 21
	trailerHasUserDefined8    = 20

	trailerValCalibratedTime  = 19
	trailerValValidData       = 18
	trailerValReferenceLock   = 17
	trailerValAgcOrMgc        = 16
	trailerValDetectedSignal  = 15
	trailerValSpectralInv     = 14
	trailerValOverRange       = 13
	trailerValSampleLoss      = 12
	trailerValUserDefined11   = 11
	trailerValUserDefined10   = 10
	trailerValUserDefined9    = 9
	trailerValUserDefined8    = 8

	trailerHasAssocContextCount = 7
)

func validateTrailer(t Trailer) *Error {
	if t.Has.AssociatedContextPacketCount && t.AssociatedContextPacketCount > 0x7F {
		return ErrBoundsAssociatedContextCount
	}
	return nil
}

func setFlag(w *uint32, hasBit, valBit uint, has, val bool) {
	if has {
		bitsSet(w, hasBit, hasBit, 1)
		if val {
			bitsSet(w, valBit, valBit, 1)
		}
	}
}

// WriteTrailer encodes t into buf[0]. Returns 1 or an error.
func WriteTrailer(buf []uint32, t Trailer, validate bool) (int, error) {
	if len(buf) < 1 {
		return 0, ErrBufferSize
	}
	if validate {
		if err := validateTrailer(t); err != nil {
			return 0, err
		}
	}

	var w uint32
	setFlag(&w, trailerHasCalibratedTime, trailerValCalibratedTime, t.Has.CalibratedTime, t.CalibratedTime)
	setFlag(&w, trailerHasValidData, trailerValValidData, t.Has.ValidData, t.ValidData)
	setFlag(&w, trailerHasReferenceLock, trailerValReferenceLock, t.Has.ReferenceLock, t.ReferenceLock)
	setFlag(&w, trailerHasAgcOrMgc, trailerValAgcOrMgc, t.Has.AgcOrMgc, t.AgcOrMgc == Agc)
	setFlag(&w, trailerHasDetectedSignal, trailerValDetectedSignal, t.Has.DetectedSignal, t.DetectedSignal)
	setFlag(&w, trailerHasSpectralInv, trailerValSpectralInv, t.Has.SpectralInversion, t.SpectralInversion)
	setFlag(&w, trailerHasOverRange, trailerValOverRange, t.Has.OverRange, t.OverRange)
	setFlag(&w, trailerHasSampleLoss, trailerValSampleLoss, t.Has.SampleLoss, t.SampleLoss)
	setFlag(&w, trailerHasUserDefined11, trailerValUserDefined11, t.Has.UserDefined11, t.UserDefined11)
	setFlag(&w, trailerHasUserDefined10, trailerValUserDefined10, t.Has.UserDefined10, t.UserDefined10)
	setFlag(&w, trailerHasUserDefined9, trailerValUserDefined9, t.Has.UserDefined9, t.UserDefined9)
	setFlag(&w, trailerHasUserDefined8, trailerValUserDefined8, t.Has.UserDefined8, t.UserDefined8)

	if t.Has.AssociatedContextPacketCount {
		bitsSet(&w, trailerHasAssocContextCount, trailerHasAssocContextCount, 1)
		bitsSet(&w, 6, 0, uint32(t.AssociatedContextPacketCount))
	}

	buf[0] = w
	return 1, nil
}

// ReadTrailer decodes buf[0] into a Trailer. Returns 1 or an error.
func ReadTrailer(buf []uint32, validate bool) (Trailer, int, error) {
	if len(buf) < 1 {
		return Trailer{}, 0, ErrBufferSize
	}
	w := buf[0]

	var t Trailer
	t.Has.CalibratedTime = bitsGet(w, trailerHasCalibratedTime, trailerHasCalibratedTime) != 0
	t.CalibratedTime = bitsGet(w, trailerValCalibratedTime, trailerValCalibratedTime) != 0
	t.Has.ValidData = bitsGet(w, trailerHasValidData, trailerHasValidData) != 0
	t.ValidData = bitsGet(w, trailerValValidData, trailerValValidData) != 0
	t.Has.ReferenceLock = bitsGet(w, trailerHasReferenceLock, trailerHasReferenceLock) != 0
	t.ReferenceLock = bitsGet(w, trailerValReferenceLock, trailerValReferenceLock) != 0
	t.Has.AgcOrMgc = bitsGet(w, trailerHasAgcOrMgc, trailerHasAgcOrMgc) != 0
	if bitsGet(w, trailerValAgcOrMgc, trailerValAgcOrMgc) != 0 {
		t.AgcOrMgc = Agc
	} else {
		t.AgcOrMgc = Mgc
	}
	t.Has.DetectedSignal = bitsGet(w, trailerHasDetectedSignal, trailerHasDetectedSignal) != 0
	t.DetectedSignal = bitsGet(w, trailerValDetectedSignal, trailerValDetectedSignal) != 0
	t.Has.SpectralInversion = bitsGet(w, trailerHasSpectralInv, trailerHasSpectralInv) != 0
	t.SpectralInversion = bitsGet(w, trailerValSpectralInv, trailerValSpectralInv) != 0
	t.Has.OverRange = bitsGet(w, trailerHasOverRange, trailerHasOverRange) != 0
	t.OverRange = bitsGet(w, trailerValOverRange, trailerValOverRange) != 0
	t.Has.SampleLoss = bitsGet(w, trailerHasSampleLoss, trailerHasSampleLoss) != 0
	t.SampleLoss = bitsGet(w, trailerValSampleLoss, trailerValSampleLoss) != 0
	t.Has.UserDefined11 = bitsGet(w, trailerHasUserDefined11, trailerHasUserDefined11) != 0
	t.UserDefined11 = bitsGet(w, trailerValUserDefined11, trailerValUserDefined11) != 0
	t.Has.UserDefined10 = bitsGet(w, trailerHasUserDefined10, trailerHasUserDefined10) != 0
	t.UserDefined10 = bitsGet(w, trailerValUserDefined10, trailerValUserDefined10) != 0
	t.Has.UserDefined9 = bitsGet(w, trailerHasUserDefined9, trailerHasUserDefined9) != 0
	t.UserDefined9 = bitsGet(w, trailerValUserDefined9, trailerValUserDefined9) != 0
	t.Has.UserDefined8 = bitsGet(w, trailerHasUserDefined8, trailerHasUserDefined8) != 0
	t.UserDefined8 = bitsGet(w, trailerValUserDefined8, trailerValUserDefined8) != 0

	t.Has.AssociatedContextPacketCount = bitsGet(w, trailerHasAssocContextCount, trailerHasAssocContextCount) != 0
	t.AssociatedContextPacketCount = uint8(bitsGet(w, 6, 0))

	if validate {
		if err := validateTrailer(t); err != nil {
			return t, 0, err
		}
	}

	return t, 1, nil
}
