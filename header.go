package vrt

// Header is the mandatory 1-word VRT packet header.
type Header struct {
	Type        Type
	HasClassID  bool
	HasTrailer  bool
	TSM         TSM
	TSI         TSI
	TSF         TSF
	PacketCount uint8  // only the low 4 bits are meaningful
	PacketSize  uint16 // total packet words, including the header
}

// validate checks the header's field-range and consistency invariants.
// WriteHeader and ReadHeader call it only when their validate flag is true.
func (h Header) validate() *Error {
	if !h.Type.Valid() {
		return ErrInvalidPacketType
	}
	if h.TSI > TSIOther {
		return ErrInvalidTSI
	}
	if h.TSF > TSFFreeRunningCount {
		return ErrInvalidTSF
	}
	if h.TSM > TSMCoarse {
		return ErrInvalidTSM
	}
	if h.HasTrailer && h.Type.IsContext() {
		return ErrTrailerInContext
	}
	if h.TSM == TSMCoarse && !h.Type.IsContext() {
		return ErrTSMInData
	}
	if h.PacketCount > 0x0F {
		return ErrBoundsPacketCount
	}
	return nil
}

const headerReservedBit = 24

// WriteHeader encodes h into buf[0]. Returns 1 (words written) or an error.
// When validate is false, only the buffer-size check is enforced; field
// range errors are suppressed and the header is written as given.
func WriteHeader(buf []uint32, h Header, validate bool) (int, error) {
	if len(buf) < 1 {
		return 0, ErrBufferSize
	}
	if validate {
		if err := h.validate(); err != nil {
			return 0, err
		}
	}

	var w uint32
	bitsSet(&w, 31, 28, uint32(h.Type))
	if h.HasClassID {
		bitsSet(&w, 27, 27, 1)
	}
	if h.HasTrailer {
		bitsSet(&w, 26, 26, 1)
	}
	bitsSet(&w, 25, 25, uint32(h.TSM))
	// bit 24 is reserved, always written zero.
	bitsSet(&w, 23, 22, uint32(h.TSI))
	bitsSet(&w, 21, 20, uint32(h.TSF))
	bitsSet(&w, 19, 16, uint32(h.PacketCount))
	bitsSet(&w, 15, 0, uint32(h.PacketSize))

	buf[0] = w
	return 1, nil
}

// ReadHeader decodes buf[0] into a Header. Returns 1 (words consumed) or an
// error. When validate is false, reserved-bit and field-range errors are
// suppressed.
func ReadHeader(buf []uint32, validate bool) (Header, int, error) {
	if len(buf) < 1 {
		return Header{}, 0, ErrBufferSize
	}
	w := buf[0]

	h := Header{
		Type:        Type(bitsGet(w, 31, 28)),
		HasClassID:  bitsGet(w, 27, 27) != 0,
		HasTrailer:  bitsGet(w, 26, 26) != 0,
		TSM:         TSM(bitsGet(w, 25, 25)),
		TSI:         TSI(bitsGet(w, 23, 22)),
		TSF:         TSF(bitsGet(w, 21, 20)),
		PacketCount: uint8(bitsGet(w, 19, 16)),
		PacketSize:  uint16(bitsGet(w, 15, 0)),
	}

	if validate {
		if bitsGet(w, headerReservedBit, headerReservedBit) != 0 {
			return h, 0, ErrReserved
		}
		if err := h.validate(); err != nil {
			return h, 0, err
		}
	}

	return h, 1, nil
}
