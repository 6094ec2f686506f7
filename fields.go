package vrt

// ClassIdentifier determines data origin.
type ClassIdentifier struct {
	OUI                  uint32 // only the low 24 bits are meaningful
	InformationClassCode uint16
	PacketClassCode      uint16
}

// Fields is the prelude between the header and the body: Stream ID, class
// ID, and the integer/fractional timestamps, each conditionally present
// per the header's flags.
type Fields struct {
	StreamID                 uint32
	ClassID                  ClassIdentifier
	IntegerSecondsTimestamp  uint32
	FractionalSecondsTimestamp uint64
}

const picosecondsPerSecond = 1_000_000_000_000

func validateFields(h Header, f Fields) *Error {
	if f.ClassID.OUI > 0x00FFFFFF {
		return ErrBoundsOUI
	}
	if h.TSF == TSFRealTime && f.FractionalSecondsTimestamp >= picosecondsPerSecond {
		return ErrBoundsRealTime
	}
	return nil
}

// WriteFields encodes f into buf according to h's presence flags. Returns
// the number of words written (FieldsWords(h)) or an error.
func WriteFields(buf []uint32, h Header, f Fields, validate bool) (int, error) {
	n := FieldsWords(h)
	if len(buf) < n {
		return 0, ErrBufferSize
	}
	if validate {
		if err := validateFields(h, f); err != nil {
			return 0, err
		}
	}

	pos := 0
	if h.Type.HasStreamID() {
		buf[pos] = f.StreamID
		pos++
	}
	if h.HasClassID {
		var w0 uint32
		bitsSet(&w0, 23, 0, f.ClassID.OUI)
		buf[pos] = w0
		var w1 uint32
		bitsSet(&w1, 31, 16, uint32(f.ClassID.InformationClassCode))
		bitsSet(&w1, 15, 0, uint32(f.ClassID.PacketClassCode))
		buf[pos+1] = w1
		pos += 2
	}
	if h.TSI != TSINone {
		buf[pos] = f.IntegerSecondsTimestamp
		pos++
	}
	if h.TSF != TSFNone {
		buf[pos] = uint32(f.FractionalSecondsTimestamp >> 32)
		buf[pos+1] = uint32(f.FractionalSecondsTimestamp)
		pos += 2
	}
	return pos, nil
}

// ReadFields decodes buf according to h's presence flags. Returns the
// number of words consumed (FieldsWords(h)) or an error.
func ReadFields(buf []uint32, h Header, validate bool) (Fields, int, error) {
	n := FieldsWords(h)
	if len(buf) < n {
		return Fields{}, 0, ErrBufferSize
	}

	var f Fields
	pos := 0
	if h.Type.HasStreamID() {
		f.StreamID = buf[pos]
		pos++
	}
	if h.HasClassID {
		w0 := buf[pos]
		w1 := buf[pos+1]
		if validate && bitsGet(w0, 31, 24) != 0 {
			return f, 0, ErrReserved
		}
		f.ClassID.OUI = bitsGet(w0, 23, 0)
		f.ClassID.InformationClassCode = uint16(bitsGet(w1, 31, 16))
		f.ClassID.PacketClassCode = uint16(bitsGet(w1, 15, 0))
		pos += 2
	}
	if h.TSI != TSINone {
		f.IntegerSecondsTimestamp = buf[pos]
		pos++
	}
	if h.TSF != TSFNone {
		f.FractionalSecondsTimestamp = uint64(buf[pos])<<32 | uint64(buf[pos+1])
		pos += 2
	}

	if validate {
		if err := validateFields(h, f); err != nil {
			return f, 0, err
		}
	}

	return f, pos, nil
}
