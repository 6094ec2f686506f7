package vrt

// Word-size accounting: given a header, IF context, or packet value,
// compute the exact number of 32-bit words each section occupies. Reader
// and writer both use these as the single source of truth for section
// offsets. Grounded on vrt_words.c / vrt_util_internal.c.

// FieldsWords returns the number of words the fields prelude occupies for
// the given header.
func FieldsWords(h Header) int {
	words := 0
	if h.Type.HasStreamID() {
		words++
	}
	if h.HasClassID {
		words += 2
	}
	if h.TSI != TSINone {
		words++
	}
	if h.TSF != TSFNone {
		words += 2
	}
	return words
}

// TrailerWords returns the number of words the trailer occupies: 0 for
// context packets (which cannot have one), else 1 if HasTrailer is set.
func TrailerWords(h Header) int {
	if h.Type.IsContext() {
		return 0
	}
	if h.HasTrailer {
		return 1
	}
	return 0
}

// ifContextIndicatorWords returns the word count contributed by the 21
// fixed-size subsections (everything but GPS ASCII and the association
// lists), plus the mandatory indicator word itself.
func ifContextIndicatorWords(ind IFContextIndicators) int {
	words := 1
	add := func(present bool, n int) {
		if present {
			words += n
		}
	}
	add(ind.ReferencePointIdentifier, 1)
	add(ind.Bandwidth, 2)
	add(ind.IFReferenceFrequency, 2)
	add(ind.RFReferenceFrequency, 2)
	add(ind.RFReferenceFrequencyOffset, 2)
	add(ind.IFBandOffset, 2)
	add(ind.ReferenceLevel, 1)
	add(ind.Gain, 1)
	add(ind.OverRangeCount, 1)
	add(ind.SampleRate, 2)
	add(ind.TimestampAdjustment, 2)
	add(ind.TimestampCalibrationTime, 1)
	add(ind.Temperature, 1)
	add(ind.DeviceIdentifier, 2)
	add(ind.StateAndEventIndicators, 1)
	add(ind.DataPacketPayloadFormat, 2)
	add(ind.FormattedGPSGeolocation, 11)
	add(ind.FormattedINSGeolocation, 11)
	add(ind.ECEFEphemeris, 13)
	add(ind.RelativeEphemeris, 13)
	add(ind.EphemerisReferenceIdentifier, 1)
	return words
}

// IFContextWords returns the total number of words the IF context section
// occupies, including the variable-length GPS ASCII and context
// association lists subsections.
func IFContextWords(ctx IFContext) int {
	words := ifContextIndicatorWords(ctx.Has)

	if ctx.Has.GPSASCII {
		words += 2
		words += int(ctx.GPSASCII.NumberOfWords & 0x00FFFFFF)
	}
	if ctx.Has.ContextAssociationLists {
		cal := ctx.ContextAssociationLists
		sz1 := int(cal.SourceListSize & 0x01FF)
		sz2 := int(cal.SystemListSize & 0x01FF)
		sz3 := int(cal.VectorComponentListSize)
		sz4 := int(cal.AsyncChannelListSize & 0x7FFF)

		words += 2
		words += sz1
		words += sz2
		words += sz3
		if cal.HasAsyncChannelTagList {
			words += sz4
		}
		words += sz4
	}
	return words
}

// PacketWords returns the total number of 32-bit words the packet occupies:
// 1 (header) + fields + body + (trailer or IF context, whichever applies).
func PacketWords(p Packet) int {
	words := 1 + FieldsWords(p.Header) + len(p.Body)
	switch {
	case p.Header.Type == IFContext:
		words += IFContextWords(p.IFContext)
	default:
		words += TrailerWords(p.Header)
	}
	return words
}
