package vrt

import "github.com/sirupsen/logrus"

// Packet is a complete VRT packet: header, fields prelude, body, and
// exactly one of trailer (data packets) or IF context (context packets).
type Packet struct {
	Header    Header
	Fields    Fields
	Body      []uint32 // sub-slice of the caller's buffer; empty for IFContext
	Trailer   Trailer
	IFContext IFContext
}

// Options controls validation and diagnostic logging for packet-level
// encode/decode. The zero value does not validate and logs nothing.
type Options struct {
	// Validate enables reserved-bit, field-range and consistency checks
	// beyond the structural checks (buffer size) that always run.
	Validate bool
	// Logger, if non-nil, receives a warning when a packet-size check
	// (total size above 0xFFFF on write, header size not matching the
	// decoded size on read) fails and is passed through because Validate is
	// false. Failures inside the header, fields, trailer or IF context
	// sections are not logged. Never used when Validate is true: in that
	// mode failures are returned as errors instead.
	Logger *logrus.Entry
}

func (o Options) warn(err error) {
	if o.Logger != nil && err != nil {
		o.Logger.WithError(err).Warn("vrt: demoted validation failure")
	}
}

// WritePacket encodes p into buf. Returns the number of words written
// (PacketWords(p)) or an error. The header's PacketSize field is
// overwritten with the computed size before encoding; callers do not need
// to precompute it.
func WritePacket(buf []uint32, p Packet, opts Options) (int, error) {
	total := PacketWords(p)
	if total > 0xFFFF {
		if opts.Validate {
			return 0, ErrBoundsPacketSize
		}
		opts.warn(ErrBoundsPacketSize)
	}
	p.Header.PacketSize = uint16(total)

	if len(buf) < total {
		return 0, ErrBufferSize
	}

	pos := 0
	n, err := WriteHeader(buf[pos:], p.Header, opts.Validate)
	if err != nil {
		return 0, err
	}
	pos += n

	n, err = WriteFields(buf[pos:], p.Header, p.Fields, opts.Validate)
	if err != nil {
		return 0, err
	}
	pos += n

	switch p.Header.Type {
	case IFContext:
		n, err = WriteIFContext(buf[pos:], p.IFContext, opts.Validate)
		if err != nil {
			return 0, err
		}
		pos += n
	default:
		pos += copy(buf[pos:pos+len(p.Body)], p.Body)
		if p.Header.HasTrailer {
			n, err = WriteTrailer(buf[pos:], p.Trailer, opts.Validate)
			if err != nil {
				return 0, err
			}
			pos += n
		}
	}

	return pos, nil
}

// ReadPacket decodes a packet from buf. buf must contain at least one full
// packet; trailing words past the decoded packet are ignored. Returns the
// number of words consumed or an error.
//
// Body, and any GPS-ASCII/association-list subsections of an IF context
// section, alias sub-slices of buf: they are not copied, and remain valid
// only as long as buf is not reused or modified.
func ReadPacket(buf []uint32, opts Options) (Packet, int, error) {
	var p Packet

	h, n, err := ReadHeader(buf, opts.Validate)
	if err != nil {
		return p, 0, err
	}
	p.Header = h
	pos := n

	f, n, err := ReadFields(buf[pos:], h, opts.Validate)
	if err != nil {
		return p, 0, err
	}
	p.Fields = f
	pos += n

	switch h.Type {
	case IFContext:
		ctx, n, err := ReadIFContext(buf[pos:], opts.Validate)
		if err != nil {
			return p, 0, err
		}
		p.IFContext = ctx
		pos += n
	default:
		bodyWords := int(h.PacketSize) - pos
		if h.HasTrailer {
			bodyWords--
		}
		if bodyWords < 0 {
			return p, 0, ErrBoundsPacketSize
		}
		if len(buf) < pos+bodyWords {
			return p, 0, ErrBufferSize
		}
		p.Body = buf[pos : pos+bodyWords]
		pos += bodyWords

		if h.HasTrailer {
			t, n, err := ReadTrailer(buf[pos:], opts.Validate)
			if err != nil {
				return p, 0, err
			}
			p.Trailer = t
			pos += n
		}
	}

	if int(h.PacketSize) != pos {
		if opts.Validate {
			return p, 0, ErrPacketSizeMismatch
		}
		opts.warn(ErrPacketSizeMismatch)
	}

	return p, pos, nil
}
