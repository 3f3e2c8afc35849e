package domain

// Framing identifies the container format wrapped around the raw deflate
// bitstream, as selected by the window-bits parameter.
type Framing int

const (
	// FramingRaw is a bare deflate bitstream with no header or trailer.
	FramingRaw Framing = iota

	// FramingZlib is the RFC 1950 container: 2-byte header, optional
	// dictionary id, adler32 trailer.
	FramingZlib

	// FramingGzip is the RFC 1952 container: structured header with optional
	// filename/comment/extra fields, crc32 + length trailer.
	FramingGzip

	// FramingAuto detects zlib vs gzip from the first input byte. Decoding
	// only.
	FramingAuto
)

// Window-bits encoding, matching zlib's deflateInit2/inflateInit2 rules:
// negative values select raw framing, 9..15 select zlib, adding
// GzipWindowOffset selects gzip, adding AutoWindowOffset selects
// auto-detection on the decode side.
const (
	WindowBitsMin     = 9
	WindowBitsDefault = 15
	WindowBitsMax     = 15
	GzipWindowOffset  = 16
	AutoWindowOffset  = 32
)

func (f Framing) String() string {
	switch f {
	case FramingRaw:
		return "raw"
	case FramingZlib:
		return "zlib"
	case FramingGzip:
		return "gzip"
	case FramingAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseWindowBits splits a window-bits value into framing and history bits.
// ok is false when the value lies outside every valid range.
func ParseWindowBits(windowBits int, decoding bool) (framing Framing, histBits int, ok bool) {
	switch {
	case windowBits >= -WindowBitsMax && windowBits <= -WindowBitsMin:
		return FramingRaw, -windowBits, true
	case windowBits >= WindowBitsMin && windowBits <= WindowBitsMax:
		return FramingZlib, windowBits, true
	case windowBits >= WindowBitsMin+GzipWindowOffset && windowBits <= WindowBitsMax+GzipWindowOffset:
		return FramingGzip, windowBits - GzipWindowOffset, true
	case decoding && windowBits >= WindowBitsMin+AutoWindowOffset && windowBits <= WindowBitsMax+AutoWindowOffset:
		return FramingAuto, windowBits - AutoWindowOffset, true
	default:
		return 0, 0, false
	}
}
