package domain

import "time"

// GzipHeader is the caller-facing view of the RFC 1952 member header.
//
// On the compression side the record is attached to a session before the
// first step; the engine copies every field, so the caller may reuse the
// backing slices immediately. On the decompression side the engine fills a
// record incrementally as header bytes arrive from the stream; Done reports
// when the header has been fully consumed.
type GzipHeader struct {
	// Text hints that the payload is probably text (FTEXT flag).
	Text bool

	// ModTime is the modification time of the original file. The zero time
	// is encoded as MTIME=0 (no time stamp available).
	ModTime time.Time

	// ExtraFlags is the XFL byte. When writing, a zero value lets the engine
	// derive it from the compression level (2 for best compression, 4 for
	// fastest).
	ExtraFlags byte

	// OS identifies the originating operating system. OSUnix by default;
	// OSUnknown (255) when reading a header that carried no useful value.
	OS byte

	// Extra holds the raw FEXTRA field bytes, without the length prefix.
	Extra []byte

	// Name is the original file name, NUL-terminated Latin-1 on the wire.
	Name string

	// Comment is a free-form file comment, NUL-terminated Latin-1 on the wire.
	Comment string

	// HeaderCRC requests (write side) or records (read side) the FHCRC
	// 16-bit header checksum.
	HeaderCRC bool

	// Done is set by the decompressor once the complete header, including
	// any header CRC, has been consumed from the input stream.
	Done bool
}

// Gzip OS codes used by this package.
const (
	OSUnix    byte = 3
	OSUnknown byte = 255
)
