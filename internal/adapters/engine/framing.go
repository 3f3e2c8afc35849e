package engine

import (
	"encoding/binary"

	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/pkg/checksum"
)

// zlibHeader builds the RFC 1950 stream header. dictID is the adler32 of
// the preset dictionary, or zero when none. CINFO is always 7: the flate
// backend matches across a full 32KB window regardless of the requested
// history bits, and the header must describe the window decoders need.
func zlibHeader(level int, strategy domain.Strategy, dictID uint32) []byte {
	cmf := byte(domain.MethodDeflated) | byte(domain.WindowBitsMax-8)<<4

	// FLEVEL mirrors zlib's choice: it is advisory only and ignored by
	// decoders.
	var flevel byte
	switch {
	case strategy >= domain.StrategyHuffman || (level >= 0 && level < 2):
		flevel = 0
	case level != domain.LevelDefault && level < 6:
		flevel = 1
	case level == domain.LevelDefault || level == 6:
		flevel = 2
	default:
		flevel = 3
	}

	flg := flevel << 6
	if dictID != 0 {
		flg |= 0x20
	}
	rem := (uint16(cmf)<<8 | uint16(flg)) % 31
	if rem != 0 {
		flg += byte(31 - rem)
	}

	hdr := []byte{cmf, flg}
	if dictID != 0 {
		hdr = binary.BigEndian.AppendUint32(hdr, dictID)
	}
	return hdr
}

// gzipHeaderBytes builds the RFC 1952 member header from a header record.
// A nil record produces the minimal 10-byte header zlib writes by default.
func gzipHeaderBytes(h *domain.GzipHeader, level int) []byte {
	var flg byte
	if h != nil {
		if h.Text {
			flg |= 0x01
		}
		if h.HeaderCRC {
			flg |= 0x02
		}
		if len(h.Extra) > 0 {
			flg |= 0x04
		}
		if h.Name != "" {
			flg |= 0x08
		}
		if h.Comment != "" {
			flg |= 0x10
		}
	}

	var mtime uint32
	if h != nil && !h.ModTime.IsZero() {
		mtime = uint32(h.ModTime.Unix())
	}

	xfl := byte(0)
	switch level {
	case domain.LevelBestCompression:
		xfl = 2
	case domain.LevelBestSpeed:
		xfl = 4
	}
	if h != nil && h.ExtraFlags != 0 {
		xfl = h.ExtraFlags
	}

	os := domain.OSUnix
	if h != nil && h.OS != 0 {
		os = h.OS
	}

	hdr := []byte{0x1f, 0x8b, domain.MethodDeflated, flg}
	hdr = binary.LittleEndian.AppendUint32(hdr, mtime)
	hdr = append(hdr, xfl, os)

	if h != nil {
		if len(h.Extra) > 0 {
			hdr = binary.LittleEndian.AppendUint16(hdr, uint16(len(h.Extra)))
			hdr = append(hdr, h.Extra...)
		}
		if h.Name != "" {
			hdr = append(hdr, h.Name...)
			hdr = append(hdr, 0)
		}
		if h.Comment != "" {
			hdr = append(hdr, h.Comment...)
			hdr = append(hdr, 0)
		}
		if h.HeaderCRC {
			crc := checksum.CRC32(hdr)
			hdr = binary.LittleEndian.AppendUint16(hdr, uint16(crc))
		}
	}
	return hdr
}
