package engine

import (
	"encoding/binary"
	"time"

	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/pkg/checksum"
)

// gzipHeaderParser consumes an RFC 1952 member header incrementally. It must
// make progress on arbitrarily small feeds, down to one byte per call, and
// populates the caller-facing header record field by field as bytes arrive.
type gzipHeaderParser struct {
	state   int
	fixed   [10]byte
	have    int
	flg     byte
	extra   []byte
	need    int
	text    []byte
	crc     uint32
	wantCRC bool
	header  domain.GzipHeader
	msg     string
}

const (
	gzFixed = iota
	gzExtraLen
	gzExtra
	gzName
	gzComment
	gzCRC
	gzDone
)

// consume feeds bytes to the parser. It returns the number of bytes eaten
// and a status: StatusOK while incomplete or at completion, StatusDataError
// on a malformed header.
func (p *gzipHeaderParser) consume(in []byte) (int, domain.Status) {
	n := 0
	for n < len(in) && p.state != gzDone {
		b := in[n]

		switch p.state {
		case gzFixed:
			p.fixed[p.have] = b
			p.have++
			n++
			if p.have < len(p.fixed) {
				continue
			}
			if st := p.finishFixed(); st != domain.StatusOK {
				return n, st
			}

		case gzExtraLen:
			p.extra = append(p.extra, b)
			p.crcByte(b)
			n++
			if len(p.extra) < 2 {
				continue
			}
			p.need = int(binary.LittleEndian.Uint16(p.extra))
			p.extra = p.extra[:0]
			p.advance(gzExtra)
			if p.need == 0 {
				p.header.Extra = []byte{}
				p.afterExtra()
			}

		case gzExtra:
			take := len(in) - n
			if take > p.need-len(p.extra) {
				take = p.need - len(p.extra)
			}
			p.extra = append(p.extra, in[n:n+take]...)
			p.crcBytes(in[n : n+take])
			n += take
			if len(p.extra) == p.need {
				p.header.Extra = append([]byte(nil), p.extra...)
				p.afterExtra()
			}

		case gzName:
			n++
			p.crcByte(b)
			if b == 0 {
				p.header.Name = string(p.text)
				p.text = p.text[:0]
				p.afterName()
				continue
			}
			p.text = append(p.text, b)

		case gzComment:
			n++
			p.crcByte(b)
			if b == 0 {
				p.header.Comment = string(p.text)
				p.text = p.text[:0]
				p.afterComment()
				continue
			}
			p.text = append(p.text, b)

		case gzCRC:
			p.text = append(p.text, b)
			n++
			if len(p.text) < 2 {
				continue
			}
			got := binary.LittleEndian.Uint16(p.text)
			p.text = p.text[:0]
			if got != uint16(p.crc) {
				p.msg = "header crc mismatch"
				return n, domain.StatusDataError
			}
			p.finish()
		}
	}
	return n, domain.StatusOK
}

func (p *gzipHeaderParser) done() bool { return p.state == gzDone }

func (p *gzipHeaderParser) finishFixed() domain.Status {
	if p.fixed[0] != 0x1f || p.fixed[1] != 0x8b {
		p.msg = "incorrect header check"
		return domain.StatusDataError
	}
	if p.fixed[2] != domain.MethodDeflated {
		p.msg = "unknown compression method"
		return domain.StatusDataError
	}
	p.flg = p.fixed[3]
	if p.flg&0xe0 != 0 {
		p.msg = "unknown header flags set"
		return domain.StatusDataError
	}

	p.header.Text = p.flg&0x01 != 0
	if mtime := binary.LittleEndian.Uint32(p.fixed[4:8]); mtime != 0 {
		p.header.ModTime = time.Unix(int64(mtime), 0)
	}
	p.header.ExtraFlags = p.fixed[8]
	p.header.OS = p.fixed[9]
	p.header.HeaderCRC = p.flg&0x02 != 0

	p.wantCRC = p.header.HeaderCRC
	if p.wantCRC {
		p.crc = checksum.CRC32(p.fixed[:])
	}

	switch {
	case p.flg&0x04 != 0:
		p.advance(gzExtraLen)
	default:
		p.afterExtra()
	}
	return domain.StatusOK
}

func (p *gzipHeaderParser) afterExtra() {
	if p.flg&0x08 != 0 {
		p.advance(gzName)
		return
	}
	p.afterName()
}

func (p *gzipHeaderParser) afterName() {
	if p.flg&0x10 != 0 {
		p.advance(gzComment)
		return
	}
	p.afterComment()
}

func (p *gzipHeaderParser) afterComment() {
	if p.wantCRC {
		p.advance(gzCRC)
		return
	}
	p.finish()
}

func (p *gzipHeaderParser) advance(state int) { p.state = state }

func (p *gzipHeaderParser) finish() {
	p.header.Done = true
	p.state = gzDone
}

func (p *gzipHeaderParser) crcByte(b byte) {
	if p.wantCRC {
		p.crc = checksum.CRC32Update(p.crc, []byte{b})
	}
}

func (p *gzipHeaderParser) crcBytes(b []byte) {
	if p.wantCRC && len(b) > 0 {
		p.crc = checksum.CRC32Update(p.crc, b)
	}
}
