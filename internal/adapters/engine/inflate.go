package engine

import (
	"bytes"
	"encoding/binary"

	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/pkg/checksum"
)

// inflateSession decodes one framed deflate stream: container header, body,
// container trailer. The deflate body is decoded by an inflatePump; the
// session owns header parsing, dictionary negotiation, checksum verification
// and the introspection surface.
type inflateSession struct {
	params      domain.CompressionParams
	framing     domain.Framing
	wantFraming domain.Framing

	readChunk    int
	pendingLimit int

	state int

	hdrBuf   []byte
	gzParser *gzipHeaderParser
	dictID   uint32
	dict     []byte

	pump *inflatePump

	// primed raw streams shift every input byte, so fed bytes are staged
	// through the inserter instead of being handed to the pump directly.
	primer   *bitInserter
	primeBuf bytes.Buffer

	adler   uint32
	crc     uint32
	isize   uint32
	history []byte

	trailer     []byte
	trailerNeed int

	bodyIn   int64
	syncAt   bool
	syncSkip int

	ended bool
	msg   string
}

const (
	stateHeader = iota
	stateDict
	stateBody
	stateTrailer
	stateDone
)

func newInflateSession(params domain.CompressionParams, framing domain.Framing, readChunk, pendingLimit int) *inflateSession {
	s := &inflateSession{
		params:       params,
		framing:      framing,
		wantFraming:  framing,
		readChunk:    readChunk,
		pendingLimit: pendingLimit,
		adler:        checksum.AdlerInit,
	}
	if framing == domain.FramingRaw {
		s.state = stateBody
	}
	return s
}

// Step feeds in to the decoder and fills out with decompressed bytes.
// Consumed is honest: header and trailer bytes are counted exactly and body
// bytes only once the decoder pulls them, so unconsumed input can be
// re-presented on the next call. The flush mode is accepted for contract
// symmetry; inflate ignores it.
func (s *inflateSession) Step(in, out []byte, flush domain.FlushMode) (int, int, domain.Status) {
	if s.ended {
		return 0, 0, domain.StatusStreamError
	}
	s.syncAt = false

	consumed, produced := 0, 0
	for {
		switch s.state {
		case stateHeader:
			n, st := s.consumeHeader(in[consumed:])
			consumed += n
			if st != domain.StatusOK {
				return consumed, produced, st
			}
			if s.state == stateHeader || s.state == stateDict {
				// Header incomplete or waiting on a dictionary.
				if s.state == stateDict {
					return consumed, produced, domain.StatusNeedDict
				}
				return s.finishStep(consumed, produced)
			}

		case stateDict:
			return consumed, produced, domain.StatusNeedDict

		case stateBody:
			if s.pump == nil {
				s.pump = newInflatePump(s.dict, s.readChunk, s.pendingLimit)
			}

			feed := in[consumed:]
			if s.primer != nil {
				// Shift new bytes through the inserter; everything fed this
				// way counts as consumed immediately.
				s.primer.write(feed)
				if flush == domain.FlushFinish {
					s.primer.close()
				}
				consumed += len(feed)
				feed = s.primeBuf.Bytes()
			}

			cn, pn, done, err := s.pump.run(feed, out[produced:])
			if s.primer != nil {
				s.primeBuf.Next(cn)
			} else {
				consumed += cn
			}
			s.bodyIn += int64(cn)
			s.trackOutput(out[produced : produced+pn])
			produced += pn

			if err != nil {
				s.msg = err.Error()
				return consumed, produced, domain.StatusDataError
			}
			if done {
				s.pump.close()
				s.enterTrailer()
				continue
			}
			return s.finishStep(consumed, produced)

		case stateTrailer:
			need := s.trailerNeed - len(s.trailer)
			take := len(in) - consumed
			if take > need {
				take = need
			}
			s.trailer = append(s.trailer, in[consumed:consumed+take]...)
			consumed += take
			if len(s.trailer) < s.trailerNeed {
				return s.finishStep(consumed, produced)
			}
			if st := s.checkTrailer(); st != domain.StatusOK {
				return consumed, produced, st
			}
			s.state = stateDone

		case stateDone:
			return consumed, produced, domain.StatusStreamEnd
		}
	}
}

// finishStep decides between OK and the no-progress buffer signal.
func (s *inflateSession) finishStep(consumed, produced int) (int, int, domain.Status) {
	if consumed == 0 && produced == 0 {
		return 0, 0, domain.StatusBufError
	}
	return consumed, produced, domain.StatusOK
}

func (s *inflateSession) consumeHeader(in []byte) (int, domain.Status) {
	switch s.framing {
	case domain.FramingAuto:
		if len(in) == 0 {
			return 0, domain.StatusOK
		}
		if in[0] == 0x1f {
			s.framing = domain.FramingGzip
		} else {
			s.framing = domain.FramingZlib
		}
		return s.consumeHeader(in)

	case domain.FramingGzip:
		if s.gzParser == nil {
			s.gzParser = &gzipHeaderParser{}
		}
		n, st := s.gzParser.consume(in)
		if st != domain.StatusOK {
			s.msg = s.gzParser.msg
			return n, st
		}
		if s.gzParser.done() {
			s.state = stateBody
		}
		return n, domain.StatusOK

	default: // zlib
		return s.consumeZlibHeader(in)
	}
}

func (s *inflateSession) consumeZlibHeader(in []byte) (int, domain.Status) {
	n := 0
	for len(s.hdrBuf) < 2 && n < len(in) {
		s.hdrBuf = append(s.hdrBuf, in[n])
		n++
	}
	if len(s.hdrBuf) < 2 {
		return n, domain.StatusOK
	}

	cmf, flg := s.hdrBuf[0], s.hdrBuf[1]
	if cmf&0x0f != domain.MethodDeflated {
		s.msg = "unknown compression method"
		return n, domain.StatusDataError
	}
	if cmf>>4 > 7 {
		s.msg = "invalid window size"
		return n, domain.StatusDataError
	}
	if (uint16(cmf)<<8|uint16(flg))%31 != 0 {
		s.msg = "incorrect header check"
		return n, domain.StatusDataError
	}

	if flg&0x20 == 0 {
		s.state = stateBody
		return n, domain.StatusOK
	}

	// FDICT: collect the dictionary id, then either verify a proactively
	// supplied dictionary or signal need-dictionary.
	for len(s.hdrBuf) < 6 && n < len(in) {
		s.hdrBuf = append(s.hdrBuf, in[n])
		n++
	}
	if len(s.hdrBuf) < 6 {
		return n, domain.StatusOK
	}
	s.dictID = binary.BigEndian.Uint32(s.hdrBuf[2:6])

	if s.dict != nil {
		if checksum.Adler32(s.dict) != s.dictID {
			s.msg = "incorrect dictionary"
			return n, domain.StatusDataError
		}
		s.state = stateBody
		return n, domain.StatusOK
	}
	s.state = stateDict
	return n, domain.StatusOK
}

func (s *inflateSession) trackOutput(out []byte) {
	if len(out) == 0 {
		return
	}
	switch s.framing {
	case domain.FramingZlib:
		s.adler = checksum.Adler32Update(s.adler, out)
	case domain.FramingGzip:
		s.crc = checksum.CRC32Update(s.crc, out)
		s.isize += uint32(len(out))
	}
	s.history = appendWindow(s.history, out)
}

func (s *inflateSession) enterTrailer() {
	switch s.framing {
	case domain.FramingZlib:
		s.trailerNeed = 4
		s.state = stateTrailer
	case domain.FramingGzip:
		s.trailerNeed = 8
		s.state = stateTrailer
	default:
		s.state = stateDone
	}
}

func (s *inflateSession) checkTrailer() domain.Status {
	switch s.framing {
	case domain.FramingZlib:
		if binary.BigEndian.Uint32(s.trailer) != s.adler {
			s.msg = "incorrect data check"
			return domain.StatusDataError
		}
	case domain.FramingGzip:
		if binary.LittleEndian.Uint32(s.trailer[0:4]) != s.crc {
			s.msg = "incorrect data check"
			return domain.StatusDataError
		}
		if binary.LittleEndian.Uint32(s.trailer[4:8]) != s.isize {
			s.msg = "incorrect length check"
			return domain.StatusDataError
		}
	}
	return domain.StatusOK
}

// SetDictionary installs a preset dictionary. Valid reactively while the
// stream is waiting on its dictionary id, or proactively before the body
// starts for raw and zlib framings. Gzip has no dictionary field.
func (s *inflateSession) SetDictionary(dict []byte) domain.Status {
	if s.ended || len(dict) == 0 {
		return domain.StatusStreamError
	}

	switch s.state {
	case stateDict:
		if checksum.Adler32(dict) != s.dictID {
			s.msg = "incorrect dictionary"
			return domain.StatusDataError
		}
		s.dict = append([]byte(nil), dict...)
		s.state = stateBody
		return domain.StatusOK

	case stateHeader, stateBody:
		if s.framing == domain.FramingGzip || s.pump != nil {
			return domain.StatusStreamError
		}
		s.dict = append([]byte(nil), dict...)
		return domain.StatusOK

	default:
		return domain.StatusStreamError
	}
}

// Dictionary returns the current history window, matching what a paired
// compressor would need to resume with.
func (s *inflateSession) Dictionary() ([]byte, domain.Status) {
	if s.ended {
		return nil, domain.StatusStreamError
	}
	return append([]byte(nil), s.history...), domain.StatusOK
}

// Header returns the gzip header record populated so far.
func (s *inflateSession) Header() (*domain.GzipHeader, domain.Status) {
	if s.ended {
		return nil, domain.StatusStreamError
	}
	if s.framing != domain.FramingGzip && s.framing != domain.FramingAuto {
		return nil, domain.StatusStreamError
	}
	if s.gzParser == nil {
		return &domain.GzipHeader{}, domain.StatusOK
	}
	hdr := s.gzParser.header
	if hdr.Extra != nil {
		hdr.Extra = append([]byte(nil), hdr.Extra...)
	}
	return &hdr, domain.StatusOK
}

// Prime preloads bits into the bit accumulator, as if already read from the
// input. Raw framing only, before any body byte has been consumed.
func (s *inflateSession) Prime(bits, value int) domain.Status {
	if s.ended || s.framing != domain.FramingRaw || s.pump != nil {
		return domain.StatusStreamError
	}
	if bits < 0 || bits > 16 || value < 0 {
		return domain.StatusStreamError
	}
	if s.primer == nil {
		s.primer = newBitInserter(&s.primeBuf)
	}
	s.primer.insert(uint(bits), uint32(value))
	return domain.StatusOK
}

// Sync scans for a 00 00 FF FF full-flush boundary, using zlib's rolling
// match so the pattern may straddle calls. On success the decoder restarts
// at the boundary, seeded with the current history window.
func (s *inflateSession) Sync(in []byte) (int, domain.Status) {
	if s.ended {
		return 0, domain.StatusStreamError
	}

	for i := 0; i < len(in); i++ {
		b := in[i]
		var want byte
		if s.syncSkip >= 2 {
			want = 0xff
		}
		switch {
		case b == want:
			s.syncSkip++
		case b != 0:
			s.syncSkip = 0
		default:
			s.syncSkip = 4 - s.syncSkip
		}

		if s.syncSkip == 4 {
			s.restartAtBoundary()
			return i + 1, domain.StatusOK
		}
	}
	return len(in), domain.StatusBufError
}

func (s *inflateSession) restartAtBoundary() {
	if s.pump != nil {
		s.pump.close()
	}
	var dict []byte
	if len(s.history) > 0 {
		dict = append([]byte(nil), s.history...)
	}
	s.pump = newInflatePump(dict, s.readChunk, s.pendingLimit)
	s.state = stateBody
	s.syncSkip = 0
	s.syncAt = true
	s.msg = ""
}

// SyncPoint reports whether the last Sync call located a boundary.
func (s *inflateSession) SyncPoint() bool { return s.syncAt }

// Mark returns the count of body bytes consumed, shifted into zlib's
// inflateMark layout. Byte-granular in this engine.
func (s *inflateSession) Mark() int64 { return s.bodyIn << 16 }

// CodesUsed is not tracked by the flate backend.
func (s *inflateSession) CodesUsed() uint64 { return 0 }

// Reset returns the session to the pre-header state, keeping the bound
// parameters and any preset dictionary.
func (s *inflateSession) Reset() domain.Status {
	if s.ended {
		return domain.StatusStreamError
	}
	if s.pump != nil {
		s.pump.close()
		s.pump = nil
	}
	s.framing = s.wantFraming
	s.state = stateHeader
	if s.framing == domain.FramingRaw {
		s.state = stateBody
	}
	s.hdrBuf = nil
	s.gzParser = nil
	s.dictID = 0
	s.primer = nil
	s.primeBuf.Reset()
	s.adler = checksum.AdlerInit
	s.crc = 0
	s.isize = 0
	s.history = nil
	s.trailer = nil
	s.trailerNeed = 0
	s.bodyIn = 0
	s.syncAt = false
	s.syncSkip = 0
	s.msg = ""
	return domain.StatusOK
}

// ResetWindowBits resets the session under a new window-bits value.
func (s *inflateSession) ResetWindowBits(windowBits int) domain.Status {
	if s.ended {
		return domain.StatusStreamError
	}
	framing, _, ok := domain.ParseWindowBits(windowBits, true)
	if !ok {
		return domain.StatusStreamError
	}
	s.params.WindowBits = windowBits
	s.wantFraming = framing
	return s.Reset()
}

// End releases the session.
func (s *inflateSession) End() domain.Status {
	if s.ended {
		return domain.StatusStreamError
	}
	if s.pump != nil {
		s.pump.close()
		s.pump = nil
	}
	s.ended = true
	return domain.StatusOK
}

// Message returns the last diagnostic string.
func (s *inflateSession) Message() string { return s.msg }
