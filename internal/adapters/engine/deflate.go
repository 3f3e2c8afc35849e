package engine

import (
	"bytes"

	"github.com/klauspost/compress/flate"

	"github.com/iamNilotpal/zstream/internal/core/domain"
	"github.com/iamNilotpal/zstream/pkg/checksum"
)

// deflateSession encodes one framed deflate stream. The flate writer emits
// into an internal pending buffer, optionally through the priming bit
// inserter; Step drains that buffer into the caller's output slice. Input is
// always accepted in full, so consumed equals len(in) and a full out buffer
// signals pending output for the next call.
type deflateSession struct {
	params  domain.CompressionParams
	framing domain.Framing

	fw  *flate.Writer
	out bytes.Buffer

	primer *bitInserter

	header *domain.GzipHeader
	dict   []byte

	history []byte
	adler   uint32
	crc     uint32
	isize   uint32

	wroteHeader bool
	started     bool
	finished    bool
	ended       bool

	tune [4]int
	msg  string
}

func newDeflateSession(params domain.CompressionParams, framing domain.Framing) (*deflateSession, error) {
	s := &deflateSession{
		params:  params,
		framing: framing,
		adler:   checksum.AdlerInit,
	}
	fw, err := flate.NewWriter(s, flateLevel(params.Level, params.Strategy))
	if err != nil {
		return nil, err
	}
	s.fw = fw
	return s, nil
}

// Write receives the flate backend's output and routes it through the prime
// inserter when one is active. Implements io.Writer for the flate writer;
// never called by users of the session.
func (s *deflateSession) Write(p []byte) (int, error) {
	if s.primer != nil {
		s.primer.write(p)
	} else {
		s.out.Write(p)
	}
	return len(p), nil
}

// Step feeds in to the encoder under the given flush mode and drains
// pending output into out.
func (s *deflateSession) Step(in, out []byte, flush domain.FlushMode) (int, int, domain.Status) {
	if s.ended {
		return 0, 0, domain.StatusStreamError
	}
	if s.finished && len(in) > 0 {
		s.msg = "stream already finished"
		return 0, 0, domain.StatusStreamError
	}

	if !s.wroteHeader {
		s.writeFramingHeader()
	}

	consumed := 0
	if len(in) > 0 {
		if _, err := s.fw.Write(in); err != nil {
			s.msg = err.Error()
			return 0, 0, domain.StatusStreamError
		}
		s.trackInput(in)
		s.started = true
		consumed = len(in)
	}

	if st := s.applyFlush(flush); st != domain.StatusOK {
		return consumed, 0, st
	}

	produced := copy(out, s.out.Bytes())
	s.out.Next(produced)

	if s.finished && s.out.Len() == 0 {
		return consumed, produced, domain.StatusStreamEnd
	}
	if consumed == 0 && produced == 0 {
		return 0, 0, domain.StatusBufError
	}
	return consumed, produced, domain.StatusOK
}

func (s *deflateSession) applyFlush(flush domain.FlushMode) domain.Status {
	if s.finished {
		return domain.StatusOK
	}

	switch flush {
	case domain.FlushNone, domain.FlushBlock, domain.FlushTrees:
		// Block/Trees boundaries are not observable through the flate
		// backend; treated as plain steps.

	case domain.FlushPartial, domain.FlushSync:
		if err := s.fw.Flush(); err != nil {
			s.msg = err.Error()
			return domain.StatusStreamError
		}

	case domain.FlushFull:
		// Byte-align, then discard the history window so decoding can
		// restart from here.
		if err := s.fw.Flush(); err != nil {
			s.msg = err.Error()
			return domain.StatusStreamError
		}
		fw, err := flate.NewWriter(s, flateLevel(s.params.Level, s.params.Strategy))
		if err != nil {
			s.msg = err.Error()
			return domain.StatusStreamError
		}
		s.fw = fw
		s.history = nil

	case domain.FlushFinish:
		if err := s.fw.Close(); err != nil {
			s.msg = err.Error()
			return domain.StatusStreamError
		}
		if s.primer != nil {
			s.primer.close()
		}
		s.writeTrailer()
		s.finished = true

	default:
		return domain.StatusStreamError
	}
	return domain.StatusOK
}

func (s *deflateSession) writeFramingHeader() {
	switch s.framing {
	case domain.FramingZlib:
		var dictID uint32
		if s.dict != nil {
			dictID = checksum.Adler32(s.dict)
		}
		s.out.Write(zlibHeader(s.params.Level, s.params.Strategy, dictID))
	case domain.FramingGzip:
		s.out.Write(gzipHeaderBytes(s.header, s.params.Level))
	}
	s.wroteHeader = true
}

func (s *deflateSession) writeTrailer() {
	var trailer [8]byte
	switch s.framing {
	case domain.FramingZlib:
		trailer[0] = byte(s.adler >> 24)
		trailer[1] = byte(s.adler >> 16)
		trailer[2] = byte(s.adler >> 8)
		trailer[3] = byte(s.adler)
		s.out.Write(trailer[:4])
	case domain.FramingGzip:
		trailer[0] = byte(s.crc)
		trailer[1] = byte(s.crc >> 8)
		trailer[2] = byte(s.crc >> 16)
		trailer[3] = byte(s.crc >> 24)
		trailer[4] = byte(s.isize)
		trailer[5] = byte(s.isize >> 8)
		trailer[6] = byte(s.isize >> 16)
		trailer[7] = byte(s.isize >> 24)
		s.out.Write(trailer[:8])
	}
}

func (s *deflateSession) trackInput(in []byte) {
	switch s.framing {
	case domain.FramingZlib:
		s.adler = checksum.Adler32Update(s.adler, in)
	case domain.FramingGzip:
		s.crc = checksum.CRC32Update(s.crc, in)
		s.isize += uint32(len(in))
	}
	s.history = appendWindow(s.history, in)
}

// SetDictionary installs a preset dictionary. For zlib framing it must be
// set before the header is emitted, because the header advertises it; raw
// framing accepts it any time before finish and rebases matches from that
// point; gzip has no dictionary field.
func (s *deflateSession) SetDictionary(dict []byte) domain.Status {
	if s.ended || s.finished || len(dict) == 0 {
		return domain.StatusStreamError
	}

	switch s.framing {
	case domain.FramingGzip:
		return domain.StatusStreamError
	case domain.FramingZlib:
		if s.wroteHeader || s.started {
			return domain.StatusStreamError
		}
	case domain.FramingRaw:
		if s.started {
			if err := s.fw.Flush(); err != nil {
				s.msg = err.Error()
				return domain.StatusStreamError
			}
		}
	}

	fw, err := flate.NewWriterDict(s, flateLevel(s.params.Level, s.params.Strategy), dict)
	if err != nil {
		s.msg = err.Error()
		return domain.StatusStreamError
	}
	s.fw = fw
	s.dict = append([]byte(nil), dict...)
	s.history = appendWindow(s.history[:0], dict)
	return domain.StatusOK
}

// Dictionary returns the current history window contents.
func (s *deflateSession) Dictionary() ([]byte, domain.Status) {
	if s.ended {
		return nil, domain.StatusStreamError
	}
	return append([]byte(nil), s.history...), domain.StatusOK
}

// SetHeader attaches a gzip header record. The record is copied; gzip
// framing only, before the first step emits header bytes.
func (s *deflateSession) SetHeader(hdr *domain.GzipHeader) domain.Status {
	if s.ended || s.framing != domain.FramingGzip || s.wroteHeader || hdr == nil {
		return domain.StatusStreamError
	}
	clone := *hdr
	if hdr.Extra != nil {
		clone.Extra = append([]byte(nil), hdr.Extra...)
	}
	s.header = &clone
	return domain.StatusOK
}

// SetParams changes level and strategy mid-stream. The current block is
// byte-aligned and a new encoder takes over, seeded with the input history
// so the window stays continuous for the decoder.
func (s *deflateSession) SetParams(level int, strategy domain.Strategy) domain.Status {
	if s.ended || s.finished {
		return domain.StatusStreamError
	}
	if level != domain.LevelDefault &&
		(level < domain.LevelNoCompression || level > domain.LevelBestCompression) {
		return domain.StatusStreamError
	}
	if strategy < domain.StrategyDefault || strategy > domain.StrategyFixed {
		return domain.StatusStreamError
	}

	if s.started {
		if err := s.fw.Flush(); err != nil {
			s.msg = err.Error()
			return domain.StatusStreamError
		}
	}
	fw, err := flate.NewWriterDict(s, flateLevel(level, strategy), s.history)
	if err != nil {
		s.msg = err.Error()
		return domain.StatusStreamError
	}
	s.fw = fw
	s.params.Level = level
	s.params.Strategy = strategy
	return domain.StatusOK
}

// Tune validates and records the match-search knobs. The flate backend has
// no equivalents to apply them to.
func (s *deflateSession) Tune(goodLength, maxLazy, niceLength, maxChain int) domain.Status {
	if s.ended {
		return domain.StatusStreamError
	}
	if goodLength < 0 || maxLazy < 0 || niceLength < 0 || maxChain < 0 {
		return domain.StatusStreamError
	}
	s.tune = [4]int{goodLength, maxLazy, niceLength, maxChain}
	return domain.StatusOK
}

// Prime injects bits ahead of the next output. Raw framing only, before any
// output has been produced: with zlib or gzip framing the result could not
// be parsed by the paired decompressor, so the combination is rejected
// instead of silently producing an unreadable stream.
func (s *deflateSession) Prime(bits, value int) domain.Status {
	if s.ended || s.framing != domain.FramingRaw || s.started || s.out.Len() > 0 {
		return domain.StatusStreamError
	}
	if bits < 0 || bits > 16 || value < 0 {
		return domain.StatusStreamError
	}
	if s.primer == nil {
		s.primer = newBitInserter(&s.out)
	}
	s.primer.insert(uint(bits), uint32(value))
	return domain.StatusOK
}

// Pending reports output buffered but not yet drained, plus bits held by the
// prime inserter.
func (s *deflateSession) Pending() (int, int, domain.Status) {
	if s.ended {
		return 0, 0, domain.StatusStreamError
	}
	bits := 0
	if s.primer != nil {
		bits = s.primer.pendingBits()
	}
	return s.out.Len(), bits, domain.StatusOK
}

// Bound returns a worst-case compressed size for sourceLen bytes, zlib's
// compressBound shape plus the framing overhead.
func (s *deflateSession) Bound(sourceLen int) int {
	n := sourceLen
	bound := n + n>>12 + n>>14 + n>>25 + 13
	switch s.framing {
	case domain.FramingZlib:
		bound += 6
		if s.dict != nil {
			bound += 4
		}
	case domain.FramingGzip:
		bound += 18
		if s.header != nil {
			bound += len(s.header.Extra) + len(s.header.Name) + len(s.header.Comment) + 4
		}
	}
	return bound
}

// Reset returns the session to the just-initialized state, discarding
// window history, the preset dictionary and any primed bits.
func (s *deflateSession) Reset() domain.Status {
	if s.ended {
		return domain.StatusStreamError
	}
	s.out.Reset()
	s.primer = nil
	s.dict = nil
	s.history = nil
	s.adler = checksum.AdlerInit
	s.crc = 0
	s.isize = 0
	s.wroteHeader = false
	s.started = false
	s.finished = false
	s.msg = ""
	s.fw.Reset(s)
	return domain.StatusOK
}

// ResetWindowBits resets the session under a new window-bits value, which
// may also switch the framing.
func (s *deflateSession) ResetWindowBits(windowBits int) domain.Status {
	if s.ended {
		return domain.StatusStreamError
	}
	framing, _, ok := domain.ParseWindowBits(windowBits, false)
	if !ok {
		return domain.StatusStreamError
	}
	s.params.WindowBits = windowBits
	s.framing = framing
	return s.Reset()
}

// End releases the session.
func (s *deflateSession) End() domain.Status {
	if s.ended {
		return domain.StatusStreamError
	}
	s.ended = true
	s.fw = nil
	s.out.Reset()
	return domain.StatusOK
}

// Message returns the last diagnostic string.
func (s *deflateSession) Message() string { return s.msg }
