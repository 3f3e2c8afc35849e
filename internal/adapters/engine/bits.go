package engine

import "bytes"

// bitInserter prepends bits to an LSB-first bitstream and re-emits it as
// bytes. Deflate output is LSB-first, so inserting k bits at the front
// shifts every later byte up by k: each incoming byte contributes its low
// 8-k bits to the current output byte and carries the rest.
//
// This is how priming works without bit-level access to the flate backend:
// the primed bits become the low bits of the first emitted byte and the
// whole stream is shifted through.
type bitInserter struct {
	dst   *bytes.Buffer
	carry uint32
	nbits uint
}

func newBitInserter(dst *bytes.Buffer) *bitInserter {
	return &bitInserter{dst: dst}
}

// insert queues bits (low bits of value, LSB first) ahead of any bytes not
// yet written. Whole bytes are emitted immediately.
func (b *bitInserter) insert(bits uint, value uint32) {
	b.carry |= (value & (1<<bits - 1)) << b.nbits
	b.nbits += bits
	b.flushWhole()
}

// write shifts p through the inserter.
func (b *bitInserter) write(p []byte) {
	if b.nbits == 0 {
		b.dst.Write(p)
		return
	}
	for _, c := range p {
		b.carry |= uint32(c) << b.nbits
		b.dst.WriteByte(byte(b.carry))
		b.carry >>= 8
	}
}

// close pads the remaining bits to a byte boundary with zeros and emits
// them. The deflate bit reader tolerates trailing zero padding.
func (b *bitInserter) close() {
	if b.nbits == 0 {
		return
	}
	b.dst.WriteByte(byte(b.carry))
	b.carry = 0
	b.nbits = 0
}

// pendingBits reports bits queued but not yet emitted as a whole byte.
func (b *bitInserter) pendingBits() int {
	return int(b.nbits % 8)
}

func (b *bitInserter) flushWhole() {
	for b.nbits >= 8 {
		b.dst.WriteByte(byte(b.carry))
		b.carry >>= 8
		b.nbits -= 8
	}
}
