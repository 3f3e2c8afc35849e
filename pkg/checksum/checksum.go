// Package checksum provides the rolling adler32 and crc32 checksums used by
// the zlib and gzip containers, plus the combine operation for merging two
// checksums computed over adjacent regions without re-scanning the data.
package checksum

import "hash/crc32"

const (
	// adlerMod is the largest prime smaller than 65536.
	adlerMod = 65521

	// adlerNMax is the largest n such that 255*n*(n+1)/2 + (n+1)*(adlerMod-1)
	// fits in 32 bits, allowing the inner loop to defer the modulo.
	adlerNMax = 5552

	// AdlerInit is the seed value for an empty adler32 checksum.
	AdlerInit uint32 = 1
)

var crcTable = crc32.MakeTable(crc32.IEEE)

// Adler32 computes the adler32 checksum of data.
func Adler32(data []byte) uint32 {
	return Adler32Update(AdlerInit, data)
}

// Adler32Update extends an adler32 checksum with more data.
func Adler32Update(adler uint32, data []byte) uint32 {
	s1 := adler & 0xffff
	s2 := (adler >> 16) & 0xffff

	for len(data) > 0 {
		n := len(data)
		if n > adlerNMax {
			n = adlerNMax
		}
		for _, b := range data[:n] {
			s1 += uint32(b)
			s2 += s1
		}
		s1 %= adlerMod
		s2 %= adlerMod
		data = data[n:]
	}

	return s2<<16 | s1
}

// Adler32Combine merges the checksums of two adjacent byte regions: given
// adler1 = Adler32(a) and adler2 = Adler32(b), it returns Adler32(a ++ b).
// len2 is len(b).
func Adler32Combine(adler1, adler2 uint32, len2 int64) uint32 {
	if len2 < 0 {
		return 0xffffffff
	}

	// The s1 sums simply add; each of the len2 new bytes also re-adds the
	// first region's s1 into s2.
	rem := uint32(len2 % adlerMod)
	sum1 := adler1 & 0xffff
	sum2 := (rem * sum1) % adlerMod
	sum1 += (adler2 & 0xffff) + adlerMod - 1
	sum2 += ((adler1 >> 16) & 0xffff) + ((adler2 >> 16) & 0xffff) + adlerMod - rem

	if sum1 >= adlerMod {
		sum1 -= adlerMod
	}
	if sum1 >= adlerMod {
		sum1 -= adlerMod
	}
	if sum2 >= adlerMod<<1 {
		sum2 -= adlerMod << 1
	}
	if sum2 >= adlerMod {
		sum2 -= adlerMod
	}

	return sum2<<16 | sum1
}

// CRC32 computes the IEEE crc32 checksum of data.
func CRC32(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// CRC32Update extends a crc32 checksum with more data.
func CRC32Update(crc uint32, data []byte) uint32 {
	return crc32.Update(crc, crcTable, data)
}

// CRC32Combine merges the checksums of two adjacent byte regions: given
// crc1 = CRC32(a) and crc2 = CRC32(b), it returns CRC32(a ++ b). len2 is
// len(b).
//
// Appending len2 zero bytes to region a is a linear operation over GF(2), so
// crc1 can be advanced past region b by repeated squaring of the "shift one
// zero bit" matrix, then xored with crc2.
func CRC32Combine(crc1, crc2 uint32, len2 int64) uint32 {
	if len2 <= 0 {
		return crc1 ^ crc2
	}

	var even, odd [32]uint32

	// odd = the matrix for advancing one bit: a conditional xor with the
	// reflected polynomial, then a right shift.
	odd[0] = 0xedb88320
	row := uint32(1)
	for n := 1; n < 32; n++ {
		odd[n] = row
		row <<= 1
	}

	// even = advance 2 bits, odd = advance 4 bits.
	gf2MatrixSquare(&even, &odd)
	gf2MatrixSquare(&odd, &even)

	// Advance crc1 past len2 zero bytes, one squaring per bit of len2.
	for {
		gf2MatrixSquare(&even, &odd)
		if len2&1 != 0 {
			crc1 = gf2MatrixTimes(&even, crc1)
		}
		len2 >>= 1
		if len2 == 0 {
			break
		}

		gf2MatrixSquare(&odd, &even)
		if len2&1 != 0 {
			crc1 = gf2MatrixTimes(&odd, crc1)
		}
		len2 >>= 1
		if len2 == 0 {
			break
		}
	}

	return crc1 ^ crc2
}

func gf2MatrixTimes(mat *[32]uint32, vec uint32) uint32 {
	var sum uint32
	for i := 0; vec != 0; i++ {
		if vec&1 != 0 {
			sum ^= mat[i]
		}
		vec >>= 1
	}
	return sum
}

func gf2MatrixSquare(square, mat *[32]uint32) {
	for n := 0; n < 32; n++ {
		square[n] = gf2MatrixTimes(mat, mat[n])
	}
}
