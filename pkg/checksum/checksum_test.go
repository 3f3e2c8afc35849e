package checksum

import (
	"hash/adler32"
	"hash/crc32"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdler32KnownVectors(t *testing.T) {
	require.Equal(t, uint32(1), Adler32(nil))
	require.Equal(t, uint32(0x11E60398), Adler32([]byte("Wikipedia")))
}

func TestCRC32KnownVector(t *testing.T) {
	require.Equal(t, uint32(0xCBF43926), CRC32([]byte("123456789")))
}

func TestAdler32MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, size := range []int{0, 1, 31, 5552, 5553, 65536, 200000} {
		data := make([]byte, size)
		rng.Read(data)
		require.Equal(t, adler32.Checksum(data), Adler32(data), "size %d", size)
	}
}

func TestCRC32MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	data := make([]byte, 100000)
	rng.Read(data)
	require.Equal(t, crc32.ChecksumIEEE(data), CRC32(data))
}

func TestAdler32Update(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	sum := uint32(AdlerInit)
	for _, b := range data {
		sum = Adler32Update(sum, []byte{b})
	}
	require.Equal(t, Adler32(data), sum)
}

func TestAdler32Combine(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	whole := make([]byte, 70000)
	rng.Read(whole)

	for _, split := range []int{0, 1, 100, 5552, 35000, 69999, 70000} {
		a, b := whole[:split], whole[split:]
		combined := Adler32Combine(Adler32(a), Adler32(b), int64(len(b)))
		require.Equal(t, Adler32(whole), combined, "split %d", split)
	}
}

func TestCRC32Combine(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	whole := make([]byte, 70000)
	rng.Read(whole)

	for _, split := range []int{0, 1, 100, 35000, 69999, 70000} {
		a, b := whole[:split], whole[split:]
		combined := CRC32Combine(CRC32(a), CRC32(b), int64(len(b)))
		require.Equal(t, CRC32(whole), combined, "split %d", split)
	}
}
