package crc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{
			// CRC-32/MPEG-2 catalog check value.
			name: "check string",
			data: []byte("123456789"),
			want: 0x0376E6E7,
		},
		{
			name: "empty input",
			data: nil,
			want: 0xFFFFFFFF,
		},
		{
			name: "single zero byte",
			data: []byte{0x00},
			want: crcOneByte(0x00),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Checksum(tt.data))
		})
	}
}

// crcOneByte reproduces the single-byte update independently of the
// lookup table, bit by bit. There is no final inversion in this variant.
func crcOneByte(b byte) uint32 {
	c := uint32(0xFFFFFFFF)
	c ^= uint32(b) << 24
	for i := 0; i < 8; i++ {
		if c&0x80000000 != 0 {
			c = c<<1 ^ Poly
		} else {
			c <<= 1
		}
	}
	return c
}

func TestChecksum_BitSensitivity(t *testing.T) {
	base := []byte{0x02, 0x11, 0x80, 0x00, 0x40}
	sum := Checksum(base)

	// Any single-bit flip must change the checksum.
	for i := range base {
		for bit := 0; bit < 8; bit++ {
			mutated := append([]byte(nil), base...)
			mutated[i] ^= 1 << bit
			assert.NotEqualf(t, sum, Checksum(mutated), "byte %d bit %d", i, bit)
		}
	}
}

func TestChecksum_Concurrent(t *testing.T) {
	data := []byte("concurrent checksum input")
	want := Checksum(data)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Checksum(data))
		}()
	}
	wg.Wait()
}
