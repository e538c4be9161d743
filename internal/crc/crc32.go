// Package crc implements the 32-bit checksum protecting RPU payloads.
//
// The format uses CRC-32 with polynomial 0x04C11DB7 in its MSB-first,
// non-reflected form (initial value 0xFFFFFFFF, no final XOR). This is the
// MPEG-2 variant; hash/crc32 only implements reflected variants and cannot
// produce these values.
package crc

import "sync"

// Poly is the generator polynomial, MSB-first.
const Poly = 0x04C11DB7

var (
	tableOnce sync.Once
	table     [256]uint32
)

// The table is a pure function of Poly, built once and read-only
// afterwards, so concurrent Checksum calls need no locking.
func initTable() {
	for i := range table {
		c := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if c&0x80000000 != 0 {
				c = c<<1 ^ Poly
			} else {
				c <<= 1
			}
		}
		table[i] = c
	}
}

// Checksum computes the CRC over p.
func Checksum(p []byte) uint32 {
	tableOnce.Do(initTable)
	c := uint32(0xFFFFFFFF)
	for _, b := range p {
		c = c<<8 ^ table[byte(c>>24)^b]
	}
	return c
}
