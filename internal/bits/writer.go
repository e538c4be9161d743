package bits

import "math/bits"

// Writer accumulates bits MSB-first into a growing byte buffer.
//
// Writes never fail for capacity reasons; the only error condition is a
// value that does not fit the requested width, which indicates an
// inconsistent in-memory record rather than bad input.
type Writer struct {
	buf  []byte
	free int // unwritten bits in the last byte of buf (0-7)
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bits written so far.
func (w *Writer) Len() int {
	return 8*len(w.buf) - w.free
}

// IsAligned reports whether the write position sits on a byte boundary.
func (w *Writer) IsAligned() bool {
	return w.free == 0
}

// Bytes returns the accumulated buffer. Unwritten bits in the final byte
// are zero. The slice aliases the Writer's storage.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteBits appends the low n bits of v, MSB-first. It returns ErrWidth
// when n exceeds 64 or v does not fit in n bits.
func (w *Writer) WriteBits(v uint64, n int) error {
	if n < 0 || n > 64 {
		return ErrWidth
	}
	if n < 64 && v >= 1<<n {
		return ErrWidth
	}

	for n > 0 {
		if w.free == 0 {
			w.buf = append(w.buf, 0)
			w.free = 8
		}
		take := w.free
		if take > n {
			take = n
		}
		chunk := byte(v >> (n - take) & (1<<take - 1))
		w.buf[len(w.buf)-1] |= chunk << (w.free - take)
		w.free -= take
		n -= take
	}

	return nil
}

// WriteFlag appends a single bit.
func (w *Writer) WriteFlag(b bool) error {
	if b {
		return w.WriteBits(1, 1)
	}
	return w.WriteBits(0, 1)
}

// WriteUE appends v as an unsigned Exp-Golomb code. Values above the
// 32-leading-zero ceiling the Reader accepts are rejected.
func (w *Writer) WriteUE(v uint64) error {
	if v == 0 {
		return w.WriteBits(1, 1)
	}
	if v > 1<<33-2 {
		return ErrExpGolomb
	}
	width := bits.Len64(v + 1)
	if err := w.WriteBits(0, width-1); err != nil {
		return err
	}
	return w.WriteBits(v+1, width)
}

// WriteSE appends v as a signed Exp-Golomb code.
func (w *Writer) WriteSE(v int64) error {
	if v > 0 {
		return w.WriteUE(uint64(2*v - 1))
	}
	return w.WriteUE(uint64(-2 * v))
}

// AlignZero pads with zero bits to the next byte boundary.
func (w *Writer) AlignZero() {
	w.free = 0
}

// WriteMarker appends the stream terminator: a single one bit followed by
// zero padding to the byte boundary. On an aligned writer this emits the
// 0x80 marker byte.
func (w *Writer) WriteMarker() {
	_ = w.WriteBits(1, 1)
	w.AlignZero()
}
