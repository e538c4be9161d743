// Package bits provides bit-level reading and writing over byte buffers.
//
// The RPU grammar is a bit-oriented syntax with no field-presence tags, so
// every consumer walks the stream through an explicit cursor. A Reader or
// Writer owns its buffer for the duration of one parse or serialize call
// and is never shared between goroutines.
package bits

import "errors"

// Reader errors.
var (
	// ErrUnderrun is returned when a read would go past the end of the
	// buffer. Truncated input must surface as an error, never as
	// zero-filled data.
	ErrUnderrun = errors.New("bits: read past end of buffer")

	// ErrWidth is returned when a requested bit width exceeds 64.
	ErrWidth = errors.New("bits: bit width exceeds 64")

	// ErrExpGolomb is returned when an Exp-Golomb code is malformed
	// (more than 32 leading zero bits).
	ErrExpGolomb = errors.New("bits: malformed exp-golomb code")
)

// Reader reads bits MSB-first from a byte buffer.
//
// The cursor position is explicit state on the value, so parsing is
// reentrant: concurrent parses each construct their own Reader.
type Reader struct {
	buf []byte
	pos int // bit position from the start of buf
}

// NewReader creates a Reader over data. The Reader does not copy the
// buffer; the caller must not mutate it during reading.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Position returns the current bit offset from the start of the buffer.
func (r *Reader) Position() int {
	return r.pos
}

// ByteOffset returns the byte offset containing the current bit position.
// Used to report where in the payload a structural error occurred.
func (r *Reader) ByteOffset() int {
	return r.pos >> 3
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return 8*len(r.buf) - r.pos
}

// IsAligned reports whether the cursor sits on a byte boundary.
func (r *Reader) IsAligned() bool {
	return r.pos&7 == 0
}

// ReadBits reads n bits (n <= 64) and returns them as an unsigned integer.
func (r *Reader) ReadBits(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, ErrWidth
	}
	if r.pos+n > 8*len(r.buf) {
		return 0, ErrUnderrun
	}

	var v uint64
	left := n

	// Partial leading byte.
	if off := r.pos & 7; off != 0 {
		avail := 8 - off
		take := avail
		if take > left {
			take = left
		}
		b := r.buf[r.pos>>3]
		v = uint64(b>>(avail-take)) & (1<<take - 1)
		r.pos += take
		left -= take
	}

	// Whole bytes.
	for left >= 8 {
		v = v<<8 | uint64(r.buf[r.pos>>3])
		r.pos += 8
		left -= 8
	}

	// Trailing bits.
	if left > 0 {
		b := r.buf[r.pos>>3]
		v = v<<left | uint64(b>>(8-left))
		r.pos += left
	}

	return v, nil
}

// ReadFlag reads a single bit as a boolean.
func (r *Reader) ReadFlag() (bool, error) {
	v, err := r.ReadBits(1)
	return v == 1, err
}

// ReadUE reads an unsigned Exp-Golomb coded value: leadingZeroBits zeros,
// a one bit, then leadingZeroBits suffix bits.
func (r *Reader) ReadUE() (uint64, error) {
	leadingZeros := 0
	for {
		b, err := r.ReadBits(1)
		if err != nil {
			return 0, err
		}
		if b == 1 {
			break
		}
		leadingZeros++
		if leadingZeros > 32 {
			return 0, ErrExpGolomb
		}
	}
	if leadingZeros == 0 {
		return 0, nil
	}
	suffix, err := r.ReadBits(leadingZeros)
	if err != nil {
		return 0, err
	}
	return 1<<leadingZeros - 1 + suffix, nil
}

// ReadSE reads a signed Exp-Golomb coded value: the unsigned code k maps
// to (k+1)/2 when odd and -(k/2) when even.
func (r *Reader) ReadSE() (int64, error) {
	k, err := r.ReadUE()
	if err != nil {
		return 0, err
	}
	if k&1 == 1 {
		return int64(k+1) / 2, nil
	}
	return -int64(k / 2), nil
}

// SkipBits advances the cursor by n bits without interpreting them.
func (r *Reader) SkipBits(n int) error {
	if n < 0 {
		return ErrWidth
	}
	if r.pos+n > 8*len(r.buf) {
		return ErrUnderrun
	}
	r.pos += n
	return nil
}

// Align advances the cursor to the next byte boundary and returns the
// value of the skipped padding bits. Callers that require zero padding
// check the returned value.
func (r *Reader) Align() (uint64, error) {
	pad := (8 - r.pos&7) & 7
	if pad == 0 {
		return 0, nil
	}
	return r.ReadBits(pad)
}
