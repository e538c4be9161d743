package dovi

import (
	"github.com/llehouerou/go-dovi/internal/bits"
)

// fieldReader wraps a bits.Reader with a sticky error so grammar
// functions can read a run of fields and check once. The first failure
// wins and is annotated with the byte offset at which it occurred.
type fieldReader struct {
	r   *bits.Reader
	err *ParseError
}

func (fr *fieldReader) fail(err error) {
	if fr.err != nil {
		return
	}
	fr.err = parseErr(ErrBitstreamUnderrun, fr.r.ByteOffset(), err.Error())
}

func (fr *fieldReader) bits(n int) uint64 {
	if fr.err != nil {
		return 0
	}
	v, err := fr.r.ReadBits(n)
	if err != nil {
		fr.fail(err)
		return 0
	}
	return v
}

func (fr *fieldReader) flag() bool {
	return fr.bits(1) == 1
}

func (fr *fieldReader) ue() uint64 {
	if fr.err != nil {
		return 0
	}
	v, err := fr.r.ReadUE()
	if err != nil {
		fr.fail(err)
		return 0
	}
	return v
}

func (fr *fieldReader) se() int64 {
	if fr.err != nil {
		return 0
	}
	v, err := fr.r.ReadSE()
	if err != nil {
		fr.fail(err)
		return 0
	}
	return v
}

// fieldWriter mirrors fieldReader on the encode path. Failures here mean
// an in-memory field value cannot be represented in its declared width.
type fieldWriter struct {
	w   *bits.Writer
	err *ParseError
}

func (fw *fieldWriter) failf(format string, args ...any) {
	if fw.err != nil {
		return
	}
	fw.err = parseErrf(ErrValueRange, fw.w.Len()>>3, format, args...)
}

func (fw *fieldWriter) bits(v uint64, n int, field string) {
	if fw.err != nil {
		return
	}
	if err := fw.w.WriteBits(v, n); err != nil {
		fw.failf("%s=%d does not fit in %d bits", field, v, n)
	}
}

func (fw *fieldWriter) flag(b bool) {
	if b {
		fw.bits(1, 1, "flag")
	} else {
		fw.bits(0, 1, "flag")
	}
}

func (fw *fieldWriter) ue(v uint64, field string) {
	if fw.err != nil {
		return
	}
	if err := fw.w.WriteUE(v); err != nil {
		fw.failf("%s=%d is not exp-golomb codable", field, v)
	}
}

func (fw *fieldWriter) se(v int64, field string) {
	if fw.err != nil {
		return
	}
	if err := fw.w.WriteSE(v); err != nil {
		fw.failf("%s=%d is not exp-golomb codable", field, v)
	}
}
