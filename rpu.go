package dovi

import (
	"fmt"

	"github.com/llehouerou/go-dovi/internal/bits"
	"github.com/llehouerou/go-dovi/internal/crc"
)

// Options controls parse strictness.
type Options struct {
	// Strict promotes validation findings (CRC mismatch, profile/block
	// inconsistency, unsupported level ids) to errors. The default is
	// lenient: findings are collected on the record and the parse
	// succeeds, so imperfect streams can still be ingested.
	Strict bool
}

// RPU is one parsed Reference Processing Unit payload. It is a
// self-contained value: every field is copied out of the input buffer,
// which may be reused as soon as Parse returns.
type RPU struct {
	Header  RPUDataHeader
	Mapping *RPUDataMapping // nil when the header reuses a previous RPU
	NLQ     *NLQData        // nil unless the profile carries residual data
	DM      *VDRDMData      // nil when no DM metadata is present

	// StoredCRC is the checksum read from the stream. Serialize always
	// recomputes; this is kept for inspection only.
	StoredCRC uint32

	warnings []ParseError
}

// Profile derives the encoding profile from the header flags.
func (r *RPU) Profile() Profile {
	return Classify(&r.Header)
}

// Warnings returns the validation findings collected during a lenient
// parse, in detection order.
func (r *RPU) Warnings() []ParseError {
	return r.warnings
}

// warningList accumulates validation findings during one parse.
type warningList struct {
	items []ParseError
}

func (w *warningList) addf(kind ErrorKind, offset int, format string, args ...any) {
	w.items = append(w.items, ParseError{
		Kind:   kind,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	})
}

// The trailing fixed-size tail of every payload: the 32-bit CRC and the
// marker byte.
const payloadTailBytes = 5

// Parse decodes one RPU payload leniently. See ParseWithOptions.
func Parse(data []byte) (*RPU, error) {
	return ParseWithOptions(data, Options{})
}

// ParseWithOptions decodes one RPU payload: header, reshaping functions,
// NLQ residual parameters, display-management metadata, CRC validation
// and the trailing marker. Structural errors abort with the byte offset
// of the fault; validation findings end up in Warnings, or fail the call
// when opts.Strict is set.
func ParseWithOptions(data []byte, opts Options) (*RPU, error) {
	if len(data) < payloadTailBytes+4 {
		return nil, parseErrf(ErrBitstreamUnderrun, len(data),
			"payload of %d bytes cannot hold an RPU", len(data))
	}

	var warn warningList
	fr := &fieldReader{r: bits.NewReader(data)}

	header, perr := parseHeader(fr, &warn)
	if perr != nil {
		return nil, perr
	}

	rpu := &RPU{Header: header}
	h := &rpu.Header

	if !h.UsePrevVDRRPU {
		if rpu.Mapping, perr = parseMapping(fr, h); perr != nil {
			return nil, perr
		}
		if h.hasNLQSignalling() {
			if rpu.NLQ, perr = parseNLQ(fr, h); perr != nil {
				return nil, perr
			}
		}
	}
	if h.VDRDMMetadataPresent {
		if rpu.DM, perr = parseDMData(fr, &warn); perr != nil {
			return nil, perr
		}
	}

	pad, err := fr.r.Align()
	if err != nil {
		return nil, parseErr(ErrBitstreamUnderrun, fr.r.ByteOffset(), err.Error())
	}
	if pad != 0 {
		return nil, parseErrf(ErrUnalignedPayload, fr.r.ByteOffset(),
			"rpu_alignment_zero_bit=%b", pad)
	}

	crcOffset := fr.r.ByteOffset()
	stored := fr.bits(32)
	marker := fr.bits(8)
	if fr.err != nil {
		return nil, fr.err
	}
	rpu.StoredCRC = uint32(stored)

	if marker != 0x80 {
		return nil, parseErrf(ErrMissingMarker, crcOffset+4,
			"trailing byte 0x%02X, want 0x80", marker)
	}
	if fr.r.Remaining() > 0 {
		warn.addf(ErrProfileBlockInconsistency, fr.r.ByteOffset(),
			"%d bits of trailing data after the marker byte", fr.r.Remaining())
	}

	// The CRC covers everything after the prefix byte up to, but not
	// including, the checksum itself.
	if computed := crc.Checksum(data[1:crcOffset]); computed != rpu.StoredCRC {
		warn.addf(ErrCRCMismatch, crcOffset,
			"stored 0x%08X, computed 0x%08X", rpu.StoredCRC, computed)
	}

	validateProfile(rpu, &warn)

	rpu.warnings = warn.items
	if opts.Strict && len(warn.items) > 0 {
		return rpu, &warn.items[0]
	}
	return rpu, nil
}

// Serialize encodes the record back into a payload buffer, recomputing
// the CRC over the freshly produced bytes and appending the marker byte.
// A record whose optional sections disagree with its header flags, or
// whose field values overflow their bit widths, fails the call.
func (r *RPU) Serialize() ([]byte, error) {
	h := &r.Header

	if !h.UsePrevVDRRPU && r.Mapping == nil {
		return nil, parseErr(ErrValueRange, 0, "header requires mapping data but the record has none")
	}
	if h.hasNLQSignalling() && !h.UsePrevVDRRPU && r.NLQ == nil {
		return nil, parseErr(ErrValueRange, 0, "header requires NLQ data but the record has none")
	}
	if h.VDRDMMetadataPresent && r.DM == nil {
		return nil, parseErr(ErrValueRange, 0, "header declares DM metadata but the record has none")
	}

	fw := &fieldWriter{w: bits.NewWriter()}

	if perr := writeHeader(fw, h); perr != nil {
		return nil, perr
	}
	if !h.UsePrevVDRRPU {
		if perr := writeMapping(fw, h, r.Mapping); perr != nil {
			return nil, perr
		}
		if h.hasNLQSignalling() {
			if perr := writeNLQ(fw, h, r.NLQ); perr != nil {
				return nil, perr
			}
		}
	}
	if h.VDRDMMetadataPresent {
		if perr := writeDMData(fw, r.DM); perr != nil {
			return nil, perr
		}
	}

	fw.w.AlignZero()
	sum := crc.Checksum(fw.w.Bytes()[1:])
	fw.bits(uint64(sum), 32, "rpu_data_crc32")
	fw.bits(0x80, 8, "trailing marker")
	if fw.err != nil {
		return nil, fw.err
	}

	return fw.w.Bytes(), nil
}

// RoundTrip parses data, re-serializes the record unchanged and compares
// the result byte-for-byte against the input. It is the self-check used
// by validation tooling to detect asymmetry between the read and write
// paths.
func RoundTrip(data []byte) error {
	rpu, err := Parse(data)
	if err != nil {
		return err
	}
	out, err := rpu.Serialize()
	if err != nil {
		return err
	}
	if len(out) != len(data) {
		return fmt.Errorf("dovi: round trip produced %d bytes, input had %d", len(out), len(data))
	}
	for i := range out {
		if out[i] != data[i] {
			return fmt.Errorf("dovi: round trip mismatch at byte %d: 0x%02X != 0x%02X",
				i, out[i], data[i])
		}
	}
	return nil
}
