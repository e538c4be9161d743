package dovi

// RPUDataHeader holds the RPU header fields in grammar order. Conditional
// fields keep their zero value when the gating flags exclude them; the
// gating conditions are the has* methods below, consulted identically by
// the decode and encode paths.
type RPUDataHeader struct {
	RPUNalPrefix uint8  // 8 bits, always 25
	RPUType      uint8  // 6 bits
	RPUFormat    uint16 // 11 bits

	// Present when RPUType == 2.
	VDRRPUProfile        uint8 // 4 bits
	VDRRPULevel          uint8 // 4 bits
	VDRSeqInfoPresent    bool
	VDRDMMetadataPresent bool
	UsePrevVDRRPU        bool

	// Sequence information, gated by VDRSeqInfoPresent.
	ChromaResamplingExplicitFilter bool
	CoefficientDataType            uint8  // 2 bits
	CoefficientLog2Denom           uint64 // ue, fixed-point coefficients only
	VDRRPUNormalizedIDC            uint8  // 2 bits
	BLVideoFullRange               bool

	// Bit depth block, additionally gated by an enhancement-layer format
	// (RPUFormat & 0x700 == 0).
	BLBitDepthMinus8          uint64 // ue
	ELBitDepthMinus8          uint64 // ue
	VDRBitDepthMinus8         uint64 // ue
	SpatialResamplingFilter   bool
	ReservedZero3Bits         uint8 // 3 bits
	ELSpatialResamplingFilter bool
	DisableResidual           bool

	// Exactly one of the two ids is coded, selected by UsePrevVDRRPU.
	PrevVDRRPUID uint64 // ue
	VDRRPUID     uint64 // ue

	MappingColorSpace      uint64 // ue
	MappingChromaFormatIDC uint64 // ue

	// Reshaping pivots per component. PredPivotValue[c] has
	// NumPivotsMinus2[c]+2 entries of BLBitDepth() bits each.
	NumPivotsMinus2 [3]uint64
	PredPivotValue  [3][]uint64

	// NLQ signalling, present only for residual-coded streams.
	NLQMethodIDC       uint8 // 3 bits
	NLQNumPivotsMinus2 uint8 // implicit, always 0
	NLQPredPivotValue  [2]uint64

	NumXPartitionsMinus1 uint64 // ue
	NumYPartitionsMinus1 uint64 // ue
}

// NLQ method ids.
const (
	NLQLinearDeadzone = 0
	NLQMu             = 1
)

const rpuNalPrefixValue = 25

// hasVDRFields reports whether the per-profile field block follows the
// fixed prefix.
func (h *RPUDataHeader) hasVDRFields() bool {
	return h.RPUType == 2
}

// hasELFormat reports whether the stream format carries an enhancement
// layer, which adds the bit-depth/residual block to the header.
func (h *RPUDataHeader) hasELFormat() bool {
	return h.RPUFormat&0x700 == 0
}

// hasNLQSignalling reports whether the header codes the NLQ method and
// predicted pivots: enhancement-layer formats with residual coding on.
func (h *RPUDataHeader) hasNLQSignalling() bool {
	return h.hasELFormat() && !h.DisableResidual
}

// hasFixedPointCoefs reports whether mapping/NLQ coefficients are coded as
// integer+fraction pairs of CoefficientLog2Denom bits.
func (h *RPUDataHeader) hasFixedPointCoefs() bool {
	return h.CoefficientDataType == 0
}

// BLBitDepth returns the base-layer bit depth.
func (h *RPUDataHeader) BLBitDepth() int {
	return int(h.BLBitDepthMinus8) + 8
}

// ELBitDepth returns the enhancement-layer bit depth.
func (h *RPUDataHeader) ELBitDepth() int {
	return int(h.ELBitDepthMinus8) + 8
}

func parseHeader(fr *fieldReader, warn *warningList) (RPUDataHeader, *ParseError) {
	var h RPUDataHeader

	h.RPUNalPrefix = uint8(fr.bits(8))
	if fr.err == nil && h.RPUNalPrefix != rpuNalPrefixValue {
		return h, parseErrf(ErrInvalidProfileCombination, 0,
			"rpu_nal_prefix=%d, want %d", h.RPUNalPrefix, rpuNalPrefixValue)
	}

	h.RPUType = uint8(fr.bits(6))
	h.RPUFormat = uint16(fr.bits(11))

	if !h.hasVDRFields() {
		// The presence of every later field hangs off rpu_type, so an
		// unknown type leaves the rest of the payload undecodable.
		if fr.err != nil {
			return h, fr.err
		}
		return h, parseErrf(ErrInvalidProfileCombination, fr.r.ByteOffset(),
			"unsupported rpu_type=%d", h.RPUType)
	}

	h.VDRRPUProfile = uint8(fr.bits(4))
	h.VDRRPULevel = uint8(fr.bits(4))
	h.VDRSeqInfoPresent = fr.flag()

	if h.VDRSeqInfoPresent {
		h.ChromaResamplingExplicitFilter = fr.flag()
		h.CoefficientDataType = uint8(fr.bits(2))
		if h.hasFixedPointCoefs() {
			h.CoefficientLog2Denom = fr.ue()
		}
		h.VDRRPUNormalizedIDC = uint8(fr.bits(2))
		h.BLVideoFullRange = fr.flag()

		if h.hasELFormat() {
			h.BLBitDepthMinus8 = fr.ue()
			h.ELBitDepthMinus8 = fr.ue()
			h.VDRBitDepthMinus8 = fr.ue()
			h.SpatialResamplingFilter = fr.flag()
			h.ReservedZero3Bits = uint8(fr.bits(3))
			if fr.err == nil && h.ReservedZero3Bits != 0 {
				warn.addf(ErrProfileBlockInconsistency, fr.r.ByteOffset(),
					"reserved_zero_3bits=%d", h.ReservedZero3Bits)
			}
			h.ELSpatialResamplingFilter = fr.flag()
			h.DisableResidual = fr.flag()
		}
	}

	h.VDRDMMetadataPresent = fr.flag()
	h.UsePrevVDRRPU = fr.flag()

	if h.UsePrevVDRRPU {
		h.PrevVDRRPUID = fr.ue()
		return h, fr.err
	}

	h.VDRRPUID = fr.ue()
	h.MappingColorSpace = fr.ue()
	h.MappingChromaFormatIDC = fr.ue()

	for c := 0; c < 3; c++ {
		h.NumPivotsMinus2[c] = fr.ue()
		if fr.err != nil {
			return h, fr.err
		}
		if h.NumPivotsMinus2[c] > maxPivots-2 {
			return h, parseErrf(ErrValueRange, fr.r.ByteOffset(),
				"num_pivots_minus2[%d]=%d exceeds limit", c, h.NumPivotsMinus2[c])
		}
		pivots := make([]uint64, h.NumPivotsMinus2[c]+2)
		for i := range pivots {
			pivots[i] = fr.bits(h.BLBitDepth())
		}
		h.PredPivotValue[c] = pivots
	}

	if h.hasNLQSignalling() {
		h.NLQMethodIDC = uint8(fr.bits(3))
		h.NLQNumPivotsMinus2 = 0
		for i := range h.NLQPredPivotValue {
			h.NLQPredPivotValue[i] = fr.bits(h.ELBitDepth())
		}
	}

	h.NumXPartitionsMinus1 = fr.ue()
	h.NumYPartitionsMinus1 = fr.ue()

	return h, fr.err
}

// maxPivots bounds the per-component pivot count so a hostile ue value
// cannot drive a huge allocation before the reads start failing.
const maxPivots = 1 << 8

func writeHeader(fw *fieldWriter, h *RPUDataHeader) *ParseError {
	fw.bits(uint64(h.RPUNalPrefix), 8, "rpu_nal_prefix")
	fw.bits(uint64(h.RPUType), 6, "rpu_type")
	fw.bits(uint64(h.RPUFormat), 11, "rpu_format")

	if !h.hasVDRFields() {
		return fw.err
	}

	fw.bits(uint64(h.VDRRPUProfile), 4, "vdr_rpu_profile")
	fw.bits(uint64(h.VDRRPULevel), 4, "vdr_rpu_level")
	fw.flag(h.VDRSeqInfoPresent)

	if h.VDRSeqInfoPresent {
		fw.flag(h.ChromaResamplingExplicitFilter)
		fw.bits(uint64(h.CoefficientDataType), 2, "coefficient_data_type")
		if h.hasFixedPointCoefs() {
			fw.ue(h.CoefficientLog2Denom, "coefficient_log2_denom")
		}
		fw.bits(uint64(h.VDRRPUNormalizedIDC), 2, "vdr_rpu_normalized_idc")
		fw.flag(h.BLVideoFullRange)

		if h.hasELFormat() {
			fw.ue(h.BLBitDepthMinus8, "bl_bit_depth_minus8")
			fw.ue(h.ELBitDepthMinus8, "el_bit_depth_minus8")
			fw.ue(h.VDRBitDepthMinus8, "vdr_bit_depth_minus8")
			fw.flag(h.SpatialResamplingFilter)
			fw.bits(uint64(h.ReservedZero3Bits), 3, "reserved_zero_3bits")
			fw.flag(h.ELSpatialResamplingFilter)
			fw.flag(h.DisableResidual)
		}
	}

	fw.flag(h.VDRDMMetadataPresent)
	fw.flag(h.UsePrevVDRRPU)

	if h.UsePrevVDRRPU {
		fw.ue(h.PrevVDRRPUID, "prev_vdr_rpu_id")
		return fw.err
	}

	fw.ue(h.VDRRPUID, "vdr_rpu_id")
	fw.ue(h.MappingColorSpace, "mapping_color_space")
	fw.ue(h.MappingChromaFormatIDC, "mapping_chroma_format_idc")

	for c := 0; c < 3; c++ {
		fw.ue(h.NumPivotsMinus2[c], "num_pivots_minus2")
		if fw.err != nil {
			return fw.err
		}
		if uint64(len(h.PredPivotValue[c])) != h.NumPivotsMinus2[c]+2 {
			return parseErrf(ErrValueRange, fw.w.Len()>>3,
				"component %d has %d pivot values, header declares %d",
				c, len(h.PredPivotValue[c]), h.NumPivotsMinus2[c]+2)
		}
		for _, p := range h.PredPivotValue[c] {
			fw.bits(p, h.BLBitDepth(), "pred_pivot_value")
		}
	}

	if h.hasNLQSignalling() {
		fw.bits(uint64(h.NLQMethodIDC), 3, "nlq_method_idc")
		for _, p := range h.NLQPredPivotValue {
			fw.bits(p, h.ELBitDepth(), "nlq_pred_pivot_value")
		}
	}

	fw.ue(h.NumXPartitionsMinus1, "num_x_partitions_minus1")
	fw.ue(h.NumYPartitionsMinus1, "num_y_partitions_minus1")

	return fw.err
}
