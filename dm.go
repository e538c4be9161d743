package dovi

// VDRDMData is the display-management metadata container: the static
// signal description and color transform matrices, followed by the
// ordered extension block sequence. Present only when the header sets
// vdr_dm_metadata_present_flag.
type VDRDMData struct {
	AffectedDMMetadataID uint64 // ue
	CurrentDMMetadataID  uint64 // ue
	SceneRefreshFlag     uint64 // ue

	YCCToRGBCoef   [9]int16  // 16 bits each
	YCCToRGBOffset [3]uint32 // 32 bits each
	RGBToLMSCoef   [9]int16  // 16 bits each

	SignalEOTF       uint16 // 16 bits
	SignalEOTFParam0 uint16 // 16 bits
	SignalEOTFParam1 uint16 // 16 bits
	SignalEOTFParam2 uint32 // 32 bits

	SignalBitDepth     uint8 // 5 bits
	SignalColorSpace   uint8 // 2 bits
	SignalChromaFormat uint8 // 2 bits
	SignalFullRange    uint8 // 2 bits

	SourceMinPQ    uint16 // 12 bits
	SourceMaxPQ    uint16 // 12 bits
	SourceDiagonal uint16 // 10 bits

	// Blocks in stream encounter order. The coded block count is derived
	// from this slice on serialization, so the two cannot disagree.
	Blocks []ExtMetadataBlock
}

// BlocksForLevel returns the blocks with the given level id, in
// encounter order.
func (d *VDRDMData) BlocksForLevel(level uint8) []ExtMetadataBlock {
	var out []ExtMetadataBlock
	for _, b := range d.Blocks {
		if b.Level() == level {
			out = append(out, b)
		}
	}
	return out
}

// FirstBlock returns the first block with the given level id, or nil.
func (d *VDRDMData) FirstBlock(level uint8) ExtMetadataBlock {
	for _, b := range d.Blocks {
		if b.Level() == level {
			return b
		}
	}
	return nil
}

// maxExtBlocks bounds the declared block count; the payload of a single
// NAL unit cannot hold more.
const maxExtBlocks = 1 << 12

func parseDMData(fr *fieldReader, warn *warningList) (*VDRDMData, *ParseError) {
	d := &VDRDMData{}

	d.AffectedDMMetadataID = fr.ue()
	d.CurrentDMMetadataID = fr.ue()
	d.SceneRefreshFlag = fr.ue()

	for i := range d.YCCToRGBCoef {
		d.YCCToRGBCoef[i] = int16(fr.bits(16))
	}
	for i := range d.YCCToRGBOffset {
		d.YCCToRGBOffset[i] = uint32(fr.bits(32))
	}
	for i := range d.RGBToLMSCoef {
		d.RGBToLMSCoef[i] = int16(fr.bits(16))
	}

	d.SignalEOTF = uint16(fr.bits(16))
	d.SignalEOTFParam0 = uint16(fr.bits(16))
	d.SignalEOTFParam1 = uint16(fr.bits(16))
	d.SignalEOTFParam2 = uint32(fr.bits(32))

	d.SignalBitDepth = uint8(fr.bits(5))
	d.SignalColorSpace = uint8(fr.bits(2))
	d.SignalChromaFormat = uint8(fr.bits(2))
	d.SignalFullRange = uint8(fr.bits(2))

	d.SourceMinPQ = uint16(fr.bits(12))
	d.SourceMaxPQ = uint16(fr.bits(12))
	d.SourceDiagonal = uint16(fr.bits(10))

	numBlocks := fr.ue()
	if fr.err != nil {
		return nil, fr.err
	}
	if numBlocks > maxExtBlocks {
		return nil, parseErrf(ErrMalformedBlockLength, fr.r.ByteOffset(),
			"num_ext_blocks=%d exceeds limit", numBlocks)
	}

	if numBlocks > 0 {
		pad, err := fr.r.Align()
		if err != nil {
			return nil, parseErr(ErrBitstreamUnderrun, fr.r.ByteOffset(), err.Error())
		}
		if pad != 0 {
			return nil, parseErrf(ErrUnalignedPayload, fr.r.ByteOffset(),
				"dm_alignment_zero_bit=%b", pad)
		}

		d.Blocks = make([]ExtMetadataBlock, 0, numBlocks)
		for i := uint64(0); i < numBlocks; i++ {
			b, perr := parseExtBlock(fr, warn)
			if perr != nil {
				return nil, perr
			}
			d.Blocks = append(d.Blocks, b)
		}
	}

	return d, fr.err
}

func writeDMData(fw *fieldWriter, d *VDRDMData) *ParseError {
	fw.ue(d.AffectedDMMetadataID, "affected_dm_metadata_id")
	fw.ue(d.CurrentDMMetadataID, "current_dm_metadata_id")
	fw.ue(d.SceneRefreshFlag, "scene_refresh_flag")

	for _, c := range d.YCCToRGBCoef {
		fw.bits(uint64(uint16(c)), 16, "ycc_to_rgb_coef")
	}
	for _, o := range d.YCCToRGBOffset {
		fw.bits(uint64(o), 32, "ycc_to_rgb_offset")
	}
	for _, c := range d.RGBToLMSCoef {
		fw.bits(uint64(uint16(c)), 16, "rgb_to_lms_coef")
	}

	fw.bits(uint64(d.SignalEOTF), 16, "signal_eotf")
	fw.bits(uint64(d.SignalEOTFParam0), 16, "signal_eotf_param0")
	fw.bits(uint64(d.SignalEOTFParam1), 16, "signal_eotf_param1")
	fw.bits(uint64(d.SignalEOTFParam2), 32, "signal_eotf_param2")

	fw.bits(uint64(d.SignalBitDepth), 5, "signal_bit_depth")
	fw.bits(uint64(d.SignalColorSpace), 2, "signal_color_space")
	fw.bits(uint64(d.SignalChromaFormat), 2, "signal_chroma_format")
	fw.bits(uint64(d.SignalFullRange), 2, "signal_full_range_flag")

	fw.bits(uint64(d.SourceMinPQ), 12, "source_min_pq")
	fw.bits(uint64(d.SourceMaxPQ), 12, "source_max_pq")
	fw.bits(uint64(d.SourceDiagonal), 10, "source_diagonal")

	fw.ue(uint64(len(d.Blocks)), "num_ext_blocks")
	if fw.err != nil {
		return fw.err
	}

	if len(d.Blocks) > 0 {
		fw.w.AlignZero()
		for _, b := range d.Blocks {
			if perr := writeExtBlock(fw, b); perr != nil {
				return perr
			}
		}
	}

	return fw.err
}
