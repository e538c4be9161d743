package dovi

// First-generation display-management block layouts (levels 1-6 and the
// debug level). All PQ codes are 12-bit values on the 0-4095 scale.

// Level1Block carries the frame/scene luminance range analysis.
type Level1Block struct {
	MinPQ uint16
	MaxPQ uint16
	AvgPQ uint16
}

// Level returns the block's level id.
func (b *Level1Block) Level() uint8 { return LevelLuminanceRange }

func (b *Level1Block) payloadBytes() uint64 { return 5 }

func (b *Level1Block) decodePayload(fr *fieldReader, _ uint64) *ParseError {
	b.MinPQ = uint16(fr.bits(12))
	b.MaxPQ = uint16(fr.bits(12))
	b.AvgPQ = uint16(fr.bits(12))
	return fr.err
}

func (b *Level1Block) encodePayload(fw *fieldWriter) *ParseError {
	fw.bits(uint64(b.MinPQ), 12, "min_pq")
	fw.bits(uint64(b.MaxPQ), 12, "max_pq")
	fw.bits(uint64(b.AvgPQ), 12, "avg_pq")
	return fw.err
}

// Level2Block carries one target display's trim pass. A record may hold
// several, one per distinct TargetMaxPQ.
type Level2Block struct {
	TargetMaxPQ        uint16
	TrimSlope          uint16
	TrimOffset         uint16
	TrimPower          uint16
	TrimChromaWeight   uint16
	TrimSaturationGain uint16
	MSWeight           int16 // 13-bit two's complement
}

// Level returns the block's level id.
func (b *Level2Block) Level() uint8 { return LevelTrimPass }

func (b *Level2Block) payloadBytes() uint64 { return 11 }

func (b *Level2Block) decodePayload(fr *fieldReader, _ uint64) *ParseError {
	b.TargetMaxPQ = uint16(fr.bits(12))
	b.TrimSlope = uint16(fr.bits(12))
	b.TrimOffset = uint16(fr.bits(12))
	b.TrimPower = uint16(fr.bits(12))
	b.TrimChromaWeight = uint16(fr.bits(12))
	b.TrimSaturationGain = uint16(fr.bits(12))

	w := fr.bits(13)
	if w >= 1<<12 {
		b.MSWeight = int16(w) - 1<<13
	} else {
		b.MSWeight = int16(w)
	}
	return fr.err
}

func (b *Level2Block) encodePayload(fw *fieldWriter) *ParseError {
	fw.bits(uint64(b.TargetMaxPQ), 12, "target_max_pq")
	fw.bits(uint64(b.TrimSlope), 12, "trim_slope")
	fw.bits(uint64(b.TrimOffset), 12, "trim_offset")
	fw.bits(uint64(b.TrimPower), 12, "trim_power")
	fw.bits(uint64(b.TrimChromaWeight), 12, "trim_chroma_weight")
	fw.bits(uint64(b.TrimSaturationGain), 12, "trim_saturation_gain")
	if b.MSWeight < -(1<<12) || b.MSWeight >= 1<<12 {
		fw.failf("ms_weight=%d does not fit in 13 bits", b.MSWeight)
		return fw.err
	}
	fw.bits(uint64(b.MSWeight)&0x1FFF, 13, "ms_weight")
	return fw.err
}

// Level3Block carries offsets refining the level-1 analysis.
type Level3Block struct {
	MinPQOffset uint16
	MaxPQOffset uint16
	AvgPQOffset uint16
}

// Level returns the block's level id.
func (b *Level3Block) Level() uint8 { return LevelOffsets }

func (b *Level3Block) payloadBytes() uint64 { return 5 }

func (b *Level3Block) decodePayload(fr *fieldReader, _ uint64) *ParseError {
	b.MinPQOffset = uint16(fr.bits(12))
	b.MaxPQOffset = uint16(fr.bits(12))
	b.AvgPQOffset = uint16(fr.bits(12))
	return fr.err
}

func (b *Level3Block) encodePayload(fw *fieldWriter) *ParseError {
	fw.bits(uint64(b.MinPQOffset), 12, "min_pq_offset")
	fw.bits(uint64(b.MaxPQOffset), 12, "max_pq_offset")
	fw.bits(uint64(b.AvgPQOffset), 12, "avg_pq_offset")
	return fw.err
}

// Level4Block carries the temporal filtering anchor.
type Level4Block struct {
	AnchorPQ    uint16
	AnchorPower uint16
}

// Level returns the block's level id.
func (b *Level4Block) Level() uint8 { return LevelAnchor }

func (b *Level4Block) payloadBytes() uint64 { return 3 }

func (b *Level4Block) decodePayload(fr *fieldReader, _ uint64) *ParseError {
	b.AnchorPQ = uint16(fr.bits(12))
	b.AnchorPower = uint16(fr.bits(12))
	return fr.err
}

func (b *Level4Block) encodePayload(fw *fieldWriter) *ParseError {
	fw.bits(uint64(b.AnchorPQ), 12, "anchor_pq")
	fw.bits(uint64(b.AnchorPower), 12, "anchor_power")
	return fw.err
}

// Level5Block carries the active-area offsets (letterbox bars excluded
// from mapping), in pixels from each edge.
type Level5Block struct {
	ActiveAreaLeftOffset   uint16
	ActiveAreaRightOffset  uint16
	ActiveAreaTopOffset    uint16
	ActiveAreaBottomOffset uint16
}

// Level returns the block's level id.
func (b *Level5Block) Level() uint8 { return LevelActiveArea }

func (b *Level5Block) payloadBytes() uint64 { return 7 }

func (b *Level5Block) decodePayload(fr *fieldReader, _ uint64) *ParseError {
	b.ActiveAreaLeftOffset = uint16(fr.bits(13))
	b.ActiveAreaRightOffset = uint16(fr.bits(13))
	b.ActiveAreaTopOffset = uint16(fr.bits(13))
	b.ActiveAreaBottomOffset = uint16(fr.bits(13))
	return fr.err
}

func (b *Level5Block) encodePayload(fw *fieldWriter) *ParseError {
	fw.bits(uint64(b.ActiveAreaLeftOffset), 13, "active_area_left_offset")
	fw.bits(uint64(b.ActiveAreaRightOffset), 13, "active_area_right_offset")
	fw.bits(uint64(b.ActiveAreaTopOffset), 13, "active_area_top_offset")
	fw.bits(uint64(b.ActiveAreaBottomOffset), 13, "active_area_bottom_offset")
	return fw.err
}

// Level6Block carries the legacy static HDR10 mastering metadata.
type Level6Block struct {
	MaxDisplayMasteringLuminance uint16
	MinDisplayMasteringLuminance uint16
	MaxContentLightLevel         uint16
	MaxFrameAverageLightLevel    uint16
}

// Level returns the block's level id.
func (b *Level6Block) Level() uint8 { return LevelMasteringDisplay }

func (b *Level6Block) payloadBytes() uint64 { return 8 }

func (b *Level6Block) decodePayload(fr *fieldReader, _ uint64) *ParseError {
	b.MaxDisplayMasteringLuminance = uint16(fr.bits(16))
	b.MinDisplayMasteringLuminance = uint16(fr.bits(16))
	b.MaxContentLightLevel = uint16(fr.bits(16))
	b.MaxFrameAverageLightLevel = uint16(fr.bits(16))
	return fr.err
}

func (b *Level6Block) encodePayload(fw *fieldWriter) *ParseError {
	fw.bits(uint64(b.MaxDisplayMasteringLuminance), 16, "max_display_mastering_luminance")
	fw.bits(uint64(b.MinDisplayMasteringLuminance), 16, "min_display_mastering_luminance")
	fw.bits(uint64(b.MaxContentLightLevel), 16, "max_content_light_level")
	fw.bits(uint64(b.MaxFrameAverageLightLevel), 16, "max_frame_average_light_level")
	return fw.err
}

// Level255Block carries encoder debug values.
type Level255Block struct {
	DMRunMode    uint8
	DMRunVersion uint8
	DMDebug      [4]uint8
}

// Level returns the block's level id.
func (b *Level255Block) Level() uint8 { return LevelDebug }

func (b *Level255Block) payloadBytes() uint64 { return 6 }

func (b *Level255Block) decodePayload(fr *fieldReader, _ uint64) *ParseError {
	b.DMRunMode = uint8(fr.bits(8))
	b.DMRunVersion = uint8(fr.bits(8))
	for i := range b.DMDebug {
		b.DMDebug[i] = uint8(fr.bits(8))
	}
	return fr.err
}

func (b *Level255Block) encodePayload(fw *fieldWriter) *ParseError {
	fw.bits(uint64(b.DMRunMode), 8, "dm_run_mode")
	fw.bits(uint64(b.DMRunVersion), 8, "dm_run_version")
	for _, d := range b.DMDebug {
		fw.bits(uint64(d), 8, "dm_debug")
	}
	return fw.err
}
