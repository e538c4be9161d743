package dovi

// Second-generation display-management block layouts (levels 8-11 and the
// version marker). Levels 8, 9 and 10 have grown trailing fields over
// format revisions; the declared block length selects which revision is
// present, and each block keeps its parsed length so re-serialization
// reproduces the original layout.

// Level8Block carries per-target-display trims. A record may hold
// several, one per distinct TargetDisplayIndex.
type Level8Block struct {
	Length uint64 // declared payload length; 0 means minimal layout

	TargetDisplayIndex uint8
	TrimSlope          uint16
	TrimOffset         uint16
	TrimPower          uint16
	TrimChromaWeight   uint16
	TrimSaturationGain uint16
	MSWeight           uint16

	// Revision extensions, outermost last.
	TargetMidContrast     uint16 // length > 10
	ClipTrim              uint16 // length > 12
	SaturationVectorField [6]uint8
	HueVectorField        [6]uint8
}

// Level returns the block's level id.
func (b *Level8Block) Level() uint8 { return LevelTargetTrims }

// payloadBytes returns the parsed length when one is recorded; for
// hand-built blocks it picks the smallest revision whose field set
// covers the populated extensions.
func (b *Level8Block) payloadBytes() uint64 {
	if b.Length != 0 {
		return b.Length
	}
	switch {
	case b.HueVectorField != [6]uint8{}:
		return 25
	case b.SaturationVectorField != [6]uint8{}:
		return 19
	case b.ClipTrim != 0:
		return 13
	case b.TargetMidContrast != 0:
		return 12
	}
	return 10
}

func (b *Level8Block) decodePayload(fr *fieldReader, length uint64) *ParseError {
	b.Length = length
	b.TargetDisplayIndex = uint8(fr.bits(8))
	b.TrimSlope = uint16(fr.bits(12))
	b.TrimOffset = uint16(fr.bits(12))
	b.TrimPower = uint16(fr.bits(12))
	b.TrimChromaWeight = uint16(fr.bits(12))
	b.TrimSaturationGain = uint16(fr.bits(12))
	b.MSWeight = uint16(fr.bits(12))

	if length > 10 {
		b.TargetMidContrast = uint16(fr.bits(12))
	}
	if length > 12 {
		b.ClipTrim = uint16(fr.bits(12))
	}
	if length > 13 {
		for i := range b.SaturationVectorField {
			b.SaturationVectorField[i] = uint8(fr.bits(8))
		}
	}
	if length > 19 {
		for i := range b.HueVectorField {
			b.HueVectorField[i] = uint8(fr.bits(8))
		}
	}
	return fr.err
}

func (b *Level8Block) encodePayload(fw *fieldWriter) *ParseError {
	length := b.payloadBytes()
	fw.bits(uint64(b.TargetDisplayIndex), 8, "target_display_index")
	fw.bits(uint64(b.TrimSlope), 12, "trim_slope")
	fw.bits(uint64(b.TrimOffset), 12, "trim_offset")
	fw.bits(uint64(b.TrimPower), 12, "trim_power")
	fw.bits(uint64(b.TrimChromaWeight), 12, "trim_chroma_weight")
	fw.bits(uint64(b.TrimSaturationGain), 12, "trim_saturation_gain")
	fw.bits(uint64(b.MSWeight), 12, "ms_weight")

	if length > 10 {
		fw.bits(uint64(b.TargetMidContrast), 12, "target_mid_contrast")
	}
	if length > 12 {
		fw.bits(uint64(b.ClipTrim), 12, "clip_trim")
	}
	if length > 13 {
		for _, v := range b.SaturationVectorField {
			fw.bits(uint64(v), 8, "saturation_vector_field")
		}
	}
	if length > 19 {
		for _, v := range b.HueVectorField {
			fw.bits(uint64(v), 8, "hue_vector_field")
		}
	}
	return fw.err
}

// Level9Block identifies the mastering display's color primaries. A
// record may hold several, one per distinct SourcePrimaryIndex.
type Level9Block struct {
	Length uint64 // declared payload length; 0 means minimal layout

	SourcePrimaryIndex uint8

	// Explicit chromaticity coordinates, present when the index alone
	// does not describe the display (length > 1): Rx, Ry, Gx, Gy, Bx,
	// By, Wx, Wy as 16-bit codes.
	SourcePrimaries [8]uint16
}

// Level returns the block's level id.
func (b *Level9Block) Level() uint8 { return LevelSourceDisplay }

func (b *Level9Block) payloadBytes() uint64 {
	if b.Length != 0 {
		return b.Length
	}
	if b.SourcePrimaries != [8]uint16{} {
		return 17
	}
	return 1
}

func (b *Level9Block) decodePayload(fr *fieldReader, length uint64) *ParseError {
	b.Length = length
	b.SourcePrimaryIndex = uint8(fr.bits(8))
	if length > 1 {
		for i := range b.SourcePrimaries {
			b.SourcePrimaries[i] = uint16(fr.bits(16))
		}
	}
	return fr.err
}

func (b *Level9Block) encodePayload(fw *fieldWriter) *ParseError {
	fw.bits(uint64(b.SourcePrimaryIndex), 8, "source_primary_index")
	if b.payloadBytes() > 1 {
		for _, v := range b.SourcePrimaries {
			fw.bits(uint64(v), 16, "source_primary")
		}
	}
	return fw.err
}

// Level10Block describes a custom target display. A record may hold
// several, one per distinct TargetDisplayIndex.
type Level10Block struct {
	Length uint64 // declared payload length; 0 means minimal layout

	TargetDisplayIndex uint8
	TargetMaxPQ        uint16
	TargetMinPQ        uint16
	TargetPrimaryIndex uint8

	// Explicit chromaticity coordinates (length > 5), as in Level9Block.
	TargetPrimaries [8]uint16
}

// Level returns the block's level id.
func (b *Level10Block) Level() uint8 { return LevelTargetDisplay }

func (b *Level10Block) payloadBytes() uint64 {
	if b.Length != 0 {
		return b.Length
	}
	if b.TargetPrimaries != [8]uint16{} {
		return 21
	}
	return 5
}

func (b *Level10Block) decodePayload(fr *fieldReader, length uint64) *ParseError {
	b.Length = length
	b.TargetDisplayIndex = uint8(fr.bits(8))
	b.TargetMaxPQ = uint16(fr.bits(12))
	b.TargetMinPQ = uint16(fr.bits(12))
	b.TargetPrimaryIndex = uint8(fr.bits(8))
	if length > 5 {
		for i := range b.TargetPrimaries {
			b.TargetPrimaries[i] = uint16(fr.bits(16))
		}
	}
	return fr.err
}

func (b *Level10Block) encodePayload(fw *fieldWriter) *ParseError {
	fw.bits(uint64(b.TargetDisplayIndex), 8, "target_display_index")
	fw.bits(uint64(b.TargetMaxPQ), 12, "target_max_pq")
	fw.bits(uint64(b.TargetMinPQ), 12, "target_min_pq")
	fw.bits(uint64(b.TargetPrimaryIndex), 8, "target_primary_index")
	if b.payloadBytes() > 5 {
		for _, v := range b.TargetPrimaries {
			fw.bits(uint64(v), 16, "target_primary")
		}
	}
	return fw.err
}

// Content type hints for Level11Block.
const (
	ContentTypeCinema        = 1
	ContentTypeGame          = 2
	ContentTypeSport         = 3
	ContentTypeUserGenerated = 4
)

// Level11Block carries content-type and whitepoint hints for the
// display's picture mode selection.
type Level11Block struct {
	ContentType     uint8
	WhitepointIndex uint8
	ReferenceMode   bool
	ReservedByte2   uint8
	ReservedByte3   uint8
}

// Level returns the block's level id.
func (b *Level11Block) Level() uint8 { return LevelContentType }

func (b *Level11Block) payloadBytes() uint64 { return 5 }

func (b *Level11Block) decodePayload(fr *fieldReader, _ uint64) *ParseError {
	b.ContentType = uint8(fr.bits(8))
	b.WhitepointIndex = uint8(fr.bits(8))
	b.ReferenceMode = fr.flag()
	b.ReservedByte2 = uint8(fr.bits(8))
	b.ReservedByte3 = uint8(fr.bits(8))
	return fr.err
}

func (b *Level11Block) encodePayload(fw *fieldWriter) *ParseError {
	fw.bits(uint64(b.ContentType), 8, "content_type")
	fw.bits(uint64(b.WhitepointIndex), 8, "whitepoint")
	fw.flag(b.ReferenceMode)
	fw.bits(uint64(b.ReservedByte2), 8, "reserved_byte2")
	fw.bits(uint64(b.ReservedByte3), 8, "reserved_byte3")
	return fw.err
}

// Level254Block marks the metadata generation (CM version) the block set
// conforms to.
type Level254Block struct {
	DMMode         uint8
	DMVersionIndex uint8
}

// Level returns the block's level id.
func (b *Level254Block) Level() uint8 { return LevelMetadataVersion }

func (b *Level254Block) payloadBytes() uint64 { return 2 }

func (b *Level254Block) decodePayload(fr *fieldReader, _ uint64) *ParseError {
	b.DMMode = uint8(fr.bits(8))
	b.DMVersionIndex = uint8(fr.bits(8))
	return fr.err
}

func (b *Level254Block) encodePayload(fw *fieldWriter) *ParseError {
	fw.bits(uint64(b.DMMode), 8, "dm_mode")
	fw.bits(uint64(b.DMVersionIndex), 8, "dm_version_index")
	return fw.err
}
