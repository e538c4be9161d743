package dovi

// Extension block level ids.
const (
	LevelLuminanceRange   = 1
	LevelTrimPass         = 2
	LevelOffsets          = 3
	LevelAnchor           = 4
	LevelActiveArea       = 5
	LevelMasteringDisplay = 6
	LevelTargetTrims      = 8
	LevelSourceDisplay    = 9
	LevelTargetDisplay    = 10
	LevelContentType      = 11
	LevelMetadataVersion  = 254
	LevelDebug            = 255
)

// ExtMetadataBlock is one display-management extension block. Each block
// is framed as a declared byte length, a level id, and exactly that many
// payload bytes; the concrete types decode and encode the level-specific
// layout while the framing in parseExtBlock/writeExtBlock enforces the
// length accounting.
type ExtMetadataBlock interface {
	// Level returns the block's level id.
	Level() uint8

	// payloadBytes is the ext_block_length to declare for this block's
	// current field set.
	payloadBytes() uint64

	decodePayload(fr *fieldReader, length uint64) *ParseError
	encodePayload(fw *fieldWriter) *ParseError
}

// ReservedBlock preserves a block with an unrecognized level id verbatim
// so round-trip serialization keeps future or vendor-specific levels
// byte-faithful instead of dropping them.
type ReservedBlock struct {
	LevelID uint8
	Payload []byte
}

// Level returns the block's level id.
func (b *ReservedBlock) Level() uint8 { return b.LevelID }

func (b *ReservedBlock) payloadBytes() uint64 { return uint64(len(b.Payload)) }

func (b *ReservedBlock) decodePayload(fr *fieldReader, length uint64) *ParseError {
	b.Payload = make([]byte, length)
	for i := range b.Payload {
		b.Payload[i] = uint8(fr.bits(8))
	}
	return fr.err
}

func (b *ReservedBlock) encodePayload(fw *fieldWriter) *ParseError {
	for _, p := range b.Payload {
		fw.bits(uint64(p), 8, "reserved block payload")
	}
	return fw.err
}

// newBlockForLevel returns an empty concrete block for a known level id,
// or nil for a reserved/unknown one.
func newBlockForLevel(level uint8) ExtMetadataBlock {
	switch level {
	case LevelLuminanceRange:
		return &Level1Block{}
	case LevelTrimPass:
		return &Level2Block{}
	case LevelOffsets:
		return &Level3Block{}
	case LevelAnchor:
		return &Level4Block{}
	case LevelActiveArea:
		return &Level5Block{}
	case LevelMasteringDisplay:
		return &Level6Block{}
	case LevelTargetTrims:
		return &Level8Block{}
	case LevelSourceDisplay:
		return &Level9Block{}
	case LevelTargetDisplay:
		return &Level10Block{}
	case LevelContentType:
		return &Level11Block{}
	case LevelMetadataVersion:
		return &Level254Block{}
	case LevelDebug:
		return &Level255Block{}
	}
	return nil
}

// maxExtBlockLength bounds a declared block length; a single payload can
// never carry more.
const maxExtBlockLength = 1 << 16

func parseExtBlock(fr *fieldReader, warn *warningList) (ExtMetadataBlock, *ParseError) {
	headerOffset := fr.r.ByteOffset()
	length := fr.ue()
	level := uint8(fr.bits(8))
	if fr.err != nil {
		return nil, fr.err
	}
	if length > maxExtBlockLength {
		return nil, parseErrf(ErrMalformedBlockLength, headerOffset,
			"level %d block declares %d bytes", level, length)
	}

	// The declared payload must be fully present before decoding starts,
	// so a short block can never absorb bytes that belong to the next
	// framing point.
	if uint64(fr.r.Remaining()) < 8*length {
		return nil, parseErrf(ErrMalformedBlockLength, headerOffset,
			"level %d block declares %d bytes, %d bits remain",
			level, length, fr.r.Remaining())
	}

	block := newBlockForLevel(level)
	if block == nil {
		warn.addf(ErrUnsupportedLevelID, headerOffset,
			"level %d preserved as raw payload", level)
		block = &ReservedBlock{LevelID: level}
	}

	start := fr.r.Position()
	if perr := block.decodePayload(fr, length); perr != nil {
		return nil, perr
	}
	if fr.err != nil {
		return nil, fr.err
	}

	consumed := fr.r.Position() - start
	declared := int(8 * length)
	switch {
	case consumed > declared:
		return nil, parseErrf(ErrMalformedBlockLength, headerOffset,
			"level %d block declares %d bytes but decodes %d bits", level, length, consumed)
	case consumed < declared:
		pad := declared - consumed
		// Sub-byte padding is the grammar's own alignment; a byte or
		// more means trailing fields this decoder does not know.
		if pad >= 8 {
			warn.addf(ErrProfileBlockInconsistency, fr.r.ByteOffset(),
				"level %d block has %d undecoded trailing bits", level, pad)
		}
		var nonzero bool
		for left := pad; left > 0; {
			n := left
			if n > 64 {
				n = 64
			}
			v, err := fr.r.ReadBits(n)
			if err != nil {
				return nil, parseErr(ErrBitstreamUnderrun, fr.r.ByteOffset(), err.Error())
			}
			if v != 0 {
				nonzero = true
			}
			left -= n
		}
		if nonzero {
			warn.addf(ErrProfileBlockInconsistency, fr.r.ByteOffset(),
				"level %d block has non-zero padding", level)
		}
	}

	return block, nil
}

func writeExtBlock(fw *fieldWriter, b ExtMetadataBlock) *ParseError {
	length := b.payloadBytes()
	fw.ue(length, "ext_block_length")
	fw.bits(uint64(b.Level()), 8, "ext_block_level")
	if fw.err != nil {
		return fw.err
	}

	start := fw.w.Len()
	if perr := b.encodePayload(fw); perr != nil {
		return perr
	}

	written := fw.w.Len() - start
	declared := int(8 * length)
	if written > declared {
		return parseErrf(ErrMalformedBlockLength, fw.w.Len()>>3,
			"level %d block field set needs %d bits, declared length holds %d",
			b.Level(), written, declared)
	}
	for pad := declared - written; pad > 0; {
		n := pad
		if n > 64 {
			n = 64
		}
		fw.bits(0, n, "ext_dm_alignment_zero_bit")
		pad -= n
	}

	return fw.err
}
