package dovi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/go-dovi/internal/bits"
)

// roundTripBlock encodes one framed block and decodes it back.
func roundTripBlock(t *testing.T, b ExtMetadataBlock) ExtMetadataBlock {
	t.Helper()

	fw := &fieldWriter{w: bits.NewWriter()}
	require.Nil(t, writeExtBlock(fw, b))
	require.Nil(t, fw.err)

	var warn warningList
	fr := &fieldReader{r: bits.NewReader(fw.w.Bytes())}
	got, perr := parseExtBlock(fr, &warn)
	require.Nil(t, perr)
	require.Empty(t, warn.items)

	// The frame is not byte-aligned (it opens with a ue length code), so
	// only the writer's final byte padding may remain.
	assert.Less(t, fr.r.Remaining(), 8, "framing must consume the whole block")
	return got
}

func TestExtBlock_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		block ExtMetadataBlock
	}{
		{
			name:  "level 1",
			block: &Level1Block{MinPQ: 0, MaxPQ: 4095, AvgPQ: 1229},
		},
		{
			name: "level 2",
			block: &Level2Block{
				TargetMaxPQ:        2081,
				TrimSlope:          2048,
				TrimOffset:         2048,
				TrimPower:          1800,
				TrimChromaWeight:   2048,
				TrimSaturationGain: 2048,
				MSWeight:           2048,
			},
		},
		{
			name:  "level 2 negative ms_weight",
			block: &Level2Block{TargetMaxPQ: 2851, MSWeight: -1},
		},
		{
			name:  "level 3",
			block: &Level3Block{MinPQOffset: 2048, MaxPQOffset: 2048, AvgPQOffset: 2100},
		},
		{
			name:  "level 4",
			block: &Level4Block{AnchorPQ: 1500, AnchorPower: 1000},
		},
		{
			name:  "level 5",
			block: &Level5Block{ActiveAreaTopOffset: 138, ActiveAreaBottomOffset: 138},
		},
		{
			name: "level 6",
			block: &Level6Block{
				MaxDisplayMasteringLuminance: 1000,
				MinDisplayMasteringLuminance: 1,
				MaxContentLightLevel:         1000,
				MaxFrameAverageLightLevel:    400,
			},
		},
		{
			name: "level 8 minimal",
			block: &Level8Block{
				Length:             10,
				TargetDisplayIndex: 1,
				TrimSlope:          2048,
				TrimOffset:         2048,
				TrimPower:          2048,
				TrimChromaWeight:   2048,
				TrimSaturationGain: 2048,
				MSWeight:           2048,
			},
		},
		{
			name: "level 8 with mid contrast and clip trim",
			block: &Level8Block{
				Length:             13,
				TargetDisplayIndex: 1,
				TrimSlope:          2048,
				TargetMidContrast:  2048,
				ClipTrim:           2048,
			},
		},
		{
			name: "level 8 full revision",
			block: &Level8Block{
				Length:                25,
				TargetDisplayIndex:    1,
				TargetMidContrast:     2048,
				ClipTrim:              2048,
				SaturationVectorField: [6]uint8{128, 128, 128, 128, 128, 128},
				HueVectorField:        [6]uint8{1, 2, 3, 4, 5, 6},
			},
		},
		{
			name:  "level 9 index only",
			block: &Level9Block{Length: 1, SourcePrimaryIndex: 0},
		},
		{
			name: "level 9 explicit primaries",
			block: &Level9Block{
				Length:             17,
				SourcePrimaryIndex: 255,
				SourcePrimaries:    [8]uint16{45056, 16384, 8192, 39321, 6554, 3277, 20480, 21627},
			},
		},
		{
			name: "level 10 minimal",
			block: &Level10Block{
				Length:             5,
				TargetDisplayIndex: 48,
				TargetMaxPQ:        2081,
				TargetMinPQ:        0,
				TargetPrimaryIndex: 2,
			},
		},
		{
			name: "level 10 explicit primaries",
			block: &Level10Block{
				Length:             21,
				TargetDisplayIndex: 49,
				TargetMaxPQ:        3079,
				TargetPrimaries:    [8]uint16{45056, 16384, 8192, 39321, 6554, 3277, 20480, 21627},
			},
		},
		{
			name: "level 11",
			block: &Level11Block{
				ContentType:     ContentTypeCinema,
				WhitepointIndex: 0,
				ReferenceMode:   true,
			},
		},
		{
			name:  "level 254",
			block: &Level254Block{DMMode: 0, DMVersionIndex: 2},
		},
		{
			name:  "level 255",
			block: &Level255Block{DMRunMode: 1, DMRunVersion: 2, DMDebug: [4]uint8{3, 4, 5, 6}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.block, roundTripBlock(t, tt.block))
		})
	}
}

func TestExtBlock_ReservedLevel(t *testing.T) {
	in := &ReservedBlock{LevelID: 77, Payload: []byte{0x01, 0x02, 0x03}}

	fw := &fieldWriter{w: bits.NewWriter()}
	require.Nil(t, writeExtBlock(fw, in))

	var warn warningList
	fr := &fieldReader{r: bits.NewReader(fw.w.Bytes())}
	got, perr := parseExtBlock(fr, &warn)
	require.Nil(t, perr)

	require.Len(t, warn.items, 1)
	assert.Equal(t, ErrUnsupportedLevelID, warn.items[0].Kind)
	assert.Equal(t, in, got)
}

func TestExtBlock_TruncatedPayload(t *testing.T) {
	// A level-8 block declaring 6 bytes with only 4 present must fail on
	// the length check; decoding must not start and absorb bytes that
	// belong to the next framing point.
	w := bits.NewWriter()
	require.NoError(t, w.WriteUE(6))
	require.NoError(t, w.WriteBits(LevelTargetTrims, 8))
	require.NoError(t, w.WriteBits(0, 32))

	var warn warningList
	fr := &fieldReader{r: bits.NewReader(w.Bytes())}
	_, perr := parseExtBlock(fr, &warn)
	require.NotNil(t, perr)
	assert.ErrorIs(t, perr, ErrMalformedBlockLength)
}

func TestExtBlock_LengthShorterThanFields(t *testing.T) {
	// A level-1 block needs 36 bits; declaring 4 bytes makes the decode
	// overrun its own frame even though the buffer holds more.
	w := bits.NewWriter()
	require.NoError(t, w.WriteUE(4))
	require.NoError(t, w.WriteBits(LevelLuminanceRange, 8))
	require.NoError(t, w.WriteBits(0, 64))

	var warn warningList
	fr := &fieldReader{r: bits.NewReader(w.Bytes())}
	_, perr := parseExtBlock(fr, &warn)
	require.NotNil(t, perr)
	assert.ErrorIs(t, perr, ErrMalformedBlockLength)
}

func TestExtBlock_OversizedLength(t *testing.T) {
	w := bits.NewWriter()
	require.NoError(t, w.WriteUE(maxExtBlockLength+1))
	require.NoError(t, w.WriteBits(LevelLuminanceRange, 8))

	var warn warningList
	fr := &fieldReader{r: bits.NewReader(w.Bytes())}
	_, perr := parseExtBlock(fr, &warn)
	require.NotNil(t, perr)
	assert.ErrorIs(t, perr, ErrMalformedBlockLength)
}

func TestExtBlock_TrailingFieldsWarning(t *testing.T) {
	// A longer-than-known level-1 payload decodes, but the undecoded
	// tail is flagged so the caller knows fields were skipped.
	w := bits.NewWriter()
	require.NoError(t, w.WriteUE(7))
	require.NoError(t, w.WriteBits(LevelLuminanceRange, 8))
	require.NoError(t, w.WriteBits(0, 36)) // known fields
	require.NoError(t, w.WriteBits(0, 20)) // unknown tail

	var warn warningList
	fr := &fieldReader{r: bits.NewReader(w.Bytes())}
	got, perr := parseExtBlock(fr, &warn)
	require.Nil(t, perr)
	require.IsType(t, &Level1Block{}, got)

	require.Len(t, warn.items, 1)
	assert.Equal(t, ErrProfileBlockInconsistency, warn.items[0].Kind)
}

func TestExtBlock_LongUnknownTail(t *testing.T) {
	// A future revision may grow a known level well past the fields this
	// decoder understands; a tail longer than one 64-bit read must still
	// be skipped with a warning, never rejected.
	w := bits.NewWriter()
	require.NoError(t, w.WriteUE(14))
	require.NoError(t, w.WriteBits(LevelLuminanceRange, 8))
	require.NoError(t, w.WriteBits(0, 36)) // known fields
	require.NoError(t, w.WriteBits(0, 64)) // unknown tail, 76 bits
	require.NoError(t, w.WriteBits(0, 12))

	var warn warningList
	fr := &fieldReader{r: bits.NewReader(w.Bytes())}
	got, perr := parseExtBlock(fr, &warn)
	require.Nil(t, perr)
	require.IsType(t, &Level1Block{}, got)

	require.Len(t, warn.items, 1)
	assert.Equal(t, ErrProfileBlockInconsistency, warn.items[0].Kind)
	assert.Contains(t, warn.items[0].Detail, "undecoded trailing bits")
}

func TestExtBlock_DerivedLengths(t *testing.T) {
	// Hand-built variable-length blocks with no recorded length must
	// declare the smallest revision that still carries their populated
	// extension fields.
	tests := []struct {
		name  string
		block ExtMetadataBlock
		want  uint64
	}{
		{
			name:  "level 8 base",
			block: &Level8Block{TargetDisplayIndex: 1},
			want:  10,
		},
		{
			name:  "level 8 mid contrast",
			block: &Level8Block{TargetDisplayIndex: 1, TargetMidContrast: 100},
			want:  12,
		},
		{
			name:  "level 8 clip trim",
			block: &Level8Block{TargetDisplayIndex: 1, ClipTrim: 7},
			want:  13,
		},
		{
			name:  "level 8 saturation vectors",
			block: &Level8Block{SaturationVectorField: [6]uint8{1, 2, 3, 4, 5, 6}},
			want:  19,
		},
		{
			name:  "level 8 hue vectors",
			block: &Level8Block{HueVectorField: [6]uint8{1, 2, 3, 4, 5, 6}},
			want:  25,
		},
		{
			name:  "level 9 explicit primaries",
			block: &Level9Block{SourcePrimaryIndex: 255, SourcePrimaries: [8]uint16{45056}},
			want:  17,
		},
		{
			name:  "level 10 explicit primaries",
			block: &Level10Block{TargetDisplayIndex: 49, TargetPrimaries: [8]uint16{45056}},
			want:  21,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.block.payloadBytes())

			// The extension fields survive a round trip instead of being
			// silently dropped by a minimal declared length.
			got := roundTripBlock(t, tt.block)
			switch want := tt.block.(type) {
			case *Level8Block:
				b := got.(*Level8Block)
				assert.Equal(t, tt.want, b.Length)
				assert.Equal(t, want.TargetMidContrast, b.TargetMidContrast)
				assert.Equal(t, want.ClipTrim, b.ClipTrim)
				assert.Equal(t, want.SaturationVectorField, b.SaturationVectorField)
				assert.Equal(t, want.HueVectorField, b.HueVectorField)
			case *Level9Block:
				b := got.(*Level9Block)
				assert.Equal(t, tt.want, b.Length)
				assert.Equal(t, want.SourcePrimaries, b.SourcePrimaries)
			case *Level10Block:
				b := got.(*Level10Block)
				assert.Equal(t, tt.want, b.Length)
				assert.Equal(t, want.TargetPrimaries, b.TargetPrimaries)
			}
		})
	}
}

func TestExtBlock_NonZeroPaddingWarning(t *testing.T) {
	w := bits.NewWriter()
	require.NoError(t, w.WriteUE(5))
	require.NoError(t, w.WriteBits(LevelLuminanceRange, 8))
	require.NoError(t, w.WriteBits(0, 36))
	require.NoError(t, w.WriteBits(0xF, 4)) // padding should be zero

	var warn warningList
	fr := &fieldReader{r: bits.NewReader(w.Bytes())}
	_, perr := parseExtBlock(fr, &warn)
	require.Nil(t, perr)

	require.Len(t, warn.items, 1)
	assert.Equal(t, ErrProfileBlockInconsistency, warn.items[0].Kind)
}

func TestExtBlock_EncodeOverflow(t *testing.T) {
	// A declared length too small for the block's field set must be
	// caught on encode, not produce a corrupt frame.
	b := &Level8Block{Length: 6}
	fw := &fieldWriter{w: bits.NewWriter()}
	perr := writeExtBlock(fw, b)
	require.NotNil(t, perr)
	assert.ErrorIs(t, perr, ErrMalformedBlockLength)
}

func TestExtBlock_MSWeightRange(t *testing.T) {
	b := &Level2Block{MSWeight: 5000}
	fw := &fieldWriter{w: bits.NewWriter()}
	perr := writeExtBlock(fw, b)
	require.NotNil(t, perr)
	assert.ErrorIs(t, perr, ErrValueRange)
}

func TestBlocksForLevel(t *testing.T) {
	d := &VDRDMData{Blocks: []ExtMetadataBlock{
		&Level1Block{},
		&Level2Block{TargetMaxPQ: 2081},
		&Level2Block{TargetMaxPQ: 2851},
		&Level6Block{},
	}}

	assert.Len(t, d.BlocksForLevel(LevelTrimPass), 2)
	assert.Nil(t, d.BlocksForLevel(LevelActiveArea))

	first := d.FirstBlock(LevelTrimPass)
	require.NotNil(t, first)
	assert.Equal(t, uint16(2081), first.(*Level2Block).TargetMaxPQ)
	assert.Nil(t, d.FirstBlock(LevelContentType))
}
