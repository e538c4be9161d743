package dovi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		h    RPUDataHeader
		want Profile
	}{
		{
			name: "profile 4",
			h: RPUDataHeader{
				RPUType:                   2,
				RPUFormat:                 18,
				VDRRPUProfile:             0,
				ELSpatialResamplingFilter: true,
			},
			want: Profile4,
		},
		{
			name: "profile 5",
			h: RPUDataHeader{
				RPUType:          2,
				RPUFormat:        0x720,
				VDRRPUProfile:    0,
				BLVideoFullRange: true,
				DisableResidual:  false,
			},
			want: Profile5,
		},
		{
			name: "profile 7 FEL",
			h: RPUDataHeader{
				RPUType:                   2,
				RPUFormat:                 18,
				VDRRPUProfile:             1,
				ELSpatialResamplingFilter: true,
			},
			want: Profile7,
		},
		{
			name: "profile 7 MEL",
			h: RPUDataHeader{
				RPUType:       2,
				RPUFormat:     18,
				VDRRPUProfile: 1,
			},
			want: Profile7,
		},
		{
			name: "profile 8",
			h: RPUDataHeader{
				RPUType:         2,
				RPUFormat:       18,
				VDRRPUProfile:   1,
				DisableResidual: true,
			},
			want: Profile8,
		},
		{
			name: "non-metadata rpu type",
			h:    RPUDataHeader{RPUType: 0},
			want: ProfileUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(&tt.h)
			assert.Equal(t, tt.want, got)

			// Classification is pure: a second call sees the same header
			// and must agree with the first.
			assert.Equal(t, got, Classify(&tt.h))
		})
	}
}

func TestProfile_String(t *testing.T) {
	assert.Equal(t, "profile 5", Profile5.String())
	assert.Equal(t, "profile 8", Profile8.String())
	assert.Equal(t, "unknown profile", ProfileUnknown.String())
	assert.Equal(t, "unknown profile", Profile(99).String())
}

func TestProfile_HasEnhancementLayer(t *testing.T) {
	assert.True(t, Profile4.HasEnhancementLayer())
	assert.True(t, Profile7.HasEnhancementLayer())
	assert.False(t, Profile5.HasEnhancementLayer())
	assert.False(t, Profile8.HasEnhancementLayer())
}

func TestConvertTo81(t *testing.T) {
	rpu := testProfile7RPU()
	require.Equal(t, Profile7, rpu.Profile())

	require.NoError(t, rpu.ConvertTo81())

	assert.Equal(t, Profile8, rpu.Profile())
	assert.True(t, rpu.Header.DisableResidual)
	assert.False(t, rpu.Header.ELSpatialResamplingFilter)
	assert.Nil(t, rpu.NLQ)

	// The converted record must serialize and survive a clean reparse.
	data, err := rpu.Serialize()
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Empty(t, got.Warnings())
	assert.Equal(t, Profile8, got.Profile())
	assert.Nil(t, got.NLQ)

	// Converting again is a no-op at the profile level.
	require.NoError(t, got.ConvertTo81())
	assert.Equal(t, Profile8, got.Profile())
}

func TestConvertTo81_RejectsProfile5(t *testing.T) {
	rpu := &RPU{Header: RPUDataHeader{
		RPUType:          2,
		RPUFormat:        0x720,
		BLVideoFullRange: true,
	}}
	require.Equal(t, Profile5, rpu.Profile())

	err := rpu.ConvertTo81()
	require.ErrorIs(t, err, ErrInvalidProfileCombination)
}

func TestConvertToMEL(t *testing.T) {
	rpu := testProfile7RPU()
	require.NoError(t, rpu.ConvertToMEL())

	assert.Equal(t, Profile7, rpu.Profile())
	assert.False(t, rpu.Header.DisableResidual)
	assert.Equal(t, uint8(NLQLinearDeadzone), rpu.Header.NLQMethodIDC)
	assert.Equal(t, [2]uint64{0, 1023}, rpu.Header.NLQPredPivotValue)

	require.NotNil(t, rpu.NLQ)
	for _, c := range rpu.NLQ.Components {
		// A centered offset and unit ceiling make the residual carry
		// nothing.
		assert.Equal(t, uint64(512), c.Offset)
		assert.Equal(t, uint64(1), c.VDRInMaxInt)
		assert.Equal(t, uint64(0), c.DeadzoneSlopeInt)
	}

	data, err := rpu.Serialize()
	require.NoError(t, err)
	require.NoError(t, RoundTrip(data))
}

func TestConvertToMEL_RejectsSingleLayer(t *testing.T) {
	rpu := NewProfile81RPU(nil)
	err := rpu.ConvertToMEL()
	require.ErrorIs(t, err, ErrInvalidProfileCombination)
}

func TestValidateProfile_MissingLevel6(t *testing.T) {
	rpu := NewProfile81RPU(nil)
	rpu.DM.AddLevel1(0, 4095, 2048)

	data, err := rpu.Serialize()
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, got.Warnings(), 1)
	assert.Equal(t, ErrProfileBlockInconsistency, got.Warnings()[0].Kind)
	assert.Contains(t, got.Warnings()[0].Detail, "level 6")
}

func TestValidateProfile_CM40WithoutVersionMarker(t *testing.T) {
	rpu := NewProfile81RPU(nil)
	rpu.DM.AddLevel6(1000, 1, 1000, 400)
	rpu.DM.Blocks = append(rpu.DM.Blocks, &Level11Block{ContentType: ContentTypeCinema})

	data, err := rpu.Serialize()
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, got.Warnings(), 1)
	assert.Equal(t, ErrProfileBlockInconsistency, got.Warnings()[0].Kind)
	assert.Contains(t, got.Warnings()[0].Detail, "254")

	// Adding the marker clears the finding.
	rpu.DM.Blocks = append(rpu.DM.Blocks, &Level254Block{DMMode: 0, DMVersionIndex: 2})
	data, err = rpu.Serialize()
	require.NoError(t, err)

	got, err = Parse(data)
	require.NoError(t, err)
	assert.Empty(t, got.Warnings())
}
