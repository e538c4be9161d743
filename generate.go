package dovi

import "math"

// DefaultTrim is the neutral value for 12-bit trim fields.
const DefaultTrim = 2048

// GenerateConfig describes a synthetic profile 8.1 metadata stream:
// static source/target description plus optional per-target trims. Nil
// optional fields are omitted from the generated record.
type GenerateConfig struct {
	// Length is the number of frames to generate metadata for; it is
	// carried for the caller's loop and does not affect a single record.
	Length int

	// TargetNits sets the mastering peak used to derive SourceMaxPQ
	// when SourceMaxPQ itself is nil.
	TargetNits uint16

	SourceMinPQ *uint16
	SourceMaxPQ *uint16

	Level2 []*Level2Block
	Level5 *Level5Block
	Level6 *Level6Block
}

// NewProfile81RPU builds the canonical single-layer profile 8.1 record:
// a 10-bit base layer with residual coding disabled, an identity
// reshaping polynomial per component, and display-management defaults
// for a BT.2020 PQ source, extended with the blocks from cfg.
func NewProfile81RPU(cfg *GenerateConfig) *RPU {
	rpu := &RPU{
		Header:  profile81Header(),
		Mapping: identityMapping(),
		DM:      defaultDMData(),
	}

	if cfg == nil {
		return rpu
	}

	dm := rpu.DM
	if cfg.SourceMinPQ != nil {
		dm.SourceMinPQ = *cfg.SourceMinPQ
	}
	switch {
	case cfg.SourceMaxPQ != nil:
		dm.SourceMaxPQ = *cfg.SourceMaxPQ
	case cfg.TargetNits > 0:
		dm.SourceMaxPQ = PQCodeFromNits(cfg.TargetNits)
	}

	for _, l2 := range cfg.Level2 {
		dm.Blocks = append(dm.Blocks, l2)
	}
	if cfg.Level5 != nil {
		dm.Blocks = append(dm.Blocks, cfg.Level5)
	}
	if cfg.Level6 != nil {
		dm.Blocks = append(dm.Blocks, cfg.Level6)
	}

	return rpu
}

func profile81Header() RPUDataHeader {
	return RPUDataHeader{
		RPUNalPrefix:         rpuNalPrefixValue,
		RPUType:              2,
		RPUFormat:            18,
		VDRRPUProfile:        1,
		VDRRPULevel:          0,
		VDRSeqInfoPresent:    true,
		VDRDMMetadataPresent: true,
		CoefficientDataType:  0,
		CoefficientLog2Denom: 23,
		VDRRPUNormalizedIDC:  1,
		BLBitDepthMinus8:     2,
		ELBitDepthMinus8:     2,
		VDRBitDepthMinus8:    4,
		DisableResidual:      true,
		NumPivotsMinus2:      [3]uint64{0, 0, 0},
		PredPivotValue: [3][]uint64{
			{0, 1023},
			{0, 1023},
			{0, 1023},
		},
	}
}

// identityMapping is a first-order polynomial y = x per component.
func identityMapping() *RPUDataMapping {
	m := &RPUDataMapping{}
	for c := range m.Curves {
		m.Curves[c].Pieces = []MappingPiece{{
			MappingIDC:      MappingPolynomial,
			PolyOrderMinus1: 0,
			PolyCoefInt:     []int64{0, 1},
			PolyCoef:        []uint64{0, 0},
		}}
	}
	return m
}

func defaultDMData() *VDRDMData {
	return &VDRDMData{
		YCCToRGBCoef:   [9]int16{9574, 0, 13802, 9574, -1540, -5348, 9574, 17610, 0},
		YCCToRGBOffset: [3]uint32{16777216, 134217728, 134217728},
		RGBToLMSCoef:   [9]int16{5845, 9702, 837, 2568, 12256, 1561, 0, 679, 15705},

		SignalEOTF:         65535,
		SignalBitDepth:     12,
		SignalColorSpace:   0,
		SignalChromaFormat: 0,
		SignalFullRange:    1,

		SourceMinPQ:    7,
		SourceMaxPQ:    3079,
		SourceDiagonal: 42,
	}
}

// SetSceneCut marks or clears the scene refresh flag on this frame.
func (d *VDRDMData) SetSceneCut(cut bool) {
	if cut {
		d.SceneRefreshFlag = 1
	} else {
		d.SceneRefreshFlag = 0
	}
}

// AddLevel1 appends a luminance range block.
func (d *VDRDMData) AddLevel1(minPQ, maxPQ, avgPQ uint16) {
	d.Blocks = append(d.Blocks, &Level1Block{
		MinPQ: minPQ,
		MaxPQ: maxPQ,
		AvgPQ: avgPQ,
	})
}

// AddLevel2 appends a trim pass for the target display with the given
// peak luminance.
func (d *VDRDMData) AddLevel2(targetNits uint16, slope, offset, power, chromaWeight, saturationGain uint16, msWeight int16) {
	d.Blocks = append(d.Blocks, &Level2Block{
		TargetMaxPQ:        PQCodeFromNits(targetNits),
		TrimSlope:          slope,
		TrimOffset:         offset,
		TrimPower:          power,
		TrimChromaWeight:   chromaWeight,
		TrimSaturationGain: saturationGain,
		MSWeight:           msWeight,
	})
}

// AddLevel3 appends luminance offsets refining the level 1 analysis.
func (d *VDRDMData) AddLevel3(minPQOffset, maxPQOffset, avgPQOffset uint16) {
	d.Blocks = append(d.Blocks, &Level3Block{
		MinPQOffset: minPQOffset,
		MaxPQOffset: maxPQOffset,
		AvgPQOffset: avgPQOffset,
	})
}

// AddLevel5 appends active-area offsets.
func (d *VDRDMData) AddLevel5(left, right, top, bottom uint16) {
	d.Blocks = append(d.Blocks, &Level5Block{
		ActiveAreaLeftOffset:   left,
		ActiveAreaRightOffset:  right,
		ActiveAreaTopOffset:    top,
		ActiveAreaBottomOffset: bottom,
	})
}

// AddLevel6 appends static HDR10 mastering metadata.
func (d *VDRDMData) AddLevel6(maxMastering, minMastering, maxCLL, maxFALL uint16) {
	d.Blocks = append(d.Blocks, &Level6Block{
		MaxDisplayMasteringLuminance: maxMastering,
		MinDisplayMasteringLuminance: minMastering,
		MaxContentLightLevel:         maxCLL,
		MaxFrameAverageLightLevel:    maxFALL,
	})
}

// SMPTE ST 2084 constants.
const (
	pqM1 = 2610.0 / 16384.0
	pqM2 = 2523.0 / 4096.0 * 128.0
	pqC1 = 3424.0 / 4096.0
	pqC2 = 2413.0 / 4096.0 * 32.0
	pqC3 = 2392.0 / 4096.0 * 32.0
)

// NitsToPQ converts an absolute luminance in cd/m2 to a normalized PQ
// value in [0, 1] per the SMPTE ST 2084 forward transfer function.
func NitsToPQ(nits float64) float64 {
	y := nits / 10000.0
	ym1 := math.Pow(y, pqM1)
	return math.Pow((pqC1+pqC2*ym1)/(1.0+pqC3*ym1), pqM2)
}

// PQCodeFromNits converts a luminance in cd/m2 to the 12-bit PQ code
// used by metadata block fields.
func PQCodeFromNits(nits uint16) uint16 {
	return uint16(math.Round(NitsToPQ(float64(nits)) * 4095.0))
}
