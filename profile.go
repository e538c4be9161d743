package dovi

import "fmt"

// Profile is the encoding profile family derived from the header flags.
// It is never stored in the stream: both conditional parsing and
// post-parse validation derive it through Classify, so the two can never
// disagree.
type Profile uint8

// Known profiles.
const (
	ProfileUnknown Profile = 0
	Profile4       Profile = 4 // dual layer, SDR-compatible base
	Profile5       Profile = 5 // single layer, proprietary IPTPQc2 base
	Profile7       Profile = 7 // dual layer, HDR10-compatible base
	Profile8       Profile = 8 // single layer, compatible base (8.1/8.2/8.4)
)

// String implements fmt.Stringer.
func (p Profile) String() string {
	switch p {
	case Profile4:
		return "profile 4"
	case Profile5:
		return "profile 5"
	case Profile7:
		return "profile 7"
	case Profile8:
		return "profile 8"
	}
	return "unknown profile"
}

// HasEnhancementLayer reports whether the profile pairs the base layer
// with an enhancement layer.
func (p Profile) HasEnhancementLayer() bool {
	return p == Profile4 || p == Profile7
}

// Classify derives the profile from the header flags. It is a pure
// function: calling it twice on the same header yields the same result.
func Classify(h *RPUDataHeader) Profile {
	if h.RPUType != 2 {
		return ProfileUnknown
	}

	switch {
	case h.ELSpatialResamplingFilter && !h.DisableResidual:
		if h.VDRRPUProfile == 0 {
			return Profile4
		}
		return Profile7
	case h.VDRRPUProfile == 0 && h.BLVideoFullRange:
		return Profile5
	case h.DisableResidual:
		return Profile8
	case !h.DisableResidual && h.hasELFormat():
		// Residual coding without spatial resampling: an MEL-style
		// dual-layer stream.
		return Profile7
	}

	return ProfileUnknown
}

// validateProfile cross-checks the parsed record against its derived
// profile and appends findings to warn. It never mutates the record.
func validateProfile(r *RPU, warn *warningList) {
	p := r.Profile()
	if p == ProfileUnknown && r.Header.RPUType == 2 {
		warn.addf(ErrInvalidProfileCombination, 0,
			"header flags match no known profile")
	}

	if p.HasEnhancementLayer() && r.Header.hasNLQSignalling() && r.NLQ == nil {
		warn.addf(ErrProfileBlockInconsistency, 0,
			"%s stream carries no NLQ data", p)
	}
	if p == Profile5 && r.NLQ != nil {
		warn.addf(ErrProfileBlockInconsistency, 0,
			"profile 5 stream carries NLQ data")
	}

	if r.DM == nil {
		return
	}

	// Blocks repeatable per target keep one instance per identifier;
	// everything else is unique per level.
	seen := make(map[uint64]int)
	for _, b := range r.DM.Blocks {
		key := uint64(b.Level()) << 32
		switch blk := b.(type) {
		case *Level2Block:
			key |= uint64(blk.TargetMaxPQ)
		case *Level8Block:
			key |= uint64(blk.TargetDisplayIndex)
		case *Level9Block:
			key |= uint64(blk.SourcePrimaryIndex)
		case *Level10Block:
			key |= uint64(blk.TargetDisplayIndex)
		case *ReservedBlock:
			continue
		}
		seen[key]++
		if seen[key] == 2 {
			warn.addf(ErrProfileBlockInconsistency, 0,
				"duplicate level %d block", b.Level())
		}
	}

	// HDR10-compatible base layers are expected to carry the static
	// mastering metadata their base layer signals.
	if (p == Profile7 || p == Profile8) && r.DM.FirstBlock(LevelMasteringDisplay) == nil {
		warn.addf(ErrProfileBlockInconsistency, 0,
			"%s stream has no level 6 mastering metadata", p)
	}

	// CM v4.0 levels require the version marker.
	if r.DM.FirstBlock(LevelMetadataVersion) == nil {
		for _, level := range []uint8{LevelTargetTrims, LevelSourceDisplay, LevelTargetDisplay, LevelContentType} {
			if r.DM.FirstBlock(level) != nil {
				warn.addf(ErrProfileBlockInconsistency, 0,
					"level %d block without a level 254 version marker", level)
				break
			}
		}
	}
}

// ConvertToMEL rewrites the record as a minimal-enhancement-layer stream:
// the enhancement layer is still signalled, but its residual carries no
// information. Only dual-layer profiles can be converted.
func (r *RPU) ConvertToMEL() error {
	p := r.Profile()
	if !p.HasEnhancementLayer() {
		return fmt.Errorf("dovi: cannot convert %s to MEL: %w", p, ErrInvalidProfileCombination)
	}

	h := &r.Header
	h.DisableResidual = false
	h.NLQMethodIDC = NLQLinearDeadzone
	h.NLQNumPivotsMinus2 = 0
	h.NLQPredPivotValue = [2]uint64{0, uint64(1)<<h.ELBitDepth() - 1}

	r.NLQ = &NLQData{}
	for c := range r.NLQ.Components {
		r.NLQ.Components[c] = NLQComponent{
			Offset:      uint64(1) << (h.ELBitDepth() - 1),
			VDRInMaxInt: 1,
		}
	}

	return nil
}

// ConvertTo81 rewrites the record as a single-layer profile 8.1 stream:
// residual coding is disabled and the NLQ data dropped. Profile 5 cannot
// be converted; its base layer is not backward compatible.
func (r *RPU) ConvertTo81() error {
	p := r.Profile()
	if p == Profile5 || p == ProfileUnknown {
		return fmt.Errorf("dovi: cannot convert %s to profile 8.1: %w", p, ErrInvalidProfileCombination)
	}

	h := &r.Header
	h.VDRRPUProfile = 1
	h.BLVideoFullRange = false
	h.ELSpatialResamplingFilter = false
	h.DisableResidual = true
	h.NLQMethodIDC = 0
	h.NLQNumPivotsMinus2 = 0
	h.NLQPredPivotValue = [2]uint64{}
	r.NLQ = nil

	return nil
}
