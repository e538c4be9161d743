package dovi

// NLQData carries the non-linear quantization parameters for the
// enhancement-layer residual: one parameter set per component over the
// single NLQ pivot region. Present only for profiles with residual
// coding; absence is the common state for single-layer streams.
type NLQData struct {
	Components [3]NLQComponent
}

// NLQComponent is one component's dequantization parameter set.
// The fixed-point fields pair an exp-golomb integer part with a
// CoefficientLog2Denom-bit fraction, like the mapping coefficients.
type NLQComponent struct {
	Offset uint64 // ELBitDepth() bits

	VDRInMaxInt uint64
	VDRInMax    uint64

	// Linear deadzone method only.
	DeadzoneSlopeInt     uint64
	DeadzoneSlope        uint64
	DeadzoneThresholdInt uint64
	DeadzoneThreshold    uint64
}

func parseNLQ(fr *fieldReader, h *RPUDataHeader) (*NLQData, *ParseError) {
	n := &NLQData{}

	for c := range n.Components {
		nc := &n.Components[c]
		nc.Offset = fr.bits(h.ELBitDepth())

		if h.hasFixedPointCoefs() {
			nc.VDRInMaxInt = fr.ue()
		}
		nc.VDRInMax = fr.bits(int(h.CoefficientLog2Denom))

		if h.NLQMethodIDC == NLQLinearDeadzone {
			if h.hasFixedPointCoefs() {
				nc.DeadzoneSlopeInt = fr.ue()
			}
			nc.DeadzoneSlope = fr.bits(int(h.CoefficientLog2Denom))
			if h.hasFixedPointCoefs() {
				nc.DeadzoneThresholdInt = fr.ue()
			}
			nc.DeadzoneThreshold = fr.bits(int(h.CoefficientLog2Denom))
		}

		if fr.err != nil {
			return nil, fr.err
		}
	}

	return n, fr.err
}

func writeNLQ(fw *fieldWriter, h *RPUDataHeader, n *NLQData) *ParseError {
	for c := range n.Components {
		nc := &n.Components[c]
		fw.bits(nc.Offset, h.ELBitDepth(), "nlq_offset")

		if h.hasFixedPointCoefs() {
			fw.ue(nc.VDRInMaxInt, "vdr_in_max_int")
		}
		fw.bits(nc.VDRInMax, int(h.CoefficientLog2Denom), "vdr_in_max")

		if h.NLQMethodIDC == NLQLinearDeadzone {
			if h.hasFixedPointCoefs() {
				fw.ue(nc.DeadzoneSlopeInt, "linear_deadzone_slope_int")
			}
			fw.bits(nc.DeadzoneSlope, int(h.CoefficientLog2Denom), "linear_deadzone_slope")
			if h.hasFixedPointCoefs() {
				fw.ue(nc.DeadzoneThresholdInt, "linear_deadzone_threshold_int")
			}
			fw.bits(nc.DeadzoneThreshold, int(h.CoefficientLog2Denom), "linear_deadzone_threshold")
		}

		if fw.err != nil {
			return fw.err
		}
	}

	return fw.err
}
