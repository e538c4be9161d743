package dovi

// Mapping function types coded in mapping_idc.
const (
	MappingPolynomial = 0
	MappingMMR        = 1
)

// RPUDataMapping carries the base-layer reshaping functions: one curve
// per component, one piece per pivot interval. Present only when the
// header does not reuse a previous RPU.
type RPUDataMapping struct {
	Curves [3]MappingCurve
}

// MappingCurve is the per-component piecewise mapping. Pieces has
// NumPivotsMinus2[c]+1 entries, one per pivot interval, in pivot order.
type MappingCurve struct {
	Pieces []MappingPiece

	// Closing value of a linear-interpolation run, coded once after the
	// final piece of the component.
	FinalInterpValueInt uint64
	FinalInterpValue    uint64
}

// MappingPiece is one pivot interval's mapping function: a polynomial of
// order 1 or 2, a first-order interpolated line, or an MMR (multiple
// color channel, multiple regression) expansion of order 1 to 3.
type MappingPiece struct {
	MappingIDC uint64

	// Polynomial coefficients: order+1 integer/fraction pairs.
	PolyOrderMinus1 uint64
	LinearInterp    bool
	PolyCoefInt     []int64
	PolyCoef        []uint64

	// Linear interpolation endpoints, first-order polynomials only.
	InterpValueInt uint64
	InterpValue    uint64

	// MMR coefficients: a constant plus 7 coefficients per order.
	MMROrderMinus1 uint8
	MMRConstantInt int64
	MMRConstant    uint64
	MMRCoefInt     [][]int64
	MMRCoef        [][]uint64
}

func parseMapping(fr *fieldReader, h *RPUDataHeader) (*RPUDataMapping, *ParseError) {
	m := &RPUDataMapping{}

	for c := 0; c < 3; c++ {
		pieces := make([]MappingPiece, h.NumPivotsMinus2[c]+1)
		last := len(pieces) - 1

		for i := range pieces {
			pc := &pieces[i]
			pc.MappingIDC = fr.ue()

			switch pc.MappingIDC {
			case MappingPolynomial:
				pc.PolyOrderMinus1 = fr.ue()
				if pc.PolyOrderMinus1 == 0 {
					pc.LinearInterp = fr.flag()
				}
				if pc.PolyOrderMinus1 == 0 && pc.LinearInterp {
					if h.hasFixedPointCoefs() {
						pc.InterpValueInt = fr.ue()
					}
					pc.InterpValue = fr.bits(int(h.CoefficientLog2Denom))
					if i == last {
						if h.hasFixedPointCoefs() {
							m.Curves[c].FinalInterpValueInt = fr.ue()
						}
						m.Curves[c].FinalInterpValue = fr.bits(int(h.CoefficientLog2Denom))
					}
				} else {
					if fr.err != nil {
						return nil, fr.err
					}
					if pc.PolyOrderMinus1 > 1 {
						return nil, parseErrf(ErrValueRange, fr.r.ByteOffset(),
							"poly_order_minus1=%d out of range", pc.PolyOrderMinus1)
					}
					n := int(pc.PolyOrderMinus1) + 2
					pc.PolyCoefInt = make([]int64, n)
					pc.PolyCoef = make([]uint64, n)
					for j := 0; j < n; j++ {
						if h.hasFixedPointCoefs() {
							pc.PolyCoefInt[j] = fr.se()
						}
						pc.PolyCoef[j] = fr.bits(int(h.CoefficientLog2Denom))
					}
				}

			case MappingMMR:
				pc.MMROrderMinus1 = uint8(fr.bits(2))
				if fr.err != nil {
					return nil, fr.err
				}
				if pc.MMROrderMinus1 > 2 {
					return nil, parseErrf(ErrValueRange, fr.r.ByteOffset(),
						"mmr_order_minus1=%d out of range", pc.MMROrderMinus1)
				}
				if h.hasFixedPointCoefs() {
					pc.MMRConstantInt = fr.se()
				}
				pc.MMRConstant = fr.bits(int(h.CoefficientLog2Denom))

				order := int(pc.MMROrderMinus1) + 1
				pc.MMRCoefInt = make([][]int64, order)
				pc.MMRCoef = make([][]uint64, order)
				for j := 0; j < order; j++ {
					pc.MMRCoefInt[j] = make([]int64, 7)
					pc.MMRCoef[j] = make([]uint64, 7)
					for k := 0; k < 7; k++ {
						if h.hasFixedPointCoefs() {
							pc.MMRCoefInt[j][k] = fr.se()
						}
						pc.MMRCoef[j][k] = fr.bits(int(h.CoefficientLog2Denom))
					}
				}

			default:
				if fr.err != nil {
					return nil, fr.err
				}
				return nil, parseErrf(ErrValueRange, fr.r.ByteOffset(),
					"mapping_idc=%d out of range", pc.MappingIDC)
			}

			if fr.err != nil {
				return nil, fr.err
			}
		}

		m.Curves[c].Pieces = pieces
	}

	return m, fr.err
}

func writeMapping(fw *fieldWriter, h *RPUDataHeader, m *RPUDataMapping) *ParseError {
	for c := 0; c < 3; c++ {
		curve := &m.Curves[c]
		if uint64(len(curve.Pieces)) != h.NumPivotsMinus2[c]+1 {
			return parseErrf(ErrValueRange, fw.w.Len()>>3,
				"component %d has %d mapping pieces, header declares %d",
				c, len(curve.Pieces), h.NumPivotsMinus2[c]+1)
		}
		last := len(curve.Pieces) - 1

		for i := range curve.Pieces {
			pc := &curve.Pieces[i]
			fw.ue(pc.MappingIDC, "mapping_idc")

			switch pc.MappingIDC {
			case MappingPolynomial:
				fw.ue(pc.PolyOrderMinus1, "poly_order_minus1")
				if pc.PolyOrderMinus1 == 0 {
					fw.flag(pc.LinearInterp)
				}
				if pc.PolyOrderMinus1 == 0 && pc.LinearInterp {
					if h.hasFixedPointCoefs() {
						fw.ue(pc.InterpValueInt, "pred_linear_interp_value_int")
					}
					fw.bits(pc.InterpValue, int(h.CoefficientLog2Denom), "pred_linear_interp_value")
					if i == last {
						if h.hasFixedPointCoefs() {
							fw.ue(curve.FinalInterpValueInt, "pred_linear_interp_value_int")
						}
						fw.bits(curve.FinalInterpValue, int(h.CoefficientLog2Denom), "pred_linear_interp_value")
					}
				} else {
					n := int(pc.PolyOrderMinus1) + 2
					if len(pc.PolyCoefInt) != n || len(pc.PolyCoef) != n {
						return parseErrf(ErrValueRange, fw.w.Len()>>3,
							"polynomial of order %d needs %d coefficients", pc.PolyOrderMinus1+1, n)
					}
					for j := 0; j < n; j++ {
						if h.hasFixedPointCoefs() {
							fw.se(pc.PolyCoefInt[j], "poly_coef_int")
						}
						fw.bits(pc.PolyCoef[j], int(h.CoefficientLog2Denom), "poly_coef")
					}
				}

			case MappingMMR:
				fw.bits(uint64(pc.MMROrderMinus1), 2, "mmr_order_minus1")
				if h.hasFixedPointCoefs() {
					fw.se(pc.MMRConstantInt, "mmr_constant_int")
				}
				fw.bits(pc.MMRConstant, int(h.CoefficientLog2Denom), "mmr_constant")

				order := int(pc.MMROrderMinus1) + 1
				if len(pc.MMRCoefInt) != order || len(pc.MMRCoef) != order {
					return parseErrf(ErrValueRange, fw.w.Len()>>3,
						"MMR of order %d needs %d coefficient rows", order, order)
				}
				for j := 0; j < order; j++ {
					if len(pc.MMRCoefInt[j]) != 7 || len(pc.MMRCoef[j]) != 7 {
						return parseErrf(ErrValueRange, fw.w.Len()>>3,
							"MMR coefficient row %d needs 7 entries", j)
					}
					for k := 0; k < 7; k++ {
						if h.hasFixedPointCoefs() {
							fw.se(pc.MMRCoefInt[j][k], "mmr_coef_int")
						}
						fw.bits(pc.MMRCoef[j][k], int(h.CoefficientLog2Denom), "mmr_coef")
					}
				}

			default:
				return parseErrf(ErrValueRange, fw.w.Len()>>3,
					"mapping_idc=%d out of range", pc.MappingIDC)
			}

			if fw.err != nil {
				return fw.err
			}
		}
	}

	return fw.err
}
