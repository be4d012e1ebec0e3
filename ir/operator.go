// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

// Op identifies the operation computed by an Operator instruction.
// Unary operators come first, then binary, then ternary.
type Op uint8

const (
	// Unary operators.
	OpBitwiseNot Op = iota
	OpNegate
	OpNot
	OpAbs
	OpACos
	OpACosh
	OpASin
	OpASinh
	OpATan
	OpATanh
	OpCeil
	OpCos
	OpCosh
	OpExponential
	OpExponential2
	OpFloor
	OpFrac
	OpIsFinite
	OpIsInf
	OpIsNan
	OpLength
	OpLogarithm
	OpLogarithm10
	OpLogarithm2
	OpRound
	OpSaturate
	OpSign
	OpSin
	OpSinh
	OpSqrt
	OpTan
	OpTanh
	OpTruncate

	// Binary operators.
	OpEquals
	OpGreaterThan
	OpGreaterThanOrEquals
	OpLessThan
	OpLessThanOrEquals
	OpNotEquals
	OpAnd
	OpOr
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpBitwiseAnd
	OpBitwiseOr
	OpBitShiftLeft
	OpBitShiftRight
	OpCross
	OpDistance
	OpDot
	OpFmod
	OpMax
	OpMin
	OpPow
	OpStep

	// Ternary operators.
	OpClamp
	OpLerp
	OpSelect
	OpSmoothstep

	NumOperators
)

const (
	firstBinaryOperator  = OpEquals
	firstTernaryOperator = OpClamp
)

var operatorNames = [NumOperators]string{
	OpBitwiseNot:          "BitwiseNot",
	OpNegate:              "Negate",
	OpNot:                 "Not",
	OpAbs:                 "Abs",
	OpACos:                "ACos",
	OpACosh:               "ACosh",
	OpASin:                "ASin",
	OpASinh:               "ASinh",
	OpATan:                "ATan",
	OpATanh:               "ATanh",
	OpCeil:                "Ceil",
	OpCos:                 "Cos",
	OpCosh:                "Cosh",
	OpExponential:         "Exponential",
	OpExponential2:        "Exponential2",
	OpFloor:               "Floor",
	OpFrac:                "Frac",
	OpIsFinite:            "IsFinite",
	OpIsInf:               "IsInf",
	OpIsNan:               "IsNan",
	OpLength:              "Length",
	OpLogarithm:           "Logarithm",
	OpLogarithm10:         "Logarithm10",
	OpLogarithm2:          "Logarithm2",
	OpRound:               "Round",
	OpSaturate:            "Saturate",
	OpSign:                "Sign",
	OpSin:                 "Sin",
	OpSinh:                "Sinh",
	OpSqrt:                "Sqrt",
	OpTan:                 "Tan",
	OpTanh:                "Tanh",
	OpTruncate:            "Truncate",
	OpEquals:              "Equals",
	OpGreaterThan:         "GreaterThan",
	OpGreaterThanOrEquals: "GreaterThanOrEquals",
	OpLessThan:            "LessThan",
	OpLessThanOrEquals:    "LessThanOrEquals",
	OpNotEquals:           "NotEquals",
	OpAnd:                 "And",
	OpOr:                  "Or",
	OpAdd:                 "Add",
	OpSubtract:            "Subtract",
	OpMultiply:            "Multiply",
	OpDivide:              "Divide",
	OpModulo:              "Modulo",
	OpBitwiseAnd:          "BitwiseAnd",
	OpBitwiseOr:           "BitwiseOr",
	OpBitShiftLeft:        "BitShiftLeft",
	OpBitShiftRight:       "BitShiftRight",
	OpCross:               "Cross",
	OpDistance:            "Distance",
	OpDot:                 "Dot",
	OpFmod:                "Fmod",
	OpMax:                 "Max",
	OpMin:                 "Min",
	OpPow:                 "Pow",
	OpStep:                "Step",
	OpClamp:               "Clamp",
	OpLerp:                "Lerp",
	OpSelect:              "Select",
	OpSmoothstep:          "Smoothstep",
}

// String returns the operator name.
func (op Op) String() string {
	if op < NumOperators {
		return operatorNames[op]
	}
	return "Unknown"
}

// ParseOperator returns the operator with the given name.
func ParseOperator(name string) (Op, bool) {
	for i, n := range operatorNames {
		if n == name {
			return Op(i), true
		}
	}
	return 0, false
}

// IsUnary reports whether op takes a single argument.
func (op Op) IsUnary() bool { return op < firstBinaryOperator }

// IsBinary reports whether op takes two arguments.
func (op Op) IsBinary() bool { return op >= firstBinaryOperator && op < firstTernaryOperator }

// Arity returns the number of arguments op takes.
func (op Op) Arity() int {
	switch {
	case op.IsUnary():
		return 1
	case op.IsBinary():
		return 2
	default:
		return 3
	}
}

// IsComparison reports whether op compares its operands and yields booleans.
func (op Op) IsComparison() bool {
	switch op {
	case OpIsFinite, OpIsInf, OpIsNan,
		OpEquals, OpGreaterThan, OpGreaterThanOrEquals,
		OpLessThan, OpLessThanOrEquals, OpNotEquals:
		return true
	}
	return false
}

// IsCommutative reports whether swapping the two operands of a binary
// operator leaves the result unchanged.
func (op Op) IsCommutative() bool {
	switch op {
	case OpEquals, OpNotEquals, OpAnd, OpOr, OpAdd, OpMultiply,
		OpBitwiseAnd, OpBitwiseOr, OpDistance, OpDot, OpMax, OpMin:
		return true
	}
	return false
}

// IsComponentwise reports whether op(v, w) == [op(v0, w0), ..., op(vn, wn)].
func (op Op) IsComponentwise() bool {
	switch op {
	case OpDot, OpCross, OpLength, OpDistance:
		return false
	}
	return true
}
