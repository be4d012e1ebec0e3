// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/mir/ir"
)

// typeName returns the HLSL spelling of a type.
func typeName(t *ir.Type) string {
	return t.String()
}

// formatConstant returns the HLSL literal of a scalar constant of type t.
func formatConstant(t *ir.Type, c ir.Constant) string {
	switch t.Scalar {
	case ir.ScalarBool:
		if c.Bool() {
			return "true"
		}
		return "false"
	case ir.ScalarInt:
		return strconv.FormatInt(c.Int(), 10)
	case ir.ScalarFloat:
		return formatFloat32(c.Float())
	default:
		panic(ir.Unreachable(t.Scalar))
	}
}

// formatFloat32 formats a float32 for HLSL output. HLSL has no literal for
// infinities or NaN, so they are spelled as the reinterpreted bit pattern,
// which binds like a call in any surrounding expression.
func formatFloat32(f float32) string {
	switch {
	case math.IsInf(float64(f), 1):
		return "asfloat(0x7f800000)"
	case math.IsInf(float64(f), -1):
		return "asfloat(0xff800000)"
	case math.IsNaN(float64(f)):
		return "asfloat(0x7fc00000)"
	}
	// Use %g for compact representation, ensure decimal point for floats
	s := fmt.Sprintf("%g", f)
	if !strings.Contains(s, ".") && !strings.Contains(s, "e") && !strings.Contains(s, "E") {
		s += ".0"
	}
	return s
}

// matrixElement returns the member selecting lane index of a matrix type,
// e.g. "._m01". Lanes are laid out row by row.
func matrixElement(t *ir.Type, index int) string {
	return fmt.Sprintf("._m%d%d", index/t.Cols, index%t.Cols)
}
