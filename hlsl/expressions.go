// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/mir/ir"
)

// =============================================================================
// Expression Writing
// =============================================================================

// expression returns the HLSL expression computing a value. Materialized
// instructions are referred to by their local. Every compound expression is
// parenthesized, so the result can be used as an operand without further
// precedence checks.
func (w *Writer) expression(id ir.ValueID) (string, error) {
	if name, ok := w.locals[id]; ok {
		return name, nil
	}

	v := w.module.Values[id]
	switch k := v.Kind.(type) {
	case ir.Poison:
		return "", &Error{Kind: ErrInternalError, Message: "poison value reached code generation", Value: id}
	case ir.Constant:
		return formatConstant(v.Type, k), nil
	case ir.ExternalInput:
		return k.ID.Code(), nil
	case ir.TextureObject:
		return w.textureReference(id, k.Texture, -1)
	case ir.UniformParameter:
		return w.uniformReference(id, k)
	case ir.Dimensional:
		return w.dimensionalExpression(v.Type, k)
	case ir.Operator:
		return w.operatorExpression(v.Type, k)
	case ir.Branch:
		return w.selectExpression(v.Type, k.Condition, k.True, k.False)
	case ir.Subscript:
		return w.subscriptExpression(k)
	case ir.Cast:
		arg, err := w.expression(k.Arg)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("((%s)%s)", typeName(v.Type), arg), nil
	case ir.TextureRead:
		return w.textureReadExpression(id, k)
	case ir.InlineCode:
		return w.inlineCodeExpression(k)
	case ir.StageSwitch:
		arg := k.Args[w.stage]
		if arg == ir.NoValue {
			return "", &Error{Kind: ErrInternalError, Message: "stage switch has no argument for the " + w.stage.String() + " stage", Value: id}
		}
		return w.expression(arg)
	case ir.HardwarePartialDerivative:
		arg, err := w.expression(k.Arg)
		if err != nil {
			return "", err
		}
		w.usedFeatures |= FeatureDerivatives
		return fmt.Sprintf("dd%s(%s)", k.Axis, arg), nil
	case ir.SetOutput:
		return "", &Error{Kind: ErrInternalError, Message: "output assignment used as a value", Value: id}
	default:
		panic(ir.Unreachable(v.Kind))
	}
}

// expressions returns the expressions of ids.
func (w *Writer) expressions(ids ...ir.ValueID) ([]string, error) {
	exprs := make([]string, len(ids))
	for i, id := range ids {
		var err error
		if exprs[i], err = w.expression(id); err != nil {
			return nil, err
		}
	}
	return exprs, nil
}

// =============================================================================
// Resources
// =============================================================================

// uniformReference returns the location of a parameter: a texture of the
// texture table or lanes of the packed uniform buffer.
func (w *Writer) uniformReference(id ir.ValueID, u ir.UniformParameter) (string, error) {
	m := w.module
	if int(u.Parameter) >= len(m.Parameters) {
		return "", &Error{Kind: ErrInternalError, Message: "unknown parameter", Value: id}
	}
	md := &m.Parameters[u.Parameter].Metadata
	if md.Kind == ir.ParameterTexture {
		return w.textureReference(id, md.Texture, int(u.Parameter))
	}

	alloc := m.Uniforms[u.Parameter]
	if alloc.NumLanes == 0 {
		return "", &Error{Kind: ErrInternalError, Message: "parameter '" + m.Parameters[u.Parameter].Info.Name + "' has no uniform location", Value: id}
	}
	return fmt.Sprintf("%s.PreshaderBuffer[%d].%s", MaterialGlobal, alloc.Slot, alloc.Swizzle()), nil
}

func (w *Writer) textureReference(id ir.ValueID, texture string, parameter int) (string, error) {
	index := w.module.FindTexture(texture, parameter)
	if index < 0 {
		return "", &Error{Kind: ErrInternalError, Message: "texture '" + texture + "' is not in the texture table", Value: id}
	}
	return fmt.Sprintf("%s.%s_%d", MaterialGlobal, typeName(w.module.Values[id].Type), index), nil
}

// =============================================================================
// Composites
// =============================================================================

func (w *Writer) dimensionalExpression(t *ir.Type, d ir.Dimensional) (string, error) {
	components, err := w.expressions(d.Components[:t.Lanes()]...)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", typeName(t), strings.Join(components, ", ")), nil
}

func (w *Writer) subscriptExpression(s ir.Subscript) (string, error) {
	arg, err := w.expression(s.Arg)
	if err != nil {
		return "", err
	}
	t := w.module.Values[s.Arg].Type
	if t.IsMatrix() {
		return arg + matrixElement(t, s.Index), nil
	}
	return arg + "." + string("xyzw"[s.Index]), nil
}

// =============================================================================
// Operators
// =============================================================================

// infixOperators maps operators with an HLSL operator token.
var infixOperators = map[ir.Op]string{
	ir.OpEquals:              "==",
	ir.OpGreaterThan:         ">",
	ir.OpGreaterThanOrEquals: ">=",
	ir.OpLessThan:            "<",
	ir.OpLessThanOrEquals:    "<=",
	ir.OpNotEquals:           "!=",
	ir.OpAnd:                 "&&",
	ir.OpOr:                  "||",
	ir.OpAdd:                 "+",
	ir.OpSubtract:            "-",
	ir.OpMultiply:            "*",
	ir.OpDivide:              "/",
	ir.OpModulo:              "%",
	ir.OpBitwiseAnd:          "&",
	ir.OpBitwiseOr:           "|",
	ir.OpBitShiftLeft:        "<<",
	ir.OpBitShiftRight:       ">>",
}

// prefixOperators maps unary operators with an HLSL operator token.
var prefixOperators = map[ir.Op]string{
	ir.OpBitwiseNot: "~",
	ir.OpNegate:     "-",
	ir.OpNot:        "!",
}

// intrinsics maps operators implemented by an HLSL intrinsic function.
var intrinsics = map[ir.Op]string{
	ir.OpAbs:          "abs",
	ir.OpACos:         "acos",
	ir.OpASin:         "asin",
	ir.OpATan:         "atan",
	ir.OpCeil:         "ceil",
	ir.OpCos:          "cos",
	ir.OpCosh:         "cosh",
	ir.OpExponential:  "exp",
	ir.OpExponential2: "exp2",
	ir.OpFloor:        "floor",
	ir.OpFrac:         "frac",
	ir.OpIsFinite:     "isfinite",
	ir.OpIsInf:        "isinf",
	ir.OpIsNan:        "isnan",
	ir.OpLength:       "length",
	ir.OpLogarithm:    "log",
	ir.OpLogarithm10:  "log10",
	ir.OpLogarithm2:   "log2",
	ir.OpRound:        "round",
	ir.OpSaturate:     "saturate",
	ir.OpSign:         "sign",
	ir.OpSin:          "sin",
	ir.OpSinh:         "sinh",
	ir.OpSqrt:         "sqrt",
	ir.OpTan:          "tan",
	ir.OpTanh:         "tanh",
	ir.OpTruncate:     "trunc",
	ir.OpCross:        "cross",
	ir.OpDistance:     "distance",
	ir.OpDot:          "dot",
	ir.OpFmod:         "fmod",
	ir.OpMax:          "max",
	ir.OpMin:          "min",
	ir.OpPow:          "pow",
	ir.OpStep:         "step",
	ir.OpClamp:        "clamp",
	ir.OpLerp:         "lerp",
	ir.OpSmoothstep:   "smoothstep",
}

// HLSL has no inverse hyperbolic intrinsics.
var inverseHyperbolic = map[ir.Op]string{
	ir.OpACosh: "log(%[1]s + sqrt(%[1]s * %[1]s - 1.0))",
	ir.OpASinh: "log(%[1]s + sqrt(%[1]s * %[1]s + 1.0))",
	ir.OpATanh: "(0.5 * log((1.0 + %[1]s) / (1.0 - %[1]s)))",
}

func (w *Writer) operatorExpression(t *ir.Type, o ir.Operator) (string, error) {
	if o.Op == ir.OpSelect {
		return w.selectExpression(t, o.A, o.B, o.C)
	}

	args, err := w.expressions([]ir.ValueID{o.A, o.B, o.C}[:o.Op.Arity()]...)
	if err != nil {
		return "", err
	}

	if tok, ok := prefixOperators[o.Op]; ok {
		return fmt.Sprintf("(%s%s)", tok, args[0]), nil
	}
	if tok, ok := infixOperators[o.Op]; ok {
		if fn := w.vectorLogic(o.Op, t); fn != "" {
			return fmt.Sprintf("%s(%s, %s)", fn, args[0], args[1]), nil
		}
		return fmt.Sprintf("(%s %s %s)", args[0], tok, args[1]), nil
	}
	if format, ok := inverseHyperbolic[o.Op]; ok {
		return fmt.Sprintf(format, args[0]), nil
	}
	if fn, ok := intrinsics[o.Op]; ok {
		return fmt.Sprintf("%s(%s)", fn, strings.Join(args, ", ")), nil
	}
	return "", &Error{Kind: ErrUnsupportedFeature, Message: "no HLSL lowering for operator " + o.Op.String()}
}

// vectorLogic returns the intrinsic replacing && or || on vectors for
// compilers that reject the short-circuit operators there.
func (w *Writer) vectorLogic(op ir.Op, t *ir.Type) string {
	if !w.options.ShaderModel.SupportsDXIL() || t.IsScalar() {
		return ""
	}
	switch op {
	case ir.OpAnd:
		return "and"
	case ir.OpOr:
		return "or"
	}
	return ""
}

// selectExpression returns a conditional expression. DXIL compilers only
// accept the conditional operator on scalars.
func (w *Writer) selectExpression(t *ir.Type, cond, a, b ir.ValueID) (string, error) {
	args, err := w.expressions(cond, a, b)
	if err != nil {
		return "", err
	}
	if w.options.ShaderModel.SupportsDXIL() && !t.IsScalar() {
		return fmt.Sprintf("select(%s, %s, %s)", args[0], args[1], args[2]), nil
	}
	return fmt.Sprintf("(%s ? %s : %s)", args[0], args[1], args[2]), nil
}

// =============================================================================
// Texture Reads
// =============================================================================

// lookupFunctions maps sampler types to the function post-processing a
// lookup. Types missing from the map use the raw texel.
var lookupFunctions = map[ir.SamplerType]string{
	ir.SamplerColor:             "ProcessMaterialColorTextureLookup",
	ir.SamplerLinearColor:       "ProcessMaterialLinearColorTextureLookup",
	ir.SamplerGrayscale:         "ProcessMaterialGreyscaleTextureLookup",
	ir.SamplerLinearGrayscale:   "ProcessMaterialLinearGreyscaleTextureLookup",
	ir.SamplerAlpha:             "ProcessMaterialAlphaTextureLookup",
	ir.SamplerDistanceFieldFont: "ProcessMaterialAlphaTextureLookup",
	ir.SamplerNormal:            "UnpackNormalMap",
}

var gatherMethods = [...]string{
	ir.ReadGatherRed:   "GatherRed",
	ir.ReadGatherGreen: "GatherGreen",
	ir.ReadGatherBlue:  "GatherBlue",
	ir.ReadGatherAlpha: "GatherAlpha",
}

func (w *Writer) textureReadExpression(id ir.ValueID, r ir.TextureRead) (string, error) {
	tex, err := w.expression(r.Texture)
	if err != nil {
		return "", err
	}
	uv, err := w.expression(r.TexCoord)
	if err != nil {
		return "", err
	}

	var sampler string
	switch r.SamplerSource {
	case ir.SamplerSourceFromTextureAsset:
		sampler = tex + "Sampler"
	case ir.SamplerSourceWrapWorldGroupSettings:
		sampler = ViewGlobal + ".MaterialTextureBilinearWrapedSampler"
	case ir.SamplerSourceClampWorldGroupSettings:
		sampler = ViewGlobal + ".MaterialTextureBilinearClampedSampler"
	default:
		panic(ir.Unreachable(r.SamplerSource))
	}

	w.usedFeatures |= FeatureTextureSampling
	if r.Mode.IsGather() {
		return w.gatherExpression(id, r.Mode, tex, sampler, uv)
	}

	sample := typeName(w.module.Values[r.Texture].Type) + "Sample"
	var call string
	switch r.Mode {
	case ir.ReadMipAuto:
		w.usedFeatures |= FeatureDerivatives
		call = fmt.Sprintf("%s(%s, %s, %s)", sample, tex, sampler, uv)
	case ir.ReadMipLevel, ir.ReadMipBias:
		mip, err := w.expression(r.Mip)
		if err != nil {
			return "", err
		}
		suffix := "Level"
		if r.Mode == ir.ReadMipBias {
			w.usedFeatures |= FeatureDerivatives
			suffix = "Bias"
		}
		call = fmt.Sprintf("%s%s(%s, %s, %s, %s)", sample, suffix, tex, sampler, uv, mip)
	case ir.ReadDerivatives:
		grads, err := w.expressions(r.TexCoordDdx, r.TexCoordDdy)
		if err != nil {
			return "", err
		}
		call = fmt.Sprintf("%sGrad(%s, %s, %s, %s, %s)", sample, tex, sampler, uv, grads[0], grads[1])
	default:
		panic(ir.Unreachable(r.Mode))
	}

	if fn, ok := lookupFunctions[r.SamplerType]; ok {
		return fmt.Sprintf("%s(%s)", fn, call), nil
	}
	return call, nil
}

// gatherExpression returns a gather of one channel. Shader model 4.1 only
// gathers the red channel, through the Gather method.
func (w *Writer) gatherExpression(id ir.ValueID, mode ir.TextureReadMode, tex, sampler, uv string) (string, error) {
	sm := w.options.ShaderModel
	method := gatherMethods[mode]
	switch {
	case sm.SupportsChannelGather():
	case sm == ShaderModel4_1 && mode == ir.ReadGatherRed:
		method = "Gather"
	default:
		return "", &Error{
			Kind:    ErrUnsupportedFeature,
			Message: fmt.Sprintf("%s is not available in %s", gatherMethods[mode], sm),
			Value:   id,
		}
	}
	w.usedFeatures |= FeatureGather
	return fmt.Sprintf("%s.%s(%s, %s)", tex, method, sampler, uv), nil
}

// =============================================================================
// Inline Code
// =============================================================================

// inlineCodeExpression splices the argument expressions into the code at
// the $N markers. Code written in the graph is parenthesized since nothing
// is known about its precedence.
func (w *Writer) inlineCodeExpression(c ir.InlineCode) (string, error) {
	code := c.Code
	if c.Declaration != nil {
		code = c.Declaration.Code
	}
	args, err := w.expressions(c.Args[:c.NumArgs]...)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 0; i < len(code); i++ {
		if code[i] != '$' {
			b.WriteByte(code[i])
			continue
		}
		j := i + 1
		for j < len(code) && code[j] >= '0' && code[j] <= '9' {
			j++
		}
		n, err := strconv.Atoi(code[i+1 : j])
		if err != nil || n >= len(args) {
			b.WriteByte('$')
			continue
		}
		b.WriteString(args[n])
		i = j - 1
	}

	if c.Flags.Has(ir.FlagHasDynamicCode) {
		w.usedFeatures |= FeatureInlineCode
		return "(" + b.String() + ")", nil
	}
	return b.String(), nil
}
