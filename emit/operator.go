// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"github.com/gogpu/mir/ir"
)

// paramFilter restricts and converts the operands an operator accepts.
type paramFilter uint16

const (
	checkIsBoolean paramFilter = 1 << iota
	checkIsInteger
	checkIsArithmetic
	checkIsNotMatrix
	checkIsVector3
	checkNonNegativeConst
	checkNonZeroConst
	checkOneOrGreaterConst
	checkBetweenMinusOneAndOneConst
	checkUnitIntervalConst
	castToAnyFloat
	castToFirstArgumentType
	castToCommonType

	castToCommonArithmeticType = checkIsArithmetic | castToCommonType
	castToCommonFloatType      = castToAnyFloat | castToCommonType
)

func (f paramFilter) has(f2 paramFilter) bool { return f&f2 != 0 }

// returnRule derives an operator's result type from its operand types.
type returnRule uint8

const (
	returnFirstArgumentType returnRule = iota + 1
	returnBooleanWithFirstArgumentShape
	returnFirstArgumentScalar
	returnSecondArgumentType
)

type signature struct {
	params [3]paramFilter
	ret    returnRule
}

var signatures = func() [ir.NumOperators]signature {
	unaryFloat := signature{[3]paramFilter{checkIsArithmetic | castToAnyFloat}, returnFirstArgumentType}
	unaryFloatToBool := signature{[3]paramFilter{checkIsArithmetic | castToAnyFloat}, returnBooleanWithFirstArgumentShape}
	binaryArithmetic := signature{[3]paramFilter{castToCommonArithmeticType, castToCommonArithmeticType}, returnFirstArgumentType}
	binaryInteger := signature{[3]paramFilter{checkIsInteger | castToCommonArithmeticType, checkIsInteger | castToCommonArithmeticType}, returnFirstArgumentType}
	binaryFloat := signature{[3]paramFilter{castToCommonFloatType, castToCommonFloatType}, returnFirstArgumentType}
	binaryComparison := signature{[3]paramFilter{castToCommonArithmeticType, castToCommonArithmeticType}, returnBooleanWithFirstArgumentShape}
	binaryEquality := signature{[3]paramFilter{castToCommonType, castToCommonType}, returnBooleanWithFirstArgumentShape}
	binaryLogical := signature{[3]paramFilter{checkIsBoolean | castToCommonType, checkIsBoolean | castToCommonType}, returnFirstArgumentType}
	ternaryArithmetic := signature{[3]paramFilter{castToCommonArithmeticType, castToCommonArithmeticType, castToCommonArithmeticType}, returnFirstArgumentType}
	ternaryFloat := signature{[3]paramFilter{castToCommonArithmeticType | castToAnyFloat, castToCommonArithmeticType, castToCommonArithmeticType}, returnFirstArgumentType}
	unaryInverseTrig := signature{[3]paramFilter{checkIsArithmetic | castToAnyFloat | checkUnitIntervalConst}, returnFirstArgumentType}
	logarithm := signature{[3]paramFilter{checkIsArithmetic | checkNonZeroConst | checkNonNegativeConst | castToAnyFloat}, returnFirstArgumentType}

	var s [ir.NumOperators]signature

	s[ir.OpBitwiseNot] = signature{[3]paramFilter{checkIsInteger}, returnFirstArgumentType}
	s[ir.OpNegate] = signature{[3]paramFilter{checkIsArithmetic}, returnFirstArgumentType}
	s[ir.OpNot] = signature{[3]paramFilter{checkIsBoolean}, returnFirstArgumentType}
	s[ir.OpAbs] = unaryFloat
	s[ir.OpACos] = unaryInverseTrig
	s[ir.OpACosh] = signature{[3]paramFilter{checkIsArithmetic | castToAnyFloat | checkOneOrGreaterConst}, returnFirstArgumentType}
	s[ir.OpASin] = unaryInverseTrig
	s[ir.OpASinh] = unaryFloat
	s[ir.OpATan] = unaryFloat
	s[ir.OpATanh] = signature{[3]paramFilter{checkIsArithmetic | castToAnyFloat | checkBetweenMinusOneAndOneConst}, returnFirstArgumentType}
	s[ir.OpCeil] = unaryFloat
	s[ir.OpCos] = unaryFloat
	s[ir.OpCosh] = unaryFloat
	s[ir.OpExponential] = unaryFloat
	s[ir.OpExponential2] = unaryFloat
	s[ir.OpFloor] = unaryFloat
	s[ir.OpFrac] = unaryFloat
	s[ir.OpIsFinite] = unaryFloatToBool
	s[ir.OpIsInf] = unaryFloatToBool
	s[ir.OpIsNan] = unaryFloatToBool
	s[ir.OpLength] = signature{[3]paramFilter{checkIsArithmetic | checkIsNotMatrix | castToAnyFloat}, returnFirstArgumentScalar}
	s[ir.OpLogarithm] = logarithm
	s[ir.OpLogarithm10] = logarithm
	s[ir.OpLogarithm2] = logarithm
	s[ir.OpRound] = unaryFloat
	s[ir.OpSaturate] = unaryFloat
	s[ir.OpSign] = unaryFloat
	s[ir.OpSin] = unaryFloat
	s[ir.OpSinh] = unaryFloat
	s[ir.OpSqrt] = signature{[3]paramFilter{checkIsArithmetic | checkNonNegativeConst | castToAnyFloat}, returnFirstArgumentType}
	s[ir.OpTan] = unaryFloat
	s[ir.OpTanh] = unaryFloat
	s[ir.OpTruncate] = unaryFloat

	s[ir.OpEquals] = binaryEquality
	s[ir.OpGreaterThan] = binaryComparison
	s[ir.OpGreaterThanOrEquals] = binaryComparison
	s[ir.OpLessThan] = binaryComparison
	s[ir.OpLessThanOrEquals] = binaryComparison
	s[ir.OpNotEquals] = binaryEquality
	s[ir.OpAnd] = binaryLogical
	s[ir.OpOr] = binaryLogical
	s[ir.OpAdd] = binaryArithmetic
	s[ir.OpSubtract] = binaryArithmetic
	s[ir.OpMultiply] = binaryArithmetic
	s[ir.OpDivide] = binaryArithmetic
	s[ir.OpModulo] = binaryInteger
	s[ir.OpBitwiseAnd] = binaryInteger
	s[ir.OpBitwiseOr] = binaryInteger
	s[ir.OpBitShiftLeft] = binaryInteger
	s[ir.OpBitShiftRight] = binaryInteger
	s[ir.OpCross] = signature{[3]paramFilter{checkIsArithmetic | checkIsVector3, castToFirstArgumentType}, returnFirstArgumentType}
	s[ir.OpDistance] = signature{[3]paramFilter{castToCommonFloatType | checkIsNotMatrix, castToCommonFloatType | checkIsNotMatrix}, returnFirstArgumentScalar}
	s[ir.OpDot] = signature{[3]paramFilter{checkIsArithmetic | checkIsNotMatrix, castToFirstArgumentType}, returnFirstArgumentScalar}
	s[ir.OpFmod] = binaryFloat
	s[ir.OpMax] = binaryArithmetic
	s[ir.OpMin] = binaryArithmetic
	s[ir.OpPow] = binaryFloat
	s[ir.OpStep] = binaryArithmetic

	s[ir.OpClamp] = ternaryArithmetic
	s[ir.OpLerp] = ternaryFloat
	s[ir.OpSelect] = signature{[3]paramFilter{checkIsBoolean | checkIsNotMatrix, checkIsNotMatrix, checkIsNotMatrix}, returnSecondArgumentType}
	s[ir.OpSmoothstep] = ternaryFloat
	return s
}()

var argumentOrdinals = [3]string{"first", "second", "third"}

// validateOperator checks and converts the operands of op. It returns the
// result type, or nil after recording diagnostics if the operands are invalid.
func (e *Emitter) validateOperator(op ir.Op, args *[3]ir.ValueID) *ir.Type {
	sig := &signatures[op]
	n := op.Arity()

	for i := 0; i < n; i++ {
		if args[i] == ir.NoValue {
			e.ErrorKindf(ir.ErrMissingValue, "Operator %s is missing its %s argument.", op, argumentOrdinals[i])
			return nil
		}
	}

	for i := n; i < len(args); i++ {
		args[i] = ir.NoValue
	}

	first := e.Type(args[0])
	common := first
	valid := true

	for i := 0; i < n; i++ {
		args[i] = e.CheckIsPrimitive(args[i])
		if !e.IsValid(args[i]) {
			return nil
		}
		argType := e.Type(args[i])
		filter := sig.params[i]

		switch {
		case filter.has(castToFirstArgumentType):
			argType = first
			args[i] = e.Cast(args[i], argType)
			valid = valid && e.IsValid(args[i])
		case filter.has(castToAnyFloat) && !argType.IsFloat():
			if argType.IsArithmetic() {
				argType = argType.WithScalar(ir.ScalarFloat)
				args[i] = e.Cast(args[i], argType)
				valid = valid && e.IsValid(args[i])
			}
		}
		if !e.IsValid(args[i]) {
			continue
		}
		if i == 0 {
			first = argType
			common = argType
		}

		if filter.has(checkIsBoolean) && !argType.IsBoolean() {
			e.errorAt(args[i], "Expected a boolean.")
			valid = false
		}
		if filter.has(checkIsArithmetic) {
			valid = e.IsValid(e.CheckIsArithmetic(args[i])) && valid
		}
		if filter.has(checkIsInteger) {
			valid = e.IsValid(e.CheckIsInteger(args[i])) && valid
		}
		if filter.has(checkIsNotMatrix) {
			valid = e.IsValid(e.CheckIsScalarOrVector(args[i])) && valid
		}
		if filter.has(checkIsVector3) && (!argType.IsVector() || argType.Lanes() != 3) {
			e.errorAt(args[i], "Expected a 3D vector.")
			valid = false
		}

		if argType.IsFloat() {
			valid = e.checkConstantDomain(args[i], filter) && valid
		}

		if i >= 1 && common != nil && filter.has(castToCommonType) {
			t, ok := ir.CommonType(common, argType)
			if !ok {
				e.Errorf("No common type between '%s' and '%s'.", common, argType)
				valid = false
				t = nil
			}
			common = t
		}
	}
	if !valid {
		return nil
	}

	if op == ir.OpSelect {
		b, c := e.Type(args[1]), e.Type(args[2])
		lanes := max(first.Lanes(), b.Lanes(), c.Lanes())
		args[0] = e.Cast(args[0], ir.Vector(ir.ScalarBool, lanes))
		armType, ok := e.CommonType(ir.Vector(b.Scalar, lanes), ir.Vector(c.Scalar, lanes))
		if !ok {
			return nil
		}
		args[1] = e.Cast(args[1], armType)
		args[2] = e.Cast(args[2], armType)
		if e.anyNotValid(args[0], args[1], args[2]) {
			return nil
		}
	} else {
		for i := 0; i < n; i++ {
			if sig.params[i].has(castToCommonType) {
				args[i] = e.Cast(args[i], common)
				valid = valid && e.IsValid(args[i])
			}
		}
		if !valid {
			return nil
		}
	}

	first = e.Type(args[0])
	switch sig.ret {
	case returnFirstArgumentType:
		return first
	case returnBooleanWithFirstArgumentShape:
		return ir.Primitive(ir.ScalarBool, first.Rows, first.Cols)
	case returnFirstArgumentScalar:
		return first.ToScalar()
	case returnSecondArgumentType:
		return e.Type(args[1])
	}
	panic(ir.Unreachable(sig.ret))
}

// checkConstantDomain records an error for every constant lane of v outside
// the domain required by filter.
func (e *Emitter) checkConstantDomain(v ir.ValueID, filter paramFilter) bool {
	lanes, ok := e.unpackConstantVector(v)
	if !ok {
		return true
	}
	for _, c := range lanes {
		f := c.Float()
		switch {
		case filter.has(checkNonZeroConst) && f == 0:
			e.errorAt(v, "Expected non-zero value.")
		case filter.has(checkNonNegativeConst) && f < 0:
			e.errorAt(v, "Expected non-negative value.")
		case filter.has(checkOneOrGreaterConst) && f < 1:
			e.errorAt(v, "Expected a value equal or greater than 1.")
		case filter.has(checkBetweenMinusOneAndOneConst) && (f <= -1 || f >= 1):
			e.errorAt(v, "Expected a value greater than -1 and lower than 1.")
		case filter.has(checkUnitIntervalConst) && (f < -1 || f > 1):
			e.errorAt(v, "Expected a value between -1 and 1.")
		default:
			continue
		}
		return false
	}
	return true
}

// trySimplify applies a known identity of op, e.g. x + 0 = x. It returns
// the result if the operation simplifies to an existing value. Otherwise it
// may still rewrite op and its arguments into a cheaper form, such as
// clamp(x, 0, 1) into saturate(x). result is the type of the operation.
func (e *Emitter) trySimplify(op *ir.Op, a, b, c *ir.ValueID, result *ir.Type) ir.ValueID {
	switch *op {
	case ir.OpLength:
		if e.Type(*a).IsScalar() {
			*op = ir.OpAbs
		}

	case ir.OpGreaterThan, ir.OpLessThan, ir.OpNotEquals:
		if *a == *b {
			return e.Cast(e.ConstantFalse(), result)
		}

	case ir.OpGreaterThanOrEquals, ir.OpLessThanOrEquals, ir.OpEquals:
		if *a == *b {
			return e.Cast(e.ConstantTrue(), result)
		}

	case ir.OpAdd:
		if e.AreAllNearlyZero(*a) {
			return *b
		} else if e.AreAllNearlyZero(*b) {
			return *a
		}

	case ir.OpSubtract:
		if e.AreAllNearlyZero(*b) {
			return *a
		} else if e.AreAllNearlyZero(*a) {
			return e.Negate(*b)
		}

	case ir.OpMultiply:
		if e.AreAllNearlyZero(*a) || e.AreAllNearlyOne(*b) {
			return *a
		} else if e.AreAllNearlyOne(*a) || e.AreAllNearlyZero(*b) {
			return *b
		}

	case ir.OpDivide:
		if e.AreAllNearlyZero(*a) || e.AreAllNearlyOne(*b) {
			return *a
		}

	case ir.OpModulo:
		if e.AreAllNearlyZero(*a) || e.AreAllNearlyOne(*b) {
			return e.ZeroOf(e.Type(*a))
		}

	case ir.OpBitwiseAnd:
		if e.AreAllExactlyZero(*a) {
			return *a
		} else if e.AreAllExactlyZero(*b) {
			return *b
		}

	case ir.OpBitwiseOr:
		if e.AreAllExactlyZero(*a) {
			return *b
		} else if e.AreAllExactlyZero(*b) {
			return *a
		}

	case ir.OpBitShiftLeft, ir.OpBitShiftRight:
		if e.AreAllExactlyZero(*a) || e.AreAllExactlyZero(*b) {
			return *a
		}

	case ir.OpPow:
		if e.AreAllNearlyZero(*a) {
			return *a
		} else if e.AreAllNearlyZero(*b) {
			return e.Cast(e.ConstantOne(e.Type(*a).Scalar), e.Type(*a))
		}

	case ir.OpClamp:
		if e.AreAllNearlyZero(*b) && e.AreAllNearlyOne(*c) {
			*op = ir.OpSaturate
			*b, *c = ir.NoValue, ir.NoValue
		}

	case ir.OpLerp:
		if e.AreAllNearlyZero(*c) {
			return *a
		} else if e.AreAllNearlyOne(*c) {
			return *b
		}

	case ir.OpSelect:
		if e.AreAllTrue(*a) {
			return *b
		} else if e.AreAllFalse(*a) {
			return *c
		}
	}
	return ir.NoValue
}

// tryFoldScalar folds op on scalar operands into a value of type result.
// It returns ir.NoValue if the operation cannot be evaluated now.
func (e *Emitter) tryFoldScalar(op ir.Op, a, b, c ir.ValueID, result *ir.Type) ir.ValueID {
	kind := e.Type(a).Scalar

	if r := e.trySimplify(&op, &a, &b, &c, result); r != ir.NoValue {
		return r
	}
	if op == ir.OpSelect {
		return ir.NoValue
	}

	ac, ok := e.AsConstant(a)
	if !ok {
		return ir.NoValue
	}
	var bc, cc ir.Constant
	if op.Arity() >= 2 {
		if bc, ok = e.AsConstant(b); !ok {
			return ir.NoValue
		}
	}
	if op.Arity() == 3 {
		if cc, ok = e.AsConstant(c); !ok {
			return ir.NoValue
		}
	}

	r, _ := e.foldScalarConstants(op, kind, ac, bc, cc)
	return r
}

// tryFoldComponentwise folds op lane by lane. If every lane folds to the
// matching lane of one argument, that argument is returned. If only some
// lanes fold, the result is a Dimensional mixing the folded lanes with
// per-lane operator instructions. If no lane folds it returns ir.NoValue.
func (e *Emitter) tryFoldComponentwise(op ir.Op, a, b, c ir.ValueID, result *ir.Type) ir.ValueID {
	n := result.Lanes()
	laneType := result.ToScalar()
	folded := make([]ir.ValueID, n)
	someFolded := false
	sameAsA, sameAsB, sameAsC := true, true, true

	for i := 0; i < n; i++ {
		ai := e.Subscript(a, i)
		bi, ci := ir.NoValue, ir.NoValue
		if b != ir.NoValue {
			bi = e.Subscript(b, i)
		}
		if c != ir.NoValue {
			ci = e.Subscript(c, i)
		}

		r := e.tryFoldScalar(op, ai, bi, ci, laneType)
		folded[i] = r
		someFolded = someFolded || r != ir.NoValue
		sameAsA = sameAsA && r != ir.NoValue && r == ai
		sameAsB = sameAsB && bi != ir.NoValue && r == bi
		sameAsC = sameAsC && ci != ir.NoValue && r == ci
	}

	switch {
	case sameAsA && e.Type(a) == result:
		return a
	case sameAsB && e.Type(b) == result:
		return b
	case sameAsC && e.Type(c) == result:
		return c
	case !someFolded:
		return ir.NoValue
	case result.IsScalar():
		return folded[0]
	}

	for i := range folded {
		if folded[i] != ir.NoValue {
			continue
		}
		lane := ir.Operator{Op: op, A: e.Subscript(a, i)}
		if b != ir.NoValue {
			lane.B = e.Subscript(b, i)
		}
		if c != ir.NoValue {
			lane.C = e.Subscript(c, i)
		}
		folded[i] = e.emitOperator(laneType, lane)
	}
	return e.dimensional(result, folded)
}

// tryFold evaluates op now if its arguments allow it.
func (e *Emitter) tryFold(op ir.Op, a, b, c ir.ValueID, result *ir.Type) ir.ValueID {
	// Length, Distance, Dot and Cross mix lanes; they only fold when every
	// lane of every argument is constant.
	if av, ok := e.unpackConstantVector(a); ok && result.IsFloat() {
		switch op {
		case ir.OpLength:
			return e.ConstantFloat(sqrt32(dot(av, av)))
		case ir.OpDot, ir.OpCross, ir.OpDistance:
			bv, ok := e.unpackConstantVector(b)
			if !ok || len(bv) != len(av) {
				break
			}
			switch op {
			case ir.OpDot:
				return e.ConstantFloat(dot(av, bv))
			case ir.OpDistance:
				diff := make([]ir.Constant, len(av))
				for i := range av {
					diff[i] = ir.FloatConstant(av[i].Float() - bv[i].Float())
				}
				return e.ConstantFloat(sqrt32(dot(diff, diff)))
			case ir.OpCross:
				x0, y0, z0 := av[0].Float(), av[1].Float(), av[2].Float()
				x1, y1, z1 := bv[0].Float(), bv[1].Float(), bv[2].Float()
				return e.ConstantFloat3([3]float32{y0*z1 - z0*y1, z0*x1 - x0*z1, x0*y1 - y0*x1})
			}
		}
	}

	if op.IsComponentwise() {
		return e.tryFoldComponentwise(op, a, b, c, result)
	}
	return ir.NoValue
}

func dot(a, b []ir.Constant) float32 {
	var r float32
	for i := range a {
		r += a[i].Float() * b[i].Float()
	}
	return r
}

func sqrt32(f float32) float32 {
	r, _ := foldFloat(ir.OpSqrt, f, 0, 0)
	return r
}

// emitOperator emits an operator instruction, ordering the operands of
// commutative operators so that a+b and b+a unify.
func (e *Emitter) emitOperator(t *ir.Type, o ir.Operator) ir.ValueID {
	if o.Op.IsCommutative() && o.B < o.A {
		o.A, o.B = o.B, o.A
	}
	return e.Emit(ir.Value{Type: t, Kind: o})
}

// Operator applies op to its arguments. Unary operators take a, binary
// operators a and b, ternary operators a, b and c; unused arguments are
// ir.NoValue.
//
// The operands are validated and converted per the operator's signature.
// Then known identities are applied and constant lanes are folded, so the
// result is an instruction only when the operation cannot be evaluated now.
func (e *Emitter) Operator(op ir.Op, a, b, c ir.ValueID) ir.ValueID {
	if a == ir.PoisonValue || b == ir.PoisonValue || c == ir.PoisonValue {
		return ir.PoisonValue
	}

	args := [3]ir.ValueID{a, b, c}
	result := e.validateOperator(op, &args)
	if result == nil {
		return ir.PoisonValue
	}
	a, b, c = args[0], args[1], args[2]

	if r := e.trySimplify(&op, &a, &b, &c, result); r != ir.NoValue {
		return r
	}
	if r := e.tryFold(op, a, b, c, result); r != ir.NoValue {
		return r
	}
	return e.emitOperator(result, ir.Operator{Op: op, A: a, B: b, C: c})
}

// Unary and binary helpers.

func (e *Emitter) Negate(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpNegate, a, ir.NoValue, ir.NoValue) }
func (e *Emitter) Not(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpNot, a, ir.NoValue, ir.NoValue) }
func (e *Emitter) Abs(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpAbs, a, ir.NoValue, ir.NoValue) }
func (e *Emitter) Sin(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpSin, a, ir.NoValue, ir.NoValue) }
func (e *Emitter) Sinh(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpSinh, a, ir.NoValue, ir.NoValue) }
func (e *Emitter) Cos(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpCos, a, ir.NoValue, ir.NoValue) }
func (e *Emitter) Cosh(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpCosh, a, ir.NoValue, ir.NoValue) }
func (e *Emitter) Sqrt(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpSqrt, a, ir.NoValue, ir.NoValue) }
func (e *Emitter) Saturate(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpSaturate, a, ir.NoValue, ir.NoValue) }
func (e *Emitter) Logarithm(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpLogarithm, a, ir.NoValue, ir.NoValue) }
func (e *Emitter) Exponential2(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpExponential2, a, ir.NoValue, ir.NoValue) }
func (e *Emitter) Floor(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpFloor, a, ir.NoValue, ir.NoValue) }
func (e *Emitter) Length(a ir.ValueID) ir.ValueID { return e.Operator(ir.OpLength, a, ir.NoValue, ir.NoValue) }

func (e *Emitter) Add(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpAdd, a, b, ir.NoValue) }
func (e *Emitter) Subtract(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpSubtract, a, b, ir.NoValue) }
func (e *Emitter) Multiply(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpMultiply, a, b, ir.NoValue) }
func (e *Emitter) Divide(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpDivide, a, b, ir.NoValue) }
func (e *Emitter) And(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpAnd, a, b, ir.NoValue) }
func (e *Emitter) Or(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpOr, a, b, ir.NoValue) }
func (e *Emitter) LessThan(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpLessThan, a, b, ir.NoValue) }
func (e *Emitter) GreaterThan(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpGreaterThan, a, b, ir.NoValue) }
func (e *Emitter) Dot(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpDot, a, b, ir.NoValue) }
func (e *Emitter) Cross(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpCross, a, b, ir.NoValue) }
func (e *Emitter) Min(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpMin, a, b, ir.NoValue) }
func (e *Emitter) Max(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpMax, a, b, ir.NoValue) }
func (e *Emitter) Pow(a, b ir.ValueID) ir.ValueID { return e.Operator(ir.OpPow, a, b, ir.NoValue) }

// Select returns t where cond is true and f elsewhere, lane by lane.
func (e *Emitter) Select(cond, t, f ir.ValueID) ir.ValueID {
	return e.Operator(ir.OpSelect, cond, t, f)
}

// Clamp limits x to [lo, hi].
func (e *Emitter) Clamp(x, lo, hi ir.ValueID) ir.ValueID {
	return e.Operator(ir.OpClamp, x, lo, hi)
}

// Lerp interpolates linearly between a and b by t.
func (e *Emitter) Lerp(a, b, t ir.ValueID) ir.ValueID {
	return e.Operator(ir.OpLerp, a, b, t)
}

/*-------------------------------------- Branch --------------------------------------*/

// Branch evaluates to t if cond is true and to f otherwise. Unlike Select,
// only the taken arm is evaluated at runtime.
func (e *Emitter) Branch(cond, t, f ir.ValueID) ir.ValueID {
	if e.anyNotValid(cond, t, f) {
		return ir.PoisonValue
	}

	cond = e.Cast(cond, ir.Bool())
	if !e.IsValid(cond) {
		return ir.PoisonValue
	}
	if c, ok := e.AsConstant(cond); ok {
		if c.Bool() {
			return t
		}
		return f
	}

	common, ok := e.CommonType(e.Type(t), e.Type(f))
	if !ok {
		return ir.PoisonValue
	}
	t = e.Cast(t, common)
	f = e.Cast(f, common)
	if e.anyNotValid(t, f) {
		return ir.PoisonValue
	}
	if t == f {
		return t
	}
	return e.Emit(ir.Value{Type: common, Kind: ir.Branch{Condition: cond, True: t, False: f}})
}
