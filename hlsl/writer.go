// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/mir/ir"
)

// Writer generates the HLSL code of one stage of a module.
type Writer struct {
	module  *ir.Module
	options *Options
	stage   ir.Stage
	sched   []ir.Instruction

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Name management
	names *namer

	// locals maps materialized instructions to their local variable.
	locals map[ir.ValueID]string

	usedFeatures FeatureFlags
}

func newWriter(module *ir.Module, options *Options, stage ir.Stage) *Writer {
	return &Writer{
		module:  module,
		options: options,
		stage:   stage,
		sched:   module.Sched[stage],
		names:   newNamer(),
		locals:  make(map[ir.ValueID]string),
	}
}

// String returns the code written so far.
func (w *Writer) String() string {
	return w.out.String()
}

// writeStage writes the locals of the stage and returns them together with
// the expression of each output.
func (w *Writer) writeStage() (StageCode, error) {
	m := w.module
	if err := w.writeBlock(m.RootBlocks[w.stage]); err != nil {
		return StageCode{}, err
	}

	code := StageCode{Stage: w.stage}
	for _, out := range m.Outputs[w.stage] {
		set, ok := m.Values[out].Kind.(ir.SetOutput)
		if !ok {
			return StageCode{}, &Error{Kind: ErrInternalError, Message: "stage output is not a SetOutput", Value: out}
		}
		expr, err := w.expression(set.Arg)
		if err != nil {
			return StageCode{}, err
		}
		code.Outputs = append(code.Outputs, OutputFragment{Property: set.Property, Code: stripParens(expr)})
	}
	code.Body = w.String()
	return code, nil
}

// needsLocal reports whether an instruction is stored in a local rather
// than inlined into its single user.
func (w *Writer) needsLocal(id ir.ValueID) bool {
	return w.sched[id].NumUsers > 1
}

// localBase returns the base name of the local holding id. A stage switch
// is named after the value it resolves to.
func (w *Writer) localBase(id ir.ValueID) string {
	v := w.module.Values[id]
	if sw, ok := v.Kind.(ir.StageSwitch); ok && sw.Args[w.stage] != ir.NoValue {
		return w.localBase(sw.Args[w.stage])
	}
	switch v.Kind.(type) {
	case ir.TextureRead:
		return "Sample"
	case ir.Branch:
		return "Branch"
	case ir.HardwarePartialDerivative:
		return "Derivative"
	default:
		return "Local"
	}
}

// declareLocal writes the declaration of a local initialized with expr and
// binds it to id.
func (w *Writer) declareLocal(id ir.ValueID, expr string) {
	name := w.names.call(w.localBase(id))
	w.writeLine("%s %s = %s;", typeName(w.module.Values[id].Type), name, stripParens(expr))
	w.locals[id] = name
}

// stripParens removes the parentheses enclosing a whole expression, for
// the places where the expression stands alone.
func stripParens(expr string) string {
	if len(expr) < 2 || expr[0] != '(' || expr[len(expr)-1] != ')' {
		return expr
	}
	depth := 0
	for i := 0; i < len(expr)-1; i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return expr
			}
		}
	}
	return expr[1 : len(expr)-1]
}

// writeLine writes an indented line.
func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

func (w *Writer) pushIndent() {
	w.indent++
}

func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}
