// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/mir/ir"
)

// DiagnosticsError is returned for a material whose build recorded
// diagnostics. No code is generated for such a material.
type DiagnosticsError struct {
	Material    string
	Diagnostics []ir.Diagnostic
}

// Error lists every diagnostic, one per line.
func (e *DiagnosticsError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "material %s: %d error", e.Material, len(e.Diagnostics))
	if len(e.Diagnostics) != 1 {
		b.WriteByte('s')
	}
	for i := range e.Diagnostics {
		b.WriteString("\n\t")
		b.WriteString(e.Diagnostics[i].Error())
	}
	return b.String()
}

// Unwrap returns the diagnostics as errors.
func (e *DiagnosticsError) Unwrap() []error {
	errs := make([]error, len(e.Diagnostics))
	for i := range e.Diagnostics {
		errs[i] = &e.Diagnostics[i]
	}
	return errs
}

// Diagnostics returns the diagnostics carried by err, if it is or wraps a
// *DiagnosticsError.
func Diagnostics(err error) ([]ir.Diagnostic, bool) {
	var de *DiagnosticsError
	if errors.As(err, &de) {
		return de.Diagnostics, true
	}
	return nil, false
}
