// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "fmt"

// ErrorKind categorizes material compilation diagnostics.
type ErrorKind uint8

const (
	// ErrTypeError indicates an operand failed an operator's filter or no
	// common type exists.
	ErrTypeError ErrorKind = iota

	// ErrMissingValue indicates a required input is unconnected and has no default.
	ErrMissingValue

	// ErrDomainConstraint indicates a semantically invalid configuration.
	ErrDomainConstraint

	// ErrUnsupportedConstruct indicates there is no lowering rule for the target.
	ErrUnsupportedConstruct

	// ErrInternal indicates an internal compiler error.
	ErrInternal
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrTypeError:
		return "TypeError"
	case ErrMissingValue:
		return "MissingValue"
	case ErrDomainConstraint:
		return "DomainConstraint"
	case ErrUnsupportedConstruct:
		return "UnsupportedConstruct"
	case ErrInternal:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// Diagnostic is a user-facing error attached to the graph node that caused it.
type Diagnostic struct {
	// Origin names the node the error was raised for. Empty for errors not
	// attributable to a single node.
	Origin string

	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Origin != "" {
		return fmt.Sprintf("%s: %s: %s", d.Origin, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}
