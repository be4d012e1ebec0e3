// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/mir/ir"
)

// ErrorKind categorizes HLSL translation errors.
type ErrorKind uint8

const (
	// ErrUnsupportedFeature indicates a construct the target shader model cannot express.
	ErrUnsupportedFeature ErrorKind = iota

	// ErrInvalidShaderModel indicates an invalid or unsupported shader model.
	ErrInvalidShaderModel

	// ErrInternalError indicates an internal compiler error.
	ErrInternalError

	// ErrInvalidModule indicates the module has diagnostics or was not
	// analyzed and scheduled.
	ErrInvalidModule
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedFeature:
		return "UnsupportedFeature"
	case ErrInvalidShaderModel:
		return "InvalidShaderModel"
	case ErrInternalError:
		return "InternalError"
	case ErrInvalidModule:
		return "InvalidModule"
	default:
		return "Unknown"
	}
}

// Error represents an HLSL translation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Value optionally identifies the value being translated.
	Value ir.ValueID
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Value != ir.NoValue {
		return fmt.Sprintf("hlsl %s at %%%d: %s", e.Kind, e.Value, e.Message)
	}
	return fmt.Sprintf("hlsl %s: %s", e.Kind, e.Message)
}

// NewError creates a new HLSL error not tied to a value.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// IsUnsupportedFeature returns true if the error is ErrUnsupportedFeature.
func (e *Error) IsUnsupportedFeature() bool {
	return e.Kind == ErrUnsupportedFeature
}

// IsInternalError returns true if the error is ErrInternalError.
func (e *Error) IsInternalError() bool {
	return e.Kind == ErrInternalError
}
