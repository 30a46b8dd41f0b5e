/*******************************************************************************
 * Copyright (c) 2024 Synecdoque
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, subject to the following conditions:
 *
 * The software is licensed under the MIT License. See the LICENSE file in this repository for details.
 ***************************************************************************SDG*/

// Package uaerrors models the error taxonomy that crosses the address
// space's public boundary: a small, closed set of kinds, each wrapping the
// underlying cause rather than replacing it.
package uaerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the error categories the address space surfaces.
type Kind int

const (
	// BadNodeClassInvalid means a base-attribute read returned a null or
	// unrecognized NodeClass.
	BadNodeClassInvalid Kind = iota
	// BadUnexpectedError wraps any other underlying failure surfaced at the
	// public boundary.
	BadUnexpectedError
	// ServiceError propagates a bad status code from a Read or Browse
	// verbatim from the Client.
	ServiceError
	// VariantMismatch means getObject/getVariable was invoked on an id
	// whose cached or fetched class is a different variant.
	VariantMismatch
)

func (k Kind) String() string {
	switch k {
	case BadNodeClassInvalid:
		return "BadNodeClassInvalid"
	case BadUnexpectedError:
		return "BadUnexpectedError"
	case ServiceError:
		return "ServiceError"
	case VariantMismatch:
		return "VariantMismatch"
	default:
		return "UnknownKind"
	}
}

// Error is a Kind plus a wrapped cause. The cause is never discarded:
// errors.Cause(err) and errors.Unwrap(err) both reach it.
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Cause() error { return e.cause }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, uaerrors.New(uaerrors.BadNodeClassInvalid, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an *Error of the given kind with no cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error of the given kind around cause. If cause is already
// an *Error of that kind it is returned unchanged.
func Wrap(kind Kind, cause error, msg string) *Error {
	if cause == nil {
		return New(kind, msg)
	}
	if existing, ok := cause.(*Error); ok && existing.Kind == kind {
		return existing
	}
	return &Error{Kind: kind, Msg: msg, cause: errors.WithStack(cause)}
}

// KindOf extracts the Kind of err, defaulting to BadUnexpectedError when err
// is not one of ours.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return BadUnexpectedError
}
