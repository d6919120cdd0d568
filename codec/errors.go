package codec

import "github.com/pkg/errors"

// DecoderError is raised from the decode loop or FinishDecode. It carries a
// hex-dump of the input region that produced it, auto-populated if the
// caller didn't supply one (§4.2, property 9).
type DecoderError struct {
	cause   error
	HexDump string
}

// NewDecoderError wraps cause as a DecoderError. If cause is already a
// *DecoderError it is returned unchanged, so a decoder is free to return
// one of its own without double-wrapping.
func NewDecoderError(cause error) *DecoderError {
	if de, ok := cause.(*DecoderError); ok {
		return de
	}
	return &DecoderError{cause: errors.WithStack(cause)}
}

func (e *DecoderError) Error() string {
	if e.HexDump == "" {
		return "decode error: " + e.cause.Error()
	}
	return "decode error: " + e.cause.Error() + "\n" + e.HexDump
}

// Cause returns the wrapped error, for github.com/pkg/errors-style
// unwrapping chains.
func (e *DecoderError) Cause() error { return errors.Unwrap(e.cause) }

// Unwrap supports errors.Is/As against the wrapped cause.
func (e *DecoderError) Unwrap() error { return e.cause }

// RecoverableDecoderError is a DecoderError the decoder asserts it can
// resume from, provided the input position advanced (§4.2 recoverability
// rule, §7).
type RecoverableDecoderError struct {
	*DecoderError
}

// NewRecoverableDecoderError wraps cause as a RecoverableDecoderError.
func NewRecoverableDecoderError(cause error) *RecoverableDecoderError {
	if re, ok := cause.(*RecoverableDecoderError); ok {
		return re
	}
	return &RecoverableDecoderError{DecoderError: NewDecoderError(cause)}
}

// IsRecoverable reports whether err itself is a *RecoverableDecoderError.
// Wrapped causes in err's chain are not inspected.
func IsRecoverable(err error) bool {
	_, ok := err.(*RecoverableDecoderError)
	return ok
}

// EncoderError is raised from the encode path (§4.4); foreign errors are
// wrapped.
type EncoderError struct {
	cause error
}

// NewEncoderError wraps cause as an EncoderError.
func NewEncoderError(cause error) *EncoderError {
	if ee, ok := cause.(*EncoderError); ok {
		return ee
	}
	return &EncoderError{cause: errors.WithStack(cause)}
}

func (e *EncoderError) Error() string { return "encode error: " + e.cause.Error() }

// Cause returns the wrapped error.
func (e *EncoderError) Cause() error { return errors.Unwrap(e.cause) }

// Unwrap supports errors.Is/As against the wrapped cause.
func (e *EncoderError) Unwrap() error { return e.cause }

// IllegalUsage signals a programming error: duplicate filter-instance add,
// a second EncoderOutput.Write within one encode call, nil codec
// components at construction, or a non-conforming type identifier without
// a zero-arg constructor (§7).
type IllegalUsage struct {
	msg string
}

// NewIllegalUsage creates an IllegalUsage error with the given message.
func NewIllegalUsage(msg string) *IllegalUsage {
	return &IllegalUsage{msg: msg}
}

func (e *IllegalUsage) Error() string { return "illegal usage: " + e.msg }
