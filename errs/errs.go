// Package errs defines the error taxonomy shared by every rg16 decoding
// component. Parameterless conditions are plain sentinel values; conditions
// that carry data (an offset, a field name, a code) are small struct types
// that wrap the matching sentinel so callers can use either errors.Is or
// errors.As.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions with no associated data.
var (
	// ErrTruncatedSource indicates a read past the end of the byte source.
	ErrTruncatedSource = errors.New("rg16: truncated source")

	// ErrNotRG16 indicates the source failed the RG16 format invariants.
	ErrNotRG16 = errors.New("rg16: not an RG16 file")

	// ErrUnknownEnumCode indicates an enumerated field held a code this
	// decoder doesn't recognize.
	ErrUnknownEnumCode = errors.New("rg16: unknown enum code")

	// ErrUnknownTraceExtensionBlock indicates a trace extension block index
	// outside the defined range 1..10.
	ErrUnknownTraceExtensionBlock = errors.New("rg16: unknown trace extension block")

	// ErrHeterogeneousStreamForMerge indicates a merge was attempted on
	// traces that don't share a sampling rate or sample dtype.
	ErrHeterogeneousStreamForMerge = errors.New("rg16: heterogeneous stream for merge")
)

// TruncatedSourceError reports a read that ran past the end of the byte
// source, naming the offset and number of bytes that were required.
type TruncatedSourceError struct {
	Offset int64
	Want   int
}

func (e *TruncatedSourceError) Error() string {
	return fmt.Sprintf("rg16: truncated source: need %d byte(s) at offset %d", e.Want, e.Offset)
}

func (e *TruncatedSourceError) Unwrap() error { return ErrTruncatedSource }

// NotRG16Error reports that the source failed one or more of the three RG16
// format invariants (sample format code, manufacturer code, version).
type NotRG16Error struct {
	DetectedVersion      uint64
	DetectedManufacturer uint64
	DetectedSampleFormat uint64
}

func (e *NotRG16Error) Error() string {
	return fmt.Sprintf(
		"rg16: not an RG16 file: version=%d manufacturer_code=%d sample_format_code=%d",
		e.DetectedVersion, e.DetectedManufacturer, e.DetectedSampleFormat,
	)
}

func (e *NotRG16Error) Unwrap() error { return ErrNotRG16 }

// UnknownEnumCodeError reports an enumerated field whose raw value has no
// entry in the corresponding lookup table.
type UnknownEnumCodeError struct {
	FieldName string
	RawValue  uint64
}

func (e *UnknownEnumCodeError) Error() string {
	return fmt.Sprintf("rg16: unknown enum code %d for field %q", e.RawValue, e.FieldName)
}

func (e *UnknownEnumCodeError) Unwrap() error { return ErrUnknownEnumCode }

// UnknownTraceExtensionBlockError reports a trace extension block index
// that falls outside the defined range 1..10.
type UnknownTraceExtensionBlockError struct {
	Index int
}

func (e *UnknownTraceExtensionBlockError) Error() string {
	return fmt.Sprintf("rg16: unknown trace extension block %d", e.Index)
}

func (e *UnknownTraceExtensionBlockError) Unwrap() error { return ErrUnknownTraceExtensionBlock }
