// Package field pulls typed values out of an absolute byte offset in an
// io.ReaderAt, in one of the three encodings the RG16 wire format mixes
// throughout its header hierarchy: packed BCD (including nibble-aligned
// fields), big-endian unsigned binary integers of 1-8 bytes, and big-endian
// IEEE-754 single precision floats.
//
// An io.ReaderAt is the idiomatic stand-in for the "byte source" RG16
// decoding needs: it is satisfied by both *os.File and *bytes.Reader, so the
// same read path serves on-disk files and in-memory buffers without the
// decoder ever caring which it has, and it never requires sequential access.
package field

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/fairfield-nodal/rg16/errs"
)

// BCDWidth describes a BCD field's extent in nibbles, replacing the
// fractional byte-count ("0.5", "1.5") the format's documentation uses with
// an explicit, non-lossy descriptor.
//
// A field with HasHalfByte set consumes one extra leading nibble from the
// byte at the read offset before any whole bytes that follow; which of that
// byte's two nibbles contributes is selected by the highNibbleFirst argument
// passed to ReadBCD, not by this struct.
type BCDWidth struct {
	WholeBytes  int
	HasHalfByte bool
}

// BCDWhole describes a BCD field spanning n whole bytes (n >= 1).
func BCDWhole(n int) BCDWidth {
	return BCDWidth{WholeBytes: n}
}

// BCDHalfByte describes a BCD field spanning a single nibble.
func BCDHalfByte() BCDWidth {
	return BCDWidth{HasHalfByte: true}
}

// BCDWithLeadingHalfByte describes a BCD field spanning one leading nibble
// plus wholeBytes full bytes, e.g. the width-1.5 Julian day field which
// shares its first byte with an adjacent nibble-packed field.
func BCDWithLeadingHalfByte(wholeBytes int) BCDWidth {
	return BCDWidth{WholeBytes: wholeBytes, HasHalfByte: true}
}

// byteCount returns the number of bytes the field's range spans, counting a
// leading half byte as a whole byte.
func (w BCDWidth) byteCount() int {
	n := w.WholeBytes
	if w.HasHalfByte {
		n++
	}

	return n
}

// ReadBCD decodes a packed binary-coded-decimal field at offset, whose
// extent is described by w. Each nibble is a decimal digit 0-9, concatenated
// most-significant nibble first; nibbles outside 0-9 are accepted and
// decoded as their raw numeric value without validation.
//
// highNibbleFirst only matters when w.HasHalfByte is set: it selects which
// nibble of the fractional byte contributes to the value (true = the upper
// nibble).
func ReadBCD(source io.ReaderAt, offset int64, w BCDWidth, highNibbleFirst bool) (uint64, error) {
	buf, err := readBytes(source, offset, w.byteCount())
	if err != nil {
		return 0, err
	}

	var v uint64
	idx := 0

	if w.HasHalfByte {
		v = v*10 + uint64(nibble(buf[0], highNibbleFirst))
		idx = 1
	}

	for i := 0; i < w.WholeBytes; i++ {
		b := buf[idx+i]
		v = v*10 + uint64(nibble(b, true))
		v = v*10 + uint64(nibble(b, false))
	}

	return v, nil
}

// ReadBinary decodes an unsigned big-endian integer of the given width in
// bytes. Every width from 1 through 8 is supported, including widths with no
// native Go integer type (3, 5, 6, 7), by accumulating byte by byte rather
// than assuming a machine word size.
func ReadBinary(source io.ReaderAt, offset int64, width int) (uint64, error) {
	if width < 1 || width > 8 {
		return 0, fmt.Errorf("field: invalid binary width %d, want 1-8", width)
	}

	buf, err := readBytes(source, offset, width)
	if err != nil {
		return 0, err
	}

	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}

	return v, nil
}

// ReadIEEE32 decodes a 4-byte big-endian IEEE-754 single precision float.
func ReadIEEE32(source io.ReaderAt, offset int64) (float32, error) {
	buf, err := readBytes(source, offset, 4)
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(binary.BigEndian.Uint32(buf)), nil
}

// nibble returns the high or low 4 bits of b.
func nibble(b byte, high bool) byte {
	if high {
		return b >> 4
	}

	return b & 0x0F
}

// readBytes reads exactly n bytes at offset, distinguishing a short source
// (errs.TruncatedSourceError) from an underlying I/O failure that should
// propagate as-is.
func readBytes(source io.ReaderAt, offset int64, n int) ([]byte, error) {
	buf := make([]byte, n)

	read, err := source.ReadAt(buf, offset)
	if read == n {
		return buf, nil
	}

	if err == nil {
		// Shouldn't happen per io.ReaderAt's contract, but treat a short
		// read with no error as truncation rather than panicking on it.
		return nil, &errs.TruncatedSourceError{Offset: offset, Want: n}
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, &errs.TruncatedSourceError{Offset: offset, Want: n}
	}

	return nil, fmt.Errorf("field: reading offset %d: %w", offset, err)
}
