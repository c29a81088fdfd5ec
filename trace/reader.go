package trace

import (
	"io"

	"github.com/fairfield-nodal/rg16/field"
)

// fieldReader accumulates the first error across a sequence of field reads;
// see the identical helper in package header for the rationale.
type fieldReader struct {
	source io.ReaderAt
	err    error
}

func (r *fieldReader) bcd(offset int64, w field.BCDWidth, highNibbleFirst bool) uint64 {
	if r.err != nil {
		return 0
	}

	v, err := field.ReadBCD(r.source, offset, w, highNibbleFirst)
	if err != nil {
		r.err = err
	}

	return v
}

func (r *fieldReader) binary(offset int64, width int) uint64 {
	if r.err != nil {
		return 0
	}

	v, err := field.ReadBinary(r.source, offset, width)
	if err != nil {
		r.err = err
	}

	return v
}

func (r *fieldReader) ieee32(offset int64) float32 {
	if r.err != nil {
		return 0
	}

	v, err := field.ReadIEEE32(r.source, offset)
	if err != nil {
		r.err = err
	}

	return v
}
