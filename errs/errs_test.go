package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncatedSourceErrorUnwraps(t *testing.T) {
	err := &TruncatedSourceError{Offset: 42, Want: 8}
	assert.True(t, errors.Is(err, ErrTruncatedSource))
	assert.Contains(t, err.Error(), "42")
}

func TestNotRG16ErrorUnwraps(t *testing.T) {
	err := &NotRG16Error{DetectedVersion: 261, DetectedManufacturer: 20, DetectedSampleFormat: 8058}
	assert.True(t, errors.Is(err, ErrNotRG16))
	assert.Contains(t, err.Error(), "261")
}

func TestUnknownEnumCodeErrorUnwraps(t *testing.T) {
	err := &UnknownEnumCodeError{FieldName: "clock_stop_method", RawValue: 9}
	assert.True(t, errors.Is(err, ErrUnknownEnumCode))

	var target *UnknownEnumCodeError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "clock_stop_method", target.FieldName)
}

func TestUnknownTraceExtensionBlockErrorUnwraps(t *testing.T) {
	err := &UnknownTraceExtensionBlockError{Index: 11}
	assert.True(t, errors.Is(err, ErrUnknownTraceExtensionBlock))
}
