package vidgen_test

import (
	"errors"
	"testing"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/stretchr/testify/assert"
)

func TestConversionErrorWithMessage(t *testing.T) {
	newErr := vidgen.ErrMalformedInput.WithMessage("asdfqwerty")
	assert.Equal(
		t, "Malformed input: asdfqwerty", newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, vidgen.ErrMalformedInput)
}

func TestConversionErrorWrap(t *testing.T) {
	originalErr := errors.New("original error")
	newErr := vidgen.ErrIOFailed.Wrap(originalErr)
	expectedMessage := "Input/output error: original error"

	assert.EqualValues(t, expectedMessage, newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
	assert.ErrorIs(t, newErr, vidgen.ErrIOFailed, "sentinel not set as parent")
}

func TestConversionErrorChainedMessages(t *testing.T) {
	newErr := vidgen.ErrBudgetUnreachable.WithMessage("frame 3").WithMessage("101700 cycles")
	assert.Equal(t, "Cycle budget unreachable: frame 3: 101700 cycles", newErr.Error())
	assert.ErrorIs(t, newErr, vidgen.ErrBudgetUnreachable)
	assert.NotErrorIs(t, newErr, vidgen.ErrUnrepresentableLayout)
}

func TestWarnings(t *testing.T) {
	var warnings vidgen.Warnings
	assert.NoError(t, warnings.ErrorOrNil())
	assert.Equal(t, 0, warnings.Len())

	warnings.Add(nil)
	warnings.Add(vidgen.ErrBudgetUnreachable.WithMessage("frame 1"))
	warnings.Add(vidgen.ErrBudgetUnreachable.WithMessage("frame 7"))

	assert.Equal(t, 2, warnings.Len())
	err := warnings.ErrorOrNil()
	assert.Error(t, err)
	assert.ErrorIs(t, err, vidgen.ErrBudgetUnreachable)
}
