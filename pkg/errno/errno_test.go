package errno

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	code, msg := Decode(nil)
	assert.Equal(t, OK.Code, code)
	assert.Equal(t, OK.Message, msg)

	code, msg = Decode(ErrPreviewFailed)
	assert.Equal(t, ErrPreviewFailed.Code, code)
	assert.Equal(t, ErrPreviewFailed.Message, msg)

	code, _ = Decode(errors.New("boom"))
	assert.Equal(t, InternalServerError.Code, code)
}

func TestDecode_WrappedErrno(t *testing.T) {
	wrapped := fmt.Errorf("%w: gateway 500", ErrPreviewFailed)

	code, msg := Decode(wrapped)
	assert.Equal(t, ErrPreviewFailed.Code, code)
	assert.Equal(t, ErrPreviewFailed.Message, msg)

	twice := fmt.Errorf("starting review: %w", wrapped)
	code, _ = Decode(twice)
	assert.Equal(t, ErrPreviewFailed.Code, code)
}
