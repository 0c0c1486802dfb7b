package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindUpstream, http.StatusBadRequest},
		{KindUnsupportedMedia, http.StatusUnsupportedMediaType},
		{KindNotFound, http.StatusNotFound},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestWrapAndKindOf(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("analyze: %w", Upstream(cause))

	assert.Equal(t, KindUpstream, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(cause))
	assert.Nil(t, Wrap(nil, KindInternal, "x"))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "[VALIDATION] no file", Validation("no file").Error())
	assert.Contains(t, UnsupportedMedia("text/plain").Error(), `"text/plain"`)
}
