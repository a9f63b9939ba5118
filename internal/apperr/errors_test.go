package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("Id: %d", 7), KindNotFound},
		{"wrapped status", fmt.Errorf("approve: %w", Status("already approved")), KindStatus},
		{"plain error", errors.New("boom"), KindInternal},
		{"internal", Internal("db", errors.New("down")), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageOfHidesInternalDetails(t *testing.T) {
	assert.Equal(t, "Id: 7", MessageOf(NotFound("Id: %d", 7)))
	assert.Equal(t, "internal error", MessageOf(Internal("load user", errors.New("dial tcp: refused"))))
	assert.Equal(t, "internal error", MessageOf(errors.New("raw")))
}

func TestUnsupportedStateMessage(t *testing.T) {
	err := UnsupportedState("UNSUPPORTED_STATUS")
	assert.True(t, Is(err, KindUnsupportedState))
	assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", err.Message)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("duplicate")
	err := Internal("insert", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "INTERNAL: insert: duplicate", err.Error())
}
