package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(4)
	require.NoError(t, err)
	assert.Len(t, code, 8)
	assert.Regexp(t, `^[0-9A-F]+$`, code)
}

func TestGenerateDigits(t *testing.T) {
	digits, err := GenerateDigits(4)
	require.NoError(t, err)
	assert.Len(t, digits, 4)
	assert.Regexp(t, `^\d{4}$`, digits)
}

func TestGenerateTicketID(t *testing.T) {
	id, err := GenerateTicketID("SC")
	require.NoError(t, err)
	assert.Regexp(t, `^SC-\d{4}$`, id)
}

func TestConnState_Transitions(t *testing.T) {
	c := NewConnState()
	assert.Equal(t, StateUnknown, c.State())
	assert.Equal(t, "unknown", c.State().String())
	assert.True(t, c.LastChecked().IsZero())

	c.RecordSuccess()
	assert.Equal(t, StateConnected, c.State())
	assert.Equal(t, "connected", c.State().String())
	assert.NoError(t, c.LastError())
	assert.False(t, c.LastChecked().IsZero())

	c.RecordFailure(errors.New("connection refused"))
	assert.Equal(t, StateError, c.State())
	assert.Equal(t, "error", c.State().String())
	assert.EqualError(t, c.LastError(), "connection refused")

	// A later success clears the recorded error.
	c.RecordSuccess()
	assert.Equal(t, StateConnected, c.State())
	assert.NoError(t, c.LastError())
}
