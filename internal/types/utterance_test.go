package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceRole(t *testing.T) {
	assert.Equal(t, RoleAdult, CoerceRole("adult"))
	assert.Equal(t, RoleChild, CoerceRole("child"))

	// Everything outside the closed vocabulary degrades to unknown.
	assert.Equal(t, RoleUnknown, CoerceRole("parent"))
	assert.Equal(t, RoleUnknown, CoerceRole("ADULT"))
	assert.Equal(t, RoleUnknown, CoerceRole(""))
	assert.Equal(t, RoleUnknown, CoerceRole("speaker_0"))
}

func TestCoerceCode(t *testing.T) {
	for _, c := range AllCodes {
		assert.Equal(t, c, CoerceCode(string(c)))
	}

	// Unrecognized labels fall into the neutral bucket.
	assert.Equal(t, CodeNeutral, CoerceCode("encouragement"))
	assert.Equal(t, CodeNeutral, CoerceCode("PRAISE"))
	assert.Equal(t, CodeNeutral, CoerceCode(""))
}

func TestIsAdult(t *testing.T) {
	adult := RoleAdult
	child := RoleChild

	assert.True(t, (&Utterance{Role: &adult}).IsAdult())
	assert.False(t, (&Utterance{Role: &child}).IsAdult())
	assert.False(t, (&Utterance{}).IsAdult())
}
