package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationID_OrderIndependent(t *testing.T) {
	pairs := [][2]string{
		{"u1", "u2"},
		{"65f1c0a2b3d4e5f60718293a", "65f1c0a2b3d4e5f60718293b"},
		{"zeta", "alpha"},
		{"same", "same"},
	}
	for _, p := range pairs {
		assert.Equal(t, ConversationID(p[0], p[1]), ConversationID(p[1], p[0]), "pair %v", p)
	}
}

func TestConversationID_SortsLexicographically(t *testing.T) {
	assert.Equal(t, "a1_b2", ConversationID("b2", "a1"))
	assert.Equal(t, "a1_b2", ConversationID("a1", "b2"))
}

func TestConversationID_DistinctPairsDiffer(t *testing.T) {
	assert.NotEqual(t, ConversationID("u1", "u2"), ConversationID("u1", "u3"))
	assert.NotEqual(t, ConversationID("u1", "u2"), ConversationID("u2", "u3"))
	assert.NotEqual(t, ConversationID("u1", "u12"), ConversationID("u11", "u2"))
}

func TestParticipants(t *testing.T) {
	a, b, ok := Participants(ConversationID("u9", "u3"))
	require.True(t, ok)
	assert.Equal(t, "u3", a)
	assert.Equal(t, "u9", b)

	for _, bad := range []string{"", "u1", "_u1", "u1_", "u1_u2_u3"} {
		_, _, ok := Participants(bad)
		assert.False(t, ok, "input %q", bad)
	}
}
