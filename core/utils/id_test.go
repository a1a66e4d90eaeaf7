package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateClientEventID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateClientEventID()
		require.NoError(t, err)
		assert.Len(t, id, 26)
		assert.True(t, IsClientEventID(id), id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestIsClientEventID(t *testing.T) {
	assert.True(t, IsClientEventID("abcdef0123456789"))
	assert.False(t, IsClientEventID("abcd"))
	assert.False(t, IsClientEventID("ABCDEF0123"))
	assert.False(t, IsClientEventID("evt_123456"))
	assert.False(t, IsClientEventID("wxyz012345"))
}

func TestGenerateRandomString(t *testing.T) {
	assert.Len(t, GenerateRandomString(16), 16)
	assert.NotEqual(t, GenerateRandomString(16), GenerateRandomString(16))
}
