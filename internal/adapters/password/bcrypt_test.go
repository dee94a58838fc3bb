package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)

	hash, err := hasher.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, hasher.Verify("hunter2", hash))
	assert.False(t, hasher.Verify("hunter3", hash))
	assert.False(t, hasher.Verify("hunter2", "not-a-bcrypt-hash"))
}

func TestBcryptHasher_DistinctSalts(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)

	h1, err := hasher.Hash("same-password")
	require.NoError(t, err)
	h2, err := hasher.Hash("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestNewBcryptHasherWithCost_ClampsInvalid(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasherWithCost(-1).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasherWithCost(99).cost)
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasherWithCost(bcrypt.MinCost).cost)
}
