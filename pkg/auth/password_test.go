package auth_test

import (
	"testing"

	"github.com/BradenHooton/coffer/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := auth.HashPassword("Sup3rSecret")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3rSecret", hash)

	assert.NoError(t, auth.ComparePassword(hash, "Sup3rSecret"))
	assert.Error(t, auth.ComparePassword(hash, "wrong-password"))
}

func TestHashPassword_RejectsEmpty(t *testing.T) {
	_, err := auth.HashPassword("")
	assert.Error(t, err)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, auth.ValidatePassword("Sup3rSecret"))

	cases := map[string]string{
		"too short":    "Ab1",
		"no uppercase": "lowercase1",
		"no lowercase": "UPPERCASE1",
		"no digit":     "NoDigitsHere",
		"too common":   "Password123",
	}
	for name, password := range cases {
		err := auth.ValidatePassword(password)
		assert.Error(t, err, name)
		if err != nil {
			// users always see the generic message
			assert.Equal(t, "invalid password", err.Error(), name)
		}
	}
}
