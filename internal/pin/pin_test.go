package pin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("4921")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	assert.True(t, Verify("4921", encoded))
	assert.False(t, Verify("4922", encoded))
	assert.False(t, Verify("", encoded))
}

func TestVerifyRejectsMalformedEncodings(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	}
	for _, encoded := range cases {
		assert.False(t, Verify("4921", encoded), "encoded=%q", encoded)
	}
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("4921")
	require.NoError(t, err)
	second, err := Hash("4921")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
