package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/albin6/cellsphere/pkg/config"
)

var fastParams = config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}

func TestHashAndVerifyPasscode(t *testing.T) {
	encoded, err := HashPasscode("482913", fastParams)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=64,t=1,p=1$"))

	ok, err := VerifyPasscode("482913", encoded)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPasscode("482914", encoded)
	require.NoError(t, err)
	require.False(t, ok)

	again, err := HashPasscode("482913", fastParams)
	require.NoError(t, err)
	require.NotEqual(t, encoded, again, "salts must differ")
}

func TestHashPasscodeRejectsEmpty(t *testing.T) {
	_, err := HashPasscode("", fastParams)
	require.Error(t, err)
}

func TestVerifyPasscodeMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=x,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$***$a2V5",
	} {
		_, err := VerifyPasscode("1", encoded)
		require.ErrorIs(t, err, ErrMalformedHash, encoded)
	}
}

func TestGeneratePasscode(t *testing.T) {
	code, err := GeneratePasscode(6)
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, r := range code {
		require.True(t, r >= '0' && r <= '9')
	}

	_, err = GeneratePasscode(0)
	require.Error(t, err)
}
