package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/albin6/cellsphere/pkg/config"
	"github.com/albin6/cellsphere/pkg/enums"
)

func newTestSigner(t *testing.T, minutes int) *Signer {
	t.Helper()
	signer, err := NewSigner(config.JWTConfig{Secret: "secret", Issuer: "cellsphere", ExpirationMinutes: minutes})
	require.NoError(t, err)
	return signer
}

func TestSignerRoundTrip(t *testing.T) {
	signer := newTestSigner(t, 30)
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := signer.Mint(now, AccessTokenPayload{UserID: userID, Role: enums.RoleAdmin, Email: "ops@cellsphere.test"})
	require.NoError(t, err)

	claims, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, enums.RoleAdmin, claims.Role)
	require.Equal(t, "ops@cellsphere.test", claims.Email)
	require.Equal(t, "cellsphere", claims.Issuer)
	require.Equal(t, userID.String(), claims.Subject)
	require.NotEmpty(t, claims.ID)
	require.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestNewSignerValidatesConfig(t *testing.T) {
	for name, cfg := range map[string]config.JWTConfig{
		"secret": {Issuer: "x", ExpirationMinutes: 1},
		"issuer": {Secret: "s", ExpirationMinutes: 1},
		"ttl":    {Secret: "s", Issuer: "x"},
	} {
		_, err := NewSigner(cfg)
		require.Error(t, err, name)
	}
}

func TestParseRejectsTampering(t *testing.T) {
	signer := newTestSigner(t, 10)
	token, err := signer.Mint(time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleUser})
	require.NoError(t, err)

	_, err = signer.Parse(token + "x")
	require.Error(t, err)

	other, err := NewSigner(config.JWTConfig{Secret: "different", Issuer: "cellsphere", ExpirationMinutes: 10})
	require.NoError(t, err)
	_, err = other.Parse(token)
	require.Error(t, err)

	foreign, err := NewSigner(config.JWTConfig{Secret: "secret", Issuer: "someone-else", ExpirationMinutes: 10})
	require.NoError(t, err)
	_, err = foreign.Parse(token)
	require.Error(t, err)
}

func TestParseReportsExpiry(t *testing.T) {
	signer := newTestSigner(t, 15)
	token, err := signer.Mint(time.Now().Add(-time.Hour), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleUser})
	require.NoError(t, err)

	_, err = signer.Parse(token)
	require.True(t, errors.Is(err, ErrTokenExpired), "got %v", err)
}

func TestParseRejectsForeignAlgorithm(t *testing.T) {
	signer := newTestSigner(t, 10)
	claims := AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cellsphere",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = signer.Parse(token)
	require.Error(t, err)
}

func TestMintRejectsBadPayload(t *testing.T) {
	signer := newTestSigner(t, 5)

	_, err := signer.Mint(time.Now(), AccessTokenPayload{UserID: uuid.New()})
	require.Error(t, err)

	_, err = signer.Mint(time.Now(), AccessTokenPayload{Role: enums.RoleUser})
	require.Error(t, err)
}
