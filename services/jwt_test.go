package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWT() *JWTService {
	return &JWTService{AccessTokenDuration: time.Hour, jwtSecretKey: "test-secret"}
}

func TestJWTRoundTrip(t *testing.T) {
	svc := testJWT()

	token, err := svc.ToJWT("user-1", "teacher")
	require.NoError(t, err)

	userID, role, err := svc.VerifyJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "teacher", role)
}

func TestJWTRejectsTamperedToken(t *testing.T) {
	svc := testJWT()

	token, err := svc.ToJWT("user-1", "student")
	require.NoError(t, err)

	_, _, err = svc.VerifyJWTToken(token + "x")
	assert.Error(t, err)

	other := &JWTService{AccessTokenDuration: time.Hour, jwtSecretKey: "different-secret"}
	forged, err := other.ToJWT("user-1", "admin")
	require.NoError(t, err)

	_, _, err = svc.VerifyJWTToken(forged)
	assert.Error(t, err)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	svc := &JWTService{AccessTokenDuration: -time.Minute, jwtSecretKey: "test-secret"}

	token, err := svc.ToJWT("user-1", "student")
	require.NoError(t, err)

	_, _, err = svc.VerifyJWTToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	svc := testJWT()

	token, err := svc.ExtractTokenFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = svc.ExtractTokenFromHeader("")
	assert.Error(t, err)

	_, err = svc.ExtractTokenFromHeader("Basic abc")
	assert.Error(t, err)

	_, err = svc.ExtractTokenFromHeader("Bearer")
	assert.Error(t, err)
}
