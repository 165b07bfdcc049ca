package service

import (
	"context"
	"ecommerce_api/internal/apperr"
	"ecommerce_api/internal/db/dbtest"
	"ecommerce_api/internal/domain"
	"ecommerce_api/internal/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(dbtest.New(t), nil, testSecret, 30*time.Minute, 7*24*time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Ana", "ana@shop.test", "short")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	user, err := auth.Register(ctx, "Ana", " Ana@Shop.test ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "ana@shop.test", user.Email)
	assert.NotEqual(t, "password123", user.Password)

	_, err = auth.Register(ctx, "Other", "ana@shop.test", "password123")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = auth.Login(ctx, "ana@shop.test", "wrong-password")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	_, err = auth.Login(ctx, "nobody@shop.test", "password123")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	pair, err := auth.Login(ctx, "ANA@shop.test", "password123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	claims, err := auth.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// A refresh token is not accepted where an access token is expected
	_, err = auth.Authenticate(ctx, pair.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestRefresh(t *testing.T) {
	auth := newAuth(t)
	ctx := context.Background()
	user, err := auth.Register(ctx, "Ana", "ana@shop.test", "password123")
	require.NoError(t, err)
	pair, err := auth.Login(ctx, "ana@shop.test", "password123")
	require.NoError(t, err)

	refreshed, err := auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)
	claims, err := auth.Authenticate(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = auth.Refresh(ctx, pair.AccessToken)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	require.NoError(t, auth.db.Model(&domain.User{}).Where("id = ?", user.ID).Update("active", false).Error)
	_, err = auth.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestLogoutWithoutRedisIsNoop(t *testing.T) {
	auth := newAuth(t)
	ctx := context.Background()
	_, err := auth.Register(ctx, "Ana", "ana@shop.test", "password123")
	require.NoError(t, err)
	pair, err := auth.Login(ctx, "ana@shop.test", "password123")
	require.NoError(t, err)

	claims, err := auth.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, claims))

	_, err = auth.Authenticate(ctx, pair.AccessToken)
	assert.NoError(t, err)
	_, err = utils.ParseJWT(pair.AccessToken, "other-secret", utils.AccessToken)
	assert.Error(t, err)
}
