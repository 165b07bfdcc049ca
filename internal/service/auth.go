package service

import (
	"context"
	"ecommerce_api/internal/apperr"
	"ecommerce_api/internal/domain"
	"ecommerce_api/internal/utils"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// TokenPair is returned on login and refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthService registers users and issues, refreshes and revokes tokens
type AuthService struct {
	db         *gorm.DB
	rdb        *redis.Client // Revoked token ids; nil disables revocation
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(db *gorm.DB, rdb *redis.Client, secret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{db: db, rdb: rdb, secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Register creates an active user with a bcrypt hashed password
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, apperr.Validation("Name and email are required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Validation("Password must have at least %d characters", MinPasswordLength)
	}
	hash, err := utils.HashPassword(password) // Hash the password
	if err != nil {
		return nil, err
	}
	user := domain.User{Name: name, Email: email, Password: hash, Active: true} // New users start active
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := exists(tx.Model(&domain.User{}).Where("email = ?", email))
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("Email already registered")
		}
		return tx.Create(&user).Error // Insert user
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("User registered")
	return &user, nil
}

func (s *AuthService) issue(userID uint) (*TokenPair, error) {
	access, err := utils.GenerateJWT(userID, utils.AccessToken, s.secret, s.accessTTL) // Short lived access token
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateJWT(userID, utils.RefreshToken, s.secret, s.refreshTTL) // Long lived refresh token
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// Login checks the credentials and returns a fresh token pair
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil || !user.Active || !utils.CheckPassword(user.Password, password) {
		return nil, apperr.Unauthorized("Incorrect email or password")
	}
	return s.issue(user.ID)
}

// Refresh exchanges a valid refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.verify(ctx, refreshToken, utils.RefreshToken) // Must be a live refresh token
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil || !user.Active {
		return nil, apperr.Unauthorized("User not found")
	}
	access, err := utils.GenerateJWT(user.ID, utils.AccessToken, s.secret, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refreshToken, TokenType: "bearer"}, nil
}

// Authenticate validates an access token for a protected request
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*utils.Claims, error) {
	return s.verify(ctx, accessToken, utils.AccessToken)
}

// Logout revokes the access token until it expires
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	return utils.RevokeToken(ctx, s.rdb, claims.ID, claims.ExpiresAt.Time)
}

func (s *AuthService) verify(ctx context.Context, token, kind string) (*utils.Claims, error) {
	claims, err := utils.ParseJWT(token, s.secret, kind) // Signature, expiry and kind
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	revoked, err := utils.IsTokenRevoked(ctx, s.rdb, claims.ID) // Logged out tokens are rejected
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperr.Unauthorized("Token has been revoked")
	}
	return claims, nil
}
