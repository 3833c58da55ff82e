package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/errs"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/models"
)

// AuthService owns user registration, login and bearer-token validation.
// Passwords only ever exist as bcrypt hashes; tokens are HS256 JWTs carrying
// {sub: username, user_id, exp}.
type AuthService struct {
	db       core.DbClient
	secret   []byte
	tokenTTL time.Duration

	// now is swappable so expiry behavior is testable.
	now func() time.Time
}

func NewAuthService(db core.DbClient, secret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &AuthService{
		db:       db,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Register creates a user with a bcrypt-hashed password. A taken username
// surfaces as errs.ErrUsernameTaken and leaves the existing row untouched.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the password against the stored hash and issues a
// time-boxed bearer token. Unknown user and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", errs.ErrInvalidCredentials
	}
	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":     user.Username,
		"user_id": user.ID,
		"exp":     jwt.NewNumericDate(s.now().Add(s.tokenTTL)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature and expiry and returns the bound identity.
// Every failure collapses into errs.ErrInvalidToken regardless of payload.
func (s *AuthService) ValidateToken(tokenStr string) (userID, username string, err error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil || !token.Valid {
		return "", "", errs.ErrInvalidToken
	}

	userID, _ = claims["user_id"].(string)
	username, _ = claims["sub"].(string)
	if userID == "" || username == "" {
		return "", "", errs.ErrInvalidToken
	}
	return userID, username, nil
}
