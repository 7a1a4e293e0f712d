package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"lurdinha/internal/model"
	"lurdinha/internal/repository"
	"lurdinha/pkg/apperr"
)

// AuthService issues and validates guest tokens. There are no passwords:
// a guest signs in with a display name and gets a uid plus a JWT carrying it.
type AuthService struct {
	userRepo  repository.UserRepo
	jwtSecret []byte
}

func NewAuthService(userRepo repository.UserRepo, jwtSecret string) *AuthService {
	if jwtSecret == "" {
		jwtSecret = "dev-secret-change-in-production"
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

// GuestLogin creates (or refreshes) a guest profile and returns its token.
func (s *AuthService) GuestLogin(ctx context.Context, name, photoURL string) (*model.GuestLoginResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.CodeValidation, "name is required")
	}

	uid := "u_" + uuid.New().String()[:8]
	user := &model.User{
		UID:       uid,
		Name:      name,
		PhotoURL:  photoURL,
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to save user")
	}

	claims := &model.UserClaims{
		UID:  uid,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.GuestLoginResponse{UID: uid, Token: tokenString}, nil
}

// ValidateToken parses a guest JWT and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeAuthRequired, "invalid or expired token")
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid {
		return nil, apperr.New(apperr.CodeAuthRequired, "invalid or expired token")
	}
	return claims, nil
}

// GetUser returns a stored guest profile.
func (s *AuthService) GetUser(ctx context.Context, uid string) (*model.User, error) {
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to load user")
	}
	if user == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "user %s not found", uid)
	}
	return user, nil
}
