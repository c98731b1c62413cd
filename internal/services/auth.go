package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/repos"
)

// AuthService is deliberately thin: the production directory binding lives
// behind the LDAP gateway, this service only covers the local fallback
// accounts and session token issue/validation.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateAccessToken(tokenString string) (uuid.UUID, error)
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type authService struct {
	db         *gorm.DB
	log        *logger.Logger
	userRepo   repos.UserRepo
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, secret string, accessTTL, refreshTTL time.Duration) AuthService {
	return &authService{
		db:         db,
		log:        baseLog.With("service", "AuthService"),
		userRepo:   userRepo,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (a *authService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	user, err := a.userRepo.GetByUsername(ctx, nil, username)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		a.log.Warn("Failed login attempt", "username", username)
		return nil, fmt.Errorf("invalid credentials")
	}
	return a.issuePair(user.ID)
}

func (a *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, kind, err := a.parse(refreshToken)
	if err != nil {
		return nil, err
	}
	if kind != "refresh" {
		return nil, fmt.Errorf("not a refresh token")
	}
	if _, err := a.userRepo.GetByID(ctx, nil, userID); err != nil {
		return nil, fmt.Errorf("unknown user")
	}
	return a.issuePair(userID)
}

func (a *authService) ValidateAccessToken(tokenString string) (uuid.UUID, error) {
	userID, kind, err := a.parse(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	if kind != "access" {
		return uuid.Nil, fmt.Errorf("not an access token")
	}
	return userID, nil
}

func (a *authService) issuePair(userID uuid.UUID) (*TokenPair, error) {
	access, err := a.sign(userID, "access", a.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := a.sign(userID, "refresh", a.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (a *authService) sign(userID uuid.UUID, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"kind": kind,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (a *authService) parse(tokenString string) (uuid.UUID, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	kind, _ := claims["kind"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid token subject")
	}
	return userID, kind, nil
}

// HashPassword is used by account bootstrap.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
