package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lifegate/church-mgmt/internal/access"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	SessionFor(usercode, headChurchCode string) (*access.Session, error)
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetCredentials(email string) (*Credentials, error)
	GetUserByUsercode(usercode, headChurchCode string) (*User, error)
	GetGrants(usercode, headChurchCode string) ([]access.Grant, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(usercode, headChurchCode string) (string, error)
	GenerateRefreshToken(usercode, headChurchCode string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// User is the authenticated account within a head church.
type User struct {
	ID             int64  `json:"id"`
	Usercode       string `json:"usercode"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	HeadChurchCode string `json:"head_church_code"`
	IsActive       bool   `json:"is_active"`
}

// Credentials is the stored login record for an email address.
type Credentials struct {
	UserID         int64
	Usercode       string
	HeadChurchCode string
	PasswordHash   string
	IsActive       bool
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	Usercode       string `json:"usercode"`
	HeadChurchCode string `json:"head_church_code"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
