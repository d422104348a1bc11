package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/inamate/spider/internal/typeid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const (
	bcryptCost = 12
	tokenTTL   = 24 * time.Hour
)

// Service issues controller tokens. Without a password hash the playground
// is open and any name gets a token.
type Service struct {
	jwtSecret    []byte
	passwordHash []byte
	now          func() time.Time
}

func NewService(jwtSecret, passwordHash string) *Service {
	return &Service{
		jwtSecret:    []byte(jwtSecret),
		passwordHash: []byte(passwordHash),
		now:          time.Now,
	}
}

type AuthResult struct {
	Token      string     `json:"token"`
	Controller Controller `json:"controller"`
	ExpiresAt  time.Time  `json:"expiresAt"`
}

type Controller struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Open reports whether tokens are issued without a password.
func (s *Service) Open() bool {
	return len(s.passwordHash) == 0
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) Login(name, password string) (*AuthResult, error) {
	if !s.Open() {
		if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	return s.Refresh(Controller{ID: typeid.Controller.New(), Name: name})
}

// Refresh issues a new token for an already authenticated controller.
func (s *Service) Refresh(c Controller) (*AuthResult, error) {
	token, exp, err := s.issueToken(c)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Controller: c, ExpiresAt: exp}, nil
}

func (s *Service) ValidateToken(tokenString string) (*Controller, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	id, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if err := typeid.Controller.Check(id); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	name, _ := claims["name"].(string)

	return &Controller{ID: id, Name: name}, nil
}

func (s *Service) issueToken(c Controller) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(tokenTTL)
	claims := jwt.MapClaims{
		"sub":  c.ID,
		"name": c.Name,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, exp, nil
}
