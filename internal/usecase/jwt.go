package usecase

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/julianthant/codecave-sub000/config"
	"github.com/julianthant/codecave-sub000/internal/domain"
)

// TokenSigner mints and verifies the two token kinds. Access tokens
// carry identity claims; refresh tokens carry the subject only and may
// be signed with a dedicated secret, falling back to the access secret
// when none is configured.
type TokenSigner interface {
	SignAccessToken(user *domain.User, ttl time.Duration) (string, error)
	SignRefreshToken(subject string, ttl time.Duration) (string, error)
	Parse(token string) (*jwt.Token, jwt.MapClaims, error)
	ParseRefresh(token string) (*jwt.Token, jwt.MapClaims, error)
}

type tokenSigner struct {
	cfg        *config.Config
	accessKey  []byte
	refreshKey []byte
}

func NewTokenSigner(cfg *config.Config) (TokenSigner, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret required")
	}
	s := &tokenSigner{cfg: cfg, accessKey: []byte(cfg.JWTSecret)}
	if cfg.JWTRefreshSecret != "" {
		s.refreshKey = []byte(cfg.JWTRefreshSecret)
	} else {
		s.refreshKey = s.accessKey
	}
	return s, nil
}

func (s *tokenSigner) SignAccessToken(user *domain.User, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"email":    user.Email,
		"name":     user.Name,
		"provider": string(user.Provider),
		"jti":      uuid.NewString(),
		"iss":      s.cfg.JWTIssuer,
		"aud":      s.cfg.JWTAudience,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.accessKey)
}

func (s *tokenSigner) SignRefreshToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"iss": s.cfg.JWTIssuer,
		"aud": s.cfg.JWTAudience,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.refreshKey)
}

func (s *tokenSigner) Parse(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	return s.parseWith(tokenStr, s.accessKey)
}

func (s *tokenSigner) ParseRefresh(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	return s.parseWith(tokenStr, s.refreshKey)
}

func (s *tokenSigner) parseWith(tokenStr string, key []byte) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithAudience(s.cfg.JWTAudience),
		jwt.WithIssuer(s.cfg.JWTIssuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30*time.Second),
	)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	})
	return token, claims, err
}
