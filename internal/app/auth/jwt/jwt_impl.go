package jwt

import (
	"errors"
	customErrors "github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/clock"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"time"
)

// EmailTokenTTL bounds confirmation and reset links.
const EmailTokenTTL = 24 * time.Hour

type JwtUtilImpl struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      clock.Clock
}

func NewJWTUtil(cfg *config.Config, clk clock.Clock) (*JwtUtilImpl, error) {
	if cfg.JWTSecret == "" {
		return nil, customErrors.WrapInternal(errors.New("empty secret"), "NewJWTUtil")
	}
	method := jwt.GetSigningMethod(cfg.JWTAlgorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, customErrors.WrapInternal(errors.New("unsupported algorithm "+cfg.JWTAlgorithm), "NewJWTUtil")
	}
	if clk == nil {
		clk = clock.System
	}

	return &JwtUtilImpl{
		secret:     []byte(cfg.JWTSecret),
		method:     method,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		clock:      clk,
	}, nil
}

func (j *JwtUtilImpl) GenerateAccessToken(email string) (string, time.Time, error) {
	return j.sign(email, jwt2.ScopeAccess, j.accessTTL)
}

func (j *JwtUtilImpl) GenerateRefreshToken(email string) (string, time.Time, error) {
	return j.sign(email, jwt2.ScopeRefresh, j.refreshTTL)
}

func (j *JwtUtilImpl) GenerateEmailToken(email string) (string, time.Time, error) {
	return j.sign(email, "", EmailTokenTTL)
}

func (j *JwtUtilImpl) sign(email, scope string, ttl time.Duration) (string, time.Time, error) {
	now := j.clock.Now()

	claims := jwt2.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Scope: scope,
	}

	signed, err := jwt.NewWithClaims(j.method, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign "+nonEmpty(scope, "email_token"))
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) parse(raw string) (*jwt2.Claims, error) {
	claims := &jwt2.Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithTimeFunc(j.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}

func (j *JwtUtilImpl) DecodeAccessToken(raw string) (string, error) {
	claims, err := j.parse(raw)
	if err != nil || claims.Scope != jwt2.ScopeAccess || claims.Subject == "" {
		return "", customErrors.ErrUnauthorized
	}
	return claims.Subject, nil
}

func (j *JwtUtilImpl) DecodeRefreshToken(raw string) (string, error) {
	claims, err := j.parse(raw)
	if err != nil {
		return "", customErrors.ErrUnauthorized
	}
	if claims.Scope != jwt2.ScopeRefresh {
		return "", customErrors.ErrInvalidScope
	}
	if claims.Subject == "" {
		return "", customErrors.ErrUnauthorized
	}
	return claims.Subject, nil
}

func (j *JwtUtilImpl) EmailFromToken(raw string) (string, error) {
	claims, err := j.parse(raw)
	if err != nil || claims.Subject == "" {
		return "", customErrors.ErrUnprocessableEntity
	}
	return claims.Subject, nil
}

func (j *JwtUtilImpl) ParseEmailToken(raw string) (string, error) {
	claims, err := j.parse(raw)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", customErrors.ErrTokenExpired
	case err != nil:
		return "", customErrors.ErrInvalidOrExpiredToken
	case claims.Subject == "":
		return "", customErrors.ErrInvalidOrExpiredToken
	}
	return claims.Subject, nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
