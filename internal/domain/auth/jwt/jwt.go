package jwt

import (
	"github.com/golang-jwt/jwt/v5"
	"time"
)

const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
)

// Claims is shared by access, refresh and email tokens. Email tokens leave
// Scope empty.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

type JWTUtil interface {
	GenerateAccessToken(email string) (token string, exp time.Time, err error)
	GenerateRefreshToken(email string) (token string, exp time.Time, err error)
	GenerateEmailToken(email string) (token string, exp time.Time, err error)

	// DecodeAccessToken returns the subject of a valid token with scope "access_token".
	DecodeAccessToken(token string) (email string, err error)
	// DecodeRefreshToken returns the subject of a valid token with scope "refresh_token".
	DecodeRefreshToken(token string) (email string, err error)
	// EmailFromToken accepts any signed token carrying a subject.
	EmailFromToken(token string) (email string, err error)
	// ParseEmailToken is EmailFromToken with expiry reported separately.
	ParseEmailToken(token string) (email string, err error)
}
