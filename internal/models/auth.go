package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user. The token
// endpoint receives them form-encoded.
type LoginRequest struct {
	Username  string `form:"username" json:"username" validate:"required"`
	Password  string `form:"password" json:"password" validate:"required"`
	IP        string `form:"-" json:"-"`
	UserAgent string `form:"-" json:"-"`
}

// TokenResponse is returned by POST /token.
type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	Role        UserRole `json:"role"`
	Name        string   `json:"name,omitempty"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens. The subject holds
// the canonical username.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Name   string   `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Username returns the token subject.
func (c *JWTClaims) Username() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// Session is the authenticated identity held by a client. At most one exists
// per session manager.
type Session struct {
	Token    string   `json:"-"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	Name     string   `json:"name,omitempty"`
}

// SessionFromClaims builds the identity view of validated server-side claims.
func SessionFromClaims(c *JWTClaims) *Session {
	if c == nil {
		return nil
	}
	return &Session{Username: c.Subject, Role: c.Role, Name: c.Name}
}
