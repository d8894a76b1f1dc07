package models

import "github.com/golang-jwt/jwt/v4"

// JwtClaims are the claims carried by API bearer tokens.
type JwtClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Status values shared by every resource.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)
