package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the authenticated account identity through the request.
type JWTClaims struct {
	UserID string   `json:"uid"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
