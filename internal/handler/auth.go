package handler

import (
	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is issued by the identity service; this API only verifies it. Subject is the
// planner id recorded on simulation sessions.
type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
