package types

import "github.com/golang-jwt/jwt/v4"

type Claims struct {
	Email    string    `json:"email"`
	Role     StaffRole `json:"role"`
	Hospital uint      `json:"hospital"`
	Ward     *uint     `json:"ward,omitempty"`
	jwt.RegisteredClaims
}
