package tokens

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// AccessClaims is the single claims schema carried by access tokens.
type AccessClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims mirrors AccessClaims but is signed with the refresh secret and
// always carries a JTI.
type RefreshClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) IsAdmin() bool { return c.Role == RoleAdmin }

func subject(id uint) string { return strconv.FormatUint(uint64(id), 10) }
