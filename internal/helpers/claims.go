package helpers

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/joshua-takyi/servicios/internal/models"
)

// Claims is the identity carried by every issued token.
type Claims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// HasRole reports whether the caller holds one of roles. Admins hold every role.
func (c *Claims) HasRole(roles ...models.Role) bool {
	if c.IsAdmin() {
		return true
	}
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

func (c *Claims) IsOwner(userID string) bool {
	return c.UserID == userID
}
