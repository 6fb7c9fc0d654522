package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims are the claims verified on JWTs minted by the external
// identity provider. The provider puts the stable user id in "user_id";
// older tokens only carry it in the subject.
type IdentityClaims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// ResolveUserID returns the user id asserted by the claims, preferring the
// dedicated claim over the subject.
func (c *IdentityClaims) ResolveUserID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}
