package auth

import (
	"fmt"
	"time"

	apperrors "hallpass/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// ParseToken validates an HS256-signed bearer token and extracts the caller's
// identity from the sub, name and roles claims. Any other signing method is
// rejected.
func ParseToken(secret, raw string) (*Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.Unauthorized("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, apperrors.Unauthorized("token missing subject")
	}

	name, _ := claims["name"].(string)

	var roles []string
	if rawRoles, ok := claims["roles"].([]any); ok {
		for _, r := range rawRoles {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	}

	return &Principal{
		ID:    sub,
		Name:  name,
		Roles: roles,
	}, nil
}

// IssueToken signs a short-lived HS256 token for the given principal. Used by
// tooling and tests; the service itself only parses tokens.
func IssueToken(secret string, p *Principal, ttl time.Duration) (string, error) {
	roles := make([]any, 0, len(p.Roles))
	for _, r := range p.Roles {
		roles = append(roles, r)
	}

	claims := jwt.MapClaims{
		"sub":   p.ID,
		"name":  p.Name,
		"roles": roles,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
