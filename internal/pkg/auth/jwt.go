package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken   = errors.New("auth: missing bearer token")
	ErrInvalidToken   = errors.New("auth: invalid token")
	ErrMissingOrg     = errors.New("auth: missing organization_id")
	ErrForbidden      = errors.New("auth: forbidden")
	ErrNoSigningKey   = errors.New("auth: empty secret")
	errBadSigningAlgo = errors.New("auth: unexpected signing method")
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Claims are the token claims issued by the identity provider.
type Claims struct {
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	Subject        string
	OrganizationID uuid.UUID
	Role           Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func normalizeRole(s string) Role {
	if Role(strings.ToLower(strings.TrimSpace(s))) == RoleAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// ParseToken validates an HS256 token and returns the caller identity.
func ParseToken(tokenString string, secret []byte) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrMissingToken
	}
	if len(secret) == 0 {
		return Identity{}, ErrNoSigningKey
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadSigningAlgo
		}
		return secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.OrganizationID == "" {
		return Identity{}, ErrMissingOrg
	}
	orgID, err := uuid.Parse(claims.OrganizationID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return Identity{
		Subject:        claims.Subject,
		OrganizationID: orgID,
		Role:           normalizeRole(claims.Role),
	}, nil
}

// NewToken signs claims for the identity. Used by tests and the dev tooling.
func NewToken(secret []byte, id Identity, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = id.Subject
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		OrganizationID:   id.OrganizationID.String(),
		Role:             string(id.Role),
		RegisteredClaims: claims,
	})
	return token.SignedString(secret)
}
