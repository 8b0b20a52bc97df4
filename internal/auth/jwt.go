package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/khushalb002/MMSpace-sub000/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Validator checks HS256 bearer tokens issued by the auth service. Tokens
// carry the account id in "sub" and the platform role in "role".
type Validator struct {
	secret []byte
}

func NewValidator(secret string) *Validator {
	return &Validator{secret: []byte(secret)}
}

func (v *Validator) Validate(tokenStr string) (domain.Principal, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return domain.Principal{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return domain.Principal{}, ErrInvalidToken
	}
	roleStr, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return domain.Principal{}, ErrInvalidToken
	}
	return domain.Principal{UserID: sub, Role: role}, nil
}

// Sign mints a token for the given principal. Used by local tooling and tests;
// production tokens come from the auth service with the same secret.
func (v *Validator) Sign(p domain.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  p.UserID,
		"role": string(p.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return tok.SignedString(v.secret)
}
