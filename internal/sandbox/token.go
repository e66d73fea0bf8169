package sandbox

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/dgrijalva/jwt-go"
)

// claims mirror what GoTrue puts in a Supabase access token.
type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

var errTokenRevoked = errors.New("token revoked")

func randomSecret() []byte {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(fmt.Sprintf("sandbox: reading random secret: %v", err))
	}
	return secret
}

// issueToken returns a signed access token for u and its expiry.
func (s *Server) issueToken(u *user) (string, int64, error) {
	now := s.now()
	expiresAt := now.Unix() + tokenTTL
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: u.Email,
		Role:  "authenticated",
		StandardClaims: jwt.StandardClaims{
			Id:        newID(),
			Subject:   u.ID,
			Audience:  "authenticated",
			IssuedAt:  now.Unix(),
			ExpiresAt: expiresAt,
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// parseToken verifies signature and expiry. Callers hold s.mu.
func (s *Server) parseToken(raw string) (*claims, error) {
	token, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if s.revoked[c.Id] {
		return nil, errTokenRevoked
	}
	return c, nil
}
