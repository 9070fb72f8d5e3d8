package api

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

var errUnauthorized = errors.New("unauthorized")

// authorizeRead accepts either the static read token or, when JWT auth is
// enabled, an HS256 bearer token with matching issuer and audience. With
// neither configured the read surface is open.
func (p ReadPolicy) authorizeRead(r *http.Request) error {
	if p.Token == "" && !p.JWT.Enabled {
		return nil
	}
	raw := bearerToken(r)
	if raw == "" {
		return errUnauthorized
	}
	if p.Token != "" && subtle.ConstantTimeCompare([]byte(raw), []byte(p.Token)) == 1 {
		return nil
	}
	if p.JWT.Enabled {
		if err := p.JWT.verify(raw); err == nil {
			return nil
		}
	}
	return errUnauthorized
}

func (p JWTPolicy) verify(raw string) error {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(p.HS256Secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errUnauthorized
	}
	if p.Issuer != "" && !claims.VerifyIssuer(p.Issuer, true) {
		return fmt.Errorf("issuer mismatch")
	}
	if p.Audience != "" && !claims.VerifyAudience(p.Audience, true) {
		return fmt.Errorf("audience mismatch")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
