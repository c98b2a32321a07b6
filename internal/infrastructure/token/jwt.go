// Package token issues and verifies the stateless session tokens carried in
// the session cookie.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the token lifetime used when Config.TTL is not set.
const DefaultTTL = 7 * 24 * time.Hour

// Config is built once at startup. Rotating Secret invalidates every token
// issued under the previous value.
type Config struct {
	Secret string
	TTL    time.Duration
}

// Codec signs tokens with HS256.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec returns a Codec for cfg, applying DefaultTTL when needed.
func NewCodec(cfg *Config) *Codec {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(cfg.Secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token whose subject is userID.
func (c *Codec) Issue(userID string) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify returns the subject of a token signed with the current secret that
// has not expired. Any failure, including a wrong algorithm, yields false.
func (c *Codec) Verify(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
