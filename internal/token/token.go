// Package token signs and verifies the bearer tokens handed out at login.
// The codec is stateless: every token carries the user id, email, purpose
// tag, and expiry, all under one process-wide HMAC secret. Rotating the
// secret invalidates every outstanding token; that is accepted operational
// behavior, not a bug.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token purposes. Access tokens carry no purpose claim; refresh tokens are
// tagged explicitly so an access token can never be replayed against the
// refresh endpoint.
const (
	PurposeAccess  = ""
	PurposeRefresh = "refresh"
)

var (
	// ErrExpired means the token verified but its expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrMalformed means the token could not be decoded or its signature
	// did not verify.
	ErrMalformed = errors.New("token malformed")
)

// Claims is the decoded payload of a token issued by this codec. Purpose is
// returned as-is, even when unrecognized; checking it is the caller's job.
type Claims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim. Issue always writes a UUID subject, so
// this only fails on tokens minted by something else entirely.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue produces a signed bearer token for the user, expiring at now + ttl.
func (c *Codec) Issue(userID uuid.UUID, email, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			// Claim timestamps have second resolution; the jti is what
			// keeps two tokens minted in the same second distinct.
			ID: uuid.New().String(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// Verify decodes and checks the token, returning its claims. It fails with
// ErrExpired when the expiry has passed and ErrMalformed for every other
// decode or signature problem; no other errors are returned.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}
	if !tok.Valid {
		return nil, ErrMalformed
	}

	return &claims, nil
}
