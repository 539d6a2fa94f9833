package utils // package utils provides helpers for token creation and hashing

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is the single error returned for every way a token can be
// bad: wrong signature, wrong algorithm, malformed payload, or past expiry.
// Callers must not learn which of those it was.
var ErrInvalidToken = errors.New("invalid token")

// NewAuthToken builds and signs an HS256 JWT asserting a user identity.
// The token carries the standard claims sub (user ID), iat and exp; it
// expires ttlDays after issuance.  There is no server-side revocation:
// tokens stay valid until they age out.
func NewAuthToken(secret string, userID uint64, ttlDays int) (string, error) {
    now := time.Now().UTC()
    claims := jwt.MapClaims{
        "sub": userID,
        "iat": now.Unix(),
        "exp": now.Add(time.Duration(ttlDays) * 24 * time.Hour).Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// ParseAuthToken verifies a token string against the secret and returns the
// embedded user ID.  Any failure collapses into ErrInvalidToken.
func ParseAuthToken(secret, raw string) (uint64, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything but HMAC; "none" and asymmetric
        // algorithms must not verify against our shared secret.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, ErrInvalidToken
    }
    // Numeric JSON claims decode as float64.
    sub, ok := claims["sub"].(float64)
    if !ok || sub <= 0 {
        return 0, ErrInvalidToken
    }
    return uint64(sub), nil
}
