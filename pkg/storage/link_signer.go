package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Errors returned by LinkSigner.Verify.
var (
	ErrInvalidToken = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// LinkSigner issues HMAC-signed, expiring download tokens for stored files.
// A token reads "<base64 name>.<unix expiry>.<hex signature>".
type LinkSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewLinkSigner returns a signer; a non-positive ttl means one day.
func NewLinkSigner(secret string, ttl time.Duration) *LinkSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LinkSigner{secret: []byte(secret), ttl: ttl}
}

// Sign returns a token for name valid until now plus the ttl.
func (s *LinkSigner) Sign(name string, now time.Time) (string, time.Time, error) {
	if name == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty name", ErrInvalidToken)
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("signing secret missing")
	}
	expiresAt := now.Add(s.ttl).Truncate(time.Second)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(name))
	expiry := strconv.FormatInt(expiresAt.Unix(), 10)
	return encoded + "." + expiry + "." + s.sign(encoded, expiry), expiresAt, nil
}

// Verify checks the signature and expiry and returns the file name.
func (s *LinkSigner) Verify(token string, now time.Time) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", ErrInvalidToken
	}
	encoded, expiry, signature := parts[0], parts[1], parts[2]
	if !hmac.Equal([]byte(s.sign(encoded, expiry)), []byte(signature)) {
		return "", ErrInvalidToken
	}
	unix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if now.After(time.Unix(unix, 0)) {
		return "", ErrTokenExpired
	}
	name, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidToken
	}
	return string(name), nil
}

func (s *LinkSigner) sign(encoded, expiry string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encoded + "|" + expiry))
	return hex.EncodeToString(mac.Sum(nil))
}
