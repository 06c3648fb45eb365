// Package deeplink issues and verifies signed references to a (subject, object)
// pair for links that must work without a session, such as gig invitations
// sent by email.
//
// Token layout: base64url(subject:object:unixSeconds) "." base64url(HMAC-SHA256).
// The MAC is computed over the encoded payload. Nothing is stored server side;
// rotating the secret invalidates every outstanding token.
package deeplink

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

// MaxAge is the validity window of a token, inclusive.
const MaxAge = 30 * 24 * time.Hour

// SecretSize is the HMAC key length in bytes (64 hex characters).
const SecretSize = 32

const (
	partSeparator  = "."
	fieldSeparator = ":"
)

var encoding = base64.RawURLEncoding.Strict()

// ErrInvalidIdentifier is returned by Issue for empty identifiers or identifiers
// containing the field separator.
var ErrInvalidIdentifier = errors.New("deeplink: identifier must be non-empty and must not contain ':'")

// ConfigurationError reports a missing or malformed signing secret.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "deeplink: invalid secret: " + e.Reason
}

// Claims is the verified content of a token.
type Claims struct {
	SubjectID string
	ObjectID  string
	IssuedAt  time.Time
}

// Signer is safe for concurrent use; it holds no mutable state.
type Signer struct {
	key []byte
	now func() time.Time
}

// Option customizes a Signer.
type Option func(*Signer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

// NewSigner validates the hex encoded secret and builds a signer.
func NewSigner(secretHex string, opts ...Option) (*Signer, error) {
	secretHex = strings.TrimSpace(secretHex)
	if secretHex == "" {
		return nil, &ConfigurationError{Reason: "secret is not set"}
	}
	if len(secretHex) != SecretSize*2 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("expected %d hex characters, got %d", SecretSize*2, len(secretHex))}
	}
	key, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, &ConfigurationError{Reason: "secret is not valid hex"}
	}

	s := &Signer{key: key, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue returns a token binding subjectID and objectID to the current time.
func (s *Signer) Issue(subjectID, objectID string) (string, error) {
	if !validIdentifier(subjectID) || !validIdentifier(objectID) {
		return "", ErrInvalidIdentifier
	}
	payload := strings.Join([]string{subjectID, objectID, strconv.FormatInt(s.now().Unix(), 10)}, fieldSeparator)
	encoded := encoding.EncodeToString([]byte(payload))
	return encoded + partSeparator + encoding.EncodeToString(s.mac(encoded)), nil
}

// Verify returns the claims of a well-formed, authentic, unexpired token.
// Every failure reports ok=false and nothing else.
func (s *Signer) Verify(token string) (Claims, bool) {
	parts := strings.Split(token, partSeparator)
	if len(parts) != 2 {
		return Claims{}, false
	}

	sig, err := encoding.DecodeString(parts[1])
	if err != nil {
		return Claims{}, false
	}
	if !hmac.Equal(sig, s.mac(parts[0])) {
		return Claims{}, false
	}

	payload, err := encoding.DecodeString(parts[0])
	if err != nil {
		return Claims{}, false
	}
	fields := strings.Split(string(payload), fieldSeparator)
	if len(fields) != 3 {
		return Claims{}, false
	}
	issued, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Claims{}, false
	}
	if s.now().Unix()-issued > int64(MaxAge/time.Second) {
		return Claims{}, false
	}

	return Claims{SubjectID: fields[0], ObjectID: fields[1], IssuedAt: time.Unix(issued, 0)}, true
}

func (s *Signer) mac(encodedPayload string) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(encodedPayload))
	return h.Sum(nil)
}

func validIdentifier(id string) bool {
	return id != "" && !strings.Contains(id, fieldSeparator)
}
