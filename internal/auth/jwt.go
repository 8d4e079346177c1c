package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Signer issues and verifies HS256 session tokens.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Issued is a freshly signed token and the session it belongs to.
type Issued struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

func (s *Signer) Sign(userID string) (Issued, error) {
	now := s.now()
	out := Issued{JTI: uuid.NewString(), ExpiresAt: now.Add(s.ttl)}
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        out.JTI,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(out.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return Issued{}, err
	}
	out.Token = token
	return out, nil
}

func (s *Signer) Verify(tokenStr string) (Claims, error) {
	var rc jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &rc, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	if rc.Subject == "" || rc.ID == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{Subject: rc.Subject, JWTID: rc.ID}, nil
}
