// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// auth service and the authentication middleware.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind selects which signing secret and TTL a token operation uses.
//
// # Key Separation
//
// Access and refresh tokens are signed with different secrets so that
// possession of one never implies possession of the other's verification
// key. A refresh token presented where an access token is expected fails
// signature verification outright.
type Kind string

const (
	// KindAccess is the short-lived credential authorizing individual requests.
	KindAccess Kind = "access"

	// KindRefresh is the long-lived credential used only to mint new access tokens.
	KindRefresh Kind = "refresh"
)

var (
	// ErrTokenExpired marks a structurally valid token past its expiry.
	// Clients holding an expired access token are expected to call refresh.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid marks a malformed token or a failed signature check.
	// Clients must re-authenticate via login.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// Claims represents the payload embedded inside an Arcade JWT.
//
// Access tokens carry the subject plus email and role so downstream
// authorization can run without an extra lookup of token contents. Refresh
// tokens carry the subject only.
type Claims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	Email string `json:"eml,omitempty"`
	Role  string `json:"rol,omitempty"`
}

// CodecConfig holds the immutable signing parameters for a [Codec].
type CodecConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Codec signs and verifies compact claims-bearing tokens using HS256.
//
// # Purity
//
// Issue and Verify are pure functions of the configured secrets, the input,
// and the clock. The codec holds no per-request state and is safe for
// concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewCodec validates the configuration and constructs a [Codec].
func NewCodec(cfg CodecConfig) (*Codec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("sec: access and refresh secrets must be set")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("sec: token TTLs must be positive")
	}

	return &Codec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           time.Now,
	}, nil
}

// OverrideClock replaces the codec's time source. Intended for tests that
// need to cross the expiry boundary deterministically.
func (codec *Codec) OverrideClock(now func() time.Time) {
	codec.now = now
}

// AccessTTL returns the configured access token lifetime.
func (codec *Codec) AccessTTL() time.Duration { return codec.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (codec *Codec) RefreshTTL() time.Duration { return codec.refreshTTL }

// IssueAccess mints a signed access token carrying subject, email, and role.
func (codec *Codec) IssueAccess(subjectID, email string, role Role) (string, error) {
	return codec.issue(KindAccess, subjectID, email, string(role), codec.accessTTL)
}

// IssueRefresh mints a signed refresh token carrying only the subject.
func (codec *Codec) IssueRefresh(subjectID string) (string, error) {
	return codec.issue(KindRefresh, subjectID, "", "", codec.refreshTTL)
}

// issue serializes claims plus issuedAt/expiresAt and signs with the secret
// for the given kind.
func (codec *Codec) issue(kind Kind, subjectID, email, role string, ttl time.Duration) (string, error) {
	currentTime := codec.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(ttl)),
		},
		Email: email,
		Role:  role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secretFor(kind))
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign %s token: %w", kind, err)
	}

	return signedToken, nil
}

// Verify checks signature integrity and expiry of a token of the given kind.
//
// # Returns
//   - [*Claims] when the token is authentic and not expired.
//   - [ErrTokenExpired] when the signature is valid but the token is at or
//     past its expiresAt instant.
//   - [ErrTokenInvalid] for malformed tokens, bad signatures, and tokens
//     signed with the other kind's secret.
func (codec *Codec) Verify(kind Kind, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return codec.secretFor(kind), nil
		},
		jwt.WithTimeFunc(codec.now),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// secretFor maps a token kind to its signing secret.
func (codec *Codec) secretFor(kind Kind) []byte {
	if kind == KindRefresh {
		return codec.refreshSecret
	}
	return codec.accessSecret
}
