// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// CodeAlphabet leaves out characters that are easy to misread on a badge
const CodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// CodeLength of generated login codes
const CodeLength = 8

// claims is the signed token payload
type claims struct {
	UID       string      `json:"uid"`
	Role      models.Role `json:"role"`
	TeamID    string      `json:"tid,omitempty"`
	ExpiresAt int64       `json:"exp"`
}

// IssueToken signs a principal for ttl. The token is
// base64url(payload) "." base64url(HMAC-SHA256(payload)).
func IssueToken(p models.Principal, secret string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("token secret is empty")
	}

	expiresAt := now.Add(ttl).UTC().Truncate(time.Second)
	payload, err := json.Marshal(claims{
		UID:       p.UID,
		Role:      p.Role,
		TeamID:    p.TeamID,
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to encode token: %w", err)
	}

	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + sign(body, secret), expiresAt, nil
}

// VerifyToken checks the signature and expiry and returns the principal
func VerifyToken(token, secret string, now time.Time) (models.Principal, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok || body == "" || sig == "" {
		return models.Principal{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(sign(body, secret))) {
		return models.Principal{}, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return models.Principal{}, ErrInvalidToken
	}
	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return models.Principal{}, ErrInvalidToken
	}
	if c.UID == "" || !c.Role.Valid() {
		return models.Principal{}, ErrInvalidToken
	}
	if !now.Before(time.Unix(c.ExpiresAt, 0)) {
		return models.Principal{}, ErrExpiredToken
	}

	return models.Principal{UID: c.UID, Role: c.Role, TeamID: c.TeamID}, nil
}

// sign returns the unpadded URL-safe HMAC of data
func sign(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// GenerateLoginCode creates a random code a user types to sign in
func GenerateLoginCode() (string, error) {
	code, err := gonanoid.Generate(CodeAlphabet, CodeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate login code: %w", err)
	}
	return code, nil
}

// NormalizeCode makes typed codes case- and whitespace-insensitive
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type principalKey struct{}

// WithPrincipal stores a verified principal on the context
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored by WithPrincipal
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(models.Principal)
	return p, ok
}
