// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth issues and verifies the credentials that turn a login code
into a principal.

# Login Codes

Every user signs in with a short code printed on their badge:

	code, err := auth.GenerateLoginCode() // e.g. "K7QX3MPA"

Codes use an alphabet without 0/O and 1/I. NormalizeCode uppercases and
trims user input before lookup.

# Tokens

After login the server hands out a signed token:

	token, expiresAt, err := auth.IssueToken(principal, secret, ttl, time.Now())
	principal, err := auth.VerifyToken(token, secret, time.Now())

The token is the base64url JSON payload {uid, role, tid, exp} followed by
"." and its HMAC-SHA256 under the server secret. Nothing is stored server
side; rotating the secret signs everyone out.

# Context

Middleware stores the verified principal on the request context:

	ctx = auth.WithPrincipal(ctx, principal)
	p, ok := auth.PrincipalFrom(ctx)
*/
package auth
