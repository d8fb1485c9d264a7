// Copyright (c) 2026 Reelgate. All rights reserved.

// Package sec verifies session identity tokens minted by the external
// identity provider.
//
// # Architecture
//
// Reelgate does not own user accounts. Visitors authenticate against a hosted
// identity service which issues RS256 JWTs; this package holds only the
// provider's public key and verifies signatures. There is deliberately no
// signing half — a compromised Reelgate instance cannot mint sessions.
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims represents the payload embedded inside a session JWT.
//
// # Why custom claims?
//
// By embedding the UserID and Email directly inside the JWT, the
// authentication middleware can reconstruct the active user context WITHOUT
// calling the identity provider on every request. The video gate uses the
// UserID to bind grant tokens to the requesting viewer.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID string `json:"uid"`
	Email  string `json:"eml"`
}

// SessionVerifier checks RS256 session tokens against the identity
// provider's public key.
type SessionVerifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// NewSessionVerifier creates a new SessionVerifier.
// It reads the PEM-encoded RSA public key from the provided filesystem path.
func NewSessionVerifier(publicKeyPath, issuer string) (*SessionVerifier, error) {
	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return &SessionVerifier{
		publicKey: publicKey,
		issuer:    issuer,
	}, nil
}

// VerifyToken checks the signature and validity of a session JWT string.
func (verifier *SessionVerifier) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return verifier.publicKey, nil
	}, jwt.WithIssuer(verifier.issuer))

	if err != nil {
		return nil, fmt.Errorf("sec: invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid session claims")
	}

	return claims, nil
}
