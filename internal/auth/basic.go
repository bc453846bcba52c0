// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a username or password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

const bcryptCost = 12

// BasicAuthManager checks the admin credentials. The password is hashed once
// at construction.
type BasicAuthManager struct {
	username     string
	passwordHash []byte
}

// NewBasicAuthManager hashes password with bcrypt.
func NewBasicAuthManager(username, password string) (*BasicAuthManager, error) {
	return newBasicAuthManager(username, password, bcryptCost)
}

func newBasicAuthManager(username, password string, cost int) (*BasicAuthManager, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &BasicAuthManager{username: username, passwordHash: hash}, nil
}

// Username returns the configured admin username.
func (b *BasicAuthManager) Username() string {
	return b.username
}

// CheckPassword compares username in constant time and password against the
// bcrypt hash.
func (b *BasicAuthManager) CheckPassword(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(b.username)) == 1
	// Always run bcrypt so timing does not reveal a valid username.
	passErr := bcrypt.CompareHashAndPassword(b.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// ValidateHeader parses an "Authorization: Basic ..." header and checks it.
// It returns the authenticated username.
func (b *BasicAuthManager) ValidateHeader(authHeader string) (string, error) {
	const prefix = "Basic "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", fmt.Errorf("%w: not a basic authorization header", ErrInvalidCredentials)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authHeader, prefix))
	if err != nil {
		return "", fmt.Errorf("%w: malformed encoding", ErrInvalidCredentials)
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", fmt.Errorf("%w: malformed credentials", ErrInvalidCredentials)
	}
	if err := b.CheckPassword(username, password); err != nil {
		return "", err
	}
	return username, nil
}

// Challenge is the WWW-Authenticate value sent with basic-mode 401s.
func (b *BasicAuthManager) Challenge() string {
	return `Basic realm="Accessboard", charset="UTF-8"`
}
