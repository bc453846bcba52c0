// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package auth

import (
	"encoding/base64"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestBasic(t *testing.T) *BasicAuthManager {
	t.Helper()
	b, err := newBasicAuthManager("admin", "correct horse battery", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("newBasicAuthManager() error = %v", err)
	}
	return b
}

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestNewBasicAuthManagerValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, user, pass string
	}{
		{"missing username", "", "secret-password"},
		{"missing password", "admin", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := newBasicAuthManager(tt.user, tt.pass, bcrypt.MinCost); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidateHeader(t *testing.T) {
	t.Parallel()

	b := newTestBasic(t)
	tests := []struct {
		name    string
		header  string
		wantErr bool
	}{
		{"valid", basicHeader("admin", "correct horse battery"), false},
		{"wrong password", basicHeader("admin", "nope"), true},
		{"wrong user", basicHeader("root", "correct horse battery"), true},
		{"bearer scheme", "Bearer abc", true},
		{"bad base64", "Basic ***", true},
		{"no colon", "Basic " + base64.StdEncoding.EncodeToString([]byte("admin")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			user, err := b.ValidateHeader(tt.header)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Errorf("error = %v, want ErrInvalidCredentials", err)
				}
				return
			}
			if err != nil || user != "admin" {
				t.Errorf("ValidateHeader() = %q, %v", user, err)
			}
		})
	}
}

func TestPasswordIsHashed(t *testing.T) {
	t.Parallel()

	b := newTestBasic(t)
	if string(b.passwordHash) == "correct horse battery" {
		t.Error("password stored in plain text")
	}
	if b.Username() != "admin" {
		t.Errorf("Username() = %q", b.Username())
	}
}
