// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package token decodes the profile claims carried by the session token.
//
// The client never verifies the signature; the server does that on every
// request. Decoding only reads the payload.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the profile fields the account service embeds in its tokens.
type Claims struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	jwt.RegisteredClaims
}

// Codec decodes tokens into claims.
type Codec struct {
	parser *jwt.Parser
}

// NewCodec creates a JWT codec.
func NewCodec() *Codec {
	return &Codec{parser: jwt.NewParser()}
}

// Decode reads the claims from raw without verifying its signature. Missing
// profile claims decode as empty strings.
func (c *Codec) Decode(raw string) (Claims, error) {
	var claims Claims
	if _, _, err := c.parser.ParseUnverified(raw, &claims); err != nil {
		return Claims{}, fmt.Errorf("failed to decode token: %w", err)
	}
	return claims, nil
}
