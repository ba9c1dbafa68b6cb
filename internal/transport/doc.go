// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport is the HTTP client for the account service.
//
// Every response body is an envelope:
//
//	{"statusCode": 200, "message": "...", "data": {...}}
//
// Non-2xx responses are returned as *Error carrying the envelope's status code
// and message. The client applies two interceptors to every request:
//
//   - request: attach "Authorization: Bearer <token>" when a token is available
//   - response: invoke the unauthorized handler on any HTTP 401
//
// # Security
//
// Headers and bodies are never logged. Only method, path, status, and duration.
package transport
