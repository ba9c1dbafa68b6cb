// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync"

	"github.com/jeranaias/accountctl/internal/account"
)

// Routes.
const (
	RouteLogin   = account.RouteLanding
	RouteHome    = "/home"
	RouteRecover = "/recover"
	RouteUnlock  = "/unlock"
)

// Router tracks the current route. It satisfies account.Navigator.
type Router struct {
	mu      sync.Mutex
	current string
}

// NewRouter starts at the sign-in route.
func NewRouter() *Router {
	return &Router{current: RouteLogin}
}

// Push moves to route.
func (r *Router) Push(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = route
}

// Current returns the active route.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

var _ account.Navigator = (*Router)(nil)
