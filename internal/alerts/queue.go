// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package alerts

import (
	"sync"
	"time"

	"github.com/jeranaias/accountctl/internal/clock"
)

// =============================================================================
// ALERT TYPES
// =============================================================================

// Kind is the visual category of an alert.
type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindDanger  Kind = "danger"
)

// GlobalScope is visible from every UI region.
const GlobalScope = "global"

// DefaultLifetime is how long an alert stays queued when no lifetime is given.
const DefaultLifetime = 5000 * time.Millisecond

// Alert is a single transient notification.
type Alert struct {
	ID        int
	Kind      Kind
	Title     string
	Message   string
	Scope     string
	CreatedAt time.Time
	Lifetime  time.Duration
}

// ExpiresAt returns when the alert removes itself.
func (a Alert) ExpiresAt() time.Time {
	return a.CreatedAt.Add(a.Lifetime)
}

// Remaining returns the time left before expiry as seen at now.
func (a Alert) Remaining(now time.Time) time.Duration {
	left := a.ExpiresAt().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// =============================================================================
// QUEUE
// =============================================================================

// Queue holds alerts in insertion order and owns one expiry timer per alert.
type Queue struct {
	mu       sync.Mutex
	clock    clock.Clock
	alerts   []Alert
	timers   map[int]clock.Timer
	nextID   int
	lifetime time.Duration
}

// NewQueue creates an empty queue using clk for expiry.
func NewQueue(clk clock.Clock) *Queue {
	return &Queue{
		clock:    clk,
		timers:   make(map[int]clock.Timer),
		nextID:   1,
		lifetime: DefaultLifetime,
	}
}

// SetDefaultLifetime changes the lifetime used when Push is given zero.
// Alerts already queued keep their own lifetime.
func (q *Queue) SetDefaultLifetime(d time.Duration) {
	if d <= 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lifetime = d
}

// Push appends an alert and schedules its removal. A zero lifetime uses the
// queue default; an empty scope means GlobalScope. Returns the new alert ID.
func (q *Queue) Push(kind Kind, title, message, scope string, lifetime time.Duration) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if scope == "" {
		scope = GlobalScope
	}
	if lifetime <= 0 {
		lifetime = q.lifetime
	}

	id := q.nextID
	q.nextID++

	q.alerts = append(q.alerts, Alert{
		ID:        id,
		Kind:      kind,
		Title:     title,
		Message:   message,
		Scope:     scope,
		CreatedAt: q.clock.Now(),
		Lifetime:  lifetime,
	})
	q.timers[id] = q.clock.AfterFunc(lifetime, func() { q.Remove(id) })

	return id
}

// Remove deletes the alert with id. Unknown IDs are ignored.
func (q *Queue) Remove(id int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	for i, a := range q.alerts {
		if a.ID == id {
			q.alerts = append(q.alerts[:i], q.alerts[i+1:]...)
			return
		}
	}
}

// Clear removes every alert and cancels their expiry timers.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.alerts = nil
}

// ForScope returns, in insertion order, the alerts targeting scope or the
// global scope.
func (q *Queue) ForScope(scope string) []Alert {
	q.mu.Lock()
	defer q.mu.Unlock()

	result := make([]Alert, 0, len(q.alerts))
	for _, a := range q.alerts {
		if a.Scope == scope || a.Scope == GlobalScope {
			result = append(result, a)
		}
	}
	return result
}

// All returns a copy of every queued alert.
func (q *Queue) All() []Alert {
	q.mu.Lock()
	defer q.mu.Unlock()

	result := make([]Alert, len(q.alerts))
	copy(result, q.alerts)
	return result
}

// Len returns the number of queued alerts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.alerts)
}
