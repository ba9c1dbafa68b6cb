// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/accountctl/internal/alerts"
	"github.com/jeranaias/accountctl/internal/clock"
	"github.com/jeranaias/accountctl/internal/cooldown"
	"github.com/jeranaias/accountctl/internal/store"
	"github.com/jeranaias/accountctl/internal/transport"
)

// =============================================================================
// IDENTITY ENCODING
// =============================================================================

func TestIdentity_QueryNormalizesNumericCI(t *testing.T) {
	id := Identity{Email: "a@x.com", CI: " 00123 ", Birthdate: "2000-01-02"}
	assert.Equal(t, "123", id.query().Get("ci"))
}

func TestIdentity_BodyCarriesCIAsTyped(t *testing.T) {
	id := Identity{Email: "a@x.com", CI: "00123", Birthdate: "2000-01-02"}

	raw, err := json.Marshal(id.body())
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@x.com","ci":"00123","birthdate":"2000-01-02"}`, string(raw))
}

func TestIdentity_NonNumericCIPassedThrough(t *testing.T) {
	id := Identity{CI: "AB-12"}
	assert.Equal(t, "AB-12", id.query().Get("ci"))
	assert.Equal(t, "AB-12", id.body().CI)
}

// =============================================================================
// VERIFY ACCOUNT
// =============================================================================

func TestVerifyAccount(t *testing.T) {
	tests := []struct {
		name    string
		respond func(transport.Request) (*transport.Response, error)
		want    bool
		kind    alerts.Kind
		title   string
		message string
		silent  bool
	}{
		{name: "found", respond: replyOK("Account exists", nil), want: true,
			kind: alerts.KindSuccess, title: "Account verified!", message: "Account exists"},
		{name: "locked", respond: replyStatus(403, "Locked"),
			kind: alerts.KindWarning, title: "Account locked!", message: "Locked"},
		{name: "missing", respond: replyStatus(404, "Nope"),
			kind: alerts.KindDanger, title: "Account not found!", message: "Nope"},
		{name: "server error", respond: replyStatus(500, "boom"), silent: true},
		{name: "network", respond: replyNetworkError(), silent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.respond)

			got := h.ctrl.VerifyAccount(context.Background(), testIdentity)
			assert.Equal(t, tt.want, got)

			calls := h.transport.calls()
			require.Len(t, calls, 1)
			assert.Equal(t, http.MethodGet, calls[0].Method)
			assert.Equal(t, "auth/filter", calls[0].Path)
			assert.Equal(t, "a@x.com", calls[0].Query.Get("email"))
			assert.Nil(t, calls[0].Body)

			list := h.ctrl.AlertsForScope(OpVerifyAccount)
			if tt.silent {
				assert.Empty(t, list)
				return
			}
			require.Len(t, list, 1)
			assert.Equal(t, tt.kind, list[0].Kind)
			assert.Equal(t, tt.title, list[0].Title)
			assert.Equal(t, tt.message, list[0].Message)
			assert.Equal(t, OpVerifyAccount, list[0].Scope)
		})
	}
}

// =============================================================================
// SEND CODE
// =============================================================================

func TestSendCode_SuccessRunsCooldown(t *testing.T) {
	h := newHarness(t, replyOK("Check your inbox", nil))

	require.True(t, h.ctrl.SendCode(context.Background(), testIdentity))
	assert.Equal(t, cooldown.State{SecondsRemaining: 3, ButtonDisabled: true}, h.ctrl.Cooldown())

	list := h.ctrl.AlertsForScope(OpSendCode)
	require.Len(t, list, 1)
	assert.Equal(t, alerts.KindSuccess, list[0].Kind)
	assert.Equal(t, "Code sent!", list[0].Title)

	h.clock.Advance(time.Second)
	assert.Equal(t, cooldown.State{SecondsRemaining: 2, ButtonDisabled: true}, h.ctrl.Cooldown())
	h.clock.Advance(2 * time.Second)
	assert.Equal(t, cooldown.State{SecondsRemaining: 0, ButtonDisabled: false}, h.ctrl.Cooldown())
}

func TestSendCode_DisabledWhileInFlight(t *testing.T) {
	var h *harness
	var during cooldown.State
	h = newHarness(t, func(req transport.Request) (*transport.Response, error) {
		during = h.ctrl.Cooldown()
		return replyOK("", nil)(req)
	})

	h.ctrl.SendCode(context.Background(), testIdentity)
	assert.Equal(t, cooldown.State{SecondsRemaining: 0, ButtonDisabled: true}, during)
}

func TestSendCode_SlowDispatchStillGetsFullCooldown(t *testing.T) {
	var h *harness
	h = newHarness(t, func(req transport.Request) (*transport.Response, error) {
		h.clock.Advance(5 * time.Second)
		assert.True(t, h.ctrl.Cooldown().ButtonDisabled, "disabled for the whole request")
		return replyOK("Check your inbox", nil)(req)
	})

	require.True(t, h.ctrl.SendCode(context.Background(), testIdentity))
	assert.Equal(t, cooldown.State{SecondsRemaining: 3, ButtonDisabled: true}, h.ctrl.Cooldown())

	h.clock.Advance(2 * time.Second)
	assert.True(t, h.ctrl.Cooldown().ButtonDisabled)
	h.clock.Advance(time.Second)
	assert.Equal(t, cooldown.State{}, h.ctrl.Cooldown())
}

func TestSendCode_FailureReleasesButton(t *testing.T) {
	h := newHarness(t, replyStatus(500, "mail server down"))

	require.False(t, h.ctrl.SendCode(context.Background(), testIdentity))
	assert.False(t, h.ctrl.Cooldown().ButtonDisabled)

	list := h.ctrl.AlertsForScope(OpSendCode)
	require.Len(t, list, 1)
	assert.Equal(t, unavailableTitle, list[0].Title)

	calls := h.transport.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPut, calls[0].Method)
	assert.Equal(t, "auth/account/code", calls[0].Path)
}

// =============================================================================
// RESTORE PASSWORD AND UNLOCK
// =============================================================================

func TestRestorePassword(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := newHarness(t, replyOK("Done", nil))
		require.True(t, h.ctrl.RestorePassword(context.Background(), testIdentity, "123456"))

		body, ok := h.transport.calls()[0].Body.(identityBody)
		require.True(t, ok)
		assert.Equal(t, "123456", body.RecoveryCode)
		assert.Equal(t, "1234567", body.CI)

		list := h.ctrl.AlertsForScope(OpRestorePassword)
		require.Len(t, list, 1)
		assert.Equal(t, "Password restored!", list[0].Title)
	})

	t.Run("invalid code", func(t *testing.T) {
		h := newHarness(t, replyStatus(422, "Code expired"))
		require.False(t, h.ctrl.RestorePassword(context.Background(), testIdentity, "000000"))

		list := h.ctrl.AlertsForScope(OpRestorePassword)
		require.Len(t, list, 1)
		assert.Equal(t, alerts.KindDanger, list[0].Kind)
		assert.Equal(t, "Oops! Invalid recovery code", list[0].Title)
		assert.Equal(t, "Code expired", list[0].Message)
	})

	t.Run("unavailable", func(t *testing.T) {
		h := newHarness(t, replyNetworkError())
		require.False(t, h.ctrl.RestorePassword(context.Background(), testIdentity, "000000"))

		list := h.ctrl.AlertsForScope(OpRestorePassword)
		require.Len(t, list, 1)
		assert.Equal(t, unavailableMessage, list[0].Message)
	})
}

func TestUnlockAccount_NotLocked(t *testing.T) {
	h := newHarness(t, replyStatus(409, "Account is not locked"))
	require.NoError(t, store.SaveSession(h.store, store.Session{Token: "T"}))
	h.ctrl.setAuthenticated(true)

	h.ctrl.UnlockAccount(context.Background(), testIdentity)

	list := h.ctrl.AlertsForScope(OpUnlockAccount)
	require.Len(t, list, 1)
	assert.Equal(t, alerts.KindWarning, list[0].Kind)
	assert.Equal(t, OpUnlockAccount, list[0].Scope)
	assert.Equal(t, "Account not unlocked!", list[0].Title)
	assert.True(t, h.ctrl.IsAuthenticated())

	assert.Empty(t, h.ctrl.AlertsForScope(OpLogin), "scoped alerts stay out of other views")
}

func TestUnlockAccount_Success(t *testing.T) {
	h := newHarness(t, replyOK("Unlocked", nil))
	h.ctrl.UnlockAccount(context.Background(), testIdentity)

	list := h.ctrl.AlertsForScope(OpUnlockAccount)
	require.Len(t, list, 1)
	assert.Equal(t, alerts.KindSuccess, list[0].Kind)
	assert.Equal(t, "Unlocked", list[0].Message)
}

// =============================================================================
// HTTP WIRING
// =============================================================================

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": status,
		"message":    message,
		"data":       data,
	})
}

func TestConnect_EndToEnd(t *testing.T) {
	tok := signToken(t, "a@x.com", "A", "B")
	var seenAuth []string

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		writeEnvelope(w, 200, "ok", map[string]string{"token": tok})
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/account/validate-token", func(w http.ResponseWriter, req *http.Request) {
		seenAuth = append(seenAuth, req.Header.Get("Authorization"))
		writeEnvelope(w, 200, "valid", nil)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/account/unlock", func(w http.ResponseWriter, req *http.Request) {
		seenAuth = append(seenAuth, req.Header.Get("Authorization"))
		writeEnvelope(w, 401, "expired", nil)
	}).Methods(http.MethodPut)

	srv := httptest.NewServer(r)
	defer srv.Close()

	st := store.NewMemory()
	ctrl, err := Connect(srv.URL+"/api", st, nil, WithClock(clock.NewManual(time.Unix(0, 0))))
	require.NoError(t, err)
	defer ctrl.Close()

	_, ok := ctrl.Login(context.Background(), "a@x.com", "pw")
	require.True(t, ok)
	require.True(t, ctrl.VerifyToken(context.Background()))

	ctrl.UnlockAccount(context.Background(), testIdentity)
	assert.False(t, ctrl.IsAuthenticated())
	assert.Zero(t, st.Len())
	assert.Equal(t, []string{"Bearer " + tok, "Bearer " + tok}, seenAuth)

	list := ctrl.AlertsForScope(OpUnlockAccount)
	require.Len(t, list, 1)
	assert.Equal(t, unavailableTitle, list[0].Title)
}

func TestConnect_RejectsBadURL(t *testing.T) {
	_, err := Connect("ftp://example.com", store.NewMemory(), nil)
	assert.Error(t, err)
}
