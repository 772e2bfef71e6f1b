package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andrasnagy-data/learning-center/internal/shared/navigation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeSessions struct {
	authenticated bool
	reads         int
}

func (f *fakeSessions) IsAuthenticated() bool {
	f.reads++
	return f.authenticated
}

func TestGuard_Admit(t *testing.T) {
	t.Run("authenticated is admitted", func(t *testing.T) {
		sessions := &fakeSessions{authenticated: true}
		intents := navigation.NewIntents(zerolog.Nop())
		guard := NewGuard(sessions, intents, zerolog.Nop())

		assert.True(t, guard.Admit(context.Background(), "/courses"))
		assert.Equal(t, 1, sessions.reads)
		assert.Equal(t, navigation.Root, intents.Latest())
	})

	t.Run("anonymous is denied and sent to sign-in", func(t *testing.T) {
		sessions := &fakeSessions{}
		intents := navigation.NewIntents(zerolog.Nop())
		guard := NewGuard(sessions, intents, zerolog.Nop())

		assert.False(t, guard.Admit(context.Background(), "/courses"))
		assert.Equal(t, 1, sessions.reads)
		assert.Equal(t, navigation.SignIn, intents.Latest())
	})
}

func TestGuard_AdmitIsPointInTime(t *testing.T) {
	sessions := &fakeSessions{authenticated: true}
	guard := NewGuard(sessions, navigation.NewIntents(zerolog.Nop()), zerolog.Nop())

	assert.True(t, guard.Admit(context.Background(), "/courses"))
	sessions.authenticated = false
	assert.False(t, guard.Admit(context.Background(), "/courses"))
}

func TestGuard_Middleware(t *testing.T) {
	protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("denied request is redirected", func(t *testing.T) {
		guard := NewGuard(&fakeSessions{}, navigation.NewIntents(zerolog.Nop()), zerolog.Nop())
		rec := httptest.NewRecorder()

		guard.Middleware(protected).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/sign-in", rec.Header().Get("Location"))
	})

	t.Run("denied htmx request gets HX-Redirect", func(t *testing.T) {
		guard := NewGuard(&fakeSessions{}, navigation.NewIntents(zerolog.Nop()), zerolog.Nop())
		req := httptest.NewRequest(http.MethodDelete, "/courses/3", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()

		guard.Middleware(protected).ServeHTTP(rec, req)

		assert.Equal(t, "/sign-in", rec.Header().Get("HX-Redirect"))
	})

	t.Run("admitted request reaches handler", func(t *testing.T) {
		guard := NewGuard(&fakeSessions{authenticated: true}, navigation.NewIntents(zerolog.Nop()), zerolog.Nop())
		rec := httptest.NewRecorder()

		guard.Middleware(protected).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}
