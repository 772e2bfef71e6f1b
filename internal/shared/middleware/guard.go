package middleware

import (
	"context"
	"net/http"

	"github.com/andrasnagy-data/learning-center/internal/shared/navigation"
	"github.com/rs/zerolog"
)

type (
	// SessionReader exposes the authenticated flag of the session store.
	SessionReader interface {
		IsAuthenticated() bool
	}

	// Guard admits navigation into protected routes only while a user is signed in.
	Guard struct {
		sessions  SessionReader
		navigator navigation.Navigator
		logger    zerolog.Logger
	}
)

func NewGuard(sessions SessionReader, navigator navigation.Navigator, logger zerolog.Logger) *Guard {
	return &Guard{
		sessions:  sessions,
		navigator: navigator,
		logger:    logger.With().Str("component", "guard").Logger(),
	}
}

// Admit takes one snapshot of the authenticated flag. On denial it issues a sign-in
// navigation intent and returns false. A session that ends after the snapshot does not
// affect this attempt.
func (g *Guard) Admit(ctx context.Context, target string) bool {
	if g.sessions.IsAuthenticated() {
		return true
	}

	g.logger.Debug().Str("target", target).Msg("Navigation denied: not signed in")
	g.navigator.Navigate(ctx, navigation.SignIn)
	return false
}

// Middleware protects every route behind it, redirecting denied requests to the sign-in page.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Admit(r.Context(), r.URL.Path) {
			navigation.Redirect(w, r, navigation.SignIn)
			return
		}
		next.ServeHTTP(w, r)
	})
}
