// Package navigation carries "navigate to" intents from the session core to whatever drives
// the browser. The core never routes by itself.
package navigation

import (
	"context"
	"net/http"

	"github.com/andrasnagy-data/learning-center/internal/shared/observable"
	"github.com/rs/zerolog"
)

// Route is a navigation target.
type Route string

const (
	Root   Route = "/"
	SignIn Route = "/sign-in"
	SignUp Route = "/sign-up"
)

type (
	// Navigator receives navigation intents.
	Navigator interface {
		Navigate(ctx context.Context, route Route)
	}

	// Intents records the latest navigation intent and lets the UI observe it.
	Intents struct {
		logger zerolog.Logger
		latest *observable.Value[Route]
	}
)

func NewIntents(logger zerolog.Logger) *Intents {
	return &Intents{
		logger: logger.With().Str("component", "navigation").Logger(),
		latest: observable.NewValue(Root),
	}
}

func (i *Intents) Navigate(_ context.Context, route Route) {
	i.logger.Debug().Str("route", string(route)).Msg("Navigation requested")
	i.latest.Set(route)
}

// Latest returns the most recent intent, Root if none was issued yet.
func (i *Intents) Latest() Route {
	return i.latest.Get()
}

// Subscribe replays the latest intent to fn, then calls it on every Navigate. fn runs
// synchronously inside Navigate and must not navigate itself.
func (i *Intents) Subscribe(fn func(Route)) func() {
	return i.latest.Subscribe(fn)
}

// Redirect sends the browser to route. HTMX requests get an HX-Redirect header,
// everything else a 303.
func Redirect(w http.ResponseWriter, r *http.Request, route Route) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", string(route))
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, string(route), http.StatusSeeOther)
}
