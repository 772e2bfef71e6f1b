package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/andrasnagy-data/learning-center/internal/shared/navigation"
	"github.com/andrasnagy-data/learning-center/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	pongWait     = 90 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type (
	servicer interface {
		SignUp(context.Context, SignUpRequest) <-chan Result
		SignIn(context.Context, SignInRequest) <-chan Result
		SignOut(context.Context)
	}

	Router struct {
		service servicer
		store   *Store
		intents *navigation.Intents
	}

	// streamMessage is one frame of the session stream: a session state or a navigation intent.
	streamMessage struct {
		Session  *SessionState    `json:"session,omitempty"`
		Navigate navigation.Route `json:"navigate,omitempty"`
	}

	pageData struct {
		Session  SessionState
		Username string
		Error    string
	}
)

const errMissingCredentials = "Username and password are required"

func NewRouter(service *Service, store *Store, intents *navigation.Intents) chi.Router {
	router := &Router{service: service, store: store, intents: intents}
	return router.Routes()
}

func (r *Router) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.Home)
	router.Get("/sign-in", r.SignInPage)
	router.Post("/sign-in", r.HandleSignIn)
	router.Get("/sign-up", r.SignUpPage)
	router.Post("/sign-up", r.HandleSignUp)
	router.Post("/sign-out", r.HandleSignOut)
	router.Get("/session", r.GetSession)
	router.Get("/session/stream", r.StreamSession)

	return router
}

// Home shows the authentication section and a greeting.
func (r *Router) Home(w http.ResponseWriter, req *http.Request) {
	r.render(w, req, http.StatusOK, "index.html", pageData{})
}

func (r *Router) SignInPage(w http.ResponseWriter, req *http.Request) {
	r.render(w, req, http.StatusOK, "sign_in.html", pageData{})
}

func (r *Router) SignUpPage(w http.ResponseWriter, req *http.Request) {
	r.render(w, req, http.StatusOK, "sign_up.html", pageData{})
}

// HandleSignIn validates the form, waits for the sign-in to finish and follows its navigation intent.
func (r *Router) HandleSignIn(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	username := req.FormValue("username")
	password := req.FormValue("password")
	if username == "" || password == "" {
		logger.Debug().Msg("Sign-in form incomplete")
		r.render(w, req, http.StatusUnprocessableEntity, "sign_in.html", pageData{Username: username, Error: errMissingCredentials})
		return
	}

	logger.Debug().Str("username", username).Msg("Sign-in attempt")

	select {
	case res := <-r.service.SignIn(ctx, SignInRequest{Username: username, Password: password}):
		navigation.Redirect(w, req, res.Next)
	case <-ctx.Done():
		logger.Debug().Msg("Client left before sign-in completed")
	}
}

func (r *Router) HandleSignUp(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	username := req.FormValue("username")
	password := req.FormValue("password")
	if username == "" || password == "" {
		logger.Debug().Msg("Sign-up form incomplete")
		r.render(w, req, http.StatusUnprocessableEntity, "sign_up.html", pageData{Username: username, Error: errMissingCredentials})
		return
	}

	logger.Debug().Str("username", username).Msg("Sign-up attempt")

	select {
	case res := <-r.service.SignUp(ctx, SignUpRequest{Username: username, Password: password}):
		navigation.Redirect(w, req, res.Next)
	case <-ctx.Done():
		logger.Debug().Msg("Client left before sign-up completed")
	}
}

func (r *Router) HandleSignOut(w http.ResponseWriter, req *http.Request) {
	r.service.SignOut(req.Context())
	navigation.Redirect(w, req, navigation.SignIn)
}

// GetSession returns the current session state as JSON.
func (r *Router) GetSession(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(r.store.State()); err != nil {
		hlog.FromRequest(req).Error().Err(err).Msg("Failed to encode session state")
	}
}

// StreamSession pushes the session state over a websocket: the current state on connect,
// then every change. Navigation intents issued after connect are pushed too, so every open
// page follows a sign-in or sign-out. A slow reader only ever gets the latest of each.
func (r *Router) StreamSession(w http.ResponseWriter, req *http.Request) {
	logger := hlog.FromRequest(req)

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	states := make(chan SessionState, 1)
	unsubscribe := r.store.Subscribe(func(s SessionState) {
		latest(states, s)
	})
	defer unsubscribe()

	// the replayed intent predates this page
	var live atomic.Bool
	routes := make(chan navigation.Route, 1)
	unsubscribeIntents := r.intents.Subscribe(func(route navigation.Route) {
		if live.Load() {
			latest(routes, route)
		}
	})
	live.Store(true)
	defer unsubscribeIntents()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug().Err(err).Msg("Session stream closed")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	send := func(msg streamMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg) == nil
	}

	for {
		select {
		case s := <-states:
			if !send(streamMessage{Session: &s}) {
				return
			}
		case route := <-routes:
			if !send(streamMessage{Navigate: route}) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

// latest puts v on ch, dropping a value the writer has not picked up yet.
func latest[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}

func (r *Router) render(w http.ResponseWriter, req *http.Request, status int, page string, data pageData) {
	data.Session = r.store.State()
	if err := templates.Write(w, status, page, data); err != nil {
		hlog.FromRequest(req).Error().Err(err).Str("page", page).Msg("Failed to render page")
	}
}
