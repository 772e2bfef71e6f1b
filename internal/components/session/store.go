package session

import (
	"sync"

	"github.com/andrasnagy-data/learning-center/internal/shared/observable"
)

// Store is the process-wide session state. Reads and subscriptions are open to everyone;
// writes are reserved to the Service in this package.
type Store struct {
	mu            sync.Mutex
	state         *observable.Value[SessionState]
	authenticated *observable.Value[bool]
	userID        *observable.Value[int]
	username      *observable.Value[string]
}

func NewStore() *Store {
	return &Store{
		state:         observable.NewValue(SessionState{}),
		authenticated: observable.NewValue(false),
		userID:        observable.NewValue(0),
		username:      observable.NewValue(""),
	}
}

func (s *Store) State() SessionState { return s.state.Get() }

func (s *Store) IsAuthenticated() bool { return s.authenticated.Get() }

func (s *Store) UserID() int { return s.userID.Get() }

func (s *Store) Username() string { return s.username.Get() }

// Subscribe observes the whole triple. fn is replayed the current state, then called on
// every write.
//
// All Subscribe* callbacks run synchronously while the Service commits the change, with its
// lock held. They must not call back into the Service (SignIn, SignUp, SignOut); hand such
// work to a goroutine instead.
func (s *Store) Subscribe(fn func(SessionState)) func() { return s.state.Subscribe(fn) }

// SubscribeAuthenticated observes the flag; fn runs only when it changes. See Subscribe.
func (s *Store) SubscribeAuthenticated(fn func(bool)) func() { return s.authenticated.Subscribe(fn) }

func (s *Store) SubscribeUserID(fn func(int)) func() { return s.userID.Subscribe(fn) }

func (s *Store) SubscribeUsername(fn func(string)) func() { return s.username.Subscribe(fn) }

// set replaces the triple. Projections only fire when their value changes. When signing in
// the identity is published before the flag, when signing out the flag drops first, so the
// authenticated projection never reads true next to an empty username.
func (s *Store) set(next SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.Get()
	if next.IsAuthenticated {
		s.setIdentity(prev, next)
		s.setFlag(prev, next)
	} else {
		s.setFlag(prev, next)
		s.setIdentity(prev, next)
	}
	s.state.Set(next)
}

func (s *Store) reset() {
	s.set(SessionState{})
}

func (s *Store) setFlag(prev, next SessionState) {
	if prev.IsAuthenticated != next.IsAuthenticated {
		s.authenticated.Set(next.IsAuthenticated)
	}
}

func (s *Store) setIdentity(prev, next SessionState) {
	if prev.Username != next.Username {
		s.username.Set(next.Username)
	}
	if prev.UserID != next.UserID {
		s.userID.Set(next.UserID)
	}
}
