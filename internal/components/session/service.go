package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/andrasnagy-data/learning-center/internal/shared/navigation"
	"github.com/rs/zerolog"
)

var ErrPersistToken = errors.New("could not persist token")

type (
	// TokenStore persists the bearer token.
	TokenStore interface {
		Save(ctx context.Context, token string) error
		Remove(ctx context.Context) error
	}

	// Service signs users up, in and out. It is the only writer of the Store and the TokenStore.
	Service struct {
		authority authority
		store     *Store
		tokens    TokenStore
		navigator navigation.Navigator
		logger    zerolog.Logger

		// commit serializes store writes, token writes and navigation intents
		commit sync.Mutex
	}
)

func NewService(
	auth authority,
	store *Store,
	tokens TokenStore,
	navigator navigation.Navigator,
	logger zerolog.Logger,
) *Service {
	return &Service{
		authority: auth,
		store:     store,
		tokens:    tokens,
		navigator: navigator,
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// SignUp registers a user with the remote authority in the background. The user is not
// signed in afterwards. The returned channel yields exactly one Result and is then closed;
// callers may ignore it.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) <-chan Result {
	return s.dispatch(ctx, func(ctx context.Context) Result {
		return s.signUp(ctx, req)
	})
}

// SignIn authenticates with the remote authority in the background. The returned channel
// yields exactly one Result and is then closed; callers may ignore it.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) <-chan Result {
	return s.dispatch(ctx, func(ctx context.Context) Result {
		return s.signIn(ctx, req)
	})
}

// SignOut resets the session, forgets the token and navigates to sign-in. It always succeeds.
func (s *Service) SignOut(ctx context.Context) {
	s.commit.Lock()
	defer s.commit.Unlock()

	s.store.reset()
	if err := s.tokens.Remove(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to remove persisted token")
	}
	s.logger.Info().Msg("Signed out")
	s.navigator.Navigate(ctx, navigation.SignIn)
}

// dispatch runs op detached from ctx cancellation: once sent, a request is not aborted.
func (s *Service) dispatch(ctx context.Context, op func(context.Context) Result) <-chan Result {
	done := make(chan Result, 1)
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer close(done)
		done <- op(ctx)
	}()

	return done
}

func (s *Service) signUp(ctx context.Context, req SignUpRequest) Result {
	res, err := s.authority.SignUp(ctx, req)

	s.commit.Lock()
	defer s.commit.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Str("username", req.Username).Msg("Error signing up")
		return s.settle(ctx, Result{State: s.store.State(), Next: navigation.SignUp, Err: err})
	}

	s.logger.Info().Str("username", res.Username).Int("user_id", res.ID).Msg("Signed up")
	return s.settle(ctx, Result{State: s.store.State(), Next: navigation.SignIn})
}

func (s *Service) signIn(ctx context.Context, req SignInRequest) Result {
	res, err := s.authority.SignIn(ctx, req)

	s.commit.Lock()
	defer s.commit.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Str("username", req.Username).Msg("Error signing in")
		return s.settle(ctx, Result{State: s.store.State(), Next: navigation.SignIn, Err: err})
	}

	// token first: if it cannot be stored the session is left as it was
	if err := s.tokens.Save(ctx, res.Token); err != nil {
		err = fmt.Errorf("%w: %w", ErrPersistToken, err)
		s.logger.Error().Err(err).Str("username", res.Username).Msg("Error signing in")
		return s.settle(ctx, Result{State: s.store.State(), Next: navigation.SignIn, Err: err})
	}

	state := SessionState{
		IsAuthenticated: true,
		UserID:          res.ID,
		Username:        res.Username,
	}
	s.store.set(state)

	s.logger.Info().Str("username", res.Username).Int("user_id", res.ID).Msg("Signed in")
	return s.settle(ctx, Result{State: state, Next: navigation.Root})
}

// settle issues the navigation intent of res. Callers hold commit, so the latest intent
// always matches the latest committed state.
func (s *Service) settle(ctx context.Context, res Result) Result {
	s.navigator.Navigate(ctx, res.Next)
	return res
}
