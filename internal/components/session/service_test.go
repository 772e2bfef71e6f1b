package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/andrasnagy-data/learning-center/internal/components/token"
	"github.com/andrasnagy-data/learning-center/internal/shared/config"
	"github.com/andrasnagy-data/learning-center/internal/shared/navigation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service *Service
	store   *Store
	tokens  *token.Persistence
	intents *navigation.Intents
}

// newAuthorityServer fakes the remote authority. Users in accounts can sign in with password "pw".
func newAuthorityServer(t *testing.T, accounts map[string]SignInResponse) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /authentication/sign-up", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req SignUpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "taken" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		json.NewEncoder(w).Encode(SignUpResponse{ID: 3, Username: req.Username})
	})
	mux.HandleFunc("POST /authentication/sign-in", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req SignInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		account, ok := accounts[req.Username]
		if !ok || req.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(account)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newFixture(t *testing.T, baseURL string) fixture {
	t.Helper()

	store := NewStore()
	tokens := token.NewPersistence(token.NewMemoryBackend(), zerolog.Nop())
	intents := navigation.NewIntents(zerolog.Nop())
	auth := NewAuthority(&config.Config{ServerBasePath: baseURL}, &http.Client{Timeout: 5 * time.Second})

	return fixture{
		service: NewService(auth, store, tokens, intents, zerolog.Nop()),
		store:   store,
		tokens:  tokens,
		intents: intents,
	}
}

func await(t *testing.T, results <-chan Result) Result {
	t.Helper()
	select {
	case res, ok := <-results:
		require.True(t, ok, "result channel closed without a result")
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
		return Result{}
	}
}

var alice = map[string]SignInResponse{
	"alice": {ID: 7, Username: "alice", Token: "abc123"},
}

func TestSignIn_Success(t *testing.T) {
	f := newFixture(t, newAuthorityServer(t, alice).URL)

	res := await(t, f.service.SignIn(context.Background(), SignInRequest{Username: "alice", Password: "pw"}))

	require.NoError(t, res.Err)
	want := SessionState{IsAuthenticated: true, UserID: 7, Username: "alice"}
	assert.Equal(t, want, res.State)
	assert.Equal(t, want, f.store.State())
	assert.Equal(t, navigation.Root, res.Next)
	assert.Equal(t, navigation.Root, f.intents.Latest())

	tok, ok := f.tokens.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc123", tok)
}

func TestSignIn_FailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, newAuthorityServer(t, alice).URL)

	res := await(t, f.service.SignIn(context.Background(), SignInRequest{Username: "alice", Password: "wrong"}))

	require.ErrorIs(t, res.Err, ErrRemoteStatus)
	assert.Equal(t, SessionState{}, f.store.State())
	assert.Equal(t, navigation.SignIn, res.Next)
	assert.Equal(t, navigation.SignIn, f.intents.Latest())
	_, ok := f.tokens.Token()
	assert.False(t, ok)
}

func TestSignIn_FailureKeepsPriorSession(t *testing.T) {
	f := newFixture(t, newAuthorityServer(t, alice).URL)
	ctx := context.Background()

	await(t, f.service.SignIn(ctx, SignInRequest{Username: "alice", Password: "pw"}))
	res := await(t, f.service.SignIn(ctx, SignInRequest{Username: "mallory", Password: "pw"}))

	require.Error(t, res.Err)
	assert.Equal(t, SessionState{IsAuthenticated: true, UserID: 7, Username: "alice"}, f.store.State())
	tok, _ := f.tokens.Token()
	assert.Equal(t, "abc123", tok)
}

func TestSignIn_UnreachableAuthority(t *testing.T) {
	srv := newAuthorityServer(t, alice)
	srv.Close()
	f := newFixture(t, srv.URL)

	res := await(t, f.service.SignIn(context.Background(), SignInRequest{Username: "alice", Password: "pw"}))

	require.Error(t, res.Err)
	assert.Equal(t, SessionState{}, f.store.State())
	assert.Equal(t, navigation.SignIn, res.Next)
}

type brokenTokens struct{}

func (brokenTokens) Save(context.Context, string) error { return errors.New("disk full") }
func (brokenTokens) Remove(context.Context) error       { return errors.New("disk full") }

func TestSignIn_TokenPersistFailureLeavesStateUnchanged(t *testing.T) {
	srv := newAuthorityServer(t, alice)
	store := NewStore()
	intents := navigation.NewIntents(zerolog.Nop())
	auth := NewAuthority(&config.Config{ServerBasePath: srv.URL}, srv.Client())
	service := NewService(auth, store, brokenTokens{}, intents, zerolog.Nop())

	res := await(t, service.SignIn(context.Background(), SignInRequest{Username: "alice", Password: "pw"}))

	require.ErrorIs(t, res.Err, ErrPersistToken)
	assert.Equal(t, SessionState{}, store.State())
	assert.Equal(t, navigation.SignIn, intents.Latest())
}

func TestSignOut_AlwaysSucceeds(t *testing.T) {
	store := NewStore()
	store.set(SessionState{IsAuthenticated: true, UserID: 7, Username: "alice"})
	intents := navigation.NewIntents(zerolog.Nop())
	service := NewService(nil, store, brokenTokens{}, intents, zerolog.Nop())

	service.SignOut(context.Background())

	assert.Equal(t, SessionState{}, store.State())
	assert.Equal(t, navigation.SignIn, intents.Latest())
}

func TestSignInThenSignOut(t *testing.T) {
	f := newFixture(t, newAuthorityServer(t, alice).URL)
	ctx := context.Background()

	await(t, f.service.SignIn(ctx, SignInRequest{Username: "alice", Password: "pw"}))
	f.service.SignOut(ctx)

	assert.Equal(t, SessionState{}, f.store.State())
	_, ok := f.tokens.Token()
	assert.False(t, ok)
	assert.Equal(t, navigation.SignIn, f.intents.Latest())
}

func TestSignOut_Idempotent(t *testing.T) {
	f := newFixture(t, newAuthorityServer(t, alice).URL)
	ctx := context.Background()
	await(t, f.service.SignIn(ctx, SignInRequest{Username: "alice", Password: "pw"}))

	f.service.SignOut(ctx)
	once := f.store.State()
	_, onceHasToken := f.tokens.Token()

	f.service.SignOut(ctx)

	assert.Equal(t, once, f.store.State())
	_, twiceHasToken := f.tokens.Token()
	assert.Equal(t, onceHasToken, twiceHasToken)
	assert.Equal(t, navigation.SignIn, f.intents.Latest())
}

func TestSignUp_Success(t *testing.T) {
	f := newFixture(t, newAuthorityServer(t, alice).URL)

	res := await(t, f.service.SignUp(context.Background(), SignUpRequest{Username: "bob", Password: "pw"}))

	require.NoError(t, res.Err)
	assert.Equal(t, SessionState{}, f.store.State(), "sign-up does not sign in")
	assert.Equal(t, navigation.SignIn, res.Next)
	assert.Equal(t, navigation.SignIn, f.intents.Latest())
	_, ok := f.tokens.Token()
	assert.False(t, ok)
}

func TestSignUp_Failure(t *testing.T) {
	f := newFixture(t, newAuthorityServer(t, alice).URL)

	res := await(t, f.service.SignUp(context.Background(), SignUpRequest{Username: "taken", Password: "pw"}))

	require.ErrorIs(t, res.Err, ErrRemoteStatus)
	assert.Equal(t, SessionState{}, f.store.State())
	assert.Equal(t, navigation.SignUp, res.Next)
	assert.Equal(t, navigation.SignUp, f.intents.Latest())
}

func TestDispatch_SurvivesCallerCancellation(t *testing.T) {
	f := newFixture(t, newAuthorityServer(t, alice).URL)
	ctx, cancel := context.WithCancel(context.Background())

	results := f.service.SignIn(ctx, SignInRequest{Username: "alice", Password: "pw"})
	cancel()

	res := await(t, results)
	require.NoError(t, res.Err)
	assert.True(t, f.store.IsAuthenticated())
}

func TestResultChannelClosedAfterResult(t *testing.T) {
	f := newFixture(t, newAuthorityServer(t, alice).URL)

	results := f.service.SignUp(context.Background(), SignUpRequest{Username: "bob", Password: "pw"})
	await(t, results)

	_, ok := <-results
	assert.False(t, ok)
}

func TestSignInAndSignOutNeverMixState(t *testing.T) {
	f := newFixture(t, newAuthorityServer(t, alice).URL)
	ctx := context.Background()

	var (
		mu       sync.Mutex
		observed []SessionState
	)
	f.store.Subscribe(func(s SessionState) {
		mu.Lock()
		observed = append(observed, s)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-f.service.SignIn(ctx, SignInRequest{Username: "alice", Password: "pw"})
		}()
		go func() {
			defer wg.Done()
			f.service.SignOut(ctx)
		}()
	}
	wg.Wait()

	signedIn := SessionState{IsAuthenticated: true, UserID: 7, Username: "alice"}
	mu.Lock()
	defer mu.Unlock()
	for _, s := range observed {
		assert.Contains(t, []SessionState{{}, signedIn}, s)
	}

	// the token and the latest intent always match the final state
	_, hasToken := f.tokens.Token()
	assert.Equal(t, f.store.IsAuthenticated(), hasToken)
	if f.store.IsAuthenticated() {
		assert.Equal(t, navigation.Root, f.intents.Latest())
	} else {
		assert.Equal(t, navigation.SignIn, f.intents.Latest())
	}
}

func TestIntentMatchesStateWhenSignOutRacesSignIn(t *testing.T) {
	f := newFixture(t, newAuthorityServer(t, alice).URL)
	ctx := context.Background()

	results := f.service.SignIn(ctx, SignInRequest{Username: "alice", Password: "pw"})
	// sign-out lands either before the sign-in commits or after it; both leave matching state
	f.service.SignOut(ctx)
	res := await(t, results)
	require.NoError(t, res.Err)

	if f.store.IsAuthenticated() {
		assert.Equal(t, navigation.Root, f.intents.Latest())
	} else {
		assert.Equal(t, navigation.SignIn, f.intents.Latest())
	}
}

func TestSubscriberHandsServiceCallsToGoroutine(t *testing.T) {
	f := newFixture(t, newAuthorityServer(t, alice).URL)
	ctx := context.Background()

	f.store.SubscribeAuthenticated(func(signedIn bool) {
		if signedIn {
			go f.service.SignOut(ctx)
		}
	})

	res := await(t, f.service.SignIn(ctx, SignInRequest{Username: "alice", Password: "pw"}))
	require.NoError(t, res.Err)

	assert.Eventually(t, func() bool {
		return !f.store.IsAuthenticated() && f.intents.Latest() == navigation.SignIn
	}, 5*time.Second, 10*time.Millisecond)
	_, ok := f.tokens.Token()
	assert.False(t, ok)
}
