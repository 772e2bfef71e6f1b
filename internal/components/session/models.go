package session

import "github.com/andrasnagy-data/learning-center/internal/shared/navigation"

type (
	// SessionState is the signed-in user as far as this process knows.
	// The zero value is the signed-out state.
	SessionState struct {
		IsAuthenticated bool   `json:"isAuthenticated"`
		UserID          int    `json:"userId"`
		Username        string `json:"username"`
	}

	SignUpRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	SignUpResponse struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	}

	SignInRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	SignInResponse struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
		Token    string `json:"token"`
	}

	// Result is the outcome of an asynchronous sign-up or sign-in.
	Result struct {
		// State is the session state once the operation finished.
		State SessionState
		// Next is the navigation intent that was issued.
		Next navigation.Route
		Err  error
	}
)
