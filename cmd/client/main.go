// Learning Center client
//
// Serves the browser pages of the learning center and talks to the remote authority on the
// user's behalf, holding the session and the bearer token in process.
package main

import (
	"github.com/andrasnagy-data/learning-center/internal/components/course"
	"github.com/andrasnagy-data/learning-center/internal/components/session"
	"github.com/andrasnagy-data/learning-center/internal/components/token"
	"github.com/andrasnagy-data/learning-center/internal/server"
	"github.com/andrasnagy-data/learning-center/internal/shared/config"
	"github.com/andrasnagy-data/learning-center/internal/shared/logging"
	"github.com/andrasnagy-data/learning-center/internal/shared/middleware"
	"github.com/andrasnagy-data/learning-center/internal/shared/navigation"
	"github.com/andrasnagy-data/learning-center/internal/shared/transport"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logging.NewLogger,
			token.NewBackend,
			fx.Annotate(
				token.NewPersistence,
				fx.As(fx.Self()),
				fx.As(new(transport.TokenSource)),
				fx.As(new(session.TokenStore)),
			),
			transport.NewHTTPClient,
			fx.Annotate(
				navigation.NewIntents,
				fx.As(fx.Self()),
				fx.As(new(navigation.Navigator)),
			),
			fx.Annotate(
				session.NewStore,
				fx.As(fx.Self()),
				fx.As(new(middleware.SessionReader)),
			),
			session.NewAuthority,
			session.NewService,
			fx.Annotate(session.NewRouter, fx.ResultTags(`name:"sessionRouter"`)),
			middleware.NewGuard,
			course.NewRepo,
			fx.Annotate(course.NewRouter, fx.ResultTags(`name:"courseRouter"`)),
			server.NewHealthSrvc,
			server.NewHealthHandler,
			server.NewServer,
		),
		fx.Invoke(
			(*token.Persistence).Start,
			(*server.Server).Start,
		),
	).Run()
}
