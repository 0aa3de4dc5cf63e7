package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamewishlabs/gamewish-backend/api/controllers"
	"github.com/gamewishlabs/gamewish-backend/api/middleware"
	wishlistsvc "github.com/gamewishlabs/gamewish-backend/internal/wishlist"
	"github.com/gamewishlabs/gamewish-backend/pkg/config"
	"github.com/gamewishlabs/gamewish-backend/pkg/db"
	"github.com/gamewishlabs/gamewish-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	wishlistService wishlistsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(logg, dbP))
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Store.APIToken, logg))

		r.Post("/", controllers.WishlistCreate(wishlistService, logg))
		r.Get("/{userID}/", controllers.WishlistFetch(wishlistService, logg))
		r.Post("/{userID}/add_game/", controllers.WishlistAddGame(wishlistService, logg))
		r.Delete("/{userID}/remove_game/", controllers.WishlistRemoveGame(wishlistService, logg))
	})

	return r
}
