package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/harukisan/fixed-points-backend/internal/api/handlers"
	"github.com/harukisan/fixed-points-backend/internal/api/middleware"
	"github.com/harukisan/fixed-points-backend/internal/config"
	"github.com/harukisan/fixed-points-backend/internal/service"
)

// NewRouter wires every HTTP route to its handler.
func NewRouter(services *service.Services, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.FrontendURL))

	authHandler := handlers.NewAuthHandler(services.Auth, logger)
	discordHandler := handlers.NewDiscordHandler(services.Discord, cfg, logger)
	fixedPointHandler := handlers.NewFixedPointHandler(services.FixedPoint, services.Favorite, logger)
	favoriteHandler := handlers.NewFavoriteHandler(services.Favorite, logger)
	valorantHandler := handlers.NewValorantHandler(services.Valorant, logger)
	uploadHandler := handlers.NewUploadHandler(cfg, logger)

	requireAuth := middleware.Auth(services.Auth)
	optionalAuth := middleware.OptionalAuth(services.Auth)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			r.Get("/discord/login", discordHandler.Login)
			r.Get("/discord/callback", discordHandler.Callback)
			r.Post("/discord/revoke", discordHandler.Revoke)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Route("/fixed-points", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/", fixedPointHandler.List)
				r.Get("/{id}", fixedPointHandler.Get)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", fixedPointHandler.Create)
				r.Put("/{id}", fixedPointHandler.Update)
				r.Delete("/{id}", fixedPointHandler.Delete)
				r.Post("/{id}/favorite", fixedPointHandler.Favorite)
				r.Delete("/{id}/favorite", fixedPointHandler.Unfavorite)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/favorites", favoriteHandler.List)
			r.Post("/upload/image", uploadHandler.Image)
		})

		r.Route("/valorant", func(r chi.Router) {
			r.Get("/agents", valorantHandler.Agents)
			r.Get("/maps", valorantHandler.Maps)
			r.Post("/sync", valorantHandler.Sync)
		})
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	return r
}
