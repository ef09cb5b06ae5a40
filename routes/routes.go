package routes

import (
	"github.com/arenaops/arena-server/handlers"
	"github.com/arenaops/arena-server/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Auth,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	teamHandler *handlers.TeamHandler,
	tournamentHandler *handlers.TournamentHandler,
	walletHandler *handlers.WalletHandler,
	paymentHandler *handlers.PaymentHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	notificationHandler *handlers.NotificationHandler,
	adminHandler *handlers.AdminHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/ws", webSocketHandler.Serve)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.List)
			r.Get("/{id}", tournamentHandler.GetByID)
			r.Get("/{id}/results", tournamentHandler.ListResults)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Post("/{id}/join", tournamentHandler.Join)
			})
		})

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/", leaderboardHandler.GetCombined)
			r.Get("/players", leaderboardHandler.GetPlayers)
			r.Get("/teams", leaderboardHandler.GetTeams)
		})

		r.Get("/users/{id}", userHandler.GetUserByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", userHandler.GetMe)
				r.Patch("/", userHandler.UpdateMe)
				r.Post("/avatar", userHandler.UploadAvatar)
			})

			r.Route("/teams", func(r chi.Router) {
				r.Get("/", teamHandler.List)
				r.Post("/", teamHandler.Create)
				r.Get("/{id}", teamHandler.GetByID)
				r.Post("/join", teamHandler.Join)
				r.Post("/{id}/leave", teamHandler.Leave)
				r.Post("/{id}/kick", teamHandler.Kick)
			})

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/balance", walletHandler.GetBalance)
				r.Get("/transactions", walletHandler.ListTransactions)
				r.Post("/withdraw", walletHandler.RequestWithdrawal)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/proof", paymentHandler.SubmitProof)
				r.Get("/mine", paymentHandler.ListMyProofs)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Post("/{id}/read", notificationHandler.MarkRead)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.RequireAdmin)

			r.Post("/tournaments", tournamentHandler.Create)
			r.Patch("/tournaments/{id}", tournamentHandler.Update)

			r.Get("/matches/{id}", tournamentHandler.ListResults)
			r.Post("/matches/{id}", tournamentHandler.RecordResults)

			r.Get("/payments", paymentHandler.ListPending)
			r.Patch("/payments/{id}", paymentHandler.Review)

			r.Get("/users", adminHandler.ListUsers)
			r.Get("/users/{id}", adminHandler.GetUser)
			r.Patch("/users/{id}", adminHandler.ModerateUser)
		})
	})
}
