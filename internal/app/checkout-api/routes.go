// Package checkoutapi собирает HTTP API оформления абонементов: публичный
// каталог, мастер оформления, платежи и админ-панель.
package checkoutapi

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/club-checkout/docs" // swagger spec
	"github.com/magabrotheeeer/club-checkout/internal/config"
	"github.com/magabrotheeeer/club-checkout/internal/http/handlers/admin"
	"github.com/magabrotheeeer/club-checkout/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/club-checkout/internal/http/handlers/catalog/club"
	"github.com/magabrotheeeer/club-checkout/internal/http/handlers/catalog/clubs"
	"github.com/magabrotheeeer/club-checkout/internal/http/handlers/catalog/plans"
	"github.com/magabrotheeeer/club-checkout/internal/http/handlers/checkout/session"
	"github.com/magabrotheeeer/club-checkout/internal/http/handlers/health"
	"github.com/magabrotheeeer/club-checkout/internal/http/handlers/payment/paymentinitiate"
	"github.com/magabrotheeeer/club-checkout/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/club-checkout/internal/http/handlers/settings"
	"github.com/magabrotheeeer/club-checkout/internal/http/middlewarectx"
	adminservice "github.com/magabrotheeeer/club-checkout/internal/services/admin"
	authservice "github.com/magabrotheeeer/club-checkout/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/club-checkout/internal/services/catalog"
	checkoutservice "github.com/magabrotheeeer/club-checkout/internal/services/checkout"
	settingsservice "github.com/magabrotheeeer/club-checkout/internal/services/settings"
	"github.com/magabrotheeeer/club-checkout/internal/wizard"
)

// Services набор зависимостей HTTP-слоя.
type Services struct {
	Catalog   *catalogservice.CatalogService
	Settings  *settingsservice.SettingsService
	Checkout  *checkoutservice.CheckoutService
	Admin     *adminservice.AdminService
	Auth      *authservice.AuthService
	Sessions  *wizard.Manager
	Publisher paymentwebhook.Publisher
	Checks    map[string]health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware,
	)

	loc := cfg.Checkout.Location()
	wizardHandler := session.New(logger, s.Sessions, s.Catalog, loc)
	adminHandler := admin.New(logger, s.Admin, s.Settings)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger, s.Checks).ServeHTTP)
		r.Get("/clubs", clubs.New(logger, s.Catalog).ServeHTTP)
		r.Get("/clubs/{id}", club.New(logger, s.Catalog).ServeHTTP)
		r.Get("/plans", plans.New(logger, s.Catalog).ServeHTTP)
		r.Get("/settings", settings.New(logger, s.Settings).ServeHTTP)

		r.Route("/checkout/sessions", func(r chi.Router) {
			r.Post("/", wizardHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", wizardHandler.Get)
				r.Put("/club", wizardHandler.SelectClub)
				r.Put("/plan", wizardHandler.SelectPlan)
				r.Patch("/personal-data", wizardHandler.SetPersonalData)
				r.Put("/start-date", wizardHandler.SetStartDate)
				r.Post("/advance", wizardHandler.Advance)
				r.Post("/goto", wizardHandler.GoTo)
				r.With(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst)).
					Post("/submit", wizardHandler.Submit)
			})
		})

		// Платежи доступны без аутентификации, но с ограничением частоты
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))
			r.Post("/payments/initiate", paymentinitiate.New(logger, s.Checkout).ServeHTTP)
			r.Post("/payments/webhook", paymentwebhook.New(logger, s.Publisher, cfg.WebhookSecret).ServeHTTP)
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst)).
				Post("/login", login.New(logger, s.Auth).ServeHTTP)

			// Группа с JWT аутентификацией
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
				r.Use(middlewarectx.RequireRole(logger, authservice.RoleAdmin))

				r.Get("/clubs", adminHandler.ListClubs)
				r.Post("/clubs", adminHandler.CreateClub)
				r.Put("/clubs/{id}", adminHandler.UpdateClub)

				r.Get("/plans", adminHandler.ListPlans)
				r.Post("/plans", adminHandler.CreatePlan)
				r.Put("/plans/{id}", adminHandler.UpdatePlan)
				r.Delete("/plans/{id}", adminHandler.DeletePlan)

				r.Get("/promotions", adminHandler.ListPromotions)
				r.Post("/promotions", adminHandler.CreatePromotion)
				r.Put("/promotions/{id}", adminHandler.UpdatePromotion)
				r.Delete("/promotions/{id}", adminHandler.DeletePromotion)

				r.Get("/clients", adminHandler.ListClients)
				r.Get("/clients/{id}", adminHandler.GetClient)
				r.Put("/clients/{id}", adminHandler.UpdateClient)
				r.Delete("/clients/{id}", adminHandler.DeleteClient)

				r.Get("/users", adminHandler.ListUsers)
				r.Post("/users", adminHandler.CreateUser)
				r.Delete("/users/{id}", adminHandler.DeleteUser)

				r.Get("/settings", adminHandler.GetSettings)
				r.Put("/settings", adminHandler.UpdateSettings)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
