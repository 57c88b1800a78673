// Package api provides the JSON REST interface: routing, request
// validation middleware and the auth gate over the application
// services.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/adapters/metrics"
	"github.com/openshelf/openshelf/app"
	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/ports"
)

// Handler wires the application services to HTTP routes.
type Handler struct {
	auth       *app.AuthService
	books      *app.BookService
	categories *app.CategoryService
	purchases  *app.PurchaseService
	library    *app.LibraryService
	reviews    *app.ReviewService
	admin      *app.AdminService
	user       *app.UserService
	tokens     ports.TokenService
	metrics    *metrics.Collector
	logger     zerolog.Logger
}

// Deps contains dependencies for the API handler.
type Deps struct {
	Auth       *app.AuthService
	Books      *app.BookService
	Categories *app.CategoryService
	Purchases  *app.PurchaseService
	Library    *app.LibraryService
	Reviews    *app.ReviewService
	Admin      *app.AdminService
	User       *app.UserService
	Tokens     ports.TokenService
	Metrics    *metrics.Collector
	Logger     zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		auth:       deps.Auth,
		books:      deps.Books,
		categories: deps.Categories,
		purchases:  deps.Purchases,
		library:    deps.Library,
		reviews:    deps.Reviews,
		admin:      deps.Admin,
		user:       deps.User,
		tokens:     deps.Tokens,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Router returns the API router mounted at /api/v1.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(Instrument(h.metrics))
	r.Use(RequestLogger(h.logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusOK, "ok")
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.With(h.ValidateBody(registerSchema)).Post("/auth/register", h.handleRegister)
		r.With(h.ValidateBody(loginSchema)).Post("/auth/login", h.handleLogin)
		r.With(h.ValidateBody(forgotPasswordSchema)).Post("/auth/forgot-password", h.handleForgotPassword)
		r.With(h.ValidateBody(resetPasswordSchema)).Post("/auth/reset-password", h.handleResetPassword)

		// Public catalog
		r.With(h.OptionalAuth, h.ValidateParams(listBooksSchema)).Get("/books", h.handleListBooks)
		r.Get("/books/{id}", h.handleGetBook)
		r.Get("/books/{id}/reviews", h.handleListBookReviews)
		r.Get("/categories", h.handleListCategories)
		r.Get("/categories/{id}", h.handleGetCategory)
		r.With(h.ValidateParams(pagingSchema)).Get("/categories/{id}/books", h.handleListCategoryBooks)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Get("/auth/me", h.handleMe)
			r.With(h.ValidateBody(changePasswordSchema)).Post("/auth/change-password", h.handleChangePassword)

			r.With(h.ValidateBody(purchaseSchema)).Post("/orders", h.handleCreateOrder)
			r.Get("/orders", h.handleListMyOrders)
			r.Get("/orders/{id}", h.handleGetOrder)

			r.Get("/library", h.handleListLibrary)
			r.With(h.ValidateBody(purchaseSchema)).Post("/library", h.handleAddToLibrary)
			r.Delete("/library/{bookID}", h.handleRemoveFromLibrary)
			r.Get("/library/{bookID}/download", h.handleDownload)

			r.Get("/user/stats", h.handleUserStats)

			r.With(h.ValidateBody(reviewSchema)).Post("/books/{id}/reviews", h.handleCreateReview)
			r.Get("/reviews", h.handleListMyReviews)
			r.With(h.ValidateBody(reviewSchema)).Put("/reviews/{id}", h.handleUpdateReview)
			r.Delete("/reviews/{id}", h.handleDeleteReview)

			// Book management
			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin(identity.PermManageBooks))

				r.With(h.ValidateBody(bookSchema)).Post("/books", h.handleCreateBook)
				r.With(h.ValidateBody(bookSchema)).Put("/books/{id}", h.handleUpdateBook)
				r.Delete("/books/{id}", h.handleDeleteBook)
				r.Post("/books/{id}/cover", h.handleUploadCover)
				r.Post("/books/{id}/file", h.handleUploadFile)
			})

			// Category management
			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin(identity.PermManageCategories))

				r.With(h.ValidateBody(categorySchema)).Post("/categories", h.handleCreateCategory)
				r.With(h.ValidateBody(categorySchema)).Put("/categories/{id}", h.handleUpdateCategory)
				r.Delete("/categories/{id}", h.handleDeleteCategory)
			})

			// Order management
			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin(identity.PermManageOrders))

				r.With(h.ValidateParams(adminOrdersSchema)).Get("/admin/orders", h.handleListAllOrders)
				r.With(h.ValidateBody(purchaseStatusSchema)).Patch("/orders/{id}/status", h.handleUpdateOrderStatus)
			})

			// User management
			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin(identity.PermManageUsers))

				r.With(h.ValidateParams(pagingSchema)).Get("/admin/users", h.handleListUsers)
				r.Get("/admin/users/{id}", h.handleGetUser)
				r.With(h.ValidateBody(userActiveSchema)).Patch("/admin/users/{id}/active", h.handleSetUserActive)
				r.With(h.ValidateBody(userRoleSchema)).Patch("/admin/users/{id}/role", h.handleSetUserRole)
				r.With(h.ValidateBody(userPermissionsSchema)).Patch("/admin/users/{id}/permissions", h.handleSetUserPermissions)
				r.Delete("/admin/users/{id}", h.handleDeleteUser)
			})

			// Reporting
			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin(identity.PermViewReports))

				r.Get("/admin/stats", h.handleStats)
				r.Get("/admin/finance/overview", h.handleFinanceOverview)
				r.With(h.ValidateParams(financeTrendsSchema)).Get("/admin/finance/trends", h.handleFinanceTrends)
			})
		})
	})

	return r
}
