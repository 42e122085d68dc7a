package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-api/internal/api/http/handlers"
	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Books          *handlers.BooksHandler
	Carts          *handlers.CartsHandler
	Orders         *handlers.OrdersHandler
	Reviews        *handlers.ReviewsHandler
	Comments       *handlers.CommentsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	authn := cfg.AuthMiddleware.Handle
	admin := auth.RequireAdmin()
	selfByID := auth.RequireSelfOrAdmin(auth.ParamOwner("id"))
	selfByUserID := auth.RequireSelfOrAdmin(auth.ParamOwner("userId"))
	selfByBody := auth.RequireSelfOrAdmin(auth.BodyOwner("userId"))

	app.Get("/", cfg.Health.Root)
	app.Get("/health", cfg.Health.Live)
	app.Get("/health/db", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", authn, selfByBody, cfg.Auth.Logout)

	users := app.Group("/users")
	users.Post("/", cfg.Users.Register)
	users.Get("/", authn, admin, cfg.Users.List)
	users.Get("/me", authn, cfg.Users.Me)
	users.Get("/:id", authn, selfByID, cfg.Users.Get)
	users.Patch("/:id", authn, selfByID, cfg.Users.Update)
	users.Delete("/:id", authn, selfByID, cfg.Users.Delete)
	users.Get("/:id/reviews", authn, selfByID, cfg.Users.Reviews)
	users.Get("/:id/comments", authn, selfByID, cfg.Users.Comments)
	users.Get("/:id/review-likes", authn, selfByID, cfg.Users.ReviewLikes)
	users.Get("/:id/comment-likes", authn, selfByID, cfg.Users.CommentLikes)
	users.Get("/:id/favorites", authn, selfByID, cfg.Users.Favorites)
	users.Get("/:id/carts", authn, selfByID, cfg.Users.Carts)
	users.Get("/:id/orders", authn, selfByID, cfg.Users.Orders)

	books := app.Group("/books")
	books.Get("/", cfg.Books.List)
	books.Get("/popular", cfg.Books.Popular)
	books.Get("/:id", cfg.Books.Get)
	books.Get("/:id/reviews", cfg.Books.Reviews)
	books.Get("/:id/categories", cfg.Books.Categories)
	books.Get("/:id/authors", cfg.Books.Authors)
	books.Post("/", authn, admin, cfg.Books.Create)
	books.Patch("/:id", authn, admin, cfg.Books.Update)
	books.Delete("/:id", authn, admin, cfg.Books.Delete)
	books.Post("/:id/favorites", authn, cfg.Books.AddFavorite)
	books.Delete("/:id/favorites", authn, cfg.Books.RemoveFavorite)

	carts := app.Group("/carts")
	carts.Post("/", authn, selfByBody, cfg.Carts.Create)
	carts.Get("/", authn, admin, cfg.Carts.List)
	carts.Get("/user/:userId", authn, selfByUserID, cfg.Carts.ListByUser)
	carts.Get("/:id", authn, cfg.Carts.Get)
	carts.Patch("/:id", authn, cfg.Carts.Update)
	carts.Delete("/:id", authn, cfg.Carts.Delete)

	orders := app.Group("/orders")
	orders.Post("/", authn, selfByBody, cfg.Orders.Create)
	orders.Get("/", authn, admin, cfg.Orders.List)
	orders.Get("/user/:userId", authn, selfByUserID, cfg.Orders.ListByUser)
	orders.Get("/:id", authn, cfg.Orders.Get)
	orders.Patch("/:id", authn, cfg.Orders.UpdateStatus)
	orders.Delete("/:id", authn, cfg.Orders.Delete)

	reviews := app.Group("/reviews")
	reviews.Post("/", authn, selfByBody, cfg.Reviews.Create)
	reviews.Get("/", cfg.Reviews.List)
	reviews.Get("/:id", cfg.Reviews.Get)
	reviews.Get("/:id/comments", cfg.Reviews.Comments)
	reviews.Get("/:id/likes", cfg.Reviews.Likes)
	reviews.Patch("/:id", authn, cfg.Reviews.Update)
	reviews.Delete("/:id", authn, cfg.Reviews.Delete)
	reviews.Post("/:id/likes", authn, cfg.Reviews.Like)
	reviews.Delete("/:id/likes", authn, cfg.Reviews.Unlike)

	comments := app.Group("/comments")
	comments.Post("/", authn, selfByBody, cfg.Comments.Create)
	comments.Get("/", cfg.Comments.List)
	comments.Get("/:id", cfg.Comments.Get)
	comments.Get("/:id/likes", cfg.Comments.Likes)
	comments.Patch("/:id", authn, cfg.Comments.Update)
	comments.Delete("/:id", authn, cfg.Comments.Delete)
	comments.Post("/:id/likes", authn, cfg.Comments.Like)
	comments.Delete("/:id/likes", authn, cfg.Comments.Unlike)

	adminGroup := app.Group("/admin", authn, admin)
	adminGroup.Get("/users", cfg.Admin.ListUsers)
	adminGroup.Patch("/users/:id/ban", cfg.Admin.BanUser)
	adminGroup.Get("/statistics/orders", cfg.Admin.OrderStatistics)
}
