package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskdeck/backend/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Account  *apiHandler.AccountHandler
	Task     *apiHandler.TaskHandler
	Category *apiHandler.CategoryHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)

	// Protected routes
	r.GET("/api/v1/account", authMiddleware(handlers.Account.GetProfile))
	r.PUT("/api/v1/account/email", authMiddleware(handlers.Account.ChangeEmail))
	r.DELETE("/api/v1/account", authMiddleware(handlers.Account.DeleteAccount))

	r.GET("/api/v1/tasks/today", authMiddleware(handlers.Task.GetToday))
	r.GET("/api/v1/tasks/date/{date}", authMiddleware(handlers.Task.GetByDate))
	r.GET("/api/v1/tasks/search", authMiddleware(handlers.Task.Search))
	r.GET("/api/v1/tasks/stats/{month}", authMiddleware(handlers.Task.GetMonthlyStats))
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.List))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.Create))
	r.PUT("/api/v1/tasks/reorder", authMiddleware(handlers.Task.Reorder))
	r.PATCH("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Update))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Delete))
	r.POST("/api/v1/tasks/{id}/complete", authMiddleware(handlers.Task.Complete))
	r.POST("/api/v1/tasks/{id}/uncomplete", authMiddleware(handlers.Task.Uncomplete))
	r.POST("/api/v1/tasks/{id}/skip", authMiddleware(handlers.Task.Skip))
	r.POST("/api/v1/tasks/{id}/unskip", authMiddleware(handlers.Task.Unskip))

	r.GET("/api/v1/categories", authMiddleware(handlers.Category.List))
	r.POST("/api/v1/categories", authMiddleware(handlers.Category.Create))
	r.PATCH("/api/v1/categories/{id}", authMiddleware(handlers.Category.Update))
	r.DELETE("/api/v1/categories/{id}", authMiddleware(handlers.Category.Delete))

	return r
}
