package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	authctrl "github.com/botyak1234/marketplace-task/controllers/auth"
	mectrl "github.com/botyak1234/marketplace-task/controllers/me"
	taskctrl "github.com/botyak1234/marketplace-task/controllers/tasks"
	"github.com/botyak1234/marketplace-task/middleware"
	"github.com/botyak1234/marketplace-task/repositories"
	"github.com/botyak1234/marketplace-task/services"
	"github.com/botyak1234/marketplace-task/utils"
)

// InitRouter wires repositories, services and controllers explicitly and
// registers every route. All dependencies flow through constructors; there
// is no process-wide service registry.
func InitRouter(db *gorm.DB) *mux.Router {
	taskRepo := repositories.NewTaskRepository(db)
	userRepo := repositories.NewUserRepository(db)

	taskSvc := services.NewTaskService(db, taskRepo, userRepo)
	userSvc := services.NewUserService(db, userRepo, utils.NewTokenIssuer())

	authController := authctrl.NewController(userSvc)
	taskController := taskctrl.NewController(taskSvc)
	meController := mectrl.NewController(userSvc)

	r := mux.NewRouter()

	// Health check endpoint for container health checks
	r.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "marketplace-task-api",
		})
	})).Methods(http.MethodGet)

	// CORS - origins from CORS_ALLOWED_ORIGINS (comma-separated) or localhost defaults
	origins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	if originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS"); originsEnv != "" {
		for _, p := range strings.Split(originsEnv, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/api").Subrouter()

	// Rate limiter for register/login: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)

	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(authController.Register))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(authController.Login))).Methods(http.MethodPost)
	api.Handle("/logout", middleware.AuthMiddleware(http.HandlerFunc(authController.Logout))).Methods(http.MethodPost)

	api.Handle("/me/points", middleware.AuthMiddleware(http.HandlerFunc(meController.Points))).Methods(http.MethodGet)

	// Task browsing and workflow (any authenticated user)
	api.Handle("/tasks", middleware.AuthMiddleware(http.HandlerFunc(taskController.List))).Methods(http.MethodGet)
	api.Handle("/tasks/by-status", middleware.AuthMiddleware(http.HandlerFunc(taskController.ByStatus))).Methods(http.MethodGet)
	api.Handle("/tasks/sorted", middleware.AuthMiddleware(http.HandlerFunc(taskController.Sorted))).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}", middleware.AuthMiddleware(http.HandlerFunc(taskController.Get))).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}/take", middleware.AuthMiddleware(http.HandlerFunc(taskController.Take))).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/submit", middleware.AuthMiddleware(http.HandlerFunc(taskController.Submit))).Methods(http.MethodPost)

	// Task administration
	api.Handle("/tasks", middleware.AuthMiddleware(middleware.RequireAdmin(http.HandlerFunc(taskController.Create)))).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}", middleware.AuthMiddleware(middleware.RequireAdmin(http.HandlerFunc(taskController.Update)))).Methods(http.MethodPut)
	api.Handle("/tasks/{id:[0-9]+}", middleware.AuthMiddleware(middleware.RequireAdmin(http.HandlerFunc(taskController.Delete)))).Methods(http.MethodDelete)
	api.Handle("/tasks/{id:[0-9]+}/review", middleware.AuthMiddleware(middleware.RequireAdmin(http.HandlerFunc(taskController.Review)))).Methods(http.MethodPost)

	return r
}
