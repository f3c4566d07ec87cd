package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/morlov/merchant-admin/internal/config"
	"github.com/morlov/merchant-admin/internal/domain/enums"
	"github.com/morlov/merchant-admin/internal/domain/rules"
	authsvc "github.com/morlov/merchant-admin/internal/services/auth"
	dashboardsvc "github.com/morlov/merchant-admin/internal/services/dashboard"
	merchantssvc "github.com/morlov/merchant-admin/internal/services/merchants"
	settingssvc "github.com/morlov/merchant-admin/internal/services/settings"
	userssvc "github.com/morlov/merchant-admin/internal/services/users"
	"github.com/morlov/merchant-admin/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService      *authsvc.Service
	UserService      *userssvc.Service
	MerchantService  *merchantssvc.Service
	DashboardService *dashboardsvc.Service
	SettingsService  *settingssvc.Service
	Logger           *zap.Logger
	Config           config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Config.Env == "dev")
	usersHandler := handlers.NewUsersHandler(deps.UserService)
	merchantsHandler := handlers.NewMerchantsHandler(deps.MerchantService)
	dashboardHandler := handlers.NewDashboardHandler(deps.DashboardService)
	settingsHandler := handlers.NewSettingsHandler(deps.SettingsService)
	healthHandler := handlers.NewHealthHandler()

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)
	})

	// The users screen is super_admin territory; the services re-check each
	// capability, the router rejects the rest of the traffic up front.
	r.Route("/users", func(r chi.Router) {
		r.Use(authMW)
		r.Use(RequireRole(enums.RoleSuperAdmin))
		r.Get("/", usersHandler.List)
		r.Post("/", usersHandler.Create)
		r.Get("/{id}", usersHandler.Get)
		r.Put("/{id}", usersHandler.Update)
		r.Delete("/{id}", usersHandler.Delete)
	})

	r.Route("/merchants", func(r chi.Router) {
		r.Use(authMW)
		r.Use(RequirePermission(func(p rules.PermissionSet) bool { return p.ViewMerchants }))
		r.Get("/", merchantsHandler.List)
		r.Get("/{id}", merchantsHandler.Get)
		r.With(RequirePermission(func(p rules.PermissionSet) bool { return p.CreateMerchants })).
			Post("/", merchantsHandler.Create)
		r.With(RequirePermission(func(p rules.PermissionSet) bool { return p.UpdateMerchants })).
			Put("/{id}", merchantsHandler.Update)
		r.With(RequirePermission(func(p rules.PermissionSet) bool { return p.DeleteMerchants })).
			Delete("/{id}", merchantsHandler.Delete)
	})

	r.With(authMW).Get("/dashboard", dashboardHandler.Summary)

	r.Route("/settings", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/profile", settingsHandler.Profile)
		r.Put("/profile", settingsHandler.UpdateProfile)
		r.Put("/password", settingsHandler.ChangePassword)
		r.Post("/avatar", settingsHandler.UploadAvatar)
	})
}
