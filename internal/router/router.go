package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/config"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/handler"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/metrics"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/middleware"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
)

const (
	downloadMaxDuration = 5 * time.Minute
	downloadIdle        = 30 * time.Second
)

type Handlers struct {
	Site         *handler.Site
	Public       *handler.PublicHandler
	Auth         *handler.AuthHandler
	Dashboard    *handler.DashboardHandler
	Admin        *handler.AdminHandler
	Notification *handler.NotificationHandler
	Health       *handler.HealthHandler
}

func New(
	cfg *config.Config,
	sessions *middleware.SessionMiddleware,
	h Handlers,
	m *metrics.Metrics,
	log *slog.Logger,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	pages := middleware.Timeout(cfg.RequestTimeout)
	downloads := middleware.DownloadTimeout(downloadMaxDuration, downloadIdle)

	r.Use(middleware.Recovery(log))
	r.Use(sessions.Load)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.NotFound(h.Site.NotFound)

	r.Get("/health", h.Health.Health)
	r.Handle("/metrics", m.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	r.Get(handler.StylesPath, h.Public.Styles)
	r.Get(handler.ScriptsPath, h.Public.Scripts)

	// Websocket connections are long-lived and must not be buffered by Timeout.
	r.With(sessions.RequireSession).Get("/ws", h.Notification.WebSocket)

	r.Group(func(public chi.Router) {
		public.Use(pages)
		public.Use(h.Public.Gate)

		public.Get("/", h.Public.Home)
		public.Get("/about", h.Public.About)
		public.Get("/services", h.Public.Services)
		public.Get("/services/{id}", h.Public.ServiceDetail)
		public.Get("/products", h.Public.Products)
		public.Get("/products/{id}", h.Public.ProductDetail)
		public.Get("/privacy-policy", h.Public.Privacy)
		public.Get("/terms", h.Public.Terms)
		public.Get("/contact", h.Public.ContactForm)
		public.Post("/contact", h.Public.Contact)
		public.Get("/book-demo", h.Public.BookDemoForm)
		public.Post("/book-demo", h.Public.BookDemo)
	})

	r.Group(func(auth chi.Router) {
		auth.Use(pages)

		auth.Get(middleware.SignInPath, h.Auth.SignInForm)
		auth.Post(middleware.SignInPath, h.Auth.SignIn)
		auth.Get("/signup", h.Auth.SignUpForm)
		auth.Post("/signup", h.Auth.SignUp)
		auth.Post("/logout", h.Auth.Logout)
	})

	r.Group(func(dash chi.Router) {
		dash.Use(sessions.RequireSession)

		dash.Route("/admin", func(admin chi.Router) {
			admin.Group(func(staff chi.Router) {
				staff.Use(sessions.RequireRoles(model.RoleAdmin))
				staff.With(pages).Get("/", h.Dashboard.Admin)
				for _, screen := range h.Admin.Website() {
					screen.Mount(staff, pages, downloads)
				}
			})

			admin.Group(func(accounts chi.Router) {
				accounts.Use(sessions.RequireRoles(model.RoleAdmin, model.RoleMaster))
				h.Admin.Users.Mount(accounts, pages, downloads)
			})
		})

		dash.Route("/master", func(master chi.Router) {
			master.Use(sessions.RequireRoles(model.RoleMaster))
			h.Admin.Companies.Mount(master, pages, downloads)
		})

		dash.With(pages, sessions.RequireRoles(model.RoleMaster)).Get("/master-dashboard", h.Dashboard.Master)
		dash.With(pages, sessions.RequireRoles(model.RoleEmployee)).Get("/employee", h.Dashboard.Employee)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(pages)

		api.Route("/notifications", func(n chi.Router) {
			n.With(sessions.RequireSession).Post("/devices", h.Notification.RegisterDevice)
			n.With(middleware.RequireSecret(cfg.PushSecret)).Post("/push", h.Notification.Push)
		})
	})

	return r
}
