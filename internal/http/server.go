package httpapi

import (
	"net/http"

	"kaizen-backend-go/internal/cache"
	"kaizen-backend-go/internal/config"
	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	Store   *db.Store
	Config  config.Config
	Tokens  services.TokenService
	Sitemap *cache.SitemapCache
	Metrics *Metrics
}

// NewServer wires the handlers. sitemap may be nil to disable caching.
func NewServer(store *db.Store, cfg config.Config, sitemap *cache.SitemapCache) (*Server, error) {
	tokens, err := services.NewTokenService(cfg.SecretKey, cfg.Algorithm, cfg.AccessTTL())
	if err != nil {
		return nil, err
	}
	return &Server{
		Store:   store,
		Config:  cfg,
		Tokens:  tokens,
		Sitemap: sitemap,
		Metrics: NewMetrics(),
	}, nil
}

func (s *Server) poolHandle() *sqlx.DB {
	if s.Store == nil {
		return nil
	}
	return s.Store.DB
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(Recoverer)
	r.Use(RequestLogger(s.Metrics))
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/", s.Root)
	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/health", s.Health)

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", s.Login)
			auth.Post("/login/json", s.Login)
			auth.Group(func(authed chi.Router) {
				authed.Use(s.WithAuth)
				authed.Get("/me", s.Me)
				authed.Put("/me", s.UpdateMe)
				authed.With(RequireAdmin).Post("/register", s.Register)
			})
		})

		api.Get("/articles", s.ListArticles)
		api.Get("/articles/{slug}", s.ArticleDetail)
		api.Get("/companies", s.ListCompanies)
		api.Get("/companies/{slug}", s.CompanyDetail)
		api.Get("/locations", s.ListLocations)
		api.Get("/sitemap-data", s.SitemapData)

		// The stream authenticates itself so a token may travel in the query.
		api.Get("/admin/system/metrics/stream", s.SystemMetricsStream)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(s.WithAuth)
			admin.Use(RequireAdmin)

			admin.Get("/system/metrics", s.SystemMetrics)

			admin.Route("/users", func(users chi.Router) {
				users.Get("/", s.ListUsers)
				users.Post("/", s.CreateUser)
				users.Get("/{userId}", s.GetUser)
				users.Put("/{userId}", s.UpdateUser)
				users.Delete("/{userId}", s.DeleteUser)
			})
			admin.Route("/articles", func(articles chi.Router) {
				articles.Get("/", s.AdminListArticles)
				articles.Post("/", s.CreateArticle)
				articles.Get("/{articleId}", s.AdminGetArticle)
				articles.Put("/{articleId}", s.UpdateArticle)
				articles.Delete("/{articleId}", s.DeleteArticle)
			})
			admin.Route("/article-categories", func(categories chi.Router) {
				categories.Get("/", s.ListArticleCategories)
				categories.Post("/", s.CreateArticleCategory)
				categories.Delete("/{categoryId}", s.DeleteArticleCategory)
			})
			admin.Route("/company-categories", func(categories chi.Router) {
				categories.Get("/", s.ListCompanyCategories)
				categories.Post("/", s.CreateCompanyCategory)
			})
			admin.Route("/companies", func(companies chi.Router) {
				companies.Post("/", s.CreateCompany)
				companies.Put("/{companyId}", s.UpdateCompany)
				companies.Delete("/{companyId}", s.DeleteCompany)
			})
			admin.Route("/locations", func(locations chi.Router) {
				locations.Post("/", s.CreateLocation)
				locations.Put("/{locationId}", s.UpdateLocation)
				locations.Delete("/{locationId}", s.DeleteLocation)
			})
		})
	})
	return r
}
