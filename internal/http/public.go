package httpapi

import (
	"net/http"

	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/models"
	"kaizen-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

const Version = "1.0.0"

func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Agência Kaizen API",
		"version": Version,
	})
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) ListArticles(w http.ResponseWriter, r *http.Request) {
	params := newQueryReader(r.URL.Query())
	opts := services.ArticleListOptions{
		CategorySlug: params.stringParam("category", 80),
		IsFeatured:   params.boolParam("is_featured"),
		IsPublished:  params.boolParam("is_published"),
		Pagination:   params.pagination(),
	}
	if err := params.err(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.writeArticleList(w, r, opts)
}

func (s *Server) writeArticleList(w http.ResponseWriter, r *http.Request, opts services.ArticleListOptions) {
	var list services.ArticleList
	err := s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		list, err = services.ListArticles(r.Context(), q, opts)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]ArticleDTO, 0, len(list.Items))
	for _, item := range list.Items {
		items = append(items, articleDTO(item))
	}
	WriteJSON(w, http.StatusOK, PageResponse[ArticleDTO]{
		Data:  items,
		Total: list.Total,
		Page:  list.Page,
		Limit: list.Limit,
		Pages: list.Pages,
	})
}

func (s *Server) ArticleDetail(w http.ResponseWriter, r *http.Request) {
	var article services.ArticleWithCategory
	err := s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		article, err = services.GetPublishedArticle(r.Context(), q, chi.URLParam(r, "slug"))
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, articleDTO(article))
}

func (s *Server) ListCompanies(w http.ResponseWriter, r *http.Request) {
	params := newQueryReader(r.URL.Query())
	opts := services.CompanyListOptions{
		CategorySlug: params.stringParam("category", 100),
		IsActive:     params.boolParam("is_active"),
		Pagination:   params.pagination(),
	}
	if err := params.err(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	var list services.CompanyList
	err := s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		list, err = services.ListCompanies(r.Context(), q, opts)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]CompanyDTO, 0, len(list.Items))
	for _, item := range list.Items {
		items = append(items, companyDTO(item))
	}
	WriteJSON(w, http.StatusOK, PageResponse[CompanyDTO]{
		Data:  items,
		Total: list.Total,
		Page:  list.Page,
		Limit: list.Limit,
		Pages: list.Pages,
	})
}

func (s *Server) CompanyDetail(w http.ResponseWriter, r *http.Request) {
	var company services.CompanyDetail
	err := s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		company, err = services.GetActiveCompany(r.Context(), q, chi.URLParam(r, "slug"))
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, companyDTO(company))
}

func (s *Server) ListLocations(w http.ResponseWriter, r *http.Request) {
	params := newQueryReader(r.URL.Query())
	opts := services.LocationListOptions{
		IsActive:     params.boolParam("is_active"),
		IsMainOffice: params.boolParam("is_main_office"),
	}
	if err := params.err(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	var locations []models.Location
	err := s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		locations, err = services.ListLocations(r.Context(), q, opts)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]LocationDTO, 0, len(locations))
	for _, location := range locations {
		items = append(items, locationDTO(location))
	}
	WriteJSON(w, http.StatusOK, ListResponse[LocationDTO]{Data: items, Total: len(items)})
}

// SitemapData serves from the cache when one is configured.
func (s *Server) SitemapData(w http.ResponseWriter, r *http.Request) {
	cached, gen, ok := s.Sitemap.Get(r.Context())
	if ok {
		WriteJSON(w, http.StatusOK, cached)
		return
	}
	var data services.SitemapData
	err := s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		data, err = services.LoadSitemapData(r.Context(), q, s.Config.StaticPages)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.Sitemap.Set(r.Context(), gen, data)
	WriteJSON(w, http.StatusOK, data)
}
