package httpapi

import (
	"net/http"
	"time"

	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/models"
	"kaizen-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

type ArticleRequest struct {
	Title          *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Slug           *string    `json:"slug" validate:"omitempty,slug,max=255"`
	Excerpt        *string    `json:"excerpt"`
	Content        *string    `json:"content"`
	CoverImageURL  *string    `json:"cover_image_url" validate:"omitempty,url,max=500"`
	SocialImageURL *string    `json:"social_image_url" validate:"omitempty,url,max=500"`
	PublishedAt    *time.Time `json:"published_at"`
	IsFeatured     *bool      `json:"is_featured"`
	IsPublished    *bool      `json:"is_published"`
	ReadingTime    *int       `json:"reading_time" validate:"omitempty,min=1"`
	SeoTitle       *string    `json:"seo_title" validate:"omitempty,max=255"`
	SeoDescription *string    `json:"seo_description" validate:"omitempty,max=160"`
	MetaKeywords   *string    `json:"meta_keywords" validate:"omitempty,max=255"`
	CategoryID     *string    `json:"category_id" validate:"omitempty,uuid"`
}

func (req ArticleRequest) input() services.ArticleInput {
	return services.ArticleInput{
		Title:          req.Title,
		Slug:           req.Slug,
		Excerpt:        req.Excerpt,
		Content:        req.Content,
		CoverImageURL:  req.CoverImageURL,
		SocialImageURL: req.SocialImageURL,
		PublishedAt:    req.PublishedAt,
		IsFeatured:     req.IsFeatured,
		IsPublished:    req.IsPublished,
		ReadingTime:    req.ReadingTime,
		SeoTitle:       req.SeoTitle,
		SeoDescription: req.SeoDescription,
		MetaKeywords:   req.MetaKeywords,
		CategoryID:     req.CategoryID,
	}
}

type ArticleCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Slug        *string `json:"slug" validate:"omitempty,slug,max=80"`
	Description *string `json:"description"`
}

type CompanyCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,slug,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hexcolor,len=7"`
}

type FeatureRequest struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description string  `json:"description" validate:"required"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
	Order       int     `json:"order"`
}

type CompanyRequest struct {
	Name             *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Slug             *string          `json:"slug" validate:"omitempty,slug,max=100"`
	Tagline          *string          `json:"tagline" validate:"omitempty,max=200"`
	Description      *string          `json:"description"`
	LogoURL          *string          `json:"logo_url" validate:"omitempty,url,max=500"`
	FeaturedImageURL *string          `json:"featured_image_url" validate:"omitempty,url,max=500"`
	CategoryID       *string          `json:"category_id" validate:"omitempty,uuid"`
	WebsiteURL       *string          `json:"website_url" validate:"omitempty,url,max=500"`
	ContactEmail     *string          `json:"contact_email" validate:"omitempty,email,max=255"`
	Phone            *string          `json:"phone" validate:"omitempty,max=20"`
	IsActive         *bool            `json:"is_active"`
	Order            *int             `json:"order"`
	MetaDescription  *string          `json:"meta_description" validate:"omitempty,max=160"`
	FoundedDate      *string          `json:"founded_date" validate:"omitempty,datetime=2006-01-02"`
	Features         []FeatureRequest `json:"features" validate:"omitempty,dive"`
}

func (req CompanyRequest) input() services.CompanyInput {
	input := services.CompanyInput{
		Name:             req.Name,
		Slug:             req.Slug,
		Tagline:          req.Tagline,
		Description:      req.Description,
		LogoURL:          req.LogoURL,
		FeaturedImageURL: req.FeaturedImageURL,
		CategoryID:       req.CategoryID,
		WebsiteURL:       req.WebsiteURL,
		ContactEmail:     req.ContactEmail,
		Phone:            req.Phone,
		IsActive:         req.IsActive,
		Order:            req.Order,
		MetaDescription:  req.MetaDescription,
	}
	if req.FoundedDate != nil {
		// Already checked by the datetime rule.
		if founded, err := time.Parse("2006-01-02", *req.FoundedDate); err == nil {
			input.FoundedDate = &founded
		}
	}
	if req.Features != nil {
		input.Features = make([]services.FeatureInput, 0, len(req.Features))
		for _, f := range req.Features {
			input.Features = append(input.Features, services.FeatureInput{
				Title:       f.Title,
				Description: f.Description,
				Icon:        f.Icon,
				Order:       f.Order,
			})
		}
	}
	return input
}

type LocationRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=120"`
	City         *string  `json:"city" validate:"omitempty,min=1,max=100"`
	State        *string  `json:"state" validate:"omitempty,len=2,alpha"`
	Address      *string  `json:"address" validate:"omitempty,min=1"`
	PostalCode   *string  `json:"postal_code" validate:"omitempty,max=12"`
	Country      *string  `json:"country" validate:"omitempty,len=2,alpha"`
	Phone        *string  `json:"phone" validate:"omitempty,max=20"`
	Email        *string  `json:"email" validate:"omitempty,email,max=255"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,longitude"`
	MapsURL      *string  `json:"maps_url" validate:"omitempty,url,max=500"`
	PlaceID      *string  `json:"place_id" validate:"omitempty,max=120"`
	OpeningHours *string  `json:"opening_hours" validate:"omitempty,max=200"`
	IsMainOffice *bool    `json:"is_main_office"`
	IsActive     *bool    `json:"is_active"`
	Order        *int     `json:"order"`
}

func (req LocationRequest) input() services.LocationInput {
	return services.LocationInput{
		Name:         req.Name,
		City:         req.City,
		State:        req.State,
		Address:      req.Address,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		Phone:        req.Phone,
		Email:        req.Email,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		MapsURL:      req.MapsURL,
		PlaceID:      req.PlaceID,
		OpeningHours: req.OpeningHours,
		IsMainOffice: req.IsMainOffice,
		IsActive:     req.IsActive,
		Order:        req.Order,
	}
}

// AdminListArticles shows drafts too unless is_published narrows it.
func (s *Server) AdminListArticles(w http.ResponseWriter, r *http.Request) {
	params := newQueryReader(r.URL.Query())
	opts := services.ArticleListOptions{
		CategorySlug: params.stringParam("category", 80),
		IsFeatured:   params.boolParam("is_featured"),
		IsPublished:  params.boolParam("is_published"),
		AnyState:     true,
		Pagination:   params.pagination(),
	}
	if err := params.err(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.writeArticleList(w, r, opts)
}

func (s *Server) AdminGetArticle(w http.ResponseWriter, r *http.Request) {
	var article services.ArticleWithCategory
	err := s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		article, err = services.GetArticleByID(r.Context(), q, chi.URLParam(r, "articleId"))
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, articleDTO(article))
}

func (s *Server) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req ArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	var article services.ArticleWithCategory
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		article, err = services.CreateArticle(r.Context(), tx, req.input())
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.Sitemap.Invalidate(r.Context())
	WriteJSON(w, http.StatusCreated, articleDTO(article))
}

func (s *Server) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var req ArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.Slug != nil {
		writeServiceError(w, r, services.ErrValidation(map[string]string{"slug": "slug cannot be changed"}))
		return
	}
	var article services.ArticleWithCategory
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		article, err = services.UpdateArticle(r.Context(), tx, chi.URLParam(r, "articleId"), req.input())
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.Sitemap.Invalidate(r.Context())
	WriteJSON(w, http.StatusOK, articleDTO(article))
}

func (s *Server) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		return services.DeleteArticle(r.Context(), tx, chi.URLParam(r, "articleId"))
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.Sitemap.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListArticleCategories(w http.ResponseWriter, r *http.Request) {
	var categories []models.ArticleCategory
	err := s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		categories, err = services.ListArticleCategories(r.Context(), q)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]ArticleCategoryDTO, 0, len(categories))
	for _, c := range categories {
		items = append(items, articleCategoryDTO(c))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) CreateArticleCategory(w http.ResponseWriter, r *http.Request) {
	var req ArticleCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	var category models.ArticleCategory
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		category, err = services.CreateArticleCategory(r.Context(), tx, services.ArticleCategoryInput{
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
		})
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, articleCategoryDTO(category))
}

func (s *Server) DeleteArticleCategory(w http.ResponseWriter, r *http.Request) {
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		return services.DeleteArticleCategory(r.Context(), tx, chi.URLParam(r, "categoryId"))
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListCompanyCategories(w http.ResponseWriter, r *http.Request) {
	var categories []models.CompanyCategory
	err := s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		categories, err = services.ListCompanyCategories(r.Context(), q)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]CompanyCategoryDTO, 0, len(categories))
	for _, c := range categories {
		items = append(items, companyCategoryDTO(c))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) CreateCompanyCategory(w http.ResponseWriter, r *http.Request) {
	var req CompanyCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	var category models.CompanyCategory
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		category, err = services.CreateCompanyCategory(r.Context(), tx, services.CompanyCategoryInput{
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
			Color:       req.Color,
		})
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, companyCategoryDTO(category))
}

func (s *Server) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	var company services.CompanyDetail
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		company, err = services.CreateCompany(r.Context(), tx, req.input())
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.Sitemap.Invalidate(r.Context())
	WriteJSON(w, http.StatusCreated, companyDTO(company))
}

func (s *Server) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req CompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.Slug != nil {
		writeServiceError(w, r, services.ErrValidation(map[string]string{"slug": "slug cannot be changed"}))
		return
	}
	var company services.CompanyDetail
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		company, err = services.UpdateCompany(r.Context(), tx, chi.URLParam(r, "companyId"), req.input())
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.Sitemap.Invalidate(r.Context())
	WriteJSON(w, http.StatusOK, companyDTO(company))
}

func (s *Server) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		return services.DeleteCompany(r.Context(), tx, chi.URLParam(r, "companyId"))
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.Sitemap.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	var location models.Location
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		location, err = services.CreateLocation(r.Context(), tx, req.input())
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, locationDTO(location))
}

func (s *Server) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	var location models.Location
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		location, err = services.UpdateLocation(r.Context(), tx, chi.URLParam(r, "locationId"), req.input())
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, locationDTO(location))
}

func (s *Server) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		return services.DeleteLocation(r.Context(), tx, chi.URLParam(r, "locationId"))
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
