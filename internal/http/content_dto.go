package httpapi

import (
	"time"

	"kaizen-backend-go/internal/models"
	"kaizen-backend-go/internal/services"
)

type ArticleCategoryDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
}

type ArticleDTO struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Slug           string              `json:"slug"`
	Excerpt        *string             `json:"excerpt"`
	Content        string              `json:"content"`
	CoverImageURL  *string             `json:"cover_image_url"`
	SocialImageURL *string             `json:"social_image_url"`
	PublishedAt    *string             `json:"published_at"`
	IsFeatured     bool                `json:"is_featured"`
	IsPublished    bool                `json:"is_published"`
	ReadingTime    int                 `json:"reading_time"`
	SeoTitle       *string             `json:"seo_title"`
	SeoDescription *string             `json:"seo_description"`
	MetaKeywords   *string             `json:"meta_keywords"`
	CategoryID     *string             `json:"category_id"`
	Category       *ArticleCategoryDTO `json:"category"`
	CreatedAt      string              `json:"created_at"`
	UpdatedAt      *string             `json:"updated_at"`
}

type CompanyCategoryDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
}

type CompanyFeatureDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Icon        *string `json:"icon"`
	Order       int     `json:"order"`
}

type CompanyDTO struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Slug             string              `json:"slug"`
	Tagline          *string             `json:"tagline"`
	Description      *string             `json:"description"`
	LogoURL          *string             `json:"logo_url"`
	FeaturedImageURL *string             `json:"featured_image_url"`
	CategoryID       string              `json:"category_id"`
	Category         *CompanyCategoryDTO `json:"category"`
	WebsiteURL       *string             `json:"website_url"`
	ContactEmail     *string             `json:"contact_email"`
	Phone            *string             `json:"phone"`
	IsActive         bool                `json:"is_active"`
	Order            int                 `json:"order"`
	MetaDescription  *string             `json:"meta_description"`
	FoundedDate      *string             `json:"founded_date"`
	Features         []CompanyFeatureDTO `json:"features"`
	CreatedAt        string              `json:"created_at"`
	UpdatedAt        *string             `json:"updated_at"`
}

type LocationDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Address      string   `json:"address"`
	PostalCode   *string  `json:"postal_code"`
	Country      string   `json:"country"`
	Phone        *string  `json:"phone"`
	Email        *string  `json:"email"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	MapsURL      *string  `json:"maps_url"`
	PlaceID      *string  `json:"place_id"`
	OpeningHours *string  `json:"opening_hours"`
	IsMainOffice bool     `json:"is_main_office"`
	IsActive     bool     `json:"is_active"`
	Order        int      `json:"order"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    *string  `json:"updated_at"`
}

// PageResponse is the envelope for paginated lists.
type PageResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := formatTime(*t)
	return &formatted
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format("2006-01-02")
	return &formatted
}

func articleCategoryDTO(c models.ArticleCategory) ArticleCategoryDTO {
	return ArticleCategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTimePtr(c.UpdatedAt),
	}
}

func articleDTO(a services.ArticleWithCategory) ArticleDTO {
	dto := ArticleDTO{
		ID:             a.ID,
		Title:          a.Title,
		Slug:           a.Slug,
		Excerpt:        a.Excerpt,
		Content:        a.Content,
		CoverImageURL:  a.CoverImageURL,
		SocialImageURL: a.SocialImageURL,
		PublishedAt:    formatTimePtr(a.PublishedAt),
		IsFeatured:     a.IsFeatured,
		IsPublished:    a.IsPublished,
		ReadingTime:    a.ReadingTime,
		SeoTitle:       a.SeoTitle,
		SeoDescription: a.SeoDescription,
		MetaKeywords:   a.MetaKeywords,
		CategoryID:     a.CategoryID,
		CreatedAt:      formatTime(a.CreatedAt),
		UpdatedAt:      formatTimePtr(a.UpdatedAt),
	}
	if a.Category != nil {
		category := articleCategoryDTO(*a.Category)
		dto.Category = &category
	}
	return dto
}

func companyCategoryDTO(c models.CompanyCategory) CompanyCategoryDTO {
	return CompanyCategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Color:       c.Color,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTimePtr(c.UpdatedAt),
	}
}

func companyDTO(c services.CompanyDetail) CompanyDTO {
	features := make([]CompanyFeatureDTO, 0, len(c.Features))
	for _, f := range c.Features {
		features = append(features, CompanyFeatureDTO{
			ID:          f.ID,
			Title:       f.Title,
			Description: f.Description,
			Icon:        f.Icon,
			Order:       f.Order,
		})
	}
	dto := CompanyDTO{
		ID:               c.ID,
		Name:             c.Name,
		Slug:             c.Slug,
		Tagline:          c.Tagline,
		Description:      c.Description,
		LogoURL:          c.LogoURL,
		FeaturedImageURL: c.FeaturedImageURL,
		CategoryID:       c.CategoryID,
		WebsiteURL:       c.WebsiteURL,
		ContactEmail:     c.ContactEmail,
		Phone:            c.Phone,
		IsActive:         c.IsActive,
		Order:            c.Order,
		MetaDescription:  c.MetaDescription,
		FoundedDate:      formatDatePtr(c.FoundedDate),
		Features:         features,
		CreatedAt:        formatTime(c.CreatedAt),
		UpdatedAt:        formatTimePtr(c.UpdatedAt),
	}
	if c.Category != nil {
		category := companyCategoryDTO(*c.Category)
		dto.Category = &category
	}
	return dto
}

func locationDTO(l models.Location) LocationDTO {
	return LocationDTO{
		ID:           l.ID,
		Name:         l.Name,
		City:         l.City,
		State:        l.State,
		Address:      l.Address,
		PostalCode:   l.PostalCode,
		Country:      l.Country,
		Phone:        l.Phone,
		Email:        l.Email,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		MapsURL:      l.MapsURL,
		PlaceID:      l.PlaceID,
		OpeningHours: l.OpeningHours,
		IsMainOffice: l.IsMainOffice,
		IsActive:     l.IsActive,
		Order:        l.Order,
		CreatedAt:    formatTime(l.CreatedAt),
		UpdatedAt:    formatTimePtr(l.UpdatedAt),
	}
}
