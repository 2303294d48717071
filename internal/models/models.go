package models

import "time"

type ArticleCategory struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	Slug        string     `db:"slug"`
	Description *string    `db:"description"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

type Article struct {
	ID             string     `db:"id"`
	Title          string     `db:"title"`
	Slug           string     `db:"slug"`
	Excerpt        *string    `db:"excerpt"`
	Content        string     `db:"content"`
	CoverImageURL  *string    `db:"cover_image_url"`
	SocialImageURL *string    `db:"social_image_url"`
	PublishedAt    *time.Time `db:"published_at"`
	IsFeatured     bool       `db:"is_featured"`
	IsPublished    bool       `db:"is_published"`
	ReadingTime    int        `db:"reading_time"`
	SeoTitle       *string    `db:"seo_title"`
	SeoDescription *string    `db:"seo_description"`
	MetaKeywords   *string    `db:"meta_keywords"`
	CategoryID     *string    `db:"category_id"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at"`
}

type CompanyCategory struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	Slug        string     `db:"slug"`
	Description *string    `db:"description"`
	Color       string     `db:"color"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

type Company struct {
	ID               string     `db:"id"`
	Name             string     `db:"name"`
	Slug             string     `db:"slug"`
	Tagline          *string    `db:"tagline"`
	Description      *string    `db:"description"`
	LogoURL          *string    `db:"logo_url"`
	FeaturedImageURL *string    `db:"featured_image_url"`
	CategoryID       string     `db:"category_id"`
	WebsiteURL       *string    `db:"website_url"`
	ContactEmail     *string    `db:"contact_email"`
	Phone            *string    `db:"phone"`
	IsActive         bool       `db:"is_active"`
	Order            int        `db:"order"`
	MetaDescription  *string    `db:"meta_description"`
	FoundedDate      *time.Time `db:"founded_date"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at"`
}

// CompanyFeature rows are owned by a Company and deleted with it.
type CompanyFeature struct {
	ID          string     `db:"id"`
	CompanyID   string     `db:"company_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Icon        *string    `db:"icon"`
	Order       int        `db:"order"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

type Location struct {
	ID           string     `db:"id"`
	Name         string     `db:"name"`
	City         string     `db:"city"`
	State        string     `db:"state"`
	Address      string     `db:"address"`
	PostalCode   *string    `db:"postal_code"`
	Country      string     `db:"country"`
	Phone        *string    `db:"phone"`
	Email        *string    `db:"email"`
	Latitude     *float64   `db:"latitude"`
	Longitude    *float64   `db:"longitude"`
	MapsURL      *string    `db:"maps_url"`
	PlaceID      *string    `db:"place_id"`
	OpeningHours *string    `db:"opening_hours"`
	IsMainOffice bool       `db:"is_main_office"`
	IsActive     bool       `db:"is_active"`
	Order        int        `db:"order"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

type User struct {
	ID             string     `db:"id"`
	Email          string     `db:"email"`
	Username       string     `db:"username"`
	HashedPassword string     `db:"hashed_password"`
	FullName       *string    `db:"full_name"`
	IsActive       bool       `db:"is_active"`
	IsAdmin        bool       `db:"is_admin"`
	IsSuperuser    bool       `db:"is_superuser"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at"`
	LastLogin      *time.Time `db:"last_login"`
}
