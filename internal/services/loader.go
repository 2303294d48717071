package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"kaizen-backend-go/internal/db"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Fixture is the document consumed by the data loader.
type Fixture struct {
	ArticleCategories []CategoryFixture `yaml:"article_categories"`
	CompanyCategories []CategoryFixture `yaml:"company_categories"`
	Companies         []CompanyFixture  `yaml:"companies"`
	Articles          []ArticleFixture  `yaml:"articles"`
	Locations         []LocationFixture `yaml:"locations"`
}

type CategoryFixture struct {
	Name        string  `yaml:"name"`
	Slug        string  `yaml:"slug"`
	Description *string `yaml:"description"`
	Color       *string `yaml:"color"`
}

type FeatureFixture struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Icon        *string `yaml:"icon"`
	Order       int     `yaml:"order"`
}

type CompanyFixture struct {
	Name             string           `yaml:"name"`
	Slug             string           `yaml:"slug"`
	Category         string           `yaml:"category"`
	Tagline          *string          `yaml:"tagline"`
	Description      *string          `yaml:"description"`
	LogoURL          *string          `yaml:"logo_url"`
	FeaturedImageURL *string          `yaml:"featured_image_url"`
	WebsiteURL       *string          `yaml:"website_url"`
	ContactEmail     *string          `yaml:"contact_email"`
	Phone            *string          `yaml:"phone"`
	IsActive         *bool            `yaml:"is_active"`
	Order            int              `yaml:"order"`
	MetaDescription  *string          `yaml:"meta_description"`
	FoundedDate      *string          `yaml:"founded_date"`
	Features         []FeatureFixture `yaml:"features"`
}

type ArticleFixture struct {
	Title       string     `yaml:"title"`
	Slug        string     `yaml:"slug"`
	Category    *string    `yaml:"category"`
	Excerpt     *string    `yaml:"excerpt"`
	Content     string     `yaml:"content"`
	PublishedAt *time.Time `yaml:"published_at"`
	IsFeatured  bool       `yaml:"is_featured"`
	IsPublished *bool      `yaml:"is_published"`
	ReadingTime int        `yaml:"reading_time"`
}

type LocationFixture struct {
	Name         *string  `yaml:"name"`
	City         string   `yaml:"city"`
	State        string   `yaml:"state"`
	Address      string   `yaml:"address"`
	PostalCode   *string  `yaml:"postal_code"`
	Country      *string  `yaml:"country"`
	Phone        *string  `yaml:"phone"`
	Email        *string  `yaml:"email"`
	Latitude     *float64 `yaml:"latitude"`
	Longitude    *float64 `yaml:"longitude"`
	MapsURL      *string  `yaml:"maps_url"`
	PlaceID      *string  `yaml:"place_id"`
	OpeningHours *string  `yaml:"opening_hours"`
	IsMainOffice bool     `yaml:"is_main_office"`
	IsActive     *bool    `yaml:"is_active"`
	Order        int      `yaml:"order"`
}

// LoadReport counts the rows touched by one loader run.
type LoadReport struct {
	ArticleCategories int
	CompanyCategories int
	Companies         int
	Features          int
	Articles          int
	Locations         int
}

func DecodeFixture(r io.Reader) (Fixture, error) {
	var fixture Fixture
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixture); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return fixture, nil
}

// LoadFixture upserts every fixture record. Rows are matched by slug, and
// locations by (city, state), so running it twice is a no-op apart from
// updated_at. Callers run it inside one transaction.
func LoadFixture(ctx context.Context, q db.Queryer, fixture Fixture) (LoadReport, error) {
	var report LoadReport
	now := time.Now().UTC()

	articleCategoryIDs := map[string]string{}
	for _, c := range fixture.ArticleCategories {
		slug := fixtureSlug(c.Slug, c.Name)
		var id string
		err := q.GetContext(ctx, &id, `
INSERT INTO article_categories (id, name, slug, description, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, updated_at = $5
RETURNING id
`, uuid.NewString(), c.Name, slug, c.Description, now)
		if err != nil {
			return report, WrapError(db.Classify(err), "article category "+slug)
		}
		articleCategoryIDs[slug] = id
		report.ArticleCategories++
	}

	companyCategoryIDs := map[string]string{}
	for _, c := range fixture.CompanyCategories {
		slug := fixtureSlug(c.Slug, c.Name)
		color := DefaultCompanyColor
		if c.Color != nil && *c.Color != "" {
			color = *c.Color
		}
		var id string
		err := q.GetContext(ctx, &id, `
INSERT INTO company_categories (id, name, slug, description, color, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, color = EXCLUDED.color, updated_at = $6
RETURNING id
`, uuid.NewString(), c.Name, slug, c.Description, color, now)
		if err != nil {
			return report, WrapError(db.Classify(err), "company category "+slug)
		}
		companyCategoryIDs[slug] = id
		report.CompanyCategories++
	}

	for _, c := range fixture.Companies {
		slug := fixtureSlug(c.Slug, c.Name)
		categoryID, ok := companyCategoryIDs[c.Category]
		if !ok {
			if err := q.GetContext(ctx, &categoryID, `SELECT id FROM company_categories WHERE slug = $1`, c.Category); err != nil {
				if db.IsNoRows(err) {
					return report, fmt.Errorf("company %s: unknown category %q", slug, c.Category)
				}
				return report, db.Classify(err)
			}
		}
		var founded *time.Time
		if c.FoundedDate != nil {
			parsed, err := time.Parse("2006-01-02", *c.FoundedDate)
			if err != nil {
				return report, fmt.Errorf("company %s: founded_date: %w", slug, err)
			}
			founded = &parsed
		}
		active := true
		if c.IsActive != nil {
			active = *c.IsActive
		}
		var id string
		err := q.GetContext(ctx, &id, `
INSERT INTO companies (
  id, name, slug, tagline, description, logo_url, featured_image_url, category_id,
  website_url, contact_email, phone, is_active, "order", meta_description, founded_date, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (slug) DO UPDATE SET
  name = EXCLUDED.name, tagline = EXCLUDED.tagline, description = EXCLUDED.description,
  logo_url = EXCLUDED.logo_url, featured_image_url = EXCLUDED.featured_image_url,
  category_id = EXCLUDED.category_id, website_url = EXCLUDED.website_url,
  contact_email = EXCLUDED.contact_email, phone = EXCLUDED.phone, is_active = EXCLUDED.is_active,
  "order" = EXCLUDED."order", meta_description = EXCLUDED.meta_description,
  founded_date = EXCLUDED.founded_date, updated_at = $16
RETURNING id
`, uuid.NewString(), c.Name, slug, c.Tagline, c.Description, c.LogoURL, c.FeaturedImageURL, categoryID,
			c.WebsiteURL, c.ContactEmail, c.Phone, active, c.Order, c.MetaDescription, founded, now)
		if err != nil {
			return report, WrapError(db.Classify(err), "company "+slug)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM company_features WHERE company_id = $1`, id); err != nil {
			return report, db.Classify(err)
		}
		features := make([]FeatureInput, 0, len(c.Features))
		for _, f := range c.Features {
			features = append(features, FeatureInput{Title: f.Title, Description: f.Description, Icon: f.Icon, Order: f.Order})
		}
		if err := replaceFeatures(ctx, q, id, features); err != nil {
			return report, err
		}
		report.Companies++
		report.Features += len(features)
	}

	for _, a := range fixture.Articles {
		slug := fixtureSlug(a.Slug, a.Title)
		var categoryID *string
		if a.Category != nil {
			id, ok := articleCategoryIDs[*a.Category]
			if !ok {
				if err := q.GetContext(ctx, &id, `SELECT id FROM article_categories WHERE slug = $1`, *a.Category); err != nil {
					if db.IsNoRows(err) {
						return report, fmt.Errorf("article %s: unknown category %q", slug, *a.Category)
					}
					return report, db.Classify(err)
				}
			}
			categoryID = &id
		}
		published := true
		if a.IsPublished != nil {
			published = *a.IsPublished
		}
		readingTime := a.ReadingTime
		if readingTime < 1 {
			readingTime = DefaultReadingTime
		}
		_, err := q.ExecContext(ctx, `
INSERT INTO articles (id, title, slug, excerpt, content, published_at, is_featured, is_published, reading_time, category_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (slug) DO UPDATE SET
  title = EXCLUDED.title, excerpt = EXCLUDED.excerpt, content = EXCLUDED.content,
  published_at = EXCLUDED.published_at, is_featured = EXCLUDED.is_featured,
  is_published = EXCLUDED.is_published, reading_time = EXCLUDED.reading_time,
  category_id = EXCLUDED.category_id, updated_at = $11
`, uuid.NewString(), a.Title, slug, a.Excerpt, a.Content, a.PublishedAt, a.IsFeatured, published, readingTime, categoryID, now)
		if err != nil {
			return report, WrapError(db.Classify(err), "article "+slug)
		}
		report.Articles++
	}

	for _, l := range fixture.Locations {
		if err := upsertLocation(ctx, q, l); err != nil {
			return report, err
		}
		report.Locations++
	}
	return report, nil
}

func upsertLocation(ctx context.Context, q db.Queryer, l LocationFixture) error {
	state := l.State
	if state == "" {
		state = DefaultLocationState
	}
	input := LocationInput{
		Name:         l.Name,
		City:         &l.City,
		State:        &state,
		Address:      &l.Address,
		PostalCode:   l.PostalCode,
		Country:      l.Country,
		Phone:        l.Phone,
		Email:        l.Email,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		MapsURL:      l.MapsURL,
		PlaceID:      l.PlaceID,
		OpeningHours: l.OpeningHours,
		IsMainOffice: &l.IsMainOffice,
		IsActive:     l.IsActive,
		Order:        &l.Order,
	}
	var id string
	err := q.GetContext(ctx, &id, `SELECT id FROM locations WHERE city = $1 AND state = $2 ORDER BY created_at ASC LIMIT 1`, l.City, state)
	switch {
	case db.IsNoRows(err):
		_, err = CreateLocation(ctx, q, input)
		return err
	case err != nil:
		return db.Classify(err)
	}
	_, err = UpdateLocation(ctx, q, id, input)
	return err
}

// EnsureAdmin creates the named admin or refreshes its password and flags.
func EnsureAdmin(ctx context.Context, q db.Queryer, tokens TokenService, username, email, password string, superuser bool) (bool, error) {
	hashed, err := tokens.HashPassword(password)
	if err != nil {
		return false, err
	}
	user, err := FindUserByLogin(ctx, q, username)
	if err != nil {
		return false, err
	}
	if user == nil {
		_, err = CreateUser(ctx, q, NewUser{
			Email:          email,
			Username:       username,
			HashedPassword: hashed,
			IsAdmin:        true,
			IsSuperuser:    superuser,
		})
		return err == nil, err
	}
	active, admin := true, true
	err = UpdateUser(ctx, q, user, UserChanges{HashedPassword: &hashed, IsActive: &active, IsAdmin: &admin})
	if err != nil {
		return false, err
	}
	if superuser && !user.IsSuperuser {
		_, err = q.ExecContext(ctx, `UPDATE users SET is_superuser = TRUE WHERE id = $1`, user.ID)
		return false, db.Classify(err)
	}
	return false, nil
}

func fixtureSlug(slug, name string) string {
	if slug != "" {
		return slug
	}
	return Slugify(name)
}
