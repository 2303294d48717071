package services

import (
	"database/sql/driver"
	"testing"
	"time"

	"kaizen-backend-go/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func newMockQueryer(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "pgx"), mock
}

var userRowColumns = []string{"id", "email", "username", "hashed_password", "full_name", "is_active", "is_admin", "is_superuser", "created_at", "updated_at", "last_login"}

func userRows(users ...models.User) *sqlmock.Rows {
	rows := sqlmock.NewRows(userRowColumns)
	for _, u := range users {
		rows.AddRow(u.ID, u.Email, u.Username, u.HashedPassword, nullable(u.FullName), u.IsActive, u.IsAdmin, u.IsSuperuser, u.CreatedAt, nullable(u.UpdatedAt), nullable(u.LastLogin))
	}
	return rows
}

var articleRowColumns = []string{"id", "title", "slug", "excerpt", "content", "cover_image_url", "social_image_url", "published_at",
	"is_featured", "is_published", "reading_time", "seo_title", "seo_description", "meta_keywords",
	"category_id", "created_at", "updated_at"}

func articleRows(articles ...models.Article) *sqlmock.Rows {
	rows := sqlmock.NewRows(articleRowColumns)
	for _, a := range articles {
		rows.AddRow(a.ID, a.Title, a.Slug, nullable(a.Excerpt), a.Content, nullable(a.CoverImageURL), nullable(a.SocialImageURL), nullable(a.PublishedAt),
			a.IsFeatured, a.IsPublished, a.ReadingTime, nullable(a.SeoTitle), nullable(a.SeoDescription), nullable(a.MetaKeywords),
			nullable(a.CategoryID), a.CreatedAt, nullable(a.UpdatedAt))
	}
	return rows
}

var locationRowColumns = []string{"id", "name", "city", "state", "address", "postal_code", "country", "phone", "email",
	"latitude", "longitude", "maps_url", "place_id", "opening_hours", "is_main_office", "is_active", "order",
	"created_at", "updated_at"}

func locationRows(locations ...models.Location) *sqlmock.Rows {
	rows := sqlmock.NewRows(locationRowColumns)
	for _, l := range locations {
		rows.AddRow(l.ID, l.Name, l.City, l.State, l.Address, nullable(l.PostalCode), l.Country, nullable(l.Phone), nullable(l.Email),
			nullable(l.Latitude), nullable(l.Longitude), nullable(l.MapsURL), nullable(l.PlaceID), nullable(l.OpeningHours), l.IsMainOffice, l.IsActive, l.Order,
			l.CreatedAt, nullable(l.UpdatedAt))
	}
	return rows
}

// nullable unwraps a model pointer into the driver value sqlmock hands back.
func nullable[T any](p *T) driver.Value {
	if p == nil {
		return nil
	}
	return *p
}

func strPtr(v string) *string {
	return &v
}
