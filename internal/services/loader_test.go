package services

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"kaizen-backend-go/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDefaultFixture(t *testing.T) {
	file, err := os.Open("../../fixtures/default.yaml")
	require.NoError(t, err)
	defer file.Close()

	fixture, err := DecodeFixture(file)
	require.NoError(t, err)
	assert.Len(t, fixture.ArticleCategories, 3)
	assert.Len(t, fixture.CompanyCategories, 3)
	assert.Len(t, fixture.Companies, 4)
	assert.Empty(t, fixture.Articles)
	require.Len(t, fixture.Locations, 3)

	mainOffices := 0
	for _, l := range fixture.Locations {
		if l.IsMainOffice {
			mainOffices++
			assert.Equal(t, "Porto Alegre", l.City)
		}
	}
	assert.Equal(t, 1, mainOffices)

	categories := map[string]bool{}
	for _, c := range fixture.CompanyCategories {
		categories[c.Slug] = true
	}
	for _, c := range fixture.Companies {
		assert.True(t, categories[c.Category], "company %s references %s", c.Slug, c.Category)
		assert.True(t, IsSlug(c.Slug), c.Slug)
	}
}

func TestDecodeFixtureRejectsUnknownKeys(t *testing.T) {
	_, err := DecodeFixture(strings.NewReader("companies:\n  - name: X\n    colour: red\n"))
	assert.Error(t, err)
}

func TestLoadFixture(t *testing.T) {
	q, mock := newMockQueryer(t)
	fixture := Fixture{
		CompanyCategories: []CategoryFixture{{Name: "Tecnologia"}},
		Companies: []CompanyFixture{{
			Name:        "Kaizen Tech",
			Category:    "tecnologia",
			Order:       5,
			FoundedDate: strPtr("2019-04-01"),
			Features:    []FeatureFixture{{Title: "Automação", Description: "Fluxos sob medida", Order: 1}},
		}},
		Locations: []LocationFixture{{City: "Curitiba", State: "PR", Address: "Rua Comendador Araújo, 499"}},
	}

	mock.ExpectQuery(`INSERT INTO company_categories .* ON CONFLICT \(slug\) DO UPDATE .* RETURNING id`).
		WithArgs(sqlmock.AnyArg(), "Tecnologia", "tecnologia", nil, DefaultCompanyColor, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cat-1"))
	mock.ExpectQuery(`INSERT INTO companies .* ON CONFLICT \(slug\) DO UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("company-1"))
	mock.ExpectExec(`DELETE FROM company_features WHERE company_id = \$1`).
		WithArgs("company-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO company_features`).
		WithArgs(sqlmock.AnyArg(), "company-1", "Automação", "Fluxos sob medida", nil, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id FROM locations WHERE city = \$1 AND state = \$2`).
		WithArgs("Curitiba", "PR").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`INSERT INTO locations`).WillReturnResult(sqlmock.NewResult(0, 1))

	report, err := LoadFixture(context.Background(), q, fixture)
	require.NoError(t, err)
	assert.Equal(t, LoadReport{CompanyCategories: 1, Companies: 1, Features: 1, Locations: 1}, report)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadFixtureUnknownCompanyCategory(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectQuery(`SELECT id FROM company_categories WHERE slug = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := LoadFixture(context.Background(), q, Fixture{Companies: []CompanyFixture{{Name: "Orphan", Category: "nope"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown category "nope"`)
}

func TestEnsureAdminCreatesMissingUser(t *testing.T) {
	q, mock := newMockQueryer(t)
	tokens := newTestTokens(t, time.Now())
	mock.ExpectQuery(`FROM users WHERE username = \$1 OR email = \$1`).WithArgs("root").WillReturnRows(sqlmock.NewRows(userRowColumns))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE username = \$1 OR email = \$2\)`).
		WithArgs("root", "root@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := EnsureAdmin(context.Background(), q, tokens, "root", "root@example.com", "pw-123456", true)
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAdminRefreshesExistingUser(t *testing.T) {
	q, mock := newMockQueryer(t)
	tokens := newTestTokens(t, time.Now())
	existing := models.User{ID: testUserID, Username: "root", Email: "root@example.com", HashedPassword: "old", CreatedAt: testTime}
	mock.ExpectQuery(`FROM users WHERE username = \$1 OR email = \$1`).WithArgs("root").WillReturnRows(userRows(existing))
	mock.ExpectExec(`UPDATE users SET email = \$2`).WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := EnsureAdmin(context.Background(), q, tokens, "root", "root@example.com", "pw-123456", false)
	require.NoError(t, err)
	assert.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}
