package services

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/migrations"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB connects to DATABASE_URL and migrates a throwaway schema that is
// dropped when the test finishes. The test is skipped when no database is
// configured or reachable.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("skipping integration test: DATABASE_URL not set")
	}
	opts := db.PoolOptions{Size: 2, Overflow: 2, Timeout: 5 * time.Second}
	admin, err := db.Open(dsn, opts)
	if err != nil {
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	schema := "kaizen_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.Exec(`CREATE SCHEMA ` + schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(`DROP SCHEMA ` + schema + ` CASCADE`)
		_ = admin.Close()
	})

	database, err := db.Open(withSearchPath(dsn, schema), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Apply(database.DB))
	return database
}

// withSearchPath pins every pooled connection to schema. pgx forwards unknown
// connection-string parameters as runtime settings.
func withSearchPath(dsn, schema string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "search_path=" + schema
	}
	return dsn + " search_path=" + schema
}

func seedArticle(t *testing.T, q *sqlx.DB, id, slug string, publishedAt *time.Time, createdAt time.Time, published bool) {
	t.Helper()
	_, err := q.Exec(`
INSERT INTO articles (id, title, slug, content, published_at, is_published, created_at)
VALUES ($1,$2,$3,'<p>corpo</p>',$4,$5,$6)
`, id, slug, slug, publishedAt, published, createdAt)
	require.NoError(t, err)
}

func day(d int) *time.Time {
	v := time.Date(2025, 5, d, 12, 0, 0, 0, time.UTC)
	return &v
}

func TestIntegrationArticlePagesFollowTotalOrder(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	// Two rows share published_at and created_at, so only id separates them.
	seedArticle(t, database, "00000000-0000-4000-8000-000000000001", "mais-recente", day(3), *day(3), true)
	seedArticle(t, database, "00000000-0000-4000-8000-000000000003", "empate-b", day(2), *day(2), true)
	seedArticle(t, database, "00000000-0000-4000-8000-000000000002", "empate-a", day(2), *day(2), true)
	seedArticle(t, database, "00000000-0000-4000-8000-000000000004", "antigo", day(1), *day(20), true)
	seedArticle(t, database, "00000000-0000-4000-8000-000000000005", "sem-data-novo", nil, *day(25), true)
	seedArticle(t, database, "00000000-0000-4000-8000-000000000006", "sem-data-velho", nil, *day(22), true)
	seedArticle(t, database, "00000000-0000-4000-8000-000000000007", "rascunho", day(10), *day(10), false)

	want := []string{"mais-recente", "empate-a", "empate-b", "antigo", "sem-data-novo", "sem-data-velho"}

	var got []string
	seen := map[string]bool{}
	for page := 1; page <= 4; page++ {
		list, err := ListArticles(ctx, database, ArticleListOptions{Pagination: Pagination{Page: page, Limit: 2}})
		require.NoError(t, err)
		assert.Equal(t, 6, list.Total)
		assert.Equal(t, 3, list.Pages)
		assert.LessOrEqual(t, len(list.Items), 2)
		for _, item := range list.Items {
			assert.False(t, seen[item.ID], "article %s repeated across pages", item.Slug)
			seen[item.ID] = true
			got = append(got, item.Slug)
		}
	}
	assert.Equal(t, want, got)

	_, err := GetPublishedArticle(ctx, database, "rascunho")
	assert.Equal(t, "article not found", AsServiceError(err).Message)
}

func TestIntegrationDefaultFixtureIsIdempotent(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	file, err := os.Open("../../fixtures/default.yaml")
	require.NoError(t, err)
	defer file.Close()
	fixture, err := DecodeFixture(file)
	require.NoError(t, err)

	features := 0
	for _, c := range fixture.Companies {
		features += len(c.Features)
	}

	count := func(table string) int {
		var n int
		require.NoError(t, database.Get(&n, `SELECT count(*) FROM `+table))
		return n
	}

	for run := 0; run < 2; run++ {
		store := db.NewStore(database, 5*time.Second)
		err := store.Tx(ctx, func(tx *sqlx.Tx) error {
			_, err := LoadFixture(ctx, tx, fixture)
			return err
		})
		require.NoError(t, err, "run %d", run+1)

		assert.Equal(t, len(fixture.ArticleCategories), count("article_categories"))
		assert.Equal(t, len(fixture.CompanyCategories), count("company_categories"))
		assert.Equal(t, len(fixture.Companies), count("companies"))
		assert.Equal(t, features, count("company_features"))
		assert.Equal(t, len(fixture.Locations), count("locations"))
	}

	locations, err := ListLocations(ctx, database, LocationListOptions{})
	require.NoError(t, err)
	cities := make([]string, 0, len(locations))
	for _, l := range locations {
		cities = append(cities, l.City)
	}
	assert.Equal(t, []string{"Porto Alegre", "Curitiba", "São Paulo"}, cities)
	assert.True(t, locations[0].IsMainOffice)
}

func TestIntegrationSitemapAndDeleteRules(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()

	published := day(1)
	category := "marketing"
	fixture := Fixture{
		ArticleCategories: []CategoryFixture{{Name: "Marketing", Slug: category}},
		CompanyCategories: []CategoryFixture{{Name: "Grupo", Slug: "grupo"}},
		Companies: []CompanyFixture{
			{Name: "Kaizen", Slug: "kaizen", Category: "grupo", Order: 1, Features: []FeatureFixture{
				{Title: "Google Partner", Description: "Premier", Order: 1},
				{Title: "Clientes", Description: "Mais de mil", Order: 2},
			}},
			{Name: "Leadspot", Slug: "leadspot", Category: "grupo", Order: 2},
			{Name: "Arquivada", Slug: "arquivada", Category: "grupo", Order: 3, IsActive: BoolPtr(false)},
		},
		Articles: []ArticleFixture{
			{Title: "Primeiro", Slug: "primeiro", Category: &category, Content: "x", PublishedAt: day(3)},
			{Title: "Segundo", Slug: "segundo", Category: &category, Content: "x", PublishedAt: day(2)},
			{Title: "Terceiro", Slug: "terceiro", Content: "x", PublishedAt: published},
			{Title: "Rascunho", Slug: "rascunho", Content: "x", IsPublished: BoolPtr(false)},
		},
	}
	_, err := LoadFixture(ctx, database, fixture)
	require.NoError(t, err)

	pages := []string{"/", "/nossas-empresas", "/blog", "/onde-estamos", "/contato"}
	data, err := LoadSitemapData(ctx, database, pages)
	require.NoError(t, err)
	assert.Equal(t, []string{"kaizen", "leadspot"}, data.Companies)
	assert.Equal(t, []string{"primeiro", "segundo", "terceiro"}, data.Articles)
	assert.Equal(t, pages, data.StaticPages)

	company, err := GetActiveCompany(ctx, database, "kaizen")
	require.NoError(t, err)
	require.Len(t, company.Features, 2)
	require.NoError(t, DeleteCompany(ctx, database, company.ID))
	var orphans int
	require.NoError(t, database.Get(&orphans, `SELECT count(*) FROM company_features WHERE company_id = $1`, company.ID))
	assert.Zero(t, orphans)

	var categoryID string
	require.NoError(t, database.Get(&categoryID, `SELECT id FROM article_categories WHERE slug = $1`, category))
	require.NoError(t, DeleteArticleCategory(ctx, database, categoryID))
	article, err := GetPublishedArticle(ctx, database, "primeiro")
	require.NoError(t, err)
	assert.Nil(t, article.CategoryID)
	assert.Nil(t, article.Category)
}
