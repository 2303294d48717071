package services

import (
	"context"
	"net/http"
	"testing"

	"kaizen-backend-go/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListArticlesEmptyCorpus(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM articles WHERE is_published = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM articles WHERE is_published = \$1 ORDER BY published_at DESC NULLS LAST, created_at DESC, id ASC LIMIT \$2 OFFSET \$3`).
		WithArgs(true, 20, 0).
		WillReturnRows(sqlmock.NewRows(articleRowColumns))

	list, err := ListArticles(context.Background(), q, ArticleListOptions{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.NotNil(t, list.Items)
	assert.Equal(t, 0, list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.Limit)
	assert.Equal(t, 0, list.Pages)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListArticlesUnknownCategory(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectQuery(`SELECT id FROM article_categories WHERE slug = \$1`).
		WithArgs("nao-existe").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := ListArticles(context.Background(), q, ArticleListOptions{CategorySlug: strPtr("nao-existe")})
	serr := AsServiceError(err)
	assert.Equal(t, http.StatusNotFound, serr.Status)
	assert.Equal(t, "category not found", serr.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListArticlesFiltersAndAttachesCategory(t *testing.T) {
	q, mock := newMockQueryer(t)
	categoryID := "7d1e2c9a-0b7f-4d0c-8f5e-3c2a1b0d9e8f"
	published := testTime

	mock.ExpectQuery(`SELECT id FROM article_categories WHERE slug = \$1`).
		WithArgs("google-ads").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(categoryID))
	mock.ExpectQuery(`SELECT count\(\*\) FROM articles WHERE category_id = \$1 AND is_featured = \$2 AND is_published = \$3`).
		WithArgs(categoryID, true, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(`FROM articles WHERE category_id = \$1 AND is_featured = \$2 AND is_published = \$3 ORDER BY .* LIMIT \$4 OFFSET \$5`).
		WithArgs(categoryID, true, true, 10, 20).
		WillReturnRows(articleRows(models.Article{
			ID:          "a0000000-0000-4000-8000-000000000001",
			Title:       "Campanhas de Performance",
			Slug:        "campanhas-de-performance",
			Content:     "<p>texto</p>",
			PublishedAt: &published,
			IsFeatured:  true,
			IsPublished: true,
			ReadingTime: 5,
			CategoryID:  &categoryID,
			CreatedAt:   testTime,
		}))
	mock.ExpectQuery(`FROM article_categories WHERE id IN \(\$1\)`).
		WithArgs(categoryID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "description", "created_at", "updated_at"}).
			AddRow(categoryID, "Google Ads", "google-ads", nil, testTime, nil))

	list, err := ListArticles(context.Background(), q, ArticleListOptions{
		CategorySlug: strPtr("google-ads"),
		IsFeatured:   BoolPtr(true),
		Pagination:   Pagination{Page: 3, Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 21, list.Total)
	assert.Equal(t, 3, list.Pages)
	require.NotNil(t, list.Items[0].Category)
	assert.Equal(t, "google-ads", list.Items[0].Category.Slug)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListArticlesAnyStateDropsPublishedFilter(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM articles$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM articles ORDER BY`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(articleRowColumns))

	_, err := ListArticles(context.Background(), q, ArticleListOptions{AnyState: true})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPublishedArticleNotFound(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectQuery(`FROM articles WHERE slug = \$1 AND is_published = TRUE`).
		WithArgs("rascunho").
		WillReturnRows(sqlmock.NewRows(articleRowColumns))

	_, err := GetPublishedArticle(context.Background(), q, "rascunho")
	serr := AsServiceError(err)
	assert.Equal(t, http.StatusNotFound, serr.Status)
	assert.Equal(t, "article not found", serr.Message)
}

func TestGetArticleByIDRejectsMalformedID(t *testing.T) {
	q, mock := newMockQueryer(t)
	_, err := GetArticleByID(context.Background(), q, "42")
	assert.Equal(t, http.StatusNotFound, AsServiceError(err).Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateArticleRequiresTitleAndContent(t *testing.T) {
	q, _ := newMockQueryer(t)
	_, err := CreateArticle(context.Background(), q, ArticleInput{Title: strPtr("Only a title")})
	serr := AsServiceError(err)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
	assert.Equal(t, map[string]string{"content": "field required"}, serr.Fields)
}

func TestDeleteArticleMissingRow(t *testing.T) {
	q, mock := newMockQueryer(t)
	id := "a0000000-0000-4000-8000-000000000009"
	mock.ExpectExec(`DELETE FROM articles WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := DeleteArticle(context.Background(), q, id)
	assert.Equal(t, "article not found", AsServiceError(err).Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateArticleDerivesSlugAndDefaults(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM articles WHERE slug = \$1\)`).
		WithArgs("gestao-de-trafego").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM articles WHERE slug = \$1\)`).
		WithArgs("gestao-de-trafego-2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO articles`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := CreateArticle(context.Background(), q, ArticleInput{
		Title:   strPtr("  Gestão de Tráfego "),
		Content: strPtr("<p>corpo</p>"),
	})
	require.NoError(t, err)
	assert.Equal(t, "gestao-de-trafego-2", created.Slug)
	assert.Equal(t, "Gestão de Tráfego", created.Title)
	assert.True(t, created.IsPublished)
	assert.False(t, created.IsFeatured)
	assert.Equal(t, DefaultReadingTime, created.ReadingTime)
	assert.Nil(t, created.Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateArticleExplicitSlugTaken(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM articles WHERE slug = \$1\)`).
		WithArgs("ja-existe").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := CreateArticle(context.Background(), q, ArticleInput{
		Title:   strPtr("Outro"),
		Slug:    strPtr("ja-existe"),
		Content: strPtr("x"),
	})
	serr := AsServiceError(err)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
	assert.Equal(t, map[string]string{"slug": "already exists"}, serr.Fields)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateArticleUnknownCategory(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM article_categories WHERE id = \$1\)`).
		WithArgs("c0000000-0000-4000-8000-000000000000").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := CreateArticle(context.Background(), q, ArticleInput{
		Title:      strPtr("Com categoria"),
		Content:    strPtr("x"),
		CategoryID: strPtr("c0000000-0000-4000-8000-000000000000"),
	})
	assert.Equal(t, map[string]string{"category_id": "unknown category"}, AsServiceError(err).Fields)
	require.NoError(t, mock.ExpectationsWereMet())
}
