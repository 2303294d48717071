package services

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Gestão de Tráfego":         "gestao-de-trafego",
		"  Hello, World!  ":         "hello-world",
		"Inside Sales: 10 dicas":    "inside-sales-10-dicas",
		"Ação---Reação":             "acao-reacao",
		"already-a-slug":            "already-a-slug",
		"Marketing & Vendas B2B ✓": "marketing-vendas-b2b",
	}
	for in, want := range cases {
		got := Slugify(in)
		assert.Equal(t, want, got, in)
		assert.True(t, IsSlug(got), got)
	}
}

func TestSlugifyFallsBackToRandom(t *testing.T) {
	first := Slugify("!!!")
	second := Slugify("???")
	assert.True(t, IsSlug(first))
	assert.NotEqual(t, first, second)
}

func TestIsSlug(t *testing.T) {
	for _, ok := range []string{"a", "abc-123", "x-y-z"} {
		assert.True(t, IsSlug(ok), ok)
	}
	for _, bad := range []string{"", "-a", "a-", "a--b", "Abc", "a b", "ação"} {
		assert.False(t, IsSlug(bad), bad)
	}
}

func TestResolveSlugAppendsCounter(t *testing.T) {
	q, mock := newMockQueryer(t)
	existsQuery := `SELECT EXISTS\(SELECT 1 FROM articles WHERE slug = \$1\)`
	mock.ExpectQuery(existsQuery).WithArgs("gestao").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(existsQuery).WithArgs("gestao-2").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(existsQuery).WithArgs("gestao-3").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	slug, err := ResolveSlug(context.Background(), q, "articles", "gestao")
	require.NoError(t, err)
	assert.Equal(t, "gestao-3", slug)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveSlugRejectsUnknownTable(t *testing.T) {
	q, _ := newMockQueryer(t)
	_, err := ResolveSlug(context.Background(), q, "users; --", "x")
	assert.Error(t, err)
}

func TestTruncateSlug(t *testing.T) {
	long := strings.Repeat("ab-", 40)
	got := truncateSlug(long, 76)
	assert.LessOrEqual(t, len(got), 76)
	assert.False(t, strings.HasSuffix(got, "-"))
}
