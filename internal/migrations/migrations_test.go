package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	names, err := Versions()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "00001_content_schema.sql", names[0])
	for _, name := range names {
		assert.True(t, strings.HasSuffix(name, ".sql"), name)
	}
}

func TestSchemaDeclaresSlugConstraintsAndCascade(t *testing.T) {
	raw, err := fs.ReadFile(embedded, "sql/00001_content_schema.sql")
	require.NoError(t, err)
	schema := string(raw)

	for _, constraint := range []string{
		"articles_slug_key UNIQUE (slug)",
		"article_categories_slug_key UNIQUE (slug)",
		"companies_slug_key UNIQUE (slug)",
		"company_categories_slug_key UNIQUE (slug)",
		"users_email_key UNIQUE (email)",
		"users_username_key UNIQUE (username)",
	} {
		assert.Contains(t, schema, constraint)
	}
	assert.Contains(t, schema, "REFERENCES companies (id) ON DELETE CASCADE")
	assert.Contains(t, schema, "REFERENCES article_categories (id) ON DELETE SET NULL")
	assert.Contains(t, schema, "-- +goose Up")
	assert.Contains(t, schema, "-- +goose Down")
}
