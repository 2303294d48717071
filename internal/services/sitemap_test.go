package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSitemapData(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectQuery(`SELECT slug FROM companies WHERE is_active = TRUE ORDER BY "order" ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"slug"}).AddRow("agencia-kaizen").AddRow("leadspot"))
	mock.ExpectQuery(`SELECT slug FROM articles WHERE is_published = TRUE ORDER BY published_at DESC NULLS LAST`).
		WillReturnRows(sqlmock.NewRows([]string{"slug"}))

	data, err := LoadSitemapData(context.Background(), q, []string{"", "about", "contact"})
	require.NoError(t, err)
	assert.Equal(t, []string{"agencia-kaizen", "leadspot"}, data.Companies)
	assert.NotNil(t, data.Articles)
	assert.Empty(t, data.Articles)
	assert.Equal(t, []string{"", "about", "contact"}, data.StaticPages)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSitemapDataPropagatesFailure(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectQuery(`SELECT slug FROM companies`).WillReturnError(errors.New("connection reset"))

	_, err := LoadSitemapData(context.Background(), q, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, AsServiceError(err).Status)
}
