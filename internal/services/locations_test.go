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

func TestListLocationsDefaultsToActive(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectQuery(`FROM locations WHERE is_active = \$1 ORDER BY "order" ASC, city ASC, id ASC`).
		WithArgs(true).
		WillReturnRows(locationRows(
			models.Location{ID: "l1", Name: "Agência Kaizen", City: "Porto Alegre", State: "RS", Address: "Av. Praia de Belas", Country: "BR", IsMainOffice: true, IsActive: true, Order: 1, CreatedAt: testTime},
			models.Location{ID: "l2", Name: "Agência Kaizen", City: "Curitiba", State: "PR", Address: "Rua Comendador Araújo", Country: "BR", IsActive: true, Order: 2, CreatedAt: testTime},
		))

	locations, err := ListLocations(context.Background(), q, LocationListOptions{})
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "Porto Alegre", locations[0].City)
	assert.Equal(t, "Curitiba", locations[1].City)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListLocationsMainOfficeFilter(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectQuery(`FROM locations WHERE is_active = \$1 AND is_main_office = \$2 ORDER BY`).
		WithArgs(false, true).
		WillReturnRows(sqlmock.NewRows(locationRowColumns))

	locations, err := ListLocations(context.Background(), q, LocationListOptions{IsActive: BoolPtr(false), IsMainOffice: BoolPtr(true)})
	require.NoError(t, err)
	assert.NotNil(t, locations)
	assert.Empty(t, locations)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLocationAppliesDefaults(t *testing.T) {
	q, mock := newMockQueryer(t)
	mock.ExpectExec(`INSERT INTO locations`).WillReturnResult(sqlmock.NewResult(0, 1))

	location, err := CreateLocation(context.Background(), q, LocationInput{
		City:    strPtr(" Campinas "),
		Address: strPtr("Rua X, 10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Campinas", location.City)
	assert.Equal(t, DefaultLocationName, location.Name)
	assert.Equal(t, DefaultLocationState, location.State)
	assert.Equal(t, DefaultLocationCountry, location.Country)
	assert.True(t, location.IsActive)
	assert.False(t, location.IsMainOffice)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLocationRequiresCityAndAddress(t *testing.T) {
	q, _ := newMockQueryer(t)
	_, err := CreateLocation(context.Background(), q, LocationInput{})
	serr := AsServiceError(err)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
	assert.Equal(t, map[string]string{"city": "field required", "address": "field required"}, serr.Fields)
}

func TestUpdateLocationMissing(t *testing.T) {
	q, mock := newMockQueryer(t)
	id := "b0000000-0000-4000-8000-000000000001"
	mock.ExpectQuery(`FROM locations WHERE id = \$1`).WithArgs(id).WillReturnRows(sqlmock.NewRows(locationRowColumns))

	_, err := UpdateLocation(context.Background(), q, id, LocationInput{City: strPtr("Recife")})
	assert.Equal(t, "location not found", AsServiceError(err).Message)
	require.NoError(t, mock.ExpectationsWereMet())
}
