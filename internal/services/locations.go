package services

import (
	"context"
	"strings"
	"time"

	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultLocationName    = "Agência Kaizen"
	DefaultLocationState   = "SP"
	DefaultLocationCountry = "BR"
)

const locationColumns = `id, name, city, state, address, postal_code, country, phone, email,
       latitude, longitude, maps_url, place_id, opening_hours, is_main_office, is_active, "order",
       created_at, updated_at`

type LocationListOptions struct {
	// IsActive defaults to true when nil.
	IsActive     *bool
	IsMainOffice *bool
}

// ListLocations returns every matching location ordered by ("order", city).
func ListLocations(ctx context.Context, q db.Queryer, opts LocationListOptions) ([]models.Location, error) {
	active := true
	if opts.IsActive != nil {
		active = *opts.IsActive
	}
	var cond conditions
	cond.add("is_active = $%d", active)
	if opts.IsMainOffice != nil {
		cond.add("is_main_office = $%d", *opts.IsMainOffice)
	}
	locations := []models.Location{}
	query := `SELECT ` + locationColumns + ` FROM locations` + cond.where() + ` ORDER BY "order" ASC, city ASC, id ASC`
	if err := q.SelectContext(ctx, &locations, query, cond.args...); err != nil {
		return nil, db.Classify(err)
	}
	return locations, nil
}

func GetLocation(ctx context.Context, q db.Queryer, id string) (models.Location, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Location{}, ErrNotFound("location")
	}
	var location models.Location
	if err := q.GetContext(ctx, &location, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id); err != nil {
		if db.IsNoRows(err) {
			return models.Location{}, ErrNotFound("location")
		}
		return models.Location{}, db.Classify(err)
	}
	return location, nil
}

// LocationInput is an admin payload; nil pointers keep the stored value.
type LocationInput struct {
	Name         *string
	City         *string
	State        *string
	Address      *string
	PostalCode   *string
	Country      *string
	Phone        *string
	Email        *string
	Latitude     *float64
	Longitude    *float64
	MapsURL      *string
	PlaceID      *string
	OpeningHours *string
	IsMainOffice *bool
	IsActive     *bool
	Order        *int
}

func CreateLocation(ctx context.Context, q db.Queryer, input LocationInput) (models.Location, error) {
	if err := RequireFields(map[string]bool{"city": input.City != nil, "address": input.Address != nil}); err != nil {
		return models.Location{}, err
	}
	location := models.Location{
		ID:        uuid.NewString(),
		Name:      DefaultLocationName,
		State:     DefaultLocationState,
		Country:   DefaultLocationCountry,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	applyLocationInput(&location, input)
	_, err := q.ExecContext(ctx, `
INSERT INTO locations (
  id, name, city, state, address, postal_code, country, phone, email, latitude, longitude,
  maps_url, place_id, opening_hours, is_main_office, is_active, "order", created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
`, location.ID, location.Name, location.City, location.State, location.Address, location.PostalCode,
		location.Country, location.Phone, location.Email, location.Latitude, location.Longitude,
		location.MapsURL, location.PlaceID, location.OpeningHours, location.IsMainOffice, location.IsActive,
		location.Order, location.CreatedAt)
	if err != nil {
		return models.Location{}, db.Classify(err)
	}
	return location, nil
}

func UpdateLocation(ctx context.Context, q db.Queryer, id string, input LocationInput) (models.Location, error) {
	location, err := GetLocation(ctx, q, id)
	if err != nil {
		return models.Location{}, err
	}
	applyLocationInput(&location, input)
	now := time.Now().UTC()
	location.UpdatedAt = &now
	_, err = q.ExecContext(ctx, `
UPDATE locations
SET name = $2, city = $3, state = $4, address = $5, postal_code = $6, country = $7, phone = $8,
    email = $9, latitude = $10, longitude = $11, maps_url = $12, place_id = $13, opening_hours = $14,
    is_main_office = $15, is_active = $16, "order" = $17, updated_at = $18
WHERE id = $1
`, location.ID, location.Name, location.City, location.State, location.Address, location.PostalCode,
		location.Country, location.Phone, location.Email, location.Latitude, location.Longitude,
		location.MapsURL, location.PlaceID, location.OpeningHours, location.IsMainOffice, location.IsActive,
		location.Order, now)
	if err != nil {
		return models.Location{}, db.Classify(err)
	}
	return location, nil
}

func DeleteLocation(ctx context.Context, q db.Queryer, id string) error {
	return deleteByID(ctx, q, "locations", "location", id)
}

func applyLocationInput(location *models.Location, input LocationInput) {
	if input.Name != nil {
		location.Name = strings.TrimSpace(*input.Name)
	}
	if input.City != nil {
		location.City = strings.TrimSpace(*input.City)
	}
	if input.State != nil {
		location.State = strings.ToUpper(*input.State)
	}
	if input.Address != nil {
		location.Address = *input.Address
	}
	if input.PostalCode != nil {
		location.PostalCode = input.PostalCode
	}
	if input.Country != nil {
		location.Country = strings.ToUpper(*input.Country)
	}
	if input.Phone != nil {
		location.Phone = input.Phone
	}
	if input.Email != nil {
		location.Email = input.Email
	}
	if input.Latitude != nil {
		location.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		location.Longitude = input.Longitude
	}
	if input.MapsURL != nil {
		location.MapsURL = input.MapsURL
	}
	if input.PlaceID != nil {
		location.PlaceID = input.PlaceID
	}
	if input.OpeningHours != nil {
		location.OpeningHours = input.OpeningHours
	}
	if input.IsMainOffice != nil {
		location.IsMainOffice = *input.IsMainOffice
	}
	if input.IsActive != nil {
		location.IsActive = *input.IsActive
	}
	if input.Order != nil {
		location.Order = *input.Order
	}
}
