package services

import (
	"context"
	"strings"
	"time"

	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const DefaultCompanyColor = "#D62042"

const companyColumns = `id, name, slug, tagline, description, logo_url, featured_image_url, category_id,
       website_url, contact_email, phone, is_active, "order", meta_description, founded_date,
       created_at, updated_at`

const companyCategoryColumns = `id, name, slug, description, color, created_at, updated_at`

const featureColumns = `id, company_id, title, description, icon, "order", created_at, updated_at`

type CompanyListOptions struct {
	CategorySlug *string
	// IsActive defaults to true when nil.
	IsActive *bool
	Pagination
}

// CompanyDetail is a company with its category and ordered features.
type CompanyDetail struct {
	models.Company
	Category *models.CompanyCategory
	Features []models.CompanyFeature
}

type CompanyList struct {
	Items []CompanyDetail
	Total int
	Page  int
	Limit int
	Pages int
}

func ListCompanies(ctx context.Context, q db.Queryer, opts CompanyListOptions) (CompanyList, error) {
	p := opts.Pagination.normalized()
	active := true
	if opts.IsActive != nil {
		active = *opts.IsActive
	}
	var cond conditions
	cond.add("is_active = $%d", active)
	if opts.CategorySlug != nil {
		var categoryID string
		err := q.GetContext(ctx, &categoryID, `SELECT id FROM company_categories WHERE slug = $1`, *opts.CategorySlug)
		if err != nil {
			if db.IsNoRows(err) {
				return CompanyList{}, ErrNotFound("category")
			}
			return CompanyList{}, db.Classify(err)
		}
		cond.add("category_id = $%d", categoryID)
	}

	var total int
	if err := q.GetContext(ctx, &total, `SELECT count(*) FROM companies`+cond.where(), cond.args...); err != nil {
		return CompanyList{}, db.Classify(err)
	}
	limitClause, args := cond.page(p)
	rows := []models.Company{}
	query := `SELECT ` + companyColumns + ` FROM companies` + cond.where() + ` ORDER BY "order" ASC, name ASC, id ASC` + limitClause
	if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
		return CompanyList{}, db.Classify(err)
	}
	items, err := attachCompanyRelations(ctx, q, rows)
	if err != nil {
		return CompanyList{}, err
	}
	return CompanyList{Items: items, Total: total, Page: p.Page, Limit: p.Limit, Pages: PageCount(total, p.Limit)}, nil
}

// GetActiveCompany resolves a public company by slug. Inactive companies are
// reported as missing.
func GetActiveCompany(ctx context.Context, q db.Queryer, slug string) (CompanyDetail, error) {
	var company models.Company
	err := q.GetContext(ctx, &company, `SELECT `+companyColumns+` FROM companies WHERE slug = $1 AND is_active = TRUE`, slug)
	if err != nil {
		if db.IsNoRows(err) {
			return CompanyDetail{}, ErrNotFound("company")
		}
		return CompanyDetail{}, db.Classify(err)
	}
	items, err := attachCompanyRelations(ctx, q, []models.Company{company})
	if err != nil {
		return CompanyDetail{}, err
	}
	return items[0], nil
}

func GetCompanyByID(ctx context.Context, q db.Queryer, id string) (CompanyDetail, error) {
	if _, err := uuid.Parse(id); err != nil {
		return CompanyDetail{}, ErrNotFound("company")
	}
	var company models.Company
	if err := q.GetContext(ctx, &company, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id); err != nil {
		if db.IsNoRows(err) {
			return CompanyDetail{}, ErrNotFound("company")
		}
		return CompanyDetail{}, db.Classify(err)
	}
	items, err := attachCompanyRelations(ctx, q, []models.Company{company})
	if err != nil {
		return CompanyDetail{}, err
	}
	return items[0], nil
}

// attachCompanyRelations batch-loads categories and features for rows,
// keeping feature order stable by ("order", id).
func attachCompanyRelations(ctx context.Context, q db.Queryer, rows []models.Company) ([]CompanyDetail, error) {
	items := make([]CompanyDetail, 0, len(rows))
	if len(rows) == 0 {
		return items, nil
	}
	companyIDs := make([]string, 0, len(rows))
	categoryIDs := []string{}
	seen := map[string]bool{}
	for _, row := range rows {
		companyIDs = append(companyIDs, row.ID)
		if !seen[row.CategoryID] {
			seen[row.CategoryID] = true
			categoryIDs = append(categoryIDs, row.CategoryID)
		}
	}

	query, args, err := sqlx.In(`SELECT `+companyCategoryColumns+` FROM company_categories WHERE id IN (?)`, categoryIDs)
	if err != nil {
		return nil, err
	}
	categories := []models.CompanyCategory{}
	if err := q.SelectContext(ctx, &categories, q.Rebind(query), args...); err != nil {
		return nil, db.Classify(err)
	}
	categoryByID := map[string]*models.CompanyCategory{}
	for i := range categories {
		categoryByID[categories[i].ID] = &categories[i]
	}

	query, args, err = sqlx.In(`SELECT `+featureColumns+` FROM company_features WHERE company_id IN (?) ORDER BY "order" ASC, id ASC`, companyIDs)
	if err != nil {
		return nil, err
	}
	features := []models.CompanyFeature{}
	if err := q.SelectContext(ctx, &features, q.Rebind(query), args...); err != nil {
		return nil, db.Classify(err)
	}
	featuresByCompany := map[string][]models.CompanyFeature{}
	for _, feature := range features {
		featuresByCompany[feature.CompanyID] = append(featuresByCompany[feature.CompanyID], feature)
	}

	for _, row := range rows {
		list := featuresByCompany[row.ID]
		if list == nil {
			list = []models.CompanyFeature{}
		}
		items = append(items, CompanyDetail{Company: row, Category: categoryByID[row.CategoryID], Features: list})
	}
	return items, nil
}

func ListCompanyCategories(ctx context.Context, q db.Queryer) ([]models.CompanyCategory, error) {
	categories := []models.CompanyCategory{}
	err := q.SelectContext(ctx, &categories, `SELECT `+companyCategoryColumns+` FROM company_categories ORDER BY name ASC, id ASC`)
	return categories, db.Classify(err)
}

type CompanyCategoryInput struct {
	Name        string
	Slug        *string
	Description *string
	Color       *string
}

func CreateCompanyCategory(ctx context.Context, q db.Queryer, input CompanyCategoryInput) (models.CompanyCategory, error) {
	slug, err := chooseSlug(ctx, q, "company_categories", input.Slug, input.Name)
	if err != nil {
		return models.CompanyCategory{}, err
	}
	category := models.CompanyCategory{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
		Color:       DefaultCompanyColor,
		CreatedAt:   time.Now().UTC(),
	}
	if input.Color != nil && *input.Color != "" {
		category.Color = *input.Color
	}
	_, err = q.ExecContext(ctx, `
INSERT INTO company_categories (id, name, slug, description, color, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, category.ID, category.Name, category.Slug, category.Description, category.Color, category.CreatedAt)
	if err != nil {
		return models.CompanyCategory{}, db.Classify(err)
	}
	return category, nil
}

type FeatureInput struct {
	Title       string
	Description string
	Icon        *string
	Order       int
}

// CompanyInput is an admin payload. Nil pointers keep the stored value on
// update; a non-nil Features replaces the whole feature list.
type CompanyInput struct {
	Name             *string
	Slug             *string
	Tagline          *string
	Description      *string
	LogoURL          *string
	FeaturedImageURL *string
	CategoryID       *string
	WebsiteURL       *string
	ContactEmail     *string
	Phone            *string
	IsActive         *bool
	Order            *int
	MetaDescription  *string
	FoundedDate      *time.Time
	Features         []FeatureInput
}

// CreateCompany must run inside a transaction so the company and its
// features land together.
func CreateCompany(ctx context.Context, q db.Queryer, input CompanyInput) (CompanyDetail, error) {
	if err := RequireFields(map[string]bool{"name": input.Name != nil, "category_id": input.CategoryID != nil}); err != nil {
		return CompanyDetail{}, err
	}
	if err := ensureCompanyCategory(ctx, q, *input.CategoryID); err != nil {
		return CompanyDetail{}, err
	}
	slug, err := chooseSlug(ctx, q, "companies", input.Slug, *input.Name)
	if err != nil {
		return CompanyDetail{}, err
	}
	company := models.Company{
		ID:        uuid.NewString(),
		Slug:      slug,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	applyCompanyInput(&company, input)
	_, err = q.ExecContext(ctx, `
INSERT INTO companies (
  id, name, slug, tagline, description, logo_url, featured_image_url, category_id,
  website_url, contact_email, phone, is_active, "order", meta_description, founded_date, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`, company.ID, company.Name, company.Slug, company.Tagline, company.Description, company.LogoURL,
		company.FeaturedImageURL, company.CategoryID, company.WebsiteURL, company.ContactEmail, company.Phone,
		company.IsActive, company.Order, company.MetaDescription, company.FoundedDate, company.CreatedAt)
	if err != nil {
		return CompanyDetail{}, db.Classify(err)
	}
	if err := replaceFeatures(ctx, q, company.ID, input.Features); err != nil {
		return CompanyDetail{}, err
	}
	return GetCompanyByID(ctx, q, company.ID)
}

// UpdateCompany must run inside a transaction. The slug is immutable.
func UpdateCompany(ctx context.Context, q db.Queryer, id string, input CompanyInput) (CompanyDetail, error) {
	current, err := GetCompanyByID(ctx, q, id)
	if err != nil {
		return CompanyDetail{}, err
	}
	if input.CategoryID != nil {
		if err := ensureCompanyCategory(ctx, q, *input.CategoryID); err != nil {
			return CompanyDetail{}, err
		}
	}
	company := current.Company
	applyCompanyInput(&company, input)
	now := time.Now().UTC()
	_, err = q.ExecContext(ctx, `
UPDATE companies
SET name = $2, tagline = $3, description = $4, logo_url = $5, featured_image_url = $6, category_id = $7,
    website_url = $8, contact_email = $9, phone = $10, is_active = $11, "order" = $12,
    meta_description = $13, founded_date = $14, updated_at = $15
WHERE id = $1
`, company.ID, company.Name, company.Tagline, company.Description, company.LogoURL, company.FeaturedImageURL,
		company.CategoryID, company.WebsiteURL, company.ContactEmail, company.Phone, company.IsActive, company.Order,
		company.MetaDescription, company.FoundedDate, now)
	if err != nil {
		return CompanyDetail{}, db.Classify(err)
	}
	if input.Features != nil {
		if _, err := q.ExecContext(ctx, `DELETE FROM company_features WHERE company_id = $1`, company.ID); err != nil {
			return CompanyDetail{}, db.Classify(err)
		}
		if err := replaceFeatures(ctx, q, company.ID, input.Features); err != nil {
			return CompanyDetail{}, err
		}
	}
	return GetCompanyByID(ctx, q, company.ID)
}

// DeleteCompany cascades to the company's features.
func DeleteCompany(ctx context.Context, q db.Queryer, id string) error {
	return deleteByID(ctx, q, "companies", "company", id)
}

func replaceFeatures(ctx context.Context, q db.Queryer, companyID string, features []FeatureInput) error {
	now := time.Now().UTC()
	for _, feature := range features {
		_, err := q.ExecContext(ctx, `
INSERT INTO company_features (id, company_id, title, description, icon, "order", created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, uuid.NewString(), companyID, strings.TrimSpace(feature.Title), feature.Description, feature.Icon, feature.Order, now)
		if err != nil {
			return db.Classify(err)
		}
	}
	return nil
}

func applyCompanyInput(company *models.Company, input CompanyInput) {
	if input.Name != nil {
		company.Name = strings.TrimSpace(*input.Name)
	}
	if input.Tagline != nil {
		company.Tagline = input.Tagline
	}
	if input.Description != nil {
		company.Description = input.Description
	}
	if input.LogoURL != nil {
		company.LogoURL = input.LogoURL
	}
	if input.FeaturedImageURL != nil {
		company.FeaturedImageURL = input.FeaturedImageURL
	}
	if input.CategoryID != nil {
		company.CategoryID = *input.CategoryID
	}
	if input.WebsiteURL != nil {
		company.WebsiteURL = input.WebsiteURL
	}
	if input.ContactEmail != nil {
		company.ContactEmail = input.ContactEmail
	}
	if input.Phone != nil {
		company.Phone = input.Phone
	}
	if input.IsActive != nil {
		company.IsActive = *input.IsActive
	}
	if input.Order != nil {
		company.Order = *input.Order
	}
	if input.MetaDescription != nil {
		company.MetaDescription = input.MetaDescription
	}
	if input.FoundedDate != nil {
		founded := input.FoundedDate.UTC()
		company.FoundedDate = &founded
	}
}

func ensureCompanyCategory(ctx context.Context, q db.Queryer, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrValidation(map[string]string{"category_id": "unknown category"})
	}
	var exists bool
	if err := q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM company_categories WHERE id = $1)`, id); err != nil {
		return db.Classify(err)
	}
	if !exists {
		return ErrValidation(map[string]string{"category_id": "unknown category"})
	}
	return nil
}
