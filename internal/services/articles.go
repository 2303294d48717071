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

const DefaultReadingTime = 5

const articleColumns = `id, title, slug, excerpt, content, cover_image_url, social_image_url, published_at,
       is_featured, is_published, reading_time, seo_title, seo_description, meta_keywords,
       category_id, created_at, updated_at`

const articleCategoryColumns = `id, name, slug, description, created_at, updated_at`

// articleOrder is the total order for article lists: newest publication
// first, undated articles last, id as the final tie-break.
const articleOrder = ` ORDER BY published_at DESC NULLS LAST, created_at DESC, id ASC`

type ArticleListOptions struct {
	CategorySlug *string
	IsFeatured   *bool
	// IsPublished defaults to true when nil unless AnyState is set.
	IsPublished *bool
	AnyState    bool
	Pagination
}

// ArticleWithCategory pairs an article with its optional category.
type ArticleWithCategory struct {
	models.Article
	Category *models.ArticleCategory
}

type ArticleList struct {
	Items []ArticleWithCategory
	Total int
	Page  int
	Limit int
	Pages int
}

// ListArticles applies the filters conjunctively, counts the filtered set
// and returns one page of it.
func ListArticles(ctx context.Context, q db.Queryer, opts ArticleListOptions) (ArticleList, error) {
	p := opts.Pagination.normalized()
	var cond conditions
	if opts.CategorySlug != nil {
		var categoryID string
		err := q.GetContext(ctx, &categoryID, `SELECT id FROM article_categories WHERE slug = $1`, *opts.CategorySlug)
		if err != nil {
			if db.IsNoRows(err) {
				return ArticleList{}, ErrNotFound("category")
			}
			return ArticleList{}, db.Classify(err)
		}
		cond.add("category_id = $%d", categoryID)
	}
	if opts.IsFeatured != nil {
		cond.add("is_featured = $%d", *opts.IsFeatured)
	}
	switch {
	case opts.IsPublished != nil:
		cond.add("is_published = $%d", *opts.IsPublished)
	case !opts.AnyState:
		cond.add("is_published = $%d", true)
	}

	var total int
	if err := q.GetContext(ctx, &total, `SELECT count(*) FROM articles`+cond.where(), cond.args...); err != nil {
		return ArticleList{}, db.Classify(err)
	}

	limitClause, args := cond.page(p)
	rows := []models.Article{}
	if err := q.SelectContext(ctx, &rows, `SELECT `+articleColumns+` FROM articles`+cond.where()+articleOrder+limitClause, args...); err != nil {
		return ArticleList{}, db.Classify(err)
	}
	items, err := attachArticleCategories(ctx, q, rows)
	if err != nil {
		return ArticleList{}, err
	}
	return ArticleList{
		Items: items,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: PageCount(total, p.Limit),
	}, nil
}

// GetPublishedArticle only ever returns articles with is_published = true.
func GetPublishedArticle(ctx context.Context, q db.Queryer, slug string) (ArticleWithCategory, error) {
	var article models.Article
	err := q.GetContext(ctx, &article, `SELECT `+articleColumns+` FROM articles WHERE slug = $1 AND is_published = TRUE`, slug)
	if err != nil {
		if db.IsNoRows(err) {
			return ArticleWithCategory{}, ErrNotFound("article")
		}
		return ArticleWithCategory{}, db.Classify(err)
	}
	items, err := attachArticleCategories(ctx, q, []models.Article{article})
	if err != nil {
		return ArticleWithCategory{}, err
	}
	return items[0], nil
}

func GetArticleByID(ctx context.Context, q db.Queryer, id string) (ArticleWithCategory, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ArticleWithCategory{}, ErrNotFound("article")
	}
	var article models.Article
	if err := q.GetContext(ctx, &article, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id); err != nil {
		if db.IsNoRows(err) {
			return ArticleWithCategory{}, ErrNotFound("article")
		}
		return ArticleWithCategory{}, db.Classify(err)
	}
	items, err := attachArticleCategories(ctx, q, []models.Article{article})
	if err != nil {
		return ArticleWithCategory{}, err
	}
	return items[0], nil
}

func attachArticleCategories(ctx context.Context, q db.Queryer, rows []models.Article) ([]ArticleWithCategory, error) {
	items := make([]ArticleWithCategory, 0, len(rows))
	ids := []string{}
	seen := map[string]bool{}
	for _, row := range rows {
		if row.CategoryID != nil && !seen[*row.CategoryID] {
			seen[*row.CategoryID] = true
			ids = append(ids, *row.CategoryID)
		}
	}
	byID := map[string]*models.ArticleCategory{}
	if len(ids) > 0 {
		query, args, err := sqlx.In(`SELECT `+articleCategoryColumns+` FROM article_categories WHERE id IN (?)`, ids)
		if err != nil {
			return nil, err
		}
		categories := []models.ArticleCategory{}
		if err := q.SelectContext(ctx, &categories, q.Rebind(query), args...); err != nil {
			return nil, db.Classify(err)
		}
		for i := range categories {
			byID[categories[i].ID] = &categories[i]
		}
	}
	for _, row := range rows {
		item := ArticleWithCategory{Article: row}
		if row.CategoryID != nil {
			item.Category = byID[*row.CategoryID]
		}
		items = append(items, item)
	}
	return items, nil
}

func ListArticleCategories(ctx context.Context, q db.Queryer) ([]models.ArticleCategory, error) {
	categories := []models.ArticleCategory{}
	err := q.SelectContext(ctx, &categories, `SELECT `+articleCategoryColumns+` FROM article_categories ORDER BY name ASC, id ASC`)
	return categories, db.Classify(err)
}

type ArticleCategoryInput struct {
	Name        string
	Slug        *string
	Description *string
}

func CreateArticleCategory(ctx context.Context, q db.Queryer, input ArticleCategoryInput) (models.ArticleCategory, error) {
	slug, err := chooseSlug(ctx, q, "article_categories", input.Slug, input.Name)
	if err != nil {
		return models.ArticleCategory{}, err
	}
	category := models.ArticleCategory{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = q.ExecContext(ctx, `
INSERT INTO article_categories (id, name, slug, description, created_at)
VALUES ($1,$2,$3,$4,$5)
`, category.ID, category.Name, category.Slug, category.Description, category.CreatedAt)
	if err != nil {
		return models.ArticleCategory{}, db.Classify(err)
	}
	return category, nil
}

// DeleteArticleCategory leaves referencing articles uncategorised.
func DeleteArticleCategory(ctx context.Context, q db.Queryer, id string) error {
	return deleteByID(ctx, q, "article_categories", "category", id)
}

// ArticleInput is an already validated admin payload. Nil pointers keep the
// stored value on update.
type ArticleInput struct {
	Title          *string
	Slug           *string
	Excerpt        *string
	Content        *string
	CoverImageURL  *string
	SocialImageURL *string
	PublishedAt    *time.Time
	IsFeatured     *bool
	IsPublished    *bool
	ReadingTime    *int
	SeoTitle       *string
	SeoDescription *string
	MetaKeywords   *string
	CategoryID     *string
}

func CreateArticle(ctx context.Context, q db.Queryer, input ArticleInput) (ArticleWithCategory, error) {
	if err := RequireFields(map[string]bool{"title": input.Title != nil, "content": input.Content != nil}); err != nil {
		return ArticleWithCategory{}, err
	}
	if err := ensureArticleCategory(ctx, q, input.CategoryID); err != nil {
		return ArticleWithCategory{}, err
	}
	slug, err := chooseSlug(ctx, q, "articles", input.Slug, *input.Title)
	if err != nil {
		return ArticleWithCategory{}, err
	}
	article := models.Article{
		ID:          uuid.NewString(),
		Slug:        slug,
		IsPublished: true,
		ReadingTime: DefaultReadingTime,
		CreatedAt:   time.Now().UTC(),
	}
	applyArticleInput(&article, input)
	_, err = q.ExecContext(ctx, `
INSERT INTO articles (
  id, title, slug, excerpt, content, cover_image_url, social_image_url, published_at,
  is_featured, is_published, reading_time, seo_title, seo_description, meta_keywords,
  category_id, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`, article.ID, article.Title, article.Slug, article.Excerpt, article.Content, article.CoverImageURL,
		article.SocialImageURL, article.PublishedAt, article.IsFeatured, article.IsPublished, article.ReadingTime,
		article.SeoTitle, article.SeoDescription, article.MetaKeywords, article.CategoryID, article.CreatedAt)
	if err != nil {
		return ArticleWithCategory{}, db.Classify(err)
	}
	items, err := attachArticleCategories(ctx, q, []models.Article{article})
	if err != nil {
		return ArticleWithCategory{}, err
	}
	return items[0], nil
}

// UpdateArticle never changes the slug: it is the public identifier.
func UpdateArticle(ctx context.Context, q db.Queryer, id string, input ArticleInput) (ArticleWithCategory, error) {
	current, err := GetArticleByID(ctx, q, id)
	if err != nil {
		return ArticleWithCategory{}, err
	}
	if err := ensureArticleCategory(ctx, q, input.CategoryID); err != nil {
		return ArticleWithCategory{}, err
	}
	article := current.Article
	applyArticleInput(&article, input)
	now := time.Now().UTC()
	article.UpdatedAt = &now
	_, err = q.ExecContext(ctx, `
UPDATE articles
SET title = $2, excerpt = $3, content = $4, cover_image_url = $5, social_image_url = $6,
    published_at = $7, is_featured = $8, is_published = $9, reading_time = $10,
    seo_title = $11, seo_description = $12, meta_keywords = $13, category_id = $14, updated_at = $15
WHERE id = $1
`, article.ID, article.Title, article.Excerpt, article.Content, article.CoverImageURL, article.SocialImageURL,
		article.PublishedAt, article.IsFeatured, article.IsPublished, article.ReadingTime,
		article.SeoTitle, article.SeoDescription, article.MetaKeywords, article.CategoryID, now)
	if err != nil {
		return ArticleWithCategory{}, db.Classify(err)
	}
	items, err := attachArticleCategories(ctx, q, []models.Article{article})
	if err != nil {
		return ArticleWithCategory{}, err
	}
	return items[0], nil
}

func DeleteArticle(ctx context.Context, q db.Queryer, id string) error {
	return deleteByID(ctx, q, "articles", "article", id)
}

func applyArticleInput(article *models.Article, input ArticleInput) {
	if input.Title != nil {
		article.Title = strings.TrimSpace(*input.Title)
	}
	if input.Excerpt != nil {
		article.Excerpt = input.Excerpt
	}
	if input.Content != nil {
		article.Content = *input.Content
	}
	if input.CoverImageURL != nil {
		article.CoverImageURL = input.CoverImageURL
	}
	if input.SocialImageURL != nil {
		article.SocialImageURL = input.SocialImageURL
	}
	if input.PublishedAt != nil {
		published := input.PublishedAt.UTC()
		article.PublishedAt = &published
	}
	if input.IsFeatured != nil {
		article.IsFeatured = *input.IsFeatured
	}
	if input.IsPublished != nil {
		article.IsPublished = *input.IsPublished
	}
	if input.ReadingTime != nil {
		article.ReadingTime = *input.ReadingTime
	}
	if input.SeoTitle != nil {
		article.SeoTitle = input.SeoTitle
	}
	if input.SeoDescription != nil {
		article.SeoDescription = input.SeoDescription
	}
	if input.MetaKeywords != nil {
		article.MetaKeywords = input.MetaKeywords
	}
	if input.CategoryID != nil {
		article.CategoryID = input.CategoryID
	}
}

func ensureArticleCategory(ctx context.Context, q db.Queryer, id *string) error {
	if id == nil {
		return nil
	}
	var exists bool
	if err := q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM article_categories WHERE id = $1)`, *id); err != nil {
		return db.Classify(err)
	}
	if !exists {
		return ErrValidation(map[string]string{"category_id": "unknown category"})
	}
	return nil
}

// chooseSlug uses the explicit slug when given (it must be free), and
// otherwise derives a unique one from the fallback text.
func chooseSlug(ctx context.Context, q db.Queryer, table string, explicit *string, fallback string) (string, error) {
	if explicit != nil && *explicit != "" {
		var exists bool
		if err := q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE slug = $1)`, *explicit); err != nil {
			return "", db.Classify(err)
		}
		if exists {
			return "", ErrValidation(map[string]string{"slug": "already exists"})
		}
		return *explicit, nil
	}
	return ResolveSlug(ctx, q, table, Slugify(fallback))
}

// deleteByID removes one row from a whitelisted table.
func deleteByID(ctx context.Context, q db.Queryer, table, subject, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound(subject)
	}
	result, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return db.Classify(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return db.Classify(err)
	}
	if affected == 0 {
		return ErrNotFound(subject)
	}
	return nil
}
