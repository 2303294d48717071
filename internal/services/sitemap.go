package services

import (
	"context"

	"kaizen-backend-go/internal/db"
)

// SitemapData lists the public URLs a sitemap generator needs.
type SitemapData struct {
	Companies   []string `json:"companies"`
	Articles    []string `json:"articles"`
	StaticPages []string `json:"static_pages"`
}

// LoadSitemapData collects active company slugs and published article slugs.
// staticPages comes from configuration and is copied verbatim.
func LoadSitemapData(ctx context.Context, q db.Queryer, staticPages []string) (SitemapData, error) {
	data := SitemapData{
		Companies:   []string{},
		Articles:    []string{},
		StaticPages: append([]string{}, staticPages...),
	}
	if err := q.SelectContext(ctx, &data.Companies, `SELECT slug FROM companies WHERE is_active = TRUE ORDER BY "order" ASC, name ASC, id ASC`); err != nil {
		return SitemapData{}, db.Classify(err)
	}
	if err := q.SelectContext(ctx, &data.Articles, `SELECT slug FROM articles WHERE is_published = TRUE`+articleOrder); err != nil {
		return SitemapData{}, db.Classify(err)
	}
	return data, nil
}
