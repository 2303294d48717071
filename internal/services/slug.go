package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"kaizen-backend-go/internal/db"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsSlug reports whether value is already a canonical slug.
func IsSlug(value string) bool {
	return slugPattern.MatchString(value)
}

// Slugify turns a title into a lowercase ASCII slug ("Gestão de Tráfego" ->
// "gestao-de-trafego"). Titles with no usable characters get a random slug.
func Slugify(value string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), value)
	if err != nil {
		folded = value
	}
	lower := strings.ToLower(strings.TrimSpace(folded))
	var b strings.Builder
	lastDash := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return uuid.NewString()
	}
	return slug
}

// slugTables whitelists the tables ResolveSlug may check.
var slugTables = map[string]int{
	"articles":           255,
	"article_categories": 80,
	"companies":          100,
	"company_categories": 100,
}

// ResolveSlug returns base, or base-2, base-3... whichever is free in table.
func ResolveSlug(ctx context.Context, q db.Queryer, table, base string) (string, error) {
	maxLen, ok := slugTables[table]
	if !ok {
		return "", fmt.Errorf("slug table %q not allowed", table)
	}
	base = truncateSlug(base, maxLen-4)
	candidate := base
	counter := 2
	for {
		var exists bool
		err := q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE slug = $1)`, candidate)
		if err != nil {
			return "", db.Classify(err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(counter)
		counter++
	}
}

func truncateSlug(slug string, maxLen int) string {
	if len(slug) <= maxLen {
		return slug
	}
	return strings.TrimRight(slug[:maxLen], "-")
}
