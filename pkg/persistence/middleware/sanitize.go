package middleware

import (
	"context"
	"strings"
	"unicode"

	"github.com/aretw0/tend/pkg/domain"
	"github.com/aretw0/tend/pkg/ports"
)

type sanitizeRepository struct {
	ports.ItemRepository
	maxLen int
}

// NewSanitizeMiddleware cleans item names before they reach storage.
// Control characters are dropped, surrounding whitespace is trimmed and names
// longer than maxLen runes are truncated (maxLen <= 0 disables truncation).
// Blank names are rejected with domain.ErrEmptyName.
func NewSanitizeMiddleware(maxLen int) Middleware {
	return func(next ports.ItemRepository) ports.ItemRepository {
		return &sanitizeRepository{ItemRepository: next, maxLen: maxLen}
	}
}

func (r *sanitizeRepository) Add(ctx context.Context, item domain.Item) (domain.Item, error) {
	name := SanitizeName(item.Name, r.maxLen)
	if name == "" {
		return domain.Item{}, domain.ErrEmptyName
	}
	item.Name = name
	return r.ItemRepository.Add(ctx, item)
}

// SanitizeName applies the same cleaning rules as the sanitize middleware.
func SanitizeName(name string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)

	if maxLen > 0 {
		if runes := []rune(cleaned); len(runes) > maxLen {
			cleaned = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return cleaned
}
