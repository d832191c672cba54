package catalog

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/selgo-dev/selgo-web/internal/models"
)

var locations = []string{
	"Oslo", "Bergen", "Trondheim", "Stavanger", "Tromsø", "Kristiansand",
	"Drammen", "Fredrikstad", "Bodø", "Ålesund", "Lillehammer", "Molde",
}

// Generate returns n mock listings for vertical. The same seed always yields the same listings.
func Generate(v Vertical, n int, seed uint64) []models.Listing {
	rng := rand.New(rand.NewPCG(seed, hashSlug(v.Slug)))
	out := make([]models.Listing, 0, n)

	for i := 0; i < n; i++ {
		attrs := make(map[string]string, len(v.attrs))
		for _, a := range v.attrs {
			attrs[a.key] = pick(rng, a.values)
		}

		title := strings.TrimSpace(pick(rng, v.makes) + " " + pick(rng, v.models))
		location := pick(rng, locations)

		out = append(out, models.Listing{
			Vertical:    v.Slug,
			Title:       title,
			Description: fmt.Sprintf("%s offered in %s. %s", title, location, describe(v, attrs)),
			Price:       roundPrice(v.minPrice + rng.Int64N(v.maxPrice-v.minPrice+1)),
			Currency:    v.Currency,
			Location:    location,
			ImageURL:    fmt.Sprintf("/uploads/%s/%03d.jpg", v.Slug, rng.IntN(120)+1),
			Featured:    rng.IntN(5) == 0,
			Views:       rng.Int64N(2000),
			Attributes:  attrs,
		})
	}
	return out
}

func describe(v Vertical, attrs map[string]string) string {
	parts := make([]string, 0, len(v.attrs))
	for _, a := range v.attrs {
		parts = append(parts, fmt.Sprintf("%s: %s", a.key, attrs[a.key]))
	}
	return strings.Join(parts, ", ") + "."
}

// roundPrice keeps mock prices looking like something a person typed
func roundPrice(p int64) int64 {
	switch {
	case p >= 100_000:
		return p / 5_000 * 5_000
	case p >= 10_000:
		return p / 500 * 500
	default:
		return p / 50 * 50
	}
}

func pick(rng *rand.Rand, values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[rng.IntN(len(values))]
}

func hashSlug(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
