package pages

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/selgo-dev/selgo-web/internal/catalog"
	"github.com/selgo-dev/selgo-web/internal/models"
)

// Banner is a full-width hero with an optional call to action
type Banner struct {
	Title    string
	Subtitle string
	ImageURL string
	CTA      *Link
}

// Link is a plain navigation link
type Link struct {
	Label  string
	Href   string
	Active bool
}

// Slider is a horizontally scrolling row of cards
type Slider struct {
	Title  string
	Slides []Card
}

// Card is one tile in a grid or slider
type Card struct {
	ID       string
	Title    string
	Subtitle string
	Price    string
	ImageURL string
	Href     string
	Badge    string
	Saved    bool
}

// CardCollection is a grid of cards
type CardCollection struct {
	Title     string
	Columns   int
	Cards     []Card
	EmptyText string
	MoreURL   string
}

// Empty reports whether the collection has no cards
func (c CardCollection) Empty() bool {
	return len(c.Cards) == 0
}

// CollectionConfig drives GenericCardCollection
type CollectionConfig struct {
	Title     string
	Columns   int // clamped to 1..6, 0 means 4
	Limit     int // 0 keeps every listing
	EmptyText string
	MoreURL   string
	Saved     map[string]bool
}

const (
	defaultColumns = 4
	maxColumns     = 6
)

// GenericCardCollection renders listings of any vertical as a card grid
func GenericCardCollection(cfg CollectionConfig, listings []models.Listing) CardCollection {
	cols := cfg.Columns
	switch {
	case cols == 0:
		cols = defaultColumns
	case cols < 1:
		cols = 1
	case cols > maxColumns:
		cols = maxColumns
	}

	if cfg.Limit > 0 && len(listings) > cfg.Limit {
		listings = listings[:cfg.Limit]
	}

	empty := cfg.EmptyText
	if empty == "" {
		empty = "No listings yet."
	}

	cards := make([]Card, 0, len(listings))
	for _, l := range listings {
		card := CardFromListing(l)
		card.Saved = cfg.Saved[l.ID]
		cards = append(cards, card)
	}

	return CardCollection{
		Title:     cfg.Title,
		Columns:   cols,
		Cards:     cards,
		EmptyText: empty,
		MoreURL:   cfg.MoreURL,
	}
}

// NewSlider builds a slider from listings
func NewSlider(title string, listings []models.Listing) Slider {
	slides := make([]Card, 0, len(listings))
	for _, l := range listings {
		slides = append(slides, CardFromListing(l))
	}
	return Slider{Title: title, Slides: slides}
}

// CardFromListing maps a listing onto a card using its vertical's subtitle attributes
func CardFromListing(l models.Listing) Card {
	var parts []string
	suffix := ""
	if v, ok := catalog.Lookup(l.Vertical); ok {
		for _, key := range v.SubtitleKeys {
			if val := l.Attributes[key]; val != "" {
				parts = append(parts, val)
			}
		}
		suffix = v.PriceSuffix
	}
	if l.Location != "" {
		parts = append(parts, l.Location)
	}

	price := FormatPrice(l.Price, l.Currency)
	if suffix != "" {
		price += " " + suffix
	}

	card := Card{
		ID:       l.ID,
		Title:    l.Title,
		Subtitle: strings.Join(parts, " · "),
		Price:    price,
		ImageURL: l.ImageURL,
		Href:     ListingURL(l),
	}
	if l.Featured {
		card.Badge = "Featured"
	}
	return card
}

// ListingURL is the detail page path of a listing
func ListingURL(l models.Listing) string {
	return fmt.Sprintf("/routes/%s/%s", l.Vertical, l.ID)
}

// FormatPrice groups thousands with spaces, e.g. "1 235 000 kr"
func FormatPrice(amount int64, currency string) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}

	out := b.String()
	if neg {
		out = "-" + out
	}

	switch currency {
	case "", "NOK":
		return out + " kr"
	default:
		return out + " " + currency
	}
}
