package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/selgo-dev/selgo-web/internal/models"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrUnknownVertical = errors.New("unknown vertical")
)

const (
	DefaultPerPage = 24
	MaxPerPage     = 48
)

// Sort orders accepted by Query.Sort
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortPopular   = "popular"
)

// Query filters a listing search
type Query struct {
	Vertical string `form:"-"`
	Search   string `form:"q" binding:"max=100"`
	MinPrice int64  `form:"min_price" binding:"gte=0"`
	MaxPrice int64  `form:"max_price" binding:"gte=0"`
	Sort     string `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc popular"`
	Page     int    `form:"page" binding:"gte=0"`
	PerPage  int    `form:"per_page" binding:"gte=0"`
}

// Page is one page of results
type Page struct {
	Listings []models.Listing
	Total    int64
	Page     int
	PerPage  int
}

// Pages is the number of pages the result spans
func (p Page) Pages() int {
	if p.PerPage == 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// HasNext reports whether another page follows
func (p Page) HasNext() bool {
	return p.Page < p.Pages()
}

// Repository reads and writes listings and favorites
type Repository struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewRepository creates a listing repository
func NewRepository(db *gorm.DB, logger zerolog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (q *Query) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	q.Search = strings.TrimSpace(q.Search)
}

// List searches listings
func (r *Repository) List(ctx context.Context, q Query) (Page, error) {
	q.normalize()

	tx := r.db.WithContext(ctx).Model(&models.Listing{})
	if q.Vertical != "" {
		tx = tx.Where("vertical = ?", q.Vertical)
	}
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where("(LOWER(title) LIKE ? OR LOWER(location) LIKE ?)", like, like)
	}
	if q.MinPrice > 0 {
		tx = tx.Where("price >= ?", q.MinPrice)
	}
	if q.MaxPrice > 0 {
		tx = tx.Where("price <= ?", q.MaxPrice)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return Page{}, fmt.Errorf("failed to count listings: %w", err)
	}

	switch q.Sort {
	case SortPriceAsc:
		tx = tx.Order("price ASC")
	case SortPriceDesc:
		tx = tx.Order("price DESC")
	case SortPopular:
		tx = tx.Order("views DESC")
	default:
		tx = tx.Order("created_at DESC")
	}

	var listings []models.Listing
	err := tx.Order("id DESC").
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&listings).Error
	if err != nil {
		return Page{}, fmt.Errorf("failed to list listings: %w", err)
	}

	return Page{Listings: listings, Total: total, Page: q.Page, PerPage: q.PerPage}, nil
}

// Get loads one listing with its seller
func (r *Repository) Get(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).Preload("Seller").Where("id = ?", id).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	return &listing, nil
}

// Featured returns up to limit featured listings, all verticals when vertical is empty
func (r *Repository) Featured(ctx context.Context, vertical string, limit int) ([]models.Listing, error) {
	tx := r.db.WithContext(ctx).Where("featured = ?", true)
	if vertical != "" {
		tx = tx.Where("vertical = ?", vertical)
	}

	var listings []models.Listing
	if err := tx.Order("views DESC").Order("id DESC").Limit(limit).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to load featured listings: %w", err)
	}
	return listings, nil
}

// Create stores a new listing
func (r *Repository) Create(ctx context.Context, listing *models.Listing) error {
	if _, ok := Lookup(listing.Vertical); !ok {
		return ErrUnknownVertical
	}
	if listing.Currency == "" {
		listing.Currency = "NOK"
	}
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter of a listing
func (r *Repository) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment views: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

// BySeller returns the listings posted by a user, newest first
func (r *Repository) BySeller(ctx context.Context, userID string) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load seller listings: %w", err)
	}
	return listings, nil
}

// RotateFeatured clears the featured flag and picks perVertical random listings in every vertical
func (r *Repository) RotateFeatured(ctx context.Context, perVertical int, seed uint64) (int, error) {
	if perVertical < 0 {
		perVertical = 0
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	picked := 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Listing{}).Where("featured = ?", true).Update("featured", false).Error; err != nil {
			return err
		}

		for _, slug := range Slugs() {
			var ids []string
			if err := tx.Model(&models.Listing{}).Where("vertical = ?", slug).Order("id").Pluck("id", &ids).Error; err != nil {
				return err
			}
			rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
			if len(ids) > perVertical {
				ids = ids[:perVertical]
			}
			if len(ids) == 0 {
				continue
			}
			if err := tx.Model(&models.Listing{}).Where("id IN ?", ids).Update("featured", true).Error; err != nil {
				return err
			}
			picked += len(ids)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to rotate featured listings: %w", err)
	}

	r.logger.Info().Int("featured", picked).Msg("Rotated featured listings")
	return picked, nil
}

// Seed fills every empty vertical with perVertical generated listings
func (r *Repository) Seed(ctx context.Context, perVertical int, seed uint64) (int, error) {
	created := 0
	for _, v := range Verticals() {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Listing{}).Where("vertical = ?", v.Slug).Count(&count).Error; err != nil {
			return created, fmt.Errorf("failed to count %s listings: %w", v.Slug, err)
		}
		if count > 0 {
			r.logger.Debug().Str("vertical", v.Slug).Int64("existing", count).Msg("Vertical already seeded")
			continue
		}

		listings := Generate(v, perVertical, seed)
		if len(listings) == 0 {
			continue
		}
		if err := r.db.WithContext(ctx).CreateInBatches(listings, 100).Error; err != nil {
			return created, fmt.Errorf("failed to seed %s: %w", v.Slug, err)
		}
		created += len(listings)
	}

	r.logger.Info().Int("created", created).Msg("Seeded catalog")
	return created, nil
}

// ToggleFavorite saves the listing for the user, or removes it if already saved.
// It returns whether the listing is saved afterwards.
func (r *Repository) ToggleFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	if _, err := r.Get(ctx, listingID); err != nil {
		return false, err
	}

	res := r.db.WithContext(ctx).Where("user_id = ? AND listing_id = ?", userID, listingID).Delete(&models.Favorite{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	fav := &models.Favorite{UserID: userID, ListingID: listingID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fav).Error
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	return true, nil
}

// Favorites returns the listings saved by a user, most recently saved first
func (r *Repository) Favorites(ctx context.Context, userID string) ([]models.Listing, error) {
	var favs []models.Favorite
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&favs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	listings := make([]models.Listing, 0, len(favs))
	for _, f := range favs {
		listings = append(listings, f.Listing)
	}
	return listings, nil
}

// FavoriteIDs returns the set of listing IDs saved by a user
func (r *Repository) FavoriteIDs(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).Where("user_id = ?", userID).Pluck("listing_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite ids: %w", err)
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
