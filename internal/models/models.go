package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents a marketplace account
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Listing is a classified ad in one of the verticals
type Listing struct {
	BaseModel
	Vertical    string            `json:"vertical" gorm:"index;not null"`
	Title       string            `json:"title" gorm:"not null"`
	Description string            `json:"description" gorm:"type:text"`
	Price       int64             `json:"price" gorm:"not null;default:0"` // Whole currency units
	Currency    string            `json:"currency" gorm:"type:varchar(3);not null;default:'NOK'"`
	Location    string            `json:"location"`
	ImageURL    string            `json:"image_url"`
	Featured    bool              `json:"featured" gorm:"index;not null;default:false"`
	Views       int64             `json:"views" gorm:"not null;default:0"`
	Attributes  map[string]string `json:"attributes" gorm:"serializer:json"`
	SellerID    *string           `json:"-" gorm:"index"` // nil for generated mock listings

	Seller *User `json:"-" gorm:"foreignKey:SellerID;references:ID;constraint:OnDelete:SET NULL"`
}

// Favorite marks a listing as saved by a user
type Favorite struct {
	BaseModel
	UserID    string `json:"user_id" gorm:"not null;uniqueIndex:idx_favorite_user_listing"`
	ListingID string `json:"listing_id" gorm:"not null;uniqueIndex:idx_favorite_user_listing"`

	Listing Listing `json:"listing,omitzero" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	User    *User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Config is the singleton row of settings generated on first start
type Config struct {
	BaseModel
	JWTSecret string `json:"-" gorm:"not null"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&Config{}, &User{}, &Listing{}, &Favorite{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
