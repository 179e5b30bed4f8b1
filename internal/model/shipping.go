package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RateType enum constants
const (
	RateTypeFlat   = "flat"
	RateTypeWeight = "weight"
	RateTypePrice  = "price"
	RateTypeFree   = "free"
)

// ShippingZone groups rates by geographic match criteria
type ShippingZone struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Countries   pq.StringArray `gorm:"type:text[]" json:"countries"`
	States      pq.StringArray `gorm:"type:text[]" json:"states"`
	Cities      pq.StringArray `gorm:"type:text[]" json:"cities"`
	PostalCodes pq.StringArray `gorm:"type:text[]" json:"postal_codes"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	SortOrder   int            `gorm:"not null;default:0" json:"sort_order"`
	Rates       []ShippingRate `gorm:"foreignKey:ZoneID;constraint:OnDelete:CASCADE;" json:"rates,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// ShippingRate is a single pricing strategy within a zone. Constraint fields
// are nullable: an unset bound does not restrict applicability.
type ShippingRate struct {
	ID                    uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ZoneID                uuid.UUID        `gorm:"type:uuid;not null;index" json:"zone_id"`
	Name                  string           `gorm:"type:varchar(255);not null" json:"name"`
	RateType              string           `gorm:"type:varchar(20);not null" json:"rate_type"` // flat, weight, price, free
	MinWeight             *decimal.Decimal `gorm:"type:decimal(10,3)" json:"min_weight"`
	MaxWeight             *decimal.Decimal `gorm:"type:decimal(10,3)" json:"max_weight"`
	MinPrice              *decimal.Decimal `gorm:"type:decimal(12,2)" json:"min_price"`
	MaxPrice              *decimal.Decimal `gorm:"type:decimal(12,2)" json:"max_price"`
	FlatRate              *decimal.Decimal `gorm:"type:decimal(12,2)" json:"flat_rate"`
	WeightRatePerKg       *decimal.Decimal `gorm:"type:decimal(12,2)" json:"weight_rate_per_kg"`
	PriceRatePercentage   *decimal.Decimal `gorm:"type:decimal(5,2)" json:"price_rate_percentage"` // 0-100
	FreeShippingThreshold *decimal.Decimal `gorm:"type:decimal(12,2)" json:"free_shipping_threshold"`
	EstimatedDaysMin      int              `gorm:"not null;default:1" json:"estimated_days_min"`
	EstimatedDaysMax      int              `gorm:"not null;default:5" json:"estimated_days_max"`
	IsActive              bool             `gorm:"not null;default:true" json:"is_active"`
	SortOrder             int              `gorm:"not null;default:0" json:"sort_order"` // ascending evaluation order
	CreatedAt             time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt   `gorm:"index" json:"-"`
}
