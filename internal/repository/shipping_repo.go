package repository

import (
	"context"

	"storeadmin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShippingRepository defines data access for shipping zones and rates
type ShippingRepository interface {
	CreateZone(ctx context.Context, zone *model.ShippingZone) error
	UpdateZone(ctx context.Context, zone *model.ShippingZone) error
	DeleteZone(ctx context.Context, id uuid.UUID) error
	FindZoneByID(ctx context.Context, id uuid.UUID) (*model.ShippingZone, error)
	ListZones(ctx context.Context, page, limit int) ([]model.ShippingZone, int64, error)

	CreateRate(ctx context.Context, rate *model.ShippingRate) error
	UpdateRate(ctx context.Context, rate *model.ShippingRate) error
	DeleteRate(ctx context.Context, id uuid.UUID) error
	FindRateByID(ctx context.Context, id uuid.UUID) (*model.ShippingRate, error)
	ListRatesByZone(ctx context.Context, zoneID uuid.UUID) ([]model.ShippingRate, error)
	ListActiveRates(ctx context.Context, zoneID uuid.UUID) ([]model.ShippingRate, error)
}

type shippingRepository struct {
	db *gorm.DB
}

func NewShippingRepository(db *gorm.DB) ShippingRepository {
	return &shippingRepository{db: db}
}

func (r *shippingRepository) CreateZone(ctx context.Context, zone *model.ShippingZone) error {
	return GetDB(ctx, r.db).Create(zone).Error
}

func (r *shippingRepository) UpdateZone(ctx context.Context, zone *model.ShippingZone) error {
	return GetDB(ctx, r.db).Save(zone).Error
}

func (r *shippingRepository) DeleteZone(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Select("Rates").Delete(&model.ShippingZone{ID: id}).Error
}

func (r *shippingRepository) FindZoneByID(ctx context.Context, id uuid.UUID) (*model.ShippingZone, error) {
	var zone model.ShippingZone
	if err := GetDB(ctx, r.db).First(&zone, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *shippingRepository) ListZones(ctx context.Context, page, limit int) ([]model.ShippingZone, int64, error) {
	var zones []model.ShippingZone
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.ShippingZone{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("sort_order asc").Offset(offset).Limit(limit).Find(&zones).Error; err != nil {
		return nil, 0, err
	}

	return zones, total, nil
}

func (r *shippingRepository) CreateRate(ctx context.Context, rate *model.ShippingRate) error {
	return GetDB(ctx, r.db).Create(rate).Error
}

func (r *shippingRepository) UpdateRate(ctx context.Context, rate *model.ShippingRate) error {
	return GetDB(ctx, r.db).Save(rate).Error
}

func (r *shippingRepository) DeleteRate(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ShippingRate{}).Error
}

func (r *shippingRepository) FindRateByID(ctx context.Context, id uuid.UUID) (*model.ShippingRate, error) {
	var rate model.ShippingRate
	if err := GetDB(ctx, r.db).First(&rate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *shippingRepository) ListRatesByZone(ctx context.Context, zoneID uuid.UUID) ([]model.ShippingRate, error) {
	var rates []model.ShippingRate
	if err := GetDB(ctx, r.db).
		Where("zone_id = ?", zoneID).
		Order("sort_order asc").
		Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// ListActiveRates returns active rates for a zone in ascending sort_order,
// the evaluation order of the rate engine.
func (r *shippingRepository) ListActiveRates(ctx context.Context, zoneID uuid.UUID) ([]model.ShippingRate, error) {
	var rates []model.ShippingRate
	if err := GetDB(ctx, r.db).
		Where("zone_id = ? AND is_active = ?", zoneID, true).
		Order("sort_order asc").
		Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}
