package service

import (
	"context"
	"errors"
	"fmt"

	"storeadmin/internal/model"
	"storeadmin/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateZoneRequest struct {
	Name        string   `json:"name" binding:"required"`
	Countries   []string `json:"countries"`
	States      []string `json:"states"`
	Cities      []string `json:"cities"`
	PostalCodes []string `json:"postal_codes"`
	IsActive    *bool    `json:"is_active"`
	SortOrder   int      `json:"sort_order"`
}

type CreateRateRequest struct {
	Name                  string  `json:"name" binding:"required"`
	RateType              string  `json:"rate_type" binding:"required,oneof=flat weight price free"`
	MinWeight             *string `json:"min_weight"` // decimal strings, e.g. "0.5"
	MaxWeight             *string `json:"max_weight"`
	MinPrice              *string `json:"min_price"`
	MaxPrice              *string `json:"max_price"`
	FlatRate              *string `json:"flat_rate"`
	WeightRatePerKg       *string `json:"weight_rate_per_kg"`
	PriceRatePercentage   *string `json:"price_rate_percentage"` // 0-100
	FreeShippingThreshold *string `json:"free_shipping_threshold"`
	EstimatedDaysMin      int     `json:"estimated_days_min"`
	EstimatedDaysMax      int     `json:"estimated_days_max"`
	IsActive              *bool   `json:"is_active"`
	SortOrder             int     `json:"sort_order"`
}

// RateQuote is one computed cost, with delivery estimates passed through
// unmodified from the rate record.
type RateQuote struct {
	RateID           string          `json:"rate_id"`
	Name             string          `json:"name"`
	RateType         string          `json:"rate_type"`
	Cost             decimal.Decimal `json:"cost"`
	EstimatedDaysMin int             `json:"estimated_days_min"`
	EstimatedDaysMax int             `json:"estimated_days_max"`
}

// QuoteResult holds every applicable quote and the cheapest one.
// Cheapest is nil exactly when no rate survives filtering.
type QuoteResult struct {
	Rates    []RateQuote `json:"rates"`
	Cheapest *RateQuote  `json:"cheapest"`
}

// --- Interface ---

// ShippingService manages zones and rates and computes shipping quotes.
// Calculate is a pure function of its inputs and the stored rate set.
type ShippingService interface {
	Calculate(ctx context.Context, zoneID string, weight, price *decimal.Decimal) (*QuoteResult, error)

	CreateZone(ctx context.Context, actorAdminID string, req CreateZoneRequest) (*model.ShippingZone, error)
	UpdateZone(ctx context.Context, actorAdminID, zoneID string, req CreateZoneRequest) (*model.ShippingZone, error)
	DeleteZone(ctx context.Context, actorAdminID, zoneID string) error
	ListZones(ctx context.Context, page, limit int) ([]model.ShippingZone, int64, error)

	CreateRate(ctx context.Context, actorAdminID, zoneID string, req CreateRateRequest) (*model.ShippingRate, error)
	UpdateRate(ctx context.Context, actorAdminID, rateID string, req CreateRateRequest) (*model.ShippingRate, error)
	DeleteRate(ctx context.Context, actorAdminID, rateID string) error
	ListRatesByZone(ctx context.Context, zoneID string) ([]model.ShippingRate, error)
}

type shippingService struct {
	repo repository.ShippingRepository
	// freeShippingBypassesConstraints preserves the source behavior: a rate
	// whose threshold is met by the declared price is admitted even when it
	// fails its own weight/price bounds. Off, the threshold only zeroes cost.
	freeShippingBypassesConstraints bool
	audit                           AuditService
}

func NewShippingService(repo repository.ShippingRepository, freeShippingBypassesConstraints bool, audit AuditService) ShippingService {
	return &shippingService{
		repo:                            repo,
		freeShippingBypassesConstraints: freeShippingBypassesConstraints,
		audit:                           audit,
	}
}

// --- Rate engine ---

var oneHundred = decimal.NewFromInt(100)

// Calculate fetches the zone's active rates in sort order, filters them by
// the shipment's weight and price, computes each cost and picks the cheapest.
// Either all surviving rates are returned or the call fails outright.
func (s *shippingService) Calculate(ctx context.Context, zoneID string, weight, price *decimal.Decimal) (*QuoteResult, error) {
	if zoneID == "" {
		return nil, fmt.Errorf("%w: zone_id is required", ErrInvalidArgument)
	}
	zid, err := uuid.Parse(zoneID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid zone_id", ErrInvalidArgument)
	}

	rates, err := s.repo.ListActiveRates(ctx, zid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	result := &QuoteResult{Rates: make([]RateQuote, 0, len(rates))}
	for _, rate := range rates {
		if !s.applicable(rate, weight, price) {
			continue
		}

		quote := RateQuote{
			RateID:           rate.ID.String(),
			Name:             rate.Name,
			RateType:         rate.RateType,
			Cost:             computeCost(rate, weight, price),
			EstimatedDaysMin: rate.EstimatedDaysMin,
			EstimatedDaysMax: rate.EstimatedDaysMax,
		}
		result.Rates = append(result.Rates, quote)

		// Strictly-less keeps the first occurrence on ties, preserving
		// the ascending sort_order evaluation order.
		if result.Cheapest == nil || quote.Cost.LessThan(result.Cheapest.Cost) {
			q := quote
			result.Cheapest = &q
		}
	}

	return result, nil
}

// applicable runs the inclusive bounds filter. A met free-shipping threshold
// admits the rate outright when the bypass flag is on.
func (s *shippingService) applicable(rate model.ShippingRate, weight, price *decimal.Decimal) bool {
	if s.freeShippingBypassesConstraints && thresholdMet(rate, price) {
		return true
	}

	if weight != nil {
		if rate.MinWeight != nil && weight.LessThan(*rate.MinWeight) {
			return false
		}
		if rate.MaxWeight != nil && weight.GreaterThan(*rate.MaxWeight) {
			return false
		}
	}

	if price != nil {
		if rate.MinPrice != nil && price.LessThan(*rate.MinPrice) {
			return false
		}
		if rate.MaxPrice != nil && price.GreaterThan(*rate.MaxPrice) {
			return false
		}
	}

	return true
}

// computeCost applies the rate-type formula, then the free-shipping override,
// then clamps at zero. Absent weight/price zero out the dependent strategies.
func computeCost(rate model.ShippingRate, weight, price *decimal.Decimal) decimal.Decimal {
	var cost decimal.Decimal

	switch rate.RateType {
	case model.RateTypeFlat:
		if rate.FlatRate != nil {
			cost = *rate.FlatRate
		}
	case model.RateTypeWeight:
		if rate.WeightRatePerKg != nil && weight != nil {
			cost = rate.WeightRatePerKg.Mul(*weight)
		}
	case model.RateTypePrice:
		if rate.PriceRatePercentage != nil && price != nil {
			cost = price.Mul(*rate.PriceRatePercentage).Div(oneHundred)
		}
	case model.RateTypeFree:
		// zero
	}

	if thresholdMet(rate, price) {
		cost = decimal.Zero
	}

	if cost.IsNegative() {
		cost = decimal.Zero
	}

	return cost
}

func thresholdMet(rate model.ShippingRate, price *decimal.Decimal) bool {
	return rate.FreeShippingThreshold != nil && price != nil &&
		price.GreaterThanOrEqual(*rate.FreeShippingThreshold)
}

// --- Zone CRUD ---

func (s *shippingService) CreateZone(ctx context.Context, actorAdminID string, req CreateZoneRequest) (*model.ShippingZone, error) {
	zone := model.ShippingZone{
		Name:        req.Name,
		Countries:   req.Countries,
		States:      req.States,
		Cities:      req.Cities,
		PostalCodes: req.PostalCodes,
		IsActive:    true,
		SortOrder:   req.SortOrder,
	}
	if req.IsActive != nil {
		zone.IsActive = *req.IsActive
	}

	if err := s.repo.CreateZone(ctx, &zone); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.audit.Record(ctx, actorAdminID, model.ActionCreateShippingZone, zone.ID.String(), zone.Name, req)

	return &zone, nil
}

func (s *shippingService) UpdateZone(ctx context.Context, actorAdminID, zoneID string, req CreateZoneRequest) (*model.ShippingZone, error) {
	id, err := uuid.Parse(zoneID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid zone id", ErrInvalidArgument)
	}

	zone, err := s.repo.FindZoneByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	zone.Name = req.Name
	zone.Countries = req.Countries
	zone.States = req.States
	zone.Cities = req.Cities
	zone.PostalCodes = req.PostalCodes
	zone.SortOrder = req.SortOrder
	if req.IsActive != nil {
		zone.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateZone(ctx, zone); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.audit.Record(ctx, actorAdminID, model.ActionUpdateShippingZone, zone.ID.String(), zone.Name, req)

	return zone, nil
}

func (s *shippingService) DeleteZone(ctx context.Context, actorAdminID, zoneID string) error {
	id, err := uuid.Parse(zoneID)
	if err != nil {
		return fmt.Errorf("%w: invalid zone id", ErrInvalidArgument)
	}

	zone, err := s.repo.FindZoneByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := s.repo.DeleteZone(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.audit.Record(ctx, actorAdminID, model.ActionDeleteShippingZone, zoneID, zone.Name, nil)

	return nil
}

func (s *shippingService) ListZones(ctx context.Context, page, limit int) ([]model.ShippingZone, int64, error) {
	zones, total, err := s.repo.ListZones(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return zones, total, nil
}

// --- Rate CRUD ---

func (s *shippingService) CreateRate(ctx context.Context, actorAdminID, zoneID string, req CreateRateRequest) (*model.ShippingRate, error) {
	zid, err := uuid.Parse(zoneID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid zone id", ErrInvalidArgument)
	}

	if _, err := s.repo.FindZoneByID(ctx, zid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	rate := model.ShippingRate{ZoneID: zid, IsActive: true}
	if err := applyRateRequest(&rate, req); err != nil {
		return nil, err
	}

	if err := s.repo.CreateRate(ctx, &rate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.audit.Record(ctx, actorAdminID, model.ActionCreateShippingRate, rate.ID.String(), rate.Name, req)

	return &rate, nil
}

func (s *shippingService) UpdateRate(ctx context.Context, actorAdminID, rateID string, req CreateRateRequest) (*model.ShippingRate, error) {
	id, err := uuid.Parse(rateID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid rate id", ErrInvalidArgument)
	}

	rate, err := s.repo.FindRateByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := applyRateRequest(rate, req); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.audit.Record(ctx, actorAdminID, model.ActionUpdateShippingRate, rate.ID.String(), rate.Name, req)

	return rate, nil
}

func (s *shippingService) DeleteRate(ctx context.Context, actorAdminID, rateID string) error {
	id, err := uuid.Parse(rateID)
	if err != nil {
		return fmt.Errorf("%w: invalid rate id", ErrInvalidArgument)
	}

	rate, err := s.repo.FindRateByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := s.repo.DeleteRate(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.audit.Record(ctx, actorAdminID, model.ActionDeleteShippingRate, rateID, rate.Name, nil)

	return nil
}

func (s *shippingService) ListRatesByZone(ctx context.Context, zoneID string) ([]model.ShippingRate, error) {
	zid, err := uuid.Parse(zoneID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid zone id", ErrInvalidArgument)
	}

	rates, err := s.repo.ListRatesByZone(ctx, zid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return rates, nil
}

// --- Helpers ---

// applyRateRequest parses and validates the decimal fields of a rate payload.
// Bounds must be ordered, strategy parameters non-negative, percentage 0-100.
// The engine still clamps defensively at quote time.
func applyRateRequest(rate *model.ShippingRate, req CreateRateRequest) error {
	rate.Name = req.Name
	rate.RateType = req.RateType
	rate.EstimatedDaysMin = req.EstimatedDaysMin
	rate.EstimatedDaysMax = req.EstimatedDaysMax
	rate.SortOrder = req.SortOrder
	if req.IsActive != nil {
		rate.IsActive = *req.IsActive
	}

	fields := []struct {
		name string
		src  *string
		dst  **decimal.Decimal
	}{
		{"min_weight", req.MinWeight, &rate.MinWeight},
		{"max_weight", req.MaxWeight, &rate.MaxWeight},
		{"min_price", req.MinPrice, &rate.MinPrice},
		{"max_price", req.MaxPrice, &rate.MaxPrice},
		{"flat_rate", req.FlatRate, &rate.FlatRate},
		{"weight_rate_per_kg", req.WeightRatePerKg, &rate.WeightRatePerKg},
		{"price_rate_percentage", req.PriceRatePercentage, &rate.PriceRatePercentage},
		{"free_shipping_threshold", req.FreeShippingThreshold, &rate.FreeShippingThreshold},
	}

	for _, f := range fields {
		if f.src == nil {
			*f.dst = nil
			continue
		}
		d, err := decimal.NewFromString(*f.src)
		if err != nil {
			return fmt.Errorf("%w: invalid %s value", ErrInvalidArgument, f.name)
		}
		if d.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidArgument, f.name)
		}
		*f.dst = &d
	}

	if rate.PriceRatePercentage != nil && rate.PriceRatePercentage.GreaterThan(oneHundred) {
		return fmt.Errorf("%w: price_rate_percentage must be between 0 and 100", ErrInvalidArgument)
	}
	if rate.MinWeight != nil && rate.MaxWeight != nil && rate.MinWeight.GreaterThan(*rate.MaxWeight) {
		return fmt.Errorf("%w: min_weight exceeds max_weight", ErrInvalidArgument)
	}
	if rate.MinPrice != nil && rate.MaxPrice != nil && rate.MinPrice.GreaterThan(*rate.MaxPrice) {
		return fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidArgument)
	}
	if req.EstimatedDaysMin < 0 || req.EstimatedDaysMax < req.EstimatedDaysMin {
		return fmt.Errorf("%w: invalid estimated delivery day range", ErrInvalidArgument)
	}

	return nil
}
