package service

import (
	"context"
	"errors"
	"testing"

	"storeadmin/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- in-memory fake ---

type fakeShippingRepo struct {
	zones   map[uuid.UUID]*model.ShippingZone
	rates   map[uuid.UUID]*model.ShippingRate
	listErr error
}

func newFakeShippingRepo() *fakeShippingRepo {
	return &fakeShippingRepo{
		zones: make(map[uuid.UUID]*model.ShippingZone),
		rates: make(map[uuid.UUID]*model.ShippingRate),
	}
}

func (f *fakeShippingRepo) CreateZone(ctx context.Context, zone *model.ShippingZone) error {
	if zone.ID == uuid.Nil {
		zone.ID = uuid.New()
	}
	f.zones[zone.ID] = zone
	return nil
}

func (f *fakeShippingRepo) UpdateZone(ctx context.Context, zone *model.ShippingZone) error {
	f.zones[zone.ID] = zone
	return nil
}

func (f *fakeShippingRepo) DeleteZone(ctx context.Context, id uuid.UUID) error {
	delete(f.zones, id)
	return nil
}

func (f *fakeShippingRepo) FindZoneByID(ctx context.Context, id uuid.UUID) (*model.ShippingZone, error) {
	if z, ok := f.zones[id]; ok {
		return z, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeShippingRepo) ListZones(ctx context.Context, page, limit int) ([]model.ShippingZone, int64, error) {
	out := make([]model.ShippingZone, 0, len(f.zones))
	for _, z := range f.zones {
		out = append(out, *z)
	}
	return out, int64(len(out)), nil
}

func (f *fakeShippingRepo) CreateRate(ctx context.Context, rate *model.ShippingRate) error {
	if rate.ID == uuid.Nil {
		rate.ID = uuid.New()
	}
	f.rates[rate.ID] = rate
	return nil
}

func (f *fakeShippingRepo) UpdateRate(ctx context.Context, rate *model.ShippingRate) error {
	f.rates[rate.ID] = rate
	return nil
}

func (f *fakeShippingRepo) DeleteRate(ctx context.Context, id uuid.UUID) error {
	delete(f.rates, id)
	return nil
}

func (f *fakeShippingRepo) FindRateByID(ctx context.Context, id uuid.UUID) (*model.ShippingRate, error) {
	if r, ok := f.rates[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeShippingRepo) ListRatesByZone(ctx context.Context, zoneID uuid.UUID) ([]model.ShippingRate, error) {
	return f.listRates(zoneID, false)
}

func (f *fakeShippingRepo) ListActiveRates(ctx context.Context, zoneID uuid.UUID) ([]model.ShippingRate, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listRates(zoneID, true)
}

// listRates returns rates in ascending sort_order, as the real query does
func (f *fakeShippingRepo) listRates(zoneID uuid.UUID, activeOnly bool) ([]model.ShippingRate, error) {
	var out []model.ShippingRate
	for _, r := range f.rates {
		if r.ZoneID != zoneID {
			continue
		}
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, *r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].SortOrder < out[j-1].SortOrder; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

// --- helpers ---

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newShippingFixture(bypass bool) (ShippingService, *fakeShippingRepo, uuid.UUID) {
	repo := newFakeShippingRepo()
	zone := &model.ShippingZone{ID: uuid.New(), Name: "Domestic", IsActive: true}
	repo.zones[zone.ID] = zone
	svc := NewShippingService(repo, bypass, NewAuditService(&fakeAuditRepo{}, nil))
	return svc, repo, zone.ID
}

func addRate(repo *fakeShippingRepo, rate model.ShippingRate) model.ShippingRate {
	rate.ID = uuid.New()
	rate.IsActive = true
	if rate.EstimatedDaysMax == 0 {
		rate.EstimatedDaysMin = 1
		rate.EstimatedDaysMax = 5
	}
	repo.rates[rate.ID] = &rate
	return rate
}

// --- Calculate ---

func TestCalculateFlatAndWeightRates(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Standard", RateType: model.RateTypeFlat, FlatRate: decPtr("500"), SortOrder: 0})
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "By weight", RateType: model.RateTypeWeight, WeightRatePerKg: decPtr("100"), SortOrder: 1})

	result, err := svc.Calculate(context.Background(), zoneID.String(), decPtr("2"), decPtr("100"))
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	if len(result.Rates) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(result.Rates))
	}
	if !result.Rates[0].Cost.Equal(dec("500")) {
		t.Fatalf("flat quote cost = %s, want 500", result.Rates[0].Cost)
	}
	if !result.Rates[1].Cost.Equal(dec("200")) {
		t.Fatalf("weight quote cost = %s, want 200", result.Rates[1].Cost)
	}
	if result.Cheapest == nil || !result.Cheapest.Cost.Equal(dec("200")) {
		t.Fatalf("cheapest = %+v, want cost 200", result.Cheapest)
	}
}

func TestCalculatePercentageOfPrice(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Insured", RateType: model.RateTypePrice, PriceRatePercentage: decPtr("10")})

	result, err := svc.Calculate(context.Background(), zoneID.String(), nil, decPtr("250"))
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if len(result.Rates) != 1 || !result.Rates[0].Cost.Equal(dec("25")) {
		t.Fatalf("expected single quote of 25, got %+v", result.Rates)
	}
}

func TestFreeShippingThresholdForcesZeroCost(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Standard", RateType: model.RateTypeFlat, FlatRate: decPtr("500"), FreeShippingThreshold: decPtr("500"), SortOrder: 0})
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Express", RateType: model.RateTypeFlat, FlatRate: decPtr("50"), SortOrder: 1})

	result, err := svc.Calculate(context.Background(), zoneID.String(), nil, decPtr("600"))
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	if !result.Rates[0].Cost.IsZero() {
		t.Fatalf("threshold-met rate cost = %s, want 0", result.Rates[0].Cost)
	}
	if result.Cheapest == nil || result.Cheapest.Name != "Standard" || !result.Cheapest.Cost.IsZero() {
		t.Fatalf("cheapest = %+v, want the zeroed Standard rate", result.Cheapest)
	}
}

func TestWeightBoundsExcludeRate(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	addRate(repo, model.ShippingRate{
		ZoneID:          zoneID,
		Name:            "Light parcels",
		RateType:        model.RateTypeWeight,
		WeightRatePerKg: decPtr("100"),
		MinWeight:       decPtr("0"),
		MaxWeight:       decPtr("5"),
	})

	result, err := svc.Calculate(context.Background(), zoneID.String(), decPtr("10"), decPtr("50"))
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if len(result.Rates) != 0 {
		t.Fatalf("out-of-bounds rate should be excluded, got %+v", result.Rates)
	}
	if result.Cheapest != nil {
		t.Fatalf("cheapest should be nil when nothing survives, got %+v", result.Cheapest)
	}
}

func TestBoundsAreInclusive(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	addRate(repo, model.ShippingRate{
		ZoneID:    zoneID,
		Name:      "Exact",
		RateType:  model.RateTypeFlat,
		FlatRate:  decPtr("75"),
		MinWeight: decPtr("5"),
		MaxWeight: decPtr("5"),
		MinPrice:  decPtr("100"),
		MaxPrice:  decPtr("100"),
	})

	result, err := svc.Calculate(context.Background(), zoneID.String(), decPtr("5"), decPtr("100"))
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if len(result.Rates) != 1 {
		t.Fatalf("boundary values must pass inclusive bounds, got %d quotes", len(result.Rates))
	}
}

func TestThresholdBypassAdmitsRateFailingItsBounds(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	addRate(repo, model.ShippingRate{
		ZoneID:                zoneID,
		Name:                  "Light parcels",
		RateType:              model.RateTypeWeight,
		WeightRatePerKg:       decPtr("100"),
		MinWeight:             decPtr("0"),
		MaxWeight:             decPtr("5"),
		FreeShippingThreshold: decPtr("500"),
	})

	// weight 10 fails max_weight 5, but price 600 meets the threshold
	result, err := svc.Calculate(context.Background(), zoneID.String(), decPtr("10"), decPtr("600"))
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if len(result.Rates) != 1 || !result.Rates[0].Cost.IsZero() {
		t.Fatalf("bypass on: expected one zeroed quote, got %+v", result.Rates)
	}
}

func TestThresholdWithoutBypassOnlyZeroesCost(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(false)
	addRate(repo, model.ShippingRate{
		ZoneID:                zoneID,
		Name:                  "Light parcels",
		RateType:              model.RateTypeWeight,
		WeightRatePerKg:       decPtr("100"),
		MinWeight:             decPtr("0"),
		MaxWeight:             decPtr("5"),
		FreeShippingThreshold: decPtr("500"),
		SortOrder:             0,
	})
	addRate(repo, model.ShippingRate{
		ZoneID:                zoneID,
		Name:                  "Heavy parcels",
		RateType:              model.RateTypeWeight,
		WeightRatePerKg:       decPtr("40"),
		FreeShippingThreshold: decPtr("500"),
		SortOrder:             1,
	})

	result, err := svc.Calculate(context.Background(), zoneID.String(), decPtr("10"), decPtr("600"))
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	// Bypass off: the bounded rate stays excluded, the unbounded one is zeroed
	if len(result.Rates) != 1 {
		t.Fatalf("expected 1 quote with bypass off, got %+v", result.Rates)
	}
	if result.Rates[0].Name != "Heavy parcels" || !result.Rates[0].Cost.IsZero() {
		t.Fatalf("unexpected surviving quote %+v", result.Rates[0])
	}
}

func TestFlatRateIgnoresMissingInputs(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Standard", RateType: model.RateTypeFlat, FlatRate: decPtr("120")})

	for _, tc := range []struct {
		weight, price *decimal.Decimal
	}{
		{nil, nil},
		{decPtr("3"), nil},
		{nil, decPtr("80")},
		{decPtr("3"), decPtr("80")},
	} {
		result, err := svc.Calculate(context.Background(), zoneID.String(), tc.weight, tc.price)
		if err != nil {
			t.Fatalf("Calculate returned error: %v", err)
		}
		if len(result.Rates) != 1 || !result.Rates[0].Cost.Equal(dec("120")) {
			t.Fatalf("flat cost must be exactly flat_rate, got %+v", result.Rates)
		}
	}
}

func TestDependentStrategiesZeroWithoutTheirInput(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "By weight", RateType: model.RateTypeWeight, WeightRatePerKg: decPtr("100"), SortOrder: 0})
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Insured", RateType: model.RateTypePrice, PriceRatePercentage: decPtr("10"), SortOrder: 1})

	result, err := svc.Calculate(context.Background(), zoneID.String(), nil, nil)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	for _, q := range result.Rates {
		if !q.Cost.IsZero() {
			t.Fatalf("quote %s cost = %s, want 0 when its input is absent", q.Name, q.Cost)
		}
	}
}

func TestUnsetFlatRateCostsZero(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Misconfigured", RateType: model.RateTypeFlat})

	result, err := svc.Calculate(context.Background(), zoneID.String(), nil, nil)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if len(result.Rates) != 1 || !result.Rates[0].Cost.IsZero() {
		t.Fatalf("unset flat_rate must cost 0, got %+v", result.Rates)
	}
}

func TestNegativeParametersClampToZero(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	// Stored rows can predate boundary validation; the engine still clamps
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Bad percent", RateType: model.RateTypePrice, PriceRatePercentage: decPtr("-10"), SortOrder: 0})
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Bad flat", RateType: model.RateTypeFlat, FlatRate: decPtr("-5"), SortOrder: 1})

	result, err := svc.Calculate(context.Background(), zoneID.String(), decPtr("2"), decPtr("100"))
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	for _, q := range result.Rates {
		if q.Cost.IsNegative() {
			t.Fatalf("quote %s has negative cost %s", q.Name, q.Cost)
		}
		if !q.Cost.IsZero() {
			t.Fatalf("quote %s cost = %s, want clamped 0", q.Name, q.Cost)
		}
	}
}

func TestCheapestTieBreaksOnSortOrder(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Second", RateType: model.RateTypeFlat, FlatRate: decPtr("100"), SortOrder: 2})
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "First", RateType: model.RateTypeFlat, FlatRate: decPtr("100"), SortOrder: 1})

	result, err := svc.Calculate(context.Background(), zoneID.String(), nil, nil)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if result.Cheapest == nil || result.Cheapest.Name != "First" {
		t.Fatalf("tie must keep the lower sort_order quote, got %+v", result.Cheapest)
	}
}

func TestFreeRateTypeCostsZeroAndWins(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Standard", RateType: model.RateTypeFlat, FlatRate: decPtr("50"), SortOrder: 0})
	addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Promo", RateType: model.RateTypeFree, SortOrder: 1})

	result, err := svc.Calculate(context.Background(), zoneID.String(), decPtr("1"), decPtr("10"))
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if result.Cheapest == nil || result.Cheapest.Name != "Promo" || !result.Cheapest.Cost.IsZero() {
		t.Fatalf("cheapest = %+v, want free Promo rate", result.Cheapest)
	}
}

func TestCalculateRequiresZoneID(t *testing.T) {
	svc, _, _ := newShippingFixture(true)

	for _, zoneID := range []string{"", "not-a-uuid"} {
		_, err := svc.Calculate(context.Background(), zoneID, nil, nil)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("Calculate(%q) error = %v, want ErrInvalidArgument", zoneID, err)
		}
	}
}

func TestCalculateSurfacesStorageFailure(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	repo.listErr = errors.New("connection refused")

	result, err := svc.Calculate(context.Background(), zoneID.String(), decPtr("1"), decPtr("10"))
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if result != nil {
		t.Fatalf("no partial results on storage failure, got %+v", result)
	}
}

func TestQuotePassesThroughDeliveryEstimates(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	addRate(repo, model.ShippingRate{
		ZoneID:           zoneID,
		Name:             "Standard",
		RateType:         model.RateTypeFlat,
		FlatRate:         decPtr("50"),
		EstimatedDaysMin: 2,
		EstimatedDaysMax: 7,
	})

	result, err := svc.Calculate(context.Background(), zoneID.String(), nil, nil)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	q := result.Rates[0]
	if q.EstimatedDaysMin != 2 || q.EstimatedDaysMax != 7 {
		t.Fatalf("delivery estimates not passed through: %+v", q)
	}
}

// --- Rate CRUD validation ---

func TestCreateRateRejectsInvalidParameters(t *testing.T) {
	svc, _, zoneID := newShippingFixture(true)

	cases := []CreateRateRequest{
		{Name: "neg flat", RateType: "flat", FlatRate: strPtr("-10"), EstimatedDaysMax: 1},
		{Name: "big pct", RateType: "price", PriceRatePercentage: strPtr("150"), EstimatedDaysMax: 1},
		{Name: "bad bounds", RateType: "flat", MinWeight: strPtr("10"), MaxWeight: strPtr("5"), EstimatedDaysMax: 1},
		{Name: "not a number", RateType: "flat", FlatRate: strPtr("abc"), EstimatedDaysMax: 1},
		{Name: "bad days", RateType: "flat", EstimatedDaysMin: 5, EstimatedDaysMax: 2},
	}

	for _, req := range cases {
		if _, err := svc.CreateRate(context.Background(), "", zoneID.String(), req); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("CreateRate(%s) error = %v, want ErrInvalidArgument", req.Name, err)
		}
	}
}

func TestCreateRateUnknownZone(t *testing.T) {
	svc, _, _ := newShippingFixture(true)

	_, err := svc.CreateRate(context.Background(), "", uuid.NewString(), CreateRateRequest{
		Name: "orphan", RateType: "flat", FlatRate: strPtr("10"), EstimatedDaysMax: 1,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInactiveRatesAreNotQuoted(t *testing.T) {
	svc, repo, zoneID := newShippingFixture(true)
	rate := addRate(repo, model.ShippingRate{ZoneID: zoneID, Name: "Retired", RateType: model.RateTypeFlat, FlatRate: decPtr("10")})
	repo.rates[rate.ID].IsActive = false

	result, err := svc.Calculate(context.Background(), zoneID.String(), nil, nil)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if len(result.Rates) != 0 || result.Cheapest != nil {
		t.Fatalf("inactive rate must not be quoted, got %+v", result)
	}
}

func strPtr(s string) *string { return &s }
