package services

import (
	"testing"

	"backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeasures() []models.Measure {
	return []models.Measure{
		{ID: 1, Name: "Kilogram", ShortName: "kg", Family: models.FamilyWeight, BaseUnitRef: "kg", ConversionFactor: 1},
		{ID: 2, Name: "Gram", ShortName: "g", Family: models.FamilyWeight, BaseUnitRef: "kg", ConversionFactor: 0.001},
		{ID: 3, Name: "Metric Ton", ShortName: "MT", Family: models.FamilyWeight, BaseUnitRef: "kg", ConversionFactor: 1000},
		{ID: 4, Name: "Pound", ShortName: "lb", Family: models.FamilyWeight, BaseUnitRef: "kg", ConversionFactor: 0.453592},
		{ID: 5, Name: "Liter", ShortName: "L", Family: models.FamilyVolume, BaseUnitRef: "L", ConversionFactor: 1},
		{ID: 6, Name: "Milliliter", ShortName: "mL", Family: models.FamilyVolume, BaseUnitRef: "L", ConversionFactor: 0.001},
		{ID: 7, Name: "Piece", ShortName: "pc", Family: models.FamilyCount, BaseUnitRef: "pc", ConversionFactor: 1},
	}
}

func kgProduct(basePrice float64) models.Product {
	return models.Product{
		ID:        10,
		Name:      "Basmati Rice",
		SKU:       "RICE-01",
		BasePrice: basePrice,
		PriceUnit: "kg",
		Currency:  "USD",
	}
}

func TestPriceForUnitKilogramToMetricTon(t *testing.T) {
	s := NewPricingService(testMeasures())
	p := kgProduct(8.50)

	unit, ok := s.PriceForUnit(p, 3)
	require.True(t, ok)
	assert.True(t, unit.Equal(decimal.RequireFromString("0.0085")), "got %s", unit)

	total, ok := s.ConvertTotal(p, 3, 2)
	require.True(t, ok)
	assert.True(t, total.Equal(decimal.RequireFromString("0.017")), "got %s", total)
}

func TestPriceForUnitSameMeasureIsIdentity(t *testing.T) {
	s := NewPricingService(testMeasures())
	p := kgProduct(8.50)

	unit, ok := s.PriceForUnit(p, 1)
	require.True(t, ok)
	assert.True(t, unit.Equal(decimal.RequireFromString("8.5")))
}

func TestPriceForUnitCrossFamilyUnavailable(t *testing.T) {
	s := NewPricingService(testMeasures())
	p := kgProduct(8.50)

	_, ok := s.PriceForUnit(p, 5) // liter
	assert.False(t, ok)

	_, ok = s.PriceForUnit(p, 999) // unknown measure
	assert.False(t, ok)
}

func TestPriceForUnitMatrixOverrideWins(t *testing.T) {
	s := NewPricingService(testMeasures())
	p := kgProduct(8.50)
	p.PriceMatrix = map[int]float64{3: 8200}

	unit, ok := s.PriceForUnit(p, 3)
	require.True(t, ok)
	assert.True(t, unit.Equal(decimal.RequireFromString("8200")))
}

func TestPriceForUnitMatrixOverrideBypassesFamilyCheck(t *testing.T) {
	s := NewPricingService(testMeasures())
	p := kgProduct(8.50)
	p.PriceMatrix = map[int]float64{5: 12.75} // liter, cross family

	unit, ok := s.PriceForUnit(p, 5)
	require.True(t, ok)
	assert.True(t, unit.Equal(decimal.RequireFromString("12.75")))
}

func TestPriceForUnitFractionalFactor(t *testing.T) {
	s := NewPricingService(testMeasures())
	p := kgProduct(2.00)

	// 2.00 x (1 / 0.453592) = 4.40925... per lb, rounded to 4 places.
	unit, ok := s.PriceForUnit(p, 4)
	require.True(t, ok)
	assert.True(t, unit.Equal(decimal.RequireFromString("4.4093")), "got %s", unit)
}

func TestConversionRoundTripStaysClose(t *testing.T) {
	s := NewPricingService(testMeasures())
	p := kgProduct(8.50)

	// Factor-weighted prices must agree across measures:
	// price(target) x targetFactor == basePrice x baseFactor.
	perMT, ok := s.PriceForUnit(p, 3)
	require.True(t, ok)
	weighted := perMT.Mul(decimal.NewFromInt(1000))
	diff := weighted.Sub(decimal.NewFromFloat(8.50)).Abs()
	assert.True(t, diff.LessThan(decimal.RequireFromString("0.01")), "diff %s", diff)
}

func TestBaseMeasureMatchesNameAndShortName(t *testing.T) {
	s := NewPricingService(testMeasures())

	p := kgProduct(1)
	p.PriceUnit = "Kilogram"
	m, ok := s.BaseMeasure(p)
	require.True(t, ok)
	assert.Equal(t, 1, m.ID)

	p.PriceUnit = " KG "
	m, ok = s.BaseMeasure(p)
	require.True(t, ok)
	assert.Equal(t, 1, m.ID)

	p.PriceUnit = "furlong"
	_, ok = s.BaseMeasure(p)
	assert.False(t, ok)
}

func TestAvailableMeasuresFamilyPlusOverrides(t *testing.T) {
	s := NewPricingService(testMeasures())
	p := kgProduct(8.50)
	p.PriceMatrix = map[int]float64{5: 12.75}

	available := s.AvailableMeasures(p)
	ids := make([]int, 0, len(available))
	for _, m := range available {
		ids = append(ids, m.ID)
	}
	// All four weight measures plus the liter override.
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, ids)
}

func TestDefaultMeasurePrefersBaseThenWeight(t *testing.T) {
	s := NewPricingService(testMeasures())

	p := kgProduct(1)
	m, ok := s.DefaultMeasure(p)
	require.True(t, ok)
	assert.Equal(t, "kg", m.ShortName)

	p.PriceUnit = "unknown-unit"
	m, ok = s.DefaultMeasure(p)
	require.True(t, ok)
	assert.Equal(t, models.FamilyWeight, m.Family)
}

func TestReloadReplacesCatalog(t *testing.T) {
	s := NewPricingService(testMeasures())

	s.Reload([]models.Measure{
		{ID: 20, Name: "Dozen", ShortName: "dz", Family: models.FamilyCount, BaseUnitRef: "pc", ConversionFactor: 12},
	})

	_, ok := s.ResolveMeasure(1)
	assert.False(t, ok)
	m, ok := s.ResolveMeasure(20)
	require.True(t, ok)
	assert.Equal(t, "dz", m.ShortName)
	assert.Len(t, s.Measures(), 1)
}
