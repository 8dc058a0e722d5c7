package services

import (
	"sort"
	"strings"
	"sync"

	"backend/models"

	"github.com/shopspring/decimal"
)

// Unit prices and totals keep four decimal places. Totals are not truncated
// to currency precision here: a kg-priced product quoted per gram yields
// sub-cent line totals that must survive until display formatting.
const (
	unitPriceScale = 4
	totalScale     = 4
)

// PricingService converts a product's listed price into any measure of the
// same family. The measure catalog is cached in memory and reloaded whenever
// the catalog changes; all arithmetic runs on decimals so non-integer factors
// (lb vs kg) do not drift.
type PricingService struct {
	mu     sync.RWMutex
	byID   map[int]models.Measure
	byName map[string]models.Measure
	all    []models.Measure
}

func NewPricingService(measures []models.Measure) *PricingService {
	s := &PricingService{}
	s.Reload(measures)
	return s
}

// Reload replaces the cached measure catalog.
func (s *PricingService) Reload(measures []models.Measure) {
	byID := make(map[int]models.Measure, len(measures))
	byName := make(map[string]models.Measure, len(measures)*2)
	all := make([]models.Measure, len(measures))
	copy(all, measures)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	for _, m := range all {
		byID[m.ID] = m
		byName[strings.ToLower(m.Name)] = m
		byName[strings.ToLower(m.ShortName)] = m
	}

	s.mu.Lock()
	s.byID = byID
	s.byName = byName
	s.all = all
	s.mu.Unlock()
}

// Measures returns the cached catalog ordered by ID.
func (s *PricingService) Measures() []models.Measure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Measure, len(s.all))
	copy(out, s.all)
	return out
}

// ResolveMeasure looks a measure up by ID.
func (s *PricingService) ResolveMeasure(id int) (models.Measure, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	return m, ok
}

// BaseMeasure resolves the measure a product's price is listed in, matching
// the product's price unit against measure names and short names.
func (s *PricingService) BaseMeasure(p models.Product) (models.Measure, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byName[strings.ToLower(strings.TrimSpace(p.PriceUnit))]
	return m, ok
}

// PriceForUnit returns the unit price of p expressed in the target measure.
// An explicit price-matrix entry always wins; otherwise the price converts
// linearly within the base measure's family. Cross-family targets are never
// converted and report unavailable.
func (s *PricingService) PriceForUnit(p models.Product, targetMeasureID int) (decimal.Decimal, bool) {
	if override, ok := p.PriceMatrix[targetMeasureID]; ok {
		return decimal.NewFromFloat(override).Round(unitPriceScale), true
	}

	target, ok := s.ResolveMeasure(targetMeasureID)
	if !ok {
		return decimal.Zero, false
	}

	base, ok := s.BaseMeasure(p)
	if !ok {
		return decimal.Zero, false
	}

	basePrice := decimal.NewFromFloat(p.BasePrice)
	if target.ID == base.ID || strings.EqualFold(target.Name, base.Name) {
		return basePrice.Round(unitPriceScale), true
	}

	if target.Family != base.Family || target.BaseUnitRef != base.BaseUnitRef {
		return decimal.Zero, false
	}

	baseFactor := decimal.NewFromFloat(base.ConversionFactor)
	targetFactor := decimal.NewFromFloat(target.ConversionFactor)
	if targetFactor.IsZero() {
		return decimal.Zero, false
	}

	converted := basePrice.Mul(baseFactor).DivRound(targetFactor, unitPriceScale+4)
	return converted.Round(unitPriceScale), true
}

// ConvertTotal returns PriceForUnit multiplied by quantity.
func (s *PricingService) ConvertTotal(p models.Product, targetMeasureID, quantity int) (decimal.Decimal, bool) {
	unit, ok := s.PriceForUnit(p, targetMeasureID)
	if !ok {
		return decimal.Zero, false
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity))).Round(totalScale), true
}

// AvailableMeasures returns the measures the UI may offer for a product: the
// base measure's whole family plus any price-matrix override measures, which
// are exempt from the family restriction.
func (s *PricingService) AvailableMeasures(p models.Product) []models.Measure {
	base, hasBase := s.BaseMeasure(p)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Measure
	for _, m := range s.all {
		if hasBase && m.Family == base.Family && m.BaseUnitRef == base.BaseUnitRef {
			out = append(out, m)
			continue
		}
		if _, ok := p.PriceMatrix[m.ID]; ok {
			out = append(out, m)
		}
	}
	return out
}

// DefaultMeasure picks the measure a freshly added quote line starts with:
// the product's base measure, else the first weight measure, else the first
// available measure.
func (s *PricingService) DefaultMeasure(p models.Product) (models.Measure, bool) {
	if base, ok := s.BaseMeasure(p); ok {
		return base, true
	}
	available := s.AvailableMeasures(p)
	for _, m := range available {
		if m.Family == models.FamilyWeight {
			return m, true
		}
	}
	if len(available) > 0 {
		return available[0], true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.all {
		if m.Family == models.FamilyWeight {
			return m, true
		}
	}
	if len(s.all) > 0 {
		return s.all[0], true
	}
	return models.Measure{}, false
}
