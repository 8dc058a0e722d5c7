package services

import (
	"errors"
	"sync"
	"time"

	"backend/models"
	"backend/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrSessionNotFound = errors.New("compose session not found")
	ErrLineNotFound    = errors.New("product not in compose session")
	ErrBadQuantity     = errors.New("quantity must be a positive integer")
)

// ComposeLine is one in-progress quote line inside a compose session.
// UnitPrice is cached when the line is added or its measure changes;
// SetQuantity recomputes the subtotal from the cached price without
// re-resolving the conversion.
type ComposeLine struct {
	ProductID       int     `json:"product_id"`
	ProductName     string  `json:"product_name"`
	SKU             string  `json:"sku"`
	MeasureID       int     `json:"measure_id"`
	MeasureName     string  `json:"measure_name"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	Subtotal        float64 `json:"subtotal"`
	Notes           string  `json:"notes,omitempty"`
	ConversionError bool    `json:"conversion_error,omitempty"`
	Currency        string  `json:"currency"`
}

// ComposeSnapshot is what the UI renders after every mutation.
type ComposeSnapshot struct {
	Token      string        `json:"token"`
	Lines      []ComposeLine `json:"lines"`
	GrandTotal float64       `json:"grand_total"`
	Currency   string        `json:"currency"`
}

type composeSession struct {
	lines     []*ComposeLine
	products  map[int]models.Product
	updatedAt time.Time
}

// ComposerService holds the in-progress, unsaved quote state per session
// token. Each session has a single writer (the browser that owns the token);
// the store itself is guarded for concurrent sessions.
type ComposerService struct {
	mu       sync.Mutex
	pricing  *PricingService
	sessions map[string]*composeSession
}

func NewComposerService(pricing *PricingService) *ComposerService {
	return &ComposerService{
		pricing:  pricing,
		sessions: make(map[string]*composeSession),
	}
}

// NewSession allocates an empty compose session and returns its token.
func (cs *ComposerService) NewSession() string {
	token := repository.GenerateComposeToken()
	cs.mu.Lock()
	cs.sessions[token] = &composeSession{
		products:  make(map[int]models.Product),
		updatedAt: time.Now(),
	}
	cs.mu.Unlock()
	return token
}

// AddProduct appends a line for the product with the default measure and
// quantity 1. Adding a product already in the session is a no-op.
func (cs *ComposerService) AddProduct(token string, p models.Product) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	sess, ok := cs.sessions[token]
	if !ok {
		return ErrSessionNotFound
	}
	if _, exists := sess.products[p.ID]; exists {
		return nil
	}

	line := &ComposeLine{
		ProductID:   p.ID,
		ProductName: p.Name,
		SKU:         p.SKU,
		Quantity:    1,
		Currency:    p.Currency,
	}
	if m, ok := cs.pricing.DefaultMeasure(p); ok {
		line.MeasureID = m.ID
		line.MeasureName = m.Name
	}
	cs.priceLine(line, p)

	sess.products[p.ID] = p
	sess.lines = append(sess.lines, line)
	sess.updatedAt = time.Now()
	return nil
}

// RemoveProduct drops the product's line; other lines are untouched.
func (cs *ComposerService) RemoveProduct(token string, productID int) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	sess, ok := cs.sessions[token]
	if !ok {
		return ErrSessionNotFound
	}
	if _, exists := sess.products[productID]; !exists {
		return ErrLineNotFound
	}

	delete(sess.products, productID)
	for i, l := range sess.lines {
		if l.ProductID == productID {
			sess.lines = append(sess.lines[:i], sess.lines[i+1:]...)
			break
		}
	}
	sess.updatedAt = time.Now()
	return nil
}

// SetQuantity recomputes the line subtotal from the cached unit price.
func (cs *ComposerService) SetQuantity(token string, productID, quantity int) error {
	if quantity < 1 {
		return ErrBadQuantity
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	sess, line, err := cs.find(token, productID)
	if err != nil {
		return err
	}

	line.Quantity = quantity
	unit := decimal.NewFromFloat(line.UnitPrice)
	line.Subtotal = roundedFloat(unit.Mul(decimal.NewFromInt(int64(quantity))), totalScale)
	sess.updatedAt = time.Now()
	return nil
}

// SetMeasure re-resolves the unit price for the new measure. When the
// conversion is unavailable the line is flagged and falls back to the
// product's base price so a subtotal can still be shown.
func (cs *ComposerService) SetMeasure(token string, productID, measureID int) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	sess, line, err := cs.find(token, productID)
	if err != nil {
		return err
	}

	line.MeasureID = measureID
	if m, ok := cs.pricing.ResolveMeasure(measureID); ok {
		line.MeasureName = m.Name
	} else {
		line.MeasureName = ""
	}
	cs.priceLine(line, sess.products[productID])
	sess.updatedAt = time.Now()
	return nil
}

// SetNotes stores free text as typed; sanitization happens at submission.
func (cs *ComposerService) SetNotes(token string, productID int, notes string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	sess, line, err := cs.find(token, productID)
	if err != nil {
		return err
	}
	line.Notes = notes
	sess.updatedAt = time.Now()
	return nil
}

// Snapshot returns the session's lines and grand total. Flagged lines are
// included in the total at their fallback price.
func (cs *ComposerService) Snapshot(token string) (ComposeSnapshot, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	sess, ok := cs.sessions[token]
	if !ok {
		return ComposeSnapshot{}, ErrSessionNotFound
	}

	snap := ComposeSnapshot{Token: token}
	total := decimal.Zero
	for _, l := range sess.lines {
		snap.Lines = append(snap.Lines, *l)
		total = total.Add(decimal.NewFromFloat(l.Subtotal))
		if snap.Currency == "" {
			snap.Currency = l.Currency
		}
	}
	snap.GrandTotal = roundedFloat(total, totalScale)
	return snap, nil
}

// Drop discards a session.
func (cs *ComposerService) Drop(token string) {
	cs.mu.Lock()
	delete(cs.sessions, token)
	cs.mu.Unlock()
}

// SweepStale removes sessions idle longer than maxIdle and reports how many
// were dropped. Run from the maintenance cron.
func (cs *ComposerService) SweepStale(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	removed := 0
	for token, sess := range cs.sessions {
		if sess.updatedAt.Before(cutoff) {
			delete(cs.sessions, token)
			removed++
		}
	}
	return removed
}

func (cs *ComposerService) find(token string, productID int) (*composeSession, *ComposeLine, error) {
	sess, ok := cs.sessions[token]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	for _, l := range sess.lines {
		if l.ProductID == productID {
			return sess, l, nil
		}
	}
	return nil, nil, ErrLineNotFound
}

// priceLine resolves the unit price for the line's current measure and
// recomputes the subtotal. Unavailable conversions flag the line and fall
// back to the product's base price.
func (cs *ComposerService) priceLine(line *ComposeLine, p models.Product) {
	unit, ok := cs.pricing.PriceForUnit(p, line.MeasureID)
	if !ok {
		line.ConversionError = true
		unit = decimal.NewFromFloat(p.BasePrice).Round(unitPriceScale)
	} else {
		line.ConversionError = false
	}
	line.UnitPrice = roundedFloat(unit, unitPriceScale)
	line.Subtotal = roundedFloat(unit.Mul(decimal.NewFromInt(int64(line.Quantity))), totalScale)
}

func roundedFloat(d decimal.Decimal, scale int32) float64 {
	f, _ := d.Round(scale).Float64()
	return f
}
