package services

import (
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestComposer() (*ComposerService, models.Product) {
	pricing := NewPricingService(testMeasures())
	return NewComposerService(pricing), kgProduct(8.50)
}

func TestAddProductStartsWithDefaults(t *testing.T) {
	cs, p := newTestComposer()
	token := cs.NewSession()

	require.NoError(t, cs.AddProduct(token, p))

	snap, err := cs.Snapshot(token)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)

	line := snap.Lines[0]
	assert.Equal(t, p.ID, line.ProductID)
	assert.Equal(t, 1, line.MeasureID) // kg, the product's base measure
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, 8.50, line.UnitPrice)
	assert.Equal(t, 8.50, line.Subtotal)
	assert.False(t, line.ConversionError)
	assert.Equal(t, "USD", snap.Currency)
}

func TestAddProductTwiceIsNoOp(t *testing.T) {
	cs, p := newTestComposer()
	token := cs.NewSession()

	require.NoError(t, cs.AddProduct(token, p))
	require.NoError(t, cs.AddProduct(token, p))

	snap, err := cs.Snapshot(token)
	require.NoError(t, err)
	assert.Len(t, snap.Lines, 1)
}

func TestSetQuantityUsesCachedPrice(t *testing.T) {
	cs, p := newTestComposer()
	token := cs.NewSession()
	require.NoError(t, cs.AddProduct(token, p))

	require.NoError(t, cs.SetQuantity(token, p.ID, 3))

	snap, _ := cs.Snapshot(token)
	assert.Equal(t, 3, snap.Lines[0].Quantity)
	assert.Equal(t, 25.50, snap.Lines[0].Subtotal)
	assert.Equal(t, 25.50, snap.GrandTotal)
}

func TestSetQuantityRejectsNonPositive(t *testing.T) {
	cs, p := newTestComposer()
	token := cs.NewSession()
	require.NoError(t, cs.AddProduct(token, p))

	assert.ErrorIs(t, cs.SetQuantity(token, p.ID, 0), ErrBadQuantity)
	assert.ErrorIs(t, cs.SetQuantity(token, p.ID, -4), ErrBadQuantity)

	snap, _ := cs.Snapshot(token)
	assert.Equal(t, 1, snap.Lines[0].Quantity)
}

func TestSetMeasureRepricesLine(t *testing.T) {
	cs, p := newTestComposer()
	token := cs.NewSession()
	require.NoError(t, cs.AddProduct(token, p))
	require.NoError(t, cs.SetQuantity(token, p.ID, 2))

	require.NoError(t, cs.SetMeasure(token, p.ID, 3)) // metric ton

	snap, _ := cs.Snapshot(token)
	line := snap.Lines[0]
	assert.Equal(t, "Metric Ton", line.MeasureName)
	assert.Equal(t, 0.0085, line.UnitPrice)
	assert.Equal(t, 0.017, line.Subtotal)
	assert.False(t, line.ConversionError)
}

func TestSetMeasureUnavailableFallsBackToBasePrice(t *testing.T) {
	cs, p := newTestComposer()
	token := cs.NewSession()
	require.NoError(t, cs.AddProduct(token, p))

	require.NoError(t, cs.SetMeasure(token, p.ID, 5)) // liter, cross family

	snap, _ := cs.Snapshot(token)
	line := snap.Lines[0]
	assert.True(t, line.ConversionError)
	assert.Equal(t, 8.50, line.UnitPrice)

	// Switching back to a convertible measure clears the flag.
	require.NoError(t, cs.SetMeasure(token, p.ID, 1))
	snap, _ = cs.Snapshot(token)
	assert.False(t, snap.Lines[0].ConversionError)
}

func TestGrandTotalIncludesFlaggedLines(t *testing.T) {
	cs, p := newTestComposer()
	token := cs.NewSession()

	other := kgProduct(3.25)
	other.ID = 11
	other.Name = "Red Lentils"

	require.NoError(t, cs.AddProduct(token, p))
	require.NoError(t, cs.AddProduct(token, other))
	require.NoError(t, cs.SetMeasure(token, other.ID, 5)) // flagged

	snap, _ := cs.Snapshot(token)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 8.50+3.25, snap.GrandTotal)
}

func TestRemoveProductLeavesOthersUntouched(t *testing.T) {
	cs, p := newTestComposer()
	token := cs.NewSession()

	other := kgProduct(3.25)
	other.ID = 11

	require.NoError(t, cs.AddProduct(token, p))
	require.NoError(t, cs.AddProduct(token, other))
	require.NoError(t, cs.SetQuantity(token, other.ID, 4))

	require.NoError(t, cs.RemoveProduct(token, p.ID))

	snap, _ := cs.Snapshot(token)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, other.ID, snap.Lines[0].ProductID)
	assert.Equal(t, 4, snap.Lines[0].Quantity)

	assert.ErrorIs(t, cs.RemoveProduct(token, p.ID), ErrLineNotFound)
}

func TestUnknownSessionAndLine(t *testing.T) {
	cs, p := newTestComposer()

	assert.ErrorIs(t, cs.AddProduct("nope", p), ErrSessionNotFound)
	_, err := cs.Snapshot("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	token := cs.NewSession()
	assert.ErrorIs(t, cs.SetQuantity(token, 99, 2), ErrLineNotFound)
}

func TestDropAndSweepStale(t *testing.T) {
	cs, p := newTestComposer()

	token := cs.NewSession()
	require.NoError(t, cs.AddProduct(token, p))
	cs.Drop(token)
	_, err := cs.Snapshot(token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	fresh := cs.NewSession()
	stale := cs.NewSession()
	cs.mu.Lock()
	cs.sessions[stale].updatedAt = time.Now().Add(-48 * time.Hour)
	cs.mu.Unlock()

	removed := cs.SweepStale(24 * time.Hour)
	assert.Equal(t, 1, removed)
	_, err = cs.Snapshot(stale)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = cs.Snapshot(fresh)
	assert.NoError(t, err)
}
