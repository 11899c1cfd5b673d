package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/inventory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolveQuantity_EntradasSuman(t *testing.T) {
	for _, kind := range []string{entity.MovementKindIn, entity.MovementKindTransferIn} {
		after, err := inventory.ResolveQuantity(kind, dec("100"), dec("30"))
		require.NoError(t, err)
		assert.True(t, after.Equal(dec("130")), "kind %s: esperaba 130, obtuvo %s", kind, after)
	}
}

func TestResolveQuantity_SalidasRestan(t *testing.T) {
	for _, kind := range []string{entity.MovementKindOut, entity.MovementKindTransferOut} {
		after, err := inventory.ResolveQuantity(kind, dec("100"), dec("30"))
		require.NoError(t, err)
		assert.True(t, after.Equal(dec("70")), "kind %s: esperaba 70, obtuvo %s", kind, after)
	}
}

// adjust fija la cantidad absoluta, no un delta: 100 con adjust 42 da 42,
// no 142 ni 58. Comportamiento contractual del ledger.
func TestResolveQuantity_AdjustEsAbsoluto(t *testing.T) {
	after, err := inventory.ResolveQuantity(entity.MovementKindAdjust, dec("100"), dec("42"))
	require.NoError(t, err)
	assert.True(t, after.Equal(dec("42")), "adjust debe fijar la cantidad objetivo, obtuvo %s", after)
}

func TestResolveQuantity_KindDesconocido(t *testing.T) {
	_, err := inventory.ResolveQuantity("purchase", dec("10"), dec("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTotalCost_RedondeaADosDecimales(t *testing.T) {
	total := inventory.TotalCost(dec("3.333"), dec("3"))
	assert.True(t, total.Equal(dec("10.00")), "esperaba 10.00, obtuvo %s", total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clasificación de umbrales
// ──────────────────────────────────────────────────────────────────────────────

func TestBreachKind_CeroOMenosEsCritico(t *testing.T) {
	assert.Equal(t, entity.AlertKindCriticalStock, inventory.BreachKind(dec("0"), dec("5"), dec("10")))
	assert.Equal(t, entity.AlertKindCriticalStock, inventory.BreachKind(dec("-1"), dec("0"), dec("10")))
}

func TestBreachKind_UmbralPropio(t *testing.T) {
	// min_quantity=5: 5 incumple, 6 no
	assert.Equal(t, entity.AlertKindLowStock, inventory.BreachKind(dec("5"), dec("5"), dec("10")))
	assert.Equal(t, "", inventory.BreachKind(dec("6"), dec("5"), dec("10")))
}

func TestBreachKind_FallbackCuandoMinEsCero(t *testing.T) {
	// min_quantity=0 usa el fallback (10): 10 incumple, 11 no
	assert.Equal(t, entity.AlertKindLowStock, inventory.BreachKind(dec("10"), dec("0"), dec("10")))
	assert.Equal(t, "", inventory.BreachKind(dec("11"), dec("0"), dec("10")))
}

func TestClearsBreach(t *testing.T) {
	// critical se libera con cantidad > 0
	assert.True(t, inventory.ClearsBreach(entity.AlertKindCriticalStock, dec("1"), dec("5"), dec("10")))
	assert.False(t, inventory.ClearsBreach(entity.AlertKindCriticalStock, dec("0"), dec("5"), dec("10")))
	// low se libera por encima del umbral aplicable
	assert.True(t, inventory.ClearsBreach(entity.AlertKindLowStock, dec("6"), dec("5"), dec("10")))
	assert.False(t, inventory.ClearsBreach(entity.AlertKindLowStock, dec("5"), dec("5"), dec("10")))
	assert.True(t, inventory.ClearsBreach(entity.AlertKindLowStock, dec("11"), dec("0"), dec("10")))
	// otros tipos no los maneja el reconciliador
	assert.False(t, inventory.ClearsBreach(entity.AlertKindExpiry, dec("100"), dec("5"), dec("10")))
}
