package entity

import (
	"encoding/json"
	"time"
)

// Tipos de alerta.
const (
	AlertKindLowStock      = "low_stock"
	AlertKindCriticalStock = "critical_stock"
	AlertKindNoMovement    = "no_movement"
	AlertKindExpiry        = "expiry"
)

// Estados de alerta. Una alerta nace open; read/resolved/ignored son terminales:
// un nuevo incumplimiento crea siempre una alerta nueva, nunca reabre una resuelta.
const (
	AlertStateOpen     = "open"
	AlertStateRead     = "read"
	AlertStateResolved = "resolved"
	AlertStateIgnored  = "ignored"
)

// Prioridades de alerta.
const (
	AlertPriorityLow    = "low"
	AlertPriorityMedium = "medium"
	AlertPriorityHigh   = "high"
)

// ValidAlertState indica si state es uno de los estados enumerados.
func ValidAlertState(state string) bool {
	switch state {
	case AlertStateOpen, AlertStateRead, AlertStateResolved, AlertStateIgnored:
		return true
	}
	return false
}

// StockAlert representa una alerta derivada del inventario.
// Invariante: a lo sumo una alerta open por (ProductID, Kind); lo refuerza un
// índice único parcial en la tabla además del chequeo del reconciliador.
type StockAlert struct {
	ID          string
	ProductID   string // vacío para alertas no asociadas a producto
	Kind        string
	State       string
	Priority    string
	Title       string
	Description string
	Metadata    json.RawMessage // snapshot: cantidad, umbral, origen
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}
