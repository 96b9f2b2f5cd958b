package entity

import (
	"encoding/json"
	"time"
)

// Tipos de evento publicados por el notificador.
const (
	EventRequestCreated       = "request_created"
	EventRequestStatusChanged = "request_status_changed"
	EventLowStock             = "low_stock_alert"
	EventDebtCreated          = "debt_created"
	EventDebtResolved         = "debt_resolved"
	EventWeightDeviation      = "weight_deviation"
)

// Event es el registro inmutable que se publica a los consumidores externos
// (UI en tiempo real, auditoría). Entrega best-effort, al menos una vez,
// en orden por sujeto.
type Event struct {
	Kind      string          `json:"kind"`
	SubjectID string          `json:"subject_id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent construye un evento serializando el payload. Un payload que no
// serializa se degrada a nulo en lugar de fallar: la notificación nunca
// bloquea la operación de origen.
func NewEvent(kind, subjectID string, payload any, at time.Time) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = json.RawMessage("null")
	}
	return Event{Kind: kind, SubjectID: subjectID, Payload: raw, Timestamp: at}
}
