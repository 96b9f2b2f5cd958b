package entity

import "time"

// Estados del ciclo de vida de una solicitud de materiales.
const (
	RequestStatusPending    = "pending"
	RequestStatusApproved   = "approved"
	RequestStatusCollecting = "collecting"
	RequestStatusDelivered  = "delivered"
	RequestStatusReturned   = "returned"
	RequestStatusCancelled  = "cancelled"
)

// requestTransitions define las transiciones legales del ciclo de vida.
// cancelled es alcanzable desde pending, approved y collecting, y es terminal.
var requestTransitions = map[string][]string{
	RequestStatusPending:    {RequestStatusApproved, RequestStatusCancelled},
	RequestStatusApproved:   {RequestStatusCollecting, RequestStatusCancelled},
	RequestStatusCollecting: {RequestStatusDelivered, RequestStatusCancelled},
	RequestStatusDelivered:  {RequestStatusReturned},
	RequestStatusReturned:   {},
	RequestStatusCancelled:  {},
}

// CanTransition indica si el cambio de estado from -> to es legal.
func CanTransition(from, to string) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus indica si el estado no admite más transiciones.
func IsTerminalStatus(status string) bool {
	return len(requestTransitions[status]) == 0
}

// Request agrupa los ítems solicitados por un usuario y su estado en el ciclo
// pending -> approved -> collecting -> delivered -> returned.
type Request struct {
	ID                    string
	UserID                string
	RequestNumber         string // REQ-YYYYMMDD-XXXX
	Status                string
	RequestedDate         time.Time
	RequestedTime         string // HH:MM
	EstimatedUsagePeriod  string
	SupervisingInstructor string
	Purpose               string
	CollectionDate        *time.Time
	DeliveryDate          *time.Time
	ReturnDate            *time.Time
	Notes                 string
	Items                 []*RequestItem
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Item devuelve el ítem con el ID dado, o nil si no pertenece a la solicitud.
func (r *Request) Item(itemID string) *RequestItem {
	for _, it := range r.Items {
		if it.ID == itemID {
			return it
		}
	}
	return nil
}

// IsTerminal indica si la solicitud ya no admite transiciones.
func (r *Request) IsTerminal() bool {
	return IsTerminalStatus(r.Status)
}
