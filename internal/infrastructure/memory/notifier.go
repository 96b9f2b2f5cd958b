package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Notifier acumula los eventos publicados. Sirve de doble en tests y de
// notificador por defecto cuando no hay Redis configurado.
type Notifier struct {
	mu     sync.Mutex
	events []entity.Event
	log    zerolog.Logger
}

// NewNotifier construye el notificador en memoria.
func NewNotifier(log zerolog.Logger) *Notifier {
	return &Notifier{log: log}
}

// Publish registra el evento y lo deja en el log.
func (n *Notifier) Publish(_ context.Context, ev entity.Event) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()

	n.log.Debug().
		Str("kind", ev.Kind).
		Str("subject_id", ev.SubjectID).
		Msg("evento publicado")
}

// Events devuelve una copia de los eventos publicados hasta ahora.
func (n *Notifier) Events() []entity.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]entity.Event, len(n.events))
	copy(out, n.events)
	return out
}

// EventsOfKind filtra los eventos publicados por tipo.
func (n *Notifier) EventsOfKind(kind string) []entity.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []entity.Event
	for _, ev := range n.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
